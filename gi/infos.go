package gi

import (
	"fmt"
	"iter"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/gireflect/errors"
	"github.com/wippyai/gireflect/host"
	"github.com/wippyai/gireflect/typelib"
)

// Infos is a read-only view over one category of a record's children, for
// example the fields of a struct. Children are fetched on demand and every
// access returns a fresh proxy.
type Infos struct {
	st     *State
	parent *typelib.BaseInfo
	get    typelib.ItemGetter
	count  int
	h      atomic.Uint64
}

func (s *State) newInfos(parent *typelib.BaseInfo, count int, get typelib.ItemGetter) *Infos {
	v := &Infos{
		st:     s,
		parent: parent.Ref(),
		get:    get,
		count:  count,
	}
	h := s.table.Insert(ClassInfos, v)
	if h == 0 {
		parent.Unref()
		return nil
	}
	v.h.Store(uint64(h))
	return v
}

// Finalize drops the view's reference to its parent.
func (v *Infos) Finalize() {
	v.h.Store(0)
	v.parent.Unref()
}

// Release hands the view back to the host table for finalization.
func (v *Infos) Release() {
	if h := host.Handle(v.h.Swap(0)); h != 0 {
		v.st.table.Collect(h)
	}
}

// Released reports whether Release has been called.
func (v *Infos) Released() bool { return v.h.Load() == 0 }

// Handle is the view's host table handle, 0 once released.
func (v *Infos) Handle() host.Handle { return host.Handle(v.h.Load()) }

// Len is the number of children, fixed when the view was created.
func (v *Infos) Len() int { return v.count }

// Owner is the qualified name of the record whose children are listed.
func (v *Infos) Owner() string { return qualifiedName(v.parent) }

// At returns the i-th child, counting from 0.
func (v *Infos) At(i int) (*Info, error) {
	if v.Released() {
		return nil, errors.Released(errors.PhaseLookup, "infos view")
	}
	if i < 0 || i >= v.count {
		return nil, errors.OutOfRange(errors.PhaseLookup, v.path(), i, v.count)
	}
	return v.st.Wrap(v.get(v.parent, i)), nil
}

// Get returns the first child called name. Children that do not match are
// released as the scan passes them.
func (v *Infos) Get(name string) (*Info, error) {
	if v.Released() {
		return nil, errors.Released(errors.PhaseLookup, "infos view")
	}
	for i := 0; i < v.count; i++ {
		child := v.get(v.parent, i)
		if child == nil {
			continue
		}
		if child.Name() == name {
			return v.st.Wrap(child), nil
		}
		child.Unref()
	}

	owner := qualifiedName(v.parent)
	v.st.log.Debug("member not found",
		zap.String("owner", owner),
		zap.String("name", name))
	return nil, errors.LookupNotFound(owner, name)
}

// Index is the host-facing accessor: integer keys count from 1, string keys
// look up by name.
func (v *Infos) Index(key any) (any, error) {
	if n, ok := toIndex(key); ok {
		info, err := v.At(n - 1)
		if err != nil {
			return nil, err
		}
		return absent(info), nil
	}
	if name, ok := key.(string); ok {
		info, err := v.Get(name)
		if err != nil {
			return nil, err
		}
		return absent(info), nil
	}
	return nil, errors.InvalidInput(errors.PhaseHost, fmt.Sprintf("invalid key %v (%T)", key, key))
}

// All iterates over the children in order. Each yielded proxy belongs to
// the caller.
func (v *Infos) All() iter.Seq2[int, *Info] {
	return func(yield func(int, *Info) bool) {
		for i := 0; i < v.count; i++ {
			if v.Released() {
				return
			}
			if !yield(i, v.st.Wrap(v.get(v.parent, i))) {
				return
			}
		}
	}
}

func (v *Infos) String() string {
	return fmt.Sprintf("gi.Infos(%s, %d)", qualifiedName(v.parent), v.count)
}

func (v *Infos) path() []string {
	owner := qualifiedName(v.parent)
	if owner == "" {
		return nil
	}
	return strings.Split(owner, ".")
}

func toIndex(key any) (int, bool) {
	switch k := key.(type) {
	case int:
		return k, true
	case int64:
		return int(k), true
	case float64:
		if k != float64(int(k)) {
			return 0, false
		}
		return int(k), true
	}
	return 0, false
}
