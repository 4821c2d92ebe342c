package gi

import (
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/wippyai/gireflect/host"
	"github.com/wippyai/gireflect/typelib"
)

// Info is a proxy holding exactly one reference to a metadata record.
// Properties are read through Index.
type Info struct {
	st *State
	bi *typelib.BaseInfo
	h  atomic.Uint64
}

// Finalize drops the held reference. The host table calls it exactly once.
func (i *Info) Finalize() {
	i.h.Store(0)
	i.bi.Unref()
}

// Release hands the proxy back to the host table for finalization. Calling
// it more than once is harmless.
func (i *Info) Release() {
	if h := host.Handle(i.h.Swap(0)); h != 0 {
		i.st.table.Collect(h)
	}
}

// Released reports whether Release has been called.
func (i *Info) Released() bool { return i.h.Load() == 0 }

// Handle is the proxy's host table handle, 0 once released.
func (i *Info) Handle() host.Handle { return host.Handle(i.h.Load()) }

// Kind is the record's kind.
func (i *Info) Kind() typelib.InfoType { return i.bi.Type() }

// BaseInfo returns the held handle without adding a reference. It stays
// valid until the proxy is released.
func (i *Info) BaseInfo() *typelib.BaseInfo { return i.bi }

// Name is a shortcut for Index("name") on named records.
func (i *Info) Name() string { return i.bi.Name() }

// FullName is the record's dotted qualified name.
func (i *Info) FullName() string { return qualifiedName(i.bi) }

// Index reads property name. Unknown or inapplicable properties yield nil.
func (i *Info) Index(name string) any {
	if i.Released() {
		return nil
	}
	return dispatch(i.st, i.bi, name)
}

// Properties lists the property names this record answers, grouped by
// rule in evaluation order.
func (i *Info) Properties() []string {
	if i.Released() {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, r := range rules {
		if !r.Match(i.bi) {
			continue
		}
		names := make([]string, 0, len(r.Props))
		for name := range r.Props {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
		slices.Sort(names)
		out = append(out, names...)
	}
	return out
}

// Len is always 0: a proxy is not a sequence.
func (i *Info) Len() int { return 0 }

func (i *Info) String() string {
	if i.Released() {
		return "gi.Info(released)"
	}
	return fmt.Sprintf("gi.Info(%s %s)", i.bi.Type(), qualifiedName(i.bi))
}

// absent converts a nil proxy into an untyped nil so callers can test the
// result of Index against nil.
func absent[T any](p *T) any {
	if p == nil {
		return nil
	}
	return p
}
