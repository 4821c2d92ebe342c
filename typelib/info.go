package typelib

import (
	"fmt"
	"sync/atomic"
)

// BaseInfo is a reference-counted handle to one metadata record. Every
// function returning a *BaseInfo hands the caller a new reference that must be
// released with Unref exactly once.
type BaseInfo struct {
	repo *Repository
	n    *node
	refs atomic.Int32
}

// ItemGetter fetches the i-th child of parent as a new reference, or nil.
type ItemGetter func(parent *BaseInfo, i int) *BaseInfo

func (r *Repository) newInfo(n *node) *BaseInfo {
	if n == nil {
		return nil
	}
	bi := &BaseInfo{repo: r, n: n}
	bi.refs.Store(1)
	r.live.Add(1)
	return bi
}

// Ref adds a reference and returns bi.
func (bi *BaseInfo) Ref() *BaseInfo {
	if bi.refs.Add(1) <= 1 {
		panic("typelib: Ref on released BaseInfo")
	}
	return bi
}

// Unref drops a reference. Dropping more references than were acquired panics.
func (bi *BaseInfo) Unref() {
	switch c := bi.refs.Add(-1); {
	case c == 0:
		bi.repo.live.Add(-1)
	case c < 0:
		panic(fmt.Sprintf("typelib: Unref of %s %q below zero", bi.n.kind, bi.n.name))
	}
}

// RefCount is the current number of references.
func (bi *BaseInfo) RefCount() int { return int(bi.refs.Load()) }

// Equal reports whether both handles refer to the same record.
func (bi *BaseInfo) Equal(other *BaseInfo) bool {
	if bi == nil || other == nil {
		return bi == other
	}
	return bi.n == other.n
}

func (bi *BaseInfo) Type() InfoType    { return bi.n.kind }
func (bi *BaseInfo) Name() string      { return bi.n.name }
func (bi *BaseInfo) Namespace() string { return bi.n.namespace }
func (bi *BaseInfo) IsDeprecated() bool {
	return bi.n.deprecated
}

// Container returns a new reference to the enclosing record, or nil for
// top-level entries.
func (bi *BaseInfo) Container() *BaseInfo {
	return bi.repo.newInfo(bi.n.container)
}

func (bi *BaseInfo) IsArg() bool            { return bi.n.kind == InfoTypeArg }
func (bi *BaseInfo) IsCallable() bool       { return bi.n.kind.IsCallable() }
func (bi *BaseInfo) IsFunction() bool       { return bi.n.kind == InfoTypeFunction }
func (bi *BaseInfo) IsSignal() bool         { return bi.n.kind == InfoTypeSignal }
func (bi *BaseInfo) IsVFunc() bool          { return bi.n.kind == InfoTypeVFunc }
func (bi *BaseInfo) IsConstant() bool       { return bi.n.kind == InfoTypeConstant }
func (bi *BaseInfo) IsErrorDomain() bool    { return bi.n.kind == InfoTypeErrorDomain }
func (bi *BaseInfo) IsField() bool          { return bi.n.kind == InfoTypeField }
func (bi *BaseInfo) IsProperty() bool       { return bi.n.kind == InfoTypeProperty }
func (bi *BaseInfo) IsRegisteredType() bool { return bi.n.kind.IsRegisteredType() }
func (bi *BaseInfo) IsEnum() bool           { return bi.n.kind.IsEnum() }
func (bi *BaseInfo) IsInterface() bool      { return bi.n.kind == InfoTypeInterface }
func (bi *BaseInfo) IsObject() bool         { return bi.n.kind == InfoTypeObject }
func (bi *BaseInfo) IsStruct() bool         { return bi.n.kind.IsStruct() }
func (bi *BaseInfo) IsUnion() bool          { return bi.n.kind == InfoTypeUnion }
func (bi *BaseInfo) IsType() bool           { return bi.n.kind == InfoTypeType }
func (bi *BaseInfo) IsValue() bool          { return bi.n.kind == InfoTypeValue }

func (bi *BaseInfo) child(list []*node, i int) *BaseInfo {
	if i < 0 || i >= len(list) {
		return nil
	}
	return bi.repo.newInfo(list[i])
}

func (bi *BaseInfo) ref(list []*typeRef, i int) *BaseInfo {
	if i < 0 || i >= len(list) {
		return nil
	}
	return bi.repo.newInfo(bi.repo.resolve(list[i]))
}

// listIf returns list when the handle's kind satisfies ok, else nil. Accessors
// called on the wrong kind therefore report zero counts.
func listIf[T any](ok bool, list []T) []T {
	if ok {
		return list
	}
	return nil
}

func (bi *BaseInfo) String() string {
	if bi.n.namespace == "" {
		return fmt.Sprintf("%s %s", bi.n.kind, bi.n.name)
	}
	return fmt.Sprintf("%s %s.%s", bi.n.kind, bi.n.namespace, bi.n.name)
}
