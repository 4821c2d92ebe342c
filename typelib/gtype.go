package typelib

import (
	"sort"
	"sync"
)

// GType is a numeric runtime type identifier.
type GType uint64

const fundamentalShift = 2

// Fundamental type ids, matching GLib's G_TYPE_MAKE_FUNDAMENTAL values.
const (
	GTypeInvalid   GType = 0
	GTypeNone      GType = 1 << fundamentalShift
	GTypeInterface GType = 2 << fundamentalShift
	GTypeChar      GType = 3 << fundamentalShift
	GTypeUChar     GType = 4 << fundamentalShift
	GTypeBoolean   GType = 5 << fundamentalShift
	GTypeInt       GType = 6 << fundamentalShift
	GTypeUInt      GType = 7 << fundamentalShift
	GTypeLong      GType = 8 << fundamentalShift
	GTypeULong     GType = 9 << fundamentalShift
	GTypeInt64     GType = 10 << fundamentalShift
	GTypeUInt64    GType = 11 << fundamentalShift
	GTypeEnum      GType = 12 << fundamentalShift
	GTypeFlags     GType = 13 << fundamentalShift
	GTypeFloat     GType = 14 << fundamentalShift
	GTypeDouble    GType = 15 << fundamentalShift
	GTypeString    GType = 16 << fundamentalShift
	GTypePointer   GType = 17 << fundamentalShift
	GTypeBoxed     GType = 18 << fundamentalShift
	GTypeParam     GType = 19 << fundamentalShift
	GTypeObject    GType = 20 << fundamentalShift
	GTypeVariant   GType = 21 << fundamentalShift

	// derived ids start past G_TYPE_FUNDAMENTAL_MAX
	firstDerived GType = 256 << fundamentalShift
	derivedStep  GType = 1 << 3
)

var fundamentalNames = map[string]GType{
	"void":       GTypeNone,
	"GInterface": GTypeInterface,
	"gchar":      GTypeChar,
	"guchar":     GTypeUChar,
	"gboolean":   GTypeBoolean,
	"gint":       GTypeInt,
	"guint":      GTypeUInt,
	"glong":      GTypeLong,
	"gulong":     GTypeULong,
	"gint64":     GTypeInt64,
	"guint64":    GTypeUInt64,
	"GEnum":      GTypeEnum,
	"GFlags":     GTypeFlags,
	"gfloat":     GTypeFloat,
	"gdouble":    GTypeDouble,
	"gchararray": GTypeString,
	"gpointer":   GTypePointer,
	"GBoxed":     GTypeBoxed,
	"GParam":     GTypeParam,
	"GObject":    GTypeObject,
	"GVariant":   GTypeVariant,
}

// GTypeRegistry assigns stable ids to runtime type names.
type GTypeRegistry struct {
	byName map[string]GType
	byID   map[GType]string
	next   GType
	mu     sync.RWMutex
}

// NewGTypeRegistry returns a registry holding only the fundamental types.
func NewGTypeRegistry() *GTypeRegistry {
	r := &GTypeRegistry{
		byName: make(map[string]GType, len(fundamentalNames)),
		byID:   make(map[GType]string, len(fundamentalNames)),
		next:   firstDerived,
	}
	for name, id := range fundamentalNames {
		r.byName[name] = id
		r.byID[id] = name
	}
	return r
}

// Register returns the id for name, assigning one if it is new.
func (r *GTypeRegistry) Register(name string) GType {
	if name == "" {
		return GTypeInvalid
	}
	r.mu.RLock()
	id, ok := r.byName[name]
	r.mu.RUnlock()
	if ok {
		return id
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byName[name]; ok {
		return id
	}
	id = r.next
	r.next += derivedStep
	r.byName[name] = id
	r.byID[id] = name
	return id
}

// Lookup returns the id for name without registering it.
func (r *GTypeRegistry) Lookup(name string) (GType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[name]
	return id, ok
}

// Name returns the type name for id, or "" if it is unknown.
func (r *GTypeRegistry) Name(id GType) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID[id]
}

// Names returns every registered type name, sorted.
func (r *GTypeRegistry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}
