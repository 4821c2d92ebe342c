package typelib

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/gireflect/errors"
)

// GIR XML document model. Only the parts that end up in records are decoded.
// Unqualified tags match any namespace; include is qualified because
// <c:include> names a C header, not a dependency.

type girRepository struct {
	XMLName   xml.Name      `xml:"repository"`
	Namespace *girNamespace `xml:"namespace"`
	Includes  []girInclude  `xml:"http://www.gtk.org/introspection/core/1.0 include"`
}

type girInclude struct {
	Name    string `xml:"name,attr"`
	Version string `xml:"version,attr"`
}

type girNamespace struct {
	Name          string           `xml:"name,attr"`
	Version       string           `xml:"version,attr"`
	SharedLibrary string           `xml:"shared-library,attr"`
	Aliases       []girAlias       `xml:"alias"`
	Classes       []girClass       `xml:"class"`
	Interfaces    []girClass       `xml:"interface"`
	Records       []girRecord      `xml:"record"`
	Unions        []girRecord      `xml:"union"`
	Boxed         []girRecord      `xml:"boxed"`
	Enums         []girEnum        `xml:"enumeration"`
	Bitfields     []girEnum        `xml:"bitfield"`
	ErrorDomains  []girErrorDomain `xml:"errordomain"`
	Functions     []girCallable    `xml:"function"`
	Callbacks     []girCallable    `xml:"callback"`
	Constants     []girConstant    `xml:"constant"`
}

type girInfo struct {
	Name           string `xml:"name,attr"`
	Deprecated     string `xml:"deprecated,attr"`
	Introspectable string `xml:"introspectable,attr"`
}

func (i girInfo) deprecated() bool { return i.Deprecated != "" && i.Deprecated != "0" }
func (i girInfo) skipped() bool    { return i.Introspectable == "0" }

// girTyped is the type slot shared by parameters, fields, properties,
// constants and aliases: exactly one of the three is normally present.
type girTyped struct {
	Type    *girType  `xml:"type"`
	Array   *girArray `xml:"array"`
	Varargs *struct{} `xml:"varargs"`
}

type girType struct {
	Name   string     `xml:"name,attr"`
	CType  string     `xml:"http://www.gtk.org/introspection/c/1.0 type,attr"`
	Types  []girType  `xml:"type"`
	Arrays []girArray `xml:"array"`
}

type girArray struct {
	Type  *girType  `xml:"type"`
	Array *girArray `xml:"array"`
	Name  string    `xml:"name,attr"`
	CType string    `xml:"http://www.gtk.org/introspection/c/1.0 type,attr"`
}

type girAlias struct {
	girInfo
	girTyped
}

type girRef struct {
	Name string `xml:"name,attr"`
}

type girClass struct {
	girInfo
	TypeName       string        `xml:"type-name,attr"`
	Parent         string        `xml:"parent,attr"`
	Implements     []girRef      `xml:"implements"`
	Prerequisites  []girRef      `xml:"prerequisite"`
	Fields         []girField    `xml:"field"`
	Constructors   []girCallable `xml:"constructor"`
	Methods        []girCallable `xml:"method"`
	Functions      []girCallable `xml:"function"`
	VirtualMethods []girCallable `xml:"virtual-method"`
	Properties     []girProperty `xml:"property"`
	Signals        []girCallable `xml:"signal"`
	Constants      []girConstant `xml:"constant"`
}

type girRecord struct {
	girInfo
	TypeName         string        `xml:"type-name,attr"`
	IsGTypeStructFor string        `xml:"is-gtype-struct-for,attr"`
	Fields           []girField    `xml:"field"`
	Constructors     []girCallable `xml:"constructor"`
	Methods          []girCallable `xml:"method"`
	Functions        []girCallable `xml:"function"`
}

type girField struct {
	girInfo
	girTyped
	Callback *girCallable `xml:"callback"`
}

type girProperty struct {
	girInfo
	girTyped
	Readable      string `xml:"readable,attr"`
	Writable      string `xml:"writable,attr"`
	Construct     string `xml:"construct,attr"`
	ConstructOnly string `xml:"construct-only,attr"`
}

type girCallable struct {
	girInfo
	CIdentifier string         `xml:"identifier,attr"`
	Throws      string         `xml:"throws,attr"`
	Invoker     string         `xml:"invoker,attr"`
	GetProperty string         `xml:"get-property,attr"`
	SetProperty string         `xml:"set-property,attr"`
	When        string         `xml:"when,attr"`
	NoRecurse   string         `xml:"no-recurse,attr"`
	Detailed    string         `xml:"detailed,attr"`
	Action      string         `xml:"action,attr"`
	NoHooks     string         `xml:"no-hooks,attr"`
	ReturnValue *girParam      `xml:"return-value"`
	Parameters  *girParameters `xml:"parameters"`
}

type girParameters struct {
	Instance *girParam  `xml:"instance-parameter"`
	Params   []girParam `xml:"parameter"`
}

type girParam struct {
	girInfo
	girTyped
	Direction string `xml:"direction,attr"`
	Transfer  string `xml:"transfer-ownership,attr"`
	Nullable  string `xml:"nullable,attr"`
	AllowNone string `xml:"allow-none,attr"`
	Optional  string `xml:"optional,attr"`
}

type girEnum struct {
	girInfo
	TypeName  string        `xml:"type-name,attr"`
	Members   []girMember   `xml:"member"`
	Functions []girCallable `xml:"function"`
}

type girMember struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type girErrorDomain struct {
	girInfo
	GetQuark string `xml:"get-quark,attr"`
}

type girConstant struct {
	girInfo
	girTyped
	Value string `xml:"value,attr"`
}

func isSet(attr string) bool { return attr == "1" || attr == "true" }

// parseGIR decodes a GIR document into a namespace directory. Records are
// built lazily by the entries' builders.
func parseGIR(path string, data []byte, log *zap.Logger) (*namespace, error) {
	var doc girRepository
	dec := xml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.ParseFailed(path, err)
	}
	if doc.Namespace == nil || doc.Namespace.Name == "" {
		return nil, errors.InvalidData(errors.PhaseParse, []string{"repository"}, "missing <namespace>")
	}
	gns := doc.Namespace

	ns := newNamespace(gns.Name, gns.Version, path)
	for _, inc := range doc.Includes {
		ns.includes = append(ns.includes, inc.Name+"-"+inc.Version)
	}
	ns.aliases = make(map[string]*girTyped, len(gns.Aliases))
	for i := range gns.Aliases {
		a := &gns.Aliases[i]
		ns.aliases[a.Name] = &a.girTyped
	}

	b := &girBuilder{ns: ns, log: log}
	add := func(info girInfo, kind InfoType, typeName string, build func() (*node, error)) {
		if info.skipped() || info.Name == "" {
			return
		}
		if !ns.add(&entry{name: info.Name, kind: kind, typeName: typeName, build: build}) {
			log.Warn("duplicate entry ignored",
				zap.String("namespace", ns.name),
				zap.String("name", info.Name))
		}
	}

	for i := range gns.Classes {
		c := &gns.Classes[i]
		add(c.girInfo, InfoTypeObject, c.TypeName, func() (*node, error) { return b.class(InfoTypeObject, c), nil })
	}
	for i := range gns.Interfaces {
		c := &gns.Interfaces[i]
		add(c.girInfo, InfoTypeInterface, c.TypeName, func() (*node, error) { return b.class(InfoTypeInterface, c), nil })
	}
	for i := range gns.Records {
		r := &gns.Records[i]
		add(r.girInfo, InfoTypeStruct, r.TypeName, func() (*node, error) { return b.record(InfoTypeStruct, r), nil })
	}
	for i := range gns.Boxed {
		r := &gns.Boxed[i]
		add(r.girInfo, InfoTypeBoxed, r.TypeName, func() (*node, error) { return b.record(InfoTypeBoxed, r), nil })
	}
	for i := range gns.Unions {
		r := &gns.Unions[i]
		add(r.girInfo, InfoTypeUnion, r.TypeName, func() (*node, error) { return b.record(InfoTypeUnion, r), nil })
	}
	for i := range gns.Enums {
		e := &gns.Enums[i]
		add(e.girInfo, InfoTypeEnum, e.TypeName, func() (*node, error) { return b.enum(InfoTypeEnum, e) })
	}
	for i := range gns.Bitfields {
		e := &gns.Bitfields[i]
		add(e.girInfo, InfoTypeFlags, e.TypeName, func() (*node, error) { return b.enum(InfoTypeFlags, e) })
	}
	for i := range gns.ErrorDomains {
		d := &gns.ErrorDomains[i]
		add(d.girInfo, InfoTypeErrorDomain, "", func() (*node, error) {
			n := newNode(InfoTypeErrorDomain, ns.name, d.Name, nil)
			n.deprecated = d.deprecated()
			n.symbol = d.GetQuark
			return n, nil
		})
	}
	for i := range gns.Functions {
		f := &gns.Functions[i]
		add(f.girInfo, InfoTypeFunction, "", func() (*node, error) { return b.callable(InfoTypeFunction, f, nil, 0), nil })
	}
	for i := range gns.Callbacks {
		f := &gns.Callbacks[i]
		add(f.girInfo, InfoTypeCallback, "", func() (*node, error) { return b.callable(InfoTypeCallback, f, nil, 0), nil })
	}
	for i := range gns.Constants {
		c := &gns.Constants[i]
		add(c.girInfo, InfoTypeConstant, "", func() (*node, error) { return b.constant(c, nil) })
	}

	log.Debug("parsed GIR",
		zap.String("namespace", ns.name),
		zap.String("version", ns.version),
		zap.Int("entries", len(ns.entries)),
		zap.Int("aliases", len(ns.aliases)))
	return ns, nil
}

type girBuilder struct {
	ns  *namespace
	log *zap.Logger
}

const maxAliasDepth = 16

var girBasicTypes = map[string]TypeTag{
	"gboolean": TagBoolean,
	"gint8":    TagInt8,
	"guint8":   TagUint8,
	"gint16":   TagInt16,
	"guint16":  TagUint16,
	"gint32":   TagInt32,
	"guint32":  TagUint32,
	"gint64":   TagInt64,
	"guint64":  TagUint64,
	"gchar":    TagInt8,
	"guchar":   TagUint8,
	"gshort":   TagInt16,
	"gushort":  TagUint16,
	"gint":     TagInt32,
	"guint":    TagUint32,
	"glong":    TagInt64,
	"gulong":   TagUint64,
	"gssize":   TagInt64,
	"gsize":    TagUint64,
	"gintptr":  TagInt64,
	"guintptr": TagUint64,
	"gfloat":   TagFloat,
	"gdouble":  TagDouble,
	"GType":    TagGType,
	"utf8":     TagUTF8,
	"filename": TagFilename,
	"gunichar": TagUnichar,
	// gunichar2 is UTF-16 code unit storage
	"gunichar2": TagUint16,
}

func (b *girBuilder) qualify(name string) (string, string) {
	if ns, local, ok := strings.Cut(name, "."); ok {
		return ns, local
	}
	return b.ns.name, name
}

func (b *girBuilder) alias(ns, name string) *girTyped {
	owner := b.ns.dependency(ns)
	if owner == nil {
		return nil
	}
	return owner.aliases[name]
}

func (b *girBuilder) typed(t girTyped, container *node) *node {
	return b.typedDepth(t, container, 0)
}

func (b *girBuilder) typedDepth(t girTyped, container *node, depth int) *node {
	switch {
	case t.Array != nil:
		return b.array(t.Array, container, depth)
	case t.Type != nil:
		return b.named(t.Type, container, depth)
	}
	return basicType(TagVoid, container)
}

func (b *girBuilder) named(t *girType, container *node, depth int) *node {
	pointer := strings.HasSuffix(t.CType, "*")

	if tag, ok := girBasicTypes[t.Name]; ok {
		n := basicType(tag, container)
		n.pointer = n.pointer || pointer
		return n
	}
	switch t.Name {
	case "", "none":
		return basicType(TagVoid, container)
	case "gpointer", "gconstpointer":
		n := basicType(TagVoid, container)
		n.pointer = true
		return n
	}

	ns, local := b.qualify(t.Name)
	switch ns + "." + local {
	case "GObject.Type":
		return basicType(TagGType, container)
	case "GLib.List", "GLib.SList", "GLib.HashTable":
		tag := TagGList
		if local == "SList" {
			tag = TagGSList
		} else if local == "HashTable" {
			tag = TagGHash
		}
		n := basicType(tag, container)
		n.pointer = true
		n.params = b.params(t, n, tag.ParamCount(), depth)
		return n
	case "GLib.Error":
		n := basicType(TagError, container)
		n.pointer = true
		return n
	}

	if depth < maxAliasDepth {
		if a := b.alias(ns, local); a != nil {
			n := b.typedDepth(*a, container, depth+1)
			n.pointer = n.pointer || pointer
			return n
		}
	}

	n := basicType(TagInterface, container)
	n.pointer = pointer
	n.iface = &typeRef{namespace: ns, name: local}
	return n
}

// params builds exactly count element types, padding with gpointer.
func (b *girBuilder) params(t *girType, container *node, count, depth int) []*node {
	var out []*node
	for i := range t.Types {
		out = append(out, b.named(&t.Types[i], container, depth))
	}
	for i := range t.Arrays {
		out = append(out, b.array(&t.Arrays[i], container, depth))
	}
	for len(out) < count {
		n := basicType(TagVoid, container)
		n.pointer = true
		out = append(out, n)
	}
	return out[:count]
}

func (b *girBuilder) array(a *girArray, container *node, depth int) *node {
	n := basicType(TagArray, container)
	n.pointer = true

	_, local := b.qualify(a.Name)
	switch {
	case a.Name == "":
		n.arrayType = ArrayC
	case local == "Array":
		n.arrayType = ArrayArray
	case local == "PtrArray":
		n.arrayType = ArrayPtrArray
	case local == "ByteArray":
		n.arrayType = ArrayByteArray
	}

	var elem *node
	switch {
	case a.Type != nil:
		elem = b.named(a.Type, n, depth)
	case a.Array != nil:
		elem = b.array(a.Array, n, depth)
	case n.arrayType == ArrayByteArray:
		elem = basicType(TagUint8, n)
	default:
		elem = basicType(TagVoid, n)
	}
	n.params = []*node{elem}
	return n
}

func (b *girBuilder) class(kind InfoType, c *girClass) *node {
	n := newNode(kind, b.ns.name, c.Name, nil)
	n.deprecated = c.deprecated()
	n.typeName = c.TypeName

	if kind == InfoTypeObject && c.Parent != "" {
		ns, local := b.qualify(c.Parent)
		n.parent = &typeRef{namespace: ns, name: local}
	}
	for _, ref := range c.Implements {
		ns, local := b.qualify(ref.Name)
		n.ifaces = append(n.ifaces, &typeRef{namespace: ns, name: local})
	}
	for _, ref := range c.Prerequisites {
		ns, local := b.qualify(ref.Name)
		n.prereqs = append(n.prereqs, &typeRef{namespace: ns, name: local})
	}

	invokers := map[string]bool{}
	for i := range c.VirtualMethods {
		vm := &c.VirtualMethods[i]
		if vm.Invoker != "" {
			invokers[vm.Invoker] = true
		}
		if !vm.skipped() {
			n.vfuncs = append(n.vfuncs, b.callable(InfoTypeVFunc, vm, n, 0))
		}
	}

	if kind == InfoTypeObject {
		for i := range c.Fields {
			n.fields = append(n.fields, b.field(&c.Fields[i], n))
		}
	}
	n.methods = b.methods(n, c.Constructors, c.Methods, c.Functions, invokers)
	for i := range c.Properties {
		if !c.Properties[i].skipped() {
			n.properties = append(n.properties, b.property(&c.Properties[i], n))
		}
	}
	for i := range c.Signals {
		if !c.Signals[i].skipped() {
			n.signals = append(n.signals, b.callable(InfoTypeSignal, &c.Signals[i], n, 0))
		}
	}
	for i := range c.Constants {
		cn, err := b.constant(&c.Constants[i], n)
		if err != nil {
			b.log.Warn("constant dropped", zap.String("container", c.Name), zap.Error(err))
			continue
		}
		n.constants = append(n.constants, cn)
	}
	return n
}

// methods orders constructors, then methods, then static functions.
func (b *girBuilder) methods(container *node, ctors, methods, funcs []girCallable, invokers map[string]bool) []*node {
	var out []*node
	groups := []struct {
		list  []girCallable
		flags FunctionFlags
	}{
		{ctors, FunctionIsConstructor},
		{methods, 0},
		{funcs, 0},
	}
	for _, g := range groups {
		for i := range g.list {
			f := &g.list[i]
			if f.skipped() {
				continue
			}
			flags := g.flags
			if invokers[f.Name] {
				flags |= FunctionWrapsVFunc
			}
			out = append(out, b.callable(InfoTypeFunction, f, container, flags))
		}
	}
	return out
}

func (b *girBuilder) record(kind InfoType, r *girRecord) *node {
	n := newNode(kind, b.ns.name, r.Name, nil)
	n.deprecated = r.deprecated()
	n.typeName = r.TypeName
	n.gtypeStruct = r.IsGTypeStructFor != ""
	for i := range r.Fields {
		n.fields = append(n.fields, b.field(&r.Fields[i], n))
	}
	n.methods = b.methods(n, r.Constructors, r.Methods, r.Functions, nil)
	return n
}

func (b *girBuilder) enum(kind InfoType, e *girEnum) (*node, error) {
	n := newNode(kind, b.ns.name, e.Name, nil)
	n.deprecated = e.deprecated()
	n.typeName = e.TypeName
	n.storage = TagUint32
	for _, m := range e.Members {
		v, err := strconv.ParseInt(m.Value, 0, 64)
		if err != nil {
			return nil, errors.New(errors.PhaseParse, errors.KindInvalidData).
				Path(b.ns.name, e.Name, m.Name).
				Value(m.Value).
				Cause(err).
				Detail("member %s: invalid value %q", m.Name, m.Value).
				Build()
		}
		if v < 0 {
			n.storage = TagInt32
		}
		val := newNode(InfoTypeValue, b.ns.name, m.Name, n)
		val.value = v
		n.values = append(n.values, val)
	}
	n.methods = b.methods(n, nil, nil, e.Functions, nil)
	return n, nil
}

func (b *girBuilder) callable(kind InfoType, c *girCallable, container *node, flags FunctionFlags) *node {
	n := newNode(kind, b.ns.name, c.Name, container)
	n.deprecated = c.deprecated()
	n.symbol = c.CIdentifier
	n.throws = isSet(c.Throws)

	switch kind {
	case InfoTypeFunction:
		if c.Parameters != nil && c.Parameters.Instance != nil {
			flags |= FunctionIsMethod
		}
		if c.GetProperty != "" {
			flags |= FunctionIsGetter
		}
		if c.SetProperty != "" {
			flags |= FunctionIsSetter
		}
		if n.throws {
			flags |= FunctionThrows
		}
		n.flags = uint32(flags)
	case InfoTypeSignal:
		n.flags = uint32(girSignalFlags(c))
	}

	if c.ReturnValue != nil {
		n.ret = b.typed(c.ReturnValue.girTyped, n)
	} else {
		n.ret = basicType(TagVoid, n)
	}
	if c.Parameters != nil {
		for i := range c.Parameters.Params {
			n.args = append(n.args, b.arg(&c.Parameters.Params[i], n))
		}
	}
	return n
}

func girSignalFlags(c *girCallable) SignalFlags {
	var f SignalFlags
	switch c.When {
	case "first":
		f |= SignalRunFirst
	case "last":
		f |= SignalRunLast
	case "cleanup":
		f |= SignalRunCleanup
	}
	if isSet(c.NoRecurse) {
		f |= SignalNoRecurse
	}
	if isSet(c.Detailed) {
		f |= SignalDetailed
	}
	if isSet(c.Action) {
		f |= SignalAction
	}
	if isSet(c.NoHooks) {
		f |= SignalNoHooks
	}
	return f
}

func (b *girBuilder) arg(p *girParam, container *node) *node {
	n := newNode(InfoTypeArg, b.ns.name, p.Name, container)
	switch p.Direction {
	case "out":
		n.direction = DirectionOut
	case "inout":
		n.direction = DirectionInOut
	}
	switch p.Transfer {
	case "container":
		n.transfer = TransferContainer
	case "full":
		n.transfer = TransferEverything
	}
	n.nullable = isSet(p.Nullable) || isSet(p.AllowNone)
	n.optional = isSet(p.Optional)
	n.typ = b.typed(p.girTyped, n)
	return n
}

func (b *girBuilder) field(f *girField, container *node) *node {
	n := newNode(InfoTypeField, b.ns.name, f.Name, container)
	n.deprecated = f.deprecated()
	if f.Callback != nil {
		t := basicType(TagInterface, n)
		t.pointer = true
		cb := b.callable(InfoTypeCallback, f.Callback, n, 0)
		t.iface = &typeRef{inline: cb}
		n.typ = t
		return n
	}
	n.typ = b.typed(f.girTyped, n)
	return n
}

func (b *girBuilder) property(p *girProperty, container *node) *node {
	n := newNode(InfoTypeProperty, b.ns.name, p.Name, container)
	n.deprecated = p.deprecated()
	var flags PropertyFlags
	if p.Readable != "0" {
		flags |= PropertyReadable
	}
	if isSet(p.Writable) {
		flags |= PropertyWritable
	}
	if isSet(p.Construct) {
		flags |= PropertyConstruct
	}
	if isSet(p.ConstructOnly) {
		flags |= PropertyConstructOnly
	}
	n.flags = uint32(flags)
	n.typ = b.typed(p.girTyped, n)
	return n
}

func (b *girBuilder) constant(c *girConstant, container *node) (*node, error) {
	n := newNode(InfoTypeConstant, b.ns.name, c.Name, container)
	n.deprecated = c.deprecated()
	n.constant = c.Value
	n.typ = b.typed(c.girTyped, n)
	if n.typ.tag.IsBasic() && n.typ.tag != TagVoid && decodeConstant(n.typ.tag, c.Value) == nil {
		return nil, errors.New(errors.PhaseParse, errors.KindInvalidData).
			Path(b.ns.name, c.Name).
			Value(c.Value).
			Detail("constant %s: value %q does not match type %s", c.Name, c.Value, n.typ.tag).
			Build()
	}
	return n, nil
}
