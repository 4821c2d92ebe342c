package typelib

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	"github.com/wippyai/gireflect/errors"
)

// WIT text typelibs. A file holds one package; every interface and world in
// it is flattened into the namespace. Named records, variants, enums, flags
// and resources become registered types, freestanding functions become
// functions, and type aliases resolve transparently as in GIR.

// witExpr is an unresolved type expression, e.g. list<option<point>>.
type witExpr struct {
	name string
	args []*witExpr
}

type witParam struct {
	typ  *witExpr
	name string
}

type witFunc struct {
	result *witExpr
	name   string
	params []witParam
	static bool
	ctor   bool
}

type witDecl struct {
	kind    string // record, variant, enum, flags, resource, type
	name    string
	members []witParam // record fields, variant cases (typ may be nil), enum/flags cases
	alias   *witExpr
	funcs   []witFunc
}

type witFile struct {
	pkg     string
	version string
	decls   []*witDecl
	funcs   []witFunc
}

func parseWIT(path string, data []byte, log *zap.Logger) (*namespace, error) {
	p := &witParser{toks: witTokenize(string(data))}
	file, err := p.file()
	if err != nil {
		return nil, errors.ParseFailed(path, err)
	}
	if file.pkg == "" {
		return nil, errors.InvalidData(errors.PhaseParse, nil, "missing package declaration")
	}

	version := file.version
	if v, ok := ParseVersion(version); ok {
		version = fmt.Sprintf("%d.%d", v.Major, v.Minor)
	}
	if version == "" {
		// fall back to the file name, Name-Version.wit
		base := strings.TrimSuffix(filepath.Base(path), ".wit")
		_, version, _ = strings.Cut(base, "-")
	}

	ns := newNamespace(witCamel(file.pkg), version, path)
	w := &witBuilder{ns: ns, defs: map[string]*wit.TypeDef{}, decls: map[string]*witDecl{}, log: log}
	if err := w.declare(file); err != nil {
		return nil, errors.ParseFailed(path, err)
	}

	for _, d := range file.decls {
		if d.kind == "type" {
			continue
		}
		td := w.defs[d.name]
		kind := witDeclKind(d.kind)
		name := witCamel(d.name)
		e := &entry{
			name:     name,
			kind:     kind,
			typeName: ns.name + name,
			build:    func() (*node, error) { return w.typeDef(name, kind, td, d) },
		}
		if !ns.add(e) {
			log.Warn("name collision in WIT import",
				zap.String("namespace", ns.name),
				zap.String("name", name))
		}
	}
	for i := range file.funcs {
		f := &file.funcs[i]
		name := witSnake(f.name)
		e := &entry{
			name:  name,
			kind:  InfoTypeFunction,
			build: func() (*node, error) { return w.function(f, nil) },
		}
		if !ns.add(e) {
			log.Warn("name collision in WIT import",
				zap.String("namespace", ns.name),
				zap.String("name", name))
		}
	}

	log.Debug("parsed WIT",
		zap.String("namespace", ns.name),
		zap.String("version", ns.version),
		zap.Int("entries", len(ns.entries)))
	return ns, nil
}

func witDeclKind(kind string) InfoType {
	switch kind {
	case "record":
		return InfoTypeStruct
	case "variant":
		return InfoTypeUnion
	case "enum":
		return InfoTypeEnum
	case "flags":
		return InfoTypeFlags
	case "resource":
		return InfoTypeObject
	}
	return InfoTypeInvalid
}

type witBuilder struct {
	ns    *namespace
	defs  map[string]*wit.TypeDef
	decls map[string]*witDecl
	log   *zap.Logger
}

// declare creates a wit.TypeDef per named declaration, then fills in kinds so
// that declarations may reference each other in any order.
func (w *witBuilder) declare(file *witFile) error {
	for _, d := range file.decls {
		if _, dup := w.defs[d.name]; dup {
			return errors.New(errors.PhaseParse, errors.KindInvalidData).
				Path(d.name).
				Value(d.name).
				Detail("type %s declared twice", d.name).
				Build()
		}
		name := d.name
		w.defs[d.name] = &wit.TypeDef{Name: &name}
		w.decls[d.name] = d
	}
	if err := w.checkAliases(file); err != nil {
		return err
	}
	for _, d := range file.decls {
		td := w.defs[d.name]
		switch d.kind {
		case "record":
			rec := &wit.Record{}
			for _, m := range d.members {
				t, err := w.resolve(m.typ)
				if err != nil {
					return errors.New(errors.PhaseParse, errors.KindInvalidData).
						Path(d.name, m.name).
						Cause(err).
						Detail("record %s field %s", d.name, m.name).
						Build()
				}
				rec.Fields = append(rec.Fields, wit.Field{Name: m.name, Type: t})
			}
			td.Kind = rec
		case "variant":
			v := &wit.Variant{}
			for _, m := range d.members {
				var t wit.Type
				if m.typ != nil {
					var err error
					if t, err = w.resolve(m.typ); err != nil {
						return errors.New(errors.PhaseParse, errors.KindInvalidData).
							Path(d.name, m.name).
							Cause(err).
							Detail("variant %s case %s", d.name, m.name).
							Build()
					}
				}
				v.Cases = append(v.Cases, wit.Case{Name: m.name, Type: t})
			}
			td.Kind = v
		case "enum":
			e := &wit.Enum{}
			for _, m := range d.members {
				e.Cases = append(e.Cases, wit.EnumCase{Name: m.name})
			}
			td.Kind = e
		case "flags":
			f := &wit.Flags{}
			for _, m := range d.members {
				f.Flags = append(f.Flags, wit.Flag{Name: m.name})
			}
			td.Kind = f
		case "resource":
			td.Kind = &wit.Resource{}
		case "type":
			t, err := w.resolve(d.alias)
			if err != nil {
				return errors.New(errors.PhaseParse, errors.KindInvalidData).
					Path(d.name).
					Cause(err).
					Detail("type %s", d.name).
					Build()
			}
			td.Kind = t
		}
	}
	return nil
}

// checkAliases rejects type aliases that never bottom out in a primitive or
// a named record, variant, enum, flags or resource: type a = list<a>.
func (w *witBuilder) checkAliases(file *witFile) error {
	const (
		visiting = iota + 1
		done
	)
	state := make(map[string]int)

	var visit func(name string) error
	var walk func(e *witExpr) error
	walk = func(e *witExpr) error {
		if d, ok := w.decls[e.name]; ok && d.kind == "type" {
			if err := visit(d.name); err != nil {
				return err
			}
		}
		for _, arg := range e.args {
			if err := walk(arg); err != nil {
				return err
			}
		}
		return nil
	}
	visit = func(name string) error {
		switch state[name] {
		case visiting:
			return errors.New(errors.PhaseParse, errors.KindInvalidData).
				Path(name).
				Value(name).
				Detail("type %s: alias cycle", name).
				Build()
		case done:
			return nil
		}
		state[name] = visiting
		if err := walk(w.decls[name].alias); err != nil {
			return err
		}
		state[name] = done
		return nil
	}

	for _, d := range file.decls {
		if d.kind != "type" {
			continue
		}
		if err := visit(d.name); err != nil {
			return err
		}
	}
	return nil
}

// resolve maps a type expression onto the wit type model.
func (w *witBuilder) resolve(e *witExpr) (wit.Type, error) {
	arg := func(i int) (wit.Type, error) {
		if i >= len(e.args) {
			return nil, errors.InvalidData(errors.PhaseParse, nil, e.name+": missing type parameter")
		}
		if e.args[i].name == "_" {
			return nil, nil
		}
		return w.resolve(e.args[i])
	}

	switch e.name {
	case "list", "option":
		t, err := arg(0)
		if err != nil {
			return nil, err
		}
		if e.name == "list" {
			return &wit.TypeDef{Kind: &wit.List{Type: t}}, nil
		}
		return &wit.TypeDef{Kind: &wit.Option{Type: t}}, nil
	case "result":
		r := &wit.Result{}
		if len(e.args) > 0 {
			ok, err := arg(0)
			if err != nil {
				return nil, err
			}
			r.OK = ok
		}
		if len(e.args) > 1 {
			er, err := arg(1)
			if err != nil {
				return nil, err
			}
			r.Err = er
		}
		return &wit.TypeDef{Kind: r}, nil
	case "tuple":
		tup := &wit.Tuple{}
		for i := range e.args {
			t, err := arg(i)
			if err != nil {
				return nil, err
			}
			tup.Types = append(tup.Types, t)
		}
		return &wit.TypeDef{Kind: tup}, nil
	case "own", "borrow":
		if len(e.args) != 1 {
			return nil, errors.InvalidData(errors.PhaseParse, nil, e.name+": expected one resource")
		}
		res, ok := w.defs[e.args[0].name]
		if !ok {
			return nil, errors.NotFound(errors.PhaseParse, "resource", e.args[0].name)
		}
		if e.name == "own" {
			return &wit.TypeDef{Kind: &wit.Own{Type: res}}, nil
		}
		return &wit.TypeDef{Kind: &wit.Borrow{Type: res}}, nil
	}

	if td, ok := w.defs[e.name]; ok {
		return td, nil
	}
	t, err := wit.ParseType(e.name)
	if err != nil {
		return nil, errors.NotFound(errors.PhaseParse, "type", e.name)
	}
	return t, nil
}

func (w *witBuilder) typeDef(name string, kind InfoType, td *wit.TypeDef, d *witDecl) (*node, error) {
	n := newNode(kind, w.ns.name, name, nil)
	n.typeName = w.ns.name + name

	switch k := td.Kind.(type) {
	case *wit.Record:
		for _, f := range k.Fields {
			field := newNode(InfoTypeField, w.ns.name, witSnake(f.Name), n)
			field.typ = w.typeNode(f.Type, field)
			n.fields = append(n.fields, field)
		}
	case *wit.Variant:
		for _, c := range k.Cases {
			field := newNode(InfoTypeField, w.ns.name, witSnake(c.Name), n)
			field.typ = w.typeNode(c.Type, field)
			n.fields = append(n.fields, field)
		}
	case *wit.Enum:
		n.storage = TagUint32
		for i, c := range k.Cases {
			v := newNode(InfoTypeValue, w.ns.name, witSnake(c.Name), n)
			v.value = int64(i)
			n.values = append(n.values, v)
		}
	case *wit.Flags:
		if len(k.Flags) > 32 {
			return nil, errors.Unsupported(errors.PhaseParse,
				fmt.Sprintf("flags %s: %d flags exceed 32-bit storage", name, len(k.Flags)))
		}
		n.storage = TagUint32
		for i, f := range k.Flags {
			v := newNode(InfoTypeValue, w.ns.name, witSnake(f.Name), n)
			v.value = int64(1) << i
			n.values = append(n.values, v)
		}
	case *wit.Resource:
		for i := range d.funcs {
			m, err := w.function(&d.funcs[i], n)
			if err != nil {
				return nil, err
			}
			n.methods = append(n.methods, m)
		}
	default:
		return nil, errors.Unsupported(errors.PhaseParse, fmt.Sprintf("%s: type definition %T", name, td.Kind))
	}
	return n, nil
}

func (w *witBuilder) function(f *witFunc, owner *node) (*node, error) {
	name := witSnake(f.name)
	if f.ctor {
		name = "new"
	}
	n := newNode(InfoTypeFunction, w.ns.name, name, owner)

	var flags FunctionFlags
	switch {
	case f.ctor:
		flags |= FunctionIsConstructor
	case owner != nil && !f.static:
		flags |= FunctionIsMethod
	}

	for _, p := range f.params {
		t, err := w.resolve(p.typ)
		if err != nil {
			return nil, errors.New(errors.PhaseParse, errors.KindInvalidData).
				Path(f.name, p.name).
				Cause(err).
				Detail("%s: param %s", f.name, p.name).
				Build()
		}
		arg := newNode(InfoTypeArg, w.ns.name, witSnake(p.name), n)
		arg.typ = w.typeNode(t, arg)
		if td, ok := t.(*wit.TypeDef); ok {
			if _, opt := td.Kind.(*wit.Option); opt {
				arg.nullable = true
			}
		}
		n.args = append(n.args, arg)
	}

	if f.result == nil {
		n.ret = basicType(TagVoid, n)
	} else {
		t, err := w.resolve(f.result)
		if err != nil {
			return nil, errors.New(errors.PhaseParse, errors.KindInvalidData).
				Path(f.name).
				Cause(err).
				Detail("%s: result", f.name).
				Build()
		}
		n.ret = w.typeNode(t, n)
		if td, ok := t.(*wit.TypeDef); ok {
			if _, isResult := td.Kind.(*wit.Result); isResult {
				flags |= FunctionThrows
				n.throws = true
			}
		}
	}
	n.flags = uint32(flags)
	return n, nil
}

// typeNode converts a wit type into a type signature record.
func (w *witBuilder) typeNode(t wit.Type, container *node) *node {
	switch t := t.(type) {
	case nil:
		return basicType(TagVoid, container)
	case wit.Bool:
		return basicType(TagBoolean, container)
	case wit.S8:
		return basicType(TagInt8, container)
	case wit.U8:
		return basicType(TagUint8, container)
	case wit.S16:
		return basicType(TagInt16, container)
	case wit.U16:
		return basicType(TagUint16, container)
	case wit.S32:
		return basicType(TagInt32, container)
	case wit.U32:
		return basicType(TagUint32, container)
	case wit.S64:
		return basicType(TagInt64, container)
	case wit.U64:
		return basicType(TagUint64, container)
	case wit.F32:
		return basicType(TagFloat, container)
	case wit.F64:
		return basicType(TagDouble, container)
	case wit.Char:
		return basicType(TagUnichar, container)
	case wit.String:
		return basicType(TagUTF8, container)
	case *wit.TypeDef:
		return w.typeDefNode(t, container)
	}
	return w.ifaceNode(fmt.Sprintf("%T", t), container)
}

func (w *witBuilder) typeDefNode(td *wit.TypeDef, container *node) *node {
	if td.Name != nil {
		if d, ok := w.decls[*td.Name]; ok && d.kind != "type" {
			n := w.ifaceNode(witCamel(*td.Name), container)
			n.pointer = d.kind != "enum" && d.kind != "flags"
			return n
		}
	}
	switch k := td.Kind.(type) {
	case *wit.List:
		n := basicType(TagArray, container)
		n.pointer = true
		n.arrayType = ArrayC
		n.params = []*node{w.typeNode(k.Type, n)}
		return n
	case *wit.Option:
		n := w.typeNode(k.Type, container)
		n.pointer = true
		return n
	case *wit.Own:
		return w.handleNode(k.Type, container)
	case *wit.Borrow:
		return w.handleNode(k.Type, container)
	case *wit.Result:
		return w.ifaceNode("result", container)
	case *wit.Tuple:
		return w.ifaceNode("tuple", container)
	case wit.Type:
		return w.typeNode(k, container)
	}
	return w.ifaceNode("unknown", container)
}

func (w *witBuilder) handleNode(res *wit.TypeDef, container *node) *node {
	if res == nil || res.Name == nil {
		return w.ifaceNode("resource", container)
	}
	n := w.ifaceNode(witCamel(*res.Name), container)
	n.pointer = true
	return n
}

func (w *witBuilder) ifaceNode(name string, container *node) *node {
	n := basicType(TagInterface, container)
	n.iface = &typeRef{namespace: w.ns.name, name: name}
	return n
}

// witCamel turns kebab-case into CamelCase: "point-2d" -> "Point2d".
func witCamel(s string) string {
	s = strings.TrimPrefix(s, "%")
	var b strings.Builder
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '_' }) {
		rs := []rune(part)
		rs[0] = unicode.ToUpper(rs[0])
		b.WriteString(string(rs))
	}
	return b.String()
}

// witSnake turns kebab-case into snake_case.
func witSnake(s string) string {
	return strings.ReplaceAll(strings.TrimPrefix(s, "%"), "-", "_")
}
