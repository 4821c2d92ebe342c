package luahost

import (
	"runtime"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/wippyai/gireflect/errors"
	"github.com/wippyai/gireflect/gi"
)

// Metatable names registered in the Lua state.
const (
	InfoTypeName      = "lgi.gi.info"
	InfosTypeName     = "lgi.gi.infos"
	NamespaceTypeName = "lgi.gi.namespace"
)

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the host's logger.
func WithLogger(l *zap.Logger) Option {
	return func(h *Host) {
		if l != nil {
			h.log = l
		}
	}
}

// WithGlobal installs the API table under name instead of "gi".
func WithGlobal(name string) Option {
	return func(h *Host) {
		if name != "" {
			h.global = name
		}
	}
}

// Host binds a gi.State into a Lua state.
type Host struct {
	L      *lua.LState
	st     *gi.State
	log    *zap.Logger
	global string
}

// Open registers the userdata metatables and the API table in L.
func Open(L *lua.LState, st *gi.State, opts ...Option) *Host {
	h := &Host{
		L:      L,
		st:     st,
		log:    zap.NewNop(),
		global: "gi",
	}
	for _, opt := range opts {
		opt(h)
	}

	info := L.NewTypeMetatable(InfoTypeName)
	L.SetFuncs(info, map[string]lua.LGFunction{
		"__index":    h.infoIndex,
		"__len":      h.infoLen,
		"__gc":       h.infoGC,
		"__tostring": h.toString,
	})

	infos := L.NewTypeMetatable(InfosTypeName)
	L.SetFuncs(infos, map[string]lua.LGFunction{
		"__index":    h.infosIndex,
		"__len":      h.infosLen,
		"__gc":       h.infosGC,
		"__tostring": h.toString,
	})

	ns := L.NewTypeMetatable(NamespaceTypeName)
	L.SetFuncs(ns, map[string]lua.LGFunction{
		"__index":    h.namespaceIndex,
		"__len":      h.namespaceLen,
		"__tostring": h.toString,
	})

	api := L.NewTable()
	L.SetField(api, "require", L.NewFunction(h.require))
	L.SetField(api, "release", L.NewFunction(h.release))
	mt := L.NewTable()
	L.SetField(mt, "__index", L.NewFunction(h.index))
	L.SetMetatable(api, mt)
	L.SetGlobal(h.global, api)

	return h
}

// State returns the bound gi.State.
func (h *Host) State() *gi.State { return h.st }

// Close releases every proxy still held by Lua values.
func (h *Host) Close() error {
	return h.st.Close()
}

// gi.require(namespace[, version[, typelib_dir]])
func (h *Host) require(L *lua.LState) int {
	name := L.CheckString(1)
	version := L.OptString(2, "")
	dir := L.OptString(3, "")

	ns, err := h.st.Require(name, version, dir)
	if err != nil {
		h.log.Debug("gi.require failed", zap.String("namespace", name), zap.Error(err))
		msg, code := err.Error(), 0
		if e, ok := err.(*errors.Error); ok {
			msg, code = e.Message(), e.Code
		}
		L.Push(lua.LFalse)
		L.Push(lua.LString(msg))
		L.Push(lua.LNumber(code))
		return 3
	}
	L.Push(h.push(ns))
	return 1
}

// gi.release(obj) drops a proxy or view before the garbage collector does.
func (h *Host) release(L *lua.LState) int {
	ud := L.CheckUserData(1)
	switch v := ud.Value.(type) {
	case *gi.Info:
		v.Release()
	case *gi.Infos:
		v.Release()
	}
	return 0
}

// gi[gtype] and gi[namespace]
func (h *Host) index(L *lua.LState) int {
	switch key := L.Get(2).(type) {
	case lua.LNumber:
		L.Push(h.push(h.st.Lookup(float64(key))))
	case lua.LString:
		L.Push(h.push(h.st.Lookup(string(key))))
	default:
		L.Push(lua.LNil)
	}
	return 1
}

// checkInfo resolves argument 1 through the host table, so a proxy that was
// already released raises instead of reading a dropped record.
func (h *Host) checkInfo(L *lua.LState) *gi.Info {
	ud := L.CheckUserData(1)
	p, ok := ud.Value.(*gi.Info)
	if !ok {
		L.ArgError(1, InfoTypeName+" expected")
		return nil
	}
	v, ok := h.st.Table().GetTyped(p.Handle(), gi.ClassInfo)
	if !ok {
		L.ArgError(1, "released "+InfoTypeName)
		return nil
	}
	return v.(*gi.Info)
}

func (h *Host) checkInfos(L *lua.LState) *gi.Infos {
	ud := L.CheckUserData(1)
	p, ok := ud.Value.(*gi.Infos)
	if !ok {
		L.ArgError(1, InfosTypeName+" expected")
		return nil
	}
	v, ok := h.st.Table().GetTyped(p.Handle(), gi.ClassInfos)
	if !ok {
		L.ArgError(1, "released "+InfosTypeName)
		return nil
	}
	return v.(*gi.Infos)
}

func (h *Host) checkNamespace(L *lua.LState) *gi.Namespace {
	ud := L.CheckUserData(1)
	if v, ok := ud.Value.(*gi.Namespace); ok {
		return v
	}
	L.ArgError(1, NamespaceTypeName+" expected")
	return nil
}

func (h *Host) infoIndex(L *lua.LState) int {
	info := h.checkInfo(L)
	prop := L.CheckString(2)
	L.Push(h.push(info.Index(prop)))
	return 1
}

func (h *Host) infoLen(L *lua.LState) int {
	L.Push(lua.LNumber(h.checkInfo(L).Len()))
	return 1
}

func (h *Host) infoGC(L *lua.LState) int {
	return h.release(L)
}

func (h *Host) infosIndex(L *lua.LState) int {
	infos := h.checkInfos(L)
	switch key := L.Get(2).(type) {
	case lua.LNumber:
		n := int(key)
		if float64(n) != float64(key) || n < 1 || n > infos.Len() {
			L.ArgError(2, "out of bounds")
			return 0
		}
		info, err := infos.At(n - 1)
		if err != nil {
			L.RaiseError("%s", message(err))
			return 0
		}
		L.Push(h.push(info))
	default:
		name := L.CheckString(2)
		info, err := infos.Get(name)
		if err != nil {
			L.RaiseError("%s", message(err))
			return 0
		}
		L.Push(h.push(info))
	}
	return 1
}

func (h *Host) infosLen(L *lua.LState) int {
	L.Push(lua.LNumber(h.checkInfos(L).Len()))
	return 1
}

func (h *Host) infosGC(L *lua.LState) int {
	return h.release(L)
}

func (h *Host) namespaceIndex(L *lua.LState) int {
	ns := h.checkNamespace(L)
	switch key := L.Get(2).(type) {
	case lua.LNumber:
		L.Push(h.push(ns.At(int(key))))
	default:
		L.Push(h.push(ns.Get(L.CheckString(2))))
	}
	return 1
}

func (h *Host) namespaceLen(L *lua.LState) int {
	L.Push(lua.LNumber(h.checkNamespace(L).Len()))
	return 1
}

func (h *Host) toString(L *lua.LState) int {
	ud := L.CheckUserData(1)
	if s, ok := ud.Value.(interface{ String() string }); ok {
		L.Push(lua.LString(s.String()))
	} else {
		L.Push(lua.LString(ud.String()))
	}
	return 1
}

// newUserData wraps v with the metatable typ. Proxies are released when the
// Go garbage collector reclaims the userdata.
func (h *Host) newUserData(v any, typ string, release func()) *lua.LUserData {
	ud := h.L.NewUserData()
	ud.Value = v
	h.L.SetMetatable(ud, h.L.GetTypeMetatable(typ))
	if release != nil {
		runtime.SetFinalizer(ud, func(*lua.LUserData) { release() })
	}
	return ud
}

func message(err error) string {
	if e, ok := err.(*errors.Error); ok {
		return e.Message()
	}
	return err.Error()
}
