package luahost

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/wippyai/gireflect/gi"
	"github.com/wippyai/gireflect/typelib"
)

// push converts a value produced by gi into a Lua value.
func (h *Host) push(v any) lua.LValue {
	switch v := v.(type) {
	case nil:
		return lua.LNil
	case *gi.Info:
		if v == nil {
			return lua.LNil
		}
		return h.newUserData(v, InfoTypeName, v.Release)
	case *gi.Infos:
		if v == nil {
			return lua.LNil
		}
		return h.newUserData(v, InfosTypeName, v.Release)
	case *gi.Namespace:
		if v == nil {
			return lua.LNil
		}
		return h.newUserData(v, NamespaceTypeName, nil)
	case bool:
		return lua.LBool(v)
	case string:
		return lua.LString(v)
	case int:
		return lua.LNumber(v)
	case int64:
		return lua.LNumber(v)
	case uint64:
		return lua.LNumber(v)
	case float64:
		return lua.LNumber(v)
	case typelib.GType:
		return lua.LNumber(v)
	case map[string]bool:
		t := h.L.NewTable()
		for k, b := range v {
			t.RawSetString(k, lua.LBool(b))
		}
		return t
	case map[string]string:
		t := h.L.NewTable()
		for k, s := range v {
			t.RawSetString(k, lua.LString(s))
		}
		return t
	case []*gi.Info:
		t := h.L.NewTable()
		for i, info := range v {
			t.RawSetInt(i+1, h.push(info))
		}
		return t
	}
	return lua.LNil
}
