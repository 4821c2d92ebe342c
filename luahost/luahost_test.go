package luahost

import (
	"strings"
	"testing"

	lua "github.com/yuin/gopher-lua"

	"github.com/wippyai/gireflect/gi"
	"github.com/wippyai/gireflect/typelib"
)

const testbed = "../testbed"

func newHost(t *testing.T) (*Host, *lua.LState) {
	t.Helper()
	repo := typelib.NewRepository(typelib.WithoutDefaultPath(), typelib.WithSearchPath(testbed))
	L := lua.NewState()
	h := Open(L, gi.NewState(repo))
	t.Cleanup(func() {
		if err := h.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
		if n := repo.LiveInfos(); n != 0 {
			t.Errorf("LiveInfos() = %d after Close", n)
		}
		L.Close()
	})
	return h, L
}

func run(t *testing.T, L *lua.LState, script string) {
	t.Helper()
	if err := L.DoString(script); err != nil {
		t.Fatalf("script failed: %v", err)
	}
}

func global(L *lua.LState, name string) lua.LValue {
	return L.GetGlobal(name)
}

func TestRequire(t *testing.T) {
	h, L := newHost(t)
	repo := h.State().Repository()
	run(t, L, `
		local glib = gi.require("GLib")
		len = #glib
		version = glib.version
		first = glib[1].name
		reserved = glib[len]
		missing = glib.NoSuchSymbol
		kind = glib.Variant.kind
	`)

	bi := repo.Info("GLib", 0)
	defer bi.Unref()

	tests := []struct {
		name string
		want lua.LValue
	}{
		{"len", lua.LNumber(repo.NInfos("GLib") + 1)},
		{"version", lua.LString("2.0")},
		{"first", lua.LString(bi.Name())},
		{"reserved", lua.LNil},
		{"missing", lua.LNil},
		{"kind", lua.LString("struct")},
	}
	for _, tt := range tests {
		if got := global(L, tt.name); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRequireFailure(t *testing.T) {
	_, L := newHost(t)
	run(t, L, `
		ok, msg, code = gi.require("Nope", "1.0")
		ok2, msg2, code2 = gi.require("Mismatch", nil, "../testbed/bad")
	`)

	if global(L, "ok") != lua.LFalse || global(L, "code") != lua.LNumber(typelib.ErrorTypelibNotFound) {
		t.Errorf("ok=%v code=%v", global(L, "ok"), global(L, "code"))
	}
	if msg := global(L, "msg").String(); msg != "Typelib file for namespace 'Nope', version '1.0' not found" {
		t.Errorf("msg = %q", msg)
	}
	if global(L, "code2") != lua.LNumber(typelib.ErrorNamespaceMismatch) {
		t.Errorf("code2 = %v", global(L, "code2"))
	}
	if msg := global(L, "msg2").String(); !strings.Contains(msg, "doesn't match the file name") {
		t.Errorf("msg2 = %q", msg)
	}
}

func TestGlobalIndex(t *testing.T) {
	_, L := newHost(t)
	run(t, L, `
		before = gi.GObject
		gi.require("GObject")
		after = gi.GObject.version
		glib = gi.GLib.version
		object = gi[80].name
		unknown = gi[123456]
		other = gi[true]
	`)

	if global(L, "before") != lua.LNil {
		t.Errorf("gi.GObject before require = %v", global(L, "before"))
	}
	if global(L, "after") != lua.LString("2.0") || global(L, "glib") != lua.LString("2.0") {
		t.Errorf("after=%v glib=%v", global(L, "after"), global(L, "glib"))
	}
	if global(L, "object") != lua.LString("Object") {
		t.Errorf("gi[80].name = %v", global(L, "object"))
	}
	if global(L, "unknown") != lua.LNil || global(L, "other") != lua.LNil {
		t.Error("misses should be nil")
	}
}

func TestInfosSurface(t *testing.T) {
	_, L := newHost(t)
	run(t, L, `
		local fields = gi.require("GLib").Error.fields
		count = #fields
		first = fields[1].name
		code = fields.code.fullname
		local ok, err = pcall(function() return fields[4] end)
		range_ok, range_err = ok, tostring(err)
		ok, err = pcall(function() return fields[0] end)
		zero_ok = ok
		ok, err = pcall(function() return fields.nope end)
		name_ok, name_err = ok, tostring(err)
	`)

	if global(L, "count") != lua.LNumber(3) || global(L, "first") != lua.LString("domain") {
		t.Errorf("count=%v first=%v", global(L, "count"), global(L, "first"))
	}
	if global(L, "code") != lua.LString("GLib.Error.code") {
		t.Errorf("code = %v", global(L, "code"))
	}
	if global(L, "range_ok") != lua.LFalse || global(L, "zero_ok") != lua.LFalse {
		t.Error("out of range index should raise")
	}
	if !strings.Contains(global(L, "range_err").String(), "out of bounds") {
		t.Errorf("range_err = %v", global(L, "range_err"))
	}
	if global(L, "name_ok") != lua.LFalse {
		t.Error("unknown name should raise")
	}
	if !strings.Contains(global(L, "name_err").String(), "GLib.Error: `nope' not found") {
		t.Errorf("name_err = %v", global(L, "name_err"))
	}
}

func TestPropertyValues(t *testing.T) {
	_, L := newHost(t)
	run(t, L, `
		local gobject = gi.require("GObject")
		local flags = gobject.Object.signals.notify.flags
		nflags = 0
		for k, v in pairs(flags) do nflags = nflags + 1 end
		run_first = flags.run_first
		run_last = flags.run_last

		local params = gi.GLib.strsplit_set.return_type.params
		nparams = #params
		param_tag = params[1].tag

		local deps = gobject.dependencies
		glib_dep = deps.GLib

		gtype = gobject.Object.gtype
		unknown = gobject.Object.totally_unknown_prop
		deprecated = gi.GLib.atexit.deprecated
		len_info = #gobject.Object
		str = tostring(gobject.Object)
	`)

	tests := []struct {
		name string
		want lua.LValue
	}{
		{"nflags", lua.LNumber(5)},
		{"run_first", lua.LTrue},
		{"run_last", lua.LNil},
		{"nparams", lua.LNumber(1)},
		{"param_tag", lua.LString("utf8")},
		{"glib_dep", lua.LString("2.0")},
		{"gtype", lua.LNumber(typelib.GTypeObject)},
		{"unknown", lua.LNil},
		{"deprecated", lua.LTrue},
		{"len_info", lua.LNumber(0)},
		{"str", lua.LString("gi.Info(object GObject.Object)")},
	}
	for _, tt := range tests {
		if got := global(L, tt.name); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRelease(t *testing.T) {
	h, L := newHost(t)
	run(t, L, `
		local v = gi.require("GLib").Variant
		local m = v.methods
		gi.release(m)
		gi.release(v)
		gi.release(v)
	`)
	if n := h.State().Live(); n != 0 {
		t.Errorf("Live() = %d after gi.release", n)
	}
}

func TestReleasedProxyRaises(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{"info", `local v = gi.require("GLib").Variant; gi.release(v); return v.name`, "released " + InfoTypeName},
		{"infos", `local m = gi.require("GLib").Variant.methods; gi.release(m); return #m`, "released " + InfosTypeName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, L := newHost(t)
			err := L.DoString(tt.script)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want %q", err, tt.want)
			}
		})
	}
}

func TestWithGlobal(t *testing.T) {
	repo := typelib.NewRepository(typelib.WithoutDefaultPath(), typelib.WithSearchPath(testbed))
	L := lua.NewState()
	defer L.Close()
	h := Open(L, gi.NewState(repo), WithGlobal("repo"))
	defer h.Close()

	run(t, L, `v = repo.require("GLib").version`)
	if global(L, "v") != lua.LString("2.0") {
		t.Errorf("v = %v", global(L, "v"))
	}
	if global(L, "gi") != lua.LNil {
		t.Error("gi should not be installed")
	}
}
