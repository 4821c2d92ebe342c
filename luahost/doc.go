// Package luahost exposes gi to Lua scripts running in gopher-lua.
//
// Open installs a global table (named "gi" by default):
//
//	local glib = gi.require("GLib")          -- or false, message, code
//	print(#glib, glib.version, glib[1].name)
//	for i = 1, #glib.Variant.methods do
//	    print(glib.Variant.methods[i].name)
//	end
//	local obj = gi[80]                      -- lookup by GType
//
// Proxies are userdata with the metatables "lgi.gi.info", "lgi.gi.infos"
// and "lgi.gi.namespace". A proxy is released when the Go garbage collector
// reclaims its userdata, when the script calls gi.release, or when the
// Host is closed.
package luahost
