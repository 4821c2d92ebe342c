// Package gireflect exposes GObject-introspection metadata to Go code and to
// embedded Lua scripts.
//
// # Architecture Overview
//
// The module is organized into several packages with distinct responsibilities:
//
//	gireflect/
//	├── typelib/         Repository, namespace loading (GIR and WIT), BaseInfo records
//	├── gi/              Proxies, collection views and the property dispatch table
//	├── host/            Handle table that owns proxies and finalizes them once
//	├── luahost/         gopher-lua binding of the gi surface
//	├── errors/          Structured error types
//	└── cmd/gi-inspect/  Namespace dumper, Lua runner and TUI browser
//
// # Quick Start
//
// Load a namespace and read metadata:
//
//	repo := typelib.NewRepository()
//	st := gi.NewState(repo)
//	defer st.Close()
//
//	glib, err := st.Require("GLib", "", "")
//	if err != nil {
//	    return err
//	}
//	variant := glib.Get("Variant").(*gi.Info)
//	defer variant.Release()
//
//	methods := variant.Index("methods").(*gi.Infos)
//	defer methods.Release()
//	for _, m := range methods.All() {
//	    fmt.Println(m.Index("name"), m.Index("flags"))
//	    m.Release()
//	}
//
// The same surface is available to Lua through luahost:
//
//	L := lua.NewState()
//	h := luahost.Open(L, gi.NewState(repo))
//	defer h.Close()
//	L.DoString(`print(gi.require("GLib").Variant.methods[1].name)`)
//
// # Ownership
//
// Every proxy and collection view holds exactly one reference to a metadata
// record. Release drops it early; otherwise the State's host table
// finalizes whatever is still alive on Close.
package gireflect
