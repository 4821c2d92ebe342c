// Package gi exposes introspection metadata as navigable proxy objects.
//
// A State ties a typelib.Repository to a host object table. Loading a
// namespace yields a Namespace; indexing it yields Info proxies, and reading
// properties of a proxy yields scalars, further proxies, or Infos views over
// groups of children:
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
//	for i, m := range methods.All() {
//	    fmt.Println(i, m.Index("name"), m.Index("flags"))
//	    m.Release()
//	}
//
// # Ownership
//
// Every proxy and view holds one reference on its record and must be
// released once. Proxies are never cached: two lookups of the same record
// give two proxies. State.Close releases whatever is left.
//
// # Properties
//
// Property names are resolved by an ordered rule table (see Rules). A name
// that no applicable rule knows reads as nil rather than failing, so scripts
// can inspect records freely.
package gi
