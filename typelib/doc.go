// Package typelib loads type libraries and serves their metadata as
// reference-counted BaseInfo handles.
//
// A Repository locates namespace files on a search path, parses them into a
// name-ordered directory and builds each record on first access. Two on-disk
// formats are understood:
//
//   - GIR XML, <Namespace>-<Version>.gir, as produced by g-ir-scanner
//   - WIT text, <Namespace>-<Version>.wit, one package per file
//
// Handles follow the GObject introspection ownership rules: every accessor
// returning a *BaseInfo transfers one reference to the caller, who must Unref
// it. Accessors called on a handle of the wrong kind return zero values.
//
//	repo := typelib.NewRepository(typelib.WithSearchPath("./typelibs"))
//	if _, err := repo.Require("GLib", "2.0", typelib.LoadFlagLazy); err != nil {
//		return err
//	}
//	v := repo.FindByName("GLib", "Variant")
//	defer v.Unref()
//	fmt.Println(v.StructNMethods())
package typelib
