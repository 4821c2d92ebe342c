package gi

import (
	"reflect"
	"testing"
)

func TestNamespaceGLib(t *testing.T) {
	st := newTestState(t)
	glib := mustRequire(t, st, "GLib", "", "")
	repo := st.Repository()

	n := repo.NInfos("GLib")
	if glib.Len() != n+1 {
		t.Errorf("Len() = %d, want %d", glib.Len(), n+1)
	}

	version, ok := glib.Get("version").(string)
	if !ok || version == "" {
		t.Errorf("version = %v", glib.Get("version"))
	}

	first := mustInfo(t, glib.At(1))
	defer first.Release()
	bi := repo.Info("GLib", 0)
	defer bi.Unref()
	if first.Index("name") != bi.Name() {
		t.Errorf("At(1).name = %v, want %s", first.Index("name"), bi.Name())
	}

	last := mustInfo(t, glib.Index(float64(n)))
	defer last.Release()
	if last.Name() != "unichar_isalpha" {
		t.Errorf("At(%d) = %s", n, last.Name())
	}

	for _, i := range []int{0, -1, n + 1, n + 2} {
		if v := glib.At(i); v != nil {
			t.Errorf("At(%d) = %v, want nil", i, v)
		}
	}
}

func TestNamespaceGet(t *testing.T) {
	st := newTestState(t)
	gobject := mustRequire(t, st, "GObject", "", "")

	deps, ok := gobject.Get("dependencies").(map[string]string)
	if !ok || !reflect.DeepEqual(deps, map[string]string{"GLib": "2.0"}) {
		t.Errorf("dependencies = %v", gobject.Get("dependencies"))
	}

	glib := mustRequire(t, st, "GLib", "", "")
	if v := glib.Get("dependencies"); v != nil {
		t.Errorf("GLib dependencies = %v, want nil", v)
	}

	obj := mustInfo(t, gobject.Index("Object"))
	if obj.FullName() != "GObject.Object" {
		t.Errorf("FullName() = %q", obj.FullName())
	}
	obj.Release()

	for _, key := range []any{"NoSuchSymbol", "Hidden", true} {
		if v := glib.Index(key); v != nil {
			t.Errorf("Index(%v) = %v, want nil", key, v)
		}
	}
}

func TestNamespaceWIT(t *testing.T) {
	st := newTestState(t)
	shapes := mustRequire(t, st, "Shapes", "", "")

	if shapes.Get("version") != "1.0" {
		t.Errorf("version = %v", shapes.Get("version"))
	}

	canvas := mustInfo(t, shapes.Get("Canvas"))
	defer canvas.Release()
	if canvas.Index("kind") != "object" {
		t.Errorf("Canvas kind = %v", canvas.Index("kind"))
	}

	render := mustInfo(t, shapes.Get("render"))
	defer render.Release()
	if render.Index("is_function") != true {
		t.Errorf("render is_function = %v", render.Index("is_function"))
	}
}

func TestNamespaceBalance(t *testing.T) {
	st := newTestState(t)
	glib := mustRequire(t, st, "GLib", "", "")

	for i := 1; i <= glib.Len(); i++ {
		if info, ok := glib.At(i).(*Info); ok {
			info.Index("fullname")
			info.Release()
		}
	}
	if st.Live() != 0 || st.Repository().LiveInfos() != 0 {
		t.Errorf("Live()=%d LiveInfos()=%d", st.Live(), st.Repository().LiveInfos())
	}
}
