package gi

import (
	"strings"
	"testing"

	"github.com/wippyai/gireflect/errors"
)

func TestInfosBounds(t *testing.T) {
	st := newTestState(t)
	errInfo := symbol(t, st, "GLib", "Error")
	defer errInfo.Release()

	fields := mustInfos(t, errInfo.Index("fields"))
	defer fields.Release()

	if fields.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", fields.Len())
	}
	want := []string{"domain", "code", "message"}
	for i := 0; i < fields.Len(); i++ {
		f, err := fields.At(i)
		if err != nil {
			t.Fatalf("At(%d): %v", i, err)
		}
		if f.Name() != want[i] || !f.Index("is_field").(bool) {
			t.Errorf("At(%d) = %s", i, f)
		}
		f.Release()
	}

	for _, i := range []int{-1, fields.Len()} {
		f, err := fields.At(i)
		if f != nil {
			t.Errorf("At(%d) = %v", i, f)
		}
		e, ok := err.(*errors.Error)
		if !ok || e.Kind != errors.KindOutOfRange {
			t.Errorf("At(%d) error = %v, want out_of_range", i, err)
			continue
		}
		if strings.Join(e.Path, ".") != "GLib.Error" {
			t.Errorf("At(%d) path = %v", i, e.Path)
		}
	}
}

func TestInfosGet(t *testing.T) {
	st := newTestState(t)
	errInfo := symbol(t, st, "GLib", "Error")
	defer errInfo.Release()

	fields := mustInfos(t, errInfo.Index("fields"))
	defer fields.Release()

	code, err := fields.Get("code")
	if err != nil {
		t.Fatal(err)
	}
	if code.FullName() != "GLib.Error.code" {
		t.Errorf("FullName() = %q", code.FullName())
	}
	code.Release()

	// the scan must not keep the non-matching children
	if n := st.Repository().LiveInfos(); n != 1 {
		t.Errorf("LiveInfos() = %d after lookup, want 1", n)
	}

	_, err = fields.Get("nope")
	e, ok := err.(*errors.Error)
	if !ok || e.Phase != errors.PhaseLookup || e.Kind != errors.KindNotFound {
		t.Fatalf("Get(nope) error = %v, want lookup not_found", err)
	}
	if !strings.Contains(e.Message(), "GLib.Error") || !strings.Contains(e.Message(), "nope") {
		t.Errorf("Message() = %q", e.Message())
	}
	if want := "GLib.Error: `nope' not found"; e.Message() != want {
		t.Errorf("Message() = %q, want %q", e.Message(), want)
	}
	if n := st.Repository().LiveInfos(); n != 1 {
		t.Errorf("LiveInfos() = %d after miss, want 1", n)
	}
}

func TestInfosGetExhaustive(t *testing.T) {
	st := newTestState(t)
	variant := symbol(t, st, "GLib", "Variant")
	defer variant.Release()

	methods := mustInfos(t, variant.Index("methods"))
	defer methods.Release()

	names := map[string]bool{}
	for _, m := range methods.All() {
		names[m.Name()] = true
		m.Release()
	}

	lookups := []string{"new_boolean", "new_strv", "get_type_string", "lookup_value", "is_object_path", "lock", "", "Variant"}
	for _, name := range lookups {
		m, err := methods.Get(name)
		switch {
		case names[name] && (err != nil || m == nil || m.Name() != name):
			t.Errorf("Get(%q) = %v, %v; want a match", name, m, err)
		case !names[name] && err == nil:
			t.Errorf("Get(%q) matched %v", name, m)
		}
		if m != nil {
			m.Release()
		}
	}
}

func TestInfosIndex(t *testing.T) {
	st := newTestState(t)
	variant := symbol(t, st, "GLib", "Variant")
	defer variant.Release()

	methods := mustInfos(t, variant.Index("methods"))
	defer methods.Release()

	first, err := methods.Index(1)
	if err != nil {
		t.Fatal(err)
	}
	if mustInfo(t, first).Name() != "new_boolean" {
		t.Errorf("Index(1) = %v", first)
	}
	first.(*Info).Release()

	last, err := methods.Index(float64(methods.Len()))
	if err != nil {
		t.Fatal(err)
	}
	if mustInfo(t, last).Name() != "is_object_path" {
		t.Errorf("Index(len) = %v", last)
	}
	last.(*Info).Release()

	byName, err := methods.Index("lookup_value")
	if err != nil {
		t.Fatal(err)
	}
	mustInfo(t, byName).Release()

	tests := []struct {
		key  any
		kind errors.Kind
	}{
		{0, errors.KindOutOfRange},
		{methods.Len() + 1, errors.KindOutOfRange},
		{"missing", errors.KindNotFound},
		{true, errors.KindInvalidInput},
		{1.5, errors.KindInvalidInput},
	}
	for _, tt := range tests {
		v, err := methods.Index(tt.key)
		if v != nil {
			t.Errorf("Index(%v) = %v", tt.key, v)
		}
		e, ok := err.(*errors.Error)
		if !ok || e.Kind != tt.kind {
			t.Errorf("Index(%v) error = %v, want %s", tt.key, err, tt.kind)
		}
	}

	_, err = methods.Index(true)
	if e, ok := err.(*errors.Error); !ok || e.Phase != errors.PhaseHost {
		t.Errorf("invalid key error = %v, want phase %s", err, errors.PhaseHost)
	}
}

func TestInfosAllEarlyStop(t *testing.T) {
	st := newTestState(t)
	variant := symbol(t, st, "GLib", "Variant")
	defer variant.Release()

	methods := mustInfos(t, variant.Index("methods"))
	defer methods.Release()

	seen := 0
	for i, m := range methods.All() {
		if i != seen {
			t.Errorf("index %d, want %d", i, seen)
		}
		seen++
		m.Release()
		if seen == 2 {
			break
		}
	}
	if seen != 2 {
		t.Errorf("iterated %d, want 2", seen)
	}
}

func TestInfosOwnsParent(t *testing.T) {
	st := newTestState(t)
	variant := symbol(t, st, "GLib", "Variant")

	methods := mustInfos(t, variant.Index("methods"))
	variant.Release()

	// the view keeps the record alive on its own
	if methods.Owner() != "GLib.Variant" {
		t.Errorf("Owner() = %q", methods.Owner())
	}
	m, err := methods.At(0)
	if err != nil {
		t.Fatal(err)
	}
	m.Release()

	methods.Release()
	methods.Release()
	if _, err := methods.At(0); err == nil {
		t.Error("At on released view should fail")
	}
}

func TestInfosEmpty(t *testing.T) {
	st := newTestState(t)
	binding := symbol(t, st, "GObject", "Binding")
	defer binding.Release()

	fields := mustInfos(t, binding.Index("fields"))
	defer fields.Release()
	if fields.Len() != 0 {
		t.Errorf("Len() = %d", fields.Len())
	}
	if _, err := fields.At(0); err == nil {
		t.Error("At(0) on empty view should fail")
	}
	if _, err := fields.Get("x"); err == nil {
		t.Error("Get on empty view should fail")
	}
}
