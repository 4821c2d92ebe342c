package typelib

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	gierrors "github.com/wippyai/gireflect/errors"
)

const testbed = "../testbed"

func testRepo(t *testing.T, dirs ...string) *Repository {
	t.Helper()
	if len(dirs) == 0 {
		dirs = []string{testbed}
	}
	return NewRepository(WithoutDefaultPath(), WithSearchPath(dirs...))
}

func mustRequire(t *testing.T, r *Repository, ns, version string) *Typelib {
	t.Helper()
	tl, err := r.Require(ns, version, LoadFlagLazy)
	if err != nil {
		t.Fatalf("Require(%s, %q): %v", ns, version, err)
	}
	return tl
}

func mustFind(t *testing.T, r *Repository, ns, name string) *BaseInfo {
	t.Helper()
	bi := r.FindByName(ns, name)
	if bi == nil {
		t.Fatalf("FindByName(%s, %s) = nil", ns, name)
	}
	return bi
}

func checkBalanced(t *testing.T, r *Repository) {
	t.Helper()
	if n := r.LiveInfos(); n != 0 {
		t.Errorf("LiveInfos() = %d after releasing everything", n)
	}
}

func TestRequireGLib(t *testing.T) {
	r := testRepo(t)
	tl := mustRequire(t, r, "GLib", "")

	if tl.Namespace() != "GLib" || tl.Version() != "2.0" {
		t.Errorf("Typelib = %s-%s", tl.Namespace(), tl.Version())
	}
	if !strings.HasSuffix(tl.Path(), "GLib-2.0.gir") {
		t.Errorf("Path() = %q", tl.Path())
	}
	if !r.IsRegistered("GLib", "") || !r.IsRegistered("GLib", "2.0") || r.IsRegistered("GLib", "3.0") {
		t.Error("IsRegistered mismatch")
	}
	if got := r.NInfos("GLib"); got != 23 {
		t.Errorf("NInfos = %d, want 23", got)
	}

	first := r.Info("GLib", 0)
	if first == nil || first.Name() != "E" {
		t.Fatalf("Info(0) = %v", first)
	}
	first.Unref()

	last := r.Info("GLib", r.NInfos("GLib")-1)
	if last.Name() != "unichar_isalpha" {
		t.Errorf("last entry = %s", last.Name())
	}
	last.Unref()

	if r.Info("GLib", 23) != nil || r.Info("GLib", -1) != nil || r.Info("Nope", 0) != nil {
		t.Error("out of range Info should be nil")
	}
	if r.FindByName("GLib", "Hidden") != nil {
		t.Error("non-introspectable record was loaded")
	}
	checkBalanced(t, r)
}

func TestRequireIsIdempotent(t *testing.T) {
	r := testRepo(t)
	mustRequire(t, r, "GLib", "2.0")
	mustRequire(t, r, "GLib", "")
	mustRequire(t, r, "GLib", "2.0")
	if got := r.LoadedNamespaces(); !reflect.DeepEqual(got, []string{"GLib"}) {
		t.Errorf("LoadedNamespaces() = %v", got)
	}
}

func TestRequireLoadsDependencies(t *testing.T) {
	r := testRepo(t)
	mustRequire(t, r, "GObject", "2.0")

	if got := r.LoadedNamespaces(); !reflect.DeepEqual(got, []string{"GObject", "GLib"}) {
		t.Errorf("LoadedNamespaces() = %v", got)
	}
	if got := r.Dependencies("GObject"); !reflect.DeepEqual(got, []string{"GLib-2.0"}) {
		t.Errorf("Dependencies(GObject) = %v", got)
	}
	if got := r.Dependencies("GLib"); got != nil {
		t.Errorf("Dependencies(GLib) = %v, want nil", got)
	}
	if r.Version("GObject") != "2.0" || r.Version("Nope") != "" {
		t.Error("Version mismatch")
	}
}

func TestRequireErrors(t *testing.T) {
	tests := []struct {
		name    string
		dirs    []string
		pre     func(*Repository)
		ns      string
		version string
		code    RepositoryError
		message string
	}{
		{
			name:    "missing any version",
			ns:      "Gtk",
			code:    ErrorTypelibNotFound,
			message: "Typelib file for namespace 'Gtk' (any version) not found",
		},
		{
			name:    "missing version",
			ns:      "GLib",
			version: "3.0",
			code:    ErrorTypelibNotFound,
			message: "Typelib file for namespace 'GLib', version '3.0' not found",
		},
		{
			name:    "version conflict with loaded",
			pre:     func(r *Repository) { _, _ = r.Require("GLib", "2.0", LoadFlagLazy) },
			ns:      "GLib",
			version: "1.0",
			code:    ErrorNamespaceVersionConflict,
			message: "Requiring namespace 'GLib' version '1.0', but '2.0' is already loaded",
		},
		{
			name:    "namespace mismatch",
			dirs:    []string{testbed + "/bad"},
			ns:      "Mismatch",
			code:    ErrorNamespaceMismatch,
			message: "contains namespace 'Other'",
		},
		{
			name:    "malformed",
			dirs:    []string{testbed + "/bad"},
			ns:      "Broken",
			code:    ErrorInvalidTypelib,
			message: "Failed to load typelib file",
		},
		{
			name:    "file version skew",
			dirs:    []string{testbed + "/versions"},
			ns:      "Skewed",
			version: "1.0",
			code:    ErrorNamespaceVersionConflict,
			message: "contains version '2.0'",
		},
		{
			name:    "missing dependency",
			dirs:    []string{testbed + "/bad"},
			ns:      "NeedsMissing",
			code:    ErrorTypelibNotFound,
			message: "Typelib file for namespace 'Nope', version '9.9' not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := testRepo(t, tt.dirs...)
			if tt.pre != nil {
				tt.pre(r)
			}
			_, err := r.Require(tt.ns, tt.version, LoadFlagLazy)
			if err == nil {
				t.Fatal("expected error")
			}
			var le *LoadError
			if !errors.As(err, &le) {
				t.Fatalf("error %T is not *LoadError", err)
			}
			if le.Code != tt.code {
				t.Errorf("Code = %s, want %s", le.Code, tt.code)
			}
			if !strings.Contains(le.Message, tt.message) {
				t.Errorf("Message = %q, want it to contain %q", le.Message, tt.message)
			}
			if tt.pre == nil && len(r.LoadedNamespaces()) != 0 {
				t.Errorf("failed load left %v registered", r.LoadedNamespaces())
			}
		})
	}
}

func TestRequireMalformedWIT(t *testing.T) {
	tests := []struct {
		ns      string
		message string
		kind    gierrors.Kind
	}{
		{"Loop", "type nested: alias cycle", gierrors.KindInvalidData},
		{"Cycle", "type left: alias cycle", gierrors.KindInvalidData},
		{"Unknown", `type "quaternion" not found`, gierrors.KindNotFound},
		{"Twice", "type point declared twice", gierrors.KindInvalidData},
	}

	for _, flags := range []LoadFlags{LoadFlagLazy, LoadFlagNone} {
		for _, tt := range tests {
			t.Run(tt.ns, func(t *testing.T) {
				r := testRepo(t, testbed+"/bad")
				_, err := r.Require(tt.ns, "", flags)
				var le *LoadError
				if !errors.As(err, &le) {
					t.Fatalf("err = %v, want *LoadError", err)
				}
				if le.Code != ErrorInvalidTypelib {
					t.Errorf("Code = %s, want %s", le.Code, ErrorInvalidTypelib)
				}
				if !strings.Contains(le.Message, tt.message) {
					t.Errorf("Message = %q, want it to contain %q", le.Message, tt.message)
				}

				var pe *gierrors.Error
				if !errors.As(le.Err, &pe) || pe.Phase != gierrors.PhaseParse {
					t.Fatalf("Err = %v, want a parse error", le.Err)
				}
				if !errors.Is(le.Err, &gierrors.Error{Phase: gierrors.PhaseParse, Kind: tt.kind}) {
					t.Errorf("Err = %v, want kind %s in the chain", le.Err, tt.kind)
				}

				if got := r.LoadedNamespaces(); len(got) != 0 {
					t.Errorf("LoadedNamespaces() = %v after failed load", got)
				}
			})
		}
	}
}

func TestRequireHighestVersion(t *testing.T) {
	r := testRepo(t, testbed+"/versions")
	tl := mustRequire(t, r, "Multi", "")
	if tl.Version() != "1.10" {
		t.Errorf("selected %s, want 1.10", tl.Version())
	}

	exact := testRepo(t, testbed+"/versions")
	if tl := mustRequire(t, exact, "Multi", "1.2"); tl.Version() != "1.2" {
		t.Errorf("explicit version loaded %s", tl.Version())
	}
}

func TestRequirePrivate(t *testing.T) {
	r := testRepo(t)
	if _, err := r.Require("Demo", "", LoadFlagLazy); err == nil {
		t.Fatal("Demo should not be on the search path")
	}

	tl, err := r.RequirePrivate(testbed+"/private", "Demo", "1.0", LoadFlagLazy)
	if err != nil {
		t.Fatalf("RequirePrivate: %v", err)
	}
	if tl.Version() != "1.0" {
		t.Errorf("version = %s", tl.Version())
	}
	// dependencies come from the regular search path
	for _, ns := range []string{"Demo", "GObject", "GLib"} {
		if !r.IsRegistered(ns, "") {
			t.Errorf("%s not registered", ns)
		}
	}

	other := testRepo(t, testbed+"/versions")
	if _, err := other.RequirePrivate(testbed+"/private", "GLib", "", LoadFlagLazy); err == nil {
		t.Error("private load must only search the private directory")
	}
}

func TestEagerLoadFailsOnBrokenRecord(t *testing.T) {
	r := testRepo(t)
	_, err := r.RequirePrivate(testbed+"/private", "Demo", "1.0", LoadFlagNone)
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("err = %v, want *LoadError", err)
	}
	if le.Code != ErrorInvalidTypelib {
		t.Errorf("Code = %s", le.Code)
	}
	if !strings.Contains(le.Message, "Broken") {
		t.Errorf("Message = %q", le.Message)
	}
	if got := r.LoadedNamespaces(); len(got) != 0 {
		t.Errorf("LoadedNamespaces() = %v after failed eager load", got)
	}

	if _, err := r.Require("GObject", "2.0", LoadFlagNone); err != nil {
		t.Errorf("eager load of a clean namespace: %v", err)
	}
}

func TestLazyBrokenRecordIsInvalid(t *testing.T) {
	r := testRepo(t)
	if _, err := r.RequirePrivate(testbed+"/private", "Demo", "", LoadFlagLazy); err != nil {
		t.Fatal(err)
	}
	bi := mustFind(t, r, "Demo", "Broken")
	if bi.Type() != InfoTypeInvalid {
		t.Errorf("Type() = %s, want invalid", bi.Type())
	}
	bi.Unref()

	// the failure is sticky
	again := mustFind(t, r, "Demo", "Broken")
	if again.Type() != InfoTypeInvalid {
		t.Errorf("second lookup Type() = %s", again.Type())
	}
	again.Unref()
	checkBalanced(t, r)
}

func TestFindByGType(t *testing.T) {
	r := testRepo(t)
	mustRequire(t, r, "GObject", "")

	tests := []struct {
		gtype GType
		want  string
	}{
		{GTypeObject, "Object"},
		{GTypeParam, "ParamSpec"},
		{GTypeVariant, "Variant"},
	}
	for _, tt := range tests {
		bi := r.FindByGType(tt.gtype)
		if bi == nil {
			t.Errorf("FindByGType(%d) = nil", tt.gtype)
			continue
		}
		if bi.Name() != tt.want {
			t.Errorf("FindByGType(%d) = %s, want %s", tt.gtype, bi.Name(), tt.want)
		}
		bi.Unref()
	}

	binding, ok := r.GTypes().Lookup("GBinding")
	if !ok {
		t.Fatal("GBinding not registered at load")
	}
	bi := r.FindByGType(binding)
	if bi == nil || bi.Name() != "Binding" {
		t.Fatalf("FindByGType(GBinding) = %v", bi)
	}
	bi.Unref()

	if r.FindByGType(GTypeInt) != nil {
		t.Error("fundamental without a record should be nil")
	}
	if r.FindByGType(0xdeadbeef) != nil {
		t.Error("unknown gtype should be nil")
	}
	checkBalanced(t, r)
}

func TestRegisteredGType(t *testing.T) {
	r := testRepo(t)
	mustRequire(t, r, "GLib", "")

	tests := []struct {
		name string
		want GType
	}{
		{"Variant", GTypeVariant},
		{"SeekType", GTypeNone},
		{"getenv", GTypeInvalid},
	}
	for _, tt := range tests {
		bi := mustFind(t, r, "GLib", tt.name)
		if got := bi.RegisteredGType(); got != tt.want {
			t.Errorf("%s.RegisteredGType() = %d, want %d", tt.name, got, tt.want)
		}
		bi.Unref()
	}

	cond := mustFind(t, r, "GLib", "IOCondition")
	defer cond.Unref()
	if cond.RegisteredTypeName() != "GIOCondition" {
		t.Errorf("RegisteredTypeName() = %q", cond.RegisteredTypeName())
	}
	if id := cond.RegisteredGType(); r.GTypes().Name(id) != "GIOCondition" {
		t.Errorf("gtype %d does not map back", id)
	}
}

func TestSearchPath(t *testing.T) {
	r := NewRepository(WithoutDefaultPath(), WithSearchPath("a", "b"))
	r.PrependSearchPath("c")
	if got := r.SearchPath(); !reflect.DeepEqual(got, []string{"c", "a", "b"}) {
		t.Errorf("SearchPath() = %v", got)
	}

	t.Setenv("GI_TYPELIB_PATH", "x:y")
	r = NewRepository(WithSearchPath("a"))
	want := append([]string{"a", "x", "y"}, defaultSearchPath...)
	if got := r.SearchPath(); !reflect.DeepEqual(got, want) {
		t.Errorf("SearchPath() = %v, want %v", got, want)
	}
}

func TestRepositoriesAreIsolated(t *testing.T) {
	a := testRepo(t)
	b := testRepo(t)
	mustRequire(t, a, "GLib", "")
	if b.IsRegistered("GLib", "") {
		t.Error("namespace leaked between repositories")
	}
	if b.NInfos("GLib") != 0 {
		t.Error("NInfos of unloaded namespace should be 0")
	}
}

func TestReferenceCounting(t *testing.T) {
	r := testRepo(t)
	mustRequire(t, r, "GLib", "")

	bi := mustFind(t, r, "GLib", "Variant")
	if r.LiveInfos() != 1 || bi.RefCount() != 1 {
		t.Fatalf("live=%d refs=%d", r.LiveInfos(), bi.RefCount())
	}
	bi.Ref()
	if bi.RefCount() != 2 || r.LiveInfos() != 1 {
		t.Errorf("after Ref: live=%d refs=%d", r.LiveInfos(), bi.RefCount())
	}
	bi.Unref()
	bi.Unref()
	checkBalanced(t, r)

	defer func() {
		if recover() == nil {
			t.Error("Unref below zero should panic")
		}
	}()
	bi.Unref()
}

func TestContainerAndEqual(t *testing.T) {
	r := testRepo(t)
	mustRequire(t, r, "GLib", "")

	variant := mustFind(t, r, "GLib", "Variant")
	defer variant.Unref()
	if c := variant.Container(); c != nil {
		t.Errorf("top-level Container() = %v", c)
		c.Unref()
	}

	m := variant.StructMethod(2)
	defer m.Unref()
	owner := m.Container()
	if owner == nil || !owner.Equal(variant) {
		t.Fatalf("method container = %v", owner)
	}
	owner.Unref()

	again := mustFind(t, r, "GLib", "Variant")
	if !again.Equal(variant) || again == variant {
		t.Error("lookups should yield distinct handles to the same record")
	}
	again.Unref()
}
