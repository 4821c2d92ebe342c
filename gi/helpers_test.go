package gi

import (
	"testing"

	"github.com/wippyai/gireflect/typelib"
)

const testbed = "../testbed"

// newTestState builds a State over a repository that only sees the
// testbed. When the test ends it verifies every proxy and handle was
// released.
func newTestState(t *testing.T) *State {
	t.Helper()
	repo := typelib.NewRepository(typelib.WithoutDefaultPath(), typelib.WithSearchPath(testbed))
	st := NewState(repo)
	t.Cleanup(func() {
		if n := st.Live(); n != 0 {
			t.Errorf("Live() = %d at end of test", n)
		}
		if n := repo.LiveInfos(); n != 0 {
			t.Errorf("LiveInfos() = %d at end of test", n)
		}
	})
	return st
}

func mustRequire(t *testing.T, st *State, ns, version, dir string) *Namespace {
	t.Helper()
	n, err := st.Require(ns, version, dir)
	if err != nil {
		t.Fatalf("Require(%s, %q, %q): %v", ns, version, dir, err)
	}
	return n
}

func mustInfo(t *testing.T, v any) *Info {
	t.Helper()
	info, ok := v.(*Info)
	if !ok || info == nil {
		t.Fatalf("got %T (%v), want *Info", v, v)
	}
	return info
}

func mustInfos(t *testing.T, v any) *Infos {
	t.Helper()
	infos, ok := v.(*Infos)
	if !ok || infos == nil {
		t.Fatalf("got %T (%v), want *Infos", v, v)
	}
	return infos
}

// symbol loads ns and returns its top-level entry called name.
func symbol(t *testing.T, st *State, ns, name string) *Info {
	t.Helper()
	n := mustRequire(t, st, ns, "", "")
	return mustInfo(t, n.Get(name))
}

// member returns the child called name in the view prop of owner.
func member(t *testing.T, owner *Info, prop, name string) *Info {
	t.Helper()
	v := mustInfos(t, owner.Index(prop))
	defer v.Release()
	info, err := v.Get(name)
	if err != nil {
		t.Fatalf("%s.%s[%s]: %v", owner.FullName(), prop, name, err)
	}
	return info
}
