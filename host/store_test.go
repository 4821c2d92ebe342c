package host

import (
	"errors"
	"sync"
	"testing"
)

func TestStore_Concurrent(t *testing.T) {
	s := newStore()
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				h, err := s.create(Class(n), j)
				if err != nil {
					t.Errorf("create: %v", err)
					return
				}
				if _, _, ok := s.remove(h); !ok {
					t.Errorf("remove %d failed", h)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	if s.len() != 0 {
		t.Fatalf("len = %d after balanced create/remove", s.len())
	}
}

func TestStore_Closed(t *testing.T) {
	s := newStore()
	if !s.seal() {
		t.Fatal("first seal should succeed")
	}
	if s.seal() {
		t.Fatal("second seal should report already closed")
	}
	if _, err := s.create(1, "x"); !errors.Is(err, ErrClosed) {
		t.Fatalf("create after seal: %v, want ErrClosed", err)
	}
}

func TestStore_Generation(t *testing.T) {
	s := newStore()
	h1, _ := s.create(1, "a")
	s.remove(h1)
	h2, _ := s.create(1, "b")

	i1, _ := h1.slot()
	i2, _ := h2.slot()
	if i1 != i2 {
		t.Fatal("expected slot reuse")
	}
	if h2.gen() != h1.gen()+1 {
		t.Fatalf("gen = %d, want %d", h2.gen(), h1.gen()+1)
	}
}
