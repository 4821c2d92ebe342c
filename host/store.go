package host

import (
	"errors"
	"sync"
)

var ErrClosed = errors.New("host table closed")

// store is the slot array behind a Table. Freed slots are reused with a
// bumped generation.
type store struct {
	entries  []slot
	freeList []uint32
	mu       sync.RWMutex
	live     int
	closed   bool
}

type slot struct {
	value any
	class Class
	gen   uint32
	valid bool
}

func newStore() *store {
	return &store{
		entries:  make([]slot, 0, 64),
		freeList: make([]uint32, 0, 16),
	}
}

func (s *store) create(class Class, value any) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}
	s.live++

	if n := len(s.freeList); n > 0 {
		idx := s.freeList[n-1]
		s.freeList = s.freeList[:n-1]
		e := &s.entries[idx]
		e.value = value
		e.class = class
		e.valid = true
		return makeHandle(idx, e.gen), nil
	}

	s.entries = append(s.entries, slot{value: value, class: class, valid: true})
	return makeHandle(uint32(len(s.entries)-1), 0), nil
}

// lookup returns the live slot for h. Caller holds mu.
func (s *store) lookup(h Handle) *slot {
	idx, ok := h.slot()
	if !ok || int(idx) >= len(s.entries) {
		return nil
	}
	e := &s.entries[idx]
	if !e.valid || e.gen != h.gen() {
		return nil
	}
	return e
}

func (s *store) get(h Handle) (any, Class, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e := s.lookup(h)
	if e == nil {
		return nil, 0, false
	}
	return e.value, e.class, true
}

// remove invalidates h and returns its value. Only the first remove of a
// handle succeeds.
func (s *store) remove(h Handle) (any, Class, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.lookup(h)
	if e == nil {
		return nil, 0, false
	}

	value, class := e.value, e.class
	e.valid = false
	e.value = nil
	e.gen++
	s.live--
	idx, _ := h.slot()
	s.freeList = append(s.freeList, idx)
	return value, class, true
}

func (s *store) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.live
}

func (s *store) handles() []Handle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Handle, 0, s.live)
	for i, e := range s.entries {
		if e.valid {
			out = append(out, makeHandle(uint32(i), e.gen))
		}
	}
	return out
}

func (s *store) seal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.closed = true
	return true
}

func (s *store) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}
