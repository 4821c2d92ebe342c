package host

import (
	"sync"

	"go.uber.org/zap"
)

// Option configures a Table.
type Option func(*Table)

// WithLogger sets the table's logger.
func WithLogger(l *zap.Logger) Option {
	return func(t *Table) {
		if l != nil {
			t.log = l
		}
	}
}

// Table maps handles to host-visible objects and finalizes each object
// exactly once.
type Table struct {
	store     *store
	log       *zap.Logger
	observers []subscription
	nextSub   int
	obsMu     sync.RWMutex
}

type subscription struct {
	o  Observer
	id int
}

// NewTable creates an empty table.
func NewTable(opts ...Option) *Table {
	t := &Table{
		store: newStore(),
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Insert adds a value and returns its handle. It returns 0 once the table
// is closed.
func (t *Table) Insert(class Class, value any) Handle {
	h, err := t.store.create(class, value)
	if err != nil {
		return 0
	}

	t.notify(Event{
		Type:   EventCreated,
		Handle: h,
		Class:  class,
		Value:  value,
	})
	return h
}

// GetTyped retrieves a value only if it was inserted with class.
func (t *Table) GetTyped(h Handle, class Class) (any, bool) {
	v, c, ok := t.store.get(h)
	if !ok || c != class {
		return nil, false
	}
	return v, true
}

// Collect removes h and finalizes its value. It reports false when h is
// unknown or was already collected, in which case nothing is finalized.
func (t *Table) Collect(h Handle) (any, bool) {
	value, class, ok := t.store.remove(h)
	if !ok {
		return nil, false
	}

	if f, ok := value.(Finalizer); ok {
		f.Finalize()
	}

	t.notify(Event{
		Type:   EventFinalized,
		Handle: h,
		Class:  class,
		Value:  value,
	})
	return value, true
}

// Subscribe adds an observer for lifecycle events and returns a function
// that removes it.
func (t *Table) Subscribe(o Observer) (unsubscribe func()) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()

	t.nextSub++
	id := t.nextSub
	t.observers = append(t.observers, subscription{o: o, id: id})

	return func() {
		t.obsMu.Lock()
		defer t.obsMu.Unlock()
		for i, s := range t.observers {
			if s.id == id {
				t.observers = append(t.observers[:i], t.observers[i+1:]...)
				return
			}
		}
	}
}

// Len returns the number of live objects.
func (t *Table) Len() int {
	return t.store.len()
}

// Clear collects every live object.
func (t *Table) Clear() {
	for _, h := range t.store.handles() {
		t.Collect(h)
	}
}

// Close collects every live object and stops accepting inserts.
func (t *Table) Close() error {
	if !t.store.seal() {
		return nil
	}
	n := t.store.len()
	t.Clear()
	if n > 0 {
		t.log.Debug("host table closed", zap.Int("finalized", n))
	}
	return nil
}

// Closed reports whether Close has been called.
func (t *Table) Closed() bool {
	return t.store.isClosed()
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	subs := make([]subscription, len(t.observers))
	copy(subs, t.observers)
	t.obsMu.RUnlock()

	for _, s := range subs {
		s.o.OnObjectEvent(e)
	}
}
