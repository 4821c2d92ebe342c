package host

// Handle identifies one host-visible object in a Table.
// Handle 0 is reserved and always invalid. The low 32 bits select a slot and
// the high 32 bits carry the slot's generation, so a handle is never valid
// again once the object it named has been finalized.
type Handle uint64

func makeHandle(slot, gen uint32) Handle {
	return Handle(uint64(gen)<<32 | uint64(slot+1))
}

func (h Handle) slot() (uint32, bool) {
	s := uint32(h)
	if s == 0 {
		return 0, false
	}
	return s - 1, true
}

func (h Handle) gen() uint32 {
	return uint32(h >> 32)
}

// Class tags the kind of object stored under a handle. Classes are assigned
// by the binding layer; the table only compares them.
type Class uint32

// EventType identifies a lifecycle notification.
type EventType uint8

const (
	EventCreated EventType = iota
	EventFinalized
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// Event represents an object lifecycle event.
type Event struct {
	Value  any
	Handle Handle
	Class  Class
	Type   EventType
}

// Observer receives notifications about object lifecycle events.
type Observer interface {
	OnObjectEvent(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

func (f ObserverFunc) OnObjectEvent(e Event) { f(e) }

// Finalizer is implemented by values that own resources. The table calls
// Finalize exactly once, when the value's handle is collected or the table
// is closed.
type Finalizer interface {
	Finalize()
}
