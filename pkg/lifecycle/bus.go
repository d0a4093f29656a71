package lifecycle

// Handler reacts to one event.
type Handler func(Event)

type subscription struct {
	id uint64
	fn Handler
}

// Bus delivers events synchronously to handlers in subscription order.
// It is not safe for concurrent use.
type Bus struct {
	nextID   uint64
	handlers map[Kind][]subscription
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[Kind][]subscription)}
}

// On subscribes fn to events of kind k and returns a function that
// unsubscribes it.
func (b *Bus) On(k Kind, fn Handler) (off func()) {
	b.nextID++
	id := b.nextID
	b.handlers[k] = append(b.handlers[k], subscription{id: id, fn: fn})
	return func() {
		subs := b.handlers[k]
		for i, s := range subs {
			if s.id == id {
				b.handlers[k] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Emit delivers ev to every handler subscribed to its kind. Handlers added
// during delivery see the next event, not this one.
func (b *Bus) Emit(ev Event) {
	if ev == nil {
		return
	}
	subs := b.handlers[ev.Kind()]
	if len(subs) == 0 {
		return
	}
	snapshot := make([]subscription, len(subs))
	copy(snapshot, subs)
	for _, s := range snapshot {
		s.fn(ev)
	}
}

// Reset drops every subscription.
func (b *Bus) Reset() {
	b.handlers = make(map[Kind][]subscription)
}
