package replica

import "sync"

// Bus is a small in-process event bus keyed by collection name. Every
// committed store transaction publishes the set of collections it touched;
// subscribers receive a merged pending set rather than one event per write,
// so a bulk import signals each subscriber a bounded number of times.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*Subscription
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: map[int]*Subscription{}}
}

// Subscription delivers change notifications for a set of collections.
// Ready fires (with cap-1 signal semantics) whenever the pending set becomes
// non-empty; Take drains and returns it.
type Subscription struct {
	bus      *Bus
	id       int
	interest map[Collection]struct{} // nil means every collection
	ready    chan struct{}

	mu      sync.Mutex
	pending map[Collection]struct{}
}

// Subscribe registers interest in the given collections. With no collections
// the subscription receives every change. Call Close when done.
func (b *Bus) Subscribe(cols ...Collection) *Subscription {
	sub := &Subscription{
		bus:     b,
		ready:   make(chan struct{}, 1),
		pending: map[Collection]struct{}{},
	}
	if len(cols) > 0 {
		sub.interest = make(map[Collection]struct{}, len(cols))
		for _, c := range cols {
			sub.interest[c] = struct{}{}
		}
	}
	b.mu.Lock()
	b.nextID++
	sub.id = b.nextID
	b.subs[sub.id] = sub
	b.mu.Unlock()
	return sub
}

// Publish fans the changed collections out to every interested subscriber.
// It never blocks: pending sets are merged and the ready signal is level,
// not queued.
func (b *Bus) Publish(cols []Collection) {
	b.mu.Lock()
	subs := make([]*Subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.Unlock()

	for _, sub := range subs {
		var matched []Collection
		for _, c := range cols {
			if sub.interest == nil {
				matched = append(matched, c)
				continue
			}
			if _, ok := sub.interest[c]; ok {
				matched = append(matched, c)
			}
		}
		if len(matched) == 0 {
			continue
		}
		sub.mu.Lock()
		for _, c := range matched {
			sub.pending[c] = struct{}{}
		}
		sub.mu.Unlock()
		select {
		case sub.ready <- struct{}{}:
		default:
		}
	}
}

// Ready returns the channel that signals a non-empty pending set.
func (s *Subscription) Ready() <-chan struct{} { return s.ready }

// Take drains and returns the pending collection set in All() order.
func (s *Subscription) Take() []Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return nil
	}
	var out []Collection
	for _, c := range All() {
		if _, ok := s.pending[c]; ok {
			out = append(out, c)
		}
	}
	s.pending = map[Collection]struct{}{}
	return out
}

// Close removes the subscription from the bus.
func (s *Subscription) Close() {
	s.bus.mu.Lock()
	delete(s.bus.subs, s.id)
	s.bus.mu.Unlock()
}
