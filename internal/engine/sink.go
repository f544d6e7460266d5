package engine

import (
	"sync"
	"time"
)

// DefaultDoneWait bounds how long a Broadcaster waits on a full subscriber
// before dropping a terminal event.
const DefaultDoneWait = 250 * time.Millisecond

// Sink receives the events of every operation. Implementations must be safe
// for concurrent use; events of one operation are emitted from one goroutine.
// Emission is fire-and-forget: any error other than ErrSinkClosed is ignored.
type Sink interface {
	Emit(Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event) error

func (f SinkFunc) Emit(ev Event) error {
	return f(ev)
}

// DiscardSink drops every event.
var DiscardSink Sink = SinkFunc(func(Event) error { return nil })

// Broadcaster fans events out to subscribers over buffered channels. A
// subscriber whose buffer is full misses intermediate events. Terminal events
// (Done set) wait up to DoneWait for buffer space and are dropped only after
// that, so a subscriber that stays stuck can still miss the end of an
// operation. Drops are reported to the observer.
type Broadcaster struct {
	mu       sync.RWMutex
	subs     map[uint64]chan Event
	nextSub  uint64
	buffer   int
	closed   bool
	observer Observer

	// DoneWait is how long a terminal event may block on a full subscriber.
	DoneWait time.Duration
}

// NewBroadcaster creates a Broadcaster whose subscriber channels hold buffer events.
func NewBroadcaster(buffer int, observer Observer) *Broadcaster {
	if buffer <= 0 {
		buffer = 256
	}
	if observer == nil {
		observer = NopObserver{}
	}
	return &Broadcaster{
		subs:     make(map[uint64]chan Event),
		buffer:   buffer,
		observer: observer,
		DoneWait: DefaultDoneWait,
	}
}

// Subscribe registers a new listener. The returned function unsubscribes and
// closes the channel; it is safe to call more than once.
func (b *Broadcaster) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, b.buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	b.nextSub++
	id := b.nextSub
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
		})
	}
}

// Emit delivers ev to every subscriber. Intermediate events never block;
// terminal events wait at most DoneWait per full subscriber.
func (b *Broadcaster) Emit(ev Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrSinkClosed
	}
	for _, ch := range b.subs {
		select {
		case ch <- ev:
			continue
		default:
		}
		if ev.Done && b.deliverLate(ch, ev) {
			continue
		}
		b.observer.EventDropped()
	}
	return nil
}

func (b *Broadcaster) deliverLate(ch chan Event, ev Event) bool {
	if b.DoneWait <= 0 {
		return false
	}
	timer := time.NewTimer(b.DoneWait)
	defer timer.Stop()
	select {
	case ch <- ev:
		return true
	case <-timer.C:
		return false
	}
}

// Subscribers returns the number of active subscribers.
func (b *Broadcaster) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close stops delivery and closes every subscriber channel. Later Emit calls
// return ErrSinkClosed.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
