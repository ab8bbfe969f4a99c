package events

import (
	"sync"
	"sync/atomic"
)

const DefaultBuffer = 16

// Broker is a typed in-process publish/subscribe channel.
// Publish never blocks: a subscriber whose buffer is full misses the message.
type Broker[T any] struct {
	mu      sync.RWMutex
	subs    map[int]chan T
	nextID  int
	buffer  int
	closed  bool
	dropped atomic.Uint64
}

func NewBroker[T any](buffer int) *Broker[T] {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Broker[T]{
		subs:   make(map[int]chan T),
		buffer: buffer,
	}
}

// Subscribe returns a receive channel and a function that detaches it.
// The channel is closed on unsubscribe or when the broker closes.
func (b *Broker[T]) Subscribe() (<-chan T, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan T, b.buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
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

// Publish delivers msg to every subscriber with room in its buffer and returns how many received it.
func (b *Broker[T]) Publish(msg T) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return 0
	}

	delivered := 0
	for _, ch := range b.subs {
		select {
		case ch <- msg:
			delivered++
		default:
			b.dropped.Add(1)
		}
	}
	return delivered
}

// Dropped counts deliveries skipped because a subscriber was full.
func (b *Broker[T]) Dropped() uint64 {
	return b.dropped.Load()
}

func (b *Broker[T]) Close() {
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
