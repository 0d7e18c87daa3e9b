package output

import (
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/Builtbyjb/tide/pkg/lib"
)

// ErrBroadcasterStopped is returned by Subscribe once Stop has been called.
var ErrBroadcasterStopped = errors.New("broadcaster is stopped")

// Broadcaster fans values out to subscribers. Every channel holds at most one
// value: a slow subscriber only ever sees the latest one, and publishers never
// block on it.
type Broadcaster[T any] struct {
	inbox  chan T
	logger *log.Logger

	mu          sync.Mutex
	subscribers map[chan T]struct{}
	stopped     bool
	done        chan struct{}
}

// NewBroadcaster starts the fan-out goroutine and returns the broadcaster.
func NewBroadcaster[T any](logger *log.Logger) *Broadcaster[T] {
	if logger == nil {
		logger = lib.DiscardLogger("broadcaster")
	}
	b := &Broadcaster[T]{
		inbox:       make(chan T, 1),
		logger:      logger,
		subscribers: make(map[chan T]struct{}),
		done:        make(chan struct{}),
	}

	go b.run()

	return b
}

func (b *Broadcaster[T]) run() {
	defer close(b.done)

	for msg := range b.inbox {
		// Delivery never blocks, so holding the lock keeps Unsubscribe from
		// closing a channel mid-send.
		b.mu.Lock()
		for s := range b.subscribers {
			replaceLatest(s, msg)
		}
		b.mu.Unlock()
	}

	b.mu.Lock()
	for s := range b.subscribers {
		close(s)
	}
	b.subscribers = nil
	b.mu.Unlock()
	b.logger.Debug("broadcaster stopped")
}

// replaceLatest puts msg into a one-slot channel, evicting a stale value.
// Only the broadcaster goroutine sends on subscriber channels, so the second
// send cannot block.
func replaceLatest[T any](ch chan T, msg T) {
	select {
	case ch <- msg:
	default:
		select {
		case <-ch:
		default:
		}
		ch <- msg
	}
}

// Publish hands msg to the fan-out goroutine. Publishing after Stop is a no-op.
func (b *Broadcaster[T]) Publish(msg T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return
	}
	select {
	case b.inbox <- msg:
	default:
		select {
		case <-b.inbox:
		default:
		}
		b.inbox <- msg
	}
}

// Subscribe registers a new one-slot channel. It is closed by Stop.
func (b *Broadcaster[T]) Subscribe() (chan T, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return nil, ErrBroadcasterStopped
	}
	ch := make(chan T, 1)
	b.subscribers[ch] = struct{}{}
	b.logger.Debug("new subscriber", "subscribers", len(b.subscribers))
	return ch, nil
}

// Unsubscribe removes ch and closes it, unless Stop already did.
func (b *Broadcaster[T]) Unsubscribe(ch chan T) {
	b.mu.Lock()
	_, ok := b.subscribers[ch]
	delete(b.subscribers, ch)
	b.mu.Unlock()
	if ok {
		close(ch)
	}
}

// Stop closes every subscriber channel once pending values are delivered.
// It is safe to call more than once.
func (b *Broadcaster[T]) Stop() {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return
	}
	b.stopped = true
	close(b.inbox)
	b.mu.Unlock()
	<-b.done
}
