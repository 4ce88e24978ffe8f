package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	DefaultQueueSize   = 16
	DefaultSendTimeout = 30 * time.Second
)

// Async queues messages for a single worker goroutine. Notify never blocks;
// a full queue drops the message.
type Async struct {
	next    Notifier
	log     *slog.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	ch     chan Message
	done   chan struct{}
}

func NewAsync(next Notifier, size int, log *slog.Logger) *Async {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if log == nil {
		log = slog.Default()
	}
	a := &Async{
		next:    next,
		log:     log,
		timeout: DefaultSendTimeout,
		ch:      make(chan Message, size),
		done:    make(chan struct{}),
	}
	go a.run()
	return a
}

// Notify enqueues m. The ctx is not used for delivery, which outlives the
// caller's iteration.
func (a *Async) Notify(_ context.Context, m Message) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}

	select {
	case a.ch <- m:
	default:
		a.log.Warn("notification dropped, queue full", "subject", m.Subject)
	}
	return nil
}

// Close stops accepting messages and waits for the queue to drain.
func (a *Async) Close() error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.ch)
	}
	a.mu.Unlock()

	<-a.done
	return nil
}

func (a *Async) run() {
	defer close(a.done)
	for m := range a.ch {
		if err := a.deliver(m); err != nil {
			a.log.Warn("notification failed", "subject", m.Subject, "err", err)
		}
	}
}

func (a *Async) deliver(m Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notifier panic: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	return a.next.Notify(ctx, m)
}
