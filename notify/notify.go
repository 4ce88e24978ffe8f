// Package notify delivers operator notifications. Delivery is fire and
// forget: the run loop wraps its notifier in Async and never waits on it.
package notify

import (
	"context"
	"errors"
)

var ErrClosed = errors.New("notifier closed")

type Message struct {
	Subject string
	// Body is HTML.
	Body string
}

type Notifier interface {
	Notify(ctx context.Context, m Message) error
}

// Func adapts a plain function to a Notifier.
type Func func(ctx context.Context, m Message) error

func (f Func) Notify(ctx context.Context, m Message) error { return f(ctx, m) }

type Nop struct{}

func (Nop) Notify(context.Context, Message) error { return nil }
