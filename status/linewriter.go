package status

import (
	"bytes"
	"context"
	"sync"
)

// LineWriter splits writes into lines and queues them without blocking.
// Lines are dropped when the queue is full.
type LineWriter struct {
	mu  sync.Mutex
	ch  chan string
	buf []byte
}

func NewLineWriter(size int) *LineWriter {
	if size <= 0 {
		size = 256
	}
	return &LineWriter{ch: make(chan string, size)}
}

func (w *LineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		line := string(w.buf[:i])
		w.buf = w.buf[i+1:]
		select {
		case w.ch <- line:
		default:
		}
	}
	return len(p), nil
}

func (w *LineWriter) Lines() <-chan string { return w.ch }

// Ship copies queued lines into s until ctx ends. Store errors are passed to
// onErr, which may be nil.
func Ship(ctx context.Context, lines <-chan string, s Store, onErr func(error)) {
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if err := s.AppendLog(ctx, line); err != nil && onErr != nil {
				onErr(err)
			}
		}
	}
}
