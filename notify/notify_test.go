package notify

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/bracketbot/logging"
)

type recorder struct {
	mu   sync.Mutex
	got  []Message
	gate chan struct{}
}

func (r *recorder) Notify(_ context.Context, m Message) error {
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, m)
	return nil
}

func (r *recorder) messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.got...)
}

func TestAsyncDeliversAndDrains(t *testing.T) {
	rec := &recorder{}
	a := NewAsync(rec, 4, logging.Discard())

	require.NoError(t, a.Notify(context.Background(), Message{Subject: "BOT STARTED"}))
	require.NoError(t, a.Notify(context.Background(), Message{Subject: "BOT IS LIVE"}))
	require.NoError(t, a.Close())

	got := rec.messages()
	require.Len(t, got, 2)
	assert.Equal(t, "BOT STARTED", got[0].Subject)
	assert.Equal(t, "BOT IS LIVE", got[1].Subject)

	assert.ErrorIs(t, a.Notify(context.Background(), Message{}), ErrClosed)
	assert.NoError(t, a.Close())
}

func TestAsyncDropsWhenFull(t *testing.T) {
	rec := &recorder{gate: make(chan struct{})}
	a := NewAsync(rec, 1, logging.Discard())

	start := time.Now()
	for i := 0; i < 10; i++ {
		require.NoError(t, a.Notify(context.Background(), Message{Subject: "x"}))
	}
	assert.Less(t, time.Since(start), time.Second)

	close(rec.gate)
	require.NoError(t, a.Close())

	// one in flight at most plus one queued
	assert.LessOrEqual(t, len(rec.messages()), 2)
	assert.NotEmpty(t, rec.messages())
}

func TestAsyncSwallowsErrorsAndPanics(t *testing.T) {
	calls := 0
	n := Func(func(_ context.Context, m Message) error {
		calls++
		switch m.Subject {
		case "panic":
			panic("boom")
		case "fail":
			return errors.New("smtp down")
		}
		return nil
	})

	a := NewAsync(n, 4, logging.Discard())
	_ = a.Notify(context.Background(), Message{Subject: "panic"})
	_ = a.Notify(context.Background(), Message{Subject: "fail"})
	_ = a.Notify(context.Background(), Message{Subject: "ok"})
	require.NoError(t, a.Close())

	assert.Equal(t, 3, calls)
}

func TestSMTPBuildsHTMLMail(t *testing.T) {
	s, err := NewSMTP(SMTPConfig{
		From:     "bot@example.com",
		Password: "secret",
		To:       []string{"ops@example.com"},
	})
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC) }

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	s.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		assert.NotNil(t, a)
		return nil
	}

	err = s.Notify(context.Background(), Message{Subject: "TRADE BUY", Body: "XAUUSD BUY<br>Entry: 2650.00000"})
	require.NoError(t, err)

	assert.Equal(t, "smtp.gmail.com:587", gotAddr)
	assert.Equal(t, "bot@example.com", gotFrom)
	assert.Equal(t, []string{"ops@example.com"}, gotTo)

	msg := string(gotMsg)
	assert.Contains(t, msg, "Subject: TRADE BUY\r\n")
	assert.Contains(t, msg, "To: ops@example.com\r\n")
	assert.Contains(t, msg, "Content-Type: text/html")
	assert.True(t, strings.HasSuffix(msg, "XAUUSD BUY<br>Entry: 2650.00000\r\n"))
}

func TestSMTPErrors(t *testing.T) {
	_, err := NewSMTP(SMTPConfig{To: []string{"a@b"}})
	assert.EqualError(t, err, "sender email is required")

	s, err := NewSMTP(SMTPConfig{From: "a@b", To: []string{"c@d"}})
	require.NoError(t, err)
	s.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("535 auth failed") }
	assert.ErrorContains(t, s.Notify(context.Background(), Message{Subject: "x"}), "535 auth failed")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Notify(ctx, Message{}), context.Canceled)
}

func TestNopAndFunc(t *testing.T) {
	assert.NoError(t, Nop{}.Notify(context.Background(), Message{}))
}
