package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

func TestMemorySnapshot(t *testing.T) {
	m := NewMemory(0)

	s, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Snapshot{}, s)

	want := Snapshot{Symbol: "XAUUSD", State: "connected", Balance: 10000}
	require.NoError(t, m.Save(ctx, want))
	got, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestMemoryTailRing(t *testing.T) {
	m := NewMemory(3)
	for i := 1; i <= 5; i++ {
		require.NoError(t, m.AppendLog(ctx, fmt.Sprintf("line %d", i)))
	}

	all, err := m.Tail(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"line 3", "line 4", "line 5"}, all)

	two, err := m.Tail(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"line 4", "line 5"}, two)

	empty, err := NewMemory(3).Tail(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryConcurrentReaders(t *testing.T) {
	m := NewMemory(10)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = m.Load(ctx)
				_, _ = m.Tail(ctx, 5)
			}
		}()
	}
	for j := 0; j < 100; j++ {
		_ = m.Save(ctx, Snapshot{TradesToday: j})
		_ = m.AppendLog(ctx, "x")
	}
	wg.Wait()
}

func TestRedisSaveLoad(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	r := NewRedis(rdb, "bot", 100)

	snap := Snapshot{
		Symbol:    "XAUUSD",
		State:     "evaluating",
		Equity:    10010,
		UpdatedAt: time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC),
	}
	b, err := json.Marshal(snap)
	require.NoError(t, err)

	mock.ExpectSet("bot:snapshot", b, 0).SetVal("OK")
	mock.ExpectGet("bot:snapshot").SetVal(string(b))

	require.NoError(t, r.Save(ctx, snap))
	got, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLoadMissing(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	r := NewRedis(rdb, "", 0)

	mock.ExpectGet("bracketbot:snapshot").RedisNil()
	s, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Snapshot{}, s)

	mock.ExpectGet("bracketbot:snapshot").SetErr(errors.New("conn refused"))
	_, err = r.Load(ctx)
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLog(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	r := NewRedis(rdb, "bot", 50)

	mock.ExpectRPush("bot:log", "12:00:00 | hello").SetVal(1)
	mock.ExpectLTrim("bot:log", -50, -1).SetVal("OK")
	mock.ExpectLRange("bot:log", -10, -1).SetVal([]string{"12:00:00 | hello"})

	require.NoError(t, r.AppendLog(ctx, "12:00:00 | hello"))
	lines, err := r.Tail(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"12:00:00 | hello"}, lines)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLineWriterSplitsAndDrops(t *testing.T) {
	w := NewLineWriter(2)

	n, err := w.Write([]byte("a\nb"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	_, _ = w.Write([]byte("c\nd\n"))

	assert.Equal(t, "a", <-w.Lines())
	assert.Equal(t, "bc", <-w.Lines())
	select {
	case l := <-w.Lines():
		t.Fatalf("expected dropped line, got %q", l)
	default:
	}
}

func TestShip(t *testing.T) {
	m := NewMemory(10)
	ch := make(chan string, 3)
	ch <- "one"
	ch <- "two"
	close(ch)

	Ship(context.Background(), ch, m, nil)

	lines, err := m.Tail(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, lines)
}

type failingStore struct{ Memory }

func (f *failingStore) AppendLog(context.Context, string) error { return errors.New("down") }

func TestShipReportsErrors(t *testing.T) {
	ch := make(chan string, 1)
	ch <- "x"
	close(ch)

	var got []error
	Ship(context.Background(), ch, &failingStore{}, func(err error) { got = append(got, err) })
	assert.Len(t, got, 1)
}
