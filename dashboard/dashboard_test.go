package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/bracketbot/broker"
	"github.com/rustyeddy/bracketbot/logging"
	"github.com/rustyeddy/bracketbot/metrics"
	"github.com/rustyeddy/bracketbot/status"
)

type fakeAccount struct {
	acct broker.Account
	err  error
}

func (f fakeAccount) GetAccount(context.Context) (broker.Account, error) { return f.acct, f.err }

func newStore(t *testing.T) *status.Memory {
	t.Helper()
	st := status.NewMemory(10)
	ctx := context.Background()
	require.NoError(t, st.Save(ctx, status.Snapshot{
		Symbol:            "XAUUSD",
		State:             "evaluating",
		Message:           "No signal",
		Balance:           10000,
		Equity:            10000,
		TradesToday:       2,
		CooldownRemaining: 5,
		LastDecision:      "no signal",
		UpdatedAt:         time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, st.AppendLog(ctx, "09:00:00 | No signal"))
	return st
}

func do(t *testing.T, r http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestIndexAndAPI(t *testing.T) {
	gin.SetMode(gin.TestMode)

	srv := New(Config{}, newStore(t), WithLogger(logging.Discard()))
	r := srv.Router()

	w := do(t, r, "/")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `content="10"`)
	assert.Contains(t, body, "XAUUSD bot")
	assert.Contains(t, body, "10000.00 (cached)")
	assert.Contains(t, body, "09:00:00 | No signal")

	w = do(t, r, "/api/status")
	require.Equal(t, http.StatusOK, w.Code)
	var v View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	assert.Equal(t, 2, v.TradesToday)
	assert.Equal(t, 5, v.CooldownRemaining)
	assert.False(t, v.LiveAccount)
	assert.Equal(t, []string{"09:00:00 | No signal"}, v.Log)
}

func TestLiveAccount(t *testing.T) {
	gin.SetMode(gin.TestMode)

	srv := New(Config{}, newStore(t),
		WithLogger(logging.Discard()),
		WithAccountSource(fakeAccount{acct: broker.Account{Balance: 12000, Equity: 11950}}))
	w := do(t, srv.Router(), "/api/status")

	var v View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	assert.True(t, v.LiveAccount)
	assert.Equal(t, 12000.0, v.Balance)
	assert.Equal(t, 11950.0, v.Equity)

	srv = New(Config{}, newStore(t),
		WithLogger(logging.Discard()),
		WithAccountSource(fakeAccount{err: errors.New("timeout")}))
	w = do(t, srv.Router(), "/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "account: timeout")
	assert.Contains(t, w.Body.String(), "10000.00 (cached)")
}

func TestEmptyStore(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := do(t, New(Config{}, status.NewMemory(0), WithLogger(logging.Discard())).Router(), "/api/status")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"log":[]`)
}

func TestHealthz(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := do(t, New(Config{}, status.NewMemory(0)).Router(), "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestMetricsEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.Throttle(4, 0)

	w := do(t, New(Config{}, status.NewMemory(0), WithGatherer(reg)).Router(), "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bracketbot_trades_today 4")
}
