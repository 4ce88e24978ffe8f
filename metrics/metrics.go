// Package metrics holds the Prometheus collectors the run loop updates.
//
//   - bracketbot_decisions_total{signal}      decisions by signal (long|short|none)
//   - bracketbot_orders_total{side,result}    orders by side and result (filled|failed)
//   - bracketbot_remote_retries_total{op}     retried remote calls by operation
//   - bracketbot_iteration_errors_total       iterations that ended in an error or panic
//   - bracketbot_balance, bracketbot_equity   last account snapshot
//   - bracketbot_trades_today                 throttle counter
//   - bracketbot_cooldown_remaining           throttle cooldown
//   - bracketbot_connected                    1 once the account call succeeded
//
// A nil *Metrics is valid and records nothing.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "bracketbot"

type Metrics struct {
	decisions       *prometheus.CounterVec
	orders          *prometheus.CounterVec
	retries         *prometheus.CounterVec
	iterationErrors prometheus.Counter

	balance   prometheus.Gauge
	equity    prometheus.Gauge
	trades    prometheus.Gauge
	cooldown  prometheus.Gauge
	connected prometheus.Gauge
}

// New creates the collectors and registers them on reg. It panics on a
// duplicate registration, like prometheus.MustRegister.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decisions_total",
			Help:      "Decisions taken, by signal.",
		}, []string{"signal"}),
		orders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_total",
			Help:      "Market orders submitted, by side and result.",
		}, []string{"side", "result"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_retries_total",
			Help:      "Remote calls retried, by operation.",
		}, []string{"op"}),
		iterationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "iteration_errors_total",
			Help:      "Loop iterations that failed or panicked.",
		}),
		balance: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "balance",
			Help:      "Account balance from the last account call.",
		}),
		equity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "equity",
			Help:      "Account equity from the last account call.",
		}),
		trades: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "trades_today",
			Help:      "Entries filled since the last day rollover.",
		}),
		cooldown: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cooldown_remaining",
			Help:      "Iterations left before a new entry is allowed.",
		}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected",
			Help:      "1 when the account endpoint has answered.",
		}),
	}

	reg.MustRegister(
		m.decisions, m.orders, m.retries, m.iterationErrors,
		m.balance, m.equity, m.trades, m.cooldown, m.connected,
	)
	return m
}

func (m *Metrics) Decision(signal string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(signal).Inc()
}

func (m *Metrics) Order(side, result string) {
	if m == nil {
		return
	}
	m.orders.WithLabelValues(side, result).Inc()
}

func (m *Metrics) Retry(op string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(op).Inc()
}

func (m *Metrics) IterationError() {
	if m == nil {
		return
	}
	m.iterationErrors.Inc()
}

func (m *Metrics) Account(balance, equity float64) {
	if m == nil {
		return
	}
	m.balance.Set(balance)
	m.equity.Set(equity)
}

func (m *Metrics) Throttle(tradesToday, cooldown int) {
	if m == nil {
		return
	}
	m.trades.Set(float64(tradesToday))
	m.cooldown.Set(float64(cooldown))
}

func (m *Metrics) Connected(up bool) {
	if m == nil {
		return
	}
	if up {
		m.connected.Set(1)
	} else {
		m.connected.Set(0)
	}
}
