// Package dashboard serves the read-only status page, its JSON twin, a
// health probe and the Prometheus endpoint.
package dashboard

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rustyeddy/bracketbot/broker"
	"github.com/rustyeddy/bracketbot/status"
)

const (
	DefaultPort      = 10000
	DefaultTailLines = 60
	DefaultRefresh   = 10 * time.Second
)

type Config struct {
	Port      int
	TailLines int
	Refresh   time.Duration
	// AccountTimeout bounds the live balance lookup per page view.
	AccountTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.TailLines <= 0 {
		c.TailLines = DefaultTailLines
	}
	if c.Refresh <= 0 {
		c.Refresh = DefaultRefresh
	}
	if c.AccountTimeout <= 0 {
		c.AccountTimeout = 5 * time.Second
	}
	return c
}

type Server struct {
	cfg      Config
	store    status.Store
	account  broker.AccountSource
	gatherer prometheus.Gatherer
	log      *slog.Logger
}

type Option func(*Server)

// WithAccountSource makes the page re-fetch balance and equity on every view.
func WithAccountSource(src broker.AccountSource) Option {
	return func(s *Server) { s.account = src }
}

func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

func New(cfg Config, store status.Store, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg.withDefaults(),
		store:    store,
		gatherer: prometheus.DefaultGatherer,
		log:      slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// View is what both / and /api/status render.
type View struct {
	status.Snapshot
	LiveAccount  bool     `json:"live_account"`
	AccountError string   `json:"account_error,omitempty"`
	Log          []string `json:"log"`
	RefreshSecs  int      `json:"-"`
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())
	r.SetHTMLTemplate(template.Must(template.New("index").Parse(indexHTML)))

	r.GET("/", s.index)
	r.GET("/api/status", s.apiStatus)
	r.GET("/healthz", health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	return r
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(s.cfg.Port)),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("dashboard listening", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) index(c *gin.Context) {
	c.HTML(http.StatusOK, "index", s.view(c.Request.Context()))
}

func (s *Server) apiStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.view(c.Request.Context()))
}

func health(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.String(http.StatusOK, "ok")
}

// view never fails; store and account errors are logged and shown as gaps.
func (s *Server) view(ctx context.Context) View {
	v := View{RefreshSecs: int(s.cfg.Refresh / time.Second)}

	snap, err := s.store.Load(ctx)
	if err != nil {
		s.log.Warn("dashboard: load snapshot", "err", err)
	}
	v.Snapshot = snap

	lines, err := s.store.Tail(ctx, s.cfg.TailLines)
	if err != nil {
		s.log.Warn("dashboard: log tail", "err", err)
	}
	v.Log = lines
	if v.Log == nil {
		v.Log = []string{}
	}

	if s.account != nil {
		actx, cancel := context.WithTimeout(ctx, s.cfg.AccountTimeout)
		defer cancel()
		acct, err := s.account.GetAccount(actx)
		if err != nil {
			s.log.Warn("dashboard: account", "err", err)
			v.AccountError = err.Error()
		} else {
			v.Balance, v.Equity = acct.Balance, acct.Equity
			v.LiveAccount = true
		}
	}
	return v
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("http",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"dur", time.Since(start),
		)
	}
}
