package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/bracketbot/broker/fxopen"
	"github.com/rustyeddy/bracketbot/config"
	"github.com/rustyeddy/bracketbot/dashboard"
	"github.com/rustyeddy/bracketbot/journal"
	"github.com/rustyeddy/bracketbot/live"
	"github.com/rustyeddy/bracketbot/logging"
	"github.com/rustyeddy/bracketbot/metrics"
	"github.com/rustyeddy/bracketbot/notify"
	"github.com/rustyeddy/bracketbot/risk"
	"github.com/rustyeddy/bracketbot/status"
	"github.com/rustyeddy/bracketbot/strategies"
)

func newRunCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the live decision loop and dashboard until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rc.load(cmd)
			if err != nil {
				return err
			}
			if err := cfg.RequireCredentials(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runBot(ctx, cfg)
		},
	}
}

func runBot(ctx context.Context, cfg *config.Config) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	store, closeStore, err := openStatus(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	lines := status.NewLineWriter(1024)
	go status.Ship(ctx, lines.Lines(), store, nil)

	log, logFile, err := logging.New(logging.Options{
		Level:    cfg.Log.Level,
		File:     cfg.Log.File,
		Extra:    []io.Writer{lines},
		Location: loc,
	})
	if err != nil {
		return err
	}
	defer logFile.Close()
	slog.SetDefault(log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	fxcfg, err := cfg.FXOpenConfig()
	if err != nil {
		return err
	}
	client, err := fxopen.NewClient(fxcfg,
		fxopen.WithLogger(log),
		fxopen.WithRetryHook(func(op string, attempt int, err error) { m.Retry(op) }),
	)
	if err != nil {
		return err
	}

	strat, err := strategies.StrategyByName(cfg.Strategy.Name, cfg.StrategyParams())
	if err != nil {
		return err
	}

	j, err := openJournal(cfg)
	if err != nil {
		return err
	}
	defer j.Close()

	var notifier notify.Notifier = notify.Nop{}
	if cfg.Notify.Enabled {
		mail, err := notify.NewSMTP(cfg.SMTPConfig())
		if err != nil {
			return err
		}
		async := notify.NewAsync(mail, cfg.Notify.QueueSize, log)
		defer async.Close()
		notifier = async
	}

	lc, err := cfg.LiveConfig()
	if err != nil {
		return err
	}

	if cfg.Dashboard.Enabled {
		opts := []dashboard.Option{dashboard.WithGatherer(reg), dashboard.WithLogger(log)}
		if cfg.Dashboard.LiveAccount {
			opts = append(opts, dashboard.WithAccountSource(client))
		}
		srv := dashboard.New(cfg.DashboardConfig(), store, opts...)
		go func() {
			if err := srv.Run(ctx); err != nil {
				log.Error("dashboard stopped", "err", err)
			}
		}()
	}

	runner := &live.Runner{
		Config:   lc,
		Broker:   client,
		Strategy: strat,
		Throttle: risk.NewThrottle(cfg.ThrottleConfig(), loc),
		Journal:  j,
		Notifier: notifier,
		Status:   store,
		Metrics:  m,
		Log:      log,
	}
	return runner.Run(ctx)
}

func openStatus(ctx context.Context, cfg *config.Config) (status.Store, func(), error) {
	if cfg.Status.Backend != "redis" {
		return status.NewMemory(cfg.Status.MaxLines), func() {}, nil
	}
	rdb, err := status.NewRedisClient(ctx, cfg.Status.RedisAddr, cfg.Status.RedisPassword, cfg.Status.RedisDB)
	if err != nil {
		return nil, nil, err
	}
	return status.NewRedis(rdb, cfg.Status.Prefix, cfg.Status.MaxLines), func() { _ = rdb.Close() }, nil
}

func openJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	case "csv":
		return journal.NewCSV(cfg.Journal.OrdersFile, cfg.Journal.EquityFile)
	case "none", "":
		return journal.Nop{}, nil
	}
	return nil, fmt.Errorf("unknown journal type %q", cfg.Journal.Type)
}
