package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alejandrodnm/predictbot/config"
	"github.com/alejandrodnm/predictbot/internal/adapters/cli"
	"github.com/alejandrodnm/predictbot/internal/adapters/metrics"
	"github.com/alejandrodnm/predictbot/internal/adapters/notify"
	"github.com/alejandrodnm/predictbot/internal/application/market"
	"github.com/alejandrodnm/predictbot/internal/application/watcher"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	compact := flag.Bool("compact", false, "print market lists as one line per market")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	slog.Info("predictbot starting",
		"config", *configPath,
		"storage", cfg.Storage.Driver,
		"lock", cfg.Lock.Mode,
		"kafka", len(cfg.Events.KafkaBrokers) > 0,
		"metrics", cfg.Metrics.Addr,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ledger, health, err := openLedger(ctx, cfg.Storage)
	if err != nil {
		slog.Error("failed to open ledger", "err", err, "driver", cfg.Storage.Driver)
		os.Exit(1)
	}
	defer ledger.Close()

	locker, closeLocker, err := openLocker(ctx, cfg)
	if err != nil {
		slog.Error("failed to set up market lock", "err", err, "mode", cfg.Lock.Mode)
		os.Exit(1)
	}
	defer closeLocker()

	publisher, err := openPublisher(cfg.Events)
	if err != nil {
		slog.Error("failed to set up event publisher", "err", err)
		os.Exit(1)
	}
	defer publisher.Close()

	prom := metrics.NewPrometheus()
	svc := market.New(ledger, market.Config{
		LeaderboardSize: cfg.Market.LeaderboardSize,
		BetsPerMinute:   cfg.Market.BetsPerMinute,
	},
		market.WithLocker(locker),
		market.WithPublisher(publisher),
		market.WithMetrics(prom),
	)
	console := notify.NewConsole(!*compact)

	// Tareas de fondo: watcher de deadlines y servidor de métricas.
	bgCtx, stopBackground := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(bgCtx)
	g.Go(func() error {
		return watcher.New(svc, console, cfg.WatchInterval()).Run(gctx)
	})
	if cfg.Metrics.Addr != "" {
		srv := metrics.StartServer(cfg.Metrics.Addr, prom.Registry(), health)
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, stop := context.WithTimeout(context.Background(), 2*time.Second)
			defer stop()
			return srv.Shutdown(shutdownCtx)
		})
	}

	repl := cli.New(svc, console, os.Stdout, cfg.DefaultDeadline())

	// stdin no se puede interrumpir: el REPL corre aparte y main sale con la señal.
	done := make(chan error, 1)
	go func() { done <- repl.Run(ctx, os.Stdin) }()

	select {
	case err := <-done:
		if err != nil {
			slog.Error("console exited with error", "err", err)
		}
	case <-ctx.Done():
	}

	stopBackground()
	if err := g.Wait(); err != nil {
		slog.Warn("background task exited with error", "err", err)
	}

	slog.Info("predictbot stopped cleanly")
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	// stderr: stdout es la consola del REPL
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
