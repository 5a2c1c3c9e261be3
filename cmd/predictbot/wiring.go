package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/predictbot/config"
	"github.com/alejandrodnm/predictbot/internal/adapters/events"
	"github.com/alejandrodnm/predictbot/internal/adapters/lock"
	"github.com/alejandrodnm/predictbot/internal/adapters/metrics"
	"github.com/alejandrodnm/predictbot/internal/adapters/storage"
	"github.com/alejandrodnm/predictbot/internal/ports"
)

// openLedger abre el ledger configurado y devuelve su health check.
func openLedger(ctx context.Context, cfg config.StorageConfig) (ports.Ledger, metrics.HealthFunc, error) {
	switch cfg.Driver {
	case "postgres":
		l, err := storage.NewPostgresLedger(cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return l, l.Ping, nil
	case "memory":
		slog.Warn("using in-memory ledger, state is lost on exit")
		return storage.NewMemoryLedger(), func(context.Context) error { return nil }, nil
	default:
		l, err := storage.NewSQLiteLedger(cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		if err := l.Ping(ctx); err != nil {
			l.Close()
			return nil, nil, err
		}
		return l, l.Ping, nil
	}
}

// openLocker devuelve el locker configurado y su cierre.
func openLocker(ctx context.Context, cfg *config.Config) (ports.MarketLocker, func(), error) {
	switch cfg.Lock.Mode {
	case "local":
		return lock.NewLocal(), func() {}, nil
	case "redis":
		rdb, err := lock.Connect(ctx, cfg.Lock.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		return lock.NewRedis(rdb, cfg.LockTTL()), func() { _ = rdb.Close() }, nil
	default:
		return lock.None{}, func() {}, nil
	}
}

func openPublisher(cfg config.EventsConfig) (ports.EventPublisher, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return events.Log{}, nil
	}
	p, err := events.NewKafka(cfg.KafkaBrokers, cfg.Topic)
	if err != nil {
		return nil, fmt.Errorf("open publisher: %w", err)
	}
	return p, nil
}
