// Package watcher avisa de los mercados cuyo deadline pasó y siguen sin resolver.
// Las apuestas ya están cerradas para ellos; falta que alguien los resuelva.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alejandrodnm/predictbot/internal/domain"
	"github.com/alejandrodnm/predictbot/internal/ports"
)

const DefaultInterval = time.Minute

// MarketLister es lo mínimo que el watcher necesita del servicio de mercados.
type MarketLister interface {
	ListOpenMarkets(ctx context.Context) ([]domain.Market, error)
}

// Watcher revisa periódicamente los mercados abiertos.
type Watcher struct {
	markets  MarketLister
	notifier ports.Notifier
	interval time.Duration
	now      func() time.Time

	mu       sync.Mutex
	reported map[string]bool
}

// New crea un watcher. interval <= 0 usa DefaultInterval.
func New(markets MarketLister, notifier ports.Notifier, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Watcher{
		markets:  markets,
		notifier: notifier,
		interval: interval,
		now:      time.Now,
		reported: make(map[string]bool),
	}
}

// Run ejecuta un ciclo inmediato y luego uno por intervalo hasta que ctx termine.
func (w *Watcher) Run(ctx context.Context) error {
	slog.Info("watcher starting", "interval", w.interval)

	if _, err := w.RunOnce(ctx); err != nil {
		slog.Error("watch cycle failed", "err", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("watcher stopped")
			return nil
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				slog.Error("watch cycle failed", "err", err)
			}
		}
	}
}

// RunOnce notifica los mercados vencidos que no se habían reportado y los devuelve.
// Cada mercado se reporta una sola vez por proceso.
func (w *Watcher) RunOnce(ctx context.Context) ([]domain.Market, error) {
	open, err := w.markets.ListOpenMarkets(ctx)
	if err != nil {
		return nil, fmt.Errorf("watcher.RunOnce: list: %w", err)
	}

	now := w.now()
	var due []domain.Market
	w.mu.Lock()
	for _, m := range open {
		if m.Expired(now) && !w.reported[m.ID] {
			w.reported[m.ID] = true
			due = append(due, m)
		}
	}
	w.mu.Unlock()

	if len(due) == 0 {
		return nil, nil
	}
	slog.Info("watcher: markets awaiting resolution", "count", len(due))
	if err := w.notifier.AwaitingResolution(ctx, due); err != nil {
		return due, fmt.Errorf("watcher.RunOnce: notify: %w", err)
	}
	return due, nil
}
