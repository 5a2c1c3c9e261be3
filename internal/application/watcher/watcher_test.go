package watcher_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/predictbot/internal/application/watcher"
	"github.com/alejandrodnm/predictbot/internal/domain"
	"github.com/alejandrodnm/predictbot/internal/ports"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type staticLister struct {
	markets []domain.Market
	err     error
}

func (s *staticLister) ListOpenMarkets(context.Context) ([]domain.Market, error) {
	return s.markets, s.err
}

// recordingNotifier solo implementa AwaitingResolution; el resto no se usa aquí.
type recordingNotifier struct {
	ports.Notifier
	batches [][]domain.Market
}

func (r *recordingNotifier) AwaitingResolution(_ context.Context, markets []domain.Market) error {
	r.batches = append(r.batches, markets)
	return nil
}

func market(id string, deadline time.Time) domain.Market {
	return domain.NewMarket(id, "Q "+id, "carol", deadline, now.Add(-48*time.Hour))
}

func TestRunOnce_ReportsExpiredOnce(t *testing.T) {
	lister := &staticLister{markets: []domain.Market{
		market("past", now.Add(-time.Minute)),
		market("future", now.Add(time.Hour)),
	}}
	n := &recordingNotifier{}
	w := watcher.New(lister, n, time.Second)
	w.SetClock(func() time.Time { return now })

	due, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "past", due[0].ID)

	due, err = w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, due)
	assert.Len(t, n.batches, 1)
}

func TestRunOnce_ListError(t *testing.T) {
	w := watcher.New(&staticLister{err: errors.New("db gone")}, &recordingNotifier{}, 0)
	_, err := w.RunOnce(context.Background())
	assert.ErrorContains(t, err, "db gone")
}

func TestRun_StopsOnCancel(t *testing.T) {
	w := watcher.New(&staticLister{}, &recordingNotifier{}, 10*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.NoError(t, w.Run(ctx))
}
