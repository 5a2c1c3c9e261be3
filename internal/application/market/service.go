// Package market orchestrates market creation, bet placement and resolution
// on top of a ports.Ledger. It owns no state of its own: every read and
// write goes through the ledger, and every multi-row change is a single
// ledger commit.
package market

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/alejandrodnm/predictbot/internal/domain"
	"github.com/alejandrodnm/predictbot/internal/ports"
)

// Config holds market-service settings.
type Config struct {
	// LeaderboardSize is the default board length when the caller passes 0.
	LeaderboardSize int
	// BetsPerMinute throttles placements per user. 0 disables the limit.
	BetsPerMinute int
}

// Service is the single entry point the outer surfaces (console, chat bot) use.
type Service struct {
	ledger  ports.Ledger
	locker  ports.MarketLocker
	events  ports.EventPublisher
	metrics ports.Metrics
	cfg     Config
	now     func() time.Time
	limiter *userLimiter
}

// Option customizes a Service.
type Option func(*Service)

// WithLocker serializes placements and resolutions per market.
func WithLocker(l ports.MarketLocker) Option {
	return func(s *Service) { s.locker = l }
}

// WithPublisher sets the event publisher used after each commit.
func WithPublisher(p ports.EventPublisher) Option {
	return func(s *Service) { s.events = p }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m ports.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a market service.
func New(ledger ports.Ledger, cfg Config, opts ...Option) *Service {
	if cfg.LeaderboardSize <= 0 {
		cfg.LeaderboardSize = domain.DefaultBoardSize
	}
	s := &Service{
		ledger:  ledger,
		locker:  noLock{},
		events:  nopPublisher{},
		metrics: nopMetrics{},
		cfg:     cfg,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if cfg.BetsPerMinute > 0 {
		s.limiter = newUserLimiter(cfg.BetsPerMinute)
	}
	return s
}

// CreateMarket opens a new market with a time-ordered id and probability 0.5.
func (s *Service) CreateMarket(ctx context.Context, question, creator string, deadline time.Time) (domain.Market, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return domain.Market{}, domain.ErrEmptyQuestion
	}
	now := s.now()
	if !deadline.After(now) {
		return domain.Market{}, domain.ErrInvalidDeadline
	}

	id, err := uuid.NewV7()
	if err != nil {
		return domain.Market{}, fmt.Errorf("market.CreateMarket: id: %w", err)
	}
	m := domain.NewMarket(id.String(), question, creator, deadline.UTC(), now)

	start := time.Now()
	err = s.ledger.CreateMarket(ctx, m)
	s.metrics.CommitDuration("create", time.Since(start))
	if err != nil {
		return domain.Market{}, s.wrap("market.CreateMarket", err)
	}

	s.metrics.MarketCreated()
	slog.Info("market: created",
		"market_id", m.ID,
		"creator", creator,
		"deadline", m.Deadline.Format(time.RFC3339),
		"question", domain.TruncateQuestion(question, m.ID, 60),
	)
	s.publish(ctx, domain.Event{
		Type:        domain.EventMarketCreated,
		MarketID:    m.ID,
		UserID:      creator,
		Probability: m.Probability,
		At:          now,
	})
	return m, nil
}

// wrap leaves domain errors untouched and turns everything else into a
// retryable PersistenceError.
func (s *Service) wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if domain.IsDomainError(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &domain.PersistenceError{Op: op, Err: err}
}

// publish runs after a successful commit. A failure is logged and counted;
// the committed state stays.
func (s *Service) publish(ctx context.Context, ev domain.Event) {
	if err := s.events.Publish(ctx, ev); err != nil {
		s.metrics.PublishFailed()
		slog.Warn("market: publish failed", "type", ev.Type, "market_id", ev.MarketID, "err", err)
	}
}

// lock acquires the per-market lock when one is configured.
func (s *Service) lock(ctx context.Context, marketID string) (func(), error) {
	unlock, err := s.locker.Lock(ctx, marketID)
	if err != nil {
		return nil, fmt.Errorf("market: lock %s: %w", marketID, err)
	}
	return unlock, nil
}

// userLimiter keeps one token bucket per user.
type userLimiter struct {
	mu      sync.Mutex
	perUser map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
}

func newUserLimiter(perMinute int) *userLimiter {
	return &userLimiter{
		perUser: make(map[string]*rate.Limiter),
		limit:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   perMinute,
	}
}

func (l *userLimiter) allow(userID string) bool {
	l.mu.Lock()
	lim, ok := l.perUser[userID]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.perUser[userID] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

type noLock struct{}

func (noLock) Lock(context.Context, string) (func(), error) { return func() {}, nil }

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, domain.Event) error { return nil }
func (nopPublisher) Close() error { return nil }

type nopMetrics struct{}

func (nopMetrics) BetPlaced(bool) {}
func (nopMetrics) BetRejected(string) {}
func (nopMetrics) MarketCreated() {}
func (nopMetrics) MarketResolved(bool, []domain.Payout) {}
func (nopMetrics) CommitDuration(string, time.Duration) {}
func (nopMetrics) PublishFailed() {}
