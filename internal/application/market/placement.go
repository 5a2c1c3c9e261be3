package market

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/predictbot/internal/domain"
)

// Rejection reasons reported to metrics.
const (
	rejectInvalidProbability = "invalid_probability"
	rejectRateLimited        = "rate_limited"
	rejectNotFound           = "not_found"
	rejectResolved           = "resolved"
	rejectExpired            = "expired"
	rejectBankroll           = "bankroll"
	rejectPersistence        = "persistence"
)

// PlaceBetRequest is a user's intent to put Amount on Probability in MarketID.
type PlaceBetRequest struct {
	MarketID    string
	UserID      string
	Amount      int64
	Probability float64
}

// PlaceBetResult carries the committed stake and fresh snapshots.
type PlaceBetResult struct {
	StakePlaced       int64
	MarketProbability float64
	WasCapped         bool
	User              domain.User
	Market            domain.Market
}

// PlaceBet creates or replaces the user's bet and reprices the market.
//
// Checks run in a fixed order: probability, market existence, resolution,
// deadline, solvency. The new probability is the stake-weighted mean of the
// other users' bets plus this one. Without a configured locker two concurrent
// placements on the same market compute it from independent reads and the
// last commit wins.
func (s *Service) PlaceBet(ctx context.Context, req PlaceBetRequest) (*PlaceBetResult, error) {
	if !domain.ValidProbability(req.Probability) {
		s.metrics.BetRejected(rejectInvalidProbability)
		return nil, domain.ErrInvalidProbability
	}
	if s.limiter != nil && !s.limiter.allow(req.UserID) {
		s.metrics.BetRejected(rejectRateLimited)
		return nil, domain.ErrRateLimited
	}

	unlock, err := s.lock(ctx, req.MarketID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	res, err := s.placeBet(ctx, req)
	if err != nil {
		s.metrics.BetRejected(rejectionReason(err))
		return nil, err
	}
	s.metrics.BetPlaced(res.WasCapped)
	return res, nil
}

func (s *Service) placeBet(ctx context.Context, req PlaceBetRequest) (*PlaceBetResult, error) {
	m, err := s.ledger.GetMarket(ctx, req.MarketID)
	if err != nil {
		return nil, s.wrap("market.PlaceBet: get market", err)
	}
	if !m.Active {
		return nil, fmt.Errorf("market %s inactive: %w", m.ID, domain.ErrMarketNotFound)
	}
	if m.Resolved {
		return nil, domain.ErrAlreadyResolved
	}
	now := s.now()
	if m.Expired(now) {
		return nil, domain.ErrMarketExpired
	}

	stake := domain.ClampStake(req.Amount)
	capped := stake < req.Amount

	u, err := s.ledger.GetOrCreateUser(ctx, req.UserID)
	if err != nil {
		return nil, s.wrap("market.PlaceBet: get user", err)
	}
	old, err := s.ledger.GetOpenBet(ctx, m.ID, u.ID)
	if err != nil {
		return nil, s.wrap("market.PlaceBet: get bet", err)
	}
	var replaced int64
	if old != nil {
		replaced = old.Stake
	}
	if available := u.Available(replaced); stake > available {
		return nil, &domain.InsufficientBankrollError{Available: available, Requested: stake}
	}

	bets, err := s.ledger.ListBets(ctx, m.ID)
	if err != nil {
		return nil, s.wrap("market.PlaceBet: list bets", err)
	}
	otherStakes, otherProbs := domain.SplitOthers(bets, u.ID)
	prob := domain.RecomputeProbability(otherStakes, otherProbs, stake, req.Probability)
	slog.Debug("market: recomputed probability",
		"market_id", m.ID,
		"others", len(otherStakes),
		"before", fmt.Sprintf("%.4f", m.Probability),
		"after", fmt.Sprintf("%.4f", prob),
	)

	placement := domain.BetPlacement{
		Bet: domain.Bet{
			MarketID:    m.ID,
			UserID:      u.ID,
			Stake:       stake,
			Probability: req.Probability,
			UpdatedAt:   now,
		},
		MarketProbability: prob,
		ExpectedReplaced:  replaced,
	}
	start := time.Now()
	err = s.ledger.CommitBetPlacement(ctx, placement)
	s.metrics.CommitDuration("place", time.Since(start))
	if err != nil {
		slog.Warn("market: bet commit failed", "market_id", m.ID, "user_id", u.ID, "err", err)
		return nil, s.wrap("market.PlaceBet: commit", err)
	}

	// Fresh snapshots: the ledger may have seen a different replaced stake.
	u, err = s.ledger.GetUser(ctx, u.ID)
	if err != nil {
		return nil, s.wrap("market.PlaceBet: reload user", err)
	}
	m, err = s.ledger.GetMarket(ctx, m.ID)
	if err != nil {
		return nil, s.wrap("market.PlaceBet: reload market", err)
	}

	slog.Info("market: bet placed",
		"market_id", m.ID,
		"user_id", u.ID,
		"stake", stake,
		"capped", capped,
		"replaced", replaced,
		"probability", fmt.Sprintf("%.4f", m.Probability),
		"total_stake", m.TotalStake,
	)
	s.publish(ctx, domain.Event{
		Type:        domain.EventBetPlaced,
		MarketID:    m.ID,
		UserID:      u.ID,
		Stake:       stake,
		Probability: m.Probability,
		TotalStake:  m.TotalStake,
		At:          now,
	})

	return &PlaceBetResult{
		StakePlaced:       stake,
		MarketProbability: m.Probability,
		WasCapped:         capped,
		User:              u,
		Market:            m,
	}, nil
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrMarketNotFound):
		return rejectNotFound
	case errors.Is(err, domain.ErrAlreadyResolved):
		return rejectResolved
	case errors.Is(err, domain.ErrMarketExpired):
		return rejectExpired
	case errors.Is(err, domain.ErrInsufficientBankroll):
		return rejectBankroll
	default:
		return rejectPersistence
	}
}
