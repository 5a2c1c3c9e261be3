package market

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/alejandrodnm/predictbot/internal/domain"
)

// ResolveMarket closes the market with outcome and pays every participant.
//
// The market transition and all user updates are one ledger commit. A second
// resolver loses on the ledger's resolved=false guard and gets
// domain.ErrAlreadyResolved with nothing written.
func (s *Service) ResolveMarket(ctx context.Context, marketID string, outcome bool) ([]domain.Payout, error) {
	unlock, err := s.lock(ctx, marketID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	m, err := s.ledger.GetMarket(ctx, marketID)
	if err != nil {
		return nil, s.wrap("market.ResolveMarket: get market", err)
	}
	if m.Resolved {
		return nil, domain.ErrAlreadyResolved
	}

	bets, err := s.ledger.ListBets(ctx, marketID)
	if err != nil {
		return nil, s.wrap("market.ResolveMarket: list bets", err)
	}
	if len(bets) == 0 {
		return nil, domain.ErrNoParticipants
	}

	payouts := SettleAll(bets, outcome)
	now := s.now()

	start := time.Now()
	err = s.ledger.CommitResolution(ctx, domain.Resolution{
		MarketID:   marketID,
		Outcome:    outcome,
		ResolvedAt: now,
		Payouts:    payouts,
	})
	s.metrics.CommitDuration("resolve", time.Since(start))
	if err != nil {
		slog.Warn("market: resolution commit failed", "market_id", marketID, "err", err)
		return nil, s.wrap("market.ResolveMarket: commit", err)
	}

	s.metrics.MarketResolved(outcome, payouts)
	var paid int64
	for _, p := range payouts {
		paid += p.Payout
	}
	slog.Info("market: resolved",
		"market_id", marketID,
		"outcome", outcome,
		"participants", len(payouts),
		"paid", paid,
	)
	o := outcome
	s.publish(ctx, domain.Event{
		Type:        domain.EventMarketResolved,
		MarketID:    marketID,
		Probability: m.Probability,
		TotalStake:  m.TotalStake,
		Outcome:     &o,
		Payouts:     payouts,
		At:          now,
	})
	return payouts, nil
}

// SettleAll settles every bet against outcome, sorted by payout desc then user id.
func SettleAll(bets []domain.Bet, outcome bool) []domain.Payout {
	payouts := make([]domain.Payout, 0, len(bets))
	for _, b := range bets {
		payouts = append(payouts, domain.Payout{
			UserID:      b.UserID,
			Stake:       b.Stake,
			Probability: b.Probability,
			Settlement:  domain.Settle(b, outcome),
		})
	}
	sort.Slice(payouts, func(i, j int) bool {
		if payouts[i].Payout != payouts[j].Payout {
			return payouts[i].Payout > payouts[j].Payout
		}
		return payouts[i].UserID < payouts[j].UserID
	})
	return payouts
}
