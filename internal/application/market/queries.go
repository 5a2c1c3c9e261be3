package market

import (
	"context"

	"github.com/alejandrodnm/predictbot/internal/domain"
)

// GetUser returns the user, creating it with the default bankroll on first sight.
func (s *Service) GetUser(ctx context.Context, id string) (domain.User, error) {
	u, err := s.ledger.GetOrCreateUser(ctx, id)
	if err != nil {
		return domain.User{}, s.wrap("market.GetUser", err)
	}
	return u, nil
}

func (s *Service) GetMarket(ctx context.Context, id string) (domain.Market, error) {
	m, err := s.ledger.GetMarket(ctx, id)
	if err != nil {
		return domain.Market{}, s.wrap("market.GetMarket", err)
	}
	return m, nil
}

// ListOpenMarkets returns active unresolved markets, newest first.
func (s *Service) ListOpenMarkets(ctx context.Context) ([]domain.Market, error) {
	markets, err := s.ledger.ListOpenMarkets(ctx)
	if err != nil {
		return nil, s.wrap("market.ListOpenMarkets", err)
	}
	return markets, nil
}

// ListBetsForMarket fails with domain.ErrMarketNotFound for unknown markets.
func (s *Service) ListBetsForMarket(ctx context.Context, marketID string) ([]domain.Bet, error) {
	if _, err := s.ledger.GetMarket(ctx, marketID); err != nil {
		return nil, s.wrap("market.ListBetsForMarket", err)
	}
	bets, err := s.ledger.ListBets(ctx, marketID)
	if err != nil {
		return nil, s.wrap("market.ListBetsForMarket", err)
	}
	return bets, nil
}

// Leaderboard returns the kind board; limit <= 0 uses the configured size.
func (s *Service) Leaderboard(ctx context.Context, kind domain.LeaderboardKind, limit int) ([]domain.User, error) {
	if limit <= 0 {
		limit = s.cfg.LeaderboardSize
	}
	users, err := s.ledger.Leaderboard(ctx, kind, domain.BoardLimit(limit))
	if err != nil {
		return nil, s.wrap("market.Leaderboard", err)
	}
	return users, nil
}

func (s *Service) TopByAccuracy(ctx context.Context, limit int) ([]domain.User, error) {
	return s.Leaderboard(ctx, domain.BoardAccuracy, limit)
}

func (s *Service) TopByProfit(ctx context.Context, limit int) ([]domain.User, error) {
	return s.Leaderboard(ctx, domain.BoardProfit, limit)
}

func (s *Service) TopByVolume(ctx context.Context, limit int) ([]domain.User, error) {
	return s.Leaderboard(ctx, domain.BoardVolume, limit)
}

func (s *Service) TopByStreak(ctx context.Context, limit int) ([]domain.User, error) {
	return s.Leaderboard(ctx, domain.BoardStreak, limit)
}
