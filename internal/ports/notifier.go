package ports

import (
	"context"

	"github.com/alejandrodnm/predictbot/internal/domain"
)

// Notifier presenta al usuario el resultado de cada comando.
// La implementación de consola imprime tablas; un bot de chat renderizaría mensajes.
type Notifier interface {
	MarketCreated(ctx context.Context, m domain.Market) error
	BetPlaced(ctx context.Context, stake int64, capped bool, u domain.User, m domain.Market) error
	MarketResolved(ctx context.Context, m domain.Market, payouts []domain.Payout) error
	Markets(ctx context.Context, markets []domain.Market) error
	MarketDetail(ctx context.Context, m domain.Market, bets []domain.Bet) error
	Profile(ctx context.Context, u domain.User) error
	Leaderboard(ctx context.Context, kind domain.LeaderboardKind, users []domain.User) error
	AwaitingResolution(ctx context.Context, markets []domain.Market) error
	Error(ctx context.Context, err error) error
}
