package ports

import (
	"context"

	"github.com/alejandrodnm/predictbot/internal/domain"
)

// Ledger es el dueño del estado durable de usuarios, mercados y apuestas.
// Cualquier store transaccional puede implementarlo (SQLite, Postgres, memoria);
// el orquestador y el motor de liquidación solo conocen esta interfaz.
type Ledger interface {
	// GetOrCreateUser devuelve el usuario o lo inserta con valores por defecto.
	// Seguro ante llamadas concurrentes con el mismo id (insert-on-conflict).
	GetOrCreateUser(ctx context.Context, id string) (domain.User, error)

	// GetUser devuelve domain.ErrUserNotFound si el usuario no existe.
	GetUser(ctx context.Context, id string) (domain.User, error)

	// GetMarket devuelve domain.ErrMarketNotFound si el mercado no existe.
	GetMarket(ctx context.Context, id string) (domain.Market, error)

	// CreateMarket inserta el mercado e incrementa MarketsCreated del creador
	// en la misma transacción. domain.ErrDuplicateID si el id ya existe.
	CreateMarket(ctx context.Context, m domain.Market) error

	// GetOpenBet devuelve nil si el usuario no tiene apuesta en el mercado.
	GetOpenBet(ctx context.Context, marketID, userID string) (*domain.Bet, error)
	ListBets(ctx context.Context, marketID string) ([]domain.Bet, error)

	// UpsertBet inserta o reemplaza la apuesta de (MarketID, UserID).
	UpsertBet(ctx context.Context, bet domain.Bet) error

	ApplyMarketUpdate(ctx context.Context, id string, upd domain.MarketUpdate) error
	ApplyUserUpdate(ctx context.Context, id string, upd domain.UserUpdate) error

	// CommitBetPlacement persiste apuesta, precio/stake del mercado y TotalStaked
	// del usuario como una única transacción. Si algo falla no se aplica nada.
	CommitBetPlacement(ctx context.Context, p domain.BetPlacement) error

	// CommitResolution marca el mercado resuelto y paga a todos en una única
	// transacción. domain.ErrAlreadyResolved si otro resolvió antes.
	CommitResolution(ctx context.Context, r domain.Resolution) error

	// ListOpenMarkets devuelve los mercados activos sin resolver, más nuevos primero.
	ListOpenMarkets(ctx context.Context) ([]domain.Market, error)

	// Leaderboard devuelve el ranking kind acotado a limit.
	Leaderboard(ctx context.Context, kind domain.LeaderboardKind, limit int) ([]domain.User, error)

	// Close libera la conexión al store.
	Close() error
}
