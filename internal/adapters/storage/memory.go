package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/alejandrodnm/predictbot/internal/domain"
)

type betKey struct {
	marketID string
	userID   string
}

// MemoryLedger implementa ports.Ledger en memoria.
// Un único mutex protege los tres mapas: cada commit valida todo antes de
// mutar, así un fallo no deja nada a medias. Devuelve siempre copias.
type MemoryLedger struct {
	mu      sync.Mutex
	users   map[string]domain.User
	markets map[string]domain.Market
	bets    map[betKey]domain.Bet
}

// NewMemoryLedger crea un ledger vacío.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		users:   make(map[string]domain.User),
		markets: make(map[string]domain.Market),
		bets:    make(map[betKey]domain.Bet),
	}
}

func (m *MemoryLedger) GetOrCreateUser(_ context.Context, id string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensureUser(id), nil
}

func (m *MemoryLedger) GetUser(_ context.Context, id string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, fmt.Errorf("storage.GetUser %s: %w", id, domain.ErrUserNotFound)
	}
	return u, nil
}

func (m *MemoryLedger) GetMarket(_ context.Context, id string) (domain.Market, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mk, ok := m.markets[id]
	if !ok {
		return domain.Market{}, fmt.Errorf("storage.GetMarket %s: %w", id, domain.ErrMarketNotFound)
	}
	return copyMarket(mk), nil
}

func (m *MemoryLedger) CreateMarket(_ context.Context, mk domain.Market) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.markets[mk.ID]; exists {
		return fmt.Errorf("storage.CreateMarket %s: %w", mk.ID, domain.ErrDuplicateID)
	}
	m.markets[mk.ID] = copyMarket(mk)
	u := m.ensureUser(mk.Creator)
	u.MarketsCreated++
	m.users[u.ID] = u
	return nil
}

func (m *MemoryLedger) GetOpenBet(_ context.Context, marketID, userID string) (*domain.Bet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bets[betKey{marketID, userID}]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (m *MemoryLedger) ListBets(_ context.Context, marketID string) ([]domain.Bet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listBets(marketID), nil
}

func (m *MemoryLedger) UpsertBet(_ context.Context, bet domain.Bet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bets[betKey{bet.MarketID, bet.UserID}] = bet
	return nil
}

func (m *MemoryLedger) ApplyMarketUpdate(_ context.Context, id string, upd domain.MarketUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mk, ok := m.markets[id]
	if !ok {
		return fmt.Errorf("storage.ApplyMarketUpdate %s: %w", id, domain.ErrMarketNotFound)
	}
	m.markets[id] = upd.Apply(mk)
	return nil
}

func (m *MemoryLedger) ApplyUserUpdate(_ context.Context, id string, upd domain.UserUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return fmt.Errorf("storage.ApplyUserUpdate %s: %w", id, domain.ErrUserNotFound)
	}
	m.users[id] = upd.Apply(u)
	return nil
}

// CommitBetPlacement aplica la apuesta con la misma semántica que el ledger SQL.
func (m *MemoryLedger) CommitBetPlacement(_ context.Context, p domain.BetPlacement) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	bet := p.Bet
	mk, ok := m.markets[bet.MarketID]
	if !ok || !mk.Active {
		return fmt.Errorf("storage.CommitBetPlacement %s: %w", bet.MarketID, domain.ErrMarketNotFound)
	}
	if mk.Resolved {
		return fmt.Errorf("storage.CommitBetPlacement %s: %w", bet.MarketID, domain.ErrAlreadyResolved)
	}

	u := m.ensureUser(bet.UserID)
	key := betKey{bet.MarketID, bet.UserID}
	var replaced int64
	if old, ok := m.bets[key]; ok {
		replaced = old.Stake
	}
	if available := u.Available(replaced); bet.Stake > available {
		return fmt.Errorf("storage.CommitBetPlacement: %w",
			&domain.InsufficientBankrollError{Available: available, Requested: bet.Stake})
	}
	delta := bet.Stake - replaced

	m.bets[key] = bet
	mk.Probability = p.MarketProbability
	mk.TotalStake += delta
	m.markets[mk.ID] = mk
	u.TotalStaked += delta
	m.users[u.ID] = u
	return nil
}

// CommitResolution cierra el mercado y paga a todos bajo el mismo lock.
func (m *MemoryLedger) CommitResolution(_ context.Context, r domain.Resolution) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	mk, ok := m.markets[r.MarketID]
	if !ok {
		return fmt.Errorf("storage.CommitResolution %s: %w", r.MarketID, domain.ErrMarketNotFound)
	}
	if mk.Resolved {
		return fmt.Errorf("storage.CommitResolution %s: %w", r.MarketID, domain.ErrAlreadyResolved)
	}
	if err := matchPayouts(m.listBets(r.MarketID), r.Payouts); err != nil {
		return fmt.Errorf("storage.CommitResolution %s: %w", r.MarketID, err)
	}

	// Calcular todo antes de mutar nada.
	paid := make(map[string]domain.User, len(r.Payouts))
	for _, p := range r.Payouts {
		u, ok := paid[p.UserID]
		if !ok {
			if u, ok = m.users[p.UserID]; !ok {
				return fmt.Errorf("storage.CommitResolution: user %s: %w", p.UserID, domain.ErrUserNotFound)
			}
		}
		paid[p.UserID] = domain.ApplySettlement(u, domain.Bet{Stake: p.Stake, Probability: p.Probability}, p.Settlement)
	}

	outcome := r.Outcome
	at := r.ResolvedAt
	mk.Resolved = true
	mk.Resolution = &outcome
	mk.ResolvedAt = &at
	m.markets[mk.ID] = mk
	for id, u := range paid {
		m.users[id] = u
	}
	return nil
}

func (m *MemoryLedger) ListOpenMarkets(_ context.Context) ([]domain.Market, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var open []domain.Market
	for _, mk := range m.markets {
		if mk.IsOpen() {
			open = append(open, copyMarket(mk))
		}
	}
	sort.Slice(open, func(i, j int) bool {
		if !open[i].CreatedAt.Equal(open[j].CreatedAt) {
			return open[i].CreatedAt.After(open[j].CreatedAt)
		}
		return open[i].ID > open[j].ID
	})
	return open, nil
}

func (m *MemoryLedger) Leaderboard(_ context.Context, kind domain.LeaderboardKind, limit int) ([]domain.User, error) {
	if _, err := domain.ParseLeaderboardKind(string(kind)); err != nil {
		return nil, fmt.Errorf("storage.Leaderboard: %w", err)
	}
	m.mu.Lock()
	users := make([]domain.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	m.mu.Unlock()
	return domain.RankUsers(users, kind, limit), nil
}

func (m *MemoryLedger) Close() error { return nil }

// --- helpers internos (llamar con mu tomado) ---

func (m *MemoryLedger) ensureUser(id string) domain.User {
	u, ok := m.users[id]
	if !ok {
		u = domain.NewUser(id, time.Now().UTC())
		m.users[id] = u
	}
	return u
}

func (m *MemoryLedger) listBets(marketID string) []domain.Bet {
	var bets []domain.Bet
	for k, b := range m.bets {
		if k.marketID == marketID {
			bets = append(bets, b)
		}
	}
	sort.Slice(bets, func(i, j int) bool {
		if !bets[i].UpdatedAt.Equal(bets[j].UpdatedAt) {
			return bets[i].UpdatedAt.Before(bets[j].UpdatedAt)
		}
		return bets[i].UserID < bets[j].UserID
	})
	return bets
}

// copyMarket evita que el llamador comparta los punteros de resolución.
func copyMarket(mk domain.Market) domain.Market {
	if mk.Resolution != nil {
		r := *mk.Resolution
		mk.Resolution = &r
	}
	if mk.ResolvedAt != nil {
		t := *mk.ResolvedAt
		mk.ResolvedAt = &t
	}
	return mk
}
