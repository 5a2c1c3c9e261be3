package storage

// ledger.go — implementación SQL de ports.Ledger, compartida por SQLite y Postgres.
//
// Las queries se escriben con placeholders `?`; el dialecto las reescribe
// ($1, $2… en Postgres) y decide el sufijo de bloqueo de filas (FOR UPDATE).
// Los instantes se guardan como milisegundos Unix (BIGINT) para que el mismo
// schema sirva en ambos motores y ordene igual.

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/alejandrodnm/predictbot/internal/domain"
)

const ledgerSchema = `
CREATE TABLE IF NOT EXISTS users (
    id              TEXT PRIMARY KEY,
    bankroll        BIGINT           NOT NULL,
    total_staked    BIGINT           NOT NULL DEFAULT 0,
    bets_placed     BIGINT           NOT NULL DEFAULT 0,
    bets_won        BIGINT           NOT NULL DEFAULT 0,
    accuracy        DOUBLE PRECISION NOT NULL DEFAULT 0.5,
    total_profit    BIGINT           NOT NULL DEFAULT 0,
    biggest_win     BIGINT           NOT NULL DEFAULT 0,
    streak          BIGINT           NOT NULL DEFAULT 0,
    best_streak     BIGINT           NOT NULL DEFAULT 0,
    markets_created BIGINT           NOT NULL DEFAULT 0,
    created_at      BIGINT           NOT NULL
);

CREATE TABLE IF NOT EXISTS markets (
    id          TEXT PRIMARY KEY,
    question    TEXT             NOT NULL,
    creator     TEXT             NOT NULL,
    deadline    BIGINT           NOT NULL,
    probability DOUBLE PRECISION NOT NULL DEFAULT 0.5,
    total_stake BIGINT           NOT NULL DEFAULT 0,
    active      BOOLEAN          NOT NULL DEFAULT TRUE,
    resolved    BOOLEAN          NOT NULL DEFAULT FALSE,
    resolution  BOOLEAN,
    resolved_at BIGINT,
    created_at  BIGINT           NOT NULL
);

-- Una apuesta abierta por (mercado, usuario): apostar de nuevo la reemplaza
CREATE TABLE IF NOT EXISTS bets (
    market_id   TEXT             NOT NULL,
    user_id     TEXT             NOT NULL,
    stake       BIGINT           NOT NULL,
    probability DOUBLE PRECISION NOT NULL,
    updated_at  BIGINT           NOT NULL,
    PRIMARY KEY (market_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_markets_open ON markets(active, resolved, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_bets_user    ON bets(user_id);
`

const userColumns = `id, bankroll, total_staked, bets_placed, bets_won, accuracy,
	total_profit, biggest_win, streak, best_streak, markets_created, created_at`

const marketColumns = `id, question, creator, deadline, probability, total_stake,
	active, resolved, resolution, resolved_at, created_at`

// dialect aísla las diferencias entre motores.
type dialect struct {
	name              string
	forUpdate         string // sufijo de bloqueo de fila, vacío si el motor no lo soporta
	rebind            func(query string) string
	isUniqueViolation func(err error) bool
}

// sqlLedger implementa ports.Ledger sobre database/sql.
type sqlLedger struct {
	db *sql.DB
	d  dialect
}

// queryer es lo común entre *sql.DB y *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// rowScanner es lo común entre *sql.Row y *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (l *sqlLedger) q(query string) string {
	return l.d.rebind(query)
}

// GetOrCreateUser inserta el usuario con valores por defecto si no existe y lo devuelve.
func (l *sqlLedger) GetOrCreateUser(ctx context.Context, id string) (domain.User, error) {
	if err := l.ensureUser(ctx, l.db, id); err != nil {
		return domain.User{}, fmt.Errorf("storage.GetOrCreateUser: %w", err)
	}
	u, err := l.getUser(ctx, l.db, id, "")
	if err != nil {
		return domain.User{}, fmt.Errorf("storage.GetOrCreateUser: %w", err)
	}
	return u, nil
}

// GetUser devuelve el usuario o domain.ErrUserNotFound.
func (l *sqlLedger) GetUser(ctx context.Context, id string) (domain.User, error) {
	u, err := l.getUser(ctx, l.db, id, "")
	if err != nil {
		return domain.User{}, fmt.Errorf("storage.GetUser: %w", err)
	}
	return u, nil
}

// GetMarket devuelve el mercado o domain.ErrMarketNotFound.
func (l *sqlLedger) GetMarket(ctx context.Context, id string) (domain.Market, error) {
	m, err := scanMarket(l.db.QueryRowContext(ctx,
		l.q(`SELECT `+marketColumns+` FROM markets WHERE id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Market{}, fmt.Errorf("storage.GetMarket %s: %w", id, domain.ErrMarketNotFound)
	}
	if err != nil {
		return domain.Market{}, fmt.Errorf("storage.GetMarket: scan: %w", err)
	}
	return m, nil
}

// CreateMarket inserta el mercado y cuenta el mercado al creador en una transacción.
func (l *sqlLedger) CreateMarket(ctx context.Context, m domain.Market) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.CreateMarket: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, l.q(`
		INSERT INTO markets (`+marketColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		m.ID, m.Question, m.Creator, toMillis(m.Deadline), m.Probability, m.TotalStake,
		m.Active, m.Resolved, m.Resolution, toMillisPtr(m.ResolvedAt), toMillis(m.CreatedAt),
	); err != nil {
		if l.d.isUniqueViolation(err) {
			return fmt.Errorf("storage.CreateMarket %s: %w", m.ID, domain.ErrDuplicateID)
		}
		return fmt.Errorf("storage.CreateMarket: insert: %w", err)
	}

	if err := l.ensureUser(ctx, tx, m.Creator); err != nil {
		return fmt.Errorf("storage.CreateMarket: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		l.q(`UPDATE users SET markets_created = markets_created + 1 WHERE id = ?`), m.Creator,
	); err != nil {
		return fmt.Errorf("storage.CreateMarket: count creator: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.CreateMarket: commit: %w", err)
	}
	return nil
}

// GetOpenBet devuelve la apuesta del usuario en el mercado, o nil.
func (l *sqlLedger) GetOpenBet(ctx context.Context, marketID, userID string) (*domain.Bet, error) {
	b, err := l.getBet(ctx, l.db, marketID, userID)
	if err != nil {
		return nil, fmt.Errorf("storage.GetOpenBet: %w", err)
	}
	return b, nil
}

// ListBets devuelve todas las apuestas del mercado, las más antiguas primero.
func (l *sqlLedger) ListBets(ctx context.Context, marketID string) ([]domain.Bet, error) {
	rows, err := l.db.QueryContext(ctx, l.q(`
		SELECT market_id, user_id, stake, probability, updated_at
		FROM bets WHERE market_id = ?
		ORDER BY updated_at ASC, user_id ASC`), marketID)
	if err != nil {
		return nil, fmt.Errorf("storage.ListBets: query: %w", err)
	}
	defer rows.Close()

	var bets []domain.Bet
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("storage.ListBets: scan row: %w", err)
		}
		bets = append(bets, b)
	}
	return bets, rows.Err()
}

// UpsertBet inserta o reemplaza la apuesta sin tocar mercado ni usuario.
func (l *sqlLedger) UpsertBet(ctx context.Context, bet domain.Bet) error {
	if err := l.upsertBet(ctx, l.db, bet); err != nil {
		return fmt.Errorf("storage.UpsertBet: %w", err)
	}
	return nil
}

// ApplyMarketUpdate aplica los campos presentes en upd.
func (l *sqlLedger) ApplyMarketUpdate(ctx context.Context, id string, upd domain.MarketUpdate) error {
	var sets []string
	var args []any
	if upd.Probability != nil {
		sets, args = append(sets, "probability = ?"), append(args, *upd.Probability)
	}
	if upd.TotalStake != nil {
		sets, args = append(sets, "total_stake = ?"), append(args, *upd.TotalStake)
	}
	if upd.Active != nil {
		sets, args = append(sets, "active = ?"), append(args, *upd.Active)
	}
	if err := l.applyUpdate(ctx, "markets", id, sets, args, domain.ErrMarketNotFound); err != nil {
		return fmt.Errorf("storage.ApplyMarketUpdate: %w", err)
	}
	return nil
}

// ApplyUserUpdate aplica los campos presentes en upd.
func (l *sqlLedger) ApplyUserUpdate(ctx context.Context, id string, upd domain.UserUpdate) error {
	var sets []string
	var args []any
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if upd.Bankroll != nil {
		add("bankroll", *upd.Bankroll)
	}
	if upd.TotalStaked != nil {
		add("total_staked", *upd.TotalStaked)
	}
	if upd.BetsPlaced != nil {
		add("bets_placed", *upd.BetsPlaced)
	}
	if upd.BetsWon != nil {
		add("bets_won", *upd.BetsWon)
	}
	if upd.Accuracy != nil {
		add("accuracy", *upd.Accuracy)
	}
	if upd.TotalProfit != nil {
		add("total_profit", *upd.TotalProfit)
	}
	if upd.BiggestWin != nil {
		add("biggest_win", *upd.BiggestWin)
	}
	if upd.Streak != nil {
		add("streak", *upd.Streak)
	}
	if upd.BestStreak != nil {
		add("best_streak", *upd.BestStreak)
	}
	if upd.MarketsCreated != nil {
		add("markets_created", *upd.MarketsCreated)
	}
	if err := l.applyUpdate(ctx, "users", id, sets, args, domain.ErrUserNotFound); err != nil {
		return fmt.Errorf("storage.ApplyUserUpdate: %w", err)
	}
	return nil
}

// CommitBetPlacement persiste la apuesta y sus efectos en una única transacción.
//
// Dentro de la transacción:
//  1. el mercado debe existir, estar activo y sin resolver
//  2. se lee el stake que se reemplaza (0 si no había apuesta)
//  3. se vuelve a comprobar la solvencia con los valores bloqueados
//  4. upsert de la apuesta + precio y stake del mercado + TotalStaked del usuario
func (l *sqlLedger) CommitBetPlacement(ctx context.Context, p domain.BetPlacement) error {
	bet := p.Bet

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.CommitBetPlacement: begin tx: %w", err)
	}
	defer tx.Rollback()

	var active, resolved bool
	err = tx.QueryRowContext(ctx,
		l.q(`SELECT active, resolved FROM markets WHERE id = ?`+l.d.forUpdate), bet.MarketID,
	).Scan(&active, &resolved)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !active) {
		return fmt.Errorf("storage.CommitBetPlacement %s: %w", bet.MarketID, domain.ErrMarketNotFound)
	}
	if err != nil {
		return fmt.Errorf("storage.CommitBetPlacement: read market: %w", err)
	}
	if resolved {
		return fmt.Errorf("storage.CommitBetPlacement %s: %w", bet.MarketID, domain.ErrAlreadyResolved)
	}

	if err := l.ensureUser(ctx, tx, bet.UserID); err != nil {
		return fmt.Errorf("storage.CommitBetPlacement: %w", err)
	}
	u, err := l.getUser(ctx, tx, bet.UserID, l.d.forUpdate)
	if err != nil {
		return fmt.Errorf("storage.CommitBetPlacement: %w", err)
	}

	var replaced int64
	old, err := l.getBet(ctx, tx, bet.MarketID, bet.UserID)
	if err != nil {
		return fmt.Errorf("storage.CommitBetPlacement: %w", err)
	}
	if old != nil {
		replaced = old.Stake
	}

	if available := u.Available(replaced); bet.Stake > available {
		return fmt.Errorf("storage.CommitBetPlacement: %w",
			&domain.InsufficientBankrollError{Available: available, Requested: bet.Stake})
	}
	delta := bet.Stake - replaced

	if err := l.upsertBet(ctx, tx, bet); err != nil {
		return fmt.Errorf("storage.CommitBetPlacement: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		l.q(`UPDATE markets SET probability = ?, total_stake = total_stake + ? WHERE id = ?`),
		p.MarketProbability, delta, bet.MarketID,
	); err != nil {
		return fmt.Errorf("storage.CommitBetPlacement: update market: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		l.q(`UPDATE users SET total_staked = total_staked + ? WHERE id = ?`),
		delta, bet.UserID,
	); err != nil {
		return fmt.Errorf("storage.CommitBetPlacement: update user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.CommitBetPlacement: commit: %w", err)
	}
	return nil
}

// CommitResolution cierra el mercado y paga a todos los participantes en una
// única transacción. El paso resolved=false → true va guardado por la propia
// UPDATE: un segundo resolutor concurrente no afecta filas y recibe
// domain.ErrAlreadyResolved sin escribir nada.
func (l *sqlLedger) CommitResolution(ctx context.Context, r domain.Resolution) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.CommitResolution: begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, l.q(`
		UPDATE markets SET resolved = TRUE, resolution = ?, resolved_at = ?
		WHERE id = ? AND resolved = FALSE`),
		r.Outcome, toMillis(r.ResolvedAt), r.MarketID,
	)
	if err != nil {
		return fmt.Errorf("storage.CommitResolution: mark resolved: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage.CommitResolution: rows affected: %w", err)
	}
	if n == 0 {
		var exists int
		err := tx.QueryRowContext(ctx, l.q(`SELECT 1 FROM markets WHERE id = ?`), r.MarketID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("storage.CommitResolution %s: %w", r.MarketID, domain.ErrMarketNotFound)
		}
		if err != nil {
			return fmt.Errorf("storage.CommitResolution: read market: %w", err)
		}
		return fmt.Errorf("storage.CommitResolution %s: %w", r.MarketID, domain.ErrAlreadyResolved)
	}

	bets, err := l.listBetsTx(ctx, tx, r.MarketID)
	if err != nil {
		return fmt.Errorf("storage.CommitResolution: %w", err)
	}
	if err := matchPayouts(bets, r.Payouts); err != nil {
		return fmt.Errorf("storage.CommitResolution %s: %w", r.MarketID, err)
	}

	// orden por id: dos resoluciones concurrentes bloquean usuarios en el mismo orden
	payouts := slices.Clone(r.Payouts)
	sort.Slice(payouts, func(i, j int) bool { return payouts[i].UserID < payouts[j].UserID })
	for _, p := range payouts {
		u, err := l.getUser(ctx, tx, p.UserID, l.d.forUpdate)
		if err != nil {
			return fmt.Errorf("storage.CommitResolution: %w", err)
		}
		u = domain.ApplySettlement(u, domain.Bet{Stake: p.Stake, Probability: p.Probability}, p.Settlement)
		if err := l.writeUserStats(ctx, tx, u); err != nil {
			return fmt.Errorf("storage.CommitResolution: pay %s: %w", p.UserID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.CommitResolution: commit: %w", err)
	}
	return nil
}

// ListOpenMarkets devuelve los mercados activos sin resolver, más nuevos primero.
func (l *sqlLedger) ListOpenMarkets(ctx context.Context) ([]domain.Market, error) {
	rows, err := l.db.QueryContext(ctx, l.q(`
		SELECT `+marketColumns+` FROM markets
		WHERE active = TRUE AND resolved = FALSE
		ORDER BY created_at DESC, id DESC`))
	if err != nil {
		return nil, fmt.Errorf("storage.ListOpenMarkets: query: %w", err)
	}
	defer rows.Close()

	var markets []domain.Market
	for rows.Next() {
		m, err := scanMarket(rows)
		if err != nil {
			return nil, fmt.Errorf("storage.ListOpenMarkets: scan row: %w", err)
		}
		markets = append(markets, m)
	}
	return markets, rows.Err()
}

// Leaderboard devuelve el ranking pedido. El orden replica domain.LeaderboardKind.Less.
func (l *sqlLedger) Leaderboard(ctx context.Context, kind domain.LeaderboardKind, limit int) ([]domain.User, error) {
	var where, order string
	switch kind {
	case domain.BoardAccuracy:
		where = fmt.Sprintf("WHERE bets_placed >= %d", domain.MinBetsAccuracyBoard)
		order = "accuracy DESC, id ASC"
	case domain.BoardProfit:
		where = fmt.Sprintf("WHERE bets_placed >= %d", domain.MinBetsProfitBoard)
		order = "total_profit DESC, id ASC"
	case domain.BoardVolume:
		order = "bets_placed DESC, markets_created DESC, id ASC"
	case domain.BoardStreak:
		order = "best_streak DESC, streak DESC, accuracy DESC, id ASC"
	default:
		return nil, fmt.Errorf("storage.Leaderboard %q: %w", kind, domain.ErrUnknownLeaderboard)
	}

	rows, err := l.db.QueryContext(ctx,
		l.q(`SELECT `+userColumns+` FROM users `+where+` ORDER BY `+order+` LIMIT ?`),
		domain.BoardLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("storage.Leaderboard: query: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("storage.Leaderboard: scan row: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (l *sqlLedger) Close() error {
	return l.db.Close()
}

// --- helpers internos ---

func (l *sqlLedger) ensureUser(ctx context.Context, q queryer, id string) error {
	if _, err := q.ExecContext(ctx, l.q(`
		INSERT INTO users (id, bankroll, accuracy, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`),
		id, domain.StartingBankroll, domain.DefaultAccuracy, toMillis(time.Now()),
	); err != nil {
		return fmt.Errorf("ensure user %s: %w", id, err)
	}
	return nil
}

func (l *sqlLedger) getUser(ctx context.Context, q queryer, id, lock string) (domain.User, error) {
	u, err := scanUser(q.QueryRowContext(ctx,
		l.q(`SELECT `+userColumns+` FROM users WHERE id = ?`+lock), id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, fmt.Errorf("user %s: %w", id, domain.ErrUserNotFound)
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("read user %s: %w", id, err)
	}
	return u, nil
}

func (l *sqlLedger) getBet(ctx context.Context, q queryer, marketID, userID string) (*domain.Bet, error) {
	b, err := scanBet(q.QueryRowContext(ctx, l.q(`
		SELECT market_id, user_id, stake, probability, updated_at
		FROM bets WHERE market_id = ? AND user_id = ?`), marketID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read bet: %w", err)
	}
	return &b, nil
}

func (l *sqlLedger) listBetsTx(ctx context.Context, q queryer, marketID string) ([]domain.Bet, error) {
	rows, err := q.QueryContext(ctx, l.q(`
		SELECT market_id, user_id, stake, probability, updated_at
		FROM bets WHERE market_id = ?`), marketID)
	if err != nil {
		return nil, fmt.Errorf("list bets: %w", err)
	}
	defer rows.Close()

	var bets []domain.Bet
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("list bets: scan row: %w", err)
		}
		bets = append(bets, b)
	}
	return bets, rows.Err()
}

func (l *sqlLedger) upsertBet(ctx context.Context, q queryer, bet domain.Bet) error {
	if _, err := q.ExecContext(ctx, l.q(`
		INSERT INTO bets (market_id, user_id, stake, probability, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (market_id, user_id) DO UPDATE SET
			stake       = excluded.stake,
			probability = excluded.probability,
			updated_at  = excluded.updated_at`),
		bet.MarketID, bet.UserID, bet.Stake, bet.Probability, toMillis(bet.UpdatedAt),
	); err != nil {
		return fmt.Errorf("upsert bet %s/%s: %w", bet.MarketID, bet.UserID, err)
	}
	return nil
}

func (l *sqlLedger) writeUserStats(ctx context.Context, q queryer, u domain.User) error {
	_, err := q.ExecContext(ctx, l.q(`
		UPDATE users SET
			bankroll = ?, total_staked = ?, bets_placed = ?, bets_won = ?, accuracy = ?,
			total_profit = ?, biggest_win = ?, streak = ?, best_streak = ?
		WHERE id = ?`),
		u.Bankroll, u.TotalStaked, u.BetsPlaced, u.BetsWon, u.Accuracy,
		u.TotalProfit, u.BiggestWin, u.Streak, u.BestStreak, u.ID,
	)
	return err
}

func (l *sqlLedger) applyUpdate(ctx context.Context, table, id string, sets []string, args []any, notFound error) error {
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := l.db.ExecContext(ctx,
		l.q(`UPDATE `+table+` SET `+strings.Join(sets, ", ")+` WHERE id = ?`), args...)
	if err != nil {
		return fmt.Errorf("update %s %s: %w", table, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s %s: rows affected: %w", table, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", table, id, notFound)
	}
	return nil
}

// matchPayouts comprueba que la resolución paga exactamente las apuestas que hay
// en el mercado dentro de la transacción. Si alguien apostó o reemplazó entre la
// lectura y el commit, la liquidación calculada está desfasada.
func matchPayouts(bets []domain.Bet, payouts []domain.Payout) error {
	if len(bets) != len(payouts) {
		return fmt.Errorf("%d bets vs %d payouts: %w", len(bets), len(payouts), domain.ErrConflict)
	}
	byUser := make(map[string]domain.Bet, len(bets))
	for _, b := range bets {
		byUser[b.UserID] = b
	}
	for _, p := range payouts {
		b, ok := byUser[p.UserID]
		if !ok || b.Stake != p.Stake || b.Probability != p.Probability {
			return fmt.Errorf("bet of %s changed: %w", p.UserID, domain.ErrConflict)
		}
	}
	return nil
}

func scanUser(s rowScanner) (domain.User, error) {
	var u domain.User
	var createdAt int64
	err := s.Scan(
		&u.ID, &u.Bankroll, &u.TotalStaked, &u.BetsPlaced, &u.BetsWon, &u.Accuracy,
		&u.TotalProfit, &u.BiggestWin, &u.Streak, &u.BestStreak, &u.MarketsCreated, &createdAt,
	)
	u.CreatedAt = fromMillis(createdAt)
	return u, err
}

func scanMarket(s rowScanner) (domain.Market, error) {
	var m domain.Market
	var deadline, createdAt int64
	var resolution sql.NullBool
	var resolvedAt sql.NullInt64
	err := s.Scan(
		&m.ID, &m.Question, &m.Creator, &deadline, &m.Probability, &m.TotalStake,
		&m.Active, &m.Resolved, &resolution, &resolvedAt, &createdAt,
	)
	if err != nil {
		return domain.Market{}, err
	}
	m.Deadline = fromMillis(deadline)
	m.CreatedAt = fromMillis(createdAt)
	if resolution.Valid {
		r := resolution.Bool
		m.Resolution = &r
	}
	if resolvedAt.Valid {
		t := fromMillis(resolvedAt.Int64)
		m.ResolvedAt = &t
	}
	return m, nil
}

func scanBet(s rowScanner) (domain.Bet, error) {
	var b domain.Bet
	var updatedAt int64
	err := s.Scan(&b.MarketID, &b.UserID, &b.Stake, &b.Probability, &updatedAt)
	b.UpdatedAt = fromMillis(updatedAt)
	return b, err
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func toMillisPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := toMillis(*t)
	return &ms
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
