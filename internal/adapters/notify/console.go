package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/predictbot/internal/domain"
)

const questionWidth = 48

// Console implementa ports.Notifier escribiendo texto y tablas.
// El REPL y el watcher escriben desde goroutines distintas: mu serializa la salida.
type Console struct {
	mu    sync.Mutex
	out   io.Writer
	table bool
	now   func() time.Time
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table, now: time.Now}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool, now func() time.Time) *Console {
	if now == nil {
		now = time.Now
	}
	return &Console{out: w, table: table, now: now}
}

func (c *Console) MarketCreated(_ context.Context, m domain.Market) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "market %s opened by %s\n  %q\n  closes %s (%.1fh) | probability %s\n",
		m.ID, m.Creator, m.Question, m.Deadline.Format(time.RFC3339),
		m.HoursToDeadline(c.now()), pct(m.Probability))
	return nil
}

func (c *Console) BetPlaced(_ context.Context, stake int64, capped bool, u domain.User, m domain.Market) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	note := ""
	if capped {
		note = fmt.Sprintf(" (capped at %d)", domain.MaxStake)
	}
	fmt.Fprintf(c.out, "%s staked %d%s on %s\n  market now %s | pool %d | your bankroll %d (available %d)\n",
		u.ID, stake, note, truncate(m.Question, questionWidth),
		pct(m.Probability), m.TotalStake, u.Bankroll, u.Available(0))
	return nil
}

func (c *Console) MarketResolved(_ context.Context, m domain.Market, payouts []domain.Payout) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	outcome := "NO"
	if m.Resolution != nil && *m.Resolution {
		outcome = "YES"
	}
	fmt.Fprintf(c.out, "resolved %s: %s\n", truncate(m.Question, questionWidth), outcome)

	table := tablewriter.NewWriter(c.out)
	table.Header("User", "Stake", "Prob", "Accuracy", "Payout", "Profit", "")
	var paid int64
	for _, p := range payouts {
		mark := ""
		if p.WasCorrect {
			mark = "✓"
		}
		table.Append(
			p.UserID,
			fmt.Sprintf("%d", p.Stake),
			fmt.Sprintf("%.2f", p.Probability),
			pct(p.Accuracy),
			fmt.Sprintf("%d", p.Payout),
			fmt.Sprintf("%+d", p.Profit),
			mark,
		)
		paid += p.Payout
	}
	table.Render()
	fmt.Fprintf(c.out, "  %d participants, %d paid out\n", len(payouts), paid)
	return nil
}

func (c *Console) Markets(_ context.Context, markets []domain.Market) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(markets) == 0 {
		fmt.Fprintf(c.out, "[%s] no open markets\n", c.now().Format("15:04:05"))
		return nil
	}
	now := c.now()
	if !c.table {
		for _, m := range markets {
			fmt.Fprintf(c.out, "%s %s %s pool:%d %.0fh\n",
				m.ID, pct(m.Probability), truncate(m.Question, questionWidth),
				m.TotalStake, m.HoursToDeadline(now))
		}
		return nil
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "ID", "Question", "Prob", "Pool", "Closes in")
	for i, m := range markets {
		closes := fmt.Sprintf("%.1fh", m.HoursToDeadline(now))
		if m.Expired(now) {
			closes = "closed"
		}
		table.Append(
			fmt.Sprintf("%d", i+1),
			m.ID,
			truncate(m.Question, questionWidth),
			pct(m.Probability),
			fmt.Sprintf("%d", m.TotalStake),
			closes,
		)
	}
	table.Render()
	return nil
}

func (c *Console) MarketDetail(_ context.Context, m domain.Market, bets []domain.Bet) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	status := "open"
	switch {
	case m.Resolved && m.Resolution != nil && *m.Resolution:
		status = "resolved YES"
	case m.Resolved:
		status = "resolved NO"
	case m.Expired(c.now()):
		status = "awaiting resolution"
	}
	fmt.Fprintf(c.out, "%s\n  id %s | by %s | %s\n  probability %s | pool %d | deadline %s\n",
		m.Question, m.ID, m.Creator, status, pct(m.Probability), m.TotalStake,
		m.Deadline.Format(time.RFC3339))
	if len(bets) == 0 {
		fmt.Fprintln(c.out, "  no bets yet")
		return nil
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("User", "Stake", "Prob", "Weight")
	for _, b := range bets {
		weight := 0.0
		if m.TotalStake > 0 {
			weight = float64(b.Stake) / float64(m.TotalStake)
		}
		table.Append(b.UserID, fmt.Sprintf("%d", b.Stake), fmt.Sprintf("%.2f", b.Probability), pct(weight))
	}
	table.Render()
	return nil
}

func (c *Console) Profile(_ context.Context, u domain.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "%s\n", u.ID)
	fmt.Fprintf(c.out, "  bankroll %d | staked %d | available %d\n", u.Bankroll, u.TotalStaked, u.Available(0))
	fmt.Fprintf(c.out, "  bets %d | won %d | accuracy %s\n", u.BetsPlaced, u.BetsWon, pct(u.Accuracy))
	fmt.Fprintf(c.out, "  profit %+d | biggest win %d | streak %d (best %d) | markets created %d\n",
		u.TotalProfit, u.BiggestWin, u.Streak, u.BestStreak, u.MarketsCreated)
	return nil
}

func (c *Console) Leaderboard(_ context.Context, kind domain.LeaderboardKind, users []domain.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "=== TOP %s ===\n", strings.ToUpper(string(kind)))
	if len(users) == 0 {
		fmt.Fprintln(c.out, "  nobody qualifies yet")
		return nil
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "User", boardColumn(kind), "Bets")
	for i, u := range users {
		table.Append(fmt.Sprintf("%d", i+1), u.ID, boardValue(kind, u), fmt.Sprintf("%d", u.BetsPlaced))
	}
	table.Render()
	return nil
}

// AwaitingResolution avisa de mercados vencidos sin resolver.
func (c *Console) AwaitingResolution(_ context.Context, markets []domain.Market) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range markets {
		fmt.Fprintf(c.out, "[%s] closed, awaiting resolution: %s (%s) by %s\n",
			c.now().Format("15:04:05"), truncate(m.Question, questionWidth), m.ID, m.Creator)
	}
	return nil
}

// Error imprime los errores de negocio tal cual y el resto como fallo interno.
func (c *Console) Error(_ context.Context, err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var ib *domain.InsufficientBankrollError
	switch {
	case errors.As(err, &ib):
		fmt.Fprintf(c.out, "error: not enough bankroll, you can stake at most %d\n", ib.Available)
	case domain.IsRetryable(err):
		fmt.Fprintf(c.out, "error: storage unavailable, try again (%v)\n", err)
	default:
		fmt.Fprintf(c.out, "error: %v\n", err)
	}
	return nil
}

func boardColumn(kind domain.LeaderboardKind) string {
	switch kind {
	case domain.BoardAccuracy:
		return "Accuracy"
	case domain.BoardProfit:
		return "Profit"
	case domain.BoardStreak:
		return "Best streak"
	}
	return "Bets placed"
}

func boardValue(kind domain.LeaderboardKind, u domain.User) string {
	switch kind {
	case domain.BoardAccuracy:
		return pct(u.Accuracy)
	case domain.BoardProfit:
		return fmt.Sprintf("%+d", u.TotalProfit)
	case domain.BoardStreak:
		return fmt.Sprintf("%d (now %d)", u.BestStreak, u.Streak)
	}
	return fmt.Sprintf("%d (+%d created)", u.BetsPlaced, u.MarketsCreated)
}

func pct(p float64) string {
	return fmt.Sprintf("%.1f%%", p*100)
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
