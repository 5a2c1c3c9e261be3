package notify_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/predictbot/internal/adapters/notify"
	"github.com/alejandrodnm/predictbot/internal/domain"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return now }

func makeMarket(question string, prob float64, stake int64) domain.Market {
	m := domain.NewMarket("0190e5a8-aaaa-7bbb-8ccc-1234567890ab", question, "carol", now.Add(6*time.Hour), now)
	m.Probability = prob
	m.TotalStake = stake
	return m
}

func TestConsole_Markets_Table(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, true, fixedNow)

	err := c.Markets(context.Background(), []domain.Market{
		makeMarket("Will it rain tomorrow?", 0.78, 100),
		makeMarket("Will the build be green?", 0.25, 12),
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Will it rain tomorrow?")
	assert.Contains(t, out, "78.0%")
	assert.Contains(t, out, "25.0%")
	assert.Contains(t, out, "6.0h")
}

func TestConsole_Markets_Empty(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, true, fixedNow)
	require.NoError(t, c.Markets(context.Background(), nil))
	assert.Contains(t, buf.String(), "no open markets")
}

func TestConsole_BetPlaced_Capped(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, false, fixedNow)

	u := domain.NewUser("alice", now)
	u.TotalStaked = 100
	err := c.BetPlaced(context.Background(), 100, true, u, makeMarket("Q?", 0.6, 100))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "alice staked 100 (capped at 100)")
	assert.Contains(t, out, "available 900")
}

func TestConsole_MarketResolved(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, true, fixedNow)

	m := makeMarket("Will it rain tomorrow?", 0.78, 100)
	yes := true
	m.Resolved, m.Resolution = true, &yes
	payouts := []domain.Payout{
		{UserID: "bob", Stake: 60, Probability: 0.9,
			Settlement: domain.Settlement{Accuracy: 0.9, Payout: 114, WasCorrect: true, Profit: 54}},
		{UserID: "alice", Stake: 40, Probability: 0.6,
			Settlement: domain.Settlement{Accuracy: 0.6, Payout: 64, WasCorrect: true, Profit: 24}},
	}
	require.NoError(t, c.MarketResolved(context.Background(), m, payouts))

	out := buf.String()
	assert.Contains(t, out, "YES")
	assert.Contains(t, out, "114")
	assert.Contains(t, out, "+24")
	assert.Contains(t, out, "2 participants, 178 paid out")
}

func TestConsole_Leaderboard(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, true, fixedNow)

	u := domain.NewUser("alice", now)
	u.TotalProfit = 36
	u.BetsPlaced = 1
	require.NoError(t, c.Leaderboard(context.Background(), domain.BoardProfit, []domain.User{u}))
	assert.Contains(t, buf.String(), "TOP PROFIT")
	assert.Contains(t, buf.String(), "+36")

	buf.Reset()
	require.NoError(t, c.Leaderboard(context.Background(), domain.BoardAccuracy, nil))
	assert.Contains(t, buf.String(), "nobody qualifies")
}

func TestConsole_Error(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, true, fixedNow)

	err := fmt.Errorf("place: %w", &domain.InsufficientBankrollError{Available: 20, Requested: 30})
	require.NoError(t, c.Error(context.Background(), err))
	assert.Contains(t, buf.String(), "at most 20")

	buf.Reset()
	require.NoError(t, c.Error(context.Background(), &domain.PersistenceError{Op: "x", Err: fmt.Errorf("disk full")}))
	assert.Contains(t, buf.String(), "try again")

	buf.Reset()
	require.NoError(t, c.Error(context.Background(), domain.ErrMarketExpired))
	assert.Contains(t, buf.String(), "deadline has passed")
}

func TestConsole_AwaitingResolution(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, true, fixedNow)
	require.NoError(t, c.AwaitingResolution(context.Background(), []domain.Market{makeMarket("Will it rain tomorrow?", 0.5, 0)}))
	assert.Contains(t, buf.String(), "awaiting resolution: Will it rain tomorrow?")
}
