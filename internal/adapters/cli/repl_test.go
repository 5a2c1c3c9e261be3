package cli_test

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/predictbot/internal/adapters/cli"
	"github.com/alejandrodnm/predictbot/internal/adapters/notify"
	"github.com/alejandrodnm/predictbot/internal/adapters/storage"
	"github.com/alejandrodnm/predictbot/internal/application/market"
)

var uuidRe = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)

func newREPL(t *testing.T) (*cli.REPL, *bytes.Buffer, *market.Service) {
	t.Helper()
	var out bytes.Buffer
	svc := market.New(storage.NewMemoryLedger(), market.Config{})
	console := notify.NewConsoleWriter(&out, true, nil)
	return cli.New(svc, console, &out, 24*time.Hour), &out, svc
}

func TestREPL_Session(t *testing.T) {
	ctx := context.Background()
	repl, out, svc := newREPL(t)

	require.NoError(t, repl.Exec(ctx, "create carol 48 Will it rain tomorrow?"))
	id := uuidRe.FindString(out.String())
	require.NotEmpty(t, id)

	require.NoError(t, repl.Exec(ctx, "bet alice "+id+" 40 0.6"))
	require.NoError(t, repl.Exec(ctx, "bet bob "+id+" 60 90%"))
	assert.Contains(t, out.String(), "78.0%")

	require.NoError(t, repl.Exec(ctx, "market "+id))
	require.NoError(t, repl.Exec(ctx, "markets"))

	out.Reset()
	require.NoError(t, repl.Exec(ctx, "resolve "+id+" yes"))
	assert.Contains(t, out.String(), "178 paid out")

	require.NoError(t, repl.Exec(ctx, "user alice"))
	assert.Contains(t, out.String(), "bankroll 1064")

	require.NoError(t, repl.Exec(ctx, "top profit"))
	assert.Contains(t, out.String(), "TOP PROFIT")

	m, err := svc.GetMarket(ctx, id)
	require.NoError(t, err)
	assert.True(t, m.Resolved)
	assert.Equal(t, "carol", m.Creator)
}

func TestREPL_Errors(t *testing.T) {
	ctx := context.Background()
	repl, _, _ := newREPL(t)

	assert.ErrorContains(t, repl.Exec(ctx, "bet alice"), "usage")
	assert.ErrorContains(t, repl.Exec(ctx, "bet alice m1 ten 0.5"), "amount")
	assert.ErrorContains(t, repl.Exec(ctx, "resolve m1 maybe"), "usage")
	assert.ErrorContains(t, repl.Exec(ctx, "top karma"), "unknown leaderboard")
	assert.ErrorContains(t, repl.Exec(ctx, "dance"), "unknown command")
	assert.ErrorContains(t, repl.Exec(ctx, "bet alice nope 10 0.5"), "market not found")
	assert.NoError(t, repl.Exec(ctx, "   "))
}

func TestREPL_RunContinuesAfterErrors(t *testing.T) {
	repl, out, svc := newREPL(t)

	script := strings.Join([]string{
		"create carol - Will the build be green?",
		"bet alice nope 10 0.5",
		"help",
		"quit",
		"create carol - never reached",
	}, "\n")
	require.NoError(t, repl.Run(context.Background(), strings.NewReader(script)))

	assert.Regexp(t, `error: .*market not found`, out.String())
	assert.Contains(t, out.String(), "commands:")

	open, err := svc.ListOpenMarkets(context.Background())
	require.NoError(t, err)
	assert.Len(t, open, 1)
}
