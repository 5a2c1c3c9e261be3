// Package cli es la superficie de consola: lee comandos línea a línea y
// delega en el servicio de mercados. Parsear y formatear es cosa de este
// paquete; las reglas de negocio viven en application/market.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/alejandrodnm/predictbot/internal/application/market"
	"github.com/alejandrodnm/predictbot/internal/domain"
	"github.com/alejandrodnm/predictbot/internal/ports"
)

const usage = `commands:
  create <user> <hours|-> <question...>   open a market (- = default deadline)
  bet <user> <market> <amount> <prob>      place or replace a bet (prob in [0,1])
  resolve <market> yes|no                  settle a market
  markets                                  list open markets
  market <id>                              market detail and bets
  user <id>                                profile
  top accuracy|profit|volume|streak        leaderboards
  help | quit`

var errQuit = errors.New("quit")

// REPL ejecuta comandos contra el servicio.
type REPL struct {
	svc             *market.Service
	out             ports.Notifier
	help            io.Writer
	defaultDeadline time.Duration
	now             func() time.Time
}

// New crea el REPL. help recibe el texto de ayuda y el prompt.
func New(svc *market.Service, out ports.Notifier, help io.Writer, defaultDeadline time.Duration) *REPL {
	return &REPL{
		svc:             svc,
		out:             out,
		help:            help,
		defaultDeadline: defaultDeadline,
		now:             time.Now,
	}
}

// Run lee comandos hasta EOF, "quit" o cancelación del contexto.
// Un comando fallido se reporta al Notifier y el bucle continúa.
func (r *REPL) Run(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	fmt.Fprint(r.help, "> ")
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}
		err := r.Exec(ctx, sc.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			slog.Debug("cli: command failed", "line", sc.Text(), "err", err)
			if nerr := r.out.Error(ctx, err); nerr != nil {
				return fmt.Errorf("cli.Run: notify: %w", nerr)
			}
		}
		fmt.Fprint(r.help, "> ")
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("cli.Run: read: %w", err)
	}
	return nil
}

// Exec ejecuta una línea.
func (r *REPL) Exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "create":
		return r.create(ctx, args)
	case "bet":
		return r.bet(ctx, args)
	case "resolve":
		return r.resolve(ctx, args)
	case "markets":
		markets, err := r.svc.ListOpenMarkets(ctx)
		if err != nil {
			return err
		}
		return r.out.Markets(ctx, markets)
	case "market":
		return r.market(ctx, args)
	case "user":
		if len(args) != 1 {
			return usageErr("user <id>")
		}
		u, err := r.svc.GetUser(ctx, args[0])
		if err != nil {
			return err
		}
		return r.out.Profile(ctx, u)
	case "top":
		return r.top(ctx, args)
	case "help", "?":
		fmt.Fprintln(r.help, usage)
		return nil
	case "quit", "exit":
		return errQuit
	}
	return fmt.Errorf("unknown command %q, try help", cmd)
}

func (r *REPL) create(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return usageErr("create <user> <hours|-> <question...>")
	}
	deadline := r.now().Add(r.defaultDeadline)
	if args[1] != "-" {
		hours, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("hours %q: %w", args[1], err)
		}
		deadline = r.now().Add(time.Duration(hours * float64(time.Hour)))
	}
	m, err := r.svc.CreateMarket(ctx, strings.Join(args[2:], " "), args[0], deadline)
	if err != nil {
		return err
	}
	return r.out.MarketCreated(ctx, m)
}

func (r *REPL) bet(ctx context.Context, args []string) error {
	if len(args) != 4 {
		return usageErr("bet <user> <market> <amount> <prob>")
	}
	amount, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil {
		return fmt.Errorf("amount %q: %w", args[2], err)
	}
	prob, err := parseProbability(args[3])
	if err != nil {
		return err
	}
	res, err := r.svc.PlaceBet(ctx, market.PlaceBetRequest{
		MarketID:    args[1],
		UserID:      args[0],
		Amount:      amount,
		Probability: prob,
	})
	if err != nil {
		return err
	}
	return r.out.BetPlaced(ctx, res.StakePlaced, res.WasCapped, res.User, res.Market)
}

func (r *REPL) resolve(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageErr("resolve <market> yes|no")
	}
	var outcome bool
	switch strings.ToLower(args[1]) {
	case "yes", "y", "true":
		outcome = true
	case "no", "n", "false":
	default:
		return usageErr("resolve <market> yes|no")
	}
	payouts, err := r.svc.ResolveMarket(ctx, args[0], outcome)
	if err != nil {
		return err
	}
	m, err := r.svc.GetMarket(ctx, args[0])
	if err != nil {
		return err
	}
	return r.out.MarketResolved(ctx, m, payouts)
}

func (r *REPL) market(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageErr("market <id>")
	}
	m, err := r.svc.GetMarket(ctx, args[0])
	if err != nil {
		return err
	}
	bets, err := r.svc.ListBetsForMarket(ctx, m.ID)
	if err != nil {
		return err
	}
	return r.out.MarketDetail(ctx, m, bets)
}

func (r *REPL) top(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageErr("top accuracy|profit|volume|streak")
	}
	kind, err := domain.ParseLeaderboardKind(strings.ToLower(args[0]))
	if err != nil {
		return err
	}
	users, err := r.svc.Leaderboard(ctx, kind, 0)
	if err != nil {
		return err
	}
	return r.out.Leaderboard(ctx, kind, users)
}

// parseProbability acepta 0.7 o 70%.
func parseProbability(s string) (float64, error) {
	if p, ok := strings.CutSuffix(s, "%"); ok {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, fmt.Errorf("probability %q: %w", s, err)
		}
		return v / 100, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("probability %q: %w", s, err)
	}
	return v, nil
}

func usageErr(u string) error {
	return fmt.Errorf("usage: %s", u)
}
