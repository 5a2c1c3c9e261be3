// Package metrics expone las métricas del servicio de mercados en formato Prometheus.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/alejandrodnm/predictbot/internal/domain"
)

const namespace = "predictbot"

// Prometheus implementa ports.Metrics sobre un registry propio, así los tests
// pueden crear varias instancias sin chocar con el registry global.
type Prometheus struct {
	registry *prometheus.Registry

	betsPlaced      *prometheus.CounterVec
	betRejections   *prometheus.CounterVec
	marketsCreated  prometheus.Counter
	marketsResolved *prometheus.CounterVec
	payoutUnits     prometheus.Counter
	publishFailures prometheus.Counter
	commitSeconds   *prometheus.HistogramVec
}

// NewPrometheus registra todas las métricas en un registry nuevo.
func NewPrometheus() *Prometheus {
	reg := prometheus.NewRegistry()
	p := &Prometheus{
		registry: reg,
		betsPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bets_placed_total",
			Help:      "Bets committed, by whether the stake was capped.",
		}, []string{"capped"}),
		betRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bet_rejections_total",
			Help:      "Bets rejected, by reason.",
		}, []string{"reason"}),
		marketsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "markets_created_total",
			Help:      "Markets opened.",
		}),
		marketsResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "markets_resolved_total",
			Help:      "Markets resolved, by outcome.",
		}, []string{"outcome"}),
		payoutUnits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payout_units_total",
			Help:      "Currency units paid out at resolution.",
		}),
		publishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_failures_total",
			Help:      "Domain events that could not be published after commit.",
		}),
		commitSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ledger_commit_seconds",
			Help:      "Ledger commit latency, by operation.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"op"}),
	}
	reg.MustRegister(
		p.betsPlaced, p.betRejections, p.marketsCreated, p.marketsResolved,
		p.payoutUnits, p.publishFailures, p.commitSeconds,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

// Registry devuelve el registry para servirlo por HTTP o inspeccionarlo.
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

func (p *Prometheus) BetPlaced(capped bool) {
	p.betsPlaced.WithLabelValues(strconv.FormatBool(capped)).Inc()
}

func (p *Prometheus) BetRejected(reason string) {
	p.betRejections.WithLabelValues(reason).Inc()
}

func (p *Prometheus) MarketCreated() { p.marketsCreated.Inc() }

func (p *Prometheus) MarketResolved(outcome bool, payouts []domain.Payout) {
	label := "no"
	if outcome {
		label = "yes"
	}
	p.marketsResolved.WithLabelValues(label).Inc()
	var total int64
	for _, po := range payouts {
		total += po.Payout
	}
	p.payoutUnits.Add(float64(total))
}

func (p *Prometheus) CommitDuration(op string, d time.Duration) {
	p.commitSeconds.WithLabelValues(op).Observe(d.Seconds())
}

func (p *Prometheus) PublishFailed() { p.publishFailures.Inc() }
