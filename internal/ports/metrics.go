package ports

import (
	"time"

	"github.com/alejandrodnm/predictbot/internal/domain"
)

// Metrics recibe las observaciones del servicio de mercados.
type Metrics interface {
	BetPlaced(capped bool)
	BetRejected(reason string)
	MarketCreated()
	MarketResolved(outcome bool, payouts []domain.Payout)
	CommitDuration(op string, d time.Duration)
	PublishFailed()
}
