package domain

import "time"

// EventType identifica los eventos que se publican tras cada commit.
type EventType string

const (
	EventMarketCreated  EventType = "market.created"
	EventBetPlaced      EventType = "bet.placed"
	EventMarketResolved EventType = "market.resolved"
)

// Event es el mensaje publicado tras un commit con éxito.
type Event struct {
	Type        EventType `json:"type"`
	MarketID    string    `json:"market_id"`
	UserID      string    `json:"user_id,omitempty"`
	Stake       int64     `json:"stake,omitempty"`
	Probability float64   `json:"probability"`
	TotalStake  int64     `json:"total_stake"`
	Outcome     *bool     `json:"outcome,omitempty"`
	Payouts     []Payout  `json:"payouts,omitempty"`
	At          time.Time `json:"at"`
}
