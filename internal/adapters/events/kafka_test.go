package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/predictbot/internal/adapters/events"
	"github.com/alejandrodnm/predictbot/internal/domain"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafka_PublishKeysByMarket(t *testing.T) {
	w := &fakeWriter{}
	pub := events.NewKafkaWithWriter(w, "test")
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	outcome := true

	err := pub.Publish(context.Background(), domain.Event{
		Type:     domain.EventMarketResolved,
		MarketID: "m-1",
		Outcome:  &outcome,
		Payouts: []domain.Payout{{
			UserID: "alice", Stake: 40, Probability: 0.6,
			Settlement: domain.Settlement{Accuracy: 0.6, Payout: 64, WasCorrect: true, Profit: 24},
		}},
		At: at,
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "m-1", string(msg.Key))
	assert.True(t, msg.Time.Equal(at))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "market.resolved", string(msg.Headers[0].Value))

	var decoded domain.Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, domain.EventMarketResolved, decoded.Type)
	require.NotNil(t, decoded.Outcome)
	assert.True(t, *decoded.Outcome)
	require.Len(t, decoded.Payouts, 1)
	assert.Equal(t, int64(64), decoded.Payouts[0].Payout)

	require.NoError(t, pub.Close())
	assert.True(t, w.closed)
}

func TestKafka_PublishError(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	pub := events.NewKafkaWithWriter(w, "test")
	err := pub.Publish(context.Background(), domain.Event{Type: domain.EventBetPlaced, MarketID: "m"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bet.placed")
}

func TestNewKafka_RequiresBrokers(t *testing.T) {
	_, err := events.NewKafka(nil, "")
	assert.Error(t, err)
}
