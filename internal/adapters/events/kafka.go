// Package events publica los eventos del dominio fuera del proceso.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/alejandrodnm/predictbot/internal/domain"
)

// DefaultTopic es el topic cuando la config no indica otro.
const DefaultTopic = "predictbot.events"

// messageWriter es el subconjunto de *kafka.Writer que usa el publisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publica cada evento como JSON con key = id del mercado, así todos los
// eventos de un mercado caen en la misma partición y conservan su orden.
type Kafka struct {
	w     messageWriter
	topic string
}

// NewKafka crea el publisher. brokers es la lista host:port.
func NewKafka(brokers []string, topic string) (*Kafka, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("events.NewKafka: no brokers")
	}
	if topic == "" {
		topic = DefaultTopic
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}
	slog.Info("events: kafka publisher ready", "brokers", strings.Join(brokers, ","), "topic", topic)
	return &Kafka{w: w, topic: topic}, nil
}

func (k *Kafka) Publish(ctx context.Context, ev domain.Event) error {
	msg, err := encode(ev)
	if err != nil {
		return err
	}
	if err := k.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("events.Kafka.Publish %s: %w", ev.Type, err)
	}
	return nil
}

func (k *Kafka) Close() error {
	return k.w.Close()
}

// encode serializa el evento. El tipo viaja también como header para que un
// consumidor pueda filtrar sin decodificar el payload.
func encode(ev domain.Event) (kafka.Message, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("events.encode %s: %w", ev.Type, err)
	}
	return kafka.Message{
		Key:     []byte(ev.MarketID),
		Value:   payload,
		Time:    ev.At,
		Headers: []kafka.Header{{Key: "type", Value: []byte(ev.Type)}},
	}, nil
}

// Log escribe los eventos en el log a nivel debug. Se usa cuando no hay brokers.
type Log struct{}

func (Log) Publish(_ context.Context, ev domain.Event) error {
	slog.Debug("events: "+string(ev.Type), "market_id", ev.MarketID, "user_id", ev.UserID, "probability", ev.Probability)
	return nil
}

func (Log) Close() error { return nil }
