package ports

import (
	"context"

	"github.com/alejandrodnm/predictbot/internal/domain"
)

// EventPublisher difunde los eventos del dominio después de cada commit.
// Un fallo al publicar no deshace el commit.
type EventPublisher interface {
	Publish(ctx context.Context, ev domain.Event) error
	Close() error
}
