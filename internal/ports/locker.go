package ports

import "context"

// MarketLocker serializa operaciones sobre un mismo mercado.
// Es opcional: sin locker, dos apuestas concurrentes calculan el precio sobre
// lecturas que pueden estar desfasadas y gana el último commit.
type MarketLocker interface {
	// Lock bloquea hasta obtener el mercado o hasta que ctx expire.
	// La función devuelta libera el lock.
	Lock(ctx context.Context, marketID string) (unlock func(), err error)
}
