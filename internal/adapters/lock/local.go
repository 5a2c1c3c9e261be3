package lock

import (
	"context"
	"sync"
)

// None no serializa nada: es el comportamiento por defecto, en el que dos
// apuestas concurrentes sobre un mercado calculan el precio por separado.
type None struct{}

func (None) Lock(context.Context, string) (func(), error) {
	return func() {}, nil
}

// Local serializa por mercado dentro del proceso.
// Cada mercado tiene un semáforo de capacidad 1 para poder respetar ctx.
type Local struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

// NewLocal crea un locker en memoria.
func NewLocal() *Local {
	return &Local{slots: make(map[string]*slot)}
}

// Lock espera el turno del mercado o devuelve ctx.Err().
func (l *Local) Lock(ctx context.Context, marketID string) (func(), error) {
	l.mu.Lock()
	s, ok := l.slots[marketID]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[marketID] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(marketID, s, false)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(marketID, s, true) })
	}, nil
}

// release suelta el turno (si se tenía) y borra el slot cuando nadie más lo espera.
func (l *Local) release(marketID string, s *slot, held bool) {
	if held {
		<-s.ch
	}
	l.mu.Lock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, marketID)
	}
	l.mu.Unlock()
}
