package domain

import (
	"errors"
	"fmt"
)

// Errores del dominio visibles para el llamador. El núcleo nunca reintenta:
// solo ErrPersistence justifica un reintento desde fuera.
var (
	ErrInvalidProbability   = errors.New("probability must be between 0 and 1")
	ErrMarketNotFound       = errors.New("market not found")
	ErrMarketExpired        = errors.New("market deadline has passed")
	ErrInsufficientBankroll = errors.New("insufficient bankroll")
	ErrInvalidDeadline      = errors.New("deadline must be in the future")
	ErrDuplicateID          = errors.New("duplicate id")
	ErrAlreadyResolved      = errors.New("market already resolved")
	ErrNoParticipants       = errors.New("market has no bets")
	ErrPersistence          = errors.New("persistence failure")

	ErrUserNotFound  = errors.New("user not found")
	ErrConflict      = errors.New("concurrent update, retry")
	ErrEmptyQuestion = errors.New("question must not be empty")
	ErrRateLimited   = errors.New("too many bets, slow down")

	ErrUnknownLeaderboard = errors.New("unknown leaderboard")
)

// InsufficientBankrollError lleva el capital disponible calculado para mostrarlo.
type InsufficientBankrollError struct {
	Available int64
	Requested int64
}

func (e *InsufficientBankrollError) Error() string {
	return fmt.Sprintf("insufficient bankroll: requested %d, available %d", e.Requested, e.Available)
}

func (e *InsufficientBankrollError) Is(target error) bool {
	return target == ErrInsufficientBankroll
}

// PersistenceError envuelve un fallo del almacenamiento. El estado quedó intacto (rollback).
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: persistence failure: %v", e.Op, e.Err)
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsRetryable devuelve true solo para fallos transitorios de almacenamiento.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrPersistence)
}

// IsDomainError devuelve true si err es una regla de negocio (no un fallo de infraestructura).
func IsDomainError(err error) bool {
	for _, target := range []error{
		ErrInvalidProbability, ErrMarketNotFound, ErrMarketExpired, ErrInsufficientBankroll,
		ErrInvalidDeadline, ErrDuplicateID, ErrAlreadyResolved, ErrNoParticipants,
		ErrUserNotFound, ErrEmptyQuestion, ErrRateLimited, ErrUnknownLeaderboard,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
