package domain

import "time"

// StartingBankroll es el saldo con el que se crea cada usuario nuevo.
const StartingBankroll int64 = 1000

// DefaultAccuracy es la precisión reportada mientras el usuario no tiene apuestas resueltas.
const DefaultAccuracy = 0.5

// User es un participante del grupo. Se crea de forma perezosa en la primera referencia.
type User struct {
	ID             string
	Bankroll       int64
	TotalStaked    int64 // suma de stakes de apuestas abiertas, siempre <= Bankroll
	BetsPlaced     int
	BetsWon        int
	Accuracy       float64 // BetsWon / BetsPlaced, DefaultAccuracy si BetsPlaced == 0
	TotalProfit    int64   // payout - stake acumulado
	BiggestWin     int64
	Streak         int // predicciones correctas consecutivas
	BestStreak     int
	MarketsCreated int
	CreatedAt      time.Time
}

// NewUser devuelve un usuario con los valores por defecto de la plataforma.
func NewUser(id string, now time.Time) User {
	return User{
		ID:        id,
		Bankroll:  StartingBankroll,
		Accuracy:  DefaultAccuracy,
		CreatedAt: now,
	}
}

// Available devuelve el capital libre si se liberara releasedStake
// (el stake de la apuesta que se va a reemplazar).
func (u User) Available(releasedStake int64) int64 {
	return u.Bankroll - u.TotalStaked + releasedStake
}

// UserUpdate es una actualización parcial: los campos nil no se tocan.
type UserUpdate struct {
	Bankroll       *int64
	TotalStaked    *int64
	BetsPlaced     *int
	BetsWon        *int
	Accuracy       *float64
	TotalProfit    *int64
	BiggestWin     *int64
	Streak         *int
	BestStreak     *int
	MarketsCreated *int
}

// Apply devuelve una copia de u con los campos presentes en upd.
func (upd UserUpdate) Apply(u User) User {
	if upd.Bankroll != nil {
		u.Bankroll = *upd.Bankroll
	}
	if upd.TotalStaked != nil {
		u.TotalStaked = *upd.TotalStaked
	}
	if upd.BetsPlaced != nil {
		u.BetsPlaced = *upd.BetsPlaced
	}
	if upd.BetsWon != nil {
		u.BetsWon = *upd.BetsWon
	}
	if upd.Accuracy != nil {
		u.Accuracy = *upd.Accuracy
	}
	if upd.TotalProfit != nil {
		u.TotalProfit = *upd.TotalProfit
	}
	if upd.BiggestWin != nil {
		u.BiggestWin = *upd.BiggestWin
	}
	if upd.Streak != nil {
		u.Streak = *upd.Streak
	}
	if upd.BestStreak != nil {
		u.BestStreak = *upd.BestStreak
	}
	if upd.MarketsCreated != nil {
		u.MarketsCreated = *upd.MarketsCreated
	}
	return u
}
