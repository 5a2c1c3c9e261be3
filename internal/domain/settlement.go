package domain

import (
	"math"
	"time"
)

// payoutEpsilon absorbe el error de coma flotante de stake×(1+accuracy) cuando el
// resultado exacto es entero (p. ej. 1-0.8 = 0.19999999999999996).
const payoutEpsilon = 1e-9

// Settlement es el resultado de liquidar una apuesta.
type Settlement struct {
	// Accuracy es la confianza de la apuesta en el resultado que ocurrió.
	Accuracy   float64 `json:"accuracy"`
	Payout     int64   `json:"payout"`
	// WasCorrect es direccional: probabilidad del lado ganador de 0.5.
	WasCorrect bool    `json:"was_correct"`
	Profit     int64   `json:"profit"`
}

// Settle liquida una apuesta contra el resultado del mercado.
//
// Fórmula:
//
//	accuracy = outcome ? p : 1-p
//	payout   = floor(stake × (1 + accuracy))
//
// accuracy >= 0, así que el payout nunca es menor que el stake: en el peor caso
// el apostador recupera lo apostado sin ganancia.
func Settle(bet Bet, outcome bool) Settlement {
	accuracy := bet.Probability
	if !outcome {
		accuracy = 1 - bet.Probability
	}
	payout := int64(math.Floor(float64(bet.Stake)*(1+accuracy) + payoutEpsilon))

	return Settlement{
		Accuracy:   accuracy,
		Payout:     payout,
		WasCorrect: WasCorrect(bet.Probability, outcome),
		Profit:     payout - bet.Stake,
	}
}

// WasCorrect devuelve true si la probabilidad estaba estrictamente del lado ganador.
// Una apuesta en 0.5 no es correcta ni incorrecta, pero corta la racha.
func WasCorrect(probability float64, outcome bool) bool {
	if outcome {
		return probability > 0.5
	}
	return probability < 0.5
}

// ApplySettlement devuelve el usuario tras cobrar la apuesta liquidada:
// libera el stake reservado y actualiza estadísticas y rachas.
func ApplySettlement(u User, bet Bet, s Settlement) User {
	u.Bankroll += s.Payout
	u.TotalStaked -= bet.Stake
	u.BetsPlaced++
	if s.WasCorrect {
		u.BetsWon++
		u.Streak++
	} else {
		u.Streak = 0
	}
	u.Accuracy = float64(u.BetsWon) / float64(u.BetsPlaced)
	u.TotalProfit += s.Profit
	u.BiggestWin = max(u.BiggestWin, s.Payout)
	u.BestStreak = max(u.BestStreak, u.Streak)
	return u
}

// Payout es la línea por participante que devuelve la resolución.
type Payout struct {
	UserID      string  `json:"user_id"`
	Stake       int64   `json:"stake"`
	Probability float64 `json:"probability"`
	Settlement
}

// Resolution es la transición atómica que cierra un mercado y paga a todos.
// El ledger aplica cada Payout sobre el usuario leído dentro de la transacción
// (ApplySettlement), así una apuesta concurrente en otro mercado no se pisa.
type Resolution struct {
	MarketID   string
	Outcome    bool
	ResolvedAt time.Time
	Payouts    []Payout
}
