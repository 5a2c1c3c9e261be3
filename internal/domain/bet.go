package domain

import "time"

// Bet es la apuesta abierta de un usuario en un mercado.
// Hay como máximo una por (MarketID, UserID): apostar de nuevo la reemplaza.
type Bet struct {
	MarketID    string
	UserID      string
	Stake       int64
	Probability float64 // creencia del usuario en que el mercado resuelve YES
	UpdatedAt   time.Time
}

// BetPlacement es la transición atómica que persiste una apuesta nueva o reemplazada.
//
// El ledger deriva el stake reemplazado dentro de la propia transacción y aplica
// Stake - reemplazado tanto a Market.TotalStake como a User.TotalStaked.
// ExpectedReplaced es el stake que el orquestador vio al validar; si difiere del
// que encuentra el ledger, gana el de la transacción.
type BetPlacement struct {
	Bet               Bet
	MarketProbability float64
	ExpectedReplaced  int64
}

// UserStakeDelta devuelve el cambio en TotalStaked que el orquestador espera aplicar.
func (p BetPlacement) UserStakeDelta() int64 {
	return p.Bet.Stake - p.ExpectedReplaced
}
