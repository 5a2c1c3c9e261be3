package domain

// Límites de stake por apuesta para toda la plataforma.
const (
	MinStake int64 = 1
	MaxStake int64 = 100
)

// ClampStake ajusta la cantidad deseada al rango [MinStake, MaxStake].
func ClampStake(desired int64) int64 {
	return max(MinStake, min(desired, MaxStake))
}

// ValidProbability devuelve true si p está en [0, 1].
// NaN no cumple ninguna de las dos comparaciones y queda fuera.
func ValidProbability(p float64) bool {
	return p >= 0 && p <= 1
}

// RecomputeProbability calcula el nuevo precio del mercado a partir del resto de
// apuestas abiertas (otherStakes/otherProbs, slices paralelos) más la apuesta nueva.
//
// Fórmula:
//
//	total = Σ otherStakes
//	total == 0 → newProb (el primer apostador fija el precio)
//	p      = (Σ stake_i × prob_i + newStake × newProb) / (total + newStake)
//
// El llamador excluye de otherStakes la apuesta que se reemplaza, si existe:
// así una apuesta nueva y un reemplazo siguen el mismo camino.
func RecomputeProbability(otherStakes []int64, otherProbs []float64, newStake int64, newProb float64) float64 {
	var total int64
	for _, s := range otherStakes {
		total += s
	}
	if total == 0 {
		return newProb
	}

	newTotal := total + newStake
	if newTotal == 0 {
		return DefaultProbability
	}

	weighted := float64(newStake) * newProb
	for i, s := range otherStakes {
		weighted += float64(s) * otherProbs[i]
	}
	return weighted / float64(newTotal)
}

// StakeWeightedMean devuelve la media ponderada por stake de las probabilidades
// de bets, o DefaultProbability si no hay stake.
func StakeWeightedMean(bets []Bet) float64 {
	var total int64
	var weighted float64
	for _, b := range bets {
		total += b.Stake
		weighted += float64(b.Stake) * b.Probability
	}
	if total == 0 {
		return DefaultProbability
	}
	return weighted / float64(total)
}

// SplitOthers devuelve stakes y probabilidades de todas las apuestas de bets
// excepto la de excludeUser.
func SplitOthers(bets []Bet, excludeUser string) ([]int64, []float64) {
	stakes := make([]int64, 0, len(bets))
	probs := make([]float64, 0, len(bets))
	for _, b := range bets {
		if b.UserID == excludeUser {
			continue
		}
		stakes = append(stakes, b.Stake)
		probs = append(probs, b.Probability)
	}
	return stakes, probs
}
