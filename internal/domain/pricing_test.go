package domain

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampStake(t *testing.T) {
	assert.Equal(t, int64(1), ClampStake(0))
	assert.Equal(t, int64(50), ClampStake(50))
	assert.Equal(t, int64(100), ClampStake(1000))
	assert.Equal(t, int64(1), ClampStake(-5))
	assert.Equal(t, int64(100), ClampStake(100))
	assert.Equal(t, int64(1), ClampStake(1))
}

func TestValidProbability(t *testing.T) {
	assert.True(t, ValidProbability(0))
	assert.True(t, ValidProbability(1))
	assert.True(t, ValidProbability(0.37))
	assert.False(t, ValidProbability(-0.01))
	assert.False(t, ValidProbability(1.01))
	assert.False(t, ValidProbability(math.NaN()))
}

// --- RecomputeProbability ---

func TestRecomputeProbability_FirstBetSetsPrice(t *testing.T) {
	assert.Equal(t, 0.7, RecomputeProbability(nil, nil, 30, 0.7))
}

func TestRecomputeProbability_OthersWithZeroStake(t *testing.T) {
	// stake 0 no cuenta: sigue siendo el primer precio real
	assert.Equal(t, 0.2, RecomputeProbability([]int64{0}, []float64{0.9}, 10, 0.2))
}

func TestRecomputeProbability_WeightedMean(t *testing.T) {
	// (40×0.6 + 60×0.9) / 100 = 0.78
	p := RecomputeProbability([]int64{40}, []float64{0.6}, 60, 0.9)
	assert.InDelta(t, 0.78, p, 1e-9)
}

func TestRecomputeProbability_OrderIrrelevant(t *testing.T) {
	a := RecomputeProbability([]int64{10, 20, 30}, []float64{0.1, 0.5, 0.9}, 5, 0.3)
	b := RecomputeProbability([]int64{30, 10, 20}, []float64{0.9, 0.1, 0.5}, 5, 0.3)
	assert.InDelta(t, a, b, 1e-12)
}

func TestRecomputeProbability_ZeroNewStakeDefensive(t *testing.T) {
	// inalcanzable con stakes recortados, pero el cálculo no divide por cero
	p := RecomputeProbability([]int64{10}, []float64{0.8}, 0, 0.1)
	assert.InDelta(t, 0.8, p, 1e-12)
}

func TestRecomputeProbability_MatchesStakeWeightedMean(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		n := rng.Intn(8)
		bets := make([]Bet, 0, n+1)
		for j := 0; j < n; j++ {
			bets = append(bets, Bet{UserID: string(rune('a' + j)), Stake: ClampStake(rng.Int63n(120)), Probability: rng.Float64()})
		}
		newBet := Bet{UserID: "new", Stake: ClampStake(rng.Int63n(120)), Probability: rng.Float64()}

		stakes, probs := SplitOthers(bets, newBet.UserID)
		got := RecomputeProbability(stakes, probs, newBet.Stake, newBet.Probability)
		want := StakeWeightedMean(append(bets, newBet))
		assert.InDelta(t, want, got, 1e-9)
	}
}

func TestSplitOthers_ExcludesUser(t *testing.T) {
	bets := []Bet{
		{UserID: "a", Stake: 10, Probability: 0.2},
		{UserID: "b", Stake: 20, Probability: 0.4},
	}
	stakes, probs := SplitOthers(bets, "a")
	assert.Equal(t, []int64{20}, stakes)
	assert.Equal(t, []float64{0.4}, probs)
}

func TestStakeWeightedMean_NoBets(t *testing.T) {
	assert.Equal(t, DefaultProbability, StakeWeightedMean(nil))
}
