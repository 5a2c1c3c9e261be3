package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSettle_ConfidentYes(t *testing.T) {
	// stake=50, p=0.8, YES → accuracy 0.8, payout floor(50×1.8)=90
	s := Settle(Bet{Stake: 50, Probability: 0.8}, true)
	assert.InDelta(t, 0.8, s.Accuracy, 1e-12)
	assert.Equal(t, int64(90), s.Payout)
	assert.True(t, s.WasCorrect)
	assert.Equal(t, int64(40), s.Profit)
}

func TestSettle_ConfidentNo(t *testing.T) {
	// stake=50, p=0.8, NO → accuracy 0.2, payout floor(50×1.2)=60, nunca negativo
	s := Settle(Bet{Stake: 50, Probability: 0.8}, false)
	assert.InDelta(t, 0.2, s.Accuracy, 1e-12)
	assert.Equal(t, int64(60), s.Payout)
	assert.False(t, s.WasCorrect)
	assert.Equal(t, int64(10), s.Profit)
}

func TestSettle_Extremes(t *testing.T) {
	full := Settle(Bet{Stake: 100, Probability: 1}, true)
	assert.Equal(t, int64(200), full.Payout)

	wrong := Settle(Bet{Stake: 100, Probability: 1}, false)
	assert.Equal(t, int64(100), wrong.Payout, "worst case returns the stake")
	assert.Equal(t, int64(0), wrong.Profit)

	half := Settle(Bet{Stake: 37, Probability: 0.5}, true)
	assert.Equal(t, int64(55), half.Payout) // floor(37×1.5)=55
	assert.False(t, half.WasCorrect)
}

func TestSettle_Floors(t *testing.T) {
	// 33 × 1.7 = 56.1 → 56
	assert.Equal(t, int64(56), Settle(Bet{Stake: 33, Probability: 0.7}, true).Payout)
	// 40 × 1.6 = 64, 60 × 1.9 = 114
	assert.Equal(t, int64(64), Settle(Bet{Stake: 40, Probability: 0.6}, true).Payout)
	assert.Equal(t, int64(114), Settle(Bet{Stake: 60, Probability: 0.9}, true).Payout)
	// 10 × (1 + (1-0.7)) = 13
	assert.Equal(t, int64(13), Settle(Bet{Stake: 10, Probability: 0.7}, false).Payout)
}

func TestWasCorrect(t *testing.T) {
	assert.True(t, WasCorrect(0.51, true))
	assert.False(t, WasCorrect(0.5, true))
	assert.False(t, WasCorrect(0.5, false))
	assert.True(t, WasCorrect(0.1, false))
	assert.False(t, WasCorrect(0.9, false))
}

func TestApplySettlement_Win(t *testing.T) {
	u := User{ID: "a", Bankroll: 1000, TotalStaked: 50, Streak: 2, BestStreak: 2, BiggestWin: 30}
	bet := Bet{Stake: 50, Probability: 0.8}
	got := ApplySettlement(u, bet, Settle(bet, true))

	assert.Equal(t, int64(1090), got.Bankroll)
	assert.Equal(t, int64(0), got.TotalStaked)
	assert.Equal(t, 1, got.BetsPlaced)
	assert.Equal(t, 1, got.BetsWon)
	assert.InDelta(t, 1.0, got.Accuracy, 1e-12)
	assert.Equal(t, int64(40), got.TotalProfit)
	assert.Equal(t, int64(90), got.BiggestWin)
	assert.Equal(t, 3, got.Streak)
	assert.Equal(t, 3, got.BestStreak)
}

func TestApplySettlement_MissResetsStreak(t *testing.T) {
	u := User{ID: "a", Bankroll: 1000, TotalStaked: 80, BetsPlaced: 3, BetsWon: 3, Streak: 3, BestStreak: 5, BiggestWin: 200}
	bet := Bet{Stake: 80, Probability: 0.5}
	got := ApplySettlement(u, bet, Settle(bet, true))

	assert.Equal(t, 0, got.Streak)
	assert.Equal(t, 5, got.BestStreak)
	assert.Equal(t, 4, got.BetsPlaced)
	assert.Equal(t, 3, got.BetsWon)
	assert.InDelta(t, 0.75, got.Accuracy, 1e-12)
	assert.Equal(t, int64(200), got.BiggestWin)
	assert.Equal(t, int64(0), got.TotalStaked)
}
