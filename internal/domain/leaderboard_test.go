package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(users []User) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = u.ID
	}
	return out
}

func TestRankUsers_AccuracyNeedsThreeBets(t *testing.T) {
	users := []User{
		{ID: "a", BetsPlaced: 2, Accuracy: 1},
		{ID: "b", BetsPlaced: 3, Accuracy: 0.66},
		{ID: "c", BetsPlaced: 10, Accuracy: 0.8},
	}
	assert.Equal(t, []string{"c", "b"}, ids(RankUsers(users, BoardAccuracy, 10)))
}

func TestRankUsers_Profit(t *testing.T) {
	users := []User{
		{ID: "a", BetsPlaced: 0, TotalProfit: 0},
		{ID: "b", BetsPlaced: 1, TotalProfit: 5},
		{ID: "c", BetsPlaced: 4, TotalProfit: 50},
	}
	assert.Equal(t, []string{"c", "b"}, ids(RankUsers(users, BoardProfit, 10)))
}

func TestRankUsers_VolumeTieBreak(t *testing.T) {
	users := []User{
		{ID: "a", BetsPlaced: 5, MarketsCreated: 1},
		{ID: "b", BetsPlaced: 5, MarketsCreated: 3},
		{ID: "c", BetsPlaced: 7},
	}
	assert.Equal(t, []string{"c", "b", "a"}, ids(RankUsers(users, BoardVolume, 10)))
}

func TestRankUsers_StreakTieBreaks(t *testing.T) {
	users := []User{
		{ID: "a", BestStreak: 4, Streak: 1, Accuracy: 0.9},
		{ID: "b", BestStreak: 4, Streak: 2, Accuracy: 0.5},
		{ID: "c", BestStreak: 4, Streak: 1, Accuracy: 0.95},
	}
	assert.Equal(t, []string{"b", "c", "a"}, ids(RankUsers(users, BoardStreak, 10)))
}

func TestRankUsers_Limit(t *testing.T) {
	users := make([]User, 0, 80)
	for i := 0; i < 80; i++ {
		users = append(users, User{ID: string(rune('A' + i)), BetsPlaced: i})
	}
	assert.Len(t, RankUsers(users, BoardVolume, 3), 3)
	assert.Len(t, RankUsers(users, BoardVolume, 0), DefaultBoardSize)
	assert.Len(t, RankUsers(users, BoardVolume, 500), MaxBoardSize)
}

func TestParseLeaderboardKind(t *testing.T) {
	k, err := ParseLeaderboardKind("streak")
	require.NoError(t, err)
	assert.Equal(t, BoardStreak, k)

	_, err = ParseLeaderboardKind("karma")
	assert.ErrorIs(t, err, ErrUnknownLeaderboard)
}
