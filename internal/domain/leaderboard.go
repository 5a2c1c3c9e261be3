package domain

import (
	"fmt"
	"sort"
)

// LeaderboardKind identifica cada ranking.
type LeaderboardKind string

const (
	BoardAccuracy LeaderboardKind = "accuracy"
	BoardProfit   LeaderboardKind = "profit"
	BoardVolume   LeaderboardKind = "volume"
	BoardStreak   LeaderboardKind = "streak"
)

const (
	MinBetsAccuracyBoard = 3
	MinBetsProfitBoard   = 1
	DefaultBoardSize     = 10
	MaxBoardSize         = 50
)

// ParseLeaderboardKind convierte el nombre del ranking en su LeaderboardKind.
func ParseLeaderboardKind(s string) (LeaderboardKind, error) {
	switch k := LeaderboardKind(s); k {
	case BoardAccuracy, BoardProfit, BoardVolume, BoardStreak:
		return k, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownLeaderboard)
}

// BoardLimit acota el tamaño pedido a [1, MaxBoardSize], DefaultBoardSize si <= 0.
func BoardLimit(limit int) int {
	if limit <= 0 {
		return DefaultBoardSize
	}
	return min(limit, MaxBoardSize)
}

// Eligible devuelve true si u entra en el ranking kind.
func (k LeaderboardKind) Eligible(u User) bool {
	switch k {
	case BoardAccuracy:
		return u.BetsPlaced >= MinBetsAccuracyBoard
	case BoardProfit:
		return u.BetsPlaced >= MinBetsProfitBoard
	}
	return true
}

// Less ordena dos usuarios según el ranking; el id desempata al final.
func (k LeaderboardKind) Less(a, b User) bool {
	switch k {
	case BoardAccuracy:
		if a.Accuracy != b.Accuracy {
			return a.Accuracy > b.Accuracy
		}
	case BoardProfit:
		if a.TotalProfit != b.TotalProfit {
			return a.TotalProfit > b.TotalProfit
		}
	case BoardVolume:
		if a.BetsPlaced != b.BetsPlaced {
			return a.BetsPlaced > b.BetsPlaced
		}
		if a.MarketsCreated != b.MarketsCreated {
			return a.MarketsCreated > b.MarketsCreated
		}
	case BoardStreak:
		if a.BestStreak != b.BestStreak {
			return a.BestStreak > b.BestStreak
		}
		if a.Streak != b.Streak {
			return a.Streak > b.Streak
		}
		if a.Accuracy != b.Accuracy {
			return a.Accuracy > b.Accuracy
		}
	}
	return a.ID < b.ID
}

// RankUsers filtra y ordena users para el ranking kind, acotado a limit.
func RankUsers(users []User, kind LeaderboardKind, limit int) []User {
	ranked := make([]User, 0, len(users))
	for _, u := range users {
		if kind.Eligible(u) {
			ranked = append(ranked, u)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return kind.Less(ranked[i], ranked[j]) })
	if n := BoardLimit(limit); len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
