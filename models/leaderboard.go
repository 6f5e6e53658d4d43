package models

import "time"

// LeaderboardEntry holds the best score and play count of one identity
type LeaderboardEntry struct {
	ID               string    `db:"id" json:"id"`
	UserID           *string   `db:"user_id" json:"user_id"`
	Name             string    `db:"name" json:"name"`
	Email            string    `db:"email" json:"email"`
	BestScore        int       `db:"best_score" json:"best_score"`
	TotalGamesPlayed int       `db:"total_games_played" json:"total_games_played"`
	GameType         string    `db:"game_type" json:"game_type"`
	CreatedAt        time.Time `db:"created_at" json:"-"`
	UpdatedAt        time.Time `db:"updated_at" json:"-"`
}

// LeaderboardRow is the public projection shown on the leaderboard
type LeaderboardRow struct {
	Name             string `json:"name"`
	BestScore        int    `json:"best_score"`
	TotalGamesPlayed int    `json:"total_games_played"`
}

// LegacyLeaderboardSummary is returned by the legacy email check
type LegacyLeaderboardSummary struct {
	BestScore        int `json:"best_score"`
	TotalGamesPlayed int `json:"total_games_played"`
}
