package models

import (
	"time"
)

// DefaultGameType identifies the ten-from-ninety-nine game
const DefaultGameType = "1-99_range_10_numbers"

// GameRun is one completed game. Runs are never mutated apart from the
// user_id reassignment performed by the account migration.
type GameRun struct {
	ID            string    `db:"id" json:"id"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UserID        *string   `db:"user_id" json:"user_id"` // nil for legacy (email only) runs
	UserName      string    `db:"user_name" json:"user_name"`
	Email         string    `db:"email" json:"email"`
	Predictions   []int     `db:"predictions" json:"predictions"`
	RandomNumbers []int     `db:"random_numbers" json:"random_numbers"`
	Score         int       `db:"score" json:"score"`
	GameType      string    `db:"game_type" json:"game_type"`
}

// IsLegacy reports whether the run still belongs to an email-only identity
func (r *GameRun) IsLegacy() bool {
	return r.UserID == nil
}
