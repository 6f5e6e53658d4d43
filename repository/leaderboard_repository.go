package repository

import (
	"context"
	"errors"
	"fmt"

	"randpredict/database"
	"randpredict/models"

	"github.com/jackc/pgx/v5"
)

const leaderboardColumns = `id::text, user_id, name, email, best_score, total_games_played, game_type, created_at, updated_at`

// LeaderboardRepository implements the LeaderboardRepository interface
type LeaderboardRepository struct {
	q queryable
}

// NewLeaderboardRepository creates a new leaderboard repository
func NewLeaderboardRepository(db *database.DB) *LeaderboardRepository {
	return &LeaderboardRepository{q: db.Pool}
}

// newLeaderboardRepositoryWithTx creates a new leaderboard repository with a transaction
func newLeaderboardRepositoryWithTx(tx queryable) *LeaderboardRepository {
	return &LeaderboardRepository{q: tx}
}

// LockIdentity takes a transaction-scoped advisory lock on identity. Writers of
// the same identity queue here, so a missing row cannot be inserted twice.
func (r *LeaderboardRepository) LockIdentity(ctx context.Context, identity string) error {
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, identity); err != nil {
		return fmt.Errorf("failed to lock leaderboard identity: %w", err)
	}
	return nil
}

// GetByUser returns the row of an authenticated user, or nil
func (r *LeaderboardRepository) GetByUser(ctx context.Context, userID string, gameType string) (*models.LeaderboardEntry, error) {
	query := `
		SELECT ` + leaderboardColumns + `
		FROM leaderboard
		WHERE user_id = $1 AND game_type = $2
		FOR UPDATE
	`

	entry, err := scanLeaderboardEntry(r.q.QueryRow(ctx, query, userID, gameType))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard entry for user %s: %w", userID, err)
	}

	return entry, nil
}

// GetLegacyByEmail returns the email-keyed row without user ID, or nil
func (r *LeaderboardRepository) GetLegacyByEmail(ctx context.Context, email string, gameType string) (*models.LeaderboardEntry, error) {
	query := `
		SELECT ` + leaderboardColumns + `
		FROM leaderboard
		WHERE email = $1 AND game_type = $2 AND user_id IS NULL
		FOR UPDATE
	`

	entry, err := scanLeaderboardEntry(r.q.QueryRow(ctx, query, email, gameType))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get legacy leaderboard entry: %w", err)
	}

	return entry, nil
}

// ListLegacyByEmail returns every legacy row of an email across game types
func (r *LeaderboardRepository) ListLegacyByEmail(ctx context.Context, email string) ([]*models.LeaderboardEntry, error) {
	query := `
		SELECT ` + leaderboardColumns + `
		FROM leaderboard
		WHERE email = $1 AND user_id IS NULL
		ORDER BY game_type
		FOR UPDATE
	`

	rows, err := r.q.Query(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to query legacy leaderboard entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.LeaderboardEntry
	for rows.Next() {
		entry, err := scanLeaderboardEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leaderboard entries: %w", err)
	}

	return entries, nil
}

// Create inserts a row and fills in its ID
func (r *LeaderboardRepository) Create(ctx context.Context, entry *models.LeaderboardEntry) error {
	query := `
		INSERT INTO leaderboard (user_id, name, email, best_score, total_games_played, game_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id::text, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		entry.UserID,
		entry.Name,
		entry.Email,
		entry.BestScore,
		entry.TotalGamesPlayed,
		entry.GameType,
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create leaderboard entry: %w", err)
	}

	return nil
}

// Update writes name, best score, play count and user ID of an existing row
func (r *LeaderboardRepository) Update(ctx context.Context, entry *models.LeaderboardEntry) error {
	query := `
		UPDATE leaderboard
		SET user_id = $2, name = $3, best_score = $4, total_games_played = $5, updated_at = NOW()
		WHERE id = $1::uuid
		RETURNING updated_at
	`

	err := r.q.QueryRow(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Name,
		entry.BestScore,
		entry.TotalGamesPlayed,
	).Scan(&entry.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("leaderboard entry %s not found", entry.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update leaderboard entry: %w", err)
	}

	return nil
}

// Delete removes a row
func (r *LeaderboardRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM leaderboard WHERE id = $1::uuid`

	if _, err := r.q.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete leaderboard entry: %w", err)
	}

	return nil
}

// Top returns the best rows of a game type ordered by best score
func (r *LeaderboardRepository) Top(ctx context.Context, gameType string, limit int) ([]*models.LeaderboardRow, error) {
	query := `
		SELECT name, best_score, total_games_played
		FROM leaderboard
		WHERE game_type = $1
		ORDER BY best_score DESC, total_games_played DESC, created_at ASC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, gameType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []*models.LeaderboardRow{}
	for rows.Next() {
		var row models.LeaderboardRow
		if err := rows.Scan(&row.Name, &row.BestScore, &row.TotalGamesPlayed); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		entries = append(entries, &row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leaderboard: %w", err)
	}

	return entries, nil
}

func scanLeaderboardEntry(row pgx.Row) (*models.LeaderboardEntry, error) {
	var entry models.LeaderboardEntry
	err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.Name,
		&entry.Email,
		&entry.BestScore,
		&entry.TotalGamesPlayed,
		&entry.GameType,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
