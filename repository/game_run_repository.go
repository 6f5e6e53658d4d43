package repository

import (
	"context"
	"fmt"

	"randpredict/database"
	"randpredict/models"

	"github.com/jackc/pgx/v5"
)

const gameRunColumns = `id::text, created_at, user_id, user_name, email, predictions, random_numbers, score, game_type`

// GameRunRepository implements the GameRunRepository interface
type GameRunRepository struct {
	q queryable
}

// NewGameRunRepository creates a new game run repository
func NewGameRunRepository(db *database.DB) *GameRunRepository {
	return &GameRunRepository{q: db.Pool}
}

// newGameRunRepositoryWithTx creates a new game run repository with a transaction
func newGameRunRepositoryWithTx(tx queryable) *GameRunRepository {
	return &GameRunRepository{q: tx}
}

// Create inserts a run and fills in its ID and CreatedAt
func (r *GameRunRepository) Create(ctx context.Context, run *models.GameRun) error {
	query := `
		INSERT INTO game_runs (user_id, user_name, email, predictions, random_numbers, score, game_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id::text, created_at
	`

	err := r.q.QueryRow(ctx, query,
		run.UserID,
		run.UserName,
		run.Email,
		run.Predictions,
		run.RandomNumbers,
		run.Score,
		run.GameType,
	).Scan(&run.ID, &run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create game run: %w", err)
	}

	return nil
}

// ListByGameType returns every run of a game type, newest first
func (r *GameRunRepository) ListByGameType(ctx context.Context, gameType string) ([]*models.GameRun, error) {
	query := `
		SELECT ` + gameRunColumns + `
		FROM game_runs
		WHERE game_type = $1
		ORDER BY created_at DESC
	`

	rows, err := r.q.Query(ctx, query, gameType)
	if err != nil {
		return nil, fmt.Errorf("failed to query game runs: %w", err)
	}
	defer rows.Close()

	return scanGameRuns(rows)
}

// ListByEmail returns the runs of an email for a game type, newest first
func (r *GameRunRepository) ListByEmail(ctx context.Context, email string, gameType string) ([]*models.GameRun, error) {
	query := `
		SELECT ` + gameRunColumns + `
		FROM game_runs
		WHERE email = $1 AND game_type = $2
		ORDER BY created_at DESC
	`

	rows, err := r.q.Query(ctx, query, email, gameType)
	if err != nil {
		return nil, fmt.Errorf("failed to query game runs for email: %w", err)
	}
	defer rows.Close()

	return scanGameRuns(rows)
}

// CountLegacyByEmail counts runs of an email that have no user ID yet
func (r *GameRunRepository) CountLegacyByEmail(ctx context.Context, email string) (int, error) {
	query := `SELECT COUNT(*) FROM game_runs WHERE email = $1 AND user_id IS NULL`

	var count int
	if err := r.q.QueryRow(ctx, query, email).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count legacy game runs: %w", err)
	}

	return count, nil
}

// CountByEmailAndUser counts runs of an email that already belong to userID
func (r *GameRunRepository) CountByEmailAndUser(ctx context.Context, email string, userID string) (int, error) {
	query := `SELECT COUNT(*) FROM game_runs WHERE email = $1 AND user_id = $2`

	var count int
	if err := r.q.QueryRow(ctx, query, email, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count migrated game runs: %w", err)
	}

	return count, nil
}

// AssignUserToLegacyRuns sets user_id on every legacy run of an email and returns how many moved
func (r *GameRunRepository) AssignUserToLegacyRuns(ctx context.Context, email string, userID string) (int, error) {
	query := `UPDATE game_runs SET user_id = $2 WHERE email = $1 AND user_id IS NULL`

	tag, err := r.q.Exec(ctx, query, email, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to assign user to legacy game runs: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

func scanGameRuns(rows pgx.Rows) ([]*models.GameRun, error) {
	var runs []*models.GameRun
	for rows.Next() {
		var run models.GameRun
		err := rows.Scan(
			&run.ID,
			&run.CreatedAt,
			&run.UserID,
			&run.UserName,
			&run.Email,
			&run.Predictions,
			&run.RandomNumbers,
			&run.Score,
			&run.GameType,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game run: %w", err)
		}
		runs = append(runs, &run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating game runs: %w", err)
	}

	return runs, nil
}
