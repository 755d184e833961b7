package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/swiss-tournament/models"
)

var (
	ErrMatchPlayerInvalid = errors.New("match player does not exist")
	ErrMatchSelfPlay      = errors.New("match winner and loser must differ")
)

type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	// List returns matches in the order they were recorded.
	List(ctx context.Context) ([]models.Match, error)
	DeleteAll(ctx context.Context) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) Create(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO matches (winner_id, loser_id, is_tie)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, match.WinnerID, match.LoserID, match.IsTie).
		Scan(&match.ID, &match.CreatedAt)
	if err != nil {
		if code, ok := pqErrorCode(err); ok {
			switch code {
			case pqForeignKeyViolation:
				return ErrMatchPlayerInvalid
			case pqCheckViolation:
				return ErrMatchSelfPlay
			}
		}
		return fmt.Errorf("failed to insert match: %w", err)
	}
	return nil
}

func (r *postgresMatchRepository) List(ctx context.Context) ([]models.Match, error) {
	return listMatches(ctx, r.db)
}

func (r *postgresMatchRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM matches`); err != nil {
		return fmt.Errorf("failed to delete matches: %w", err)
	}
	return nil
}

func listMatches(ctx context.Context, exec SQLExecutor) ([]models.Match, error) {
	rows, err := exec.QueryContext(ctx, `
		SELECT id, winner_id, loser_id, is_tie, created_at
		FROM matches
		ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		var m models.Match
		if err := rows.Scan(&m.ID, &m.WinnerID, &m.LoserID, &m.IsTie, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}
