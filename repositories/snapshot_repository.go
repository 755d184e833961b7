package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/swiss-tournament/models"
)

// SnapshotReader reads players and matches as of a single point in time.
type SnapshotReader interface {
	Snapshot(ctx context.Context) (*models.Snapshot, error)
}

type postgresSnapshotReader struct {
	db *sql.DB
}

func NewPostgresSnapshotReader(db *sql.DB) SnapshotReader {
	return &postgresSnapshotReader{db: db}
}

func (r *postgresSnapshotReader) Snapshot(ctx context.Context) (snap *models.Snapshot, err error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
		if commitErr := tx.Commit(); commitErr != nil {
			snap, err = nil, fmt.Errorf("failed to commit snapshot transaction: %w", commitErr)
		}
	}()

	players, err := listPlayers(ctx, tx)
	if err != nil {
		return nil, err
	}
	matches, err := listMatches(ctx, tx)
	if err != nil {
		return nil, err
	}
	return &models.Snapshot{Players: players, Matches: matches}, nil
}
