package repositories

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/Dosada05/swiss-tournament/db"
	"github.com/Dosada05/swiss-tournament/models"
)

// Тесты ниже идут против живой базы и пропускаются без TEST_DATABASE_URL.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	conn, err := db.Connect(dsn, 5*time.Second)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.RunMigrations(conn); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}
	if _, err := conn.Exec(`TRUNCATE matches, players RESTART IDENTITY`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return conn
}

func createPostgresPlayers(t *testing.T, repo PlayerRepository, names ...string) []models.Player {
	t.Helper()
	out := make([]models.Player, 0, len(names))
	for _, name := range names {
		p := &models.Player{Name: name}
		if err := repo.Create(context.Background(), p); err != nil {
			t.Fatalf("Create(%q) error = %v", name, err)
		}
		out = append(out, *p)
	}
	return out
}

func TestPostgresMatchCreateErrors(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	players := NewPostgresPlayerRepository(conn)
	matches := NewPostgresMatchRepository(conn)
	p := createPostgresPlayers(t, players, "A", "B")

	tests := []struct {
		name    string
		match   models.Match
		wantErr error
	}{
		{
			name:    "unknown loser",
			match:   models.Match{WinnerID: p[0].ID, LoserID: p[1].ID + 100},
			wantErr: ErrMatchPlayerInvalid,
		},
		{
			name:    "self play",
			match:   models.Match{WinnerID: p[0].ID, LoserID: p[0].ID},
			wantErr: ErrMatchSelfPlay,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.match
			if err := matches.Create(ctx, &m); !errors.Is(err, tt.wantErr) {
				t.Fatalf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	ok := models.Match{WinnerID: p[0].ID, LoserID: p[1].ID}
	if err := matches.Create(ctx, &ok); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if ok.ID == 0 || ok.CreatedAt.IsZero() {
		t.Fatalf("Create() did not fill id/created_at: %+v", ok)
	}
}

func TestPostgresDeletePlayersWithMatches(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	players := NewPostgresPlayerRepository(conn)
	matches := NewPostgresMatchRepository(conn)
	p := createPostgresPlayers(t, players, "A", "B")

	if err := matches.Create(ctx, &models.Match{WinnerID: p[0].ID, LoserID: p[1].ID}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := players.DeleteAll(ctx); !errors.Is(err, ErrPlayersHaveMatches) {
		t.Fatalf("DeleteAll() error = %v, want %v", err, ErrPlayersHaveMatches)
	}

	if err := matches.DeleteAll(ctx); err != nil {
		t.Fatalf("matches DeleteAll() error = %v", err)
	}
	if err := players.DeleteAll(ctx); err != nil {
		t.Fatalf("players DeleteAll() error = %v", err)
	}
	n, err := players.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 0 {
		t.Fatalf("Count() = %d, want 0", n)
	}
}

func TestPostgresSnapshot(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	players := NewPostgresPlayerRepository(conn)
	matches := NewPostgresMatchRepository(conn)
	p := createPostgresPlayers(t, players, "A", "B", "C")

	if err := matches.Create(ctx, &models.Match{WinnerID: p[2].ID, LoserID: p[0].ID}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := matches.Create(ctx, &models.Match{WinnerID: p[1].ID, LoserID: p[2].ID, IsTie: true}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	snap, err := NewPostgresSnapshotReader(conn).Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(snap.Players) != 3 || len(snap.Matches) != 2 {
		t.Fatalf("Snapshot() = %d players, %d matches, want 3 and 2", len(snap.Players), len(snap.Matches))
	}
	for i, player := range snap.Players {
		if player.ID != p[i].ID || player.Name != p[i].Name {
			t.Fatalf("Players[%d] = %+v, want %+v", i, player, p[i])
		}
	}
	if !snap.Matches[1].IsTie {
		t.Fatalf("Matches[1].IsTie = false, want true")
	}
}
