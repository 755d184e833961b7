package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/Dosada05/swiss-tournament/models"
)

// MemoryStore keeps players and matches in process memory.
// It enforces the same constraints as the postgres schema.
type MemoryStore struct {
	mu           sync.RWMutex
	players      []models.Player
	matches      []models.Match
	nextPlayerID int
	nextMatchID  int
	now          func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextPlayerID: 1,
		nextMatchID:  1,
		now:          time.Now,
	}
}

func (s *MemoryStore) Players() PlayerRepository { return memoryPlayers{s} }

func (s *MemoryStore) Matches() MatchRepository { return memoryMatches{s} }

// Snapshot copies both slices under one read lock.
func (s *MemoryStore) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &models.Snapshot{
		Players: append(make([]models.Player, 0, len(s.players)), s.players...),
		Matches: append(make([]models.Match, 0, len(s.matches)), s.matches...),
	}, nil
}

func (s *MemoryStore) hasPlayer(id int) bool {
	for _, p := range s.players {
		if p.ID == id {
			return true
		}
	}
	return false
}

type memoryPlayers struct{ s *MemoryStore }

func (r memoryPlayers) Create(ctx context.Context, player *models.Player) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	player.ID = r.s.nextPlayerID
	player.CreatedAt = r.s.now()
	r.s.nextPlayerID++
	r.s.players = append(r.s.players, *player)
	return nil
}

func (r memoryPlayers) GetByID(ctx context.Context, id int) (*models.Player, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.players {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, ErrPlayerNotFound
}

func (r memoryPlayers) List(ctx context.Context) ([]models.Player, error) {
	snap, err := r.s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Players, nil
}

func (r memoryPlayers) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.players), nil
}

func (r memoryPlayers) DeleteAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if len(r.s.matches) > 0 {
		return ErrPlayersHaveMatches
	}
	r.s.players = nil
	return nil
}

type memoryMatches struct{ s *MemoryStore }

func (r memoryMatches) Create(ctx context.Context, match *models.Match) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if match.WinnerID == match.LoserID {
		return ErrMatchSelfPlay
	}
	if !r.s.hasPlayer(match.WinnerID) || !r.s.hasPlayer(match.LoserID) {
		return ErrMatchPlayerInvalid
	}

	match.ID = r.s.nextMatchID
	match.CreatedAt = r.s.now()
	r.s.nextMatchID++
	r.s.matches = append(r.s.matches, *match)
	return nil
}

func (r memoryMatches) List(ctx context.Context) ([]models.Match, error) {
	snap, err := r.s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Matches, nil
}

func (r memoryMatches) DeleteAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.matches = nil
	return nil
}
