package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/Dosada05/swiss-tournament/brackets"
	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/repositories"
)

const maxPlayerNameLength = 100

// Notifier receives tournament events after state changes.
type Notifier interface {
	Notify(eventType string, payload interface{})
}

type ReportMatchInput struct {
	WinnerID int  `json:"winner_id"`
	LoserID  int  `json:"loser_id"`
	IsTie    bool `json:"is_tie"`
}

type TournamentService interface {
	RegisterPlayer(ctx context.Context, name string) (*models.Player, error)
	GetPlayer(ctx context.Context, id int) (*models.Player, error)
	ListPlayers(ctx context.Context) ([]models.Player, error)
	CountPlayers(ctx context.Context) (int, error)
	DeletePlayers(ctx context.Context) error

	ReportMatch(ctx context.Context, input ReportMatchInput) (*models.Match, error)
	ListMatches(ctx context.Context) ([]models.Match, error)
	DeleteMatches(ctx context.Context) error

	ComputeStandings(ctx context.Context) ([]models.StandingRow, error)
	GeneratePairings(ctx context.Context) (*models.RoundPairings, error)
	// CurrentRound returns standings and the next round built from the same snapshot.
	CurrentRound(ctx context.Context) ([]models.StandingRow, *models.RoundPairings, error)
}

type tournamentService struct {
	playerRepo repositories.PlayerRepository
	matchRepo  repositories.MatchRepository
	snapshots  repositories.SnapshotReader
	generator  brackets.PairingGenerator
	notifier   Notifier
	logger     *slog.Logger
}

func NewTournamentService(
	playerRepo repositories.PlayerRepository,
	matchRepo repositories.MatchRepository,
	snapshots repositories.SnapshotReader,
	generator brackets.PairingGenerator,
	notifier Notifier,
	logger *slog.Logger,
) TournamentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &tournamentService{
		playerRepo: playerRepo,
		matchRepo:  matchRepo,
		snapshots:  snapshots,
		generator:  generator,
		notifier:   notifier,
		logger:     logger.With(slog.String("service", "tournament")),
	}
}

func (s *tournamentService) RegisterPlayer(ctx context.Context, name string) (*models.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrPlayerNameRequired
	}
	if utf8.RuneCountInString(name) > maxPlayerNameLength {
		return nil, fmt.Errorf("%w: max %d characters", ErrPlayerNameTooLong, maxPlayerNameLength)
	}

	player := &models.Player{Name: name}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to register player: %w", err)
	}
	s.logger.Info("player registered", slog.Int("player_id", player.ID), slog.String("name", player.Name))
	s.publishStandings(ctx)
	return player, nil
}

func (s *tournamentService) GetPlayer(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player %d: %w", id, err)
	}
	return player, nil
}

func (s *tournamentService) ListPlayers(ctx context.Context) ([]models.Player, error) {
	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	return players, nil
}

func (s *tournamentService) CountPlayers(ctx context.Context) (int, error) {
	n, err := s.playerRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count players: %w", err)
	}
	return n, nil
}

func (s *tournamentService) DeletePlayers(ctx context.Context) error {
	if err := s.playerRepo.DeleteAll(ctx); err != nil {
		if errors.Is(err, repositories.ErrPlayersHaveMatches) {
			return ErrPlayersHaveMatches
		}
		return fmt.Errorf("failed to delete players: %w", err)
	}
	s.logger.Info("all players deleted")
	s.notify(brackets.EventTournamentReset, map[string]string{"scope": "players"})
	return nil
}

func (s *tournamentService) ReportMatch(ctx context.Context, input ReportMatchInput) (*models.Match, error) {
	if input.WinnerID <= 0 || input.LoserID <= 0 || input.WinnerID == input.LoserID {
		return nil, ErrInvalidMatch
	}

	match := &models.Match{WinnerID: input.WinnerID, LoserID: input.LoserID, IsTie: input.IsTie}
	if err := s.matchRepo.Create(ctx, match); err != nil {
		switch {
		case errors.Is(err, repositories.ErrMatchPlayerInvalid):
			return nil, fmt.Errorf("%w: %d or %d", ErrUnknownPlayer, input.WinnerID, input.LoserID)
		case errors.Is(err, repositories.ErrMatchSelfPlay):
			return nil, ErrInvalidMatch
		default:
			return nil, fmt.Errorf("failed to report match: %w", err)
		}
	}

	s.logger.Info("match reported",
		slog.Int("match_id", match.ID),
		slog.Int("winner_id", match.WinnerID),
		slog.Int("loser_id", match.LoserID),
		slog.Bool("is_tie", match.IsTie),
	)
	s.publishStandings(ctx)
	return match, nil
}

func (s *tournamentService) ListMatches(ctx context.Context) ([]models.Match, error) {
	matches, err := s.matchRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return matches, nil
}

func (s *tournamentService) DeleteMatches(ctx context.Context) error {
	if err := s.matchRepo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to delete matches: %w", err)
	}
	s.logger.Info("all matches deleted")
	s.notify(brackets.EventTournamentReset, map[string]string{"scope": "matches"})
	return nil
}

// ComputeStandings recomputes standings from one storage snapshot.
func (s *tournamentService) ComputeStandings(ctx context.Context) ([]models.StandingRow, error) {
	snap, err := s.snapshots.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read tournament snapshot: %w", err)
	}
	return s.standingsFrom(snap)
}

func (s *tournamentService) GeneratePairings(ctx context.Context) (*models.RoundPairings, error) {
	_, round, err := s.CurrentRound(ctx)
	if err != nil {
		return nil, err
	}
	if round.Unpaired != nil {
		s.logger.Warn("odd player count, lowest-ranked player has no opponent",
			slog.Int("player_id", round.Unpaired.ID),
			slog.String("name", round.Unpaired.Name),
			slog.String("bye_policy", string(round.Policy)),
		)
	}
	return round, nil
}

func (s *tournamentService) CurrentRound(ctx context.Context) ([]models.StandingRow, *models.RoundPairings, error) {
	standings, err := s.ComputeStandings(ctx)
	if err != nil {
		return nil, nil, err
	}
	round, err := s.generator.GeneratePairings(ctx, standings)
	if err != nil {
		return nil, nil, fmt.Errorf("%s generator failed: %w", s.generator.GetName(), err)
	}
	return standings, round, nil
}

func (s *tournamentService) standingsFrom(snap *models.Snapshot) ([]models.StandingRow, error) {
	rows, err := brackets.ComputeStandings(snap.Players, snap.Matches)
	if err != nil {
		if errors.Is(err, brackets.ErrInvalidReference) || errors.Is(err, brackets.ErrSelfMatch) || errors.Is(err, brackets.ErrDuplicatePlayer) {
			s.logger.Error("match log is inconsistent", slog.Any("error", err))
			return nil, fmt.Errorf("%w: %w", ErrInvalidReference, err)
		}
		return nil, err
	}
	return rows, nil
}

func (s *tournamentService) publishStandings(ctx context.Context) {
	if s.notifier == nil {
		return
	}
	standings, round, err := s.CurrentRound(ctx)
	if err != nil {
		s.logger.Warn("skipping standings broadcast", slog.Any("error", err))
		return
	}
	s.notifier.Notify(brackets.EventStandingsUpdated, standings)
	s.notifier.Notify(brackets.EventPairingsUpdated, round)
}

func (s *tournamentService) notify(eventType string, payload interface{}) {
	if s.notifier != nil {
		s.notifier.Notify(eventType, payload)
	}
}
