package services

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/Dosada05/swiss-tournament/brackets"
	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/repositories"
)

type recordedEvent struct {
	Type    string
	Payload interface{}
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (n *fakeNotifier) Notify(eventType string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{Type: eventType, Payload: payload})
}

func (n *fakeNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Type)
	}
	return out
}

type staticSnapshot struct {
	snap *models.Snapshot
	err  error
}

func (s staticSnapshot) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	return s.snap, s.err
}

func newTestService(t *testing.T, policy models.ByePolicy) (TournamentService, *fakeNotifier) {
	t.Helper()
	store := repositories.NewMemoryStore()
	notifier := &fakeNotifier{}
	svc := NewTournamentService(store.Players(), store.Matches(), store, brackets.NewSwissGenerator(policy), notifier, nil)
	return svc, notifier
}

func register(t *testing.T, svc TournamentService, names ...string) {
	t.Helper()
	for _, name := range names {
		if _, err := svc.RegisterPlayer(context.Background(), name); err != nil {
			t.Fatalf("RegisterPlayer(%q) error = %v", name, err)
		}
	}
}

func report(t *testing.T, svc TournamentService, winner, loser int) {
	t.Helper()
	if _, err := svc.ReportMatch(context.Background(), ReportMatchInput{WinnerID: winner, LoserID: loser}); err != nil {
		t.Fatalf("ReportMatch(%d, %d) error = %v", winner, loser, err)
	}
}

func TestRegisterPlayer(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantName string
		wantErr  error
	}{
		{name: "trims whitespace", input: "  Alice  ", wantName: "Alice"},
		{name: "blank", input: "   ", wantErr: ErrPlayerNameRequired},
		{name: "empty", input: "", wantErr: ErrPlayerNameRequired},
		{name: "too long", input: strings.Repeat("я", maxPlayerNameLength+1), wantErr: ErrPlayerNameTooLong},
		{name: "exactly max", input: strings.Repeat("я", maxPlayerNameLength), wantName: strings.Repeat("я", maxPlayerNameLength)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, models.ByePolicyDrop)
			player, err := svc.RegisterPlayer(context.Background(), tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("RegisterPlayer() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && (player.Name != tt.wantName || player.ID != 1) {
				t.Fatalf("RegisterPlayer() = %+v", player)
			}
		})
	}
}

func TestStandingsScenarios(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, models.ByePolicyDrop)
	register(t, svc, "A", "B", "C", "D")

	got, err := svc.ComputeStandings(ctx)
	if err != nil {
		t.Fatalf("ComputeStandings() error = %v", err)
	}
	want := []models.StandingRow{
		{PlayerID: 1, Name: "A"},
		{PlayerID: 2, Name: "B"},
		{PlayerID: 3, Name: "C"},
		{PlayerID: 4, Name: "D"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("initial standings = %+v, want %+v", got, want)
	}

	report(t, svc, 1, 2)
	got, err = svc.ComputeStandings(ctx)
	if err != nil {
		t.Fatalf("ComputeStandings() error = %v", err)
	}
	if got[0].PlayerID != 1 || got[0].Wins != 1 || got[0].Matches != 1 {
		t.Fatalf("leader = %+v, want player 1 with one win", got[0])
	}
	for _, row := range got {
		if row.PlayerID == 2 && (row.Wins != 0 || row.Matches != 1) {
			t.Fatalf("player 2 = %+v", row)
		}
	}

	report(t, svc, 3, 4)
	round, err := svc.GeneratePairings(ctx)
	if err != nil {
		t.Fatalf("GeneratePairings() error = %v", err)
	}
	wantPairs := []models.Pairing{
		{Table: 1, Player1ID: 1, Player1Name: "A", Player2ID: 3, Player2Name: "C"},
		{Table: 2, Player1ID: 2, Player1Name: "B", Player2ID: 4, Player2Name: "D"},
	}
	if !reflect.DeepEqual(round.Pairs, wantPairs) || round.Unpaired != nil {
		t.Fatalf("GeneratePairings() = %+v, want %+v", round, wantPairs)
	}
}

func TestGeneratePairingsOddCount(t *testing.T) {
	tests := []struct {
		name      string
		policy    models.ByePolicy
		wantPairs int
	}{
		{name: "drop", policy: models.ByePolicyDrop, wantPairs: 1},
		{name: "sentinel", policy: models.ByePolicySentinel, wantPairs: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, tt.policy)
			register(t, svc, "A", "B", "C")

			round, err := svc.GeneratePairings(context.Background())
			if err != nil {
				t.Fatalf("GeneratePairings() error = %v", err)
			}
			if len(round.Pairs) != tt.wantPairs {
				t.Fatalf("got %d pairs, want %d", len(round.Pairs), tt.wantPairs)
			}
			if round.Unpaired == nil || round.Unpaired.ID != 3 {
				t.Fatalf("Unpaired = %+v, want player 3", round.Unpaired)
			}
		})
	}
}

func TestReportMatch(t *testing.T) {
	tests := []struct {
		name    string
		input   ReportMatchInput
		wantErr error
	}{
		{name: "win", input: ReportMatchInput{WinnerID: 1, LoserID: 2}},
		{name: "tie", input: ReportMatchInput{WinnerID: 2, LoserID: 1, IsTie: true}},
		{name: "same player", input: ReportMatchInput{WinnerID: 1, LoserID: 1}, wantErr: ErrInvalidMatch},
		{name: "zero id", input: ReportMatchInput{WinnerID: 0, LoserID: 1}, wantErr: ErrInvalidMatch},
		{name: "unknown player", input: ReportMatchInput{WinnerID: 1, LoserID: 99}, wantErr: ErrUnknownPlayer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, models.ByePolicyDrop)
			register(t, svc, "A", "B")

			match, err := svc.ReportMatch(context.Background(), tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ReportMatch() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && (match.ID != 1 || match.IsTie != tt.input.IsTie) {
				t.Fatalf("ReportMatch() = %+v", match)
			}
		})
	}
}

func TestTieDoesNotAwardWins(t *testing.T) {
	svc, _ := newTestService(t, models.ByePolicyDrop)
	register(t, svc, "A", "B")
	if _, err := svc.ReportMatch(context.Background(), ReportMatchInput{WinnerID: 2, LoserID: 1, IsTie: true}); err != nil {
		t.Fatalf("ReportMatch() error = %v", err)
	}

	rows, err := svc.ComputeStandings(context.Background())
	if err != nil {
		t.Fatalf("ComputeStandings() error = %v", err)
	}
	for _, r := range rows {
		if r.Wins != 0 || r.Losses != 0 || r.Ties != 1 || r.Matches != 1 {
			t.Fatalf("row after tie = %+v", r)
		}
	}
	if rows[0].PlayerID != 1 {
		t.Fatalf("tied players should keep registration order, got %+v", rows)
	}
}

func TestResetOperations(t *testing.T) {
	ctx := context.Background()
	svc, notifier := newTestService(t, models.ByePolicyDrop)
	register(t, svc, "A", "B")
	report(t, svc, 1, 2)

	if err := svc.DeletePlayers(ctx); !errors.Is(err, ErrPlayersHaveMatches) {
		t.Fatalf("DeletePlayers() error = %v, want %v", err, ErrPlayersHaveMatches)
	}
	if err := svc.DeleteMatches(ctx); err != nil {
		t.Fatalf("DeleteMatches() error = %v", err)
	}
	matches, err := svc.ListMatches(ctx)
	if err != nil || len(matches) != 0 {
		t.Fatalf("ListMatches() = %+v, %v", matches, err)
	}
	if err := svc.DeletePlayers(ctx); err != nil {
		t.Fatalf("DeletePlayers() error = %v", err)
	}
	n, err := svc.CountPlayers(ctx)
	if err != nil || n != 0 {
		t.Fatalf("CountPlayers() = %d, %v", n, err)
	}

	types := notifier.types()
	if types[len(types)-1] != brackets.EventTournamentReset || types[len(types)-2] != brackets.EventTournamentReset {
		t.Fatalf("expected two reset events at the end, got %v", types)
	}
}

func TestWritesPublishStandingsAndPairings(t *testing.T) {
	svc, notifier := newTestService(t, models.ByePolicyDrop)
	register(t, svc, "A", "B")
	report(t, svc, 2, 1)

	types := notifier.types()
	want := []string{
		brackets.EventStandingsUpdated, brackets.EventPairingsUpdated,
		brackets.EventStandingsUpdated, brackets.EventPairingsUpdated,
		brackets.EventStandingsUpdated, brackets.EventPairingsUpdated,
	}
	if !reflect.DeepEqual(types, want) {
		t.Fatalf("events = %v, want %v", types, want)
	}

	notifier.mu.Lock()
	last := notifier.events[len(notifier.events)-2]
	notifier.mu.Unlock()
	rows, ok := last.Payload.([]models.StandingRow)
	if !ok || rows[0].PlayerID != 2 {
		t.Fatalf("standings payload = %#v", last.Payload)
	}
}

func TestGetPlayer(t *testing.T) {
	svc, _ := newTestService(t, models.ByePolicyDrop)
	register(t, svc, "A")

	p, err := svc.GetPlayer(context.Background(), 1)
	if err != nil || p.Name != "A" {
		t.Fatalf("GetPlayer(1) = %+v, %v", p, err)
	}
	if _, err := svc.GetPlayer(context.Background(), 2); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("GetPlayer(2) error = %v, want %v", err, ErrPlayerNotFound)
	}
}

func TestComputeStandingsFailsClosed(t *testing.T) {
	store := repositories.NewMemoryStore()
	broken := staticSnapshot{snap: &models.Snapshot{
		Players: []models.Player{{ID: 1, Name: "A"}},
		Matches: []models.Match{{ID: 1, WinnerID: 1, LoserID: 2}},
	}}
	svc := NewTournamentService(store.Players(), store.Matches(), broken, brackets.NewSwissGenerator(models.ByePolicyDrop), nil, nil)

	if _, err := svc.ComputeStandings(context.Background()); !errors.Is(err, ErrInvalidReference) || !errors.Is(err, brackets.ErrInvalidReference) {
		t.Fatalf("ComputeStandings() error = %v, want %v", err, ErrInvalidReference)
	}
	if _, err := svc.GeneratePairings(context.Background()); !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("GeneratePairings() error = %v, want %v", err, ErrInvalidReference)
	}
}

func TestComputeStandingsStorageError(t *testing.T) {
	store := repositories.NewMemoryStore()
	storageErr := errors.New("connection reset")
	svc := NewTournamentService(store.Players(), store.Matches(), staticSnapshot{err: storageErr}, brackets.NewSwissGenerator(models.ByePolicyDrop), nil, nil)

	_, err := svc.ComputeStandings(context.Background())
	if !errors.Is(err, storageErr) || errors.Is(err, ErrInvalidReference) {
		t.Fatalf("ComputeStandings() error = %v, want wrapped storage error", err)
	}
}
