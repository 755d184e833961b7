package brackets

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Dosada05/swiss-tournament/models"
)

var (
	ErrInvalidReference = errors.New("match references unknown player")
	ErrSelfMatch        = errors.New("match winner and loser are the same player")
	ErrDuplicatePlayer  = errors.New("player appears more than once")
)

// ComputeStandings aggregates the match log into one row per player.
//
// Players must be passed in registration order: rows are sorted by wins
// descending with a stable sort, so players with equal wins keep that order.
// A match that points at a player outside the set fails the whole computation.
func ComputeStandings(players []models.Player, matches []models.Match) ([]models.StandingRow, error) {
	rows := make([]models.StandingRow, len(players))
	index := make(map[int]int, len(players))
	for i, p := range players {
		if _, dup := index[p.ID]; dup {
			return nil, fmt.Errorf("%w: player %d", ErrDuplicatePlayer, p.ID)
		}
		index[p.ID] = i
		rows[i] = models.StandingRow{PlayerID: p.ID, Name: p.Name}
	}

	for _, m := range matches {
		if m.WinnerID == m.LoserID {
			return nil, fmt.Errorf("%w: match %d (player %d)", ErrSelfMatch, m.ID, m.WinnerID)
		}
		wi, ok := index[m.WinnerID]
		if !ok {
			return nil, fmt.Errorf("%w: match %d, player %d", ErrInvalidReference, m.ID, m.WinnerID)
		}
		li, ok := index[m.LoserID]
		if !ok {
			return nil, fmt.Errorf("%w: match %d, player %d", ErrInvalidReference, m.ID, m.LoserID)
		}

		rows[wi].Matches++
		rows[li].Matches++
		if m.IsTie {
			rows[wi].Ties++
			rows[li].Ties++
			continue
		}
		rows[wi].Wins++
		rows[li].Losses++
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Wins > rows[j].Wins
	})

	return rows, nil
}
