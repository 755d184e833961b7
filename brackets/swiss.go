package brackets

import (
	"context"
	"fmt"

	"github.com/Dosada05/swiss-tournament/models"
)

type SwissGenerator struct {
	byePolicy models.ByePolicy
}

// NewSwissGenerator returns the adjacency pairing generator.
// An unknown policy falls back to ByePolicyDrop.
func NewSwissGenerator(policy models.ByePolicy) PairingGenerator {
	if !policy.Valid() {
		policy = models.ByePolicyDrop
	}
	return &SwissGenerator{byePolicy: policy}
}

func (g *SwissGenerator) GetName() string {
	return "Swiss"
}

// GeneratePairings pairs neighbours in the standings: (0,1), (2,3), ...
// With an odd count the last player is reported in Unpaired and, under the
// sentinel policy, also gets a bye pairing appended.
func (g *SwissGenerator) GeneratePairings(ctx context.Context, standings []models.StandingRow) (*models.RoundPairings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seen := make(map[int]struct{}, len(standings))
	for _, s := range standings {
		if _, dup := seen[s.PlayerID]; dup {
			return nil, fmt.Errorf("%w: player %d", ErrDuplicatePlayer, s.PlayerID)
		}
		seen[s.PlayerID] = struct{}{}
	}

	n := len(standings)
	result := &models.RoundPairings{
		Pairs:  make([]models.Pairing, 0, n/2+1),
		Policy: g.byePolicy,
	}

	for i := 0; i+1 < n; i += 2 {
		p1, p2 := standings[i], standings[i+1]
		result.Pairs = append(result.Pairs, models.Pairing{
			Table:       i/2 + 1,
			Player1ID:   p1.PlayerID,
			Player1Name: p1.Name,
			Player2ID:   p2.PlayerID,
			Player2Name: p2.Name,
		})
	}

	if n%2 == 1 {
		last := standings[n-1].Ref()
		result.Unpaired = &last
		if g.byePolicy == models.ByePolicySentinel {
			result.Pairs = append(result.Pairs, models.Pairing{
				Table:       len(result.Pairs) + 1,
				Player1ID:   last.ID,
				Player1Name: last.Name,
				Player2ID:   models.ByePlayerID,
				Player2Name: models.ByePlayerName,
				IsBye:       true,
			})
		}
	}

	return result, nil
}
