package brackets

import (
	"context"

	"github.com/Dosada05/swiss-tournament/models"
)

// PairingGenerator produces the next round from ranked standings.
type PairingGenerator interface {
	GeneratePairings(ctx context.Context, standings []models.StandingRow) (*models.RoundPairings, error)

	GetName() string
}
