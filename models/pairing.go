package models

// ByePlayerID and ByePlayerName mark the sentinel opponent of a bye pairing.
const (
	ByePlayerID   = 0
	ByePlayerName = "BYE"
)

// ByePolicy определяет, что делать с последним игроком при нечетном количестве.
type ByePolicy string

const (
	ByePolicyDrop     ByePolicy = "drop"
	ByePolicySentinel ByePolicy = "sentinel"
)

func (p ByePolicy) Valid() bool {
	return p == ByePolicyDrop || p == ByePolicySentinel
}

// Pairing assigns two players to one table of the next round.
type Pairing struct {
	Table       int    `json:"table"`
	Player1ID   int    `json:"player1_id"`
	Player1Name string `json:"player1_name"`
	Player2ID   int    `json:"player2_id"`
	Player2Name string `json:"player2_name"`
	IsBye       bool   `json:"is_bye,omitempty"`
}

// RoundPairings is the result of one pairing pass.
// Unpaired is set when the player count is odd, regardless of the bye policy.
type RoundPairings struct {
	Pairs    []Pairing  `json:"pairs"`
	Unpaired *PlayerRef `json:"unpaired,omitempty"`
	Policy   ByePolicy  `json:"bye_policy"`
}
