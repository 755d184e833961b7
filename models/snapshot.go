package models

// Snapshot is a consistent read of the whole tournament state.
type Snapshot struct {
	Players []Player `json:"players"`
	Matches []Match  `json:"matches"`
}
