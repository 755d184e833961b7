package models

import "time"

// Match is an immutable record of one game between two players.
// For a tie the winner/loser roles are positional only.
type Match struct {
	ID        int       `json:"id" db:"id"`
	WinnerID  int       `json:"winner_id" db:"winner_id"`
	LoserID   int       `json:"loser_id" db:"loser_id"`
	IsTie     bool      `json:"is_tie" db:"is_tie"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Involves reports whether the player took part in the match.
func (m Match) Involves(playerID int) bool {
	return m.WinnerID == playerID || m.LoserID == playerID
}
