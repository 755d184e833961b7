package models

// StandingRow is derived from the match log on every query and never stored.
type StandingRow struct {
	PlayerID int    `json:"id"`
	Name     string `json:"name"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
	Ties     int    `json:"ties"`
	Matches  int    `json:"matches"`
}

func (s StandingRow) Ref() PlayerRef {
	return PlayerRef{ID: s.PlayerID, Name: s.Name}
}
