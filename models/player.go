package models

import "time"

// Player представляет зарегистрированного участника турнира.
// Игрок не изменяется после регистрации и удаляется только общим сбросом.
type Player struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PlayerRef is the (id, name) tuple used inside pairings.
type PlayerRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func (p Player) Ref() PlayerRef {
	return PlayerRef{ID: p.ID, Name: p.Name}
}
