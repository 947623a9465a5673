package model

import "time"

// PlayerID uniquely identifies a player across the system. It is the
// registered username, the durable key for all player-scoped state.
type PlayerID string

// Player is a registered account
type Player struct {
	ID           PlayerID
	PasswordHash string // bcrypt hash
	CreatedAt    time.Time
}

// PlayerStatus pairs a player with their online state for listings
type PlayerStatus struct {
	ID     PlayerID
	Online bool
}
