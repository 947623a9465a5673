package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound    = errors.New("player not found")
	ErrDuplicateUsername = errors.New("username already exists")

	// Invitation errors
	ErrDuplicateInvitation = errors.New("invitation already pending for this pair")
	ErrNoSuchInvitation    = errors.New("no pending invitation from that player")

	// Matchmaking errors
	ErrAlreadyInSession = errors.New("player is already in a game")
	ErrOpponentOffline  = errors.New("opponent is not online")
	ErrOpponentBusy     = errors.New("opponent is already in a game")

	// Move errors
	ErrNotInSession = errors.New("player is not in a game")
	ErrNotYourTurn  = errors.New("not this player's turn")
	ErrOutOfRange   = errors.New("cell index out of range")
	ErrCellOccupied = errors.New("cell is already occupied")

	// Session errors
	ErrGameNotFound = errors.New("game not found")
)
