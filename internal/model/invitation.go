package model

import "time"

// InvitationID uniquely identifies an invitation record
type InvitationID string

// InvitationStatus is the lifecycle state of an invitation
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
)

// Invitation is a request from Inviter for Invitee to start a game.
// At most one pending invitation may exist per ordered (inviter,
// invitee) pair; invitations never expire on their own.
type Invitation struct {
	ID        InvitationID
	Inviter   PlayerID
	Invitee   PlayerID
	Status    InvitationStatus
	CreatedAt time.Time
}
