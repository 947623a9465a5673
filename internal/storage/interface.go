package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/xogame/arena/internal/model"
)

// Gateway defines the interface for durable persistence of players,
// invitations, and game records. Implementations must be safe for
// concurrent use.
type Gateway interface {
	// Player operations
	CreatePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	ListPlayers(ctx context.Context) ([]*model.Player, error)

	// Invitation operations. CreateInvitation fails with
	// model.ErrDuplicateInvitation while a pending invitation exists
	// for the same ordered (inviter, invitee) pair.
	CreateInvitation(ctx context.Context, inviter, invitee model.PlayerID) (*model.Invitation, error)
	FindPendingInvitation(ctx context.Context, invitee, inviter model.PlayerID) (*model.Invitation, error)
	ListPendingInvitations(ctx context.Context, invitee model.PlayerID) ([]*model.Invitation, error)
	ResolveInvitation(ctx context.Context, id model.InvitationID) error

	// Game operations. CreateGame assigns and returns the durable game
	// ID. The automated opponent is stored as an empty player ID.
	CreateGame(ctx context.Context, playerX, playerO model.PlayerID) (model.GameID, error)
	UpdateGameResult(ctx context.Context, id model.GameID, result model.Result) error
	ListGamesFor(ctx context.Context, id model.PlayerID) ([]model.GameRecord, error)
}

// NewID generates a random identifier with the given prefix
func NewID(prefix string) string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return prefix + hex.EncodeToString(b)
}
