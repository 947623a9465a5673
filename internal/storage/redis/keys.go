package redis

import (
	"fmt"

	"github.com/xogame/arena/internal/model"
)

// Key prefix for all arena data
const keyPrefix = "xoarena"

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// playersIndexKey returns the Redis key for the SET of all player IDs
func playersIndexKey() string {
	return fmt.Sprintf("%s:idx:players", keyPrefix)
}

// invitationKey returns the Redis key for an Invitation
func invitationKey(id model.InvitationID) string {
	return fmt.Sprintf("%s:invitation:%s", keyPrefix, id)
}

// pendingPairKey returns the Redis key holding the pending invitation
// ID for an ordered (inviter, invitee) pair
func pendingPairKey(inviter, invitee model.PlayerID) string {
	return fmt.Sprintf("%s:idx:pending:%s:%s", keyPrefix, inviter, invitee)
}

// inviteePendingKey returns the Redis key for the SET of pending
// invitation IDs addressed to a player
func inviteePendingKey(invitee model.PlayerID) string {
	return fmt.Sprintf("%s:idx:pending_for:%s", keyPrefix, invitee)
}

// gameKey returns the Redis key for a GameRecord
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// gamesForKey returns the Redis key for the LIST of game IDs a player
// participated in
func gamesForKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:idx:games_for:%s", keyPrefix, id)
}
