package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xogame/arena/internal/model"
	"github.com/xogame/arena/internal/storage"
)

// Storage is a Redis-backed implementation of the gateway interface
type Storage struct {
	client *redis.Client
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{client: client}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client) *Storage {
	return &Storage{client: client}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Gateway = (*Storage)(nil)

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	// SETNX so a concurrent registration for the same username loses
	set, err := s.client.SetNX(ctx, playerKey(player.ID), data, 0).Result()
	if err != nil {
		return err
	}
	if !set {
		return model.ErrDuplicateUsername
	}

	return s.client.SAdd(ctx, playersIndexKey(), string(player.ID)).Err()
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	ids, err := s.client.SMembers(ctx, playersIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	players := make([]*model.Player, 0, len(ids))
	for _, id := range ids {
		player, err := s.GetPlayer(ctx, model.PlayerID(id))
		if err != nil {
			if errors.Is(err, model.ErrPlayerNotFound) {
				continue
			}
			return nil, err
		}
		players = append(players, player)
	}
	return players, nil
}

// Invitation operations

func (s *Storage) CreateInvitation(ctx context.Context, inviter, invitee model.PlayerID) (*model.Invitation, error) {
	inv := &model.Invitation{
		ID:        model.InvitationID(storage.NewID("inv_")),
		Inviter:   inviter,
		Invitee:   invitee,
		Status:    model.InvitationPending,
		CreatedAt: time.Now(),
	}

	// SETNX on the pair index enforces at-most-one pending invitation
	// per ordered pair
	set, err := s.client.SetNX(ctx, pendingPairKey(inviter, invitee), string(inv.ID), 0).Result()
	if err != nil {
		return nil, err
	}
	if !set {
		return nil, model.ErrDuplicateInvitation
	}

	data, err := json.Marshal(inv)
	if err != nil {
		return nil, err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, invitationKey(inv.ID), data, 0)
	pipe.SAdd(ctx, inviteePendingKey(invitee), string(inv.ID))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Storage) FindPendingInvitation(ctx context.Context, invitee, inviter model.PlayerID) (*model.Invitation, error) {
	id, err := s.client.Get(ctx, pendingPairKey(inviter, invitee)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrNoSuchInvitation
		}
		return nil, err
	}
	return s.getInvitation(ctx, model.InvitationID(id))
}

func (s *Storage) ListPendingInvitations(ctx context.Context, invitee model.PlayerID) ([]*model.Invitation, error) {
	ids, err := s.client.SMembers(ctx, inviteePendingKey(invitee)).Result()
	if err != nil {
		return nil, err
	}

	var invs []*model.Invitation
	for _, id := range ids {
		inv, err := s.getInvitation(ctx, model.InvitationID(id))
		if err != nil {
			if errors.Is(err, model.ErrNoSuchInvitation) {
				continue
			}
			return nil, err
		}
		invs = append(invs, inv)
	}
	return invs, nil
}

func (s *Storage) ResolveInvitation(ctx context.Context, id model.InvitationID) error {
	inv, err := s.getInvitation(ctx, id)
	if err != nil {
		return err
	}

	inv.Status = model.InvitationAccepted
	data, err := json.Marshal(inv)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, invitationKey(inv.ID), data, 0)
	pipe.Del(ctx, pendingPairKey(inv.Inviter, inv.Invitee))
	pipe.SRem(ctx, inviteePendingKey(inv.Invitee), string(inv.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) getInvitation(ctx context.Context, id model.InvitationID) (*model.Invitation, error) {
	data, err := s.client.Get(ctx, invitationKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrNoSuchInvitation
		}
		return nil, err
	}

	var inv model.Invitation
	if err := json.Unmarshal(data, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// Game operations

func (s *Storage) CreateGame(ctx context.Context, playerX, playerO model.PlayerID) (model.GameID, error) {
	record := &model.GameRecord{
		ID:        model.GameID(storage.NewID("game_")),
		PlayerX:   playerX,
		PlayerO:   playerO,
		Result:    model.ResultNone,
		CreatedAt: time.Now(),
	}

	data, err := json.Marshal(record)
	if err != nil {
		return "", err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, gameKey(record.ID), data, 0)
	if playerX != "" {
		pipe.RPush(ctx, gamesForKey(playerX), string(record.ID))
	}
	if playerO != "" {
		pipe.RPush(ctx, gamesForKey(playerO), string(record.ID))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return record.ID, nil
}

func (s *Storage) UpdateGameResult(ctx context.Context, id model.GameID, result model.Result) error {
	data, err := s.client.Get(ctx, gameKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.ErrGameNotFound
		}
		return err
	}

	var record model.GameRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return err
	}

	record.Result = result
	updated, err := json.Marshal(&record)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, gameKey(id), updated, 0).Err()
}

func (s *Storage) ListGamesFor(ctx context.Context, id model.PlayerID) ([]model.GameRecord, error) {
	ids, err := s.client.LRange(ctx, gamesForKey(id), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	var records []model.GameRecord
	for _, gameID := range ids {
		data, err := s.client.Get(ctx, gameKey(model.GameID(gameID))).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, err
		}
		var record model.GameRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
