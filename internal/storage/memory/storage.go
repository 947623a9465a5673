package memory

import (
	"context"
	"sync"
	"time"

	"github.com/xogame/arena/internal/model"
	"github.com/xogame/arena/internal/storage"
)

// Storage is an in-memory implementation of the gateway interface
type Storage struct {
	mu sync.RWMutex

	players      map[model.PlayerID]*model.Player
	invitations  map[model.InvitationID]*model.Invitation
	pendingIndex map[pairKey]model.InvitationID
	games        map[model.GameID]*model.GameRecord
	gameOrder    []model.GameID
}

type pairKey struct {
	inviter model.PlayerID
	invitee model.PlayerID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:      make(map[model.PlayerID]*model.Player),
		invitations:  make(map[model.InvitationID]*model.Invitation),
		pendingIndex: make(map[pairKey]model.InvitationID),
		games:        make(map[model.GameID]*model.GameRecord),
	}
}

// Ensure Storage implements the interface
var _ storage.Gateway = (*Storage)(nil)

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[player.ID]; ok {
		return model.ErrDuplicateUsername
	}
	p := *player
	s.players[player.ID] = &p
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	p := *player
	return &p, nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	players := make([]*model.Player, 0, len(s.players))
	for _, player := range s.players {
		p := *player
		players = append(players, &p)
	}
	return players, nil
}

// Invitation operations

func (s *Storage) CreateInvitation(ctx context.Context, inviter, invitee model.PlayerID) (*model.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{inviter: inviter, invitee: invitee}
	if _, ok := s.pendingIndex[key]; ok {
		return nil, model.ErrDuplicateInvitation
	}

	inv := &model.Invitation{
		ID:        model.InvitationID(storage.NewID("inv_")),
		Inviter:   inviter,
		Invitee:   invitee,
		Status:    model.InvitationPending,
		CreatedAt: time.Now(),
	}
	s.invitations[inv.ID] = inv
	s.pendingIndex[key] = inv.ID

	out := *inv
	return &out, nil
}

func (s *Storage) FindPendingInvitation(ctx context.Context, invitee, inviter model.PlayerID) (*model.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.pendingIndex[pairKey{inviter: inviter, invitee: invitee}]
	if !ok {
		return nil, model.ErrNoSuchInvitation
	}
	inv := *s.invitations[id]
	return &inv, nil
}

func (s *Storage) ListPendingInvitations(ctx context.Context, invitee model.PlayerID) ([]*model.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var invs []*model.Invitation
	for _, inv := range s.invitations {
		if inv.Invitee == invitee && inv.Status == model.InvitationPending {
			out := *inv
			invs = append(invs, &out)
		}
	}
	return invs, nil
}

func (s *Storage) ResolveInvitation(ctx context.Context, id model.InvitationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invitations[id]
	if !ok {
		return model.ErrNoSuchInvitation
	}
	inv.Status = model.InvitationAccepted
	delete(s.pendingIndex, pairKey{inviter: inv.Inviter, invitee: inv.Invitee})
	return nil
}

// Game operations

func (s *Storage) CreateGame(ctx context.Context, playerX, playerO model.PlayerID) (model.GameID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := model.GameID(storage.NewID("game_"))
	s.games[id] = &model.GameRecord{
		ID:        id,
		PlayerX:   playerX,
		PlayerO:   playerO,
		Result:    model.ResultNone,
		CreatedAt: time.Now(),
	}
	s.gameOrder = append(s.gameOrder, id)
	return id, nil
}

func (s *Storage) UpdateGameResult(ctx context.Context, id model.GameID, result model.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, ok := s.games[id]
	if !ok {
		return model.ErrGameNotFound
	}
	game.Result = result
	return nil
}

func (s *Storage) ListGamesFor(ctx context.Context, id model.PlayerID) ([]model.GameRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []model.GameRecord
	for _, gameID := range s.gameOrder {
		game := s.games[gameID]
		if game.PlayerX == id || game.PlayerO == id {
			records = append(records, *game)
		}
	}
	return records, nil
}
