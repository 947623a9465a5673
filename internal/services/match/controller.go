package match

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/xogame/arena/internal/dependencies/clock"
	"github.com/xogame/arena/internal/model"
	"github.com/xogame/arena/internal/proto"
	"github.com/xogame/arena/internal/services/bot"
	"github.com/xogame/arena/internal/services/presence"
	"github.com/xogame/arena/internal/storage"
)

// Controller owns the live session set and the turn protocol. All
// session and matchmaking transitions run under one controller lock;
// the expected session count is small, so a single mutual-exclusion
// scope keeps move application strictly serialized per session without
// per-session sharding.
type Controller struct {
	storage  storage.Gateway
	presence *presence.Registry
	bot      bot.Strategy
	clock    clock.Clock
	logger   *slog.Logger

	mu       sync.Mutex
	sessions map[model.GameID]*model.GameSession
}

// NewController creates a new session manager
func NewController(
	storage storage.Gateway,
	registry *presence.Registry,
	botStrategy bot.Strategy,
	clock clock.Clock,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:  storage,
		presence: registry,
		bot:      botStrategy,
		clock:    clock,
		logger:   logger.With(slog.String("component", "match")),
		sessions: make(map[model.GameID]*model.GameSession),
	}
}

// LiveSessionCount returns the number of sessions in play
func (c *Controller) LiveSessionCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

// ListPlayers renders all registered players with their online status,
// online players first.
func (c *Controller) ListPlayers(ctx context.Context) (string, error) {
	players, err := c.storage.ListPlayers(ctx)
	if err != nil {
		return "", err
	}

	statuses := make([]model.PlayerStatus, 0, len(players))
	for _, p := range players {
		_, online := c.presence.Lookup(p.ID)
		statuses = append(statuses, model.PlayerStatus{ID: p.ID, Online: online})
	}
	sort.Slice(statuses, func(i, j int) bool {
		if statuses[i].Online != statuses[j].Online {
			return statuses[i].Online
		}
		return statuses[i].ID < statuses[j].ID
	})

	lines := make([]string, 0, len(statuses))
	for _, st := range statuses {
		status := "offline"
		if st.Online {
			status = "online"
		}
		lines = append(lines, fmt.Sprintf("%s - %s", st.ID, status))
	}
	return strings.Join(lines, "\n"), nil
}

// Invite records a pending invitation from inviter to invitee and
// notifies the invitee if they are online. A pending invitation for
// the same ordered pair rejects with model.ErrDuplicateInvitation.
func (c *Controller) Invite(ctx context.Context, inviter, invitee model.PlayerID) error {
	if _, err := c.storage.GetPlayer(ctx, invitee); err != nil {
		return err
	}

	if _, err := c.storage.CreateInvitation(ctx, inviter, invitee); err != nil {
		return err
	}

	if conn, ok := c.presence.Lookup(invitee); ok {
		conn.Send(proto.ServerMessage{
			Type:    proto.NotifyInvitation,
			From:    string(inviter),
			Message: fmt.Sprintf("You have received an invitation from %s", inviter),
		})
	}

	c.logger.Info("invitation created",
		slog.String("inviter", string(inviter)),
		slog.String("invitee", string(invitee)),
	)
	return nil
}

// ListInvitations renders the caller's pending invitations
func (c *Controller) ListInvitations(ctx context.Context, invitee model.PlayerID) (string, error) {
	invs, err := c.storage.ListPendingInvitations(ctx, invitee)
	if err != nil {
		return "", err
	}
	if len(invs) == 0 {
		return "You have no pending invitations", nil
	}

	lines := make([]string, 0, len(invs)+1)
	lines = append(lines, "You have invitations from:")
	for _, inv := range invs {
		lines = append(lines, string(inv.Inviter))
	}
	return strings.Join(lines, "\n"), nil
}

// AcceptInvite resolves a pending invitation from inviter and starts a
// session. The inviter plays X and moves first; the acceptor plays O.
func (c *Controller) AcceptInvite(ctx context.Context, acceptor *presence.Connection, inviter model.PlayerID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if acceptor.Session() != "" {
		return model.ErrAlreadyInSession
	}

	inviterConn, ok := c.presence.Lookup(inviter)
	if !ok {
		return model.ErrOpponentOffline
	}
	if inviterConn.Session() != "" {
		return model.ErrOpponentBusy
	}

	inv, err := c.storage.FindPendingInvitation(ctx, acceptor.Player(), inviter)
	if err != nil {
		return err
	}
	if err := c.storage.ResolveInvitation(ctx, inv.ID); err != nil {
		return err
	}

	gameID, err := c.storage.CreateGame(ctx, inviter, acceptor.Player())
	if err != nil {
		return err
	}

	session := &model.GameSession{
		ID:        gameID,
		PlayerX:   model.HumanParticipant(inviter),
		PlayerO:   model.HumanParticipant(acceptor.Player()),
		Turn:      model.X,
		CreatedAt: c.clock.Now(),
	}
	c.sessions[gameID] = session
	inviterConn.SetSession(gameID)
	acceptor.SetSession(gameID)

	acceptor.Send(proto.ServerMessage{
		Type:    proto.NotifyInviteAccepted,
		GameID:  string(gameID),
		Message: fmt.Sprintf("Game with %s started. You play O; %s moves first.", inviter, inviter),
	})
	inviterConn.Send(proto.ServerMessage{
		Type:    proto.NotifyMatchStarted,
		GameID:  string(gameID),
		Board:   session.Board.Render(),
		Message: fmt.Sprintf("%s accepted your invitation. You play X; it is your turn.", acceptor.Player()),
	})

	c.logger.Info("session started",
		slog.String("game_id", string(gameID)),
		slog.String("player_x", string(inviter)),
		slog.String("player_o", string(acceptor.Player())),
	)
	return nil
}

// PlayWithBot starts a single-player session against the automated
// opponent. The bot plays X and its first move is applied before the
// requester ever sees the board.
func (c *Controller) PlayWithBot(ctx context.Context, requester *presence.Connection) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if requester.Session() != "" {
		return model.ErrAlreadyInSession
	}

	gameID, err := c.storage.CreateGame(ctx, "", requester.Player())
	if err != nil {
		return err
	}

	session := &model.GameSession{
		ID:        gameID,
		PlayerX:   model.BotParticipant(),
		PlayerO:   model.HumanParticipant(requester.Player()),
		Turn:      model.X,
		VsBot:     true,
		CreatedAt: c.clock.Now(),
	}

	// Opening move on the empty board
	first := c.bot.ChooseCell(session.Board, model.X)
	session.Board[first] = model.X
	session.Turn = model.O

	c.sessions[gameID] = session
	requester.SetSession(gameID)

	requester.Send(proto.ServerMessage{
		Type:    proto.NotifyMatchStarted,
		GameID:  string(gameID),
		Board:   session.Board.Render(),
		Message: "Game against the bot started. You play O; it is your turn.",
	})

	c.logger.Info("bot session started",
		slog.String("game_id", string(gameID)),
		slog.String("player_o", string(requester.Player())),
	)
	return nil
}

// Play applies a move from the given connection at the 1-based cell
// index. Validation runs in strict order: session membership, turn,
// range, occupancy. Terminal results are persisted before the
// in-memory transition commits; a persistence failure leaves the
// session untouched and surfaces the error.
func (c *Controller) Play(ctx context.Context, conn *presence.Connection, cell int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	gameID := conn.Session()
	if gameID == "" {
		return model.ErrNotInSession
	}
	session, ok := c.sessions[gameID]
	if !ok {
		return model.ErrNotInSession
	}

	side := session.SideOf(conn.Player())
	if side != session.Turn {
		return model.ErrNotYourTurn
	}

	if cell < 1 || cell > model.BoardSize {
		return model.ErrOutOfRange
	}
	idx := cell - 1
	if !session.Board.IsEmpty(idx) {
		return model.ErrCellOccupied
	}

	// Work on a scratch board so a failed terminal persist can leave
	// the live session exactly as it was.
	board := session.Board
	board[idx] = side
	turn := side.Other()

	result := board.Evaluate()
	if result == model.ResultNone && session.VsBot {
		botSide := session.BotSide()
		botIdx := c.bot.ChooseCell(board, botSide)
		board[botIdx] = botSide
		turn = botSide.Other()
		result = board.Evaluate()
	}

	if result != model.ResultNone {
		if err := c.storage.UpdateGameResult(ctx, gameID, result); err != nil {
			c.logger.Error("result persist failed; move rejected",
				slog.String("game_id", string(gameID)),
				slog.String("error", err.Error()),
			)
			return fmt.Errorf("persist game result: %w", err)
		}
		session.Board = board
		session.Turn = turn
		c.finishSession(session, result)
		return nil
	}

	session.Board = board
	session.Turn = turn

	if next, ok := c.presence.Lookup(c.turnHolder(session)); ok {
		next.Send(proto.ServerMessage{
			Type:    proto.NotifyYourTurn,
			GameID:  string(gameID),
			Board:   session.Board.Render(),
			Message: "Your turn",
		})
	}
	return nil
}

// Disconnect runs the connection's teardown: the identity leaves the
// presence registry, and if the connection was mid-session the
// remaining participant wins by forfeit.
func (c *Controller) Disconnect(ctx context.Context, conn *presence.Connection) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.presence.Unregister(conn)

	gameID := conn.Session()
	if gameID == "" {
		return
	}
	session, ok := c.sessions[gameID]
	if !ok {
		return
	}

	leaverSide := session.SideOf(conn.Player())
	winnerSide := leaverSide.Other()
	result := model.WinnerFor(winnerSide)

	// The leaver is already gone, so there is no state to roll back;
	// retry the write once and log if durable and in-memory state end
	// up divergent.
	if err := c.storage.UpdateGameResult(ctx, gameID, result); err != nil {
		if err = c.storage.UpdateGameResult(ctx, gameID, result); err != nil {
			c.logger.Error("forfeit persist failed after retry",
				slog.String("game_id", string(gameID)),
				slog.String("error", err.Error()),
			)
		}
	}

	winner := session.ParticipantFor(winnerSide)
	if !winner.Bot {
		if winnerConn, ok := c.presence.Lookup(winner.Player); ok {
			winnerConn.Send(proto.ServerMessage{
				Type:    proto.NotifyGameOver,
				GameID:  string(gameID),
				Message: fmt.Sprintf("%s disconnected. You win!", conn.Player()),
			})
			winnerConn.ClearSession()
		}
	}
	conn.ClearSession()
	delete(c.sessions, gameID)

	c.logger.Info("session forfeited",
		slog.String("game_id", string(gameID)),
		slog.String("leaver", string(conn.Player())),
	)
}

// History renders the caller's completed games
func (c *Controller) History(ctx context.Context, id model.PlayerID) (string, error) {
	records, err := c.storage.ListGamesFor(ctx, id)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "You have not played any games yet", nil
	}

	lines := make([]string, 0, len(records))
	for _, r := range records {
		lines = append(lines, fmt.Sprintf("vs %s - %s", r.OpponentOf(id), r.OutcomeFor(id)))
	}
	return strings.Join(lines, "\n"), nil
}

// finishSession retires a session whose result has already been
// persisted: participants with a live connection are notified, session
// membership is cleared, and the session leaves the live set. Draw
// messages omit a winner; bot games omit the final board because the
// human already saw it on their turn.
func (c *Controller) finishSession(session *model.GameSession, result model.Result) {
	var board string
	if !session.VsBot {
		board = session.Board.Render()
	}

	for _, p := range []model.Participant{session.PlayerX, session.PlayerO} {
		if p.Bot {
			continue
		}
		conn, ok := c.presence.Lookup(p.Player)
		if !ok {
			continue
		}
		conn.Send(proto.ServerMessage{
			Type:    proto.NotifyGameOver,
			GameID:  string(session.ID),
			Board:   board,
			Message: resultMessage(session, result, p.Player),
		})
		conn.ClearSession()
	}

	delete(c.sessions, session.ID)

	c.logger.Info("session finished",
		slog.String("game_id", string(session.ID)),
		slog.String("result", string(result)),
	)
}

// turnHolder returns the identity holding the current turn. Only
// called for two-human sessions or after bot interleaving, so the
// holder is always human.
func (c *Controller) turnHolder(session *model.GameSession) model.PlayerID {
	return session.ParticipantFor(session.Turn).Player
}

// resultMessage describes a decisive result to one participant
func resultMessage(session *model.GameSession, result model.Result, to model.PlayerID) string {
	if result == model.ResultDraw {
		return "Game over: it's a draw"
	}

	winner := session.PlayerX
	if result == model.ResultOWins {
		winner = session.PlayerO
	}
	if winner.Bot {
		return "Game over: the bot wins"
	}
	if winner.Player == to {
		return "Game over: you win!"
	}
	return fmt.Sprintf("Game over: %s wins", winner.Player)
}
