package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/xogame/arena/internal/model"
	"github.com/xogame/arena/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS players (
	username      TEXT PRIMARY KEY,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS invitations (
	id         TEXT PRIMARY KEY,
	inviter    TEXT NOT NULL,
	invitee    TEXT NOT NULL,
	status     TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_invitations_pending_pair
	ON invitations (inviter, invitee) WHERE status = 'pending';

CREATE TABLE IF NOT EXISTS games (
	id         TEXT PRIMARY KEY,
	player_x   TEXT NOT NULL,
	player_o   TEXT NOT NULL,
	result     TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_games_player_x ON games (player_x);
CREATE INDEX IF NOT EXISTS idx_games_player_o ON games (player_o);
`

// Storage is a SQLite-backed implementation of the gateway interface
type Storage struct {
	db *sql.DB
}

// New opens (creating if missing) a SQLite database at the given path
// and applies the schema.
func New(path string) (*Storage, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close closes the underlying database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Gateway = (*Storage)(nil)

// isConstraintErr reports whether err is a uniqueness violation
func isConstraintErr(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	return false
}

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO players (username, password_hash, created_at) VALUES (?, ?, ?)`,
		string(player.ID), player.PasswordHash, player.CreatedAt,
	)
	if isConstraintErr(err) {
		return model.ErrDuplicateUsername
	}
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var player model.Player
	var username string
	err := s.db.QueryRowContext(ctx,
		`SELECT username, password_hash, created_at FROM players WHERE username = ?`,
		string(id),
	).Scan(&username, &player.PasswordHash, &player.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPlayerNotFound
	}
	if err != nil {
		return nil, err
	}
	player.ID = model.PlayerID(username)
	return &player, nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT username, password_hash, created_at FROM players ORDER BY username`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []*model.Player
	for rows.Next() {
		var player model.Player
		var username string
		if err := rows.Scan(&username, &player.PasswordHash, &player.CreatedAt); err != nil {
			return nil, err
		}
		player.ID = model.PlayerID(username)
		players = append(players, &player)
	}
	return players, rows.Err()
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

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO invitations (id, inviter, invitee, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		string(inv.ID), string(inviter), string(invitee), string(inv.Status), inv.CreatedAt,
	)
	if isConstraintErr(err) {
		return nil, model.ErrDuplicateInvitation
	}
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Storage) FindPendingInvitation(ctx context.Context, invitee, inviter model.PlayerID) (*model.Invitation, error) {
	inv, err := s.scanInvitation(s.db.QueryRowContext(ctx,
		`SELECT id, inviter, invitee, status, created_at FROM invitations
		 WHERE inviter = ? AND invitee = ? AND status = 'pending'`,
		string(inviter), string(invitee),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNoSuchInvitation
	}
	return inv, err
}

func (s *Storage) ListPendingInvitations(ctx context.Context, invitee model.PlayerID) ([]*model.Invitation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, inviter, invitee, status, created_at FROM invitations
		 WHERE invitee = ? AND status = 'pending' ORDER BY created_at`,
		string(invitee),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invs []*model.Invitation
	for rows.Next() {
		inv, err := s.scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invs = append(invs, inv)
	}
	return invs, rows.Err()
}

func (s *Storage) ResolveInvitation(ctx context.Context, id model.InvitationID) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE invitations SET status = 'accepted' WHERE id = ?`,
		string(id),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrNoSuchInvitation
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Storage) scanInvitation(row rowScanner) (*model.Invitation, error) {
	var inv model.Invitation
	var id, inviter, invitee, status string
	if err := row.Scan(&id, &inviter, &invitee, &status, &inv.CreatedAt); err != nil {
		return nil, err
	}
	inv.ID = model.InvitationID(id)
	inv.Inviter = model.PlayerID(inviter)
	inv.Invitee = model.PlayerID(invitee)
	inv.Status = model.InvitationStatus(status)
	return &inv, nil
}

// Game operations

func (s *Storage) CreateGame(ctx context.Context, playerX, playerO model.PlayerID) (model.GameID, error) {
	id := model.GameID(storage.NewID("game_"))
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO games (id, player_x, player_o, result, created_at) VALUES (?, ?, ?, ?, ?)`,
		string(id), string(playerX), string(playerO), string(model.ResultNone), time.Now(),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Storage) UpdateGameResult(ctx context.Context, id model.GameID, result model.Result) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE games SET result = ? WHERE id = ?`,
		string(result), string(id),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrGameNotFound
	}
	return nil
}

func (s *Storage) ListGamesFor(ctx context.Context, id model.PlayerID) ([]model.GameRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, player_x, player_o, result, created_at FROM games
		 WHERE player_x = ? OR player_o = ? ORDER BY created_at`,
		string(id), string(id),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.GameRecord
	for rows.Next() {
		var record model.GameRecord
		var gameID, playerX, playerO, result string
		if err := rows.Scan(&gameID, &playerX, &playerO, &result, &record.CreatedAt); err != nil {
			return nil, err
		}
		record.ID = model.GameID(gameID)
		record.PlayerX = model.PlayerID(playerX)
		record.PlayerO = model.PlayerID(playerO)
		record.Result = model.Result(result)
		records = append(records, record)
	}
	return records, rows.Err()
}
