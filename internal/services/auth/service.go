package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/xogame/arena/internal/dependencies/clock"
	"github.com/xogame/arena/internal/model"
	"github.com/xogame/arena/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrWeakPassword       = errors.New("password too short")
	ErrBadUsername        = errors.New("username must be 3-24 letters, digits, or underscores")
)

// Config holds configuration for the auth service
type Config struct {
	// Secret signs and verifies session tokens
	Secret string
	// TokenDuration is how long an issued token stays valid
	TokenDuration time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		TokenDuration: 24 * time.Hour,
	}
}

// Service handles registration, credential checks, and token issuance
type Service struct {
	storage storage.Gateway
	clock   clock.Clock
	logger  *slog.Logger
	cfg     Config
}

// New creates a new auth service
func New(storage storage.Gateway, clock clock.Clock, cfg Config, logger *slog.Logger) *Service {
	if cfg.TokenDuration == 0 {
		cfg.TokenDuration = DefaultConfig().TokenDuration
	}
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
		cfg:     cfg,
	}
}

// Register creates a new player account
func (s *Service) Register(ctx context.Context, username, password string) error {
	if err := validateUsername(username); err != nil {
		return err
	}
	if len(password) < 8 {
		return ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	player := &model.Player{
		ID:           model.PlayerID(username),
		PasswordHash: string(hash),
		CreatedAt:    s.clock.Now(),
	}

	if err := s.storage.CreatePlayer(ctx, player); err != nil {
		return err
	}

	s.logger.Info("player registered", slog.String("player", username))
	return nil
}

// Login verifies credentials and issues a signed token
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	player, err := s.storage.GetPlayer(ctx, model.PlayerID(username))
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(player.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := s.clock.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": username,
		"iat": now.Unix(),
		"exp": now.Add(s.cfg.TokenDuration).Unix(),
	})

	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", err
	}
	return signed, nil
}

// ValidateToken verifies a token and returns the identity it carries
func (s *Service) ValidateToken(tokenStr string) (model.PlayerID, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	}, jwt.WithTimeFunc(s.clock.Now))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrInvalidToken
	}
	return model.PlayerID(sub), nil
}

// validateUsername enforces the registration username rules
func validateUsername(username string) error {
	if len(username) < 3 || len(username) > 24 {
		return ErrBadUsername
	}
	for _, r := range username {
		if r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			continue
		}
		return ErrBadUsername
	}
	return nil
}
