package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/xogame/arena/internal/api"
	"github.com/xogame/arena/internal/factory"
	"github.com/xogame/arena/internal/services/auth"
	redisstorage "github.com/xogame/arena/internal/storage/redis"
	"github.com/xogame/arena/internal/transport/ws"
)

type serverOptions struct {
	host          string
	port          int
	storageType   string
	redisURL      string
	sqlitePath    string
	jwtSecret     string
	tokenDuration time.Duration
}

func main() {
	opts := &serverOptions{}

	rootCmd := &cobra.Command{
		Use:   "arena",
		Short: "Realtime tic-tac-toe game server",
		Long: `arena is a WebSocket game server for realtime tic-tac-toe.

Players register and log in over HTTP, then connect via WebSocket to see
who is online, exchange invitations, and play matches against each other
or against the built-in bot.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(opts)
		},
	}

	// Flags take precedence over environment variables loaded below
	rootCmd.Flags().StringVar(&opts.host, "host", envOr("HOST", ""), "Host to bind (env: HOST)")
	rootCmd.Flags().IntVar(&opts.port, "port", envIntOr("PORT", 3000), "Port to listen on (env: PORT)")
	rootCmd.Flags().StringVar(&opts.storageType, "storage", envOr("STORAGE_TYPE", factory.StorageTypeMemory), "Storage backend: memory, redis, or sqlite (env: STORAGE_TYPE)")
	rootCmd.Flags().StringVar(&opts.redisURL, "redis-url", envOr("REDIS_URL", ""), "Redis connection URL (env: REDIS_URL)")
	rootCmd.Flags().StringVar(&opts.sqlitePath, "sqlite-path", envOr("SQLITE_PATH", "data/arena.db"), "SQLite database file path (env: SQLITE_PATH)")
	rootCmd.Flags().StringVar(&opts.jwtSecret, "jwt-secret", envOr("JWT_SECRET", ""), "Secret for signing session tokens (env: JWT_SECRET)")
	rootCmd.Flags().DurationVar(&opts.tokenDuration, "token-duration", envDurationOr("TOKEN_DURATION", 24*time.Hour), "Session token lifetime (env: TOKEN_DURATION)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServer(opts *serverOptions) error {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if opts.jwtSecret == "" {
		logger.Error("JWT_SECRET (or --jwt-secret) is required")
		os.Exit(1)
	}

	// Build factory config
	cfg := factory.Config{
		AuthConfig: auth.Config{
			Secret:        opts.jwtSecret,
			TokenDuration: opts.tokenDuration,
		},
		Logger:      logger,
		StorageType: opts.storageType,
		SQLitePath:  opts.sqlitePath,
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		if opts.redisURL == "" {
			logger.Error("REDIS_URL required when storage type is redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = opts.redisURL
		cfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Create WebSocket transport
	wsServer := ws.NewServer(app.AuthService, app.MatchController, app.Presence, logger)

	// Create router
	router := api.NewRouter(api.RouterConfig{
		Logger:      logger,
		AuthService: app.AuthService,
		WSHandler:   wsServer,
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = opts.host
	serverConfig.Port = opts.port
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.StorageType),
	)

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
	return nil
}

func init() {
	// Best-effort; absence of a .env file is not an error
	_ = godotenv.Load()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
