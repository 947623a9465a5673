package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/xogame/arena/internal/api/handler"
	apimiddleware "github.com/xogame/arena/internal/api/middleware"
	"github.com/xogame/arena/internal/middleware"
	"github.com/xogame/arena/internal/services/auth"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	Logger      *slog.Logger
	AuthService *auth.Service
	// WSHandler serves the WebSocket endpoint
	WSHandler http.Handler
}

// NewRouter creates the HTTP router: account endpoints, the WebSocket
// upgrade endpoint, and a health check.
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	playerHandler := handler.NewPlayerHandler(cfg.AuthService)

	r.Use(apimiddleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	r.HandleFunc("/register", playerHandler.Register).Methods(http.MethodPost)
	r.HandleFunc("/login", playerHandler.Login).Methods(http.MethodPost)

	if cfg.WSHandler != nil {
		r.Handle("/ws", cfg.WSHandler).Methods(http.MethodGet)
	}

	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
