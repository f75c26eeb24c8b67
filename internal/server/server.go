package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mholden/ticklist/internal/auth"
	"github.com/mholden/ticklist/internal/authz"
	"github.com/mholden/ticklist/internal/handler"
	"github.com/mholden/ticklist/internal/middleware"
	"github.com/mholden/ticklist/internal/store"
	ws "github.com/mholden/ticklist/internal/websocket"
)

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	authH       *handler.AuthHandler
	checklistH  *handler.ChecklistHandler
	itemH       *handler.ItemHandler
	userStore   *store.UserStore
	jwtManager  *auth.JWTManager
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *sql.DB, jwtManager *auth.JWTManager, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	checklistStore := store.NewChecklistStore(db)
	gate := authz.NewGate(checklistStore)

	return &Server{
		db:          db,
		hub:         hub,
		authH:       handler.NewAuthHandler(userStore, jwtManager, logger.With("component", "auth")),
		checklistH:  handler.NewChecklistHandler(checklistStore, gate, hub, logger.With("component", "checklist")),
		itemH:       handler.NewItemHandler(checklistStore, gate, hub, logger.With("component", "item")),
		userStore:   userStore,
		jwtManager:  jwtManager,
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("POST /api/register", s.rateLimited(s.authH.Register))
	mux.HandleFunc("POST /api/login", s.rateLimited(s.authH.Login))
	mux.HandleFunc("GET /health", s.healthHandler)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Protected routes — each behind the bearer-token middleware
	protect := middleware.RequireAuth(s.jwtManager, s.userStore)

	mux.Handle("GET /api/checklist", protect(http.HandlerFunc(s.checklistH.List)))
	mux.Handle("POST /api/checklist", protect(http.HandlerFunc(s.checklistH.Create)))
	mux.Handle("DELETE /api/checklist/{checklist_id}", protect(http.HandlerFunc(s.checklistH.Delete)))

	mux.Handle("GET /api/checklist/{checklist_id}/item", protect(http.HandlerFunc(s.itemH.List)))
	mux.Handle("POST /api/checklist/{checklist_id}/item", protect(http.HandlerFunc(s.itemH.Create)))
	mux.Handle("GET /api/checklist/{checklist_id}/item/{item_id}", protect(http.HandlerFunc(s.itemH.Get)))
	mux.Handle("PUT /api/checklist/{checklist_id}/item/{item_id}", protect(http.HandlerFunc(s.itemH.Toggle)))
	mux.Handle("DELETE /api/checklist/{checklist_id}/item/{item_id}", protect(http.HandlerFunc(s.itemH.Delete)))
	mux.Handle("PUT /api/checklist/{checklist_id}/item/rename/{item_id}", protect(http.HandlerFunc(s.itemH.Rename)))

	mux.Handle("GET /api/ws", protect(ws.HandleWebSocket(s.hub)))

	// Metrics outermost-but-one so it sees the matched route pattern;
	// request logging wraps everything.
	h := middleware.Metrics()(mux)
	return middleware.RequestLogger(s.logger.With("component", "http"))(h)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimited(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(h).ServeHTTP(w, r)
	}
}
