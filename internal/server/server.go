package server

import (
	"database/sql"
	"net/http"

	"github.com/peterje/shelll/internal/api"
	"github.com/peterje/shelll/internal/events"
	"github.com/peterje/shelll/internal/focus"
	"github.com/peterje/shelll/internal/models"
	ptymgr "github.com/peterje/shelll/internal/pty"
	"github.com/peterje/shelll/internal/ws"
)

// Deps are the collaborators the HTTP surface is built on.
type Deps struct {
	DB             *sql.DB // nil disables session history
	Hub            *events.Hub
	PtyMgr         ptymgr.SessionManager
	Inspector      focus.Inspector
	Monitor        *focus.Monitor
	Shell          models.ShellStatus
	AllowedOrigins []string
}

type Server struct {
	mux     *http.ServeMux
	deps    Deps
	origins originPolicy
}

func New(deps Deps) *Server {
	s := &Server{
		mux:     http.NewServeMux(),
		deps:    deps,
		origins: newOriginPolicy(deps.AllowedOrigins),
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() {
	sessions := api.NewSessionsHandler(s.deps.DB, s.deps.PtyMgr, s.deps.Shell.Name)
	apps := api.NewAppsHandler(s.deps.Inspector, s.deps.Monitor)
	wsHandler := ws.NewHandler(s.deps.Hub, s.deps.PtyMgr, s.origins.allowed)

	// Health
	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	// Sessions
	s.mux.HandleFunc("GET /api/sessions", sessions.HandleList)
	s.mux.HandleFunc("POST /api/sessions", sessions.HandleCreate)
	s.mux.HandleFunc("GET /api/sessions/history", sessions.HandleHistory)
	s.mux.HandleFunc("DELETE /api/sessions/{id}", sessions.HandleDelete)
	s.mux.HandleFunc("POST /api/sessions/{id}/input", sessions.HandleInput)
	s.mux.HandleFunc("POST /api/sessions/{id}/resize", sessions.HandleResize)
	s.mux.HandleFunc("GET /api/sessions/{id}/replay", sessions.HandleReplay)

	// Applications and focus
	s.mux.HandleFunc("GET /api/apps", apps.HandleList)
	s.mux.HandleFunc("GET /api/apps/frontmost", apps.HandleFrontmost)
	s.mux.HandleFunc("GET /api/focus", apps.HandleFocusStatus)
	s.mux.HandleFunc("POST /api/focus", apps.HandleStartFocus)
	s.mux.HandleFunc("DELETE /api/focus", apps.HandleStopFocus)

	// WebSocket
	s.mux.Handle("GET /ws/events", wsHandler)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := models.HealthResponse{
		Status:    "ok",
		Shell:     s.deps.Shell,
		Inspector: focus.Supported,
		Sessions:  len(s.deps.PtyMgr.List()),
		Focus:     api.FocusStatus(s.deps.Monitor),
		History:   s.deps.DB != nil,
	}
	api.WriteJSON(w, http.StatusOK, resp)
}
