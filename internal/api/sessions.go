package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/peterje/shelll/internal/db"
	"github.com/peterje/shelll/internal/models"
	ptymgr "github.com/peterje/shelll/internal/pty"
)

const (
	maxInputBytes       = 1 << 20
	defaultHistoryLimit = 100
)

type SessionsHandler struct {
	db      *sql.DB // nil when history is disabled
	manager ptymgr.SessionManager
	shell   string
}

func NewSessionsHandler(db *sql.DB, manager ptymgr.SessionManager, shell string) *SessionsHandler {
	return &SessionsHandler{db: db, manager: manager, shell: shell}
}

func (h *SessionsHandler) HandleList(w http.ResponseWriter, _ *http.Request) {
	sessions := []models.LiveSession{}
	for _, id := range h.manager.List() {
		sess := h.manager.Get(id)
		if sess == nil {
			continue // closed since List
		}
		sessions = append(sessions, models.LiveSession{ID: id, PID: sess.PID()})
	}
	WriteJSON(w, http.StatusOK, sessions)
}

func (h *SessionsHandler) HandleCreate(w http.ResponseWriter, _ *http.Request) {
	sessionID, err := h.manager.Create()
	if err != nil {
		log.Printf("api: create session: %v", err)
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	sess := h.manager.Get(sessionID)
	pid := 0
	if sess != nil {
		pid = sess.PID()
	}

	if h.db != nil {
		cwd, _ := os.Getwd()
		rec := models.SessionRecord{
			ID:        sessionID,
			PID:       pid,
			Shell:     h.shell,
			Cwd:       cwd,
			CreatedAt: time.Now(),
		}
		if err := db.InsertSession(h.db, rec); err != nil {
			log.Printf("api: %v", err)
		}
		if sess != nil {
			// Record the exit once the shell is reaped
			go func() {
				<-sess.Done()
				if err := db.EndSession(h.db, sessionID, models.StatusExited); err != nil {
					log.Printf("api: %v", err)
				}
			}()
		}
	}

	WriteJSON(w, http.StatusCreated, models.LiveSession{ID: sessionID, PID: pid})
}

// HandleInput writes the raw request body to the session.
func (h *SessionsHandler) HandleInput(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxInputBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, http.StatusRequestEntityTooLarge, "input too large")
			return
		}
		WriteError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}
	h.manager.Write(r.PathValue("id"), data)
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionsHandler) HandleResize(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Rows uint16 `json:"rows"`
		Cols uint16 `json:"cols"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	h.manager.Resize(r.PathValue("id"), body.Rows, body.Cols)
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	// Recorded first so the exit watcher cannot win the race to "exited".
	if h.db != nil {
		if err := db.EndSession(h.db, id, models.StatusClosed); err != nil {
			log.Printf("api: %v", err)
		}
	}
	h.manager.Close(id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionsHandler) HandleReplay(w http.ResponseWriter, r *http.Request) {
	sess := h.manager.Get(r.PathValue("id"))
	if sess == nil {
		WriteError(w, http.StatusNotFound, "session not found")
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	w.Write(sess.Replay())
}

func (h *SessionsHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		WriteError(w, http.StatusNotFound, "session history is disabled")
		return
	}
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			WriteError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	sessions, err := db.ListSessions(h.db, limit)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, sessions)
}
