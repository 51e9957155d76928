package api

import (
	"encoding/json"
	"net/http"

	"github.com/peterje/shelll/internal/focus"
	"github.com/peterje/shelll/internal/models"
)

type AppsHandler struct {
	inspector focus.Inspector
	monitor   *focus.Monitor
}

func NewAppsHandler(inspector focus.Inspector, monitor *focus.Monitor) *AppsHandler {
	return &AppsHandler{inspector: inspector, monitor: monitor}
}

func (h *AppsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.inspector.RunningApplications(r.Context()))
}

func (h *AppsHandler) HandleFrontmost(w http.ResponseWriter, r *http.Request) {
	var resp struct {
		Name *string `json:"name"`
	}
	if name, ok := h.inspector.FrontmostApplicationName(r.Context()); ok {
		resp.Name = &name
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (h *AppsHandler) HandleFocusStatus(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, FocusStatus(h.monitor))
}

func (h *AppsHandler) HandleStartFocus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TargetApp *string `json:"target_app"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if body.TargetApp == nil {
		WriteError(w, http.StatusBadRequest, "target_app is required")
		return
	}
	h.monitor.Start(*body.TargetApp)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AppsHandler) HandleStopFocus(w http.ResponseWriter, _ *http.Request) {
	h.monitor.Stop()
	w.WriteHeader(http.StatusNoContent)
}

// FocusStatus snapshots the monitor for API responses.
func FocusStatus(m *focus.Monitor) models.FocusStatus {
	status := models.FocusStatus{Running: m.Running()}
	if target, armed := m.Target(); armed {
		status.Target = &target
	}
	return status
}
