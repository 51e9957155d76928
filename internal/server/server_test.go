package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/peterje/shelll/internal/events"
	"github.com/peterje/shelll/internal/focus"
	"github.com/peterje/shelll/internal/models"
	ptymgr "github.com/peterje/shelll/internal/pty"
)

func newTestServer(origins ...string) (*Server, *focus.Monitor) {
	hub := events.NewHub()
	monitor := focus.NewMonitor(focus.NoopInspector{}, hub)
	return New(Deps{
		Hub:            hub,
		PtyMgr:         ptymgr.NewManager(hub, ptymgr.DefaultSpawner()),
		Inspector:      focus.NoopInspector{},
		Monitor:        monitor,
		Shell:          models.ShellStatus{Name: "zsh", Installed: true, Path: "/bin/zsh"},
		AllowedOrigins: origins,
	}), monitor
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp models.HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" || resp.Shell.Name != "zsh" || resp.Sessions != 0 || resp.History {
		t.Errorf("health = %+v", resp)
	}
	if resp.Focus.Running {
		t.Error("focus monitor reported running")
	}
}

func TestOriginMiddleware(t *testing.T) {
	srv, monitor := newTestServer("tauri://localhost")
	defer monitor.Stop()
	h := srv.OriginMiddleware(srv)

	tests := []struct {
		name   string
		method string
		origin string
		want   int
	}{
		{name: "no origin", method: "DELETE", want: http.StatusNoContent},
		{name: "loopback", method: "DELETE", origin: "http://localhost:1420", want: http.StatusNoContent},
		{name: "configured", method: "DELETE", origin: "tauri://localhost", want: http.StatusNoContent},
		{name: "foreign write", method: "DELETE", origin: "https://evil.example", want: http.StatusForbidden},
		{name: "foreign read", method: "GET", origin: "https://evil.example", want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/focus", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
