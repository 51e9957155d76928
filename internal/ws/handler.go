package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/peterje/shelll/internal/events"
	ptymgr "github.com/peterje/shelll/internal/pty"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// controlMsg is a text frame from the UI.
type controlMsg struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Data      string `json:"data"`
	Rows      uint16 `json:"rows"`
	Cols      uint16 `json:"cols"`
}

// Handler streams every event to the client and accepts session input.
// Text frames carry JSON control messages; binary frames carry raw input as
// [id length (1 byte)][session id][bytes].
type Handler struct {
	hub      *events.Hub
	manager  ptymgr.SessionManager
	upgrader websocket.Upgrader
}

func NewHandler(hub *events.Hub, manager ptymgr.SessionManager, checkOrigin func(*http.Request) bool) *Handler {
	return &Handler{
		hub:     hub,
		manager: manager,
		upgrader: websocket.Upgrader{
			CheckOrigin: checkOrigin,
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws: upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("ws: client connected from %s", r.RemoteAddr)

	frames, unsub := h.hub.Subscribe()

	var wg sync.WaitGroup
	done := make(chan struct{})

	// Events -> WebSocket
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case frame, ok := <-frames:
				if !ok {
					// Evicted by the hub; the client must reconnect and
					// repaint from replay.
					conn.SetWriteDeadline(time.Now().Add(writeWait))
					conn.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "event stream overflow"))
					conn.Close()
					return
				}
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
					log.Printf("ws: write to client failed: %v", err)
					return
				}
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	// WebSocket -> sessions
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("ws: read from client failed: %v", err)
			}
			break
		}
		switch msgType {
		case websocket.BinaryMessage:
			sessionID, data, err := parseInputFrame(msg)
			if err != nil {
				log.Printf("ws: bad input frame: %v", err)
				continue
			}
			h.manager.Write(sessionID, data)
		case websocket.TextMessage:
			h.handleControl(msg)
		}
	}

	close(done)
	unsub()
	wg.Wait()
	log.Printf("ws: client %s disconnected", r.RemoteAddr)
}

func (h *Handler) handleControl(msg []byte) {
	var ctl controlMsg
	if err := json.Unmarshal(msg, &ctl); err != nil {
		log.Printf("ws: bad control message: %v", err)
		return
	}
	switch ctl.Type {
	case "write":
		h.manager.Write(ctl.SessionID, []byte(ctl.Data))
	case "resize":
		h.manager.Resize(ctl.SessionID, ctl.Rows, ctl.Cols)
	default:
		log.Printf("ws: unknown control type %q", ctl.Type)
	}
}
