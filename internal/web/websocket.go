package web

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"coverwall/internal/search"
)

const pingInterval = 30 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ClientMessage is a command sent by a WebSocket client.
type ClientMessage struct {
	Type    string `json:"type" validate:"required,oneof=search select cancel"`
	Query   string `json:"query,omitempty" validate:"required_if=Type search"`
	TrackID string `json:"track_id,omitempty" validate:"required_if=Type select"`
}

// ServerMessage is pushed to WebSocket clients.
type ServerMessage struct {
	Type        string           `json:"type"`
	State       *search.Snapshot `json:"state,omitempty"`
	Error       string           `json:"error,omitempty"`
	Suggestions []string         `json:"suggestions,omitempty"`
}

type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) send(msg ServerMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

func (c *wsConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session_id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "session_id is required"})
		return
	}
	sess, err := s.sessions.Get(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}

	raw, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("WebSocket upgrade failed: %v", err)
		return
	}
	defer raw.Close()
	conn := &wsConn{conn: raw}

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	updates := s.sessions.Subscribe(id)
	defer s.sessions.Unsubscribe(id, updates)

	snap := sess.Snapshot()
	if err := conn.send(ServerMessage{Type: "state", State: &snap}); err != nil {
		return
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.pushUpdates(ctx, conn, updates)
	}()

	for {
		var msg ClientMessage
		if err := raw.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("WebSocket read for session %s ended: %v", id, err)
			}
			return
		}
		if err := s.validate.Struct(msg); err != nil {
			_ = conn.send(ServerMessage{Type: "error", Error: validationMessage(err)})
			continue
		}

		switch msg.Type {
		case "search":
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.wsSearch(ctx, conn, id, sess, msg.Query)
			}()
		case "select":
			if _, err := sess.SelectCandidate(msg.TrackID); err != nil {
				_ = conn.send(ServerMessage{Type: "error", Error: err.Error()})
				continue
			}
			s.sessions.Notify(id)
		case "cancel":
			sess.CancelSelection()
			s.sessions.Notify(id)
		}
	}
}

// wsSearch runs a search for the client. A superseded search sends nothing;
// the newer search reports the state.
func (s *Server) wsSearch(ctx context.Context, conn *wsConn, id string, sess *search.Session, query string) {
	res, err := sess.Search(ctx, query)
	if errors.Is(err, search.ErrSuperseded) || ctx.Err() != nil {
		return
	}
	s.sessions.Notify(id)

	if err != nil {
		msg := ServerMessage{Type: "error", Error: err.Error()}
		if res != nil {
			msg.Suggestions = res.Suggestions
		}
		_ = conn.send(msg)
	}
}

func (s *Server) pushUpdates(ctx context.Context, conn *wsConn, updates <-chan search.Snapshot) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.send(ServerMessage{Type: "state", State: &snap}); err != nil {
				s.logger.Debug("Failed to write WebSocket message: %v", err)
				return
			}
		case <-ticker.C:
			if err := conn.ping(); err != nil {
				return
			}
		}
	}
}
