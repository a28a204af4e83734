package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"mistral-chat/internal/chatview"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 64 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// clientFrame is what the page sends.
type clientFrame struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// stateFrame is pushed to the page on connect and after every view change.
type stateFrame struct {
	Type       string `json:"type"`
	HTML       string `json:"html"`
	Awaiting   bool   `json:"awaiting"`
	Count      int    `json:"count"`
	ClearInput bool   `json:"clear_input"`
}

// Hub owns one chat session per open connection. Sessions are never shared
// and die with their connection.
type Hub struct {
	mu        sync.RWMutex
	sessions  map[uuid.UUID]*session
	completer chatview.Completer
	locale    chatview.Locale
	log       logr.Logger
}

func NewHub(completer chatview.Completer, locale chatview.Locale, logger logr.Logger) *Hub {
	return &Hub{
		sessions:  make(map[uuid.UUID]*session),
		completer: completer,
		locale:    locale,
		log:       logger.WithName("ws"),
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error(err, "WebSocket upgrade failed")
		return
	}

	s := &session{
		id:   uuid.New(),
		conn: conn,
		send: make(chan []byte, 16),
		done: make(chan struct{}),
		view: chatview.NewView(h.completer, h.locale, h.log),
		log:  h.log,
	}
	s.view.OnChange(func(c chatview.Change) {
		s.push(c.Snapshot, c.Kind == chatview.ChangeSubmitted)
	})

	h.registerSession(s)
	s.push(s.view.Snapshot(), false)

	go s.writePump()
	go func() {
		defer h.unregisterSession(s)
		s.readPump()
	}()
}

// Count reports the number of open sessions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Close drops every open connection.
func (h *Hub) Close() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, s := range h.sessions {
		s.conn.Close()
	}
}

func (h *Hub) registerSession(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sessions[s.id] = s
	h.log.Info("WebSocket connected", "session", s.id, "total", len(h.sessions))
}

func (h *Hub) unregisterSession(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s.close()
	delete(h.sessions, s.id)
	h.log.Info("WebSocket disconnected", "session", s.id)
}

type session struct {
	id   uuid.UUID
	conn *websocket.Conn
	// Buffered channel of outbound frames.
	send chan []byte
	done chan struct{}
	once sync.Once
	view *chatview.View
	log  logr.Logger
}

func (s *session) close() {
	s.once.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

// push renders snap and queues it for the writer. Frames for a closed session
// are discarded.
func (s *session) push(snap chatview.Snapshot, clearInput bool) {
	html, err := s.view.Render(snap)
	if err != nil {
		s.log.Error(err, "render failed", "session", s.id)
		return
	}

	data, err := json.Marshal(stateFrame{
		Type:       "state",
		HTML:       string(html),
		Awaiting:   snap.Awaiting,
		Count:      len(snap.Messages),
		ClearInput: clearInput,
	})
	if err != nil {
		return
	}

	select {
	case s.send <- data:
	case <-s.done:
	}
}

// Reads frames from the connection until it closes.
func (s *session) readPump() {
	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var frame clientFrame
		if err := s.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.log.Error(err, "read failed", "session", s.id)
			}
			return
		}

		switch frame.Type {
		case "submit":
			// Submit blocks until the reply lands; a second frame arriving
			// meanwhile is dropped by the view.
			go s.view.Submit(context.Background(), frame.Text)
		default:
			s.log.V(1).Info("ignoring frame", "type", frame.Type, "session", s.id)
		}
	}
}

// Writes queued frames and keepalive pings to the connection.
func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		s.close()
	}()

	for {
		select {
		case <-s.done:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			s.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case msg := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
