package server

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lixenwraith/sightgrid/follow"
	"github.com/lixenwraith/sightgrid/parameter"
)

// wsRequest is a path request plus the session-only repeat controls
type wsRequest struct {
	pathRequest

	// Repeat re-runs the query every RepeatMs until the next request
	Repeat   bool `json:"repeat,omitempty"`
	RepeatMs int  `json:"repeat_ms,omitempty"`
}

type wsError struct {
	Session string `json:"session"`
	Error   string `json:"error"`
}

// session is one WebSocket client; the writer closes the conn on failure so the reader exits
// Each text frame is a path request; a repeating request runs until the next frame or disconnect
type session struct {
	id     string
	conn   *websocket.Conn
	worlds WorldSource
	send   chan any

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newUpgrader(origins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  parameter.WSReadBufferSize,
		WriteBufferSize: parameter.WSWriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, o := range origins {
				if o == "*" || o == origin {
					return true
				}
			}
			return false
		},
	}
}

// WebSocket upgrades the connection and serves path requests until the peer leaves
func (h *Handler) WebSocket(origins []string) http.HandlerFunc {
	up := newUpgrader(origins)
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(rw, r, nil)
		if err != nil {
			log.Printf("ws: upgrade: %v", err)
			return
		}

		s := &session{
			id:     uuid.NewString(),
			conn:   conn,
			worlds: h.worlds,
			send:   make(chan any, parameter.WSSendQueueSize),
		}
		h.sessions.Store(s.id, s)
		defer h.sessions.Delete(s.id)
		log.Printf("ws: session %s opened from %s", s.id, r.RemoteAddr)

		writerDone := make(chan struct{})
		go func() {
			defer close(writerDone)
			s.writePump()
		}()

		s.readPump()

		s.stopRepeat()
		s.wg.Wait()
		close(s.send)
		<-writerDone
		log.Printf("ws: session %s closed", s.id)
	}
}

// CloseSessions disconnects every open WebSocket session
func (h *Handler) CloseSessions() {
	h.sessions.Range(func(_, v any) bool {
		_ = v.(*session).conn.Close()
		return true
	})
}

func (s *session) readPump() {
	s.conn.SetReadLimit(parameter.ServerMaxBodyBytes)
	_ = s.conn.SetReadDeadline(time.Now().Add(parameter.WSPongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(parameter.WSPongWait))
	})

	for {
		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws: session %s read: %v", s.id, err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		s.handle(data)
	}
}

func (s *session) handle(data []byte) {
	s.stopRepeat()

	var req wsRequest
	if err := decodeStrict(bytes.NewReader(data), &req); err != nil {
		s.enqueue(wsError{Session: s.id, Error: err.Error()})
		return
	}
	if !req.Repeat {
		s.answer(req.pathRequest)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	interval := time.Duration(req.RepeatMs) * time.Millisecond
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_ = follow.Every(ctx, interval, func(context.Context) bool {
			return s.answer(req.pathRequest)
		})
	}()
}

// answer runs req against the current world and queues the reply; false stops a repeat
func (s *session) answer(req pathRequest) bool {
	w := s.worlds.Current()
	if w == nil {
		s.enqueue(wsError{Session: s.id, Error: "no scene loaded"})
		return true
	}
	resp, err := runPath(w, req)
	if err != nil {
		s.enqueue(wsError{Session: s.id, Error: err.Error()})
		return false
	}
	resp.Session = s.id
	s.enqueue(resp)
	return true
}

// enqueue drops the message when the client is not keeping up
func (s *session) enqueue(msg any) {
	select {
	case s.send <- msg:
	default:
		log.Printf("ws: session %s send queue full, dropping reply", s.id)
	}
}

func (s *session) stopRepeat() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
		s.wg.Wait()
	}
}

func (s *session) writePump() {
	ticker := time.NewTicker(parameter.WSPingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(parameter.WSWriteWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(parameter.WSWriteWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
