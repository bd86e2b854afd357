// Package websocket serves live dashboard sessions. Each connection keeps its
// own control selection and receives a recomputed view after every change,
// the way the browser dashboard re-renders both charts when a control moves.
package websocket

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	gorilla "github.com/gorilla/websocket"

	"github.com/yegors/launchboard/internal/dashboard"
	"github.com/yegors/launchboard/internal/launches"
	"github.com/yegors/launchboard/pkg/logger"
)

const (
	// writeTimeout is the deadline for a single write to a client
	writeTimeout = 10 * time.Second

	// pongWait is how long to wait for a pong before treating the connection as dead
	pongWait = 60 * time.Second

	// pingPeriod must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// maxMessageBytes bounds one client selection message
	maxMessageBytes = 4096
)

// Event names sent to clients
const (
	EventView  = "view"
	EventError = "error"
)

// Request is a selection change sent by the client. Absent fields keep their
// current value.
type Request struct {
	Site    *string   `json:"site,omitempty"`
	Payload []float64 `json:"payload,omitempty"`
}

// Message is the JSON envelope sent to clients
type Message struct {
	Event string          `json:"event"`
	Data  *dashboard.View `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// SessionObserver is told when sessions open and close
type SessionObserver interface {
	SessionOpened()
	SessionClosed()
}

// Server upgrades HTTP requests into dashboard sessions
type Server struct {
	aggregator *dashboard.Aggregator
	upgrader   gorilla.Upgrader
	observer   SessionObserver
	logger     *logger.Logger
}

// NewServer creates a session server. An empty allowedOrigins accepts any origin.
func NewServer(aggregator *dashboard.Aggregator, allowedOrigins []string, observer SessionObserver, log *logger.Logger) *Server {
	return &Server{
		aggregator: aggregator,
		upgrader: gorilla.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 8192,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		observer: observer,
		logger:   log.Named("ws-server"),
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if len(allowed) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// ServeHTTP upgrades the connection and runs the session until the client leaves
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error
		s.logger.Debug("Websocket upgrade failed", logger.Error(err))
		return
	}

	if s.observer != nil {
		s.observer.SessionOpened()
		defer s.observer.SessionClosed()
	}

	sess := &session{
		conn:       conn,
		aggregator: s.aggregator,
		selection:  s.aggregator.DefaultSelection(),
		logger:     s.logger.With(logger.String("remote_addr", r.RemoteAddr)),
	}
	sess.run()
}

// session is one connected client and its private selection
type session struct {
	conn       *gorilla.Conn
	aggregator *dashboard.Aggregator
	selection  dashboard.Selection
	logger     *logger.Logger
}

func (s *session) run() {
	defer s.conn.Close()

	s.conn.SetReadLimit(maxMessageBytes)
	s.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go s.ping(done)

	s.logger.Debug("Session opened")

	view, err := s.aggregator.View(s.selection)
	if err != nil {
		s.logger.Error("Failed to compute initial view", logger.Error(err))
		return
	}
	if err := s.send(Message{Event: EventView, Data: view}); err != nil {
		return
	}

	for {
		var req Request
		if err := s.conn.ReadJSON(&req); err != nil {
			if gorilla.IsUnexpectedCloseError(err, gorilla.CloseNormalClosure, gorilla.CloseGoingAway) {
				s.logger.Debug("Session read failed", logger.Error(err))
			}
			break
		}

		msg := s.handle(req)
		if err := s.send(msg); err != nil {
			break
		}
	}

	s.logger.Debug("Session closed")
}

// handle applies req; on failure the previous selection is kept
func (s *session) handle(req Request) Message {
	next, err := merge(s.selection, req)
	if err != nil {
		return Message{Event: EventError, Error: err.Error()}
	}

	view, err := s.aggregator.View(next)
	if err != nil {
		if !errors.Is(err, launches.ErrUnknownSite) && !errors.Is(err, launches.ErrInvalidRange) {
			s.logger.Error("Failed to compute view", logger.Error(err))
		}
		return Message{Event: EventError, Error: err.Error()}
	}

	s.selection = next
	return Message{Event: EventView, Data: view}
}

func merge(sel dashboard.Selection, req Request) (dashboard.Selection, error) {
	if req.Site != nil {
		sel.Site = *req.Site
		if sel.Site == "" {
			sel.Site = launches.AllSites
		}
	}
	if req.Payload != nil {
		if len(req.Payload) != 2 {
			return sel, fmt.Errorf("payload must be [low, high], got %d values", len(req.Payload))
		}
		sel.Payload = launches.PayloadRange{Low: req.Payload[0], High: req.Payload[1]}
	}
	return sel, nil
}

func (s *session) send(msg Message) error {
	s.conn.SetWriteDeadline(time.Now().Add(writeTimeout)) //nolint:errcheck
	if err := s.conn.WriteJSON(msg); err != nil {
		s.logger.Debug("Session write failed", logger.Error(err))
		return err
	}
	return nil
}

// ping keeps the read deadline alive; WriteControl may run alongside WriteJSON
func (s *session) ping(done <-chan struct{}) {
	t := time.NewTicker(pingPeriod)
	defer t.Stop()

	for {
		select {
		case <-done:
			return
		case <-t.C:
			if err := s.conn.WriteControl(gorilla.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
