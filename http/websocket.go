package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-kit/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	converter "go-currency-converter"
	"go-currency-converter/refresh"
	"go-currency-converter/widget"
)

// event a user action sent by a widget client
type event struct {
	Type string             `json:"type"`
	Text string             `json:"text,omitempty"`
	Slot string             `json:"slot,omitempty"`
	Code converter.Currency `json:"code,omitempty"`
}

// session one live widget connection
type session struct {
	widget *widget.Widget
	logger log.Logger

	lock sync.Mutex // one writer at a time
	conn *websocket.Conn
}

func (c *session) send(v interface{}) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.conn.WriteJSON(v)
}

// Refreshed re-renders every live widget session after a rate refresh and pushes
// the new view to its client. Failed refreshes are ignored.
func (s *Server) Refreshed(result refresh.Result) {
	if !result.OK() {
		return
	}

	s.lock.Lock()
	sessions := make([]*session, 0, len(s.sessions))
	for c := range s.sessions {
		sessions = append(sessions, c)
	}
	s.lock.Unlock()

	for _, c := range sessions {
		view, err := c.widget.Refreshed(result)
		if err != nil {
			continue
		}
		if err := c.send(view); err != nil {
			c.logger.Log("msg", "widget session write failed", "err", err)
		}
	}
}

func (s *Server) register(c *session) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.sessions[c] = struct{}{}
}

func (s *Server) unregister(c *session) {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.sessions, c)
}

// widgetSession produces HTTP handler running one widget per WebSocket connection.
// The client sends events and receives the widget's View after each of them, and
// after every successful rate refresh.
func (s *Server) widgetSession() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		logger := log.With(s.Logger, "session", uuid.NewString())

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			logger.Log("msg", "websocket upgrade failed", "err", err)
			return
		}
		defer conn.Close()

		w, err := widget.New(s.Table)
		if err != nil {
			logger.Log("msg", "widget setup failed", "err", err)
			return
		}
		defer w.Close()

		c := &session{widget: w, logger: logger, conn: conn}
		s.register(c)
		defer s.unregister(c)

		logger.Log("msg", "widget session started")
		if err := c.send(w.View()); err != nil {
			return
		}

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					logger.Log("msg", "widget session read failed", "err", err)
				}
				logger.Log("msg", "widget session ended")
				return
			}

			var view widget.View
			var ev event
			if err = json.Unmarshal(msg, &ev); err != nil {
				err = fmt.Errorf("invalid event: %w", err)
			} else {
				view, err = dispatch(w, ev)
			}

			if err != nil {
				logger.Log("msg", "widget event rejected", "type", ev.Type, "err", err)
				err = c.send(map[string]string{"error": err.Error()})
			} else {
				err = c.send(view)
			}
			if err != nil {
				logger.Log("msg", "widget session write failed", "err", err)
				return
			}
		}
	}
}

func dispatch(w *widget.Widget, ev event) (widget.View, error) {
	switch ev.Type {
	case "input":
		return w.Input(ev.Text)
	case "open":
		slot, err := widget.ParseSlot(ev.Slot)
		if err != nil {
			return widget.View{}, err
		}
		return w.Open(slot)
	case "select":
		return w.Select(ev.Code)
	case "dismiss":
		return w.Dismiss()
	case "swap":
		return w.Swap()
	case "view":
		return w.View(), nil
	default:
		return widget.View{}, fmt.Errorf("unknown event type: %q", ev.Type)
	}
}
