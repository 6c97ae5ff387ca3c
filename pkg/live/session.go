package live

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/legodom/lego"
	"github.com/legodom/lego/pkg/dom"
	"github.com/legodom/lego/pkg/router"
)

// Session is one browser page bound to its own App.
type Session struct {
	ID string

	h      *Handler
	app    *lego.App
	logger *slog.Logger

	out     chan ServerMessage
	done    chan struct{}
	once    sync.Once
	claimed atomic.Bool
	expiry  *time.Timer

	// Loop goroutine only.
	dirty bool
	last  string
}

// App returns the session's runtime.
func (s *Session) App() *lego.App { return s.app }

// prepare routes the App to uri and renders it. It returns the body
// markup. A uri no route matches, or one its middleware refuses, renders
// the page without an outlet component.
func (s *Session) prepare(ctx context.Context, uri string) (string, error) {
	navigated := make(chan error, 1)
	err := runOn(ctx, s.app, func() error {
		if s.app.Document() == nil {
			return errNoDocument
		}
		if len(s.app.Router().Routes()) == 0 {
			navigated <- nil
			return nil
		}
		_ = s.app.Navigate(ctx, uri,
			router.WithReplace(),
			router.OnDone(func(err error) { navigated <- err }))
		return nil
	})
	if err != nil {
		return "", err
	}
	select {
	case err = <-navigated:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	switch {
	case errors.Is(err, router.ErrNoRoute), errors.Is(err, router.ErrCancelled):
		s.logger.Debug("page served without route", "uri", uri, "reason", err)
	case err != nil:
		return "", err
	}

	// Attachments run in the microtasks after the navigation task.
	var body string
	err = runOn(ctx, s.app, func() error {
		s.app.Flush()
		body = s.app.Document().Body().ComposedInnerHTML()
		s.last = body
		return nil
	})
	return body, err
}

// serve runs the connection until either side closes it.
func (s *Session) serve(conn *websocket.Conn) {
	defer s.Close()
	go s.writeLoop(conn)
	s.send(ServerMessage{Type: TypeHello, Session: s.ID})
	s.readLoop(conn)
}

func (s *Session) readLoop(conn *websocket.Conn) {
	cfg := s.h.cfg
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	})
	for {
		_ = conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
		var msg ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
				s.h.metrics.socketError("read")
			}
			return
		}
		if err := s.app.Dispatch(func() { s.handle(msg) }); err != nil {
			s.logger.Warn("dropping client message", "type", msg.Type, "error", err)
			return
		}
	}
}

func (s *Session) writeLoop(conn *websocket.Conn) {
	cfg := s.h.cfg
	ping := time.NewTicker(cfg.PingInterval)
	defer func() {
		ping.Stop()
		_ = conn.Close()
	}()
	for {
		select {
		case msg := <-s.out:
			_ = conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				s.logger.Debug("write failed", "error", err)
				s.h.metrics.socketError("write")
				s.Close()
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(cfg.WriteTimeout)); err != nil {
				s.Close()
				return
			}
		case <-s.done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(cfg.WriteTimeout))
			return
		}
	}
}

// handle applies one client message. It runs on the loop goroutine.
func (s *Session) handle(msg ClientMessage) {
	ctx := context.Background()
	span := startSpan(s.h.tracer, s.ID, msg)
	start := time.Now()
	var err error
	defer func() {
		s.h.metrics.message(msg.Type, time.Since(start), err)
		endSpan(span, err)
	}()

	switch msg.Type {
	case TypeEvent:
		err = s.dispatchEvent(msg)
	case TypeNavigate:
		err = s.app.Navigate(ctx, msg.URL)
	case TypeBack:
		err = s.app.Router().Back(ctx)
	case TypeForward:
		err = s.app.Router().Forward(ctx)
	default:
		err = errors.New("unknown message type " + msg.Type)
	}
	if err != nil {
		s.logger.Debug("client message failed", "type", msg.Type, "error", err)
		s.send(ServerMessage{Type: TypeError, Error: err.Error()})
	}
	s.schedulePush()
}

func (s *Session) dispatchEvent(msg ClientMessage) error {
	doc := s.app.Document()
	if doc == nil {
		return errNoDocument
	}
	el, err := Resolve(doc.Body(), msg.Path)
	if err != nil {
		return err
	}
	switch msg.Event {
	case "click":
		el.Click()
	case "input", "change":
		el.Input(msg.Value)
	case "":
		return errors.New("event name required")
	default:
		el.Dispatch(dom.NewEvent(msg.Event))
	}
	return nil
}

// schedulePush sends the body markup once the current task and its
// microtasks are done. It runs on the loop goroutine.
func (s *Session) schedulePush() {
	if s.dirty {
		return
	}
	s.dirty = true
	s.app.Host().QueueMicrotask(s.push)
}

func (s *Session) push() {
	s.dirty = false
	doc := s.app.Document()
	if doc == nil {
		return
	}
	body := doc.Body().ComposedInnerHTML()
	if body == s.last {
		return
	}
	s.last = body
	s.h.metrics.pushed()
	s.send(ServerMessage{Type: TypeHTML, HTML: body})
}

func (s *Session) send(msg ServerMessage) {
	select {
	case s.out <- msg:
	case <-s.done:
	default:
		s.logger.Warn("client too slow, dropping message", "type", msg.Type)
	}
}

// Close stops the session's App and disconnects it.
func (s *Session) Close() {
	s.once.Do(func() {
		close(s.done)
		if s.expiry != nil {
			s.expiry.Stop()
		}
		s.app.Stop()
		s.h.remove(s)
		s.h.metrics.sessionClosed()
		s.logger.Debug("session closed")
	})
}
