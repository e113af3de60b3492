// Package session hosts server-side editor sessions. Each session owns one
// engine and runs it on a single goroutine; WebSocket clients, HTTP
// handlers and image loads all reach the engine by posting to that loop.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/inamate/memecanvas/backend-go/internal/document"
	"github.com/inamate/memecanvas/backend-go/internal/engine"
	"github.com/inamate/memecanvas/backend-go/internal/raster"
)

var (
	ErrClosed   = errors.New("session closed")
	ErrNotFound = errors.New("session not found")
)

const eventBuffer = 64

// Session is one editor: a scene, its controller and renderer, drawn onto a
// raster canvas, plus the clients watching it.
type Session struct {
	ID string

	engine *engine.Engine
	canvas *raster.Canvas
	loader engine.ImageLoader
	logger *slog.Logger

	events    chan func()
	done      chan struct{}
	closeOnce sync.Once

	// clients is owned by the loop.
	clients map[string]*Client

	attached   atomic.Int32
	lastActive atomic.Int64
	now        func() time.Time
}

// New creates a session over doc. The engine renders once immediately; the
// resulting image load completes only after Run starts.
func New(id string, doc *document.MemeDocument, loader engine.ImageLoader, fonts *raster.Fonts) *Session {
	logger := slog.Default().With("sessionId", id)
	s := &Session{
		ID:      id,
		loader:  loader,
		logger:  logger,
		events:  make(chan func(), eventBuffer),
		done:    make(chan struct{}),
		clients: make(map[string]*Client),
		now:     time.Now,
	}

	width, height := document.ClampSize(doc.Width, doc.Height)
	s.canvas = raster.NewCanvas(width, height, raster.WithFonts(fonts), raster.WithLogger(logger))

	s.engine = engine.NewEngine(s.canvas, loader,
		engine.WithDispatcher(s.post),
		engine.WithFrameHandler(s.onFrame),
		engine.WithStatusHandler(s.onStatus),
		engine.WithLogger(logger),
	)
	s.engine.Load(doc)
	s.touch()
	return s
}

// Run processes events until ctx is cancelled or the session is closed.
func (s *Session) Run(ctx context.Context) {
	defer s.shutdown()
	for {
		select {
		case fn := <-s.events:
			fn()
		case <-ctx.Done():
			return
		case <-s.done:
			return
		}
	}
}

// Close stops the loop. It is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *Session) shutdown() {
	s.Close()
	for id, c := range s.clients {
		delete(s.clients, id)
		close(c.send)
	}
	s.attached.Store(0)
	if err := s.canvas.Close(); err != nil {
		s.logger.Warn("close canvas", "error", err)
	}
	s.logger.Info("session closed")
}

// post hands fn to the loop. It drops fn once the session is closed.
func (s *Session) post(fn func()) {
	select {
	case s.events <- fn:
	case <-s.done:
	}
}

// Do runs fn on the loop and waits for it to finish.
func (s *Session) Do(ctx context.Context, fn func(e *engine.Engine)) error {
	finished := make(chan struct{})
	job := func() {
		fn(s.engine)
		close(finished)
	}

	select {
	case s.events <- job:
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Document returns the scene in wire form.
func (s *Session) Document(ctx context.Context) (*document.MemeDocument, error) {
	var doc *document.MemeDocument
	err := s.Do(ctx, func(e *engine.Engine) {
		doc = engine.DocumentFromScene(e.Scene())
	})
	return doc, err
}

// Flatten returns the scene as exported and its decoded background. When
// the background has not been decoded yet it is fetched synchronously.
func (s *Session) Flatten(ctx context.Context) (engine.Snapshot, engine.Image, error) {
	var (
		snap       engine.Snapshot
		background engine.Image
	)
	if err := s.Do(ctx, func(e *engine.Engine) {
		snap, background = e.Flatten()
	}); err != nil {
		return engine.Snapshot{}, nil, err
	}
	if background != nil || snap.Background == "" {
		return snap, background, nil
	}

	img, err := s.fetch(ctx, snap.Background)
	if err != nil {
		return engine.Snapshot{}, nil, fmt.Errorf("%w: %s: %w", engine.ErrImageLoad, snap.Background, err)
	}
	return snap, img, nil
}

func (s *Session) fetch(ctx context.Context, url string) (engine.Image, error) {
	result := make(chan struct {
		img engine.Image
		err error
	}, 1)
	s.loader.Load(url, func(img engine.Image, err error) {
		result <- struct {
			img engine.Image
			err error
		}{img, err}
	})
	select {
	case r := <-result:
		return r.img, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Attach registers c and sends it the current state.
func (s *Session) Attach(c *Client) {
	s.attached.Add(1)
	s.touch()
	s.post(func() {
		s.clients[c.ClientID] = c

		msg, err := newMessage(TypeWelcome, WelcomePayload{
			SessionID: s.ID,
			ClientID:  c.ClientID,
			Document:  engine.DocumentFromScene(s.engine.Scene()),
			Selection: s.engine.GetSelection(),
			Mode:      engine.ModeJSON(s.engine.Controller().Mode()),
		})
		if err != nil {
			s.logger.Error("marshal welcome", "error", err)
			return
		}
		c.Send(msg)
		s.engine.Redraw()

		s.logger.Info("client joined", "client", c.ClientID)
	})
}

// Detach unregisters c.
func (s *Session) Detach(c *Client) {
	s.post(func() {
		if _, ok := s.clients[c.ClientID]; !ok {
			return
		}
		delete(s.clients, c.ClientID)
		close(c.send)
		s.attached.Add(-1)
		s.touch()
		s.logger.Info("client left", "client", c.ClientID)
	})
}

// Dispatch queues msg from c for the loop. It reports false once the
// session is closed.
func (s *Session) Dispatch(c *Client, msg *Message) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	s.touch()
	s.post(func() { s.handleMessage(c, msg) })
	return true
}

// Clients returns the number of attached clients.
func (s *Session) Clients() int {
	return int(s.attached.Load())
}

// IdleSince returns when the session last saw activity.
func (s *Session) IdleSince() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

func (s *Session) touch() {
	s.lastActive.Store(s.now().UnixNano())
}

func (s *Session) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypePointerDown, TypePointerMove:
		var p PointerPayload
		if !s.decode(sender, msg, &p) {
			return
		}
		if msg.Type == TypePointerDown {
			s.engine.PointerDown(p.X, p.Y)
		} else {
			s.engine.PointerMove(p.X, p.Y)
		}
		s.sendMode(sender)

	case TypePointerUp:
		s.engine.PointerUp()
		s.sendMode(sender)

	case TypePointerLeave:
		s.engine.PointerLeave()
		s.sendMode(sender)

	case TypeSceneBackground:
		var p BackgroundPayload
		if !s.decode(sender, msg, &p) {
			return
		}
		s.engine.SetBackground(p.URL)
		s.sendAck(sender, msg.Type, true, nil)

	case TypeObjectText:
		var p TextPayload
		if !s.decode(sender, msg, &p) {
			return
		}
		s.sendAck(sender, msg.Type, s.engine.SetText(p.Index, p.Text), nil)

	case TypeObjectStyle:
		var p StylePayload
		if !s.decode(sender, msg, &p) {
			return
		}
		s.sendAck(sender, msg.Type, s.engine.SetStyle(p.Index, p.Style), nil)

	case TypeObjectAdd:
		i := s.engine.AddObject()
		s.sendAck(sender, msg.Type, true, &i)

	case TypeObjectRemove:
		var p IndexPayload
		if !s.decode(sender, msg, &p) {
			return
		}
		s.sendAck(sender, msg.Type, s.engine.RemoveObject(p.Index), nil)

	case TypeObjectSelect:
		var p IndexPayload
		if !s.decode(sender, msg, &p) {
			return
		}
		s.engine.Select(p.Index)
		s.sendAck(sender, msg.Type, s.engine.GetSelection() == p.Index || p.Index < 0, nil)

	case TypeDocSync:
		s.send(sender, TypeDocSync, engine.DocumentFromScene(s.engine.Scene()))

	default:
		s.logger.Warn("unknown message type", "type", msg.Type, "client", sender.ClientID)
		s.sendError(sender, "unknown message type: "+msg.Type)
	}
}

func (s *Session) decode(sender *Client, msg *Message, v interface{}) bool {
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		s.logger.Warn("invalid payload", "type", msg.Type, "error", err)
		s.sendError(sender, "invalid "+msg.Type+" payload")
		return false
	}
	return true
}

func (s *Session) onFrame(snap engine.Snapshot, commands []engine.DrawCommand) {
	s.broadcast(TypeFrame, FramePayload{
		Generation: snap.Generation,
		Selection:  snap.SelectedIndex,
		Mode:       engine.ModeJSON(s.engine.Controller().Mode()),
		Commands:   commands,
	})
}

func (s *Session) onStatus(st engine.Status) {
	if st.Kind == engine.StatusDrawn {
		return
	}
	payload := StatusPayload{Kind: st.Kind, URL: st.URL, Generation: st.Generation}
	if st.Err != nil {
		payload.Error = st.Err.Error()
	}
	s.broadcast(TypeStatus, payload)
}

func (s *Session) sendMode(c *Client) {
	s.send(c, TypeMode, engine.ModeJSON(s.engine.Controller().Mode()))
}

func (s *Session) sendAck(c *Client, msgType string, ok bool, index *int) {
	s.send(c, TypeAck, AckPayload{Type: msgType, OK: ok, Index: index})
}

func (s *Session) sendError(c *Client, text string) {
	s.send(c, TypeError, ErrorPayload{Message: text})
}

func (s *Session) send(c *Client, msgType string, payload interface{}) {
	if _, ok := s.clients[c.ClientID]; !ok {
		return
	}
	msg, err := newMessage(msgType, payload)
	if err != nil {
		s.logger.Error("marshal message", "type", msgType, "error", err)
		return
	}
	c.Send(msg)
}

func (s *Session) broadcast(msgType string, payload interface{}) {
	if len(s.clients) == 0 {
		return
	}
	msg, err := newMessage(msgType, payload)
	if err != nil {
		s.logger.Error("marshal message", "type", msgType, "error", err)
		return
	}
	for _, c := range s.clients {
		c.Send(msg)
	}
}
