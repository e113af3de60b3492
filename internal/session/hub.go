package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/inamate/memecanvas/backend-go/internal/document"
	"github.com/inamate/memecanvas/backend-go/internal/engine"
	"github.com/inamate/memecanvas/backend-go/internal/raster"
	"github.com/inamate/memecanvas/backend-go/internal/typeid"
)

// Hub tracks live sessions and reaps the idle ones.
type Hub struct {
	ctx    context.Context
	loader engine.ImageLoader
	fonts  *raster.Fonts

	mu       sync.RWMutex
	sessions map[string]*Session

	idleTimeout time.Duration
	sched       *cron.Cron
	now         func() time.Time
}

func NewHub(ctx context.Context, loader engine.ImageLoader, fonts *raster.Fonts, idleTimeout time.Duration) *Hub {
	return &Hub{
		ctx:         ctx,
		loader:      loader,
		fonts:       fonts,
		sessions:    make(map[string]*Session),
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

// Create starts a new session over doc.
func (h *Hub) Create(doc *document.MemeDocument) *Session {
	s := New(typeid.NewSessionID(), doc, h.loader, h.fonts)
	s.now = h.now
	s.touch()

	h.mu.Lock()
	h.sessions[s.ID] = s
	h.mu.Unlock()

	go s.Run(h.ctx)

	slog.Info("session created", "sessionId", s.ID, "sessions", h.Len())
	return s
}

// Get returns a live session. Ids without the session prefix are never
// looked up.
func (h *Hub) Get(id string) (*Session, error) {
	if err := typeid.Validate(id, typeid.PrefixSession); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	h.mu.RLock()
	s, ok := h.sessions[id]
	h.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// Remove closes and forgets a session.
func (h *Hub) Remove(id string) {
	h.mu.Lock()
	s, ok := h.sessions[id]
	delete(h.sessions, id)
	h.mu.Unlock()
	if ok {
		s.Close()
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Sweep closes sessions with no clients that have been idle longer than the
// idle timeout. It returns how many were closed.
func (h *Hub) Sweep() int {
	if h.idleTimeout <= 0 {
		return 0
	}
	cutoff := h.now().Add(-h.idleTimeout)

	h.mu.Lock()
	var idle []*Session
	for id, s := range h.sessions {
		if s.Clients() == 0 && s.IdleSince().Before(cutoff) {
			idle = append(idle, s)
			delete(h.sessions, id)
		}
	}
	h.mu.Unlock()

	for _, s := range idle {
		s.Close()
	}
	if len(idle) > 0 {
		slog.Info("idle sessions reaped", "count", len(idle), "remaining", h.Len())
	}
	return len(idle)
}

// StartSweeper runs Sweep on a cron schedule such as "@every 1m".
func (h *Hub) StartSweeper(schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { h.Sweep() }); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	c.Start()
	h.sched = c
	slog.Info("session sweeper scheduled", "schedule", schedule, "idleTimeout", h.idleTimeout)
	return nil
}

// Stop halts the sweeper and closes every session.
func (h *Hub) Stop() {
	if h.sched != nil {
		<-h.sched.Stop().Done()
	}

	h.mu.Lock()
	sessions := h.sessions
	h.sessions = make(map[string]*Session)
	h.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
