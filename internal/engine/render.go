package engine

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrNoSurface    = errors.New("no canvas surface")
	ErrImageLoad    = errors.New("background image load failed")
	ErrFramePending = errors.New("latest frame not drawn yet")
)

// ImageLoader fetches and decodes a background image. Load must not block:
// it starts the work and calls done exactly once, from any goroutine.
type ImageLoader interface {
	Load(url string, done func(Image, error))
}

// StatusKind classifies a render pipeline event.
type StatusKind string

const (
	StatusDrawn       StatusKind = "drawn"
	StatusImageFailed StatusKind = "image-failed"
	StatusStale       StatusKind = "stale"
	StatusNoSurface   StatusKind = "no-surface"
)

// Status reports what happened to a render request.
type Status struct {
	Kind       StatusKind
	URL        string
	Generation uint64
	Err        error
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithDispatcher sets the function image-load completions are handed to.
// It must run the callback on the goroutine that owns the scene. The
// default runs it inline, which is only correct when the loader already
// calls back on that goroutine.
func WithDispatcher(post func(func())) RendererOption {
	return func(r *Renderer) { r.post = post }
}

// WithStatusHandler receives every Status the renderer produces.
func WithStatusHandler(fn func(Status)) RendererOption {
	return func(r *Renderer) { r.onStatus = fn }
}

// WithFrameHandler receives each command buffer after it is drawn.
func WithFrameHandler(fn func(Snapshot, []DrawCommand)) RendererOption {
	return func(r *Renderer) { r.onFrame = fn }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) RendererOption {
	return func(r *Renderer) { r.logger = l }
}

// Renderer redraws a scene onto its surface. The background image is loaded
// asynchronously; each load is stamped with the scene generation of the
// request that started it, and a completion only draws if no newer request
// has been made since. Drawing always uses a fresh snapshot of the scene.
type Renderer struct {
	surface Surface
	loader  ImageLoader

	post     func(func())
	onStatus func(Status)
	onFrame  func(Snapshot, []DrawCommand)
	logger   *slog.Logger

	cachedURL string
	cached    Image

	// current is the scene of the latest request. inflight maps a URL being
	// loaded to the generation of the latest request waiting on it.
	current    *Scene
	inflight   map[string]uint64
	requested  uint64
	drawn      uint64
	drawnScene *Scene
}

// NewRenderer creates a renderer that draws to surface. A nil surface is
// allowed; every frame is then skipped and logged.
func NewRenderer(surface Surface, loader ImageLoader, opts ...RendererOption) *Renderer {
	r := &Renderer{
		surface:  surface,
		loader:   loader,
		post:     func(fn func()) { fn() },
		onStatus: func(Status) {},
		onFrame:  func(Snapshot, []DrawCommand) {},
		logger:   slog.Default(),
		inflight: make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Drawn returns the scene generation of the last frame drawn.
func (r *Renderer) Drawn() uint64 {
	return r.drawn
}

// Current reports whether the surface holds a frame of scene at its
// present generation.
func (r *Renderer) Current(scene *Scene) bool {
	return r.drawnScene == scene && r.drawn == scene.Generation()
}

// Background returns the decoded image for url if it is cached.
func (r *Renderer) Background(url string) (Image, bool) {
	if r.cached == nil || r.cachedURL != url {
		return nil, false
	}
	return r.cached, true
}

// Render schedules a redraw of scene. It draws immediately when the
// background is already decoded, otherwise it starts (or joins) a load.
func (r *Renderer) Render(scene *Scene) {
	snap := scene.Snapshot()
	if r.current != scene {
		// Generations are per scene; loads started for another scene
		// must never match.
		r.current = scene
		clear(r.inflight)
	}
	r.requested = snap.Generation

	if r.surface == nil {
		r.logger.Warn("render skipped", "error", ErrNoSurface, "generation", snap.Generation)
		r.onStatus(Status{Kind: StatusNoSurface, Generation: snap.Generation, Err: ErrNoSurface})
		return
	}

	url := snap.Background
	if r.cached != nil && r.cachedURL == url {
		r.draw(snap, r.cached)
		return
	}

	if _, pending := r.inflight[url]; pending {
		r.inflight[url] = snap.Generation
		return
	}
	r.inflight[url] = snap.Generation

	if r.loader == nil {
		r.post(func() { r.complete(scene, url, nil, errors.New("no image loader")) })
		return
	}
	r.loader.Load(url, func(img Image, err error) {
		r.post(func() { r.complete(scene, url, img, err) })
	})
}

// complete runs on the scene's goroutine when a background load finishes.
func (r *Renderer) complete(scene *Scene, url string, img Image, err error) {
	gen, waiting := r.inflight[url]
	if scene == r.current {
		delete(r.inflight, url)
	}

	if err == nil && img == nil {
		err = errors.New("loader returned no image")
	}
	if err != nil {
		err = fmt.Errorf("%w: %s: %w", ErrImageLoad, url, err)
		r.logger.Warn("load background", "error", err, "generation", gen)
		r.onStatus(Status{Kind: StatusImageFailed, URL: url, Generation: gen, Err: err})
		return
	}

	// Only the current scene's background may take the cache slot; a late
	// load for an abandoned URL must not evict the image in use.
	snap := r.current.Snapshot()
	if snap.Background == url {
		r.cachedURL, r.cached = url, img
	}

	if scene != r.current || !waiting || gen != r.requested {
		r.onStatus(Status{Kind: StatusStale, URL: url, Generation: gen})
		return
	}

	if snap.Background != url {
		// The scene moved on without asking for a redraw yet.
		r.onStatus(Status{Kind: StatusStale, URL: url, Generation: gen})
		return
	}
	r.draw(snap, img)
}

func (r *Renderer) draw(snap Snapshot, background Image) {
	commands := CompileDrawCommands(snap)
	Replay(commands, r.surface, background)
	r.drawn = snap.Generation
	r.drawnScene = r.current
	r.onFrame(snap, commands)
	r.onStatus(Status{Kind: StatusDrawn, URL: snap.Background, Generation: snap.Generation})
}
