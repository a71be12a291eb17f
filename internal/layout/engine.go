package layout

import (
	"crypto/rand"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
)

// DefaultEntityLimit caps each entity registry unless overridden with
// WithEntityLimit. Hitting the cap returns ErrResourceExhausted instead of
// aborting, since a compositor core must never take the process down.
const DefaultEntityLimit = 4096

// Engine is the layout engine context. All entity state lives here; callers
// hold only ids. Construct one per backend with New - there is no process
// global, so tests run independent instances side by side.
type Engine struct {
	logger      *slog.Logger
	backend     Backend
	entityLimit int

	surfaces     map[SurfaceID]*surface
	layers       map[LayerID]*layer
	screens      []*screen
	surfaceOrder []SurfaceID
	layerOrder   []LayerID

	layerCreateObs      observerList[func(LayerID)]
	layerRemoveObs      observerList[func(LayerID)]
	surfaceCreateObs    observerList[func(SurfaceID)]
	surfaceRemoveObs    observerList[func(SurfaceID)]
	surfaceConfigureObs observerList[func(SurfaceID)]

	renderList []RenderElement
	entropy    *ulid.MonotonicEntropy
	lastCommit ulid.ULID
}

type surface struct {
	id      SurfaceID
	prop    SurfaceProperties
	pending SurfaceProperties
	mask    EventMask

	content      Content
	bufferWidth  int32
	bufferHeight int32
	updateCount  uint32

	view      View
	observers observerList[SurfaceObserverFunc]

	// layers is the derived reverse relation: every layer whose committed
	// order contains this surface. Rebuilt transactionally at commit for
	// layers whose membership changed.
	layers []LayerID
}

type layer struct {
	id      LayerID
	prop    LayerProperties
	pending LayerProperties
	mask    EventMask

	pendingOrder []SurfaceID
	order        []SurfaceID

	observers observerList[LayerObserverFunc]

	// screens is the derived reverse relation to containing screens.
	screens []ScreenID
}

type screen struct {
	id     ScreenID
	output Output
	mask   EventMask

	pendingOrder []LayerID
	order        []LayerID
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithEntityLimit caps the number of layers and surfaces each registry may
// hold. Exceeding it returns ErrResourceExhausted.
func WithEntityLimit(limit int) Option {
	return func(e *Engine) {
		if limit > 0 {
			e.entityLimit = limit
		}
	}
}

// New creates an engine bound to the given backend. Screens are created
// immediately, one per enumerated output, numbered in enumeration order; they
// live until the engine is discarded.
func New(backend Backend, opts ...Option) *Engine {
	e := &Engine{
		logger:      slog.Default(),
		backend:     backend,
		entityLimit: DefaultEntityLimit,
		surfaces:    make(map[SurfaceID]*surface),
		layers:      make(map[LayerID]*layer),
		entropy:     ulid.Monotonic(rand.Reader, 0),
	}
	for _, opt := range opts {
		opt(e)
	}

	if backend != nil {
		for i, out := range backend.Outputs() {
			e.screens = append(e.screens, &screen{id: ScreenID(i), output: out})
		}
	}
	e.logger.Debug("layout engine created", "screens", len(e.screens))
	return e
}

// Screens returns the ids of all screens in enumeration order.
func (e *Engine) Screens() []ScreenID {
	ids := make([]ScreenID, len(e.screens))
	for i := range e.screens {
		ids[i] = e.screens[i].id
	}
	return ids
}

// Layers returns the ids of all layers in creation order.
func (e *Engine) Layers() []LayerID {
	ids := make([]LayerID, len(e.layerOrder))
	copy(ids, e.layerOrder)
	return ids
}

// Surfaces returns the ids of all surfaces in creation order.
func (e *Engine) Surfaces() []SurfaceID {
	ids := make([]SurfaceID, len(e.surfaceOrder))
	copy(ids, e.surfaceOrder)
	return ids
}

// ScreenResolution returns the output resolution of a screen.
func (e *Engine) ScreenResolution(id ScreenID) (int32, int32, error) {
	scr, ok := e.screen(id)
	if !ok {
		return 0, 0, notFound("screen", uint32(id))
	}
	return scr.output.Width, scr.output.Height, nil
}

// LastCommit returns the ULID stamped on the most recent Commit. The zero
// ULID means nothing has been committed yet.
func (e *Engine) LastCommit() ulid.ULID {
	return e.lastCommit
}

func (e *Engine) stamp() ulid.ULID {
	return ulid.MustNew(ulid.Timestamp(time.Now()), e.entropy)
}

func (e *Engine) screen(id ScreenID) (*screen, bool) {
	if int(id) >= len(e.screens) {
		return nil, false
	}
	return e.screens[int(id)], true
}

func removeID[T comparable](ids []T, id T) []T {
	kept := ids[:0]
	for _, v := range ids {
		if v != id {
			kept = append(kept, v)
		}
	}
	return kept
}

func containsID[T comparable](ids []T, id T) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
