package layout

// Subscription represents a registered observer. Cancel removes the observer;
// it is idempotent and safe to call after the observed entity is gone.
type Subscription struct {
	cancel func()
}

// Cancel unregisters the observer. Further calls are no-ops.
func (s *Subscription) Cancel() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// observerList holds observers of one event kind. New observers are inserted
// at the head, so the most recently registered observer fires first.
type observerList[T any] struct {
	entries []*observerEntry[T]
}

type observerEntry[T any] struct {
	fn      T
	removed bool
}

func (l *observerList[T]) add(fn T) *Subscription {
	entry := &observerEntry[T]{fn: fn}
	l.entries = append([]*observerEntry[T]{entry}, l.entries...)
	return &Subscription{cancel: func() {
		entry.removed = true
		l.compact()
	}}
}

func (l *observerList[T]) compact() {
	kept := l.entries[:0]
	for _, e := range l.entries {
		if !e.removed {
			kept = append(kept, e)
		}
	}
	l.entries = kept
}

// each invokes fn for every live observer. Iteration walks a snapshot so
// observers may cancel themselves or register others from inside a callback.
func (l *observerList[T]) each(fn func(T)) {
	snapshot := make([]*observerEntry[T], len(l.entries))
	copy(snapshot, l.entries)
	for _, e := range snapshot {
		if !e.removed {
			fn(e.fn)
		}
	}
}

// LayerObserverFunc receives a layer's committed properties and the mask of
// categories changed since the last dispatch.
type LayerObserverFunc func(id LayerID, props LayerProperties, mask EventMask)

// SurfaceObserverFunc receives a surface's committed properties and the mask
// of categories changed since the last dispatch.
type SurfaceObserverFunc func(id SurfaceID, props SurfaceProperties, mask EventMask)

// OnLayerCreate registers an observer fired synchronously whenever a layer is
// created. Creation is an immediate operation, not a staged one, so the
// observer fires inside CreateLayer rather than at commit.
func (e *Engine) OnLayerCreate(fn func(LayerID)) (*Subscription, error) {
	if fn == nil {
		return nil, ErrInvalidArgument
	}
	return e.layerCreateObs.add(fn), nil
}

// OnLayerRemove registers an observer fired synchronously inside RemoveLayer,
// before the layer is unlinked.
func (e *Engine) OnLayerRemove(fn func(LayerID)) (*Subscription, error) {
	if fn == nil {
		return nil, ErrInvalidArgument
	}
	return e.layerRemoveObs.add(fn), nil
}

// OnSurfaceCreate registers an observer fired synchronously whenever a
// surface is created or native content is bound to an existing surface.
func (e *Engine) OnSurfaceCreate(fn func(SurfaceID)) (*Subscription, error) {
	if fn == nil {
		return nil, ErrInvalidArgument
	}
	return e.surfaceCreateObs.add(fn), nil
}

// OnSurfaceRemove registers an observer fired synchronously inside
// RemoveSurface, after the surface is unlinked from all order lists.
func (e *Engine) OnSurfaceRemove(fn func(SurfaceID)) (*Subscription, error) {
	if fn == nil {
		return nil, ErrInvalidArgument
	}
	return e.surfaceRemoveObs.add(fn), nil
}

// OnSurfaceConfigure registers an observer fired synchronously whenever a
// surface's buffer dimensions change via ConfigureSurface.
func (e *Engine) OnSurfaceConfigure(fn func(SurfaceID)) (*Subscription, error) {
	if fn == nil {
		return nil, ErrInvalidArgument
	}
	return e.surfaceConfigureObs.add(fn), nil
}

// ObserveLayer registers a property-change observer on a specific layer. The
// observer fires during commit, once per commit in which the layer's event
// mask is non-zero, with the accumulated mask and post-commit properties.
func (e *Engine) ObserveLayer(id LayerID, fn LayerObserverFunc) (*Subscription, error) {
	if fn == nil {
		return nil, ErrInvalidArgument
	}
	l, ok := e.layers[id]
	if !ok {
		return nil, notFound("layer", uint32(id))
	}
	return l.observers.add(fn), nil
}

// ObserveSurface registers a property-change observer on a specific surface.
func (e *Engine) ObserveSurface(id SurfaceID, fn SurfaceObserverFunc) (*Subscription, error) {
	if fn == nil {
		return nil, ErrInvalidArgument
	}
	s, ok := e.surfaces[id]
	if !ok {
		return nil, notFound("surface", uint32(id))
	}
	return s.observers.add(fn), nil
}
