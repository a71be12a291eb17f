package layout

// CreateSurface associates a surface id with native content.
//
// Three cases, mirroring how clients claim surface identities:
//   - The id is unknown: a new surface is created. Content may be nil
//     (geometry requested before any content arrived); such surfaces are
//     excluded from the render list until content is bound.
//   - The id exists with no bound content: the content is rebound and the
//     surface's committed properties are inherited. This is the
//     client-restarted path.
//   - The id exists with live content: the claim is rejected with
//     ErrDuplicateIdentity. The shell surfaces this to the requesting client
//     as a warning; the engine state is unchanged.
//
// Create observers fire synchronously for new surfaces and for rebinds.
func (e *Engine) CreateSurface(id SurfaceID, content Content) error {
	if s, ok := e.surfaces[id]; ok {
		if s.content != nil {
			e.logger.Warn("surface id already bound", "surface", uint32(id))
			return duplicateIdentity(id)
		}
		if content == nil {
			return nil
		}
		s.content = content
		s.prop.PixelFormat = PixelFormatRGBA8888
		s.pending.PixelFormat = PixelFormatRGBA8888
		s.mask |= EventPixelFormat
		e.surfaceCreateObs.each(func(fn func(SurfaceID)) { fn(id) })
		return nil
	}

	if len(e.surfaces) >= e.entityLimit {
		return exhausted("surface", e.entityLimit)
	}

	s := &surface{
		id:      id,
		prop:    newSurfaceProperties(),
		content: content,
		view:    View{Alpha: 1.0, Transform: Identity()},
	}
	s.pending = s.prop
	if content != nil {
		s.prop.PixelFormat = PixelFormatRGBA8888
		s.pending.PixelFormat = PixelFormatRGBA8888
	} else {
		e.logger.Warn("surface created with no native content", "surface", uint32(id))
	}
	e.surfaces[id] = s
	e.surfaceOrder = append(e.surfaceOrder, id)

	e.surfaceCreateObs.each(func(fn func(SurfaceID)) { fn(id) })
	return nil
}

// SetSurfaceContent binds or unbinds native content. Binding over live
// content is rejected with ErrDuplicateIdentity; binding records the buffer
// dimensions and fires create observers. Unbinding (nil content) resets the
// surface's renderable view and drops it from future render lists until
// content is bound again.
func (e *Engine) SetSurfaceContent(id SurfaceID, content Content, width, height int32) error {
	s, ok := e.surfaces[id]
	if !ok {
		return notFound("surface", uint32(id))
	}

	if content == nil {
		s.content = nil
		s.view = View{Alpha: 1.0, Transform: Identity()}
		return nil
	}
	if s.content != nil {
		return duplicateIdentity(id)
	}

	s.content = content
	s.bufferWidth = width
	s.bufferHeight = height
	s.prop.PixelFormat = PixelFormatRGBA8888
	s.pending.PixelFormat = PixelFormatRGBA8888
	s.mask |= EventPixelFormat

	e.surfaceCreateObs.each(func(fn func(SurfaceID)) { fn(id) })
	return nil
}

// ConfigureSurface records new buffer dimensions for the surface and fires
// configure observers synchronously. Buffer dimensions back the lazy
// source/destination defaulting performed at commit time.
func (e *Engine) ConfigureSurface(id SurfaceID, width, height int32) error {
	s, ok := e.surfaces[id]
	if !ok {
		return notFound("surface", uint32(id))
	}
	s.bufferWidth = width
	s.bufferHeight = height

	e.surfaceConfigureObs.each(func(fn func(SurfaceID)) { fn(id) })
	return nil
}

// RemoveSurface destroys a surface: it is unlinked from every layer's
// pending and committed order list, its back-references are severed, its
// registered observers are discarded, and remove observers fire. Stale ids
// afterwards resolve to ErrNotFound.
func (e *Engine) RemoveSurface(id SurfaceID) error {
	s, ok := e.surfaces[id]
	if !ok {
		return notFound("surface", uint32(id))
	}

	for _, lid := range e.layerOrder {
		l := e.layers[lid]
		l.pendingOrder = removeID(l.pendingOrder, id)
		l.order = removeID(l.order, id)
	}
	s.layers = nil

	delete(e.surfaces, id)
	e.surfaceOrder = removeID(e.surfaceOrder, id)

	e.surfaceRemoveObs.each(func(fn func(SurfaceID)) { fn(id) })
	return nil
}

// SurfaceProperties returns the surface's committed properties.
func (e *Engine) SurfaceProperties(id SurfaceID) (SurfaceProperties, error) {
	s, ok := e.surfaces[id]
	if !ok {
		return SurfaceProperties{}, notFound("surface", uint32(id))
	}
	return s.prop, nil
}

// SurfacePosition returns the committed destination origin.
func (e *Engine) SurfacePosition(id SurfaceID) (int32, int32, error) {
	s, ok := e.surfaces[id]
	if !ok {
		return 0, 0, notFound("surface", uint32(id))
	}
	return s.prop.Dest.X, s.prop.Dest.Y, nil
}

// SurfaceDimension returns the committed destination size.
func (e *Engine) SurfaceDimension(id SurfaceID) (int32, int32, error) {
	s, ok := e.surfaces[id]
	if !ok {
		return 0, 0, notFound("surface", uint32(id))
	}
	return s.prop.Dest.Width, s.prop.Dest.Height, nil
}

// SetSurfaceVisibility stages the surface's visibility flag.
func (e *Engine) SetSurfaceVisibility(id SurfaceID, visible bool) error {
	s, ok := e.surfaces[id]
	if !ok {
		return notFound("surface", uint32(id))
	}
	s.pending.Visible = visible
	s.mask |= EventVisibility
	return nil
}

// SetSurfaceOpacity stages the surface's opacity. No clamping is performed.
func (e *Engine) SetSurfaceOpacity(id SurfaceID, opacity float64) error {
	s, ok := e.surfaces[id]
	if !ok {
		return notFound("surface", uint32(id))
	}
	s.pending.Opacity = opacity
	s.mask |= EventOpacity
	return nil
}

// SetSurfaceSourceRect stages the region of the buffer to sample from.
func (e *Engine) SetSurfaceSourceRect(id SurfaceID, r Rect) error {
	s, ok := e.surfaces[id]
	if !ok {
		return notFound("surface", uint32(id))
	}
	s.pending.Source = r
	s.mask |= EventSourceRect
	return nil
}

// SetSurfaceDestRect stages the surface's placement within its layer.
func (e *Engine) SetSurfaceDestRect(id SurfaceID, r Rect) error {
	s, ok := e.surfaces[id]
	if !ok {
		return notFound("surface", uint32(id))
	}
	s.pending.Dest = r
	s.mask |= EventDestRect
	return nil
}

// SetSurfacePosition stages the destination origin, leaving size untouched.
func (e *Engine) SetSurfacePosition(id SurfaceID, x, y int32) error {
	s, ok := e.surfaces[id]
	if !ok {
		return notFound("surface", uint32(id))
	}
	s.pending.Dest.X = x
	s.pending.Dest.Y = y
	s.mask |= EventPosition
	return nil
}

// SetSurfaceDimension stages the destination size, leaving origin untouched.
func (e *Engine) SetSurfaceDimension(id SurfaceID, width, height int32) error {
	s, ok := e.surfaces[id]
	if !ok {
		return notFound("surface", uint32(id))
	}
	s.pending.Dest.Width = width
	s.pending.Dest.Height = height
	s.mask |= EventDimension
	return nil
}

// SetSurfaceOrientation stages the surface's rotation.
func (e *Engine) SetSurfaceOrientation(id SurfaceID, o Orientation) error {
	s, ok := e.surfaces[id]
	if !ok {
		return notFound("surface", uint32(id))
	}
	s.pending.Orientation = o
	s.mask |= EventOrientation
	return nil
}

// LayersUnderSurface returns every layer whose committed order contains the
// surface. The relation is derived at commit time; it is not perturbed by
// commits that leave membership untouched.
func (e *Engine) LayersUnderSurface(id SurfaceID) ([]LayerID, error) {
	s, ok := e.surfaces[id]
	if !ok {
		return nil, notFound("surface", uint32(id))
	}
	out := make([]LayerID, len(s.layers))
	copy(out, s.layers)
	return out, nil
}

// SurfaceContent returns the surface's bound native content, or nil.
func (e *Engine) SurfaceContent(id SurfaceID) (Content, error) {
	s, ok := e.surfaces[id]
	if !ok {
		return nil, notFound("surface", uint32(id))
	}
	return s.content, nil
}

// SurfaceBufferSize returns the last known buffer dimensions.
func (e *Engine) SurfaceBufferSize(id SurfaceID) (int32, int32, error) {
	s, ok := e.surfaces[id]
	if !ok {
		return 0, 0, notFound("surface", uint32(id))
	}
	return s.bufferWidth, s.bufferHeight, nil
}
