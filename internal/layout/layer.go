package layout

// CreateLayer creates a layer with the given id and dimensions. Creation is
// idempotent: if the id already exists the existing layer is left untouched
// and no error is returned. Create observers fire synchronously for newly
// created layers only.
func (e *Engine) CreateLayer(id LayerID, width, height int32) error {
	if _, ok := e.layers[id]; ok {
		e.logger.Debug("layer already created", "layer", uint32(id))
		return nil
	}
	if len(e.layers) >= e.entityLimit {
		return exhausted("layer", e.entityLimit)
	}

	l := &layer{
		id:   id,
		prop: newLayerProperties(width, height),
	}
	l.pending = l.prop
	e.layers[id] = l
	e.layerOrder = append(e.layerOrder, id)

	e.layerCreateObs.each(func(fn func(LayerID)) { fn(id) })
	return nil
}

// RemoveLayer destroys a layer. Remove observers fire first; the layer is
// then unlinked from every screen's pending and committed order list, its
// back-references from surfaces are severed, and its per-layer observers are
// discarded. Subsequent calls with the same id return ErrNotFound.
func (e *Engine) RemoveLayer(id LayerID) error {
	l, ok := e.layers[id]
	if !ok {
		return notFound("layer", uint32(id))
	}

	e.layerRemoveObs.each(func(fn func(LayerID)) { fn(id) })

	for _, scr := range e.screens {
		scr.pendingOrder = removeID(scr.pendingOrder, id)
		scr.order = removeID(scr.order, id)
	}
	for _, sid := range l.order {
		if s, ok := e.surfaces[sid]; ok {
			s.layers = removeID(s.layers, id)
		}
	}

	delete(e.layers, id)
	e.layerOrder = removeID(e.layerOrder, id)
	return nil
}

// LayerProperties returns the layer's committed properties. Pending changes
// staged after the last commit are not reflected.
func (e *Engine) LayerProperties(id LayerID) (LayerProperties, error) {
	l, ok := e.layers[id]
	if !ok {
		return LayerProperties{}, notFound("layer", uint32(id))
	}
	return l.prop, nil
}

// SetLayerVisibility stages the layer's visibility flag.
func (e *Engine) SetLayerVisibility(id LayerID, visible bool) error {
	l, ok := e.layers[id]
	if !ok {
		return notFound("layer", uint32(id))
	}
	l.pending.Visible = visible
	l.mask |= EventVisibility
	return nil
}

// SetLayerOpacity stages the layer's opacity. No clamping is performed.
func (e *Engine) SetLayerOpacity(id LayerID, opacity float64) error {
	l, ok := e.layers[id]
	if !ok {
		return notFound("layer", uint32(id))
	}
	l.pending.Opacity = opacity
	l.mask |= EventOpacity
	return nil
}

// SetLayerSourceRect stages the region of the layer to sample from.
func (e *Engine) SetLayerSourceRect(id LayerID, r Rect) error {
	l, ok := e.layers[id]
	if !ok {
		return notFound("layer", uint32(id))
	}
	l.pending.Source = r
	l.mask |= EventSourceRect
	return nil
}

// SetLayerDestRect stages the on-screen placement of the layer.
func (e *Engine) SetLayerDestRect(id LayerID, r Rect) error {
	l, ok := e.layers[id]
	if !ok {
		return notFound("layer", uint32(id))
	}
	l.pending.Dest = r
	l.mask |= EventDestRect
	return nil
}

// SetLayerPosition stages the destination origin, leaving size untouched.
func (e *Engine) SetLayerPosition(id LayerID, x, y int32) error {
	l, ok := e.layers[id]
	if !ok {
		return notFound("layer", uint32(id))
	}
	l.pending.Dest.X = x
	l.pending.Dest.Y = y
	l.mask |= EventPosition
	return nil
}

// SetLayerDimension stages the destination size, leaving origin untouched.
func (e *Engine) SetLayerDimension(id LayerID, width, height int32) error {
	l, ok := e.layers[id]
	if !ok {
		return notFound("layer", uint32(id))
	}
	l.pending.Dest.Width = width
	l.pending.Dest.Height = height
	l.mask |= EventDimension
	return nil
}

// SetLayerOrientation stages the layer's rotation.
func (e *Engine) SetLayerOrientation(id LayerID, o Orientation) error {
	l, ok := e.layers[id]
	if !ok {
		return notFound("layer", uint32(id))
	}
	l.pending.Orientation = o
	l.mask |= EventOrientation
	return nil
}

// LayerAddSurface stages the surface at the head of the layer's pending
// order list. Adding a surface already staged on this layer is a no-op that
// still marks the layer dirty for membership notifications.
func (e *Engine) LayerAddSurface(id LayerID, sid SurfaceID) error {
	l, ok := e.layers[id]
	if !ok {
		return notFound("layer", uint32(id))
	}
	if _, ok := e.surfaces[sid]; !ok {
		return notFound("surface", uint32(sid))
	}

	if !containsID(l.pendingOrder, sid) {
		l.pendingOrder = append([]SurfaceID{sid}, l.pendingOrder...)
	}
	l.mask |= EventAdd
	return nil
}

// LayerRemoveSurface removes the surface from the layer's pending order
// list. Absence is not an error; the layer is marked dirty either way.
func (e *Engine) LayerRemoveSurface(id LayerID, sid SurfaceID) error {
	l, ok := e.layers[id]
	if !ok {
		return notFound("layer", uint32(id))
	}
	l.pendingOrder = removeID(l.pendingOrder, sid)
	l.mask |= EventRemove
	return nil
}

// SetLayerRenderOrder replaces the layer's pending order list with exactly
// the given sequence. Unknown ids and duplicates are silently skipped; a nil
// or empty sequence clears the pending list.
func (e *Engine) SetLayerRenderOrder(id LayerID, order []SurfaceID) error {
	l, ok := e.layers[id]
	if !ok {
		return notFound("layer", uint32(id))
	}

	l.pendingOrder = l.pendingOrder[:0]
	for _, sid := range order {
		if _, ok := e.surfaces[sid]; !ok {
			continue
		}
		if containsID(l.pendingOrder, sid) {
			continue
		}
		l.pendingOrder = append(l.pendingOrder, sid)
	}
	l.mask |= EventAdd
	return nil
}

// SurfacesOnLayer returns the layer's committed surface order.
func (e *Engine) SurfacesOnLayer(id LayerID) ([]SurfaceID, error) {
	l, ok := e.layers[id]
	if !ok {
		return nil, notFound("layer", uint32(id))
	}
	out := make([]SurfaceID, len(l.order))
	copy(out, l.order)
	return out, nil
}

// ScreensUnderLayer returns every screen whose committed order contains the
// layer. The relation is derived at commit time.
func (e *Engine) ScreensUnderLayer(id LayerID) ([]ScreenID, error) {
	l, ok := e.layers[id]
	if !ok {
		return nil, notFound("layer", uint32(id))
	}
	out := make([]ScreenID, len(l.screens))
	copy(out, l.screens)
	return out, nil
}
