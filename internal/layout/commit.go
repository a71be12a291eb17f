package layout

// RenderElement is one entry of the flattened render list: a surface, the
// layer it is reached through, the screen the pair is composited onto, and
// the view derived for the pair at commit time.
type RenderElement struct {
	Screen  ScreenID
	Layer   LayerID
	Surface SurfaceID
	View    View
}

// Commit atomically applies all staged changes and derives the render state.
// The phases run in a fixed order: surface properties are promoted, then
// layer properties and layer membership, then screen membership and the
// render list, then per-pair transforms, then property notifications, and
// finally the backend is asked to repaint. Each commit is stamped with a
// monotonic ULID retrievable via LastCommit.
func (e *Engine) Commit() error {
	e.promoteSurfaces()
	e.promoteLayers()
	e.promoteScreens()
	e.updateViews()
	e.dispatchNotifications()

	e.lastCommit = e.stamp()
	e.logger.Debug("scene committed",
		"commit", e.lastCommit.String(),
		"render_elements", len(e.renderList))

	if e.backend != nil {
		for _, scr := range e.screens {
			e.backend.ScheduleRepaint(scr.id)
		}
	}
	return nil
}

// promoteSurfaces copies every surface's pending properties over its
// committed ones. Masks survive until notification dispatch.
func (e *Engine) promoteSurfaces() {
	for _, sid := range e.surfaceOrder {
		s := e.surfaces[sid]
		s.prop = s.pending
	}
}

// promoteLayers copies layer properties and, for layers whose membership
// changed, rebuilds the committed surface order and the surface-to-layer
// back-references. Untouched layers keep their relations byte for byte.
func (e *Engine) promoteLayers() {
	for _, lid := range e.layerOrder {
		l := e.layers[lid]
		l.prop = l.pending

		if l.mask&eventMembership == 0 {
			continue
		}

		for _, sid := range l.order {
			if s, ok := e.surfaces[sid]; ok {
				s.layers = removeID(s.layers, lid)
			}
		}
		l.order = append(l.order[:0], l.pendingOrder...)
		for _, sid := range l.order {
			if s, ok := e.surfaces[sid]; ok && !containsID(s.layers, lid) {
				s.layers = append(s.layers, lid)
			}
		}
	}
}

// promoteScreens applies staged screen membership and rebuilds the render
// list. Screen masks carry no property observers, so they are cleared here
// rather than during notification dispatch.
//
// The render list is assembled for screen zero only; compositing additional
// outputs from one scene graph is not supported yet.
func (e *Engine) promoteScreens() {
	for _, scr := range e.screens {
		if scr.mask&eventMembership != 0 {
			for _, lid := range scr.order {
				if l, ok := e.layers[lid]; ok {
					l.screens = removeID(l.screens, scr.id)
				}
			}
			scr.order = append(scr.order[:0], scr.pendingOrder...)
			for _, lid := range scr.order {
				if l, ok := e.layers[lid]; ok && !containsID(l.screens, scr.id) {
					l.screens = append(l.screens, scr.id)
				}
			}
		}
		scr.mask = 0
	}

	next := make([]RenderElement, 0, len(e.renderList))
	if len(e.screens) > 0 {
		scr := e.screens[0]
		for _, lid := range scr.order {
			l := e.layers[lid]
			if !l.prop.Visible {
				continue
			}
			for _, sid := range l.order {
				s := e.surfaces[sid]
				if !s.prop.Visible || s.content == nil {
					continue
				}
				next = append(next, RenderElement{
					Screen:  scr.id,
					Layer:   lid,
					Surface: sid,
				})
			}
		}
	}
	e.renderList = next
}

// updateViews recomputes the view of every (layer, surface) pair reachable
// through a screen's committed order, visible or not, whenever either side
// of the pair is dirty. Zero source or destination rectangles resolve to the
// surface's buffer dimensions first, mutating the committed properties so
// later getters observe the resolved geometry.
func (e *Engine) updateViews() {
	for _, scr := range e.screens {
		for _, lid := range scr.order {
			l, ok := e.layers[lid]
			if !ok {
				continue
			}
			for _, sid := range l.order {
				s, ok := e.surfaces[sid]
				if !ok {
					continue
				}
				if l.mask|s.mask == 0 {
					continue
				}

				if s.prop.Source.Width == 0 && s.prop.Source.Height == 0 {
					s.prop.Source.Width = s.bufferWidth
					s.prop.Source.Height = s.bufferHeight
				}
				if s.prop.Dest.Width == 0 && s.prop.Dest.Height == 0 {
					s.prop.Dest.Width = s.bufferWidth
					s.prop.Dest.Height = s.bufferHeight
				}

				view := ComposeView(l.prop, s.prop, scr.output.Width, scr.output.Height)
				if (l.mask|s.mask)&EventOpacity == 0 {
					view.Alpha = s.view.Alpha
				}
				s.view = view
				s.updateCount++
			}
		}
	}

	for i := range e.renderList {
		el := &e.renderList[i]
		if s, ok := e.surfaces[el.Surface]; ok {
			el.View = s.view
		}
	}
}

// dispatchNotifications fires per-entity property observers for every entity
// whose mask is non-zero: all layers in creation order, then all surfaces in
// creation order. Masks are cleared afterwards whether or not anyone was
// listening.
func (e *Engine) dispatchNotifications() {
	for _, lid := range e.layerOrder {
		l := e.layers[lid]
		if l.mask != 0 {
			mask := l.mask
			l.observers.each(func(fn LayerObserverFunc) { fn(lid, l.prop, mask) })
		}
		l.mask = 0
	}
	for _, sid := range e.surfaceOrder {
		s := e.surfaces[sid]
		if s.mask != 0 {
			mask := s.mask
			s.observers.each(func(fn SurfaceObserverFunc) { fn(sid, s.prop, mask) })
		}
		s.mask = 0
	}
}

// RenderList returns a copy of the flattened render state produced by the
// last commit, back to front.
func (e *Engine) RenderList() []RenderElement {
	out := make([]RenderElement, len(e.renderList))
	copy(out, e.renderList)
	return out
}

// SurfaceView returns the renderable view derived for the surface at the
// last commit that touched it.
func (e *Engine) SurfaceView(id SurfaceID) (View, error) {
	s, ok := e.surfaces[id]
	if !ok {
		return View{}, notFound("surface", uint32(id))
	}
	return s.view, nil
}

// SurfaceUpdateCount returns how many (layer, surface) view recomputations
// have touched the surface across all commits.
func (e *Engine) SurfaceUpdateCount(id SurfaceID) (uint32, error) {
	s, ok := e.surfaces[id]
	if !ok {
		return 0, notFound("surface", uint32(id))
	}
	return s.updateCount, nil
}
