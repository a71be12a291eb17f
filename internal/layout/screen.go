package layout

// ScreenAddLayer stages the layer at the head of the screen's pending order
// list. Adding a layer already staged on this screen is a no-op that still
// marks the screen dirty.
func (e *Engine) ScreenAddLayer(id ScreenID, lid LayerID) error {
	scr, ok := e.screen(id)
	if !ok {
		return notFound("screen", uint32(id))
	}
	if _, ok := e.layers[lid]; !ok {
		return notFound("layer", uint32(lid))
	}

	if !containsID(scr.pendingOrder, lid) {
		scr.pendingOrder = append([]LayerID{lid}, scr.pendingOrder...)
	}
	scr.mask |= EventAdd
	return nil
}

// ScreenRemoveLayer removes the layer from the screen's pending order list.
// Absence is not an error.
func (e *Engine) ScreenRemoveLayer(id ScreenID, lid LayerID) error {
	scr, ok := e.screen(id)
	if !ok {
		return notFound("screen", uint32(id))
	}
	scr.pendingOrder = removeID(scr.pendingOrder, lid)
	scr.mask |= EventRemove
	return nil
}

// SetScreenRenderOrder replaces the screen's pending layer order with exactly
// the given sequence. Unknown ids and duplicates are silently skipped; a nil
// or empty sequence clears the pending list.
func (e *Engine) SetScreenRenderOrder(id ScreenID, order []LayerID) error {
	scr, ok := e.screen(id)
	if !ok {
		return notFound("screen", uint32(id))
	}

	scr.pendingOrder = scr.pendingOrder[:0]
	for _, lid := range order {
		if _, ok := e.layers[lid]; !ok {
			continue
		}
		if containsID(scr.pendingOrder, lid) {
			continue
		}
		scr.pendingOrder = append(scr.pendingOrder, lid)
	}
	scr.mask |= EventAdd
	return nil
}

// LayersOnScreen returns the screen's committed layer order.
func (e *Engine) LayersOnScreen(id ScreenID) ([]LayerID, error) {
	scr, ok := e.screen(id)
	if !ok {
		return nil, notFound("screen", uint32(id))
	}
	out := make([]LayerID, len(scr.order))
	copy(out, scr.order)
	return out, nil
}
