package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve_FiresOncePerCommitWithMask(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.CreateLayer(100, 800, 480))

	var masks []EventMask
	_, err := e.ObserveLayer(100, func(id LayerID, props LayerProperties, mask EventMask) {
		masks = append(masks, mask)
	})
	require.NoError(t, err)

	require.NoError(t, e.SetLayerOpacity(100, 0.5))
	require.NoError(t, e.SetLayerVisibility(100, true))
	require.NoError(t, e.Commit())

	// One dispatch carrying the accumulated mask.
	require.Len(t, masks, 1)
	assert.Equal(t, EventOpacity|EventVisibility, masks[0])

	// Clean commit: mask is zero, nothing fires.
	require.NoError(t, e.Commit())
	assert.Len(t, masks, 1)
}

func TestObserve_SeesCommittedProperties(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.CreateSurface(7, "buffer"))

	var seen []float64
	_, err := e.ObserveSurface(7, func(id SurfaceID, props SurfaceProperties, mask EventMask) {
		seen = append(seen, props.Opacity)
	})
	require.NoError(t, err)

	require.NoError(t, e.SetSurfaceOpacity(7, 0.5))
	require.NoError(t, e.Commit())

	require.Len(t, seen, 1)
	assert.Equal(t, 0.5, seen[0])
}

func TestObserve_ContentBindMarksPixelFormat(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.CreateSurface(7, nil))

	var masks []EventMask
	_, err := e.ObserveSurface(7, func(id SurfaceID, props SurfaceProperties, mask EventMask) {
		masks = append(masks, mask)
	})
	require.NoError(t, err)

	require.NoError(t, e.SetSurfaceContent(7, "buffer", 400, 300))
	require.NoError(t, e.Commit())

	require.Len(t, masks, 1)
	assert.Equal(t, EventPixelFormat, masks[0])

	// Rebinding after the client goes away marks the category too.
	require.NoError(t, e.SetSurfaceContent(7, nil, 0, 0))
	require.NoError(t, e.CreateSurface(7, "buffer-b"))
	require.NoError(t, e.Commit())

	require.Len(t, masks, 2)
	assert.Equal(t, EventPixelFormat, masks[1])
}

func TestObserve_LayersBeforeSurfaces(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.CreateSurface(7, "buffer"))
	require.NoError(t, e.CreateLayer(100, 800, 480))

	var order []string
	_, err := e.ObserveSurface(7, func(SurfaceID, SurfaceProperties, EventMask) {
		order = append(order, "surface")
	})
	require.NoError(t, err)
	_, err = e.ObserveLayer(100, func(LayerID, LayerProperties, EventMask) {
		order = append(order, "layer")
	})
	require.NoError(t, err)

	require.NoError(t, e.SetSurfaceOpacity(7, 0.5))
	require.NoError(t, e.SetLayerOpacity(100, 0.5))
	require.NoError(t, e.Commit())

	// Surface was created first, but layer notifications always lead.
	assert.Equal(t, []string{"layer", "surface"}, order)
}

func TestObserve_MostRecentFirst(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.CreateLayer(100, 800, 480))

	var order []string
	_, err := e.ObserveLayer(100, func(LayerID, LayerProperties, EventMask) {
		order = append(order, "first")
	})
	require.NoError(t, err)
	_, err = e.ObserveLayer(100, func(LayerID, LayerProperties, EventMask) {
		order = append(order, "second")
	})
	require.NoError(t, err)

	require.NoError(t, e.SetLayerOpacity(100, 0.5))
	require.NoError(t, e.Commit())

	assert.Equal(t, []string{"second", "first"}, order)
}

func TestObserve_MaskClearedWithoutObservers(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.CreateLayer(100, 800, 480))
	require.NoError(t, e.SetLayerOpacity(100, 0.5))
	require.NoError(t, e.Commit())

	// The first commit consumed the mask; a late observer sees nothing.
	var fired int
	_, err := e.ObserveLayer(100, func(LayerID, LayerProperties, EventMask) { fired++ })
	require.NoError(t, err)

	require.NoError(t, e.Commit())
	assert.Zero(t, fired)
}

func TestSubscription_CancelStopsDelivery(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.CreateLayer(100, 800, 480))

	var fired int
	sub, err := e.ObserveLayer(100, func(LayerID, LayerProperties, EventMask) { fired++ })
	require.NoError(t, err)

	require.NoError(t, e.SetLayerOpacity(100, 0.5))
	require.NoError(t, e.Commit())
	require.Equal(t, 1, fired)

	sub.Cancel()
	sub.Cancel() // idempotent

	require.NoError(t, e.SetLayerOpacity(100, 0.25))
	require.NoError(t, e.Commit())
	assert.Equal(t, 1, fired)
}

func TestLifecycleObservers_FireSynchronously(t *testing.T) {
	e, _ := newTestEngine(t)

	var events []string
	subs := make([]*Subscription, 0, 5)

	sub, err := e.OnLayerCreate(func(id LayerID) { events = append(events, "layer-create") })
	require.NoError(t, err)
	subs = append(subs, sub)
	sub, err = e.OnLayerRemove(func(id LayerID) { events = append(events, "layer-remove") })
	require.NoError(t, err)
	subs = append(subs, sub)
	sub, err = e.OnSurfaceCreate(func(id SurfaceID) { events = append(events, "surface-create") })
	require.NoError(t, err)
	subs = append(subs, sub)
	sub, err = e.OnSurfaceConfigure(func(id SurfaceID) { events = append(events, "surface-configure") })
	require.NoError(t, err)
	subs = append(subs, sub)
	sub, err = e.OnSurfaceRemove(func(id SurfaceID) { events = append(events, "surface-remove") })
	require.NoError(t, err)
	subs = append(subs, sub)

	// Every event lands before the call returns; no commit involved.
	require.NoError(t, e.CreateLayer(100, 800, 480))
	require.NoError(t, e.CreateSurface(7, "buffer"))
	require.NoError(t, e.ConfigureSurface(7, 800, 480))
	require.NoError(t, e.RemoveSurface(7))
	require.NoError(t, e.RemoveLayer(100))

	assert.Equal(t, []string{
		"layer-create",
		"surface-create",
		"surface-configure",
		"surface-remove",
		"layer-remove",
	}, events)

	for _, s := range subs {
		s.Cancel()
	}
}

func TestObservers_NilCallbackRejected(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.CreateLayer(100, 800, 480))

	_, err := e.OnLayerCreate(nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = e.ObserveLayer(100, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = e.ObserveSurface(7, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestObserveUnknownEntity(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.ObserveLayer(1, func(LayerID, LayerProperties, EventMask) {})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = e.ObserveSurface(1, func(SurfaceID, SurfaceProperties, EventMask) {})
	assert.ErrorIs(t, err, ErrNotFound)
}
