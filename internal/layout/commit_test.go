package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildScene wires one visible layer holding one visible surface onto screen
// zero but does not commit.
func buildScene(t *testing.T, e *Engine) {
	t.Helper()
	require.NoError(t, e.CreateLayer(100, 1920, 1080))
	require.NoError(t, e.CreateSurface(7, "buffer"))
	require.NoError(t, e.ConfigureSurface(7, 800, 480))
	require.NoError(t, e.SetLayerVisibility(100, true))
	require.NoError(t, e.SetSurfaceVisibility(7, true))
	require.NoError(t, e.LayerAddSurface(100, 7))
	require.NoError(t, e.ScreenAddLayer(0, 100))
}

func TestCommit_PendingIsolation(t *testing.T) {
	e, _ := newTestEngine(t)
	buildScene(t, e)
	require.NoError(t, e.Commit())

	require.NoError(t, e.SetSurfaceOpacity(7, 0.25))
	require.NoError(t, e.SetSurfaceDestRect(7, Rect{X: 50, Y: 60, Width: 100, Height: 100}))

	// Staged values are invisible to getters before commit.
	props, err := e.SurfaceProperties(7)
	require.NoError(t, err)
	assert.Equal(t, 1.0, props.Opacity)
	assert.Equal(t, Rect{Width: 800, Height: 480}, props.Dest)

	require.NoError(t, e.Commit())

	props, err = e.SurfaceProperties(7)
	require.NoError(t, err)
	assert.Equal(t, 0.25, props.Opacity)
	assert.Equal(t, Rect{X: 50, Y: 60, Width: 100, Height: 100}, props.Dest)
}

func TestCommit_RenderListOrder(t *testing.T) {
	e, _ := newTestEngine(t)

	require.NoError(t, e.CreateLayer(100, 1920, 1080))
	require.NoError(t, e.SetLayerVisibility(100, true))
	require.NoError(t, e.ScreenAddLayer(0, 100))
	for _, sid := range []SurfaceID{1, 2, 3} {
		require.NoError(t, e.CreateSurface(sid, "buffer"))
		require.NoError(t, e.ConfigureSurface(sid, 100, 100))
		require.NoError(t, e.SetSurfaceVisibility(sid, true))
		require.NoError(t, e.LayerAddSurface(100, sid))
	}
	require.NoError(t, e.Commit())

	// Most recently added surface renders first.
	list := e.RenderList()
	require.Len(t, list, 3)
	assert.Equal(t, SurfaceID(3), list[0].Surface)
	assert.Equal(t, SurfaceID(2), list[1].Surface)
	assert.Equal(t, SurfaceID(1), list[2].Surface)
	for _, el := range list {
		assert.Equal(t, ScreenID(0), el.Screen)
		assert.Equal(t, LayerID(100), el.Layer)
	}
}

func TestCommit_InvisibleAndContentlessExcluded(t *testing.T) {
	e, _ := newTestEngine(t)
	buildScene(t, e)

	require.NoError(t, e.CreateSurface(8, nil)) // no content yet
	require.NoError(t, e.SetSurfaceVisibility(8, true))
	require.NoError(t, e.LayerAddSurface(100, 8))

	require.NoError(t, e.CreateSurface(9, "buffer"))
	require.NoError(t, e.LayerAddSurface(100, 9)) // stays invisible

	require.NoError(t, e.Commit())

	list := e.RenderList()
	require.Len(t, list, 1)
	assert.Equal(t, SurfaceID(7), list[0].Surface)

	// Hiding the layer empties the list entirely.
	require.NoError(t, e.SetLayerVisibility(100, false))
	require.NoError(t, e.Commit())
	assert.Empty(t, e.RenderList())
}

func TestCommit_SecondScreenNotComposited(t *testing.T) {
	b := &testBackend{outputs: []Output{
		{Name: "sim-0", Width: 1920, Height: 1080},
		{Name: "sim-1", Width: 1280, Height: 720},
	}}
	e := New(b)

	require.NoError(t, e.CreateLayer(100, 1280, 720))
	require.NoError(t, e.CreateSurface(7, "buffer"))
	require.NoError(t, e.ConfigureSurface(7, 100, 100))
	require.NoError(t, e.SetLayerVisibility(100, true))
	require.NoError(t, e.SetSurfaceVisibility(7, true))
	require.NoError(t, e.LayerAddSurface(100, 7))
	require.NoError(t, e.ScreenAddLayer(1, 100))
	require.NoError(t, e.Commit())

	// Membership commits, but only screen zero feeds the render list.
	layers, err := e.LayersOnScreen(1)
	require.NoError(t, err)
	assert.Equal(t, []LayerID{100}, layers)
	assert.Empty(t, e.RenderList())

	// Both screens still get a repaint scheduled.
	assert.Equal(t, []ScreenID{0, 1}, b.repaints)
}

func TestCommit_DuplicateAddSingleOccurrence(t *testing.T) {
	e, _ := newTestEngine(t)
	buildScene(t, e)
	require.NoError(t, e.LayerAddSurface(100, 7))
	require.NoError(t, e.LayerAddSurface(100, 7))
	require.NoError(t, e.Commit())

	order, err := e.SurfacesOnLayer(100)
	require.NoError(t, err)
	assert.Equal(t, []SurfaceID{7}, order)
	assert.Len(t, e.RenderList(), 1)
}

func TestSetLayerRenderOrder_ReplacesVerbatim(t *testing.T) {
	e, _ := newTestEngine(t)

	require.NoError(t, e.CreateLayer(100, 800, 480))
	for _, sid := range []SurfaceID{1, 2, 3} {
		require.NoError(t, e.CreateSurface(sid, "buffer"))
	}
	require.NoError(t, e.SetLayerRenderOrder(100, []SurfaceID{2, 99, 1, 2}))
	require.NoError(t, e.Commit())

	order, err := e.SurfacesOnLayer(100)
	require.NoError(t, err)
	assert.Equal(t, []SurfaceID{2, 1}, order)

	// Empty replacement clears the committed order.
	require.NoError(t, e.SetLayerRenderOrder(100, nil))
	require.NoError(t, e.Commit())

	order, err = e.SurfacesOnLayer(100)
	require.NoError(t, err)
	assert.Empty(t, order)
}

func TestCommit_ZeroRectsDefaultToBufferSize(t *testing.T) {
	e, _ := newTestEngine(t)
	buildScene(t, e)
	require.NoError(t, e.Commit())

	props, err := e.SurfaceProperties(7)
	require.NoError(t, err)
	assert.Equal(t, Rect{Width: 800, Height: 480}, props.Source)
	assert.Equal(t, Rect{Width: 800, Height: 480}, props.Dest)

	w, h, err := e.SurfaceDimension(7)
	require.NoError(t, err)
	assert.Equal(t, int32(800), w)
	assert.Equal(t, int32(480), h)
}

func TestCommit_DestRectRoundTrip(t *testing.T) {
	e, _ := newTestEngine(t)
	buildScene(t, e)

	require.NoError(t, e.SetSurfacePosition(7, 15, 25))
	require.NoError(t, e.SetSurfaceDimension(7, 320, 240))
	require.NoError(t, e.Commit())

	x, y, err := e.SurfacePosition(7)
	require.NoError(t, err)
	assert.Equal(t, int32(15), x)
	assert.Equal(t, int32(25), y)

	w, h, err := e.SurfaceDimension(7)
	require.NoError(t, err)
	assert.Equal(t, int32(320), w)
	assert.Equal(t, int32(240), h)
}

func TestCommit_BacklinksStableForUntouchedLayers(t *testing.T) {
	e, _ := newTestEngine(t)
	buildScene(t, e)
	require.NoError(t, e.Commit())

	before, err := e.LayersUnderSurface(7)
	require.NoError(t, err)
	require.Equal(t, []LayerID{100}, before)

	// A commit that only touches properties must not perturb membership.
	require.NoError(t, e.SetLayerOpacity(100, 0.5))
	require.NoError(t, e.Commit())

	after, err := e.LayersUnderSurface(7)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	screens, err := e.ScreensUnderLayer(100)
	require.NoError(t, err)
	assert.Equal(t, []ScreenID{0}, screens)
}

func TestCommit_ViewUpdatesOnlyWhenDirty(t *testing.T) {
	e, _ := newTestEngine(t)
	buildScene(t, e)
	require.NoError(t, e.Commit())

	count, err := e.SurfaceUpdateCount(7)
	require.NoError(t, err)
	require.Equal(t, uint32(1), count)

	// Clean commit: no pair is dirty, no recomputation.
	require.NoError(t, e.Commit())
	count, err = e.SurfaceUpdateCount(7)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), count)

	require.NoError(t, e.SetSurfacePosition(7, 5, 5))
	require.NoError(t, e.Commit())
	count, err = e.SurfaceUpdateCount(7)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), count)
}

func TestCommit_AlphaGatedOnOpacityBit(t *testing.T) {
	e, _ := newTestEngine(t)
	buildScene(t, e)
	require.NoError(t, e.Commit())

	view, err := e.SurfaceView(7)
	require.NoError(t, err)
	assert.Equal(t, 1.0, view.Alpha)

	require.NoError(t, e.SetSurfaceOpacity(7, 0.5))
	require.NoError(t, e.SetLayerOpacity(100, 0.5))
	require.NoError(t, e.Commit())

	view, err = e.SurfaceView(7)
	require.NoError(t, err)
	assert.Equal(t, 0.25, view.Alpha)
}

func TestCommit_ULIDMonotonic(t *testing.T) {
	e, _ := newTestEngine(t)
	buildScene(t, e)

	var stamps []string
	for i := 0; i < 5; i++ {
		require.NoError(t, e.Commit())
		stamps = append(stamps, e.LastCommit().String())
	}
	for i := 1; i < len(stamps); i++ {
		assert.Greater(t, stamps[i], stamps[i-1])
	}
}
