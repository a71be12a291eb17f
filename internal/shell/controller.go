// Package shell implements the HMI policy controller: it owns the fixed
// four-layer scene graph, assigns client surfaces to layers by role, and
// arranges application surfaces according to the active layout mode.
package shell

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/jmylchreest/stratum/internal/config"
	"github.com/jmylchreest/stratum/internal/layout"
)

const (
	buttonSize    = 48
	buttonSpacing = 60
	buttonMarginX = 15
	buttonMarginY = 5
	launcherGap   = 10
)

// FrameProducer yields the alpha steps of a fade between two opacities. The
// controller applies each frame to the workspace layers and commits; timing
// and physics live behind the interface.
type FrameProducer interface {
	Frames(from, to float64) []float64
}

// linearFade is the default frame producer: a fixed-step linear ramp ending
// exactly on the target.
type linearFade struct {
	steps int
}

func (f linearFade) Frames(from, to float64) []float64 {
	frames := make([]float64, f.steps)
	for i := 1; i <= f.steps; i++ {
		frames[i-1] = from + (to-from)*float64(i)/float64(f.steps)
	}
	return frames
}

// Controller drives the layout engine. All methods must run on the same
// goroutine that commits the engine.
type Controller struct {
	logger *slog.Logger
	engine *layout.Engine
	cfg    *config.Config
	rand   *rand.Rand
	fade   FrameProducer

	mode        Mode
	ready       bool
	homeVisible bool

	base        layout.LayerID
	application layout.LayerID
	workspaceBg layout.LayerID
	workspace   layout.LayerID

	appWidth  int32
	appHeight int32

	uiWidgets map[layout.SurfaceID]struct{}
	launchers int

	subs []*layout.Subscription
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRandSeed seeds the random layout mode deterministically.
func WithRandSeed(seed int64) ControllerOption {
	return func(c *Controller) {
		c.rand = rand.New(rand.NewSource(seed))
	}
}

// WithFrameProducer replaces the fade animation frames.
func WithFrameProducer(fp FrameProducer) ControllerOption {
	return func(c *Controller) {
		if fp != nil {
			c.fade = fp
		}
	}
}

// NewController builds the scene graph on the engine's first screen: a base
// layer spanning the whole output for background and panel widgets, an
// application layer above it covering everything except the panel strip, and
// the two workspace layers on top, faded out until the home screen is
// requested. The screen render order is fixed back to front as base,
// application, workspace background, workspace.
func NewController(engine *layout.Engine, cfg *config.Config, opts ...ControllerOption) (*Controller, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	c := &Controller{
		logger:    slog.Default(),
		engine:    engine,
		cfg:       cfg,
		rand:      rand.New(rand.NewSource(time.Now().UnixNano())),
		fade:      linearFade{steps: 10},
		uiWidgets: make(map[layout.SurfaceID]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	mode, err := ParseMode(cfg.Shell.DefaultMode)
	if err != nil {
		return nil, err
	}
	c.mode = mode

	screenW, screenH, err := engine.ScreenResolution(0)
	if err != nil {
		return nil, err
	}
	c.appWidth = screenW
	c.appHeight = screenH - cfg.Panel.Height

	c.base = layout.LayerID(cfg.Layers.Base)
	c.application = layout.LayerID(cfg.Layers.Application)
	c.workspaceBg = layout.LayerID(cfg.Layers.WorkspaceBackground)
	c.workspace = layout.LayerID(cfg.Layers.Workspace)

	type layerInit struct {
		id      layout.LayerID
		rect    layout.Rect
		visible bool
		opacity float64
	}
	for _, li := range []layerInit{
		{c.base, layout.Rect{Width: screenW, Height: screenH}, true, 1.0},
		{c.application, layout.Rect{Width: c.appWidth, Height: c.appHeight}, true, 1.0},
		{c.workspaceBg, layout.Rect{Width: c.appWidth, Height: c.appHeight}, false, 0.0},
		{c.workspace, layout.Rect{Width: c.appWidth, Height: c.appHeight}, false, 0.0},
	} {
		if err := engine.CreateLayer(li.id, li.rect.Width, li.rect.Height); err != nil {
			return nil, err
		}
		if err := engine.SetLayerDestRect(li.id, li.rect); err != nil {
			return nil, err
		}
		if err := engine.SetLayerVisibility(li.id, li.visible); err != nil {
			return nil, err
		}
		if err := engine.SetLayerOpacity(li.id, li.opacity); err != nil {
			return nil, err
		}
	}

	err = engine.SetScreenRenderOrder(0, []layout.LayerID{
		c.base, c.application, c.workspaceBg, c.workspace,
	})
	if err != nil {
		return nil, err
	}

	sub, err := engine.OnSurfaceCreate(c.onSurfaceCreated)
	if err != nil {
		return nil, err
	}
	c.subs = append(c.subs, sub)
	sub, err = engine.OnSurfaceRemove(func(layout.SurfaceID) { c.relayout() })
	if err != nil {
		return nil, err
	}
	c.subs = append(c.subs, sub)
	sub, err = engine.OnSurfaceConfigure(func(layout.SurfaceID) { c.relayout() })
	if err != nil {
		return nil, err
	}
	c.subs = append(c.subs, sub)

	if err := engine.Commit(); err != nil {
		return nil, err
	}

	c.logger.Info("shell scene graph created",
		"screen", 0,
		"width", screenW,
		"height", screenH,
		"mode", c.mode.String())
	return c, nil
}

// Close cancels the controller's engine subscriptions.
func (c *Controller) Close() {
	for _, sub := range c.subs {
		sub.Cancel()
	}
	c.subs = nil
}

// CurrentMode returns the active layout mode.
func (c *Controller) CurrentMode() Mode {
	return c.mode
}

// HomeVisible reports whether the workspace (home screen) layers are shown.
func (c *Controller) HomeVisible() bool {
	return c.homeVisible
}

// Ready marks UI widget setup as finished and performs the first layout of
// application surfaces. Before Ready, incoming surfaces accumulate on the
// application layer without being arranged.
func (c *Controller) Ready() {
	c.ready = true
	c.relayout()
}

// onSurfaceCreated places new application surfaces on the application layer.
// Widget surfaces are claimed by their role calls instead.
func (c *Controller) onSurfaceCreated(id layout.SurfaceID) {
	if _, ok := c.uiWidgets[id]; ok {
		return
	}
	if err := c.engine.LayerAddSurface(c.application, id); err != nil {
		c.logger.Warn("adding surface to application layer", "surface", uint32(id), "error", err)
	}
}

// SetBackground places the background surface on the base layer, sized to
// the application area so the panel strip stays uncovered.
func (c *Controller) SetBackground(id layout.SurfaceID) error {
	return c.placeWidget(id, c.base, layout.Rect{
		Width:  c.appWidth,
		Height: c.appHeight,
	})
}

// SetPanel places the panel surface along the bottom edge of the base layer.
func (c *Controller) SetPanel(id layout.SurfaceID) error {
	return c.placeWidget(id, c.base, layout.Rect{
		Y:      c.appHeight,
		Width:  c.appWidth,
		Height: c.cfg.Panel.Height,
	})
}

// SetButton places the numbered panel button, counted from the left.
func (c *Controller) SetButton(id layout.SurfaceID, number int32) error {
	return c.placeWidget(id, c.base, layout.Rect{
		X:      buttonSpacing*number + buttonMarginX,
		Y:      c.appHeight + buttonMarginY,
		Width:  buttonSize,
		Height: buttonSize,
	})
}

// SetHomeButton places the home button centered in the panel.
func (c *Controller) SetHomeButton(id layout.SurfaceID) error {
	return c.placeWidget(id, c.base, layout.Rect{
		X:      (c.appWidth - buttonSize) / 2,
		Y:      c.appHeight + buttonMarginY,
		Width:  buttonSize,
		Height: buttonSize,
	})
}

// SetWorkspaceBackground places the home screen background surface on the
// workspace background layer.
func (c *Controller) SetWorkspaceBackground(id layout.SurfaceID) error {
	return c.placeWidget(id, c.workspaceBg, layout.Rect{
		Width:  c.appWidth,
		Height: c.appHeight,
	})
}

// AddLauncher places a launcher icon on the workspace layer. Icons flow left
// to right, top to bottom, in a grid derived from the icon size and the
// workspace dimensions.
func (c *Controller) AddLauncher(id layout.SurfaceID, iconSize int32) error {
	cols := (c.appWidth - launcherGap) / (launcherGap + iconSize)
	if cols < 1 {
		cols = 1
	}
	spaceX := (c.appWidth - cols*iconSize) / (cols + 1)
	spaceY := spaceX

	col := int32(c.launchers) % cols
	row := int32(c.launchers) / cols
	c.launchers++

	return c.placeWidget(id, c.workspace, layout.Rect{
		X:      spaceX + col*(iconSize+spaceX),
		Y:      spaceY + row*(iconSize+spaceY),
		Width:  iconSize,
		Height: iconSize,
	})
}

// placeWidget registers the surface as a UI widget, attaches it to the given
// layer at the given place, and commits. The create observer has already put
// the surface on the application layer, so it is pulled off first.
func (c *Controller) placeWidget(id layout.SurfaceID, lid layout.LayerID, dest layout.Rect) error {
	c.uiWidgets[id] = struct{}{}

	if err := c.engine.LayerRemoveSurface(c.application, id); err != nil {
		return err
	}
	if err := c.engine.LayerAddSurface(lid, id); err != nil {
		return err
	}
	if err := c.engine.SetSurfaceDestRect(id, dest); err != nil {
		return err
	}
	if err := c.engine.SetSurfaceVisibility(id, true); err != nil {
		return err
	}
	return c.engine.Commit()
}

// SwitchMode changes the layout mode and rearranges application surfaces in
// a single commit.
func (c *Controller) SwitchMode(mode Mode) {
	c.mode = mode
	c.logger.Info("layout mode switched", "mode", mode.String())
	c.relayout()
}

// UpdateConfig applies a reloaded configuration. The layout mode and the
// panel height take effect at runtime; layer ids are fixed at startup and
// need a restart. A panel height change resizes the application area, so the
// application and workspace layers are restaged and application surfaces
// rearranged. Widgets already placed keep their position until their role
// call is repeated.
func (c *Controller) UpdateConfig(cfg *config.Config) error {
	mode, err := ParseMode(cfg.Shell.DefaultMode)
	if err != nil {
		return err
	}
	panelChanged := cfg.Panel.Height != c.cfg.Panel.Height
	modeChanged := mode != c.mode
	c.cfg = cfg

	if panelChanged {
		_, screenH, err := c.engine.ScreenResolution(0)
		if err != nil {
			return err
		}
		c.appHeight = screenH - cfg.Panel.Height
		area := layout.Rect{Width: c.appWidth, Height: c.appHeight}
		for _, lid := range []layout.LayerID{c.application, c.workspaceBg, c.workspace} {
			if err := c.engine.SetLayerDestRect(lid, area); err != nil {
				return err
			}
		}
		if err := c.engine.Commit(); err != nil {
			return err
		}
		c.logger.Info("panel height updated", "height", cfg.Panel.Height)
	}
	if modeChanged {
		c.mode = mode
		c.logger.Info("layout mode switched", "mode", mode.String())
	}
	if panelChanged || modeChanged {
		c.relayout()
	}
	return nil
}

// ToggleHome fades the workspace layers in or out. Each animation frame
// stages opacity on both layers and commits, so the backend repaints once
// per frame. Requesting the current state is a no-op.
func (c *Controller) ToggleHome(show bool) error {
	if show == c.homeVisible {
		return nil
	}
	c.homeVisible = show

	from, to := 1.0, 0.0
	if show {
		from, to = 0.0, 1.0
	}
	layers := []layout.LayerID{c.workspaceBg, c.workspace}

	for _, alpha := range c.fade.Frames(from, to) {
		visible := alpha > 0
		for _, lid := range layers {
			if err := c.engine.SetLayerOpacity(lid, alpha); err != nil {
				return err
			}
			if err := c.engine.SetLayerVisibility(lid, visible); err != nil {
				return err
			}
		}
		if err := c.engine.Commit(); err != nil {
			return err
		}
	}
	return nil
}

// applicationSurfaces returns non-widget surfaces in creation order.
func (c *Controller) applicationSurfaces() []layout.SurfaceID {
	var out []layout.SurfaceID
	for _, id := range c.engine.Surfaces() {
		if _, ok := c.uiWidgets[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// relayout arranges application surfaces per the active mode and commits.
// It is a no-op before Ready and while no application surface exists.
func (c *Controller) relayout() {
	if !c.ready {
		return
	}
	apps := c.applicationSurfaces()
	if len(apps) == 0 {
		return
	}

	switch c.mode {
	case ModeTiling:
		c.layoutTiling(apps)
	case ModeSideBySide:
		c.layoutSideBySide(apps)
	case ModeFullscreen:
		c.layoutFullscreen(apps)
	case ModeRandom:
		c.layoutRandom(apps)
	}

	if err := c.engine.Commit(); err != nil {
		c.logger.Error("relayout commit failed", "error", err)
	}
}

func (c *Controller) layoutTiling(apps []layout.SurfaceID) {
	w := int32(float64(c.appWidth) * 0.25)
	h := int32(float64(c.appHeight) * 0.5)

	for i, id := range apps {
		if i >= 8 {
			c.setSurface(id, layout.Rect{}, false)
			continue
		}
		rect := layout.Rect{
			X:      int32(i%4) * w,
			Y:      int32(i/4) * h,
			Width:  w,
			Height: h,
		}
		c.setSurface(id, rect, true)
	}
}

func (c *Controller) layoutSideBySide(apps []layout.SurfaceID) {
	w := c.appWidth / 2
	for i, id := range apps {
		if i >= 2 {
			c.setSurface(id, layout.Rect{}, false)
			continue
		}
		rect := layout.Rect{
			X:      int32(i) * w,
			Width:  w,
			Height: c.appHeight,
		}
		c.setSurface(id, rect, true)
	}
}

func (c *Controller) layoutFullscreen(apps []layout.SurfaceID) {
	for _, id := range apps {
		c.setSurface(id, layout.Rect{Width: c.appWidth, Height: c.appHeight}, true)
	}
}

func (c *Controller) layoutRandom(apps []layout.SurfaceID) {
	w := int32(float64(c.appWidth) * 0.25)
	h := int32(float64(c.appHeight) * 0.25)

	for _, id := range apps {
		rect := layout.Rect{
			X:      c.rand.Int31n(c.appWidth - w),
			Y:      c.rand.Int31n(c.appHeight - h),
			Width:  w,
			Height: h,
		}
		c.setSurface(id, rect, true)
	}
}

func (c *Controller) setSurface(id layout.SurfaceID, dest layout.Rect, visible bool) {
	if visible {
		if err := c.engine.SetSurfaceDestRect(id, dest); err != nil {
			c.logger.Warn("staging surface geometry", "surface", uint32(id), "error", err)
			return
		}
	}
	if err := c.engine.SetSurfaceVisibility(id, visible); err != nil {
		c.logger.Warn("staging surface visibility", "surface", uint32(id), "error", err)
	}
}
