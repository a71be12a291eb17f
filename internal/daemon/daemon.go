package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jmylchreest/stratum/internal/backend"
	"github.com/jmylchreest/stratum/internal/config"
	"github.com/jmylchreest/stratum/internal/layout"
	"github.com/jmylchreest/stratum/internal/shell"
)

// Daemon owns the compositor core: the simulated backend, the layout
// engine, and the shell controller, plus the control surfaces around them.
type Daemon struct {
	logger  *slog.Logger
	cfgPath string

	mu     sync.Mutex
	cfg    *config.Config
	sim    *backend.Sim
	engine *layout.Engine
	shell  *shell.Controller

	control *ControlServer
	watcher *ConfigWatcher

	subs []*layout.Subscription
}

// Option configures a Daemon.
type Option func(*Daemon)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(d *Daemon) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// New builds the daemon: backend and engine from the screen configuration,
// the shell scene graph on top, committed and ready for surfaces. cfgPath is
// the file the hot-reload watcher follows; empty disables watching.
func New(cfg *config.Config, cfgPath string, opts ...Option) (*Daemon, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	d := &Daemon{
		logger:  slog.Default(),
		cfg:     cfg,
		cfgPath: cfgPath,
	}
	for _, opt := range opts {
		opt(d)
	}

	d.sim = backend.NewSim(
		backend.WithLogger(d.logger),
		backend.WithOutput("sim-0", cfg.Screen.Width, cfg.Screen.Height),
	)
	d.engine = layout.New(d.sim, layout.WithLogger(d.logger))

	sh, err := shell.NewController(d.engine, cfg, shell.WithLogger(d.logger))
	if err != nil {
		return nil, fmt.Errorf("building shell scene graph: %w", err)
	}
	d.shell = sh
	d.shell.Ready()

	d.control = NewControlServer(d, d.logger)
	return d, nil
}

// Run starts the control server and the config watcher, then blocks until
// the context is cancelled. A missing session bus is logged and tolerated;
// the compositor core keeps running without remote control.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.control.Start(); err != nil {
		d.logger.Warn("D-Bus control unavailable", "error", err)
	} else {
		d.bridgeSignals()
	}

	if d.cfgPath != "" {
		watcher, err := NewConfigWatcher(d.cfgPath, d.applyConfig, d.logger)
		if err != nil {
			d.logger.Warn("config watcher unavailable", "error", err)
		} else {
			d.watcher = watcher
			if err := watcher.Start(); err != nil {
				d.logger.Warn("config watcher failed to start", "error", err)
			}
		}
	}

	d.logger.Info("stratumd running", "config", d.cfgPath)
	<-ctx.Done()

	d.shutdown()
	return ctx.Err()
}

func (d *Daemon) shutdown() {
	for _, sub := range d.subs {
		sub.Cancel()
	}
	d.subs = nil

	if d.watcher != nil {
		if err := d.watcher.Stop(); err != nil {
			d.logger.Warn("stopping config watcher", "error", err)
		}
	}
	if err := d.control.Stop(); err != nil {
		d.logger.Warn("stopping control server", "error", err)
	}
	d.shell.Close()
	d.logger.Info("stratumd stopped")
}

// bridgeSignals forwards engine lifecycle notifications onto the bus.
func (d *Daemon) bridgeSignals() {
	sub, err := d.engine.OnSurfaceCreate(func(id layout.SurfaceID) {
		if err := d.control.EmitSurfaceCreated(uint32(id)); err != nil {
			d.logger.Debug("emitting SurfaceCreated", "error", err)
		}
	})
	if err == nil {
		d.subs = append(d.subs, sub)
	}
	sub, err = d.engine.OnSurfaceRemove(func(id layout.SurfaceID) {
		if err := d.control.EmitSurfaceRemoved(uint32(id)); err != nil {
			d.logger.Debug("emitting SurfaceRemoved", "error", err)
		}
	})
	if err == nil {
		d.subs = append(d.subs, sub)
	}
}

// applyConfig handles a hot-reloaded configuration.
func (d *Daemon) applyConfig(cfg *config.Config) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.shell.UpdateConfig(cfg); err != nil {
		d.logger.Warn("reloaded config rejected", "error", err)
		return
	}
	d.cfg = cfg
	d.logger.Info("configuration reloaded", "mode", cfg.Shell.DefaultMode)
}

// SwitchMode changes the shell layout mode.
func (d *Daemon) SwitchMode(name string) error {
	mode, err := shell.ParseMode(name)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.shell.SwitchMode(mode)
	return nil
}

// ToggleHome shows or hides the workspace layers.
func (d *Daemon) ToggleHome(show bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shell.ToggleHome(show)
}

// Surfaces returns the ids of all live surfaces in creation order.
func (d *Daemon) Surfaces() []uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()

	ids := d.engine.Surfaces()
	out := make([]uint32, len(ids))
	for i, id := range ids {
		out[i] = uint32(id)
	}
	return out
}

// sceneLayer is one layer entry of a scene dump.
type sceneLayer struct {
	ID       uint32                 `json:"id"`
	Props    layout.LayerProperties `json:"properties"`
	Surfaces []uint32               `json:"surfaces"`
}

// sceneSurface is one surface entry of a scene dump.
type sceneSurface struct {
	ID    uint32                   `json:"id"`
	Props layout.SurfaceProperties `json:"properties"`
}

// sceneDump is the full committed scene state.
type sceneDump struct {
	LastCommit string              `json:"last_commit"`
	Mode       string              `json:"mode"`
	Screens    map[uint32][]uint32 `json:"screens"`
	Layers     []sceneLayer        `json:"layers"`
	Surfaces   []sceneSurface      `json:"surfaces"`
	RenderList []renderEntry       `json:"render_list"`
}

type renderEntry struct {
	Screen  uint32  `json:"screen"`
	Layer   uint32  `json:"layer"`
	Surface uint32  `json:"surface"`
	Visible bool    `json:"visible"`
	Alpha   float64 `json:"alpha"`
}

// SceneDump serializes the committed scene graph as JSON.
func (d *Daemon) SceneDump() ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	dump := sceneDump{
		LastCommit: d.engine.LastCommit().String(),
		Mode:       d.shell.CurrentMode().String(),
		Screens:    make(map[uint32][]uint32),
	}

	for _, sid := range d.engine.Screens() {
		order, err := d.engine.LayersOnScreen(sid)
		if err != nil {
			return nil, err
		}
		ids := make([]uint32, len(order))
		for i, lid := range order {
			ids[i] = uint32(lid)
		}
		dump.Screens[uint32(sid)] = ids
	}

	for _, lid := range d.engine.Layers() {
		props, err := d.engine.LayerProperties(lid)
		if err != nil {
			return nil, err
		}
		order, err := d.engine.SurfacesOnLayer(lid)
		if err != nil {
			return nil, err
		}
		ids := make([]uint32, len(order))
		for i, sid := range order {
			ids[i] = uint32(sid)
		}
		dump.Layers = append(dump.Layers, sceneLayer{
			ID:       uint32(lid),
			Props:    props,
			Surfaces: ids,
		})
	}

	for _, sid := range d.engine.Surfaces() {
		props, err := d.engine.SurfaceProperties(sid)
		if err != nil {
			return nil, err
		}
		dump.Surfaces = append(dump.Surfaces, sceneSurface{ID: uint32(sid), Props: props})
	}

	for _, el := range d.engine.RenderList() {
		dump.RenderList = append(dump.RenderList, renderEntry{
			Screen:  uint32(el.Screen),
			Layer:   uint32(el.Layer),
			Surface: uint32(el.Surface),
			Visible: el.View.Visible,
			Alpha:   el.View.Alpha,
		})
	}

	return json.MarshalIndent(dump, "", "  ")
}

// Engine exposes the layout engine for in-process clients. Callers must hold
// Lock around every engine call.
func (d *Daemon) Engine() *layout.Engine {
	return d.engine
}

// Shell exposes the shell controller for in-process clients.
func (d *Daemon) Shell() *shell.Controller {
	return d.shell
}

// Lock serializes external engine access with the daemon's own.
func (d *Daemon) Lock() { d.mu.Lock() }

// Unlock releases the engine lock.
func (d *Daemon) Unlock() { d.mu.Unlock() }
