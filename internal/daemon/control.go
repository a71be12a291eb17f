package daemon

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
)

const (
	// ControlInterface is the compositor control interface name.
	ControlInterface = "dev.stratum.Compositor1"
	// ControlPath is the control object path.
	ControlPath = "/dev/stratum/Compositor1"
	// ControlBusName is the bus name to claim.
	ControlBusName = "dev.stratum.Compositor"
)

// ControlServer exports the compositor control interface on the session bus.
// It is the stand-in for a windowing-protocol control channel: layout mode
// switches, home screen toggles, and scene inspection all arrive here.
type ControlServer struct {
	daemon *Daemon
	logger *slog.Logger

	mu      sync.Mutex
	conn    *dbus.Conn
	running bool
}

// NewControlServer creates a control server bound to the daemon.
func NewControlServer(d *Daemon, logger *slog.Logger) *ControlServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ControlServer{daemon: d, logger: logger}
}

// Start connects to the session bus and exports the control object.
func (s *ControlServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("control server already running")
	}

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	s.conn = conn

	if err := conn.Export(s, ControlPath, ControlInterface); err != nil {
		return fmt.Errorf("failed to export control object: %w", err)
	}

	node := &introspect.Node{
		Name: ControlPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    ControlInterface,
				Methods: controlMethods(),
				Signals: controlSignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), ControlPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(ControlBusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken", ControlBusName)
	}

	s.running = true
	s.logger.Info("D-Bus control server started", "interface", ControlInterface, "path", ControlPath)
	return nil
}

// Stop releases the bus name. The shared session bus connection stays open.
func (s *ControlServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	if s.conn != nil {
		if _, err := s.conn.ReleaseName(ControlBusName); err != nil {
			s.logger.Warn("failed to release bus name", "error", err)
		}
	}

	s.logger.Info("D-Bus control server stopped")
	return nil
}

// SwitchMode changes the layout mode.
// D-Bus method: SwitchMode(s)
func (s *ControlServer) SwitchMode(mode string) *dbus.Error {
	s.logger.Debug("SwitchMode called", "mode", mode)
	if err := s.daemon.SwitchMode(mode); err != nil {
		return dbus.MakeFailedError(err)
	}
	return nil
}

// Home shows or hides the workspace layers.
// D-Bus method: Home(b)
func (s *ControlServer) Home(show bool) *dbus.Error {
	s.logger.Debug("Home called", "show", show)
	if err := s.daemon.ToggleHome(show); err != nil {
		return dbus.MakeFailedError(err)
	}
	return nil
}

// ListSurfaces returns the ids of all live surfaces.
// D-Bus method: ListSurfaces() -> au
func (s *ControlServer) ListSurfaces() ([]uint32, *dbus.Error) {
	s.logger.Debug("ListSurfaces called")
	return s.daemon.Surfaces(), nil
}

// SceneDump returns the committed scene graph serialized as JSON.
// D-Bus method: SceneDump() -> s
func (s *ControlServer) SceneDump() (string, *dbus.Error) {
	s.logger.Debug("SceneDump called")
	data, err := s.daemon.SceneDump()
	if err != nil {
		return "", dbus.MakeFailedError(err)
	}
	return string(data), nil
}

// EmitSurfaceCreated emits the SurfaceCreated signal.
func (s *ControlServer) EmitSurfaceCreated(id uint32) error {
	return s.emit("SurfaceCreated", id)
}

// EmitSurfaceRemoved emits the SurfaceRemoved signal.
func (s *ControlServer) EmitSurfaceRemoved(id uint32) error {
	return s.emit("SurfaceRemoved", id)
}

func (s *ControlServer) emit(name string, id uint32) error {
	s.mu.Lock()
	conn, running := s.conn, s.running
	s.mu.Unlock()

	if !running || conn == nil {
		return fmt.Errorf("not connected to D-Bus")
	}
	if err := conn.Emit(ControlPath, ControlInterface+"."+name, id); err != nil {
		return fmt.Errorf("failed to emit %s signal: %w", name, err)
	}
	s.logger.Debug("emitted signal", "signal", name, "surface", id)
	return nil
}

// controlMethods returns the D-Bus method introspection data.
func controlMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "SwitchMode",
			Args: []introspect.Arg{
				{Name: "mode", Type: "s", Direction: "in"},
			},
		},
		{
			Name: "Home",
			Args: []introspect.Arg{
				{Name: "show", Type: "b", Direction: "in"},
			},
		},
		{
			Name: "ListSurfaces",
			Args: []introspect.Arg{
				{Name: "surfaces", Type: "au", Direction: "out"},
			},
		},
		{
			Name: "SceneDump",
			Args: []introspect.Arg{
				{Name: "scene", Type: "s", Direction: "out"},
			},
		},
	}
}

// controlSignals returns the D-Bus signal introspection data.
func controlSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: "SurfaceCreated",
			Args: []introspect.Arg{
				{Name: "surface", Type: "u"},
			},
		},
		{
			Name: "SurfaceRemoved",
			Args: []introspect.Arg{
				{Name: "surface", Type: "u"},
			},
		},
	}
}
