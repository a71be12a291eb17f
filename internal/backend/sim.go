// Package backend provides windowing backends for the layout engine. The
// simulated backend stands in for a real display stack: it enumerates
// configured outputs and records repaint requests instead of driving
// hardware, which is enough for the shell, the control daemon, and tests.
package backend

import (
	"log/slog"
	"sync"

	"github.com/jmylchreest/stratum/internal/layout"
)

// Sim is an in-process backend with configurable outputs. It is safe for
// concurrent use; repaint requests arrive from whichever goroutine commits.
type Sim struct {
	logger  *slog.Logger
	outputs []layout.Output

	mu       sync.Mutex
	repaints map[layout.ScreenID]uint64
}

// SimOption configures a Sim.
type SimOption func(*Sim)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) SimOption {
	return func(s *Sim) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithOutput appends an output to the enumerated set.
func WithOutput(name string, width, height int32) SimOption {
	return func(s *Sim) {
		s.outputs = append(s.outputs, layout.Output{Name: name, Width: width, Height: height})
	}
}

// NewSim creates a simulated backend. Without WithOutput options it
// enumerates a single 1920x1080 output named sim-0.
func NewSim(opts ...SimOption) *Sim {
	s := &Sim{
		logger:   slog.Default(),
		repaints: make(map[layout.ScreenID]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	if len(s.outputs) == 0 {
		s.outputs = []layout.Output{{Name: "sim-0", Width: 1920, Height: 1080}}
	}
	return s
}

// Outputs returns the configured outputs.
func (s *Sim) Outputs() []layout.Output {
	out := make([]layout.Output, len(s.outputs))
	copy(out, s.outputs)
	return out
}

// ScheduleRepaint records a repaint request for the screen.
func (s *Sim) ScheduleRepaint(screen layout.ScreenID) {
	s.mu.Lock()
	s.repaints[screen]++
	count := s.repaints[screen]
	s.mu.Unlock()

	s.logger.Debug("repaint scheduled", "screen", uint32(screen), "total", count)
}

// RepaintCount returns how many repaints have been scheduled for the screen.
func (s *Sim) RepaintCount(screen layout.ScreenID) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repaints[screen]
}
