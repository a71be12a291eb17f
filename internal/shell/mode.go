package shell

import "fmt"

// Mode selects how application surfaces are arranged on the application
// layer.
type Mode int

const (
	// ModeTiling arranges up to eight surfaces in a four-by-two grid of
	// quarter-width, half-height cells. Further surfaces are hidden.
	ModeTiling Mode = iota
	// ModeSideBySide shows the first two surfaces in half-width columns and
	// hides the rest.
	ModeSideBySide
	// ModeFullscreen sizes every surface to the full application area.
	ModeFullscreen
	// ModeRandom scatters quarter-sized surfaces at random positions.
	ModeRandom
)

func (m Mode) String() string {
	switch m {
	case ModeTiling:
		return "tiling"
	case ModeSideBySide:
		return "side-by-side"
	case ModeFullscreen:
		return "fullscreen"
	case ModeRandom:
		return "random"
	}
	return "unknown"
}

// ParseMode parses a mode name as it appears in config files and control
// requests.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "tiling":
		return ModeTiling, nil
	case "side-by-side":
		return ModeSideBySide, nil
	case "fullscreen":
		return ModeFullscreen, nil
	case "random":
		return ModeRandom, nil
	}
	return 0, fmt.Errorf("unknown layout mode %q", s)
}
