package layout

// LayerID identifies a layer. Ids are caller-chosen and unique per kind.
type LayerID uint32

// SurfaceID identifies a surface.
type SurfaceID uint32

// ScreenID identifies a screen. Screens are numbered in output enumeration
// order starting at zero.
type ScreenID uint32

// Content is an opaque handle to a client's renderable native content (a
// buffer, window, or simulated equivalent). The engine never inspects it; it
// only tracks whether one is bound, because unbound surfaces are excluded
// from the render list.
type Content any

// Orientation is a rotation in 90-degree steps.
type Orientation uint8

const (
	Orientation0 Orientation = iota
	Orientation90
	Orientation180
	Orientation270
)

func (o Orientation) String() string {
	switch o {
	case Orientation0:
		return "0deg"
	case Orientation90:
		return "90deg"
	case Orientation180:
		return "180deg"
	case Orientation270:
		return "270deg"
	}
	return "unknown"
}

// PixelFormat describes the pixel layout of a surface's bound content.
type PixelFormat uint8

const (
	PixelFormatUnknown PixelFormat = iota
	PixelFormatR8
	PixelFormatRGB888
	PixelFormatRGBA8888
	PixelFormatRGB565
	PixelFormatRGBA5551
	PixelFormatRGBA6661
	PixelFormatRGBA4444
)

// EventMask accumulates the property categories changed on an entity since
// its last notification flush. Bits are ORed by setters and cleared after the
// commit-time dispatch.
type EventMask uint32

const (
	EventOpacity EventMask = 1 << iota
	EventSourceRect
	EventDestRect
	EventDimension
	EventPosition
	EventOrientation
	EventVisibility
	EventPixelFormat
	EventAdd
	EventRemove
)

const eventMembership = EventAdd | EventRemove

// Rect is a rectangle in layout coordinates. The engine performs no geometry
// validation; rendering-time clipping is the compositor's concern.
type Rect struct {
	X      int32
	Y      int32
	Width  int32
	Height int32
}

// LayerProperties is the property set of a layer. Each layer carries two
// instances: the committed one returned by getters and a pending one mutated
// by setters.
type LayerProperties struct {
	Opacity     float64
	Source      Rect
	Dest        Rect
	Orientation Orientation
	Visible     bool
}

// SurfaceProperties is the property set of a surface.
type SurfaceProperties struct {
	Opacity     float64
	Source      Rect
	Dest        Rect
	Orientation Orientation
	Visible     bool
	PixelFormat PixelFormat
}

// newLayerProperties returns the initial property set for a layer of the
// given dimensions. Layers start invisible at full opacity with source and
// destination rectangles covering the whole layer.
func newLayerProperties(width, height int32) LayerProperties {
	return LayerProperties{
		Opacity: 1.0,
		Source:  Rect{Width: width, Height: height},
		Dest:    Rect{Width: width, Height: height},
	}
}

// newSurfaceProperties returns the initial property set for a surface.
// Surfaces start invisible at full opacity with zero rectangles; zero source
// and destination dimensions resolve to buffer dimensions at commit time.
func newSurfaceProperties() SurfaceProperties {
	return SurfaceProperties{Opacity: 1.0}
}
