package surface

import (
	"math"
	"sync/atomic"
)

const (
	// DefaultDepth is the reported bits per pixel.
	DefaultDepth int32 = 32
	// DefaultDepthPerComponent is the reported bits per color component.
	DefaultDepthPerComponent int32 = 8
)

// placeholderRect is handed out before layout is known; a 0x0 rect makes the
// native renderer compute degenerate geometry.
var placeholderRect = Rect{Width: 1, Height: 1}

// State is the render geometry of one surface.
type State struct {
	viewRect    atomic.Pointer[Rect]
	origin      atomic.Pointer[Point]
	scale       atomic.Uint64
	transparent bool
}

// NewState returns state with a 1x1 view rect, origin 0,0 and scale 1.
// Transparency is fixed for the life of the surface.
func NewState(transparent bool) *State {
	s := &State{transparent: transparent}
	r := placeholderRect
	s.viewRect.Store(&r)
	s.origin.Store(&Point{})
	s.scale.Store(math.Float64bits(1.0))
	return s
}

// Transparent reports whether the surface renders with an alpha channel.
func (s *State) Transparent() bool {
	return s.transparent
}

// ViewRect returns the current view rectangle.
func (s *State) ViewRect() Rect {
	return *s.viewRect.Load()
}

// SetViewRect replaces the view rectangle. Width and height below 1 are
// raised to 1.
func (s *State) SetViewRect(r Rect) {
	r.Width = max(r.Width, 1)
	r.Height = max(r.Height, 1)
	s.viewRect.Store(&r)
}

// ScreenOrigin returns the screen position of the view's top-left corner.
func (s *State) ScreenOrigin() Point {
	return *s.origin.Load()
}

// SetScreenOrigin replaces the screen origin.
func (s *State) SetScreenOrigin(p Point) {
	s.origin.Store(&p)
}

// ScaleFactor returns the device scale factor.
func (s *State) ScaleFactor() float64 {
	return math.Float64frombits(s.scale.Load())
}

// SetScaleFactor replaces the device scale factor.
func (s *State) SetScaleFactor(f float64) {
	s.scale.Store(math.Float64bits(f))
}

// ScreenPoint translates a view point to screen coordinates.
func (s *State) ScreenPoint(view Point) Point {
	return s.ScreenOrigin().Add(view)
}

// ScreenInfo returns a snapshot for the renderer's screen query. The screen
// is never reported as fullscreen and both rects equal the view rect.
func (s *State) ScreenInfo() ScreenInfo {
	r := s.ViewRect()
	return ScreenInfo{
		ScaleFactor:       s.ScaleFactor(),
		Depth:             DefaultDepth,
		DepthPerComponent: DefaultDepthPerComponent,
		Fullscreen:        false,
		AvailableRect:     r,
		WorkRect:          r,
	}
}
