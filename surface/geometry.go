// Package surface holds the geometry of one off-screen render surface.
//
// State is written by window/layout code and read by render callbacks. Each
// field is an independent atomic: readers may see slightly stale geometry,
// never a torn value.
package surface

import "fmt"

// Rect is a rectangle in view coordinates.
type Rect struct {
	X      int32
	Y      int32
	Width  int32
	Height int32
}

// String implements fmt.Stringer.
func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Point is a position in view or screen coordinates.
type Point struct {
	X int32
	Y int32
}

// Add returns the vector sum p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// ScreenInfo describes the virtual screen a surface renders to.
type ScreenInfo struct {
	ScaleFactor       float64
	Depth             int32
	DepthPerComponent int32
	Fullscreen        bool
	AvailableRect     Rect
	WorkRect          Rect
}
