package browser

import (
	"context"
	"image"

	"github.com/wippyai/osr-runtime/errors"
	"github.com/wippyai/osr-runtime/surface"
)

// RenderHandler is what the native renderer calls into. Calls for one
// browser are never concurrent with each other, and none of them block.
type RenderHandler interface {
	// ViewRect returns the view rectangle; never 0x0.
	ViewRect() surface.Rect
	// ScreenPoint translates a view point to screen coordinates.
	ScreenPoint(view surface.Point) surface.Point
	// ScreenInfo fills in the virtual screen description.
	ScreenInfo() (surface.ScreenInfo, bool)
	OnPopupShow(show bool)
	OnPopupSize(rect surface.Rect)
	// OnPaint delivers a frame. buffer is only valid during the call.
	OnPaint(popup bool, dirty []surface.Rect, buffer []byte, width, height int32) error
	// OnCursorChange reports whether the cursor change was handled.
	OnCursorChange(cursor CursorType) bool
	// StartDragging reports whether the drag was handled.
	StartDragging(data DragData, allowed DragOperation, x, y int32) bool
	UpdateDragCursor(op DragOperation)
	// CreateScreenshot is not supported for off-screen surfaces.
	CreateScreenshot(ctx context.Context, nativeResolution bool) (image.Image, error)
}

type renderHandler struct {
	b *Browser
}

func (h *renderHandler) ViewRect() surface.Rect {
	return h.b.state.ViewRect()
}

func (h *renderHandler) ScreenPoint(view surface.Point) surface.Point {
	return h.b.state.ScreenPoint(view)
}

func (h *renderHandler) ScreenInfo() (surface.ScreenInfo, bool) {
	return h.b.state.ScreenInfo(), true
}

// Popups are painted through OnPaint with popup set.
func (h *renderHandler) OnPopupShow(bool) {}

func (h *renderHandler) OnPopupSize(surface.Rect) {}

func (h *renderHandler) OnPaint(popup bool, dirty []surface.Rect, buffer []byte, width, height int32) error {
	return h.b.paint.Dispatch(popup, dirty, buffer, width, height)
}

func (h *renderHandler) OnCursorChange(CursorType) bool {
	return true
}

func (h *renderHandler) StartDragging(DragData, DragOperation, int32, int32) bool {
	return true
}

func (h *renderHandler) UpdateDragCursor(DragOperation) {}

func (h *renderHandler) CreateScreenshot(context.Context, bool) (image.Image, error) {
	return nil, errors.Unsupported(errors.PhaseRender, "screenshot capture of an off-screen surface")
}
