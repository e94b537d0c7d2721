package host

import (
	"context"
	"math"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/osr-runtime/browser"
	"github.com/wippyai/osr-runtime/errors"
	"github.com/wippyai/osr-runtime/surface"
)

// ModuleName is the import module the renderer guest links against.
const ModuleName = "osr"

// Frame descriptor layout, in 8-byte slots.
const (
	frameSlotPixels = iota
	frameSlotRects
	frameSlotRectCount
	frameSlotWidth
	frameSlotHeight
	frameSlotPopup
	frameSlots

	frameDescriptorSize = frameSlots * 8
	rectSize            = 16
	bytesPerPixel       = 4
	screenInfoSize      = 52
)

var (
	i32 = api.ValueTypeI32
	i64 = api.ValueTypeI64
)

type hostFunc struct {
	fn      api.GoModuleFunc
	name    string
	params  []api.ValueType
	results []api.ValueType
}

func (r *Renderer) hostFuncs() []hostFunc {
	return []hostFunc{
		{name: "view_rect", fn: r.viewRect, params: []api.ValueType{i32, i32}},
		{name: "screen_point", fn: r.screenPoint, params: []api.ValueType{i32, i32, i32, i32}},
		{name: "screen_info", fn: r.screenInfo, params: []api.ValueType{i32, i32}, results: []api.ValueType{i32}},
		{name: "paint", fn: r.paint, params: []api.ValueType{i32, i32}, results: []api.ValueType{i32}},
		{name: "popup_show", fn: r.popupShow, params: []api.ValueType{i32, i32}},
		{name: "popup_size", fn: r.popupSize, params: []api.ValueType{i32, i32}},
		{name: "cursor_change", fn: r.cursorChange, params: []api.ValueType{i32, i32}, results: []api.ValueType{i32}},
		{name: "start_dragging", fn: r.startDragging, params: []api.ValueType{i32, i32, i32, i32}, results: []api.ValueType{i32}},
		{name: "update_drag_cursor", fn: r.updateDragCursor, params: []api.ValueType{i32, i32}},
	}
}

func (r *Renderer) handler(op string, stack []uint64) (browser.RenderHandler, bool) {
	handle := api.DecodeU32(stack[0])
	b, ok := r.table.Get(handle)
	if !ok {
		Logger().Warn("render callback for unknown surface",
			zap.String("func", op),
			zap.Uint32("surface", handle),
		)
		return nil, false
	}
	return b.RenderHandler(), true
}

// trap aborts the guest call; wazero surfaces the panic value as the error
// of the exported function the host invoked.
func trap(op string, offset uint32, length int) {
	e := errors.OutOfBounds(errors.PhaseHost, "", int(offset), length)
	e.Op = op
	panic(e)
}

func writeI32s(op string, mem api.Memory, offset uint32, vals ...int32) {
	for i, v := range vals {
		if !mem.WriteUint32Le(offset+uint32(i*4), uint32(v)) {
			trap(op, offset, len(vals)*4)
		}
	}
}

func writeRect(op string, mem api.Memory, offset uint32, rect surface.Rect) {
	writeI32s(op, mem, offset, rect.X, rect.Y, rect.Width, rect.Height)
}

func readRect(op string, mem api.Memory, offset uint32) surface.Rect {
	var vals [4]int32
	for i := range vals {
		v, ok := mem.ReadUint32Le(offset + uint32(i*4))
		if !ok {
			trap(op, offset, rectSize)
		}
		vals[i] = int32(v)
	}
	return surface.Rect{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}
}

// view_rect(surface, out)
func (r *Renderer) viewRect(_ context.Context, mod api.Module, stack []uint64) {
	h, ok := r.handler("view_rect", stack)
	if !ok {
		return
	}
	writeRect("view_rect", mod.Memory(), api.DecodeU32(stack[1]), h.ViewRect())
}

// screen_point(surface, x, y, out)
func (r *Renderer) screenPoint(_ context.Context, mod api.Module, stack []uint64) {
	h, ok := r.handler("screen_point", stack)
	if !ok {
		return
	}
	p := h.ScreenPoint(surface.Point{X: api.DecodeI32(stack[1]), Y: api.DecodeI32(stack[2])})
	writeI32s("screen_point", mod.Memory(), api.DecodeU32(stack[3]), p.X, p.Y)
}

// screen_info(surface, out) -> handled
func (r *Renderer) screenInfo(_ context.Context, mod api.Module, stack []uint64) {
	h, ok := r.handler("screen_info", stack)
	if !ok {
		stack[0] = encodeBool(false)
		return
	}
	info, handled := h.ScreenInfo()
	if handled {
		mem := mod.Memory()
		out := api.DecodeU32(stack[1])
		if !mem.WriteUint64Le(out, math.Float64bits(info.ScaleFactor)) {
			trap("screen_info", out, screenInfoSize)
		}
		fullscreen := int32(0)
		if info.Fullscreen {
			fullscreen = 1
		}
		writeI32s("screen_info", mem, out+8, info.Depth, info.DepthPerComponent, fullscreen)
		writeRect("screen_info", mem, out+20, info.AvailableRect)
		writeRect("screen_info", mem, out+36, info.WorkRect)
	}
	stack[0] = encodeBool(handled)
}

// paint(surface, frame) -> 0 on success, -1 on failure
func (r *Renderer) paint(_ context.Context, _ api.Module, stack []uint64) {
	h, ok := r.handler("paint", stack)
	if !ok {
		stack[0] = api.EncodeI32(-1)
		return
	}
	if err := r.deliverFrame(h, uint64(api.DecodeU32(stack[1]))); err != nil {
		Logger().Warn("paint failed", zap.Uint32("surface", api.DecodeU32(stack[0])), zap.Error(err))
		r.paintErr = err
		stack[0] = api.EncodeI32(-1)
		return
	}
	stack[0] = api.EncodeI32(0)
}

// deliverFrame reads the frame descriptor at addr through the memory-view
// binder and dispatches it. Pixels and rects are passed without copying.
func (r *Renderer) deliverFrame(h browser.RenderHandler, addr uint64) error {
	desc, err := r.binder.View(addr).Bind(frameDescriptorSize)
	if err != nil {
		return err
	}

	var hdr [frameSlots - frameSlotRectCount]int32
	for i := range hdr {
		if hdr[i], err = desc.Int32(frameSlotRectCount + i); err != nil {
			return err
		}
	}
	count, width, height, popup := hdr[0], hdr[1], hdr[2], hdr[3]
	if count < 0 || width <= 0 || height <= 0 {
		return errors.New(errors.PhaseHost, errors.KindInvalidInput).
			Op("paint").
			Detail("frame %dx%d with %d dirty rects", width, height, count).
			Build()
	}
	size := int64(width) * int64(height) * bytesPerPixel
	if size > math.MaxUint32 || int64(count)*rectSize > math.MaxUint32 {
		return errors.New(errors.PhaseHost, errors.KindInvalidInput).
			Op("paint").
			Detail("frame %dx%d does not fit guest memory", width, height).
			Build()
	}

	pixelView, err := desc.Pointer(frameSlotPixels)
	if err != nil {
		return err
	}
	if _, err := pixelView.Bind(uint32(size)); err != nil {
		return err
	}
	pixels, err := pixelView.Bytes()
	if err != nil {
		return err
	}

	var dirty []surface.Rect
	if count > 0 {
		rectView, err := desc.Pointer(frameSlotRects)
		if err != nil {
			return err
		}
		if _, err := rectView.WithElementShift(2).Bind(uint32(count) * rectSize); err != nil {
			return err
		}
		dirty = make([]surface.Rect, count)
		for i := range dirty {
			var f [4]int32
			for k := range f {
				if f[k], err = rectView.Int32(i*4 + k); err != nil {
					return err
				}
			}
			dirty[i] = surface.Rect{X: f[0], Y: f[1], Width: f[2], Height: f[3]}
		}
	}

	return h.OnPaint(popup != 0, dirty, pixels, width, height)
}

// popup_show(surface, show)
func (r *Renderer) popupShow(_ context.Context, _ api.Module, stack []uint64) {
	if h, ok := r.handler("popup_show", stack); ok {
		h.OnPopupShow(api.DecodeI32(stack[1]) != 0)
	}
}

// popup_size(surface, rect)
func (r *Renderer) popupSize(_ context.Context, mod api.Module, stack []uint64) {
	if h, ok := r.handler("popup_size", stack); ok {
		h.OnPopupSize(readRect("popup_size", mod.Memory(), api.DecodeU32(stack[1])))
	}
}

// cursor_change(surface, type) -> handled
func (r *Renderer) cursorChange(_ context.Context, _ api.Module, stack []uint64) {
	h, ok := r.handler("cursor_change", stack)
	if !ok {
		stack[0] = encodeBool(false)
		return
	}
	stack[0] = encodeBool(h.OnCursorChange(browser.CursorType(api.DecodeI32(stack[1]))))
}

// start_dragging(surface, allowed, x, y) -> handled
func (r *Renderer) startDragging(_ context.Context, _ api.Module, stack []uint64) {
	h, ok := r.handler("start_dragging", stack)
	if !ok {
		stack[0] = encodeBool(false)
		return
	}
	allowed := browser.DragOperation(api.DecodeU32(stack[1]))
	stack[0] = encodeBool(h.StartDragging(browser.DragData{}, allowed, api.DecodeI32(stack[2]), api.DecodeI32(stack[3])))
}

// update_drag_cursor(surface, op)
func (r *Renderer) updateDragCursor(_ context.Context, _ api.Module, stack []uint64) {
	if h, ok := r.handler("update_drag_cursor", stack); ok {
		h.UpdateDragCursor(browser.DragOperation(api.DecodeU32(stack[1])))
	}
}
