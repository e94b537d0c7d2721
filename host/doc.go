// Package host runs a renderer guest under wazero and binds it to
// off-screen browsers.
//
// The guest imports the osr host module, through which it queries surface
// geometry and delivers frames:
//
//	view_rect(surface, out)
//	screen_point(surface, x, y, out)
//	screen_info(surface, out) -> handled
//	paint(surface, frame) -> status
//	popup_show(surface, show)
//	popup_size(surface, rect)
//	cursor_change(surface, type) -> handled
//	start_dragging(surface, allowed, x, y) -> handled
//	update_drag_cursor(surface, op)
//
// Pointers are guest linear-memory offsets. A paint frame is a descriptor of
// six 8-byte slots (pixels, rects, rect count, width, height, popup) read
// through the memory-view facility the guest exports as mem_byte_buffer, so
// pixel data reaches paint listeners without a copy.
//
// The guest must export memory, mem_byte_buffer and render_frame(surface).
// It may export create_browser, create_devtools and set_focus; without them
// creation completes in the host and the native handle is the surface
// handle.
package host
