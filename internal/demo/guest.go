// Package demo builds a small renderer guest that paints a gradient into its
// own linear memory and reports it through the osr host module.
package demo

import "github.com/wippyai/osr-runtime/internal/wasmbin"

// Guest memory layout.
const (
	ViewRectAddr     = 0x100
	FrameCounterAddr = 0x200
	FocusAddr        = 0x204
	DescriptorAddr   = 0x400
	RectsAddr        = 0x500
	PixelsAddr       = 0x10000

	// MaxDimension clamps the painted width and height.
	MaxDimension = 512

	// HandleBase is added to the surface handle to form the native handle
	// returned by the creation exports.
	HandleBase = 1000

	memoryPages = (PixelsAddr + MaxDimension*MaxDimension*4) / 65536
)

// Options select which optional exports the guest provides.
type Options struct {
	// Creation adds create_browser, create_devtools and set_focus.
	Creation bool
}

const (
	typeSurfaceArg   uint32 = iota // (i32, i32)
	typePaint                      // (i32, i32) -> i32
	typeViewBuffer                 // (i64, i32) -> i32
	typeRenderFrame                // (i32)
	typeCreate                     // (i32, i32) -> i64
	typeCreateDevTool              // (i32, i64, i32, i32, i32) -> i64
)

const (
	funcViewRect uint32 = iota
	funcPaint
	funcViewBuffer
	funcRenderFrame
	funcCreateBrowser
	funcCreateDevTools
	funcSetFocus
)

// Guest encodes the demo renderer.
//
// render_frame(surface) asks the host for the view rect, fills a
// width x height ARGB frame whose colour advances with a frame counter, and
// paints it with one dirty rect covering the whole frame.
func Guest(opts Options) []byte {
	i32, i64 := wasmbin.I32, wasmbin.I64

	m := &wasmbin.Module{
		Types: []wasmbin.FuncType{
			typeSurfaceArg:    {Params: []wasmbin.ValType{i32, i32}},
			typePaint:         {Params: []wasmbin.ValType{i32, i32}, Results: []wasmbin.ValType{i32}},
			typeViewBuffer:    {Params: []wasmbin.ValType{i64, i32}, Results: []wasmbin.ValType{i32}},
			typeRenderFrame:   {Params: []wasmbin.ValType{i32}},
			typeCreate:        {Params: []wasmbin.ValType{i32, i32}, Results: []wasmbin.ValType{i64}},
			typeCreateDevTool: {Params: []wasmbin.ValType{i32, i64, i32, i32, i32}, Results: []wasmbin.ValType{i64}},
		},
		Imports: []wasmbin.Import{
			{Module: "osr", Name: "view_rect", Type: typeSurfaceArg},
			{Module: "osr", Name: "paint", Type: typePaint},
		},
		Funcs: []wasmbin.Func{
			{Type: typeViewBuffer, Body: viewBuffer()},
			{Type: typeRenderFrame, Locals: []wasmbin.ValType{i32, i32, i32, i32, i32}, Body: renderFrame()},
		},
		MemoryPages: memoryPages + 1,
		Exports: []wasmbin.Export{
			{Name: "memory", Kind: wasmbin.ExportMemory},
			{Name: "mem_byte_buffer", Kind: wasmbin.ExportFunc, Index: funcViewBuffer},
			{Name: "render_frame", Kind: wasmbin.ExportFunc, Index: funcRenderFrame},
		},
	}

	if opts.Creation {
		var create, devtools, focus wasmbin.Code
		create.LocalGet(0).I64ExtendI32U().I64Const(HandleBase).I64Add()
		devtools.LocalGet(0).I64ExtendI32U().I64Const(HandleBase).I64Add()
		focus.I32Const(FocusAddr).LocalGet(1).I32Store(0)

		m.Funcs = append(m.Funcs,
			wasmbin.Func{Type: typeCreate, Body: create.Body()},
			wasmbin.Func{Type: typeCreateDevTool, Body: devtools.Body()},
			wasmbin.Func{Type: typeSurfaceArg, Body: focus.Body()},
		)
		m.Exports = append(m.Exports,
			wasmbin.Export{Name: "create_browser", Kind: wasmbin.ExportFunc, Index: funcCreateBrowser},
			wasmbin.Export{Name: "create_devtools", Kind: wasmbin.ExportFunc, Index: funcCreateDevTools},
			wasmbin.Export{Name: "set_focus", Kind: wasmbin.ExportFunc, Index: funcSetFocus},
		)
	}

	return m.Encode()
}

// Addresses are linear-memory offsets; the host's bounds check on the
// returned range is the only validation.
func viewBuffer() []byte {
	var c wasmbin.Code
	return c.LocalGet(0).I32WrapI64().Body()
}

func renderFrame() []byte {
	const (
		surface = iota
		width
		height
		i
		n
		color
	)
	var c wasmbin.Code

	c.LocalGet(surface).I32Const(ViewRectAddr).Call(funcViewRect)

	for _, l := range []struct {
		local  uint32
		offset uint32
	}{{width, 8}, {height, 12}} {
		c.I32Const(ViewRectAddr).I32Load(l.offset).LocalSet(l.local)
		c.LocalGet(l.local).I32Const(MaxDimension).
			LocalGet(l.local).I32Const(MaxDimension).I32LtU().
			Select().LocalSet(l.local)
	}

	c.I32Const(FrameCounterAddr).
		I32Const(FrameCounterAddr).I32Load(0).I32Const(1).I32Add().
		I32Store(0)
	c.I32Const(FrameCounterAddr).I32Load(0).I32Const(0x010203).I32Mul().LocalSet(color)

	c.LocalGet(width).LocalGet(height).I32Mul().LocalSet(n)
	c.I32Const(0).LocalSet(i)
	c.Block().Loop().
		LocalGet(i).LocalGet(n).I32GeU().BrIf(1).
		LocalGet(i).I32Const(4).I32Mul().I32Const(PixelsAddr).I32Add().
		LocalGet(color).LocalGet(i).I32Add().I32Const(-0x1000000).I32Or().
		I32Store(0).
		LocalGet(i).I32Const(1).I32Add().LocalSet(i).
		Br(0).
		End().End()

	// Frame descriptor, one 8-byte slot per field.
	c.I32Const(DescriptorAddr).I32Const(PixelsAddr).I32Store(0)
	c.I32Const(DescriptorAddr).I32Const(RectsAddr).I32Store(8)
	c.I32Const(DescriptorAddr).I32Const(1).I32Store(16)
	c.I32Const(DescriptorAddr).LocalGet(width).I32Store(24)
	c.I32Const(DescriptorAddr).LocalGet(height).I32Store(32)
	c.I32Const(DescriptorAddr).I32Const(0).I32Store(40)

	c.I32Const(RectsAddr).I32Const(0).I32Store(0)
	c.I32Const(RectsAddr).I32Const(0).I32Store(4)
	c.I32Const(RectsAddr).LocalGet(width).I32Store(8)
	c.I32Const(RectsAddr).LocalGet(height).I32Store(12)

	c.LocalGet(surface).I32Const(DescriptorAddr).Call(funcPaint).Drop()
	return c.Body()
}
