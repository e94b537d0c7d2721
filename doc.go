// Package osrruntime hosts off-screen rendered browser surfaces whose pixels
// live in memory owned by a native renderer.
//
// # Architecture Overview
//
// The module is organized into packages with distinct responsibilities:
//
//	osrruntime/          Module overview
//	├── memview/         Zero-copy typed views over foreign memory
//	├── surface/         Geometry and screen state of one surface
//	├── paint/           Copy-on-write paint listener bus
//	├── browser/         Creation lifecycle and render-handler callbacks
//	├── host/            wazero host module binding a renderer guest to browsers
//	├── config/          TOML, YAML and environment configuration with reload
//	├── errors/          Structured error types
//	└── cmd/osrhost/     Renderer driver with frame dumps and a TUI
//
// # Quick Start
//
// Load a renderer guest and paint one frame:
//
//	r, err := host.Load(ctx, wasmBytes, host.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close(ctx)
//
//	b, handle := r.NewBrowser(client, browser.Options{URL: "about:blank"})
//	b.Surface().SetViewRect(surface.Rect{Width: 800, Height: 600})
//	b.AddPaintListener(paint.ListenerFunc(func(e *paint.Event) error {
//	    // e.Buffer aliases renderer memory; copy it to keep it.
//	    return nil
//	}))
//
//	if err := b.CreateImmediately(); err != nil {
//	    log.Fatal(err)
//	}
//	if err := r.RenderFrame(ctx, handle); err != nil {
//	    log.Fatal(err)
//	}
//
// # Memory Views
//
// A renderer hands out frame buffers as addresses. The memview package
// resolves the renderer's mem_byte_buffer facility once and turns an address
// and a length into a byte slice aliasing that memory; reads through a
// [memview.View] then cost no copies. A renderer that does not provide the
// facility cannot be hosted.
package osrruntime
