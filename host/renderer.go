package host

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/osr-runtime/browser"
	"github.com/wippyai/osr-runtime/errors"
	"github.com/wippyai/osr-runtime/memview"
	"github.com/wippyai/osr-runtime/surface"
)

// Guest export names.
const (
	ExportRenderFrame    = "render_frame"
	ExportCreateBrowser  = "create_browser"
	ExportCreateDevTools = "create_devtools"
	ExportSetFocus       = "set_focus"
)

// DefaultGuestName is the instance name used when Options.ModuleName is empty.
const DefaultGuestName = "renderer"

// Options configure a renderer guest.
type Options struct {
	// ModuleName names the guest instance in diagnostics.
	ModuleName string

	// MemoryLimitPages caps guest linear memory in 64KB pages.
	// 0 leaves the wazero default.
	MemoryLimitPages uint32
}

// Renderer hosts one renderer guest and the browsers it paints.
//
// Calls into the guest are serialized. Paint listeners run inside those
// calls and must not call back into the same renderer.
type Renderer struct {
	ctx            context.Context
	rt             wazero.Runtime
	guest          api.Module
	binder         *memview.Binder
	table          *Table
	renderFrame    api.Function
	createBrowser  api.Function
	createDevTools api.Function
	setFocus       api.Function
	paintErr       error
	name           string
	mu             sync.Mutex
}

// Load compiles and instantiates a renderer guest against the osr host
// module and resolves its memory-view facility. A guest that does not
// provide the facility cannot be used.
func Load(ctx context.Context, wasm []byte, opts Options) (*Renderer, error) {
	cfg := wazero.NewRuntimeConfig()
	if opts.MemoryLimitPages > 0 {
		cfg = cfg.WithMemoryLimitPages(opts.MemoryLimitPages)
	}
	name := opts.ModuleName
	if name == "" {
		name = DefaultGuestName
	}

	r := &Renderer{
		ctx:   ctx,
		rt:    wazero.NewRuntimeWithConfig(ctx, cfg),
		table: NewTable(),
		name:  name,
	}
	if err := r.load(ctx, wasm); err != nil {
		_ = r.rt.Close(ctx)
		return nil, err
	}

	Logger().Info("renderer guest loaded",
		zap.String("module", name),
		zap.String("binder", r.binder.Source()),
		zap.Bool("create_browser", r.createBrowser != nil),
		zap.Bool("create_devtools", r.createDevTools != nil),
		zap.Bool("set_focus", r.setFocus != nil),
	)
	return r, nil
}

func (r *Renderer) load(ctx context.Context, wasm []byte) error {
	builder := r.rt.NewHostModuleBuilder(ModuleName)
	for _, f := range r.hostFuncs() {
		builder.NewFunctionBuilder().
			WithGoModuleFunction(f.fn, f.params, f.results).
			Export(f.name)
	}
	if _, err := builder.Instantiate(ctx); err != nil {
		return errors.Wrap(errors.PhaseLoad, errors.KindInstantiation, err, "instantiate osr host module")
	}

	compiled, err := r.rt.CompileModule(ctx, wasm)
	if err != nil {
		return errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "compile renderer guest")
	}
	guest, err := r.rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(r.name))
	if err != nil {
		return errors.Instantiation(err)
	}
	r.guest = guest

	if r.binder, err = memview.Resolve(memview.Guest(ctx, guest)); err != nil {
		return err
	}

	if r.renderFrame, err = r.export(ExportRenderFrame, true, []api.ValueType{i32}, nil); err != nil {
		return err
	}
	if r.createBrowser, err = r.export(ExportCreateBrowser, false,
		[]api.ValueType{i32, i32}, []api.ValueType{i64}); err != nil {
		return err
	}
	if r.createDevTools, err = r.export(ExportCreateDevTools, false,
		[]api.ValueType{i32, i64, i32, i32, i32}, []api.ValueType{i64}); err != nil {
		return err
	}
	r.setFocus, err = r.export(ExportSetFocus, false, []api.ValueType{i32, i32}, nil)
	return err
}

func (r *Renderer) export(name string, required bool, params, results []api.ValueType) (api.Function, error) {
	fn := r.guest.ExportedFunction(name)
	if fn == nil {
		if required {
			return nil, errors.NotFound(errors.PhaseLoad, "guest export", name)
		}
		return nil, nil
	}
	def := fn.Definition()
	if !slices.Equal(def.ParamTypes(), params) || !slices.Equal(def.ResultTypes(), results) {
		return nil, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
			Op("host.Load").
			Path(name).
			Detail("signature %v -> %v, want %v -> %v",
				def.ParamTypes(), def.ResultTypes(), params, results).
			Build()
	}
	return fn, nil
}

// Binder returns the memory-view binder resolved from the guest.
func (r *Renderer) Binder() *memview.Binder {
	return r.binder
}

// Table returns the surface handle table.
func (r *Renderer) Table() *Table {
	return r.table
}

// NewBrowser registers a new uncreated browser painted by this renderer
// and returns it with its surface handle.
func (r *Renderer) NewBrowser(client browser.Client, opts browser.Options) (*browser.Browser, uint32) {
	n := &guestNative{r: r}
	b := browser.New(client, n, opts)
	n.surface = r.table.Insert(b)
	return b, n.surface
}

// NewDevTools registers a dev-tools browser inspecting parent at inspectAt.
func (r *Renderer) NewDevTools(parent *browser.Browser, inspectAt surface.Point, opts browser.Options) (*browser.Browser, uint32) {
	n := &guestNative{r: r}
	b := browser.NewDevTools(parent, n, inspectAt, opts)
	n.surface = r.table.Insert(b)
	return b, n.surface
}

// Browser returns the browser registered under handle.
func (r *Renderer) Browser(handle uint32) (*browser.Browser, bool) {
	return r.table.Get(handle)
}

// Release unregisters handle. Later callbacks for it are ignored.
func (r *Renderer) Release(handle uint32) bool {
	return r.table.Remove(handle)
}

// RenderFrame asks the guest to render one frame of the surface. Paint
// callbacks made during the call are delivered before it returns; the first
// paint failure is returned.
func (r *Renderer) RenderFrame(ctx context.Context, handle uint32) error {
	b, ok := r.table.Get(handle)
	if !ok {
		return errors.NotFound(errors.PhaseHost, "surface", strconv.FormatUint(uint64(handle), 10))
	}
	if b.Handle() == 0 {
		return errors.InvalidState(errors.PhaseHost, "host.RenderFrame",
			fmt.Sprintf("surface %d has not been created", handle))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.paintErr = nil
	_, err := r.renderFrame.Call(ctx, api.EncodeU32(handle))
	paintErr := r.paintErr
	r.paintErr = nil
	if err != nil {
		return fmt.Errorf("%s: %w", ExportRenderFrame, err)
	}
	return paintErr
}

// Close releases the guest and the wazero runtime.
func (r *Renderer) Close(ctx context.Context) error {
	return r.rt.Close(ctx)
}

func (r *Renderer) call(fn api.Function, params ...uint64) ([]uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn.Call(r.ctx, params...)
}

// guestNative is the native side of one browser, backed by the renderer
// guest's optional creation exports. Without them creation completes in
// the host and the native handle is the surface handle.
type guestNative struct {
	r       *Renderer
	surface uint32
	handle  uint64
	mu      sync.Mutex
}

func (n *guestNative) Handle() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.handle
}

func (n *guestNative) setHandle(h uint64) {
	n.mu.Lock()
	n.handle = h
	n.mu.Unlock()
}

func checkOffScreen(op string, windowHandle uint64, offScreen bool) error {
	if windowHandle != 0 || !offScreen {
		return errors.New(errors.PhaseLifecycle, errors.KindInvalidInput).
			Op(op).
			Detail("windowed creation (handle %d, off-screen %t) is not supported", windowHandle, offScreen).
			Build()
	}
	return nil
}

func (n *guestNative) CreateBrowser(p browser.CreateParams) error {
	if err := checkOffScreen("host.CreateBrowser", p.WindowHandle, p.OffScreen); err != nil {
		return err
	}
	if n.r.createBrowser == nil {
		n.setHandle(uint64(n.surface))
		return nil
	}
	res, err := n.r.call(n.r.createBrowser, api.EncodeU32(n.surface), encodeBool(p.Transparent))
	return n.created(ExportCreateBrowser, res, err)
}

func (n *guestNative) CreateDevTools(p browser.DevToolsParams) error {
	if err := checkOffScreen("host.CreateDevTools", p.WindowHandle, p.OffScreen); err != nil {
		return err
	}
	if n.r.createDevTools == nil {
		n.setHandle(uint64(n.surface))
		return nil
	}
	var parent uint64
	if p.Parent != nil {
		parent = p.Parent.Handle()
	}
	res, err := n.r.call(n.r.createDevTools,
		api.EncodeU32(n.surface),
		parent,
		api.EncodeI32(p.InspectAt.X),
		api.EncodeI32(p.InspectAt.Y),
		encodeBool(p.Transparent),
	)
	return n.created(ExportCreateDevTools, res, err)
}

func (n *guestNative) created(export string, res []uint64, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", export, err)
	}
	if len(res) == 0 || res[0] == 0 {
		return errors.New(errors.PhaseLifecycle, errors.KindInstantiation).
			Op(export).
			Detail("guest refused to create surface %d", n.surface).
			Build()
	}
	n.setHandle(res[0])
	Logger().Debug("surface created",
		zap.Uint32("surface", n.surface),
		zap.Uint64("handle", res[0]),
	)
	return nil
}

func (n *guestNative) SetFocus(focus bool) {
	if n.r.setFocus == nil {
		return
	}
	if _, err := n.r.call(n.r.setFocus, api.EncodeU32(n.surface), encodeBool(focus)); err != nil {
		Logger().Warn("set focus failed",
			zap.Uint32("surface", n.surface),
			zap.Bool("focus", focus),
			zap.Error(err),
		)
	}
}

func encodeBool(v bool) uint64 {
	if v {
		return api.EncodeI32(1)
	}
	return api.EncodeI32(0)
}
