// Package browser implements an off-screen browser surface: its creation
// lifecycle and the render-handler callbacks the native renderer drives.
//
// A Browser owns its geometry ([surface.State]) and its paint listeners
// ([paint.Bus]). The renderer talks to it only through the [RenderHandler]
// returned by [Browser.RenderHandler].
package browser

import (
	"sync/atomic"

	"github.com/wippyai/osr-runtime/paint"
	"github.com/wippyai/osr-runtime/surface"
)

var nextID atomic.Uint64

// Options configure a new browser.
type Options struct {
	Context     *RequestContext
	URL         string
	Settings    Settings
	Transparent bool
}

// Browser is an off-screen rendered browser.
type Browser struct {
	client    Client
	native    Native
	context   *RequestContext
	parent    *Browser
	state     *surface.State
	paint     *paint.Bus
	lifecycle *Lifecycle
	handler   *renderHandler
	url       string
	settings  Settings
	inspectAt surface.Point
	id        uint64
}

// New returns an uncreated browser. native must not be nil.
func New(client Client, native Native, opts Options) *Browser {
	return newBrowser(client, native, nil, surface.Point{}, opts)
}

// NewDevTools returns an uncreated dev-tools browser inspecting parent at
// inspectAt. It shares the parent's client.
func NewDevTools(parent *Browser, native Native, inspectAt surface.Point, opts Options) *Browser {
	return newBrowser(parent.client, native, parent, inspectAt, opts)
}

func newBrowser(client Client, native Native, parent *Browser, inspectAt surface.Point, opts Options) *Browser {
	id := nextID.Add(1)
	b := &Browser{
		id:        id,
		client:    client,
		native:    native,
		context:   opts.Context,
		parent:    parent,
		url:       opts.URL,
		settings:  opts.Settings,
		inspectAt: inspectAt,
		state:     surface.NewState(opts.Transparent),
		paint:     paint.NewBus(id),
	}
	b.lifecycle = newLifecycle(b)
	b.handler = &renderHandler{b: b}
	return b
}

// ID returns the process-unique browser id.
func (b *Browser) ID() uint64 { return b.id }

// URL returns the start URL.
func (b *Browser) URL() string { return b.url }

// Client returns the browser's client.
func (b *Browser) Client() Client { return b.client }

// Parent returns the inspected browser of a dev-tools browser, or nil.
func (b *Browser) Parent() *Browser { return b.parent }

// InspectAt returns the dev-tools inspect point.
func (b *Browser) InspectAt() surface.Point { return b.inspectAt }

// RequestContext returns the request context, nil for the global one.
func (b *Browser) RequestContext() *RequestContext { return b.context }

// Settings returns the browser settings.
func (b *Browser) Settings() Settings { return b.settings }

// Handle returns the native handle, 0 until creation completes.
func (b *Browser) Handle() uint64 { return b.native.Handle() }

// Surface returns the render geometry. Window and layout code mutate it.
func (b *Browser) Surface() *surface.State { return b.state }

// Lifecycle returns the creation state machine.
func (b *Browser) Lifecycle() *Lifecycle { return b.lifecycle }

// RenderHandler returns the callback surface for the native renderer.
func (b *Browser) RenderHandler() RenderHandler { return b.handler }

// CreateImmediately requests native creation now.
func (b *Browser) CreateImmediately() error { return b.lifecycle.CreateImmediately() }

// EnsureCreated requests creation if needed, or delivers the pending
// parent-changed notification; see [Lifecycle.EnsureCreated].
func (b *Browser) EnsureCreated(hasParent bool) error { return b.lifecycle.EnsureCreated(hasParent) }

// AddPaintListener appends a frame listener.
func (b *Browser) AddPaintListener(l paint.Listener) { b.paint.Add(l) }

// SetPaintListener replaces all frame listeners with l.
func (b *Browser) SetPaintListener(l paint.Listener) { b.paint.Set(l) }

// RemovePaintListener removes the first registration of l.
func (b *Browser) RemovePaintListener(l paint.Listener) bool { return b.paint.Remove(l) }
