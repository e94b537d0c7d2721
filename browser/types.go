package browser

import "github.com/wippyai/osr-runtime/surface"

// Client receives browser-level notifications.
type Client interface {
	// OnAfterParentChanged is called once the surface has been attached to
	// its host view.
	OnAfterParentChanged(b *Browser)
}

// RequestContext scopes cookies, cache and preferences for a browser.
// A nil context selects the global one.
type RequestContext struct {
	Name      string
	CachePath string
}

// Settings are per-browser rendering settings.
type Settings struct {
	// WindowlessFrameRate caps OnPaint calls per second. 0 leaves the
	// renderer's default.
	WindowlessFrameRate int32
	// BackgroundColor is ARGB; only used when the surface is opaque.
	BackgroundColor uint32
}

// CreateParams is the normal creation call.
type CreateParams struct {
	Client       Client
	Context      *RequestContext
	URL          string
	Settings     Settings
	WindowHandle uint64
	OffScreen    bool
	Transparent  bool
}

// DevToolsParams is the dev-tools creation call for a browser with a parent.
type DevToolsParams struct {
	Parent       *Browser
	Client       Client
	Settings     Settings
	WindowHandle uint64
	InspectAt    surface.Point
	OffScreen    bool
	Transparent  bool
}

// Native is the native side of one browser.
//
// Creation calls only request creation; completion is observed through
// Handle becoming non-zero.
type Native interface {
	CreateBrowser(p CreateParams) error
	CreateDevTools(p DevToolsParams) error
	Handle() uint64
	SetFocus(focus bool)
}

// DragOperation is a bitmask of allowed drag-and-drop operations.
type DragOperation uint32

const (
	DragOperationNone    DragOperation = 0
	DragOperationCopy    DragOperation = 1
	DragOperationLink    DragOperation = 2
	DragOperationGeneric DragOperation = 4
	DragOperationPrivate DragOperation = 8
	DragOperationMove    DragOperation = 16
	DragOperationDelete  DragOperation = 32
	DragOperationEvery   DragOperation = 0xffffffff
)

// DragData describes what is being dragged.
type DragData struct {
	LinkURL      string
	FragmentText string
	FileNames    []string
}

// CursorType identifies a renderer cursor shape.
type CursorType int32
