package browser

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/osr-runtime/errors"
)

// State is the creation state of a browser's native side.
type State int

const (
	// StateUninitialized means no creation call has been issued.
	StateUninitialized State = iota
	// StateCreationRequested means a creation call is pending.
	StateCreationRequested
	// StateCreated means the native handle exists.
	StateCreated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateCreationRequested:
		return "creation_requested"
	case StateCreated:
		return "created"
	default:
		return "unknown"
	}
}

// Lifecycle issues the single creation call of a browser and manufactures
// the one-shot parent-changed notification that an off-screen surface,
// having no window to reparent, would otherwise never send.
type Lifecycle struct {
	browser     *Browser
	mu          sync.Mutex
	requested   bool
	justCreated bool
}

func newLifecycle(b *Browser) *Lifecycle {
	return &Lifecycle{browser: b}
}

// State reports the creation state.
func (l *Lifecycle) State() State {
	if l.browser.native.Handle() != 0 {
		return StateCreated
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.requested {
		return StateCreationRequested
	}
	return StateUninitialized
}

// JustCreated reports whether the parent-changed notification is still owed.
func (l *Lifecycle) JustCreated() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.justCreated
}

// CreateImmediately requests creation now and arms the parent-changed
// notification for the first EnsureCreated(true) after creation completes.
func (l *Lifecycle) CreateImmediately() error {
	l.mu.Lock()
	l.justCreated = true
	l.mu.Unlock()
	return l.EnsureCreated(false)
}

// EnsureCreated issues the creation call if the native handle does not exist
// and none is pending. Once the handle exists, a call with hasParent set
// delivers the armed parent-changed notification and grants focus, once.
func (l *Lifecycle) EnsureCreated(hasParent bool) error {
	b := l.browser

	l.mu.Lock()
	if b.native.Handle() == 0 {
		if l.requested {
			l.mu.Unlock()
			return nil
		}
		l.requested = true
		l.mu.Unlock()
		return l.create()
	}
	if !hasParent || !l.justCreated {
		l.mu.Unlock()
		return nil
	}
	l.justCreated = false
	l.mu.Unlock()

	Logger().Debug("delivering parent-changed notification", zap.Uint64("browser", b.id))
	if b.client != nil {
		b.client.OnAfterParentChanged(b)
	}
	b.native.SetFocus(true)
	return nil
}

func (l *Lifecycle) create() error {
	b := l.browser

	var err error
	if b.parent != nil {
		Logger().Debug("requesting dev-tools browser",
			zap.Uint64("browser", b.id),
			zap.Uint64("parent", b.parent.id),
		)
		err = b.native.CreateDevTools(DevToolsParams{
			Parent:      b.parent,
			Client:      b.client,
			Settings:    b.settings,
			InspectAt:   b.inspectAt,
			OffScreen:   true,
			Transparent: b.state.Transparent(),
		})
	} else {
		Logger().Debug("requesting browser",
			zap.Uint64("browser", b.id),
			zap.String("url", b.url),
		)
		err = b.native.CreateBrowser(CreateParams{
			Client:      b.client,
			Context:     b.context,
			URL:         b.url,
			Settings:    b.settings,
			OffScreen:   true,
			Transparent: b.state.Transparent(),
		})
	}
	if err != nil {
		l.mu.Lock()
		l.requested = false
		l.mu.Unlock()
		Logger().Warn("native browser creation failed", zap.Uint64("browser", b.id), zap.Error(err))
		return errors.New(errors.PhaseLifecycle, errors.KindInstantiation).
			Op("browser.EnsureCreated").
			Value(b.id).
			Cause(err).
			Detail("create native browser").
			Build()
	}
	return nil
}
