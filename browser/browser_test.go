package browser

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	osrerrors "github.com/wippyai/osr-runtime/errors"
	"github.com/wippyai/osr-runtime/paint"
	"github.com/wippyai/osr-runtime/surface"
)

type fakeNative struct {
	createErr error
	creates   []CreateParams
	devtools  []DevToolsParams
	focus     []bool
	handle    atomic.Uint64
	mu        sync.Mutex
}

func (n *fakeNative) CreateBrowser(p CreateParams) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.creates = append(n.creates, p)
	return n.createErr
}

func (n *fakeNative) CreateDevTools(p DevToolsParams) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.devtools = append(n.devtools, p)
	return n.createErr
}

func (n *fakeNative) Handle() uint64 { return n.handle.Load() }

func (n *fakeNative) SetFocus(focus bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.focus = append(n.focus, focus)
}

func (n *fakeNative) counts() (creates, devtools, focus int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.creates), len(n.devtools), len(n.focus)
}

type fakeClient struct {
	notified []*Browser
	mu       sync.Mutex
}

func (c *fakeClient) OnAfterParentChanged(b *Browser) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notified = append(c.notified, b)
}

func (c *fakeClient) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.notified)
}

func TestCreateImmediately_OneShotNotification(t *testing.T) {
	native := &fakeNative{}
	client := &fakeClient{}
	reqCtx := &RequestContext{Name: "incognito"}
	b := New(client, native, Options{URL: "https://example.com", Transparent: true, Context: reqCtx})

	if got := b.Lifecycle().State(); got != StateUninitialized {
		t.Fatalf("State() = %v, want uninitialized", got)
	}

	if err := b.CreateImmediately(); err != nil {
		t.Fatalf("CreateImmediately: %v", err)
	}
	if got := b.Lifecycle().State(); got != StateCreationRequested {
		t.Errorf("State() = %v, want creation_requested", got)
	}
	if !b.Lifecycle().JustCreated() {
		t.Error("JustCreated() = false after CreateImmediately")
	}

	creates, devtools, _ := native.counts()
	if creates != 1 || devtools != 0 {
		t.Fatalf("creates=%d devtools=%d, want 1/0", creates, devtools)
	}
	p := native.creates[0]
	if p.Client != client || p.URL != "https://example.com" || p.Context != reqCtx {
		t.Errorf("unexpected create params %+v", p)
	}
	if p.WindowHandle != 0 || !p.OffScreen || !p.Transparent {
		t.Errorf("off-screen params wrong: %+v", p)
	}

	// creation still pending: neither a second request nor a notification
	if err := b.EnsureCreated(true); err != nil {
		t.Fatalf("EnsureCreated: %v", err)
	}
	if creates, _, _ := native.counts(); creates != 1 {
		t.Errorf("creates = %d while pending, want 1", creates)
	}
	if client.count() != 0 {
		t.Error("notification delivered before the handle existed")
	}

	native.handle.Store(77)
	if got := b.Lifecycle().State(); got != StateCreated {
		t.Errorf("State() = %v, want created", got)
	}

	if err := b.EnsureCreated(true); err != nil {
		t.Fatalf("EnsureCreated: %v", err)
	}
	if client.count() != 1 || client.notified[0] != b {
		t.Fatalf("notifications = %d, want exactly one for b", client.count())
	}
	if _, _, focus := native.counts(); focus != 1 || !native.focus[0] {
		t.Errorf("focus grants = %v, want [true]", native.focus)
	}
	if b.Lifecycle().JustCreated() {
		t.Error("JustCreated() still set after notification")
	}

	_ = b.EnsureCreated(true)
	if client.count() != 1 {
		t.Errorf("second EnsureCreated(true) delivered %d notifications", client.count()-1)
	}
	if creates, _, focus := native.counts(); creates != 1 || focus != 1 {
		t.Errorf("creates=%d focus=%d after repeat, want 1/1", creates, focus)
	}
}

func TestEnsureCreated_WithoutParentDoesNotNotify(t *testing.T) {
	native := &fakeNative{}
	client := &fakeClient{}
	b := New(client, native, Options{})

	_ = b.CreateImmediately()
	native.handle.Store(1)

	_ = b.EnsureCreated(false)
	if client.count() != 0 {
		t.Fatal("notification delivered without a parent")
	}
	_ = b.EnsureCreated(true)
	if client.count() != 1 {
		t.Errorf("notifications = %d, want 1", client.count())
	}
}

func TestEnsureCreated_LazyPathNeverNotifies(t *testing.T) {
	native := &fakeNative{}
	client := &fakeClient{}
	b := New(client, native, Options{})

	_ = b.EnsureCreated(false)
	native.handle.Store(1)
	_ = b.EnsureCreated(true)
	_ = b.EnsureCreated(true)

	if client.count() != 0 {
		t.Errorf("notifications = %d, want 0 without CreateImmediately", client.count())
	}
	if creates, _, _ := native.counts(); creates != 1 {
		t.Errorf("creates = %d, want 1", creates)
	}
}

func TestEnsureCreated_DevTools(t *testing.T) {
	parentNative := &fakeNative{}
	client := &fakeClient{}
	parent := New(client, parentNative, Options{URL: "https://example.com"})

	native := &fakeNative{}
	at := surface.Point{X: 30, Y: 40}
	dt := NewDevTools(parent, native, at, Options{Transparent: false})

	if err := dt.CreateImmediately(); err != nil {
		t.Fatalf("CreateImmediately: %v", err)
	}
	creates, devtools, _ := native.counts()
	if creates != 0 || devtools != 1 {
		t.Fatalf("creates=%d devtools=%d, want 0/1", creates, devtools)
	}
	p := native.devtools[0]
	if p.Parent != parent || p.Client != client || p.InspectAt != at {
		t.Errorf("unexpected dev-tools params %+v", p)
	}
	if p.WindowHandle != 0 || !p.OffScreen || p.Transparent {
		t.Errorf("off-screen params wrong: %+v", p)
	}
	if dt.Parent() != parent || dt.InspectAt() != at {
		t.Error("dev-tools browser lost its parent or inspect point")
	}
}

func TestEnsureCreated_FailureRollsBack(t *testing.T) {
	boom := errors.New("no gpu process")
	native := &fakeNative{createErr: boom}
	b := New(&fakeClient{}, native, Options{})

	err := b.CreateImmediately()
	if !errors.Is(err, boom) {
		t.Fatalf("expected cause in chain, got %v", err)
	}
	var oe *osrerrors.Error
	if !errors.As(err, &oe) || oe.Phase != osrerrors.PhaseLifecycle {
		t.Errorf("expected lifecycle error, got %v", err)
	}
	if got := b.Lifecycle().State(); got != StateUninitialized {
		t.Errorf("State() = %v after failure, want uninitialized", got)
	}

	native.mu.Lock()
	native.createErr = nil
	native.mu.Unlock()
	if err := b.EnsureCreated(false); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if creates, _, _ := native.counts(); creates != 2 {
		t.Errorf("creates = %d, want 2", creates)
	}
}

func TestEnsureCreated_ConcurrentSingleRequest(t *testing.T) {
	native := &fakeNative{}
	b := New(&fakeClient{}, native, Options{})

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = b.EnsureCreated(false)
		}()
	}
	wg.Wait()

	if creates, _, _ := native.counts(); creates != 1 {
		t.Errorf("creates = %d, want 1", creates)
	}
}

func TestEnsureCreated_ConcurrentSingleNotification(t *testing.T) {
	native := &fakeNative{}
	client := &fakeClient{}
	b := New(client, native, Options{})
	_ = b.CreateImmediately()
	native.handle.Store(5)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = b.EnsureCreated(true)
		}()
	}
	wg.Wait()

	if client.count() != 1 {
		t.Errorf("notifications = %d, want 1", client.count())
	}
}

func TestRenderHandler(t *testing.T) {
	b := New(&fakeClient{}, &fakeNative{}, Options{})
	h := b.RenderHandler()

	if got := h.ViewRect(); got.Width != 1 || got.Height != 1 {
		t.Errorf("default ViewRect() = %v, want 1x1", got)
	}

	b.Surface().SetScreenOrigin(surface.Point{X: 100, Y: 200})
	if got := h.ScreenPoint(surface.Point{X: 10, Y: 20}); got != (surface.Point{X: 110, Y: 220}) {
		t.Errorf("ScreenPoint() = %v, want (110,220)", got)
	}

	b.Surface().SetViewRect(surface.Rect{Width: 640, Height: 480})
	b.Surface().SetScaleFactor(1.5)
	info, ok := h.ScreenInfo()
	if !ok {
		t.Fatal("ScreenInfo() not handled")
	}
	if info.ScaleFactor != 1.5 || info.Fullscreen || info.WorkRect != h.ViewRect() || info.AvailableRect != h.ViewRect() {
		t.Errorf("ScreenInfo() = %+v", info)
	}

	if !h.OnCursorChange(3) {
		t.Error("OnCursorChange() = false")
	}
	if !h.StartDragging(DragData{LinkURL: "https://example.com"}, DragOperationCopy|DragOperationMove, 1, 2) {
		t.Error("StartDragging() = false")
	}
	h.UpdateDragCursor(DragOperationNone)
	h.OnPopupShow(true)
	h.OnPopupSize(surface.Rect{Width: 10, Height: 10})

	img, err := h.CreateScreenshot(context.Background(), true)
	if img != nil {
		t.Error("CreateScreenshot() returned an image")
	}
	if !errors.Is(err, osrerrors.ErrUnsupported) {
		t.Errorf("CreateScreenshot() error = %v, want unsupported", err)
	}
}

func TestRenderHandler_OnPaint(t *testing.T) {
	b := New(&fakeClient{}, &fakeNative{}, Options{})
	h := b.RenderHandler()

	var frames []*paint.Event
	first := paint.ListenerFunc(func(ev *paint.Event) error {
		frames = append(frames, ev)
		return nil
	})
	b.AddPaintListener(first)
	b.AddPaintListener(first)

	buf := make([]byte, 2*2*4)
	if err := h.OnPaint(false, []surface.Rect{{Width: 2, Height: 2}}, buf, 2, 2); err != nil {
		t.Fatalf("OnPaint: %v", err)
	}
	if len(frames) != 2 || frames[0] != frames[1] {
		t.Fatalf("expected one event delivered twice, got %d", len(frames))
	}
	if frames[0].Surface != b.ID() {
		t.Errorf("event surface = %d, want %d", frames[0].Surface, b.ID())
	}

	var last int
	b.SetPaintListener(paint.ListenerFunc(func(*paint.Event) error {
		last++
		return nil
	}))
	_ = h.OnPaint(false, nil, buf, 2, 2)
	if last != 1 || len(frames) != 2 {
		t.Errorf("SetPaintListener should replace all: last=%d frames=%d", last, len(frames))
	}
	if b.RemovePaintListener(first) {
		t.Error("replaced listener should no longer be registered")
	}
}
