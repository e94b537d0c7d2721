// Package paint fans rendered frames out to subscribers.
//
// A Bus keeps its listeners in a copy-on-write slice: registration changes
// publish a new slice, and each dispatch iterates the slice it loaded when it
// started. Dispatch never takes the registration lock.
package paint

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/wippyai/osr-runtime/errors"
	"github.com/wippyai/osr-runtime/surface"
)

// Event is one delivered frame. Buffer aliases renderer-owned memory and is
// only valid for the duration of the OnPaint call; copy what must outlive it.
type Event struct {
	Buffer     []byte
	DirtyRects []surface.Rect
	Surface    uint64
	Width      int32
	Height     int32
	Popup      bool
}

// Listener receives frames. Listeners are matched by ==, so implementations
// should be pointer types.
type Listener interface {
	OnPaint(ev *Event) error
}

type funcListener struct {
	fn func(*Event) error
}

func (l *funcListener) OnPaint(ev *Event) error {
	return l.fn(ev)
}

// ListenerFunc adapts fn to a Listener. Each call returns a distinct
// listener; keep it to remove the registration later.
func ListenerFunc(fn func(*Event) error) Listener {
	return &funcListener{fn: fn}
}

// Bus is the paint listener list of one surface.
type Bus struct {
	listeners atomic.Pointer[[]Listener]
	surface   uint64
	mu        sync.Mutex
}

// NewBus returns an empty bus whose events carry surfaceID.
func NewBus(surfaceID uint64) *Bus {
	b := &Bus{surface: surfaceID}
	b.listeners.Store(&[]Listener{})
	return b
}

func (b *Bus) snapshot() []Listener {
	return *b.listeners.Load()
}

// Add appends l. The same listener may be added more than once.
func (b *Bus) Add(l Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()

	cur := b.snapshot()
	next := make([]Listener, len(cur), len(cur)+1)
	copy(next, cur)
	next = append(next, l)
	b.listeners.Store(&next)
}

// Set replaces every registration with l.
func (b *Bus) Set(l Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()

	next := []Listener{l}
	b.listeners.Store(&next)
}

// Remove drops the first registration of l and reports whether one existed.
func (b *Bus) Remove(l Listener) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	cur := b.snapshot()
	idx := slices.Index(cur, l)
	if idx < 0 {
		return false
	}
	next := make([]Listener, 0, len(cur)-1)
	next = append(next, cur[:idx]...)
	next = append(next, cur[idx+1:]...)
	b.listeners.Store(&next)
	return true
}

// Len returns the number of registrations.
func (b *Bus) Len() int {
	return len(b.snapshot())
}

// Dispatch delivers one frame to the listeners registered when it starts, in
// registration order. The first listener error stops delivery and is
// returned; the failing listener stays registered.
func (b *Bus) Dispatch(popup bool, dirty []surface.Rect, buffer []byte, width, height int32) error {
	listeners := b.snapshot()
	if len(listeners) == 0 {
		return nil
	}

	ev := &Event{
		Surface:    b.surface,
		Popup:      popup,
		DirtyRects: dirty,
		Buffer:     buffer,
		Width:      width,
		Height:     height,
	}
	for i, l := range listeners {
		if err := l.OnPaint(ev); err != nil {
			return errors.Listener(i, err)
		}
	}
	return nil
}
