package host

import (
	"sync"

	"github.com/wippyai/osr-runtime/browser"
)

// Table maps guest-visible surface handles to browsers.
// Handles start at 1; 0 is never valid. Freed handles are reused.
type Table struct {
	entries  []*browser.Browser
	freeList []uint32
	mu       sync.RWMutex
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		entries:  make([]*browser.Browser, 0, 8),
		freeList: make([]uint32, 0, 4),
	}
}

// Insert stores b and returns its handle.
func (t *Table) Insert(b *browser.Browser) uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n := len(t.freeList); n > 0 {
		handle := t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
		t.entries[handle-1] = b
		return handle
	}

	t.entries = append(t.entries, b)
	return uint32(len(t.entries))
}

// Get retrieves a browser by handle.
func (t *Table) Get(handle uint32) (*browser.Browser, bool) {
	if handle == 0 {
		return nil, false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	idx := handle - 1
	if int(idx) >= len(t.entries) {
		return nil, false
	}
	b := t.entries[idx]
	return b, b != nil
}

// Remove frees handle and reports whether it was in use.
func (t *Table) Remove(handle uint32) bool {
	if handle == 0 {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	idx := handle - 1
	if int(idx) >= len(t.entries) || t.entries[idx] == nil {
		return false
	}
	t.entries[idx] = nil
	t.freeList = append(t.freeList, handle)
	return true
}

// Len returns the number of live handles.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries) - len(t.freeList)
}
