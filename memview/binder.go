package memview

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/osr-runtime/errors"
)

// ViewFuncName is the name under which sources expose the memory-view facility.
const ViewFuncName = "mem_byte_buffer"

// ViewFunc turns a foreign address and a length into a byte slice aliasing
// that memory. The slice is owned by the foreign side and is never released
// by this package.
type ViewFunc func(address uint64, length uint32) ([]byte, error)

// Source provides named foreign functions.
type Source interface {
	// Name identifies the source in diagnostics.
	Name() string
	// Lookup returns the function registered under name.
	Lookup(name string) (ViewFunc, bool)
}

// Binder holds a resolved memory-view facility.
type Binder struct {
	fn     ViewFunc
	source string
}

// Resolve looks up the memory-view facility in src.
// A missing facility is logged and reported as binding_unavailable.
func Resolve(src Source) (*Binder, error) {
	if src == nil {
		return nil, errors.BindingUnavailable(ViewFuncName, "<nil source>")
	}
	fn, ok := src.Lookup(ViewFuncName)
	if !ok || fn == nil {
		Logger().Error("memory-view facility unavailable",
			zap.String("facility", ViewFuncName),
			zap.String("source", src.Name()),
		)
		return nil, errors.BindingUnavailable(ViewFuncName, src.Name())
	}
	Logger().Debug("memory-view facility resolved", zap.String("source", src.Name()))
	return &Binder{fn: fn, source: src.Name()}, nil
}

// Source returns the name of the source the facility was resolved from.
func (b *Binder) Source() string {
	return b.source
}

// Invoke calls the facility once.
func (b *Binder) Invoke(address uint64, length uint32) ([]byte, error) {
	data, err := b.fn(address, length)
	if err != nil {
		return nil, errors.BindingInvocation(address, length, err)
	}
	if uint32(len(data)) < length {
		return nil, errors.BindingInvocation(address, length,
			errors.OutOfBounds(errors.PhaseBind, "[]byte", int(length), len(data)))
	}
	return data[:length:length], nil
}

// View returns an unbound view over address that binds through b.
func (b *Binder) View(address uint64) *View {
	return &View{address: address, binder: b, shift: DefaultElementShift}
}

var (
	defaultMu     sync.Mutex
	defaultOnce   sync.Once
	defaultSource Source
	defaultUsed   bool
	defaultBinder *Binder
	defaultErr    error
)

// Install sets the source the process-wide binder resolves from.
// It must be called at most once, before the first use of [Default].
func Install(src Source) error {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultUsed {
		return errors.InvalidState(errors.PhaseResolve, "memview.Install",
			"process binder already resolved")
	}
	if defaultSource != nil {
		return errors.InvalidState(errors.PhaseResolve, "memview.Install",
			"process source already installed")
	}
	defaultSource = src
	return nil
}

// Default returns the process-wide binder, resolving it on first call.
// A resolution failure is permanent for the life of the process.
func Default() (*Binder, error) {
	defaultOnce.Do(func() {
		defaultMu.Lock()
		src := defaultSource
		defaultUsed = true
		defaultMu.Unlock()

		if src == nil {
			src = Process()
		}
		defaultBinder, defaultErr = Resolve(src)
	})
	return defaultBinder, defaultErr
}
