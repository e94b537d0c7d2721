package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseResolve   Phase = "resolve"   // memory-view facility lookup
	PhaseBind      Phase = "bind"      // attaching an extent to a view
	PhaseRead      Phase = "read"      // typed reads through a view
	PhaseRender    Phase = "render"    // render-handler callbacks and paint dispatch
	PhaseLifecycle Phase = "lifecycle" // native browser creation
	PhaseHost      Phase = "host"      // host module ABI
	PhaseLoad      Phase = "load"      // renderer guest loading
	PhaseConfig    Phase = "config"    // configuration loading
)

// Kind categorizes the error
type Kind string

const (
	KindBindingUnavailable Kind = "binding_unavailable"
	KindBindingInvocation  Kind = "binding_invocation"
	KindUnboundAccess      Kind = "unbound_access"
	KindUnsupported        Kind = "unsupported"
	KindOutOfBounds        Kind = "out_of_bounds"
	KindInvalidState       Kind = "invalid_state"
	KindInvalidInput       Kind = "invalid_input"
	KindListener           Kind = "listener"
	KindNotFound           Kind = "not_found"
	KindInstantiation      Kind = "instantiation"
)

// Sentinels for errors.Is. They match on Kind alone, whatever the phase.
var (
	ErrBindingUnavailable = &Error{Kind: KindBindingUnavailable}
	ErrBindingInvocation  = &Error{Kind: KindBindingInvocation}
	ErrUnboundAccess      = &Error{Kind: KindUnboundAccess}
	ErrUnsupported        = &Error{Kind: KindUnsupported}
	ErrOutOfBounds        = &Error{Kind: KindOutOfBounds}
	ErrInvalidState       = &Error{Kind: KindInvalidState}
)

// Error is the structured error type used throughout the runtime
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Op     string
	GoType string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Op != "" {
		b.WriteString(" in ")
		b.WriteString(e.Op)
	}

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" {
		b.WriteString(": Go type ")
		b.WriteString(e.GoType)
	}

	if e.Detail != "" {
		if e.GoType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// A target with an empty Phase matches any phase.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase != "" && e.Phase != t.Phase {
		return false
	}
	return e.Kind == t.Kind
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Op sets the failing operation
func (b *Builder) Op(op string) *Builder {
	b.err.Op = op
	return b
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// BindingUnavailable reports that a source lacks the memory-view facility.
func BindingUnavailable(facility, source string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindBindingUnavailable,
		Detail: fmt.Sprintf("%s not provided by %s", facility, source),
		Value:  facility,
	}
}

// BindingInvocation wraps a failure of the resolved facility itself.
func BindingInvocation(address uint64, length uint32, cause error) *Error {
	return &Error{
		Phase:  PhaseBind,
		Kind:   KindBindingInvocation,
		Detail: fmt.Sprintf("view of %d bytes at 0x%x", length, address),
		Value:  address,
		Cause:  cause,
	}
}

// UnboundAccess reports a read through a view that was never bound.
func UnboundAccess(op string, address uint64) *Error {
	return &Error{
		Phase:  PhaseRead,
		Kind:   KindUnboundAccess,
		Op:     op,
		Detail: fmt.Sprintf("view at 0x%x must be bound before it can be read", address),
		Value:  address,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, goType string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		GoType: goType,
		Detail: fmt.Sprintf("byte offset %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// InvalidState creates an invalid state error
func InvalidState(phase Phase, op, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidState,
		Op:     op,
		Detail: detail,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Listener wraps a failure returned by a paint listener.
func Listener(index int, cause error) *Error {
	return &Error{
		Phase:  PhaseRender,
		Kind:   KindListener,
		Detail: fmt.Sprintf("paint listener %d failed", index),
		Value:  index,
		Cause:  cause,
	}
}

// Instantiation creates an instantiation error
func Instantiation(cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInstantiation,
		Detail: "instantiate renderer guest",
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
