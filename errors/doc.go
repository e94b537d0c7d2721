// Package errors provides structured error types for the off-screen render runtime.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the failing operation, a human-readable detail and the cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseRead, errors.KindOutOfBounds).
//		Op("memview.Int64").
//		GoType("int64").
//		Detail("byte offset %d past extent", off).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.BindingUnavailable("mem_byte_buffer", "guest renderer")
//	err := errors.UnboundAccess("memview.Int32", addr)
//
// Kind-only sentinels (ErrBindingUnavailable, ErrUnboundAccess, ...) match any
// phase through errors.Is.
package errors
