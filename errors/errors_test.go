package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseRead,
				Kind:   KindOutOfBounds,
				Op:     "memview.Int64",
				Path:   []string{"frame", "rects"},
				GoType: "int64",
				Detail: "past extent",
			},
			contains: []string{"[read]", "out_of_bounds", "memview.Int64", "frame.rects", "int64", "past extent"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseBind,
				Kind:  KindBindingInvocation,
			},
			contains: []string{"[bind]", "binding_invocation"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseRender,
				Kind:   KindListener,
				Detail: "paint listener 0 failed",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[render]", "listener", "paint listener 0 failed", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := BindingInvocation(0x1000, 64, cause)

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not reach cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseRead,
		Kind:  KindUnboundAccess,
	}

	if !err.Is(&Error{Phase: PhaseRead, Kind: KindUnboundAccess}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseBind, Kind: KindUnboundAccess}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseRead, Kind: KindOutOfBounds}) {
		t.Error("Is should not match different kind")
	}
	if !errors.Is(err, ErrUnboundAccess) {
		t.Error("kind-only sentinel should match any phase")
	}
	if errors.Is(err, ErrBindingUnavailable) {
		t.Error("sentinel of another kind should not match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseHost, KindInvalidInput).
		Op("host.paint").
		Path("frame", "width").
		GoType("int32").
		Value(-4).
		Cause(cause).
		Detail("expected %s, got %d", "positive", -4).
		Build()

	if err.Phase != PhaseHost {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseHost)
	}
	if err.Kind != KindInvalidInput {
		t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidInput)
	}
	if err.Op != "host.paint" {
		t.Errorf("Op = %q, want host.paint", err.Op)
	}
	if len(err.Path) != 2 || err.Path[0] != "frame" || err.Path[1] != "width" {
		t.Errorf("Path = %v, want [frame width]", err.Path)
	}
	if err.GoType != "int32" {
		t.Errorf("GoType = %v, want 'int32'", err.GoType)
	}
	if err.Value != -4 {
		t.Errorf("Value = %v, want -4", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected positive, got -4" {
		t.Errorf("Detail = %v", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name  string
		err   *Error
		phase Phase
		kind  Kind
	}{
		{"BindingUnavailable", BindingUnavailable("mem_byte_buffer", "process"), PhaseResolve, KindBindingUnavailable},
		{"BindingInvocation", BindingInvocation(1, 2, errors.New("x")), PhaseBind, KindBindingInvocation},
		{"UnboundAccess", UnboundAccess("memview.Int8", 0x10), PhaseRead, KindUnboundAccess},
		{"Unsupported", Unsupported(PhaseRender, "screenshot"), PhaseRender, KindUnsupported},
		{"OutOfBounds", OutOfBounds(PhaseRead, "int32", 12, 8), PhaseRead, KindOutOfBounds},
		{"InvalidState", InvalidState(PhaseBind, "memview.Bind", "already bound"), PhaseBind, KindInvalidState},
		{"InvalidInput", InvalidInput(PhaseConfig, "bad"), PhaseConfig, KindInvalidInput},
		{"NotFound", NotFound(PhaseHost, "surface", "7"), PhaseHost, KindNotFound},
		{"Listener", Listener(2, errors.New("x")), PhaseRender, KindListener},
		{"Instantiation", Instantiation(errors.New("x")), PhaseLoad, KindInstantiation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Phase != tt.phase {
				t.Errorf("Phase = %v, want %v", tt.err.Phase, tt.phase)
			}
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", tt.err.Kind, tt.kind)
			}
		})
	}

	if err := UnboundAccess("memview.Int8", 0x10); !strings.Contains(err.Error(), "0x10") {
		t.Errorf("UnboundAccess message %q should name the address", err.Error())
	}
	if err := OutOfBounds(PhaseRead, "int32", 12, 8); err.Value != 12 {
		t.Errorf("Value = %v, want 12", err.Value)
	}
}
