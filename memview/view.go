package memview

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/wippyai/osr-runtime/errors"
)

// DefaultElementShift scales offsets to 8-byte elements.
const DefaultElementShift = 3

// View is a typed reader over a foreign address.
//
// A View is not safe for concurrent configuration; call WithElementShift and
// Bind once before sharing it. Reads on a bound view do not mutate it.
type View struct {
	binder  *Binder
	extent  []byte
	address uint64
	shift   uint
	bound   bool
}

// New returns an unbound view over address that binds through the
// process-wide binder.
func New(address uint64) *View {
	return &View{address: address, shift: DefaultElementShift}
}

// Address returns the foreign address the view was created with.
func (v *View) Address() uint64 {
	return v.address
}

// Bound reports whether an extent has been attached.
func (v *View) Bound() bool {
	return v.bound
}

// Len returns the capacity of the bound extent in bytes.
func (v *View) Len() int {
	return len(v.extent)
}

// ElementShift returns the offset scaling exponent.
func (v *View) ElementShift() uint {
	return v.shift
}

// WithElementShift sets the offset scaling exponent for subsequent reads.
func (v *View) WithElementShift(shift uint) *View {
	v.shift = shift
	return v
}

// Bind attaches capacity bytes at the view's address by invoking the
// memory-view facility. A view binds at most once.
func (v *View) Bind(capacity uint32) (*View, error) {
	if v.bound {
		return nil, errors.InvalidState(errors.PhaseBind, "memview.Bind",
			fmt.Sprintf("view at 0x%x is already bound", v.address))
	}
	b := v.binder
	if b == nil {
		var err error
		if b, err = Default(); err != nil {
			return nil, err
		}
		v.binder = b
	}
	extent, err := b.Invoke(v.address, capacity)
	if err != nil {
		return nil, err
	}
	v.extent = extent
	v.bound = true
	return v, nil
}

// Bytes returns the bound extent. The slice aliases foreign memory.
func (v *View) Bytes() ([]byte, error) {
	if !v.bound {
		return nil, errors.UnboundAccess("memview.Bytes", v.address)
	}
	return v.extent, nil
}

func (v *View) at(op, goType string, offset, size int) ([]byte, error) {
	if !v.bound {
		return nil, errors.UnboundAccess(op, v.address)
	}
	if offset < 0 || v.shift >= 63 || offset > math.MaxInt>>v.shift {
		return nil, errors.New(errors.PhaseRead, errors.KindOutOfBounds).
			Op(op).
			GoType(goType).
			Value(offset).
			Detail("element offset %d cannot be scaled by 1<<%d", offset, v.shift).
			Build()
	}
	off := offset << v.shift
	if off > len(v.extent)-size {
		e := errors.OutOfBounds(errors.PhaseRead, goType, off, len(v.extent))
		e.Op = op
		return nil, e
	}
	return v.extent[off : off+size], nil
}

// Int8 reads the byte at element offset.
func (v *View) Int8(offset int) (int8, error) {
	p, err := v.at("memview.Int8", "int8", offset, 1)
	if err != nil {
		return 0, err
	}
	return int8(p[0]), nil
}

// Int16 reads a native-endian int16 at element offset.
func (v *View) Int16(offset int) (int16, error) {
	p, err := v.at("memview.Int16", "int16", offset, 2)
	if err != nil {
		return 0, err
	}
	return int16(binary.NativeEndian.Uint16(p)), nil
}

// Int32 reads a native-endian int32 at element offset.
func (v *View) Int32(offset int) (int32, error) {
	p, err := v.at("memview.Int32", "int32", offset, 4)
	if err != nil {
		return 0, err
	}
	return int32(binary.NativeEndian.Uint32(p)), nil
}

// Int64 reads a native-endian int64 at element offset.
func (v *View) Int64(offset int) (int64, error) {
	p, err := v.at("memview.Int64", "int64", offset, 8)
	if err != nil {
		return 0, err
	}
	return int64(binary.NativeEndian.Uint64(p)), nil
}

// Float32 reads a native-endian float32 at element offset.
func (v *View) Float32(offset int) (float32, error) {
	p, err := v.at("memview.Float32", "float32", offset, 4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.NativeEndian.Uint32(p)), nil
}

// Float64 reads a native-endian float64 at element offset.
func (v *View) Float64(offset int) (float64, error) {
	p, err := v.at("memview.Float64", "float64", offset, 8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.NativeEndian.Uint64(p)), nil
}

// Pointer reads an address at element offset and returns a new unbound view
// over it. The new view keeps this view's element shift and binder.
func (v *View) Pointer(offset int) (*View, error) {
	addr, err := v.Int64(offset)
	if err != nil {
		return nil, err
	}
	return &View{address: uint64(addr), binder: v.binder, shift: v.shift}, nil
}
