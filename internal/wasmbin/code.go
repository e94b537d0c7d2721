package wasmbin

const (
	opBlock      byte = 0x02
	opLoop       byte = 0x03
	opEnd        byte = 0x0b
	opBr         byte = 0x0c
	opBrIf       byte = 0x0d
	opCall       byte = 0x10
	opDrop       byte = 0x1a
	opSelect     byte = 0x1b
	opLocalGet   byte = 0x20
	opLocalSet   byte = 0x21
	opI32Load    byte = 0x28
	opI32Store   byte = 0x36
	opI64Store   byte = 0x37
	opI32Const   byte = 0x41
	opI64Const   byte = 0x42
	opI32LtU     byte = 0x49
	opI32GeU     byte = 0x4f
	opI32Add     byte = 0x6a
	opI32Mul     byte = 0x6c
	opI32Or      byte = 0x72
	opI64Add     byte = 0x7c
	opI32WrapI64 byte = 0xa7
	opI64ExtendU byte = 0xad

	blockTypeEmpty byte = 0x40
)

// Code assembles a function body.
type Code struct {
	w Writer
}

// LocalGet pushes local idx.
func (c *Code) LocalGet(idx uint32) *Code {
	c.w.Byte(opLocalGet)
	c.w.WriteU32(idx)
	return c
}

// I32Const pushes an i32 constant.
func (c *Code) I32Const(v int32) *Code {
	c.w.Byte(opI32Const)
	c.w.WriteS64(int64(v))
	return c
}

// I64Const pushes an i64 constant.
func (c *Code) I64Const(v int64) *Code {
	c.w.Byte(opI64Const)
	c.w.WriteS64(v)
	return c
}

// Call calls function idx.
func (c *Code) Call(idx uint32) *Code {
	c.w.Byte(opCall)
	c.w.WriteU32(idx)
	return c
}

// Drop discards the top of the stack.
func (c *Code) Drop() *Code {
	c.w.Byte(opDrop)
	return c
}

// LocalSet pops into local idx.
func (c *Code) LocalSet(idx uint32) *Code {
	c.w.Byte(opLocalSet)
	c.w.WriteU32(idx)
	return c
}

// Block opens a block with no result.
func (c *Code) Block() *Code {
	c.w.Byte(opBlock, blockTypeEmpty)
	return c
}

// Loop opens a loop with no result.
func (c *Code) Loop() *Code {
	c.w.Byte(opLoop, blockTypeEmpty)
	return c
}

// End closes the innermost block or loop.
func (c *Code) End() *Code {
	c.w.Byte(opEnd)
	return c
}

// Br branches to label depth.
func (c *Code) Br(depth uint32) *Code {
	c.w.Byte(opBr)
	c.w.WriteU32(depth)
	return c
}

// BrIf pops a condition and branches to label depth if it is non-zero.
func (c *Code) BrIf(depth uint32) *Code {
	c.w.Byte(opBrIf)
	c.w.WriteU32(depth)
	return c
}

// Select pops a condition and picks the first operand if it is non-zero.
func (c *Code) Select() *Code {
	c.w.Byte(opSelect)
	return c
}

// I32Add adds two i32s.
func (c *Code) I32Add() *Code {
	c.w.Byte(opI32Add)
	return c
}

// I32Mul multiplies two i32s.
func (c *Code) I32Mul() *Code {
	c.w.Byte(opI32Mul)
	return c
}

// I32Or ors two i32s.
func (c *Code) I32Or() *Code {
	c.w.Byte(opI32Or)
	return c
}

// I32LtU compares two i32s as unsigned.
func (c *Code) I32LtU() *Code {
	c.w.Byte(opI32LtU)
	return c
}

// I32GeU compares two i32s as unsigned.
func (c *Code) I32GeU() *Code {
	c.w.Byte(opI32GeU)
	return c
}

// I64Add adds two i64s.
func (c *Code) I64Add() *Code {
	c.w.Byte(opI64Add)
	return c
}

// I32WrapI64 truncates an i64 to i32.
func (c *Code) I32WrapI64() *Code {
	c.w.Byte(opI32WrapI64)
	return c
}

// I64ExtendI32U zero-extends an i32 to i64.
func (c *Code) I64ExtendI32U() *Code {
	c.w.Byte(opI64ExtendU)
	return c
}

// I32Load loads an i32 from [addr + offset].
func (c *Code) I32Load(offset uint32) *Code {
	c.w.Byte(opI32Load)
	c.w.WriteU32(2)
	c.w.WriteU32(offset)
	return c
}

// I32Store stores an i32 at [addr + offset].
func (c *Code) I32Store(offset uint32) *Code {
	c.w.Byte(opI32Store)
	c.w.WriteU32(2)
	c.w.WriteU32(offset)
	return c
}

// I64Store stores an i64 at [addr + offset].
func (c *Code) I64Store(offset uint32) *Code {
	c.w.Byte(opI64Store)
	c.w.WriteU32(3)
	c.w.WriteU32(offset)
	return c
}

// Body returns the assembled instructions followed by end.
func (c *Code) Body() []byte {
	out := make([]byte, 0, len(c.w.Bytes())+1)
	out = append(out, c.w.Bytes()...)
	return append(out, opEnd)
}
