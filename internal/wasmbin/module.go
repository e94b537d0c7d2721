package wasmbin

const (
	magic   uint32 = 0x6d736100 // \0asm
	version uint32 = 1

	sectionType     byte = 1
	sectionImport   byte = 2
	sectionFunction byte = 3
	sectionMemory   byte = 5
	sectionExport   byte = 7
	sectionCode     byte = 10
	sectionData     byte = 11

	funcTypeByte byte = 0x60
)

// ValType is a core value type.
type ValType byte

const (
	I32 ValType = 0x7f
	I64 ValType = 0x7e
	F32 ValType = 0x7d
	F64 ValType = 0x7c
)

// Export kinds.
const (
	ExportFunc   byte = 0x00
	ExportMemory byte = 0x02
)

// FuncType is a function signature.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

// Import is a function import.
type Import struct {
	Module string
	Name   string
	Type   uint32
}

// Func is a defined function. Body must end with the end opcode; see Code.
type Func struct {
	Locals []ValType
	Body   []byte
	Type   uint32
}

// Export names a function or memory.
type Export struct {
	Name  string
	Kind  byte
	Index uint32
}

// Data is an active data segment for memory 0.
type Data struct {
	Init   []byte
	Offset int32
}

// Module is a core module with at most one memory. Function indices count
// imports first, then Funcs.
type Module struct {
	Types       []FuncType
	Imports     []Import
	Funcs       []Func
	Exports     []Export
	Data        []Data
	MemoryPages uint32
}

// Encode encodes the module to WebAssembly binary format.
func (m *Module) Encode() []byte {
	var w Writer
	w.WriteU32LE(magic)
	w.WriteU32LE(version)

	if len(m.Types) > 0 {
		var sec Writer
		sec.WriteU32(uint32(len(m.Types)))
		for _, ft := range m.Types {
			sec.Byte(funcTypeByte)
			writeValTypes(&sec, ft.Params)
			writeValTypes(&sec, ft.Results)
		}
		writeSection(&w, sectionType, sec.Bytes())
	}

	if len(m.Imports) > 0 {
		var sec Writer
		sec.WriteU32(uint32(len(m.Imports)))
		for _, imp := range m.Imports {
			sec.WriteName(imp.Module)
			sec.WriteName(imp.Name)
			sec.Byte(ExportFunc)
			sec.WriteU32(imp.Type)
		}
		writeSection(&w, sectionImport, sec.Bytes())
	}

	if len(m.Funcs) > 0 {
		var sec Writer
		sec.WriteU32(uint32(len(m.Funcs)))
		for _, f := range m.Funcs {
			sec.WriteU32(f.Type)
		}
		writeSection(&w, sectionFunction, sec.Bytes())
	}

	if m.MemoryPages > 0 {
		var sec Writer
		sec.WriteU32(1)
		sec.Byte(0x00) // no max
		sec.WriteU32(m.MemoryPages)
		writeSection(&w, sectionMemory, sec.Bytes())
	}

	if len(m.Exports) > 0 {
		var sec Writer
		sec.WriteU32(uint32(len(m.Exports)))
		for _, exp := range m.Exports {
			sec.WriteName(exp.Name)
			sec.Byte(exp.Kind)
			sec.WriteU32(exp.Index)
		}
		writeSection(&w, sectionExport, sec.Bytes())
	}

	if len(m.Funcs) > 0 {
		var sec Writer
		sec.WriteU32(uint32(len(m.Funcs)))
		for _, f := range m.Funcs {
			var body Writer
			body.WriteU32(uint32(len(f.Locals)))
			for _, l := range f.Locals {
				body.WriteU32(1)
				body.Byte(byte(l))
			}
			body.WriteBytes(f.Body)
			sec.WriteU32(uint32(len(body.Bytes())))
			sec.WriteBytes(body.Bytes())
		}
		writeSection(&w, sectionCode, sec.Bytes())
	}

	if len(m.Data) > 0 {
		var sec Writer
		sec.WriteU32(uint32(len(m.Data)))
		for _, d := range m.Data {
			sec.Byte(0x00) // active, memory 0
			sec.Byte(opI32Const)
			sec.WriteS64(int64(d.Offset))
			sec.Byte(opEnd)
			sec.WriteU32(uint32(len(d.Init)))
			sec.WriteBytes(d.Init)
		}
		writeSection(&w, sectionData, sec.Bytes())
	}

	return w.Bytes()
}

func writeSection(w *Writer, id byte, data []byte) {
	w.Byte(id)
	w.WriteU32(uint32(len(data)))
	w.WriteBytes(data)
}

func writeValTypes(w *Writer, types []ValType) {
	w.WriteU32(uint32(len(types)))
	for _, t := range types {
		w.Byte(byte(t))
	}
}
