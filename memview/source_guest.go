package memview

import (
	"context"
	"fmt"
	"slices"

	"github.com/tetratelabs/wazero/api"
)

var (
	viewFuncParams  = []api.ValueType{api.ValueTypeI64, api.ValueTypeI32}
	viewFuncResults = []api.ValueType{api.ValueTypeI32}
)

type guestSource struct {
	ctx context.Context
	mod api.Module
}

// Guest returns the source for a WebAssembly guest's linear memory.
//
// The guest provides the facility by exporting its memory and a function
// mem_byte_buffer(addr i64, len i32) -> i32 that validates the range and
// returns its linear-memory offset, or a negative value to refuse it.
func Guest(ctx context.Context, mod api.Module) Source {
	return &guestSource{ctx: ctx, mod: mod}
}

func (s *guestSource) Name() string {
	if s.mod == nil {
		return "guest"
	}
	return "guest " + s.mod.Name()
}

func (s *guestSource) Lookup(name string) (ViewFunc, bool) {
	if s.mod == nil || name != ViewFuncName {
		return nil, false
	}
	mem := s.mod.Memory()
	fn := s.mod.ExportedFunction(name)
	if mem == nil || fn == nil {
		return nil, false
	}
	def := fn.Definition()
	if !slices.Equal(def.ParamTypes(), viewFuncParams) || !slices.Equal(def.ResultTypes(), viewFuncResults) {
		return nil, false
	}

	ctx := s.ctx
	return func(address uint64, length uint32) ([]byte, error) {
		results, err := fn.Call(ctx, address, uint64(length))
		if err != nil {
			return nil, fmt.Errorf("call %s: %w", name, err)
		}
		if len(results) == 0 {
			return nil, fmt.Errorf("%s returned no result", name)
		}
		offset := api.DecodeI32(results[0])
		if offset < 0 {
			return nil, fmt.Errorf("%s refused address 0x%x (length %d)", name, address, length)
		}
		data, ok := mem.Read(uint32(offset), length)
		if !ok {
			return nil, fmt.Errorf("memory read out of bounds: offset=%d, length=%d", offset, length)
		}
		return data, nil
	}, true
}
