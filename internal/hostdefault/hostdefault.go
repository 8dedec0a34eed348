// Package hostdefault is a minimal, in-memory implementation of the
// internal/host facades, standing in for the external project/database a
// real host (Ghidra bridge, type manager, symbol manager) would supply.
// cmd/decore uses it so the CLI is runnable standalone against the
// pre-decoded PCode dumps it reads, without wiring up a real host's
// internals just to exercise the pipeline end to end.
package hostdefault

import (
	"fmt"
	"sync"

	"github.com/gamous/SDA/internal/host"
	"github.com/gamous/SDA/internal/pcode"
)

// basicType is the simplest possible host.DataType: a name and a size, no
// struct/pointer nesting beyond what MakePointer/FieldAt construct on
// demand.
type basicType struct {
	name     string
	size     int
	isFloat  bool
	isStruct bool
	pointee  host.DataType
}

func (t *basicType) Name() string     { return t.name }
func (t *basicType) SizeBytes() int   { return t.size }
func (t *basicType) IsFloat() bool    { return t.isFloat }
func (t *basicType) IsPointer() bool  { return t.pointee != nil }
func (t *basicType) IsStruct() bool   { return t.isStruct }
func (t *basicType) Equal(other host.DataType) bool {
	o, ok := other.(*basicType)
	return ok && o.name == t.name && o.size == t.size
}

// DefaultInt64 is the type returned when nothing more specific is known.
var DefaultInt64 = &basicType{name: "int64", size: 8}

// TypeManager is a bare-bones host.TypeManager: it knows a handful of
// builtin scalar types and synthesizes pointer types on demand; it has no
// structures registered, so FieldAt always fails, matching a host that
// hasn't been pointed at a real binary's type database.
type TypeManager struct {
	mu       sync.Mutex
	builtins map[int64]host.DataType
	pointers map[host.DataType]host.DataType
}

func NewTypeManager() *TypeManager {
	return &TypeManager{
		builtins: map[int64]host.DataType{
			1: &basicType{name: "int8", size: 1},
			2: &basicType{name: "int16", size: 2},
			4: &basicType{name: "int32", size: 4},
			8: &basicType{name: "int64", size: 8},
		},
		pointers: map[host.DataType]host.DataType{},
	}
}

func (m *TypeManager) Lookup(id int64) (host.DataType, bool) {
	t, ok := m.builtins[id]
	return t, ok
}

func (m *TypeManager) MakePointer(to host.DataType) host.DataType {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.pointers[to]; ok {
		return p
	}
	p := &basicType{name: "*" + to.Name(), size: 8, pointee: to}
	m.pointers[to] = p
	return p
}

func (m *TypeManager) Default() host.DataType { return DefaultInt64 }

func (m *TypeManager) FieldAt(host.DataType, int) (host.DataType, bool) { return nil, false }

// SymbolContext synthesizes a ProgramSymbol the first time a storage
// location is seen and remembers it, rather than resolving against a real
// database — enough to exercise SDA's symbolization without one.
type SymbolContext struct {
	mu       sync.Mutex
	stackVar map[int64]*host.ProgramSymbol
	globals  map[uint64]*host.ProgramSymbol
	params   map[pcode.RegisterID]*host.ProgramSymbol
	counter  int
}

func NewSymbolContext() *SymbolContext {
	return &SymbolContext{
		stackVar: map[int64]*host.ProgramSymbol{},
		globals:  map[uint64]*host.ProgramSymbol{},
		params:   map[pcode.RegisterID]*host.ProgramSymbol{},
	}
}

func (s *SymbolContext) ResolveStackVar(funcEntry uint64, stackOff int64) (*host.ProgramSymbol, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sym, ok := s.stackVar[stackOff]; ok {
		return sym, true
	}
	sym := &host.ProgramSymbol{Kind: host.SymbolLocalStackVar, Name: fmt.Sprintf("local_%x", -stackOff), Type: DefaultInt64, IsAuto: true, StackOff: stackOff}
	s.stackVar[stackOff] = sym
	return sym, true
}

func (s *SymbolContext) ResolveGlobalVar(addr uint64) (*host.ProgramSymbol, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sym, ok := s.globals[addr]; ok {
		return sym, true
	}
	sym := &host.ProgramSymbol{Kind: host.SymbolGlobalVar, Name: fmt.Sprintf("DAT_%08x", addr), Type: DefaultInt64, IsAuto: true, GlobalAddr: addr}
	s.globals[addr] = sym
	return sym, true
}

func (s *SymbolContext) ResolveParameter(funcEntry uint64, reg pcode.Register) (*host.ProgramSymbol, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sym, ok := s.params[reg.ID]; ok {
		return sym, true
	}
	return nil, false
}

func (s *SymbolContext) CreateAutoSymbol(kind host.SymbolKind, hint string) *host.ProgramSymbol {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter++
	return &host.ProgramSymbol{Kind: kind, Name: fmt.Sprintf("%s_%d", hint, s.counter), Type: DefaultInt64, IsAuto: true}
}

func (s *SymbolContext) ResolveVirtualCall(tableAddr uint64, index int) (uint64, bool) { return 0, false }

// SignatureResolver never finds a signature, so every call in a run through
// this host resolves via FunctionSignatureResolver.Default and is flagged
// ambiguous — the honest behavior for a host with no real call database.
type SignatureResolver struct {
	def *host.FunctionSignature
}

func NewSignatureResolver() *SignatureResolver {
	return &SignatureResolver{def: &host.FunctionSignature{Name: "unknown"}}
}

func (r *SignatureResolver) Resolve(uint64) (*host.FunctionSignature, bool)               { return nil, false }
func (r *SignatureResolver) ResolveVirtual(pcode.ComplexOffset) (*host.FunctionSignature, bool) { return nil, false }
func (r *SignatureResolver) Default() *host.FunctionSignature                             { return r.def }

// InstructionPool answers PCode/orig-instruction lookups out of a flat
// slice built once at load time (cmd/decore/load.go).
type InstructionPool struct {
	byOffset map[uint64]*pcode.Instruction
	origs    map[uint64]*pcode.OrigInstruction
}

func NewInstructionPool(instrs []*pcode.Instruction) *InstructionPool {
	p := &InstructionPool{byOffset: map[uint64]*pcode.Instruction{}, origs: map[uint64]*pcode.OrigInstruction{}}
	for _, in := range instrs {
		p.byOffset[in.Offset.Key()] = in
		if in.Orig != nil {
			p.origs[in.Orig.Offset] = in.Orig
		}
	}
	return p
}

func (p *InstructionPool) PCodeInstructionAt(offset pcode.ComplexOffset) (*pcode.Instruction, bool) {
	in, ok := p.byOffset[offset.Key()]
	return in, ok
}

func (p *InstructionPool) OrigInstructionAt(byteOffset uint64) (*pcode.OrigInstruction, bool) {
	o, ok := p.origs[byteOffset]
	return o, ok
}
