// Package host declares the narrow interfaces the decompiler core consumes
// from its host: instruction/graph lookup, function-signature resolution,
// symbol/type context, and the virtual-call registry. The core never calls
// back into the host beyond these interfaces.
package host

import "github.com/gamous/SDA/internal/pcode"

// DataType is the core's view of a type: big enough to drive the SDA type
// calculation without reaching into the host's own type-manager internals.
type DataType interface {
	Name() string
	SizeBytes() int
	IsFloat() bool
	IsPointer() bool
	IsStruct() bool
	Equal(other DataType) bool
}

// TypeManager resolves and compares data types, and builds pointer types.
type TypeManager interface {
	Lookup(id int64) (DataType, bool)
	MakePointer(to DataType) DataType
	Default() DataType

	// FieldAt resolves the field type at bitOffset within a struct type,
	// the structure-aware propagation rule pointer-to-struct-field
	// resolution needs and which a host without real type information (see
	// hostdefault) can safely never satisfy.
	FieldAt(t DataType, bitOffset int) (DataType, bool)
}

// StorageKind classifies where a function parameter or return value lives.
type StorageKind int

const (
	StorageRegister StorageKind = iota
	StorageStack
)

// ParamStorage is one parameter's physical location.
type ParamStorage struct {
	Kind     StorageKind
	Register pcode.Register
	StackOff int64
	Type     DataType
}

// FunctionSignature is the minimal shape the decompiler needs of a
// function's calling convention: the ordered parameter storage list and
// the return value's storage/type.
type FunctionSignature struct {
	Name       string
	Params     []ParamStorage
	Return     ParamStorage
	HasReturn  bool
}

// FunctionSignatureResolver resolves a byte offset (direct call) or a
// complex offset (virtual call site) to a signature, with a project-wide
// default for total resolution failure.
type FunctionSignatureResolver interface {
	Resolve(byteOffset uint64) (*FunctionSignature, bool)
	ResolveVirtual(offset pcode.ComplexOffset) (*FunctionSignature, bool)
	Default() *FunctionSignature
}

// SymbolKind classifies a program-level symbol the SDA pass binds an
// expression node to.
type SymbolKind int

const (
	SymbolParameter SymbolKind = iota
	SymbolLocalStackVar
	SymbolGlobalVar
	SymbolFunction
	SymbolVirtualFuncTableEntry
)

// ProgramSymbol is the host's view of a named, typed storage location.
type ProgramSymbol struct {
	Kind     SymbolKind
	Name     string
	Type     DataType
	IsAuto   bool // compiler-inferred type, mutable by SDA type propagation
	Register pcode.Register
	StackOff int64
	GlobalAddr uint64
}

// SymbolContext resolves or creates program symbols for the storage
// locations the SDA pass encounters, and answers virtual-call-table
// lookups.
type SymbolContext interface {
	ResolveStackVar(funcEntry uint64, stackOff int64) (*ProgramSymbol, bool)
	ResolveGlobalVar(addr uint64) (*ProgramSymbol, bool)
	ResolveParameter(funcEntry uint64, reg pcode.Register) (*ProgramSymbol, bool)
	CreateAutoSymbol(kind SymbolKind, hint string) *ProgramSymbol

	// ResolveVirtualCall looks up the function a virtual-call-table slot
	// points to, given the constant table address/index recovered by the
	// decompiler; ok is false when the slot is not statically known.
	ResolveVirtualCall(tableAddr uint64, index int) (funcEntry uint64, ok bool)
}

// InstructionPool yields already-decoded PCode instructions and their
// parent machine instruction; instruction decoding itself is out of scope
// for the core.
type InstructionPool interface {
	PCodeInstructionAt(offset pcode.ComplexOffset) (*pcode.Instruction, bool)
	OrigInstructionAt(byteOffset uint64) (*pcode.OrigInstruction, bool)
}
