package optimize

import (
	"github.com/gamous/SDA/internal/decompiler"
	"github.com/gamous/SDA/internal/pcode"
)

// DebugProvider is the narrow slice of host.InstructionPool the
// debug-annotation pass needs: resolving a byte offset back to the
// disassembled instruction it came from.
type DebugProvider interface {
	OrigInstructionAt(byteOffset uint64) (*pcode.OrigInstruction, bool)
}

// AnnotateDebugInfo stamps every line in every block with the originating
// block's start offset and the disassembled instruction at that offset.
// With a nil provider it does nothing. It runs twice in the
// pipeline — before and after line expansion — so lines introduced by
// expansion's temp-swap algorithm get annotated too.
func AnnotateDebugInfo(result *decompiler.Result, provider DebugProvider) error {
	if provider == nil {
		return nil
	}
	for _, b := range result.Graph.Blocks() {
		if b.PCodeBlock == nil {
			continue
		}
		off := pcode.ComplexOffset{ByteOffset: b.PCodeBlock.MinOffset()}
		orig, _ := provider.OrigInstructionAt(off.ByteOffset)

		for _, line := range b.ParallelLines {
			line.Offset = off
			line.Orig = orig
		}
		for _, line := range b.SeqLines {
			line.Offset = off
			line.Orig = orig
		}
	}
	return nil
}
