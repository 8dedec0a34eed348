package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/pkg/errors"

	"github.com/gamous/SDA/internal/pcode"
)

// jsonVarnode is the wire shape for a pcode.Varnode: exactly one of the
// three kinds is populated, discriminated by Kind.
type jsonVarnode struct {
	Kind     string `json:"kind"` // "register", "symbol", or "constant"
	Register *struct {
		ID         uint32 `json:"id"`
		ByteOffset uint8  `json:"byteOffset"`
		Size       uint8  `json:"size"`
	} `json:"register,omitempty"`
	Symbol *struct {
		ID   uint32 `json:"id"`
		Size uint8  `json:"size"`
	} `json:"symbol,omitempty"`
	Constant *struct {
		Value uint64 `json:"value"`
		Size  uint8  `json:"size"`
	} `json:"constant,omitempty"`
}

func (v *jsonVarnode) toVarnode() (pcode.Varnode, error) {
	if v == nil {
		return nil, nil
	}
	switch v.Kind {
	case "register":
		if v.Register == nil {
			return nil, errors.New("register varnode missing register field")
		}
		return pcode.RegisterVarnode{Register: pcode.Register{
			ID:         pcode.RegisterID(v.Register.ID),
			ByteOffset: v.Register.ByteOffset,
			Size:       v.Register.Size,
		}}, nil
	case "symbol":
		if v.Symbol == nil {
			return nil, errors.New("symbol varnode missing symbol field")
		}
		return pcode.SymbolVarnode{ID: pcode.SymbolID(v.Symbol.ID), Size: v.Symbol.Size}, nil
	case "constant":
		if v.Constant == nil {
			return nil, errors.New("constant varnode missing constant field")
		}
		return pcode.ConstantVarnode{Value: v.Constant.Value, Size: v.Constant.Size}, nil
	default:
		return nil, errors.Errorf("unknown varnode kind %q", v.Kind)
	}
}

// jsonInstruction is the wire shape of one PCode micro-op, plus enough of
// its parent machine instruction to rebuild OrigInstruction.
type jsonInstruction struct {
	ByteOffset uint64       `json:"byteOffset"`
	OrderID    uint16       `json:"orderId"`
	Op         string       `json:"op"`
	Output     *jsonVarnode `json:"output,omitempty"`
	Input0     *jsonVarnode `json:"input0,omitempty"`
	Input1     *jsonVarnode `json:"input1,omitempty"`
	Target     *uint64      `json:"target,omitempty"`

	OrigLength   int    `json:"origLength,omitempty"`
	OrigMnemonic string `json:"origMnemonic,omitempty"`
}

// jsonImage is the whole dump: a flat instruction stream — already-decoded
// PCode is this module's input, and this format is its own stand-in for
// how a host would hand that stream over — plus the function entry
// offsets the host already knows about.
type jsonImage struct {
	FuncEntries  []uint64          `json:"funcEntries"`
	Instructions []jsonInstruction `json:"instructions"`
}

// loadImage reads path and builds the ImagePCodeGraph, along with the flat
// instruction slice hostdefault.InstructionPool needs for offset lookups.
func loadImage(path string) (*pcode.ImagePCodeGraph, []*pcode.Instruction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "read image file")
	}
	var img jsonImage
	if err := json.Unmarshal(data, &img); err != nil {
		return nil, nil, errors.Wrap(err, "parse image file")
	}

	instrs := make([]*pcode.Instruction, 0, len(img.Instructions))
	for _, ji := range img.Instructions {
		op, ok := pcode.ParseOpcode(ji.Op)
		if !ok {
			return nil, nil, errors.Errorf("unknown opcode %q at offset %#x", ji.Op, ji.ByteOffset)
		}
		out, err := ji.Output.toVarnode()
		if err != nil {
			return nil, nil, errors.Wrapf(err, "offset %#x output", ji.ByteOffset)
		}
		in0, err := ji.Input0.toVarnode()
		if err != nil {
			return nil, nil, errors.Wrapf(err, "offset %#x input0", ji.ByteOffset)
		}
		in1, err := ji.Input1.toVarnode()
		if err != nil {
			return nil, nil, errors.Wrapf(err, "offset %#x input1", ji.ByteOffset)
		}

		var orig *pcode.OrigInstruction
		if ji.OrigLength > 0 {
			orig = &pcode.OrigInstruction{Offset: ji.ByteOffset, Length: ji.OrigLength, Mnemonic: ji.OrigMnemonic}
		}

		instrs = append(instrs, &pcode.Instruction{
			Offset: pcode.ComplexOffset{ByteOffset: ji.ByteOffset, OrderID: ji.OrderID},
			Op:     op,
			Output: out,
			Input0: in0,
			Input1: in1,
			Orig:   orig,
			Target: ji.Target,
		})
	}

	sort.Slice(instrs, func(i, j int) bool { return instrs[i].Offset.Less(instrs[j].Offset) })

	g := pcode.BuildGraph(instrs, img.FuncEntries)
	g.FillHeadFuncGraphs()
	return g, instrs, nil
}

func mustFuncEntryOffset(arg string) (uint64, error) {
	var off uint64
	if _, err := fmt.Sscanf(arg, "0x%x", &off); err == nil {
		return off, nil
	}
	if _, err := fmt.Sscanf(arg, "%d", &off); err == nil {
		return off, nil
	}
	return 0, errors.Errorf("entry offset %q is neither decimal nor 0x-hex", arg)
}
