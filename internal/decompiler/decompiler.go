package decompiler

import (
	"github.com/sirupsen/logrus"

	"github.com/gamous/SDA/internal/decgraph"
	"github.com/gamous/SDA/internal/pcode"
)

// DefaultMaxLoopVersion bounds how many times a loop header may be
// re-interpreted before the decompiler gives up on reaching a fixed point
// and tags the function imprecise.
const DefaultMaxLoopVersion = 128

// Result is what primary decompilation of one function produces: the
// DecompiledCodeGraph shell (blocks and CFG only — no assignment lines yet,
// see interpreter.go's doc comment) plus the final per-block ExecContext the
// optimization pipeline's parallel-assignment-creation pass consumes.
type Result struct {
	Graph        *decgraph.DecompiledCodeGraph
	ExecContexts map[*pcode.PCodeBlock]*ExecContext
}

// Decompiler runs the primary abstract-interpretation pass over one
// function's PCode graph, implemented as an explicit worklist rather than
// a recursive walk, since a recursive walk risks overflowing Go's fixed
// goroutine stack on a deeply nested control-flow graph.
type Decompiler struct {
	funcGraph *pcode.FunctionPCodeGraph
	graph     *decgraph.DecompiledCodeGraph
	resolver  CallResolver

	maxLoopVersion int
	loopsCount     int

	execContexts map[*pcode.PCodeBlock]*ExecContext
	enterCount   map[*pcode.PCodeBlock]int
	version      map[*pcode.PCodeBlock]int
	decompiled   map[*pcode.PCodeBlock]bool
}

// New builds a Decompiler for fg. resolver supplies call-site signatures;
// maxLoopVersion <= 0 falls back to DefaultMaxLoopVersion.
func New(fg *pcode.FunctionPCodeGraph, resolver CallResolver, maxLoopVersion int) *Decompiler {
	if maxLoopVersion <= 0 {
		maxLoopVersion = DefaultMaxLoopVersion
	}
	d := &Decompiler{
		funcGraph:      fg,
		graph:          decgraph.New(fg),
		resolver:       resolver,
		maxLoopVersion: maxLoopVersion,
		execContexts:   map[*pcode.PCodeBlock]*ExecContext{},
		enterCount:     map[*pcode.PCodeBlock]int{},
		version:        map[*pcode.PCodeBlock]int{},
		decompiled:     map[*pcode.PCodeBlock]bool{},
	}
	for _, pb := range fg.Blocks() {
		d.execContexts[pb] = NewExecContext(pb)
	}
	return d
}

type worklistItem struct {
	block   *pcode.PCodeBlock
	version int
}

// Run executes the worklist to completion and returns the resulting graph
// and per-block exec state. It never returns an error: an unreached fixed
// point is reported via Graph.MayBeImprecise, not a failure.
func (d *Decompiler) Run() *Result {
	start := d.funcGraph.StartBlock()
	worklist := []worklistItem{{block: start, version: 1}}

	for len(worklist) > 0 {
		item := worklist[0]
		worklist = worklist[1:]

		decBlock := d.graph.BlockFor(item.block)
		d.enterCount[item.block]++
		if d.enterCount[item.block] < decBlock.RefHighBlocksCount() {
			continue
		}

		ctx := d.execContexts[item.block]
		ctx.Start.CopyFrom(ctx.Current)
		decBlock.ClearCode()

		interp := newInstructionInterpreter(ctx, decBlock, d.funcGraph, d.resolver)
		for _, instr := range item.block.Instructions() {
			interp.execute(instr)
		}

		alreadyDecompiled := d.decompiled[item.block]
		d.decompiled[item.block] = true
		d.version[item.block] = item.version

		for _, next := range item.block.NextBlocks() {
			d.scheduleSuccessor(item.block, next, item.version, ctx, alreadyDecompiled, &worklist)
		}
	}

	for _, pb := range d.funcGraph.Blocks() {
		d.graph.AppendBlock(d.graph.BlockFor(pb))
	}
	d.graph.SortBlocksByLevel()

	return &Result{Graph: d.graph, ExecContexts: d.execContexts}
}

func (d *Decompiler) scheduleSuccessor(from, next *pcode.PCodeBlock, fromVersion int, fromCtx *ExecContext, fromAlreadyDecompiled bool, worklist *[]worklistItem) {
	nextVersion := fromVersion
	isBackEdge := next.Level <= from.Level

	if isBackEdge {
		if !fromAlreadyDecompiled {
			d.loopsCount++
		}
		if d.loopsCount > d.maxLoopVersion {
			d.graph.MayBeImprecise = true
			logrus.WithFields(logrus.Fields{
				"function": d.funcGraph.StartBlock().MinOffset(),
				"cap":      d.maxLoopVersion,
			}).Warn("decompiler: loop version cap exceeded, truncating fixed-point iteration")
			return
		}
		nextVersion = d.loopsCount + 1
	}

	if nextVersion <= d.version[next] {
		return
	}

	nextCtx := d.execContexts[next]
	if d.decompiled[next] {
		nextCtx.Current.CopyFrom(nextCtx.Start)
	}
	nextCtx.Join(fromCtx)

	*worklist = append(*worklist, worklistItem{block: next, version: nextVersion})
}
