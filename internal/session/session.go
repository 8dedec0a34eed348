// Package session bundles the collaborators one decompilation run shares
// and drives one function through the pipeline's four stopping points:
// decompiling, processing, symbolizing, and final processing.
package session

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/gamous/SDA/internal/decompiler"
	"github.com/gamous/SDA/internal/diag"
	"github.com/gamous/SDA/internal/host"
	"github.com/gamous/SDA/internal/logx"
	"github.com/gamous/SDA/internal/optimize"
	"github.com/gamous/SDA/internal/pcode"
	"github.com/gamous/SDA/internal/sda"
	sdaoptimize "github.com/gamous/SDA/internal/sda/optimize"
)

// Stage names the four places a run can be told to stop.
type Stage int

const (
	StageDecompiling Stage = iota
	StageProcessing
	StageSymbolizing
	StageFinalProcessing
)

// Config tunes a run. The zero value is a sensible default configuration.
type Config struct {
	// MaxLoopVersion bounds the primary decompiler's fixed-point iteration;
	// <= 0 uses decompiler.DefaultMaxLoopVersion.
	MaxLoopVersion int

	// PassMask selects which optimization sub-passes run when stopping at
	// StageProcessing or later; zero uses optimize.AllPasses.
	PassMask optimize.PassMask

	// StrictIntegrity is stored with the session; no stage of the pipeline
	// reads it, and nothing in the pipeline raises a diag.IntegrityViolation.
	StrictIntegrity bool

	// Concurrency bounds how many functions DecompileAll runs at once;
	// <= 0 means unbounded.
	Concurrency int
}

func (c Config) maxLoopVersion() int {
	if c.MaxLoopVersion <= 0 {
		return decompiler.DefaultMaxLoopVersion
	}
	return c.MaxLoopVersion
}

func (c Config) passMask() optimize.PassMask {
	if c.PassMask == 0 {
		return optimize.AllPasses
	}
	return c.PassMask
}

// DecompilationSession bundles the host's type resolver, symbol context,
// virtual-call registry, and run configuration: constructed once per host,
// read-only thereafter, and shared by every per-function run it drives.
type DecompilationSession struct {
	Types     host.TypeManager
	Symbols   host.SymbolContext
	Sigs      host.FunctionSignatureResolver
	Instrs    host.InstructionPool
	Config    Config
	Logger    *logrus.Logger
	StackReg  pcode.RegisterID
}

// New builds a session with a default logger if logger is nil.
func New(types host.TypeManager, symbols host.SymbolContext, sigs host.FunctionSignatureResolver, instrs host.InstructionPool, cfg Config, logger *logrus.Logger) *DecompilationSession {
	if logger == nil {
		logger = logx.New()
	}
	return &DecompilationSession{Types: types, Symbols: symbols, Sigs: sigs, Instrs: instrs, Config: cfg, Logger: logger}
}

// FunctionResult is what DecompileFunction returns: the final graph, any
// function-level imprecision tag, and the log entry scoped to this function
// for the caller to keep attaching diagnostics to. RunID lets a caller
// correlate every log line and diagnostic this one call produced, even
// when DecompileAll interleaves several functions' output concurrently.
type FunctionResult struct {
	Graph     *decompiler.Result
	Imprecise *diag.MayBeImprecise
	Log       *logrus.Entry
	RunID     uuid.UUID
}

// DecompileFunction runs fg through the pipeline up to (and including)
// stopAt, in a fixed order: primary decompilation, then optimization, then
// SDA symbolization plus its own optimizations.
func (s *DecompilationSession) DecompileFunction(fg *pcode.FunctionPCodeGraph, stopAt Stage) (*FunctionResult, error) {
	entry := fg.StartBlock().MinOffset()
	runID := uuid.New()
	log := logx.ForFunction(s.Logger, entry).WithField("run_id", runID)

	resolver := &decompiler.HostCallResolver{Signatures: s.Sigs, Symbols: s.Symbols}
	d := decompiler.New(fg, resolver, s.Config.maxLoopVersion())
	result := d.Run()

	fr := &FunctionResult{Graph: result, Log: log, RunID: runID}
	if result.Graph.MayBeImprecise {
		fr.Imprecise = &diag.MayBeImprecise{FuncEntry: entry, Cap: s.Config.maxLoopVersion()}
		log.Warn("function marked imprecise: loop-version cap reached")
	}
	if stopAt == StageDecompiling {
		return fr, nil
	}

	var dbgProvider optimize.DebugProvider
	if s.Instrs != nil {
		dbgProvider = instructionPoolDebugProvider{s.Instrs}
	}
	if err := optimize.Run(result, optimize.Options{Mask: s.Config.passMask(), DebugProvider: dbgProvider}); err != nil {
		return fr, errors.Wrap(err, "optimize")
	}
	if stopAt == StageProcessing {
		return fr, nil
	}

	sdaCtx := &sda.Context{Symbols: s.Symbols, Types: s.Types, FuncEntry: entry, StackReg: s.StackReg}
	sda.PropagateTypes(result, sdaCtx)
	if stopAt == StageSymbolizing {
		return fr, nil
	}

	sdaoptimize.DedupMemorySymbols(result)
	sdaoptimize.ReconcileDeadLines(result)
	log.Debug("final processing complete")
	return fr, nil
}

// DecompileAll runs every head function in img through stopAt concurrently,
// one goroutine per function bounded by Config.Concurrency, mirroring
// cmd/decore's batch mode — the unit of work is a function, not a package.
func (s *DecompilationSession) DecompileAll(ctx context.Context, img *pcode.ImagePCodeGraph, stopAt Stage) ([]*FunctionResult, error) {
	heads := img.HeadFuncGraphs()
	results := make([]*FunctionResult, len(heads))

	g, gctx := errgroup.WithContext(ctx)
	if s.Config.Concurrency > 0 {
		g.SetLimit(s.Config.Concurrency)
	}

	for i, fg := range heads {
		i, fg := i, fg
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			fr, err := s.DecompileFunction(fg, stopAt)
			if err != nil {
				return errors.Wrapf(err, "function %#x", fg.StartBlock().MinOffset())
			}
			results[i] = fr
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

type instructionPoolDebugProvider struct {
	pool host.InstructionPool
}

func (p instructionPoolDebugProvider) OrigInstructionAt(byteOffset uint64) (*pcode.OrigInstruction, bool) {
	return p.pool.OrigInstructionAt(byteOffset)
}
