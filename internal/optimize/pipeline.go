// Package optimize implements the eight-pass expression-tree optimization
// pipeline that runs over a DecompiledCodeGraph once the
// primary decompiler has produced it: condition-block folding, algebraic
// simplification, parallel-assignment creation, order-fixing, view
// optimization, debug annotation, line expansion, and useless-line removal.
package optimize

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/gamous/SDA/internal/decompiler"
)

// PassKind names one of the eight sub-passes, in pipeline order.
type PassKind uint

const (
	PassConditionBlock PassKind = iota
	PassExpression
	PassParallelAssignment
	PassOrderFixing
	PassViewOptimization
	PassDebugAnnotation
	PassLineExpansion
	PassUselessLineRemoval
	numPasses
)

var passNames = map[PassKind]string{
	PassConditionBlock:     "condition-block",
	PassExpression:         "expression",
	PassParallelAssignment: "parallel-assignment",
	PassOrderFixing:        "order-fixing",
	PassViewOptimization:   "view",
	PassDebugAnnotation:    "debug-annotation",
	PassLineExpansion:      "line-expansion",
	PassUselessLineRemoval: "useless-line-removal",
}

func (p PassKind) String() string { return passNames[p] }

// PassMask selects which of the eight sub-passes run.
type PassMask uint16

func (m PassMask) has(p PassKind) bool { return m&(1<<p) != 0 }

// AllPasses runs the complete pipeline, debug annotation included.
const AllPasses PassMask = (1 << numPasses) - 1

// Debug annotation runs twice — once before line expansion re-shapes the
// block's lines, once after — gated by the same mask bit both times.
const debugPassCount = 2

// Options configures one pipeline run.
type Options struct {
	Mask PassMask

	// DebugProvider supplies the pool the debug-annotation pass consults to
	// attach OrigInstruction offsets to lines; nil disables annotation
	// regardless of Mask.
	DebugProvider DebugProvider
}

// Run executes the pipeline over result in its fixed order, recovering any
// pass panic into an error: a malformed subtree must not crash the host
// process.
func Run(result *decompiler.Result, opts Options) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("optimize: pass panicked: %v", r)
		}
	}()

	steps := []struct {
		kind PassKind
		run  func() error
	}{
		{PassConditionBlock, func() error { return ConditionBlockOptimization(result) }},
		{PassExpression, func() error { return ExpressionOptimization(result) }},
		{PassParallelAssignment, func() error { return ParallelAssignmentCreation(result) }},
		{PassOrderFixing, func() error { return OrderFixing(result) }},
		{PassViewOptimization, func() error { return ViewOptimization(result) }},
		{PassDebugAnnotation, func() error { return AnnotateDebugInfo(result, opts.DebugProvider) }},
		{PassLineExpansion, func() error { return LineExpansion(result) }},
		{PassDebugAnnotation, func() error { return AnnotateDebugInfo(result, opts.DebugProvider) }},
		{PassUselessLineRemoval, func() error { return UselessLineRemoval(result) }},
	}

	for _, step := range steps {
		if !opts.Mask.has(step.kind) {
			continue
		}
		if err := step.run(); err != nil {
			return errors.Wrapf(err, "optimize: pass %s", step.kind)
		}
		logrus.WithField("pass", step.kind.String()).Debug("optimize: pass complete")
	}
	return nil
}

// String renders a mask as its enabled pass names, for logging/CLI flags.
func (m PassMask) String() string {
	s := ""
	for p := PassKind(0); p < numPasses; p++ {
		if m.has(p) {
			if s != "" {
				s += ","
			}
			s += fmt.Sprint(p)
		}
	}
	if s == "" {
		return "none"
	}
	return s
}
