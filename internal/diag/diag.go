// Package diag defines the structured diagnostic types the decompiler core
// surfaces: a fatal graph-structure error, three non-fatal notes attached
// to the graph or a node rather than aborting the run, and an
// integrity-violation error type.
package diag

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/gamous/SDA/internal/pcode"
)

// GraphError is fatal: the input PCode graph itself is malformed (a branch
// to an offset with no block, a missing entry block). Callers construct it
// with Wrap so the originating stack stays attached.
type GraphError struct {
	Offset pcode.ComplexOffset
	Msg    string
	cause  error
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("graph error at %s: %s", e.Offset, e.Msg)
}

func (e *GraphError) Unwrap() error { return e.cause }

// Wrap builds a GraphError pinned to offset, preserving cause's stack via
// pkg/errors.
func Wrap(cause error, offset pcode.ComplexOffset, msg string) *GraphError {
	return &GraphError{Offset: offset, Msg: msg, cause: errors.Wrap(cause, msg)}
}

// AmbiguousCall is a non-fatal note attached to a FunctionCallNode whose
// target the host's signature resolver could not pin down uniquely
// after FunctionSignatureResolver.Default was substituted.
type AmbiguousCall struct {
	Offset   pcode.ComplexOffset
	Reason   string
}

func (n AmbiguousCall) String() string {
	return fmt.Sprintf("ambiguous call at %s: %s", n.Offset, n.Reason)
}

// TypeConflict is a non-fatal note attached to an SDA node recording that
// type propagation (internal/sda) inserted an implicit cast to reconcile
// two disagreeing type resolutions for the same storage location.
type TypeConflict struct {
	Offset   pcode.ComplexOffset
	Want     string
	Got      string
}

func (n TypeConflict) String() string {
	return fmt.Sprintf("type conflict at %s: wanted %s, resolved %s", n.Offset, n.Want, n.Got)
}

// MayBeImprecise is a function-level tag set once the primary decompiler's
// loop-version cap (session.Config.MaxLoopVersion) is hit: the graph is
// usable but some loop body may not have reached its true fixed point.
type MayBeImprecise struct {
	FuncEntry  uint64
	LoopsCount int
	Cap        int
}

func (n MayBeImprecise) String() string {
	return fmt.Sprintf("function %#x may be imprecise: %d loop versions hit cap %d", n.FuncEntry, n.LoopsCount, n.Cap)
}

// IntegrityViolation marks a programming error in the core itself — an
// invariant the arena-owned expression tree assumes was violated (e.g. a
// ReplaceChild on a node that isn't actually a child). Nothing in the
// pipeline constructs it: ReplaceChild reports a non-child by returning
// false, and no stage panics or logs on an integrity violation.
type IntegrityViolation struct {
	Msg string
}

func (e IntegrityViolation) Error() string { return "integrity violation: " + e.Msg }
