package sda

import (
	"github.com/gamous/SDA/internal/decompiler"
	"github.com/gamous/SDA/internal/exprtree"
	"github.com/gamous/SDA/internal/host"
)

// MaxTypeIterations bounds the type-propagation fixed point the same way
// decompiler.DefaultMaxLoopVersion bounds interpretation — repeatedly
// re-running Build over a graph whose symbols can never agree (a
// conflicting prior resolution) could otherwise loop forever chasing a
// fixed point it will never reach.
const MaxTypeIterations = 64

// PropagateTypes drives Build to a fixed point: each call can surface a
// symbol or struct-field type that unlocks a resolution depending on it
// elsewhere in the graph (a pointer parameter's struct type enabling a
// field load three blocks later, say), so the pass repeats until nothing
// new resolves.
func PropagateTypes(result *decompiler.Result, ctx *Context) {
	for iter := 0; iter < MaxTypeIterations; iter++ {
		if !Build(result, ctx) {
			return
		}
	}
}

// dataTypeOf reports the type an already-resolved SDA node carries, or nil
// for anything not yet resolved (including plain, non-SDA nodes).
func dataTypeOf(n exprtree.Node) host.DataType {
	switch v := n.(type) {
	case *exprtree.SdaSymbolLeaf:
		return v.Symbol.Type
	case *exprtree.SdaMemSymbolLeaf:
		return v.Symbol.Type
	case *exprtree.SdaNumberLeaf:
		return v.Type
	case *exprtree.SdaOperationalNode:
		return v.Type
	case *exprtree.SdaFunctionCallNode:
		return v.Type
	}
	return nil
}
