package exprtree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamous/SDA/internal/exprtree"
	"github.com/gamous/SDA/internal/host"
	"github.com/gamous/SDA/internal/hostdefault"
	"github.com/gamous/SDA/internal/pcode"
)

func TestSdaMemSymbolLeafAddrGetting(t *testing.T) {
	types := hostdefault.NewTypeManager()
	sym := &host.ProgramSymbol{Name: "local_8", Type: hostdefault.DefaultInt64, StackOff: -8}

	plain := exprtree.NewSdaMemSymbolLeaf(sym, 0, 8)
	addr := exprtree.NewSdaMemSymbolLeaf(sym, 0, 8)
	addr.IsAddrGetting = true

	assert.Equal(t, hostdefault.DefaultInt64, plain.SrcDataType(types))

	ptrType := addr.SrcDataType(types)
	require.True(t, ptrType.IsPointer())
	assert.Equal(t, "*int64", ptrType.Name())
}

func TestSdaMemSymbolLeafHashDistinguishesAddrGetting(t *testing.T) {
	sym := &host.ProgramSymbol{Name: "local_8", Type: hostdefault.DefaultInt64, StackOff: -8}
	plain := exprtree.NewSdaMemSymbolLeaf(sym, 0, 8)
	addr := exprtree.NewSdaMemSymbolLeaf(sym, 0, 8)
	addr.IsAddrGetting = true

	assert.NotEqual(t, plain.Hash(), addr.Hash())
}

func TestSdaMemSymbolLeafCloneCarriesAddrGetting(t *testing.T) {
	sym := &host.ProgramSymbol{Name: "local_8", Type: hostdefault.DefaultInt64, StackOff: -8}
	addr := exprtree.NewSdaMemSymbolLeaf(sym, 4, 4)
	addr.IsAddrGetting = true

	clone, ok := addr.Clone().(*exprtree.SdaMemSymbolLeaf)
	require.True(t, ok)
	assert.True(t, clone.IsAddrGetting)
	assert.Equal(t, addr.Offset, clone.Offset)
	assert.Equal(t, addr.Hash(), clone.Hash())
}

func TestSdaOperationalNodeHashCommutative(t *testing.T) {
	sym := &host.ProgramSymbol{Name: "a", Type: hostdefault.DefaultInt64}
	a := exprtree.NewSdaSymbolLeaf(sym)
	b := exprtree.NewSdaNumberLeaf(5, 8, hostdefault.DefaultInt64)

	lhsFirst := exprtree.NewSdaOperationalNode(pcode.OpIntAdd, a, b, 8)
	rhsFirst := exprtree.NewSdaOperationalNode(pcode.OpIntAdd, b, a, 8)

	assert.Equal(t, lhsFirst.Hash(), rhsFirst.Hash())
}
