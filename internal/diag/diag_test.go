package diag_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gamous/SDA/internal/diag"
	"github.com/gamous/SDA/internal/pcode"
)

func TestGraphErrorWrapsCauseAndUnwraps(t *testing.T) {
	cause := errors.New("no block at offset")
	off := pcode.ComplexOffset{ByteOffset: 0x1000, OrderID: 2}
	ge := diag.Wrap(cause, off, "dangling branch target")

	assert.Contains(t, ge.Error(), "0x1000.2")
	assert.Contains(t, ge.Error(), "dangling branch target")
	assert.True(t, errors.Is(ge, cause))
}

func TestMayBeImpreciseString(t *testing.T) {
	n := diag.MayBeImprecise{FuncEntry: 0x401000, LoopsCount: 128, Cap: 128}
	assert.Contains(t, n.String(), "0x401000")
	assert.Contains(t, n.String(), "128")
}

func TestIntegrityViolationError(t *testing.T) {
	v := diag.IntegrityViolation{Msg: "replaced a node that wasn't a child"}
	assert.Equal(t, "integrity violation: replaced a node that wasn't a child", v.Error())
}
