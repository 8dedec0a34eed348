package pcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterMaskContainment(t *testing.T) {
	al := Register{ID: RegAX, ByteOffset: 0, Size: 1}
	ax := Register{ID: RegAX, ByteOffset: 0, Size: 2}
	ah := Register{ID: RegAX, ByteOffset: 1, Size: 1}

	assert.True(t, al.IsFullyContainedIn(ax))
	assert.True(t, ah.IsFullyContainedIn(ax))
	assert.False(t, ax.IsFullyContainedIn(al))
	assert.True(t, al.Intersects(ax))
	assert.False(t, al.Intersects(ah))
}

func TestRegisterMaskDifferentID(t *testing.T) {
	ax := Register{ID: RegAX, ByteOffset: 0, Size: 2}
	cx := Register{ID: RegCX, ByteOffset: 0, Size: 2}
	assert.False(t, ax.IsFullyContainedIn(cx))
	assert.False(t, ax.Intersects(cx))
}

func TestBitMask64Bytes(t *testing.T) {
	m := NewBitMask64(1, 2)
	lo, hi := m.Bytes()
	assert.Equal(t, uint8(1), lo)
	assert.Equal(t, uint8(3), hi)
}

func TestRegisterSubtractMask(t *testing.T) {
	ax := Register{ID: RegAX, ByteOffset: 0, Size: 2}
	al := Register{ID: RegAX, ByteOffset: 0, Size: 1}
	rest := ax.SubtractMask(al.Mask())
	lo, hi := rest.Bytes()
	assert.Equal(t, uint8(1), lo)
	assert.Equal(t, uint8(2), hi)
}
