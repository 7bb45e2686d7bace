package mem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllocBlock(t *testing.T) {
	for _, size := range []int{1, 512, 4095, 4096, 4097, 65536} {
		buf := AllocBlock(size)
		assert.Len(t, buf, size)
		assert.Equal(t, size, cap(buf), "capacity must not expose the padding")
		assert.True(t, IsAligned(buf, PageSize), "size %d", size)
		assert.Equal(t, make([]byte, size), buf)
	}

	assert.Nil(t, AllocBlock(0))
	assert.Nil(t, AllocBlock(-1))
}

func TestAllocAligned(t *testing.T) {
	for _, align := range []int{1, 8, 64, 512} {
		buf := AllocAligned(100, align)
		assert.Len(t, buf, 100)
		assert.True(t, IsAligned(buf, align), "align %d", align)
	}

	assert.Panics(t, func() { AllocAligned(10, 48) })
	assert.True(t, IsAligned(nil, PageSize))
}
