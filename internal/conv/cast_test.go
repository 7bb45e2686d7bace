package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntToUint32(t *testing.T) {
	v, err := IntToUint32(4096)
	require.NoError(t, err)
	assert.Equal(t, uint32(4096), v)

	_, err = IntToUint32(-1)
	assert.ErrorIs(t, err, ErrOverflow)

	if math.MaxInt > math.MaxUint32 {
		limit := int64(math.MaxUint32)

		v, err = IntToUint32(int(limit))
		require.NoError(t, err)
		assert.Equal(t, uint32(math.MaxUint32), v)

		_, err = IntToUint32(int(limit + 1))
		assert.ErrorIs(t, err, ErrOverflow)
	}
}

func TestInt64ToInt(t *testing.T) {
	v, err := Int64ToInt(1 << 20)
	require.NoError(t, err)
	assert.Equal(t, 1<<20, v)

	if math.MaxInt == math.MaxInt32 {
		_, err = Int64ToInt(1 << 40)
		assert.ErrorIs(t, err, ErrOverflow)
	}
}
