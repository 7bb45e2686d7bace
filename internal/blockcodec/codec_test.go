package blockcodec

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noise(seed int64, n int) []byte {
	b := make([]byte, n)
	_, _ = rand.New(rand.NewSource(seed)).Read(b)

	return b
}

func TestEncodeDecode(t *testing.T) {
	compressible := bytes.Repeat([]byte("superblock"), 410)[:4096]
	random := noise(7, 4096)

	tests := []struct {
		name     string
		kind     Kind
		raw      []byte
		wantKind Kind
	}{
		{"none", KindNone, compressible, KindNone},
		{"lz4", KindLZ4, compressible, KindLZ4},
		{"zstd", KindZstd, compressible, KindZstd},
		{"lz4 incompressible", KindLZ4, random, KindNone},
		{"zstd incompressible", KindZstd, random, KindNone},
		{"zero block", KindZstd, make([]byte, 4096), KindZstd},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := Encode(tt.kind, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, Kind(frame[0]))

			if tt.wantKind != KindNone {
				assert.Less(t, len(frame), len(tt.raw))
			}

			raw, err := Decode(frame)
			require.NoError(t, err)
			assert.Equal(t, tt.raw, raw)
		})
	}
}

func TestDecode_Corruption(t *testing.T) {
	raw := bytes.Repeat([]byte{1, 2, 3, 4}, 128)

	frame, err := Encode(KindLZ4, raw)
	require.NoError(t, err)

	_, err = Decode(frame[:HeaderSize-1])
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = Decode(frame[:len(frame)-1])
	assert.ErrorIs(t, err, ErrCorrupt)

	bad := append([]byte(nil), frame...)
	bad[9] ^= 0xFF
	_, err = Decode(bad)
	assert.ErrorIs(t, err, ErrChecksum)

	bad = append([]byte(nil), frame...)
	bad[0] = 9
	_, err = Decode(bad)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{KindNone, KindLZ4, KindZstd} {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	_, err := ParseKind("snappy")
	assert.Error(t, err)
}
