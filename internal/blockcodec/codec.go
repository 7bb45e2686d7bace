package blockcodec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/blockcache/internal/hash"
)

// Kind identifies a payload encoding.
type Kind uint8

const (
	// KindNone stores the block as is.
	KindNone Kind = 0
	// KindLZ4 is LZ4 block compression (fast, good for hot data).
	KindLZ4 Kind = 1
	// KindZstd is Zstandard compression (better ratio, good for cold data).
	KindZstd Kind = 2
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindLZ4:
		return "lz4"
	case KindZstd:
		return "zstd"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind maps a codec name to its Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "", "none":
		return KindNone, nil
	case "lz4":
		return KindLZ4, nil
	case "zstd":
		return KindZstd, nil
	default:
		return KindNone, fmt.Errorf("blockcodec: unknown codec %q", s)
	}
}

// HeaderSize is the size of a frame header.
const HeaderSize = 13

var (
	// ErrCorrupt is returned for frames with an invalid header or payload.
	ErrCorrupt = errors.New("blockcodec: corrupt frame")
	// ErrChecksum is returned when the decoded content does not match its checksum.
	ErrChecksum = errors.New("blockcodec: checksum mismatch")
)

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// Encode frames raw using kind.
func Encode(kind Kind, raw []byte) ([]byte, error) {
	var payload []byte

	switch kind {
	case KindNone:
	case KindLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(raw)))
		n, err := lz4.CompressBlock(raw, buf, nil)
		if err != nil {
			return nil, fmt.Errorf("blockcodec: lz4: %w", err)
		}
		payload = buf[:n]
	case KindZstd:
		enc := getZstdEncoder()
		payload = enc.EncodeAll(raw, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, fmt.Errorf("blockcodec: unknown kind %d", kind)
	}

	if len(payload) == 0 || float64(len(payload)) > float64(len(raw))*0.9 {
		kind, payload = KindNone, raw
	}

	frame := make([]byte, HeaderSize+len(payload))
	frame[0] = byte(kind)
	binary.LittleEndian.PutUint32(frame[1:], uint32(len(raw)))
	binary.LittleEndian.PutUint32(frame[5:], uint32(len(payload)))
	binary.LittleEndian.PutUint32(frame[9:], hash.CRC32C(raw))
	copy(frame[HeaderSize:], payload)

	return frame, nil
}

// Decode returns the content stored in frame.
func Decode(frame []byte) ([]byte, error) {
	if len(frame) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrCorrupt, len(frame))
	}

	kind := Kind(frame[0])
	rawLen := binary.LittleEndian.Uint32(frame[1:])
	payloadLen := binary.LittleEndian.Uint32(frame[5:])
	sum := binary.LittleEndian.Uint32(frame[9:])

	if uint64(len(frame)) != HeaderSize+uint64(payloadLen) {
		return nil, fmt.Errorf("%w: payload length %d, frame %d", ErrCorrupt, payloadLen, len(frame))
	}
	payload := frame[HeaderSize:]

	var raw []byte
	switch kind {
	case KindNone:
		if payloadLen != rawLen {
			return nil, fmt.Errorf("%w: stored length mismatch", ErrCorrupt)
		}
		raw = append([]byte(nil), payload...)
	case KindLZ4:
		raw = make([]byte, rawLen)
		n, err := lz4.UncompressBlock(payload, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %w", ErrCorrupt, err)
		}
		if uint32(n) != rawLen {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
	case KindZstd:
		dec := getZstdDecoder()
		decoded, err := dec.DecodeAll(payload, make([]byte, 0, rawLen))
		zstdDecoderPool.Put(dec)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %w", ErrCorrupt, err)
		}
		if uint32(len(decoded)) != rawLen {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		raw = decoded
	default:
		return nil, fmt.Errorf("%w: unknown kind %d", ErrCorrupt, kind)
	}

	if hash.CRC32C(raw) != sum {
		return nil, ErrChecksum
	}

	return raw, nil
}
