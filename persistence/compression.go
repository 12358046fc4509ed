package persistence

import (
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/komori-n/nananiji-calculator/internal/conv"
)

// CompressionType defines the compression algorithm applied to the payload.
type CompressionType uint8

const (
	CompressionNone CompressionType = 0
	CompressionLZ4  CompressionType = 1
	CompressionZSTD CompressionType = 2
)

// ErrUnknownCompression is returned for an unsupported compression type.
var ErrUnknownCompression = errors.New("unknown compression type")

var errSizeMismatch = errors.New("decompressed size mismatch")

const (
	// An LZ4 block expands at most about 255 times.
	maxLZ4Ratio = 255
	// zstdPrealloc caps the initial zstd output buffer per stored byte.
	zstdPrealloc = 64
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCompression resolves a compression name as printed by String.
func ParseCompression(s string) (CompressionType, error) {
	switch s {
	case "none", "":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCompression, s)
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxPayloadSize))
}

// compress returns the stored form of data and the compression actually
// used. Incompressible LZ4 input falls back to CompressionNone.
func compress(data []byte, typ CompressionType) ([]byte, CompressionType, error) {
	switch typ {
	case CompressionNone:
		return data, CompressionNone, nil

	case CompressionLZ4:
		dst := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, dst, nil)
		if err != nil {
			return nil, 0, err
		}
		if n == 0 {
			return data, CompressionNone, nil
		}
		return dst[:n], CompressionLZ4, nil

	case CompressionZSTD:
		enc, err := getZstdEncoder()
		if err != nil {
			return nil, 0, err
		}
		defer zstdEncoderPool.Put(enc)
		return enc.EncodeAll(data, nil), CompressionZSTD, nil

	default:
		return nil, 0, fmt.Errorf("%w: %d", ErrUnknownCompression, typ)
	}
}

func decompress(stored []byte, typ CompressionType, size uint64) ([]byte, error) {
	n, err := conv.Uint64ToInt(size)
	if err != nil {
		return nil, err
	}

	switch typ {
	case CompressionNone:
		if len(stored) != n {
			return nil, fmt.Errorf("%w: stored %d, want %d bytes", errSizeMismatch, len(stored), n)
		}
		return stored, nil

	case CompressionLZ4:
		if n > maxLZ4Ratio*(len(stored)+1) {
			return nil, fmt.Errorf("%w: %d bytes cannot hold %d", errSizeMismatch, len(stored), n)
		}
		out := make([]byte, n)
		got, err := lz4.UncompressBlock(stored, out)
		if err != nil {
			return nil, err
		}
		if got != n {
			return nil, fmt.Errorf("%w: got %d, want %d bytes", errSizeMismatch, got, n)
		}
		return out, nil

	case CompressionZSTD:
		dec, err := getZstdDecoder()
		if err != nil {
			return nil, err
		}
		defer zstdDecoderPool.Put(dec)

		out, err := dec.DecodeAll(stored, make([]byte, 0, min(n, zstdPrealloc*len(stored))))
		if err != nil {
			return nil, err
		}
		if len(out) != n {
			return nil, fmt.Errorf("%w: got %d, want %d bytes", errSizeMismatch, len(out), n)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, typ)
	}
}
