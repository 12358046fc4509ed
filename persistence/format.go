package persistence

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// Magic identifies snapshot files.
	Magic = "NNJ1"
	// Version is the current snapshot format version.
	Version uint16 = 1

	// HeaderSize is the size of the fixed part of the header.
	HeaderSize = 28

	// MaxPayloadSize bounds the uncompressed payload accepted by Decode.
	MaxPayloadSize = 1 << 32
)

var (
	ErrInvalidMagic   = errors.New("invalid magic number")
	ErrInvalidVersion = errors.New("unsupported version")
	ErrTruncated      = errors.New("snapshot truncated")
	ErrUnknownCodec   = errors.New("unknown codec")
	ErrTooLarge       = errors.New("snapshot payload too large")
	// ErrCorrupt reports a payload that passed framing checks but could not
	// be decompressed or decoded.
	ErrCorrupt = errors.New("snapshot payload corrupt")
)

// Header describes a framed snapshot.
type Header struct {
	Version     uint16
	Compression CompressionType
	Codec       string
	Size        uint64 // uncompressed payload size
	Stored      uint64 // payload size as stored
	Checksum    uint32
}

// Len returns the encoded size of the header including the codec name.
func (h Header) Len() int { return HeaderSize + len(h.Codec) }

func (h Header) appendTo(dst []byte) []byte {
	dst = append(dst, Magic...)
	dst = binary.LittleEndian.AppendUint16(dst, h.Version)
	dst = append(dst, byte(h.Compression), byte(len(h.Codec)))
	dst = binary.LittleEndian.AppendUint64(dst, h.Size)
	dst = binary.LittleEndian.AppendUint64(dst, h.Stored)
	dst = binary.LittleEndian.AppendUint32(dst, h.Checksum)
	return append(dst, h.Codec...)
}

// ReadHeader parses the header at the start of data.
func ReadHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: %d bytes", ErrTruncated, len(data))
	}
	if string(data[:4]) != Magic {
		return Header{}, fmt.Errorf("%w: %q", ErrInvalidMagic, data[:4])
	}

	h := Header{
		Version:     binary.LittleEndian.Uint16(data[4:]),
		Compression: CompressionType(data[6]),
		Size:        binary.LittleEndian.Uint64(data[8:]),
		Stored:      binary.LittleEndian.Uint64(data[16:]),
		Checksum:    binary.LittleEndian.Uint32(data[24:]),
	}
	if h.Version != Version {
		return Header{}, fmt.Errorf("%w: %d", ErrInvalidVersion, h.Version)
	}

	n := int(data[7])
	if len(data) < HeaderSize+n {
		return Header{}, fmt.Errorf("%w: codec name", ErrTruncated)
	}
	h.Codec = string(data[HeaderSize : HeaderSize+n])
	return h, nil
}
