package persistence

import (
	"fmt"

	"github.com/komori-n/nananiji-calculator/codec"
	"github.com/komori-n/nananiji-calculator/internal/conv"
)

// Encode marshals v with c and frames it, compressing the payload with comp.
// A nil codec selects codec.Default.
func Encode(c codec.Codec, comp CompressionType, v any) ([]byte, error) {
	if c == nil {
		c = codec.Default
	}
	if _, err := conv.IntToUint8(len(c.Name())); err != nil {
		return nil, fmt.Errorf("persistence: codec name %q too long: %w", c.Name(), err)
	}

	payload, err := c.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("persistence: marshal with %s: %w", c.Name(), err)
	}

	stored, used, err := compress(payload, comp)
	if err != nil {
		return nil, fmt.Errorf("persistence: compress with %s: %w", comp, err)
	}

	h := Header{
		Version:     Version,
		Compression: used,
		Codec:       c.Name(),
		Size:        uint64(len(payload)),
		Stored:      uint64(len(stored)),
		Checksum:    CalculateChecksum(payload),
	}

	out := make([]byte, 0, h.Len()+len(stored))
	out = h.appendTo(out)
	return append(out, stored...), nil
}

// Decode verifies a framed snapshot and unmarshals its payload into v using
// the codec named in the header.
func Decode(data []byte, v any) (Header, error) {
	h, err := ReadHeader(data)
	if err != nil {
		return Header{}, err
	}
	if h.Size > MaxPayloadSize {
		return Header{}, fmt.Errorf("%w: %d bytes", ErrTooLarge, h.Size)
	}

	c, ok := codec.ByName(h.Codec)
	if !ok {
		return Header{}, fmt.Errorf("%w: %q", ErrUnknownCodec, h.Codec)
	}

	body := data[h.Len():]
	if uint64(len(body)) != h.Stored {
		return Header{}, fmt.Errorf("%w: payload has %d of %d bytes", ErrTruncated, len(body), h.Stored)
	}

	payload, err := decompress(body, h.Compression, h.Size)
	if err != nil {
		return Header{}, fmt.Errorf("%w: decompress %s: %w", ErrCorrupt, h.Compression, err)
	}
	if err := verify(payload, h.Checksum); err != nil {
		return Header{}, err
	}

	if err := c.Unmarshal(payload, v); err != nil {
		return Header{}, fmt.Errorf("%w: unmarshal with %s: %w", ErrCorrupt, h.Codec, err)
	}
	return h, nil
}
