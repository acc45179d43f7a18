// internal/snapshot/codec.go
package snapshot

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// CodecOptions configures snapshot payload compression.
type CodecOptions struct {
	// Minimum payload size in bytes before compressing
	MinSize int
	// Compression level (1=fastest, 4=best)
	Level int
}

func DefaultCodecOptions() CodecOptions {
	return CodecOptions{
		MinSize: 512,
		Level:   2,
	}
}

// codec compresses snapshot payloads with pooled zstd encoders/decoders.
type codec struct {
	opts     CodecOptions
	encoders sync.Pool
	decoders sync.Pool
}

func newCodec(opts CodecOptions) (*codec, error) {
	level := zstd.EncoderLevelFromZstd(opts.Level)

	// Validate options up front so the pools never hand out nil.
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level), zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("creating test encoder: %w", err)
	}
	enc.Close()

	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("creating test decoder: %w", err)
	}
	dec.Close()

	return &codec{
		opts: opts,
		encoders: sync.Pool{
			New: func() interface{} {
				enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(level), zstd.WithEncoderConcurrency(1))
				return enc
			},
		},
		decoders: sync.Pool{
			New: func() interface{} {
				dec, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
				return dec
			},
		},
	}, nil
}

func (c *codec) encode(payload []byte) []byte {
	if len(payload) < c.opts.MinSize {
		return payload
	}
	enc := c.encoders.Get().(*zstd.Encoder)
	defer c.encoders.Put(enc)
	return enc.EncodeAll(payload, make([]byte, 0, len(payload)/2))
}

func (c *codec) decode(data []byte) ([]byte, error) {
	if len(data) < len(zstdMagic) || !bytes.Equal(data[:len(zstdMagic)], zstdMagic) {
		return data, nil
	}
	dec := c.decoders.Get().(*zstd.Decoder)
	defer c.decoders.Put(dec)

	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing snapshot: %w", err)
	}
	return out, nil
}
