package codec

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Compressor compresses collections with zstd
type Compressor struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewCompressor creates a zstd compressor. Encoders and decoders are reused
// across calls; EncodeAll and DecodeAll are safe for concurrent use.
func NewCompressor() (*Compressor, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &Compressor{enc: enc, dec: dec}, nil
}

// Encode implements Transform.Encode
func (c *Compressor) Encode(plain []byte) ([]byte, error) {
	return c.enc.EncodeAll(plain, nil), nil
}

// Decode implements Transform.Decode
func (c *Compressor) Decode(stored []byte) ([]byte, error) {
	out, err := c.dec.DecodeAll(stored, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd: %w", err)
	}
	return out, nil
}

// Close releases the encoder and decoder
func (c *Compressor) Close() error {
	c.dec.Close()
	return c.enc.Close()
}
