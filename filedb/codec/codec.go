// Package codec provides byte transforms applied to a collection's serialized
// form before it is written and after it is read: encryption and compression.
// The collection engine never interprets the transformed bytes.
package codec

import "fmt"

// Transform converts the serialized collection to its stored form and back
type Transform interface {
	// Encode transforms serialized JSON into the bytes written to disk
	Encode(plain []byte) ([]byte, error)

	// Decode reverses Encode
	Decode(stored []byte) ([]byte, error)
}

// chain applies transforms in order on Encode and in reverse on Decode
type chain []Transform

// Chain composes transforms. Encode runs them first to last, Decode last to
// first, so Chain(compressor, cipher) compresses before encrypting.
// Nil entries are skipped; an empty chain returns nil.
func Chain(transforms ...Transform) Transform {
	var c chain
	for _, t := range transforms {
		if t != nil {
			c = append(c, t)
		}
	}
	switch len(c) {
	case 0:
		return nil
	case 1:
		return c[0]
	}
	return c
}

func (c chain) Encode(plain []byte) ([]byte, error) {
	out := plain
	for i, t := range c {
		var err error
		if out, err = t.Encode(out); err != nil {
			return nil, fmt.Errorf("transform %d: %w", i, err)
		}
	}
	return out, nil
}

func (c chain) Decode(stored []byte) ([]byte, error) {
	out := stored
	for i := len(c) - 1; i >= 0; i-- {
		var err error
		if out, err = c[i].Decode(out); err != nil {
			return nil, fmt.Errorf("transform %d: %w", i, err)
		}
	}
	return out, nil
}
