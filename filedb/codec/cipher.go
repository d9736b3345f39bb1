package codec

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Key derivation parameters for Argon2id
const (
	saltSize      = 16
	argonTime     = 1
	argonMemory   = 19 * 1024
	argonThreads  = 1
	derivedKeyLen = chacha20poly1305.KeySize
)

// ErrCiphertext is returned when stored bytes cannot be decrypted
var ErrCiphertext = errors.New("invalid or tampered ciphertext")

// Cipher encrypts collections with XChaCha20-Poly1305 using a key derived
// from a passphrase. The output layout is salt | nonce | ciphertext. One salt,
// and so one derived key, serves every encryption of a cipher; nonces are
// fresh each time.
type Cipher struct {
	passphrase []byte

	mu   sync.Mutex
	salt []byte
	key  []byte
}

// NewCipher creates a cipher for the given passphrase
func NewCipher(passphrase string) (*Cipher, error) {
	if passphrase == "" {
		return nil, errors.New("passphrase cannot be empty")
	}
	return &Cipher{passphrase: []byte(passphrase)}, nil
}

// derive runs Argon2id for salt
func (c *Cipher) derive(salt []byte) []byte {
	return argon2.IDKey(c.passphrase, salt, argonTime, argonMemory, argonThreads, derivedKeyLen)
}

// writeKey returns the salt and key used for encryption, creating them on
// first use
func (c *Cipher) writeKey() ([]byte, []byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.salt == nil {
		salt := make([]byte, saltSize)
		if _, err := rand.Read(salt); err != nil {
			return nil, nil, fmt.Errorf("failed to generate salt: %w", err)
		}
		c.salt, c.key = salt, c.derive(salt)
	}
	return c.salt, c.key, nil
}

// readKey returns the key for a stored salt. The first salt seen before any
// encryption is adopted for writing so a reopened file keeps its salt.
func (c *Cipher) readKey(salt []byte) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.salt != nil && bytes.Equal(c.salt, salt) {
		return c.key
	}
	key := c.derive(salt)
	if c.salt == nil {
		c.salt, c.key = bytes.Clone(salt), key
	}
	return key
}

// Encode implements Transform.Encode
func (c *Cipher) Encode(plain []byte) ([]byte, error) {
	salt, key, err := c.writeKey()
	if err != nil {
		return nil, err
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, saltSize+len(nonce)+len(plain)+aead.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	// salt is authenticated as associated data
	return aead.Seal(out, nonce, plain, salt), nil
}

// Decode implements Transform.Decode
func (c *Cipher) Decode(stored []byte) ([]byte, error) {
	headerLen := saltSize + chacha20poly1305.NonceSizeX
	if len(stored) < headerLen+chacha20poly1305.Overhead {
		return nil, fmt.Errorf("%w: %d bytes is too short", ErrCiphertext, len(stored))
	}

	salt := stored[:saltSize]
	nonce := stored[saltSize:headerLen]

	aead, err := chacha20poly1305.NewX(c.readKey(salt))
	if err != nil {
		return nil, err
	}

	plain, err := aead.Open(nil, nonce, stored[headerLen:], salt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCiphertext, err)
	}
	return plain, nil
}
