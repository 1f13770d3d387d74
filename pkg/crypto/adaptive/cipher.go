package adaptive

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"io"
	"runtime"

	"golang.org/x/crypto/chacha20poly1305"
)

// CipherType identifies the cipher algorithm.
type CipherType string

const (
	CipherAESGCM   CipherType = "aes-gcm"
	CipherChaCha20 CipherType = "chacha20-poly1305"
)

// KeySize is the required key length in bytes.
const KeySize = 32

// Cipher provides authenticated encryption with a prepended nonce.
type Cipher struct {
	typ  CipherType
	aead cipher.AEAD
}

// New creates a cipher with the given 32-byte key, selecting the
// algorithm best suited to the hardware.
func New(key []byte) (*Cipher, error) {
	if hasAESAcceleration() {
		return NewWithType(key, CipherAESGCM)
	}
	return NewWithType(key, CipherChaCha20)
}

// NewWithType creates a cipher of the specified type.
func NewWithType(key []byte, typ CipherType) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, errors.New("adaptive: key must be 32 bytes")
	}

	var (
		aead cipher.AEAD
		err  error
	)
	switch typ {
	case CipherAESGCM:
		var block cipher.Block
		block, err = aes.NewCipher(key)
		if err == nil {
			aead, err = cipher.NewGCM(block)
		}
	case CipherChaCha20:
		aead, err = chacha20poly1305.New(key)
	default:
		return nil, errors.New("adaptive: unknown cipher type: " + string(typ))
	}
	if err != nil {
		return nil, err
	}

	return &Cipher{typ: typ, aead: aead}, nil
}

// Type returns the cipher type.
func (c *Cipher) Type() CipherType {
	return c.typ
}

// Encrypt seals plaintext with additional data, prepending the nonce.
func (c *Cipher) Encrypt(plaintext, additionalData []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return c.aead.Seal(nonce, nonce, plaintext, additionalData), nil
}

// Decrypt opens a sealed value produced by Encrypt.
func (c *Cipher) Decrypt(ciphertext, additionalData []byte) ([]byte, error) {
	if len(ciphertext) < c.aead.NonceSize() {
		return nil, errors.New("adaptive: ciphertext too short")
	}
	nonce, sealed := ciphertext[:c.aead.NonceSize()], ciphertext[c.aead.NonceSize():]
	return c.aead.Open(nil, nonce, sealed, additionalData)
}

// hasAESAcceleration reports whether Go's crypto/aes uses hardware
// acceleration on this architecture.
func hasAESAcceleration() bool {
	switch runtime.GOARCH {
	case "amd64", "arm64":
		return true
	default:
		return false
	}
}
