// Package seal encrypts credentials at rest with XChaCha20-Poly1305.
package seal

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

var ErrCorrupt = errors.New("sealed value is corrupt")

type Sealer struct{ aead cipher.AEAD }

// New requires a 32 byte key.
func New(key []byte) (*Sealer, error) {
	a, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &Sealer{aead: a}, nil
}

// NewKey returns a random key suitable for New.
func NewKey() ([]byte, error) {
	k := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		return nil, err
	}
	return k, nil
}

// Seal encrypts plaintext and returns nonce||ciphertext, base64 encoded.
// aad binds the value to its owner (e.g. the context name).
func (s *Sealer) Seal(plaintext, aad string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plaintext)+s.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	buf := s.aead.Seal(nonce, nonce, []byte(plaintext), []byte(aad))
	return base64.RawStdEncoding.EncodeToString(buf), nil
}

func (s *Sealer) Open(sealed, aad string) (string, error) {
	buf, err := base64.RawStdEncoding.DecodeString(sealed)
	if err != nil {
		return "", ErrCorrupt
	}
	ns := s.aead.NonceSize()
	if len(buf) < ns {
		return "", ErrCorrupt
	}
	pt, err := s.aead.Open(nil, buf[:ns], buf[ns:], []byte(aad))
	if err != nil {
		return "", ErrCorrupt
	}
	return string(pt), nil
}
