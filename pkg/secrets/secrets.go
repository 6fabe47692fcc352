package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"slices"
)

// Cipher encrypts values with AES-256-GCM under keys derived per scope from
// one master key. A scope is typically a subscriber id, so one subscriber's
// ciphertext never opens under another's key.
type Cipher struct {
	master []byte
}

// NewCipher copies master, which must be KeySize bytes.
func NewCipher(master []byte) (*Cipher, error) {
	if len(master) != KeySize {
		return nil, ErrInvalidKey
	}
	return &Cipher{master: slices.Clone(master)}, nil
}

// Seal returns nonce || ciphertext || tag. The scope is also bound as
// additional data.
func (c *Cipher) Seal(scope, plaintext []byte) ([]byte, error) {
	aead, err := c.aead(scope)
	if err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}
	return aead.Seal(nonce, nonce, plaintext, scope), nil
}

// Open reverses Seal for the same scope.
func (c *Cipher) Open(scope, sealed []byte) ([]byte, error) {
	aead, err := c.aead(scope)
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}

	n := aead.NonceSize()
	if len(sealed) < n+aead.Overhead() {
		return nil, ErrInvalidCiphertext
	}
	plaintext, err := aead.Open(nil, sealed[:n], sealed[n:], scope)
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}
	return plaintext, nil
}

// SealString is Seal with base64 output.
func (c *Cipher) SealString(scope []byte, plaintext string) (string, error) {
	sealed, err := c.Seal(scope, []byte(plaintext))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// OpenString reverses SealString.
func (c *Cipher) OpenString(scope []byte, sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", errors.Join(ErrInvalidCiphertext, err)
	}
	plaintext, err := c.Open(scope, raw)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

func (c *Cipher) aead(scope []byte) (cipher.AEAD, error) {
	if len(scope) == 0 {
		return nil, ErrEmptyScope
	}

	key, err := deriveKey(c.master, scope)
	if err != nil {
		return nil, err
	}
	defer clearBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
