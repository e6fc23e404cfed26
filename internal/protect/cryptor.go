package protect

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// AESCryptor is the shipped PANCryptor: AES-256-GCM over a hex-encoded key
// file, base64 ciphertext. GCM nonces are random, so ciphertext is not
// deterministic across calls.
type AESCryptor struct {
	aead cipher.AEAD
}

// NewAESCryptor creates an AESCryptor with no key loaded. EncryptData fails
// until SetKeyFile succeeds.
func NewAESCryptor() *AESCryptor {
	return &AESCryptor{}
}

// SetKeyFile loads a 32-byte hex-encoded key from path.
func (c *AESCryptor) SetKeyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading key file %s: %w", path, err)
	}

	key, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return fmt.Errorf("decoding key file %s: %w", path, err)
	}
	if len(key) != 32 {
		return fmt.Errorf("key file %s: want 32 bytes, got %d", path, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("initializing cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("initializing GCM: %w", err)
	}

	c.aead = aead
	return nil
}

// EncryptData encrypts plaintext and returns base64(nonce || ciphertext).
func (c *AESCryptor) EncryptData(plaintext string) (string, error) {
	if c.aead == nil {
		return "", fmt.Errorf("cryptor has no key loaded")
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}
