package protect

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
)

// HMACHasher is the shipped PANHasher: hex HMAC-SHA256 keyed by the salt
// read from the salt file. The same value always yields the same digest.
type HMACHasher struct {
	salt string
}

// NewHMACHasher creates an HMACHasher with no salt loaded.
func NewHMACHasher() *HMACHasher {
	return &HMACHasher{}
}

// SaltString reads the process-wide salt from path, retains it as the HMAC
// key, and returns it.
func (h *HMACHasher) SaltString(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading salt file %s: %w", path, err)
	}

	salt := strings.TrimSpace(string(data))
	if salt == "" {
		return "", fmt.Errorf("salt file %s is empty", path)
	}

	h.salt = salt
	return salt, nil
}

// HashCardNumber returns the hex HMAC-SHA256 digest of value.
func (h *HMACHasher) HashCardNumber(value string) (string, error) {
	if h.salt == "" {
		return "", fmt.Errorf("hasher has no salt loaded")
	}

	mac := hmac.New(sha256.New, []byte(h.salt))
	mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil)), nil
}
