package protect

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestAESCryptor_SetKeyFile(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantError bool
	}{
		{"Valid 32-byte hex key", testKeyHex, false},
		{"Valid key with trailing newline", testKeyHex + "\n", false},
		{"Wrong key length", "0001020304", true},
		{"Not hex", strings.Repeat("zz", 32), true},
		{"Empty file", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewAESCryptor()
			err := c.SetKeyFile(writeTempFile(t, "key.hex", tt.content))
			if (err != nil) != tt.wantError {
				t.Errorf("SetKeyFile() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestAESCryptor_SetKeyFile_Missing(t *testing.T) {
	c := NewAESCryptor()
	if err := c.SetKeyFile(filepath.Join(t.TempDir(), "nope.hex")); err == nil {
		t.Error("SetKeyFile() expected error for missing file")
	}
}

func TestAESCryptor_EncryptData(t *testing.T) {
	c := NewAESCryptor()
	if err := c.SetKeyFile(writeTempFile(t, "key.hex", testKeyHex)); err != nil {
		t.Fatalf("SetKeyFile() error = %v", err)
	}

	first, err := c.EncryptData("4111111111111111")
	if err != nil {
		t.Fatalf("EncryptData() error = %v", err)
	}
	if first == "" {
		t.Fatal("EncryptData() returned empty ciphertext")
	}
	if strings.Contains(first, "4111111111111111") {
		t.Error("ciphertext contains plaintext")
	}

	// Random nonces mean repeated encryption differs
	second, err := c.EncryptData("4111111111111111")
	if err != nil {
		t.Fatalf("EncryptData() error = %v", err)
	}
	if first == second {
		t.Error("ciphertexts identical across calls")
	}
}

func TestAESCryptor_EncryptData_NoKey(t *testing.T) {
	c := NewAESCryptor()
	if _, err := c.EncryptData("4111111111111111"); err == nil {
		t.Error("EncryptData() expected error before key load")
	}
}

func TestHMACHasher_SaltString(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantSalt  string
		wantError bool
	}{
		{"Plain salt", "PEPPER", "PEPPER", false},
		{"Salt trimmed of whitespace", "  PEPPER\n", "PEPPER", false},
		{"Empty salt file", "\n", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHMACHasher()
			salt, err := h.SaltString(writeTempFile(t, "salt.txt", tt.content))
			if (err != nil) != tt.wantError {
				t.Fatalf("SaltString() error = %v, wantError %v", err, tt.wantError)
			}
			if salt != tt.wantSalt {
				t.Errorf("SaltString() = %q, want %q", salt, tt.wantSalt)
			}
		})
	}
}

func TestHMACHasher_HashCardNumber(t *testing.T) {
	h := NewHMACHasher()
	if _, err := h.SaltString(writeTempFile(t, "salt.txt", "PEPPER")); err != nil {
		t.Fatalf("SaltString() error = %v", err)
	}

	first, err := h.HashCardNumber("4111111111111111PEPPER")
	if err != nil {
		t.Fatalf("HashCardNumber() error = %v", err)
	}
	if len(first) != 64 {
		t.Errorf("digest length = %d, want 64 hex chars", len(first))
	}

	second, err := h.HashCardNumber("4111111111111111PEPPER")
	if err != nil {
		t.Fatalf("HashCardNumber() error = %v", err)
	}
	if first != second {
		t.Error("digest not deterministic")
	}

	other, err := h.HashCardNumber("5500000000000004PEPPER")
	if err != nil {
		t.Fatalf("HashCardNumber() error = %v", err)
	}
	if other == first {
		t.Error("distinct inputs produced identical digests")
	}
}

func TestHMACHasher_HashCardNumber_NoSalt(t *testing.T) {
	h := NewHMACHasher()
	if _, err := h.HashCardNumber("4111111111111111"); err == nil {
		t.Error("HashCardNumber() expected error before salt load")
	}
}
