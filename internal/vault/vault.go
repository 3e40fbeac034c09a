// Package vault encrypts grade values at rest.
//
// Values are sealed with AES-256-GCM under a key derived from the configured secret
// with HKDF-SHA256. Ciphertexts are base64 encoded as nonce||sealed.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Veraticus/coursemix/internal/model"
	"golang.org/x/crypto/hkdf"
)

// Errors returned by the vault.
var (
	ErrMissingKey = errors.New("vault key is not configured")
	ErrDecrypt    = errors.New("failed to decrypt grade")
)

const (
	keySize  = 32
	hkdfInfo = "coursemix grade encryption v1"
)

var hkdfSalt = []byte("coursemix/grades")

// Vault seals and opens grade values.
type Vault struct {
	aead cipher.AEAD
}

// New derives an AES-256 key from secret.
func New(secret string) (*Vault, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingKey
	}

	key := make([]byte, keySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), hkdfSalt, []byte(hkdfInfo)), key); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &Vault{aead: aead}, nil
}

// Encrypt seals plaintext. The empty string is stored as-is so in-progress courses
// without a grade stay distinguishable from sealed values.
func (v *Vault) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, v.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := v.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt.
func (v *Vault) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecrypt, err)
	}

	nonceSize := v.aead.NonceSize()
	if len(raw) < nonceSize {
		return "", fmt.Errorf("%w: ciphertext too short", ErrDecrypt)
	}

	plain, err := v.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecrypt, err)
	}
	return string(plain), nil
}

// DecryptAll opens every ciphertext in sealed (keyed by grade ID).
// Failures map to the "Decryption Error" sentinel and empty values to "N/A" so the
// aggregator can exclude them while still counting the record.
func (v *Vault) DecryptAll(sealed map[string]string) map[string]string {
	out := make(map[string]string, len(sealed))
	for id, ciphertext := range sealed {
		if ciphertext == "" {
			out[id] = model.GradeUnavailable
			continue
		}

		plain, err := v.Decrypt(ciphertext)
		if err != nil {
			slog.Warn("grade decryption failed", "grade_id", id, "error", err)
			out[id] = model.GradeDecryptionError
			continue
		}
		out[id] = plain
	}
	return out
}
