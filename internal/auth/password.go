package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/scrypt"
)

const (
	hashKeyLength    = 64
	scryptN          = 16384
	scryptR          = 8
	scryptP          = 1
	DefaultSaltBytes = 16
)

var (
	hexPattern    = regexp.MustCompile(`^[0-9a-fA-F]+$`)
	base64Pattern = regexp.MustCompile(`^[A-Za-z0-9+/=]+$`)
)

func deriveKey(password string, salt []byte) ([]byte, error) {
	return scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, hashKeyLength)
}

// HashPassword returns a random hex salt and the hex scrypt hash. The salt
// string's bytes, not its decoded value, feed the key derivation.
func HashPassword(password string) (salt, hash string, err error) {
	raw := make([]byte, DefaultSaltBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("failed to generate salt: %w", err)
	}
	salt = hex.EncodeToString(raw)
	key, err := deriveKey(password, []byte(salt))
	if err != nil {
		return "", "", fmt.Errorf("failed to hash password: %w", err)
	}
	return salt, hex.EncodeToString(key), nil
}

// decodeStoredHash accepts hex first, then standard base64.
func decodeStoredHash(value string) []byte {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if hexPattern.MatchString(value) && len(value)%2 == 0 {
		decoded, err := hex.DecodeString(value)
		if err == nil {
			return decoded
		}
	}
	if base64Pattern.MatchString(value) && len(value)%4 == 0 {
		decoded, err := base64.StdEncoding.DecodeString(value)
		if err == nil {
			return decoded
		}
	}
	return nil
}

// VerifyPassword checks a client or employee password against its stored salt and hash.
func VerifyPassword(password, salt, hash string) bool {
	if salt == "" || hash == "" {
		return false
	}
	stored := decodeStoredHash(hash)
	if len(stored) != hashKeyLength {
		return false
	}
	key, err := deriveKey(password, []byte(salt))
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(stored, key) == 1
}

// GenerateAdminHash returns a base64 salt of saltBytes random bytes and the base64 hash.
func GenerateAdminHash(password string, saltBytes int) (salt, hash string, err error) {
	if saltBytes < 8 || saltBytes > 1024 {
		return "", "", fmt.Errorf("salt bytes must be an integer between 8 and 1024")
	}
	raw := make([]byte, saltBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("failed to generate salt: %w", err)
	}
	key, err := deriveKey(password, raw)
	if err != nil {
		return "", "", fmt.Errorf("failed to hash password: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), base64.StdEncoding.EncodeToString(key), nil
}

// VerifyAdminPassword checks the super-admin password; salt and hash are base64.
func VerifyAdminPassword(password, salt, hash string) bool {
	if salt == "" || hash == "" {
		return false
	}
	rawSalt, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return false
	}
	stored, err := base64.StdEncoding.DecodeString(hash)
	if err != nil || len(stored) != hashKeyLength {
		return false
	}
	key, err := deriveKey(password, rawSalt)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(stored, key) == 1
}
