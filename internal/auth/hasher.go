package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"

	"todoapp/internal/errors"
)

// HashParams tunes argon2id. Memory is in KiB.
type HashParams struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultHashParams is the RFC 9106 low-memory recommendation: 64 MiB,
// three passes, four lanes.
func DefaultHashParams() HashParams {
	return HashParams{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 4,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// PasswordHasher hashes and verifies passwords with argon2id, encoding the
// result in the PHC string format.
type PasswordHasher struct {
	params HashParams
	rand   io.Reader
}

// NewPasswordHasher creates a hasher. Zero salt or key lengths fall back to defaults.
func NewPasswordHasher(params HashParams) *PasswordHasher {
	def := DefaultHashParams()
	if params.SaltLength == 0 {
		params.SaltLength = def.SaltLength
	}
	if params.KeyLength == 0 {
		params.KeyLength = def.KeyLength
	}
	if params.Parallelism == 0 {
		params.Parallelism = 1
	}
	if params.Iterations == 0 {
		params.Iterations = 1
	}
	if params.Memory < 8*uint32(params.Parallelism) {
		params.Memory = 8 * uint32(params.Parallelism)
	}
	return &PasswordHasher{params: params, rand: rand.Reader}
}

// Hash returns an encoded hash with a fresh random salt.
func (h *PasswordHasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := io.ReadFull(h.rand, salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, h.params.Iterations, h.params.Memory, h.params.Parallelism, h.params.KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory, h.params.Iterations, h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password matches the encoded hash. A mismatch is
// (false, nil); an unreadable hash is errors.ErrCorruptCredential.
func (h *PasswordHasher) Verify(encoded, password string) (bool, error) {
	params, salt, key, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}
	candidate := argon2.IDKey([]byte(password), salt, params.Iterations, params.Memory, params.Parallelism, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, candidate) == 1, nil
}

func decodeHash(encoded string) (HashParams, []byte, []byte, error) {
	var p HashParams
	corrupt := func(detail string) (HashParams, []byte, []byte, error) {
		return p, nil, nil, fmt.Errorf("%w: %s", errors.ErrCorruptCredential, detail)
	}

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return corrupt("unexpected segment count")
	}
	if parts[1] != "argon2id" {
		return corrupt("unsupported algorithm " + parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return corrupt("unsupported version")
	}
	if n, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil || n != 3 {
		return corrupt("bad parameters")
	}
	if p.Iterations == 0 || p.Parallelism == 0 || p.Memory < 8*uint32(p.Parallelism) {
		return corrupt("parameters out of range")
	}

	salt, err := base64.RawStdEncoding.Strict().DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return corrupt("bad salt")
	}
	key, err := base64.RawStdEncoding.Strict().DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return corrupt("bad key")
	}
	p.SaltLength = uint32(len(salt))
	p.KeyLength = uint32(len(key))
	return p, salt, key, nil
}
