package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todoapp/internal/errors"
)

func testHasher() *PasswordHasher {
	return NewPasswordHasher(HashParams{Memory: 1024, Iterations: 1, Parallelism: 1})
}

func TestPasswordHasher_RoundTrip(t *testing.T) {
	h := testHasher()

	for _, password := range []string{"pw123", "correct horse battery staple", "pässwörd", ""} {
		encoded, err := h.Hash(password)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(encoded, "$argon2id$"))

		ok, err := h.Verify(encoded, password)
		require.NoError(t, err)
		assert.True(t, ok, "password %q should verify", password)
	}
}

func TestPasswordHasher_Mismatch(t *testing.T) {
	h := testHasher()

	encoded, err := h.Hash("pw123")
	require.NoError(t, err)

	ok, err := h.Verify(encoded, "pw124")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordHasher_SaltedPerCall(t *testing.T) {
	h := testHasher()

	first, err := h.Hash("pw123")
	require.NoError(t, err)
	second, err := h.Hash("pw123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Regexp(t, `^\$argon2id\$v=19\$m=1024,t=1,p=1\$[A-Za-z0-9+/]+\$[A-Za-z0-9+/]+$`, first)
}

func TestPasswordHasher_VerifiesForeignParameters(t *testing.T) {
	// a hash written with different cost settings still verifies
	other := NewPasswordHasher(HashParams{Memory: 2048, Iterations: 2, Parallelism: 2})
	encoded, err := other.Hash("pw123")
	require.NoError(t, err)

	ok, err := testHasher().Verify(encoded, "pw123")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPasswordHasher_CorruptHash(t *testing.T) {
	h := testHasher()
	valid, err := h.Hash("pw123")
	require.NoError(t, err)

	tests := []struct {
		name    string
		encoded string
	}{
		{"empty", ""},
		{"plaintext", "pw123"},
		{"bcrypt", "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"},
		{"wrong version", "$argon2id$v=16$m=1024,t=1,p=1$c2FsdHNhbHRzYWx0$a2V5a2V5a2V5"},
		{"bad params", "$argon2id$v=19$m=x,t=1,p=1$c2FsdHNhbHRzYWx0$a2V5a2V5a2V5"},
		{"zero parallelism", "$argon2id$v=19$m=1024,t=1,p=0$c2FsdHNhbHRzYWx0$a2V5a2V5a2V5"},
		{"bad salt", "$argon2id$v=19$m=1024,t=1,p=1$!!!$a2V5a2V5a2V5"},
		{"missing key", valid[:strings.LastIndex(valid, "$")]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := h.Verify(tt.encoded, "pw123")
			assert.False(t, ok)
			assert.ErrorIs(t, err, errors.ErrCorruptCredential)
		})
	}
}
