// Copyright (c) 2026 Opsboard. All rights reserved.
// Author: huynh.tran.dev@gmail.com

package sec_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huynhtran/opsboard/internal/platform/sec"
)

/*
TestHashSecret_RoundTrip verifies that a hashed secret verifies against the
original and rejects everything else.
*/
func TestHashSecret_RoundTrip(t *testing.T) {
	hash, err := sec.HashSecret("correct horse battery staple")
	require.NoError(t, err)

	// 1. Encoded form is versioned and salted
	parts := strings.Split(hash, ":")
	require.Len(t, parts, 3)
	assert.Equal(t, "v1", parts[0])

	// 2. The original secret verifies
	assert.True(t, sec.VerifySecret("correct horse battery staple", hash))

	// 3. Anything else does not
	assert.False(t, sec.VerifySecret("correct horse battery stapl", hash))
	assert.False(t, sec.VerifySecret("", hash))
}

/*
TestHashSecret_SaltUniqueness verifies that hashing the same secret twice
produces different encodings.
*/
func TestHashSecret_SaltUniqueness(t *testing.T) {
	first, err := sec.HashSecret("hunter2hunter2")
	require.NoError(t, err)

	second, err := sec.HashSecret("hunter2hunter2")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	// Both still verify independently
	assert.True(t, sec.VerifySecret("hunter2hunter2", first))
	assert.True(t, sec.VerifySecret("hunter2hunter2", second))
}

/*
TestHashSecretWithSalt_Deterministic verifies that a fixed salt produces a
stable hash, which the bootstrap seeding relies on.
*/
func TestHashSecretWithSalt_Deterministic(t *testing.T) {
	salt := []byte("0123456789abcdef")

	first, err := sec.HashSecretWithSalt("bootstrap-passphrase", salt)
	require.NoError(t, err)

	second, err := sec.HashSecretWithSalt("bootstrap-passphrase", salt)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, sec.VerifySecret("bootstrap-passphrase", first))
}

/*
TestVerifySecret_MalformedHash verifies that corrupt or truncated stored
hashes fail closed instead of panicking.
*/
func TestVerifySecret_MalformedHash(t *testing.T) {
	cases := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"wrong version", "v2:aabb:ccdd"},
		{"missing segments", "v1:aabb"},
		{"non-hex salt", "v1:zzzz:ccdd"},
		{"non-hex key", "v1:aabb:zzzz"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.False(t, sec.VerifySecret("whatever", tc.hash))
		})
	}
}
