// Copyright (c) 2026 Opsboard. All rights reserved.
// Author: huynh.tran.dev@gmail.com

package sec

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// # Credential Hashing

// Argon2id derivation parameters. Tuned for interactive logins: one pass
// over 64 MiB with four lanes.
const (
	hashVersion  = "v1"
	hashSaltLen  = 16
	hashKeyLen   = 32
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// HashSecret derives a storable hash from a plain-text secret using Argon2id.
//
// # Format
//
// The returned string is "v1:<saltHex>:<keyHex>". The salt is 16 random
// bytes, so two calls with the same secret produce different encodings.
func HashSecret(secret string) (string, error) {
	salt := make([]byte, hashSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("sec: failed to generate salt: %w", err)
	}
	return HashSecretWithSalt(secret, salt)
}

// HashSecretWithSalt derives a hash with a caller-supplied salt.
//
// # Usage
//
// This variant is deterministic and exists only so that bootstrap
// credentials (the seeded owner account) can be reproduced from an
// operator-supplied passphrase. Per-user storage must use [HashSecret].
func HashSecretWithSalt(secret string, salt []byte) (string, error) {
	if len(salt) < hashSaltLen {
		return "", fmt.Errorf("sec: salt must be at least %d bytes, got %d", hashSaltLen, len(salt))
	}

	key := argon2.IDKey([]byte(secret), salt, argonTime, argonMemory, argonThreads, hashKeyLen)

	return fmt.Sprintf("%s:%s:%s", hashVersion, hex.EncodeToString(salt), hex.EncodeToString(key)), nil
}

// VerifySecret reports whether the plain-text secret matches the encoded hash.
//
// # Fail-Closed Behavior
//
// Any malformed input (wrong segment count, unknown version, invalid hex)
// returns false rather than an error, so a corrupted stored hash can never
// be mishandled as a valid credential. The derived-key comparison is
// constant time.
func VerifySecret(secret, encodedHash string) bool {
	parts := strings.Split(encodedHash, ":")
	if len(parts) != 3 {
		return false
	}

	if parts[0] != hashVersion {
		return false
	}

	salt, err := hex.DecodeString(parts[1])
	if err != nil || len(salt) < hashSaltLen {
		return false
	}

	storedKey, err := hex.DecodeString(parts[2])
	if err != nil || len(storedKey) != hashKeyLen {
		return false
	}

	derivedKey := argon2.IDKey([]byte(secret), salt, argonTime, argonMemory, argonThreads, hashKeyLen)

	return subtle.ConstantTimeCompare(derivedKey, storedKey) == 1
}
