// Copyright (c) 2026 Opsboard. All rights reserved.
// Author: huynh.tran.dev@gmail.com

// Package sec isolates security-sensitive code (credential hashing, session
// token signing, role hierarchy) from the domain logic.
//
// # Architecture
//
// It acts as an Infrastructure service injected into the Application layer.
// Nothing in this package performs I/O: hashing and token verification are
// pure functions of their inputs, the server-held secret, and the clock.
package sec

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// # Session Tokens

// MinSecretLen is the minimum acceptable signing secret length in bytes.
const MinSecretLen = 16

// Token verification failures. Both map to a rejected request; expiry is
// kept distinct so the delivery layer can phrase it for users.
var (
	ErrMalformedToken = errors.New("sec: malformed session token")
	ErrExpiredToken   = errors.New("sec: expired session token")
)

// SessionClaims is the payload embedded inside a session token.
//
// # Trust Model
//
// The server keeps no session table: possession of a token whose signature
// verifies is sufficient proof of identity for Subject until ExpiresAt.
// The only revocation lever is rotating the signing secret, which
// invalidates every outstanding token at once.
type SessionClaims struct {
	// Subject is the principal (account) ID this token was issued to.
	Subject string `json:"sub"`
	// IssuedAt is the Unix second the token was created.
	IssuedAt int64 `json:"iat"`
	// ExpiresAt is the Unix second the token stops verifying.
	ExpiresAt int64 `json:"exp"`
}

// SessionCodec issues and verifies signed, time-bounded session tokens.
//
// # Wire Format
//
// A token is "<payload>.<signature>" where payload is the base64url
// (unpadded) JSON claims and signature is the base64url HMAC-SHA256 of the
// encoded payload under the server secret.
type SessionCodec struct {
	secret   []byte
	lifetime time.Duration
}

// NewSessionCodec constructs a codec from the server-held signing secret.
func NewSessionCodec(secret []byte, lifetime time.Duration) (*SessionCodec, error) {
	if len(secret) < MinSecretLen {
		return nil, fmt.Errorf("sec: signing secret must be at least %d bytes, got %d", MinSecretLen, len(secret))
	}
	if lifetime <= 0 {
		return nil, fmt.Errorf("sec: session lifetime must be positive, got %s", lifetime)
	}

	return &SessionCodec{secret: secret, lifetime: lifetime}, nil
}

// Lifetime returns the configured session lifetime.
func (codec *SessionCodec) Lifetime() time.Duration {
	return codec.lifetime
}

/*
Issue builds and signs a token for the given subject.

Description: The claim is {sub, iat: now, exp: now + lifetime}. Issuance is
pure; nothing is persisted.

Parameters:
  - subjectID: string (principal ID)
  - now: time.Time (clock injected for testability)

Returns:
  - string: Signed opaque token
  - error: Serialization failures only
*/
func (codec *SessionCodec) Issue(subjectID string, now time.Time) (string, error) {
	claims := SessionClaims{
		Subject:   subjectID,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(codec.lifetime).Unix(),
	}

	payloadJSON, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("sec: failed to serialize claims: %w", err)
	}

	payload := base64.RawURLEncoding.EncodeToString(payloadJSON)
	signature := codec.sign(payload)

	return payload + "." + signature, nil
}

/*
Verify checks a token's signature and expiry, returning its claims.

Description: The signature is recomputed over the payload segment and
compared in constant time. Verification order is signature first, then
payload decode, then expiry — a forged token never reaches the JSON parser.

Parameters:
  - token: string (attacker-controlled)
  - now: time.Time

Returns:
  - *SessionClaims: Decoded claims on success
  - error: ErrMalformedToken or ErrExpiredToken
*/
func (codec *SessionCodec) Verify(token string, now time.Time) (*SessionClaims, error) {
	payload, signature, found := strings.Cut(token, ".")
	if !found || payload == "" || signature == "" {
		return nil, ErrMalformedToken
	}

	expected := codec.sign(payload)
	if !constantTimeEqual(signature, expected) {
		return nil, ErrMalformedToken
	}

	payloadJSON, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil, ErrMalformedToken
	}

	claims := &SessionClaims{}
	if err := json.Unmarshal(payloadJSON, claims); err != nil {
		return nil, ErrMalformedToken
	}

	if claims.Subject == "" || claims.IssuedAt == 0 || claims.ExpiresAt == 0 {
		return nil, ErrMalformedToken
	}

	if claims.ExpiresAt <= now.Unix() {
		return nil, ErrExpiredToken
	}

	return claims, nil
}

// sign computes the base64url HMAC-SHA256 signature of the encoded payload.
func (codec *SessionCodec) sign(encodedPayload string) string {
	mac := hmac.New(sha256.New, codec.secret)
	mac.Write([]byte(encodedPayload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// constantTimeEqual compares two strings without leaking the mismatch index.
func constantTimeEqual(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}
