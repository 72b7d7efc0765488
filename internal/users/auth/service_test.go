// Copyright (c) 2026 Opsboard. All rights reserved.
// Author: huynh.tran.dev@gmail.com

package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huynhtran/opsboard/internal/platform/apperr"
	"github.com/huynhtran/opsboard/internal/platform/sec"
	"github.com/huynhtran/opsboard/internal/users/auth"
)

// # Fakes

// fakeUserRepo is an in-memory UserRepository. It counts FindByUsername
// calls so tests can assert the lockout gate runs before any lookup.
type fakeUserRepo struct {
	mu                  sync.Mutex
	users               map[string]*auth.User // keyed by ID
	findByUsernameCalls int
	createCalls         int
	findByIDErr         error // forced FindByID failure when set
}

func newFakeUserRepo(seed ...*auth.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[string]*auth.User{}}
	for _, user := range seed {
		repo.users[user.ID] = user
	}
	return repo
}

func (repo *fakeUserRepo) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.findByUsernameCalls++
	for _, user := range repo.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repo *fakeUserRepo) FindByID(_ context.Context, id string) (*auth.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.findByIDErr != nil {
		return nil, repo.findByIDErr
	}
	user, ok := repo.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	copied := *user
	return &copied, nil
}

func (repo *fakeUserRepo) Create(_ context.Context, user *auth.User) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.createCalls++
	copied := *user
	repo.users[user.ID] = &copied
	return nil
}

func (repo *fakeUserRepo) List(_ context.Context, limit, offset int) ([]auth.User, int, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	all := make([]auth.User, 0, len(repo.users))
	for _, user := range repo.users {
		all = append(all, *user)
	}
	return all, len(all), nil
}

func (repo *fakeUserRepo) UpdateRole(_ context.Context, userID string, role sec.Role) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if user, ok := repo.users[userID]; ok {
		user.Role = role
	}
	return nil
}

func (repo *fakeUserRepo) SetActive(_ context.Context, userID string, active bool) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if user, ok := repo.users[userID]; ok {
		user.IsActive = active
	}
	return nil
}

func (repo *fakeUserRepo) UpdatePassword(_ context.Context, userID, newHash string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if user, ok := repo.users[userID]; ok {
		user.CredentialHash = newHash
	}
	return nil
}

func (repo *fakeUserRepo) TouchLastSeen(_ context.Context, userID string) error {
	return nil
}

// fakeAuditRepo records appended facts; err makes every append fail.
type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*auth.AuditEntry
	err     error
}

func (repo *fakeAuditRepo) Append(_ context.Context, entry *auth.AuditEntry) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.err != nil {
		return repo.err
	}
	repo.entries = append(repo.entries, entry)
	return nil
}

func (repo *fakeAuditRepo) actions() []string {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	out := make([]string, 0, len(repo.entries))
	for _, entry := range repo.entries {
		out = append(out, entry.Action)
	}
	return out
}

// # Harness

type serviceHarness struct {
	service *auth.Service
	users   *fakeUserRepo
	lockout *memoryLockoutStore
	audits  *fakeAuditRepo
	codec   *sec.SessionCodec
	now     time.Time
	setNow  func(time.Time)
}

func seedUser(t *testing.T, username, password string, role sec.Role, active bool) *auth.User {
	t.Helper()
	hash, err := sec.HashSecret(password)
	require.NoError(t, err)
	return &auth.User{
		ID:             "id-" + username,
		Username:       username,
		DisplayName:    username,
		CredentialHash: hash,
		Role:           role,
		IsActive:       active,
	}
}

func newHarness(t *testing.T, seed ...*auth.User) *serviceHarness {
	t.Helper()

	codec, err := sec.NewSessionCodec([]byte("an-adequately-long-test-secret"), 8*time.Hour)
	require.NoError(t, err)

	users := newFakeUserRepo(seed...)
	lockoutStore := newMemoryLockoutStore()
	audits := &fakeAuditRepo{}

	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	current := start

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	service := auth.NewService(
		users,
		auth.NewLockoutTracker(lockoutStore, 5, 15*time.Minute),
		audits,
		codec,
		logger,
		func() time.Time { return current },
	)

	return &serviceHarness{
		service: service,
		users:   users,
		lockout: lockoutStore,
		audits:  audits,
		codec:   codec,
		now:     start,
		setNow:  func(at time.Time) { current = at },
	}
}

// # Sign-In

/*
TestSignIn_Success verifies the happy path: valid credentials yield a
verifiable token, the expiry matches the configured lifetime, and a
success fact is recorded.
*/
func TestSignIn_Success(t *testing.T) {
	h := newHarness(t, seedUser(t, "alice", "correct-password", sec.RoleEditor, true))

	session, err := h.service.SignIn(context.Background(), auth.SignInInput{
		Username: "alice",
		Password: "correct-password",
	})
	require.NoError(t, err)

	// 1. Token verifies and names the subject
	claims, err := h.codec.Verify(session.Token, h.now)
	require.NoError(t, err)
	assert.Equal(t, "id-alice", claims.Subject)

	// 2. Expiry is now + lifetime
	assert.Equal(t, h.now.Add(8*time.Hour), session.ExpiresAt)

	// 3. The account rides along, with the audit fact recorded
	assert.Equal(t, "alice", session.User.Username)
	assert.Contains(t, h.audits.actions(), auth.AuditSignInSuccess)
}

/*
TestSignIn_NormalizesPrincipal verifies whitespace and case folding: the
padded uppercase form signs in as the canonical account.
*/
func TestSignIn_NormalizesPrincipal(t *testing.T) {
	h := newHarness(t, seedUser(t, "alice", "correct-password", sec.RoleViewer, true))

	session, err := h.service.SignIn(context.Background(), auth.SignInInput{
		Username: "  ALICE  ",
		Password: "correct-password",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", session.User.Username)
}

/*
TestSignIn_GenericFailures verifies that unknown principals, wrong secrets,
and suspended accounts all collapse into one indistinguishable message.
*/
func TestSignIn_GenericFailures(t *testing.T) {
	cases := []struct {
		name     string
		username string
		password string
	}{
		{"unknown principal", "nobody", "whatever-password"},
		{"wrong secret", "alice", "wrong-password"},
		{"suspended account", "mallory", "correct-password"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t,
				seedUser(t, "alice", "correct-password", sec.RoleViewer, true),
				seedUser(t, "mallory", "correct-password", sec.RoleViewer, false),
			)

			_, err := h.service.SignIn(context.Background(), auth.SignInInput{
				Username: tc.username,
				Password: tc.password,
			})

			require.Error(t, err)
			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, "UNAUTHORIZED", appError.Code)
			assert.Equal(t, "Invalid credentials", appError.Message)
			assert.Contains(t, h.audits.actions(), auth.AuditSignInFailure)
		})
	}
}

/*
TestSignIn_LockoutFlow verifies the full throttle sequence: the attempt
that crosses the threshold still gets the generic message, the NEXT attempt
gets the 423 with the rounded remaining time, and a locked-out principal
never reaches the account lookup.
*/
func TestSignIn_LockoutFlow(t *testing.T) {
	h := newHarness(t, seedUser(t, "alice", "correct-password", sec.RoleViewer, true))
	ctx := context.Background()

	// 1. Five wrong attempts, every one answered generically
	for i := 0; i < 5; i++ {
		_, err := h.service.SignIn(ctx, auth.SignInInput{Username: "alice", Password: "wrong"})
		require.Error(t, err)
		assert.Equal(t, "Invalid credentials", apperr.As(err).Message)
	}

	lookupsBeforeLockedAttempt := h.users.findByUsernameCalls

	// 2. Sixth attempt one minute later reports the lock, not the credentials
	h.setNow(h.now.Add(time.Minute))
	_, err := h.service.SignIn(ctx, auth.SignInInput{Username: "alice", Password: "correct-password"})
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "ACCOUNT_LOCKED", appError.Code)
	assert.Equal(t, "Too many failed sign-in attempts. Try again in about 14 minutes.", appError.Message)
	assert.Equal(t, h.now.Add(15*time.Minute), appError.LockedUntil)
	assert.True(t, apperr.IsLocked(err))

	// 3. The locked attempt performed no account lookup at all
	assert.Equal(t, lookupsBeforeLockedAttempt, h.users.findByUsernameCalls)

	// 4. After the window the correct password works and resets the counter
	h.setNow(h.now.Add(16 * time.Minute))
	_, err = h.service.SignIn(ctx, auth.SignInInput{Username: "alice", Password: "correct-password"})
	require.NoError(t, err)

	record, err := h.lockout.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, record)
}

/*
TestSignIn_AuditFailureDoesNotBlock verifies a broken audit sink never
turns a valid sign-in into a failure.
*/
func TestSignIn_AuditFailureDoesNotBlock(t *testing.T) {
	h := newHarness(t, seedUser(t, "alice", "correct-password", sec.RoleViewer, true))
	h.audits.err = errors.New("sink unavailable")

	session, err := h.service.SignIn(context.Background(), auth.SignInInput{
		Username: "alice",
		Password: "correct-password",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
}

// # Session Resolution

/*
TestResolveSession verifies identity resolution reads the CURRENT role and
status, so role changes and suspensions take effect mid-session.
*/
func TestResolveSession(t *testing.T) {
	h := newHarness(t, seedUser(t, "alice", "correct-password", sec.RoleViewer, true))
	ctx := context.Background()

	session, err := h.service.SignIn(ctx, auth.SignInInput{Username: "alice", Password: "correct-password"})
	require.NoError(t, err)

	// 1. Fresh token resolves with the current role
	identity, err := h.service.ResolveSession(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, "id-alice", identity.UserID)
	assert.Equal(t, sec.RoleViewer, identity.Role)

	// 2. A role change is visible on the very next resolution
	require.NoError(t, h.users.UpdateRole(ctx, "id-alice", sec.RoleAdmin))
	identity, err = h.service.ResolveSession(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, sec.RoleAdmin, identity.Role)

	// 3. Suspension rejects the still-valid token
	require.NoError(t, h.users.SetActive(ctx, "id-alice", false))
	_, err = h.service.ResolveSession(ctx, session.Token)
	require.Error(t, err)

	// 4. Expired tokens surface the dedicated sentinel
	require.NoError(t, h.users.SetActive(ctx, "id-alice", true))
	h.setNow(h.now.Add(9 * time.Hour))
	_, err = h.service.ResolveSession(ctx, session.Token)
	assert.ErrorIs(t, err, sec.ErrExpiredToken)

	// 5. Garbage never resolves
	_, err = h.service.ResolveSession(ctx, "garbage.token")
	assert.ErrorIs(t, err, sec.ErrMalformedToken)
}

/*
TestResolveSession_StoreFault verifies that a failing principal store is
surfaced as an internal fault, not misreported as a bad token. A valid
session holder must never be told to re-authenticate because the database
is down.
*/
func TestResolveSession_StoreFault(t *testing.T) {
	h := newHarness(t, seedUser(t, "alice", "correct-password", sec.RoleViewer, true))
	ctx := context.Background()

	session, err := h.service.SignIn(ctx, auth.SignInInput{Username: "alice", Password: "correct-password"})
	require.NoError(t, err)

	// 1. The store starts failing after the token was issued
	h.users.findByIDErr = errors.New("pg: connection refused")

	_, err = h.service.ResolveSession(ctx, session.Token)
	require.Error(t, err)
	assert.Equal(t, "INTERNAL_ERROR", apperr.As(err).Code)

	// 2. A vanished subject is still an authentication rejection
	h.users.findByIDErr = nil
	delete(h.users.users, "id-alice")

	_, err = h.service.ResolveSession(ctx, session.Token)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
}

// # Password Change

/*
TestChangeOwnPassword verifies the self-service path: the current secret
must re-prove before the new one is accepted.
*/
func TestChangeOwnPassword(t *testing.T) {
	h := newHarness(t, seedUser(t, "alice", "correct-password", sec.RoleViewer, true))
	ctx := context.Background()
	identity := &sec.Identity{UserID: "id-alice", Username: "alice", Role: sec.RoleViewer}

	// 1. Wrong current secret is rejected
	err := h.service.ChangeOwnPassword(ctx, identity, "wrong-password", "brand-new-password")
	require.Error(t, err)
	assert.Equal(t, "Current password is incorrect", apperr.As(err).Message)

	// 2. Too-short replacements are rejected
	err = h.service.ChangeOwnPassword(ctx, identity, "correct-password", "short")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)

	// 3. Valid change takes effect immediately
	err = h.service.ChangeOwnPassword(ctx, identity, "correct-password", "brand-new-password")
	require.NoError(t, err)

	_, err = h.service.SignIn(ctx, auth.SignInInput{Username: "alice", Password: "brand-new-password"})
	require.NoError(t, err)
	assert.Contains(t, h.audits.actions(), auth.AuditPasswordChanged)
}

// # Bootstrap

/*
TestSeedOwner verifies idempotent owner seeding: one create, stable
credentials, and a repeat call that changes nothing.
*/
func TestSeedOwner(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	owner, err := h.service.SeedOwner(ctx, "Root-Admin", "bootstrap-passphrase")
	require.NoError(t, err)
	assert.Equal(t, "root-admin", owner.Username)
	assert.Equal(t, sec.RoleOwner, owner.Role)
	assert.True(t, owner.IsActive)
	assert.Equal(t, 1, h.users.createCalls)

	// 1. Seeding again is a no-op returning the existing account
	again, err := h.service.SeedOwner(ctx, "root-admin", "bootstrap-passphrase")
	require.NoError(t, err)
	assert.Equal(t, owner.ID, again.ID)
	assert.Equal(t, 1, h.users.createCalls)

	// 2. The seeded credential signs in
	_, err = h.service.SignIn(ctx, auth.SignInInput{Username: "root-admin", Password: "bootstrap-passphrase"})
	require.NoError(t, err)
}

// # Sign-Out

/*
TestSignOut verifies the sign-out fact is recorded for the acting principal.
*/
func TestSignOut(t *testing.T) {
	h := newHarness(t, seedUser(t, "alice", "correct-password", sec.RoleViewer, true))
	identity := &sec.Identity{UserID: "id-alice", Username: "alice", Role: sec.RoleViewer}

	require.NoError(t, h.service.SignOut(context.Background(), identity))
	assert.Contains(t, h.audits.actions(), auth.AuditSignOut)
}
