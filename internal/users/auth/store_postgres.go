// Copyright (c) 2026 Opsboard. All rights reserved.
// Author: huynh.tran.dev@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/huynhtran/opsboard/internal/platform/apperr"
	"github.com/huynhtran/opsboard/internal/platform/dberr"
	"github.com/huynhtran/opsboard/internal/platform/sec"
)

// # User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
//
// Storage-specific errors (like pgx.ErrNoRows) are mapped to domain-friendly
// [apperr.AppError] types to avoid leaking storage implementation details.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

const userColumns = "id, username, displayname, credentialhash, role, isactive, lastseenat, createdat, updatedat"

func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	var lastSeen *time.Time

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.DisplayName,
		&user.CredentialHash,
		&user.Role,
		&user.IsActive,
		&lastSeen,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastSeen != nil {
		user.LastSeenAt = *lastSeen
	}
	return user, nil
}

/*
Create persists a new user record into the users.account table.

Description: Initializes timestamps when the caller has not done so.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: Database constraint violations or connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO users.account (
			id, username, displayname, credentialhash, role, isactive, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.Username,
		user.DisplayName,
		user.CredentialHash,
		user.Role,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		// Two requests can race the uniqueness pre-check in the service;
		// the unique index is the authority, surfaced as a Conflict.
		return dberr.Wrap(err, "postgres_user_repo_create_failed")
	}

	return nil
}

/*
FindByUsername retrieves a user record by their canonical username.

Description: Primary lookup for authentication. The caller is responsible
for normalizing the username before the query.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByUsername(context context.Context, username string) (*User, error) {
	query := fmt.Sprintf("SELECT %s FROM users.account WHERE username = $1", userColumns)

	user, err := scanUser(repository.pool.QueryRow(context, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_username_failed: %w", err)
	}

	return user, nil
}

/*
FindByID retrieves a user record by their unique ID.

Description: Primary key resolution, used on every authenticated request
to load the account's current role and status.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	query := fmt.Sprintf("SELECT %s FROM users.account WHERE id = $1", userColumns)

	user, err := scanUser(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_id_failed: %w", err)
	}

	return user, nil
}

/*
List returns a page of accounts ordered by creation time, plus the total.

Parameters:
  - context: context.Context
  - limit: int
  - offset: int

Returns:
  - []User: Page of accounts
  - int: Total account count
  - error: Retrieval failures
*/
func (repository *PostgresUserRepository) List(context context.Context, limit, offset int) ([]User, int, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM users.account ORDER BY createdat ASC LIMIT $1 OFFSET $2", userColumns)

	rows, err := repository.pool.Query(context, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_user_repo_list_failed: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_user_repo_list_scan_failed: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_user_repo_list_rows_failed: %w", err)
	}

	var total int
	if err := repository.pool.QueryRow(context, "SELECT COUNT(*) FROM users.account").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_user_repo_count_failed: %w", err)
	}

	return users, total, nil
}

/*
UpdateRole replaces the account's role.

Parameters:
  - context: context.Context
  - userID: string
  - role: sec.Role

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) UpdateRole(context context.Context, userID string, role sec.Role) error {
	const query = "UPDATE users.account SET role = $2, updatedat = $3 WHERE id = $1"
	_, err := repository.pool.Exec(context, query, userID, role, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_role_failed: %w", err)
	}
	return nil
}

/*
SetActive flips the account between active and suspended.

Parameters:
  - context: context.Context
  - userID: string
  - active: bool

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) SetActive(context context.Context, userID string, active bool) error {
	const query = "UPDATE users.account SET isactive = $2, updatedat = $3 WHERE id = $1"
	_, err := repository.pool.Exec(context, query, userID, active, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_set_active_failed: %w", err)
	}
	return nil
}

/*
UpdatePassword updates only the credential hash for a specific user.

Parameters:
  - context: context.Context
  - userID: string
  - newHash: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) UpdatePassword(context context.Context, userID, newHash string) error {
	const query = "UPDATE users.account SET credentialhash = $2, updatedat = $3 WHERE id = $1"
	_, err := repository.pool.Exec(context, query, userID, newHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_password_failed: %w", err)
	}
	return nil
}

/*
TouchLastSeen stamps the account's last successful sign-in time.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) TouchLastSeen(context context.Context, userID string) error {
	const query = "UPDATE users.account SET lastseenat = $2 WHERE id = $1"
	_, err := repository.pool.Exec(context, query, userID, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_touch_last_seen_failed: %w", err)
	}
	return nil
}

// # Audit Repository

// PostgresAuditRepository implements the AuditRepository interface.
type PostgresAuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new PostgreSQL implementation of AuditRepository.
func NewAuditRepository(pool *pgxpool.Pool) *PostgresAuditRepository {
	return &PostgresAuditRepository{pool: pool}
}

/*
Append persists a single audit fact into the system.auditlog table.

Description: Facts are append-only. There is no update or delete path.

Parameters:
  - context: context.Context
  - entry: *AuditEntry

Returns:
  - error: Storage failures
*/
func (repository *PostgresAuditRepository) Append(context context.Context, entry *AuditEntry) error {
	const query = `
		INSERT INTO system.auditlog (
			id, actorid, action, target, details, createdat
		) VALUES ($1, $2, $3, $4, $5, $6)`

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	_, err := repository.pool.Exec(context, query,
		entry.ID,
		entry.ActorID,
		entry.Action,
		entry.Target,
		entry.Details,
		entry.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_audit_repo_append_failed: %w", err)
	}

	return nil
}
