// Copyright (c) 2026 Opsboard. All rights reserved.
// Author: huynh.tran.dev@gmail.com

package account

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/huynhtran/opsboard/internal/platform/database/schema"
	"github.com/huynhtran/opsboard/internal/users/auth"
)

// # Audit Log Repository

// PostgresAuditLogRepository implements AuditLogRepository using pgx.
type PostgresAuditLogRepository struct {
	pool *pgxpool.Pool
}

// NewAuditLogRepository creates a new PostgreSQL implementation of AuditLogRepository.
func NewAuditLogRepository(pool *pgxpool.Pool) *PostgresAuditLogRepository {
	return &PostgresAuditLogRepository{pool: pool}
}

/*
List returns a page of audit facts ordered newest-first, plus the total.

Parameters:
  - context: context.Context
  - limit: int
  - offset: int

Returns:
  - []auth.AuditEntry: Page of facts
  - int: Total fact count
  - error: Retrieval failures
*/
func (repository *PostgresAuditLogRepository) List(context context.Context, limit, offset int) ([]auth.AuditEntry, int, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		ORDER BY %s DESC
		LIMIT $1 OFFSET $2`,
		schema.SystemAuditLog.ID, schema.SystemAuditLog.ActorID,
		schema.SystemAuditLog.Action, schema.SystemAuditLog.Target,
		schema.SystemAuditLog.Details, schema.SystemAuditLog.CreatedAt,
		schema.SystemAuditLog.Table, schema.SystemAuditLog.CreatedAt)

	rows, err := repository.pool.Query(context, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_audit_log_repo_list_failed: %w", err)
	}
	defer rows.Close()

	entries := []auth.AuditEntry{}
	for rows.Next() {
		entry := auth.AuditEntry{}
		err := rows.Scan(
			&entry.ID,
			&entry.ActorID,
			&entry.Action,
			&entry.Target,
			&entry.Details,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_audit_log_repo_scan_failed: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_audit_log_repo_rows_failed: %w", err)
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", schema.SystemAuditLog.Table)
	if err := repository.pool.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_audit_log_repo_count_failed: %w", err)
	}

	return entries, total, nil
}
