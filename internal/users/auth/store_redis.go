// Copyright (c) 2026 Opsboard. All rights reserved.
// Author: huynh.tran.dev@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/huynhtran/opsboard/internal/platform/constants"
)

// RedisLockoutRepository implements LockoutRepository using a Redis hash
// per principal.
//
// Fields: failures (int), lastfailureat (unix seconds), lockeduntil
// (unix seconds, present only while Locked). The whole key carries a
// retention TTL so abandoned counters age out on their own.
type RedisLockoutRepository struct {
	client *redis.Client
}

// NewLockoutRepository creates a new Redis-backed LockoutRepository.
func NewLockoutRepository(client *redis.Client) *RedisLockoutRepository {
	return &RedisLockoutRepository{client: client}
}

func lockoutKey(principal string) string {
	return constants.RedisPrefixLockout + principal
}

/*
Get retrieves the lockout record for a principal.

Description: Returns nil (no error) when the principal has no record.

Parameters:
  - context: context.Context
  - principal: string

Returns:
  - *LockoutRecord: Current counters, or nil
  - error: Connectivity errors
*/
func (repository *RedisLockoutRepository) Get(context context.Context, principal string) (*LockoutRecord, error) {

	// Read the whole hash
	fields, err := repository.client.HGetAll(context, lockoutKey(principal)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis_lockout_get_failed: %w", err)
	}

	// HGetAll returns an empty map for a missing key
	if len(fields) == 0 {
		return nil, nil
	}

	record := &LockoutRecord{}
	if raw, ok := fields["failures"]; ok {
		record.FailedAttempts, _ = strconv.Atoi(raw)
	}
	if raw, ok := fields["lastfailureat"]; ok {
		if seconds, err := strconv.ParseInt(raw, 10, 64); err == nil {
			record.LastFailureAt = time.Unix(seconds, 0).UTC()
		}
	}
	if raw, ok := fields["lockeduntil"]; ok {
		if seconds, err := strconv.ParseInt(raw, 10, 64); err == nil {
			record.LockedUntil = time.Unix(seconds, 0).UTC()
		}
	}

	// Return the record
	return record, nil
}

/*
Increment adds one failed attempt atomically and returns the new count.

Description: Uses HIncrBy so concurrent sign-in attempts against the same
principal never lose a count. The retention TTL is refreshed in the same
pipeline.

Parameters:
  - context: context.Context
  - principal: string
  - at: time.Time (failure timestamp)

Returns:
  - int: Post-increment failure count
  - error: Execution errors
*/
func (repository *RedisLockoutRepository) Increment(context context.Context, principal string, at time.Time) (int, error) {
	key := lockoutKey(principal)

	// Increment, stamp, and refresh TTL in one round trip
	pipeline := repository.client.TxPipeline()
	increment := pipeline.HIncrBy(context, key, "failures", 1)
	pipeline.HSet(context, key, "lastfailureat", at.UTC().Unix())
	pipeline.Expire(context, key, LockoutRecordRetention)

	if _, err := pipeline.Exec(context); err != nil {
		return 0, fmt.Errorf("redis_lockout_increment_failed: %w", err)
	}

	// Return the new count
	return int(increment.Val()), nil
}

/*
Lock stamps the lock expiry on the principal's record.

Parameters:
  - context: context.Context
  - principal: string
  - until: time.Time

Returns:
  - error: Execution errors
*/
func (repository *RedisLockoutRepository) Lock(context context.Context, principal string, until time.Time) error {
	key := lockoutKey(principal)

	// Stamp the expiry and extend retention past the lock window
	pipeline := repository.client.TxPipeline()
	pipeline.HSet(context, key, "lockeduntil", until.UTC().Unix())
	pipeline.Expire(context, key, time.Until(until)+LockoutRecordRetention)

	if _, err := pipeline.Exec(context); err != nil {
		return fmt.Errorf("redis_lockout_lock_failed: %w", err)
	}

	// Return nil on success
	return nil
}

/*
Delete removes the principal's lockout record entirely.

Parameters:
  - context: context.Context
  - principal: string

Returns:
  - error: Deletion failures
*/
func (repository *RedisLockoutRepository) Delete(context context.Context, principal string) error {

	// Delete the hash
	if err := repository.client.Del(context, lockoutKey(principal)).Err(); err != nil {
		return fmt.Errorf("redis_lockout_delete_failed: %w", err)
	}

	// Return nil on success
	return nil
}
