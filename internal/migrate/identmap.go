package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Identity record statuses. A (entityType, legacyKey) pair has at most
// one record, and only a migrated record carries a target key dependents
// may resolve.
const (
	StatusPending         = "pending"
	StatusMigrated        = "migrated"
	StatusFailed          = "failed"
	StatusSkippedFiltered = "skipped_filtered"
)

// IdentityMap is the durable mapping from (entity type, legacy key) to
// target key, stored as a table in the target store so a second run can
// resume instead of restart.
type IdentityMap struct {
	db *sql.DB
}

func NewIdentityMap(db *sql.DB) *IdentityMap {
	return &IdentityMap{db: db}
}

// querier is satisfied by both *sql.DB and *sql.Tx; the upsert engine
// records identities inside the per-row transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// EnsureSchema creates the identity map table if it is missing. This is
// the only DDL the engine issues.
func (m *IdentityMap) EnsureSchema(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS migration_identity_map (
			entity_type     TEXT      NOT NULL,
			legacy_key      TEXT      NOT NULL,
			target_key      TEXT,
			status          TEXT      NOT NULL,
			last_attempt_at TIMESTAMP NOT NULL,
			PRIMARY KEY (entity_type, legacy_key)
		)`)
	if err != nil {
		return fmt.Errorf("creating identity map table: %w", classifyStoreError(err))
	}
	return nil
}

// Resolve returns the target key for a migrated legacy key, or an
// ErrUnresolvedDependency when the parent has not been migrated (or does
// not exist in the source at all; callers decide whether that is fatal).
func (m *IdentityMap) Resolve(ctx context.Context, entity EntityType, legacyKey string) (string, error) {
	var targetKey string
	err := m.db.QueryRowContext(ctx, `
		SELECT target_key FROM migration_identity_map
		WHERE entity_type = $1 AND legacy_key = $2 AND status = $3`,
		string(entity), legacyKey, StatusMigrated).Scan(&targetKey)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s %s", ErrUnresolvedDependency, entity, legacyKey)
	}
	if err != nil {
		return "", fmt.Errorf("resolving %s %s: %w", entity, legacyKey, classifyStoreError(err))
	}
	return targetKey, nil
}

// IsMigrated reports whether a legacy key already has a migrated record.
func (m *IdentityMap) IsMigrated(ctx context.Context, entity EntityType, legacyKey string) (bool, error) {
	_, err := m.Resolve(ctx, entity, legacyKey)
	if errors.Is(err, ErrUnresolvedDependency) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Record marks a legacy key migrated. Recording the same target key
// again is a no-op; recording a different target key for an already
// migrated key fails with ErrIdentityConflict and never changes the
// existing mapping.
func (m *IdentityMap) Record(ctx context.Context, entity EntityType, legacyKey, targetKey string) error {
	return m.record(ctx, m.db, entity, legacyKey, targetKey)
}

func (m *IdentityMap) record(ctx context.Context, q querier, entity EntityType, legacyKey, targetKey string) error {
	var existingTarget sql.NullString
	var existingStatus string
	err := q.QueryRowContext(ctx, `
		SELECT target_key, status FROM migration_identity_map
		WHERE entity_type = $1 AND legacy_key = $2`,
		string(entity), legacyKey).Scan(&existingTarget, &existingStatus)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = q.ExecContext(ctx, `
			INSERT INTO migration_identity_map (entity_type, legacy_key, target_key, status, last_attempt_at)
			VALUES ($1, $2, $3, $4, $5)`,
			string(entity), legacyKey, targetKey, StatusMigrated, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("recording %s %s: %w", entity, legacyKey, classifyStoreError(err))
		}
		return nil
	case err != nil:
		return fmt.Errorf("recording %s %s: %w", entity, legacyKey, classifyStoreError(err))
	}

	if existingStatus == StatusMigrated {
		if existingTarget.Valid && existingTarget.String != targetKey {
			return fmt.Errorf("%w: %s %s already mapped to %s, refusing %s",
				ErrIdentityConflict, entity, legacyKey, existingTarget.String, targetKey)
		}
		return nil
	}

	_, err = q.ExecContext(ctx, `
		UPDATE migration_identity_map
		SET target_key = $1, status = $2, last_attempt_at = $3
		WHERE entity_type = $4 AND legacy_key = $5`,
		targetKey, StatusMigrated, time.Now().UTC(), string(entity), legacyKey)
	if err != nil {
		return fmt.Errorf("recording %s %s: %w", entity, legacyKey, classifyStoreError(err))
	}
	return nil
}

// MarkFiltered re-stamps an existing failed or pending record as
// excluded by the business filter, so a row that failed on an earlier
// run and was then filtered out stops looking like a retry candidate in
// the audit trail. Rows the filter rejected from the start have no
// record and get none here.
func (m *IdentityMap) MarkFiltered(ctx context.Context, entity EntityType, legacyKey string) error {
	_, err := m.db.ExecContext(ctx, `
		UPDATE migration_identity_map
		SET status = $1, last_attempt_at = $2
		WHERE entity_type = $3 AND legacy_key = $4 AND status != $5`,
		StatusSkippedFiltered, time.Now().UTC(), string(entity), legacyKey, StatusMigrated)
	if err != nil {
		return fmt.Errorf("marking %s %s filtered: %w", entity, legacyKey, classifyStoreError(err))
	}
	return nil
}

// MarkFailed stamps a failed attempt so the operator can audit it. A
// migrated record is never downgraded; failed rows keep no target key,
// which is what makes them naturally reattempted on the next run.
func (m *IdentityMap) MarkFailed(ctx context.Context, entity EntityType, legacyKey string) error {
	var existingStatus string
	err := m.db.QueryRowContext(ctx, `
		SELECT status FROM migration_identity_map
		WHERE entity_type = $1 AND legacy_key = $2`,
		string(entity), legacyKey).Scan(&existingStatus)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = m.db.ExecContext(ctx, `
			INSERT INTO migration_identity_map (entity_type, legacy_key, target_key, status, last_attempt_at)
			VALUES ($1, $2, NULL, $3, $4)`,
			string(entity), legacyKey, StatusFailed, time.Now().UTC())
	case err == nil && existingStatus != StatusMigrated:
		_, err = m.db.ExecContext(ctx, `
			UPDATE migration_identity_map
			SET status = $1, last_attempt_at = $2
			WHERE entity_type = $3 AND legacy_key = $4`,
			StatusFailed, time.Now().UTC(), string(entity), legacyKey)
	}
	if err != nil {
		return fmt.Errorf("marking %s %s failed: %w", entity, legacyKey, classifyStoreError(err))
	}
	return nil
}
