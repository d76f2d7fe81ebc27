package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/voxelhealth/voxmigrate/pkg/logger"
	"github.com/voxelhealth/voxmigrate/pkg/models"
)

// ApplyOutcome classifies the result of applying one target record.
type ApplyOutcome int

const (
	Inserted ApplyOutcome = iota
	AlreadyMigrated
	Failed
)

// ApplyResult is what the upsert engine reports per row. Err is set only
// for Failed.
type ApplyResult struct {
	Outcome   ApplyOutcome
	TargetKey string
	Err       error
}

// Engine applies transformed records to the target store exactly once
// per logical source row. It only ever inserts; reconciling
// already-migrated rows is a separate concern, not handled here.
type Engine struct {
	target *sql.DB
	idmap  *IdentityMap
	dryRun bool
}

func NewEngine(target *sql.DB, idmap *IdentityMap, dryRun bool) *Engine {
	return &Engine{target: target, idmap: idmap, dryRun: dryRun}
}

// Apply inserts the record and records the new identity in a single
// transaction, so a crash mid-row never leaves a target row committed
// without its identity record or vice versa. A legacy key that is
// already migrated short-circuits to AlreadyMigrated without touching
// the target tables.
func (e *Engine) Apply(ctx context.Context, entity EntityType, legacyKey string, rec *models.TargetRecord) ApplyResult {
	existing, err := e.idmap.Resolve(ctx, entity, legacyKey)
	switch {
	case err == nil:
		return ApplyResult{Outcome: AlreadyMigrated, TargetKey: existing}
	case !errors.Is(err, ErrUnresolvedDependency):
		return ApplyResult{Outcome: Failed, Err: err}
	}

	if e.dryRun {
		logger.Infof("[DRY RUN] would insert %s %s into %s", entity, legacyKey, rec.Table)
		return ApplyResult{Outcome: Inserted, TargetKey: rec.ForcedKey}
	}

	tx, err := e.target.BeginTx(ctx, nil)
	if err != nil {
		return ApplyResult{Outcome: Failed, Err: fmt.Errorf("beginning row transaction: %w", classifyStoreError(err))}
	}

	query, args := buildInsert(rec)
	targetKey := rec.ForcedKey
	if rec.Returning != "" {
		err = tx.QueryRowContext(ctx, query, args...).Scan(&targetKey)
	} else {
		_, err = tx.ExecContext(ctx, query, args...)
	}
	if err == nil {
		err = e.idmap.record(ctx, tx, entity, legacyKey, targetKey)
	}
	if err != nil {
		tx.Rollback()
		classified := classifyStoreError(err)
		if markErr := e.idmap.MarkFailed(ctx, entity, legacyKey); markErr != nil {
			logger.Warnf("could not mark %s %s failed: %v", entity, legacyKey, markErr)
		}
		return ApplyResult{Outcome: Failed, Err: classified}
	}
	if err := tx.Commit(); err != nil {
		return ApplyResult{Outcome: Failed, Err: fmt.Errorf("committing row: %w", classifyStoreError(err))}
	}
	return ApplyResult{Outcome: Inserted, TargetKey: targetKey}
}

// buildInsert renders a parameterized INSERT for the record, with
// optional enum casts on individual placeholders and an optional
// RETURNING clause for store-generated keys.
func buildInsert(rec *models.TargetRecord) (string, []interface{}) {
	names := make([]string, 0, len(rec.Columns))
	placeholders := make([]string, 0, len(rec.Columns))
	args := make([]interface{}, 0, len(rec.Columns))

	for i, col := range rec.Columns {
		names = append(names, col.Name)
		ph := fmt.Sprintf("$%d", i+1)
		if col.Cast != "" {
			ph += "::" + col.Cast
		}
		placeholders = append(placeholders, ph)
		args = append(args, col.Value)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		rec.Table, strings.Join(names, ", "), strings.Join(placeholders, ", "))
	if rec.Returning != "" {
		query += " RETURNING " + rec.Returning
	}
	return query, args
}
