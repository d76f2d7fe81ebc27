package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/voxelhealth/voxmigrate/pkg/logger"
	"github.com/voxelhealth/voxmigrate/pkg/models"
)

// Migrator drives one entity type end to end: read candidate rows,
// resolve parents through the identity map, transform, apply through the
// upsert engine, and fold per-row results into an outcome fragment.
//
// Rows are processed one at a time in source-read order because later
// rows of the same module may depend on identity entries written by
// earlier ones.
type Migrator struct {
	source *sql.DB
	engine *Engine
	idmap  *IdentityMap
}

func NewMigrator(source *sql.DB, engine *Engine, idmap *IdentityMap) *Migrator {
	return &Migrator{source: source, engine: engine, idmap: idmap}
}

// Run migrates every candidate row of the descriptor. Row-level problems
// are recorded in the outcome; the returned error is non-nil only for
// module-level conditions that must halt the run (connection loss,
// identity conflict, cancellation).
func (m *Migrator) Run(ctx context.Context, desc *Descriptor) (*Outcome, error) {
	out := NewOutcome(desc.Type)

	rows, err := m.readSourceRows(ctx, desc.Query)
	if err != nil {
		return out, fmt.Errorf("%s: %w", desc.Type, err)
	}
	logger.Infof("%s: %d candidate rows", desc.Type, len(rows))

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		out.Seen++

		legacyKey := desc.LegacyKey(row)
		if legacyKey == "" {
			out.fail(legacyKey, "row has no legacy key", false)
			continue
		}

		if desc.Filter != nil && !desc.Filter(row) {
			out.Skipped++
			if err := m.idmap.MarkFiltered(ctx, desc.Type, legacyKey); err != nil {
				logger.Warnf("%s %s: %v", desc.Type, legacyKey, err)
			}
			continue
		}

		parents, failed := m.resolveParents(ctx, desc, row, legacyKey, out)
		if failed {
			continue
		}

		rec, err := desc.Transform(row, parents)
		if err != nil {
			logger.Warnf("%s %s: %v", desc.Type, legacyKey, err)
			out.fail(legacyKey, err.Error(), false)
			continue
		}

		res := m.engine.Apply(ctx, desc.Type, legacyKey, rec)
		switch res.Outcome {
		case Inserted:
			out.Migrated++
		case AlreadyMigrated:
			out.Duplicates++
		case Failed:
			if errors.Is(res.Err, ErrIdentityConflict) || errors.Is(res.Err, ErrConnection) {
				return out, fmt.Errorf("%s %s: %w", desc.Type, legacyKey, res.Err)
			}
			logger.Warnf("%s %s: %v", desc.Type, legacyKey, res.Err)
			out.fail(legacyKey, res.Err.Error(), false)
		}
	}

	logger.Infof("%s: migrated=%d skipped=%d duplicate=%d failed=%d",
		desc.Type, out.Migrated, out.Skipped, out.Duplicates, out.Failed)
	return out, nil
}

// resolveParents looks up every declared dependency of the row. It
// reports failed=true when the row must not proceed; the outcome already
// carries the failure detail, marked fatal for hard dependencies.
func (m *Migrator) resolveParents(ctx context.Context, desc *Descriptor, row models.SourceRow, legacyKey string, out *Outcome) (ParentKeys, bool) {
	parents := make(ParentKeys, len(desc.DependsOn))
	for _, dep := range desc.DependsOn {
		fk, ok := dep.Key(row)
		if !ok || fk == "" {
			if dep.Hard {
				out.fail(legacyKey, fmt.Sprintf("missing required %s reference", dep.Type), true)
				return nil, true
			}
			continue
		}
		targetKey, err := m.idmap.Resolve(ctx, dep.Type, fk)
		if err != nil {
			if !errors.Is(err, ErrUnresolvedDependency) {
				out.fail(legacyKey, err.Error(), true)
				return nil, true
			}
			logger.Warnf("%s %s: %v", desc.Type, legacyKey, err)
			out.fail(legacyKey, err.Error(), dep.Hard)
			return nil, true
		}
		parents[dep.Type] = targetKey
	}
	return parents, false
}

// readSourceRows runs the descriptor query and scans every result row
// into a column-name map, decoding []byte cells to strings.
func (m *Migrator) readSourceRows(ctx context.Context, query string) ([]models.SourceRow, error) {
	rows, err := m.source.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: reading source rows: %v", ErrConnection, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: reading source columns: %v", ErrConnection, err)
	}

	var result []models.SourceRow
	for rows.Next() {
		values := make([]interface{}, len(cols))
		pointers := make([]interface{}, len(cols))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("%w: scanning source row: %v", ErrConnection, err)
		}

		row := make(models.SourceRow, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating source rows: %v", ErrConnection, err)
	}
	return result, nil
}
