package migrate

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxelhealth/voxmigrate/pkg/models"
)

func newTestEngine(t *testing.T, dryRun bool) (*sql.DB, *Engine, *IdentityMap) {
	t.Helper()
	db, idmap := newTestIdentityMap(t)
	mustExec(t, db, `CREATE TABLE "Clinics" (
		"cId"   INTEGER PRIMARY KEY AUTOINCREMENT,
		"name"  TEXT NOT NULL,
		"email" TEXT
	)`)
	return db, NewEngine(db, idmap, dryRun), idmap
}

func clinicRecord(name string) *models.TargetRecord {
	return &models.TargetRecord{
		Table: `"Clinics"`,
		Columns: []models.Column{
			{Name: `"name"`, Value: name},
			{Name: `"email"`, Value: nil},
		},
		Returning: `"cId"`,
	}
}

func TestApplyInsertsAndRecordsIdentity(t *testing.T) {
	db, engine, idmap := newTestEngine(t, false)
	ctx := context.Background()

	res := engine.Apply(ctx, EntityClinic, "5", clinicRecord("West Side Imaging"))
	require.NoError(t, res.Err)
	assert.Equal(t, Inserted, res.Outcome)
	assert.NotEmpty(t, res.TargetKey)

	target, err := idmap.Resolve(ctx, EntityClinic, "5")
	require.NoError(t, err)
	assert.Equal(t, res.TargetKey, target)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM "Clinics"`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestApplyAlreadyMigratedShortCircuits(t *testing.T) {
	db, engine, _ := newTestEngine(t, false)
	ctx := context.Background()

	first := engine.Apply(ctx, EntityClinic, "5", clinicRecord("West Side Imaging"))
	require.NoError(t, first.Err)

	second := engine.Apply(ctx, EntityClinic, "5", clinicRecord("West Side Imaging"))
	require.NoError(t, second.Err)
	assert.Equal(t, AlreadyMigrated, second.Outcome)
	assert.Equal(t, first.TargetKey, second.TargetKey)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM "Clinics"`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestApplyConstraintViolationFailsRowAtomically(t *testing.T) {
	db, engine, idmap := newTestEngine(t, false)
	ctx := context.Background()

	rec := &models.TargetRecord{
		Table: `"Clinics"`,
		Columns: []models.Column{
			{Name: `"name"`, Value: nil}, // NOT NULL
		},
		Returning: `"cId"`,
	}
	res := engine.Apply(ctx, EntityClinic, "6", rec)
	assert.Equal(t, Failed, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrConstraintViolation)

	// Neither a target row nor a migrated identity survives the failure.
	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM "Clinics"`).Scan(&count))
	assert.Equal(t, 0, count)

	migrated, err := idmap.IsMigrated(ctx, EntityClinic, "6")
	require.NoError(t, err)
	assert.False(t, migrated)

	var status string
	err = db.QueryRow(`SELECT status FROM migration_identity_map
		WHERE entity_type = $1 AND legacy_key = $2`, string(EntityClinic), "6").Scan(&status)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, status)
}

func TestApplyForcedKeyPreservesLegacyID(t *testing.T) {
	db, idmap := newTestIdentityMap(t)
	mustExec(t, db, `CREATE TABLE "Cases" ("cId" INTEGER PRIMARY KEY, "status" TEXT NOT NULL)`)
	engine := NewEngine(db, idmap, false)
	ctx := context.Background()

	rec := &models.TargetRecord{
		Table: `"Cases"`,
		Columns: []models.Column{
			{Name: `"cId"`, Value: int64(310)},
			{Name: `"status"`, Value: "COMPLETED"},
		},
		ForcedKey: "310",
	}
	res := engine.Apply(ctx, EntityCase, "310", rec)
	require.NoError(t, res.Err)
	assert.Equal(t, Inserted, res.Outcome)
	assert.Equal(t, "310", res.TargetKey)

	target, err := idmap.Resolve(ctx, EntityCase, "310")
	require.NoError(t, err)
	assert.Equal(t, "310", target)
}

func TestApplyDryRunWritesNothing(t *testing.T) {
	db, engine, idmap := newTestEngine(t, true)
	ctx := context.Background()

	res := engine.Apply(ctx, EntityClinic, "5", clinicRecord("West Side Imaging"))
	require.NoError(t, res.Err)
	assert.Equal(t, Inserted, res.Outcome)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM "Clinics"`).Scan(&count))
	assert.Equal(t, 0, count)

	migrated, err := idmap.IsMigrated(ctx, EntityClinic, "5")
	require.NoError(t, err)
	assert.False(t, migrated)
}

func TestBuildInsert(t *testing.T) {
	rec := &models.TargetRecord{
		Table: `"Users"`,
		Columns: []models.Column{
			{Name: `"email"`, Value: "a@b.com"},
			{Name: `"userType"`, Value: "CLINIC_USERS", Cast: `"enum_Users_userType"`},
		},
		Returning: `"uId"`,
	}
	query, args := buildInsert(rec)
	assert.Equal(t,
		`INSERT INTO "Users" ("email", "userType") VALUES ($1, $2::"enum_Users_userType") RETURNING "uId"`,
		query)
	assert.Equal(t, []interface{}{"a@b.com", "CLINIC_USERS"}, args)
}
