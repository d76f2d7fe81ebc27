// Package migrate contains the migration orchestration and
// identity-remapping engine: the identity map, the upsert engine, the
// per-entity migrator and the run orchestrator. Business knowledge about
// individual entity types lives in the entities package and reaches this
// engine only through Descriptor values.
package migrate

import "github.com/voxelhealth/voxmigrate/pkg/models"

// EntityType tags one migratable entity type.
type EntityType string

const (
	EntityUser                          EntityType = "User"
	EntityRadiologist                   EntityType = "Radiologist"
	EntityClinic                        EntityType = "Clinic"
	EntityClinicLocation                EntityType = "ClinicLocation"
	EntityClinicPatient                 EntityType = "ClinicPatient"
	EntityCase                          EntityType = "Case"
	EntityCaseFile                      EntityType = "CaseFile"
	EntityCaseStudyPurpose              EntityType = "CaseStudyPurpose"
	EntityCasePatient                   EntityType = "CasePatient"
	EntityCaseService                   EntityType = "CaseService"
	EntityInvoice                       EntityType = "Invoice"
	EntityInvoiceCaseService            EntityType = "InvoiceCaseService"
	EntityRadiologistInvoice            EntityType = "RadiologistInvoice"
	EntityRadiologistInvoiceCaseService EntityType = "RadiologistInvoiceCaseService"
	EntityClinicLocationServiceCharge   EntityType = "ClinicLocationServiceCharge"
)

// Dependency declares a parent entity type resolved per row through the
// identity map before the row is transformed.
type Dependency struct {
	Type EntityType

	// Hard marks parents that are structurally required: a row whose
	// hard parent cannot be resolved is a fatal failure that halts the
	// run once the module finishes.
	Hard bool

	// Key extracts the legacy foreign key for this parent from the
	// source row. ok=false means the reference is absent (NULL) and
	// resolution is skipped for the row.
	Key func(row models.SourceRow) (key string, ok bool)
}

// ParentKeys carries the resolved target keys for a row, one per
// declared dependency that was present.
type ParentKeys map[EntityType]string

// Descriptor wires one entity type end to end: where its candidate rows
// come from, which parents they need, and how a row becomes a target
// record.
type Descriptor struct {
	Type EntityType

	// Query is the read-only select issued against the legacy store.
	Query string

	// LegacyKey extracts the identity-map key of a source row.
	LegacyKey func(row models.SourceRow) string

	// Filter is the optional business filter; rows it rejects are
	// counted as skipped and never reach the identity map.
	Filter func(row models.SourceRow) bool

	DependsOn []Dependency

	// Transform produces the target record for a row. It must be free
	// of store side effects; a validation error fails the row, not the
	// module.
	Transform func(row models.SourceRow, parents ParentKeys) (*models.TargetRecord, error)
}
