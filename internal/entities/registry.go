// Package entities declares the migratable entity types of the practice
// platform: their legacy source queries, business filters, dependency
// declarations and transformers. The migrate package stays free of this
// business knowledge and consumes it through descriptors.
package entities

import (
	"time"

	"github.com/voxelhealth/voxmigrate/internal/migrate"
	"github.com/voxelhealth/voxmigrate/pkg/models"
	"github.com/voxelhealth/voxmigrate/pkg/utils"
)

// Options carries the per-run business parameters the descriptors need.
type Options struct {
	// InvoiceCutoff excludes client invoices created before this date.
	InvoiceCutoff time.Time
}

// Schedule returns every entity descriptor in dependency order. The
// order is fixed by the domain: users before clinics, clinics before
// cases, cases before invoice lines.
func Schedule(opts Options) []*migrate.Descriptor {
	return []*migrate.Descriptor{
		userDescriptor(),
		radiologistDescriptor(),
		clinicDescriptor(),
		clinicLocationDescriptor(),
		clinicPatientDescriptor(),
		caseDescriptor(),
		caseFileDescriptor(),
		caseStudyPurposeDescriptor(),
		casePatientDescriptor(),
		caseServiceDescriptor(),
		invoiceDescriptor(opts.InvoiceCutoff),
		invoiceCaseServiceDescriptor(),
		radiologistInvoiceDescriptor(),
		radiologistInvoiceCaseServiceDescriptor(),
		clinicLocationServiceChargeDescriptor(),
	}
}

// legacyKey builds a LegacyKey extractor for a single key column.
func legacyKey(col string) func(models.SourceRow) string {
	return func(row models.SourceRow) string {
		return utils.KeyString(row[col])
	}
}

// foreignKey builds a Dependency.Key extractor for a single FK column.
// NULL and zero values count as an absent reference, matching the legacy
// schema's use of 0 for "none".
func foreignKey(col string) func(models.SourceRow) (string, bool) {
	return func(row models.SourceRow) (string, bool) {
		k := utils.KeyString(row[col])
		if k == "" || k == "0" {
			return "", false
		}
		return k, true
	}
}

// nullable maps empty strings to NULL.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
