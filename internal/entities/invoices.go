package entities

import (
	"strings"
	"time"

	"github.com/voxelhealth/voxmigrate/internal/migrate"
	"github.com/voxelhealth/voxmigrate/pkg/models"
	"github.com/voxelhealth/voxmigrate/pkg/utils"
)

var invoiceTypes = map[string]bool{
	"ADHOC":     true,
	"MONTHLY":   true,
	"YEARLY":    true,
	"QUARTERLY": true,
	"WEEKLY":    true,
	"CUSTOM":    true,
}

// invoiceDescriptor migrates client invoices. The cutoff filter encodes
// the business decision to carry only recent billing history into the
// new platform; older invoices stay in the legacy archive.
func invoiceDescriptor(cutoff time.Time) *migrate.Descriptor {
	return &migrate.Descriptor{
		Type: migrate.EntityInvoice,
		Query: `SELECT ci.id, ci.invoice_no, ci.invoice_type, ci.user_id,
			ci.invoice_amount, ci.payment_status, ci.send_status,
			ci.created_at, ci.month, ci.year, p.practice_id
		FROM tbl_client_invoices ci
		LEFT JOIN tbl_practice p ON p.user_id = ci.user_id
		ORDER BY ci.id`,
		LegacyKey: legacyKey("id"),
		Filter: func(row models.SourceRow) bool {
			created, ok := utils.ConvertDateTime(row["created_at"])
			return ok && !created.Before(cutoff)
		},
		DependsOn: []migrate.Dependency{
			{Type: migrate.EntityClinicLocation, Key: foreignKey("practice_id")},
		},
		Transform: transformInvoice,
	}
}

func transformInvoice(row models.SourceRow, parents migrate.ParentKeys) (*models.TargetRecord, error) {
	invoiceID, err := utils.ConvertToInt64(row["id"])
	if err != nil {
		return nil, migrate.Validationf("bad invoice id: %v", err)
	}

	invoiceNo := utils.ConvertToString(row["invoice_no"])
	if invoiceNo == "" {
		return nil, migrate.Validationf("invoice %d has no invoice_no", invoiceID)
	}
	if len(invoiceNo) > 30 {
		return nil, migrate.Validationf("invoice_no %q exceeds 30 characters", invoiceNo)
	}

	month, err := utils.ConvertToInt64(row["month"])
	if err != nil || month < 1 || month > 12 {
		return nil, migrate.Validationf("invalid month %v", row["month"])
	}
	year, err := utils.ConvertToInt64(row["year"])
	if err != nil || year < 1900 || year > 2100 {
		return nil, migrate.Validationf("invalid year %v", row["year"])
	}

	var location interface{}
	if cl, ok := parents[migrate.EntityClinicLocation]; ok {
		location = cl
	}

	return &models.TargetRecord{
		Table:     `"Invoices"`,
		ForcedKey: utils.KeyString(row["id"]),
		Columns: []models.Column{
			{Name: `"iId"`, Value: invoiceID},
			{Name: `"invoiceType"`, Value: mapInvoiceType(utils.ConvertToString(row["invoice_type"])), Cast: `"enum_Invoices_invoiceType"`},
			{Name: `"clinicLocationId"`, Value: location},
			{Name: `"monthNumber"`, Value: month},
			{Name: `"yearNumber"`, Value: year},
			{Name: `"emailedStatus"`, Value: utils.ConvertToBool(row["send_status"])},
			{Name: `"createdAt"`, Value: utils.DateTimeOr(row["created_at"], time.Now().UTC())},
			{Name: `"updatedAt"`, Value: time.Now().UTC()},
			{Name: `"isDeleted"`, Value: false},
			{Name: `"deletedAt"`, Value: nil},
			{Name: `"invoiceNo"`, Value: invoiceNo},
		},
	}, nil
}

// mapInvoiceType folds legacy invoice types into the target enum; the
// legacy one-off types land on ADHOC, added to the enum for this
// migration.
func mapInvoiceType(legacy string) string {
	t := strings.ToUpper(strings.TrimSpace(legacy))
	if invoiceTypes[t] {
		return t
	}
	return "ADHOC"
}

func invoiceCaseServiceDescriptor() *migrate.Descriptor {
	return &migrate.Descriptor{
		Type: migrate.EntityInvoiceCaseService,
		Query: `SELECT d.id, d.client_invoice_id, d.case_id,
			d.total_amount, d.case_date, r.rush_fee
		FROM tbl_client_invoice_details d
		INNER JOIN tbl_client_invoice_reports r ON d.id = r.client_invoice_details_id
		ORDER BY d.id, r.id`,
		LegacyKey: legacyKey("id"),
		DependsOn: []migrate.Dependency{
			{Type: migrate.EntityInvoice, Hard: true, Key: foreignKey("client_invoice_id")},
			{Type: migrate.EntityCase, Hard: true, Key: foreignKey("case_id")},
		},
		Transform: transformInvoiceCaseService,
	}
}

func transformInvoiceCaseService(row models.SourceRow, parents migrate.ParentKeys) (*models.TargetRecord, error) {
	return &models.TargetRecord{
		Table:     `"InvoiceCaseServices"`,
		Returning: `"icsId"`,
		Columns: []models.Column{
			{Name: `"invoiceId"`, Value: parents[migrate.EntityInvoice]},
			{Name: `"caseId"`, Value: parents[migrate.EntityCase]},
			{Name: `"amount"`, Value: row["total_amount"]},
			{Name: `"rushFee"`, Value: row["rush_fee"]},
			{Name: `"createdAt"`, Value: utils.DateTimeOr(row["case_date"], time.Now().UTC())},
			{Name: `"isDeleted"`, Value: false},
			{Name: `"deletedAt"`, Value: nil},
			{Name: `"updatedAt"`, Value: nil},
		},
	}, nil
}
