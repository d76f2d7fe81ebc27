package entities

import (
	"strconv"
	"strings"
	"time"

	"github.com/voxelhealth/voxmigrate/internal/migrate"
	"github.com/voxelhealth/voxmigrate/pkg/models"
	"github.com/voxelhealth/voxmigrate/pkg/utils"
)

func radiologistInvoiceDescriptor() *migrate.Descriptor {
	return &migrate.Descriptor{
		Type: migrate.EntityRadiologistInvoice,
		Query: `SELECT id, invoice_no, radiologist_id, revenue_amount,
			month, year, created_by
		FROM tbl_radiologist_invoices
		ORDER BY id`,
		LegacyKey: legacyKey("id"),
		DependsOn: []migrate.Dependency{
			{Type: migrate.EntityRadiologist, Hard: true, Key: foreignKey("radiologist_id")},
		},
		Transform: transformRadiologistInvoice,
	}
}

func transformRadiologistInvoice(row models.SourceRow, parents migrate.ParentKeys) (*models.TargetRecord, error) {
	invoiceID, err := utils.ConvertToInt64(row["id"])
	if err != nil {
		return nil, migrate.Validationf("bad radiologist invoice id: %v", err)
	}

	month, ok := monthNumber(utils.ConvertToString(row["month"]))
	if !ok {
		return nil, migrate.Validationf("invalid month %q", utils.ConvertToString(row["month"]))
	}
	year, err := utils.ConvertToInt64(row["year"])
	if err != nil || year == 0 {
		return nil, migrate.Validationf("invalid year %v", row["year"])
	}

	invoiceNo := strings.TrimSpace(utils.ConvertToString(row["invoice_no"]))
	if len(invoiceNo) > 30 {
		return nil, migrate.Validationf("invoice_no %q exceeds 30 characters", invoiceNo)
	}

	return &models.TargetRecord{
		Table:     `"RadiologistInvoices"`,
		ForcedKey: utils.KeyString(row["id"]),
		Columns: []models.Column{
			{Name: `"riId"`, Value: invoiceID},
			{Name: `"radioLogistUserId"`, Value: parents[migrate.EntityRadiologist]},
			{Name: `"monthNumber"`, Value: month},
			{Name: `"yearNumber"`, Value: year},
			{Name: `"emailedStatus"`, Value: false},
			{Name: `"invoiceNo"`, Value: nullable(invoiceNo)},
			{Name: `"isDeleted"`, Value: false},
		},
	}, nil
}

// monthNumber accepts the legacy month column's mixture of numbers,
// full month names and abbreviations.
func monthNumber(s string) (int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 && n <= 12 {
			return n, true
		}
		return 0, false
	}
	months := map[string]int{
		"january": 1, "jan": 1, "february": 2, "feb": 2,
		"march": 3, "mar": 3, "april": 4, "apr": 4, "may": 5,
		"june": 6, "jun": 6, "july": 7, "jul": 7,
		"august": 8, "aug": 8, "september": 9, "sep": 9, "sept": 9,
		"october": 10, "oct": 10, "november": 11, "nov": 11,
		"december": 12, "dec": 12,
	}
	n, ok := months[s]
	return n, ok
}

func radiologistInvoiceCaseServiceDescriptor() *migrate.Descriptor {
	return &migrate.Descriptor{
		Type: migrate.EntityRadiologistInvoiceCaseService,
		Query: `SELECT ri.id AS invoice_id, rid.id AS detail_id,
			rid.case_id, rid.revenue_amount, rid.services_name,
			rid.created_at
		FROM tbl_radiologist_invoices ri
		INNER JOIN tbl_radiologist_invoice_details rid
			ON ri.id = rid.radiologist_invoice_id
		ORDER BY ri.id, rid.id`,
		LegacyKey: legacyKey("detail_id"),
		DependsOn: []migrate.Dependency{
			{Type: migrate.EntityRadiologistInvoice, Hard: true, Key: foreignKey("invoice_id")},
			{Type: migrate.EntityCase, Hard: true, Key: foreignKey("case_id")},
		},
		Transform: transformRadiologistInvoiceCaseService,
	}
}

func transformRadiologistInvoiceCaseService(row models.SourceRow, parents migrate.ParentKeys) (*models.TargetRecord, error) {
	detailID, err := utils.ConvertToInt64(row["detail_id"])
	if err != nil {
		return nil, migrate.Validationf("bad detail id: %v", err)
	}

	return &models.TargetRecord{
		Table:     `"RadiologistInvoiceCaseServices"`,
		ForcedKey: utils.KeyString(row["detail_id"]),
		Columns: []models.Column{
			{Name: `"ricsId"`, Value: detailID},
			{Name: `"invoiceId"`, Value: parents[migrate.EntityRadiologistInvoice]},
			{Name: `"caseId"`, Value: parents[migrate.EntityCase]},
			{Name: `"amount"`, Value: row["revenue_amount"]},
			{Name: `"createdAt"`, Value: utils.DateTimeOr(row["created_at"], time.Now().UTC())},
			{Name: `"isDeleted"`, Value: false},
			{Name: `"deletedAt"`, Value: nil},
			{Name: `"updatedAt"`, Value: nil},
		},
	}, nil
}
