package entities

import (
	"time"

	"github.com/voxelhealth/voxmigrate/internal/migrate"
	"github.com/voxelhealth/voxmigrate/pkg/models"
	"github.com/voxelhealth/voxmigrate/pkg/utils"
)

func caseFileDescriptor() *migrate.Descriptor {
	return &migrate.Descriptor{
		Type: migrate.EntityCaseFile,
		Query: `SELECT cases_file_id, cases_id, filetitle, filesize,
			bucket_url, uploaded_by, usertype
		FROM tbl_cases_files_new
		ORDER BY cases_file_id`,
		LegacyKey: legacyKey("cases_file_id"),
		DependsOn: []migrate.Dependency{
			{Type: migrate.EntityCase, Hard: true, Key: foreignKey("cases_id")},
			{Type: migrate.EntityUser, Key: foreignKey("uploaded_by")},
		},
		Transform: transformCaseFile,
	}
}

func transformCaseFile(row models.SourceRow, parents migrate.ParentKeys) (*models.TargetRecord, error) {
	fileID, err := utils.ConvertToInt64(row["cases_file_id"])
	if err != nil {
		return nil, migrate.Validationf("bad cases_file_id: %v", err)
	}

	var fileSize int64
	if s, err := utils.ConvertToInt64(row["filesize"]); err == nil {
		fileSize = s
	}

	// CaseFiles.uploadByUserId is NOT NULL in the target schema, so a
	// file whose uploader never migrated is a row-level failure.
	uploader, ok := parents[migrate.EntityUser]
	if !ok {
		return nil, migrate.Validationf("uploader %s not migrated", utils.KeyString(row["uploaded_by"]))
	}

	return &models.TargetRecord{
		Table:     `"CaseFiles"`,
		ForcedKey: utils.KeyString(row["cases_file_id"]),
		Columns: []models.Column{
			{Name: `"cfId"`, Value: fileID},
			{Name: `"caseId"`, Value: parents[migrate.EntityCase]},
			{Name: `"fileName"`, Value: utils.ConvertToString(row["filetitle"])},
			{Name: `"fileSize"`, Value: fileSize},
			{Name: `"objectKey"`, Value: utils.ConvertToString(row["bucket_url"])},
			{Name: `"uploadByUserId"`, Value: uploader},
			{Name: `"createdAt"`, Value: time.Now().UTC()},
			{Name: `"isDeleted"`, Value: false},
			{Name: `"deletedAt"`, Value: nil},
			{Name: `"deletedByUserId"`, Value: nil},
		},
	}, nil
}

func caseStudyPurposeDescriptor() *migrate.Descriptor {
	return &migrate.Descriptor{
		Type: migrate.EntityCaseStudyPurpose,
		Query: `SELECT study_purposes_id, cases_id, doctor_id, airway,
			general, impaction, implant, orthodontic, pathology, sinus,
			pain, doctors_notes, cases_comments, add_time, update_time
		FROM tbl_study_purposes
		ORDER BY study_purposes_id`,
		LegacyKey: legacyKey("study_purposes_id"),
		DependsOn: []migrate.Dependency{
			{Type: migrate.EntityCase, Hard: true, Key: foreignKey("cases_id")},
		},
		Transform: transformCaseStudyPurpose,
	}
}

func transformCaseStudyPurpose(row models.SourceRow, parents migrate.ParentKeys) (*models.TargetRecord, error) {
	purposeID, err := utils.ConvertToInt64(row["study_purposes_id"])
	if err != nil {
		return nil, migrate.Validationf("bad study_purposes_id: %v", err)
	}

	return &models.TargetRecord{
		Table:     `"CaseStudyPurposes"`,
		ForcedKey: utils.KeyString(row["study_purposes_id"]),
		Columns: []models.Column{
			{Name: `"cspId"`, Value: purposeID},
			{Name: `"caseId"`, Value: parents[migrate.EntityCase]},
			{Name: `"airwayFlag"`, Value: purposeFlag(row["airway"])},
			{Name: `"generalFlag"`, Value: purposeFlag(row["general"])},
			{Name: `"impactionFlag"`, Value: purposeFlag(row["impaction"])},
			{Name: `"implantFlag"`, Value: purposeFlag(row["implant"])},
			{Name: `"orthodonticFlag"`, Value: purposeFlag(row["orthodontic"])},
			{Name: `"pathologyFlag"`, Value: purposeFlag(row["pathology"])},
			{Name: `"sinusFlag"`, Value: purposeFlag(row["sinus"])},
			{Name: `"painFlag"`, Value: purposeFlag(row["pain"])},
			{Name: `"doctorsNotes"`, Value: nullable(utils.ConvertToString(row["doctors_notes"]))},
			{Name: `"caseComments"`, Value: nullable(utils.ConvertToString(row["cases_comments"]))},
			{Name: `"updatedAt"`, Value: utils.DateTimeOr(row["update_time"], time.Now().UTC())},
		},
	}, nil
}

// purposeFlag maps the legacy Y/N (or 1/0) study purpose markers.
func purposeFlag(val interface{}) bool {
	switch utils.ConvertToString(val) {
	case "Y", "y", "1":
		return true
	default:
		return false
	}
}

func caseServiceDescriptor() *migrate.Descriptor {
	return &migrate.Descriptor{
		Type: migrate.EntityCaseService,
		Query: `SELECT cases_report_id, cases_id, doctors_id,
			add_services_id, services_name, price, rush_fee, status,
			add_time, update_time
		FROM tbl_cases_report
		ORDER BY cases_report_id`,
		LegacyKey: legacyKey("cases_report_id"),
		DependsOn: []migrate.Dependency{
			{Type: migrate.EntityCase, Hard: true, Key: foreignKey("cases_id")},
		},
		Transform: transformCaseService,
	}
}

func transformCaseService(row models.SourceRow, parents migrate.ParentKeys) (*models.TargetRecord, error) {
	reportID, err := utils.ConvertToInt64(row["cases_report_id"])
	if err != nil {
		return nil, migrate.Validationf("bad cases_report_id: %v", err)
	}
	// MasterServices is pre-seeded with the legacy service ids, so the
	// reference passes through; an unseeded id fails on the FK.
	serviceID, err := utils.ConvertToInt64(row["add_services_id"])
	if err != nil {
		return nil, migrate.Validationf("bad add_services_id: %v", err)
	}

	rushFee := row["rush_fee"]
	hasRush := false
	if f, err := utils.ConvertToInt64(rushFee); err == nil && f > 0 {
		hasRush = true
	}

	return &models.TargetRecord{
		Table:     `"CaseServices"`,
		ForcedKey: utils.KeyString(row["cases_report_id"]),
		Columns: []models.Column{
			{Name: `"csId"`, Value: reportID},
			{Name: `"caseId"`, Value: parents[migrate.EntityCase]},
			{Name: `"serviceId"`, Value: serviceID},
			{Name: `"hasRush"`, Value: hasRush},
			{Name: `"amount"`, Value: row["price"]},
			{Name: `"rushFee"`, Value: rushFee},
			{Name: `"createdAt"`, Value: utils.DateTimeOr(row["add_time"], time.Now().UTC())},
		},
	}, nil
}
