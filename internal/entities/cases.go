package entities

import (
	"strings"
	"time"

	"github.com/voxelhealth/voxmigrate/internal/migrate"
	"github.com/voxelhealth/voxmigrate/pkg/models"
	"github.com/voxelhealth/voxmigrate/pkg/utils"
)

// caseQuery joins the doctor's practice so the clinic location parent
// can be keyed per row; the legacy schema has no direct case→practice
// reference.
const caseQuery = `SELECT c.cases_id, c.voxel_cases_id, c.doctor_id,
		c.next_appointment_date, c.scan_date, c.services_total_cost,
		c.draft_status, c.submitted_status, c.completed_status,
		c.archived_status, c.assigned_radiologist_id, c.revenue_amount,
		c.review_status, c.case_result_summary, c.internal_comments,
		c.add_time, c.update_time, c.submitted_date, c.completed_date,
		p.practice_id
	FROM tbl_cases c
	LEFT JOIN tbl_practice p ON p.user_id = c.doctor_id
	ORDER BY c.cases_id`

func caseDescriptor() *migrate.Descriptor {
	return &migrate.Descriptor{
		Type:      migrate.EntityCase,
		Query:     caseQuery,
		LegacyKey: legacyKey("cases_id"),
		DependsOn: []migrate.Dependency{
			// Every case structurally requires its doctor; a case whose
			// doctor never migrated is a data-integrity stop signal.
			{Type: migrate.EntityUser, Hard: true, Key: foreignKey("doctor_id")},
			{Type: migrate.EntityRadiologist, Key: foreignKey("assigned_radiologist_id")},
			{Type: migrate.EntityClinicLocation, Key: foreignKey("practice_id")},
		},
		Transform: transformCase,
	}
}

func transformCase(row models.SourceRow, parents migrate.ParentKeys) (*models.TargetRecord, error) {
	casesID, err := utils.ConvertToInt64(row["cases_id"])
	if err != nil {
		return nil, migrate.Validationf("bad cases_id: %v", err)
	}

	now := time.Now().UTC()
	doctor := parents[migrate.EntityUser]

	var radiologist interface{}
	if uid, ok := parents[migrate.EntityRadiologist]; ok {
		radiologist = uid
	}
	var location interface{}
	if cl, ok := parents[migrate.EntityClinicLocation]; ok {
		location = cl
	}

	var reviewStatus interface{}
	if rs := mapReviewStatus(utils.ConvertToString(row["review_status"])); rs != "" {
		reviewStatus = rs
	}

	var scannedAt interface{}
	if t, ok := utils.ConvertDateTime(row["scan_date"]); ok {
		scannedAt = t
	}
	var submittedAt interface{}
	if t, ok := utils.ConvertDateTime(row["submitted_date"]); ok {
		submittedAt = t
	}
	var completedAt interface{}
	if t, ok := utils.ConvertDateTime(row["completed_date"]); ok {
		completedAt = t
	}
	var nextAppointmentAt interface{}
	if t, ok := utils.ConvertDateTime(row["next_appointment_date"]); ok {
		nextAppointmentAt = t
	}

	return &models.TargetRecord{
		Table:     `"Cases"`,
		ForcedKey: utils.KeyString(row["cases_id"]),
		Columns: []models.Column{
			{Name: `"cId"`, Value: casesID},
			{Name: `"voxelCaseId"`, Value: nullable(utils.ConvertToString(row["voxel_cases_id"]))},
			{Name: `"doctorUserId"`, Value: doctor},
			{Name: `"radioLogistUserId"`, Value: radiologist},
			{Name: `"clinicLocationId"`, Value: location},
			{Name: `"scannedAt"`, Value: scannedAt},
			{Name: `"status"`, Value: mapCaseStatus(row), Cast: `"enum_Cases_status"`},
			{Name: `"reviewStatus"`, Value: reviewStatus, Cast: `"enum_Cases_reviewStatus"`},
			{Name: `"totalServiceCost"`, Value: row["services_total_cost"]},
			{Name: `"createdByUserId"`, Value: doctor},
			{Name: `"isDeleted"`, Value: false},
			{Name: `"createdAt"`, Value: utils.DateTimeOr(row["add_time"], now)},
			{Name: `"updatedAt"`, Value: utils.DateTimeOr(row["update_time"], now)},
			{Name: `"nextAppointmentAt"`, Value: nextAppointmentAt},
			{Name: `"revenueAmount"`, Value: row["revenue_amount"]},
			{Name: `"internalComments"`, Value: nullable(utils.ConvertToString(row["internal_comments"]))},
			{Name: `"caseResultSummary"`, Value: nullable(utils.ConvertToString(row["case_result_summary"]))},
			{Name: `"submittedAt"`, Value: submittedAt},
			{Name: `"completedAt"`, Value: completedAt},
		},
	}, nil
}

// mapCaseStatus collapses the four legacy stage flags into the target
// status enum. Archive wins over completed, completed over submitted;
// the bare-draft case is CREATED.
func mapCaseStatus(row models.SourceRow) string {
	draft := utils.ConvertToBool(row["draft_status"])
	submitted := utils.ConvertToBool(row["submitted_status"])
	completed := utils.ConvertToBool(row["completed_status"])
	archived := utils.ConvertToBool(row["archived_status"])

	switch {
	case archived:
		return "ARCHIVED"
	case completed:
		return "COMPLETED"
	case submitted:
		// The target enum spells it SUBMITED.
		return "SUBMITED"
	case draft:
		return "CREATED"
	default:
		return "DRAFT"
	}
}

func mapReviewStatus(legacy string) string {
	switch strings.ToLower(strings.TrimSpace(legacy)) {
	case "":
		return ""
	case "submitted":
		return "SUBMITED"
	case "assigned":
		return "ASSIGNED"
	case "reviewed":
		return "RESOLVED"
	case "accepted":
		return "ACCEPTED"
	case "rejected":
		return "REJECTED"
	default:
		return "SUBMITED"
	}
}
