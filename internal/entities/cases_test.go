package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxelhealth/voxmigrate/internal/migrate"
	"github.com/voxelhealth/voxmigrate/pkg/models"
)

func legacyCaseRow() models.SourceRow {
	return models.SourceRow{
		"cases_id":                int64(310),
		"voxel_cases_id":          "VOX-000310",
		"doctor_id":               int64(42),
		"next_appointment_date":   nil,
		"scan_date":               "2021-05-20 09:00:00",
		"services_total_cost":     "150.00",
		"draft_status":            int64(0),
		"submitted_status":        int64(1),
		"completed_status":        int64(1),
		"archived_status":         int64(0),
		"assigned_radiologist_id": int64(9),
		"revenue_amount":          "90.00",
		"review_status":           "reviewed",
		"case_result_summary":     "",
		"internal_comments":       "rush case",
		"add_time":                "2021-05-19 17:45:00",
		"update_time":             "2021-06-01 12:00:00",
		"submitted_date":          "2021-05-21 10:00:00",
		"completed_date":          "0000-00-00 00:00:00",
		"practice_id":             int64(7),
	}
}

func TestMapCaseStatusPrecedence(t *testing.T) {
	tests := []struct {
		name                                  string
		draft, submitted, completed, archived int64
		want                                  string
	}{
		{"archived wins", 1, 1, 1, 1, "ARCHIVED"},
		{"completed over submitted", 0, 1, 1, 0, "COMPLETED"},
		{"submitted", 1, 1, 0, 0, "SUBMITED"},
		{"bare draft", 1, 0, 0, 0, "CREATED"},
		{"no flags", 0, 0, 0, 0, "DRAFT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapCaseStatus(models.SourceRow{
				"draft_status":     tt.draft,
				"submitted_status": tt.submitted,
				"completed_status": tt.completed,
				"archived_status":  tt.archived,
			})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapReviewStatus(t *testing.T) {
	assert.Equal(t, "", mapReviewStatus(""))
	assert.Equal(t, "SUBMITED", mapReviewStatus("submitted"))
	assert.Equal(t, "RESOLVED", mapReviewStatus("Reviewed"))
	assert.Equal(t, "ASSIGNED", mapReviewStatus("assigned"))
	assert.Equal(t, "SUBMITED", mapReviewStatus("something-else"))
}

func TestTransformCase(t *testing.T) {
	parents := migrate.ParentKeys{
		migrate.EntityUser:           "user-target-42",
		migrate.EntityRadiologist:    "rad-target-9",
		migrate.EntityClinicLocation: "loc-target-7",
	}
	rec, err := transformCase(legacyCaseRow(), parents)
	require.NoError(t, err)

	assert.Equal(t, `"Cases"`, rec.Table)
	assert.Equal(t, "310", rec.ForcedKey)
	assert.Empty(t, rec.Returning)
	assert.Equal(t, int64(310), col(t, rec, `"cId"`))
	assert.Equal(t, "user-target-42", col(t, rec, `"doctorUserId"`))
	assert.Equal(t, "user-target-42", col(t, rec, `"createdByUserId"`))
	assert.Equal(t, "rad-target-9", col(t, rec, `"radioLogistUserId"`))
	assert.Equal(t, "loc-target-7", col(t, rec, `"clinicLocationId"`))
	assert.Equal(t, "COMPLETED", col(t, rec, `"status"`))
	assert.Equal(t, "RESOLVED", col(t, rec, `"reviewStatus"`))
	assert.Equal(t, "VOX-000310", col(t, rec, `"voxelCaseId"`))

	// Zero completion date maps to NULL, not the zero time.
	assert.Nil(t, col(t, rec, `"completedAt"`))
	assert.NotNil(t, col(t, rec, `"submittedAt"`))
}

func TestTransformCaseWithoutOptionalParents(t *testing.T) {
	parents := migrate.ParentKeys{migrate.EntityUser: "user-target-42"}
	rec, err := transformCase(legacyCaseRow(), parents)
	require.NoError(t, err)

	assert.Nil(t, col(t, rec, `"radioLogistUserId"`))
	assert.Nil(t, col(t, rec, `"clinicLocationId"`))
}
