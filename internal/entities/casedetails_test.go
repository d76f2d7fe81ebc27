package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxelhealth/voxmigrate/internal/migrate"
	"github.com/voxelhealth/voxmigrate/pkg/models"
)

func TestTransformCaseFile(t *testing.T) {
	parents := migrate.ParentKeys{
		migrate.EntityCase: "310",
		migrate.EntityUser: "user-target-42",
	}
	rec, err := transformCaseFile(models.SourceRow{
		"cases_file_id": int64(88),
		"cases_id":      int64(310),
		"filetitle":     "scan.dcm",
		"filesize":      int64(204800),
		"bucket_url":    "cases/310/scan.dcm",
		"uploaded_by":   int64(42),
		"usertype":      "doctor",
	}, parents)
	require.NoError(t, err)

	assert.Equal(t, `"CaseFiles"`, rec.Table)
	assert.Equal(t, "88", rec.ForcedKey)
	assert.Equal(t, int64(88), col(t, rec, `"cfId"`))
	assert.Equal(t, "310", col(t, rec, `"caseId"`))
	assert.Equal(t, "user-target-42", col(t, rec, `"uploadByUserId"`))
	assert.Equal(t, int64(204800), col(t, rec, `"fileSize"`))
}

func TestTransformCaseFileRequiresUploader(t *testing.T) {
	parents := migrate.ParentKeys{migrate.EntityCase: "310"}
	_, err := transformCaseFile(models.SourceRow{
		"cases_file_id": int64(88),
		"uploaded_by":   int64(42),
	}, parents)
	assert.ErrorIs(t, err, migrate.ErrValidation)
}

func TestPurposeFlag(t *testing.T) {
	assert.True(t, purposeFlag("Y"))
	assert.True(t, purposeFlag("y"))
	assert.True(t, purposeFlag(int64(1)))
	assert.False(t, purposeFlag("N"))
	assert.False(t, purposeFlag(""))
	assert.False(t, purposeFlag(nil))
}

func TestTransformCaseStudyPurpose(t *testing.T) {
	parents := migrate.ParentKeys{migrate.EntityCase: "310"}
	rec, err := transformCaseStudyPurpose(models.SourceRow{
		"study_purposes_id": int64(14),
		"cases_id":          int64(310),
		"airway":            "Y",
		"general":           "N",
		"impaction":         "",
		"implant":           "Y",
		"orthodontic":       "N",
		"pathology":         "N",
		"sinus":             "N",
		"pain":              "Y",
		"doctors_notes":     "check lower molar",
		"cases_comments":    "",
		"update_time":       "2021-05-20 10:00:00",
	}, parents)
	require.NoError(t, err)

	assert.Equal(t, "14", rec.ForcedKey)
	assert.Equal(t, "310", col(t, rec, `"caseId"`))
	assert.Equal(t, true, col(t, rec, `"airwayFlag"`))
	assert.Equal(t, false, col(t, rec, `"generalFlag"`))
	assert.Equal(t, true, col(t, rec, `"painFlag"`))
	assert.Equal(t, "check lower molar", col(t, rec, `"doctorsNotes"`))
	assert.Nil(t, col(t, rec, `"caseComments"`))
}

func TestTransformCaseService(t *testing.T) {
	parents := migrate.ParentKeys{migrate.EntityCase: "310"}
	rec, err := transformCaseService(models.SourceRow{
		"cases_report_id": int64(21),
		"cases_id":        int64(310),
		"add_services_id": int64(4),
		"services_name":   "CBCT read",
		"price":           "120.00",
		"rush_fee":        int64(25),
	}, parents)
	require.NoError(t, err)

	assert.Equal(t, "21", rec.ForcedKey)
	assert.Equal(t, int64(4), col(t, rec, `"serviceId"`))
	assert.Equal(t, true, col(t, rec, `"hasRush"`))

	noRush := models.SourceRow{
		"cases_report_id": int64(22),
		"cases_id":        int64(310),
		"add_services_id": int64(4),
		"price":           "120.00",
		"rush_fee":        int64(0),
	}
	rec, err = transformCaseService(noRush, parents)
	require.NoError(t, err)
	assert.Equal(t, false, col(t, rec, `"hasRush"`))
}
