package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxelhealth/voxmigrate/internal/migrate"
	"github.com/voxelhealth/voxmigrate/pkg/models"
)

func TestTransformClinicLocationServiceCharge(t *testing.T) {
	parents := migrate.ParentKeys{migrate.EntityClinicLocation: "loc-target-7"}
	rec, err := transformClinicLocationServiceCharge(models.SourceRow{
		"usc_id":      int64(5),
		"services_id": int64(4),
		"user_id":     int64(42),
		"price":       "95.00",
		"rush_fee":    "20.00",
		"status":      int64(1),
		"add_time":    "2020-01-10 09:00:00",
		"update_time": "0000-00-00 00:00:00",
		"practice_id": int64(7),
	}, parents)
	require.NoError(t, err)

	assert.Equal(t, `"ClinicLocationServiceCharges"`, rec.Table)
	assert.Equal(t, "5", rec.ForcedKey)
	assert.Equal(t, int64(5), col(t, rec, `"clscId"`))
	assert.Equal(t, "loc-target-7", col(t, rec, `"clinicLocationId"`))
	assert.Equal(t, int64(4), col(t, rec, `"serviceId"`))
	assert.Equal(t, "95.00", col(t, rec, `"amount"`))
	assert.Nil(t, col(t, rec, `"updatedAt"`))
}

func TestTransformClinicLocationServiceChargeBadServiceID(t *testing.T) {
	_, err := transformClinicLocationServiceCharge(models.SourceRow{
		"usc_id":      int64(5),
		"services_id": "not-a-number",
	}, nil)
	assert.ErrorIs(t, err, migrate.ErrValidation)
}
