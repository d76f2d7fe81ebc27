package entities

import (
	"time"

	"github.com/voxelhealth/voxmigrate/internal/migrate"
	"github.com/voxelhealth/voxmigrate/pkg/models"
	"github.com/voxelhealth/voxmigrate/pkg/utils"
)

func clinicLocationServiceChargeDescriptor() *migrate.Descriptor {
	return &migrate.Descriptor{
		Type: migrate.EntityClinicLocationServiceCharge,
		Query: `SELECT usc.usc_id, usc.services_id, usc.user_id,
			usc.price, usc.rush_fee, usc.status, usc.add_time,
			usc.update_time, p.practice_id
		FROM tbl_user_service_charge usc
		LEFT JOIN tbl_practice p ON p.user_id = usc.user_id
		ORDER BY usc.usc_id`,
		LegacyKey: legacyKey("usc_id"),
		DependsOn: []migrate.Dependency{
			{Type: migrate.EntityClinicLocation, Hard: true, Key: foreignKey("practice_id")},
		},
		Transform: transformClinicLocationServiceCharge,
	}
}

func transformClinicLocationServiceCharge(row models.SourceRow, parents migrate.ParentKeys) (*models.TargetRecord, error) {
	chargeID, err := utils.ConvertToInt64(row["usc_id"])
	if err != nil {
		return nil, migrate.Validationf("bad usc_id: %v", err)
	}
	serviceID, err := utils.ConvertToInt64(row["services_id"])
	if err != nil {
		return nil, migrate.Validationf("bad services_id: %v", err)
	}

	var updatedAt interface{}
	if t, ok := utils.ConvertDateTime(row["update_time"]); ok {
		updatedAt = t
	}

	return &models.TargetRecord{
		Table:     `"ClinicLocationServiceCharges"`,
		ForcedKey: utils.KeyString(row["usc_id"]),
		Columns: []models.Column{
			{Name: `"clscId"`, Value: chargeID},
			{Name: `"clinicLocationId"`, Value: parents[migrate.EntityClinicLocation]},
			{Name: `"serviceId"`, Value: serviceID},
			{Name: `"amount"`, Value: row["price"]},
			{Name: `"rushFee"`, Value: row["rush_fee"]},
			{Name: `"createdAt"`, Value: utils.DateTimeOr(row["add_time"], time.Now().UTC())},
			{Name: `"updatedAt"`, Value: updatedAt},
		},
	}, nil
}
