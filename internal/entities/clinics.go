package entities

import (
	"strings"
	"time"

	"github.com/voxelhealth/voxmigrate/internal/migrate"
	"github.com/voxelhealth/voxmigrate/pkg/models"
	"github.com/voxelhealth/voxmigrate/pkg/utils"
)

// A legacy practice becomes a Clinic plus one ClinicLocation. Both
// descriptors read the same tbl_practice rows; the location module keys
// its clinic parent on the shared practice_id.

const practiceQuery = `SELECT practice_id, practice_name, street_line_one,
		street_line_two, city, region, zipcode, country, phonenumber,
		status, user_id, add_time, update_time
	FROM tbl_practice
	WHERE practice_name IS NOT NULL AND practice_name != ''
	ORDER BY practice_id`

func clinicDescriptor() *migrate.Descriptor {
	return &migrate.Descriptor{
		Type:      migrate.EntityClinic,
		Query:     practiceQuery,
		LegacyKey: legacyKey("practice_id"),
		DependsOn: []migrate.Dependency{
			{Type: migrate.EntityUser, Key: foreignKey("user_id")},
		},
		Transform: transformClinic,
	}
}

func transformClinic(row models.SourceRow, parents migrate.ParentKeys) (*models.TargetRecord, error) {
	title := utils.ConvertToString(row["practice_name"])
	if strings.TrimSpace(title) == "" {
		return nil, migrate.Validationf("practice has no name")
	}

	// Legacy status is a tinyint; anything other than 1/0 stays NULL.
	var status interface{}
	switch utils.KeyString(row["status"]) {
	case "1":
		status = "APPROVED"
	case "0":
		status = "DISABLE"
	}

	var owner interface{}
	if uid, ok := parents[migrate.EntityUser]; ok {
		owner = uid
	}

	return &models.TargetRecord{
		Table:     `"Clinics"`,
		Returning: `"cId"`,
		Columns: []models.Column{
			{Name: `"ownerUserId"`, Value: owner},
			{Name: `"title"`, Value: title},
			{Name: `"contactNumber"`, Value: nullable(utils.ConvertToString(row["phonenumber"]))},
			{Name: `"address"`, Value: nullable(practiceAddress(row))},
			{Name: `"status"`, Value: status, Cast: `"enum_Clinics_status"`},
			{Name: `"isDeleted"`, Value: false},
			{Name: `"invoiceType"`, Value: "PAY_AS_YOU_GO", Cast: `"enum_Clinics_invoiceType"`},
		},
	}, nil
}

func clinicLocationDescriptor() *migrate.Descriptor {
	return &migrate.Descriptor{
		Type:      migrate.EntityClinicLocation,
		Query:     practiceQuery,
		LegacyKey: legacyKey("practice_id"),
		DependsOn: []migrate.Dependency{
			{Type: migrate.EntityClinic, Hard: true, Key: foreignKey("practice_id")},
		},
		Transform: transformClinicLocation,
	}
}

func transformClinicLocation(row models.SourceRow, parents migrate.ParentKeys) (*models.TargetRecord, error) {
	zipcode := utils.ConvertToString(row["zipcode"])
	if zipcode == "" {
		zipcode = "00000"
	}

	return &models.TargetRecord{
		Table:     `"ClinicLocations"`,
		Returning: `"clId"`,
		Columns: []models.Column{
			{Name: `"clinicId"`, Value: parents[migrate.EntityClinic]},
			{Name: `"contactNumber"`, Value: nullable(utils.ConvertToString(row["phonenumber"]))},
			{Name: `"address"`, Value: nullable(practiceAddress(row))},
			{Name: `"status"`, Value: true},
			{Name: `"isDeleted"`, Value: false},
			{Name: `"zipcode"`, Value: zipcode},
			{Name: `"paymentMethod"`, Value: "PAY_AS_YOU_GO", Cast: `"enum_ClinicLocations_paymentMethod"`},
			{Name: `"createdAt"`, Value: utils.DateTimeOr(row["add_time"], time.Now().UTC())},
		},
	}, nil
}

// practiceAddress joins the legacy address fragments into the single
// target address field.
func practiceAddress(row models.SourceRow) string {
	var parts []string
	for _, col := range []string{"street_line_one", "street_line_two", "city", "region", "country"} {
		if v := strings.TrimSpace(utils.ConvertToString(row[col])); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}
