package entities

import (
	"time"

	"github.com/google/uuid"

	"github.com/voxelhealth/voxmigrate/internal/migrate"
	"github.com/voxelhealth/voxmigrate/pkg/models"
	"github.com/voxelhealth/voxmigrate/pkg/utils"
)

// Legacy clinic staff and radiologists both land in the target "Users"
// table, but their legacy id spaces are disjoint, so they are distinct
// entity types and never share identity-map keys.

const (
	userTypeClinic      = "CLINIC_USERS"
	userTypeRadiologist = "RADIOLOGIST"
)

func userDescriptor() *migrate.Descriptor {
	return &migrate.Descriptor{
		Type: migrate.EntityUser,
		Query: `SELECT user_id, voxel_doctors_id, title, fname, lname, email,
			contact, contact_no, status, add_time, update_time
		FROM tbl_users
		ORDER BY user_id`,
		LegacyKey: legacyKey("user_id"),
		// Rows without an email or first name are unusable accounts,
		// excluded by business rule rather than failed.
		Filter: func(row models.SourceRow) bool {
			return utils.ConvertToString(row["email"]) != "" &&
				utils.ConvertToString(row["fname"]) != ""
		},
		Transform: transformUser,
	}
}

func transformUser(row models.SourceRow, _ migrate.ParentKeys) (*models.TargetRecord, error) {
	now := time.Now().UTC()
	mobile := utils.ConvertToString(row["contact"])
	if mobile == "" {
		mobile = utils.ConvertToString(row["contact_no"])
	}

	oldUserID, err := utils.ConvertToInt64(row["user_id"])
	if err != nil {
		return nil, migrate.Validationf("bad user_id: %v", err)
	}

	return &models.TargetRecord{
		Table:     `"Users"`,
		Returning: `"uId"`,
		Columns: []models.Column{
			{Name: `"sub"`, Value: uuid.NewString()},
			{Name: `"userType"`, Value: userTypeClinic, Cast: `"enum_Users_userType"`},
			{Name: `"email"`, Value: utils.ConvertToString(row["email"])},
			{Name: `"nameTitle"`, Value: nullable(utils.ConvertToString(row["title"]))},
			{Name: `"firstName"`, Value: utils.ConvertToString(row["fname"])},
			{Name: `"lastName"`, Value: utils.ConvertToString(row["lname"])},
			{Name: `"status"`, Value: utils.ConvertToBool(row["status"])},
			{Name: `"isDeleted"`, Value: false},
			{Name: `"createdAt"`, Value: utils.DateTimeOr(row["add_time"], now)},
			{Name: `"updatedAt"`, Value: utils.DateTimeOr(row["update_time"], now)},
			{Name: `"mobileNumber"`, Value: mobile},
			{Name: `"olduserid"`, Value: oldUserID},
		},
	}, nil
}

func radiologistDescriptor() *migrate.Descriptor {
	return &migrate.Descriptor{
		Type: migrate.EntityRadiologist,
		Query: `SELECT radiologist_id, fname, lname, email, status, add_time
		FROM tbl_radiologist
		ORDER BY radiologist_id`,
		LegacyKey: legacyKey("radiologist_id"),
		Filter: func(row models.SourceRow) bool {
			return utils.ConvertToString(row["email"]) != "" &&
				utils.ConvertToString(row["fname"]) != ""
		},
		Transform: transformRadiologist,
	}
}

func transformRadiologist(row models.SourceRow, _ migrate.ParentKeys) (*models.TargetRecord, error) {
	now := time.Now().UTC()

	oldUserID, err := utils.ConvertToInt64(row["radiologist_id"])
	if err != nil {
		return nil, migrate.Validationf("bad radiologist_id: %v", err)
	}

	return &models.TargetRecord{
		Table:     `"Users"`,
		Returning: `"uId"`,
		Columns: []models.Column{
			{Name: `"sub"`, Value: uuid.NewString()},
			{Name: `"userType"`, Value: userTypeRadiologist, Cast: `"enum_Users_userType"`},
			{Name: `"email"`, Value: utils.ConvertToString(row["email"])},
			{Name: `"firstName"`, Value: utils.ConvertToString(row["fname"])},
			{Name: `"lastName"`, Value: utils.ConvertToString(row["lname"])},
			{Name: `"status"`, Value: utils.ConvertToBool(row["status"])},
			{Name: `"isDeleted"`, Value: false},
			{Name: `"createdAt"`, Value: utils.DateTimeOr(row["add_time"], now)},
			{Name: `"updatedAt"`, Value: now},
			{Name: `"olduserid"`, Value: oldUserID},
		},
	}, nil
}
