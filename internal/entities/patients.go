package entities

import (
	"time"

	"github.com/google/uuid"

	"github.com/voxelhealth/voxmigrate/internal/migrate"
	"github.com/voxelhealth/voxmigrate/pkg/models"
	"github.com/voxelhealth/voxmigrate/pkg/utils"
)

// Patient data lives inline on legacy cases. Each case row yields a
// ClinicPatient (the clinic-level master record, keyed by the case id it
// first appeared on) and a CasePatient snapshot attached to the case.

const patientQuery = `SELECT c.cases_id, c.patient_firstname,
		c.patient_lastname, c.gender, c.dob, c.doctor_id, p.practice_id
	FROM tbl_cases c
	LEFT JOIN tbl_practice p ON p.user_id = c.doctor_id
	ORDER BY c.cases_id`

func clinicPatientDescriptor() *migrate.Descriptor {
	return &migrate.Descriptor{
		Type:      migrate.EntityClinicPatient,
		Query:     patientQuery,
		LegacyKey: legacyKey("cases_id"),
		Filter: func(row models.SourceRow) bool {
			return utils.ConvertToString(row["patient_firstname"]) != ""
		},
		DependsOn: []migrate.Dependency{
			{Type: migrate.EntityClinic, Key: foreignKey("practice_id")},
		},
		Transform: transformClinicPatient,
	}
}

func transformClinicPatient(row models.SourceRow, parents migrate.ParentKeys) (*models.TargetRecord, error) {
	now := time.Now().UTC()

	var clinic interface{}
	if c, ok := parents[migrate.EntityClinic]; ok {
		clinic = c
	}

	var dob interface{}
	if t, ok := utils.ConvertDateTime(row["dob"]); ok {
		dob = t
	}

	return &models.TargetRecord{
		Table:     `"ClinicPatients"`,
		Returning: `"cpId"`,
		Columns: []models.Column{
			{Name: `"clinicId"`, Value: clinic},
			{Name: `"firstName"`, Value: utils.ConvertToString(row["patient_firstname"])},
			{Name: `"lastName"`, Value: utils.ConvertToString(row["patient_lastname"])},
			{Name: `"gender"`, Value: nullable(utils.ConvertToString(row["gender"]))},
			{Name: `"dob"`, Value: dob},
			{Name: `"platformId"`, Value: uuid.NewString()},
			{Name: `"createdAt"`, Value: now},
			{Name: `"updatedAt"`, Value: now},
		},
	}, nil
}

func casePatientDescriptor() *migrate.Descriptor {
	return &migrate.Descriptor{
		Type:      migrate.EntityCasePatient,
		Query:     patientQuery,
		LegacyKey: legacyKey("cases_id"),
		Filter: func(row models.SourceRow) bool {
			return utils.ConvertToString(row["patient_firstname"]) != ""
		},
		DependsOn: []migrate.Dependency{
			{Type: migrate.EntityCase, Hard: true, Key: foreignKey("cases_id")},
			{Type: migrate.EntityClinicPatient, Key: foreignKey("cases_id")},
		},
		Transform: transformCasePatient,
	}
}

func transformCasePatient(row models.SourceRow, parents migrate.ParentKeys) (*models.TargetRecord, error) {
	var clinicPatient interface{}
	if cp, ok := parents[migrate.EntityClinicPatient]; ok {
		clinicPatient = cp
	}

	var dob interface{}
	if t, ok := utils.ConvertDateTime(row["dob"]); ok {
		dob = t
	}

	return &models.TargetRecord{
		Table:     `"CasePatients"`,
		Returning: `"cpId"`,
		Columns: []models.Column{
			{Name: `"caseId"`, Value: parents[migrate.EntityCase]},
			{Name: `"clinicPatientId"`, Value: clinicPatient},
			{Name: `"firstName"`, Value: utils.ConvertToString(row["patient_firstname"])},
			{Name: `"lastName"`, Value: utils.ConvertToString(row["patient_lastname"])},
			{Name: `"gender"`, Value: nullable(utils.ConvertToString(row["gender"]))},
			{Name: `"dob"`, Value: dob},
		},
	}, nil
}
