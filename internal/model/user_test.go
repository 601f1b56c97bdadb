package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validRegistration() RegisterRequest {
	return RegisterRequest{
		Name:     "Asha Rao",
		Email:    "asha@example.com",
		Password: "secret123",
		Role:     RolePatient,
		Phone:    "9876543210",
		Address:  "12 Lake Road",
	}
}

func TestRegisterValidatePatient(t *testing.T) {
	req := validRegistration()
	assert.Empty(t, req.Validate())
}

func TestRegisterValidatePractitionerRequiresConditionalFields(t *testing.T) {
	req := validRegistration()
	req.Role = RolePractitioner

	fields := req.Validate()
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Field)
	}
	assert.Contains(t, names, "specialization")
	assert.Contains(t, names, "experience")

	req.Specialization = "Panchakarma"
	req.Experience = 8
	assert.Empty(t, req.Validate())
}

func TestRegisterValidateRejectsMalformedFields(t *testing.T) {
	req := validRegistration()
	req.Email = "not-an-email"
	req.Phone = "12345"
	req.Password = "short"

	fields := req.Validate()
	assert.Len(t, fields, 3)
}

func TestUpdateProfileApplyToIgnoresPractitionerFieldsForPatients(t *testing.T) {
	user := &User{Role: RolePatient, Name: "Asha Rao", Phone: "9876543210"}

	spec := "Panchakarma"
	exp := 4
	name := "Asha R."
	req := UpdateProfileRequest{Name: &name, Specialization: &spec, Experience: &exp}
	req.ApplyTo(user)

	assert.Equal(t, "Asha R.", user.Name)
	assert.Empty(t, user.Specialization)
	assert.Zero(t, user.Experience)
	// unspecified fields retain prior values
	assert.Equal(t, "9876543210", user.Phone)
}

func TestUpdateProfileApplyToMergesPractitionerFields(t *testing.T) {
	user := &User{Role: RolePractitioner, Specialization: "General"}

	spec := "Dermatology"
	req := UpdateProfileRequest{Specialization: &spec}
	req.ApplyTo(user)

	assert.Equal(t, "Dermatology", user.Specialization)
}
