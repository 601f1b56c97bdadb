package model

import (
	"database/sql/driver"
	"regexp"
	"time"

	"github.com/jwalitptl/telemed-api/pkg/errors"
)

type Role string

const (
	RolePatient      Role = "patient"
	RolePractitioner Role = "practitioner"
	RoleAdmin        Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RolePatient, RolePractitioner, RoleAdmin:
		return true
	}
	return false
}

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
)

// MedicalEntry is one record in a patient's medical history
type MedicalEntry struct {
	Condition string    `json:"condition"`
	Diagnosis string    `json:"diagnosis"`
	Treatment string    `json:"treatment"`
	Date      time.Time `json:"date"`
}

// MedicalHistory is a JSONB-backed ordered list of medical entries
type MedicalHistory []MedicalEntry

func (h MedicalHistory) Value() (driver.Value, error) { return jsonValue(h) }
func (h *MedicalHistory) Scan(src interface{}) error  { return jsonScan(src, h) }

// User is any registered identity: patient, practitioner, or admin.
// The password hash is never serialized outward.
type User struct {
	Base
	Name           string         `db:"name" json:"name"`
	Email          string         `db:"email" json:"email"`
	PasswordHash   string         `db:"password_hash" json:"-"`
	Role           Role           `db:"role" json:"role"`
	Specialization string         `db:"specialization" json:"specialization,omitempty"`
	Experience     int            `db:"experience" json:"experience,omitempty"`
	ProfileImage   string         `db:"profile_image" json:"profile_image"`
	Phone          string         `db:"phone" json:"phone"`
	Address        string         `db:"address" json:"address"`
	MedicalHistory MedicalHistory `db:"medical_history" json:"medical_history,omitempty"`
	Active         bool           `db:"active" json:"active"`
}

type RegisterRequest struct {
	Name           string `json:"name" binding:"required,max=50"`
	Email          string `json:"email" binding:"required"`
	Password       string `json:"password" binding:"required"`
	Role           Role   `json:"role" binding:"required,role"`
	Specialization string `json:"specialization"`
	Experience     int    `json:"experience"`
	Phone          string `json:"phone" binding:"required"`
	Address        string `json:"address" binding:"required"`
}

// Validate applies the registration rules that depend on field values,
// including the practitioner-conditional fields.
func (r *RegisterRequest) Validate() []errors.FieldError {
	var fields []errors.FieldError

	if !emailPattern.MatchString(r.Email) {
		fields = append(fields, errors.FieldError{Field: "email", Message: "must be a valid email"})
	}
	if len(r.Password) < 6 {
		fields = append(fields, errors.FieldError{Field: "password", Message: "must be at least 6 characters"})
	}
	if !r.Role.Valid() {
		fields = append(fields, errors.FieldError{Field: "role", Message: "must be one of patient, practitioner, admin"})
	}
	if !phonePattern.MatchString(r.Phone) {
		fields = append(fields, errors.FieldError{Field: "phone", Message: "must be a valid 10 digit phone number"})
	}
	if r.Role == RolePractitioner {
		if r.Specialization == "" {
			fields = append(fields, errors.FieldError{Field: "specialization", Message: "required for practitioners"})
		}
		if r.Experience <= 0 {
			fields = append(fields, errors.FieldError{Field: "experience", Message: "required for practitioners"})
		}
	}

	return fields
}

// UpdateProfileRequest is a merge update: unset fields retain prior values.
type UpdateProfileRequest struct {
	Name           *string `json:"name"`
	Email          *string `json:"email"`
	Phone          *string `json:"phone"`
	Address        *string `json:"address"`
	Specialization *string `json:"specialization"`
	Experience     *int    `json:"experience"`
}

func (r *UpdateProfileRequest) Validate() []errors.FieldError {
	var fields []errors.FieldError

	if r.Email != nil && !emailPattern.MatchString(*r.Email) {
		fields = append(fields, errors.FieldError{Field: "email", Message: "must be a valid email"})
	}
	if r.Phone != nil && !phonePattern.MatchString(*r.Phone) {
		fields = append(fields, errors.FieldError{Field: "phone", Message: "must be a valid 10 digit phone number"})
	}
	if r.Name != nil && (*r.Name == "" || len(*r.Name) > 50) {
		fields = append(fields, errors.FieldError{Field: "name", Message: "must be between 1 and 50 characters"})
	}

	return fields
}

// ApplyTo merges the request into the stored user. Specialization and
// experience only apply to practitioners and are ignored otherwise.
func (r *UpdateProfileRequest) ApplyTo(u *User) {
	if r.Name != nil {
		u.Name = *r.Name
	}
	if r.Email != nil {
		u.Email = *r.Email
	}
	if r.Phone != nil {
		u.Phone = *r.Phone
	}
	if r.Address != nil {
		u.Address = *r.Address
	}
	if u.Role == RolePractitioner {
		if r.Specialization != nil {
			u.Specialization = *r.Specialization
		}
		if r.Experience != nil {
			u.Experience = *r.Experience
		}
	}
}
