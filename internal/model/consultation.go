package model

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/telemed-api/pkg/errors"
)

type ConsultationStatus string

const (
	ConsultationStatusScheduled  ConsultationStatus = "scheduled"
	ConsultationStatusInProgress ConsultationStatus = "in-progress"
	ConsultationStatusCompleted  ConsultationStatus = "completed"
	ConsultationStatusCancelled  ConsultationStatus = "cancelled"
)

func (s ConsultationStatus) Valid() bool {
	switch s {
	case ConsultationStatusScheduled, ConsultationStatusInProgress,
		ConsultationStatusCompleted, ConsultationStatusCancelled:
		return true
	}
	return false
}

type ConsultationType string

const (
	ConsultationTypeInitial   ConsultationType = "initial"
	ConsultationTypeFollowUp  ConsultationType = "follow-up"
	ConsultationTypeEmergency ConsultationType = "emergency"
)

func (t ConsultationType) Valid() bool {
	switch t {
	case ConsultationTypeInitial, ConsultationTypeFollowUp, ConsultationTypeEmergency:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusRefunded:
		return true
	}
	return false
}

const DefaultConsultationDuration = 30 // minutes

// VitalSigns is an optional JSONB-backed snapshot taken during a session
type VitalSigns struct {
	BloodPressure   string  `json:"blood_pressure,omitempty"`
	HeartRate       int     `json:"heart_rate,omitempty"`
	Temperature     float64 `json:"temperature,omitempty"`
	RespiratoryRate int     `json:"respiratory_rate,omitempty"`
	Weight          float64 `json:"weight,omitempty"`
}

func (v VitalSigns) Value() (driver.Value, error) { return jsonValue(v) }
func (v *VitalSigns) Scan(src interface{}) error  { return jsonScan(src, v) }

// Consultation is a care session between a patient and a practitioner.
// It holds non-owning references to both accounts.
type Consultation struct {
	Base
	PatientID      uuid.UUID          `db:"patient_id" json:"patient_id"`
	PractitionerID uuid.UUID          `db:"practitioner_id" json:"practitioner_id"`
	ScheduledTime  time.Time          `db:"scheduled_time" json:"scheduled_time"`
	Duration       int                `db:"duration" json:"duration"`
	Status         ConsultationStatus `db:"status" json:"status"`
	Type           ConsultationType   `db:"type" json:"type"`
	Symptoms       StringList         `db:"symptoms" json:"symptoms"`
	Diagnosis      string             `db:"diagnosis" json:"diagnosis,omitempty"`
	Notes          string             `db:"notes" json:"notes,omitempty"`
	Vitals         VitalSigns         `db:"vitals" json:"vitals,omitempty"`
	PrescriptionID *uuid.UUID         `db:"prescription_id" json:"prescription_id,omitempty"`
	FollowUpDate   *time.Time         `db:"follow_up_date" json:"follow_up_date,omitempty"`
	MeetingLink    string             `db:"meeting_link" json:"meeting_link"`
	RecordingURL   string             `db:"recording_url" json:"recording_url,omitempty"`
	PaymentStatus  PaymentStatus      `db:"payment_status" json:"payment_status"`
	Amount         float64            `db:"amount" json:"amount"`
	Rating         int                `db:"rating" json:"rating,omitempty"`
	Feedback       string             `db:"feedback" json:"feedback,omitempty"`
}

// IsParticipant reports whether the given account is the stored patient or
// practitioner on the record. This is the ownership gate for consultations.
func (c *Consultation) IsParticipant(userID uuid.UUID) bool {
	return c.PatientID == userID || c.PractitionerID == userID
}

// Validate checks the write-time invariants. Diagnosis and notes become
// required whenever the status is completed; a client may set both in the
// same update that completes the consultation.
func (c *Consultation) Validate() []errors.FieldError {
	var fields []errors.FieldError

	if !c.Status.Valid() {
		fields = append(fields, errors.FieldError{Field: "status", Message: "must be one of scheduled, in-progress, completed, cancelled"})
	}
	if !c.Type.Valid() {
		fields = append(fields, errors.FieldError{Field: "type", Message: "must be one of initial, follow-up, emergency"})
	}
	if !c.PaymentStatus.Valid() {
		fields = append(fields, errors.FieldError{Field: "payment_status", Message: "must be one of pending, completed, refunded"})
	}
	if len(c.Symptoms) == 0 {
		fields = append(fields, errors.FieldError{Field: "symptoms", Message: "at least one symptom is required"})
	}
	if c.Amount <= 0 {
		fields = append(fields, errors.FieldError{Field: "amount", Message: "must be a positive amount"})
	}
	if !c.Type.Valid() {
		fields = append(fields, errors.FieldError{Field: "type", Message: "must be one of initial, follow-up, emergency"})
	}
	if c.Duration <= 0 {
		fields = append(fields, errors.FieldError{Field: "duration", Message: "must be a positive number of minutes"})
	}
	if c.Status == ConsultationStatusCompleted {
		if c.Diagnosis == "" {
			fields = append(fields, errors.FieldError{Field: "diagnosis", Message: "required when status is completed"})
		}
		if c.Notes == "" {
			fields = append(fields, errors.FieldError{Field: "notes", Message: "required when status is completed"})
		}
	}
	if c.Rating != 0 && (c.Rating < 1 || c.Rating > 5) {
		fields = append(fields, errors.FieldError{Field: "rating", Message: "must be between 1 and 5"})
	}

	return fields
}

type CreateConsultationRequest struct {
	PractitionerID uuid.UUID        `json:"practitioner_id" binding:"required"`
	ScheduledTime  time.Time        `json:"scheduled_time" binding:"required"`
	Duration       int              `json:"duration"`
	Type           ConsultationType `json:"type" binding:"required,consultation_type"`
	Symptoms       []string         `json:"symptoms" binding:"required,min=1"`
	Amount         float64          `json:"amount" binding:"required"`
}

// UpdateConsultationRequest is a merge update; nil fields keep prior values.
type UpdateConsultationRequest struct {
	ScheduledTime *time.Time          `json:"scheduled_time"`
	Duration      *int                `json:"duration"`
	Status        *ConsultationStatus `json:"status"`
	Type          *ConsultationType   `json:"type"`
	Amount        *float64            `json:"amount"`
	Symptoms      *[]string           `json:"symptoms"`
	Diagnosis     *string             `json:"diagnosis"`
	Notes         *string             `json:"notes"`
	Vitals        *VitalSigns         `json:"vitals"`
	FollowUpDate  *time.Time          `json:"follow_up_date"`
	RecordingURL  *string             `json:"recording_url"`
	PaymentStatus *PaymentStatus      `json:"payment_status"`
	Rating        *int                `json:"rating"`
	Feedback      *string             `json:"feedback"`
}

func (r *UpdateConsultationRequest) ApplyTo(c *Consultation) {
	if r.ScheduledTime != nil {
		c.ScheduledTime = *r.ScheduledTime
	}
	if r.Duration != nil {
		c.Duration = *r.Duration
	}
	if r.Status != nil {
		c.Status = *r.Status
	}
	if r.Type != nil {
		c.Type = *r.Type
	}
	if r.Amount != nil {
		c.Amount = *r.Amount
	}
	if r.Symptoms != nil {
		c.Symptoms = StringList(*r.Symptoms)
	}
	if r.Diagnosis != nil {
		c.Diagnosis = *r.Diagnosis
	}
	if r.Notes != nil {
		c.Notes = *r.Notes
	}
	if r.Vitals != nil {
		c.Vitals = *r.Vitals
	}
	if r.FollowUpDate != nil {
		c.FollowUpDate = r.FollowUpDate
	}
	if r.RecordingURL != nil {
		c.RecordingURL = *r.RecordingURL
	}
	if r.PaymentStatus != nil {
		c.PaymentStatus = *r.PaymentStatus
	}
	if r.Rating != nil {
		c.Rating = *r.Rating
	}
	if r.Feedback != nil {
		c.Feedback = *r.Feedback
	}
}

// Participant holds the display fields a list expands for each account
type Participant struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Email          string    `db:"email" json:"email"`
	Specialization string    `db:"specialization" json:"specialization,omitempty"`
}

// ConsultationDetail is a consultation expanded with participant display
// fields for list and detail responses.
type ConsultationDetail struct {
	Consultation
	Patient      Participant `db:"patient" json:"patient"`
	Practitioner Participant `db:"practitioner" json:"practitioner"`
}
