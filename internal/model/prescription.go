package model

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/telemed-api/pkg/errors"
)

type PrescriptionStatus string

const (
	PrescriptionStatusActive       PrescriptionStatus = "active"
	PrescriptionStatusCompleted    PrescriptionStatus = "completed"
	PrescriptionStatusDiscontinued PrescriptionStatus = "discontinued"
)

func (s PrescriptionStatus) Valid() bool {
	switch s {
	case PrescriptionStatusActive, PrescriptionStatusCompleted, PrescriptionStatusDiscontinued:
		return true
	}
	return false
}

type HerbUnit string

const (
	UnitGrams    HerbUnit = "grams"
	UnitMl       HerbUnit = "ml"
	UnitTablets  HerbUnit = "tablets"
	UnitCapsules HerbUnit = "capsules"
)

func (u HerbUnit) Valid() bool {
	switch u {
	case UnitGrams, UnitMl, UnitTablets, UnitCapsules:
		return true
	}
	return false
}

type Frequency string

const (
	FrequencyOnce      Frequency = "once"
	FrequencyTwice     Frequency = "twice"
	FrequencyThrice    Frequency = "thrice"
	FrequencyFourTimes Frequency = "four-times"
	FrequencyAsNeeded  Frequency = "as-needed"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyOnce, FrequencyTwice, FrequencyThrice, FrequencyFourTimes, FrequencyAsNeeded:
		return true
	}
	return false
}

type MealRelation string

const (
	BeforeMeal   MealRelation = "before-meal"
	AfterMeal    MealRelation = "after-meal"
	WithMeal     MealRelation = "with-meal"
	EmptyStomach MealRelation = "empty-stomach"
)

func (m MealRelation) Valid() bool {
	switch m {
	case BeforeMeal, AfterMeal, WithMeal, EmptyStomach:
		return true
	}
	return false
}

// Timing is when and how often a herb entry is taken
type Timing struct {
	Frequency  Frequency    `json:"frequency"`
	WhenToTake MealRelation `json:"when_to_take"`
}

// HerbEntry is one herb or medicine line on a prescription
type HerbEntry struct {
	Name         string   `json:"name"`
	Quantity     float64  `json:"quantity"`
	Unit         HerbUnit `json:"unit"`
	Instructions string   `json:"instructions,omitempty"`
	Timing       Timing   `json:"timing"`
}

type HerbList []HerbEntry

func (l HerbList) Value() (driver.Value, error) { return jsonValue(l) }
func (l *HerbList) Scan(src interface{}) error  { return jsonScan(src, l) }

type DietaryType string

const (
	DietaryDoEat     DietaryType = "do-eat"
	DietaryDontEat   DietaryType = "dont-eat"
	DietaryLifestyle DietaryType = "lifestyle"
)

func (t DietaryType) Valid() bool {
	switch t {
	case DietaryDoEat, DietaryDontEat, DietaryLifestyle:
		return true
	}
	return false
}

type DietaryRecommendation struct {
	Type        DietaryType `json:"type"`
	Description string      `json:"description"`
	Duration    string      `json:"duration,omitempty"`
}

type DietaryList []DietaryRecommendation

func (l DietaryList) Value() (driver.Value, error) { return jsonValue(l) }
func (l *DietaryList) Scan(src interface{}) error  { return jsonScan(src, l) }

type LifestyleCategory string

const (
	LifestyleExercise   LifestyleCategory = "exercise"
	LifestyleMeditation LifestyleCategory = "meditation"
	LifestyleYoga       LifestyleCategory = "yoga"
	LifestyleSleep      LifestyleCategory = "sleep"
	LifestyleOther      LifestyleCategory = "other"
)

func (c LifestyleCategory) Valid() bool {
	switch c {
	case LifestyleExercise, LifestyleMeditation, LifestyleYoga, LifestyleSleep, LifestyleOther:
		return true
	}
	return false
}

type LifestyleRecommendation struct {
	Category       LifestyleCategory `json:"category"`
	Recommendation string            `json:"recommendation"`
	Duration       string            `json:"duration,omitempty"`
	Frequency      string            `json:"frequency,omitempty"`
}

type LifestyleList []LifestyleRecommendation

func (l LifestyleList) Value() (driver.Value, error) { return jsonValue(l) }
func (l *LifestyleList) Scan(src interface{}) error  { return jsonScan(src, l) }

// Prescription is a practitioner-authored treatment record tied to one
// consultation. Patient and practitioner are copied from the consultation
// at creation time; the practitioner reference is the sole authorization
// key for mutation.
type Prescription struct {
	Base
	ConsultationID      uuid.UUID          `db:"consultation_id" json:"consultation_id"`
	PatientID           uuid.UUID          `db:"patient_id" json:"patient_id"`
	PractitionerID      uuid.UUID          `db:"practitioner_id" json:"practitioner_id"`
	Herbs               HerbList           `db:"herbs" json:"herbs"`
	Dietary             DietaryList        `db:"dietary" json:"dietary_recommendations,omitempty"`
	Lifestyle           LifestyleList      `db:"lifestyle" json:"lifestyle,omitempty"`
	DurationDays        int                `db:"duration_days" json:"duration_days"`
	SpecialInstructions string             `db:"special_instructions" json:"special_instructions,omitempty"`
	Status              PrescriptionStatus `db:"status" json:"status"`
	ValidUntil          time.Time          `db:"valid_until" json:"valid_until"`
	Refills             int                `db:"refills" json:"refills"`
	RefillsUsed         int                `db:"refills_used" json:"refills_used"`
}

func validateHerbs(herbs []HerbEntry) []errors.FieldError {
	var fields []errors.FieldError

	if len(herbs) == 0 {
		return append(fields, errors.FieldError{Field: "herbs", Message: "at least one herb entry is required"})
	}
	for i, h := range herbs {
		prefix := fmt.Sprintf("herbs[%d]", i)
		if h.Name == "" {
			fields = append(fields, errors.FieldError{Field: prefix + ".name", Message: "name is required"})
		}
		if h.Quantity <= 0 {
			fields = append(fields, errors.FieldError{Field: prefix + ".quantity", Message: "must be a positive quantity"})
		}
		if !h.Unit.Valid() {
			fields = append(fields, errors.FieldError{Field: prefix + ".unit", Message: "must be one of grams, ml, tablets, capsules"})
		}
		if !h.Timing.Frequency.Valid() {
			fields = append(fields, errors.FieldError{Field: prefix + ".timing.frequency", Message: "must be one of once, twice, thrice, four-times, as-needed"})
		}
		if !h.Timing.WhenToTake.Valid() {
			fields = append(fields, errors.FieldError{Field: prefix + ".timing.when_to_take", Message: "must be one of before-meal, after-meal, with-meal, empty-stomach"})
		}
	}
	return fields
}

// Validate checks the write-time invariants of a prescription record.
func (p *Prescription) Validate() []errors.FieldError {
	fields := validateHerbs(p.Herbs)

	if !p.Status.Valid() {
		fields = append(fields, errors.FieldError{Field: "status", Message: "must be one of active, completed, discontinued"})
	}
	if p.DurationDays <= 0 {
		fields = append(fields, errors.FieldError{Field: "duration_days", Message: "must be a positive number of days"})
	}
	if p.ValidUntil.IsZero() {
		fields = append(fields, errors.FieldError{Field: "valid_until", Message: "validity end date is required"})
	}
	if p.Refills < 0 || p.RefillsUsed < 0 || p.RefillsUsed > p.Refills {
		fields = append(fields, errors.FieldError{Field: "refills", Message: "refills used cannot exceed allowed refills"})
	}
	for i, d := range p.Dietary {
		if !d.Type.Valid() || d.Description == "" {
			fields = append(fields, errors.FieldError{Field: fmt.Sprintf("dietary_recommendations[%d]", i), Message: "type and description are required"})
		}
	}
	for i, l := range p.Lifestyle {
		if !l.Category.Valid() || l.Recommendation == "" {
			fields = append(fields, errors.FieldError{Field: fmt.Sprintf("lifestyle[%d]", i), Message: "category and recommendation are required"})
		}
	}

	return fields
}

type CreatePrescriptionRequest struct {
	ConsultationID      uuid.UUID                 `json:"consultation_id" binding:"required"`
	Herbs               []HerbEntry               `json:"herbs" binding:"required,min=1"`
	Dietary             []DietaryRecommendation   `json:"dietary_recommendations"`
	Lifestyle           []LifestyleRecommendation `json:"lifestyle"`
	DurationDays        int                       `json:"duration_days" binding:"required"`
	SpecialInstructions string                    `json:"special_instructions"`
	ValidUntil          time.Time                 `json:"valid_until" binding:"required"`
	Refills             int                       `json:"refills"`
}

// UpdatePrescriptionRequest is a merge update; nil fields keep prior values.
type UpdatePrescriptionRequest struct {
	Herbs               *[]HerbEntry               `json:"herbs"`
	Dietary             *[]DietaryRecommendation   `json:"dietary_recommendations"`
	Lifestyle           *[]LifestyleRecommendation `json:"lifestyle"`
	DurationDays        *int                       `json:"duration_days"`
	SpecialInstructions *string                    `json:"special_instructions"`
	Status              *PrescriptionStatus        `json:"status"`
	ValidUntil          *time.Time                 `json:"valid_until"`
	Refills             *int                       `json:"refills"`
	RefillsUsed         *int                       `json:"refills_used"`
}

func (r *UpdatePrescriptionRequest) ApplyTo(p *Prescription) {
	if r.Herbs != nil {
		p.Herbs = HerbList(*r.Herbs)
	}
	if r.Dietary != nil {
		p.Dietary = DietaryList(*r.Dietary)
	}
	if r.Lifestyle != nil {
		p.Lifestyle = LifestyleList(*r.Lifestyle)
	}
	if r.DurationDays != nil {
		p.DurationDays = *r.DurationDays
	}
	if r.SpecialInstructions != nil {
		p.SpecialInstructions = *r.SpecialInstructions
	}
	if r.Status != nil {
		p.Status = *r.Status
	}
	if r.ValidUntil != nil {
		p.ValidUntil = *r.ValidUntil
	}
	if r.Refills != nil {
		p.Refills = *r.Refills
	}
	if r.RefillsUsed != nil {
		p.RefillsUsed = *r.RefillsUsed
	}
}

// ConsultationSummary is the consultation slice expanded on prescriptions
type ConsultationSummary struct {
	ScheduledTime time.Time          `db:"scheduled_time" json:"scheduled_time"`
	Status        ConsultationStatus `db:"status" json:"status"`
}

// PrescriptionDetail is a prescription expanded with consultation and
// participant display fields.
type PrescriptionDetail struct {
	Prescription
	Consultation     ConsultationSummary `db:"consultation" json:"consultation"`
	PatientName      string              `db:"patient_name" json:"patient_name"`
	PractitionerName string              `db:"practitioner_name" json:"practitioner_name"`
}
