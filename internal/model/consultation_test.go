package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func scheduledConsultation() *Consultation {
	return &Consultation{
		PatientID:      uuid.New(),
		PractitionerID: uuid.New(),
		ScheduledTime:  time.Now().Add(48 * time.Hour),
		Duration:       DefaultConsultationDuration,
		Status:         ConsultationStatusScheduled,
		Type:           ConsultationTypeInitial,
		Symptoms:       StringList{"fatigue"},
		PaymentStatus:  PaymentStatusPending,
		Amount:         500,
	}
}

func TestConsultationValidateScheduled(t *testing.T) {
	assert.Empty(t, scheduledConsultation().Validate())
}

func TestCompletedRequiresDiagnosisAndNotes(t *testing.T) {
	c := scheduledConsultation()
	c.Status = ConsultationStatusCompleted

	fields := c.Validate()
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Field)
	}
	assert.Contains(t, names, "diagnosis")
	assert.Contains(t, names, "notes")

	// both may be supplied in the same update that sets the status
	c.Diagnosis = "Vata imbalance"
	c.Notes = "Rest, follow up in two weeks"
	assert.Empty(t, c.Validate())
}

func TestConsultationValidateRejectsEmptySymptoms(t *testing.T) {
	c := scheduledConsultation()
	c.Symptoms = nil

	fields := c.Validate()
	assert.Len(t, fields, 1)
	assert.Equal(t, "symptoms", fields[0].Field)
}

func TestConsultationValidateRatingBounds(t *testing.T) {
	c := scheduledConsultation()
	c.Rating = 6
	assert.NotEmpty(t, c.Validate())

	c.Rating = 5
	assert.Empty(t, c.Validate())
}

func TestIsParticipant(t *testing.T) {
	c := scheduledConsultation()

	assert.True(t, c.IsParticipant(c.PatientID))
	assert.True(t, c.IsParticipant(c.PractitionerID))
	assert.False(t, c.IsParticipant(uuid.New()))
}

func TestUpdateConsultationApplyToMerges(t *testing.T) {
	c := scheduledConsultation()
	orig := c.ScheduledTime

	status := ConsultationStatusCompleted
	diagnosis := "X"
	notes := "Y"
	req := UpdateConsultationRequest{Status: &status, Diagnosis: &diagnosis, Notes: &notes}
	req.ApplyTo(c)

	assert.Equal(t, ConsultationStatusCompleted, c.Status)
	assert.Equal(t, "X", c.Diagnosis)
	assert.Equal(t, orig, c.ScheduledTime)
	assert.Equal(t, StringList{"fatigue"}, c.Symptoms)
}
