package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/telemed-api/internal/model"
	apperrors "github.com/jwalitptl/telemed-api/pkg/errors"
)

const consultationColumns = `
	c.id, c.patient_id, c.practitioner_id, c.scheduled_time, c.duration,
	c.status, c.type, c.symptoms, c.diagnosis, c.notes, c.vitals,
	c.prescription_id, c.follow_up_date, c.meeting_link, c.recording_url,
	c.payment_status, c.amount, c.rating, c.feedback,
	c.created_at, c.updated_at
`

const consultationDetailColumns = consultationColumns + `,
	p.id AS "patient.id", p.name AS "patient.name", p.email AS "patient.email",
	d.id AS "practitioner.id", d.name AS "practitioner.name",
	d.email AS "practitioner.email", d.specialization AS "practitioner.specialization"
`

const consultationDetailJoins = `
	FROM consultations c
	JOIN users p ON p.id = c.patient_id
	JOIN users d ON d.id = c.practitioner_id
`

func (r *consultationRepository) Create(ctx context.Context, consultation *model.Consultation) error {
	query := `
		INSERT INTO consultations (
			id, patient_id, practitioner_id, scheduled_time, duration,
			status, type, symptoms, diagnosis, notes, vitals,
			prescription_id, follow_up_date, meeting_link, recording_url,
			payment_status, amount, rating, feedback, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19, $20, $21
		)
	`
	consultation.ID = uuid.New()
	consultation.CreatedAt = time.Now()
	consultation.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		consultation.ID,
		consultation.PatientID,
		consultation.PractitionerID,
		consultation.ScheduledTime,
		consultation.Duration,
		consultation.Status,
		consultation.Type,
		consultation.Symptoms,
		consultation.Diagnosis,
		consultation.Notes,
		consultation.Vitals,
		consultation.PrescriptionID,
		consultation.FollowUpDate,
		consultation.MeetingLink,
		consultation.RecordingURL,
		consultation.PaymentStatus,
		consultation.Amount,
		consultation.Rating,
		consultation.Feedback,
		consultation.CreatedAt,
		consultation.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create consultation: %w", err)
	}
	return nil
}

func (r *consultationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Consultation, error) {
	query := `SELECT ` + consultationColumns + ` FROM consultations c WHERE c.id = $1`

	var consultation model.Consultation
	err := r.db.GetContext(ctx, &consultation, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("consultation")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get consultation: %w", err)
	}
	return &consultation, nil
}

func (r *consultationRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.ConsultationDetail, error) {
	query := `SELECT ` + consultationDetailColumns + consultationDetailJoins + ` WHERE c.id = $1`

	var detail model.ConsultationDetail
	err := r.db.GetContext(ctx, &detail, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("consultation")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get consultation detail: %w", err)
	}
	return &detail, nil
}

func (r *consultationRepository) Update(ctx context.Context, consultation *model.Consultation) error {
	query := `
		UPDATE consultations
		SET scheduled_time = $1, duration = $2, status = $3, type = $4,
			amount = $5, symptoms = $6, diagnosis = $7, notes = $8,
			vitals = $9, follow_up_date = $10, recording_url = $11,
			payment_status = $12, rating = $13, feedback = $14,
			updated_at = $15
		WHERE id = $16
	`
	consultation.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		consultation.ScheduledTime,
		consultation.Duration,
		consultation.Status,
		consultation.Type,
		consultation.Amount,
		consultation.Symptoms,
		consultation.Diagnosis,
		consultation.Notes,
		consultation.Vitals,
		consultation.FollowUpDate,
		consultation.RecordingURL,
		consultation.PaymentStatus,
		consultation.Rating,
		consultation.Feedback,
		consultation.UpdatedAt,
		consultation.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update consultation: %w", err)
	}
	return checkAffected(result, "consultation")
}

func (r *consultationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM consultations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete consultation: %w", err)
	}
	return checkAffected(result, "consultation")
}

func (r *consultationRepository) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.ConsultationDetail, error) {
	query := `
		SELECT ` + consultationDetailColumns + consultationDetailJoins + `
		WHERE c.patient_id = $1
		ORDER BY c.scheduled_time DESC
	`
	var consultations []*model.ConsultationDetail
	if err := r.db.SelectContext(ctx, &consultations, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list consultations: %w", err)
	}
	return consultations, nil
}

func (r *consultationRepository) ListForPractitioner(ctx context.Context, practitionerID uuid.UUID) ([]*model.ConsultationDetail, error) {
	query := `
		SELECT ` + consultationDetailColumns + consultationDetailJoins + `
		WHERE c.practitioner_id = $1
		ORDER BY c.scheduled_time DESC
	`
	var consultations []*model.ConsultationDetail
	if err := r.db.SelectContext(ctx, &consultations, query, practitionerID); err != nil {
		return nil, fmt.Errorf("failed to list consultations: %w", err)
	}
	return consultations, nil
}

func (r *consultationRepository) SetPrescription(ctx context.Context, id uuid.UUID, prescriptionID *uuid.UUID) error {
	query := `UPDATE consultations SET prescription_id = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, prescriptionID, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set prescription link: %w", err)
	}
	return checkAffected(result, "consultation")
}
