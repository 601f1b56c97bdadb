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

const prescriptionColumns = `
	r.id, r.consultation_id, r.patient_id, r.practitioner_id, r.herbs,
	r.dietary, r.lifestyle, r.duration_days, r.special_instructions,
	r.status, r.valid_until, r.refills, r.refills_used,
	r.created_at, r.updated_at
`

const prescriptionDetailColumns = prescriptionColumns + `,
	c.scheduled_time AS "consultation.scheduled_time",
	c.status AS "consultation.status",
	p.name AS patient_name,
	d.name AS practitioner_name
`

const prescriptionDetailJoins = `
	FROM prescriptions r
	JOIN consultations c ON c.id = r.consultation_id
	JOIN users p ON p.id = r.patient_id
	JOIN users d ON d.id = r.practitioner_id
`

func (r *prescriptionRepository) Create(ctx context.Context, prescription *model.Prescription) error {
	query := `
		INSERT INTO prescriptions (
			id, consultation_id, patient_id, practitioner_id, herbs,
			dietary, lifestyle, duration_days, special_instructions,
			status, valid_until, refills, refills_used, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
		)
	`
	prescription.ID = uuid.New()
	prescription.CreatedAt = time.Now()
	prescription.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		prescription.ID,
		prescription.ConsultationID,
		prescription.PatientID,
		prescription.PractitionerID,
		prescription.Herbs,
		prescription.Dietary,
		prescription.Lifestyle,
		prescription.DurationDays,
		prescription.SpecialInstructions,
		prescription.Status,
		prescription.ValidUntil,
		prescription.Refills,
		prescription.RefillsUsed,
		prescription.CreatedAt,
		prescription.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create prescription: %w", err)
	}
	return nil
}

func (r *prescriptionRepository) Get(ctx context.Context, id uuid.UUID) (*model.Prescription, error) {
	query := `SELECT ` + prescriptionColumns + ` FROM prescriptions r WHERE r.id = $1`

	var prescription model.Prescription
	err := r.db.GetContext(ctx, &prescription, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("prescription")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prescription: %w", err)
	}
	return &prescription, nil
}

func (r *prescriptionRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.PrescriptionDetail, error) {
	query := `SELECT ` + prescriptionDetailColumns + prescriptionDetailJoins + ` WHERE r.id = $1`

	var detail model.PrescriptionDetail
	err := r.db.GetContext(ctx, &detail, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("prescription")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prescription detail: %w", err)
	}
	return &detail, nil
}

func (r *prescriptionRepository) Update(ctx context.Context, prescription *model.Prescription) error {
	query := `
		UPDATE prescriptions
		SET herbs = $1, dietary = $2, lifestyle = $3, duration_days = $4,
			special_instructions = $5, status = $6, valid_until = $7,
			refills = $8, refills_used = $9, updated_at = $10
		WHERE id = $11
	`
	prescription.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		prescription.Herbs,
		prescription.Dietary,
		prescription.Lifestyle,
		prescription.DurationDays,
		prescription.SpecialInstructions,
		prescription.Status,
		prescription.ValidUntil,
		prescription.Refills,
		prescription.RefillsUsed,
		prescription.UpdatedAt,
		prescription.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update prescription: %w", err)
	}
	return checkAffected(result, "prescription")
}

func (r *prescriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM prescriptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete prescription: %w", err)
	}
	return checkAffected(result, "prescription")
}

func (r *prescriptionRepository) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.PrescriptionDetail, error) {
	query := `
		SELECT ` + prescriptionDetailColumns + prescriptionDetailJoins + `
		WHERE r.patient_id = $1
		ORDER BY r.created_at DESC
	`
	var prescriptions []*model.PrescriptionDetail
	if err := r.db.SelectContext(ctx, &prescriptions, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	return prescriptions, nil
}

func (r *prescriptionRepository) ListForPractitioner(ctx context.Context, practitionerID uuid.UUID) ([]*model.PrescriptionDetail, error) {
	query := `
		SELECT ` + prescriptionDetailColumns + prescriptionDetailJoins + `
		WHERE r.practitioner_id = $1
		ORDER BY r.created_at DESC
	`
	var prescriptions []*model.PrescriptionDetail
	if err := r.db.SelectContext(ctx, &prescriptions, query, practitionerID); err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	return prescriptions, nil
}

func (r *prescriptionRepository) ListAll(ctx context.Context) ([]*model.PrescriptionDetail, error) {
	query := `
		SELECT ` + prescriptionDetailColumns + prescriptionDetailJoins + `
		ORDER BY r.created_at DESC
	`
	var prescriptions []*model.PrescriptionDetail
	if err := r.db.SelectContext(ctx, &prescriptions, query); err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	return prescriptions, nil
}

func (r *prescriptionRepository) ExistsForConsultation(ctx context.Context, consultationID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM prescriptions WHERE consultation_id = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, consultationID); err != nil {
		return false, fmt.Errorf("failed to check prescriptions: %w", err)
	}
	return exists, nil
}
