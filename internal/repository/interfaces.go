package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/telemed-api/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	List(ctx context.Context) ([]*model.User, error)
	ListPractitioners(ctx context.Context) ([]*model.User, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type ConsultationRepository interface {
	Create(ctx context.Context, consultation *model.Consultation) error
	Get(ctx context.Context, id uuid.UUID) (*model.Consultation, error)
	GetDetail(ctx context.Context, id uuid.UUID) (*model.ConsultationDetail, error)
	Update(ctx context.Context, consultation *model.Consultation) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.ConsultationDetail, error)
	ListForPractitioner(ctx context.Context, practitionerID uuid.UUID) ([]*model.ConsultationDetail, error)
	SetPrescription(ctx context.Context, id uuid.UUID, prescriptionID *uuid.UUID) error
}

type PrescriptionRepository interface {
	Create(ctx context.Context, prescription *model.Prescription) error
	Get(ctx context.Context, id uuid.UUID) (*model.Prescription, error)
	GetDetail(ctx context.Context, id uuid.UUID) (*model.PrescriptionDetail, error)
	Update(ctx context.Context, prescription *model.Prescription) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.PrescriptionDetail, error)
	ListForPractitioner(ctx context.Context, practitionerID uuid.UUID) ([]*model.PrescriptionDetail, error)
	ListAll(ctx context.Context) ([]*model.PrescriptionDetail, error)
	ExistsForConsultation(ctx context.Context, consultationID uuid.UUID) (bool, error)
}

// TokenRepository stores short-lived token state: the revocation denylist
// for logged-out session tokens and one-time password reset tokens.
type TokenRepository interface {
	RevokeToken(ctx context.Context, token string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, token string) (bool, error)
	StoreResetToken(ctx context.Context, userID uuid.UUID, token string, ttl time.Duration) error
	ConsumeResetToken(ctx context.Context, token string) (uuid.UUID, error)
}
