package prescription

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwalitptl/telemed-api/internal/model"
	"github.com/jwalitptl/telemed-api/internal/repository"
	apperrors "github.com/jwalitptl/telemed-api/pkg/errors"
)

type Service struct {
	repo             repository.PrescriptionRepository
	consultationRepo repository.ConsultationRepository
}

func NewService(repo repository.PrescriptionRepository, consultationRepo repository.ConsultationRepository) *Service {
	return &Service{
		repo:             repo,
		consultationRepo: consultationRepo,
	}
}

// Create issues a prescription for a consultation. The requester must be
// the consultation's practitioner even when they hold the practitioner
// role; patient and practitioner are copied from the consultation at
// creation time and never re-derived.
func (s *Service) Create(ctx context.Context, requester model.Requester, req *model.CreatePrescriptionRequest) (*model.Prescription, error) {
	consultation, err := s.consultationRepo.Get(ctx, req.ConsultationID)
	if err != nil {
		return nil, apperrors.Classify(err)
	}

	if consultation.PractitionerID != requester.ID {
		return nil, apperrors.Authorization("not authorized to create a prescription for this consultation")
	}

	exists, err := s.repo.ExistsForConsultation(ctx, consultation.ID)
	if err != nil {
		return nil, apperrors.Classify(err)
	}
	if exists {
		return nil, apperrors.Conflict("consultation already has a prescription")
	}

	prescription := &model.Prescription{
		ConsultationID:      consultation.ID,
		PatientID:           consultation.PatientID,
		PractitionerID:      consultation.PractitionerID,
		Herbs:               model.HerbList(req.Herbs),
		Dietary:             model.DietaryList(req.Dietary),
		Lifestyle:           model.LifestyleList(req.Lifestyle),
		DurationDays:        req.DurationDays,
		SpecialInstructions: req.SpecialInstructions,
		Status:              model.PrescriptionStatusActive,
		ValidUntil:          req.ValidUntil,
		Refills:             req.Refills,
	}

	if fields := prescription.Validate(); len(fields) > 0 {
		return nil, apperrors.Validation("invalid prescription", fields...)
	}

	if err := s.repo.Create(ctx, prescription); err != nil {
		return nil, apperrors.Classify(err)
	}

	if err := s.consultationRepo.SetPrescription(ctx, consultation.ID, &prescription.ID); err != nil {
		return nil, apperrors.Classify(err)
	}
	return prescription, nil
}

// List scopes results by role: practitioners see what they authored,
// admins see everything, everyone else sees their own.
func (s *Service) List(ctx context.Context, requester model.Requester) ([]*model.PrescriptionDetail, error) {
	var (
		prescriptions []*model.PrescriptionDetail
		err           error
	)
	switch {
	case requester.IsPractitioner():
		prescriptions, err = s.repo.ListForPractitioner(ctx, requester.ID)
	case requester.IsAdmin():
		prescriptions, err = s.repo.ListAll(ctx)
	default:
		prescriptions, err = s.repo.ListForPatient(ctx, requester.ID)
	}
	if err != nil {
		return nil, apperrors.Classify(err)
	}
	return prescriptions, nil
}

// Get returns one prescription, readable by the authoring practitioner,
// the patient, or an admin.
func (s *Service) Get(ctx context.Context, requester model.Requester, id uuid.UUID) (*model.PrescriptionDetail, error) {
	detail, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return nil, apperrors.Classify(err)
	}

	if !requester.IsAdmin() && detail.PractitionerID != requester.ID && detail.PatientID != requester.ID {
		return nil, apperrors.Authorization("not authorized to view this prescription")
	}
	return detail, nil
}

// Update merges the supplied fields. Only the authoring practitioner may
// mutate a prescription; the practitioner reference fixed at creation is
// the sole authorization key.
func (s *Service) Update(ctx context.Context, requester model.Requester, id uuid.UUID, req *model.UpdatePrescriptionRequest) (*model.PrescriptionDetail, error) {
	prescription, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.Classify(err)
	}

	if prescription.PractitionerID != requester.ID {
		return nil, apperrors.Authorization("not authorized to update this prescription")
	}

	req.ApplyTo(prescription)
	if fields := prescription.Validate(); len(fields) > 0 {
		return nil, apperrors.Validation("invalid prescription update", fields...)
	}

	if err := s.repo.Update(ctx, prescription); err != nil {
		return nil, apperrors.Classify(err)
	}

	detail, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return nil, apperrors.Classify(err)
	}
	return detail, nil
}

// Delete permanently removes a prescription and clears the back-link on
// its consultation. Authoring practitioner only.
func (s *Service) Delete(ctx context.Context, requester model.Requester, id uuid.UUID) error {
	prescription, err := s.repo.Get(ctx, id)
	if err != nil {
		return apperrors.Classify(err)
	}

	if prescription.PractitionerID != requester.ID {
		return apperrors.Authorization("not authorized to delete this prescription")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return apperrors.Classify(err)
	}

	// clear the back-link only if it still points at this prescription
	consultation, err := s.consultationRepo.Get(ctx, prescription.ConsultationID)
	if err != nil {
		return apperrors.Classify(err)
	}
	if consultation.PrescriptionID != nil && *consultation.PrescriptionID == id {
		if err := s.consultationRepo.SetPrescription(ctx, prescription.ConsultationID, nil); err != nil {
			return apperrors.Classify(err)
		}
	}
	return nil
}
