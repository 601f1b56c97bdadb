package consultation

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/telemed-api/internal/model"
	"github.com/jwalitptl/telemed-api/internal/repository"
	apperrors "github.com/jwalitptl/telemed-api/pkg/errors"
)

type Service struct {
	repo             repository.ConsultationRepository
	userRepo         repository.UserRepository
	prescriptionRepo repository.PrescriptionRepository
	meetingBaseURL   string
}

func NewService(repo repository.ConsultationRepository, userRepo repository.UserRepository,
	prescriptionRepo repository.PrescriptionRepository, meetingBaseURL string) *Service {
	return &Service{
		repo:             repo,
		userRepo:         userRepo,
		prescriptionRepo: prescriptionRepo,
		meetingBaseURL:   meetingBaseURL,
	}
}

// Create books a consultation for the requester as patient with the named
// practitioner. The meeting link is an opaque generated placeholder.
func (s *Service) Create(ctx context.Context, requester model.Requester, req *model.CreateConsultationRequest) (*model.Consultation, error) {
	practitioner, err := s.userRepo.Get(ctx, req.PractitionerID)
	if err != nil || practitioner.Role != model.RolePractitioner || !practitioner.Active {
		return nil, apperrors.NotFound("practitioner")
	}

	duration := req.Duration
	if duration == 0 {
		duration = model.DefaultConsultationDuration
	}

	consultation := &model.Consultation{
		PatientID:      requester.ID,
		PractitionerID: req.PractitionerID,
		ScheduledTime:  req.ScheduledTime,
		Duration:       duration,
		Status:         model.ConsultationStatusScheduled,
		Type:           req.Type,
		Symptoms:       model.StringList(req.Symptoms),
		MeetingLink:    s.generateMeetingLink(),
		PaymentStatus:  model.PaymentStatusPending,
		Amount:         req.Amount,
	}

	if fields := consultation.Validate(); len(fields) > 0 {
		return nil, apperrors.Validation("invalid consultation", fields...)
	}

	if err := s.repo.Create(ctx, consultation); err != nil {
		return nil, apperrors.Classify(err)
	}
	return consultation, nil
}

// List returns the requester's consultations: practitioners see the ones
// they hold, everyone else the ones they booked. Sorted by scheduled time
// descending and expanded with participant display fields.
func (s *Service) List(ctx context.Context, requester model.Requester) ([]*model.ConsultationDetail, error) {
	var (
		consultations []*model.ConsultationDetail
		err           error
	)
	if requester.IsPractitioner() {
		consultations, err = s.repo.ListForPractitioner(ctx, requester.ID)
	} else {
		consultations, err = s.repo.ListForPatient(ctx, requester.ID)
	}
	if err != nil {
		return nil, apperrors.Classify(err)
	}
	return consultations, nil
}

// Get returns one consultation. Only the stored patient or practitioner
// may read it; there is no admin override for consultations.
func (s *Service) Get(ctx context.Context, requester model.Requester, id uuid.UUID) (*model.ConsultationDetail, error) {
	detail, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return nil, apperrors.Classify(err)
	}

	if !detail.IsParticipant(requester.ID) {
		return nil, apperrors.Authorization("not authorized to access this consultation")
	}
	return detail, nil
}

// Update merges the supplied fields into the record and re-validates the
// result, so completing a consultation requires diagnosis and notes.
// Merge updates are last-write-wins; there is no version token.
func (s *Service) Update(ctx context.Context, requester model.Requester, id uuid.UUID, req *model.UpdateConsultationRequest) (*model.ConsultationDetail, error) {
	consultation, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.Classify(err)
	}

	if !consultation.IsParticipant(requester.ID) {
		return nil, apperrors.Authorization("not authorized to update this consultation")
	}

	req.ApplyTo(consultation)
	if fields := consultation.Validate(); len(fields) > 0 {
		return nil, apperrors.Validation("invalid consultation update", fields...)
	}

	if err := s.repo.Update(ctx, consultation); err != nil {
		return nil, apperrors.Classify(err)
	}

	detail, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return nil, apperrors.Classify(err)
	}
	return detail, nil
}

// Delete permanently removes a consultation. Removal is blocked while a
// prescription still references it.
func (s *Service) Delete(ctx context.Context, requester model.Requester, id uuid.UUID) error {
	consultation, err := s.repo.Get(ctx, id)
	if err != nil {
		return apperrors.Classify(err)
	}

	if !consultation.IsParticipant(requester.ID) {
		return apperrors.Authorization("not authorized to delete this consultation")
	}

	hasPrescription, err := s.prescriptionRepo.ExistsForConsultation(ctx, id)
	if err != nil {
		return apperrors.Classify(err)
	}
	if hasPrescription {
		return apperrors.Conflict("consultation has prescriptions and cannot be deleted")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return apperrors.Classify(err)
	}
	return nil
}

func (s *Service) generateMeetingLink() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%s/%s", s.meetingBaseURL, uuid.New().String())
	}
	return fmt.Sprintf("%s/%s", s.meetingBaseURL, hex.EncodeToString(buf))
}
