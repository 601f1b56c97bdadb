package prescription

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/telemed-api/internal/model"
	"github.com/jwalitptl/telemed-api/internal/repository/memory"
	apperrors "github.com/jwalitptl/telemed-api/pkg/errors"
)

type prescriptionFixture struct {
	svc           *Service
	users         *memory.UserRepository
	consultations *memory.ConsultationRepository
	prescriptions *memory.PrescriptionRepository

	patient      *model.User
	practitioner *model.User
	consultation *model.Consultation
}

func newPrescriptionFixture(t *testing.T) *prescriptionFixture {
	t.Helper()
	f := &prescriptionFixture{users: memory.NewUserRepository()}
	f.consultations = memory.NewConsultationRepository(f.users)
	f.prescriptions = memory.NewPrescriptionRepository(f.consultations, f.users)
	f.svc = NewService(f.prescriptions, f.consultations)

	f.patient = &model.User{
		Name: "Asha Rao", Email: "asha@example.com", Role: model.RolePatient, Active: true,
	}
	require.NoError(t, f.users.Create(context.Background(), f.patient))

	f.practitioner = &model.User{
		Name: "Dr. Mehta", Email: "mehta@example.com", Role: model.RolePractitioner,
		Specialization: "Kayachikitsa", Active: true,
	}
	require.NoError(t, f.users.Create(context.Background(), f.practitioner))

	f.consultation = &model.Consultation{
		PatientID:      f.patient.ID,
		PractitionerID: f.practitioner.ID,
		ScheduledTime:  time.Now().Add(24 * time.Hour),
		Duration:       model.DefaultConsultationDuration,
		Status:         model.ConsultationStatusCompleted,
		Type:           model.ConsultationTypeInitial,
		Symptoms:       model.StringList{"fatigue"},
		Diagnosis:      "vata imbalance",
		Notes:          "dietary adjustment advised",
		PaymentStatus:  model.PaymentStatusCompleted,
		Amount:         500,
	}
	require.NoError(t, f.consultations.Create(context.Background(), f.consultation))
	return f
}

func (f *prescriptionFixture) authorRequester() model.Requester {
	return model.Requester{ID: f.practitioner.ID, Role: model.RolePractitioner}
}

func validHerbs() []model.HerbEntry {
	return []model.HerbEntry{{
		Name:     "Ashwagandha",
		Quantity: 3,
		Unit:     model.UnitGrams,
		Timing:   model.Timing{Frequency: model.FrequencyTwice, WhenToTake: model.AfterMeal},
	}}
}

func (f *prescriptionFixture) issue(t *testing.T) *model.Prescription {
	t.Helper()
	p, err := f.svc.Create(context.Background(), f.authorRequester(), &model.CreatePrescriptionRequest{
		ConsultationID: f.consultation.ID,
		Herbs:          validHerbs(),
		DurationDays:   14,
		ValidUntil:     time.Now().Add(30 * 24 * time.Hour),
		Refills:        2,
	})
	require.NoError(t, err)
	return p
}

func TestCreateCopiesParticipantsAndBackLinks(t *testing.T) {
	f := newPrescriptionFixture(t)
	p := f.issue(t)

	assert.Equal(t, f.patient.ID, p.PatientID)
	assert.Equal(t, f.practitioner.ID, p.PractitionerID)
	assert.Equal(t, model.PrescriptionStatusActive, p.Status)

	stored, err := f.consultations.Get(context.Background(), f.consultation.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PrescriptionID)
	assert.Equal(t, p.ID, *stored.PrescriptionID)
}

func TestCreateOnlyByConsultationPractitioner(t *testing.T) {
	f := newPrescriptionFixture(t)

	other := &model.User{
		Name: "Dr. Iyer", Email: "iyer@example.com", Role: model.RolePractitioner,
		Specialization: "Shalya", Active: true,
	}
	require.NoError(t, f.users.Create(context.Background(), other))

	// holding the practitioner role is not enough
	_, err := f.svc.Create(context.Background(), model.Requester{ID: other.ID, Role: model.RolePractitioner},
		&model.CreatePrescriptionRequest{
			ConsultationID: f.consultation.ID,
			Herbs:          validHerbs(),
			DurationDays:   14,
			ValidUntil:     time.Now().Add(30 * 24 * time.Hour),
		})
	assert.True(t, apperrors.IsKind(err, apperrors.KindAuthorization))
}

func TestCreateSecondPrescriptionConflicts(t *testing.T) {
	f := newPrescriptionFixture(t)
	f.issue(t)

	_, err := f.svc.Create(context.Background(), f.authorRequester(), &model.CreatePrescriptionRequest{
		ConsultationID: f.consultation.ID,
		Herbs:          validHerbs(),
		DurationDays:   14,
		ValidUntil:     time.Now().Add(30 * 24 * time.Hour),
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestCreateUnknownConsultation(t *testing.T) {
	f := newPrescriptionFixture(t)

	_, err := f.svc.Create(context.Background(), f.authorRequester(), &model.CreatePrescriptionRequest{
		ConsultationID: uuid.New(),
		Herbs:          validHerbs(),
		DurationDays:   14,
		ValidUntil:     time.Now().Add(30 * 24 * time.Hour),
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestCreateRejectsInvalidHerbs(t *testing.T) {
	f := newPrescriptionFixture(t)

	herbs := validHerbs()
	herbs[0].Quantity = 0
	herbs[0].Unit = "spoonfuls"

	_, err := f.svc.Create(context.Background(), f.authorRequester(), &model.CreatePrescriptionRequest{
		ConsultationID: f.consultation.ID,
		Herbs:          herbs,
		DurationDays:   14,
		ValidUntil:     time.Now().Add(30 * 24 * time.Hour),
	})
	require.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.GreaterOrEqual(t, len(appErr.Fields), 2)
}

func TestGetVisibility(t *testing.T) {
	f := newPrescriptionFixture(t)
	p := f.issue(t)

	detail, err := f.svc.Get(context.Background(), model.Requester{ID: f.patient.ID, Role: model.RolePatient}, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", detail.PatientName)
	assert.Equal(t, "Dr. Mehta", detail.PractitionerName)
	assert.Equal(t, model.ConsultationStatusCompleted, detail.Consultation.Status)

	_, err = f.svc.Get(context.Background(), f.authorRequester(), p.ID)
	assert.NoError(t, err)

	_, err = f.svc.Get(context.Background(), model.Requester{ID: uuid.New(), Role: model.RoleAdmin}, p.ID)
	assert.NoError(t, err, "admins may read any prescription")

	_, err = f.svc.Get(context.Background(), model.Requester{ID: uuid.New(), Role: model.RolePatient}, p.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindAuthorization))
}

func TestListScopedByRole(t *testing.T) {
	f := newPrescriptionFixture(t)
	f.issue(t)

	authored, err := f.svc.List(context.Background(), f.authorRequester())
	require.NoError(t, err)
	assert.Len(t, authored, 1)

	mine, err := f.svc.List(context.Background(), model.Requester{ID: f.patient.ID, Role: model.RolePatient})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := f.svc.List(context.Background(), model.Requester{ID: uuid.New(), Role: model.RoleAdmin})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	other, err := f.svc.List(context.Background(), model.Requester{ID: uuid.New(), Role: model.RolePatient})
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestUpdateAuthorOnly(t *testing.T) {
	f := newPrescriptionFixture(t)
	p := f.issue(t)

	days := 21
	_, err := f.svc.Update(context.Background(), model.Requester{ID: f.patient.ID, Role: model.RolePatient}, p.ID,
		&model.UpdatePrescriptionRequest{DurationDays: &days})
	assert.True(t, apperrors.IsKind(err, apperrors.KindAuthorization))

	detail, err := f.svc.Update(context.Background(), f.authorRequester(), p.ID,
		&model.UpdatePrescriptionRequest{DurationDays: &days})
	require.NoError(t, err)
	assert.Equal(t, 21, detail.DurationDays)
	assert.Equal(t, 2, detail.Refills, "unspecified fields keep prior values")
}

func TestUpdateRefillsInvariant(t *testing.T) {
	f := newPrescriptionFixture(t)
	p := f.issue(t)

	used := 3
	_, err := f.svc.Update(context.Background(), f.authorRequester(), p.ID,
		&model.UpdatePrescriptionRequest{RefillsUsed: &used})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation),
		"refills used cannot exceed allowed refills")

	ok := 2
	detail, err := f.svc.Update(context.Background(), f.authorRequester(), p.ID,
		&model.UpdatePrescriptionRequest{RefillsUsed: &ok})
	require.NoError(t, err)
	assert.Equal(t, 2, detail.RefillsUsed)
}

func TestDeleteClearsBackLink(t *testing.T) {
	f := newPrescriptionFixture(t)
	p := f.issue(t)

	err := f.svc.Delete(context.Background(), model.Requester{ID: f.patient.ID, Role: model.RolePatient}, p.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindAuthorization))

	require.NoError(t, f.svc.Delete(context.Background(), f.authorRequester(), p.ID))

	_, err = f.svc.Get(context.Background(), f.authorRequester(), p.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	stored, err := f.consultations.Get(context.Background(), f.consultation.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.PrescriptionID)
}

func TestDeleteKeepsBackLinkToOtherPrescription(t *testing.T) {
	f := newPrescriptionFixture(t)
	current := f.issue(t)

	// a stale record for the same consultation, no longer the linked one
	stale := &model.Prescription{
		ConsultationID: f.consultation.ID,
		PatientID:      f.patient.ID,
		PractitionerID: f.practitioner.ID,
		Herbs:          model.HerbList(validHerbs()),
		DurationDays:   7,
		Status:         model.PrescriptionStatusDiscontinued,
		ValidUntil:     time.Now().Add(7 * 24 * time.Hour),
	}
	require.NoError(t, f.prescriptions.Create(context.Background(), stale))

	require.NoError(t, f.svc.Delete(context.Background(), f.authorRequester(), stale.ID))

	stored, err := f.consultations.Get(context.Background(), f.consultation.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PrescriptionID)
	assert.Equal(t, current.ID, *stored.PrescriptionID)
}
