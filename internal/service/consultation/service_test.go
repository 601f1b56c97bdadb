package consultation

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/telemed-api/internal/model"
	"github.com/jwalitptl/telemed-api/internal/repository/memory"
	apperrors "github.com/jwalitptl/telemed-api/pkg/errors"
)

type consultationFixture struct {
	svc           *Service
	users         *memory.UserRepository
	consultations *memory.ConsultationRepository
	prescriptions *memory.PrescriptionRepository

	patient      *model.User
	practitioner *model.User
}

func newConsultationFixture(t *testing.T) *consultationFixture {
	t.Helper()
	f := &consultationFixture{users: memory.NewUserRepository()}
	f.consultations = memory.NewConsultationRepository(f.users)
	f.prescriptions = memory.NewPrescriptionRepository(f.consultations, f.users)
	f.svc = NewService(f.consultations, f.users, f.prescriptions, "https://meet.example.com")

	f.patient = &model.User{
		Name: "Asha Rao", Email: "asha@example.com", Role: model.RolePatient, Active: true,
	}
	require.NoError(t, f.users.Create(context.Background(), f.patient))

	f.practitioner = &model.User{
		Name: "Dr. Mehta", Email: "mehta@example.com", Role: model.RolePractitioner,
		Specialization: "Kayachikitsa", Experience: 9, Active: true,
	}
	require.NoError(t, f.users.Create(context.Background(), f.practitioner))
	return f
}

func (f *consultationFixture) patientRequester() model.Requester {
	return model.Requester{ID: f.patient.ID, Role: model.RolePatient}
}

func (f *consultationFixture) practitionerRequester() model.Requester {
	return model.Requester{ID: f.practitioner.ID, Role: model.RolePractitioner}
}

func (f *consultationFixture) book(t *testing.T) *model.Consultation {
	t.Helper()
	c, err := f.svc.Create(context.Background(), f.patientRequester(), &model.CreateConsultationRequest{
		PractitionerID: f.practitioner.ID,
		ScheduledTime:  time.Now().Add(48 * time.Hour),
		Type:           model.ConsultationTypeInitial,
		Symptoms:       []string{"fatigue", "headache"},
		Amount:         500,
	})
	require.NoError(t, err)
	return c
}

func TestCreateDefaults(t *testing.T) {
	f := newConsultationFixture(t)
	c := f.book(t)

	assert.Equal(t, f.patient.ID, c.PatientID)
	assert.Equal(t, model.ConsultationStatusScheduled, c.Status)
	assert.Equal(t, model.PaymentStatusPending, c.PaymentStatus)
	assert.Equal(t, model.DefaultConsultationDuration, c.Duration)
	assert.True(t, strings.HasPrefix(c.MeetingLink, "https://meet.example.com/"))
	assert.NotEqual(t, c.MeetingLink, f.book(t).MeetingLink)
}

func TestCreateUnknownPractitioner(t *testing.T) {
	f := newConsultationFixture(t)

	cases := map[string]uuid.UUID{
		"missing id":  uuid.New(),
		"not a practitioner": f.patient.ID,
	}
	for name, id := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), f.patientRequester(), &model.CreateConsultationRequest{
				PractitionerID: id,
				ScheduledTime:  time.Now().Add(time.Hour),
				Type:           model.ConsultationTypeInitial,
				Symptoms:       []string{"fatigue"},
				Amount:         500,
			})
			assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
		})
	}
}

func TestCreateDeactivatedPractitioner(t *testing.T) {
	f := newConsultationFixture(t)
	require.NoError(t, f.users.Deactivate(context.Background(), f.practitioner.ID))

	_, err := f.svc.Create(context.Background(), f.patientRequester(), &model.CreateConsultationRequest{
		PractitionerID: f.practitioner.ID,
		ScheduledTime:  time.Now().Add(time.Hour),
		Type:           model.ConsultationTypeInitial,
		Symptoms:       []string{"fatigue"},
		Amount:         500,
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestCreateRejectsEmptySymptoms(t *testing.T) {
	f := newConsultationFixture(t)

	_, err := f.svc.Create(context.Background(), f.patientRequester(), &model.CreateConsultationRequest{
		PractitionerID: f.practitioner.ID,
		ScheduledTime:  time.Now().Add(time.Hour),
		Type:           model.ConsultationTypeInitial,
		Symptoms:       nil,
		Amount:         500,
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestGetParticipantsOnly(t *testing.T) {
	f := newConsultationFixture(t)
	c := f.book(t)

	detail, err := f.svc.Get(context.Background(), f.patientRequester(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Mehta", detail.Practitioner.Name)
	assert.Equal(t, "Asha Rao", detail.Patient.Name)

	_, err = f.svc.Get(context.Background(), f.practitionerRequester(), c.ID)
	assert.NoError(t, err)

	// admins are not participants and have no override here
	_, err = f.svc.Get(context.Background(), model.Requester{ID: uuid.New(), Role: model.RoleAdmin}, c.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindAuthorization))
}

func TestListScopedByRole(t *testing.T) {
	f := newConsultationFixture(t)
	f.book(t)
	f.book(t)

	mine, err := f.svc.List(context.Background(), f.patientRequester())
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	held, err := f.svc.List(context.Background(), f.practitionerRequester())
	require.NoError(t, err)
	assert.Len(t, held, 2)

	other, err := f.svc.List(context.Background(), model.Requester{ID: uuid.New(), Role: model.RolePatient})
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestUpdateMergeAndCompletionRule(t *testing.T) {
	f := newConsultationFixture(t)
	c := f.book(t)

	completed := model.ConsultationStatusCompleted
	_, err := f.svc.Update(context.Background(), f.practitionerRequester(), c.ID,
		&model.UpdateConsultationRequest{Status: &completed})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation),
		"completing without diagnosis and notes must fail")

	diagnosis := "vata imbalance"
	notes := "advise rest and a follow up in two weeks"
	detail, err := f.svc.Update(context.Background(), f.practitionerRequester(), c.ID,
		&model.UpdateConsultationRequest{Status: &completed, Diagnosis: &diagnosis, Notes: &notes})
	require.NoError(t, err)

	assert.Equal(t, model.ConsultationStatusCompleted, detail.Status)
	assert.Equal(t, diagnosis, detail.Diagnosis)
	assert.Equal(t, c.MeetingLink, detail.MeetingLink, "unspecified fields keep prior values")
}

func TestUpdateTypeAndAmount(t *testing.T) {
	f := newConsultationFixture(t)
	c := f.book(t)

	followUp := model.ConsultationTypeFollowUp
	amount := 750.0
	detail, err := f.svc.Update(context.Background(), f.patientRequester(), c.ID,
		&model.UpdateConsultationRequest{Type: &followUp, Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, model.ConsultationTypeFollowUp, detail.Type)
	assert.Equal(t, 750.0, detail.Amount)

	bad := model.ConsultationType("walk-in")
	_, err = f.svc.Update(context.Background(), f.patientRequester(), c.ID,
		&model.UpdateConsultationRequest{Type: &bad})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	zero := 0.0
	_, err = f.svc.Update(context.Background(), f.patientRequester(), c.ID,
		&model.UpdateConsultationRequest{Amount: &zero})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestUpdateNonParticipant(t *testing.T) {
	f := newConsultationFixture(t)
	c := f.book(t)

	cancelled := model.ConsultationStatusCancelled
	_, err := f.svc.Update(context.Background(), model.Requester{ID: uuid.New(), Role: model.RolePatient}, c.ID,
		&model.UpdateConsultationRequest{Status: &cancelled})
	assert.True(t, apperrors.IsKind(err, apperrors.KindAuthorization))
}

func TestUpdateRatingBounds(t *testing.T) {
	f := newConsultationFixture(t)
	c := f.book(t)

	bad := 6
	_, err := f.svc.Update(context.Background(), f.patientRequester(), c.ID,
		&model.UpdateConsultationRequest{Rating: &bad})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	good := 5
	detail, err := f.svc.Update(context.Background(), f.patientRequester(), c.ID,
		&model.UpdateConsultationRequest{Rating: &good})
	require.NoError(t, err)
	assert.Equal(t, 5, detail.Rating)
}

func TestDelete(t *testing.T) {
	f := newConsultationFixture(t)
	c := f.book(t)

	err := f.svc.Delete(context.Background(), model.Requester{ID: uuid.New(), Role: model.RolePatient}, c.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindAuthorization))

	require.NoError(t, f.svc.Delete(context.Background(), f.patientRequester(), c.ID))

	_, err = f.svc.Get(context.Background(), f.patientRequester(), c.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestDeleteBlockedByPrescription(t *testing.T) {
	f := newConsultationFixture(t)
	c := f.book(t)

	prescription := &model.Prescription{
		ConsultationID: c.ID,
		PatientID:      c.PatientID,
		PractitionerID: c.PractitionerID,
	}
	require.NoError(t, f.prescriptions.Create(context.Background(), prescription))

	err := f.svc.Delete(context.Background(), f.patientRequester(), c.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}
