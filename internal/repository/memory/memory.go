// Package memory provides in-memory repository implementations used by
// service tests. Behavior mirrors the postgres package: not-found and
// conflict conditions surface as the same error kinds.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/telemed-api/internal/model"
	apperrors "github.com/jwalitptl/telemed-api/pkg/errors"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]model.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[uuid.UUID]model.User)}
}

func (r *UserRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return apperrors.Conflict("email already registered")
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepository) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.NotFound("user")
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, apperrors.NotFound("user")
}

func (r *UserRepository) Update(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[user.ID]
	if !ok {
		return apperrors.NotFound("user")
	}
	for id, u := range r.users {
		if id != user.ID && u.Email == user.Email {
			return apperrors.Conflict("email already registered")
		}
	}
	// the password hash is written only through UpdatePassword
	user.PasswordHash = stored.PasswordHash
	user.UpdatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepository) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return apperrors.NotFound("user")
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now()
	r.users[id] = u
	return nil
}

func (r *UserRepository) List(_ context.Context) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*model.User, 0, len(r.users))
	for _, u := range r.users {
		u := u
		users = append(users, &u)
	}
	return users, nil
}

func (r *UserRepository) ListPractitioners(_ context.Context) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var practitioners []*model.User
	for _, u := range r.users {
		if u.Role == model.RolePractitioner && u.Active {
			u := u
			practitioners = append(practitioners, &u)
		}
	}
	return practitioners, nil
}

func (r *UserRepository) Deactivate(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return apperrors.NotFound("user")
	}
	u.Active = false
	r.users[id] = u
	return nil
}

type ConsultationRepository struct {
	mu            sync.RWMutex
	consultations map[uuid.UUID]model.Consultation
	users         *UserRepository
}

func NewConsultationRepository(users *UserRepository) *ConsultationRepository {
	return &ConsultationRepository{
		consultations: make(map[uuid.UUID]model.Consultation),
		users:         users,
	}
}

func (r *ConsultationRepository) Create(_ context.Context, c *model.Consultation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	c.UpdatedAt = time.Now()
	r.consultations[c.ID] = *c
	return nil
}

func (r *ConsultationRepository) Get(_ context.Context, id uuid.UUID) (*model.Consultation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.consultations[id]
	if !ok {
		return nil, apperrors.NotFound("consultation")
	}
	return &c, nil
}

func (r *ConsultationRepository) detail(ctx context.Context, c model.Consultation) *model.ConsultationDetail {
	d := model.ConsultationDetail{Consultation: c}
	if patient, err := r.users.Get(ctx, c.PatientID); err == nil {
		d.Patient = model.Participant{ID: patient.ID, Name: patient.Name, Email: patient.Email}
	}
	if prac, err := r.users.Get(ctx, c.PractitionerID); err == nil {
		d.Practitioner = model.Participant{
			ID: prac.ID, Name: prac.Name, Email: prac.Email, Specialization: prac.Specialization,
		}
	}
	return &d
}

func (r *ConsultationRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.ConsultationDetail, error) {
	r.mu.RLock()
	c, ok := r.consultations[id]
	r.mu.RUnlock()
	if !ok {
		return nil, apperrors.NotFound("consultation")
	}
	return r.detail(ctx, c), nil
}

func (r *ConsultationRepository) Update(_ context.Context, c *model.Consultation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.consultations[c.ID]; !ok {
		return apperrors.NotFound("consultation")
	}
	c.UpdatedAt = time.Now()
	r.consultations[c.ID] = *c
	return nil
}

func (r *ConsultationRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.consultations[id]; !ok {
		return apperrors.NotFound("consultation")
	}
	delete(r.consultations, id)
	return nil
}

func (r *ConsultationRepository) list(ctx context.Context, match func(model.Consultation) bool) []*model.ConsultationDetail {
	r.mu.RLock()
	var matched []model.Consultation
	for _, c := range r.consultations {
		if match(c) {
			matched = append(matched, c)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].ScheduledTime.After(matched[j].ScheduledTime)
	})

	details := make([]*model.ConsultationDetail, 0, len(matched))
	for _, c := range matched {
		details = append(details, r.detail(ctx, c))
	}
	return details
}

func (r *ConsultationRepository) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.ConsultationDetail, error) {
	return r.list(ctx, func(c model.Consultation) bool { return c.PatientID == patientID }), nil
}

func (r *ConsultationRepository) ListForPractitioner(ctx context.Context, practitionerID uuid.UUID) ([]*model.ConsultationDetail, error) {
	return r.list(ctx, func(c model.Consultation) bool { return c.PractitionerID == practitionerID }), nil
}

func (r *ConsultationRepository) SetPrescription(_ context.Context, id uuid.UUID, prescriptionID *uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.consultations[id]
	if !ok {
		return apperrors.NotFound("consultation")
	}
	c.PrescriptionID = prescriptionID
	r.consultations[id] = c
	return nil
}

type PrescriptionRepository struct {
	mu            sync.RWMutex
	prescriptions map[uuid.UUID]model.Prescription
	consultations *ConsultationRepository
	users         *UserRepository
}

func NewPrescriptionRepository(consultations *ConsultationRepository, users *UserRepository) *PrescriptionRepository {
	return &PrescriptionRepository{
		prescriptions: make(map[uuid.UUID]model.Prescription),
		consultations: consultations,
		users:         users,
	}
}

func (r *PrescriptionRepository) Create(_ context.Context, p *model.Prescription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	r.prescriptions[p.ID] = *p
	return nil
}

func (r *PrescriptionRepository) Get(_ context.Context, id uuid.UUID) (*model.Prescription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.prescriptions[id]
	if !ok {
		return nil, apperrors.NotFound("prescription")
	}
	return &p, nil
}

func (r *PrescriptionRepository) detail(ctx context.Context, p model.Prescription) *model.PrescriptionDetail {
	d := model.PrescriptionDetail{Prescription: p}
	if c, err := r.consultations.Get(ctx, p.ConsultationID); err == nil {
		d.Consultation = model.ConsultationSummary{ScheduledTime: c.ScheduledTime, Status: c.Status}
	}
	if patient, err := r.users.Get(ctx, p.PatientID); err == nil {
		d.PatientName = patient.Name
	}
	if prac, err := r.users.Get(ctx, p.PractitionerID); err == nil {
		d.PractitionerName = prac.Name
	}
	return &d
}

func (r *PrescriptionRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.PrescriptionDetail, error) {
	r.mu.RLock()
	p, ok := r.prescriptions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, apperrors.NotFound("prescription")
	}
	return r.detail(ctx, p), nil
}

func (r *PrescriptionRepository) Update(_ context.Context, p *model.Prescription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.prescriptions[p.ID]; !ok {
		return apperrors.NotFound("prescription")
	}
	p.UpdatedAt = time.Now()
	r.prescriptions[p.ID] = *p
	return nil
}

func (r *PrescriptionRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.prescriptions[id]; !ok {
		return apperrors.NotFound("prescription")
	}
	delete(r.prescriptions, id)
	return nil
}

func (r *PrescriptionRepository) list(ctx context.Context, match func(model.Prescription) bool) []*model.PrescriptionDetail {
	r.mu.RLock()
	var matched []model.Prescription
	for _, p := range r.prescriptions {
		if match(p) {
			matched = append(matched, p)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	details := make([]*model.PrescriptionDetail, 0, len(matched))
	for _, p := range matched {
		details = append(details, r.detail(ctx, p))
	}
	return details
}

func (r *PrescriptionRepository) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.PrescriptionDetail, error) {
	return r.list(ctx, func(p model.Prescription) bool { return p.PatientID == patientID }), nil
}

func (r *PrescriptionRepository) ListForPractitioner(ctx context.Context, practitionerID uuid.UUID) ([]*model.PrescriptionDetail, error) {
	return r.list(ctx, func(p model.Prescription) bool { return p.PractitionerID == practitionerID }), nil
}

func (r *PrescriptionRepository) ListAll(ctx context.Context) ([]*model.PrescriptionDetail, error) {
	return r.list(ctx, func(model.Prescription) bool { return true }), nil
}

func (r *PrescriptionRepository) ExistsForConsultation(_ context.Context, consultationID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.prescriptions {
		if p.ConsultationID == consultationID {
			return true, nil
		}
	}
	return false, nil
}

// TokenRepository is an in-memory stand-in for the Redis token store.
type TokenRepository struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	resets  map[string]uuid.UUID
}

func NewTokenRepository() *TokenRepository {
	return &TokenRepository{
		revoked: make(map[string]time.Time),
		resets:  make(map[string]uuid.UUID),
	}
}

func (r *TokenRepository) RevokeToken(_ context.Context, token string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[token] = time.Now().Add(ttl)
	return nil
}

func (r *TokenRepository) IsTokenRevoked(_ context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	expiry, ok := r.revoked[token]
	return ok && time.Now().Before(expiry), nil
}

func (r *TokenRepository) StoreResetToken(_ context.Context, userID uuid.UUID, token string, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resets[token] = userID
	return nil
}

func (r *TokenRepository) ConsumeResetToken(_ context.Context, token string) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	userID, ok := r.resets[token]
	if !ok {
		return uuid.Nil, apperrors.Authentication("invalid or expired reset token")
	}
	delete(r.resets, token)
	return userID, nil
}
