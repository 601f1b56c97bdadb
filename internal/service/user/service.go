package user

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/telemed-api/internal/model"
	"github.com/jwalitptl/telemed-api/internal/repository"
	apperrors "github.com/jwalitptl/telemed-api/pkg/errors"
)

const (
	directoryCacheKey = "practitioners"
	directoryCacheTTL = 5 * time.Minute
)

type Service struct {
	repo      repository.UserRepository
	directory *cache.Cache
}

func NewService(repo repository.UserRepository) *Service {
	return &Service{
		repo:      repo,
		directory: cache.New(directoryCacheTTL, 10*time.Minute),
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.Classify(err)
	}
	return user, nil
}

// UpdateProfile merges the self-service fields into the stored account.
// Unspecified fields retain prior values; the password hash is untouched.
func (s *Service) UpdateProfile(ctx context.Context, requester model.Requester, req *model.UpdateProfileRequest) (*model.User, error) {
	if fields := req.Validate(); len(fields) > 0 {
		return nil, apperrors.Validation("invalid profile update", fields...)
	}

	user, err := s.repo.Get(ctx, requester.ID)
	if err != nil {
		return nil, apperrors.Classify(err)
	}

	req.ApplyTo(user)
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, apperrors.Classify(err)
	}

	if user.Role == model.RolePractitioner {
		s.InvalidateDirectory()
	}
	return user, nil
}

// List returns every account. Admin only.
func (s *Service) List(ctx context.Context, requester model.Requester) ([]*model.User, error) {
	if !requester.IsAdmin() {
		return nil, apperrors.Authorization("admin access required")
	}

	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Classify(err)
	}
	return users, nil
}

// ListPractitioners returns the active practitioner directory. The listing
// is read-mostly and served from an in-process cache.
func (s *Service) ListPractitioners(ctx context.Context) ([]*model.User, error) {
	if cached, ok := s.directory.Get(directoryCacheKey); ok {
		return cached.([]*model.User), nil
	}

	practitioners, err := s.repo.ListPractitioners(ctx)
	if err != nil {
		return nil, apperrors.Classify(err)
	}

	s.directory.Set(directoryCacheKey, practitioners, cache.DefaultExpiration)
	return practitioners, nil
}

// Deactivate soft-deletes an account. Admin only; the record is kept.
func (s *Service) Deactivate(ctx context.Context, requester model.Requester, id uuid.UUID) error {
	if !requester.IsAdmin() {
		return apperrors.Authorization("admin access required")
	}

	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return apperrors.Classify(err)
	}

	if err := s.repo.Deactivate(ctx, id); err != nil {
		return apperrors.Classify(err)
	}

	if user.Role == model.RolePractitioner {
		s.InvalidateDirectory()
	}
	return nil
}

// InvalidateDirectory drops the cached practitioner listing. Registration
// of a new practitioner calls this through the auth service.
func (s *Service) InvalidateDirectory() {
	s.directory.Delete(directoryCacheKey)
}
