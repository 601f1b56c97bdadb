package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/telemed-api/internal/email"
	"github.com/jwalitptl/telemed-api/internal/model"
	"github.com/jwalitptl/telemed-api/internal/repository"
	"github.com/jwalitptl/telemed-api/pkg/auth"
	apperrors "github.com/jwalitptl/telemed-api/pkg/errors"
	"github.com/jwalitptl/telemed-api/pkg/security"
)

const resetTokenExpiry = 1 * time.Hour

const defaultProfileImage = "default.jpg"

// DirectoryInvalidator lets registration drop the cached practitioner
// directory when a new practitioner joins.
type DirectoryInvalidator interface {
	InvalidateDirectory()
}

type Service struct {
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
	jwtSvc    auth.JWTService
	hasher    security.PasswordHasher
	emailSvc  email.Service
	directory DirectoryInvalidator
}

func NewService(userRepo repository.UserRepository, tokenRepo repository.TokenRepository,
	jwtSvc auth.JWTService, hasher security.PasswordHasher, emailSvc email.Service,
	directory DirectoryInvalidator) *Service {
	return &Service{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		jwtSvc:    jwtSvc,
		hasher:    hasher,
		emailSvc:  emailSvc,
		directory: directory,
	}
}

// Register creates an account, hashing the credential before persisting,
// and returns the stored record with a signed session token.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.TokenResponse, error) {
	if fields := req.Validate(); len(fields) > 0 {
		return nil, apperrors.Validation("invalid registration", fields...)
	}

	if existing, _ := s.userRepo.GetByEmail(ctx, req.Email); existing != nil {
		return nil, apperrors.Conflict("email already registered")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		Phone:        req.Phone,
		Address:      req.Address,
		ProfileImage: defaultProfileImage,
		Active:       true,
	}
	if req.Role == model.RolePractitioner {
		user.Specialization = req.Specialization
		user.Experience = req.Experience
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, apperrors.Classify(err)
	}

	if user.Role == model.RolePractitioner && s.directory != nil {
		s.directory.InvalidateDirectory()
	}

	return s.issueToken(user)
}

// Login authenticates an active account against its stored hash.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil || !user.Active {
		return nil, apperrors.Authentication("invalid credentials")
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Authentication("invalid credentials")
	}

	return s.issueToken(user)
}

// Logout places the presented token on the revocation denylist for the
// remainder of its validity window.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return apperrors.Authentication("invalid token")
	}

	ttl := time.Until(claims.ExpiresAt)
	if err := s.tokenRepo.RevokeToken(ctx, token, ttl); err != nil {
		return apperrors.Classify(err)
	}
	return nil
}

// ChangePassword is the only rehash path besides ResetPassword; profile
// updates never touch the stored hash.
func (s *Service) ChangePassword(ctx context.Context, requester model.Requester, req *model.ChangePasswordRequest) error {
	user, err := s.userRepo.Get(ctx, requester.ID)
	if err != nil {
		return apperrors.Classify(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, req.CurrentPassword); err != nil {
		return apperrors.Authentication("current password is incorrect")
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return apperrors.Validation("invalid password", apperrors.FieldError{
			Field: "new_password", Message: "must be at least 6 characters",
		})
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return apperrors.Classify(err)
	}
	return nil
}

// ForgotPassword issues a one-time reset token. An unknown email returns
// success to avoid account enumeration.
func (s *Service) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil || !user.Active {
		return nil
	}

	token := uuid.New().String()
	if err := s.tokenRepo.StoreResetToken(ctx, user.ID, token, resetTokenExpiry); err != nil {
		return apperrors.Classify(err)
	}

	if err := s.emailSvc.SendPasswordReset(user.Email, token); err != nil {
		log.Error().Err(err).Str("email", user.Email).Msg("failed to send reset email")
		return apperrors.Internal(err)
	}
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, req *model.ResetPasswordRequest) error {
	userID, err := s.tokenRepo.ConsumeResetToken(ctx, req.Token)
	if err != nil {
		return apperrors.Classify(err)
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return apperrors.Validation("invalid password", apperrors.FieldError{
			Field: "new_password", Message: "must be at least 6 characters",
		})
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return apperrors.Classify(err)
	}
	return nil
}

// IsTokenRevoked is consulted by the authentication middleware.
func (s *Service) IsTokenRevoked(ctx context.Context, token string) (bool, error) {
	return s.tokenRepo.IsTokenRevoked(ctx, token)
}

func (s *Service) issueToken(user *model.User) (*model.TokenResponse, error) {
	token, expiresAt, err := s.jwtSvc.GenerateToken(user)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &model.TokenResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}
