package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/telemed-api/internal/model"
	"github.com/jwalitptl/telemed-api/internal/repository/memory"
	pkgauth "github.com/jwalitptl/telemed-api/pkg/auth"
	apperrors "github.com/jwalitptl/telemed-api/pkg/errors"
	"github.com/jwalitptl/telemed-api/pkg/security"
)

type fakeEmailService struct {
	lastTo    string
	lastToken string
}

func (f *fakeEmailService) SendPasswordReset(to string, token string) error {
	f.lastTo = to
	f.lastToken = token
	return nil
}

type fakeDirectory struct {
	invalidations int
}

func (f *fakeDirectory) InvalidateDirectory() { f.invalidations++ }

type authFixture struct {
	svc       *Service
	users     *memory.UserRepository
	tokens    *memory.TokenRepository
	email     *fakeEmailService
	directory *fakeDirectory
	jwtSvc    pkgauth.JWTService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		users:     memory.NewUserRepository(),
		tokens:    memory.NewTokenRepository(),
		email:     &fakeEmailService{},
		directory: &fakeDirectory{},
		jwtSvc:    pkgauth.NewJWTService("test-secret", time.Hour),
	}
	f.svc = NewService(f.users, f.tokens, f.jwtSvc, security.NewBcryptHasher(bcrypt.MinCost), f.email, f.directory)
	return f
}

func patientRegistration(email string) *model.RegisterRequest {
	return &model.RegisterRequest{
		Name:     "Asha Rao",
		Email:    email,
		Password: "secret123",
		Role:     model.RolePatient,
		Phone:    "5551234567",
		Address:  "12 Lakeview Road",
	}
}

func TestRegisterIssuesToken(t *testing.T) {
	f := newAuthFixture(t)

	resp, err := f.svc.Register(context.Background(), patientRegistration("asha@example.com"))
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Token)
	assert.True(t, resp.ExpiresAt.After(time.Now()))
	assert.Equal(t, "asha@example.com", resp.User.Email)
	assert.True(t, resp.User.Active)
	assert.NotEqual(t, "secret123", resp.User.PasswordHash)

	claims, err := f.jwtSvc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, model.RolePatient, claims.Role)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Register(context.Background(), patientRegistration("asha@example.com"))
	require.NoError(t, err)

	_, err = f.svc.Register(context.Background(), patientRegistration("asha@example.com"))
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestRegisterPractitionerRequiresSpecialization(t *testing.T) {
	f := newAuthFixture(t)

	req := patientRegistration("vaidya@example.com")
	req.Role = model.RolePractitioner

	_, err := f.svc.Register(context.Background(), req)
	require.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	fields := make([]string, 0, len(appErr.Fields))
	for _, fe := range appErr.Fields {
		fields = append(fields, fe.Field)
	}
	assert.Contains(t, fields, "specialization")
	assert.Contains(t, fields, "experience")
}

func TestRegisterPractitionerInvalidatesDirectory(t *testing.T) {
	f := newAuthFixture(t)

	req := patientRegistration("vaidya@example.com")
	req.Role = model.RolePractitioner
	req.Specialization = "Kayachikitsa"
	req.Experience = 7

	_, err := f.svc.Register(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, f.directory.invalidations)
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.Register(context.Background(), patientRegistration("asha@example.com"))
	require.NoError(t, err)

	resp, err := f.svc.Login(context.Background(), &model.LoginRequest{
		Email: "asha@example.com", Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	_, err = f.svc.Login(context.Background(), &model.LoginRequest{
		Email: "asha@example.com", Password: "wrong-password",
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindAuthentication))

	_, err = f.svc.Login(context.Background(), &model.LoginRequest{
		Email: "nobody@example.com", Password: "secret123",
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindAuthentication))
}

func TestLoginDeactivatedAccount(t *testing.T) {
	f := newAuthFixture(t)
	resp, err := f.svc.Register(context.Background(), patientRegistration("asha@example.com"))
	require.NoError(t, err)

	require.NoError(t, f.users.Deactivate(context.Background(), resp.User.ID))

	_, err = f.svc.Login(context.Background(), &model.LoginRequest{
		Email: "asha@example.com", Password: "secret123",
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindAuthentication))
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newAuthFixture(t)
	resp, err := f.svc.Register(context.Background(), patientRegistration("asha@example.com"))
	require.NoError(t, err)

	revoked, err := f.svc.IsTokenRevoked(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, f.svc.Logout(context.Background(), resp.Token))

	revoked, err = f.svc.IsTokenRevoked(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestLogoutRejectsGarbageToken(t *testing.T) {
	f := newAuthFixture(t)
	err := f.svc.Logout(context.Background(), "not-a-token")
	assert.True(t, apperrors.IsKind(err, apperrors.KindAuthentication))
}

func TestChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	resp, err := f.svc.Register(context.Background(), patientRegistration("asha@example.com"))
	require.NoError(t, err)
	requester := model.Requester{ID: resp.User.ID, Role: resp.User.Role}

	err = f.svc.ChangePassword(context.Background(), requester, &model.ChangePasswordRequest{
		CurrentPassword: "wrong", NewPassword: "newsecret",
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindAuthentication))

	err = f.svc.ChangePassword(context.Background(), requester, &model.ChangePasswordRequest{
		CurrentPassword: "secret123", NewPassword: "newsecret",
	})
	require.NoError(t, err)

	_, err = f.svc.Login(context.Background(), &model.LoginRequest{
		Email: "asha@example.com", Password: "newsecret",
	})
	assert.NoError(t, err)

	_, err = f.svc.Login(context.Background(), &model.LoginRequest{
		Email: "asha@example.com", Password: "secret123",
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindAuthentication))
}

func TestForgotAndResetPassword(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.Register(context.Background(), patientRegistration("asha@example.com"))
	require.NoError(t, err)

	require.NoError(t, f.svc.ForgotPassword(context.Background(), "asha@example.com"))
	require.NotEmpty(t, f.email.lastToken)
	assert.Equal(t, "asha@example.com", f.email.lastTo)

	err = f.svc.ResetPassword(context.Background(), &model.ResetPasswordRequest{
		Token: f.email.lastToken, NewPassword: "resetsecret",
	})
	require.NoError(t, err)

	_, err = f.svc.Login(context.Background(), &model.LoginRequest{
		Email: "asha@example.com", Password: "resetsecret",
	})
	assert.NoError(t, err)

	// the reset token is single use
	err = f.svc.ResetPassword(context.Background(), &model.ResetPasswordRequest{
		Token: f.email.lastToken, NewPassword: "again",
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindAuthentication))
}

func TestForgotPasswordUnknownEmailSucceeds(t *testing.T) {
	f := newAuthFixture(t)

	require.NoError(t, f.svc.ForgotPassword(context.Background(), "nobody@example.com"))
	assert.Empty(t, f.email.lastToken)
}
