package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/telemed-api/internal/model"
	"github.com/jwalitptl/telemed-api/pkg/auth"
	apperrors "github.com/jwalitptl/telemed-api/pkg/errors"
	"github.com/jwalitptl/telemed-api/pkg/httputil"
)

const (
	contextUserID = "user_id"
	contextRole   = "role"
	contextEmail  = "email"
	contextToken  = "token"
)

// RevocationChecker reports whether a session token has been placed on
// the logout denylist.
type RevocationChecker interface {
	IsTokenRevoked(ctx context.Context, token string) (bool, error)
}

type AuthMiddleware struct {
	jwtSvc  auth.JWTService
	revoker RevocationChecker
}

func NewAuthMiddleware(jwtSvc auth.JWTService, revoker RevocationChecker) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSvc:  jwtSvc,
		revoker: revoker,
	}
}

// Authenticate verifies the bearer token, rejects revoked sessions, and
// stores the caller's identity in the request context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWith(c, apperrors.Authentication("missing authorization header"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortWith(c, apperrors.Authentication("invalid authorization format"))
			return
		}
		token := parts[1]

		claims, err := m.jwtSvc.ValidateToken(token)
		if err != nil {
			abortWith(c, apperrors.Authentication("invalid token"))
			return
		}

		revoked, err := m.revoker.IsTokenRevoked(c.Request.Context(), token)
		if err != nil {
			abortWith(c, apperrors.Internal(err))
			return
		}
		if revoked {
			abortWith(c, apperrors.Authentication("token has been revoked"))
			return
		}

		c.Set(contextUserID, claims.UserID)
		c.Set(contextRole, claims.Role)
		c.Set(contextEmail, claims.Email)
		c.Set(contextToken, token)
		c.Next()
	}
}

// RequireRole gates a route group to the named roles. It runs after
// Authenticate and assumes the identity keys are set.
func (m *AuthMiddleware) RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		requester, ok := RequesterFrom(c)
		if !ok {
			abortWith(c, apperrors.Authentication("authentication required"))
			return
		}

		for _, role := range roles {
			if requester.Role == role {
				c.Next()
				return
			}
		}
		abortWith(c, apperrors.Authorization("insufficient role for this resource"))
	}
}

// RequesterFrom extracts the authenticated identity set by Authenticate.
func RequesterFrom(c *gin.Context) (model.Requester, bool) {
	rawID, ok := c.Get(contextUserID)
	if !ok {
		return model.Requester{}, false
	}
	rawRole, ok := c.Get(contextRole)
	if !ok {
		return model.Requester{}, false
	}

	id, ok := rawID.(uuid.UUID)
	if !ok {
		return model.Requester{}, false
	}
	role, ok := rawRole.(model.Role)
	if !ok {
		return model.Requester{}, false
	}
	return model.Requester{ID: id, Role: role}, true
}

// TokenFrom returns the raw bearer token stored by Authenticate.
func TokenFrom(c *gin.Context) (string, bool) {
	raw, ok := c.Get(contextToken)
	if !ok {
		return "", false
	}
	token, ok := raw.(string)
	return token, ok
}

func abortWith(c *gin.Context, err error) {
	httputil.RespondWithError(c, err)
	c.Abort()
}
