package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/pkg/auth"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/httputil"
)

// Context keys set by Authenticate
const (
	ContextClaims = "claims"
	ContextUserID = "user_id"
	ContextRole   = "role"
)

type AuthMiddleware struct {
	jwtSvc      auth.JWTService
	revocations *auth.RevocationList
}

func NewAuthMiddleware(jwtSvc auth.JWTService, revocations *auth.RevocationList) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSvc:      jwtSvc,
		revocations: revocations,
	}
}

// Authenticate verifies the bearer token and stores its claims in the
// context. The role used by RequireRoles comes only from here.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httputil.AbortWithError(c, apperrors.NewUnauthorized("missing authorization header", nil))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			httputil.AbortWithError(c, apperrors.NewUnauthorized("invalid authorization format", nil))
			return
		}

		claims, err := m.jwtSvc.ValidateToken(parts[1])
		if err != nil {
			httputil.AbortWithError(c, apperrors.NewUnauthorized("invalid token", err))
			return
		}
		if m.revocations != nil {
			revoked, err := m.revocations.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				httputil.AbortWithError(c, apperrors.NewInternal(err))
				return
			}
			if revoked {
				httputil.AbortWithError(c, apperrors.NewUnauthorized("token has been revoked", auth.ErrTokenRevoked))
				return
			}
		}

		c.Set(ContextClaims, claims)
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// ClaimsFrom returns the verified claims stored by Authenticate.
func ClaimsFrom(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

// UserIDFrom returns the authenticated user id, or uuid.Nil.
func UserIDFrom(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(ContextUserID); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}
