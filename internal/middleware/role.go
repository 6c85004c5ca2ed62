package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-api/internal/model"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/httputil"
)

// RequireRoles lets the request through only when the authenticated role is
// one of allowed. Matching is exact and case-sensitive. A missing role is
// rejected the same way as a disallowed one.
func RequireRoles(allowed ...model.Role) gin.HandlerFunc {
	set := make(map[string]struct{}, len(allowed))
	for _, r := range allowed {
		set[string(r)] = struct{}{}
	}

	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		if _, ok := set[role]; role == "" || !ok {
			httputil.AbortWithError(c, apperrors.NewForbidden("insufficient role"))
			return
		}
		c.Next()
	}
}
