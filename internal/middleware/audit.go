package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-api/internal/service/audit"
	"github.com/jwalitptl/hospital-api/pkg/httputil"
)

type AuditMiddleware struct {
	auditSvc *audit.Service
}

func NewAuditMiddleware(auditSvc *audit.Service) *AuditMiddleware {
	return &AuditMiddleware{auditSvc: auditSvc}
}

// AuditLog records every mutating request on entityType after the handler
// has run. Reads are not recorded.
func (m *AuditMiddleware) AuditLog(entityType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		action := actionFor(c.Request.Method)
		if action == "" {
			c.Next()
			return
		}
		// POSTs on an existing record (discharge, pay) change it
		if action == "create" && c.Param("id") != "" {
			action = "update"
		}

		start := time.Now()
		c.Next()

		entityID := c.Param("id")
		if entityID == "" {
			entityID = c.GetString(httputil.ContextEntityID)
		}

		m.auditSvc.Log(c.Request.Context(), audit.Entry{
			UserID:     UserIDFrom(c),
			Role:       c.GetString(ContextRole),
			Action:     action,
			EntityType: entityType,
			EntityID:   entityID,
			Method:     c.Request.Method,
			Path:       c.FullPath(),
			Status:     c.Writer.Status(),
			RequestID:  c.GetString(httputil.ContextRequestID),
			IPAddress:  c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
			Duration:   time.Since(start),
		})
	}
}

func actionFor(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	}
	return ""
}
