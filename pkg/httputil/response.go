package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/pagination"
)

// ContextRequestID is the gin context key holding the correlation id.
const ContextRequestID = "request_id"

// ContextEntityID holds the id of the record created by the request.
const ContextEntityID = "entity_id"

// Response wraps all API responses
type Response struct {
	Success    bool             `json:"success"`
	Data       interface{}      `json:"data,omitempty"`
	Message    string           `json:"message,omitempty"`
	Fields     []string         `json:"fields,omitempty"`
	Pagination *pagination.Meta `json:"pagination,omitempty"`
	RequestID  string           `json:"request_id,omitempty"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithCreated sends a 201 response
func RespondWithCreated(c *gin.Context, data interface{}) {
	if e, ok := data.(interface{ EntityID() uuid.UUID }); ok {
		c.Set(ContextEntityID, e.EntityID().String())
	}
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithMessage sends a success response carrying only a message
func RespondWithMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: message,
	})
}

// RespondWithPagination sends a paginated response
func RespondWithPagination(c *gin.Context, data interface{}, p pagination.Params, total int) {
	meta := pagination.NewMeta(p, total)
	c.JSON(http.StatusOK, Response{
		Success:    true,
		Data:       data,
		Pagination: &meta,
	})
}

// RespondWithError classifies err and sends a failure response. Internal
// errors are logged with the request id and never exposed to the client.
func RespondWithError(c *gin.Context, err error) {
	requestID := c.GetString(ContextRequestID)

	appErr, ok := errors.As(err)
	if !ok || appErr.Code == errors.ErrInternal {
		log.Error().
			Err(err).
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")

		c.JSON(http.StatusInternalServerError, Response{
			Success:   false,
			Message:   "internal server error",
			RequestID: requestID,
		})
		return
	}

	c.JSON(appErr.Status(), Response{
		Success:   false,
		Message:   appErr.Message,
		Fields:    appErr.Fields,
		RequestID: requestID,
	})
}

// AbortWithError sends a failure response and stops the handler chain.
func AbortWithError(c *gin.Context, err error) {
	RespondWithError(c, err)
	c.Abort()
}
