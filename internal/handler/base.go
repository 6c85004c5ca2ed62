package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/httputil"
	"github.com/jwalitptl/hospital-api/pkg/pagination"
	"github.com/jwalitptl/hospital-api/pkg/validator"
)

// BaseHandler carries the request decoding shared by every resource handler.
// Each helper writes the failure envelope itself and reports false, so
// callers only need to return.
type BaseHandler struct {
	Validator validator.Validator
	MaxLimit  int
}

func NewBaseHandler(v validator.Validator, maxLimit int) *BaseHandler {
	if v == nil {
		v = validator.New()
	}
	if maxLimit <= 0 {
		maxLimit = pagination.MaxLimit
	}
	return &BaseHandler{Validator: v, MaxLimit: maxLimit}
}

// BindJSON decodes the body into req and validates it.
func (h *BaseHandler) BindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httputil.RespondWithError(c, bindError(err))
		return false
	}
	if err := h.Validator.Validate(req); err != nil {
		httputil.RespondWithError(c, err)
		return false
	}
	return true
}

// BindQuery decodes list filters from the query string and validates them.
func (h *BaseHandler) BindQuery(c *gin.Context, filters interface{}) bool {
	if err := c.ShouldBindQuery(filters); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid query parameters", err))
		return false
	}
	if err := h.Validator.Validate(filters); err != nil {
		httputil.RespondWithError(c, err)
		return false
	}
	return true
}

// Page parses the page and limit query parameters.
func (h *BaseHandler) Page(c *gin.Context) (pagination.Params, bool) {
	p, err := pagination.Parse(c.Query("page"), c.Query("limit"), h.MaxLimit)
	if err != nil {
		httputil.RespondWithError(c, err)
		return pagination.Params{}, false
	}
	return p, true
}

// ParseID reads the :id path parameter.
func ParseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid id", err))
		return uuid.Nil, false
	}
	return id, true
}

func bindError(err error) error {
	var maxErr *http.MaxBytesError
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError

	switch {
	case errors.As(err, &maxErr):
		return apperrors.NewValidation("request body too large", err)
	case errors.Is(err, io.EOF):
		return apperrors.NewValidation("request body is required", err)
	case errors.As(err, &typeErr):
		return apperrors.NewValidation(fmt.Sprintf("%s has the wrong type", typeErr.Field), err)
	case errors.As(err, &syntaxErr):
		return apperrors.NewValidation("malformed JSON body", err)
	}
	return apperrors.NewValidation("invalid request body", err)
}
