package hospitalization

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/handler"
	"github.com/jwalitptl/hospital-api/internal/middleware"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/pkg/httputil"
	"github.com/jwalitptl/hospital-api/pkg/pagination"
)

type Service interface {
	Admit(ctx context.Context, req *model.AdmitRequest) (*model.Hospitalization, error)
	Discharge(ctx context.Context, id uuid.UUID, req *model.DischargeRequest) (*model.Hospitalization, error)
	GetHospitalization(ctx context.Context, id uuid.UUID) (*model.Hospitalization, error)
	ListHospitalizations(ctx context.Context, filters *model.HospitalizationFilters, page pagination.Params) ([]*model.Hospitalization, int, error)
}

type Handler struct {
	*handler.BaseHandler
	service Service
}

func NewHandler(base *handler.BaseHandler, service Service) *Handler {
	return &Handler{BaseHandler: base, service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.Use(middleware.RequireRoles(model.RoleAdmin, model.RoleDoctor, model.RoleNurse))
	r.POST("", h.Admit)
	r.GET("", h.ListHospitalizations)
	r.GET("/:id", h.GetHospitalization)
	r.POST("/:id/discharge", h.Discharge)
}

func (h *Handler) Admit(c *gin.Context) {
	var req model.AdmitRequest
	if !h.BindJSON(c, &req) {
		return
	}

	stay, err := h.service.Admit(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, stay)
}

// Discharge accepts an empty body.
func (h *Handler) Discharge(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}
	var req model.DischargeRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}

	stay, err := h.service.Discharge(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, stay)
}

func (h *Handler) GetHospitalization(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	stay, err := h.service.GetHospitalization(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, stay)
}

func (h *Handler) ListHospitalizations(c *gin.Context) {
	var filters model.HospitalizationFilters
	if !h.BindQuery(c, &filters) {
		return
	}
	page, ok := h.Page(c)
	if !ok {
		return
	}

	stays, total, err := h.service.ListHospitalizations(c.Request.Context(), &filters, page)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, stays, page, total)
}
