package medication

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
	CreateMedication(ctx context.Context, req *model.MedicationRequest) (*model.Medication, error)
	GetMedication(ctx context.Context, id uuid.UUID) (*model.Medication, error)
	UpdateMedication(ctx context.Context, id uuid.UUID, req *model.MedicationRequest) (*model.Medication, error)
	DeleteMedication(ctx context.Context, id uuid.UUID) error
	ListMedications(ctx context.Context, filters *model.MedicationFilters, page pagination.Params) ([]*model.Medication, int, error)
}

type Handler struct {
	*handler.BaseHandler
	service Service
}

func NewHandler(base *handler.BaseHandler, service Service) *Handler {
	return &Handler{BaseHandler: base, service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	read := middleware.RequireRoles(model.RoleAdmin, model.RoleDoctor, model.RoleNurse)
	prescribe := middleware.RequireRoles(model.RoleAdmin, model.RoleDoctor)

	r.POST("", prescribe, h.CreateMedication)
	r.GET("", read, h.ListMedications)
	r.GET("/:id", read, h.GetMedication)
	r.PUT("/:id", prescribe, h.UpdateMedication)
	r.DELETE("/:id", prescribe, h.DeleteMedication)
}

func (h *Handler) CreateMedication(c *gin.Context) {
	var req model.MedicationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	medication, err := h.service.CreateMedication(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, medication)
}

func (h *Handler) GetMedication(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	medication, err := h.service.GetMedication(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, medication)
}

func (h *Handler) UpdateMedication(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}
	var req model.MedicationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	medication, err := h.service.UpdateMedication(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, medication)
}

func (h *Handler) DeleteMedication(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteMedication(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "medication deleted")
}

func (h *Handler) ListMedications(c *gin.Context) {
	var filters model.MedicationFilters
	if !h.BindQuery(c, &filters) {
		return
	}
	page, ok := h.Page(c)
	if !ok {
		return
	}

	medications, total, err := h.service.ListMedications(c.Request.Context(), &filters, page)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, medications, page, total)
}
