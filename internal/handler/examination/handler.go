package examination

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
	CreateExamination(ctx context.Context, req *model.ExaminationRequest) (*model.Examination, error)
	GetExamination(ctx context.Context, id uuid.UUID) (*model.Examination, error)
	UpdateExamination(ctx context.Context, id uuid.UUID, req *model.ExaminationRequest) (*model.Examination, error)
	DeleteExamination(ctx context.Context, id uuid.UUID) error
	ListExaminations(ctx context.Context, filters *model.ExaminationFilters, page pagination.Params) ([]*model.Examination, int, error)
}

type Handler struct {
	*handler.BaseHandler
	service Service
}

func NewHandler(base *handler.BaseHandler, service Service) *Handler {
	return &Handler{BaseHandler: base, service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	clinical := middleware.RequireRoles(model.RoleAdmin, model.RoleDoctor, model.RoleNurse)

	r.POST("", clinical, h.CreateExamination)
	r.GET("", clinical, h.ListExaminations)
	r.GET("/:id", clinical, h.GetExamination)
	r.PUT("/:id", clinical, h.UpdateExamination)
	r.DELETE("/:id", middleware.RequireRoles(model.RoleAdmin), h.DeleteExamination)
}

func (h *Handler) CreateExamination(c *gin.Context) {
	var req model.ExaminationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	exam, err := h.service.CreateExamination(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, exam)
}

func (h *Handler) GetExamination(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	exam, err := h.service.GetExamination(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, exam)
}

func (h *Handler) UpdateExamination(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}
	var req model.ExaminationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	exam, err := h.service.UpdateExamination(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, exam)
}

func (h *Handler) DeleteExamination(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteExamination(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "examination deleted")
}

func (h *Handler) ListExaminations(c *gin.Context) {
	var filters model.ExaminationFilters
	if !h.BindQuery(c, &filters) {
		return
	}
	page, ok := h.Page(c)
	if !ok {
		return
	}

	exams, total, err := h.service.ListExaminations(c.Request.Context(), &filters, page)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, exams, page, total)
}
