package doctor

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/handler"
	"github.com/jwalitptl/hospital-api/internal/middleware"
	"github.com/jwalitptl/hospital-api/internal/model"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/httputil"
	"github.com/jwalitptl/hospital-api/pkg/pagination"
)

type Service interface {
	CreateDoctor(ctx context.Context, req *model.DoctorRequest) (*model.Doctor, error)
	GetDoctor(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
	UpdateDoctor(ctx context.Context, id uuid.UUID, req *model.DoctorRequest) (*model.Doctor, error)
	DeleteDoctor(ctx context.Context, id uuid.UUID) error
	ListDoctors(ctx context.Context, filters *model.DoctorFilters, page pagination.Params) ([]*model.Doctor, int, error)
}

// SlotService answers availability queries.
type SlotService interface {
	AvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]model.TimeSlot, error)
}

type Handler struct {
	*handler.BaseHandler
	service Service
	slots   SlotService
}

func NewHandler(base *handler.BaseHandler, service Service, slots SlotService) *Handler {
	return &Handler{BaseHandler: base, service: service, slots: slots}
}

// RegisterRoutes: every role reads, only admins write.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	admin := middleware.RequireRoles(model.RoleAdmin)

	r.POST("", admin, h.CreateDoctor)
	r.GET("", h.ListDoctors)
	r.GET("/:id", h.GetDoctor)
	r.GET("/:id/available-slots", h.AvailableSlots)
	r.PUT("/:id", admin, h.UpdateDoctor)
	r.DELETE("/:id", admin, h.DeleteDoctor)
}

func (h *Handler) CreateDoctor(c *gin.Context) {
	var req model.DoctorRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doctor, err := h.service.CreateDoctor(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, doctor)
}

func (h *Handler) GetDoctor(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	doctor, err := h.service.GetDoctor(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, doctor)
}

func (h *Handler) UpdateDoctor(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}
	var req model.DoctorRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doctor, err := h.service.UpdateDoctor(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, doctor)
}

func (h *Handler) DeleteDoctor(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteDoctor(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "doctor deleted")
}

func (h *Handler) ListDoctors(c *gin.Context) {
	var filters model.DoctorFilters
	if !h.BindQuery(c, &filters) {
		return
	}
	page, ok := h.Page(c)
	if !ok {
		return
	}

	doctors, total, err := h.service.ListDoctors(c.Request.Context(), &filters, page)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, doctors, page, total)
}

// AvailableSlots lists free slots on ?date=YYYY-MM-DD.
func (h *Handler) AvailableSlots(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}
	date, err := model.ParseDate(c.Query("date"))
	if err != nil || date == nil {
		httputil.RespondWithError(c, apperrors.NewValidation("date must be a date in YYYY-MM-DD format", err))
		return
	}

	slots, err := h.slots.AvailableSlots(c.Request.Context(), id, *date)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, slots)
}
