package notification

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
	Send(ctx context.Context, req *model.CreateNotificationRequest) (*model.Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, filters *model.NotificationFilters, page pagination.Params) ([]*model.Notification, int, error)
}

type Handler struct {
	*handler.BaseHandler
	service Service
}

func NewHandler(base *handler.BaseHandler, service Service) *Handler {
	return &Handler{BaseHandler: base, service: service}
}

// Reading and acknowledging notifications is open to every role, but only
// for the caller's own inbox.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", middleware.RequireRoles(model.RoleAdmin, model.RoleDoctor, model.RoleReceptionist), h.Send)
	r.GET("", h.List)
	r.PATCH("/:id/read", h.MarkRead)
}

func (h *Handler) Send(c *gin.Context) {
	var req model.CreateNotificationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	notification, err := h.service.Send(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, notification)
}

func (h *Handler) List(c *gin.Context) {
	var filters model.NotificationFilters
	if !h.BindQuery(c, &filters) {
		return
	}
	page, ok := h.Page(c)
	if !ok {
		return
	}

	notifications, total, err := h.service.List(c.Request.Context(), middleware.UserIDFrom(c), &filters, page)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, notifications, page, total)
}

func (h *Handler) MarkRead(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), id, middleware.UserIDFrom(c)); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "notification marked as read")
}
