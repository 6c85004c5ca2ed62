package user

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
	CreateUser(ctx context.Context, req *model.CreateUserRequest) (*model.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	ListUsers(ctx context.Context, filters *model.UserFilters, page pagination.Params) ([]*model.User, int, error)
}

type Handler struct {
	*handler.BaseHandler
	svc Service
}

func NewHandler(base *handler.BaseHandler, svc Service) *Handler {
	return &Handler{BaseHandler: base, svc: svc}
}

// RegisterRoutes mounts staff account management. Admin only.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.Use(middleware.RequireRoles(model.RoleAdmin))
	r.POST("", h.CreateUser)
	r.GET("", h.ListUsers)
	r.GET("/:id", h.GetUser)
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req model.CreateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.svc.CreateUser(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, user)
}

func (h *Handler) GetUser(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	user, err := h.svc.GetUser(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, user)
}

func (h *Handler) ListUsers(c *gin.Context) {
	var filters model.UserFilters
	if !h.BindQuery(c, &filters) {
		return
	}
	page, ok := h.Page(c)
	if !ok {
		return
	}

	users, total, err := h.svc.ListUsers(c.Request.Context(), &filters, page)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, users, page, total)
}
