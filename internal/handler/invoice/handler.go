package invoice

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
	CreateInvoice(ctx context.Context, req *model.CreateInvoiceRequest) (*model.Invoice, error)
	GetInvoice(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	PayInvoice(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	DeleteInvoice(ctx context.Context, id uuid.UUID) error
	ListInvoices(ctx context.Context, filters *model.InvoiceFilters, page pagination.Params) ([]*model.Invoice, int, error)
}

type Handler struct {
	*handler.BaseHandler
	service Service
}

func NewHandler(base *handler.BaseHandler, service Service) *Handler {
	return &Handler{BaseHandler: base, service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	read := middleware.RequireRoles(model.RoleAdmin, model.RoleAccountant, model.RoleReceptionist)
	billing := middleware.RequireRoles(model.RoleAdmin, model.RoleAccountant)

	r.POST("", billing, h.CreateInvoice)
	r.GET("", read, h.ListInvoices)
	r.GET("/:id", read, h.GetInvoice)
	r.POST("/:id/pay", billing, h.PayInvoice)
	r.DELETE("/:id", billing, h.DeleteInvoice)
}

func (h *Handler) CreateInvoice(c *gin.Context) {
	var req model.CreateInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	invoice, err := h.service.CreateInvoice(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, invoice)
}

func (h *Handler) GetInvoice(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	invoice, err := h.service.GetInvoice(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, invoice)
}

func (h *Handler) PayInvoice(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	invoice, err := h.service.PayInvoice(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, invoice)
}

func (h *Handler) DeleteInvoice(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteInvoice(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "invoice deleted")
}

func (h *Handler) ListInvoices(c *gin.Context) {
	var filters model.InvoiceFilters
	if !h.BindQuery(c, &filters) {
		return
	}
	page, ok := h.Page(c)
	if !ok {
		return
	}

	invoices, total, err := h.service.ListInvoices(c.Request.Context(), &filters, page)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, invoices, page, total)
}
