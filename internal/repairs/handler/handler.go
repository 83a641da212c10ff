// Package handler exposes the repairs HTTP API.
package handler

import (
	"net/http"

	"boatyard_backend/internal/repairs/domain"
	"boatyard_backend/internal/repairs/ports"
	"boatyard_backend/internal/repairs/service"
	"boatyard_backend/internal/repairs/transport"
	"boatyard_backend/platform/httpkit"
	"boatyard_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc      *service.Service
	validate *validator.Validator
}

func New(svc *service.Service, validate *validator.Validator) *Handler {
	return &Handler{svc: svc, validate: validate}
}

// RegisterRoutes mounts the repairs API on an authenticated group. The
// billing endpoints address a request by its human-facing booking ID; the
// rest use the internal UUID.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/mine", h.ListMine)
	rg.GET("/:id", h.GetByID)
	rg.PUT("/:id", h.StaffUpdate)
	rg.PUT("/:id/customer-edit", h.CustomerEdit)
	rg.PATCH("/:id/cancel", h.Cancel)
	rg.DELETE("/:id/customer-delete", h.CustomerDelete)
	rg.POST("/:id/invoice", h.SendInvoice)
	rg.POST("/:id/final-payment", h.RecordFinalPayment)
	rg.GET("/:id/payments", h.ListPayments)
}

// RegisterAdminRoutes mounts the admin-only endpoints.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.DELETE("/repairs/:id", h.AdminDelete)
}

func actorFrom(c *gin.Context) (domain.Actor, bool) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return domain.Actor{}, false
	}
	return domain.Actor{ID: id.UserID(), Roles: id.Roles()}, true
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req transport.CreateRepairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	created, err := h.svc.Create(c.Request.Context(), actor, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, transport.CreateRepairResponse{
		BookingID: created.BookingID,
		Request:   transport.RepairResponse{RepairRequest: *created},
	})
}

func (h *Handler) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	filters, ok := listFiltersFrom(c)
	if !ok {
		return
	}

	requests, err := h.svc.List(c.Request.Context(), actor, filters)
	if httpkit.HandleError(c, err) {
		return
	}

	parties := h.svc.Parties(c.Request.Context(), requests)
	httpkit.OK(c, toResponses(requests, parties))
}

func (h *Handler) ListMine(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	requests, err := h.svc.ListMine(c.Request.Context(), actor)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toResponses(requests, nil))
}

func (h *Handler) GetByID(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	req, err := h.svc.GetByID(c.Request.Context(), actor, id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.RepairResponse{RepairRequest: *req})
}

func (h *Handler) StaffUpdate(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req transport.StaffUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	updated, err := h.svc.StaffUpdate(c.Request.Context(), actor, id, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.RepairResponse{RepairRequest: *updated})
}

func (h *Handler) CustomerEdit(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req transport.CustomerEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	updated, err := h.svc.CustomerEdit(c.Request.Context(), actor, id, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.RepairResponse{RepairRequest: *updated})
}

func (h *Handler) Cancel(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	cancelled, err := h.svc.Cancel(c.Request.Context(), actor, id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Message(c, "repair request cancelled", transport.RepairResponse{RepairRequest: *cancelled})
}

func (h *Handler) CustomerDelete(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.svc.CustomerDelete(c.Request.Context(), actor, id)) {
		return
	}

	httpkit.Message(c, "repair request deleted", nil)
}

func (h *Handler) AdminDelete(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.svc.AdminDelete(c.Request.Context(), actor, id)) {
		return
	}

	httpkit.Message(c, "repair request deleted", nil)
}

func (h *Handler) SendInvoice(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	bookingID := c.Param("id")

	var req transport.SendInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	invoiced, err := h.svc.SendInvoice(c.Request.Context(), actor, bookingID, req.FinalCost)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Message(c, "invoice sent", transport.RepairResponse{RepairRequest: *invoiced})
}

func (h *Handler) RecordFinalPayment(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	bookingID := c.Param("id")

	var req transport.RecordFinalPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	_, payment, err := h.svc.RecordFinalPayment(c.Request.Context(), actor, bookingID, req.PaymentIntentID, req.Amount)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Message(c, "payment recorded", toPaymentResponse(*payment))
}

func (h *Handler) ListPayments(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	bookingID := c.Param("id")

	payments, err := h.svc.ListPayments(c.Request.Context(), actor, bookingID)
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentResponse(p))
	}
	httpkit.OK(c, out)
}

func listFiltersFrom(c *gin.Context) (service.ListFilters, bool) {
	var query struct {
		Status       *string `form:"status"`
		CustomerID   *string `form:"customerId"`
		TechnicianID *string `form:"technicianId"`
		Limit        int     `form:"limit"`
		Offset       int     `form:"offset"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return service.ListFilters{}, false
	}

	filters := service.ListFilters{
		Status: query.Status,
		Limit:  query.Limit,
		Offset: query.Offset,
	}
	if query.CustomerID != nil {
		id, err := uuid.Parse(*query.CustomerID)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return service.ListFilters{}, false
		}
		filters.CustomerID = &id
	}
	if query.TechnicianID != nil {
		id, err := uuid.Parse(*query.TechnicianID)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return service.ListFilters{}, false
		}
		filters.TechnicianID = &id
	}

	return filters, true
}

func toResponses(requests []domain.RepairRequest, parties map[uuid.UUID]ports.UserInfo) []transport.RepairResponse {
	out := make([]transport.RepairResponse, 0, len(requests))
	for _, req := range requests {
		resp := transport.RepairResponse{RepairRequest: req}
		if info, ok := parties[req.CustomerID]; ok {
			resp.Customer = toUserRef(info)
		}
		if req.AssignedTechnicianID != nil {
			if info, ok := parties[*req.AssignedTechnicianID]; ok {
				resp.Technician = toUserRef(info)
			}
		}
		out = append(out, resp)
	}
	return out
}

func toUserRef(info ports.UserInfo) *transport.UserRef {
	return &transport.UserRef{
		ID:    info.ID.String(),
		Name:  info.Name,
		Email: info.Email,
		Phone: info.Phone,
	}
}

func toPaymentResponse(p domain.Payment) transport.PaymentResponse {
	return transport.PaymentResponse{
		PaymentID:              p.ID.String(),
		ServiceID:              p.BookingID,
		ExternalTransactionRef: p.GatewayRef,
		Amount:                 p.Amount,
		AmountCents:            p.AmountCents,
		Status:                 string(p.Status),
		PaidAt:                 p.PaidAt,
	}
}
