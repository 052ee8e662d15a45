package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cmms_backend/internal/orders/service"
	"cmms_backend/internal/orders/transport"
	"cmms_backend/platform/httpkit"
	"cmms_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid order id"
)

// Handler handles HTTP requests for maintenance orders.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new orders handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) orderID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.Nil, false
	}
	return id, true
}

// List retrieves orders.
// GET /api/v1/orders
func (h *Handler) List(c *gin.Context) {
	var req transport.ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Calendar retrieves orders in a scheduled-date window.
// GET /api/v1/orders/calendar
func (h *Handler) Calendar(c *gin.Context) {
	var req transport.CalendarRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Calendar(c.Request.Context(), req.From, req.To)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetByID retrieves an order by ID.
// GET /api/v1/orders/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := h.orderID(c)
	if !ok {
		return
	}

	result, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Delete removes an order.
// DELETE /api/v1/admin/orders/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := h.orderID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"message": "order deleted"})
}

// Start begins execution of a pending order.
// POST /api/v1/orders/:id/start
func (h *Handler) Start(c *gin.Context) {
	id, ok := h.orderID(c)
	if !ok {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.Start(c.Request.Context(), id, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Pause suspends a running order.
// POST /api/v1/orders/:id/pause
func (h *Handler) Pause(c *gin.Context) {
	id, ok := h.orderID(c)
	if !ok {
		return
	}

	var req transport.PauseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.Pause(c.Request.Context(), id, identity.UserID(), req.Reason)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Resume reactivates a paused order.
// POST /api/v1/orders/:id/resume
func (h *Handler) Resume(c *gin.Context) {
	id, ok := h.orderID(c)
	if !ok {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.Resume(c.Request.Context(), id, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Complete finalizes an order, deducting consumed parts from stock.
// POST /api/v1/orders/:id/complete
func (h *Handler) Complete(c *gin.Context) {
	id, ok := h.orderID(c)
	if !ok {
		return
	}

	var req transport.CompleteOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.Complete(c.Request.Context(), id, identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Cancel abandons an order with a mandatory reason.
// POST /api/v1/orders/:id/cancel
func (h *Handler) Cancel(c *gin.Context) {
	id, ok := h.orderID(c)
	if !ok {
		return
	}

	var req transport.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.Cancel(c.Request.Context(), id, identity.UserID(), req.Reason)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
