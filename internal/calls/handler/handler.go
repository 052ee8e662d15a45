package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cmms_backend/internal/calls/service"
	"cmms_backend/internal/calls/transport"
	"cmms_backend/platform/httpkit"
	"cmms_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid call id"
)

// Handler handles HTTP requests for maintenance calls.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new calls handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) callID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.Nil, false
	}
	return id, true
}

func actor(c *gin.Context) (service.Actor, bool) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return service.Actor{}, false
	}
	return service.Actor{ID: identity.UserID(), Roles: identity.Roles()}, true
}

// List retrieves calls visible to the caller.
// GET /api/v1/calls
func (h *Handler) List(c *gin.Context) {
	var req transport.ListCallsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	act, ok := actor(c)
	if !ok {
		return
	}

	result, err := h.svc.List(c.Request.Context(), act, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetByID retrieves a call by ID.
// GET /api/v1/calls/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := h.callID(c)
	if !ok {
		return
	}
	act, ok := actor(c)
	if !ok {
		return
	}

	result, err := h.svc.GetByID(c.Request.Context(), act, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// History retrieves the audit trail of a call.
// GET /api/v1/calls/:id/history
func (h *Handler) History(c *gin.Context) {
	id, ok := h.callID(c)
	if !ok {
		return
	}
	act, ok := actor(c)
	if !ok {
		return
	}

	result, err := h.svc.History(c.Request.Context(), act, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Create opens a new call.
// POST /api/v1/calls
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	act, ok := actor(c)
	if !ok {
		return
	}

	result, err := h.svc.Create(c.Request.Context(), act, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// Update edits a call.
// PUT /api/v1/calls/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := h.callID(c)
	if !ok {
		return
	}

	var req transport.UpdateCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	act, ok := actor(c)
	if !ok {
		return
	}

	result, err := h.svc.Update(c.Request.Context(), act, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Assign hands the call to a technician.
// POST /api/v1/calls/:id/assign
func (h *Handler) Assign(c *gin.Context) {
	id, ok := h.callID(c)
	if !ok {
		return
	}

	var req transport.AssignCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	act, ok := actor(c)
	if !ok {
		return
	}

	result, err := h.svc.Assign(c.Request.Context(), act, id, req.AssignedTo)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Delete removes a call.
// DELETE /api/v1/admin/calls/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := h.callID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"message": "call deleted"})
}

// Start begins execution of a triaged call.
// POST /api/v1/calls/:id/start
func (h *Handler) Start(c *gin.Context) {
	id, ok := h.callID(c)
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

// Pause suspends a call in execution.
// POST /api/v1/calls/:id/pause
func (h *Handler) Pause(c *gin.Context) {
	id, ok := h.callID(c)
	if !ok {
		return
	}

	var req transport.PauseCallRequest
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

// Resume reactivates a paused call.
// POST /api/v1/calls/:id/resume
func (h *Handler) Resume(c *gin.Context) {
	id, ok := h.callID(c)
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

// Complete finalizes a call, deducting consumed parts from stock.
// POST /api/v1/calls/:id/complete
func (h *Handler) Complete(c *gin.Context) {
	id, ok := h.callID(c)
	if !ok {
		return
	}

	var req transport.CompleteCallRequest
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

// Cancel abandons a call with a mandatory reason.
// POST /api/v1/calls/:id/cancel
func (h *Handler) Cancel(c *gin.Context) {
	id, ok := h.callID(c)
	if !ok {
		return
	}

	var req transport.CancelCallRequest
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
