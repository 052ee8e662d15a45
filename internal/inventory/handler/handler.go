package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cmms_backend/internal/inventory/service"
	"cmms_backend/internal/inventory/transport"
	"cmms_backend/platform/httpkit"
	"cmms_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid id"
)

// Handler handles HTTP requests for the inventory.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new inventory handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.Nil, false
	}
	return id, true
}

// ListItems retrieves items.
// GET /api/v1/inventory/items
func (h *Handler) ListItems(c *gin.Context) {
	var req transport.ListItemsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.ListItems(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetItem retrieves an item by ID.
// GET /api/v1/inventory/items/:id
func (h *Handler) GetItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	result, err := h.svc.GetItemByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// CreateItem registers a new item.
// POST /api/v1/inventory/items
func (h *Handler) CreateItem(c *gin.Context) {
	var req transport.CreateItemRequest
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

	result, err := h.svc.CreateItem(c.Request.Context(), identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// UpdateItem edits an item.
// PUT /api/v1/inventory/items/:id
func (h *Handler) UpdateItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req transport.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.UpdateItem(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// DeleteItem removes an item.
// DELETE /api/v1/admin/inventory/items/:id
func (h *Handler) DeleteItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteItem(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"message": "item deleted"})
}

// LowStock retrieves items below their minimum quantity.
// GET /api/v1/inventory/low-stock
func (h *Handler) LowStock(c *gin.Context) {
	result, err := h.svc.LowStock(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// RegisterEntry books incoming stock.
// POST /api/v1/inventory/items/:id/entry
func (h *Handler) RegisterEntry(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req transport.EntryRequest
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

	result, err := h.svc.RegisterEntry(c.Request.Context(), id, identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Adjust sets stock to a counted quantity.
// POST /api/v1/inventory/items/:id/adjust
func (h *Handler) Adjust(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req transport.AdjustRequest
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

	result, err := h.svc.Adjust(c.Request.Context(), id, identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Transfer relocates an item's stock to another storage location.
// POST /api/v1/inventory/items/:id/transfer
func (h *Handler) Transfer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req transport.TransferRequest
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

	result, err := h.svc.Transfer(c.Request.Context(), id, identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListMovements retrieves movements across all items.
// GET /api/v1/inventory/movements
func (h *Handler) ListMovements(c *gin.Context) {
	var req transport.ListAllMovementsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.AllMovements(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Movements retrieves the latest movements of an item.
// GET /api/v1/inventory/items/:id/movements
func (h *Handler) Movements(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req transport.ListMovementsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.Movements(c.Request.Context(), id, req.Limit)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListLocations retrieves all storage locations.
// GET /api/v1/inventory/locations
func (h *Handler) ListLocations(c *gin.Context) {
	result, err := h.svc.ListLocations(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// CreateLocation registers a storage location.
// POST /api/v1/inventory/locations
func (h *Handler) CreateLocation(c *gin.Context) {
	var req transport.CreateLocationRequest
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

	result, err := h.svc.CreateLocation(c.Request.Context(), identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// UpdateLocation edits a storage location.
// PUT /api/v1/inventory/locations/:id
func (h *Handler) UpdateLocation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req transport.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.UpdateLocation(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// DeleteLocation removes a storage location.
// DELETE /api/v1/admin/inventory/locations/:id
func (h *Handler) DeleteLocation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteLocation(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"message": "location deleted"})
}
