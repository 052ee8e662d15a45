package transport

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ListItemsRequest struct {
	Search     string     `form:"search" validate:"omitempty,max=200"`
	Category   string     `form:"category" validate:"omitempty,max=100"`
	LocationID *uuid.UUID `form:"locationId"`
	ActiveOnly bool       `form:"activeOnly"`
	Page       int        `form:"page" validate:"omitempty,min=1"`
	PageSize   int        `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type CreateItemRequest struct {
	Code            string           `json:"code" validate:"required,min=1,max=50"`
	Name            string           `json:"name" validate:"required,min=1,max=200"`
	Description     *string          `json:"description,omitempty" validate:"omitempty,max=1000"`
	Category        *string          `json:"category,omitempty" validate:"omitempty,max=100"`
	Unit            string           `json:"unit" validate:"omitempty,max=20"`
	MinQuantity     decimal.Decimal  `json:"minQuantity"`
	MaxQuantity     *decimal.Decimal `json:"maxQuantity,omitempty"`
	CurrentQuantity decimal.Decimal  `json:"currentQuantity"`
	UnitCost        decimal.Decimal  `json:"unitCost"`
	Supplier        *string          `json:"supplier,omitempty" validate:"omitempty,max=200"`
	LocationID      *uuid.UUID       `json:"locationId,omitempty"`
}

type UpdateItemRequest struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=1000"`
	Category    *string          `json:"category,omitempty" validate:"omitempty,max=100"`
	Unit        *string          `json:"unit,omitempty" validate:"omitempty,min=1,max=20"`
	MinQuantity *decimal.Decimal `json:"minQuantity,omitempty"`
	MaxQuantity *decimal.Decimal `json:"maxQuantity,omitempty"`
	UnitCost    *decimal.Decimal `json:"unitCost,omitempty"`
	Supplier    *string          `json:"supplier,omitempty" validate:"omitempty,max=200"`
	LocationID  *uuid.UUID       `json:"locationId,omitempty"`
	IsActive    *bool            `json:"isActive,omitempty"`
}

type CreateLocationRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Address     *string `json:"address,omitempty" validate:"omitempty,max=500"`
}

type UpdateLocationRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Address     *string `json:"address,omitempty" validate:"omitempty,max=500"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

type EntryRequest struct {
	Quantity decimal.Decimal  `json:"quantity" validate:"required"`
	UnitCost *decimal.Decimal `json:"unitCost,omitempty"`
	Notes    *string          `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type AdjustRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
	Notes    *string         `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type TransferRequest struct {
	LocationID uuid.UUID       `json:"locationId" validate:"required"`
	Quantity   decimal.Decimal `json:"quantity" validate:"required"`
	Notes      *string         `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type ListMovementsRequest struct {
	Limit int `form:"limit" validate:"omitempty,min=1,max=200"`
}

type ListAllMovementsRequest struct {
	ItemID        *uuid.UUID `form:"itemId"`
	Type          string     `form:"type" validate:"omitempty,oneof=entry exit adjustment transfer"`
	ReferenceType string     `form:"referenceType" validate:"omitempty,oneof=maintenance_order maintenance_call purchase adjustment transfer"`
	ReferenceID   *uuid.UUID `form:"referenceId"`
	Page          int        `form:"page" validate:"omitempty,min=1"`
	PageSize      int        `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type ItemResponse struct {
	ID              uuid.UUID        `json:"id"`
	Code            string           `json:"code"`
	Name            string           `json:"name"`
	Description     *string          `json:"description,omitempty"`
	Category        *string          `json:"category,omitempty"`
	Unit            string           `json:"unit"`
	MinQuantity     decimal.Decimal  `json:"minQuantity"`
	MaxQuantity     *decimal.Decimal `json:"maxQuantity,omitempty"`
	CurrentQuantity decimal.Decimal  `json:"currentQuantity"`
	UnitCost        decimal.Decimal  `json:"unitCost"`
	Supplier        *string          `json:"supplier,omitempty"`
	LocationID      *uuid.UUID       `json:"locationId,omitempty"`
	IsActive        bool             `json:"isActive"`
	LowStock        bool             `json:"lowStock"`
	CreatedAt       string           `json:"createdAt"`
	UpdatedAt       string           `json:"updatedAt"`
}

type ItemListResponse struct {
	Items      []ItemResponse `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

type LocationResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Address     *string   `json:"address,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   string    `json:"createdAt"`
	UpdatedAt   string    `json:"updatedAt"`
}

type MovementDetailResponse struct {
	ID            uuid.UUID        `json:"id"`
	ItemID        uuid.UUID        `json:"itemId"`
	ItemName      string           `json:"itemName"`
	ItemCode      string           `json:"itemCode"`
	MovementType  string           `json:"movementType"`
	Quantity      decimal.Decimal  `json:"quantity"`
	UnitCost      *decimal.Decimal `json:"unitCost,omitempty"`
	ReferenceType *string          `json:"referenceType,omitempty"`
	ReferenceID   *uuid.UUID       `json:"referenceId,omitempty"`
	LocationID    *uuid.UUID       `json:"locationId,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
	CreatedBy     uuid.UUID        `json:"createdBy"`
	CreatedAt     string           `json:"createdAt"`
}

type MovementListResponse struct {
	Movements  []MovementDetailResponse `json:"movements"`
	Total      int                      `json:"total"`
	Page       int                      `json:"page"`
	PageSize   int                      `json:"pageSize"`
	TotalPages int                      `json:"totalPages"`
}

type MovementResponse struct {
	ID            uuid.UUID        `json:"id"`
	ItemID        uuid.UUID        `json:"itemId"`
	MovementType  string           `json:"movementType"`
	Quantity      decimal.Decimal  `json:"quantity"`
	UnitCost      *decimal.Decimal `json:"unitCost,omitempty"`
	ReferenceType *string          `json:"referenceType,omitempty"`
	ReferenceID   *uuid.UUID       `json:"referenceId,omitempty"`
	LocationID    *uuid.UUID       `json:"locationId,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
	CreatedBy     uuid.UUID        `json:"createdBy"`
	CreatedAt     string           `json:"createdAt"`
}
