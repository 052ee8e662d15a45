package transport

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateEquipmentRequest struct {
	Name            string           `json:"name" validate:"required,min=1,max=200"`
	Code            string           `json:"code" validate:"required,min=1,max=50"`
	Description     *string          `json:"description,omitempty" validate:"omitempty,max=2000"`
	Model           *string          `json:"model,omitempty" validate:"omitempty,max=100"`
	Manufacturer    *string          `json:"manufacturer,omitempty" validate:"omitempty,max=100"`
	SerialNumber    *string          `json:"serialNumber,omitempty" validate:"omitempty,max=100"`
	AcquisitionDate *string          `json:"acquisitionDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	AcquisitionCost *decimal.Decimal `json:"acquisitionCost,omitempty"`
	Location        *string          `json:"location,omitempty" validate:"omitempty,max=200"`
	Status          string           `json:"status,omitempty" validate:"omitempty,oneof=active inactive maintenance"`
	Criticality     string           `json:"criticality,omitempty" validate:"omitempty,oneof=low medium high"`
	Power           *string          `json:"power,omitempty" validate:"omitempty,max=50"`
	Capacity        *string          `json:"capacity,omitempty" validate:"omitempty,max=50"`
	Voltage         *string          `json:"voltage,omitempty" validate:"omitempty,max=50"`
	FuelType        *string          `json:"fuelType,omitempty" validate:"omitempty,max=50"`
	Dimensions      *string          `json:"dimensions,omitempty" validate:"omitempty,max=100"`
}

type UpdateEquipmentRequest struct {
	Name            *string          `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Code            *string          `json:"code,omitempty" validate:"omitempty,min=1,max=50"`
	Description     *string          `json:"description,omitempty" validate:"omitempty,max=2000"`
	Model           *string          `json:"model,omitempty" validate:"omitempty,max=100"`
	Manufacturer    *string          `json:"manufacturer,omitempty" validate:"omitempty,max=100"`
	SerialNumber    *string          `json:"serialNumber,omitempty" validate:"omitempty,max=100"`
	AcquisitionDate *string          `json:"acquisitionDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	AcquisitionCost *decimal.Decimal `json:"acquisitionCost,omitempty"`
	Location        *string          `json:"location,omitempty" validate:"omitempty,max=200"`
	Status          *string          `json:"status,omitempty" validate:"omitempty,oneof=active inactive maintenance"`
	Criticality     *string          `json:"criticality,omitempty" validate:"omitempty,oneof=low medium high"`
	Power           *string          `json:"power,omitempty" validate:"omitempty,max=50"`
	Capacity        *string          `json:"capacity,omitempty" validate:"omitempty,max=50"`
	Voltage         *string          `json:"voltage,omitempty" validate:"omitempty,max=50"`
	FuelType        *string          `json:"fuelType,omitempty" validate:"omitempty,max=50"`
	Dimensions      *string          `json:"dimensions,omitempty" validate:"omitempty,max=100"`
}

type ListEquipmentRequest struct {
	Search      string `form:"search" validate:"max=100"`
	Status      string `form:"status" validate:"omitempty,oneof=active inactive maintenance"`
	Criticality string `form:"criticality" validate:"omitempty,oneof=low medium high"`
	Page        int    `form:"page" validate:"omitempty,min=1"`
	PageSize    int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type EquipmentResponse struct {
	ID                 uuid.UUID        `json:"id"`
	Name               string           `json:"name"`
	Code               string           `json:"code"`
	Description        *string          `json:"description,omitempty"`
	Model              *string          `json:"model,omitempty"`
	Manufacturer       *string          `json:"manufacturer,omitempty"`
	SerialNumber       *string          `json:"serialNumber,omitempty"`
	AcquisitionDate    *string          `json:"acquisitionDate,omitempty"`
	AcquisitionCost    *decimal.Decimal `json:"acquisitionCost,omitempty"`
	Location           *string          `json:"location,omitempty"`
	Status             string           `json:"status"`
	Criticality        string           `json:"criticality"`
	Power              *string          `json:"power,omitempty"`
	Capacity           *string          `json:"capacity,omitempty"`
	Voltage            *string          `json:"voltage,omitempty"`
	FuelType           *string          `json:"fuelType,omitempty"`
	Dimensions         *string          `json:"dimensions,omitempty"`
	LastPreventiveDate *string          `json:"lastPreventiveDate,omitempty"`
	LastCorrectiveDate *string          `json:"lastCorrectiveDate,omitempty"`
	NextPreventiveDate *string          `json:"nextPreventiveDate,omitempty"`
	CreatedAt          string           `json:"createdAt"`
	UpdatedAt          string           `json:"updatedAt"`
}

type EquipmentListResponse struct {
	Items      []EquipmentResponse `json:"items"`
	Total      int                 `json:"total"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"pageSize"`
	TotalPages int                 `json:"totalPages"`
}
