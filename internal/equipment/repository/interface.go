package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Equipment represents a maintainable asset.
type Equipment struct {
	ID                 uuid.UUID        `db:"id"`
	Name               string           `db:"name"`
	Code               string           `db:"code"`
	Description        *string          `db:"description"`
	Model              *string          `db:"model"`
	Manufacturer       *string          `db:"manufacturer"`
	SerialNumber       *string          `db:"serial_number"`
	AcquisitionDate    *time.Time       `db:"acquisition_date"`
	AcquisitionCost    *decimal.Decimal `db:"acquisition_cost"`
	Location           *string          `db:"location"`
	Status             string           `db:"status"`
	Criticality        string           `db:"criticality"`
	Power              *string          `db:"power"`
	Capacity           *string          `db:"capacity"`
	Voltage            *string          `db:"voltage"`
	FuelType           *string          `db:"fuel_type"`
	Dimensions         *string          `db:"dimensions"`
	LastPreventiveDate *time.Time       `db:"last_preventive_date"`
	LastCorrectiveDate *time.Time       `db:"last_corrective_date"`
	NextPreventiveDate *time.Time       `db:"next_preventive_date"`
	CreatedAt          time.Time        `db:"created_at"`
	UpdatedAt          time.Time        `db:"updated_at"`
}

// CreateEquipmentParams contains data for registering equipment.
type CreateEquipmentParams struct {
	Name            string
	Code            string
	Description     *string
	Model           *string
	Manufacturer    *string
	SerialNumber    *string
	AcquisitionDate *time.Time
	AcquisitionCost *decimal.Decimal
	Location        *string
	Status          string
	Criticality     string
	Power           *string
	Capacity        *string
	Voltage         *string
	FuelType        *string
	Dimensions      *string
}

// UpdateEquipmentParams contains data for a partial equipment update.
type UpdateEquipmentParams struct {
	ID              uuid.UUID
	Name            *string
	Code            *string
	Description     *string
	Model           *string
	Manufacturer    *string
	SerialNumber    *string
	AcquisitionDate *time.Time
	AcquisitionCost *decimal.Decimal
	Location        *string
	Status          *string
	Criticality     *string
	Power           *string
	Capacity        *string
	Voltage         *string
	FuelType        *string
	Dimensions      *string
}

// ListEquipmentParams defines filters for listing equipment.
type ListEquipmentParams struct {
	Search      string
	Status      string
	Criticality string
	Offset      int
	Limit       int
}

// MaintenanceDates carries the preventive schedule markers recorded on the
// equipment row after orders complete or plans generate.
type MaintenanceDates struct {
	LastPreventive *time.Time
	NextPreventive *time.Time
	LastCorrective *time.Time
}

// Repository defines persistence operations for equipment.
type Repository interface {
	Create(ctx context.Context, params CreateEquipmentParams) (Equipment, error)
	Update(ctx context.Context, params UpdateEquipmentParams) (Equipment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (Equipment, error)
	List(ctx context.Context, params ListEquipmentParams) ([]Equipment, int, error)
	SetMaintenanceDates(ctx context.Context, id uuid.UUID, dates MaintenanceDates) error
}
