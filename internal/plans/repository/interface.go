package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Plan represents a preventive maintenance plan.
type Plan struct {
	ID                uuid.UUID  `db:"id"`
	Name              string     `db:"name"`
	EquipmentID       uuid.UUID  `db:"equipment_id"`
	FrequencyType     string     `db:"frequency_type"`
	FrequencyValue    int        `db:"frequency_value"`
	StartDate         time.Time  `db:"start_date"`
	EndDate           *time.Time `db:"end_date"`
	Instructions      *string    `db:"instructions"`
	EstimatedDuration *int       `db:"estimated_duration"`
	ToolsRequired     *string    `db:"tools_required"`
	MaterialsRequired *string    `db:"materials_required"`
	SafetyProcedures  *string    `db:"safety_procedures"`
	ManualReference   *string    `db:"manual_reference"`
	AssignedTo        *uuid.UUID `db:"assigned_to"`
	IsActive          bool       `db:"is_active"`
	CreatedBy         uuid.UUID  `db:"created_by"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
}

// CreatePlanParams contains data for creating a plan.
type CreatePlanParams struct {
	Name              string
	EquipmentID       uuid.UUID
	FrequencyType     string
	FrequencyValue    int
	StartDate         time.Time
	EndDate           *time.Time
	Instructions      *string
	EstimatedDuration *int
	ToolsRequired     *string
	MaterialsRequired *string
	SafetyProcedures  *string
	ManualReference   *string
	AssignedTo        *uuid.UUID
	CreatedBy         uuid.UUID
}

// UpdatePlanParams contains data for a partial plan update.
type UpdatePlanParams struct {
	ID                uuid.UUID
	Name              *string
	FrequencyType     *string
	FrequencyValue    *int
	StartDate         *time.Time
	EndDate           *time.Time
	Instructions      *string
	EstimatedDuration *int
	ToolsRequired     *string
	MaterialsRequired *string
	SafetyProcedures  *string
	ManualReference   *string
	AssignedTo        *uuid.UUID
}

// ListPlansParams defines filters for listing plans.
type ListPlansParams struct {
	Search      string
	EquipmentID *uuid.UUID
	ActiveOnly  bool
	Offset      int
	Limit       int
}

// GeneratedOrderParams carries the data for an order generated from a plan.
type GeneratedOrderParams struct {
	PlanID        uuid.UUID
	EquipmentID   uuid.UUID
	Description   string
	Instructions  *string
	ScheduledDate time.Time
	AssignedTo    *uuid.UUID
	CreatedBy     uuid.UUID
}

// Repository defines persistence operations for plans and the orders they
// generate.
type Repository interface {
	Create(ctx context.Context, params CreatePlanParams) (Plan, error)
	Update(ctx context.Context, params UpdatePlanParams) (Plan, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (Plan, error)
	List(ctx context.Context, params ListPlansParams) ([]Plan, int, error)
	ListActive(ctx context.Context) ([]Plan, error)
	ToggleActive(ctx context.Context, id uuid.UUID) (bool, error)

	// LastScheduledDate returns the most recent scheduled date among orders
	// generated from the plan, or nil when none exist yet.
	LastScheduledDate(ctx context.Context, planID uuid.UUID) (*time.Time, error)
	// InsertGeneratedOrder creates a pending preventive order for the plan
	// occurrence. When an order for (plan, scheduled date) already exists the
	// existing id is returned with created=false.
	InsertGeneratedOrder(ctx context.Context, params GeneratedOrderParams) (uuid.UUID, bool, error)
}
