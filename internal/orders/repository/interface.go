package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Order represents a preventive maintenance order.
type Order struct {
	ID              uuid.UUID  `db:"id"`
	PlanID          *uuid.UUID `db:"plan_id"`
	EquipmentID     uuid.UUID  `db:"equipment_id"`
	Type            string     `db:"type"`
	Priority        string     `db:"priority"`
	Description     *string    `db:"description"`
	Instructions    *string    `db:"instructions"`
	Status          string     `db:"status"`
	AssignedTo      *uuid.UUID `db:"assigned_to"`
	ScheduledDate   time.Time  `db:"scheduled_date"`
	StartedAt       *time.Time `db:"started_at"`
	CompletedDate   *time.Time `db:"completed_date"`
	ExecutionTime   *int       `db:"execution_time"`
	Observations    *string    `db:"observations"`
	PartsUsed       *string    `db:"parts_used"`
	PausedAt        *time.Time `db:"paused_at"`
	PauseReason     *string    `db:"pause_reason"`
	TotalPausedTime int        `db:"total_paused_time"`
	ResumeCount     int        `db:"resume_count"`
	CancelReason    *string    `db:"cancel_reason"`
	CancelledAt     *time.Time `db:"cancelled_at"`
	CancelledBy     *uuid.UUID `db:"cancelled_by"`
	CreatedBy       *uuid.UUID `db:"created_by"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`

	// joined display fields
	EquipmentName string `db:"equipment_name"`
	EquipmentCode string `db:"equipment_code"`
}

// ListOrdersParams defines filters for listing orders.
type ListOrdersParams struct {
	Status      string
	EquipmentID *uuid.UUID
	PlanID      *uuid.UUID
	AssignedTo  *uuid.UUID
	From        *time.Time
	To          *time.Time
	Offset      int
	Limit       int
}

// ExecutionState carries the lifecycle snapshot persisted after a start,
// pause or resume transition.
type ExecutionState struct {
	Status          string
	StartedAt       *time.Time
	PausedAt        *time.Time
	PauseReason     *string
	TotalPausedTime int
	ResumeCount     int
}

// CompleteOrderParams finalizes an order.
type CompleteOrderParams struct {
	ID            uuid.UUID
	CompletedAt   time.Time
	ExecutionTime *int
	Observations  *string
	PartsUsed     *string
}

// CancelOrderParams cancels an order.
type CancelOrderParams struct {
	ID          uuid.UUID
	CancelledAt time.Time
	CancelledBy uuid.UUID
	Reason      string
}

// HistoryParams appends a maintenance history row.
type HistoryParams struct {
	OrderID     uuid.UUID
	EquipmentID uuid.UUID
	Action      string
	Notes       *string
	PerformedBy uuid.UUID
}

// Repository defines persistence operations for maintenance orders.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Order, error)
	List(ctx context.Context, params ListOrdersParams) ([]Order, int, error)
	ListByScheduleRange(ctx context.Context, from, to time.Time) ([]Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SaveExecution(ctx context.Context, id uuid.UUID, state ExecutionState) error
	// Complete finalizes the order unless it is already terminal. Returns
	// false when another caller finalized it first.
	Complete(ctx context.Context, params CompleteOrderParams) (bool, error)
	// Cancel marks the order cancelled unless it is already terminal.
	Cancel(ctx context.Context, params CancelOrderParams) (bool, error)
	AddHistory(ctx context.Context, params HistoryParams) error
}
