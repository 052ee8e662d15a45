package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Call represents a corrective maintenance call.
type Call struct {
	ID              uuid.UUID  `db:"id"`
	EquipmentID     uuid.UUID  `db:"equipment_id"`
	Type            string     `db:"type"`
	Priority        string     `db:"priority"`
	ProblemType     *string    `db:"problem_type"`
	Description     string     `db:"description"`
	OccurrenceDate  *time.Time `db:"occurrence_date"`
	Status          string     `db:"status"`
	AssignedTo      *uuid.UUID `db:"assigned_to"`
	AssignedAt      *time.Time `db:"assigned_at"`
	StartedAt       *time.Time `db:"started_at"`
	CompletedAt     *time.Time `db:"completed_at"`
	ExecutionTime   *int       `db:"execution_time"`
	ExecutionNotes  *string    `db:"execution_notes"`
	PartsUsed       *string    `db:"parts_used"`
	PausedAt        *time.Time `db:"paused_at"`
	PauseReason     *string    `db:"pause_reason"`
	TotalPausedTime int        `db:"total_paused_time"`
	ResumeCount     int        `db:"resume_count"`
	CancelReason    *string    `db:"cancel_reason"`
	CancelledAt     *time.Time `db:"cancelled_at"`
	CancelledBy     *uuid.UUID `db:"cancelled_by"`
	CreatedBy       uuid.UUID  `db:"created_by"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`

	// joined display fields
	EquipmentName string `db:"equipment_name"`
	EquipmentCode string `db:"equipment_code"`
}

// CreateCallParams contains data for opening a call.
type CreateCallParams struct {
	EquipmentID    uuid.UUID
	Type           string
	Priority       string
	ProblemType    *string
	Description    string
	OccurrenceDate time.Time
	CreatedBy      uuid.UUID
}

// UpdateCallParams contains data for a partial call update.
type UpdateCallParams struct {
	ID             uuid.UUID
	Priority       *string
	ProblemType    *string
	Description    *string
	Status         *string
	ExecutionNotes *string
	PartsUsed      *string
}

// AssignCallParams assigns a technician to a call.
type AssignCallParams struct {
	ID         uuid.UUID
	AssignedTo uuid.UUID
	AssignedAt time.Time
}

// Visibility restricts listing to what the caller may see. Technicians see
// calls assigned to or created by them; requesters only their own.
type Visibility struct {
	UserID       uuid.UUID
	AssignedOnly bool
	CreatedOnly  bool
}

// ListCallsParams defines filters for listing calls.
type ListCallsParams struct {
	Search      string
	Status      string
	Priority    string
	EquipmentID *uuid.UUID
	Visibility  *Visibility
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

// CompleteCallParams finalizes a call.
type CompleteCallParams struct {
	ID             uuid.UUID
	CompletedAt    time.Time
	ExecutionTime  *int
	ExecutionNotes *string
	PartsUsed      *string
}

// CancelCallParams cancels a call.
type CancelCallParams struct {
	ID          uuid.UUID
	CancelledAt time.Time
	CancelledBy uuid.UUID
	Reason      string
}

// HistoryParams appends a call history row.
type HistoryParams struct {
	CallID      uuid.UUID
	Action      string
	OldValue    *string
	NewValue    *string
	Notes       *string
	PerformedBy uuid.UUID
}

// HistoryEntry is an audit row for a call.
type HistoryEntry struct {
	ID          uuid.UUID  `db:"id"`
	CallID      uuid.UUID  `db:"call_id"`
	Action      string     `db:"action"`
	OldValue    *string    `db:"old_value"`
	NewValue    *string    `db:"new_value"`
	Notes       *string    `db:"notes"`
	PerformedBy *uuid.UUID `db:"performed_by"`
	CreatedAt   time.Time  `db:"created_at"`
}

// Repository defines persistence operations for maintenance calls.
type Repository interface {
	Create(ctx context.Context, params CreateCallParams) (Call, error)
	Update(ctx context.Context, params UpdateCallParams) (Call, error)
	Assign(ctx context.Context, params AssignCallParams) (Call, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (Call, error)
	List(ctx context.Context, params ListCallsParams) ([]Call, int, error)
	SaveExecution(ctx context.Context, id uuid.UUID, state ExecutionState) error
	Complete(ctx context.Context, params CompleteCallParams) (bool, error)
	Cancel(ctx context.Context, params CancelCallParams) (bool, error)
	AddHistory(ctx context.Context, params HistoryParams) error
	ListHistory(ctx context.Context, callID uuid.UUID) ([]HistoryEntry, error)
}
