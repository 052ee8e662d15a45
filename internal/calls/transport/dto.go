package transport

import "github.com/google/uuid"

type ListCallsRequest struct {
	Search      string     `form:"search" validate:"omitempty,max=200"`
	Status      string     `form:"status" validate:"omitempty,oneof=open analysis assigned execution waiting_parts paused completed cancelled"`
	Priority    string     `form:"priority" validate:"omitempty,oneof=low medium high critical"`
	EquipmentID *uuid.UUID `form:"equipmentId"`
	Page        int        `form:"page" validate:"omitempty,min=1"`
	PageSize    int        `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type CreateCallRequest struct {
	EquipmentID    uuid.UUID `json:"equipmentId" validate:"required"`
	Type           string    `json:"type" validate:"omitempty,oneof=corrective predictive inspection"`
	Priority       string    `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	ProblemType    *string   `json:"problemType,omitempty" validate:"omitempty,max=100"`
	Description    string    `json:"description" validate:"required,min=1,max=5000"`
	OccurrenceDate string    `json:"occurrenceDate" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

type UpdateCallRequest struct {
	Priority       *string `json:"priority,omitempty" validate:"omitempty,oneof=low medium high critical"`
	ProblemType    *string `json:"problemType,omitempty" validate:"omitempty,max=100"`
	Description    *string `json:"description,omitempty" validate:"omitempty,min=1,max=5000"`
	Status         *string `json:"status,omitempty" validate:"omitempty,oneof=open analysis waiting_parts"`
	ExecutionNotes *string `json:"executionNotes,omitempty" validate:"omitempty,max=5000"`
	// PartsUsed is a JSON array of {code|name, quantity} consumption lines.
	PartsUsed *string `json:"partsUsed,omitempty" validate:"omitempty,max=10000"`
}

type AssignCallRequest struct {
	AssignedTo uuid.UUID `json:"assignedTo" validate:"required"`
}

type PauseCallRequest struct {
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

type CompleteCallRequest struct {
	ExecutionNotes *string `json:"executionNotes,omitempty" validate:"omitempty,max=5000"`
	// PartsUsed overrides the consumption recorded on the call; when absent the
	// stored parts are deducted instead.
	PartsUsed *string `json:"partsUsed,omitempty" validate:"omitempty,max=10000"`
}

type CancelCallRequest struct {
	Reason string `json:"reason" validate:"required,min=1,max=500"`
}

type CallResponse struct {
	ID              uuid.UUID  `json:"id"`
	EquipmentID     uuid.UUID  `json:"equipmentId"`
	EquipmentName   string     `json:"equipmentName"`
	EquipmentCode   string     `json:"equipmentCode"`
	Type            string     `json:"type"`
	Priority        string     `json:"priority"`
	ProblemType     *string    `json:"problemType,omitempty"`
	Description     string     `json:"description"`
	OccurrenceDate  *string    `json:"occurrenceDate,omitempty"`
	Status          string     `json:"status"`
	AssignedTo      *uuid.UUID `json:"assignedTo,omitempty"`
	AssignedAt      *string    `json:"assignedAt,omitempty"`
	StartedAt       *string    `json:"startedAt,omitempty"`
	CompletedAt     *string    `json:"completedAt,omitempty"`
	ExecutionTime   *int       `json:"executionTime,omitempty"`
	ExecutionNotes  *string    `json:"executionNotes,omitempty"`
	PartsUsed       *string    `json:"partsUsed,omitempty"`
	PausedAt        *string    `json:"pausedAt,omitempty"`
	PauseReason     *string    `json:"pauseReason,omitempty"`
	TotalPausedTime int        `json:"totalPausedTime"`
	ResumeCount     int        `json:"resumeCount"`
	CancelReason    *string    `json:"cancelReason,omitempty"`
	CancelledAt     *string    `json:"cancelledAt,omitempty"`
	CancelledBy     *uuid.UUID `json:"cancelledBy,omitempty"`
	CreatedBy       uuid.UUID  `json:"createdBy"`
	CreatedAt       string     `json:"createdAt"`
	UpdatedAt       string     `json:"updatedAt"`
}

type CallListResponse struct {
	Items      []CallResponse `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

type CallHistoryResponse struct {
	ID          uuid.UUID  `json:"id"`
	Action      string     `json:"action"`
	OldValue    *string    `json:"oldValue,omitempty"`
	NewValue    *string    `json:"newValue,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
	PerformedBy *uuid.UUID `json:"performedBy,omitempty"`
	CreatedAt   string     `json:"createdAt"`
}
