package transport

import "github.com/google/uuid"

type ListOrdersRequest struct {
	Status      string     `form:"status" validate:"omitempty,oneof=pending in_progress paused completed cancelled"`
	EquipmentID *uuid.UUID `form:"equipmentId"`
	PlanID      *uuid.UUID `form:"planId"`
	AssignedTo  *uuid.UUID `form:"assignedTo"`
	From        string     `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To          string     `form:"to" validate:"omitempty,datetime=2006-01-02"`
	Page        int        `form:"page" validate:"omitempty,min=1"`
	PageSize    int        `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type CalendarRequest struct {
	From string `form:"from" validate:"required,datetime=2006-01-02"`
	To   string `form:"to" validate:"required,datetime=2006-01-02"`
}

type PauseOrderRequest struct {
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

type CompleteOrderRequest struct {
	Observations *string `json:"observations,omitempty" validate:"omitempty,max=5000"`
	// PartsUsed is a JSON array of {code|name, quantity} consumption lines.
	PartsUsed *string `json:"partsUsed,omitempty" validate:"omitempty,max=10000"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason" validate:"required,min=1,max=500"`
}

type OrderResponse struct {
	ID              uuid.UUID  `json:"id"`
	PlanID          *uuid.UUID `json:"planId,omitempty"`
	EquipmentID     uuid.UUID  `json:"equipmentId"`
	EquipmentName   string     `json:"equipmentName"`
	EquipmentCode   string     `json:"equipmentCode"`
	Type            string     `json:"type"`
	Priority        string     `json:"priority"`
	Description     *string    `json:"description,omitempty"`
	Instructions    *string    `json:"instructions,omitempty"`
	Status          string     `json:"status"`
	AssignedTo      *uuid.UUID `json:"assignedTo,omitempty"`
	ScheduledDate   string     `json:"scheduledDate"`
	StartedAt       *string    `json:"startedAt,omitempty"`
	CompletedDate   *string    `json:"completedDate,omitempty"`
	ExecutionTime   *int       `json:"executionTime,omitempty"`
	Observations    *string    `json:"observations,omitempty"`
	PartsUsed       *string    `json:"partsUsed,omitempty"`
	PausedAt        *string    `json:"pausedAt,omitempty"`
	PauseReason     *string    `json:"pauseReason,omitempty"`
	TotalPausedTime int        `json:"totalPausedTime"`
	ResumeCount     int        `json:"resumeCount"`
	CancelReason    *string    `json:"cancelReason,omitempty"`
	CancelledAt     *string    `json:"cancelledAt,omitempty"`
	CancelledBy     *uuid.UUID `json:"cancelledBy,omitempty"`
	CreatedBy       *uuid.UUID `json:"createdBy,omitempty"`
	CreatedAt       string     `json:"createdAt"`
	UpdatedAt       string     `json:"updatedAt"`
}

type OrderListResponse struct {
	Items      []OrderResponse `json:"items"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
}
