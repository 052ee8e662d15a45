package transport

import "github.com/google/uuid"

type CreatePlanRequest struct {
	Name              string     `json:"name" validate:"required,min=1,max=200"`
	EquipmentID       uuid.UUID  `json:"equipmentId" validate:"required"`
	FrequencyType     string     `json:"frequencyType" validate:"required,oneof=days weeks months hours cycles"`
	FrequencyValue    int        `json:"frequencyValue" validate:"required,min=1"`
	StartDate         string     `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate           *string    `json:"endDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Instructions      *string    `json:"instructions,omitempty" validate:"omitempty,max=5000"`
	EstimatedDuration *int       `json:"estimatedDuration,omitempty" validate:"omitempty,min=1"`
	ToolsRequired     *string    `json:"toolsRequired,omitempty" validate:"omitempty,max=2000"`
	MaterialsRequired *string    `json:"materialsRequired,omitempty" validate:"omitempty,max=2000"`
	SafetyProcedures  *string    `json:"safetyProcedures,omitempty" validate:"omitempty,max=5000"`
	ManualReference   *string    `json:"manualReference,omitempty" validate:"omitempty,max=500"`
	AssignedTo        *uuid.UUID `json:"assignedTo,omitempty"`
}

type UpdatePlanRequest struct {
	Name              *string    `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	FrequencyType     *string    `json:"frequencyType,omitempty" validate:"omitempty,oneof=days weeks months hours cycles"`
	FrequencyValue    *int       `json:"frequencyValue,omitempty" validate:"omitempty,min=1"`
	StartDate         *string    `json:"startDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate           *string    `json:"endDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Instructions      *string    `json:"instructions,omitempty" validate:"omitempty,max=5000"`
	EstimatedDuration *int       `json:"estimatedDuration,omitempty" validate:"omitempty,min=1"`
	ToolsRequired     *string    `json:"toolsRequired,omitempty" validate:"omitempty,max=2000"`
	MaterialsRequired *string    `json:"materialsRequired,omitempty" validate:"omitempty,max=2000"`
	SafetyProcedures  *string    `json:"safetyProcedures,omitempty" validate:"omitempty,max=5000"`
	ManualReference   *string    `json:"manualReference,omitempty" validate:"omitempty,max=500"`
	AssignedTo        *uuid.UUID `json:"assignedTo,omitempty"`
}

type ListPlansRequest struct {
	Search      string     `form:"search" validate:"max=100"`
	EquipmentID *uuid.UUID `form:"equipmentId"`
	ActiveOnly  bool       `form:"activeOnly"`
	Page        int        `form:"page" validate:"omitempty,min=1"`
	PageSize    int        `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type PlanResponse struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	EquipmentID       uuid.UUID  `json:"equipmentId"`
	FrequencyType     string     `json:"frequencyType"`
	FrequencyValue    int        `json:"frequencyValue"`
	StartDate         string     `json:"startDate"`
	EndDate           *string    `json:"endDate,omitempty"`
	Instructions      *string    `json:"instructions,omitempty"`
	EstimatedDuration *int       `json:"estimatedDuration,omitempty"`
	ToolsRequired     *string    `json:"toolsRequired,omitempty"`
	MaterialsRequired *string    `json:"materialsRequired,omitempty"`
	SafetyProcedures  *string    `json:"safetyProcedures,omitempty"`
	ManualReference   *string    `json:"manualReference,omitempty"`
	AssignedTo        *uuid.UUID `json:"assignedTo,omitempty"`
	IsActive          bool       `json:"isActive"`
	CreatedBy         uuid.UUID  `json:"createdBy"`
	CreatedAt         string     `json:"createdAt"`
	UpdatedAt         string     `json:"updatedAt"`
}

type PlanListResponse struct {
	Items      []PlanResponse `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

type GenerateOrderResponse struct {
	OrderID uuid.UUID `json:"orderId"`
}

type GenerateDueResponse struct {
	Generated int `json:"generated"`
}

type ToggleResponse struct {
	IsActive bool `json:"isActive"`
}
