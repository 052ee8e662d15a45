// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"cmms_backend/platform/events"
	"cmms_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Maintenance Domain Events
// =============================================================================

// OrderGenerated is published when a preventive order is materialized from a plan.
type OrderGenerated struct {
	BaseEvent
	OrderID       uuid.UUID `json:"orderId"`
	PlanID        uuid.UUID `json:"planId"`
	EquipmentID   uuid.UUID `json:"equipmentId"`
	ScheduledDate string    `json:"scheduledDate"`
}

func (e OrderGenerated) EventName() string { return "maintenance.order.generated" }

// OrderCompleted is published when a preventive order completes successfully.
type OrderCompleted struct {
	BaseEvent
	OrderID          uuid.UUID  `json:"orderId"`
	PlanID           *uuid.UUID `json:"planId,omitempty"`
	EquipmentID      uuid.UUID  `json:"equipmentId"`
	ExecutionTimeMin *int       `json:"executionTimeMin,omitempty"`
	CompletedBy      uuid.UUID  `json:"completedBy"`
}

func (e OrderCompleted) EventName() string { return "maintenance.order.completed" }

// CallCompleted is published when a corrective call completes successfully.
type CallCompleted struct {
	BaseEvent
	CallID           uuid.UUID `json:"callId"`
	EquipmentID      uuid.UUID `json:"equipmentId"`
	ExecutionTimeMin *int      `json:"executionTimeMin,omitempty"`
	CompletedBy      uuid.UUID `json:"completedBy"`
}

func (e CallCompleted) EventName() string { return "maintenance.call.completed" }

// LowStock is published when a reconciliation leaves an item at or below its
// minimum quantity.
type LowStock struct {
	BaseEvent
	ItemID      uuid.UUID       `json:"itemId"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Quantity    decimal.Decimal `json:"quantity"`
	MinQuantity decimal.Decimal `json:"minQuantity"`
}

func (e LowStock) EventName() string { return "inventory.item.low_stock" }
