// Package notification consumes maintenance domain events and surfaces them
// as structured log entries for operators.
package notification

import (
	"context"

	"cmms_backend/internal/events"
	"cmms_backend/platform/logger"
)

// Module subscribes to domain events and logs them.
type Module struct {
	log *logger.Logger
}

// New creates the notification module.
func New(log *logger.Logger) *Module {
	return &Module{log: log}
}

// RegisterHandlers subscribes to all relevant domain events on the event bus.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.OrderGenerated{}.EventName(), m)
	bus.Subscribe(events.OrderCompleted{}.EventName(), m)
	bus.Subscribe(events.CallCompleted{}.EventName(), m)
	bus.Subscribe(events.LowStock{}.EventName(), m)
}

// Handle dispatches an event to its handler.
func (m *Module) Handle(_ context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.OrderGenerated:
		m.log.Info("preventive order generated",
			"order_id", e.OrderID, "plan_id", e.PlanID,
			"equipment_id", e.EquipmentID, "scheduled_date", e.ScheduledDate)
	case events.OrderCompleted:
		m.log.Info("maintenance order completed",
			"order_id", e.OrderID, "equipment_id", e.EquipmentID,
			"execution_time_min", derefInt(e.ExecutionTimeMin), "completed_by", e.CompletedBy)
	case events.CallCompleted:
		m.log.Info("maintenance call completed",
			"call_id", e.CallID, "equipment_id", e.EquipmentID,
			"execution_time_min", derefInt(e.ExecutionTimeMin), "completed_by", e.CompletedBy)
	case events.LowStock:
		m.log.Warn("inventory item low on stock",
			"item_id", e.ItemID, "code", e.Code, "name", e.Name,
			"quantity", e.Quantity, "min_quantity", e.MinQuantity)
	}
	return nil
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
