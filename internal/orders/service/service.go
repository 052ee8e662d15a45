// Package service orchestrates the preventive order lifecycle: start, pause,
// resume, complete and cancel transitions, stock deduction on completion, and
// follow-up order generation for plan-linked orders.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"cmms_backend/internal/events"
	"cmms_backend/internal/orders/repository"
	"cmms_backend/internal/orders/transport"
	"cmms_backend/internal/workorder"
	"cmms_backend/platform/apperr"
	"cmms_backend/platform/logger"
)

// PartsReconciler deducts consumed parts from stock. Satisfied by the
// inventory service, wired in main.
type PartsReconciler interface {
	DeductParts(ctx context.Context, refType string, refID uuid.UUID, partsJSON string, actorID uuid.UUID) error
}

// FollowUpGenerator materializes the next order of a plan after a completion.
// Satisfied by the plans service, wired in main.
type FollowUpGenerator interface {
	GenerateFollowUp(ctx context.Context, planID uuid.UUID, completedAt time.Time) (uuid.UUID, error)
}

// EquipmentRecorder stamps completion markers on equipment rows. Satisfied by
// the equipment service, wired in main.
type EquipmentRecorder interface {
	RecordPreventiveCompletion(ctx context.Context, equipmentID uuid.UUID, completedAt time.Time) error
}

// Service provides business logic for maintenance orders.
type Service struct {
	repo       repository.Repository
	machine    workorder.Machine
	reconciler PartsReconciler
	generator  FollowUpGenerator
	equipment  EquipmentRecorder
	bus        events.Bus
	log        *logger.Logger
	now        func() time.Time
}

// New creates a new orders service.
func New(repo repository.Repository, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		machine: workorder.NewMachine(workorder.OrderVocabulary),
		bus:     bus,
		log:     log,
		now:     time.Now,
	}
}

// SetReconciler wires the stock deduction dependency.
func (s *Service) SetReconciler(r PartsReconciler) { s.reconciler = r }

// SetFollowUpGenerator wires the plan follow-up dependency.
func (s *Service) SetFollowUpGenerator(g FollowUpGenerator) { s.generator = g }

// SetEquipmentRecorder wires the equipment marker dependency.
func (s *Service) SetEquipmentRecorder(e EquipmentRecorder) { s.equipment = e }

// GetByID retrieves an order.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.OrderResponse, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.OrderResponse{}, err
	}
	return toOrderResponse(order), nil
}

// List retrieves orders with filters and pagination.
func (s *Service) List(ctx context.Context, req transport.ListOrdersRequest) (transport.OrderListResponse, error) {
	page := req.Page
	pageSize := req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	from, err := parseOptionalDate(req.From)
	if err != nil {
		return transport.OrderListResponse{}, err
	}
	to, err := parseOptionalDate(req.To)
	if err != nil {
		return transport.OrderListResponse{}, err
	}

	items, total, err := s.repo.List(ctx, repository.ListOrdersParams{
		Status:      req.Status,
		EquipmentID: req.EquipmentID,
		PlanID:      req.PlanID,
		AssignedTo:  req.AssignedTo,
		From:        from,
		To:          to,
		Offset:      (page - 1) * pageSize,
		Limit:       pageSize,
	})
	if err != nil {
		return transport.OrderListResponse{}, err
	}

	responses := make([]transport.OrderResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, toOrderResponse(item))
	}

	return transport.OrderListResponse{
		Items:      responses,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

// Calendar returns orders scheduled inside a date window.
func (s *Service) Calendar(ctx context.Context, fromStr, toStr string) ([]transport.OrderResponse, error) {
	from, err := parseDate(fromStr)
	if err != nil {
		return nil, err
	}
	to, err := parseDate(toStr)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, apperr.Validation("calendar range end precedes start")
	}

	items, err := s.repo.ListByScheduleRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	responses := make([]transport.OrderResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, toOrderResponse(item))
	}
	return responses, nil
}

// Delete removes an order.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("order deleted", "id", id)
	return nil
}

// Start moves a pending order into execution.
func (s *Service) Start(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (transport.OrderResponse, error) {
	return s.transition(ctx, id, actorID, "started", nil, func(e workorder.Execution, now time.Time) (workorder.Execution, error) {
		return s.machine.Start(e, now)
	})
}

// Pause suspends a running order. The reason is optional.
func (s *Service) Pause(ctx context.Context, id uuid.UUID, actorID uuid.UUID, reason *string) (transport.OrderResponse, error) {
	return s.transition(ctx, id, actorID, "paused", reason, func(e workorder.Execution, now time.Time) (workorder.Execution, error) {
		return s.machine.Pause(e, now)
	})
}

// Resume reactivates a paused order.
func (s *Service) Resume(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (transport.OrderResponse, error) {
	return s.transition(ctx, id, actorID, "resumed", nil, func(e workorder.Execution, now time.Time) (workorder.Execution, error) {
		return s.machine.Resume(e, now)
	})
}

func (s *Service) transition(ctx context.Context, id, actorID uuid.UUID, action string, pauseReason *string,
	apply func(workorder.Execution, time.Time) (workorder.Execution, error)) (transport.OrderResponse, error) {

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.OrderResponse{}, err
	}

	next, err := apply(toExecution(order), s.now())
	if err != nil {
		return transport.OrderResponse{}, err
	}

	state := repository.ExecutionState{
		Status:          string(next.Status),
		StartedAt:       next.StartedAt,
		PausedAt:        next.PausedAt,
		PauseReason:     pauseReason,
		TotalPausedTime: next.TotalPausedMin,
		ResumeCount:     next.ResumeCount,
	}
	if err := s.repo.SaveExecution(ctx, id, state); err != nil {
		return transport.OrderResponse{}, err
	}

	s.addHistory(ctx, order, action, pauseReason, actorID)
	s.log.LifecycleEvent("order", id.String(), action, actorID.String())

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.OrderResponse{}, err
	}
	return toOrderResponse(updated), nil
}

// Complete finalizes an order. Consumed parts are deducted from stock first;
// a failed deduction aborts the completion entirely. Plan-linked orders then
// get their next occurrence generated from the completion date.
func (s *Service) Complete(ctx context.Context, id uuid.UUID, actorID uuid.UUID, req transport.CompleteOrderRequest) (transport.OrderResponse, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.OrderResponse{}, err
	}

	now := s.now()
	completion, err := s.machine.Complete(toExecution(order), now)
	if err != nil {
		return transport.OrderResponse{}, err
	}

	partsUsed := normalizedParts(req.PartsUsed)
	if partsUsed != nil {
		if s.reconciler == nil {
			return transport.OrderResponse{}, apperr.Internal("stock deduction unavailable")
		}
		if err := s.reconciler.DeductParts(ctx, "maintenance_order", id, *partsUsed, actorID); err != nil {
			return transport.OrderResponse{}, err
		}
	}

	done, err := s.repo.Complete(ctx, repository.CompleteOrderParams{
		ID:            id,
		CompletedAt:   completion.CompletedAt,
		ExecutionTime: completion.ExecutionTimeMin,
		Observations:  req.Observations,
		PartsUsed:     partsUsed,
	})
	if err != nil {
		return transport.OrderResponse{}, err
	}
	if !done {
		return transport.OrderResponse{}, apperr.State("order already finalized")
	}

	if s.equipment != nil {
		if err := s.equipment.RecordPreventiveCompletion(ctx, order.EquipmentID, now); err != nil {
			s.log.Error("preventive completion marker failed", "equipment_id", order.EquipmentID, "error", err)
		}
	}

	if order.PlanID != nil && order.Type == "preventive" && s.generator != nil {
		if _, err := s.generator.GenerateFollowUp(ctx, *order.PlanID, now); err != nil {
			s.log.Error("follow-up order generation failed", "plan_id", *order.PlanID, "error", err)
		}
	}

	s.addHistory(ctx, order, "completed", req.Observations, actorID)
	s.log.LifecycleEvent("order", id.String(), "completed", actorID.String())

	if s.bus != nil {
		s.bus.Publish(ctx, events.OrderCompleted{
			BaseEvent:        events.NewBaseEvent(),
			OrderID:          id,
			PlanID:           order.PlanID,
			EquipmentID:      order.EquipmentID,
			ExecutionTimeMin: completion.ExecutionTimeMin,
			CompletedBy:      actorID,
		})
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.OrderResponse{}, err
	}
	return toOrderResponse(updated), nil
}

// Cancel abandons an order. The reason is mandatory.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, actorID uuid.UUID, reason string) (transport.OrderResponse, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return transport.OrderResponse{}, apperr.Validation("cancel reason is required")
	}

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.OrderResponse{}, err
	}

	if _, err := s.machine.Cancel(toExecution(order)); err != nil {
		return transport.OrderResponse{}, err
	}

	done, err := s.repo.Cancel(ctx, repository.CancelOrderParams{
		ID:          id,
		CancelledAt: s.now(),
		CancelledBy: actorID,
		Reason:      reason,
	})
	if err != nil {
		return transport.OrderResponse{}, err
	}
	if !done {
		return transport.OrderResponse{}, apperr.State("order already finalized")
	}

	s.addHistory(ctx, order, "cancelled", &reason, actorID)
	s.log.LifecycleEvent("order", id.String(), "cancelled", actorID.String())

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.OrderResponse{}, err
	}
	return toOrderResponse(updated), nil
}

func (s *Service) addHistory(ctx context.Context, order repository.Order, action string, notes *string, actorID uuid.UUID) {
	err := s.repo.AddHistory(ctx, repository.HistoryParams{
		OrderID:     order.ID,
		EquipmentID: order.EquipmentID,
		Action:      action,
		Notes:       notes,
		PerformedBy: actorID,
	})
	if err != nil {
		s.log.Error("order history append failed", "order_id", order.ID, "action", action, "error", err)
	}
}

func toExecution(o repository.Order) workorder.Execution {
	return workorder.Execution{
		Status:         workorder.Status(o.Status),
		StartedAt:      o.StartedAt,
		PausedAt:       o.PausedAt,
		TotalPausedMin: o.TotalPausedTime,
		ResumeCount:    o.ResumeCount,
	}
}

func normalizedParts(parts *string) *string {
	if parts == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*parts)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func toOrderResponse(o repository.Order) transport.OrderResponse {
	return transport.OrderResponse{
		ID:              o.ID,
		PlanID:          o.PlanID,
		EquipmentID:     o.EquipmentID,
		EquipmentName:   o.EquipmentName,
		EquipmentCode:   o.EquipmentCode,
		Type:            o.Type,
		Priority:        o.Priority,
		Description:     o.Description,
		Instructions:    o.Instructions,
		Status:          o.Status,
		AssignedTo:      o.AssignedTo,
		ScheduledDate:   o.ScheduledDate.Format("2006-01-02"),
		StartedAt:       formatTime(o.StartedAt),
		CompletedDate:   formatTime(o.CompletedDate),
		ExecutionTime:   o.ExecutionTime,
		Observations:    o.Observations,
		PartsUsed:       o.PartsUsed,
		PausedAt:        formatTime(o.PausedAt),
		PauseReason:     o.PauseReason,
		TotalPausedTime: o.TotalPausedTime,
		ResumeCount:     o.ResumeCount,
		CancelReason:    o.CancelReason,
		CancelledAt:     formatTime(o.CancelledAt),
		CancelledBy:     o.CancelledBy,
		CreatedBy:       o.CreatedBy,
		CreatedAt:       o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       o.UpdatedAt.Format(time.RFC3339),
	}
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, apperr.Validation("invalid date, expected YYYY-MM-DD")
	}
	return t, nil
}

func parseOptionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := parseDate(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
