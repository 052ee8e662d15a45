// Package service orchestrates the corrective call lifecycle: triage, assignment,
// execution transitions, stock deduction on completion and audit history.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"cmms_backend/internal/calls/repository"
	"cmms_backend/internal/calls/transport"
	"cmms_backend/internal/events"
	"cmms_backend/internal/workorder"
	"cmms_backend/platform/apperr"
	"cmms_backend/platform/logger"
)

// PartsReconciler deducts consumed parts from stock. Satisfied by the
// inventory service, wired in main.
type PartsReconciler interface {
	DeductParts(ctx context.Context, refType string, refID uuid.UUID, partsJSON string, actorID uuid.UUID) error
}

// EquipmentRecorder stamps completion markers on equipment rows. Satisfied by
// the equipment service, wired in main.
type EquipmentRecorder interface {
	RecordCorrectiveCompletion(ctx context.Context, equipmentID uuid.UUID, completedAt time.Time) error
}

// Actor identifies the authenticated user performing an operation together
// with the roles that scope what they may see and do.
type Actor struct {
	ID    uuid.UUID
	Roles []string
}

func (a Actor) hasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (a Actor) isManager() bool    { return a.hasRole("admin") || a.hasRole("manager") }
func (a Actor) isTechnician() bool { return a.hasRole("technician") }

// Service provides business logic for maintenance calls.
type Service struct {
	repo       repository.Repository
	machine    workorder.Machine
	reconciler PartsReconciler
	equipment  EquipmentRecorder
	bus        events.Bus
	log        *logger.Logger
	now        func() time.Time
}

// New creates a new calls service.
func New(repo repository.Repository, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		machine: workorder.NewMachine(workorder.CallVocabulary),
		bus:     bus,
		log:     log,
		now:     time.Now,
	}
}

// SetReconciler wires the stock deduction dependency.
func (s *Service) SetReconciler(r PartsReconciler) { s.reconciler = r }

// SetEquipmentRecorder wires the equipment marker dependency.
func (s *Service) SetEquipmentRecorder(e EquipmentRecorder) { s.equipment = e }

// Create opens a call. Type, priority and occurrence date fall back to
// corrective, medium and now respectively.
func (s *Service) Create(ctx context.Context, actor Actor, req transport.CreateCallRequest) (transport.CallResponse, error) {
	callType := req.Type
	if callType == "" {
		callType = "corrective"
	}
	priority := req.Priority
	if priority == "" {
		priority = "medium"
	}

	occurrence := s.now()
	if req.OccurrenceDate != "" {
		t, err := time.Parse(time.RFC3339, req.OccurrenceDate)
		if err != nil {
			return transport.CallResponse{}, apperr.Validation("invalid occurrence date")
		}
		occurrence = t
	}

	call, err := s.repo.Create(ctx, repository.CreateCallParams{
		EquipmentID:    req.EquipmentID,
		Type:           callType,
		Priority:       priority,
		ProblemType:    req.ProblemType,
		Description:    strings.TrimSpace(req.Description),
		OccurrenceDate: occurrence,
		CreatedBy:      actor.ID,
	})
	if err != nil {
		return transport.CallResponse{}, err
	}

	s.addHistory(ctx, call.ID, "created", nil, nil, nil, actor.ID)
	s.log.Info("call created", "id", call.ID, "equipment_id", call.EquipmentID, "priority", call.Priority)

	return toCallResponse(call), nil
}

// GetByID retrieves a call visible to the actor.
func (s *Service) GetByID(ctx context.Context, actor Actor, id uuid.UUID) (transport.CallResponse, error) {
	call, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.CallResponse{}, err
	}
	if !s.canView(actor, call) {
		return transport.CallResponse{}, apperr.NotFound("maintenance call not found")
	}
	return toCallResponse(call), nil
}

// List retrieves calls restricted to what the actor may see: managers see
// everything, technicians what is assigned to or opened by them, everyone
// else only their own calls.
func (s *Service) List(ctx context.Context, actor Actor, req transport.ListCallsRequest) (transport.CallListResponse, error) {
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

	items, total, err := s.repo.List(ctx, repository.ListCallsParams{
		Search:      req.Search,
		Status:      req.Status,
		Priority:    req.Priority,
		EquipmentID: req.EquipmentID,
		Visibility:  s.visibility(actor),
		Offset:      (page - 1) * pageSize,
		Limit:       pageSize,
	})
	if err != nil {
		return transport.CallListResponse{}, err
	}

	responses := make([]transport.CallResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, toCallResponse(item))
	}

	return transport.CallListResponse{
		Items:      responses,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

// Update applies a partial edit. Only the creator, the assigned technician or
// a manager may edit, and status/priority changes leave an audit trail.
func (s *Service) Update(ctx context.Context, actor Actor, id uuid.UUID, req transport.UpdateCallRequest) (transport.CallResponse, error) {
	call, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.CallResponse{}, err
	}
	if !s.canEdit(actor, call) {
		return transport.CallResponse{}, apperr.Forbidden("not allowed to edit this call")
	}
	if workorder.Status(call.Status).IsTerminal() {
		return transport.CallResponse{}, apperr.State("call already finalized")
	}

	updated, err := s.repo.Update(ctx, repository.UpdateCallParams{
		ID:             id,
		Priority:       req.Priority,
		ProblemType:    req.ProblemType,
		Description:    req.Description,
		Status:         req.Status,
		ExecutionNotes: req.ExecutionNotes,
		PartsUsed:      req.PartsUsed,
	})
	if err != nil {
		return transport.CallResponse{}, err
	}

	if req.Status != nil && *req.Status != call.Status {
		s.addHistory(ctx, id, "status_changed", &call.Status, req.Status, nil, actor.ID)
	}
	if req.Priority != nil && *req.Priority != call.Priority {
		s.addHistory(ctx, id, "priority_changed", &call.Priority, req.Priority, nil, actor.ID)
	}

	return toCallResponse(updated), nil
}

// Assign hands the call to a technician and records who held it before.
func (s *Service) Assign(ctx context.Context, actor Actor, id uuid.UUID, assignedTo uuid.UUID) (transport.CallResponse, error) {
	call, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.CallResponse{}, err
	}
	if workorder.Status(call.Status).IsTerminal() {
		return transport.CallResponse{}, apperr.State("call already finalized")
	}

	updated, err := s.repo.Assign(ctx, repository.AssignCallParams{
		ID:         id,
		AssignedTo: assignedTo,
		AssignedAt: s.now(),
	})
	if err != nil {
		return transport.CallResponse{}, err
	}

	var old *string
	if call.AssignedTo != nil {
		v := call.AssignedTo.String()
		old = &v
	}
	newVal := assignedTo.String()
	s.addHistory(ctx, id, "assigned", old, &newVal, nil, actor.ID)
	s.log.LifecycleEvent("call", id.String(), "assigned", actor.ID.String())

	return toCallResponse(updated), nil
}

// Delete removes a call and its history.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("call deleted", "id", id)
	return nil
}

// Start moves a triaged call into execution.
func (s *Service) Start(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (transport.CallResponse, error) {
	return s.transition(ctx, id, actorID, "started", nil, func(e workorder.Execution, now time.Time) (workorder.Execution, error) {
		return s.machine.Start(e, now)
	})
}

// Pause suspends a call in execution. The reason is optional.
func (s *Service) Pause(ctx context.Context, id uuid.UUID, actorID uuid.UUID, reason *string) (transport.CallResponse, error) {
	return s.transition(ctx, id, actorID, "paused", reason, func(e workorder.Execution, now time.Time) (workorder.Execution, error) {
		return s.machine.Pause(e, now)
	})
}

// Resume reactivates a paused call.
func (s *Service) Resume(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (transport.CallResponse, error) {
	return s.transition(ctx, id, actorID, "resumed", nil, func(e workorder.Execution, now time.Time) (workorder.Execution, error) {
		return s.machine.Resume(e, now)
	})
}

func (s *Service) transition(ctx context.Context, id, actorID uuid.UUID, action string, pauseReason *string,
	apply func(workorder.Execution, time.Time) (workorder.Execution, error)) (transport.CallResponse, error) {

	call, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.CallResponse{}, err
	}

	next, err := apply(toExecution(call), s.now())
	if err != nil {
		return transport.CallResponse{}, err
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
		return transport.CallResponse{}, err
	}

	s.addHistory(ctx, id, action, nil, nil, pauseReason, actorID)
	s.log.LifecycleEvent("call", id.String(), action, actorID.String())

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.CallResponse{}, err
	}
	return toCallResponse(updated), nil
}

// Complete finalizes a call. Parts from the request take precedence over the
// consumption recorded on the call; either way stock is deducted first and a
// failed deduction aborts the completion.
func (s *Service) Complete(ctx context.Context, id uuid.UUID, actorID uuid.UUID, req transport.CompleteCallRequest) (transport.CallResponse, error) {
	call, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.CallResponse{}, err
	}

	now := s.now()
	completion, err := s.machine.Complete(toExecution(call), now)
	if err != nil {
		return transport.CallResponse{}, err
	}

	partsUsed := normalizedParts(req.PartsUsed)
	if partsUsed == nil {
		partsUsed = normalizedParts(call.PartsUsed)
	}
	if partsUsed != nil {
		if s.reconciler == nil {
			return transport.CallResponse{}, apperr.Internal("stock deduction unavailable")
		}
		if err := s.reconciler.DeductParts(ctx, "maintenance_call", id, *partsUsed, actorID); err != nil {
			return transport.CallResponse{}, err
		}
	}

	done, err := s.repo.Complete(ctx, repository.CompleteCallParams{
		ID:             id,
		CompletedAt:    completion.CompletedAt,
		ExecutionTime:  completion.ExecutionTimeMin,
		ExecutionNotes: req.ExecutionNotes,
		PartsUsed:      partsUsed,
	})
	if err != nil {
		return transport.CallResponse{}, err
	}
	if !done {
		return transport.CallResponse{}, apperr.State("call already finalized")
	}

	if s.equipment != nil {
		if err := s.equipment.RecordCorrectiveCompletion(ctx, call.EquipmentID, now); err != nil {
			s.log.Error("corrective completion marker failed", "equipment_id", call.EquipmentID, "error", err)
		}
	}

	s.addHistory(ctx, id, "completed", nil, nil, req.ExecutionNotes, actorID)
	s.log.LifecycleEvent("call", id.String(), "completed", actorID.String())

	if s.bus != nil {
		s.bus.Publish(ctx, events.CallCompleted{
			BaseEvent:        events.NewBaseEvent(),
			CallID:           id,
			EquipmentID:      call.EquipmentID,
			ExecutionTimeMin: completion.ExecutionTimeMin,
			CompletedBy:      actorID,
		})
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.CallResponse{}, err
	}
	return toCallResponse(updated), nil
}

// Cancel abandons a call. The reason is mandatory.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, actorID uuid.UUID, reason string) (transport.CallResponse, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return transport.CallResponse{}, apperr.Validation("cancel reason is required")
	}

	call, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.CallResponse{}, err
	}

	if _, err := s.machine.Cancel(toExecution(call)); err != nil {
		return transport.CallResponse{}, err
	}

	done, err := s.repo.Cancel(ctx, repository.CancelCallParams{
		ID:          id,
		CancelledAt: s.now(),
		CancelledBy: actorID,
		Reason:      reason,
	})
	if err != nil {
		return transport.CallResponse{}, err
	}
	if !done {
		return transport.CallResponse{}, apperr.State("call already finalized")
	}

	s.addHistory(ctx, id, "cancelled", nil, nil, &reason, actorID)
	s.log.LifecycleEvent("call", id.String(), "cancelled", actorID.String())

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.CallResponse{}, err
	}
	return toCallResponse(updated), nil
}

// History returns the audit trail of a call visible to the actor.
func (s *Service) History(ctx context.Context, actor Actor, id uuid.UUID) ([]transport.CallHistoryResponse, error) {
	call, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canView(actor, call) {
		return nil, apperr.NotFound("maintenance call not found")
	}

	entries, err := s.repo.ListHistory(ctx, id)
	if err != nil {
		return nil, err
	}

	responses := make([]transport.CallHistoryResponse, 0, len(entries))
	for _, h := range entries {
		responses = append(responses, transport.CallHistoryResponse{
			ID:          h.ID,
			Action:      h.Action,
			OldValue:    h.OldValue,
			NewValue:    h.NewValue,
			Notes:       h.Notes,
			PerformedBy: h.PerformedBy,
			CreatedAt:   h.CreatedAt.Format(time.RFC3339),
		})
	}
	return responses, nil
}

func (s *Service) visibility(actor Actor) *repository.Visibility {
	switch {
	case actor.isManager():
		return nil
	case actor.isTechnician():
		return &repository.Visibility{UserID: actor.ID, AssignedOnly: true}
	default:
		return &repository.Visibility{UserID: actor.ID, CreatedOnly: true}
	}
}

func (s *Service) canView(actor Actor, call repository.Call) bool {
	if actor.isManager() {
		return true
	}
	if call.CreatedBy == actor.ID {
		return true
	}
	return actor.isTechnician() && call.AssignedTo != nil && *call.AssignedTo == actor.ID
}

func (s *Service) canEdit(actor Actor, call repository.Call) bool {
	return s.canView(actor, call)
}

func (s *Service) addHistory(ctx context.Context, callID uuid.UUID, action string, oldValue, newValue, notes *string, actorID uuid.UUID) {
	err := s.repo.AddHistory(ctx, repository.HistoryParams{
		CallID:      callID,
		Action:      action,
		OldValue:    oldValue,
		NewValue:    newValue,
		Notes:       notes,
		PerformedBy: actorID,
	})
	if err != nil {
		s.log.Error("call history append failed", "call_id", callID, "action", action, "error", err)
	}
}

func toExecution(c repository.Call) workorder.Execution {
	return workorder.Execution{
		Status:         workorder.Status(c.Status),
		StartedAt:      c.StartedAt,
		PausedAt:       c.PausedAt,
		TotalPausedMin: c.TotalPausedTime,
		ResumeCount:    c.ResumeCount,
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

func toCallResponse(c repository.Call) transport.CallResponse {
	return transport.CallResponse{
		ID:              c.ID,
		EquipmentID:     c.EquipmentID,
		EquipmentName:   c.EquipmentName,
		EquipmentCode:   c.EquipmentCode,
		Type:            c.Type,
		Priority:        c.Priority,
		ProblemType:     c.ProblemType,
		Description:     c.Description,
		OccurrenceDate:  formatTime(c.OccurrenceDate),
		Status:          c.Status,
		AssignedTo:      c.AssignedTo,
		AssignedAt:      formatTime(c.AssignedAt),
		StartedAt:       formatTime(c.StartedAt),
		CompletedAt:     formatTime(c.CompletedAt),
		ExecutionTime:   c.ExecutionTime,
		ExecutionNotes:  c.ExecutionNotes,
		PartsUsed:       c.PartsUsed,
		PausedAt:        formatTime(c.PausedAt),
		PauseReason:     c.PauseReason,
		TotalPausedTime: c.TotalPausedTime,
		ResumeCount:     c.ResumeCount,
		CancelReason:    c.CancelReason,
		CancelledAt:     formatTime(c.CancelledAt),
		CancelledBy:     c.CancelledBy,
		CreatedBy:       c.CreatedBy,
		CreatedAt:       c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       c.UpdatedAt.Format(time.RFC3339),
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
