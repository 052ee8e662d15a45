package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"cmms_backend/internal/orders/repository"
	"cmms_backend/internal/orders/transport"
	"cmms_backend/platform/apperr"
	"cmms_backend/platform/logger"
)

var t0 = time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

type fakeRepo struct {
	order     repository.Order
	history   []repository.HistoryParams
	completed *repository.CompleteOrderParams
	cancelled *repository.CancelOrderParams
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Order, error) {
	if id != r.order.ID {
		return repository.Order{}, apperr.NotFound("maintenance order not found")
	}
	return r.order, nil
}

func (r *fakeRepo) List(context.Context, repository.ListOrdersParams) ([]repository.Order, int, error) {
	panic("not used")
}

func (r *fakeRepo) ListByScheduleRange(context.Context, time.Time, time.Time) ([]repository.Order, error) {
	panic("not used")
}

func (r *fakeRepo) Delete(context.Context, uuid.UUID) error { panic("not used") }

func (r *fakeRepo) SaveExecution(_ context.Context, id uuid.UUID, state repository.ExecutionState) error {
	r.order.Status = state.Status
	r.order.StartedAt = state.StartedAt
	r.order.PausedAt = state.PausedAt
	r.order.PauseReason = state.PauseReason
	r.order.TotalPausedTime = state.TotalPausedTime
	r.order.ResumeCount = state.ResumeCount
	return nil
}

func (r *fakeRepo) Complete(_ context.Context, params repository.CompleteOrderParams) (bool, error) {
	if r.order.Status == "completed" || r.order.Status == "cancelled" {
		return false, nil
	}
	r.completed = &params
	r.order.Status = "completed"
	r.order.CompletedDate = &params.CompletedAt
	r.order.ExecutionTime = params.ExecutionTime
	r.order.PausedAt = nil
	return true, nil
}

func (r *fakeRepo) Cancel(_ context.Context, params repository.CancelOrderParams) (bool, error) {
	if r.order.Status == "completed" || r.order.Status == "cancelled" {
		return false, nil
	}
	r.cancelled = &params
	r.order.Status = "cancelled"
	return true, nil
}

func (r *fakeRepo) AddHistory(_ context.Context, params repository.HistoryParams) error {
	r.history = append(r.history, params)
	return nil
}

type fakeReconciler struct {
	err   error
	calls int
}

func (f *fakeReconciler) DeductParts(context.Context, string, uuid.UUID, string, uuid.UUID) error {
	f.calls++
	return f.err
}

type fakeGenerator struct {
	planID      uuid.UUID
	completedAt time.Time
	calls       int
}

func (f *fakeGenerator) GenerateFollowUp(_ context.Context, planID uuid.UUID, completedAt time.Time) (uuid.UUID, error) {
	f.calls++
	f.planID = planID
	f.completedAt = completedAt
	return uuid.New(), nil
}

type fakeRecorder struct {
	equipmentID uuid.UUID
	calls       int
}

func (f *fakeRecorder) RecordPreventiveCompletion(_ context.Context, equipmentID uuid.UUID, _ time.Time) error {
	f.calls++
	f.equipmentID = equipmentID
	return nil
}

func pendingOrder() repository.Order {
	planID := uuid.New()
	return repository.Order{
		ID:            uuid.New(),
		PlanID:        &planID,
		EquipmentID:   uuid.New(),
		Type:          "preventive",
		Priority:      "medium",
		Status:        "pending",
		ScheduledDate: t0,
		CreatedAt:     t0,
		UpdatedAt:     t0,
	}
}

func newTestService(repo *fakeRepo, now time.Time) (*Service, *fakeReconciler, *fakeGenerator, *fakeRecorder) {
	svc := New(repo, nil, logger.New("development"))
	rec := &fakeReconciler{}
	gen := &fakeGenerator{}
	eq := &fakeRecorder{}
	svc.SetReconciler(rec)
	svc.SetFollowUpGenerator(gen)
	svc.SetEquipmentRecorder(eq)
	svc.now = func() time.Time { return now }
	return svc, rec, gen, eq
}

func TestStartPersistsExecution(t *testing.T) {
	repo := &fakeRepo{order: pendingOrder()}
	svc, _, _, _ := newTestService(repo, t0)
	actor := uuid.New()

	resp, err := svc.Start(context.Background(), repo.order.ID, actor)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if resp.Status != "in_progress" {
		t.Fatalf("status = %s, want in_progress", resp.Status)
	}
	if repo.order.StartedAt == nil || !repo.order.StartedAt.Equal(t0) {
		t.Fatalf("startedAt = %v, want %v", repo.order.StartedAt, t0)
	}
	if len(repo.history) != 1 || repo.history[0].Action != "started" {
		t.Fatalf("history = %+v, want one started row", repo.history)
	}
}

func TestStartRejectsRunningOrder(t *testing.T) {
	order := pendingOrder()
	order.Status = "in_progress"
	repo := &fakeRepo{order: order}
	svc, _, _, _ := newTestService(repo, t0)

	_, err := svc.Start(context.Background(), order.ID, uuid.New())
	if apperr.GetKind(err) != apperr.KindState {
		t.Fatalf("kind = %v, want KindState", apperr.GetKind(err))
	}
}

func TestPauseResumeAccounting(t *testing.T) {
	order := pendingOrder()
	repo := &fakeRepo{order: order}
	svc, _, _, _ := newTestService(repo, t0)
	actor := uuid.New()

	if _, err := svc.Start(context.Background(), order.ID, actor); err != nil {
		t.Fatalf("Start: %v", err)
	}

	svc.now = func() time.Time { return t0.Add(10 * time.Minute) }
	reason := "waiting for parts"
	if _, err := svc.Pause(context.Background(), order.ID, actor, &reason); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if repo.order.PauseReason == nil || *repo.order.PauseReason != reason {
		t.Fatalf("pauseReason = %v, want %q", repo.order.PauseReason, reason)
	}

	svc.now = func() time.Time { return t0.Add(25 * time.Minute) }
	resp, err := svc.Resume(context.Background(), order.ID, actor)
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if resp.TotalPausedTime != 15 {
		t.Fatalf("totalPausedTime = %d, want 15", resp.TotalPausedTime)
	}
	if resp.ResumeCount != 1 {
		t.Fatalf("resumeCount = %d, want 1", resp.ResumeCount)
	}
	if repo.order.PauseReason != nil {
		t.Fatalf("pauseReason = %q, want cleared on resume", *repo.order.PauseReason)
	}
}

func TestCompleteOrchestration(t *testing.T) {
	order := pendingOrder()
	repo := &fakeRepo{order: order}
	svc, rec, gen, eq := newTestService(repo, t0)
	actor := uuid.New()

	if _, err := svc.Start(context.Background(), order.ID, actor); err != nil {
		t.Fatalf("Start: %v", err)
	}

	completedAt := t0.Add(45 * time.Minute)
	svc.now = func() time.Time { return completedAt }
	parts := `[{"code":"BRG-01","quantity":2}]`
	resp, err := svc.Complete(context.Background(), order.ID, actor, transport.CompleteOrderRequest{PartsUsed: &parts})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if resp.Status != "completed" {
		t.Fatalf("status = %s, want completed", resp.Status)
	}
	if repo.completed == nil || repo.completed.ExecutionTime == nil || *repo.completed.ExecutionTime != 45 {
		t.Fatalf("executionTime = %+v, want 45", repo.completed)
	}
	if rec.calls != 1 {
		t.Fatalf("reconciler calls = %d, want 1", rec.calls)
	}
	if gen.calls != 1 || gen.planID != *order.PlanID {
		t.Fatalf("generator calls = %d planID = %v, want 1 call for %v", gen.calls, gen.planID, *order.PlanID)
	}
	if !gen.completedAt.Equal(completedAt) {
		t.Fatalf("follow-up base = %v, want %v", gen.completedAt, completedAt)
	}
	if eq.calls != 1 || eq.equipmentID != order.EquipmentID {
		t.Fatalf("equipment marker calls = %d, want 1 for %v", eq.calls, order.EquipmentID)
	}
}

func TestCompleteAbortsOnStockFailure(t *testing.T) {
	order := pendingOrder()
	repo := &fakeRepo{order: order}
	svc, rec, gen, _ := newTestService(repo, t0)
	rec.err = apperr.Stock("insufficient stock for Bearing 6204")

	parts := `[{"code":"BRG-01","quantity":99}]`
	_, err := svc.Complete(context.Background(), order.ID, uuid.New(), transport.CompleteOrderRequest{PartsUsed: &parts})
	if apperr.GetKind(err) != apperr.KindStock {
		t.Fatalf("kind = %v, want KindStock", apperr.GetKind(err))
	}
	if repo.completed != nil {
		t.Fatalf("order must not complete when stock deduction fails")
	}
	if repo.order.Status != "pending" {
		t.Fatalf("status = %s, want pending", repo.order.Status)
	}
	if gen.calls != 0 {
		t.Fatalf("no follow-up may be generated on a failed completion")
	}
}

func TestCompleteWithoutPartsSkipsReconciler(t *testing.T) {
	order := pendingOrder()
	repo := &fakeRepo{order: order}
	svc, rec, _, _ := newTestService(repo, t0)

	if _, err := svc.Complete(context.Background(), order.ID, uuid.New(), transport.CompleteOrderRequest{}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if rec.calls != 0 {
		t.Fatalf("reconciler calls = %d, want 0", rec.calls)
	}
	// never started, so no execution time is recorded
	if repo.completed.ExecutionTime != nil {
		t.Fatalf("executionTime = %v, want nil", repo.completed.ExecutionTime)
	}
}

func TestCompleteAlreadyFinalized(t *testing.T) {
	order := pendingOrder()
	order.Status = "completed"
	repo := &fakeRepo{order: order}
	svc, _, _, _ := newTestService(repo, t0)

	_, err := svc.Complete(context.Background(), order.ID, uuid.New(), transport.CompleteOrderRequest{})
	if apperr.GetKind(err) != apperr.KindState {
		t.Fatalf("kind = %v, want KindState", apperr.GetKind(err))
	}
}

func TestCancelRequiresReason(t *testing.T) {
	order := pendingOrder()
	repo := &fakeRepo{order: order}
	svc, _, _, _ := newTestService(repo, t0)

	_, err := svc.Cancel(context.Background(), order.ID, uuid.New(), "   ")
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("kind = %v, want KindValidation", apperr.GetKind(err))
	}
	if repo.cancelled != nil {
		t.Fatalf("order must not cancel without a reason")
	}
}

func TestCancelRecordsActorAndReason(t *testing.T) {
	order := pendingOrder()
	repo := &fakeRepo{order: order}
	svc, _, _, _ := newTestService(repo, t0)
	actor := uuid.New()

	resp, err := svc.Cancel(context.Background(), order.ID, actor, "equipment replaced")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if resp.Status != "cancelled" {
		t.Fatalf("status = %s, want cancelled", resp.Status)
	}
	if repo.cancelled.CancelledBy != actor {
		t.Fatalf("cancelledBy = %v, want %v", repo.cancelled.CancelledBy, actor)
	}
	if repo.cancelled.Reason != "equipment replaced" {
		t.Fatalf("reason = %q", repo.cancelled.Reason)
	}
}
