package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"cmms_backend/internal/calls/repository"
	"cmms_backend/internal/calls/transport"
	"cmms_backend/platform/apperr"
	"cmms_backend/platform/logger"
)

var t0 = time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)

type fakeRepo struct {
	call      repository.Call
	history   []repository.HistoryParams
	completed *repository.CompleteCallParams
	cancelled *repository.CancelCallParams
	listed    *repository.ListCallsParams
}

func (r *fakeRepo) Create(_ context.Context, params repository.CreateCallParams) (repository.Call, error) {
	r.call = repository.Call{
		ID:             uuid.New(),
		EquipmentID:    params.EquipmentID,
		Type:           params.Type,
		Priority:       params.Priority,
		ProblemType:    params.ProblemType,
		Description:    params.Description,
		OccurrenceDate: &params.OccurrenceDate,
		Status:         "open",
		CreatedBy:      params.CreatedBy,
		CreatedAt:      t0,
		UpdatedAt:      t0,
	}
	return r.call, nil
}

func (r *fakeRepo) Update(_ context.Context, params repository.UpdateCallParams) (repository.Call, error) {
	if params.Priority != nil {
		r.call.Priority = *params.Priority
	}
	if params.Status != nil {
		r.call.Status = *params.Status
	}
	if params.Description != nil {
		r.call.Description = *params.Description
	}
	return r.call, nil
}

func (r *fakeRepo) Assign(_ context.Context, params repository.AssignCallParams) (repository.Call, error) {
	r.call.AssignedTo = &params.AssignedTo
	r.call.AssignedAt = &params.AssignedAt
	if r.call.Status == "open" || r.call.Status == "analysis" {
		r.call.Status = "assigned"
	}
	return r.call, nil
}

func (r *fakeRepo) Delete(context.Context, uuid.UUID) error { panic("not used") }

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Call, error) {
	if id != r.call.ID {
		return repository.Call{}, apperr.NotFound("maintenance call not found")
	}
	return r.call, nil
}

func (r *fakeRepo) List(_ context.Context, params repository.ListCallsParams) ([]repository.Call, int, error) {
	r.listed = &params
	return []repository.Call{r.call}, 1, nil
}

func (r *fakeRepo) SaveExecution(_ context.Context, id uuid.UUID, state repository.ExecutionState) error {
	r.call.Status = state.Status
	r.call.StartedAt = state.StartedAt
	r.call.PausedAt = state.PausedAt
	r.call.PauseReason = state.PauseReason
	r.call.TotalPausedTime = state.TotalPausedTime
	r.call.ResumeCount = state.ResumeCount
	return nil
}

func (r *fakeRepo) Complete(_ context.Context, params repository.CompleteCallParams) (bool, error) {
	if r.call.Status == "completed" || r.call.Status == "cancelled" {
		return false, nil
	}
	r.completed = &params
	r.call.Status = "completed"
	r.call.CompletedAt = &params.CompletedAt
	r.call.ExecutionTime = params.ExecutionTime
	r.call.PausedAt = nil
	return true, nil
}

func (r *fakeRepo) Cancel(_ context.Context, params repository.CancelCallParams) (bool, error) {
	if r.call.Status == "completed" || r.call.Status == "cancelled" {
		return false, nil
	}
	r.cancelled = &params
	r.call.Status = "cancelled"
	return true, nil
}

func (r *fakeRepo) AddHistory(_ context.Context, params repository.HistoryParams) error {
	r.history = append(r.history, params)
	return nil
}

func (r *fakeRepo) ListHistory(context.Context, uuid.UUID) ([]repository.HistoryEntry, error) {
	panic("not used")
}

type fakeReconciler struct {
	err     error
	calls   int
	refType string
	parts   string
}

func (f *fakeReconciler) DeductParts(_ context.Context, refType string, _ uuid.UUID, partsJSON string, _ uuid.UUID) error {
	f.calls++
	f.refType = refType
	f.parts = partsJSON
	return f.err
}

type fakeRecorder struct {
	equipmentID uuid.UUID
	calls       int
}

func (f *fakeRecorder) RecordCorrectiveCompletion(_ context.Context, equipmentID uuid.UUID, _ time.Time) error {
	f.calls++
	f.equipmentID = equipmentID
	return nil
}

func openCall() repository.Call {
	return repository.Call{
		ID:          uuid.New(),
		EquipmentID: uuid.New(),
		Type:        "corrective",
		Priority:    "high",
		Description: "pump leaking oil",
		Status:      "open",
		CreatedBy:   uuid.New(),
		CreatedAt:   t0,
		UpdatedAt:   t0,
	}
}

func newTestService(repo *fakeRepo, now time.Time) (*Service, *fakeReconciler, *fakeRecorder) {
	svc := New(repo, nil, logger.New("development"))
	rec := &fakeReconciler{}
	eq := &fakeRecorder{}
	svc.SetReconciler(rec)
	svc.SetEquipmentRecorder(eq)
	svc.now = func() time.Time { return now }
	return svc, rec, eq
}

func manager() Actor    { return Actor{ID: uuid.New(), Roles: []string{"manager"}} }
func technician() Actor { return Actor{ID: uuid.New(), Roles: []string{"technician"}} }
func requester() Actor  { return Actor{ID: uuid.New(), Roles: []string{"requester"}} }

func TestCreateDefaultsAndHistory(t *testing.T) {
	repo := &fakeRepo{}
	svc, _, _ := newTestService(repo, t0)
	act := requester()

	resp, err := svc.Create(context.Background(), act, transport.CreateCallRequest{
		EquipmentID: uuid.New(),
		Description: "  conveyor belt stuck  ",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if resp.Type != "corrective" || resp.Priority != "medium" {
		t.Fatalf("defaults = %s/%s, want corrective/medium", resp.Type, resp.Priority)
	}
	if resp.Description != "conveyor belt stuck" {
		t.Fatalf("description = %q, want trimmed", resp.Description)
	}
	if repo.call.OccurrenceDate == nil || !repo.call.OccurrenceDate.Equal(t0) {
		t.Fatalf("occurrenceDate = %v, want %v", repo.call.OccurrenceDate, t0)
	}
	if len(repo.history) != 1 || repo.history[0].Action != "created" {
		t.Fatalf("history = %+v, want one created row", repo.history)
	}
}

func TestListVisibilityByRole(t *testing.T) {
	tests := []struct {
		name         string
		actor        Actor
		wantNil      bool
		wantAssigned bool
		wantCreated  bool
	}{
		{"manager sees everything", manager(), true, false, false},
		{"technician sees assigned or own", technician(), false, true, false},
		{"requester sees own", requester(), false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{call: openCall()}
			svc, _, _ := newTestService(repo, t0)

			if _, err := svc.List(context.Background(), tt.actor, transport.ListCallsRequest{}); err != nil {
				t.Fatalf("List: %v", err)
			}
			v := repo.listed.Visibility
			if tt.wantNil {
				if v != nil {
					t.Fatalf("visibility = %+v, want nil", v)
				}
				return
			}
			if v == nil {
				t.Fatal("visibility = nil, want restriction")
			}
			if v.AssignedOnly != tt.wantAssigned || v.CreatedOnly != tt.wantCreated {
				t.Fatalf("visibility = %+v, want assigned=%v created=%v", v, tt.wantAssigned, tt.wantCreated)
			}
			if v.UserID != tt.actor.ID {
				t.Fatalf("visibility user = %v, want %v", v.UserID, tt.actor.ID)
			}
		})
	}
}

func TestGetByIDHidesForeignCall(t *testing.T) {
	repo := &fakeRepo{call: openCall()}
	svc, _, _ := newTestService(repo, t0)

	_, err := svc.GetByID(context.Background(), requester(), repo.call.ID)
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("kind = %v, want KindNotFound", apperr.GetKind(err))
	}

	creator := Actor{ID: repo.call.CreatedBy, Roles: []string{"requester"}}
	if _, err := svc.GetByID(context.Background(), creator, repo.call.ID); err != nil {
		t.Fatalf("GetByID as creator: %v", err)
	}
}

func TestUpdateForbiddenForOutsider(t *testing.T) {
	repo := &fakeRepo{call: openCall()}
	svc, _, _ := newTestService(repo, t0)

	status := "analysis"
	_, err := svc.Update(context.Background(), requester(), repo.call.ID, transport.UpdateCallRequest{Status: &status})
	if apperr.GetKind(err) != apperr.KindForbidden {
		t.Fatalf("kind = %v, want KindForbidden", apperr.GetKind(err))
	}
}

func TestUpdateTracksStatusAndPriorityChanges(t *testing.T) {
	repo := &fakeRepo{call: openCall()}
	svc, _, _ := newTestService(repo, t0)

	status := "analysis"
	priority := "critical"
	_, err := svc.Update(context.Background(), manager(), repo.call.ID, transport.UpdateCallRequest{
		Status:   &status,
		Priority: &priority,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(repo.history) != 2 {
		t.Fatalf("history rows = %d, want 2", len(repo.history))
	}
	if repo.history[0].Action != "status_changed" || *repo.history[0].OldValue != "open" || *repo.history[0].NewValue != "analysis" {
		t.Fatalf("status history = %+v", repo.history[0])
	}
	if repo.history[1].Action != "priority_changed" || *repo.history[1].OldValue != "high" || *repo.history[1].NewValue != "critical" {
		t.Fatalf("priority history = %+v", repo.history[1])
	}
}

func TestAssignRecordsOldAndNewTechnician(t *testing.T) {
	repo := &fakeRepo{call: openCall()}
	svc, _, _ := newTestService(repo, t0)
	tech := uuid.New()

	resp, err := svc.Assign(context.Background(), manager(), repo.call.ID, tech)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if resp.Status != "assigned" {
		t.Fatalf("status = %s, want assigned", resp.Status)
	}
	if len(repo.history) != 1 || repo.history[0].Action != "assigned" {
		t.Fatalf("history = %+v, want one assigned row", repo.history)
	}
	if repo.history[0].OldValue != nil {
		t.Fatalf("oldValue = %v, want nil for first assignment", *repo.history[0].OldValue)
	}
	if *repo.history[0].NewValue != tech.String() {
		t.Fatalf("newValue = %s, want %s", *repo.history[0].NewValue, tech)
	}
}

func TestStartFromTriageStatuses(t *testing.T) {
	for _, status := range []string{"open", "analysis", "assigned", "waiting_parts"} {
		t.Run(status, func(t *testing.T) {
			call := openCall()
			call.Status = status
			repo := &fakeRepo{call: call}
			svc, _, _ := newTestService(repo, t0)

			resp, err := svc.Start(context.Background(), call.ID, uuid.New())
			if err != nil {
				t.Fatalf("Start from %s: %v", status, err)
			}
			if resp.Status != "execution" {
				t.Fatalf("status = %s, want execution", resp.Status)
			}
		})
	}
}

func TestPauseResumeAccounting(t *testing.T) {
	call := openCall()
	repo := &fakeRepo{call: call}
	svc, _, _ := newTestService(repo, t0)
	actorID := uuid.New()

	if _, err := svc.Start(context.Background(), call.ID, actorID); err != nil {
		t.Fatalf("Start: %v", err)
	}

	svc.now = func() time.Time { return t0.Add(20 * time.Minute) }
	reason := "waiting for spare seal"
	if _, err := svc.Pause(context.Background(), call.ID, actorID, &reason); err != nil {
		t.Fatalf("Pause: %v", err)
	}

	svc.now = func() time.Time { return t0.Add(50 * time.Minute) }
	resp, err := svc.Resume(context.Background(), call.ID, actorID)
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if resp.TotalPausedTime != 30 {
		t.Fatalf("totalPausedTime = %d, want 30", resp.TotalPausedTime)
	}
	if resp.ResumeCount != 1 {
		t.Fatalf("resumeCount = %d, want 1", resp.ResumeCount)
	}
	if resp.Status != "execution" {
		t.Fatalf("status = %s, want execution", resp.Status)
	}
	if repo.call.PauseReason != nil {
		t.Fatalf("pauseReason = %q, want cleared on resume", *repo.call.PauseReason)
	}
}

func TestCompleteUsesStoredPartsWhenBodyOmitsThem(t *testing.T) {
	call := openCall()
	call.Status = "execution"
	started := t0
	call.StartedAt = &started
	stored := `[{"code":"SEAL-01","quantity":1}]`
	call.PartsUsed = &stored
	repo := &fakeRepo{call: call}
	svc, rec, eq := newTestService(repo, t0.Add(40*time.Minute))
	actorID := uuid.New()

	resp, err := svc.Complete(context.Background(), call.ID, actorID, transport.CompleteCallRequest{})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if rec.calls != 1 || rec.parts != stored {
		t.Fatalf("reconciler calls = %d parts = %q, want stored parts deducted", rec.calls, rec.parts)
	}
	if rec.refType != "maintenance_call" {
		t.Fatalf("refType = %s, want maintenance_call", rec.refType)
	}
	if resp.ExecutionTime == nil || *resp.ExecutionTime != 40 {
		t.Fatalf("executionTime = %v, want 40", resp.ExecutionTime)
	}
	if eq.calls != 1 || eq.equipmentID != call.EquipmentID {
		t.Fatalf("equipment marker calls = %d id = %v", eq.calls, eq.equipmentID)
	}
}

func TestCompleteBodyPartsOverrideStored(t *testing.T) {
	call := openCall()
	call.Status = "execution"
	started := t0
	call.StartedAt = &started
	stored := `[{"code":"SEAL-01","quantity":1}]`
	call.PartsUsed = &stored
	repo := &fakeRepo{call: call}
	svc, rec, _ := newTestService(repo, t0.Add(10*time.Minute))

	body := `[{"code":"BELT-02","quantity":2}]`
	_, err := svc.Complete(context.Background(), call.ID, uuid.New(), transport.CompleteCallRequest{PartsUsed: &body})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if rec.parts != body {
		t.Fatalf("parts = %q, want body parts", rec.parts)
	}
}

func TestCompleteAbortsOnStockFailure(t *testing.T) {
	call := openCall()
	call.Status = "execution"
	started := t0
	call.StartedAt = &started
	repo := &fakeRepo{call: call}
	svc, rec, _ := newTestService(repo, t0.Add(5*time.Minute))
	rec.err = apperr.Stock("insufficient stock for SEAL-01")

	parts := `[{"code":"SEAL-01","quantity":99}]`
	_, err := svc.Complete(context.Background(), call.ID, uuid.New(), transport.CompleteCallRequest{PartsUsed: &parts})
	if apperr.GetKind(err) != apperr.KindStock {
		t.Fatalf("kind = %v, want KindStock", apperr.GetKind(err))
	}
	if repo.call.Status != "execution" {
		t.Fatalf("status = %s, want execution untouched", repo.call.Status)
	}
	if repo.completed != nil {
		t.Fatal("call was finalized despite stock failure")
	}
}

func TestCompleteAlreadyFinalized(t *testing.T) {
	call := openCall()
	call.Status = "completed"
	repo := &fakeRepo{call: call}
	svc, _, _ := newTestService(repo, t0)

	_, err := svc.Complete(context.Background(), call.ID, uuid.New(), transport.CompleteCallRequest{})
	if apperr.GetKind(err) != apperr.KindState {
		t.Fatalf("kind = %v, want KindState", apperr.GetKind(err))
	}
}

func TestCancelRequiresReason(t *testing.T) {
	repo := &fakeRepo{call: openCall()}
	svc, _, _ := newTestService(repo, t0)

	_, err := svc.Cancel(context.Background(), repo.call.ID, uuid.New(), "   ")
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("kind = %v, want KindValidation", apperr.GetKind(err))
	}
	if repo.cancelled != nil {
		t.Fatal("call was cancelled without a reason")
	}
}

func TestCancelRecordsActorAndReason(t *testing.T) {
	repo := &fakeRepo{call: openCall()}
	svc, _, _ := newTestService(repo, t0)
	actorID := uuid.New()

	resp, err := svc.Cancel(context.Background(), repo.call.ID, actorID, "duplicate report")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if resp.Status != "cancelled" {
		t.Fatalf("status = %s, want cancelled", resp.Status)
	}
	if repo.cancelled == nil || repo.cancelled.CancelledBy != actorID || repo.cancelled.Reason != "duplicate report" {
		t.Fatalf("cancelled = %+v", repo.cancelled)
	}
}
