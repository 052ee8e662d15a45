package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"cmms_backend/internal/plans/repository"
	"cmms_backend/platform/logger"
)

type fakeOrder struct {
	id            uuid.UUID
	planID        uuid.UUID
	scheduledDate time.Time
}

type fakeRepo struct {
	plans       map[uuid.UUID]repository.Plan
	orders      []fakeOrder
	lastErr     error
	listErr     error
	insertCalls int
}

func newFakeRepo(plans ...repository.Plan) *fakeRepo {
	r := &fakeRepo{plans: make(map[uuid.UUID]repository.Plan)}
	for _, p := range plans {
		r.plans[p.ID] = p
	}
	return r
}

func (r *fakeRepo) Create(context.Context, repository.CreatePlanParams) (repository.Plan, error) {
	panic("not used")
}

func (r *fakeRepo) Update(context.Context, repository.UpdatePlanParams) (repository.Plan, error) {
	panic("not used")
}

func (r *fakeRepo) Delete(context.Context, uuid.UUID) error { panic("not used") }

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Plan, error) {
	p, ok := r.plans[id]
	if !ok {
		return repository.Plan{}, errors.New("plan not found")
	}
	return p, nil
}

func (r *fakeRepo) List(context.Context, repository.ListPlansParams) ([]repository.Plan, int, error) {
	panic("not used")
}

func (r *fakeRepo) ListActive(context.Context) ([]repository.Plan, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	active := make([]repository.Plan, 0)
	for _, p := range r.plans {
		if p.IsActive {
			active = append(active, p)
		}
	}
	return active, nil
}

func (r *fakeRepo) ToggleActive(context.Context, uuid.UUID) (bool, error) { panic("not used") }

func (r *fakeRepo) LastScheduledDate(_ context.Context, planID uuid.UUID) (*time.Time, error) {
	if r.lastErr != nil {
		return nil, r.lastErr
	}
	var last *time.Time
	for _, o := range r.orders {
		if o.planID != planID {
			continue
		}
		d := o.scheduledDate
		if last == nil || d.After(*last) {
			last = &d
		}
	}
	return last, nil
}

func (r *fakeRepo) InsertGeneratedOrder(_ context.Context, params repository.GeneratedOrderParams) (uuid.UUID, bool, error) {
	r.insertCalls++
	for _, o := range r.orders {
		if o.planID == params.PlanID && o.scheduledDate.Equal(params.ScheduledDate) {
			return o.id, false, nil
		}
	}
	o := fakeOrder{id: uuid.New(), planID: params.PlanID, scheduledDate: params.ScheduledDate}
	r.orders = append(r.orders, o)
	return o.id, true, nil
}

type fakeScheduler struct {
	next map[uuid.UUID]time.Time
}

func (f *fakeScheduler) SetNextPreventiveDate(_ context.Context, equipmentID uuid.UUID, next time.Time) error {
	if f.next == nil {
		f.next = make(map[uuid.UUID]time.Time)
	}
	f.next[equipmentID] = next
	return nil
}

func weeklyPlan(start time.Time) repository.Plan {
	return repository.Plan{
		ID:             uuid.New(),
		Name:           "Lubrication",
		EquipmentID:    uuid.New(),
		FrequencyType:  "weeks",
		FrequencyValue: 1,
		StartDate:      start,
		IsActive:       true,
		CreatedBy:      uuid.New(),
	}
}

func newTestService(repo repository.Repository) (*Service, *fakeScheduler) {
	sched := &fakeScheduler{}
	svc := New(repo, nil, logger.New("development"))
	svc.SetEquipmentScheduler(sched)
	return svc, sched
}

func TestGenerateOrderFirstOccurrence(t *testing.T) {
	start := date(2026, 3, 2)
	plan := weeklyPlan(start)
	repo := newFakeRepo(plan)
	svc, sched := newTestService(repo)

	orderID, err := svc.GenerateOrder(context.Background(), plan.ID)
	if err != nil {
		t.Fatalf("GenerateOrder: %v", err)
	}
	if orderID == uuid.Nil {
		t.Fatalf("expected order id")
	}
	if len(repo.orders) != 1 {
		t.Fatalf("orders = %d, want 1", len(repo.orders))
	}
	if !repo.orders[0].scheduledDate.Equal(start) {
		t.Fatalf("scheduled = %v, want plan start %v", repo.orders[0].scheduledDate, start)
	}
	if got := sched.next[plan.EquipmentID]; !got.Equal(start) {
		t.Fatalf("next preventive date = %v, want %v", got, start)
	}
}

func TestGenerateOrderAdvancesFromLast(t *testing.T) {
	start := date(2026, 3, 2)
	plan := weeklyPlan(start)
	repo := newFakeRepo(plan)
	repo.orders = append(repo.orders, fakeOrder{id: uuid.New(), planID: plan.ID, scheduledDate: start})
	svc, _ := newTestService(repo)

	orderID, err := svc.GenerateOrder(context.Background(), plan.ID)
	if err != nil {
		t.Fatalf("GenerateOrder: %v", err)
	}
	if orderID == uuid.Nil {
		t.Fatalf("expected order id")
	}

	want := start.AddDate(0, 0, 7)
	last := repo.orders[len(repo.orders)-1]
	if !last.scheduledDate.Equal(want) {
		t.Fatalf("scheduled = %v, want %v", last.scheduledDate, want)
	}
}

func TestGenerateOrderIdempotent(t *testing.T) {
	plan := weeklyPlan(date(2026, 3, 2))
	repo := newFakeRepo(plan)
	svc, _ := newTestService(repo)

	first, err := svc.GenerateOrder(context.Background(), plan.ID)
	if err != nil {
		t.Fatalf("GenerateOrder: %v", err)
	}

	// repeating the same (plan, scheduled date) returns the existing order
	id, created, err := repo.InsertGeneratedOrder(context.Background(), repository.GeneratedOrderParams{
		PlanID:        plan.ID,
		ScheduledDate: plan.StartDate,
	})
	if err != nil {
		t.Fatalf("InsertGeneratedOrder: %v", err)
	}
	if created {
		t.Fatalf("expected existing order, got a new one")
	}
	if id != first {
		t.Fatalf("existing id = %v, want %v", id, first)
	}
}

func TestGenerateOrderInactivePlanNoOp(t *testing.T) {
	plan := weeklyPlan(date(2026, 3, 2))
	plan.IsActive = false
	repo := newFakeRepo(plan)
	svc, sched := newTestService(repo)

	orderID, err := svc.GenerateOrder(context.Background(), plan.ID)
	if err != nil {
		t.Fatalf("GenerateOrder: %v", err)
	}
	if orderID != uuid.Nil {
		t.Fatalf("expected uuid.Nil for inactive plan, got %v", orderID)
	}
	if len(repo.orders) != 0 {
		t.Fatalf("orders = %d, want 0", len(repo.orders))
	}
	if len(sched.next) != 0 {
		t.Fatalf("equipment dates must not change for inactive plans")
	}
}

func TestGenerateDue(t *testing.T) {
	asOf := date(2026, 3, 10)

	duePlan := weeklyPlan(date(2026, 3, 2))
	futurePlan := weeklyPlan(date(2026, 4, 1))
	inactivePlan := weeklyPlan(date(2026, 3, 1))
	inactivePlan.IsActive = false

	repo := newFakeRepo(duePlan, futurePlan, inactivePlan)
	svc, _ := newTestService(repo)

	generated, err := svc.GenerateDue(context.Background(), asOf)
	if err != nil {
		t.Fatalf("GenerateDue: %v", err)
	}
	if generated != 1 {
		t.Fatalf("generated = %d, want 1", generated)
	}
	if len(repo.orders) != 1 {
		t.Fatalf("orders = %d, want 1", len(repo.orders))
	}
	if repo.orders[0].planID != duePlan.ID {
		t.Fatalf("generated for wrong plan")
	}
}

func TestGenerateDueSurvivesPlanFailure(t *testing.T) {
	asOf := date(2026, 3, 10)

	brokenPlan := weeklyPlan(date(2026, 3, 2))
	brokenPlan.FrequencyValue = 0 // NextDate rejects once an order exists

	repo := newFakeRepo(brokenPlan)
	repo.orders = append(repo.orders, fakeOrder{id: uuid.New(), planID: brokenPlan.ID, scheduledDate: date(2026, 3, 2)})
	svc, _ := newTestService(repo)

	generated, err := svc.GenerateDue(context.Background(), asOf)
	if err != nil {
		t.Fatalf("GenerateDue: %v", err)
	}
	if generated != 0 {
		t.Fatalf("generated = %d, want 0", generated)
	}
}
