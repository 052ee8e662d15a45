package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cmms_backend/internal/events"
	"cmms_backend/internal/inventory/repository"
	"cmms_backend/platform/apperr"
	"cmms_backend/platform/logger"
)

func qty(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fakeRepo struct {
	items     []repository.Item
	committed []repository.ExitLine
	commits   int
	movements []repository.Movement
}

func (r *fakeRepo) FindItemByCode(_ context.Context, code string) (repository.Item, error) {
	for _, item := range r.items {
		if item.Code == code && item.IsActive {
			return item, nil
		}
	}
	return repository.Item{}, apperr.NotFound("inventory item not found")
}

func (r *fakeRepo) FindItemByNameLike(_ context.Context, name string) (repository.Item, error) {
	for _, item := range r.items {
		if item.IsActive && strings.Contains(strings.ToLower(item.Name), strings.ToLower(name)) {
			return item, nil
		}
	}
	return repository.Item{}, apperr.NotFound("inventory item not found")
}

func (r *fakeRepo) CommitExits(_ context.Context, _ string, _ uuid.UUID, _ uuid.UUID, lines []repository.ExitLine) ([]repository.ExitResult, error) {
	if r.commits > 0 {
		return nil, apperr.Conflict("parts already deducted for this reference")
	}
	r.commits++
	r.committed = append(r.committed, lines...)

	results := make([]repository.ExitResult, 0, len(lines))
	for _, line := range lines {
		for i := range r.items {
			if r.items[i].ID == line.ItemID {
				r.items[i].CurrentQuantity = r.items[i].CurrentQuantity.Sub(line.Quantity)
				results = append(results, repository.ExitResult{
					ItemID:      line.ItemID,
					NewQuantity: r.items[i].CurrentQuantity,
				})
			}
		}
	}
	return results, nil
}

func (r *fakeRepo) CreateItem(context.Context, repository.CreateItemParams) (repository.Item, error) {
	panic("not used")
}
func (r *fakeRepo) UpdateItem(context.Context, repository.UpdateItemParams) (repository.Item, error) {
	panic("not used")
}
func (r *fakeRepo) DeleteItem(context.Context, uuid.UUID) error { panic("not used") }
func (r *fakeRepo) GetItemByID(context.Context, uuid.UUID) (repository.Item, error) {
	panic("not used")
}
func (r *fakeRepo) ListItems(context.Context, repository.ListItemsParams) ([]repository.Item, int, error) {
	panic("not used")
}
func (r *fakeRepo) ListLowStock(context.Context) ([]repository.Item, error) { panic("not used") }
func (r *fakeRepo) CreateLocation(context.Context, repository.CreateLocationParams) (repository.Location, error) {
	panic("not used")
}
func (r *fakeRepo) UpdateLocation(context.Context, repository.UpdateLocationParams) (repository.Location, error) {
	panic("not used")
}
func (r *fakeRepo) DeleteLocation(context.Context, uuid.UUID) error { panic("not used") }
func (r *fakeRepo) ListLocations(context.Context) ([]repository.Location, error) {
	panic("not used")
}
func (r *fakeRepo) RegisterEntry(context.Context, repository.EntryParams) (repository.Item, error) {
	panic("not used")
}
func (r *fakeRepo) Adjust(context.Context, repository.AdjustParams) (repository.Item, error) {
	panic("not used")
}
func (r *fakeRepo) ListMovementsByItem(context.Context, uuid.UUID, int) ([]repository.Movement, error) {
	panic("not used")
}

func (r *fakeRepo) Transfer(_ context.Context, params repository.TransferParams) (repository.Item, error) {
	if !params.Quantity.IsPositive() {
		return repository.Item{}, apperr.Validation("transfer quantity must be positive")
	}
	for i := range r.items {
		if r.items[i].ID != params.ItemID {
			continue
		}
		if r.items[i].LocationID != nil && *r.items[i].LocationID == params.ToLocationID {
			return repository.Item{}, apperr.Validation("item is already stored at this location")
		}
		if params.Quantity.GreaterThan(r.items[i].CurrentQuantity) {
			return repository.Item{}, apperr.Stock("insufficient stock")
		}
		loc := params.ToLocationID
		r.items[i].LocationID = &loc
		r.movements = append(r.movements, repository.Movement{
			ItemID:       params.ItemID,
			MovementType: "transfer",
			Quantity:     params.Quantity,
			LocationID:   &loc,
			CreatedBy:    params.CreatedBy,
		})
		return r.items[i], nil
	}
	return repository.Item{}, apperr.NotFound("inventory item not found")
}

func (r *fakeRepo) ListMovements(_ context.Context, params repository.ListMovementsParams) ([]repository.MovementDetail, int, error) {
	details := []repository.MovementDetail{}
	for _, m := range r.movements {
		if params.MovementType != "" && m.MovementType != params.MovementType {
			continue
		}
		if params.ItemID != nil && m.ItemID != *params.ItemID {
			continue
		}
		details = append(details, repository.MovementDetail{Movement: m})
	}
	return details, len(details), nil
}

type captureBus struct {
	published []events.Event
}

func (b *captureBus) Publish(_ context.Context, event events.Event) {
	b.published = append(b.published, event)
}
func (b *captureBus) PublishSync(_ context.Context, event events.Event) error {
	b.published = append(b.published, event)
	return nil
}
func (b *captureBus) Subscribe(string, events.Handler) {}

func stockedRepo() *fakeRepo {
	return &fakeRepo{items: []repository.Item{
		{
			ID: uuid.New(), Code: "SEAL-01", Name: "Hydraulic seal 30mm",
			CurrentQuantity: qty("5"), MinQuantity: qty("2"), IsActive: true,
		},
		{
			ID: uuid.New(), Code: "BELT-02", Name: "Drive belt A42",
			CurrentQuantity: qty("10"), MinQuantity: qty("3"), IsActive: true,
		},
		{
			ID: uuid.New(), Code: "OIL-03", Name: "Gear oil ISO 220",
			CurrentQuantity: qty("1.5"), MinQuantity: qty("4"), IsActive: false,
		},
	}}
}

func newTestService(repo *fakeRepo) (*Service, *captureBus) {
	bus := &captureBus{}
	return New(repo, bus, logger.New("development")), bus
}

func TestReconcileResolvesByCodeAndName(t *testing.T) {
	repo := stockedRepo()
	svc, _ := newTestService(repo)

	lines := []PartLine{
		{Code: "SEAL-01", Quantity: qty("2")},
		{Name: "drive belt", Quantity: qty("1")},
	}
	result, err := svc.Reconcile(context.Background(), "maintenance_order", uuid.New(), lines, uuid.New())
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if !result.Success || result.Processed != 2 {
		t.Fatalf("result = %+v, want success with 2 processed", result)
	}
	if len(repo.committed) != 2 {
		t.Fatalf("committed lines = %d, want 2", len(repo.committed))
	}
	if !repo.items[0].CurrentQuantity.Equal(qty("3")) {
		t.Fatalf("SEAL-01 quantity = %s, want 3", repo.items[0].CurrentQuantity)
	}
	if !repo.items[1].CurrentQuantity.Equal(qty("9")) {
		t.Fatalf("BELT-02 quantity = %s, want 9", repo.items[1].CurrentQuantity)
	}
}

func TestReconcileInsufficientStockFailsBatch(t *testing.T) {
	repo := stockedRepo()
	svc, _ := newTestService(repo)

	lines := []PartLine{
		{Code: "BELT-02", Quantity: qty("1")},
		{Code: "SEAL-01", Quantity: qty("6")},
	}
	result, err := svc.Reconcile(context.Background(), "maintenance_order", uuid.New(), lines, uuid.New())
	if apperr.GetKind(err) != apperr.KindStock {
		t.Fatalf("kind = %v, want KindStock", apperr.GetKind(err))
	}
	if result.Success || len(result.Errors) != 1 {
		t.Fatalf("result = %+v, want failed batch with one error", result)
	}
	if len(repo.committed) != 0 {
		t.Fatal("lines were committed despite insufficient stock")
	}
	if !repo.items[1].CurrentQuantity.Equal(qty("10")) {
		t.Fatalf("BELT-02 quantity = %s, want untouched 10", repo.items[1].CurrentQuantity)
	}
}

func TestReconcileUnresolvedItemFailsBatch(t *testing.T) {
	repo := stockedRepo()
	svc, _ := newTestService(repo)

	lines := []PartLine{
		{Code: "SEAL-01", Quantity: qty("1")},
		{Code: "NOPE-99", Quantity: qty("1")},
	}
	_, err := svc.Reconcile(context.Background(), "maintenance_call", uuid.New(), lines, uuid.New())
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("kind = %v, want KindValidation", apperr.GetKind(err))
	}
	if len(repo.committed) != 0 {
		t.Fatal("lines were committed despite an unresolved item")
	}
}

func TestReconcileIgnoresInactiveItems(t *testing.T) {
	repo := stockedRepo()
	svc, _ := newTestService(repo)

	lines := []PartLine{{Code: "OIL-03", Quantity: qty("1")}}
	_, err := svc.Reconcile(context.Background(), "maintenance_order", uuid.New(), lines, uuid.New())
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("kind = %v, want KindValidation for inactive item", apperr.GetKind(err))
	}
}

func TestReconcileRejectsNonPositiveQuantity(t *testing.T) {
	repo := stockedRepo()
	svc, _ := newTestService(repo)

	lines := []PartLine{{Code: "SEAL-01", Quantity: qty("0")}}
	_, err := svc.Reconcile(context.Background(), "maintenance_order", uuid.New(), lines, uuid.New())
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("kind = %v, want KindValidation", apperr.GetKind(err))
	}
}

func TestReconcileSecondRunConflicts(t *testing.T) {
	repo := stockedRepo()
	svc, _ := newTestService(repo)
	refID := uuid.New()

	lines := []PartLine{{Code: "BELT-02", Quantity: qty("1")}}
	if _, err := svc.Reconcile(context.Background(), "maintenance_order", refID, lines, uuid.New()); err != nil {
		t.Fatalf("first Reconcile: %v", err)
	}

	_, err := svc.Reconcile(context.Background(), "maintenance_order", refID, lines, uuid.New())
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("kind = %v, want KindConflict", apperr.GetKind(err))
	}
}

func TestReconcilePublishesLowStock(t *testing.T) {
	repo := stockedRepo()
	svc, bus := newTestService(repo)

	// 5 - 3 = 2 hits the minimum of SEAL-01.
	lines := []PartLine{{Code: "SEAL-01", Quantity: qty("3")}}
	if _, err := svc.Reconcile(context.Background(), "maintenance_order", uuid.New(), lines, uuid.New()); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	if len(bus.published) != 1 {
		t.Fatalf("published events = %d, want 1", len(bus.published))
	}
	low, ok := bus.published[0].(events.LowStock)
	if !ok {
		t.Fatalf("event = %T, want LowStock", bus.published[0])
	}
	if low.Code != "SEAL-01" || !low.Quantity.Equal(qty("2")) {
		t.Fatalf("event = %+v", low)
	}
}

func TestDeductPartsRejectsMalformedPayload(t *testing.T) {
	repo := stockedRepo()
	svc, _ := newTestService(repo)

	for _, payload := range []string{"not json", "{}", "[]"} {
		err := svc.DeductParts(context.Background(), "maintenance_order", uuid.New(), payload, uuid.New())
		if apperr.GetKind(err) != apperr.KindValidation {
			t.Fatalf("payload %q: kind = %v, want KindValidation", payload, apperr.GetKind(err))
		}
	}
}
