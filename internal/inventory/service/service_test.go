package service

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"cmms_backend/internal/inventory/transport"
	"cmms_backend/platform/apperr"
)

func TestTransferRelocatesWithoutChangingQuantity(t *testing.T) {
	repo := stockedRepo()
	svc, _ := newTestService(repo)
	dest := uuid.New()

	result, err := svc.Transfer(context.Background(), repo.items[0].ID, uuid.New(), transport.TransferRequest{
		LocationID: dest,
		Quantity:   qty("2"),
	})
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if result.LocationID == nil || *result.LocationID != dest {
		t.Fatalf("location = %v, want %s", result.LocationID, dest)
	}
	if !result.CurrentQuantity.Equal(qty("5")) {
		t.Fatalf("quantity = %s, want unchanged 5", result.CurrentQuantity)
	}
	if len(repo.movements) != 1 || repo.movements[0].MovementType != "transfer" {
		t.Fatalf("movements = %+v, want one transfer row", repo.movements)
	}
	if !repo.movements[0].Quantity.Equal(qty("2")) {
		t.Fatalf("movement quantity = %s, want 2", repo.movements[0].Quantity)
	}
}

func TestTransferRejectsSameLocation(t *testing.T) {
	repo := stockedRepo()
	loc := uuid.New()
	repo.items[0].LocationID = &loc
	svc, _ := newTestService(repo)

	_, err := svc.Transfer(context.Background(), repo.items[0].ID, uuid.New(), transport.TransferRequest{
		LocationID: loc,
		Quantity:   qty("1"),
	})
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("kind = %v, want KindValidation", apperr.GetKind(err))
	}
}

func TestTransferRejectsExcessQuantity(t *testing.T) {
	repo := stockedRepo()
	svc, _ := newTestService(repo)

	_, err := svc.Transfer(context.Background(), repo.items[0].ID, uuid.New(), transport.TransferRequest{
		LocationID: uuid.New(),
		Quantity:   qty("6"),
	})
	if apperr.GetKind(err) != apperr.KindStock {
		t.Fatalf("kind = %v, want KindStock", apperr.GetKind(err))
	}
	if len(repo.movements) != 0 {
		t.Fatal("a movement was recorded for a rejected transfer")
	}
}

func TestAllMovementsFiltersByType(t *testing.T) {
	repo := stockedRepo()
	svc, _ := newTestService(repo)

	if _, err := svc.Transfer(context.Background(), repo.items[0].ID, uuid.New(), transport.TransferRequest{
		LocationID: uuid.New(),
		Quantity:   qty("1"),
	}); err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	result, err := svc.AllMovements(context.Background(), transport.ListAllMovementsRequest{Type: "transfer"})
	if err != nil {
		t.Fatalf("AllMovements: %v", err)
	}
	if result.Total != 1 || len(result.Movements) != 1 {
		t.Fatalf("result = %+v, want one transfer movement", result)
	}
	if result.Movements[0].MovementType != "transfer" {
		t.Fatalf("movement type = %s, want transfer", result.Movements[0].MovementType)
	}

	empty, err := svc.AllMovements(context.Background(), transport.ListAllMovementsRequest{Type: "exit"})
	if err != nil {
		t.Fatalf("AllMovements: %v", err)
	}
	if empty.Total != 0 {
		t.Fatalf("exit movements = %d, want 0", empty.Total)
	}
}
