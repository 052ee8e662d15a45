package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"cmms_backend/internal/events"
	"cmms_backend/internal/inventory/repository"
	"cmms_backend/platform/apperr"
)

// ReconcileResult summarizes a parts reconciliation batch.
type ReconcileResult struct {
	Success   bool     `json:"success"`
	Processed int      `json:"processed"`
	Errors    []string `json:"errors,omitempty"`
}

// Reconcile deducts a batch of consumption lines from stock. All lines are
// validated before anything is applied: one bad line fails the whole batch
// and nothing is deducted. The commit itself is a single transaction that
// also rejects a second run for the same reference.
func (s *Service) Reconcile(ctx context.Context, refType string, refID uuid.UUID, lines []PartLine, actorID uuid.UUID) (*ReconcileResult, error) {
	result := &ReconcileResult{}

	resolved := make([]resolution, 0, len(lines))
	insufficient := false
	for _, line := range lines {
		res, err := s.resolve(ctx, line)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, res)

		if !res.found {
			result.Errors = append(result.Errors, res.reason)
			continue
		}
		if !line.Quantity.IsPositive() {
			result.Errors = append(result.Errors,
				fmt.Sprintf("item %q: quantity must be positive", line.label()))
			continue
		}
		if line.Quantity.GreaterThan(res.item.CurrentQuantity) {
			insufficient = true
			result.Errors = append(result.Errors,
				fmt.Sprintf("item %q: requested %s exceeds stock %s",
					line.label(), line.Quantity, res.item.CurrentQuantity))
		}
	}

	if len(result.Errors) > 0 {
		if insufficient {
			return result, apperr.Stock("insufficient stock").WithDetails(result.Errors)
		}
		return result, apperr.Validation("parts could not be reconciled").WithDetails(result.Errors)
	}

	exits := make([]repository.ExitLine, 0, len(lines))
	for i, line := range lines {
		exits = append(exits, repository.ExitLine{
			ItemID:   resolved[i].item.ID,
			Quantity: line.Quantity,
		})
	}

	deducted, err := s.repo.CommitExits(ctx, refType, refID, actorID, exits)
	if err != nil {
		return result, err
	}

	result.Success = true
	result.Processed = len(deducted)

	for i, d := range deducted {
		item := resolved[i].item
		if d.NewQuantity.LessThanOrEqual(item.MinQuantity) {
			s.log.Warn("item below minimum stock", "code", item.Code, "quantity", d.NewQuantity, "min", item.MinQuantity)
			if s.bus != nil {
				s.bus.Publish(ctx, events.LowStock{
					BaseEvent:   events.NewBaseEvent(),
					ItemID:      item.ID,
					Code:        item.Code,
					Name:        item.Name,
					Quantity:    d.NewQuantity,
					MinQuantity: item.MinQuantity,
				})
			}
		}
	}

	return result, nil
}

// DeductParts adapts Reconcile to the parts payload carried by completing
// orders and calls.
func (s *Service) DeductParts(ctx context.Context, refType string, refID uuid.UUID, partsJSON string, actorID uuid.UUID) error {
	lines, err := ParsePartLines(partsJSON)
	if err != nil {
		return err
	}
	_, err = s.Reconcile(ctx, refType, refID, lines, actorID)
	return err
}
