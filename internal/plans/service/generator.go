package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"cmms_backend/internal/events"
	"cmms_backend/internal/plans/repository"
)

// EquipmentScheduler records plan-driven schedule markers on equipment rows.
// Satisfied by the equipment service, wired in main.
type EquipmentScheduler interface {
	SetNextPreventiveDate(ctx context.Context, equipmentID uuid.UUID, next time.Time) error
}

// GenerateOrder materializes the next pending order for one plan. The first
// occurrence lands on the plan's start date; afterwards each occurrence is one
// frequency step past the latest scheduled order. Re-invoking for a date that
// already has an order returns the existing order's id.
func (s *Service) GenerateOrder(ctx context.Context, planID uuid.UUID) (uuid.UUID, error) {
	plan, err := s.repo.GetByID(ctx, planID)
	if err != nil {
		return uuid.Nil, err
	}

	next, err := s.nextOccurrence(ctx, plan)
	if err != nil {
		return uuid.Nil, err
	}

	return s.generateNext(ctx, plan, next)
}

// GenerateDue sweeps every active plan and materializes orders whose next
// occurrence is due as of the given date. Per-plan failures are logged and
// skipped so one broken plan cannot stall the sweep. Returns the number of
// newly created orders.
func (s *Service) GenerateDue(ctx context.Context, asOf time.Time) (int, error) {
	plans, err := s.repo.ListActive(ctx)
	if err != nil {
		return 0, err
	}

	generated, skipped, failed := 0, 0, 0
	for _, plan := range plans {
		next, err := s.nextOccurrence(ctx, plan)
		if err != nil {
			s.log.Error("next occurrence failed", "plan_id", plan.ID, "error", err)
			failed++
			continue
		}

		due := !next.After(asOf) || (plan.EndDate != nil && !next.After(*plan.EndDate))
		if !due {
			skipped++
			continue
		}

		if _, err := s.generateNext(ctx, plan, next); err != nil {
			s.log.Error("order generation failed", "plan_id", plan.ID, "error", err)
			failed++
			continue
		}
		generated++
	}

	s.log.GenerationResult(generated, skipped, failed)
	return generated, nil
}

// GenerateFollowUp materializes the plan occurrence that follows a completed
// order: one frequency step past the completion date, not past the original
// schedule, so overdue work does not pile up follow-ups in the past.
func (s *Service) GenerateFollowUp(ctx context.Context, planID uuid.UUID, completedAt time.Time) (uuid.UUID, error) {
	plan, err := s.repo.GetByID(ctx, planID)
	if err != nil {
		return uuid.Nil, err
	}
	if !plan.IsActive {
		return uuid.Nil, nil
	}

	base := truncateToDay(completedAt)
	next, err := NextDate(base, FrequencyUnit(plan.FrequencyType), plan.FrequencyValue)
	if err != nil {
		return uuid.Nil, err
	}
	return s.generateNext(ctx, plan, next)
}

func truncateToDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func (s *Service) nextOccurrence(ctx context.Context, plan repository.Plan) (time.Time, error) {
	last, err := s.repo.LastScheduledDate(ctx, plan.ID)
	if err != nil {
		return time.Time{}, err
	}
	if last == nil {
		return plan.StartDate, nil
	}
	return NextDate(*last, FrequencyUnit(plan.FrequencyType), plan.FrequencyValue)
}

// generateNext inserts the pending order for a plan occurrence. Inactive
// plans are a no-op. Idempotent on (plan, scheduled date).
func (s *Service) generateNext(ctx context.Context, plan repository.Plan, scheduledDate time.Time) (uuid.UUID, error) {
	if !plan.IsActive {
		return uuid.Nil, nil
	}

	orderID, created, err := s.repo.InsertGeneratedOrder(ctx, repository.GeneratedOrderParams{
		PlanID:        plan.ID,
		EquipmentID:   plan.EquipmentID,
		Description:   "Preventive: " + plan.Name,
		Instructions:  plan.Instructions,
		ScheduledDate: scheduledDate,
		AssignedTo:    plan.AssignedTo,
		CreatedBy:     plan.CreatedBy,
	})
	if err != nil {
		return uuid.Nil, err
	}
	if !created {
		return orderID, nil
	}

	// the generated order exists at this point; a failed marker update must
	// not undo it
	if s.equipment != nil {
		if err := s.equipment.SetNextPreventiveDate(ctx, plan.EquipmentID, scheduledDate); err != nil {
			s.log.Error("next preventive date update failed", "equipment_id", plan.EquipmentID, "error", err)
		}
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.OrderGenerated{
			BaseEvent:     events.NewBaseEvent(),
			OrderID:       orderID,
			PlanID:        plan.ID,
			EquipmentID:   plan.EquipmentID,
			ScheduledDate: scheduledDate.Format("2006-01-02"),
		})
	}

	s.log.Info("preventive order generated", "order_id", orderID, "plan_id", plan.ID, "scheduled", scheduledDate.Format("2006-01-02"))
	return orderID, nil
}
