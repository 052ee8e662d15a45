// Package service contains preventive plan business logic: CRUD, the
// recurrence calculator, and order generation.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"cmms_backend/internal/events"
	"cmms_backend/internal/plans/repository"
	"cmms_backend/internal/plans/transport"
	"cmms_backend/platform/apperr"
	"cmms_backend/platform/logger"
)

// Service provides business logic for preventive plans.
type Service struct {
	repo      repository.Repository
	equipment EquipmentScheduler
	bus       events.Bus
	log       *logger.Logger
}

// New creates a new plans service.
func New(repo repository.Repository, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, log: log}
}

// SetEquipmentScheduler wires the equipment schedule writer. Set from main to
// avoid a package cycle between plans and equipment.
func (s *Service) SetEquipmentScheduler(scheduler EquipmentScheduler) {
	s.equipment = scheduler
}

// Create registers a new preventive plan.
func (s *Service) Create(ctx context.Context, actorID uuid.UUID, req transport.CreatePlanRequest) (transport.PlanResponse, error) {
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return transport.PlanResponse{}, err
	}
	endDate, err := parseOptionalDate(req.EndDate)
	if err != nil {
		return transport.PlanResponse{}, err
	}
	if endDate != nil && endDate.Before(startDate) {
		return transport.PlanResponse{}, apperr.Validation("end date must not precede start date")
	}

	plan, err := s.repo.Create(ctx, repository.CreatePlanParams{
		Name:              strings.TrimSpace(req.Name),
		EquipmentID:       req.EquipmentID,
		FrequencyType:     req.FrequencyType,
		FrequencyValue:    req.FrequencyValue,
		StartDate:         startDate,
		EndDate:           endDate,
		Instructions:      req.Instructions,
		EstimatedDuration: req.EstimatedDuration,
		ToolsRequired:     req.ToolsRequired,
		MaterialsRequired: req.MaterialsRequired,
		SafetyProcedures:  req.SafetyProcedures,
		ManualReference:   req.ManualReference,
		AssignedTo:        req.AssignedTo,
		CreatedBy:         actorID,
	})
	if err != nil {
		return transport.PlanResponse{}, err
	}

	// the first occurrence is materialized immediately so the plan shows up
	// on the schedule without waiting for the sweep
	if _, err := s.generateNext(ctx, plan, plan.StartDate); err != nil {
		s.log.Error("initial order generation failed", "plan_id", plan.ID, "error", err)
	}

	s.log.Info("plan created", "id", plan.ID, "name", plan.Name)
	return toPlanResponse(plan), nil
}

// Update applies a partial update to a plan.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdatePlanRequest) (transport.PlanResponse, error) {
	startDate, err := parseOptionalDate(req.StartDate)
	if err != nil {
		return transport.PlanResponse{}, err
	}
	endDate, err := parseOptionalDate(req.EndDate)
	if err != nil {
		return transport.PlanResponse{}, err
	}

	plan, err := s.repo.Update(ctx, repository.UpdatePlanParams{
		ID:                id,
		Name:              trimmed(req.Name),
		FrequencyType:     req.FrequencyType,
		FrequencyValue:    req.FrequencyValue,
		StartDate:         startDate,
		EndDate:           endDate,
		Instructions:      req.Instructions,
		EstimatedDuration: req.EstimatedDuration,
		ToolsRequired:     req.ToolsRequired,
		MaterialsRequired: req.MaterialsRequired,
		SafetyProcedures:  req.SafetyProcedures,
		ManualReference:   req.ManualReference,
		AssignedTo:        req.AssignedTo,
	})
	if err != nil {
		return transport.PlanResponse{}, err
	}
	return toPlanResponse(plan), nil
}

// Delete removes a plan.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("plan deleted", "id", id)
	return nil
}

// GetByID retrieves a plan by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.PlanResponse, error) {
	plan, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.PlanResponse{}, err
	}
	return toPlanResponse(plan), nil
}

// List retrieves plans with search and pagination.
func (s *Service) List(ctx context.Context, req transport.ListPlansRequest) (transport.PlanListResponse, error) {
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

	items, total, err := s.repo.List(ctx, repository.ListPlansParams{
		Search:      strings.TrimSpace(req.Search),
		EquipmentID: req.EquipmentID,
		ActiveOnly:  req.ActiveOnly,
		Offset:      (page - 1) * pageSize,
		Limit:       pageSize,
	})
	if err != nil {
		return transport.PlanListResponse{}, err
	}

	responses := make([]transport.PlanResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, toPlanResponse(item))
	}

	return transport.PlanListResponse{
		Items:      responses,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

// ToggleActive flips a plan between active and inactive.
func (s *Service) ToggleActive(ctx context.Context, id uuid.UUID) (bool, error) {
	active, err := s.repo.ToggleActive(ctx, id)
	if err != nil {
		return false, err
	}
	s.log.Info("plan toggled", "id", id, "active", active)
	return active, nil
}

func toPlanResponse(p repository.Plan) transport.PlanResponse {
	return transport.PlanResponse{
		ID:                p.ID,
		Name:              p.Name,
		EquipmentID:       p.EquipmentID,
		FrequencyType:     p.FrequencyType,
		FrequencyValue:    p.FrequencyValue,
		StartDate:         p.StartDate.Format("2006-01-02"),
		EndDate:           formatDate(p.EndDate),
		Instructions:      p.Instructions,
		EstimatedDuration: p.EstimatedDuration,
		ToolsRequired:     p.ToolsRequired,
		MaterialsRequired: p.MaterialsRequired,
		SafetyProcedures:  p.SafetyProcedures,
		ManualReference:   p.ManualReference,
		AssignedTo:        p.AssignedTo,
		IsActive:          p.IsActive,
		CreatedBy:         p.CreatedBy,
		CreatedAt:         p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         p.UpdatedAt.Format(time.RFC3339),
	}
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, apperr.Validation("invalid date, expected YYYY-MM-DD")
	}
	return t, nil
}

func parseOptionalDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := parseDate(*value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	s := strings.TrimSpace(*value)
	return &s
}
