// Package service contains equipment business logic.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"cmms_backend/internal/equipment/repository"
	"cmms_backend/internal/equipment/transport"
	"cmms_backend/platform/apperr"
	"cmms_backend/platform/logger"
)

// Service provides business logic for equipment.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a new equipment service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Create registers a new piece of equipment.
func (s *Service) Create(ctx context.Context, req transport.CreateEquipmentRequest) (transport.EquipmentResponse, error) {
	status := req.Status
	if status == "" {
		status = "active"
	}
	criticality := req.Criticality
	if criticality == "" {
		criticality = "medium"
	}

	acquisitionDate, err := parseDate(req.AcquisitionDate)
	if err != nil {
		return transport.EquipmentResponse{}, err
	}

	eq, err := s.repo.Create(ctx, repository.CreateEquipmentParams{
		Name:            strings.TrimSpace(req.Name),
		Code:            strings.TrimSpace(req.Code),
		Description:     req.Description,
		Model:           req.Model,
		Manufacturer:    req.Manufacturer,
		SerialNumber:    req.SerialNumber,
		AcquisitionDate: acquisitionDate,
		AcquisitionCost: req.AcquisitionCost,
		Location:        req.Location,
		Status:          status,
		Criticality:     criticality,
		Power:           req.Power,
		Capacity:        req.Capacity,
		Voltage:         req.Voltage,
		FuelType:        req.FuelType,
		Dimensions:      req.Dimensions,
	})
	if err != nil {
		return transport.EquipmentResponse{}, err
	}

	s.log.Info("equipment created", "id", eq.ID, "code", eq.Code)
	return toEquipmentResponse(eq), nil
}

// Update applies a partial update to equipment.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateEquipmentRequest) (transport.EquipmentResponse, error) {
	acquisitionDate, err := parseDate(req.AcquisitionDate)
	if err != nil {
		return transport.EquipmentResponse{}, err
	}

	params := repository.UpdateEquipmentParams{
		ID:              id,
		Name:            trimmed(req.Name),
		Code:            trimmed(req.Code),
		Description:     req.Description,
		Model:           req.Model,
		Manufacturer:    req.Manufacturer,
		SerialNumber:    req.SerialNumber,
		AcquisitionDate: acquisitionDate,
		AcquisitionCost: req.AcquisitionCost,
		Location:        req.Location,
		Status:          req.Status,
		Criticality:     req.Criticality,
		Power:           req.Power,
		Capacity:        req.Capacity,
		Voltage:         req.Voltage,
		FuelType:        req.FuelType,
		Dimensions:      req.Dimensions,
	}

	eq, err := s.repo.Update(ctx, params)
	if err != nil {
		return transport.EquipmentResponse{}, err
	}
	return toEquipmentResponse(eq), nil
}

// Delete removes equipment.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("equipment deleted", "id", id)
	return nil
}

// GetByID retrieves equipment by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.EquipmentResponse, error) {
	eq, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.EquipmentResponse{}, err
	}
	return toEquipmentResponse(eq), nil
}

// List retrieves equipment with search and pagination.
func (s *Service) List(ctx context.Context, req transport.ListEquipmentRequest) (transport.EquipmentListResponse, error) {
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

	items, total, err := s.repo.List(ctx, repository.ListEquipmentParams{
		Search:      strings.TrimSpace(req.Search),
		Status:      req.Status,
		Criticality: req.Criticality,
		Offset:      (page - 1) * pageSize,
		Limit:       pageSize,
	})
	if err != nil {
		return transport.EquipmentListResponse{}, err
	}

	responses := make([]transport.EquipmentResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, toEquipmentResponse(item))
	}

	totalPages := (total + pageSize - 1) / pageSize
	return transport.EquipmentListResponse{
		Items:      responses,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// SetNextPreventiveDate records the next planned preventive occurrence on the
// equipment row. Called by the plans module when orders are generated.
func (s *Service) SetNextPreventiveDate(ctx context.Context, equipmentID uuid.UUID, next time.Time) error {
	return s.repo.SetMaintenanceDates(ctx, equipmentID, repository.MaintenanceDates{NextPreventive: &next})
}

// RecordPreventiveCompletion marks when preventive work last finished.
func (s *Service) RecordPreventiveCompletion(ctx context.Context, equipmentID uuid.UUID, completedAt time.Time) error {
	return s.repo.SetMaintenanceDates(ctx, equipmentID, repository.MaintenanceDates{LastPreventive: &completedAt})
}

// RecordCorrectiveCompletion marks when corrective work last finished.
func (s *Service) RecordCorrectiveCompletion(ctx context.Context, equipmentID uuid.UUID, completedAt time.Time) error {
	return s.repo.SetMaintenanceDates(ctx, equipmentID, repository.MaintenanceDates{LastCorrective: &completedAt})
}

func toEquipmentResponse(e repository.Equipment) transport.EquipmentResponse {
	return transport.EquipmentResponse{
		ID:                 e.ID,
		Name:               e.Name,
		Code:               e.Code,
		Description:        e.Description,
		Model:              e.Model,
		Manufacturer:       e.Manufacturer,
		SerialNumber:       e.SerialNumber,
		AcquisitionDate:    formatDate(e.AcquisitionDate),
		AcquisitionCost:    e.AcquisitionCost,
		Location:           e.Location,
		Status:             e.Status,
		Criticality:        e.Criticality,
		Power:              e.Power,
		Capacity:           e.Capacity,
		Voltage:            e.Voltage,
		FuelType:           e.FuelType,
		Dimensions:         e.Dimensions,
		LastPreventiveDate: formatTime(e.LastPreventiveDate),
		LastCorrectiveDate: formatTime(e.LastCorrectiveDate),
		NextPreventiveDate: formatTime(e.NextPreventiveDate),
		CreatedAt:          e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          e.UpdatedAt.Format(time.RFC3339),
	}
}

func parseDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *value)
	if err != nil {
		return nil, apperr.Validation("invalid date, expected YYYY-MM-DD")
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

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	s := strings.TrimSpace(*value)
	return &s
}
