// Package service provides inventory business logic: item and location
// management, stock entry and adjustment flows, and the parts reconciliation
// that backs order and call completions.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"cmms_backend/internal/events"
	"cmms_backend/internal/inventory/repository"
	"cmms_backend/internal/inventory/transport"
	"cmms_backend/platform/logger"
)

// Service provides business logic for the inventory.
type Service struct {
	repo repository.Repository
	bus  events.Bus
	log  *logger.Logger
}

// New creates a new inventory service.
func New(repo repository.Repository, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, log: log}
}

// CreateItem registers an item. The unit defaults to "un".
func (s *Service) CreateItem(ctx context.Context, actorID uuid.UUID, req transport.CreateItemRequest) (transport.ItemResponse, error) {
	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		unit = "un"
	}

	item, err := s.repo.CreateItem(ctx, repository.CreateItemParams{
		Code:            strings.TrimSpace(req.Code),
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		Category:        req.Category,
		Unit:            unit,
		MinQuantity:     req.MinQuantity,
		MaxQuantity:     req.MaxQuantity,
		CurrentQuantity: req.CurrentQuantity,
		UnitCost:        req.UnitCost,
		Supplier:        req.Supplier,
		LocationID:      req.LocationID,
		CreatedBy:       actorID,
	})
	if err != nil {
		return transport.ItemResponse{}, err
	}

	s.log.Info("inventory item created", "id", item.ID, "code", item.Code)
	return toItemResponse(item), nil
}

// UpdateItem applies a partial edit.
func (s *Service) UpdateItem(ctx context.Context, id uuid.UUID, req transport.UpdateItemRequest) (transport.ItemResponse, error) {
	item, err := s.repo.UpdateItem(ctx, repository.UpdateItemParams{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Unit:        req.Unit,
		MinQuantity: req.MinQuantity,
		MaxQuantity: req.MaxQuantity,
		UnitCost:    req.UnitCost,
		Supplier:    req.Supplier,
		LocationID:  req.LocationID,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return transport.ItemResponse{}, err
	}
	return toItemResponse(item), nil
}

// DeleteItem removes an item without movements.
func (s *Service) DeleteItem(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteItem(ctx, id); err != nil {
		return err
	}
	s.log.Info("inventory item deleted", "id", id)
	return nil
}

// GetItemByID retrieves an item.
func (s *Service) GetItemByID(ctx context.Context, id uuid.UUID) (transport.ItemResponse, error) {
	item, err := s.repo.GetItemByID(ctx, id)
	if err != nil {
		return transport.ItemResponse{}, err
	}
	return toItemResponse(item), nil
}

// ListItems retrieves items with filters and pagination.
func (s *Service) ListItems(ctx context.Context, req transport.ListItemsRequest) (transport.ItemListResponse, error) {
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

	items, total, err := s.repo.ListItems(ctx, repository.ListItemsParams{
		Search:     req.Search,
		Category:   req.Category,
		LocationID: req.LocationID,
		ActiveOnly: req.ActiveOnly,
		Offset:     (page - 1) * pageSize,
		Limit:      pageSize,
	})
	if err != nil {
		return transport.ItemListResponse{}, err
	}

	responses := make([]transport.ItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, toItemResponse(item))
	}

	return transport.ItemListResponse{
		Items:      responses,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

// LowStock returns active items below their minimum quantity.
func (s *Service) LowStock(ctx context.Context) ([]transport.ItemResponse, error) {
	items, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]transport.ItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, toItemResponse(item))
	}
	return responses, nil
}

// CreateLocation registers a storage location.
func (s *Service) CreateLocation(ctx context.Context, actorID uuid.UUID, req transport.CreateLocationRequest) (transport.LocationResponse, error) {
	loc, err := s.repo.CreateLocation(ctx, repository.CreateLocationParams{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Address:     req.Address,
		CreatedBy:   actorID,
	})
	if err != nil {
		return transport.LocationResponse{}, err
	}
	return toLocationResponse(loc), nil
}

// UpdateLocation applies a partial edit.
func (s *Service) UpdateLocation(ctx context.Context, id uuid.UUID, req transport.UpdateLocationRequest) (transport.LocationResponse, error) {
	loc, err := s.repo.UpdateLocation(ctx, repository.UpdateLocationParams{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return transport.LocationResponse{}, err
	}
	return toLocationResponse(loc), nil
}

// DeleteLocation removes an empty location.
func (s *Service) DeleteLocation(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteLocation(ctx, id)
}

// ListLocations returns all locations.
func (s *Service) ListLocations(ctx context.Context) ([]transport.LocationResponse, error) {
	locations, err := s.repo.ListLocations(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]transport.LocationResponse, 0, len(locations))
	for _, loc := range locations {
		responses = append(responses, toLocationResponse(loc))
	}
	return responses, nil
}

// RegisterEntry books incoming stock onto an item.
func (s *Service) RegisterEntry(ctx context.Context, itemID uuid.UUID, actorID uuid.UUID, req transport.EntryRequest) (transport.ItemResponse, error) {
	item, err := s.repo.RegisterEntry(ctx, repository.EntryParams{
		ItemID:    itemID,
		Quantity:  req.Quantity,
		UnitCost:  req.UnitCost,
		Notes:     req.Notes,
		CreatedBy: actorID,
	})
	if err != nil {
		return transport.ItemResponse{}, err
	}

	s.log.Info("stock entry registered", "item_id", itemID, "quantity", req.Quantity)
	return toItemResponse(item), nil
}

// Adjust sets an item's stock to a counted quantity.
func (s *Service) Adjust(ctx context.Context, itemID uuid.UUID, actorID uuid.UUID, req transport.AdjustRequest) (transport.ItemResponse, error) {
	item, err := s.repo.Adjust(ctx, repository.AdjustParams{
		ItemID:      itemID,
		NewQuantity: req.Quantity,
		Notes:       req.Notes,
		CreatedBy:   actorID,
	})
	if err != nil {
		return transport.ItemResponse{}, err
	}

	s.log.Info("stock adjusted", "item_id", itemID, "quantity", req.Quantity)
	return toItemResponse(item), nil
}

// Transfer relocates an item's stock to another storage location.
func (s *Service) Transfer(ctx context.Context, itemID uuid.UUID, actorID uuid.UUID, req transport.TransferRequest) (transport.ItemResponse, error) {
	item, err := s.repo.Transfer(ctx, repository.TransferParams{
		ItemID:       itemID,
		ToLocationID: req.LocationID,
		Quantity:     req.Quantity,
		Notes:        req.Notes,
		CreatedBy:    actorID,
	})
	if err != nil {
		return transport.ItemResponse{}, err
	}

	s.log.Info("stock transferred", "item_id", itemID, "location_id", req.LocationID, "quantity", req.Quantity)
	return toItemResponse(item), nil
}

// AllMovements returns movements across all items with filters and pagination.
func (s *Service) AllMovements(ctx context.Context, req transport.ListAllMovementsRequest) (transport.MovementListResponse, error) {
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

	movements, total, err := s.repo.ListMovements(ctx, repository.ListMovementsParams{
		ItemID:        req.ItemID,
		MovementType:  req.Type,
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		Offset:        (page - 1) * pageSize,
		Limit:         pageSize,
	})
	if err != nil {
		return transport.MovementListResponse{}, err
	}

	responses := make([]transport.MovementDetailResponse, 0, len(movements))
	for _, m := range movements {
		responses = append(responses, transport.MovementDetailResponse{
			ID:            m.ID,
			ItemID:        m.ItemID,
			ItemName:      m.ItemName,
			ItemCode:      m.ItemCode,
			MovementType:  m.MovementType,
			Quantity:      m.Quantity,
			UnitCost:      m.UnitCost,
			ReferenceType: m.ReferenceType,
			ReferenceID:   m.ReferenceID,
			LocationID:    m.LocationID,
			Notes:         m.Notes,
			CreatedBy:     m.CreatedBy,
			CreatedAt:     m.CreatedAt.Format(time.RFC3339),
		})
	}

	return transport.MovementListResponse{
		Movements:  responses,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

// Movements returns the latest movements of an item.
func (s *Service) Movements(ctx context.Context, itemID uuid.UUID, limit int) ([]transport.MovementResponse, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	movements, err := s.repo.ListMovementsByItem(ctx, itemID, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]transport.MovementResponse, 0, len(movements))
	for _, m := range movements {
		responses = append(responses, transport.MovementResponse{
			ID:            m.ID,
			ItemID:        m.ItemID,
			MovementType:  m.MovementType,
			Quantity:      m.Quantity,
			UnitCost:      m.UnitCost,
			ReferenceType: m.ReferenceType,
			ReferenceID:   m.ReferenceID,
			LocationID:    m.LocationID,
			Notes:         m.Notes,
			CreatedBy:     m.CreatedBy,
			CreatedAt:     m.CreatedAt.Format(time.RFC3339),
		})
	}
	return responses, nil
}

func toItemResponse(i repository.Item) transport.ItemResponse {
	return transport.ItemResponse{
		ID:              i.ID,
		Code:            i.Code,
		Name:            i.Name,
		Description:     i.Description,
		Category:        i.Category,
		Unit:            i.Unit,
		MinQuantity:     i.MinQuantity,
		MaxQuantity:     i.MaxQuantity,
		CurrentQuantity: i.CurrentQuantity,
		UnitCost:        i.UnitCost,
		Supplier:        i.Supplier,
		LocationID:      i.LocationID,
		IsActive:        i.IsActive,
		LowStock:        i.CurrentQuantity.LessThan(i.MinQuantity),
		CreatedAt:       i.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       i.UpdatedAt.Format(time.RFC3339),
	}
}

func toLocationResponse(l repository.Location) transport.LocationResponse {
	return transport.LocationResponse{
		ID:          l.ID,
		Name:        l.Name,
		Description: l.Description,
		Address:     l.Address,
		IsActive:    l.IsActive,
		CreatedAt:   l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   l.UpdatedAt.Format(time.RFC3339),
	}
}
