package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is a stocked spare part or consumable.
type Item struct {
	ID              uuid.UUID        `db:"id"`
	Code            string           `db:"code"`
	Name            string           `db:"name"`
	Description     *string          `db:"description"`
	Category        *string          `db:"category"`
	Unit            string           `db:"unit"`
	MinQuantity     decimal.Decimal  `db:"min_quantity"`
	MaxQuantity     *decimal.Decimal `db:"max_quantity"`
	CurrentQuantity decimal.Decimal  `db:"current_quantity"`
	UnitCost        decimal.Decimal  `db:"unit_cost"`
	Supplier        *string          `db:"supplier"`
	LocationID      *uuid.UUID       `db:"location_id"`
	IsActive        bool             `db:"is_active"`
	CreatedBy       *uuid.UUID       `db:"created_by"`
	CreatedAt       time.Time        `db:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at"`
}

// Location is a physical storage location for items.
type Location struct {
	ID          uuid.UUID  `db:"id"`
	Name        string     `db:"name"`
	Description *string    `db:"description"`
	Address     *string    `db:"address"`
	IsActive    bool       `db:"is_active"`
	CreatedBy   *uuid.UUID `db:"created_by"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

// Movement is an append-only stock movement row.
type Movement struct {
	ID            uuid.UUID        `db:"id"`
	ItemID        uuid.UUID        `db:"item_id"`
	MovementType  string           `db:"movement_type"`
	Quantity      decimal.Decimal  `db:"quantity"`
	UnitCost      *decimal.Decimal `db:"unit_cost"`
	ReferenceType *string          `db:"reference_type"`
	ReferenceID   *uuid.UUID       `db:"reference_id"`
	LocationID    *uuid.UUID       `db:"location_id"`
	Notes         *string          `db:"notes"`
	CreatedBy     uuid.UUID        `db:"created_by"`
	CreatedAt     time.Time        `db:"created_at"`
}

// CreateItemParams contains data for registering an item.
type CreateItemParams struct {
	Code            string
	Name            string
	Description     *string
	Category        *string
	Unit            string
	MinQuantity     decimal.Decimal
	MaxQuantity     *decimal.Decimal
	CurrentQuantity decimal.Decimal
	UnitCost        decimal.Decimal
	Supplier        *string
	LocationID      *uuid.UUID
	CreatedBy       uuid.UUID
}

// UpdateItemParams contains data for a partial item update.
type UpdateItemParams struct {
	ID          uuid.UUID
	Name        *string
	Description *string
	Category    *string
	Unit        *string
	MinQuantity *decimal.Decimal
	MaxQuantity *decimal.Decimal
	UnitCost    *decimal.Decimal
	Supplier    *string
	LocationID  *uuid.UUID
	IsActive    *bool
}

// ListItemsParams defines filters for listing items.
type ListItemsParams struct {
	Search     string
	Category   string
	LocationID *uuid.UUID
	ActiveOnly bool
	Offset     int
	Limit      int
}

// CreateLocationParams contains data for registering a location.
type CreateLocationParams struct {
	Name        string
	Description *string
	Address     *string
	CreatedBy   uuid.UUID
}

// UpdateLocationParams contains data for a partial location update.
type UpdateLocationParams struct {
	ID          uuid.UUID
	Name        *string
	Description *string
	Address     *string
	IsActive    *bool
}

// EntryParams records a stock intake.
type EntryParams struct {
	ItemID    uuid.UUID
	Quantity  decimal.Decimal
	UnitCost  *decimal.Decimal
	Notes     *string
	CreatedBy uuid.UUID
}

// AdjustParams sets stock to a counted quantity, recording the delta.
type AdjustParams struct {
	ItemID      uuid.UUID
	NewQuantity decimal.Decimal
	Notes       *string
	CreatedBy   uuid.UUID
}

// TransferParams relocates an item's stock to another storage location.
type TransferParams struct {
	ItemID       uuid.UUID
	ToLocationID uuid.UUID
	Quantity     decimal.Decimal
	Notes        *string
	CreatedBy    uuid.UUID
}

// ListMovementsParams defines filters for the cross-item movement listing.
type ListMovementsParams struct {
	ItemID        *uuid.UUID
	MovementType  string
	ReferenceType string
	ReferenceID   *uuid.UUID
	Offset        int
	Limit         int
}

// MovementDetail is a movement row joined with its item identity, used by the
// cross-item listing.
type MovementDetail struct {
	Movement
	ItemName string
	ItemCode string
}

// ExitLine is one consumption line of a reconciliation batch.
type ExitLine struct {
	ItemID   uuid.UUID
	Quantity decimal.Decimal
}

// ExitResult reports the post-deduction quantity of one line.
type ExitResult struct {
	ItemID      uuid.UUID
	NewQuantity decimal.Decimal
}

// Repository defines persistence operations for the inventory.
type Repository interface {
	CreateItem(ctx context.Context, params CreateItemParams) (Item, error)
	UpdateItem(ctx context.Context, params UpdateItemParams) (Item, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
	GetItemByID(ctx context.Context, id uuid.UUID) (Item, error)
	ListItems(ctx context.Context, params ListItemsParams) ([]Item, int, error)
	// FindItemByCode matches the exact code of an active item.
	FindItemByCode(ctx context.Context, code string) (Item, error)
	// FindItemByNameLike matches active items by name containment, earliest
	// registered first.
	FindItemByNameLike(ctx context.Context, name string) (Item, error)
	ListLowStock(ctx context.Context) ([]Item, error)

	CreateLocation(ctx context.Context, params CreateLocationParams) (Location, error)
	UpdateLocation(ctx context.Context, params UpdateLocationParams) (Location, error)
	DeleteLocation(ctx context.Context, id uuid.UUID) error
	ListLocations(ctx context.Context) ([]Location, error)

	RegisterEntry(ctx context.Context, params EntryParams) (Item, error)
	Adjust(ctx context.Context, params AdjustParams) (Item, error)
	// Transfer moves stock to another location without changing the total
	// quantity; the move is recorded as a transfer movement.
	Transfer(ctx context.Context, params TransferParams) (Item, error)
	ListMovementsByItem(ctx context.Context, itemID uuid.UUID, limit int) ([]Movement, error)
	ListMovements(ctx context.Context, params ListMovementsParams) ([]MovementDetail, int, error)
	// CommitExits applies a reconciliation batch in one transaction: an exit
	// movement plus a quantity decrement per line. A prior exit for the same
	// reference fails with Conflict; an over-deduction fails with Stock.
	CommitExits(ctx context.Context, refType string, refID uuid.UUID, actorID uuid.UUID, lines []ExitLine) ([]ExitResult, error)
}
