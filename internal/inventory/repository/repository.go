package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"cmms_backend/platform/apperr"
)

const (
	itemNotFoundMessage     = "inventory item not found"
	locationNotFoundMessage = "inventory location not found"
)

const itemColumns = `id, code, name, description, category, unit,
	min_quantity, max_quantity, current_quantity, unit_cost, supplier,
	location_id, is_active, created_by, created_at, updated_at`

const locationColumns = `id, name, description, address, is_active, created_by, created_at, updated_at`

const movementColumns = `id, item_id, movement_type, quantity, unit_cost,
	reference_type, reference_id, location_id, notes, created_by, created_at`

// Repo implements the inventory repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new inventory repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

func scanItem(row pgx.Row) (Item, error) {
	var i Item
	err := row.Scan(
		&i.ID, &i.Code, &i.Name, &i.Description, &i.Category, &i.Unit,
		&i.MinQuantity, &i.MaxQuantity, &i.CurrentQuantity, &i.UnitCost, &i.Supplier,
		&i.LocationID, &i.IsActive, &i.CreatedBy, &i.CreatedAt, &i.UpdatedAt,
	)
	return i, err
}

func scanLocation(row pgx.Row) (Location, error) {
	var l Location
	err := row.Scan(&l.ID, &l.Name, &l.Description, &l.Address, &l.IsActive,
		&l.CreatedBy, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

// CreateItem registers a new item.
func (r *Repo) CreateItem(ctx context.Context, params CreateItemParams) (Item, error) {
	query := `
		INSERT INTO inventory_items (code, name, description, category, unit,
			min_quantity, max_quantity, current_quantity, unit_cost, supplier, location_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + itemColumns

	item, err := scanItem(r.pool.QueryRow(ctx, query,
		params.Code, params.Name, params.Description, params.Category, params.Unit,
		params.MinQuantity, params.MaxQuantity, params.CurrentQuantity, params.UnitCost,
		params.Supplier, params.LocationID, params.CreatedBy))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return Item{}, apperr.Conflict("item code already in use")
			case "23503":
				return Item{}, apperr.Validation("location not found")
			}
		}
		return Item{}, fmt.Errorf("create item: %w", err)
	}
	return item, nil
}

// UpdateItem applies a partial update. Nil fields keep their current value.
func (r *Repo) UpdateItem(ctx context.Context, params UpdateItemParams) (Item, error) {
	query := `
		UPDATE inventory_items SET
			name = COALESCE($2, name),
			description = COALESCE($3, description),
			category = COALESCE($4, category),
			unit = COALESCE($5, unit),
			min_quantity = COALESCE($6, min_quantity),
			max_quantity = COALESCE($7, max_quantity),
			unit_cost = COALESCE($8, unit_cost),
			supplier = COALESCE($9, supplier),
			location_id = COALESCE($10, location_id),
			is_active = COALESCE($11, is_active),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + itemColumns

	item, err := scanItem(r.pool.QueryRow(ctx, query,
		params.ID, params.Name, params.Description, params.Category, params.Unit,
		params.MinQuantity, params.MaxQuantity, params.UnitCost, params.Supplier,
		params.LocationID, params.IsActive))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, apperr.NotFound(itemNotFoundMessage)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Item{}, apperr.Validation("location not found")
		}
		return Item{}, fmt.Errorf("update item: %w", err)
	}
	return item, nil
}

// DeleteItem removes an item. Items referenced by movements cannot be removed.
func (r *Repo) DeleteItem(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM inventory_items WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperr.Conflict("item has recorded movements, deactivate it instead")
		}
		return fmt.Errorf("delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(itemNotFoundMessage)
	}
	return nil
}

// GetItemByID retrieves an item.
func (r *Repo) GetItemByID(ctx context.Context, id uuid.UUID) (Item, error) {
	item, err := scanItem(r.pool.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM inventory_items WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, apperr.NotFound(itemNotFoundMessage)
		}
		return Item{}, fmt.Errorf("get item by id: %w", err)
	}
	return item, nil
}

// ListItems retrieves items with filters and pagination.
func (r *Repo) ListItems(ctx context.Context, params ListItemsParams) ([]Item, int, error) {
	whereClauses := []string{"TRUE"}
	args := []interface{}{}
	argPos := 1

	if params.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("(name ILIKE $%d OR code ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+params.Search+"%")
		argPos++
	}
	if params.Category != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("category = $%d", argPos))
		args = append(args, params.Category)
		argPos++
	}
	if params.LocationID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("location_id = $%d", argPos))
		args = append(args, *params.LocationID)
		argPos++
	}
	if params.ActiveOnly {
		whereClauses = append(whereClauses, "is_active")
	}

	where := strings.Join(whereClauses, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM inventory_items WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count items: %w", err)
	}

	query := `SELECT ` + itemColumns + ` FROM inventory_items WHERE ` + where +
		fmt.Sprintf(` ORDER BY name ASC LIMIT $%d OFFSET $%d`, argPos, argPos+1)
	args = append(args, params.Limit, params.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate items: %w", err)
	}
	return items, total, nil
}

// FindItemByCode matches the exact code of an active item.
func (r *Repo) FindItemByCode(ctx context.Context, code string) (Item, error) {
	item, err := scanItem(r.pool.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM inventory_items WHERE code = $1 AND is_active`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, apperr.NotFound(itemNotFoundMessage)
		}
		return Item{}, fmt.Errorf("find item by code: %w", err)
	}
	return item, nil
}

// FindItemByNameLike matches active items by name containment, earliest
// registered first.
func (r *Repo) FindItemByNameLike(ctx context.Context, name string) (Item, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items
		WHERE name ILIKE $1 AND is_active
		ORDER BY created_at ASC
		LIMIT 1`

	item, err := scanItem(r.pool.QueryRow(ctx, query, "%"+name+"%"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, apperr.NotFound(itemNotFoundMessage)
		}
		return Item{}, fmt.Errorf("find item by name: %w", err)
	}
	return item, nil
}

// ListLowStock returns active items whose quantity dropped below the minimum.
func (r *Repo) ListLowStock(ctx context.Context) ([]Item, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items
		WHERE is_active AND current_quantity < min_quantity
		ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan low stock item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate low stock items: %w", err)
	}
	return items, nil
}

// CreateLocation registers a new storage location.
func (r *Repo) CreateLocation(ctx context.Context, params CreateLocationParams) (Location, error) {
	query := `
		INSERT INTO inventory_locations (name, description, address, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + locationColumns

	loc, err := scanLocation(r.pool.QueryRow(ctx, query,
		params.Name, params.Description, params.Address, params.CreatedBy))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Location{}, apperr.Conflict("location name already in use")
		}
		return Location{}, fmt.Errorf("create location: %w", err)
	}
	return loc, nil
}

// UpdateLocation applies a partial update.
func (r *Repo) UpdateLocation(ctx context.Context, params UpdateLocationParams) (Location, error) {
	query := `
		UPDATE inventory_locations SET
			name = COALESCE($2, name),
			description = COALESCE($3, description),
			address = COALESCE($4, address),
			is_active = COALESCE($5, is_active),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + locationColumns

	loc, err := scanLocation(r.pool.QueryRow(ctx, query,
		params.ID, params.Name, params.Description, params.Address, params.IsActive))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Location{}, apperr.NotFound(locationNotFoundMessage)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Location{}, apperr.Conflict("location name already in use")
		}
		return Location{}, fmt.Errorf("update location: %w", err)
	}
	return loc, nil
}

// DeleteLocation removes a location unless items still reference it.
func (r *Repo) DeleteLocation(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM inventory_locations WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperr.Conflict("location still holds items")
		}
		return fmt.Errorf("delete location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(locationNotFoundMessage)
	}
	return nil
}

// ListLocations returns all locations.
func (r *Repo) ListLocations(ctx context.Context) ([]Location, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+locationColumns+` FROM inventory_locations ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	locations := []Location{}
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		locations = append(locations, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate locations: %w", err)
	}
	return locations, nil
}

// RegisterEntry adds stock and records an entry movement in one transaction.
func (r *Repo) RegisterEntry(ctx context.Context, params EntryParams) (Item, error) {
	if !params.Quantity.IsPositive() {
		return Item{}, apperr.Validation("entry quantity must be positive")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Item{}, fmt.Errorf("begin entry: %w", err)
	}
	defer tx.Rollback(ctx)

	item, err := scanItem(tx.QueryRow(ctx, `
		UPDATE inventory_items SET
			current_quantity = current_quantity + $2,
			unit_cost = COALESCE($3, unit_cost),
			updated_at = now()
		WHERE id = $1
		RETURNING `+itemColumns,
		params.ItemID, params.Quantity, params.UnitCost))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, apperr.NotFound(itemNotFoundMessage)
		}
		return Item{}, fmt.Errorf("apply entry: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO inventory_movements (item_id, movement_type, quantity, unit_cost, reference_type, location_id, notes, created_by)
		VALUES ($1, 'entry', $2, $3, 'purchase', $4, $5, $6)`,
		params.ItemID, params.Quantity, params.UnitCost, item.LocationID, params.Notes, params.CreatedBy); err != nil {
		return Item{}, fmt.Errorf("record entry movement: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Item{}, fmt.Errorf("commit entry: %w", err)
	}
	return item, nil
}

// Adjust sets stock to a counted quantity and records the signed delta as an
// adjustment movement, in one transaction.
func (r *Repo) Adjust(ctx context.Context, params AdjustParams) (Item, error) {
	if params.NewQuantity.IsNegative() {
		return Item{}, apperr.Validation("adjusted quantity cannot be negative")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Item{}, fmt.Errorf("begin adjustment: %w", err)
	}
	defer tx.Rollback(ctx)

	var before decimal.Decimal
	if err := tx.QueryRow(ctx,
		`SELECT current_quantity FROM inventory_items WHERE id = $1 FOR UPDATE`,
		params.ItemID).Scan(&before); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, apperr.NotFound(itemNotFoundMessage)
		}
		return Item{}, fmt.Errorf("lock item for adjustment: %w", err)
	}

	item, err := scanItem(tx.QueryRow(ctx, `
		UPDATE inventory_items SET current_quantity = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+itemColumns,
		params.ItemID, params.NewQuantity))
	if err != nil {
		return Item{}, fmt.Errorf("apply adjustment: %w", err)
	}

	delta := params.NewQuantity.Sub(before)
	if _, err := tx.Exec(ctx, `
		INSERT INTO inventory_movements (item_id, movement_type, quantity, reference_type, location_id, notes, created_by)
		VALUES ($1, 'adjustment', $2, 'adjustment', $3, $4, $5)`,
		params.ItemID, delta, item.LocationID, params.Notes, params.CreatedBy); err != nil {
		return Item{}, fmt.Errorf("record adjustment movement: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Item{}, fmt.Errorf("commit adjustment: %w", err)
	}
	return item, nil
}

// Transfer relocates stock to another location in one transaction. The total
// quantity stays unchanged; the move is recorded as a transfer movement
// pointing at the destination.
func (r *Repo) Transfer(ctx context.Context, params TransferParams) (Item, error) {
	if !params.Quantity.IsPositive() {
		return Item{}, apperr.Validation("transfer quantity must be positive")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Item{}, fmt.Errorf("begin transfer: %w", err)
	}
	defer tx.Rollback(ctx)

	var current decimal.Decimal
	var fromLocation *uuid.UUID
	if err := tx.QueryRow(ctx,
		`SELECT current_quantity, location_id FROM inventory_items WHERE id = $1 FOR UPDATE`,
		params.ItemID).Scan(&current, &fromLocation); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, apperr.NotFound(itemNotFoundMessage)
		}
		return Item{}, fmt.Errorf("lock item for transfer: %w", err)
	}

	if fromLocation != nil && *fromLocation == params.ToLocationID {
		return Item{}, apperr.Validation("item is already stored at this location")
	}
	if params.Quantity.GreaterThan(current) {
		return Item{}, apperr.Stock("insufficient stock")
	}

	item, err := scanItem(tx.QueryRow(ctx, `
		UPDATE inventory_items SET location_id = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+itemColumns,
		params.ItemID, params.ToLocationID))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Item{}, apperr.Validation("location not found")
		}
		return Item{}, fmt.Errorf("apply transfer: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO inventory_movements (item_id, movement_type, quantity, reference_type, location_id, notes, created_by)
		VALUES ($1, 'transfer', $2, 'transfer', $3, $4, $5)`,
		params.ItemID, params.Quantity, params.ToLocationID, params.Notes, params.CreatedBy); err != nil {
		return Item{}, fmt.Errorf("record transfer movement: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Item{}, fmt.Errorf("commit transfer: %w", err)
	}
	return item, nil
}

// ListMovementsByItem returns the latest movements of an item, newest first.
func (r *Repo) ListMovementsByItem(ctx context.Context, itemID uuid.UUID, limit int) ([]Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM inventory_movements
		WHERE item_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, itemID, limit)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	movements := []Movement{}
	for rows.Next() {
		var m Movement
		if err := rows.Scan(&m.ID, &m.ItemID, &m.MovementType, &m.Quantity, &m.UnitCost,
			&m.ReferenceType, &m.ReferenceID, &m.LocationID, &m.Notes, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movements: %w", err)
	}
	return movements, nil
}

// ListMovements returns movements across all items with filters and
// pagination, newest first, joined with the item's name and code.
func (r *Repo) ListMovements(ctx context.Context, params ListMovementsParams) ([]MovementDetail, int, error) {
	whereClauses := []string{"TRUE"}
	args := []interface{}{}
	argPos := 1

	if params.ItemID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("m.item_id = $%d", argPos))
		args = append(args, *params.ItemID)
		argPos++
	}
	if params.MovementType != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("m.movement_type = $%d", argPos))
		args = append(args, params.MovementType)
		argPos++
	}
	if params.ReferenceType != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("m.reference_type = $%d", argPos))
		args = append(args, params.ReferenceType)
		argPos++
	}
	if params.ReferenceID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("m.reference_id = $%d", argPos))
		args = append(args, *params.ReferenceID)
		argPos++
	}

	where := strings.Join(whereClauses, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM inventory_movements m WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movements: %w", err)
	}

	query := `
		SELECT m.id, m.item_id, m.movement_type, m.quantity, m.unit_cost,
			m.reference_type, m.reference_id, m.location_id, m.notes, m.created_by, m.created_at,
			i.name, i.code
		FROM inventory_movements m
		JOIN inventory_items i ON i.id = m.item_id
		WHERE ` + where +
		fmt.Sprintf(` ORDER BY m.created_at DESC LIMIT $%d OFFSET $%d`, argPos, argPos+1)
	args = append(args, params.Limit, params.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list all movements: %w", err)
	}
	defer rows.Close()

	movements := []MovementDetail{}
	for rows.Next() {
		var m MovementDetail
		if err := rows.Scan(&m.ID, &m.ItemID, &m.MovementType, &m.Quantity, &m.UnitCost,
			&m.ReferenceType, &m.ReferenceID, &m.LocationID, &m.Notes, &m.CreatedBy, &m.CreatedAt,
			&m.ItemName, &m.ItemCode); err != nil {
			return nil, 0, fmt.Errorf("scan movement detail: %w", err)
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate movement details: %w", err)
	}
	return movements, total, nil
}

// CommitExits applies a reconciliation batch in one transaction. A prior exit
// for the same reference means the batch already ran and fails with Conflict;
// a decrement that would go negative fails with Stock and rolls back all.
func (r *Repo) CommitExits(ctx context.Context, refType string, refID uuid.UUID, actorID uuid.UUID, lines []ExitLine) ([]ExitResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin exits: %w", err)
	}
	defer tx.Rollback(ctx)

	var priorExits int
	if err := tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM inventory_movements
		WHERE movement_type = 'exit' AND reference_type = $1 AND reference_id = $2`,
		refType, refID).Scan(&priorExits); err != nil {
		return nil, fmt.Errorf("check prior exits: %w", err)
	}
	if priorExits > 0 {
		return nil, apperr.Conflict("parts already deducted for this reference")
	}

	results := make([]ExitResult, 0, len(lines))
	for _, line := range lines {
		var newQuantity decimal.Decimal
		err := tx.QueryRow(ctx, `
			UPDATE inventory_items SET
				current_quantity = current_quantity - $2,
				updated_at = now()
			WHERE id = $1 AND current_quantity >= $2
			RETURNING current_quantity`,
			line.ItemID, line.Quantity).Scan(&newQuantity)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperr.Stock("insufficient stock")
			}
			return nil, fmt.Errorf("deduct item %s: %w", line.ItemID, err)
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO inventory_movements (item_id, movement_type, quantity, reference_type, reference_id, created_by)
			VALUES ($1, 'exit', $2, $3, $4, $5)`,
			line.ItemID, line.Quantity, refType, refID, actorID); err != nil {
			return nil, fmt.Errorf("record exit movement: %w", err)
		}

		results = append(results, ExitResult{ItemID: line.ItemID, NewQuantity: newQuantity})
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit exits: %w", err)
	}
	return results, nil
}
