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

	"cmms_backend/platform/apperr"
)

const (
	equipmentNotFoundMessage = "equipment not found"
	equipmentCodeTakenMsg    = "equipment code already in use"
)

const equipmentColumns = `id, name, code, description, model, manufacturer, serial_number,
	acquisition_date, acquisition_cost, location, status, criticality,
	power, capacity, voltage, fuel_type, dimensions,
	last_preventive_date, last_corrective_date, next_preventive_date,
	created_at, updated_at`

// Repo implements the equipment repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new equipment repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

func scanEquipment(row pgx.Row) (Equipment, error) {
	var e Equipment
	err := row.Scan(
		&e.ID, &e.Name, &e.Code, &e.Description, &e.Model, &e.Manufacturer, &e.SerialNumber,
		&e.AcquisitionDate, &e.AcquisitionCost, &e.Location, &e.Status, &e.Criticality,
		&e.Power, &e.Capacity, &e.Voltage, &e.FuelType, &e.Dimensions,
		&e.LastPreventiveDate, &e.LastCorrectiveDate, &e.NextPreventiveDate,
		&e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

// Create registers a new piece of equipment.
func (r *Repo) Create(ctx context.Context, params CreateEquipmentParams) (Equipment, error) {
	query := `
		INSERT INTO equipment (name, code, description, model, manufacturer, serial_number,
			acquisition_date, acquisition_cost, location, status, criticality,
			power, capacity, voltage, fuel_type, dimensions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING ` + equipmentColumns

	e, err := scanEquipment(r.pool.QueryRow(ctx, query,
		params.Name, params.Code, params.Description, params.Model, params.Manufacturer,
		params.SerialNumber, params.AcquisitionDate, params.AcquisitionCost, params.Location,
		params.Status, params.Criticality, params.Power, params.Capacity, params.Voltage,
		params.FuelType, params.Dimensions,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Equipment{}, apperr.Conflict(equipmentCodeTakenMsg)
		}
		return Equipment{}, fmt.Errorf("create equipment: %w", err)
	}
	return e, nil
}

// Update applies a partial update to an equipment row.
func (r *Repo) Update(ctx context.Context, params UpdateEquipmentParams) (Equipment, error) {
	query := `
		UPDATE equipment
		SET name = COALESCE($2, name),
			code = COALESCE($3, code),
			description = COALESCE($4, description),
			model = COALESCE($5, model),
			manufacturer = COALESCE($6, manufacturer),
			serial_number = COALESCE($7, serial_number),
			acquisition_date = COALESCE($8, acquisition_date),
			acquisition_cost = COALESCE($9, acquisition_cost),
			location = COALESCE($10, location),
			status = COALESCE($11, status),
			criticality = COALESCE($12, criticality),
			power = COALESCE($13, power),
			capacity = COALESCE($14, capacity),
			voltage = COALESCE($15, voltage),
			fuel_type = COALESCE($16, fuel_type),
			dimensions = COALESCE($17, dimensions),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + equipmentColumns

	e, err := scanEquipment(r.pool.QueryRow(ctx, query,
		params.ID, params.Name, params.Code, params.Description, params.Model,
		params.Manufacturer, params.SerialNumber, params.AcquisitionDate, params.AcquisitionCost,
		params.Location, params.Status, params.Criticality, params.Power, params.Capacity,
		params.Voltage, params.FuelType, params.Dimensions,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Equipment{}, apperr.NotFound(equipmentNotFoundMessage)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Equipment{}, apperr.Conflict(equipmentCodeTakenMsg)
		}
		return Equipment{}, fmt.Errorf("update equipment: %w", err)
	}
	return e, nil
}

// Delete removes an equipment row. Equipment referenced by plans, orders or
// calls is protected by foreign keys and reported as a conflict.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM equipment WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperr.Conflict("equipment has maintenance records and cannot be deleted")
		}
		return fmt.Errorf("delete equipment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(equipmentNotFoundMessage)
	}
	return nil
}

// GetByID retrieves equipment by ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Equipment, error) {
	query := `SELECT ` + equipmentColumns + ` FROM equipment WHERE id = $1`

	e, err := scanEquipment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Equipment{}, apperr.NotFound(equipmentNotFoundMessage)
		}
		return Equipment{}, fmt.Errorf("get equipment by id: %w", err)
	}
	return e, nil
}

// List retrieves equipment with filters and pagination.
func (r *Repo) List(ctx context.Context, params ListEquipmentParams) ([]Equipment, int, error) {
	whereClauses := []string{"TRUE"}
	args := []interface{}{}
	argPos := 1

	if params.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(name ILIKE $%d OR code ILIKE $%d OR location ILIKE $%d)", argPos, argPos, argPos))
		args = append(args, "%"+params.Search+"%")
		argPos++
	}
	if params.Status != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("status = $%d", argPos))
		args = append(args, params.Status)
		argPos++
	}
	if params.Criticality != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("criticality = $%d", argPos))
		args = append(args, params.Criticality)
		argPos++
	}

	where := strings.Join(whereClauses, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM equipment WHERE ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count equipment: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM equipment WHERE %s ORDER BY name ASC LIMIT $%d OFFSET $%d`,
		equipmentColumns, where, argPos, argPos+1)
	args = append(args, params.Limit, params.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list equipment: %w", err)
	}
	defer rows.Close()

	items := make([]Equipment, 0)
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan equipment: %w", err)
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate equipment: %w", err)
	}
	return items, total, nil
}

// SetMaintenanceDates records preventive/corrective schedule markers on the
// equipment row. Nil fields are left untouched.
func (r *Repo) SetMaintenanceDates(ctx context.Context, id uuid.UUID, dates MaintenanceDates) error {
	query := `
		UPDATE equipment
		SET last_preventive_date = COALESCE($2, last_preventive_date),
			next_preventive_date = COALESCE($3, next_preventive_date),
			last_corrective_date = COALESCE($4, last_corrective_date),
			updated_at = now()
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, dates.LastPreventive, dates.NextPreventive, dates.LastCorrective)
	if err != nil {
		return fmt.Errorf("set maintenance dates: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(equipmentNotFoundMessage)
	}
	return nil
}
