package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"cmms_backend/platform/apperr"
)

const planNotFoundMessage = "preventive plan not found"

const planColumns = `id, name, equipment_id, frequency_type, frequency_value,
	start_date, end_date, instructions, estimated_duration,
	tools_required, materials_required, safety_procedures, manual_reference,
	assigned_to, is_active, created_by, created_at, updated_at`

// Repo implements the plans repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new plans repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

func scanPlan(row pgx.Row) (Plan, error) {
	var p Plan
	err := row.Scan(
		&p.ID, &p.Name, &p.EquipmentID, &p.FrequencyType, &p.FrequencyValue,
		&p.StartDate, &p.EndDate, &p.Instructions, &p.EstimatedDuration,
		&p.ToolsRequired, &p.MaterialsRequired, &p.SafetyProcedures, &p.ManualReference,
		&p.AssignedTo, &p.IsActive, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// Create inserts a new preventive plan.
func (r *Repo) Create(ctx context.Context, params CreatePlanParams) (Plan, error) {
	query := `
		INSERT INTO preventive_plans (name, equipment_id, frequency_type, frequency_value,
			start_date, end_date, instructions, estimated_duration,
			tools_required, materials_required, safety_procedures, manual_reference,
			assigned_to, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + planColumns

	p, err := scanPlan(r.pool.QueryRow(ctx, query,
		params.Name, params.EquipmentID, params.FrequencyType, params.FrequencyValue,
		params.StartDate, params.EndDate, params.Instructions, params.EstimatedDuration,
		params.ToolsRequired, params.MaterialsRequired, params.SafetyProcedures,
		params.ManualReference, params.AssignedTo, params.CreatedBy,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Plan{}, apperr.Validation("equipment not found")
		}
		return Plan{}, fmt.Errorf("create plan: %w", err)
	}
	return p, nil
}

// Update applies a partial update to a plan.
func (r *Repo) Update(ctx context.Context, params UpdatePlanParams) (Plan, error) {
	query := `
		UPDATE preventive_plans
		SET name = COALESCE($2, name),
			frequency_type = COALESCE($3, frequency_type),
			frequency_value = COALESCE($4, frequency_value),
			start_date = COALESCE($5, start_date),
			end_date = COALESCE($6, end_date),
			instructions = COALESCE($7, instructions),
			estimated_duration = COALESCE($8, estimated_duration),
			tools_required = COALESCE($9, tools_required),
			materials_required = COALESCE($10, materials_required),
			safety_procedures = COALESCE($11, safety_procedures),
			manual_reference = COALESCE($12, manual_reference),
			assigned_to = COALESCE($13, assigned_to),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + planColumns

	p, err := scanPlan(r.pool.QueryRow(ctx, query,
		params.ID, params.Name, params.FrequencyType, params.FrequencyValue,
		params.StartDate, params.EndDate, params.Instructions, params.EstimatedDuration,
		params.ToolsRequired, params.MaterialsRequired, params.SafetyProcedures,
		params.ManualReference, params.AssignedTo,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Plan{}, apperr.NotFound(planNotFoundMessage)
		}
		return Plan{}, fmt.Errorf("update plan: %w", err)
	}
	return p, nil
}

// Delete removes a plan. Orders generated from it keep existing with plan_id
// cleared by the foreign key.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM preventive_plans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(planNotFoundMessage)
	}
	return nil
}

// GetByID retrieves a plan by ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Plan, error) {
	query := `SELECT ` + planColumns + ` FROM preventive_plans WHERE id = $1`

	p, err := scanPlan(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Plan{}, apperr.NotFound(planNotFoundMessage)
		}
		return Plan{}, fmt.Errorf("get plan by id: %w", err)
	}
	return p, nil
}

// List retrieves plans with filters and pagination.
func (r *Repo) List(ctx context.Context, params ListPlansParams) ([]Plan, int, error) {
	whereClauses := []string{"TRUE"}
	args := []interface{}{}
	argPos := 1

	if params.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("name ILIKE $%d", argPos))
		args = append(args, "%"+params.Search+"%")
		argPos++
	}
	if params.EquipmentID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("equipment_id = $%d", argPos))
		args = append(args, *params.EquipmentID)
		argPos++
	}
	if params.ActiveOnly {
		whereClauses = append(whereClauses, "is_active")
	}

	where := strings.Join(whereClauses, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM preventive_plans WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count plans: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM preventive_plans WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		planColumns, where, argPos, argPos+1)
	args = append(args, params.Limit, params.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	items := make([]Plan, 0)
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan plan: %w", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate plans: %w", err)
	}
	return items, total, nil
}

// ListActive returns every active plan, for the generation sweep.
func (r *Repo) ListActive(ctx context.Context) ([]Plan, error) {
	query := `SELECT ` + planColumns + ` FROM preventive_plans WHERE is_active ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active plans: %w", err)
	}
	defer rows.Close()

	items := make([]Plan, 0)
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plans: %w", err)
	}
	return items, nil
}

// ToggleActive flips a plan's active flag and returns the new state.
func (r *Repo) ToggleActive(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE preventive_plans
		SET is_active = NOT is_active, updated_at = now()
		WHERE id = $1
		RETURNING is_active`

	var active bool
	if err := r.pool.QueryRow(ctx, query, id).Scan(&active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, apperr.NotFound(planNotFoundMessage)
		}
		return false, fmt.Errorf("toggle plan: %w", err)
	}
	return active, nil
}

// LastScheduledDate returns the latest scheduled date among the plan's orders.
func (r *Repo) LastScheduledDate(ctx context.Context, planID uuid.UUID) (*time.Time, error) {
	query := `
		SELECT scheduled_date FROM maintenance_orders
		WHERE plan_id = $1
		ORDER BY scheduled_date DESC
		LIMIT 1`

	var scheduled time.Time
	if err := r.pool.QueryRow(ctx, query, planID).Scan(&scheduled); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("last scheduled date: %w", err)
	}
	return &scheduled, nil
}

// InsertGeneratedOrder creates the pending order for a plan occurrence. The
// partial unique index on (plan_id, scheduled_date) makes concurrent
// generation runs collapse onto one row: the losing insert hits the conflict
// clause and the existing id is re-selected.
func (r *Repo) InsertGeneratedOrder(ctx context.Context, params GeneratedOrderParams) (uuid.UUID, bool, error) {
	insert := `
		INSERT INTO maintenance_orders
			(plan_id, equipment_id, type, description, instructions, scheduled_date, assigned_to, created_by)
		VALUES ($1, $2, 'preventive', $3, $4, $5, $6, $7)
		ON CONFLICT (plan_id, scheduled_date) WHERE plan_id IS NOT NULL DO NOTHING
		RETURNING id`

	var id uuid.UUID
	err := r.pool.QueryRow(ctx, insert,
		params.PlanID, params.EquipmentID, params.Description, params.Instructions,
		params.ScheduledDate, params.AssignedTo, params.CreatedBy,
	).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, false, fmt.Errorf("insert generated order: %w", err)
	}

	reselect := `SELECT id FROM maintenance_orders WHERE plan_id = $1 AND scheduled_date = $2`
	if err := r.pool.QueryRow(ctx, reselect, params.PlanID, params.ScheduledDate).Scan(&id); err != nil {
		return uuid.Nil, false, fmt.Errorf("reselect generated order: %w", err)
	}
	return id, false, nil
}
