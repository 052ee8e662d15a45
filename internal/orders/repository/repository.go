package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cmms_backend/platform/apperr"
)

const orderNotFoundMessage = "maintenance order not found"

const orderColumns = `mo.id, mo.plan_id, mo.equipment_id, mo.type, mo.priority,
	mo.description, mo.instructions, mo.status, mo.assigned_to, mo.scheduled_date,
	mo.started_at, mo.completed_date, mo.execution_time, mo.observations, mo.parts_used,
	mo.paused_at, mo.pause_reason, mo.total_paused_time, mo.resume_count,
	mo.cancel_reason, mo.cancelled_at, mo.cancelled_by, mo.created_by,
	mo.created_at, mo.updated_at,
	e.name, e.code`

const orderFrom = ` FROM maintenance_orders mo JOIN equipment e ON e.id = mo.equipment_id`

// Repo implements the orders repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new orders repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.PlanID, &o.EquipmentID, &o.Type, &o.Priority,
		&o.Description, &o.Instructions, &o.Status, &o.AssignedTo, &o.ScheduledDate,
		&o.StartedAt, &o.CompletedDate, &o.ExecutionTime, &o.Observations, &o.PartsUsed,
		&o.PausedAt, &o.PauseReason, &o.TotalPausedTime, &o.ResumeCount,
		&o.CancelReason, &o.CancelledAt, &o.CancelledBy, &o.CreatedBy,
		&o.CreatedAt, &o.UpdatedAt,
		&o.EquipmentName, &o.EquipmentCode,
	)
	return o, err
}

// GetByID retrieves an order with its equipment display fields.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Order, error) {
	query := `SELECT ` + orderColumns + orderFrom + ` WHERE mo.id = $1`

	o, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, apperr.NotFound(orderNotFoundMessage)
		}
		return Order{}, fmt.Errorf("get order by id: %w", err)
	}
	return o, nil
}

// List retrieves orders with filters and pagination.
func (r *Repo) List(ctx context.Context, params ListOrdersParams) ([]Order, int, error) {
	whereClauses := []string{"TRUE"}
	args := []interface{}{}
	argPos := 1

	if params.Status != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("mo.status = $%d", argPos))
		args = append(args, params.Status)
		argPos++
	}
	if params.EquipmentID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("mo.equipment_id = $%d", argPos))
		args = append(args, *params.EquipmentID)
		argPos++
	}
	if params.PlanID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("mo.plan_id = $%d", argPos))
		args = append(args, *params.PlanID)
		argPos++
	}
	if params.AssignedTo != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("mo.assigned_to = $%d", argPos))
		args = append(args, *params.AssignedTo)
		argPos++
	}
	if params.From != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("mo.scheduled_date >= $%d", argPos))
		args = append(args, *params.From)
		argPos++
	}
	if params.To != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("mo.scheduled_date <= $%d", argPos))
		args = append(args, *params.To)
		argPos++
	}

	where := strings.Join(whereClauses, " AND ")

	var total int
	countQuery := `SELECT COUNT(*)` + orderFrom + ` WHERE ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s%s WHERE %s ORDER BY mo.scheduled_date DESC LIMIT $%d OFFSET $%d`,
		orderColumns, orderFrom, where, argPos, argPos+1)
	args = append(args, params.Limit, params.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	items := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		items = append(items, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate orders: %w", err)
	}
	return items, total, nil
}

// ListByScheduleRange returns orders scheduled inside [from, to], for the
// calendar view.
func (r *Repo) ListByScheduleRange(ctx context.Context, from, to time.Time) ([]Order, error) {
	query := `SELECT ` + orderColumns + orderFrom + `
		WHERE mo.scheduled_date BETWEEN $1 AND $2
		ORDER BY mo.scheduled_date ASC`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("list orders by range: %w", err)
	}
	defer rows.Close()

	items := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		items = append(items, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return items, nil
}

// Delete removes an order.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM maintenance_orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(orderNotFoundMessage)
	}
	return nil
}

// SaveExecution persists the lifecycle snapshot after start/pause/resume.
// The pause reason always reflects the current transition: resuming or
// restarting clears it together with paused_at.
func (r *Repo) SaveExecution(ctx context.Context, id uuid.UUID, state ExecutionState) error {
	query := `
		UPDATE maintenance_orders
		SET status = $2,
			started_at = $3,
			paused_at = $4,
			pause_reason = $5,
			total_paused_time = $6,
			resume_count = $7,
			updated_at = now()
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id,
		state.Status, state.StartedAt, state.PausedAt, state.PauseReason,
		state.TotalPausedTime, state.ResumeCount)
	if err != nil {
		return fmt.Errorf("save order execution: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(orderNotFoundMessage)
	}
	return nil
}

// Complete finalizes the order unless a racing caller already did. The status
// guard makes two concurrent completes resolve to exactly one winner.
func (r *Repo) Complete(ctx context.Context, params CompleteOrderParams) (bool, error) {
	query := `
		UPDATE maintenance_orders
		SET status = 'completed',
			completed_date = $2,
			execution_time = $3,
			observations = COALESCE($4, observations),
			parts_used = COALESCE($5, parts_used),
			paused_at = NULL,
			pause_reason = NULL,
			updated_at = now()
		WHERE id = $1 AND status NOT IN ('completed', 'cancelled')`

	result, err := r.pool.Exec(ctx, query, params.ID,
		params.CompletedAt, params.ExecutionTime, params.Observations, params.PartsUsed)
	if err != nil {
		return false, fmt.Errorf("complete order: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// Cancel marks the order cancelled unless it is already terminal.
func (r *Repo) Cancel(ctx context.Context, params CancelOrderParams) (bool, error) {
	query := `
		UPDATE maintenance_orders
		SET status = 'cancelled',
			cancel_reason = $2,
			cancelled_at = $3,
			cancelled_by = $4,
			paused_at = NULL,
			pause_reason = NULL,
			updated_at = now()
		WHERE id = $1 AND status NOT IN ('completed', 'cancelled')`

	result, err := r.pool.Exec(ctx, query, params.ID, params.Reason, params.CancelledAt, params.CancelledBy)
	if err != nil {
		return false, fmt.Errorf("cancel order: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// AddHistory appends an audit row for the order.
func (r *Repo) AddHistory(ctx context.Context, params HistoryParams) error {
	query := `
		INSERT INTO maintenance_history (order_id, equipment_id, action, notes, performed_by)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.pool.Exec(ctx, query,
		params.OrderID, params.EquipmentID, params.Action, params.Notes, params.PerformedBy); err != nil {
		return fmt.Errorf("add order history: %w", err)
	}
	return nil
}
