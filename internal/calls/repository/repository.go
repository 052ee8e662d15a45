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

const callNotFoundMessage = "maintenance call not found"

const callColumns = `mc.id, mc.equipment_id, mc.type, mc.priority, mc.problem_type, mc.description,
	mc.occurrence_date, mc.status, mc.assigned_to, mc.assigned_at,
	mc.started_at, mc.completed_at, mc.execution_time, mc.execution_notes, mc.parts_used,
	mc.paused_at, mc.pause_reason, mc.total_paused_time, mc.resume_count,
	mc.cancel_reason, mc.cancelled_at, mc.cancelled_by, mc.created_by,
	mc.created_at, mc.updated_at,
	e.name, e.code`

const callFrom = ` FROM maintenance_calls mc JOIN equipment e ON e.id = mc.equipment_id`

// Repo implements the calls repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new calls repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

func scanCall(row pgx.Row) (Call, error) {
	var c Call
	err := row.Scan(
		&c.ID, &c.EquipmentID, &c.Type, &c.Priority, &c.ProblemType, &c.Description,
		&c.OccurrenceDate, &c.Status, &c.AssignedTo, &c.AssignedAt,
		&c.StartedAt, &c.CompletedAt, &c.ExecutionTime, &c.ExecutionNotes, &c.PartsUsed,
		&c.PausedAt, &c.PauseReason, &c.TotalPausedTime, &c.ResumeCount,
		&c.CancelReason, &c.CancelledAt, &c.CancelledBy, &c.CreatedBy,
		&c.CreatedAt, &c.UpdatedAt,
		&c.EquipmentName, &c.EquipmentCode,
	)
	return c, err
}

// Create opens a new maintenance call.
func (r *Repo) Create(ctx context.Context, params CreateCallParams) (Call, error) {
	query := `
		WITH inserted AS (
			INSERT INTO maintenance_calls (equipment_id, type, priority, problem_type, description, occurrence_date, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING *
		)
		SELECT ` + callColumns + `
		FROM inserted mc JOIN equipment e ON e.id = mc.equipment_id`

	c, err := scanCall(r.pool.QueryRow(ctx, query,
		params.EquipmentID, params.Type, params.Priority, params.ProblemType,
		params.Description, params.OccurrenceDate, params.CreatedBy))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Call{}, apperr.Validation("equipment not found")
		}
		return Call{}, fmt.Errorf("create call: %w", err)
	}
	return c, nil
}

// Update applies a partial update. Nil fields keep their current value.
func (r *Repo) Update(ctx context.Context, params UpdateCallParams) (Call, error) {
	query := `
		WITH updated AS (
			UPDATE maintenance_calls SET
				priority = COALESCE($2, priority),
				problem_type = COALESCE($3, problem_type),
				description = COALESCE($4, description),
				status = COALESCE($5, status),
				execution_notes = COALESCE($6, execution_notes),
				parts_used = COALESCE($7, parts_used),
				updated_at = now()
			WHERE id = $1
			RETURNING *
		)
		SELECT ` + callColumns + `
		FROM updated mc JOIN equipment e ON e.id = mc.equipment_id`

	c, err := scanCall(r.pool.QueryRow(ctx, query,
		params.ID, params.Priority, params.ProblemType, params.Description,
		params.Status, params.ExecutionNotes, params.PartsUsed))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Call{}, apperr.NotFound(callNotFoundMessage)
		}
		return Call{}, fmt.Errorf("update call: %w", err)
	}
	return c, nil
}

// Assign sets the responsible technician. Calls still in triage move to the
// assigned status; calls already in execution keep theirs.
func (r *Repo) Assign(ctx context.Context, params AssignCallParams) (Call, error) {
	query := `
		WITH updated AS (
			UPDATE maintenance_calls SET
				assigned_to = $2,
				assigned_at = $3,
				status = CASE WHEN status IN ('open', 'analysis') THEN 'assigned' ELSE status END,
				updated_at = now()
			WHERE id = $1
			RETURNING *
		)
		SELECT ` + callColumns + `
		FROM updated mc JOIN equipment e ON e.id = mc.equipment_id`

	c, err := scanCall(r.pool.QueryRow(ctx, query, params.ID, params.AssignedTo, params.AssignedAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Call{}, apperr.NotFound(callNotFoundMessage)
		}
		return Call{}, fmt.Errorf("assign call: %w", err)
	}
	return c, nil
}

// Delete removes a call, cascading to its history.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM maintenance_calls WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete call: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(callNotFoundMessage)
	}
	return nil
}

// GetByID retrieves a call with its equipment display fields.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Call, error) {
	query := `SELECT ` + callColumns + callFrom + ` WHERE mc.id = $1`

	c, err := scanCall(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Call{}, apperr.NotFound(callNotFoundMessage)
		}
		return Call{}, fmt.Errorf("get call by id: %w", err)
	}
	return c, nil
}

// List retrieves calls with filters, visibility restriction and pagination.
func (r *Repo) List(ctx context.Context, params ListCallsParams) ([]Call, int, error) {
	whereClauses := []string{"TRUE"}
	args := []interface{}{}
	argPos := 1

	if params.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(mc.description ILIKE $%d OR e.name ILIKE $%d OR e.code ILIKE $%d)", argPos, argPos, argPos))
		args = append(args, "%"+params.Search+"%")
		argPos++
	}
	if params.Status != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("mc.status = $%d", argPos))
		args = append(args, params.Status)
		argPos++
	}
	if params.Priority != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("mc.priority = $%d", argPos))
		args = append(args, params.Priority)
		argPos++
	}
	if params.EquipmentID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("mc.equipment_id = $%d", argPos))
		args = append(args, *params.EquipmentID)
		argPos++
	}
	if v := params.Visibility; v != nil {
		switch {
		case v.AssignedOnly:
			whereClauses = append(whereClauses, fmt.Sprintf(
				"(mc.assigned_to = $%d OR mc.created_by = $%d)", argPos, argPos))
			args = append(args, v.UserID)
			argPos++
		case v.CreatedOnly:
			whereClauses = append(whereClauses, fmt.Sprintf("mc.created_by = $%d", argPos))
			args = append(args, v.UserID)
			argPos++
		}
	}

	where := strings.Join(whereClauses, " AND ")

	var total int
	countQuery := `SELECT COUNT(*)` + callFrom + ` WHERE ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count calls: %w", err)
	}

	query := `SELECT ` + callColumns + callFrom + ` WHERE ` + where +
		fmt.Sprintf(` ORDER BY mc.created_at DESC LIMIT $%d OFFSET $%d`, argPos, argPos+1)
	args = append(args, params.Limit, params.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list calls: %w", err)
	}
	defer rows.Close()

	calls := []Call{}
	for rows.Next() {
		c, err := scanCall(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan call: %w", err)
		}
		calls = append(calls, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate calls: %w", err)
	}
	return calls, total, nil
}

// SaveExecution persists the lifecycle snapshot after a start/pause/resume
// transition. The pause reason always reflects the current transition:
// resuming clears it together with paused_at.
func (r *Repo) SaveExecution(ctx context.Context, id uuid.UUID, state ExecutionState) error {
	query := `
		UPDATE maintenance_calls SET
			status = $2,
			started_at = $3,
			paused_at = $4,
			pause_reason = $5,
			total_paused_time = $6,
			resume_count = $7,
			updated_at = now()
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id,
		state.Status, state.StartedAt, state.PausedAt, state.PauseReason,
		state.TotalPausedTime, state.ResumeCount)
	if err != nil {
		return fmt.Errorf("save call execution: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(callNotFoundMessage)
	}
	return nil
}

// Complete finalizes the call unless a racing caller finalized it first.
// Returns false when the guard matched no row.
func (r *Repo) Complete(ctx context.Context, params CompleteCallParams) (bool, error) {
	query := `
		UPDATE maintenance_calls SET
			status = 'completed',
			completed_at = $2,
			execution_time = $3,
			execution_notes = COALESCE($4, execution_notes),
			parts_used = COALESCE($5, parts_used),
			paused_at = NULL,
			pause_reason = NULL,
			updated_at = now()
		WHERE id = $1 AND status NOT IN ('completed', 'cancelled')`

	tag, err := r.pool.Exec(ctx, query,
		params.ID, params.CompletedAt, params.ExecutionTime, params.ExecutionNotes, params.PartsUsed)
	if err != nil {
		return false, fmt.Errorf("complete call: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Cancel abandons the call unless a racing caller finalized it first.
func (r *Repo) Cancel(ctx context.Context, params CancelCallParams) (bool, error) {
	query := `
		UPDATE maintenance_calls SET
			status = 'cancelled',
			cancel_reason = $2,
			cancelled_at = $3,
			cancelled_by = $4,
			paused_at = NULL,
			pause_reason = NULL,
			updated_at = now()
		WHERE id = $1 AND status NOT IN ('completed', 'cancelled')`

	tag, err := r.pool.Exec(ctx, query, params.ID, params.Reason, params.CancelledAt, params.CancelledBy)
	if err != nil {
		return false, fmt.Errorf("cancel call: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// AddHistory appends an audit row for the call.
func (r *Repo) AddHistory(ctx context.Context, params HistoryParams) error {
	query := `
		INSERT INTO call_history (call_id, action, old_value, new_value, notes, performed_by)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := r.pool.Exec(ctx, query,
		params.CallID, params.Action, params.OldValue, params.NewValue,
		params.Notes, params.PerformedBy); err != nil {
		return fmt.Errorf("add call history: %w", err)
	}
	return nil
}

// ListHistory returns the audit trail of a call, newest first.
func (r *Repo) ListHistory(ctx context.Context, callID uuid.UUID) ([]HistoryEntry, error) {
	query := `
		SELECT id, call_id, action, old_value, new_value, notes, performed_by, created_at
		FROM call_history
		WHERE call_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, callID)
	if err != nil {
		return nil, fmt.Errorf("list call history: %w", err)
	}
	defer rows.Close()

	entries := []HistoryEntry{}
	for rows.Next() {
		var h HistoryEntry
		if err := rows.Scan(&h.ID, &h.CallID, &h.Action, &h.OldValue, &h.NewValue,
			&h.Notes, &h.PerformedBy, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan call history: %w", err)
		}
		entries = append(entries, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate call history: %w", err)
	}
	return entries, nil
}
