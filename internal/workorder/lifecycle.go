// Package workorder implements the execution lifecycle shared by preventive
// maintenance orders and corrective maintenance calls: the status graph, the
// pause/resume time accounting, and the execution-time computation performed
// at completion. The package is pure; persistence is handled by the calling
// services.
package workorder

import (
	"math"
	"time"

	"cmms_backend/platform/apperr"
)

// Status is the lifecycle status of an order or call.
type Status string

const (
	StatusPending      Status = "pending"
	StatusOpen         Status = "open"
	StatusAnalysis     Status = "analysis"
	StatusAssigned     Status = "assigned"
	StatusWaitingParts Status = "waiting_parts"
	StatusInProgress   Status = "in_progress"
	StatusExecution    Status = "execution"
	StatusPaused       Status = "paused"
	StatusCompleted    Status = "completed"
	StatusCancelled    Status = "cancelled"
)

// IsTerminal reports whether no further transitions are valid from s.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Vocabulary describes the entity-specific status naming: which statuses an
// execution may be started from, and what the active status is called.
// Preventive orders use pending → in_progress; corrective calls use
// open/analysis/assigned/waiting_parts → execution.
type Vocabulary struct {
	Idle   []Status
	Active Status
}

// OrderVocabulary is the status vocabulary for preventive maintenance orders.
var OrderVocabulary = Vocabulary{
	Idle:   []Status{StatusPending},
	Active: StatusInProgress,
}

// CallVocabulary is the status vocabulary for corrective maintenance calls.
var CallVocabulary = Vocabulary{
	Idle:   []Status{StatusOpen, StatusAnalysis, StatusAssigned, StatusWaitingParts},
	Active: StatusExecution,
}

func (v Vocabulary) isIdle(s Status) bool {
	for _, idle := range v.Idle {
		if s == idle {
			return true
		}
	}
	return false
}

// Execution is the lifecycle snapshot of an order or call. All durations are
// whole minutes.
type Execution struct {
	Status         Status
	StartedAt      *time.Time
	PausedAt       *time.Time
	TotalPausedMin int
	ResumeCount    int
}

// Completion is the result of a successful Complete transition.
type Completion struct {
	Execution        Execution
	CompletedAt      time.Time
	ExecutionTimeMin *int
}

// Machine applies lifecycle transitions using a status vocabulary.
type Machine struct {
	vocab Vocabulary
}

// NewMachine creates a lifecycle machine for the given vocabulary.
func NewMachine(vocab Vocabulary) Machine {
	return Machine{vocab: vocab}
}

// Start moves an idle execution to the active status. StartedAt is recorded
// once; restarting after an administrative status reset keeps the original
// timestamp.
func (m Machine) Start(e Execution, now time.Time) (Execution, error) {
	if !m.vocab.isIdle(e.Status) {
		return e, apperr.State("only " + idleList(m.vocab) + " work can be started")
	}

	if e.StartedAt == nil {
		startedAt := now
		e.StartedAt = &startedAt
	}
	e.Status = m.vocab.Active
	return e, nil
}

// Pause suspends an active execution.
func (m Machine) Pause(e Execution, now time.Time) (Execution, error) {
	if e.Status != m.vocab.Active {
		return e, apperr.State("only work in " + string(m.vocab.Active) + " can be paused")
	}

	pausedAt := now
	e.PausedAt = &pausedAt
	e.Status = StatusPaused
	return e, nil
}

// Resume reactivates a paused execution, accumulating the pause interval into
// TotalPausedMin. TotalPausedMin never decreases.
func (m Machine) Resume(e Execution, now time.Time) (Execution, error) {
	if e.Status != StatusPaused {
		return e, apperr.State("only paused work can be resumed")
	}

	if e.PausedAt != nil {
		if d := roundMinutes(now.Sub(*e.PausedAt)); d > 0 {
			e.TotalPausedMin += d
		}
	}
	e.ResumeCount++
	e.PausedAt = nil
	e.Status = m.vocab.Active
	return e, nil
}

// Complete finalizes an execution from any non-terminal status. The execution
// time is the wall-clock span since StartedAt minus every paused interval,
// including a still-open pause, clamped to zero. Work that was never started
// completes with a nil execution time.
func (m Machine) Complete(e Execution, now time.Time) (Completion, error) {
	if e.Status.IsTerminal() {
		return Completion{}, apperr.State("work already " + string(e.Status))
	}

	var executionTime *int
	if e.StartedAt != nil {
		total := roundMinutes(now.Sub(*e.StartedAt))
		currentPause := 0
		if e.Status == StatusPaused && e.PausedAt != nil {
			currentPause = roundMinutes(now.Sub(*e.PausedAt))
		}
		minutes := total - e.TotalPausedMin - currentPause
		if minutes < 0 {
			minutes = 0
		}
		executionTime = &minutes
	}

	e.Status = StatusCompleted
	e.PausedAt = nil
	return Completion{Execution: e, CompletedAt: now, ExecutionTimeMin: executionTime}, nil
}

// Cancel validates that an execution may be cancelled. Terminal statuses are
// rejected; everything else may be cancelled.
func (m Machine) Cancel(e Execution) (Execution, error) {
	if e.Status.IsTerminal() {
		return e, apperr.State("work already " + string(e.Status))
	}

	e.Status = StatusCancelled
	return e, nil
}

// roundMinutes converts a duration to whole minutes, rounding half away from
// zero, matching how technicians read elapsed time off the clock.
func roundMinutes(d time.Duration) int {
	return int(math.Round(d.Minutes()))
}

func idleList(v Vocabulary) string {
	out := ""
	for i, s := range v.Idle {
		if i > 0 {
			out += "/"
		}
		out += string(s)
	}
	return out
}
