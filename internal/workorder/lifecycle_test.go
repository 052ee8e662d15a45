package workorder

import (
	"testing"
	"time"

	"cmms_backend/platform/apperr"
)

var t0 = time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

func at(minutes int) time.Time {
	return t0.Add(time.Duration(minutes) * time.Minute)
}

func TestStartPauseResumeComplete(t *testing.T) {
	m := NewMachine(OrderVocabulary)

	e := Execution{Status: StatusPending}

	e, err := m.Start(e, at(0))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if e.Status != StatusInProgress {
		t.Fatalf("status after start = %s, want %s", e.Status, StatusInProgress)
	}
	if e.StartedAt == nil || !e.StartedAt.Equal(at(0)) {
		t.Fatalf("startedAt = %v, want %v", e.StartedAt, at(0))
	}

	e, err = m.Pause(e, at(10))
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	if e.Status != StatusPaused {
		t.Fatalf("status after pause = %s, want %s", e.Status, StatusPaused)
	}
	if e.PausedAt == nil || !e.PausedAt.Equal(at(10)) {
		t.Fatalf("pausedAt = %v, want %v", e.PausedAt, at(10))
	}

	e, err = m.Resume(e, at(25))
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if e.Status != StatusInProgress {
		t.Fatalf("status after resume = %s, want %s", e.Status, StatusInProgress)
	}
	if e.TotalPausedMin != 15 {
		t.Fatalf("totalPaused = %d, want 15", e.TotalPausedMin)
	}
	if e.ResumeCount != 1 {
		t.Fatalf("resumeCount = %d, want 1", e.ResumeCount)
	}
	if e.PausedAt != nil {
		t.Fatalf("pausedAt not cleared on resume")
	}

	done, err := m.Complete(e, at(45))
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Execution.Status != StatusCompleted {
		t.Fatalf("status after complete = %s, want %s", done.Execution.Status, StatusCompleted)
	}
	if done.ExecutionTimeMin == nil || *done.ExecutionTimeMin != 30 {
		t.Fatalf("executionTime = %v, want 30", done.ExecutionTimeMin)
	}
}

func TestCompleteWhilePaused(t *testing.T) {
	m := NewMachine(OrderVocabulary)

	e := Execution{Status: StatusPending}
	e, _ = m.Start(e, at(0))
	e, _ = m.Pause(e, at(20))

	// the open pause counts against the execution time without a resume
	done, err := m.Complete(e, at(50))
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.ExecutionTimeMin == nil || *done.ExecutionTimeMin != 20 {
		t.Fatalf("executionTime = %v, want 20", done.ExecutionTimeMin)
	}
	if done.Execution.PausedAt != nil {
		t.Fatalf("pausedAt not cleared on complete")
	}
}

func TestCompleteNeverStarted(t *testing.T) {
	m := NewMachine(CallVocabulary)

	done, err := m.Complete(Execution{Status: StatusOpen}, at(5))
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.ExecutionTimeMin != nil {
		t.Fatalf("executionTime = %v, want nil for unstarted work", done.ExecutionTimeMin)
	}
	if done.Execution.Status != StatusCompleted {
		t.Fatalf("status = %s, want %s", done.Execution.Status, StatusCompleted)
	}
}

func TestExecutionTimeNeverNegative(t *testing.T) {
	m := NewMachine(OrderVocabulary)

	e := Execution{Status: StatusPending}
	e, _ = m.Start(e, at(0))
	// pre-accumulated pause longer than the elapsed span (clock drift or a
	// manual correction) must clamp to zero, not go negative
	e.TotalPausedMin = 90

	done, err := m.Complete(e, at(45))
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.ExecutionTimeMin == nil || *done.ExecutionTimeMin != 0 {
		t.Fatalf("executionTime = %v, want 0", done.ExecutionTimeMin)
	}
}

func TestRepeatedPauseResumeAccumulates(t *testing.T) {
	m := NewMachine(OrderVocabulary)

	e := Execution{Status: StatusPending}
	e, _ = m.Start(e, at(0))
	e, _ = m.Pause(e, at(10))
	e, _ = m.Resume(e, at(15))
	e, _ = m.Pause(e, at(30))
	e, _ = m.Resume(e, at(42))

	if e.TotalPausedMin != 17 {
		t.Fatalf("totalPaused = %d, want 17", e.TotalPausedMin)
	}
	if e.ResumeCount != 2 {
		t.Fatalf("resumeCount = %d, want 2", e.ResumeCount)
	}

	done, _ := m.Complete(e, at(60))
	if done.ExecutionTimeMin == nil || *done.ExecutionTimeMin != 43 {
		t.Fatalf("executionTime = %v, want 43", done.ExecutionTimeMin)
	}
}

func TestMinuteRounding(t *testing.T) {
	m := NewMachine(OrderVocabulary)

	e := Execution{Status: StatusPending}
	e, _ = m.Start(e, t0)
	e, _ = m.Pause(e, t0.Add(10*time.Minute))

	// 4m30s pause rounds up to 5 whole minutes
	e, err := m.Resume(e, t0.Add(14*time.Minute+30*time.Second))
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if e.TotalPausedMin != 5 {
		t.Fatalf("totalPaused = %d, want 5", e.TotalPausedMin)
	}
}

func TestStartPreservesOriginalStart(t *testing.T) {
	m := NewMachine(CallVocabulary)

	started := at(0)
	e := Execution{Status: StatusAssigned, StartedAt: &started}

	e, err := m.Start(e, at(120))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !e.StartedAt.Equal(started) {
		t.Fatalf("startedAt = %v, want original %v", e.StartedAt, started)
	}
}

func TestInvalidTransitions(t *testing.T) {
	orders := NewMachine(OrderVocabulary)
	calls := NewMachine(CallVocabulary)

	tests := []struct {
		name string
		run  func() error
	}{
		{"start from in_progress", func() error {
			_, err := orders.Start(Execution{Status: StatusInProgress}, at(0))
			return err
		}},
		{"start from completed", func() error {
			_, err := orders.Start(Execution{Status: StatusCompleted}, at(0))
			return err
		}},
		{"start call from paused", func() error {
			_, err := calls.Start(Execution{Status: StatusPaused}, at(0))
			return err
		}},
		{"pause from pending", func() error {
			_, err := orders.Pause(Execution{Status: StatusPending}, at(0))
			return err
		}},
		{"pause from paused", func() error {
			_, err := orders.Pause(Execution{Status: StatusPaused}, at(0))
			return err
		}},
		{"resume from in_progress", func() error {
			_, err := orders.Resume(Execution{Status: StatusInProgress}, at(0))
			return err
		}},
		{"complete from cancelled", func() error {
			_, err := orders.Complete(Execution{Status: StatusCancelled}, at(0))
			return err
		}},
		{"cancel completed", func() error {
			_, err := orders.Cancel(Execution{Status: StatusCompleted})
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			if err == nil {
				t.Fatalf("expected error")
			}
			if apperr.GetKind(err) != apperr.KindState {
				t.Fatalf("kind = %v, want KindState", apperr.GetKind(err))
			}
		})
	}
}

func TestCallVocabularyStartStatuses(t *testing.T) {
	m := NewMachine(CallVocabulary)

	for _, s := range []Status{StatusOpen, StatusAnalysis, StatusAssigned, StatusWaitingParts} {
		e, err := m.Start(Execution{Status: s}, at(0))
		if err != nil {
			t.Fatalf("start from %s: %v", s, err)
		}
		if e.Status != StatusExecution {
			t.Fatalf("status = %s, want %s", e.Status, StatusExecution)
		}
	}
}
