package pipeline

import (
	"context"
	"errors"
	"slices"
	"testing"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, run *Run) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, run *Run) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, run)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

// TestPipelineNew tests the Pipeline constructor.
func TestPipelineNew(t *testing.T) {
	t.Parallel()

	p := New()
	if p == nil {
		t.Fatal("expected non-nil pipeline")
	}
	if p.StepCount() != 0 {
		t.Errorf("expected 0 steps, got %d", p.StepCount())
	}
	if p.logger == nil {
		t.Error("expected default logger")
	}
}

// TestPipelineAddStep tests adding steps to the pipeline.
func TestPipelineAddStep(t *testing.T) {
	t.Parallel()

	p := New()
	p.AddStep(&mockStep{name: "first"})
	p.AddSteps(&mockStep{name: "second"}, &mockStep{name: "third"})

	if p.StepCount() != 3 {
		t.Errorf("expected 3 steps, got %d", p.StepCount())
	}
	if !slices.Equal(p.StepNames(), []string{"first", "second", "third"}) {
		t.Errorf("unexpected step names %v", p.StepNames())
	}
}

// TestPipelineExecute tests step execution.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes steps in order", func(t *testing.T) {
		t.Parallel()

		var order []string
		record := func(name string) *mockStep {
			return &mockStep{name: name, doFunc: func(_ context.Context, _ *Run) error {
				order = append(order, name)
				return nil
			}}
		}

		p := New()
		p.AddSteps(record("load"), record("validate"), record("write"))

		run := NewRun("t", "o", nil)
		if err := p.Execute(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(order, []string{"load", "validate", "write"}) {
			t.Errorf("unexpected order %v", order)
		}
		if !slices.Equal(run.PerformedSteps, order) {
			t.Errorf("unexpected performed steps %v", run.PerformedSteps)
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		errStep := errors.New("step failed")
		failing := &mockStep{name: "failing", doFunc: func(_ context.Context, _ *Run) error {
			return errStep
		}}
		after := &mockStep{name: "after"}

		p := New()
		p.AddSteps(&mockStep{name: "before"}, failing, after)

		run := NewRun("t", "o", nil)
		err := p.Execute(context.Background(), run)
		if !errors.Is(err, errStep) {
			t.Fatalf("expected step error, got %v", err)
		}
		if after.callCount != 0 {
			t.Error("expected later steps to be skipped")
		}
		if !slices.Equal(run.PerformedSteps, []string{"before"}) {
			t.Errorf("unexpected performed steps %v", run.PerformedSteps)
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		step := &mockStep{name: "never"}
		p := New()
		p.AddStep(step)

		err := p.Execute(ctx, NewRun("t", "o", nil))
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if step.callCount != 0 {
			t.Error("expected step not to run")
		}
	})
}
