package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"planora/app/utils/metrics"
)

// sagaStep is one forward action and the action that undoes it. A step
// without compensation leaves nothing behind to undo.
type sagaStep struct {
	name       string
	action     func(ctx context.Context) error
	compensate func(ctx context.Context) error
}

// saga runs steps in order. When step n fails, the compensations of steps
// n-1..1 run in reverse order and the error of step n is returned.
type saga struct {
	steps               []sagaStep
	compensationTimeout time.Duration
	logger              *slog.Logger
}

func newSaga(logger *slog.Logger, compensationTimeout time.Duration) *saga {
	return &saga{
		compensationTimeout: compensationTimeout,
		logger:              logger,
	}
}

func (s *saga) add(step sagaStep) *saga {
	s.steps = append(s.steps, step)
	return s
}

// run executes the steps. The returned error is always the forward failure,
// never a compensation failure.
func (s *saga) run(ctx context.Context) error {
	for i, step := range s.steps {
		start := time.Now()
		err := runAction(ctx, step)
		if err == nil {
			metrics.RecordStep(step.name, "success", time.Since(start).Seconds())
			continue
		}

		metrics.RecordStep(step.name, "failed", time.Since(start).Seconds())
		s.logger.Warn("Provisioning step failed, compensating",
			"step", step.name,
			"completed_steps", i,
			"error", err)

		s.compensate(ctx, s.steps[:i])
		return fmt.Errorf("%s: %w", step.name, err)
	}
	return nil
}

// compensate undoes completed steps, newest first. It detaches from the
// request context so a cancelled request still cleans up.
func (s *saga) compensate(ctx context.Context, completed []sagaStep) {
	base := context.WithoutCancel(ctx)

	for i := len(completed) - 1; i >= 0; i-- {
		step := completed[i]
		if step.compensate == nil {
			continue
		}

		if err := s.compensateStep(base, step); err != nil {
			metrics.RecordCompensation(step.name, "failed")
			s.logger.Error("Compensation failed",
				"step", step.name,
				"error", err)
			continue
		}

		metrics.RecordCompensation(step.name, "success")
		s.logger.Info("Compensation completed", "step", step.name)
	}
}

// errStepPanicked marks a step that panicked instead of returning an error.
var errStepPanicked = errors.New("step panicked")

func runAction(ctx context.Context, step sagaStep) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errStepPanicked, r)
		}
	}()
	return step.action(ctx)
}

func (s *saga) compensateStep(base context.Context, step sagaStep) (err error) {
	ctx, cancel := context.WithTimeout(base, s.compensationTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("compensation panicked: %v", r)
		}
	}()

	return step.compensate(ctx)
}
