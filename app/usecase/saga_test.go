package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSaga_Run(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name      string
		failAt    int
		wantCalls []string
		wantErr   bool
	}{
		{
			name:      "all steps succeed",
			failAt:    -1,
			wantCalls: []string{"do:a", "do:b", "do:c"},
		},
		{
			name:      "first step fails without compensation",
			failAt:    0,
			wantCalls: []string{"do:a"},
			wantErr:   true,
		},
		{
			name:      "last step fails and earlier steps are undone in reverse",
			failAt:    2,
			wantCalls: []string{"do:a", "do:b", "do:c", "undo:b", "undo:a"},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls []string
			s := newSaga(discardLogger(), time.Second)
			for i, name := range []string{"a", "b", "c"} {
				i, name := i, name
				s.add(sagaStep{
					name: name,
					action: func(ctx context.Context) error {
						calls = append(calls, "do:"+name)
						if i == tt.failAt {
							return errBoom
						}
						return nil
					},
					compensate: func(ctx context.Context) error {
						calls = append(calls, "undo:"+name)
						return nil
					},
				})
			}

			err := s.run(context.Background())

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errBoom)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaga_CompensationFailuresAreSwallowed(t *testing.T) {
	errForward := errors.New("forward failure")
	var undone []string

	s := newSaga(discardLogger(), time.Second).
		add(sagaStep{
			name:   "first",
			action: func(ctx context.Context) error { return nil },
			compensate: func(ctx context.Context) error {
				undone = append(undone, "first")
				return nil
			},
		}).
		add(sagaStep{
			name:   "second",
			action: func(ctx context.Context) error { return nil },
			compensate: func(ctx context.Context) error {
				undone = append(undone, "second")
				panic("compensation exploded")
			},
		}).
		add(sagaStep{
			name:   "third",
			action: func(ctx context.Context) error { return nil },
			compensate: func(ctx context.Context) error {
				undone = append(undone, "third")
				return errors.New("cannot undo")
			},
		}).
		add(sagaStep{
			name:   "fourth",
			action: func(ctx context.Context) error { return errForward },
		})

	err := s.run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, errForward)
	assert.Contains(t, err.Error(), "fourth")
	assert.Equal(t, []string{"third", "second", "first"}, undone)
}

func TestSaga_StepPanicCompensates(t *testing.T) {
	undone := false

	s := newSaga(discardLogger(), time.Second).
		add(sagaStep{
			name:       "create",
			action:     func(ctx context.Context) error { return nil },
			compensate: func(ctx context.Context) error { undone = true; return nil },
		}).
		add(sagaStep{
			name:   "explode",
			action: func(ctx context.Context) error { panic("nil map") },
		})

	err := s.run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, errStepPanicked)
	assert.True(t, undone)
}

func TestSaga_CompensationIgnoresCancelledRequest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var compensationCtxErr error
	var hasDeadline bool

	s := newSaga(discardLogger(), time.Second).
		add(sagaStep{
			name:   "create",
			action: func(ctx context.Context) error { return nil },
			compensate: func(ctx context.Context) error {
				compensationCtxErr = ctx.Err()
				_, hasDeadline = ctx.Deadline()
				return nil
			},
		}).
		add(sagaStep{
			name: "cancelled",
			action: func(ctx context.Context) error {
				cancel()
				return ctx.Err()
			},
		})

	err := s.run(ctx)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, compensationCtxErr)
	assert.True(t, hasDeadline)
}
