package scan

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/snapcal/internal/domain"
)

// scriptedRunner returns queued outcomes; when block is set, Scan waits on
// it so tests can observe the Loading phase.
type scriptedRunner struct {
	mu       sync.Mutex
	outcomes []outcome
	images   []string
	started  chan struct{}
	block    chan struct{}
}

type outcome struct {
	result *domain.ScanResult
	err    error
}

func (r *scriptedRunner) Scan(_ context.Context, image string) (*domain.ScanResult, error) {
	r.mu.Lock()
	r.images = append(r.images, image)
	next := r.outcomes[0]
	r.outcomes = r.outcomes[1:]
	r.mu.Unlock()

	if r.started != nil {
		r.started <- struct{}{}
	}
	if r.block != nil {
		<-r.block
	}
	return next.result, next.err
}

var riceResult = &domain.ScanResult{
	Items:         []domain.FoodNutrition{{Name: "white rice", EstimatedGrams: 150, Calories: 195}},
	TotalCalories: 195,
}

func TestSessionStartsIdle(t *testing.T) {
	s := NewSession(&scriptedRunner{}, nil)

	state := s.Snapshot()
	assert.Equal(t, PhaseIdle, state.Phase)
	assert.Nil(t, state.Result)
	assert.Empty(t, state.Error)
	assert.False(t, state.IsLoading())
}

func TestSessionSuccess(t *testing.T) {
	var phases []Phase
	runner := &scriptedRunner{outcomes: []outcome{{result: riceResult}}}
	s := NewSession(runner, func(st State) { phases = append(phases, st.Phase) })

	result, err := s.Scan(context.Background(), "img")
	require.NoError(t, err)
	assert.Equal(t, riceResult, result)

	state := s.Snapshot()
	assert.Equal(t, PhaseSuccess, state.Phase)
	assert.Equal(t, riceResult, state.Result)
	assert.Empty(t, state.Error)
	assert.Equal(t, []Phase{PhaseLoading, PhaseSuccess}, phases)
}

func TestSessionEmptyResultError(t *testing.T) {
	runner := &scriptedRunner{outcomes: []outcome{{err: newError(ErrNoFood)}}}
	s := NewSession(runner, nil)

	_, err := s.Scan(context.Background(), "img")
	require.Error(t, err)

	state := s.Snapshot()
	assert.Equal(t, PhaseError, state.Phase)
	assert.Equal(t, MessageNoFood, state.Error)
	assert.Nil(t, state.Result)
}

func TestSessionHidesInternalErrors(t *testing.T) {
	runner := &scriptedRunner{outcomes: []outcome{{err: errors.New("dial tcp: connection refused")}}}
	s := NewSession(runner, nil)

	_, err := s.Scan(context.Background(), "img")
	require.Error(t, err)
	assert.Equal(t, MessageGeneric, s.Snapshot().Error)
}

func TestSessionRetryUsesSameImage(t *testing.T) {
	runner := &scriptedRunner{outcomes: []outcome{
		{err: newError(errors.New("timeout"))},
		{result: riceResult},
	}}
	s := NewSession(runner, nil)

	_, err := s.Scan(context.Background(), "img-1")
	require.Error(t, err)
	assert.Equal(t, PhaseError, s.Snapshot().Phase)

	result, err := s.Retry(context.Background())
	require.NoError(t, err)
	assert.Equal(t, riceResult, result)
	assert.Equal(t, PhaseSuccess, s.Snapshot().Phase)
	assert.Equal(t, []string{"img-1", "img-1"}, runner.images)
}

func TestSessionNewImageAfterFinishedScan(t *testing.T) {
	runner := &scriptedRunner{outcomes: []outcome{
		{err: newError(ErrNoFood)},
		{result: riceResult},
		{result: riceResult},
	}}
	s := NewSession(runner, nil)

	_, err := s.Scan(context.Background(), "img-1")
	require.Error(t, err)

	result, err := s.Scan(context.Background(), "img-2")
	require.NoError(t, err)
	assert.Equal(t, riceResult, result)
	assert.Equal(t, PhaseSuccess, s.Snapshot().Phase)

	_, err = s.Retry(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"img-1", "img-2", "img-2"}, runner.images)
}

func TestSessionRetryRequiresFinishedScan(t *testing.T) {
	s := NewSession(&scriptedRunner{}, nil)

	_, err := s.Retry(context.Background())
	assert.ErrorIs(t, err, ErrNothingToRetry)
	assert.Equal(t, PhaseIdle, s.Snapshot().Phase)
}

func TestSessionRejectsOverlappingScan(t *testing.T) {
	runner := &scriptedRunner{
		outcomes: []outcome{{result: riceResult}},
		started:  make(chan struct{}, 1),
		block:    make(chan struct{}),
	}
	s := NewSession(runner, nil)

	done := make(chan error, 1)
	go func() {
		_, err := s.Scan(context.Background(), "img")
		done <- err
	}()
	<-runner.started
	assert.True(t, s.Snapshot().IsLoading())

	_, err := s.Scan(context.Background(), "other")
	assert.ErrorIs(t, err, ErrScanInProgress)
	assert.True(t, s.Snapshot().IsLoading())

	close(runner.block)
	require.NoError(t, <-done)
	assert.Equal(t, PhaseSuccess, s.Snapshot().Phase)
}

func TestSessionResetFromAnyPhase(t *testing.T) {
	idle := State{Phase: PhaseIdle}

	t.Run("success", func(t *testing.T) {
		s := NewSession(&scriptedRunner{outcomes: []outcome{{result: riceResult}}}, nil)
		_, err := s.Scan(context.Background(), "img")
		require.NoError(t, err)

		s.Reset()
		assert.Equal(t, idle, s.Snapshot())
	})

	t.Run("error", func(t *testing.T) {
		s := NewSession(&scriptedRunner{outcomes: []outcome{{err: newError(ErrNoFood)}}}, nil)
		_, err := s.Scan(context.Background(), "img")
		require.Error(t, err)

		s.Reset()
		assert.Equal(t, idle, s.Snapshot())
	})

	t.Run("loading", func(t *testing.T) {
		runner := &scriptedRunner{
			outcomes: []outcome{{result: riceResult}},
			started:  make(chan struct{}, 1),
			block:    make(chan struct{}),
		}
		s := NewSession(runner, nil)

		done := make(chan struct{})
		go func() {
			_, _ = s.Scan(context.Background(), "img")
			close(done)
		}()
		<-runner.started

		s.Reset()
		assert.Equal(t, idle, s.Snapshot())

		// The in-flight outcome is discarded.
		close(runner.block)
		<-done
		assert.Equal(t, idle, s.Snapshot())
	})

	t.Run("idle", func(t *testing.T) {
		s := NewSession(&scriptedRunner{}, nil)
		s.Reset()
		assert.Equal(t, idle, s.Snapshot())
	})
}
