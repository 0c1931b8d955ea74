package fsm_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlekbai/fsm"
)

// sleeper waits on release before moving to the next state.
type sleeper struct {
	fsm.BaseState
	release chan struct{}
	waitErr error
	resumed int
}

func (s *sleeper) OnEnter(ctx context.Context) error {
	release, waitErr := s.release, s.waitErr
	s.Suspend(ctx,
		func(ctx context.Context) error {
			<-release
			return waitErr
		},
		func() error {
			s.resumed++
			if !s.Valid() {
				return nil
			}
			return s.Machine().ToNextState()
		},
	)
	return nil
}

func (s *sleeper) OnExit(context.Context) error { return nil }

func newSleeperMachine(t *testing.T, opts ...fsm.Option) (*fsm.Machine, *sleeper) {
	t.Helper()

	m := fsm.NewMachine(nil, append([]fsm.Option{quiet()}, opts...)...)
	s, err := fsm.SetInitialState[sleeper](m)
	require.NoError(t, err)
	_, err = fsm.AddStaticTransition[sleeper, stateA](m)
	require.NoError(t, err)

	s.release = make(chan struct{})
	return m, s
}

func waitPending(t *testing.T, m *fsm.Machine, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return m.Pending() == n }, time.Second, time.Millisecond)
}

func TestSuspend_ResumesOnUpdate(t *testing.T) {
	m, s := newSleeperMachine(t)

	require.NoError(t, m.Start())
	assert.Same(t, s, m.CurrentState())
	assert.True(t, s.Valid())

	close(s.release)
	waitPending(t, m, 1)
	assert.Same(t, s, m.CurrentState(), "continuations only run inside Update")

	require.NoError(t, m.Update())
	assert.Equal(t, 1, s.resumed)
	assert.Equal(t, "stateA", fsm.StateName(m.CurrentState()))
	assert.Equal(t, 0, m.Pending())
}

func TestSuspend_StoppedBeforeResume(t *testing.T) {
	rec := &recorder{}
	m, s := newSleeperMachine(t, fsm.WithObserver(rec))

	require.NoError(t, m.Start())
	require.NoError(t, m.Stop())
	assert.False(t, s.Valid())

	close(s.release)
	waitPending(t, m, 1)
	require.NoError(t, m.Update())

	assert.Nil(t, m.CurrentState())
	assert.Equal(t, 0, s.resumed, "the continuation of an exited state never runs")
	assert.Equal(t, 1, rec.count(fsm.EventDroppedResume))
	assert.Zero(t, rec.count(fsm.EventStaleRequest))
}

func TestSuspend_RestartedBeforeResume(t *testing.T) {
	m, s := newSleeperMachine(t)

	first := s.release
	require.NoError(t, m.Start())
	require.NoError(t, m.Stop())

	s.release = make(chan struct{})
	require.NoError(t, m.Start())

	close(first)
	waitPending(t, m, 1)
	require.NoError(t, m.Update())

	assert.Equal(t, 0, s.resumed, "a continuation belongs to the activation that scheduled it")
	assert.Same(t, s, m.CurrentState())

	close(s.release)
	waitPending(t, m, 1)
	require.NoError(t, m.Update())
	assert.Equal(t, 1, s.resumed)
	assert.Equal(t, "stateA", fsm.StateName(m.CurrentState()))
}

func TestSuspend_WaitErrorIsReturned(t *testing.T) {
	m, s := newSleeperMachine(t)
	boom := errors.New("timer broke")
	s.waitErr = boom

	require.NoError(t, m.Start())
	close(s.release)
	waitPending(t, m, 1)

	err := m.Update()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, s.resumed)
	assert.Same(t, s, m.CurrentState())
}

// waiter blocks until its activation context is cancelled.
type waiter struct {
	fsm.BaseState
	resumed bool
}

func (s *waiter) OnEnter(ctx context.Context) error {
	s.Suspend(ctx,
		func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
		func() error {
			s.resumed = true
			return nil
		},
	)
	return nil
}

func (s *waiter) OnExit(context.Context) error { return nil }

func TestSuspend_ExitCancelsWait(t *testing.T) {
	m := fsm.NewMachine(nil, quiet())
	s, err := fsm.SetInitialState[waiter](m)
	require.NoError(t, err)

	require.NoError(t, m.Start())
	require.NoError(t, m.Stop())

	waitPending(t, m, 1)
	assert.NoError(t, m.Update(), "the cancellation of an exited state is not reported")
	assert.False(t, s.resumed)
}

func TestMachine_PostRunsInOrder(t *testing.T) {
	m := fsm.NewMachine(nil, quiet())

	var order []int
	first := errors.New("first")
	m.Post(func() error { order = append(order, 1); return first })
	m.Post(nil)
	m.Post(func() error { order = append(order, 2); return nil })
	assert.Equal(t, 2, m.Pending())

	err := m.Update()
	assert.ErrorIs(t, err, first)
	assert.Equal(t, []int{1, 2}, order)
	assert.NoError(t, m.Update())
}

func TestMachine_PostFromUpdateWaitsForNextTick(t *testing.T) {
	m := fsm.NewMachine(nil, quiet())

	ran := 0
	m.Post(func() error {
		m.Post(func() error { ran++; return nil })
		return nil
	})

	require.NoError(t, m.Update())
	assert.Equal(t, 0, ran)
	assert.Equal(t, 1, m.Pending())

	require.NoError(t, m.Update())
	assert.Equal(t, 1, ran)
}

func TestMachine_Run(t *testing.T) {
	m, s := newSleeperMachine(t)

	transitioned := make(chan fsm.TransitionInfo, 1)
	m.OnTransitioned(func(info fsm.TransitionInfo) { transitioned <- info })

	require.NoError(t, m.Start())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	close(s.release)

	select {
	case info := <-transitioned:
		assert.Equal(t, "sleeper", info.From)
		assert.Equal(t, "stateA", info.To)
	case <-time.After(time.Second):
		t.Fatal("machine did not resume")
	}

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, "stateA", fsm.StateName(m.CurrentState()))
}
