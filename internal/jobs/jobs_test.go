package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"kitchen/internal/core/application/usecases/commands"
	"kitchen/internal/core/domain/model/kernel"
	"kitchen/internal/pkg/errs"
	"kitchen/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReaper struct{ mock.Mock }

func (m *MockReaper) Handle(ctx context.Context, cmd commands.ReapStaleSessionsCommand) (int, error) {
	args := m.Called(ctx, cmd)
	return args.Int(0), args.Error(1)
}

type MockReconciler struct{ mock.Mock }

func (m *MockReconciler) Handle(ctx context.Context, cmd commands.ReconcileOrderStatusesCommand) (int, error) {
	args := m.Called(ctx, cmd)
	return args.Int(0), args.Error(1)
}

type MockHeartbeater struct{ mock.Mock }

func (m *MockHeartbeater) Handle(ctx context.Context, cmd commands.HeartbeatSessionCommand) error {
	args := m.Called(ctx, cmd)
	return args.Error(0)
}

func TestSessionReaperJob_Run(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewCronJobMetrics(reg)

	reaper := &MockReaper{}
	reaper.On("Handle", mock.Anything, mock.Anything).Return(2, nil).Once()
	reaper.On("Handle", mock.Anything, mock.Anything).Return(1, errors.New("boom")).Once()

	job := NewSessionReaperJob(reaper, "@every 1m", m, zerolog.Nop())

	require.NoError(t, job.Run(t.Context()))
	require.Error(t, job.Run(t.Context()))

	reaper.AssertExpectations(t)
	assert.InDelta(t, 1, counterValue(t, reg, "kitchen_job_success_total", sessionReaperJobName), 0)
	assert.InDelta(t, 1, counterValue(t, reg, "kitchen_job_failure_total", sessionReaperJobName), 0)
}

func TestStatusReconcileJob_RunCoversAllRestaurants(t *testing.T) {
	reconciler := &MockReconciler{}
	reconciler.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.ReconcileOrderStatusesCommand) bool {
		return cmd.RestaurantID() == nil
	})).Return(3, nil).Once()

	job := NewStatusReconcileJob(reconciler, "@every 1m", nil, zerolog.Nop())

	require.NoError(t, job.Run(t.Context()))
	reconciler.AssertExpectations(t)
}

func TestSessionReaperJob_InvalidSchedule(t *testing.T) {
	job := NewSessionReaperJob(&MockReaper{}, "not a schedule", nil, zerolog.Nop())
	require.Error(t, job.Start())
}

func TestHeartbeatJob_KeepRejectsLostSession(t *testing.T) {
	sessionID := kernel.NewUUID()
	heartbeater := &MockHeartbeater{}
	heartbeater.On("Handle", mock.Anything, mock.Anything).Return(errs.NewStaleSessionError(sessionID)).Once()

	job := NewHeartbeatJob(heartbeater, time.Minute, nil, zerolog.Nop())

	stop, err := job.Keep(sessionID, nil)

	require.ErrorIs(t, err, errs.ErrStaleSession)
	assert.Nil(t, stop)
	assert.Empty(t, job.cron.Entries())
}

func TestHeartbeatJob_KeepAndStop(t *testing.T) {
	sessionID := kernel.NewUUID()
	heartbeater := &MockHeartbeater{}
	heartbeater.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.HeartbeatSessionCommand) bool {
		return cmd.SessionID().IsEqual(sessionID)
	})).Return(nil)

	job := NewHeartbeatJob(heartbeater, time.Minute, nil, zerolog.Nop())

	stop, err := job.Keep(sessionID, nil)
	require.NoError(t, err)
	assert.Len(t, job.cron.Entries(), 1)

	stop()
	stop()
	assert.Empty(t, job.cron.Entries())
	heartbeater.AssertNumberOfCalls(t, "Handle", 1)
}

func TestHeartbeatJob_EntryRemovesItselfWhenSessionIsLost(t *testing.T) {
	sessionID := kernel.NewUUID()
	heartbeater := &MockHeartbeater{}
	heartbeater.On("Handle", mock.Anything, mock.Anything).Return(nil).Once()
	heartbeater.On("Handle", mock.Anything, mock.Anything).
		Return(errs.NewTransientStoreError("heartbeat", context.DeadlineExceeded)).Once()
	heartbeater.On("Handle", mock.Anything, mock.Anything).
		Return(errs.NewStaleSessionError(sessionID)).Once()

	job := NewHeartbeatJob(heartbeater, time.Minute, nil, zerolog.Nop())

	var lost []error
	_, err := job.Keep(sessionID, func(err error) { lost = append(lost, err) })
	require.NoError(t, err)
	require.Len(t, job.cron.Entries(), 1)

	kept, ok := job.cron.Entries()[0].Job.(*keptSession)
	require.True(t, ok)

	kept.Run()
	assert.Len(t, job.cron.Entries(), 1, "transient failures keep the entry")
	assert.Empty(t, lost)

	kept.Run()
	assert.Empty(t, job.cron.Entries())
	require.Len(t, lost, 1)
	require.ErrorIs(t, lost[0], errs.ErrStaleSession)
	heartbeater.AssertExpectations(t)
}

type fakeJob struct {
	startErr error
	started  bool
	stopped  bool
}

func (f *fakeJob) Start() error {
	f.started = true
	return f.startErr
}

func (f *fakeJob) Stop() { f.stopped = true }

func TestJobManager_StartAllRollsBack(t *testing.T) {
	first := &fakeJob{}
	second := &fakeJob{startErr: errors.New("bad schedule")}
	third := &fakeJob{}
	jm := &JobManager{jobs: []namedJob{{"first", first}, {"second", second}, {"third", third}}}

	err := jm.StartAll()

	require.ErrorContains(t, err, "second")
	assert.True(t, first.stopped)
	assert.False(t, second.stopped)
	assert.False(t, third.started)
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, job string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "job" && label.GetValue() == job {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
