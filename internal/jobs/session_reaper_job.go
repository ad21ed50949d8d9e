package jobs

import (
	"context"
	"time"

	"kitchen/internal/core/application/usecases/commands"
	"kitchen/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const sessionReaperJobName = "session-reaper"

// StaleSessionReaper closes sessions whose heartbeat lapsed.
type StaleSessionReaper interface {
	Handle(ctx context.Context, command commands.ReapStaleSessionsCommand) (int, error)
}

// SessionReaperJob closes lapsed sessions on a schedule so their claimed items go
// back to the pool.
type SessionReaperJob struct {
	handler  StaleSessionReaper
	schedule string
	timeout  time.Duration
	cron     *cron.Cron
	metrics  *metrics.CronJobMetrics
	logger   zerolog.Logger
}

// NewSessionReaperJob creates the job. schedule is any robfig/cron expression,
// e.g. "@every 30s".
func NewSessionReaperJob(
	handler StaleSessionReaper,
	schedule string,
	m *metrics.CronJobMetrics,
	logger zerolog.Logger,
) *SessionReaperJob {
	logger = logger.With().Str("component", "session_reaper_job").Logger()
	return &SessionReaperJob{
		handler:  handler,
		schedule: schedule,
		timeout:  defaultRunTimeout,
		cron:     newCron(logger),
		metrics:  m,
		logger:   logger,
	}
}

// Start schedules the job.
func (j *SessionReaperJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		defer cancel()
		_ = j.Run(ctx)
	}); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info().Str("schedule", j.schedule).Msg("session reaper job started")
	return nil
}

// Run performs one reaping pass.
func (j *SessionReaperJob) Run(ctx context.Context) error {
	start := time.Now()
	closed, err := j.handler.Handle(ctx, commands.NewReapStaleSessionsCommand())
	j.metrics.ObserveDuration(sessionReaperJobName, time.Since(start))

	if closed > 0 {
		j.logger.Info().Int("closed", closed).Msg("stale sessions closed")
	}
	if err != nil {
		j.metrics.IncFailure(sessionReaperJobName)
		j.logger.Error().Err(err).Int("closed", closed).Msg("session reaper run failed")
		return err
	}
	j.metrics.IncSuccess(sessionReaperJobName)
	return nil
}

// Stop waits for a running pass to finish.
func (j *SessionReaperJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info().Msg("session reaper job stopped")
}
