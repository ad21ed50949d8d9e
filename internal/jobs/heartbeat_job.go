package jobs

import (
	"context"
	"sync"
	"time"

	"kitchen/internal/core/application/usecases/commands"
	"kitchen/internal/core/domain/model/kernel"
	"kitchen/internal/pkg/errs"
	"kitchen/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const heartbeatJobName = "session-heartbeat"

// SessionHeartbeater refreshes a live session.
type SessionHeartbeater interface {
	Handle(ctx context.Context, command commands.HeartbeatSessionCommand) error
}

// HeartbeatJob keeps sessions alive for connected kitchen displays. Each kept
// session is one cron entry firing every interval; the entry removes itself
// once the session is stale or gone.
type HeartbeatJob struct {
	handler  SessionHeartbeater
	interval time.Duration
	timeout  time.Duration
	cron     *cron.Cron
	metrics  *metrics.CronJobMetrics
	logger   zerolog.Logger
}

func NewHeartbeatJob(
	handler SessionHeartbeater,
	interval time.Duration,
	m *metrics.CronJobMetrics,
	logger zerolog.Logger,
) *HeartbeatJob {
	logger = logger.With().Str("component", "heartbeat_job").Logger()
	return &HeartbeatJob{
		handler:  handler,
		interval: interval,
		timeout:  interval,
		cron:     newCron(logger),
		metrics:  m,
		logger:   logger,
	}
}

func (j *HeartbeatJob) Start() error {
	j.cron.Start()
	j.logger.Info().Dur("interval", j.interval).Msg("heartbeat job started")
	return nil
}

func (j *HeartbeatJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info().Msg("heartbeat job stopped")
}

// Keep heartbeats sessionID right away and then every interval until stop is
// called. The first heartbeat runs synchronously so a stale or unknown session is
// reported to the caller. onLost runs at most once, from the scheduler goroutine.
func (j *HeartbeatJob) Keep(sessionID kernel.UUID, onLost func(error)) (func(), error) {
	cmd, err := commands.NewHeartbeatSessionCommand(sessionID)
	if err != nil {
		return nil, err
	}
	if err = j.beat(cmd); err != nil {
		return nil, err
	}

	kept := &keptSession{job: j, cmd: cmd, onLost: onLost}
	kept.mu.Lock()
	kept.id = j.cron.Schedule(cron.Every(j.interval), kept)
	kept.mu.Unlock()

	return func() { kept.stop() }, nil
}

func (j *HeartbeatJob) beat(cmd commands.HeartbeatSessionCommand) error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	err := j.handler.Handle(ctx, cmd)
	j.metrics.ObserveDuration(heartbeatJobName, time.Since(start))
	if err != nil {
		j.metrics.IncFailure(heartbeatJobName)
		return err
	}
	j.metrics.IncSuccess(heartbeatJobName)
	return nil
}

type keptSession struct {
	job    *HeartbeatJob
	cmd    commands.HeartbeatSessionCommand
	onLost func(error)

	mu      sync.Mutex
	id      cron.EntryID
	stopped bool
}

// Run implements cron.Job.
func (k *keptSession) Run() {
	err := k.job.beat(k.cmd)
	if err == nil {
		return
	}

	log := k.job.logger.With().Str("session_id", k.cmd.SessionID().String()).Logger()
	if errs.IsTransient(err) {
		log.Warn().Err(err).Msg("heartbeat failed, retrying next tick")
		return
	}

	log.Info().Err(err).Msg("session lost, heartbeat stopped")
	if k.stop() && k.onLost != nil {
		k.onLost(err)
	}
}

// stop removes the entry; it reports whether this call did the removal.
func (k *keptSession) stop() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.stopped {
		return false
	}
	k.stopped = true
	k.job.cron.Remove(k.id)
	return true
}
