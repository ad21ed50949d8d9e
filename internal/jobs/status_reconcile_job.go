package jobs

import (
	"context"
	"time"

	"kitchen/internal/core/application/usecases/commands"
	"kitchen/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const statusReconcileJobName = "status-reconcile"

// OrderStatusReconciler re-runs completion aggregation over open orders.
type OrderStatusReconciler interface {
	Handle(ctx context.Context, command commands.ReconcileOrderStatusesCommand) (int, error)
}

// StatusReconcileJob heals orders whose status lags their items, which happens
// when the aggregation after an item completion fails.
type StatusReconcileJob struct {
	handler  OrderStatusReconciler
	schedule string
	timeout  time.Duration
	cron     *cron.Cron
	metrics  *metrics.CronJobMetrics
	logger   zerolog.Logger
}

func NewStatusReconcileJob(
	handler OrderStatusReconciler,
	schedule string,
	m *metrics.CronJobMetrics,
	logger zerolog.Logger,
) *StatusReconcileJob {
	logger = logger.With().Str("component", "status_reconcile_job").Logger()
	return &StatusReconcileJob{
		handler:  handler,
		schedule: schedule,
		timeout:  defaultRunTimeout,
		cron:     newCron(logger),
		metrics:  m,
		logger:   logger,
	}
}

func (j *StatusReconcileJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		defer cancel()
		_ = j.Run(ctx)
	}); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info().Str("schedule", j.schedule).Msg("status reconcile job started")
	return nil
}

// Run reconciles every restaurant once.
func (j *StatusReconcileJob) Run(ctx context.Context) error {
	cmd, err := commands.NewReconcileOrderStatusesCommand(nil)
	if err != nil {
		return err
	}

	start := time.Now()
	changed, err := j.handler.Handle(ctx, cmd)
	j.metrics.ObserveDuration(statusReconcileJobName, time.Since(start))

	if changed > 0 {
		j.logger.Warn().Int("changed", changed).Msg("order statuses reconciled")
	}
	if err != nil {
		j.metrics.IncFailure(statusReconcileJobName)
		j.logger.Error().Err(err).Msg("status reconcile run failed")
		return err
	}
	j.metrics.IncSuccess(statusReconcileJobName)
	return nil
}

func (j *StatusReconcileJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info().Msg("status reconcile job stopped")
}
