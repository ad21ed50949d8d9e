package cmd

import (
	"kitchen/internal/adapters/in/http"
	"kitchen/internal/adapters/out/postgres"
	"kitchen/internal/core/application/usecases/commands"
	"kitchen/internal/core/application/usecases/queries"
	"kitchen/internal/core/domain/services"
	"kitchen/internal/core/ports"
	"kitchen/internal/jobs"
	"kitchen/internal/pkg/logger"
	"kitchen/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	config      Config
	gormDB      *gorm.DB
	notifier    ports.Notifier
	uowFactory  *postgres.GormUnitOfWorkFactory
	aggregator  services.CompletionAggregator
	coordinator *metrics.CoordinatorMetrics
	cronMetrics *metrics.CronJobMetrics
	logger      zerolog.Logger
}

func NewCompositionRoot(
	config Config,
	gormDB *gorm.DB,
	notifier ports.Notifier,
	registry prometheus.Registerer,
	log zerolog.Logger,
) CompositionRoot {
	return CompositionRoot{
		config:      config,
		gormDB:      gormDB,
		notifier:    notifier,
		uowFactory:  postgres.NewGormUnitOfWorkFactory(gormDB, notifier, logger.Component(log, "unit_of_work")),
		aggregator:  services.NewCompletionAggregator(),
		coordinator: metrics.NewCoordinatorMetrics(registry),
		cronMetrics: metrics.NewCronJobMetrics(registry),
		logger:      log,
	}
}

func (c *CompositionRoot) uow() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) orderUoW() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) sessionUoW() commands.SessionUoWFactory {
	return FuncSessionUoWFactory(func() commands.SessionUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreatePlaceOrderCommandHandler() commands.PlaceOrderCommandHandler {
	return commands.NewPlaceOrderCommandHandler(c.orderUoW())
}

func (c *CompositionRoot) CreateClaimOrderCommandHandler() commands.ClaimOrderCommandHandler {
	return commands.NewClaimOrderCommandHandler(c.uow(), c.coordinator, logger.Component(c.logger, "claim_order"))
}

func (c *CompositionRoot) CreateReleaseOrderCommandHandler() commands.ReleaseOrderCommandHandler {
	return commands.NewReleaseOrderCommandHandler(c.uow(), c.coordinator, logger.Component(c.logger, "release_order"))
}

func (c *CompositionRoot) CreateServeOrderCommandHandler() commands.ServeOrderCommandHandler {
	return commands.NewServeOrderCommandHandler(c.orderUoW())
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	return commands.NewCancelOrderCommandHandler(c.orderUoW())
}

func (c *CompositionRoot) CreateMarkItemCompletedCommandHandler() commands.MarkItemCompletedCommandHandler {
	return commands.NewMarkItemCompletedCommandHandler(
		c.uow(), c.aggregator, c.coordinator, logger.Component(c.logger, "mark_item_completed"),
	)
}

func (c *CompositionRoot) CreateOpenSessionCommandHandler() commands.OpenSessionCommandHandler {
	return commands.NewOpenSessionCommandHandler(c.sessionUoW(), c.coordinator)
}

func (c *CompositionRoot) CreateHeartbeatSessionCommandHandler() commands.HeartbeatSessionCommandHandler {
	return commands.NewHeartbeatSessionCommandHandler(c.sessionUoW(), c.config.LivenessWindow)
}

func (c *CompositionRoot) CreateCloseSessionCommandHandler() commands.CloseSessionCommandHandler {
	return commands.NewCloseSessionCommandHandler(c.uow(), c.coordinator, logger.Component(c.logger, "close_session"))
}

func (c *CompositionRoot) CreateReapStaleSessionsCommandHandler() commands.ReapStaleSessionsCommandHandler {
	return commands.NewReapStaleSessionsCommandHandler(
		c.uow(), c.config.LivenessWindow, c.coordinator, logger.Component(c.logger, "reap_stale_sessions"),
	)
}

func (c *CompositionRoot) CreateReconcileOrderStatusesCommandHandler() commands.ReconcileOrderStatusesCommandHandler {
	return commands.NewReconcileOrderStatusesCommandHandler(
		c.orderUoW(), c.aggregator, logger.Component(c.logger, "reconcile_order_statuses"),
	)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetPendingOrdersQueryHandler() queries.GetPendingOrdersQueryHandler {
	return queries.NewGetPendingOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListSessionsQueryHandler() queries.ListSessionsQueryHandler {
	return queries.NewListSessionsQueryHandler(c.gormDB, c.config.LivenessWindow)
}

func (c *CompositionRoot) CreateHeartbeatJob() *jobs.HeartbeatJob {
	return jobs.NewHeartbeatJob(c.CreateHeartbeatSessionCommandHandler(), c.config.HeartbeatInterval, c.cronMetrics, c.logger)
}

// CreateJobManager wires the scheduled jobs around an existing heartbeat job, which
// the HTTP server shares for its change feed.
func (c *CompositionRoot) CreateJobManager(heartbeat *jobs.HeartbeatJob) *jobs.JobManager {
	return jobs.NewJobManager(
		jobs.NewSessionReaperJob(c.CreateReapStaleSessionsCommandHandler(), c.config.ReaperSchedule, c.cronMetrics, c.logger),
		jobs.NewStatusReconcileJob(
			c.CreateReconcileOrderStatusesCommandHandler(), c.config.ReconcileSchedule, c.cronMetrics, c.logger,
		),
		heartbeat,
	)
}

func (c *CompositionRoot) CreateHTTPServer(keeper http.SessionKeeper) *http.Server {
	return http.NewServer(
		http.Handlers{
			PlaceOrder:       c.CreatePlaceOrderCommandHandler(),
			ClaimOrder:       c.CreateClaimOrderCommandHandler(),
			ReleaseOrder:     c.CreateReleaseOrderCommandHandler(),
			ServeOrder:       c.CreateServeOrderCommandHandler(),
			CancelOrder:      c.CreateCancelOrderCommandHandler(),
			CompleteItem:     c.CreateMarkItemCompletedCommandHandler(),
			OpenSession:      c.CreateOpenSessionCommandHandler(),
			HeartbeatSession: c.CreateHeartbeatSessionCommandHandler(),
			CloseSession:     c.CreateCloseSessionCommandHandler(),
			GetOrder:         c.CreateGetOrderQueryHandler(),
			GetPendingOrders: c.CreateGetPendingOrdersQueryHandler(),
			ListSessions:     c.CreateListSessionsQueryHandler(),
		},
		c.notifier,
		keeper,
		[]byte(c.config.JWTSecret),
		logger.Component(c.logger, "http"),
	)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncSessionUoWFactory func() commands.SessionUoW

func (f FuncSessionUoWFactory) Create() commands.SessionUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
