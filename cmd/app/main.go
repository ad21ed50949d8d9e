package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"kitchen/cmd"
	"kitchen/internal/adapters/out/notifier/amqpnotify"
	"kitchen/internal/adapters/out/notifier/memory"
	"kitchen/internal/adapters/out/notifier/redisnotify"
	"kitchen/internal/adapters/out/postgres"
	"kitchen/internal/core/ports"
	"kitchen/internal/jobs"
	"kitchen/internal/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load(".env")

	configs, err := cmd.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	appLogger := logger.New(logger.Options{
		ServiceName: "kitchen",
		Level:       configs.LogLevel,
		Format:      configs.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := postgres.Open(ctx, postgres.Options{
		Driver:          configs.DBDriver,
		DSN:             configs.DBDSN,
		MaxOpenConns:    configs.DBMaxOpenConns,
		MaxIdleConns:    configs.DBMaxIdleConns,
		ConnMaxLifetime: configs.DBConnMaxLifetime,
	})
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	if configs.DBAutoMigrate {
		if err = postgres.Migrate(ctx, gormDB, configs.DBDriver); err != nil {
			log.Fatalf("Error applying migrations: %v", err)
		}
	}

	notifier, closeNotifier, err := newNotifier(ctx, configs, appLogger)
	if err != nil {
		log.Fatalf("Error starting change notifier: %v", err)
	}
	defer func() {
		if closeErr := closeNotifier.Close(); closeErr != nil {
			appLogger.Warn().Err(closeErr).Msg("closing change notifier")
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app := cmd.NewCompositionRoot(configs, gormDB, notifier, registry, appLogger)

	heartbeatJob := app.CreateHeartbeatJob()
	jobManager := app.CreateJobManager(heartbeatJob)
	if err = jobManager.StartAll(); err != nil {
		log.Fatalf("Failed to start jobs: %v", err)
	}
	defer jobManager.StopAll()

	startWebServer(ctx, &app, heartbeatJob, registry, configs.HTTPPort, appLogger)
}

func newNotifier(ctx context.Context, configs cmd.Config, appLogger zerolog.Logger) (ports.Notifier, io.Closer, error) {
	componentLogger := logger.Component(appLogger, "notifier")

	switch strings.ToLower(configs.NotifierTransport) {
	case cmd.NotifierRedis:
		client, err := redisnotify.Connect(ctx, configs.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return redisnotify.New(client, configs.RedisPrefix, componentLogger), client, nil
	case cmd.NotifierAMQP:
		n, err := amqpnotify.Dial(configs.AMQPURL, configs.AMQPExchange, componentLogger)
		if err != nil {
			return nil, nil, err
		}
		return n, n, nil
	default:
		n := memory.New(memory.DefaultBuffer)
		return n, n, nil
	}
}

func startWebServer(
	ctx context.Context,
	app *cmd.CompositionRoot,
	keeper *jobs.HeartbeatJob,
	registry *prometheus.Registry,
	port string,
	appLogger zerolog.Logger,
) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	app.CreateHTTPServer(keeper).Register(e, registry)

	go func() {
		appLogger.Info().Str("port", port).Msg("http server listening")
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal(err)
		}
	}()

	<-ctx.Done()
	appLogger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error().Err(err).Msg("http shutdown")
	}
}
