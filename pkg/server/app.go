package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"astrochart/internal/domain/repository"
	"astrochart/internal/handler/api"
	"astrochart/internal/service/stream"
	"astrochart/internal/usecase"
	pkgch "astrochart/pkg/clickhouse"
	"astrochart/pkg/config"
	xhttp "astrochart/pkg/http"
	pkgkafka "astrochart/pkg/kafka"
	applogger "astrochart/pkg/logger"
	"astrochart/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	handler    *api.ChartsHandler
	hub        *stream.Hub
	consumer   *pkgkafka.Consumer
	kh         *usecase.ChartRequestsHandler
	jobs       *queue.RedisQueue
	chClient   *pkgch.Client
	pub        repository.Publisher
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	handler *api.ChartsHandler,
	hub *stream.Hub,
	consumer *pkgkafka.Consumer,
	kh *usecase.ChartRequestsHandler,
	jobs *queue.RedisQueue,
	chClient *pkgch.Client,
	pub repository.Publisher,
) *App {
	return &App{
		cfg:      cfg,
		log:      log,
		handler:  handler,
		hub:      hub,
		consumer: consumer,
		kh:       kh,
		jobs:     jobs,
		chClient: chClient,
		pub:      pub,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	if a.hub != nil {
		a.hub.Start(ctx)
		a.log.Info("transit hub started",
			applogger.Duration("interval", a.cfg.Transit.Interval))
	}

	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.log.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.log.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	if a.jobs != nil {
		if err := a.jobs.Start(); err != nil {
			a.log.Error("job queue start error", applogger.Error(err))
		} else {
			a.jobs.StartRetryProcessor()
			a.log.Info("job queue started")
		}
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if a.hub != nil {
		a.hub.Stop()
	}

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if a.jobs != nil {
		if err := a.jobs.Stop(shutdownCtx); err != nil {
			a.log.Warn("job queue stop error", applogger.Error(err))
		}
	}

	if a.pub != nil {
		if err := a.pub.Close(); err != nil {
			a.log.Warn("publisher close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.RemoveCollector()

	a.log.Info("shutdown complete")
	return nil
}
