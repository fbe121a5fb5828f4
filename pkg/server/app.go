package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"OilSim/internal/usecase"
	pkgch "OilSim/pkg/clickhouse"
	"OilSim/pkg/config"
	xhttp "OilSim/pkg/http"
	applogger "OilSim/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	manager    *usecase.SessionManager
	processor  *usecase.ResultProcessor
	chClient   *pkgch.Client
	handler    xhttp.Handler
	httpServer *xhttp.Server
	log        *applogger.Logger
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	manager *usecase.SessionManager,
	processor *usecase.ResultProcessor,
	chClient *pkgch.Client,
	handler xhttp.Handler,
	log *applogger.Logger,
) *App {
	return &App{
		cfg:       cfg,
		manager:   manager,
		processor: processor,
		chClient:  chClient,
		handler:   handler,
		log:       log,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("simulator ready",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("backend", a.cfg.Backend.Type),
		applogger.Strings("scenarios", a.manager.Scenarios()),
	)

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	// Stop accepting requests first.
	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	// Drain session tick loops.
	if err := a.manager.Shutdown(ctx); err != nil {
		a.log.Warn("session manager stop error", applogger.Error(err))
	}

	// Close backend resources (publisher/archive).
	if a.processor != nil {
		a.processor.Close()
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
