package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	xhttp "SignalAxis/pkg/http"
	pkgkafka "SignalAxis/pkg/kafka"
	applogger "SignalAxis/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	l          *applogger.Logger
	httpServer *xhttp.Server
	consumer   *pkgkafka.Consumer
	handlers   []pkgkafka.MessageHandler
}

// New creates an App. consumer may be nil when Kafka is not configured.
func New(l *applogger.Logger, httpServer *xhttp.Server, consumer *pkgkafka.Consumer, handlers ...pkgkafka.MessageHandler) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{
		l:          l,
		httpServer: httpServer,
		consumer:   consumer,
		handlers:   handlers,
	}
}

// Run starts the application and blocks until ctx is done or a signal arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if a.consumer != nil && len(a.handlers) > 0 {
		for _, h := range a.handlers {
			a.consumer.RegisterHandler(h)
		}
		if err := a.consumer.Start(ctx); err != nil {
			return err
		}
	}

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}

	<-ctx.Done()
	a.l.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services. Stores are closed by the injector cleanup.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.httpServer.ShutdownTimeout())
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return nil
}
