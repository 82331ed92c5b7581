package server

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	mid "TradeTuner/internal/middleware"
	"TradeTuner/internal/usecase"
	pkgch "TradeTuner/pkg/clickhouse"
	"TradeTuner/pkg/config"
	xhttp "TradeTuner/pkg/http"
	pkgkafka "TradeTuner/pkg/kafka"
	applogger "TradeTuner/pkg/logger"
	"TradeTuner/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	collector   *usecase.TradeCollector
	pipeline    *mid.RealtimePipeline
	consumer    *pkgkafka.Consumer
	kh          pkgkafka.MessageHandler
	chClient    *pkgch.Client
	jobQueue    *queue.RedisQueue
	scheduler   *usecase.Scheduler
	analysisJob *usecase.AnalysisJob
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	collector *usecase.TradeCollector,
	pipeline *mid.RealtimePipeline,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:       cfg,
		collector: collector,
		pipeline:  pipeline,
		consumer:  consumer,
		kh:        kh,
		chClient:  chClient,
	}
}

// SetHTTPHandler allows DI to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// SetScheduler wires the periodic analysis scheduler and its job queue.
func (a *App) SetScheduler(q *queue.RedisQueue, s *usecase.Scheduler, job *usecase.AnalysisJob) {
	a.jobQueue = q
	a.scheduler = s
	a.analysisJob = job
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// init app logger (console info by default)
	l, _ := applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Start trade path: pipeline flusher, then the stream collector
	if a.pipeline != nil {
		a.pipeline.Start(ctx)
	}
	if a.collector != nil {
		go func() {
			if err := a.collector.Start(ctx); err != nil {
				l.Error("collector error", applogger.Error(err))
			}
		}()
		l.Info("collector started", applogger.Strings("pairs", a.cfg.Exchange.Pairs))
	}

	// Start consumer if configured
	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	// Start scheduler and its worker queue if configured
	if a.jobQueue != nil && a.scheduler != nil {
		if a.analysisJob != nil {
			a.jobQueue.RegisterJob(a.analysisJob)
		}
		if err := a.jobQueue.Start(); err != nil {
			l.Error("job queue start error", applogger.Error(err))
		} else {
			a.jobQueue.StartRetryProcessor()
			go a.scheduler.Start(ctx)
			l.Info("scheduler started")
		}
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	l, err := applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})
	if err != nil {
		log.Printf("failed to create logger: %v", err)
		return err
	}
	l.Info("shutting down...")

	// Stop stream and pipeline
	if a.collector != nil {
		if err := a.collector.Stop(); err != nil {
			l.Warn("collector stop error", applogger.Error(err))
		}
	}
	if a.pipeline != nil {
		a.pipeline.Stop()
	}

	// Shutdown HTTP server
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	// Stop scheduler queue
	if a.jobQueue != nil {
		if err := a.jobQueue.Stop(shutdownCtx); err != nil {
			l.Warn("job queue stop error", applogger.Error(err))
		}
	}

	// Stop consumer
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// Close infrastructure clients
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	l.Info("shutdown complete")
	return nil
}
