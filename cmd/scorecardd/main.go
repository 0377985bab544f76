// cmd/scorecardd/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/falkivanov/cloudcraft-express/internal/common/config"
	"github.com/falkivanov/cloudcraft-express/internal/common/database"
	"github.com/falkivanov/cloudcraft-express/internal/common/logger"
	"github.com/falkivanov/cloudcraft-express/internal/common/observability"
	"github.com/falkivanov/cloudcraft-express/internal/extract/assembler"
	"github.com/falkivanov/cloudcraft-express/internal/extract/metadata"
	"github.com/falkivanov/cloudcraft-express/internal/queue"
	"github.com/falkivanov/cloudcraft-express/internal/search"
	"github.com/falkivanov/cloudcraft-express/internal/server"
	"github.com/falkivanov/cloudcraft-express/internal/storage"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting scorecard service...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch with retry (best effort: the report index is
	// not on the critical path) ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 5, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		esClient = nil
		zapLog.Warn("elasticsearch unavailable, report search disabled", zap.Error(err))
	} else {
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Wire the extraction pipeline ---
	scorecards := storage.NewScorecardStore(pg.DB, log)
	jobs := storage.NewJobStore(pg.DB, log)
	employees := storage.NewEmployeeDirectory(pg.DB, rdb.Client,
		time.Duration(cfg.Extraction.EmployeeCacheTTL)*time.Minute, log)

	var reports *search.ReportIndex
	var reportPublisher assembler.ReportPublisher
	if esClient != nil {
		reports = search.NewReportIndex(esClient.Client, cfg.Extraction.ReportsIndex, log)
		reportPublisher = reports
	}

	asm := assembler.New(assembler.Options{
		Store:   scorecards,
		Jobs:    jobs,
		Reports: reportPublisher,
		Names:   employees,
		Defaults: metadata.Defaults{
			Location: cfg.Extraction.DefaultLocation,
			Score:    cfg.Extraction.DefaultScore,
			Rank:     cfg.Extraction.DefaultRank,
		},
		Obs:    obs,
		Logger: log,
	})

	jobQueue := queue.New(rdb.Client, cfg.Uploads.QueueName)
	svc := server.NewService(server.ServiceOptions{
		Jobs:       jobs,
		Scorecards: scorecards,
		Extractor:  asm,
		Queue:      jobQueue,
		UploadsDir: cfg.Uploads.Dir,
		MaxSizeMB:  cfg.Uploads.MaxSizeMB,
		Logger:     log,
	})

	// --- Start queue workers ---
	for i := 0; i < cfg.Uploads.WorkerCount; i++ {
		worker := queue.NewWorker(jobQueue, svc.Process, log)
		go worker.Run(ctx)
	}
	zapLog.Info("Queue workers started", zap.Int("count", cfg.Uploads.WorkerCount))

	// --- Start HTTP server ---
	var reportSearcher server.ReportSearcher
	if reports != nil {
		reportSearcher = reports
	}
	handlers := server.NewHandlers(svc, reportSearcher, cfg.App.Version, log)
	router := server.NewRouter(handlers)

	httpServer := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}
	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http shutdown failed", zap.Error(err))
	}

	zapLog.Info("Scorecard service stopped")
}
