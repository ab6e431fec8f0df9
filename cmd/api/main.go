package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/unobtuse/ledgerscope/internal/api/handlers"
	"github.com/unobtuse/ledgerscope/internal/api/middleware"
	infraBQ "github.com/unobtuse/ledgerscope/internal/infra/bigquery"
	"github.com/unobtuse/ledgerscope/internal/jobs"
	"github.com/unobtuse/ledgerscope/internal/jobs/inmemory"
	"github.com/unobtuse/ledgerscope/internal/logger"
	"github.com/unobtuse/ledgerscope/internal/recurring"
	"github.com/unobtuse/ledgerscope/internal/report"
)

func main() {
	var (
		port    = flag.String("port", "8080", "HTTP server port")
		project = flag.String("project", infraBQ.DefaultProjectID(), "GCP project ID for the transaction warehouse (or set BQ_PROJECT env)")
	)
	flag.Parse()

	log := logger.New()

	if *project == "" {
		log.Fatal().Msg("No GCP project configured - set -project or BQ_PROJECT")
	}

	ctx := context.Background()

	repo, err := infraBQ.NewRepository(ctx, *project)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create transaction repository")
	}
	defer repo.Close()

	opts := recurring.DefaultOptions()

	// Job infrastructure for asynchronous scans.
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobHandler := func(ctx context.Context, job jobs.Job) error {
		scanJob, ok := job.(*jobs.ScanJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", scanJob.JobID).
			Str("user_id", scanJob.UserID).
			Msg("Processing scan job")

		now := time.Now()
		since := now.AddDate(0, -opts.LookbackMonths, 0)

		txs, err := repo.QueryDebitsByUser(ctx, scanJob.UserID, since, now)
		if err != nil {
			return fmt.Errorf("load transactions: %w", err)
		}

		runOpts := opts
		runOpts.Now = now
		res := recurring.Detect(txs, recurring.Filter{}, runOpts)
		scanJob.GroupCount = res.Summary.TotalRecurring
		scanJob.ActiveCount = res.Summary.ActiveRecurring

		if scanJob.ExportBucket != "" {
			rep := report.Build(scanJob.UserID, res, since, now, now)
			uri, err := report.UploadToGCS(ctx, scanJob.ExportBucket, report.ObjectName(scanJob.UserID, now), rep)
			if err != nil {
				return fmt.Errorf("export report: %w", err)
			}
			scanJob.ExportURI = uri
		}

		log.Info().
			Str("job_id", scanJob.JobID).
			Int("groups", scanJob.GroupCount).
			Int("active", scanJob.ActiveCount).
			Msg("Scan job completed")

		return nil
	}

	go func() {
		log.Info().Msg("Starting scan worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Scan worker stopped with error")
		}
	}()

	recurringHandler := handlers.NewRecurringHandler(repo, jobQueue, opts, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/recurring", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			recurringHandler.ListRecurring(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/recurring/scan", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			recurringHandler.EnqueueScan(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}
