package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/unobtuse/ledgerscope/internal/api/middleware"
	infra "github.com/unobtuse/ledgerscope/internal/infra/bigquery"
	"github.com/unobtuse/ledgerscope/internal/jobs"
	"github.com/unobtuse/ledgerscope/internal/recurring"
)

// RecurringHandler serves the recurring-payment detection endpoints.
// Detection runs synchronously per request over a fresh snapshot of the
// user's debit window; nothing is cached between requests.
type RecurringHandler struct {
	source    infra.TransactionSource
	publisher jobs.Publisher
	opts      recurring.Options
	log       zerolog.Logger
}

// NewRecurringHandler creates a new recurring handler.
func NewRecurringHandler(source infra.TransactionSource, publisher jobs.Publisher, opts recurring.Options, log zerolog.Logger) *RecurringHandler {
	return &RecurringHandler{
		source:    source,
		publisher: publisher,
		opts:      opts,
		log:       log,
	}
}

// ListRecurring handles GET /api/recurring
//
// Query parameters: user_id (required), search, cadence, active.
func (h *RecurringHandler) ListRecurring(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	userID := query.Get("user_id")
	if userID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	filter := recurring.Filter{
		Search:  query.Get("search"),
		Cadence: query.Get("cadence"),
	}
	if activeStr := query.Get("active"); activeStr != "" {
		active, err := strconv.ParseBool(activeStr)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid active value")
			return
		}
		filter.Active = &active
	}

	now := time.Now()
	since := now.AddDate(0, -h.opts.LookbackMonths, 0)

	txs, err := h.source.QueryDebitsByUser(ctx, userID, since, now)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to load transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load transactions")
		return
	}

	opts := h.opts
	opts.Now = now
	res := recurring.Detect(txs, filter, opts)

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"groups":  res.Groups,
		"summary": res.Summary,
		"count":   len(res.Groups),
	})
}

// EnqueueScan handles POST /api/recurring/scan
func (h *RecurringHandler) EnqueueScan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID       string `json:"user_id"`
		ExportBucket string `json:"export_bucket"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.UserID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	ctx := r.Context()

	job := &jobs.ScanJob{
		UserID:       req.UserID,
		ExportBucket: req.ExportBucket,
	}

	if err := h.publisher.PublishScan(ctx, job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue scan job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue scan job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("user_id", req.UserID).Msg("Scan job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":  job.JobID,
		"user_id": req.UserID,
		"status":  string(job.Status),
	})
}

// JobsHandler serves scan-job status endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store: store,
		log:   log,
	}
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	filter := jobs.JobFilter{
		UserID: query.Get("user_id"),
		Status: jobs.JobStatus(query.Get("status")),
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid limit value")
			return
		}
		filter.Limit = limit
	}

	list, err := h.store.ListJobs(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  list,
		"count": len(list),
	})
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	ctx := r.Context()

	job, err := h.store.GetJob(ctx, jobID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}
