package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/unobtuse/ledgerscope/internal/domain"
	"github.com/unobtuse/ledgerscope/internal/jobs"
	"github.com/unobtuse/ledgerscope/internal/jobs/inmemory"
	"github.com/unobtuse/ledgerscope/internal/logger"
	"github.com/unobtuse/ledgerscope/internal/recurring"
)

// mockSource is a mock transaction source for handler tests.
type mockSource struct {
	txs []domain.Transaction
	err error
}

func (m *mockSource) QueryDebitsByUser(ctx context.Context, userID string, since, until time.Time) ([]domain.Transaction, error) {
	return m.txs, m.err
}

func testTx(id string, daysAgo int, amount, description string) domain.Transaction {
	return domain.Transaction{
		ID:             id,
		Date:           time.Now().AddDate(0, 0, -daysAgo),
		Amount:         decimal.RequireFromString(amount),
		RawDescription: description,
	}
}

func quietLogger() zerolog.Logger {
	return logger.NewWithWriter(io.Discard)
}

func TestListRecurring(t *testing.T) {
	src := &mockSource{txs: []domain.Transaction{
		testTx("1", 70, "14.99", "NETFLIX.COM"),
		testTx("2", 40, "14.99", "NETFLIX.COM"),
		testTx("3", 10, "14.99", "NETFLIX.COM*123"),
	}}
	h := NewRecurringHandler(src, nil, recurring.DefaultOptions(), quietLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/recurring?user_id=user42", nil)
	rr := httptest.NewRecorder()
	h.ListRecurring(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Count   int               `json:"count"`
		Summary recurring.Summary `json:"summary"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if resp.Count != 1 {
		t.Errorf("count = %d, want 1", resp.Count)
	}
	if resp.Summary.TotalRecurring != 1 {
		t.Errorf("summary total = %d, want 1", resp.Summary.TotalRecurring)
	}
}

func TestListRecurring_RequiresUserID(t *testing.T) {
	h := NewRecurringHandler(&mockSource{}, nil, recurring.DefaultOptions(), quietLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/recurring", nil)
	rr := httptest.NewRecorder()
	h.ListRecurring(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestListRecurring_InvalidActiveValue(t *testing.T) {
	h := NewRecurringHandler(&mockSource{}, nil, recurring.DefaultOptions(), quietLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/recurring?user_id=u&active=maybe", nil)
	rr := httptest.NewRecorder()
	h.ListRecurring(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestEnqueueScan(t *testing.T) {
	store := inmemory.NewStore()
	queue := inmemory.NewQueue(10, store)
	defer queue.Close()

	h := NewRecurringHandler(&mockSource{}, queue, recurring.DefaultOptions(), quietLogger())

	body := strings.NewReader(`{"user_id": "user42"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/recurring/scan", body)
	rr := httptest.NewRecorder()
	h.EnqueueScan(rr, req)

	if rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rr.Code, rr.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if resp["job_id"] == "" {
		t.Error("expected job_id in response")
	}

	if _, err := store.GetJob(context.Background(), resp["job_id"]); err != nil {
		t.Errorf("job not persisted: %v", err)
	}
}

func TestEnqueueScan_RequiresUserID(t *testing.T) {
	h := NewRecurringHandler(&mockSource{}, nil, recurring.DefaultOptions(), quietLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/recurring/scan", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	h.EnqueueScan(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestJobsHandler_GetJob(t *testing.T) {
	store := inmemory.NewStore()
	_ = store.SaveJob(context.Background(), &jobs.ScanJob{JobID: "j1", UserID: "user42"})

	h := NewJobsHandler(store, quietLogger())

	rr := httptest.NewRecorder()
	h.GetJob(rr, httptest.NewRequest(http.MethodGet, "/api/jobs/j1", nil), "j1")
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.GetJob(rr, httptest.NewRequest(http.MethodGet, "/api/jobs/missing", nil), "missing")
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}
