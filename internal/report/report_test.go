package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/unobtuse/ledgerscope/internal/recurring"
)

func TestWriteJSON(t *testing.T) {
	res := recurring.Result{
		Groups: []*recurring.Group{
			{
				ID:                 "g-1",
				RepresentativeName: "netflix.com",
				DisplayName:        "NETFLIX.COM",
				OccurrenceCount:    3,
				Cadence:            recurring.CadenceMonthly,
				AverageAmount:      decimal.RequireFromString("14.99"),
				IsActive:           true,
			},
		},
		Summary: recurring.Summary{
			TotalRecurring:        1,
			ActiveRecurring:       1,
			EstimatedMonthlySpend: decimal.RequireFromString("14.99"),
			TotalPaidInWindow:     decimal.RequireFromString("44.97"),
		},
	}
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	rep := Build("user42", res, now.AddDate(0, -6, 0), now, now)

	buf := &bytes.Buffer{}
	if err := WriteJSON(buf, rep); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["user_id"] != "user42" {
		t.Errorf("user_id = %v, want user42", decoded["user_id"])
	}
	if !strings.Contains(buf.String(), "netflix.com") {
		t.Error("expected group key in output")
	}
}

func TestObjectName(t *testing.T) {
	ts := time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC)
	name := ObjectName("user42", ts)

	if !strings.HasPrefix(name, "reports/2024/03/06/") {
		t.Errorf("object name %q missing date partition prefix", name)
	}
	if !strings.HasSuffix(name, "-user42.json") {
		t.Errorf("object name %q missing user suffix", name)
	}

	// Names must be unique per call.
	if other := ObjectName("user42", ts); other == name {
		t.Error("expected unique object names for repeated calls")
	}
}
