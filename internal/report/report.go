package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/unobtuse/ledgerscope/internal/recurring"
)

// Report is the serialized output of one detection run, suitable for
// export. It is a snapshot, never a system of record: groups are rebuilt
// from transactions on every run.
type Report struct {
	UserID      string    `json:"user_id"`
	GeneratedAt time.Time `json:"generated_at"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`

	Groups  []*recurring.Group `json:"groups"`
	Summary recurring.Summary  `json:"summary"`
}

// Build wraps a detection result with its run metadata.
func Build(userID string, res recurring.Result, windowStart, windowEnd, generatedAt time.Time) Report {
	return Report{
		UserID:      userID,
		GeneratedAt: generatedAt,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		Groups:      res.Groups,
		Summary:     res.Summary,
	}
}

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, rep Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("WriteJSON: encode report: %w", err)
	}
	return nil
}

// ObjectName builds a date-partitioned GCS object name for a report,
// e.g. "reports/2024/03/06/<uuid>-user42.json".
func ObjectName(userID string, ts time.Time) string {
	return fmt.Sprintf("reports/%s/%s-%s.json", ts.Format("2006/01/02"), uuid.NewString(), userID)
}
