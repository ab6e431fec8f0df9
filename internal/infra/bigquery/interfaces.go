package bigquery

import (
	"context"
	"time"

	"github.com/unobtuse/ledgerscope/internal/domain"
)

// TransactionSource abstracts where a user's debit window comes from, so
// handlers and scan jobs can be tested against an in-memory fake and the
// CLI can swap in a CSV-backed source.
type TransactionSource interface {
	// QueryDebitsByUser returns the user's debits in [since, until],
	// ascending by date.
	QueryDebitsByUser(ctx context.Context, userID string, since, until time.Time) ([]domain.Transaction, error)
}

var _ TransactionSource = (*Repository)(nil)
