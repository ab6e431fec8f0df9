package bigquery

import (
	"context"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/unobtuse/ledgerscope/internal/domain"
)

const (
	datasetID         = "finance"
	transactionsTable = "transactions"
	dateFormat        = "2006-01-02"
)

// DefaultProjectID resolves the GCP project from the environment.
func DefaultProjectID() string {
	return os.Getenv("BQ_PROJECT")
}

// Repository reads transactions from the warehouse through a shared
// BigQuery client. Create one per process and Close it on shutdown.
type Repository struct {
	client *bigquery.Client
}

// NewRepository creates a repository with its own BigQuery client.
func NewRepository(ctx context.Context, projectID string) (*Repository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewRepository: bigquery client: %w", err)
	}
	return &Repository{client: client}, nil
}

// Close closes the underlying BigQuery client.
func (r *Repository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// QueryDebitsByUser loads one user's debit transactions inside
// [since, until], ascending by transaction date, mapped to the engine's
// domain shape. Debits are rows with a negative amount (or an explicit
// OUT direction); credits never reach the detection engine.
func (r *Repository) QueryDebitsByUser(ctx context.Context, userID string, since, until time.Time) ([]domain.Transaction, error) {
	q := r.client.Query(`
		SELECT
			t.transaction_id,
			t.user_id,
			t.account_id,
			t.transaction_date,
			t.amount,
			t.currency,
			t.direction,
			t.raw_description,
			t.category_name,
			t.created_ts
		FROM finance.transactions t
		WHERE t.user_id = @user_id
		  AND t.transaction_date >= @start_date
		  AND t.transaction_date <= @end_date
		  AND (t.amount < 0 OR t.direction = 'OUT')
		ORDER BY t.transaction_date, t.created_ts
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "start_date", Value: since.Format(dateFormat)},
		{Name: "end_date", Value: until.Format(dateFormat)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("QueryDebitsByUser: query read: %w", err)
	}

	var txs []domain.Transaction
	for {
		var row TransactionRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("QueryDebitsByUser: iter next: %w", err)
		}
		txs = append(txs, row.toDomain())
	}

	return txs, nil
}
