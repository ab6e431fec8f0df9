package bigquery

import (
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/unobtuse/ledgerscope/internal/domain"
)

// TransactionRow mirrors the finance.transactions warehouse schema. Only
// the columns the detection service reads are mapped; the table carries
// more (ingest bookkeeping, split flags, tags) owned by other services.
type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED

	UserID    string `bigquery:"user_id"`    // NULLABLE
	AccountID string `bigquery:"account_id"` // NULLABLE

	TransactionDate civil.Date `bigquery:"transaction_date"` // REQUIRED

	Amount   *big.Rat `bigquery:"amount"`   // REQUIRED NUMERIC, negative = debit
	Currency string   `bigquery:"currency"` // REQUIRED STRING

	Direction bigquery.NullString `bigquery:"direction"` // NULLABLE, IN/OUT

	RawDescription string              `bigquery:"raw_description"` // REQUIRED STRING
	CategoryName   bigquery.NullString `bigquery:"category_name"`   // NULLABLE

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED
}

// toDomain converts a warehouse row into the engine's input shape. The
// NUMERIC amount is signed in the warehouse (debits negative); the engine
// wants the debit magnitude, so the value is flipped to its absolute
// form with two decimal places.
func (r *TransactionRow) toDomain() domain.Transaction {
	amount := decimal.Zero
	if r.Amount != nil {
		amount = decimal.NewFromBigRat(r.Amount, 2).Abs()
	}
	return domain.Transaction{
		ID:             r.TransactionID,
		Date:           r.TransactionDate.In(time.UTC),
		Amount:         amount,
		RawDescription: r.RawDescription,
		Category:       r.CategoryName.StringVal,
	}
}
