package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single debit already fetched for one user within the
// lookback window. The detection engine treats it as read-only input.
// Amount is the debit magnitude and is always positive; the caller is
// responsible for filtering out credits and zero amounts before handing
// transactions to the engine.
type Transaction struct {
	ID             string          `json:"id"`
	Date           time.Time       `json:"date"`
	Amount         decimal.Decimal `json:"amount"`
	RawDescription string          `json:"raw_description"`
	Category       string          `json:"category,omitempty"`
}
