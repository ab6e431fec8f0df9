package recurring

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/unobtuse/ledgerscope/internal/domain"
)

// Defaults for the engine's tunable thresholds.
const (
	DefaultMinOccurrences      = 3
	DefaultLookbackMonths      = 6
	DefaultSimilarityThreshold = 80
)

// DefaultAmountTolerance is the maximum absolute difference, in currency
// units, between a transaction's amount and a group's running average for
// the transaction to still join that group.
var DefaultAmountTolerance = decimal.RequireFromString("5.00")

// Options carries the engine's tunable parameters. The zero value is not
// usable; start from DefaultOptions.
type Options struct {
	// MinOccurrences is the smallest member count a group needs to be
	// surfaced in the final output.
	MinOccurrences int

	// LookbackMonths bounds the historical window callers should fetch.
	// The engine itself never filters by date; this is advisory for the
	// data-loading layer.
	LookbackMonths int

	// AmountTolerance is the absolute amount slack for group membership.
	AmountTolerance decimal.Decimal

	// SimilarityThreshold is the 0-100 score at or above which two keys
	// are considered the same merchant.
	SimilarityThreshold float64

	// BestMatch switches the tie-break from first-match-in-creation-order
	// to highest-scoring-candidate.
	BestMatch bool

	// Now anchors the active/lapsed classification. Callers with no
	// opinion leave it zero and Detect substitutes time.Now.
	Now time.Time
}

// DefaultOptions returns the engine defaults.
func DefaultOptions() Options {
	return Options{
		MinOccurrences:      DefaultMinOccurrences,
		LookbackMonths:      DefaultLookbackMonths,
		AmountTolerance:     DefaultAmountTolerance,
		SimilarityThreshold: DefaultSimilarityThreshold,
	}
}

// Summary aggregates the surfaced groups of one computation run.
type Summary struct {
	TotalRecurring        int             `json:"total_recurring"`
	ActiveRecurring       int             `json:"active_recurring"`
	InactiveRecurring     int             `json:"inactive_recurring"`
	EstimatedMonthlySpend decimal.Decimal `json:"estimated_monthly_spend"`
	TotalPaidInWindow     decimal.Decimal `json:"total_paid_in_window"`
}

// Result is the output of one detection run: the filtered, sorted groups
// and their summary block.
type Result struct {
	Groups  []*Group `json:"groups"`
	Summary Summary  `json:"summary"`
}

// Detect runs the full pipeline over a date-ascending debit sequence:
// group, classify each group's cadence, apply the caller's filter plus
// the minimum-occurrence cut, sort by next expected date, and summarize.
//
// It is a pure, synchronous computation; it does no I/O, keeps no state
// between runs, and never mutates the input slice. Empty input yields an
// empty group list and a zeroed summary.
func Detect(txs []domain.Transaction, filter Filter, opts Options) Result {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	groups := GroupTransactions(txs, opts)
	for _, g := range groups {
		Classify(g, now)
	}

	surfaced := ApplyFilter(groups, filter, opts.MinOccurrences)
	SortByNextExpected(surfaced)

	return Result{
		Groups:  surfaced,
		Summary: Summarize(surfaced),
	}
}
