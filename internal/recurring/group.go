package recurring

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/unobtuse/ledgerscope/internal/domain"
)

// Group is one inferred recurring obligation: a cluster of debits that
// share a merchant key within similarity threshold and an amount within
// tolerance. Groups are rebuilt from scratch on every computation run;
// IDs are stable within a run only and are never persisted.
type Group struct {
	ID                 string               `json:"id"`
	RepresentativeName string               `json:"representative_name"`
	DisplayName        string               `json:"display_name"`
	Category           string               `json:"category,omitempty"`
	Members            []domain.Transaction `json:"members"`

	AverageAmount   decimal.Decimal `json:"average_amount"`
	MinAmount       decimal.Decimal `json:"min_amount"`
	MaxAmount       decimal.Decimal `json:"max_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	OccurrenceCount int             `json:"occurrence_count"`

	Cadence             string     `json:"cadence"`
	AverageIntervalDays *float64   `json:"average_interval_days,omitempty"`
	LastPaymentDate     time.Time  `json:"last_payment_date"`
	NextExpectedDate    *time.Time `json:"next_expected_date,omitempty"`
	IsActive            bool       `json:"is_active"`
}

// append adds a transaction to the group and updates the running amount
// statistics incrementally, so aggregates never need a rescan of Members.
func (g *Group) append(tx domain.Transaction) {
	g.Members = append(g.Members, tx)
	g.OccurrenceCount = len(g.Members)
	g.TotalAmount = g.TotalAmount.Add(tx.Amount)
	g.AverageAmount = g.TotalAmount.Div(decimal.NewFromInt(int64(g.OccurrenceCount)))
	if tx.Amount.LessThan(g.MinAmount) {
		g.MinAmount = tx.Amount
	}
	if tx.Amount.GreaterThan(g.MaxAmount) {
		g.MaxAmount = tx.Amount
	}
	g.LastPaymentDate = tx.Date
}

// newGroup seeds a group from its first transaction. The first member's
// normalized key becomes the representative key for all later matching;
// it is deliberately not updated as members accrue.
func newGroup(tx domain.Transaction, key string) *Group {
	return &Group{
		ID:                 uuid.NewString(),
		RepresentativeName: key,
		DisplayName:        tx.RawDescription,
		Category:           tx.Category,
		Members:            []domain.Transaction{tx},
		AverageAmount:      tx.Amount,
		MinAmount:          tx.Amount,
		MaxAmount:          tx.Amount,
		TotalAmount:        tx.Amount,
		OccurrenceCount:    1,
		LastPaymentDate:    tx.Date,
	}
}

// matches reports whether tx belongs to this group: its key must score at
// least threshold against the representative key, and its amount must be
// within tolerance of the group's current average. It returns the
// similarity score so best-match mode can rank candidates.
func (g *Group) matches(key string, tx domain.Transaction, threshold float64, tolerance decimal.Decimal) (float64, bool) {
	score := Similarity(g.RepresentativeName, key)
	if score < threshold {
		return score, false
	}
	if tx.Amount.Sub(g.AverageAmount).Abs().GreaterThan(tolerance) {
		return score, false
	}
	return score, true
}

// GroupTransactions partitions a date-ascending transaction sequence into
// candidate recurring groups in a single pass. Each transaction joins the
// first existing group (in creation order) whose representative key and
// running average amount it matches, or seeds a new group.
//
// The input must already be sorted by date; the engine depends only on
// that order, not on any other incidental ordering. Undersized groups are
// returned too; the minimum-occurrence cut happens in the filter layer so
// that cadence fields are computed before discarding.
//
// With Options.BestMatch set, the highest-scoring group above the
// threshold wins instead of the first one. This is a documented
// alternative; first-match-wins is the default for parity with the
// original behavior, trading order sensitivity for an O(n*g) scan.
func GroupTransactions(txs []domain.Transaction, opts Options) []*Group {
	var groups []*Group

	for _, tx := range txs {
		key := Normalize(tx.RawDescription)

		var target *Group
		if opts.BestMatch {
			best := -1.0
			for _, g := range groups {
				if score, ok := g.matches(key, tx, opts.SimilarityThreshold, opts.AmountTolerance); ok && score > best {
					best = score
					target = g
				}
			}
		} else {
			for _, g := range groups {
				if _, ok := g.matches(key, tx, opts.SimilarityThreshold, opts.AmountTolerance); ok {
					target = g
					break
				}
			}
		}

		if target != nil {
			target.append(tx)
		} else {
			groups = append(groups, newGroup(tx, key))
		}
	}

	return groups
}
