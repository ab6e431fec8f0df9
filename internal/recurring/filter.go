package recurring

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Filter is the user-supplied view filter over classified groups. Zero
// values mean "no constraint".
type Filter struct {
	// Search matches case-insensitively against display name,
	// representative name, or category.
	Search string

	// Cadence matches against the cadence label ignoring case and
	// punctuation, so "biweekly" finds "Bi-Weekly".
	Cadence string

	// Active, when set, keeps only groups with the given active flag.
	Active *bool
}

// ApplyFilter drops groups below minOccurrences and then applies the
// user filter. The occurrence cut runs after classification on purpose:
// cadence fields are computed for every candidate group even when the
// group is discarded right away.
func ApplyFilter(groups []*Group, f Filter, minOccurrences int) []*Group {
	out := make([]*Group, 0, len(groups))
	for _, g := range groups {
		if g.OccurrenceCount < minOccurrences {
			continue
		}
		if f.Search != "" && !matchesSearch(g, f.Search) {
			continue
		}
		if f.Cadence != "" && !strings.Contains(foldLabel(g.Cadence), foldLabel(f.Cadence)) {
			continue
		}
		if f.Active != nil && g.IsActive != *f.Active {
			continue
		}
		out = append(out, g)
	}
	return out
}

func matchesSearch(g *Group, term string) bool {
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(g.DisplayName), term) ||
		strings.Contains(strings.ToLower(g.RepresentativeName), term) ||
		strings.Contains(strings.ToLower(g.Category), term)
}

// foldLabel lowercases and strips non-alphanumeric characters so cadence
// labels compare independent of hyphenation and spacing.
func foldLabel(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SortByNextExpected orders groups ascending by next expected date;
// groups without a prediction sort last. The sort is stable so equal
// dates keep creation order.
func SortByNextExpected(groups []*Group) {
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i].NextExpectedDate, groups[j].NextExpectedDate
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.Before(*b)
	})
}

// daysPerMonth is the interval assumed for monthly-spend estimation when
// a group produced no interval of its own.
const daysPerMonth = 30

// Summarize derives the aggregate block over the surfaced groups.
// Estimated monthly spend counts active groups only, scaling each average
// amount by 30 over the group's average interval (a weekly group counts
// roughly 4.3 times its average; an interval-less group counts once).
func Summarize(groups []*Group) Summary {
	s := Summary{
		EstimatedMonthlySpend: decimal.Zero,
		TotalPaidInWindow:     decimal.Zero,
	}
	for _, g := range groups {
		s.TotalRecurring++
		s.TotalPaidInWindow = s.TotalPaidInWindow.Add(g.TotalAmount)
		if !g.IsActive {
			s.InactiveRecurring++
			continue
		}
		s.ActiveRecurring++
		factor := 1.0
		if g.AverageIntervalDays != nil && *g.AverageIntervalDays > 0 {
			factor = daysPerMonth / *g.AverageIntervalDays
		}
		s.EstimatedMonthlySpend = s.EstimatedMonthlySpend.Add(
			g.AverageAmount.Mul(decimal.NewFromFloat(factor)))
	}
	s.EstimatedMonthlySpend = s.EstimatedMonthlySpend.Round(2)
	return s
}
