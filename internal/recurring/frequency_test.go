package recurring

import (
	"fmt"
	"testing"
	"time"

	"github.com/unobtuse/ledgerscope/internal/domain"
)

// groupWithGaps builds a classified-ready group whose members are spaced
// by the given day gaps, starting at start.
func groupWithGaps(start string, gaps ...int) *Group {
	d, err := time.Parse("2006-01-02", start)
	if err != nil {
		panic(err)
	}
	g := newGroup(tx("1", start, "10.00", "CITY WATER"), "city water")
	for i, gap := range gaps {
		d = d.AddDate(0, 0, gap)
		g.append(domain.Transaction{
			ID:             fmt.Sprintf("%d", i+2),
			Date:           d,
			Amount:         g.Members[0].Amount,
			RawDescription: "CITY WATER",
		})
	}
	return g
}

func TestCadenceForInterval(t *testing.T) {
	tests := []struct {
		avgDays float64
		want    string
	}{
		{6, CadenceWeekly},
		{7, CadenceWeekly},
		{8, CadenceWeekly},
		{9, "Every 9 days"},
		{12, "Every 12 days"},
		{13, CadenceBiWeekly},
		{15, CadenceBiWeekly},
		{27, CadenceMonthly},
		{30.5, CadenceMonthly},
		{33, CadenceMonthly},
		{34, "Every 34 days"},
		{85, CadenceQuarterly},
		{95, CadenceQuarterly},
		{360, CadenceYearly},
		{365, CadenceYearly},
		{370, CadenceYearly},
		{371, "Every 371 days"},
		{2, "Every 2 days"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := cadenceForInterval(tt.avgDays)
			if got != tt.want {
				t.Errorf("cadenceForInterval(%v) = %q, want %q", tt.avgDays, got, tt.want)
			}
		})
	}
}

func TestClassify_SingleMemberIsUnknown(t *testing.T) {
	g := groupWithGaps("2024-01-05")
	Classify(g, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	if g.Cadence != CadenceUnknown {
		t.Errorf("cadence = %q, want %q", g.Cadence, CadenceUnknown)
	}
	if g.AverageIntervalDays != nil {
		t.Errorf("interval = %v, want nil", *g.AverageIntervalDays)
	}
	if g.NextExpectedDate != nil {
		t.Errorf("next expected = %v, want nil", g.NextExpectedDate)
	}
	if !g.IsActive {
		t.Error("interval-less group must default to active")
	}
}

func TestClassify_MonthlyGroup(t *testing.T) {
	// Gaps of 31 and 30 days average to 30.5.
	g := groupWithGaps("2024-01-05", 31, 30)
	now := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	Classify(g, now)

	if g.Cadence != CadenceMonthly {
		t.Errorf("cadence = %q, want %q", g.Cadence, CadenceMonthly)
	}
	if g.AverageIntervalDays == nil || *g.AverageIntervalDays != 30.5 {
		t.Fatalf("interval = %v, want 30.5", g.AverageIntervalDays)
	}
	// 30.5 rounds to 31: 2024-03-06 + 31 days.
	wantNext := time.Date(2024, 4, 6, 0, 0, 0, 0, time.UTC)
	if g.NextExpectedDate == nil || !g.NextExpectedDate.Equal(wantNext) {
		t.Errorf("next expected = %v, want %v", g.NextExpectedDate, wantNext)
	}
	// 14 days since the last payment is well under 30.5 * 1.5.
	if !g.IsActive {
		t.Error("expected group to be active")
	}
}

func TestClassify_WeeklyGroup(t *testing.T) {
	g := groupWithGaps("2024-01-01", 7, 7, 7)
	Classify(g, time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC))

	if g.Cadence != CadenceWeekly {
		t.Errorf("cadence = %q, want %q", g.Cadence, CadenceWeekly)
	}
	wantNext := time.Date(2024, 1, 29, 0, 0, 0, 0, time.UTC)
	if g.NextExpectedDate == nil || !g.NextExpectedDate.Equal(wantNext) {
		t.Errorf("next expected = %v, want %v", g.NextExpectedDate, wantNext)
	}
}

func TestClassify_LapsedGroup(t *testing.T) {
	// Last payment 200 days before now with a 30-day interval:
	// 200 > 30 * 1.5, so the group is lapsed.
	g := groupWithGaps("2023-01-01", 30, 30)
	last := g.LastPaymentDate
	now := last.AddDate(0, 0, 200)
	Classify(g, now)

	if g.IsActive {
		t.Errorf("expected group lapsed: last=%v now=%v interval=%v",
			last, now, *g.AverageIntervalDays)
	}
}

func TestClassify_ActivityBoundary(t *testing.T) {
	tests := []struct {
		name       string
		daysAgo    int
		wantActive bool
	}{
		{"well within window", 30, true},
		{"just under 1.5 intervals", 44, true},
		{"exactly 1.5 intervals", 45, false},
		{"far past window", 200, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := groupWithGaps("2023-01-01", 30, 30)
			now := g.LastPaymentDate.AddDate(0, 0, tt.daysAgo)
			Classify(g, now)
			if g.IsActive != tt.wantActive {
				t.Errorf("daysAgo=%d: active = %v, want %v", tt.daysAgo, g.IsActive, tt.wantActive)
			}
		})
	}
}
