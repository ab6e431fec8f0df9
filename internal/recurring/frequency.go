package recurring

import (
	"fmt"
	"math"
	"time"
)

// Named cadence labels. Anything outside the buckets falls back to an
// "Every N days" label built from the rounded average interval.
const (
	CadenceUnknown   = "Unknown"
	CadenceWeekly    = "Weekly"
	CadenceBiWeekly  = "Bi-Weekly"
	CadenceMonthly   = "Monthly"
	CadenceQuarterly = "Quarterly"
	CadenceYearly    = "Yearly"
)

const hoursPerDay = 24

// activeSlack is the multiple of the average interval after which a group
// with no new payment is considered lapsed.
const activeSlack = 1.5

// Classify fills in the cadence fields of a group from its members'
// dates: average interval, cadence bucket, next expected date, and the
// active flag relative to now.
//
// Fewer than two members cannot yield an interval; such groups get
// cadence Unknown, no prediction, and default to active (a single signal
// cannot be judged lapsed).
func Classify(g *Group, now time.Time) {
	if g.OccurrenceCount < 2 {
		g.Cadence = CadenceUnknown
		g.AverageIntervalDays = nil
		g.NextExpectedDate = nil
		g.IsActive = true
		return
	}

	var totalDays float64
	for i := 1; i < len(g.Members); i++ {
		totalDays += g.Members[i].Date.Sub(g.Members[i-1].Date).Hours() / hoursPerDay
	}
	avg := totalDays / float64(len(g.Members)-1)

	g.Cadence = cadenceForInterval(avg)
	g.AverageIntervalDays = &avg

	next := g.LastPaymentDate.AddDate(0, 0, int(math.Round(avg)))
	g.NextExpectedDate = &next

	sinceLast := now.Sub(g.LastPaymentDate).Hours() / hoursPerDay
	g.IsActive = sinceLast < avg*activeSlack
}

// cadenceForInterval maps an average day gap onto a named cadence using
// inclusive ranges. The ranges allow the jitter real payment schedules
// show (weekends, short months, processing delays).
func cadenceForInterval(avgDays float64) string {
	switch {
	case avgDays >= 6 && avgDays <= 8:
		return CadenceWeekly
	case avgDays >= 13 && avgDays <= 15:
		return CadenceBiWeekly
	case avgDays >= 27 && avgDays <= 33:
		return CadenceMonthly
	case avgDays >= 85 && avgDays <= 95:
		return CadenceQuarterly
	case avgDays >= 360 && avgDays <= 370:
		return CadenceYearly
	default:
		return fmt.Sprintf("Every %d days", int(math.Round(avgDays)))
	}
}
