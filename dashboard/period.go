// dashboard/period.go
package dashboard

import "time"

// PeriodLabelLayout renders a period subtitle such as "March 2026".
const PeriodLabelLayout = "January 2006"

// MonthRange returns the calendar month containing t as a UTC range: the first day at
// 00:00:00.000 through the last day at 23:59:59.999. The year and month are read in
// t's own location.
func MonthRange(t time.Time) (from, to time.Time) {
	year, month, _ := t.Date()
	from = time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to = time.Date(year, month+1, 0, 23, 59, 59, int(999*time.Millisecond), time.UTC)
	return from, to
}

// PeriodLabel returns the subtitle shown under the metric cards.
func PeriodLabel(from time.Time) string {
	if from.IsZero() {
		return "Current Month"
	}
	return from.Format(PeriodLabelLayout)
}
