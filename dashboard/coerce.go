// dashboard/coerce.go
package dashboard

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// DailyLabelLayout is the x-axis label of a daily usage point, e.g. "Mar 07".
const DailyLabelLayout = "Jan 02"

// dateLayouts are tried in order when reading the backend's daily dates.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// intValue coerces a decoded JSON number to an int64. Anything else is 0.
func intValue(v any) int64 {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0
		}
		return int64(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return int64(f)
		}
	case int:
		return int64(n)
	case int64:
		return n
	}
	return 0
}

// fieldInt reads key from a decoded JSON object, 0 when absent or not a number.
func fieldInt(v any, key string) int64 {
	m, ok := v.(map[string]any)
	if !ok {
		return 0
	}
	return intValue(m[key])
}

// DailyPoint is one day of the try-on series.
type DailyPoint struct {
	Date   time.Time `json:"date"`
	Label  string    `json:"label"`
	TryOns int64     `json:"tryOns"`
}

// dailyPoints converts the GetTriesPerMonth payload. A payload that is not an array
// yields an empty series; entries that are not objects are skipped.
func dailyPoints(v any) []DailyPoint {
	items, ok := v.([]any)
	if !ok {
		return []DailyPoint{}
	}
	points := make([]DailyPoint, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		raw, _ := m["date"].(string)
		point := DailyPoint{Label: raw, TryOns: intValue(m["amount"])}
		if date, ok := parseDate(raw); ok {
			point.Date = date
			point.Label = date.Format(DailyLabelLayout)
		}
		points = append(points, point)
	}
	return points
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
