package predictor

import (
	"fmt"
	"strings"
	"time"
)

// Encoded categorical fields, in feature order.
const (
	FieldStoreID = "store_id"
	FieldItemID  = "item_id"
)

// FeatureNames is the column order the tree model was trained on.
var FeatureNames = []string{"year", "month", "day", FieldStoreID, FieldItemID}

// dateLayout accepts one- or two-digit month and day.
const dateLayout = "2006-1-2"

var timestampLayouts = []string{
	dateLayout,
	time.RFC3339Nano,
	"2006-1-2T15:04:05",
	"2006-1-2 15:04:05",
	"2006/1/2",
	"20060102",
	"Jan 2 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"January 2, 2006",
}

// ParseDate parses a YYYY-MM-DD calendar date. Month and day may omit the
// leading zero; out-of-range days are rejected.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidInput(fmt.Sprintf("time data %q does not match format YYYY-MM-DD", s))
	}
	return t, nil
}

// ParseTimestamp parses an anchor timestamp in any of the accepted layouts.
// A UTC offset is dropped and the wall-clock time kept, so the result is
// always in UTC.
func ParseTimestamp(s string) (time.Time, error) {
	v := strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC), nil
		}
	}
	return time.Time{}, ErrInvalidInput(fmt.Sprintf("could not parse %q as a date", s))
}

// Features builds the tree model input row [year, month, day, store, item].
func Features(date time.Time, storeCode, itemCode int) []float64 {
	return []float64{
		float64(date.Year()),
		float64(date.Month()),
		float64(date.Day()),
		float64(storeCode),
		float64(itemCode),
	}
}
