// Package minguo handles the ROC (Minguo) calendar encodings used by the
// payroll sheet: 7-digit YYYMMDD wire dates, YYY-MM-DD display dates, and
// the employee-month composite record id.
package minguo

import (
	"fmt"
	"regexp"
	"time"
)

// EraOffset is the difference between a Gregorian year and an ROC year.
const EraOffset = 1911

// Date is a calendar date with an ROC year.
type Date struct {
	Year  int // ROC year, e.g. 114
	Month int
	Day   int
}

var displayPattern = regexp.MustCompile(`^(\d{3})-(\d{2})-(\d{2})$`)

// ParseWire decodes a 7-digit YYYMMDD integer. Anything that is not exactly
// 7 digits with a plausible month and day is reported as invalid, never
// coerced.
func ParseWire(v int) (Date, bool) {
	if v < 1000000 || v > 9999999 {
		return Date{}, false
	}
	d := Date{
		Year:  v / 10000,
		Month: (v / 100) % 100,
		Day:   v % 100,
	}
	if d.Month < 1 || d.Month > 12 || d.Day < 1 || d.Day > 31 {
		return Date{}, false
	}
	return d, true
}

// Wire encodes the date back to the 7-digit YYYMMDD integer.
func (d Date) Wire() int {
	return d.Year*10000 + d.Month*100 + d.Day
}

// Display renders the date as YYY-MM-DD.
func (d Date) Display() string {
	return fmt.Sprintf("%03d-%02d-%02d", d.Year, d.Month, d.Day)
}

// ParseDisplay decodes a YYY-MM-DD display date.
func ParseDisplay(s string) (Date, bool) {
	m := displayPattern.FindStringSubmatch(s)
	if m == nil {
		return Date{}, false
	}
	var d Date
	fmt.Sscanf(s, "%03d-%02d-%02d", &d.Year, &d.Month, &d.Day)
	if d.Month < 1 || d.Month > 12 || d.Day < 1 || d.Day > 31 {
		return Date{}, false
	}
	return d, true
}

// FormatWire renders a wire date for display, falling back to the raw
// digits when the value is not a valid 7-digit date.
func FormatWire(v int) string {
	d, ok := ParseWire(v)
	if !ok {
		return fmt.Sprintf("%d", v)
	}
	return d.Display()
}

// RecordID builds the composite payroll/leave record id: employee id, a
// single underscore, the 3-digit ROC year and the zero-padded month.
// Every call site must build ids through here.
func RecordID(employeeID string, year, month int) string {
	return fmt.Sprintf("%s_%d%02d", employeeID, year, month)
}

// YearMonth extracts the ROC year and month from a time.
func YearMonth(t time.Time) (year, month int) {
	return t.Year() - EraOffset, int(t.Month())
}

// PrevMonth steps one month back, rolling January into December of the
// previous ROC year.
func PrevMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}

// ValidYearMonth reports whether the pair looks like a usable ROC payroll
// period. Years outside three digits would break the record id format.
func ValidYearMonth(year, month int) bool {
	return year >= 100 && year <= 999 && month >= 1 && month <= 12
}
