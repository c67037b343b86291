package coerce

import (
	"errors"
	"math"
	"strconv"
	"time"
)

const msPerDay = 24 * 60 * 60 * 1000

// Serial values outside this open interval have no date in years 1
// through 9999. The lower bound admits the zero time.Time.
const (
	minSerial = -693594.0
	maxSerial = 2958466.0
)

// epoch is day zero of the spreadsheet date-serial convention.
var epoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ErrSerialOutOfRange is returned when a day-count serial has no date.
var ErrSerialOutOfRange = errors.New("day-count serial out of range")

// ToSerial converts t to the number of days since 1899-12-30, with the
// time of day as the fractional part. The wall clock of t is used as-is; the
// serial carries no zone. Precision is one millisecond.
//
// Dates before the epoch follow the spreadsheet convention where the
// fractional part still counts forward from midnight: 1899-12-29 18:00 is
// -1.75, not -0.25.
func ToSerial(t time.Time) float64 {
	wall := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	ms := wall.UnixMilli() - epoch.UnixMilli()
	if ms < 0 {
		if frac := ms % msPerDay; frac != 0 {
			ms -= (msPerDay + frac) * 2
		}
	}
	return float64(ms) / msPerDay
}

// FromSerial converts a day-count serial back to a UTC time, rounded to the
// nearest millisecond.
func FromSerial(serial float64) (time.Time, error) {
	if math.IsNaN(serial) || serial <= minSerial || serial >= maxSerial {
		return time.Time{}, ErrSerialOutOfRange
	}
	half := 0.5
	if serial < 0 {
		half = -0.5
	}
	ms := int64(serial*msPerDay + half)
	if ms < 0 {
		ms -= (ms % msPerDay) * 2
	}
	return time.UnixMilli(epoch.UnixMilli() + ms).UTC(), nil
}

// FormatSerial renders a serial in invariant decimal form.
func FormatSerial(serial float64) string {
	return strconv.FormatFloat(serial, 'f', -1, 64)
}
