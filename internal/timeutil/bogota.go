// Package timeutil holds the America/Bogota date helpers used for grouping,
// filtering and display. Every date key in the API goes through DateKey.
package timeutil

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

const (
	// DateKeyLayout is the layout of group keys (YYYY-MM-DD).
	DateKeyLayout = "2006-01-02"
	// DisplayLayout is the layout used in exported reports.
	DisplayLayout = "02/01/2006 03:04 PM"
)

// Bogota is the business time zone. Colombia has no DST, so the fixed
// offset is an exact fallback when the zone database is unavailable.
var Bogota = loadBogota()

func loadBogota() *time.Location {
	loc, err := time.LoadLocation("America/Bogota")
	if err != nil {
		return time.FixedZone("COT", -5*60*60)
	}
	return loc
}

// DateKey returns the Bogota calendar day of t as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.In(Bogota).Format(DateKeyLayout)
}

// StartOfDay returns midnight in Bogota of the day containing t.
func StartOfDay(t time.Time) time.Time {
	local := t.In(Bogota)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, Bogota)
}

// ParseDateKey parses a YYYY-MM-DD key as midnight in Bogota.
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.ParseInLocation(DateKeyLayout, key, Bogota)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", key)
	}
	return t, nil
}

// DayRange returns the half-open interval [from, to) covering the Bogota days
// fromKey through toKey inclusive. Empty keys leave that side unbounded (zero time).
func DayRange(fromKey, toKey string) (from, to time.Time, err error) {
	if fromKey != "" {
		if from, err = ParseDateKey(fromKey); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if toKey != "" {
		if to, err = ParseDateKey(toKey); err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = to.AddDate(0, 0, 1)
	}
	if !from.IsZero() && !to.IsZero() && !from.Before(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("from date %s is after to date %s", fromKey, toKey)
	}
	return from, to, nil
}

// FormatDisplay formats t in Bogota for humans.
func FormatDisplay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(Bogota).Format(DisplayLayout)
}
