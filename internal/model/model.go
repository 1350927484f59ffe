package model

import (
	"fmt"
	"time"
)

// Entry is a source-agnostic event ready to be stored in a calendar day.
// Loaders (config seed events, ICS feeds, cron schedules) all produce
// entries; the importer turns them into calendar events.
type Entry struct {
	SourceID string // config source ID ("config", ICS ID, schedule name)

	Name string
	Day  int // 1-based day slot

	// StartTime is hour-minute encoded (930 is 09:30).
	StartTime int
	// Duration is in minutes.
	Duration int

	// Info becomes the event payload when non-empty.
	Info string
}

// HHMM encodes an hour and minute the way calendar start times are stored.
func HHMM(hour, minute int) int {
	return hour*100 + minute
}

// InstanceName builds a unique name for one occurrence of a recurring item.
func InstanceName(base, date string, hhmm int) string {
	return fmt.Sprintf("%s (%s %04d)", base, date, hhmm)
}

// DayIndex returns the 1-based day slot of t for a calendar whose day 1 is
// the date of first. Both times should already be in the display location;
// only their calendar dates are compared, so DST shifts do not matter.
func DayIndex(first, t time.Time) int {
	a := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours()/24) + 1
}
