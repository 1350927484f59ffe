package calendar

import (
	"fmt"
	"strings"
)

// OrderFunc reports the relative order of two events: negative when a sorts
// before b, zero when they tie, positive otherwise. It decides insert
// position only.
type OrderFunc func(a, b *Event) int

// ReleaseFunc releases an event's payload when the event is destroyed.
type ReleaseFunc func(payload any)

// ByDuration orders events by duration in minutes.
func ByDuration(a, b *Event) int {
	return a.duration - b.duration
}

// ByStartTime orders events by start time, breaking ties by duration.
func ByStartTime(a, b *Event) int {
	if a.startTime != b.startTime {
		return a.startTime - b.startTime
	}
	return a.duration - b.duration
}

// ByName orders events lexically by name.
func ByName(a, b *Event) int {
	return strings.Compare(a.name, b.name)
}

// OrderFor resolves a configuration key to one of the stock orderings.
// Supported keys: "duration", "start_time", "name".
func OrderFor(key string) (OrderFunc, error) {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "duration", "":
		return ByDuration, nil
	case "start_time", "start":
		return ByStartTime, nil
	case "name":
		return ByName, nil
	default:
		return nil, fmt.Errorf("%w: unknown ordering %q", ErrInvalidArgument, key)
	}
}
