package ics

import (
	"errors"
	"time"

	"github.com/teambition/rrule-go"

	appLog "daycal/internal/log"
	"daycal/internal/model"
)

const (
	defaultMaxOccurrencesPerEvent = 5000
	minutesPerDay                 = 24 * 60
)

// ExpandConfig controls how events are mapped onto calendar days.
type ExpandConfig struct {
	// Location is the display timezone. If nil, time.Local is used.
	Location *time.Location

	// FirstDay is the date of day 1; Days is the calendar's day count.
	// Occurrences starting outside those days are dropped.
	FirstDay time.Time
	Days     int

	// MaxOccurrencesPerEvent caps a single recurring event. If zero,
	// defaultMaxOccurrencesPerEvent is used.
	MaxOccurrencesPerEvent int
}

// ExpandResult wraps the expanded entries.
type ExpandResult struct {
	Entries []model.Entry
	// TruncatedEvents records UIDs that hit the MaxOccurrencesPerEvent cap.
	TruncatedEvents []string
}

// Expand turns parsed events into day-relative calendar entries. It handles
// single events, RRULE recurrence, EXDATE removal, RECURRENCE-ID overrides
// and all-day events. Recurring events get one uniquely named entry per
// occurrence.
func Expand(events []ParsedEvent, cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult

	if cfg.Days < 1 {
		return result, errors.New("expand: day count is not positive")
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}
	first := cfg.FirstDay.In(cfg.Location)
	cfg.FirstDay = time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, cfg.Location)

	// Group base events and overrides by UID, keeping first-seen order.
	var uids []string
	baseByUID := make(map[string][]ParsedEvent)
	overridesByUID := make(map[string][]ParsedEvent)

	for _, ev := range events {
		if ev.IsOverride && ev.Recurrence != nil {
			overridesByUID[ev.UID] = append(overridesByUID[ev.UID], ev)
			continue
		}
		if _, seen := baseByUID[ev.UID]; !seen {
			uids = append(uids, ev.UID)
		}
		baseByUID[ev.UID] = append(baseByUID[ev.UID], ev)
	}

	for _, uid := range uids {
		ov := overridesByUID[uid]
		truncated := false

		for _, ev := range baseByUID[uid] {
			entries, hitCap := expandEvent(ev, ov, cfg)
			if hitCap {
				truncated = true
			}
			result.Entries = append(result.Entries, entries...)
		}

		if truncated {
			result.TruncatedEvents = append(result.TruncatedEvents, uid)
			appLog.Warn("expand: truncated occurrences for UID due to cap",
				"uid", uid,
				"cap", cfg.MaxOccurrencesPerEvent,
			)
		}
	}

	return result, nil
}

func expandEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]model.Entry, bool) {
	if ev.RawRRule == "" {
		start, end, placed := ev.Start, ev.End, ev
		if o, ok := findOverrideForStart(overrides, start); ok {
			start, end, placed = o.Start, o.End, o
		}
		if e, ok := makeEntry(placed, start, end, false, cfg); ok {
			return []model.Entry{e}, false
		}
		return nil, false
	}
	return expandRecurringEvent(ev, overrides, cfg)
}

func expandRecurringEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]model.Entry, bool) {
	out := make([]model.Entry, 0)
	hitCap := false

	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("expand: failed to parse RRULE", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return out, false
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	rangeStart := cfg.FirstDay.In(ev.Start.Location())
	rangeEnd := cfg.FirstDay.AddDate(0, 0, cfg.Days).In(ev.Start.Location())

	occTimes := set.Between(rangeStart, rangeEnd, true)
	if len(occTimes) > cfg.MaxOccurrencesPerEvent {
		occTimes = occTimes[:cfg.MaxOccurrencesPerEvent]
		hitCap = true
	}

	length := ev.End.Sub(ev.Start)
	for _, occStart := range occTimes {
		start, end, placed := occStart, occStart.Add(length), ev
		if o, ok := findOverrideForStart(overrides, occStart); ok {
			start, end, placed = o.Start, o.End, o
		}
		if e, ok := makeEntry(placed, start, end, true, cfg); ok {
			out = append(out, e)
		}
	}

	return out, hitCap
}

// findOverrideForStart finds an override whose RECURRENCE-ID equals start.
func findOverrideForStart(overrides []ParsedEvent, start time.Time) (ParsedEvent, bool) {
	for _, ov := range overrides {
		if ov.Recurrence != nil && ov.Recurrence.Equal(start) {
			return ov, true
		}
	}
	return ParsedEvent{}, false
}

// makeEntry places one occurrence on a day. The second result is false when
// the occurrence falls outside the calendar's days.
func makeEntry(ev ParsedEvent, start, end time.Time, recurring bool, cfg ExpandConfig) (model.Entry, bool) {
	var local time.Time
	if ev.AllDay {
		// All-day dates are taken as written, not shifted across zones.
		local = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, cfg.Location)
	} else {
		local = start.In(cfg.Location)
	}

	day := model.DayIndex(cfg.FirstDay, local)
	if day < 1 || day > cfg.Days {
		return model.Entry{}, false
	}

	hhmm := model.HHMM(local.Hour(), local.Minute())
	duration := int(end.Sub(start).Minutes())
	if ev.AllDay && duration <= 0 {
		duration = minutesPerDay
	}
	if duration <= 0 {
		duration = 1
	}

	name := ev.Summary
	if name == "" {
		name = ev.UID
	}
	if recurring {
		name = model.InstanceName(name, local.Format("2006-01-02"), hhmm)
	}

	return model.Entry{
		SourceID:  ev.Source.ID,
		Name:      name,
		Day:       day,
		StartTime: hhmm,
		Duration:  duration,
		Info:      ev.Description,
	}, true
}
