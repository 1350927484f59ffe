package ics

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "daycal/internal/log"
)

// ParsedEvent is the normalized representation of a VEVENT. Recurrence
// expansion operates on this type.
type ParsedEvent struct {
	Source Source

	UID         string
	Summary     string
	Description string

	Start  time.Time
	End    time.Time
	AllDay bool

	RawRRule   string
	ExDates    []time.Time
	Recurrence *time.Time // RECURRENCE-ID (if present)
	IsOverride bool       // true if this VEVENT replaces one recurring instance
}

// ParseICS parses a single ICS payload into a list of ParsedEvent. VEVENTs
// that cannot be parsed are logged and skipped.
func ParseICS(src Source, body []byte) ([]ParsedEvent, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err, "id", src.ID, "url", redactURL(src.URL))
		return nil, err
	}

	events := make([]ParsedEvent, 0)
	for _, comp := range cal.Events() {
		ev, perr := parseVEvent(src, comp)
		if perr != nil {
			appLog.Warn("ics vevent skipped", "id", src.ID, "reason", perr.Error())
			continue
		}
		events = append(events, ev)
	}

	appLog.Info("ics parse completed", "id", src.ID, "event_count", len(events))
	return events, nil
}

func parseVEvent(src Source, ve *ical.VEvent) (ParsedEvent, error) {
	out := ParsedEvent{Source: src}

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uidProp.Value
	out.Summary = propValue(ve, ical.ComponentPropertySummary)
	out.Description = propValue(ve, ical.ComponentPropertyDescription)

	start, err := ve.GetStartAt()
	if err != nil {
		return out, err
	}
	out.Start = start

	// DTEND is optional; a missing end leaves a zero-length event.
	if end, err := ve.GetEndAt(); err == nil {
		out.End = end
	} else {
		out.End = start
	}

	if dtStart := ve.GetProperty(ical.ComponentPropertyDtStart); dtStart != nil {
		out.AllDay = isDateValue(dtStart)
	}
	if out.AllDay && !out.End.After(out.Start) {
		out.End = out.Start.AddDate(0, 0, 1)
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RawRRule = p.Value
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, err := parseICSTime(part, start.Location()); err == nil {
				out.ExDates = append(out.ExDates, t)
			}
		}
	}

	if rid := ve.GetProperty("RECURRENCE-ID"); rid != nil {
		if t, err := parseICSTime(rid.Value, start.Location()); err == nil {
			out.Recurrence = &t
			out.IsOverride = true
		}
	}

	return out, nil
}

func propValue(ve *ical.VEvent, prop ical.ComponentProperty) string {
	if p := ve.GetProperty(prop); p != nil {
		return p.Value
	}
	return ""
}

// isDateValue reports VALUE=DATE or a bare YYYYMMDD value.
func isDateValue(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

// parseICSTime parses the DATE / DATE-TIME / UTC forms used by EXDATE and
// RECURRENCE-ID. Floating values are read in loc.
func parseICSTime(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		return time.Time{}, errors.New("empty time value")
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, loc)
	default:
		return time.ParseInLocation("20060102", v, loc)
	}
}
