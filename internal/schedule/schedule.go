// Package schedule expands cron-style recurring schedules into calendar
// entries over a fixed range of days.
package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	appLog "daycal/internal/log"
	"daycal/internal/model"
)

const defaultMaxOccurrences = 1000

// Spec is one recurring schedule.
type Spec struct {
	Name string
	// Cron is a standard 5-field expression; descriptors such as "@daily"
	// are accepted too.
	Cron     string
	Duration int
	Info     string
}

// Range is the window occurrences are generated for.
type Range struct {
	Location *time.Location
	FirstDay time.Time
	Days     int

	// MaxOccurrences caps each schedule. If zero, defaultMaxOccurrences is used.
	MaxOccurrences int
}

// Expand returns one entry per activation of every spec inside r. A spec
// that cannot be parsed is reported in the error slice and skipped.
func Expand(specs []Spec, r Range) ([]model.Entry, []error) {
	if r.Days < 1 {
		return nil, []error{errors.New("schedule: day count is not positive")}
	}
	if r.Location == nil {
		r.Location = time.Local
	}
	if r.MaxOccurrences <= 0 {
		r.MaxOccurrences = defaultMaxOccurrences
	}

	first := r.FirstDay.In(r.Location)
	start := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, r.Location)
	end := start.AddDate(0, 0, r.Days)

	var (
		out  []model.Entry
		errs []error
	)
	for _, spec := range specs {
		entries, err := expandOne(spec, start, end, r)
		if err != nil {
			errs = append(errs, err)
			appLog.Error("schedule skipped", err, "name", spec.Name, "cron", spec.Cron)
			continue
		}
		out = append(out, entries...)
	}
	return out, errs
}

func expandOne(spec Spec, start, end time.Time, r Range) ([]model.Entry, error) {
	if spec.Name == "" {
		return nil, errors.New("schedule: name is empty")
	}
	if spec.Duration <= 0 {
		return nil, fmt.Errorf("schedule %q: duration %d is not positive", spec.Name, spec.Duration)
	}
	sched, err := cron.ParseStandard(spec.Cron)
	if err != nil {
		return nil, fmt.Errorf("schedule %q: %w", spec.Name, err)
	}

	var out []model.Entry
	// Next is strictly after its argument; step back so midnight of day 1 counts.
	for t := sched.Next(start.Add(-time.Second)); !t.IsZero() && t.Before(end); t = sched.Next(t) {
		if len(out) == r.MaxOccurrences {
			appLog.Warn("schedule truncated", "name", spec.Name, "cap", r.MaxOccurrences)
			break
		}
		local := t.In(r.Location)
		hhmm := model.HHMM(local.Hour(), local.Minute())
		out = append(out, model.Entry{
			SourceID:  spec.Name,
			Name:      model.InstanceName(spec.Name, local.Format("2006-01-02"), hhmm),
			Day:       model.DayIndex(start, local),
			StartTime: hhmm,
			Duration:  spec.Duration,
			Info:      spec.Info,
		})
	}
	return out, nil
}
