// Package importer stores loader entries in a calendar.
package importer

import (
	"errors"
	"fmt"

	"daycal/internal/calendar"
	appLog "daycal/internal/log"
	"daycal/internal/model"
)

// Result summarizes one Populate call.
type Result struct {
	Added      int
	Duplicates int
	Rejected   int
	Errs       []error
}

// Populate adds every entry to cal. A failing entry is logged and counted,
// and the remaining entries are still added.
func Populate(cal *calendar.Calendar, entries []model.Entry) Result {
	var res Result
	for _, e := range entries {
		var payload any
		if e.Info != "" {
			payload = e.Info
		}

		err := cal.AddEvent(e.Name, e.StartTime, e.Duration, payload, e.Day)
		switch {
		case err == nil:
			res.Added++
			appLog.Debug("event added", "source", e.SourceID, "name", e.Name, "day", e.Day)
			continue
		case errors.Is(err, calendar.ErrDuplicateName):
			res.Duplicates++
		default:
			res.Rejected++
		}
		res.Errs = append(res.Errs, fmt.Errorf("%s: %w", e.SourceID, err))
		appLog.Warn("event not added", "source", e.SourceID, "name", e.Name, "reason", err.Error())
	}

	appLog.Info("import completed",
		"added", res.Added,
		"duplicates", res.Duplicates,
		"rejected", res.Rejected,
		"total", cal.Total(),
	)
	return res
}
