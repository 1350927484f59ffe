// Package scenario drives calendars through a fixed sequence of checks under
// allocation tracking. It backs `daycal -scenario`.
package scenario

import (
	"errors"
	"fmt"
	"io"

	"daycal/internal/calendar"
	"daycal/internal/memcheck"
)

// Step is one named check. It writes any report output to w and must leave
// no storage outstanding in tr.
type Step struct {
	Name string
	Run  func(w io.Writer, tr *memcheck.Tracker) error
}

// StepResult is the outcome of one Step.
type StepResult struct {
	Name string
	Err  error
}

// Result is the outcome of a whole run.
type Result struct {
	Steps []StepResult
	// Outstanding is the number of allocations left after every step ran.
	Outstanding int
	Underflows  int
}

// Failed returns the number of failing steps.
func (r Result) Failed() int {
	n := 0
	for _, s := range r.Steps {
		if s.Err != nil {
			n++
		}
	}
	return n
}

// OK reports whether every step passed and nothing leaked.
func (r Result) OK() bool {
	return r.Failed() == 0 && r.Outstanding == 0 && r.Underflows == 0
}

// Run executes steps in order with one shared tracker, writing step output,
// a PASS/FAIL line per step and the tracker report to w.
func Run(w io.Writer, steps []Step) Result {
	tr := memcheck.New(0)
	var res Result

	for _, step := range steps {
		err := step.Run(w, tr)
		res.Steps = append(res.Steps, StepResult{Name: step.Name, Err: err})
		if err != nil {
			fmt.Fprintf(w, "FAIL %s: %v\n", step.Name, err)
			continue
		}
		fmt.Fprintf(w, "PASS %s\n", step.Name)
	}

	res.Outstanding = tr.Outstanding()
	res.Underflows = tr.Underflows
	_ = tr.Report(w)
	return res
}

// Default is the standard sequence.
func Default() []Step {
	return []Step{
		{Name: "print new calendar", Run: printNew},
		{Name: "init with valid parameters", Run: initValid},
		{Name: "print empty calendar", Run: printEmpty},
		{Name: "add and print events", Run: addAndPrint},
		{Name: "find event", Run: findEvent},
		{Name: "remove event", Run: removeEvent},
		{Name: "find event in day", Run: findInDay},
		{Name: "destroy calendar", Run: destroyOnly},
		{Name: "get event payload", Run: eventPayload},
		{Name: "clear calendar", Run: clearCalendar},
		{Name: "add duplicate event", Run: addDuplicate},
		{Name: "remove from middle of day", Run: removeMiddle},
	}
}

func newCalendar(tr *memcheck.Tracker, name string, days int) (*calendar.Calendar, error) {
	return calendar.New(name, days, calendar.ByDuration, calendar.WithAllocator(tr))
}

// withCalendar creates a calendar, runs fn and always destroys it. fn's
// error wins over a destroy error.
func withCalendar(tr *memcheck.Tracker, name string, days int, fn func(*calendar.Calendar) error) error {
	cal, err := newCalendar(tr, name, days)
	if err != nil {
		return err
	}
	runErr := fn(cal)
	if err := cal.Destroy(); err != nil && runErr == nil {
		return err
	}
	return runErr
}

func printNew(w io.Writer, tr *memcheck.Tracker) error {
	return withCalendar(tr, "Spr", 7, func(cal *calendar.Calendar) error {
		return cal.Print(w, true)
	})
}

func initValid(_ io.Writer, tr *memcheck.Tracker) error {
	return withCalendar(tr, "Week", 7, func(cal *calendar.Calendar) error {
		if cal.Name() != "Week" || cal.Days() != 7 {
			return fmt.Errorf("got name %q days %d", cal.Name(), cal.Days())
		}
		return nil
	})
}

func printEmpty(w io.Writer, tr *memcheck.Tracker) error {
	return withCalendar(tr, "Week", 7, func(cal *calendar.Calendar) error {
		return cal.Print(w, true)
	})
}

func addAndPrint(w io.Writer, tr *memcheck.Tracker) error {
	return withCalendar(tr, "Week", 7, func(cal *calendar.Calendar) error {
		if err := cal.AddEvent("Meeting", 900, 60, nil, 3); err != nil {
			return err
		}
		if err := cal.AddEvent("Lunch", 1200, 45, nil, 5); err != nil {
			return err
		}
		return cal.Print(w, true)
	})
}

func findEvent(_ io.Writer, tr *memcheck.Tracker) error {
	return withCalendar(tr, "Week", 7, func(cal *calendar.Calendar) error {
		if err := cal.AddEvent("Meeting", 900, 60, nil, 3); err != nil {
			return err
		}
		ev, err := cal.Find("Meeting")
		if err != nil {
			return err
		}
		if ev.Name() != "Meeting" {
			return fmt.Errorf("found %q", ev.Name())
		}
		return nil
	})
}

func removeEvent(_ io.Writer, tr *memcheck.Tracker) error {
	return withCalendar(tr, "Week", 7, func(cal *calendar.Calendar) error {
		if err := cal.AddEvent("Meeting", 900, 60, nil, 3); err != nil {
			return err
		}
		if err := cal.RemoveEvent("Meeting"); err != nil {
			return err
		}
		return expectNotFound(cal, "Meeting")
	})
}

func findInDay(_ io.Writer, tr *memcheck.Tracker) error {
	return withCalendar(tr, "Week", 7, func(cal *calendar.Calendar) error {
		if err := cal.AddEvent("Meeting", 900, 60, nil, 3); err != nil {
			return err
		}
		ev, err := cal.FindInDay("Meeting", 3)
		if err != nil {
			return err
		}
		if ev.Name() != "Meeting" {
			return fmt.Errorf("found %q", ev.Name())
		}
		return nil
	})
}

func destroyOnly(_ io.Writer, tr *memcheck.Tracker) error {
	cal, err := newCalendar(tr, "Week", 7)
	if err != nil {
		return err
	}
	if err := cal.Destroy(); err != nil {
		return err
	}
	if err := cal.Destroy(); !errors.Is(err, calendar.ErrInvalidArgument) {
		return fmt.Errorf("second destroy: got %v, want %v", err, calendar.ErrInvalidArgument)
	}
	return nil
}

func eventPayload(_ io.Writer, tr *memcheck.Tracker) error {
	const info = "Info"
	return withCalendar(tr, "Week", 7, func(cal *calendar.Calendar) error {
		if err := cal.AddEvent("Meeting", 900, 60, info, 3); err != nil {
			return err
		}
		payload, ok := cal.Payload("Meeting")
		if !ok || payload != info {
			return fmt.Errorf("payload %v (found %t)", payload, ok)
		}
		return nil
	})
}

func clearCalendar(_ io.Writer, tr *memcheck.Tracker) error {
	return withCalendar(tr, "Week", 7, func(cal *calendar.Calendar) error {
		if err := cal.AddEvent("Meeting", 900, 60, nil, 3); err != nil {
			return err
		}
		if err := cal.Clear(); err != nil {
			return err
		}
		if cal.Total() != 0 {
			return fmt.Errorf("total %d after clear", cal.Total())
		}
		return nil
	})
}

func addDuplicate(w io.Writer, tr *memcheck.Tracker) error {
	return withCalendar(tr, "Week", 7, func(cal *calendar.Calendar) error {
		if err := cal.AddEvent("Meeting", 900, 60, nil, 3); err != nil {
			return err
		}
		err := cal.AddEvent("Meeting", 900, 60, nil, 3)
		if !errors.Is(err, calendar.ErrDuplicateName) {
			return fmt.Errorf("second add: got %v, want %v", err, calendar.ErrDuplicateName)
		}
		if cal.Total() != 1 {
			return fmt.Errorf("total %d after duplicate add", cal.Total())
		}
		fmt.Fprintln(w, "Adding the same event twice failed as expected.")
		return nil
	})
}

func removeMiddle(_ io.Writer, tr *memcheck.Tracker) error {
	return withCalendar(tr, "Week", 5, func(cal *calendar.Calendar) error {
		for _, e := range []struct {
			name     string
			duration int
		}{{"Meeting", 60}, {"Dinner", 80}, {"Conference", 120}} {
			if err := cal.AddEvent(e.name, 800, e.duration, nil, 1); err != nil {
				return err
			}
		}
		if err := cal.RemoveEvent("Dinner"); err != nil {
			return err
		}
		if err := expectNotFound(cal, "Dinner"); err != nil {
			return err
		}
		for _, name := range []string{"Meeting", "Conference"} {
			if _, err := cal.Find(name); err != nil {
				return err
			}
		}
		return nil
	})
}

func expectNotFound(cal *calendar.Calendar, name string) error {
	if _, err := cal.Find(name); !errors.Is(err, calendar.ErrNotFound) {
		return fmt.Errorf("find %q: got %v, want %v", name, err, calendar.ErrNotFound)
	}
	return nil
}
