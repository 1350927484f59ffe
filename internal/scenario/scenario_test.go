package scenario

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daycal/internal/calendar"
	"daycal/internal/memcheck"
)

func TestRun_Default(t *testing.T) {
	var buf bytes.Buffer
	res := Run(&buf, Default())

	assert.True(t, res.OK(), buf.String())
	assert.Len(t, res.Steps, len(Default()))
	assert.Zero(t, res.Failed())

	out := buf.String()
	assert.Contains(t, out, "Calendar's Name: \"Spr\"\nDays: 7\nTotal Events: 0\n\n**** Events ****\n")
	assert.Contains(t, out, "Total Events: 2\n")
	assert.Contains(t, out, "Event's Name: \"Meeting\", Start_time: 900, Duration: 60\n")
	assert.Contains(t, out, "Adding the same event twice failed as expected.\n")
	assert.Contains(t, out, "PASS remove from middle of day\n")
	assert.Contains(t, out, "no leaks detected")
	assert.NotContains(t, out, "FAIL")
}

func TestRun_ReportsFailures(t *testing.T) {
	var buf bytes.Buffer
	res := Run(&buf, []Step{
		{Name: "ok", Run: func(io.Writer, *memcheck.Tracker) error { return nil }},
		{Name: "broken", Run: func(io.Writer, *memcheck.Tracker) error { return errors.New("boom") }},
	})

	assert.False(t, res.OK())
	assert.Equal(t, 1, res.Failed())
	assert.Contains(t, buf.String(), "PASS ok\n")
	assert.Contains(t, buf.String(), "FAIL broken: boom\n")
}

func TestRun_ReportsLeaks(t *testing.T) {
	var buf bytes.Buffer
	res := Run(&buf, []Step{{
		Name: "forgets destroy",
		Run: func(_ io.Writer, tr *memcheck.Tracker) error {
			cal, err := newCalendar(tr, "Leaky", 3)
			if err != nil {
				return err
			}
			return cal.AddEvent("Orphan", 900, 30, nil, 1)
		},
	}})

	require.Zero(t, res.Failed())
	assert.False(t, res.OK())
	assert.Equal(t, 5, res.Outstanding)
	assert.True(t, strings.Contains(buf.String(), "LEAK"))
}

func TestWithCalendar_DestroysOnError(t *testing.T) {
	tr := memcheck.New(0)
	err := withCalendar(tr, "Week", 7, func(cal *calendar.Calendar) error {
		if err := cal.AddEvent("Meeting", 900, 60, nil, 1); err != nil {
			return err
		}
		return errors.New("step failed")
	})
	assert.EqualError(t, err, "step failed")
	assert.True(t, tr.Clean())
}
