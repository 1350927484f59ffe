package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Monday 2026-01-05.
var monday = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

func TestExpand_Weekdays(t *testing.T) {
	entries, errs := Expand([]Spec{{Name: "Standup", Cron: "0 9 * * 1-5", Duration: 15, Info: "zoom"}}, Range{
		Location: time.UTC,
		FirstDay: monday,
		Days:     7,
	})
	require.Empty(t, errs)
	require.Len(t, entries, 5)

	for i, e := range entries {
		assert.Equal(t, i+1, e.Day)
		assert.Equal(t, 900, e.StartTime)
		assert.Equal(t, 15, e.Duration)
		assert.Equal(t, "zoom", e.Info)
		assert.Equal(t, "Standup", e.SourceID)
	}
	assert.Equal(t, "Standup (2026-01-05 0900)", entries[0].Name)
	assert.Equal(t, "Standup (2026-01-09 0900)", entries[4].Name)
}

func TestExpand_MidnightOfFirstDayCounts(t *testing.T) {
	entries, errs := Expand([]Spec{{Name: "Backup", Cron: "@daily", Duration: 30}}, Range{
		Location: time.UTC,
		FirstDay: monday.Add(13 * time.Hour),
		Days:     2,
	})
	require.Empty(t, errs)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Day)
	assert.Equal(t, 0, entries[0].StartTime)
	assert.Equal(t, 2, entries[1].Day)
}

func TestExpand_SeveralPerDay(t *testing.T) {
	entries, errs := Expand([]Spec{{Name: "Water", Cron: "30 8-17/3 * * *", Duration: 5}}, Range{
		Location: time.UTC,
		FirstDay: monday,
		Days:     1,
	})
	require.Empty(t, errs)

	var starts []int
	for _, e := range entries {
		starts = append(starts, e.StartTime)
	}
	assert.Equal(t, []int{830, 1130, 1430, 1730}, starts)
}

func TestExpand_Cap(t *testing.T) {
	entries, errs := Expand([]Spec{{Name: "Tick", Cron: "* * * * *", Duration: 1}}, Range{
		Location:       time.UTC,
		FirstDay:       monday,
		Days:           1,
		MaxOccurrences: 25,
	})
	require.Empty(t, errs)
	assert.Len(t, entries, 25)
}

func TestExpand_BadSpecs(t *testing.T) {
	entries, errs := Expand([]Spec{
		{Name: "Broken", Cron: "not a cron", Duration: 10},
		{Name: "", Cron: "0 9 * * *", Duration: 10},
		{Name: "Zero", Cron: "0 9 * * *", Duration: 0},
		{Name: "Ok", Cron: "0 9 * * *", Duration: 10},
	}, Range{Location: time.UTC, FirstDay: monday, Days: 3})

	assert.Len(t, errs, 3)
	assert.Len(t, entries, 3)
}

func TestExpand_RejectsZeroDays(t *testing.T) {
	_, errs := Expand(nil, Range{Days: 0})
	assert.Len(t, errs, 1)
}
