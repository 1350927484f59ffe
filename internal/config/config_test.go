package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_CreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Name, again.Name)
	assert.Equal(t, cfg.Days, again.Days)
}

func TestLoad_ParsesAndNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
name: Sprint
days: 14
order: start_time
start_date: "2026-03-02"
events:
  - name: Kickoff
    day: 1
    start_time: 930
    duration: 60
    info: room 4
schedules:
  - name: Standup
    cron: "0 9 * * 1-5"
    duration: 15
ics:
  - id: team
    url: ./team.ics
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Sprint", cfg.Name)
	assert.Equal(t, 14, cfg.Days)
	assert.Equal(t, "start_time", cfg.Order)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, "127.0.0.1:8080", cfg.Listen)
	require.Len(t, cfg.Events, 1)
	assert.Equal(t, EventConfig{Name: "Kickoff", Day: 1, StartTime: 930, Duration: 60, Info: "room 4"}, cfg.Events[0])
	require.Len(t, cfg.Schedules, 1)
	assert.Equal(t, "0 9 * * 1-5", cfg.Schedules[0].Cron)
	require.Len(t, cfg.ICS, 1)
	assert.Equal(t, "team", cfg.ICS[0].ID)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("days: [oops"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestNormalize_UnknownOrder(t *testing.T) {
	cfg := &Config{Order: "priority", Days: -2}
	cfg.Normalize()
	assert.Equal(t, "duration", cfg.Order)
	assert.Equal(t, 7, cfg.Days)
}

func TestFirstDay(t *testing.T) {
	loc := time.FixedZone("KST", 9*3600)
	now := time.Date(2026, 5, 10, 20, 0, 0, 0, time.UTC) // 05:00 on the 11th in KST

	cfg := &Config{}
	d, err := cfg.FirstDay(now, loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 11, 0, 0, 0, 0, loc), d)

	cfg.StartDate = "2026-01-05"
	d, err = cfg.FirstDay(now, loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 5, 0, 0, 0, 0, loc), d)

	cfg.StartDate = "05/01/2026"
	_, err = cfg.FirstDay(now, loc)
	assert.Error(t, err)
}

func TestSave_RejectsBadInput(t *testing.T) {
	assert.Error(t, Save("", DefaultConfig()))
	assert.Error(t, Save(filepath.Join(t.TempDir(), "c.yaml"), nil))
}
