package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daycal/internal/calendar"
	"daycal/internal/config"
)

func newTestServer(t *testing.T, cfg *config.Config) (*Server, *calendar.Calendar) {
	t.Helper()
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	cal, err := calendar.New("Week", 7, calendar.ByDuration)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cal.Destroy() })
	return NewServer(cfg, cal), cal
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := do(t, s.Handler(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestAddListFindRemove(t *testing.T) {
	s, cal := newTestServer(t, nil)
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/api/events", `{"name":"Meeting","day":3,"start_time":900,"duration":60,"info":"room 4"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/events", `{"name":"Lunch","day":5,"start_time":1200,"duration":45}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/events", `{"name":"Meeting","day":1,"start_time":800,"duration":10}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/events", `{"name":"Bad","day":9,"start_time":800,"duration":10}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/events", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/events", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list calendarResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, "Week", list.Name)
	assert.Equal(t, 7, list.Days)
	assert.Equal(t, 2, list.Total)
	require.Len(t, list.Events, 2)
	assert.Equal(t, eventDTO{Day: 3, Name: "Meeting", StartTime: 900, Duration: 60, Info: "room 4"}, list.Events[0])

	rec = do(t, h, http.MethodGet, "/api/event?name=Lunch", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var one eventDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &one))
	assert.Equal(t, 5, one.Day)
	assert.Equal(t, 45, one.Duration)

	rec = do(t, h, http.MethodGet, "/api/event?name=Lunch&day=5", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/event?name=Lunch&day=4", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/event?name=Lunch&day=99", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/event?name=Lunch&day=x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/event?name=Lunch", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodDelete, "/api/event?name=Lunch", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, 1, cal.Total())
}

func TestClear(t *testing.T) {
	s, cal := newTestServer(t, nil)
	h := s.Handler()

	require.NoError(t, cal.AddEvent("a", 800, 10, nil, 1))
	require.NoError(t, cal.AddEvent("b", 800, 10, nil, 2))
	require.NoError(t, cal.AddEvent("c", 800, 10, nil, 2))

	rec := do(t, h, http.MethodPost, "/api/clear?day=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":1}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/clear?day=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/clear", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":0}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/clear", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestReport(t *testing.T) {
	s, cal := newTestServer(t, nil)
	require.NoError(t, cal.AddEvent("Meeting", 900, 60, nil, 3))

	rec := do(t, s.Handler(), http.MethodGet, "/calendar.txt", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Calendar's Name: \"Week\"\nDays: 7\nTotal Events: 1\n\n"))
	assert.Contains(t, rec.Body.String(), "Day 3\nEvent's Name: \"Meeting\", Start_time: 900, Duration: 60\n")

	rec = do(t, s.Handler(), http.MethodGet, "/calendar.txt?verbose=0", "")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "**** Events ****\n"))
}

func TestBasicAuth(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BasicAuth = &config.BasicAuthConfig{Username: "admin", Password: "secret"}
	s, _ := newTestServer(t, cfg)
	h := s.Handler()

	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/events", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req.SetBasicAuth("admin", "secret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestConcurrentRequestsAreSerialized(t *testing.T) {
	s, cal := newTestServer(t, nil)
	h := s.Handler()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := `{"name":"e` + string(rune('A'+i%26)) + string(rune('a'+i/26)) + `","day":` +
				string(rune('1'+i%7)) + `,"start_time":900,"duration":` + string(rune('1'+i%9)) + `}`
			do(t, h, http.MethodPost, "/api/events", body)
			do(t, h, http.MethodGet, "/api/events", "")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, cal.Total())
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInsufficientStorage, statusFor(calendar.ErrAllocation))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
