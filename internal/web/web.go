package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"daycal/internal/calendar"
	"daycal/internal/config"
	appLog "daycal/internal/log"
)

// Server exposes one calendar over HTTP. The calendar itself does no
// locking, so every handler holds mu while it touches cal.
type Server struct {
	cfg *config.Config
	mux *http.ServeMux

	mu  sync.Mutex
	cal *calendar.Calendar
}

// NewServer constructs a new Server around cal. The caller keeps ownership
// of cal and must not use it directly while the server is running.
func NewServer(cfg *config.Config, cal *calendar.Calendar) *Server {
	s := &Server{
		cfg: cfg,
		cal: cal,
		mux: http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// Run serves on cfg.Listen until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty credentials disable auth.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="daycal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/events", s.handleEvents)
	s.mux.HandleFunc("/api/event", s.handleEvent)
	s.mux.HandleFunc("/api/clear", s.handleClear)
	s.mux.HandleFunc("/calendar.txt", s.handleReport)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// eventDTO is the JSON view of one stored event.
type eventDTO struct {
	Day       int    `json:"day"`
	Name      string `json:"name"`
	StartTime int    `json:"start_time"`
	Duration  int    `json:"duration"`
	Info      any    `json:"info,omitempty"`
}

// calendarResponse is the JSON response shape for GET /api/events.
type calendarResponse struct {
	Name   string     `json:"name"`
	Days   int        `json:"days"`
	Total  int        `json:"total"`
	Events []eventDTO `json:"events"`
}

func toDTO(day int, ev *calendar.Event) eventDTO {
	return eventDTO{
		Day:       day,
		Name:      ev.Name(),
		StartTime: ev.StartTime(),
		Duration:  ev.Duration(),
		Info:      ev.Payload(),
	}
}

// handleEvents lists every event (GET) or adds one (POST).
//
// POST /api/events {"name": "...", "day": 1, "start_time": 930, "duration": 60, "info": "..."}
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.mu.Lock()
		resp := calendarResponse{
			Name:   s.cal.Name(),
			Days:   s.cal.Days(),
			Total:  s.cal.Total(),
			Events: []eventDTO{},
		}
		err := s.cal.Each(func(day int, ev *calendar.Event) bool {
			resp.Events = append(resp.Events, toDTO(day, ev))
			return true
		})
		s.mu.Unlock()
		if err != nil {
			writeCalendarError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)

	case http.MethodPost:
		var in config.EventConfig
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		var payload any
		if in.Info != "" {
			payload = in.Info
		}

		s.mu.Lock()
		err := s.cal.AddEvent(in.Name, in.StartTime, in.Duration, payload, in.Day)
		s.mu.Unlock()
		if err != nil {
			appLog.Info("api add rejected", "name", in.Name, "reason", err.Error())
			writeCalendarError(w, err)
			return
		}
		appLog.Info("api event added", "name", in.Name, "day", in.Day)
		writeJSON(w, http.StatusCreated, eventDTO{
			Day: in.Day, Name: in.Name, StartTime: in.StartTime, Duration: in.Duration, Info: payload,
		})

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

// handleEvent looks up (GET) or removes (DELETE) one event.
//
// GET /api/event?name=Meeting[&day=3]
// DELETE /api/event?name=Meeting
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name := q.Get("name")

	switch r.Method {
	case http.MethodGet:
		day := 0
		if raw := q.Get("day"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "day must be an integer")
				return
			}
			day = n
		}

		s.mu.Lock()
		var (
			ev  *calendar.Event
			err error
		)
		if day != 0 {
			ev, err = s.cal.FindInDay(name, day)
		} else {
			ev, err = s.cal.Find(name)
			if err == nil {
				day = s.dayOf(ev)
			}
		}
		var dto eventDTO
		if err == nil {
			// Copy while locked; ev is invalid once mu is released.
			dto = toDTO(day, ev)
		}
		s.mu.Unlock()

		if err != nil {
			writeCalendarError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, dto)

	case http.MethodDelete:
		s.mu.Lock()
		err := s.cal.RemoveEvent(name)
		s.mu.Unlock()
		if err != nil {
			writeCalendarError(w, err)
			return
		}
		appLog.Info("api event removed", "name", name)
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodDelete)
	}
}

// dayOf returns the day holding ev. Callers hold mu.
func (s *Server) dayOf(ev *calendar.Event) int {
	found := 0
	_ = s.cal.Each(func(day int, e *calendar.Event) bool {
		if e == ev {
			found = day
			return false
		}
		return true
	})
	return found
}

// handleClear empties one day (?day=N) or the whole calendar.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	raw := r.URL.Query().Get("day")
	day, convErr := strconv.Atoi(raw)
	if raw != "" && convErr != nil {
		writeError(w, http.StatusBadRequest, "day must be an integer")
		return
	}

	s.mu.Lock()
	var err error
	if raw == "" {
		err = s.cal.Clear()
	} else {
		err = s.cal.ClearDay(day)
	}
	total := s.cal.Total()
	s.mu.Unlock()

	if err != nil {
		writeCalendarError(w, err)
		return
	}
	appLog.Info("api clear", "day", raw, "total", total)
	writeJSON(w, http.StatusOK, map[string]int{"total": total})
}

// handleReport serves the textual calendar report.
//
// GET /calendar.txt?verbose=1
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	verbose := s.cfg != nil && s.cfg.Verbose
	if v := r.URL.Query().Get("verbose"); v != "" {
		verbose, _ = strconv.ParseBool(v)
	}

	var b strings.Builder
	s.mu.Lock()
	err := s.cal.Print(&b, verbose)
	s.mu.Unlock()
	if err != nil {
		writeCalendarError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(b.String()))
}

// statusFor maps calendar error kinds to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, calendar.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, calendar.ErrDuplicateName):
		return http.StatusConflict
	case errors.Is(err, calendar.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, calendar.ErrAllocation):
		return http.StatusInsufficientStorage
	default:
		return http.StatusInternalServerError
	}
}

func writeCalendarError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
