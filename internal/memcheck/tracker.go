// Package memcheck tracks the storage a calendar acquires and releases so
// that leaks and double releases show up as outstanding counts.
package memcheck

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"daycal/internal/calendar"
)

// ErrExhausted is returned by Alloc once the configured limit is reached.
var ErrExhausted = errors.New("memcheck: allocation limit reached")

// Stats holds the counters kept for one allocation kind.
type Stats struct {
	Allocs      int
	Frees       int
	Outstanding int
	Bytes       int
}

// Tracker implements calendar.Allocator. The zero value is ready to use and
// never refuses an allocation.
type Tracker struct {
	// Limit caps the number of outstanding allocations. Zero means no cap.
	Limit int

	// Refused counts Alloc calls turned down because of Limit.
	Refused int

	// Underflows counts Free calls with no matching allocation.
	Underflows int

	kinds map[calendar.Kind]*Stats
}

// New returns a Tracker that refuses allocations once limit are
// outstanding. A limit of zero disables the cap.
func New(limit int) *Tracker {
	return &Tracker{Limit: limit}
}

func (t *Tracker) stats(kind calendar.Kind) *Stats {
	if t.kinds == nil {
		t.kinds = make(map[calendar.Kind]*Stats)
	}
	s, ok := t.kinds[kind]
	if !ok {
		s = &Stats{}
		t.kinds[kind] = s
	}
	return s
}

// Alloc records an allocation of size bytes.
func (t *Tracker) Alloc(kind calendar.Kind, size int) error {
	if t.Limit > 0 && t.Outstanding() >= t.Limit {
		t.Refused++
		return fmt.Errorf("%w (%d outstanding)", ErrExhausted, t.Outstanding())
	}
	s := t.stats(kind)
	s.Allocs++
	s.Outstanding++
	s.Bytes += size
	return nil
}

// Free records the release of an allocation of size bytes.
func (t *Tracker) Free(kind calendar.Kind, size int) {
	s := t.stats(kind)
	if s.Outstanding == 0 {
		t.Underflows++
		return
	}
	s.Frees++
	s.Outstanding--
	s.Bytes -= size
}

// Outstanding returns the number of allocations not yet freed.
func (t *Tracker) Outstanding() int {
	n := 0
	for _, s := range t.kinds {
		n += s.Outstanding
	}
	return n
}

// OutstandingBytes returns the size of all allocations not yet freed.
func (t *Tracker) OutstandingBytes() int {
	n := 0
	for _, s := range t.kinds {
		n += s.Bytes
	}
	return n
}

// Kind returns a copy of the counters for kind.
func (t *Tracker) Kind(kind calendar.Kind) Stats {
	if s, ok := t.kinds[kind]; ok {
		return *s
	}
	return Stats{}
}

// Clean reports whether every allocation was released exactly once.
func (t *Tracker) Clean() bool {
	return t.Outstanding() == 0 && t.Underflows == 0
}

// Report writes a per-kind summary to w.
func (t *Tracker) Report(w io.Writer) error {
	kinds := make([]string, 0, len(t.kinds))
	for k := range t.kinds {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	if _, err := fmt.Fprintln(w, "**** Memory Check ****"); err != nil {
		return err
	}
	for _, k := range kinds {
		s := t.kinds[calendar.Kind(k)]
		if _, err := fmt.Fprintf(w, "%-8s allocs: %d, frees: %d, outstanding: %d (%d bytes)\n",
			k, s.Allocs, s.Frees, s.Outstanding, s.Bytes); err != nil {
			return err
		}
	}
	status := "no leaks detected"
	if !t.Clean() {
		status = fmt.Sprintf("LEAK: %d allocations (%d bytes) outstanding, %d unmatched frees",
			t.Outstanding(), t.OutstandingBytes(), t.Underflows)
	}
	_, err := fmt.Fprintln(w, status)
	return err
}
