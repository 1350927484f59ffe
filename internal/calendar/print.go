package calendar

import (
	"fmt"
	"io"
)

// Print writes a textual report of c to w. With verbose set, the calendar's
// name, day count and event total come first. Day sections are written only
// when the calendar holds at least one event; then every day gets a header,
// empty or not.
func (c *Calendar) Print(w io.Writer, verbose bool) error {
	if err := c.check(); err != nil {
		return err
	}
	if w == nil {
		return fmt.Errorf("%w: output writer is nil", ErrInvalidArgument)
	}

	p := &printer{w: w}
	if verbose {
		p.printf("Calendar's Name: \"%s\"\nDays: %d\n", c.name, len(c.days))
		p.printf("Total Events: %d\n\n", c.total)
	}

	p.printf("**** Events ****\n")

	if c.total > 0 {
		for i := range c.days {
			p.printf("Day %d\n", i+1)
			for ev := c.days[i].head; ev != nil; ev = ev.next {
				p.printf("Event's Name: \"%s\", Start_time: %d, Duration: %d\n",
					ev.name, ev.startTime, ev.duration)
			}
		}
	}
	return p.err
}

// printer remembers the first write error and drops later writes.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
