// Package calendar implements an in-memory calendar: a fixed number of days,
// each holding a list of events kept in caller-defined order, with event
// names unique across the whole calendar.
//
// A Calendar is an owned value for a single caller. It does no locking;
// callers sharing one across goroutines must serialize access themselves.
package calendar

import "fmt"

// Calendar owns its day slots, every event stored in them, and its name.
type Calendar struct {
	name    string
	days    []slot
	total   int
	order   OrderFunc
	release ReleaseFunc
	alloc   Allocator

	destroyed bool
}

// Option customizes a Calendar at construction time.
type Option func(*Calendar)

// WithRelease installs fn to release event payloads. It is called once per
// destroyed event, and only for events carrying a non-nil payload. Without
// it the calendar never touches payloads beyond holding them.
func WithRelease(fn ReleaseFunc) Option {
	return func(c *Calendar) {
		c.release = fn
	}
}

// WithAllocator routes every storage acquisition and release through a.
func WithAllocator(a Allocator) Option {
	return func(c *Calendar) {
		if a != nil {
			c.alloc = a
		}
	}
}

// New creates a calendar called name with days empty day slots. Events are
// kept in each day in the order defined by order.
func New(name string, days int, order OrderFunc, opts ...Option) (*Calendar, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: calendar name is empty", ErrInvalidArgument)
	}
	if days < 1 {
		return nil, fmt.Errorf("%w: day count %d is not positive", ErrInvalidArgument, days)
	}
	if order == nil {
		return nil, fmt.Errorf("%w: ordering function is nil", ErrInvalidArgument)
	}

	c := &Calendar{
		order: order,
		alloc: nopAllocator{},
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.alloc.Alloc(KindCalendar, calendarSize); err != nil {
		return nil, fmt.Errorf("%w: calendar: %v", ErrAllocation, err)
	}
	if err := c.alloc.Alloc(KindName, nameSize(name)); err != nil {
		c.alloc.Free(KindCalendar, calendarSize)
		return nil, fmt.Errorf("%w: calendar name: %v", ErrAllocation, err)
	}
	if err := c.alloc.Alloc(KindDays, days*headSize); err != nil {
		c.alloc.Free(KindName, nameSize(name))
		c.alloc.Free(KindCalendar, calendarSize)
		return nil, fmt.Errorf("%w: day table: %v", ErrAllocation, err)
	}

	c.name = name
	c.days = make([]slot, days)
	return c, nil
}

// Destroy releases every remaining event, the day table and the name. The
// handle is unusable afterwards: a second Destroy, or any other call,
// returns ErrInvalidArgument.
func (c *Calendar) Destroy() error {
	if err := c.check(); err != nil {
		return err
	}

	c.clearAll()

	c.alloc.Free(KindDays, len(c.days)*headSize)
	c.alloc.Free(KindName, nameSize(c.name))
	c.alloc.Free(KindCalendar, calendarSize)

	c.days = nil
	c.name = ""
	c.order = nil
	c.release = nil
	c.destroyed = true
	return nil
}

// Name returns the calendar's label.
func (c *Calendar) Name() string { return c.name }

// Days returns the fixed number of day slots.
func (c *Calendar) Days() int { return len(c.days) }

// Total returns the number of events stored across every day.
func (c *Calendar) Total() int { return c.total }

// AddEvent stores a new event in day (1-based). Names are unique across the
// whole calendar. A failed call leaves the calendar unchanged.
func (c *Calendar) AddEvent(name string, startTime, duration int, payload any, day int) error {
	if err := c.check(); err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("%w: event name is empty", ErrInvalidArgument)
	}
	if startTime < MinStartTime || startTime > MaxStartTime {
		return fmt.Errorf("%w: start time %d outside [%d, %d]", ErrInvalidArgument, startTime, MinStartTime, MaxStartTime)
	}
	if duration <= 0 {
		return fmt.Errorf("%w: duration %d is not positive", ErrInvalidArgument, duration)
	}
	if err := c.checkDay(day); err != nil {
		return err
	}
	if c.lookup(name) != nil {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}

	ev, err := c.newEvent(name, startTime, duration, payload)
	if err != nil {
		return err
	}

	c.days[day-1].insert(ev, c.order)
	c.total++
	return nil
}

// RemoveEvent destroys the event called name, wherever it is stored.
func (c *Calendar) RemoveEvent(name string) error {
	if err := c.check(); err != nil {
		return err
	}

	for i := range c.days {
		if ev := c.days[i].unlink(name); ev != nil {
			c.destroyEvent(ev)
			c.total--
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrNotFound, name)
}

// ClearDay destroys every event stored in day (1-based).
func (c *Calendar) ClearDay(day int) error {
	if err := c.check(); err != nil {
		return err
	}
	if err := c.checkDay(day); err != nil {
		return err
	}

	c.total -= c.days[day-1].drain(c.destroyEvent)
	return nil
}

// Clear destroys every event in every day.
func (c *Calendar) Clear() error {
	if err := c.check(); err != nil {
		return err
	}
	c.clearAll()
	return nil
}

func (c *Calendar) clearAll() {
	for i := range c.days {
		c.total -= c.days[i].drain(c.destroyEvent)
	}
	c.total = 0
}

func (c *Calendar) newEvent(name string, startTime, duration int, payload any) (*Event, error) {
	if err := c.alloc.Alloc(KindEvent, eventSize); err != nil {
		return nil, fmt.Errorf("%w: event %q: %v", ErrAllocation, name, err)
	}
	if err := c.alloc.Alloc(KindName, nameSize(name)); err != nil {
		c.alloc.Free(KindEvent, eventSize)
		return nil, fmt.Errorf("%w: event name %q: %v", ErrAllocation, name, err)
	}

	return &Event{
		name:      name,
		startTime: startTime,
		duration:  duration,
		payload:   payload,
	}, nil
}

// destroyEvent releases an already unlinked event.
func (c *Calendar) destroyEvent(ev *Event) {
	c.alloc.Free(KindName, nameSize(ev.name))
	if ev.payload != nil && c.release != nil {
		c.release(ev.payload)
	}
	c.alloc.Free(KindEvent, eventSize)

	ev.payload = nil
}

func (c *Calendar) check() error {
	if c == nil {
		return fmt.Errorf("%w: calendar is nil", ErrInvalidArgument)
	}
	if c.destroyed {
		return fmt.Errorf("%w: calendar already destroyed", ErrInvalidArgument)
	}
	return nil
}

func (c *Calendar) checkDay(day int) error {
	if day < 1 || day > len(c.days) {
		return fmt.Errorf("%w: day %d outside [1, %d]", ErrInvalidArgument, day, len(c.days))
	}
	return nil
}
