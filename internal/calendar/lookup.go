package calendar

import "fmt"

// Find returns the event called name, scanning days in ascending order.
func (c *Calendar) Find(name string) (*Event, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	if ev := c.lookup(name); ev != nil {
		return ev, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// FindInDay returns the event called name if it is stored in day (1-based).
func (c *Calendar) FindInDay(name string, day int) (*Event, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	if err := c.checkDay(day); err != nil {
		return nil, err
	}
	if ev := c.days[day-1].find(name); ev != nil {
		return ev, nil
	}
	return nil, fmt.Errorf("%w: %q in day %d", ErrNotFound, name, day)
}

// Payload returns the payload of the event called name. The second result
// is false when no such event exists.
func (c *Calendar) Payload(name string) (any, bool) {
	ev, err := c.Find(name)
	if err != nil {
		return nil, false
	}
	return ev.payload, true
}

// Each calls fn for every event, day by day in ascending order and in list
// order within a day, until fn returns false. fn must not mutate c.
func (c *Calendar) Each(fn func(day int, ev *Event) bool) error {
	if err := c.check(); err != nil {
		return err
	}
	for i := range c.days {
		for ev := c.days[i].head; ev != nil; ev = ev.next {
			if !fn(i+1, ev) {
				return nil
			}
		}
	}
	return nil
}

func (c *Calendar) lookup(name string) *Event {
	for i := range c.days {
		if ev := c.days[i].find(name); ev != nil {
			return ev
		}
	}
	return nil
}
