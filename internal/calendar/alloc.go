package calendar

import "unsafe"

// Kind labels one class of storage the calendar acquires.
type Kind string

const (
	KindCalendar Kind = "calendar"
	KindName     Kind = "name"
	KindDays     Kind = "days"
	KindEvent    Kind = "event"
)

// Allocator observes every piece of storage the calendar acquires and
// releases. Alloc may refuse a request, which surfaces as ErrAllocation.
// Every successful Alloc is matched by exactly one Free of the same kind and
// size along every code path.
type Allocator interface {
	Alloc(kind Kind, size int) error
	Free(kind Kind, size int)
}

type nopAllocator struct{}

func (nopAllocator) Alloc(Kind, int) error { return nil }
func (nopAllocator) Free(Kind, int) {}

var (
	calendarSize = int(unsafe.Sizeof(Calendar{}))
	eventSize    = int(unsafe.Sizeof(Event{}))
	headSize     = int(unsafe.Sizeof((*Event)(nil)))
)

// nameSize mirrors a NUL-terminated copy of the name.
func nameSize(name string) int {
	return len(name) + 1
}
