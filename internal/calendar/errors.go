package calendar

import "errors"

// Error kinds returned by every Calendar operation. Callers match them with
// errors.Is; the concrete error usually wraps one of these with context.
var (
	// ErrInvalidArgument reports an absent handle, an out-of-range day or
	// start time, a non-positive duration, or use of a destroyed calendar.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDuplicateName reports an insert whose name already exists in any day.
	ErrDuplicateName = errors.New("duplicate event name")

	// ErrNotFound reports a lookup or removal of a name that is not stored.
	ErrNotFound = errors.New("event not found")

	// ErrAllocation reports that the installed Allocator refused storage.
	ErrAllocation = errors.New("allocation failure")
)
