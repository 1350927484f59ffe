package calendar

// Start time bounds, hour-minute encoded (930 is 09:30).
const (
	MinStartTime = 0
	MaxStartTime = 2400
)

// Event is a single scheduled item stored in one day's list.
//
// Pointers handed out by Find, FindInDay and Each are views into storage the
// calendar owns. They are invalidated by the next mutating call and by
// Destroy; do not keep them across such calls.
type Event struct {
	name      string
	startTime int
	duration  int
	payload   any

	// next links to the following event of the same day only.
	next *Event
}

func (e *Event) Name() string { return e.name }
func (e *Event) StartTime() int { return e.startTime }
func (e *Event) Duration() int { return e.duration }
func (e *Event) Payload() any { return e.payload }
