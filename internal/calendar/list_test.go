package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func names(s *slot) []string {
	var out []string
	for ev := s.head; ev != nil; ev = ev.next {
		out = append(out, ev.name)
	}
	return out
}

func TestSlot_Insert(t *testing.T) {
	var s slot
	for _, ev := range []*Event{
		{name: "b", duration: 20},
		{name: "a", duration: 10},
		{name: "d", duration: 40},
		{name: "c", duration: 30},
		{name: "a2", duration: 10},
	} {
		s.insert(ev, ByDuration)
	}
	assert.Equal(t, []string{"a2", "a", "b", "c", "d"}, names(&s))
}

func TestSlot_Unlink(t *testing.T) {
	var s slot
	for _, n := range []string{"c", "b", "a"} {
		s.insert(&Event{name: n}, ByName)
	}

	assert.Nil(t, s.unlink("zzz"))

	ev := s.unlink("b")
	if assert.NotNil(t, ev) {
		assert.Nil(t, ev.next)
	}
	assert.Equal(t, []string{"a", "c"}, names(&s))

	s.unlink("a")
	assert.Equal(t, []string{"c"}, names(&s))

	s.unlink("c")
	assert.Nil(t, s.head)
}

func TestSlot_Drain(t *testing.T) {
	var s slot
	for _, n := range []string{"x", "y", "z"} {
		s.insert(&Event{name: n}, ByName)
	}

	var seen []string
	n := s.drain(func(ev *Event) {
		assert.Nil(t, ev.next)
		seen = append(seen, ev.name)
	})
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"x", "y", "z"}, seen)
	assert.Nil(t, s.head)
	assert.Equal(t, 0, s.drain(func(*Event) {}))
}

func TestOrderFor(t *testing.T) {
	for _, key := range []string{"", "duration", "start_time", "name", " Name "} {
		fn, err := OrderFor(key)
		assert.NoError(t, err, key)
		assert.NotNil(t, fn, key)
	}
	_, err := OrderFor("priority")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestByStartTime(t *testing.T) {
	a := &Event{startTime: 900, duration: 30}
	b := &Event{startTime: 900, duration: 60}
	c := &Event{startTime: 800, duration: 90}

	assert.Negative(t, ByStartTime(a, b))
	assert.Positive(t, ByStartTime(a, c))
	assert.Zero(t, ByStartTime(a, a))
}
