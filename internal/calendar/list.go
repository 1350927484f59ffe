package calendar

// slot is the head of one day's singly-linked list.
type slot struct {
	head *Event
}

// insert links ev in front of the first node that does not strictly precede
// it under order, so a new event lands before the first existing tie.
func (s *slot) insert(ev *Event, order OrderFunc) {
	var prev *Event
	curr := s.head
	for curr != nil && order(curr, ev) < 0 {
		prev = curr
		curr = curr.next
	}

	ev.next = curr
	if prev == nil {
		s.head = ev
		return
	}
	prev.next = ev
}

// find returns the first node named name, or nil.
func (s *slot) find(name string) *Event {
	for curr := s.head; curr != nil; curr = curr.next {
		if curr.name == name {
			return curr
		}
	}
	return nil
}

// unlink detaches and returns the first node named name, or nil when the
// list holds no such node.
func (s *slot) unlink(name string) *Event {
	var prev *Event
	curr := s.head
	for curr != nil && curr.name != name {
		prev = curr
		curr = curr.next
	}
	if curr == nil {
		return nil
	}

	if prev == nil {
		s.head = curr.next
	} else {
		prev.next = curr.next
	}
	curr.next = nil
	return curr
}

// drain empties the list, handing every node to destroy in list order, and
// returns how many nodes were removed.
func (s *slot) drain(destroy func(*Event)) int {
	n := 0
	curr := s.head
	s.head = nil
	for curr != nil {
		next := curr.next
		curr.next = nil
		destroy(curr)
		curr = next
		n++
	}
	return n
}
