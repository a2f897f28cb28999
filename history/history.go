// Package history keeps the ordered record of visited pages with
// back and forward movement.
package history

import "gembrowse/addr"

// Entry is one visited page. Scroll is the index of the top visible
// document line when the page was left.
type Entry struct {
	Addr   *addr.Address
	Title  string
	Scroll int
}

// Stack records visits. The current entry always names the page on
// display; moving back shifts it onto the forward slice so the step can
// be retraced.
type Stack struct {
	back    []Entry
	current *Entry
	forward []Entry
}

// New returns an empty stack.
func New() *Stack {
	return &Stack{}
}

// Push records a new visit. The forward record is discarded. Pushing the
// address already on display only refreshes its entry, so a reload does
// not grow history.
func (s *Stack) Push(e Entry) {
	if s.current != nil {
		if s.current.Addr.Key() == e.Addr.Key() {
			*s.current = e
			return
		}
		s.back = append(s.back, *s.current)
	}
	s.forward = nil
	cur := e
	s.current = &cur
}

// Back moves to the previous entry. The second return is false at the
// oldest entry, leaving the stack unchanged.
func (s *Stack) Back() (*Entry, bool) {
	if len(s.back) == 0 {
		return nil, false
	}
	s.forward = append(s.forward, *s.current)
	last := s.back[len(s.back)-1]
	s.back = s.back[:len(s.back)-1]
	s.current = &last
	return s.current, true
}

// Forward retraces a step taken back. The second return is false at the
// newest entry, leaving the stack unchanged.
func (s *Stack) Forward() (*Entry, bool) {
	if len(s.forward) == 0 {
		return nil, false
	}
	s.back = append(s.back, *s.current)
	last := s.forward[len(s.forward)-1]
	s.forward = s.forward[:len(s.forward)-1]
	s.current = &last
	return s.current, true
}

// Current returns the entry on display, or nil before the first visit.
func (s *Stack) Current() *Entry {
	return s.current
}

// SetScroll stores the scroll position on the current entry.
func (s *Stack) SetScroll(n int) {
	if s.current != nil {
		s.current.Scroll = n
	}
}

// Len returns the total number of recorded entries.
func (s *Stack) Len() int {
	n := len(s.back) + len(s.forward)
	if s.current != nil {
		n++
	}
	return n
}

// Entries returns a snapshot, newest first: the current entry, then the
// pages behind it, then any pages ahead of it.
func (s *Stack) Entries() []Entry {
	if s.current == nil {
		return nil
	}
	out := make([]Entry, 0, s.Len())
	out = append(out, *s.current)
	for i := len(s.back) - 1; i >= 0; i-- {
		out = append(out, s.back[i])
	}
	for i := len(s.forward) - 1; i >= 0; i-- {
		out = append(out, s.forward[i])
	}
	return out
}
