// Package stack implements the mark-aware LIFO value stack owned by a
// single task during program execution.
package stack

import (
	"fmt"

	"github.com/xapiens/rpn/value"
)

// LimitsError reports an out-of-range pop, peek, insert, or remove: the
// task's program attempted to read past the bottom of the stack (or its
// mark chain).
type LimitsError struct {
	Op       string
	Offset   int
	Size     int
}

func (e *LimitsError) Error() string {
	return fmt.Sprintf("stack %s out of range: offset %d, size %d", e.Op, e.Offset, e.Size)
}

// CastError reports that the value observed at a required stack position
// was not of the expected type.
type CastError struct {
	Want, Got string
}

func (e *CastError) Error() string {
	return fmt.Sprintf("cast error: want %s, got %s", e.Want, e.Got)
}

// Stack is a LIFO of values with nestable marks. A mark is a sibling frame
// that the current frame delegates to once its own values are exhausted,
// implemented here as a segmented slice-of-slices (one segment per mark)
// rather than a linked list of heap objects, for locality.
type Stack struct {
	segments [][]value.Value
}

// New returns an empty Stack with one (unmarked) frame.
func New() *Stack {
	return &Stack{segments: [][]value.Value{nil}}
}

func (s *Stack) top() []value.Value { return s.segments[len(s.segments)-1] }

// Push appends v to the current frame.
func (s *Stack) Push(v value.Value) {
	i := len(s.segments) - 1
	s.segments[i] = append(s.segments[i], v)
}

// Size returns the number of values in the current (innermost) frame only.
func (s *Stack) Size() int { return len(s.top()) }

// TotalSize returns the number of values across the current frame and every
// mark beneath it.
func (s *Stack) TotalSize() int {
	n := 0
	for _, seg := range s.segments {
		n += len(seg)
	}
	return n
}

// resolve maps a 0-based offset from the top of the logical (mark-aware)
// stack to a (segment index, position within segment), delegating to
// enclosing marks once the current frame is exhausted.
func (s *Stack) resolve(offset int) (seg, pos int, ok bool) {
	if offset < 0 {
		return 0, 0, false
	}
	for i := len(s.segments) - 1; i >= 0; i-- {
		n := len(s.segments[i])
		if offset < n {
			return i, n - 1 - offset, true
		}
		offset -= n
	}
	return 0, 0, false
}

// Peek returns the value at offset from the top (0 is the topmost value),
// searching into enclosing marks as needed.
func (s *Stack) Peek(offset int) (value.Value, error) {
	seg, pos, ok := s.resolve(offset)
	if !ok {
		return nil, &LimitsError{Op: "peek", Offset: offset, Size: s.TotalSize()}
	}
	return s.segments[seg][pos], nil
}

// Pop removes and returns the topmost value of the current frame. Pop
// never reaches into an enclosing mark — popping past the current frame's
// bottom is a Limits error, since a mark is meant to isolate the frame
// built since the mark was pushed.
func (s *Stack) Pop() (value.Value, error) {
	i := len(s.segments) - 1
	seg := s.segments[i]
	if len(seg) == 0 {
		return nil, &LimitsError{Op: "pop", Offset: 0, Size: 0}
	}
	v := seg[len(seg)-1]
	s.segments[i] = seg[:len(seg)-1]
	return v, nil
}

// Insert places v at offset from the top of the current frame, shifting
// values above it up by one.
func (s *Stack) Insert(offset int, v value.Value) error {
	i := len(s.segments) - 1
	seg := s.segments[i]
	n := len(seg)
	pos := n - offset
	if pos < 0 || pos > n {
		return &LimitsError{Op: "insert", Offset: offset, Size: n}
	}
	seg = append(seg, nil)
	copy(seg[pos+1:], seg[pos:])
	seg[pos] = v
	s.segments[i] = seg
	return nil
}

// Remove deletes and returns the value at offset from the top of the
// current frame, shifting values above it down by one.
func (s *Stack) Remove(offset int) (value.Value, error) {
	i := len(s.segments) - 1
	seg := s.segments[i]
	n := len(seg)
	pos := n - 1 - offset
	if pos < 0 || pos >= n {
		return nil, &LimitsError{Op: "remove", Offset: offset, Size: n}
	}
	v := seg[pos]
	copy(seg[pos:], seg[pos+1:])
	s.segments[i] = seg[:n-1]
	return v, nil
}

// Reverse reverses the current frame's values in place.
func (s *Stack) Reverse() {
	i := len(s.segments) - 1
	seg := s.segments[i]
	for l, r := 0, len(seg)-1; l < r; l, r = l+1, r-1 {
		seg[l], seg[r] = seg[r], seg[l]
	}
}

// Clear empties the current frame without affecting enclosing marks.
func (s *Stack) Clear() {
	i := len(s.segments) - 1
	s.segments[i] = s.segments[i][:0]
}

// Mark pushes a new, empty frame. Every Mark must be balanced by Unmark,
// including on fault exit paths — see applyOp in package ops/container
// for the exit-path discipline this requires.
func (s *Stack) Mark() {
	s.segments = append(s.segments, nil)
}

// Marked reports whether the current frame was pushed by Mark (i.e. there
// is an enclosing frame to drain into on Unmark).
func (s *Stack) Marked() bool { return len(s.segments) > 1 }

// Unmark drains the current frame into its parent, in insertion order, and
// pops the frame. Unmarking an unmarked stack is a Limits error.
func (s *Stack) Unmark() error {
	if !s.Marked() {
		return &LimitsError{Op: "unmark", Offset: 0, Size: 0}
	}
	i := len(s.segments) - 1
	top := s.segments[i]
	s.segments = s.segments[:i]
	parent := i - 1
	s.segments[parent] = append(s.segments[parent], top...)
	return nil
}

// MarkToTuple is like Unmark, but instead of draining into the parent frame
// it collects the marked frame's values (in insertion order) into a Tuple
// and pushes that single Tuple onto the parent frame.
func (s *Stack) MarkToTuple() error {
	if !s.Marked() {
		return &LimitsError{Op: "mark-to-tuple", Offset: 0, Size: 0}
	}
	i := len(s.segments) - 1
	top := s.segments[i]
	elems := make([]value.Value, len(top))
	copy(elems, top)
	s.segments = s.segments[:i]
	s.Push(value.NewTuple(elems))
	return nil
}
