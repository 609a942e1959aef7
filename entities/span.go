package entities

import "fmt"

// Span is a half-open [Start, End) interval of code points in a post's
// original, unrepaired text.
type Span struct {
	Start int
	End   int
}

// NewSpan validates the pair and returns the span
func NewSpan(start, end int) (Span, error) {
	if start < 0 || end < 0 {
		return Span{}, fmt.Errorf("%w: negative index in [%d, %d)", ErrMalformedEntity, start, end)
	}
	if start > end {
		return Span{}, fmt.Errorf("%w: start %d is after end %d", ErrMalformedEntity, start, end)
	}
	return Span{Start: start, End: end}, nil
}

// SpanFromIndices builds a span from an archive index pair, which must hold
// exactly two values.
func SpanFromIndices(indices []int) (Span, error) {
	if len(indices) != 2 {
		return Span{}, fmt.Errorf("%w: expected 2 indices, got %d", ErrMalformedEntity, len(indices))
	}
	return NewSpan(indices[0], indices[1])
}

func (s Span) Len() int {
	return s.End - s.Start
}

// Overlaps reports whether the two spans share at least one position. An
// empty span overlaps a span it falls strictly inside, and touches nothing at
// either end.
func (s Span) Overlaps(other Span) bool {
	return s.Start < other.End && other.Start < s.End
}

func (s Span) String() string {
	return fmt.Sprintf("[%d, %d)", s.Start, s.End)
}
