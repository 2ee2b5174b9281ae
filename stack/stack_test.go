package stack

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xapiens/rpn/value"
)

func TestPushPopOrder(t *testing.T) {
	s := New()
	s.Push(value.Long(1))
	s.Push(value.Long(2))
	s.Push(value.Long(3))

	v, err := s.Pop()
	require.NoError(t, err)
	require.Equal(t, value.Long(3), v)
	require.Equal(t, 2, s.Size())
}

func TestPopUnderflow(t *testing.T) {
	s := New()
	_, err := s.Pop()
	require.Error(t, err)
	var limits *LimitsError
	require.ErrorAs(t, err, &limits)
}

func TestMarkUnmarkBalance(t *testing.T) {
	s := New()
	s.Push(value.Long(1))
	s.Push(value.Long(2))

	s.Mark()
	require.True(t, s.Marked())
	s.Push(value.Long(3))
	s.Push(value.Long(4))
	require.Equal(t, 4, s.TotalSize())
	require.Equal(t, 2, s.Size())

	require.NoError(t, s.Unmark())
	require.False(t, s.Marked())
	require.Equal(t, 4, s.Size())

	// parent content is pre-mark values followed by the marked frame's
	// values in insertion order.
	want := []value.Value{value.Long(1), value.Long(2), value.Long(3), value.Long(4)}
	for i := len(want) - 1; i >= 0; i-- {
		v, err := s.Pop()
		require.NoError(t, err)
		require.Equal(t, want[i], v)
	}
}

func TestTotalSizeAcrossMarkChain(t *testing.T) {
	s := New()
	s.Push(value.Long(1))
	s.Mark()
	s.Push(value.Long(2))
	s.Push(value.Long(3))
	s.Mark()
	s.Push(value.Long(4))

	require.Equal(t, 4, s.TotalSize())
	require.Equal(t, 1, s.Size())

	v, err := s.Peek(3)
	require.NoError(t, err)
	require.Equal(t, value.Long(1), v)
}

func TestMarkToTuple(t *testing.T) {
	s := New()
	s.Mark()
	s.Push(value.Long(1))
	s.Push(value.Long(2))
	s.Push(value.Long(3))
	require.NoError(t, s.MarkToTuple())

	v, err := s.Pop()
	require.NoError(t, err)
	tup, ok := v.(*value.Tuple)
	require.True(t, ok)
	require.Equal(t, 3, tup.Len())
	require.Equal(t, value.Long(1), tup.At(0))
	require.Equal(t, value.Long(3), tup.At(2))
}

func TestUnmarkWithoutMarkIsLimitsError(t *testing.T) {
	s := New()
	err := s.Unmark()
	require.Error(t, err)
	var limits *LimitsError
	require.ErrorAs(t, err, &limits)
}

func TestPeekOutOfRangeIsError(t *testing.T) {
	s := New()
	_, err := s.Peek(0)
	require.Error(t, err)
}

func TestInsertAndRemove(t *testing.T) {
	s := New()
	s.Push(value.Long(1))
	s.Push(value.Long(3))
	require.NoError(t, s.Insert(1, value.Long(2)))

	v, err := s.Remove(1)
	require.NoError(t, err)
	require.Equal(t, value.Long(2), v)
}
