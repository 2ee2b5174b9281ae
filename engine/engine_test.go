package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xapiens/rpn/operation"
	"github.com/xapiens/rpn/value"
)

type fakeContext struct {
	inputs    map[int]operation.InputValue
	failsNull bool
}

func newFakeContext(vals ...value.Value) *fakeContext {
	c := &fakeContext{inputs: make(map[int]operation.InputValue)}
	for i, v := range vals {
		c.inputs[i+1] = operation.InputValue{Value: v}
	}
	return c
}

func (c *fakeContext) Input(i int) (operation.InputValue, bool) {
	v, ok := c.inputs[i]
	return v, ok
}
func (c *fakeContext) InputNormalized(i int) (operation.InputValue, bool) { return c.Input(i) }
func (c *fakeContext) SetInput(int, value.Value)                         {}
func (c *fakeContext) Param(int) (string, bool)                         { return "", false }
func (c *fakeContext) TimeZone() *time.Location                         { return time.UTC }
func (c *fakeContext) Logger() operation.Logger                         { return nil }
func (c *fakeContext) FailReturnsNull() bool                            { return c.failsNull }

func TestCompileAndExecuteArithmetic(t *testing.T) {
	eng, err := New(nil, nil)
	require.NoError(t, err)

	prog, err := eng.Compile("2 3 + 4 *")
	require.NoError(t, err)

	got, err := eng.Execute(prog, newFakeContext())
	require.NoError(t, err)
	require.Equal(t, value.Long(20), got)
}

func TestAmbientMacroExpansion(t *testing.T) {
	eng, err := New([]string{"dbl(x=0) $x $x +"}, nil)
	require.NoError(t, err)

	prog, err := eng.Compile("dbl(5)")
	require.NoError(t, err)

	got, err := eng.Execute(prog, newFakeContext(nil, nil, nil, nil, value.Long(21)))
	require.NoError(t, err)
	require.Equal(t, value.Long(42), got)
}

func TestInputSumWithFailReturnsNullPolicy(t *testing.T) {
	eng, err := New(nil, nil)
	require.NoError(t, err)

	prog, err := eng.Compile("$1 $2 +")
	require.NoError(t, err)

	got, err := eng.Execute(prog, newFakeContext(value.Long(10), value.Long(32)))
	require.NoError(t, err)
	require.Equal(t, value.Long(42), got)

	nullCtx := newFakeContext(value.Null{}, value.Long(32))
	nullCtx.failsNull = true
	got, err = eng.Execute(prog, nullCtx)
	require.NoError(t, err)
	require.Equal(t, value.Null{}, got)

	droppedCtx := newFakeContext(value.Null{}, value.Long(32))
	_, err = eng.Execute(prog, droppedCtx)
	require.Error(t, err)
}

func TestMemoryStoreAndFetch(t *testing.T) {
	eng, err := New(nil, nil)
	require.NoError(t, err)

	// Push 7, store it in memory 1, fetch it back, push 5, add.
	prog, err := eng.Compile("7 #1= #1 5 +")
	require.NoError(t, err)

	got, err := eng.Execute(prog, newFakeContext())
	require.NoError(t, err)
	require.Equal(t, value.Long(12), got)
}

func TestApplyTupleChainScenario(t *testing.T) {
	eng, err := New(nil, nil)
	require.NoError(t, err)

	prog, err := eng.Compile("tuple 1 apply 2 apply 3 apply")
	require.NoError(t, err)

	got, err := eng.Execute(prog, newFakeContext())
	require.NoError(t, err)
	tup, ok := got.(*value.Tuple)
	require.True(t, ok)
	require.Equal(t, 3, tup.Len())
	require.Equal(t, value.Long(1), tup.At(0))
	require.Equal(t, value.Long(2), tup.At(1))
	require.Equal(t, value.Long(3), tup.At(2))
}

func TestAmbientWordIsCallable(t *testing.T) {
	eng, err := New(nil, []string{": SQUARE DUP * ;"})
	require.NoError(t, err)

	prog, err := eng.Compile("6 SQUARE")
	require.NoError(t, err)

	got, err := eng.Execute(prog, newFakeContext())
	require.NoError(t, err)
	require.Equal(t, value.Long(36), got)
}
