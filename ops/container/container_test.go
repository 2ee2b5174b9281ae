package container

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xapiens/rpn/filter"
	"github.com/xapiens/rpn/operation"
	"github.com/xapiens/rpn/stack"
	"github.com/xapiens/rpn/value"
)

// execCtx is an operation.ExecContext double that actually tracks the
// apply scope (a stack of containers), since APPLY's tests need EnterApply
// paired correctly with ExitApply, not just a no-op stub.
type execCtx struct {
	st    *stack.Stack
	scope []value.Value
}

func newCtx(vals ...value.Value) *execCtx {
	st := stack.New()
	for _, v := range vals {
		st.Push(v)
	}
	return &execCtx{st: st}
}

func (c *execCtx) Stack() *stack.Stack { return c.st }

func (c *execCtx) Applying() (filter.ContainerKind, bool) {
	if len(c.scope) == 0 {
		return 0, false
	}
	top := c.scope[len(c.scope)-1]
	switch top.(type) {
	case *value.Tuple:
		return filter.ContainerTuple, true
	case *value.Dict:
		return filter.ContainerDict, true
	default:
		return 0, false
	}
}

func (c *execCtx) EnterApply(container value.Value) error {
	c.scope = append(c.scope, container)
	return nil
}
func (c *execCtx) ExitApply() {
	c.scope = c.scope[:len(c.scope)-1]
}
func (c *execCtx) ApplyContainer() (value.Value, bool) {
	if len(c.scope) == 0 {
		return nil, false
	}
	return c.scope[len(c.scope)-1], true
}

func (c *execCtx) Input(int) (operation.InputValue, bool) { return operation.InputValue{}, false }
func (c *execCtx) InputNormalized(int) (operation.InputValue, bool) {
	return operation.InputValue{}, false
}
func (c *execCtx) SetInput(int, value.Value)      {}
func (c *execCtx) Memory(int) (value.Value, bool) { return nil, false }
func (c *execCtx) SetMemory(int, value.Value)     {}
func (c *execCtx) Param(int) (string, bool)       { return "", false }
func (c *execCtx) TimeZone() *time.Location       { return time.UTC }
func (c *execCtx) Logger() operation.Logger       { return nil }
func (c *execCtx) FailReturnsNull() bool          { return false }
func (c *execCtx) CallProgram(any) error          { return nil }

func constRef(v value.Value) *operation.Reference {
	return operation.Single(operation.ConstantOp, v, 0)
}

func TestTupleCtorAndPredicates(t *testing.T) {
	reg := operation.NewRegistry()
	require.NoError(t, Register(reg))

	ctx := newCtx()
	ref := &operation.Reference{Chain: reg.Lookup("TUPLE")}
	require.NoError(t, ref.Execute(ctx))
	top, _ := ctx.st.Pop()
	require.IsType(t, &value.Tuple{}, top)

	ctx2 := newCtx(top)
	isTupleRef := &operation.Reference{Chain: reg.Lookup("TUPLE?")}
	require.NoError(t, isTupleRef.Execute(ctx2))
	got, _ := ctx2.st.Pop()
	require.Equal(t, value.Bool(true), got)
}

func TestApplyTupleChain(t *testing.T) {
	reg := operation.NewRegistry()
	require.NoError(t, Register(reg))

	// Simulates the compiled form of "tuple 1 apply 2 apply 3 apply": each
	// APPLY's inner reference is whichever reference immediately precedes
	// it (Exec only cares about ref.Operand, not how SetUp found it).
	applyRef := func(inner *operation.Reference) *operation.Reference {
		return &operation.Reference{
			Chain:   reg.Lookup("APPLY"),
			Operand: inner,
		}
	}

	ctx := newCtx()
	tupleRef := &operation.Reference{Chain: reg.Lookup("TUPLE")}
	require.NoError(t, tupleRef.Execute(ctx))

	require.NoError(t, applyRef(constRef(value.Long(1))).Execute(ctx))
	require.NoError(t, applyRef(constRef(value.Long(2))).Execute(ctx))
	require.NoError(t, applyRef(constRef(value.Long(3))).Execute(ctx))

	require.Equal(t, 1, ctx.st.Size())
	top, _ := ctx.st.Pop()
	tup := top.(*value.Tuple)
	require.Equal(t, 3, tup.Len())
	require.Equal(t, value.Long(1), tup.At(0))
	require.Equal(t, value.Long(2), tup.At(1))
	require.Equal(t, value.Long(3), tup.At(2))

	// Scope must be restored (empty) after every APPLY completes.
	_, applying := ctx.Applying()
	require.False(t, applying)
}

func TestGetSetTuple(t *testing.T) {
	reg := operation.NewRegistry()
	require.NoError(t, Register(reg))

	tup := value.NewTuple([]value.Value{value.Long(10), value.Long(20)})

	ctx := newCtx(tup, value.Long(0))
	getRef := &operation.Reference{Chain: reg.Lookup("GET")}
	require.NoError(t, getRef.Execute(ctx))
	got, _ := ctx.st.Pop()
	require.Equal(t, value.Long(10), got)

	ctx2 := newCtx(tup, value.Long(1), value.Long(99))
	setRef := &operation.Reference{Chain: reg.Lookup("SET")}
	require.NoError(t, setRef.Execute(ctx2))
	got2, _ := ctx2.st.Pop()
	newTup := got2.(*value.Tuple)
	require.Equal(t, value.Long(99), newTup.At(1))
	require.Equal(t, value.Long(10), newTup.At(0))
}

func TestGetSetDict(t *testing.T) {
	reg := operation.NewRegistry()
	require.NoError(t, Register(reg))

	d := value.NewDict(1)

	ctx := newCtx(d, value.Text("a"), value.Long(5))
	setRef := &operation.Reference{Chain: reg.Lookup("SET")}
	require.NoError(t, setRef.Execute(ctx))
	got, _ := ctx.st.Pop()
	require.Same(t, d, got)

	ctx2 := newCtx(d, value.Text("a"))
	getRef := &operation.Reference{Chain: reg.Lookup("GET")}
	require.NoError(t, getRef.Execute(ctx2))
	got2, _ := ctx2.st.Pop()
	require.Equal(t, value.Long(5), got2)
}

func TestLenAndKeys(t *testing.T) {
	reg := operation.NewRegistry()
	require.NoError(t, Register(reg))

	d := value.NewDict(2)
	d.Set("x", value.Long(1))
	d.Set("y", value.Long(2))

	ctx := newCtx(d)
	lenRef := &operation.Reference{Chain: reg.Lookup("LEN")}
	require.NoError(t, lenRef.Execute(ctx))
	got, _ := ctx.st.Pop()
	require.Equal(t, value.Long(2), got)

	ctx2 := newCtx(d)
	keysRef := &operation.Reference{Chain: reg.Lookup("KEYS")}
	require.NoError(t, keysRef.Execute(ctx2))
	got2, _ := ctx2.st.Pop()
	keys := got2.(*value.Tuple)
	require.Equal(t, 2, keys.Len())
	require.Equal(t, value.Text("x"), keys.At(0))
	require.Equal(t, value.Text("y"), keys.At(1))
}
