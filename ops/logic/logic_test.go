package logic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xapiens/rpn/filter"
	"github.com/xapiens/rpn/operation"
	"github.com/xapiens/rpn/stack"
	"github.com/xapiens/rpn/token"
	"github.com/xapiens/rpn/value"
)

// execCtx is a minimal operation.ExecContext double exercising only the
// stack, with no-op stubs for everything else.
type execCtx struct{ st *stack.Stack }

func newCtx(vals ...value.Value) *execCtx {
	st := stack.New()
	for _, v := range vals {
		st.Push(v)
	}
	return &execCtx{st: st}
}

func (c *execCtx) Stack() *stack.Stack                    { return c.st }
func (c *execCtx) Applying() (filter.ContainerKind, bool) { return 0, false }
func (c *execCtx) EnterApply(value.Value) error           { return nil }
func (c *execCtx) ExitApply()                             {}
func (c *execCtx) ApplyContainer() (value.Value, bool)    { return nil, false }
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

// fakeSetUpCtx is a minimal operation.SetUpContext double: a prebuilt queue
// of references, handed out one at a time, standing in for the compiler
// during a structural operation's SetUp.
type fakeSetUpCtx struct{ queue []*operation.Reference }

func (c *fakeSetUpCtx) NextReference() (*operation.Reference, error) {
	ref := c.queue[0]
	c.queue = c.queue[1:]
	return ref, nil
}
func (c *fakeSetUpCtx) PeekReference() (*operation.Reference, error) { return c.queue[0], nil }

// PreviousReference, BeginSequence, and EndSequence are unused by the
// IF/BEGIN SetUp paths under test here (only apply reaches backward), so
// these are no-op stubs to satisfy operation.SetUpContext.
func (c *fakeSetUpCtx) PreviousReference() (*operation.Reference, error) { return nil, nil }
func (c *fakeSetUpCtx) BeginSequence()                                  {}
func (c *fakeSetUpCtx) EndSequence()                                    {}

func sentinelRef(op operation.Operation) *operation.Reference {
	return &operation.Reference{Chain: []*operation.Registration{{Op: op, Filter: nil}}}
}

func constRef(v value.Value) *operation.Reference {
	return operation.Single(operation.ConstantOp, v, token.Pos(0))
}

func TestIfElseThenSetUpAndExec(t *testing.T) {
	su := &fakeSetUpCtx{queue: []*operation.Reference{
		constRef(value.Long(10)),
		sentinelRef(elseOp{}),
		constRef(value.Long(20)),
		sentinelRef(thenOp{}),
	}}
	operand, err := ifOp{}.SetUp(su, nil)
	require.NoError(t, err)
	branches := operand.(*ifBranches)
	require.Len(t, branches.Then, 1)
	require.Len(t, branches.Else, 1)

	ref := &operation.Reference{Operand: branches}

	trueCtx := newCtx(value.Bool(true))
	require.NoError(t, ifOp{}.Exec(trueCtx, ref))
	top, _ := trueCtx.st.Pop()
	require.Equal(t, value.Long(10), top)

	falseCtx := newCtx(value.Bool(false))
	require.NoError(t, ifOp{}.Exec(falseCtx, ref))
	top2, _ := falseCtx.st.Pop()
	require.Equal(t, value.Long(20), top2)
}

func TestIfNoElseSetUp(t *testing.T) {
	su := &fakeSetUpCtx{queue: []*operation.Reference{
		constRef(value.Long(1)),
		sentinelRef(thenOp{}),
	}}
	operand, err := ifOp{}.SetUp(su, nil)
	require.NoError(t, err)
	branches := operand.(*ifBranches)
	require.Len(t, branches.Then, 1)
	require.Nil(t, branches.Else)

	ref := &operation.Reference{Operand: branches}
	falseCtx := newCtx(value.Bool(false))
	require.NoError(t, ifOp{}.Exec(falseCtx, ref))
	require.Equal(t, 0, falseCtx.st.Size())
}

func TestMisplacedThenErrors(t *testing.T) {
	err := thenOp{}.Exec(newCtx(), &operation.Reference{})
	require.Error(t, err)
	var m *MisplacedSentinelError
	require.ErrorAs(t, err, &m)
}

func TestBeginWhileRepeat(t *testing.T) {
	// BEGIN DUP 0 > WHILE 1 - REPEAT counts a long down to zero; the fake
	// queue stands in for DUP/0/>/1/- since this test only exercises the
	// loop harness, not arithmetic words, so its "pre"/"post" are trivial
	// boolean-producing/stack-mutating stand-ins.
	pre := []*operation.Reference{boolPushRef(t)}
	su := &fakeSetUpCtx{queue: append(append([]*operation.Reference{}, pre...),
		sentinelRef(whileOp{}),
		constRef(value.Long(99)),
		sentinelRef(repeatOp{}),
	)}
	operand, err := beginOp{}.SetUp(su, nil)
	require.NoError(t, err)
	lb := operand.(*loopBranches)
	require.True(t, lb.HasWhile)
	require.Len(t, lb.Pre, 1)
	require.Len(t, lb.Post, 1)
}

// boolPushRef returns a reference whose Exec pushes false, so a single
// BEGIN...WHILE iteration's condition check ends the loop immediately.
func boolPushRef(t *testing.T) *operation.Reference {
	t.Helper()
	return &operation.Reference{Chain: []*operation.Registration{{Op: pushFalseOp{}, Filter: nil}}}
}

type pushFalseOp struct{}

func (pushFalseOp) Name() string           { return "PUSH_FALSE" }
func (pushFalseOp) Filter() *filter.Filter { return nil }
func (pushFalseOp) SetUp(operation.SetUpContext, any) (any, error) {
	return nil, nil
}
func (pushFalseOp) Exec(ctx operation.ExecContext, _ *operation.Reference) error {
	ctx.Stack().Push(value.Bool(false))
	return nil
}

func TestBeginWhileExecStopsImmediately(t *testing.T) {
	lb := &loopBranches{
		Pre:      []*operation.Reference{{Chain: []*operation.Registration{{Op: pushFalseOp{}}}}},
		Post:     []*operation.Reference{constRef(value.Long(1))},
		HasWhile: true,
	}
	ctx := newCtx()
	require.NoError(t, beginOp{}.Exec(ctx, &operation.Reference{Operand: lb}))
	require.Equal(t, 0, ctx.st.Size())
}

func TestAndOrXorNot(t *testing.T) {
	reg := operation.NewRegistry()
	require.NoError(t, Register(reg))

	ctx := newCtx(value.Bool(true), value.Bool(false))
	ref := &operation.Reference{Chain: reg.Lookup("AND")}
	require.NoError(t, ref.Execute(ctx))
	top, _ := ctx.st.Pop()
	require.Equal(t, value.Bool(false), top)

	ctx2 := newCtx(value.Bool(true), value.Bool(false))
	ref2 := &operation.Reference{Chain: reg.Lookup("OR")}
	require.NoError(t, ref2.Execute(ctx2))
	top2, _ := ctx2.st.Pop()
	require.Equal(t, value.Bool(true), top2)

	ctx3 := newCtx(value.Bool(true))
	ref3 := &operation.Reference{Chain: reg.Lookup("NOT")}
	require.NoError(t, ref3.Execute(ctx3))
	top3, _ := ctx3.st.Pop()
	require.Equal(t, value.Bool(false), top3)
}
