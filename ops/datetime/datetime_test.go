package datetime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xapiens/rpn/filter"
	"github.com/xapiens/rpn/operation"
	"github.com/xapiens/rpn/stack"
	"github.com/xapiens/rpn/value"
)

type execCtx struct {
	st       *stack.Stack
	failNull bool
}

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
func (c *execCtx) FailReturnsNull() bool          { return c.failNull }
func (c *execCtx) CallProgram(any) error          { return nil }

func TestStampArithmeticAndFormat(t *testing.T) {
	reg := operation.NewRegistry()
	require.NoError(t, Register(reg))

	base := value.Stamp{T: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}

	ctx := newCtx(base, value.Elapsed{D: time.Hour})
	ref := &operation.Reference{Chain: reg.Lookup("STAMP+ELAPSED")}
	require.NoError(t, ref.Execute(ctx))
	got, _ := ctx.st.Pop()
	require.Equal(t, base.T.Add(time.Hour), got.(value.Stamp).T)

	ctx2 := newCtx(base, base)
	subRef := &operation.Reference{Chain: reg.Lookup("STAMP-STAMP")}
	require.NoError(t, subRef.Execute(ctx2))
	got2, _ := ctx2.st.Pop()
	require.Equal(t, time.Duration(0), got2.(value.Elapsed).D)

	ctx3 := newCtx(base)
	fmtRef := &operation.Reference{Chain: reg.Lookup("STAMP.FORMAT")}
	require.NoError(t, fmtRef.Execute(ctx3))
	text, _ := ctx3.st.Pop()
	require.Equal(t, base.T.Format(layout), string(text.(value.Text)))

	ctx4 := newCtx(text)
	parseRef := &operation.Reference{Chain: reg.Lookup("STAMP.PARSE")}
	require.NoError(t, parseRef.Execute(ctx4))
	parsed, _ := ctx4.st.Pop()
	require.True(t, base.T.Equal(parsed.(value.Stamp).T))
}

func TestParseFailReturnsNull(t *testing.T) {
	reg := operation.NewRegistry()
	require.NoError(t, Register(reg))

	ctx := newCtx(value.Text("not-a-stamp"))
	ctx.failNull = true
	ref := &operation.Reference{Chain: reg.Lookup("STAMP.PARSE")}
	require.NoError(t, ref.Execute(ctx))
	got, _ := ctx.st.Pop()
	require.Equal(t, value.Null{}, got)
}
