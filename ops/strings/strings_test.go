package strings

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
	st *stack.Stack
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
func (c *execCtx) FailReturnsNull() bool          { return false }
func (c *execCtx) CallProgram(any) error          { return nil }

func exec(t *testing.T, reg *operation.Registry, name string, ctx *execCtx) {
	t.Helper()
	ref := &operation.Reference{Chain: reg.Lookup(name)}
	require.NoError(t, ref.Execute(ctx))
}

func TestConcatLenCase(t *testing.T) {
	reg := operation.NewRegistry()
	require.NoError(t, Register(reg))

	ctx := newCtx(value.Text("foo"), value.Text("bar"))
	exec(t, reg, "CONCAT", ctx)
	got, _ := ctx.st.Pop()
	require.Equal(t, value.Text("foobar"), got)

	ctx2 := newCtx(value.Text("hello"))
	exec(t, reg, "LEN", ctx2)
	got2, _ := ctx2.st.Pop()
	require.Equal(t, value.Long(5), got2)

	ctx3 := newCtx(value.Text("hello"))
	exec(t, reg, "UPPER", ctx3)
	got3, _ := ctx3.st.Pop()
	require.Equal(t, value.Text("HELLO"), got3)

	ctx4 := newCtx(value.Text("HELLO"))
	exec(t, reg, "LOWER", ctx4)
	got4, _ := ctx4.st.Pop()
	require.Equal(t, value.Text("hello"), got4)
}

func TestSubstrClampsBounds(t *testing.T) {
	reg := operation.NewRegistry()
	require.NoError(t, Register(reg))

	ctx := newCtx(value.Text("hello world"), value.Long(6), value.Long(100))
	exec(t, reg, "SUBSTR", ctx)
	got, _ := ctx.st.Pop()
	require.Equal(t, value.Text("world"), got)

	ctx2 := newCtx(value.Text("hello"), value.Long(-5), value.Long(2))
	exec(t, reg, "SUBSTR", ctx2)
	got2, _ := ctx2.st.Pop()
	require.Equal(t, value.Text("he"), got2)
}

func TestIndexAndSplitAndTrim(t *testing.T) {
	reg := operation.NewRegistry()
	require.NoError(t, Register(reg))

	ctx := newCtx(value.Text("hello world"), value.Text("world"))
	exec(t, reg, "INDEX", ctx)
	got, _ := ctx.st.Pop()
	require.Equal(t, value.Long(6), got)

	ctx2 := newCtx(value.Text("hello world"), value.Text("zzz"))
	exec(t, reg, "INDEX", ctx2)
	got2, _ := ctx2.st.Pop()
	require.Equal(t, value.Long(-1), got2)

	ctx3 := newCtx(value.Text("a,b,c"), value.Text(","))
	exec(t, reg, "SPLIT", ctx3)
	got3, _ := ctx3.st.Pop()
	tup := got3.(*value.Tuple)
	require.Equal(t, 3, tup.Len())
	require.Equal(t, value.Text("b"), tup.At(1))

	ctx4 := newCtx(value.Text("  padded  "))
	exec(t, reg, "TRIM", ctx4)
	got4, _ := ctx4.st.Pop()
	require.Equal(t, value.Text("padded"), got4)
}

func TestFormatRestrictedVerbs(t *testing.T) {
	reg := operation.NewRegistry()
	require.NoError(t, Register(reg))

	args := value.NewTuple([]value.Value{value.Text("world"), value.Long(42)})
	ctx := newCtx(value.Text("hello %s, %d"), args)
	exec(t, reg, "FORMAT", ctx)
	got, _ := ctx.st.Pop()
	require.Equal(t, value.Text("hello world, 42"), got)

	ctx2 := newCtx(value.Text("%p"), value.NewTuple(nil))
	ref := &operation.Reference{Chain: reg.Lookup("FORMAT")}
	err := ref.Execute(ctx2)
	require.Error(t, err)
	var verbErr *FormatVerbError
	require.ErrorAs(t, err, &verbErr)
	require.Equal(t, 'p', verbErr.Verb)
}
