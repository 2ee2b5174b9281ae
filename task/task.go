// Package task implements the execution frame a compiled Program runs
// against: the operand stack, sparse scratch memory, the container-apply
// scope, and the glue to a host-supplied Context for input/param/time-zone
// access. Task implements operation.ExecContext, so every ops/* module
// runs unmodified against it.
//
// One Task is created per program run (see Run): a fresh, single-use
// frame rather than a reused VM instance, so concurrent runs never share
// mutable execution state.
package task

import (
	"fmt"
	"time"

	"github.com/xapiens/rpn/compiler"
	"github.com/xapiens/rpn/filter"
	"github.com/xapiens/rpn/operation"
	"github.com/xapiens/rpn/stack"
	"github.com/xapiens/rpn/value"
)

// Context is the host-supplied execution-time capability set: input/param
// access, time zone, logging, and the fail-returns-null policy. Task owns
// the stack, scratch memory, and apply scope itself; Context supplies
// everything that comes from outside
// the core.
type Context interface {
	Input(i int) (operation.InputValue, bool)
	InputNormalized(i int) (operation.InputValue, bool)
	SetInput(i int, v value.Value)
	Param(i int) (string, bool)
	TimeZone() *time.Location
	Logger() operation.Logger
	FailReturnsNull() bool
}

// ValuesOnStackError reports that a program finished with a final-frame
// depth other than exactly one value, after trailing empty marks were
// collapsed.
type ValuesOnStackError struct{ N int }

func (e *ValuesOnStackError) Error() string {
	return fmt.Sprintf("program finished with %d values on the stack, want exactly 1", e.N)
}

// Task is a single program run's execution frame: a mark-aware stack,
// sparse scratch memory, a nestable container-apply scope, and a borrowed
// Context. A Task is single-use — create one per Run, since nothing about
// it is safe to share across concurrent runs.
type Task struct {
	ctx    Context
	st     *stack.Stack
	memory map[int]value.Value
	apply  []value.Value
}

// New returns a fresh Task borrowing ctx for the duration of one Run.
func New(ctx Context) *Task {
	return &Task{
		ctx:    ctx,
		st:     stack.New(),
		memory: make(map[int]value.Value),
	}
}

// Run executes program to completion (iterating its references in program
// order — see exec) and post-processes the stack: trailing empty marks
// collapse, then exactly one value must remain. A failure of any kind —
// stack access, arithmetic, or the final-depth check — cancels the task;
// cancellation yields no output unless the FailReturnsNull policy is set,
// which governs every one of these uniformly, not just arithmetic faults.
func (t *Task) Run(program *compiler.Program) (value.Value, error) {
	err := t.exec(program.Refs)
	if err == nil {
		for t.st.Marked() && t.st.Size() == 0 {
			if uerr := t.st.Unmark(); uerr != nil {
				err = uerr
				break
			}
		}
	}
	if err == nil && t.st.Size() != 1 {
		err = &ValuesOnStackError{N: t.st.Size()}
	}
	if err != nil {
		if t.ctx.FailReturnsNull() {
			if lg := t.Logger(); lg != nil {
				lg.Warnf("task cancelled, returning null: %s", err)
			}
			return value.Null{}, nil
		}
		return nil, err
	}
	v, _ := t.st.Pop()
	return v, nil
}

func (t *Task) exec(refs []*operation.Reference) error {
	for _, ref := range refs {
		if err := ref.Execute(t); err != nil {
			return err
		}
	}
	return nil
}

// CallProgram implements operation.ExecContext: program is always the
// *compiler.Program a CALL reference's Operand holds. Running the
// callee's references directly on this same Task's stack/memory — rather
// than pushing an explicit pc/program pair to restore afterward — is how
// the flat-Program design (see compiler/program.go) gets save/restore for
// free: the Go call stack itself is the save, and an error return simply
// never restores, since the caller's frame is gone along with it.
func (t *Task) CallProgram(program any) error {
	prog, ok := program.(*compiler.Program)
	if !ok {
		return fmt.Errorf("CallProgram: %T is not a *compiler.Program", program)
	}
	return t.exec(prog.Refs)
}

func (t *Task) Stack() *stack.Stack { return t.st }

// Applying implements filter.ApplyScope.
func (t *Task) Applying() (filter.ContainerKind, bool) {
	if len(t.apply) == 0 {
		return 0, false
	}
	switch t.apply[len(t.apply)-1].(type) {
	case *value.Tuple:
		return filter.ContainerTuple, true
	case *value.Dict:
		return filter.ContainerDict, true
	default:
		return 0, false
	}
}

func (t *Task) EnterApply(container value.Value) error {
	t.apply = append(t.apply, container)
	return nil
}

func (t *Task) ExitApply() {
	t.apply = t.apply[:len(t.apply)-1]
}

func (t *Task) ApplyContainer() (value.Value, bool) {
	if len(t.apply) == 0 {
		return nil, false
	}
	return t.apply[len(t.apply)-1], true
}

func (t *Task) Input(i int) (operation.InputValue, bool)           { return t.ctx.Input(i) }
func (t *Task) InputNormalized(i int) (operation.InputValue, bool) { return t.ctx.InputNormalized(i) }
func (t *Task) SetInput(i int, v value.Value)                      { t.ctx.SetInput(i, v) }

func (t *Task) Memory(i int) (value.Value, bool) {
	v, ok := t.memory[i]
	return v, ok
}

func (t *Task) SetMemory(i int, v value.Value) { t.memory[i] = v }

func (t *Task) Param(i int) (string, bool) { return t.ctx.Param(i) }

func (t *Task) TimeZone() *time.Location {
	if tz := t.ctx.TimeZone(); tz != nil {
		return tz
	}
	return time.UTC
}

func (t *Task) Logger() operation.Logger { return t.ctx.Logger() }

func (t *Task) FailReturnsNull() bool { return t.ctx.FailReturnsNull() }
