// Package stackops implements the stack-shuffle word family: DUP, DROP,
// SWAP, OVER, ROT, PICK, REVERSE, MARK/UNMARK/MARK_TO_TUPLE/TUPLE_TO_STACK,
// and DEPTH. Each word is a Registry entry rather than a case in a
// bytecode interpreter switch, covering the full Forth shuffle-word
// vocabulary instead of a fixed opcode set.
package stackops

import (
	"github.com/xapiens/rpn/filter"
	"github.com/xapiens/rpn/operation"
	"github.com/xapiens/rpn/value"
)

// Register adds every stack-shuffle operation to reg.
func Register(reg *operation.Registry) error {
	for _, op := range []operation.Operation{
		simpleOp{"DUP", dup},
		simpleOp{"DUP2", dup2},
		simpleOp{"DROP", drop},
		simpleOp{"SWAP", swap},
		simpleOp{"OVER", over},
		simpleOp{"ROT", rot},
		simpleOp{"PICK", pick},
		simpleOp{"REVERSE", reverse},
		simpleOp{"MARK", mark},
		simpleOp{"UNMARK", unmark},
		simpleOp{"MARK_TO_TUPLE", markToTuple},
		simpleOp{"TUPLE_TO_STACK", tupleToStack},
		simpleOp{"DEPTH", depth},
	} {
		if err := reg.Register(op, op.Filter()); err != nil {
			return err
		}
	}
	return nil
}

type simpleOp struct {
	name string
	exec func(ctx operation.ExecContext) error
}

func (o simpleOp) Name() string           { return o.name }
func (simpleOp) Filter() *filter.Filter   { return nil }
func (simpleOp) SetUp(operation.SetUpContext, any) (any, error) {
	return nil, nil
}
func (o simpleOp) Exec(ctx operation.ExecContext, ref *operation.Reference) error {
	return o.exec(ctx)
}

func dup(ctx operation.ExecContext) error {
	v, err := ctx.Stack().Peek(0)
	if err != nil {
		return err
	}
	ctx.Stack().Push(v)
	return nil
}

func dup2(ctx operation.ExecContext) error {
	b, err := ctx.Stack().Peek(1)
	if err != nil {
		return err
	}
	a, err := ctx.Stack().Peek(0)
	if err != nil {
		return err
	}
	ctx.Stack().Push(b)
	ctx.Stack().Push(a)
	return nil
}

func drop(ctx operation.ExecContext) error {
	_, err := ctx.Stack().Pop()
	return err
}

func swap(ctx operation.ExecContext) error {
	a, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	b, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	ctx.Stack().Push(a)
	ctx.Stack().Push(b)
	return nil
}

func over(ctx operation.ExecContext) error {
	v, err := ctx.Stack().Peek(1)
	if err != nil {
		return err
	}
	ctx.Stack().Push(v)
	return nil
}

func rot(ctx operation.ExecContext) error {
	c, err := ctx.Stack().Remove(2)
	if err != nil {
		return err
	}
	ctx.Stack().Push(c)
	return nil
}

func pick(ctx operation.ExecContext) error {
	nv, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	n, ok := nv.(value.Long)
	if !ok {
		return &value.ConvertFailedError{From: nv.Type(), To: "long"}
	}
	v, err := ctx.Stack().Peek(int(n))
	if err != nil {
		return err
	}
	ctx.Stack().Push(v)
	return nil
}

func reverse(ctx operation.ExecContext) error {
	ctx.Stack().Reverse()
	return nil
}

func mark(ctx operation.ExecContext) error {
	ctx.Stack().Mark()
	return nil
}

func unmark(ctx operation.ExecContext) error {
	return ctx.Stack().Unmark()
}

func markToTuple(ctx operation.ExecContext) error {
	return ctx.Stack().MarkToTuple()
}

func tupleToStack(ctx operation.ExecContext) error {
	v, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	tup, ok := v.(*value.Tuple)
	if !ok {
		return &value.ConvertFailedError{From: v.Type(), To: "tuple"}
	}
	for i := 0; i < tup.Len(); i++ {
		ctx.Stack().Push(tup.At(i))
	}
	return nil
}

func depth(ctx operation.ExecContext) error {
	ctx.Stack().Push(value.Long(ctx.Stack().Size()))
	return nil
}
