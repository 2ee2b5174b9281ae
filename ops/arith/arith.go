// Package arith implements the integer and floating-point arithmetic and
// comparison word family over value.Long/value.Double, widening to
// value.BigDecimal where operands require it. Each operator is an
// overload-chain entry in the operation.Registry, dispatching on operand
// shape via filter.Filter rather than a bytecode switch on a fixed
// operand pair.
package arith

import (
	"github.com/xapiens/rpn/filter"
	"github.com/xapiens/rpn/operation"
	"github.com/xapiens/rpn/value"
)

// Register adds every arithmetic and comparison operator to reg. "+" is
// registered twice — once for value.Text concatenation, once for numeric
// addition — the clearest demonstration of the overload-chain mechanism:
// the same name resolves to different code depending on the live stack's
// shape at execution time.
func Register(reg *operation.Registry) error {
	binaries := []string{"+", "-", "*", "/", "%", "mod"}
	for _, name := range binaries {
		if err := reg.Register(binaryNumberOp{name}, filter.BothNumber); err != nil {
			return err
		}
	}
	if err := reg.Register(concatOp{}, filter.BothString); err != nil {
		return err
	}

	for _, name := range []string{"=", "<>"} {
		if err := reg.Register(equalityOp{name}, filter.BothPresent); err != nil {
			return err
		}
	}
	for _, name := range []string{"<", "<=", ">", ">="} {
		if err := reg.Register(orderOp{name}, filter.BothNumber); err != nil {
			return err
		}
	}

	if err := reg.Register(negOp{}, filter.TopNumber); err != nil {
		return err
	}
	if err := reg.Register(absOp{}, filter.TopNumber); err != nil {
		return err
	}
	return nil
}

type binaryNumberOp struct{ op string }

func (o binaryNumberOp) Name() string           { return o.op }
func (binaryNumberOp) Filter() *filter.Filter   { return nil }
func (binaryNumberOp) SetUp(operation.SetUpContext, any) (any, error) {
	return nil, nil
}
func (o binaryNumberOp) Exec(ctx operation.ExecContext, ref *operation.Reference) error {
	y, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	x, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	result, err := value.Binary(o.op, x, y)
	if err != nil {
		if ctx.FailReturnsNull() {
			ctx.Stack().Push(value.Null{})
			return nil
		}
		return err
	}
	ctx.Stack().Push(result)
	return nil
}

type concatOp struct{}

func (concatOp) Name() string           { return "+" }
func (concatOp) Filter() *filter.Filter { return nil }
func (concatOp) SetUp(operation.SetUpContext, any) (any, error) {
	return nil, nil
}
func (concatOp) Exec(ctx operation.ExecContext, ref *operation.Reference) error {
	y, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	x, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	ctx.Stack().Push(x.(value.Text) + y.(value.Text))
	return nil
}

type equalityOp struct{ op string }

func (o equalityOp) Name() string           { return o.op }
func (equalityOp) Filter() *filter.Filter   { return nil }
func (equalityOp) SetUp(operation.SetUpContext, any) (any, error) {
	return nil, nil
}
func (o equalityOp) Exec(ctx operation.ExecContext, ref *operation.Reference) error {
	y, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	x, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	result, err := value.Compare(o.op, x, y)
	if err != nil {
		return err
	}
	ctx.Stack().Push(value.Bool(result))
	return nil
}

type orderOp struct{ op string }

func (o orderOp) Name() string           { return o.op }
func (orderOp) Filter() *filter.Filter   { return nil }
func (orderOp) SetUp(operation.SetUpContext, any) (any, error) {
	return nil, nil
}
func (o orderOp) Exec(ctx operation.ExecContext, ref *operation.Reference) error {
	y, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	x, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	result, err := value.Compare(o.op, x, y)
	if err != nil {
		return err
	}
	ctx.Stack().Push(value.Bool(result))
	return nil
}

type negOp struct{}

func (negOp) Name() string           { return "neg" }
func (negOp) Filter() *filter.Filter { return nil }
func (negOp) SetUp(operation.SetUpContext, any) (any, error) {
	return nil, nil
}
func (negOp) Exec(ctx operation.ExecContext, ref *operation.Reference) error {
	x, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	switch v := x.(type) {
	case value.Long:
		ctx.Stack().Push(-v)
	case value.Double:
		ctx.Stack().Push(-v)
	case value.BigDecimal:
		ctx.Stack().Push(value.NewBigDecimal(v.D.Neg()))
	default:
		return &value.ConvertFailedError{From: x.Type(), To: "number", Detail: "neg"}
	}
	return nil
}

type absOp struct{}

func (absOp) Name() string           { return "abs" }
func (absOp) Filter() *filter.Filter { return nil }
func (absOp) SetUp(operation.SetUpContext, any) (any, error) {
	return nil, nil
}
func (absOp) Exec(ctx operation.ExecContext, ref *operation.Reference) error {
	x, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	switch v := x.(type) {
	case value.Long:
		if v < 0 {
			v = -v
		}
		ctx.Stack().Push(v)
	case value.Double:
		if v < 0 {
			v = -v
		}
		ctx.Stack().Push(v)
	case value.BigDecimal:
		ctx.Stack().Push(value.NewBigDecimal(v.D.Abs()))
	default:
		return &value.ConvertFailedError{From: x.Type(), To: "number", Detail: "abs"}
	}
	return nil
}
