// Package bigdecimal implements the arbitrary-precision decimal word
// family: the four arithmetic operators plus scale/precision/sign
// inspection words, grounded directly on shopspring/decimal's native
// QuoRem/RoundBank/Exponent/Shift/Pow methods rather than hand-rolled
// big.Int bookkeeping (see SPEC_FULL.md's domain-stack table).
package bigdecimal

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xapiens/rpn/filter"
	"github.com/xapiens/rpn/operation"
	"github.com/xapiens/rpn/value"
)

// Register adds every BigDecimal operation to reg.
func Register(reg *operation.Registry) error {
	for _, name := range []string{"+", "-", "*", "/", "mod", "rem"} {
		if err := reg.Register(binaryOp{name}, filter.EitherBigDecimal); err != nil {
			return err
		}
	}
	for _, op := range []operation.Operation{
		unaryOp{"strip", stripZeros},
		unaryOp{"sgn", sign},
		unaryOp{"unscaled", unscaled},
		unaryOp{"prec", prec},
	} {
		if err := reg.Register(op, filter.TopBigDecimal); err != nil {
			return err
		}
	}
	if err := reg.Register(scaleStoreOp{}, filter.New().Is(0, filter.TagNumber).Is(1, filter.TagBigDecimal).And().Build()); err != nil {
		return err
	}
	if err := reg.Register(powOp{}, filter.New().Is(0, filter.TagNumber).Is(1, filter.TagBigDecimal).And().Build()); err != nil {
		return err
	}
	if err := reg.Register(shiftOp{".left", -1}, filter.New().Is(0, filter.TagNumber).Is(1, filter.TagBigDecimal).And().Build()); err != nil {
		return err
	}
	if err := reg.Register(shiftOp{".right", 1}, filter.New().Is(0, filter.TagNumber).Is(1, filter.TagBigDecimal).And().Build()); err != nil {
		return err
	}
	return nil
}

type binaryOp struct{ op string }

func (o binaryOp) Name() string           { return o.op }
func (binaryOp) Filter() *filter.Filter   { return nil }
func (binaryOp) SetUp(operation.SetUpContext, any) (any, error) {
	return nil, nil
}
func (o binaryOp) Exec(ctx operation.ExecContext, ref *operation.Reference) error {
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

type unaryOp struct {
	name string
	fn   func(value.BigDecimal) value.Value
}

func (o unaryOp) Name() string           { return o.name }
func (unaryOp) Filter() *filter.Filter   { return nil }
func (unaryOp) SetUp(operation.SetUpContext, any) (any, error) {
	return nil, nil
}
func (o unaryOp) Exec(ctx operation.ExecContext, ref *operation.Reference) error {
	x, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	bd, ok := x.(value.BigDecimal)
	if !ok {
		return &value.ConvertFailedError{From: x.Type(), To: "bigdecimal", Detail: o.name}
	}
	ctx.Stack().Push(o.fn(bd))
	return nil
}

// stripZeros drops trailing fractional zeros (and the decimal point
// itself, if nothing remains after it), round-tripping through the
// library's own string form rather than poking at its internal
// coefficient/exponent representation.
func stripZeros(bd value.BigDecimal) value.Value {
	s := bd.D.String()
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return bd
	}
	return value.NewBigDecimal(d)
}

func sign(bd value.BigDecimal) value.Value { return value.Long(int64(bd.D.Sign())) }

func unscaled(bd value.BigDecimal) value.Value {
	return value.Long(bd.D.Coefficient().Int64())
}

func prec(bd value.BigDecimal) value.Value {
	abs := new(big.Int).Abs(bd.D.Coefficient())
	return value.Long(int64(len(abs.String())))
}

// scaleStoreOp implements "scale=": pop a Long scale and a BigDecimal,
// push the BigDecimal rescaled (rounded half-even) to that many fractional
// digits.
type scaleStoreOp struct{}

func (scaleStoreOp) Name() string           { return "scale=" }
func (scaleStoreOp) Filter() *filter.Filter { return nil }
func (scaleStoreOp) SetUp(operation.SetUpContext, any) (any, error) {
	return nil, nil
}
func (scaleStoreOp) Exec(ctx operation.ExecContext, ref *operation.Reference) error {
	sv, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	bdv, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	scale, ok := sv.(value.Long)
	if !ok {
		return &value.ConvertFailedError{From: sv.Type(), To: "long", Detail: "scale="}
	}
	bd, ok := bdv.(value.BigDecimal)
	if !ok {
		return &value.ConvertFailedError{From: bdv.Type(), To: "bigdecimal", Detail: "scale="}
	}
	ctx.Stack().Push(bd.WithScale(int32(scale)))
	return nil
}

// powOp implements "pow": pop a Long exponent and a BigDecimal base, push
// the base raised to that (non-negative) integer power.
type powOp struct{}

func (powOp) Name() string           { return "pow" }
func (powOp) Filter() *filter.Filter { return nil }
func (powOp) SetUp(operation.SetUpContext, any) (any, error) {
	return nil, nil
}
func (powOp) Exec(ctx operation.ExecContext, ref *operation.Reference) error {
	ev, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	bdv, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	exp, ok := ev.(value.Long)
	if !ok {
		return &value.ConvertFailedError{From: ev.Type(), To: "long", Detail: "pow"}
	}
	bd, ok := bdv.(value.BigDecimal)
	if !ok {
		return &value.ConvertFailedError{From: bdv.Type(), To: "bigdecimal", Detail: "pow"}
	}
	ctx.Stack().Push(value.NewBigDecimal(bd.D.Pow(decimal.NewFromInt(int64(exp)))))
	return nil
}

// shiftOp implements ".left"/".right": pop a Long count and a BigDecimal,
// push the BigDecimal with its decimal point shifted by that many places.
type shiftOp struct {
	name string
	sign int32
}

func (o shiftOp) Name() string           { return o.name }
func (shiftOp) Filter() *filter.Filter   { return nil }
func (shiftOp) SetUp(operation.SetUpContext, any) (any, error) {
	return nil, nil
}
func (o shiftOp) Exec(ctx operation.ExecContext, ref *operation.Reference) error {
	nv, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	bdv, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	n, ok := nv.(value.Long)
	if !ok {
		return &value.ConvertFailedError{From: nv.Type(), To: "long", Detail: o.name}
	}
	bd, ok := bdv.(value.BigDecimal)
	if !ok {
		return &value.ConvertFailedError{From: bdv.Type(), To: "bigdecimal", Detail: o.name}
	}
	ctx.Stack().Push(value.NewBigDecimal(bd.D.Shift(o.sign * int32(n))))
	return nil
}
