package operation

import (
	"github.com/xapiens/rpn/filter"
	"github.com/xapiens/rpn/value"
)

// constantOperation pushes its Reference.Operand (a value.Value, set by the
// compiler from a NumericConstant or TextConstant token) onto the stack.
type constantOperation struct{}

func (constantOperation) Name() string           { return "CONSTANT_VALUE" }
func (constantOperation) Filter() *filter.Filter { return nil }
func (constantOperation) SetUp(SetUpContext, any) (any, error) {
	return nil, nil
}
func (constantOperation) Exec(ctx ExecContext, ref *Reference) error {
	ctx.Stack().Push(ref.Operand.(value.Value))
	return nil
}

// ConstantOp is the shared singleton behind every literal token.
var ConstantOp = constantOperation{}
