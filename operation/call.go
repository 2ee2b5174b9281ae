package operation

import "github.com/xapiens/rpn/filter"

// callOperation is the compiler-synthesized operation behind every
// reference to a user-defined word: its Reference.Operand is the callee
// *compiler.Program (stored as any — see ExecContext.CallProgram).
type callOperation struct{}

func (callOperation) Name() string           { return "CALL" }
func (callOperation) Filter() *filter.Filter { return nil }
func (callOperation) SetUp(SetUpContext, any) (any, error) {
	return nil, nil
}
func (callOperation) Exec(ctx ExecContext, ref *Reference) error {
	return ctx.CallProgram(ref.Operand)
}

// CallOp is the shared singleton the compiler attaches to every reference
// to a user-defined word.
var CallOp = callOperation{}
