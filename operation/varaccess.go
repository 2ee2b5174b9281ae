package operation

import (
	"fmt"

	"github.com/xapiens/rpn/filter"
	"github.com/xapiens/rpn/token"
	"github.com/xapiens/rpn/value"
)

// VarAccessError reports a variable-access token whose point has no value
// at run time: a required ('!') access to any bank, or a plain read of a
// memory or param point that holds nothing.
type VarAccessError struct {
	Pos token.Pos
	V   token.Var
}

func (e *VarAccessError) Error() string {
	return fmt.Sprintf("%s: variable access %s: point has no value", e.Pos, tokenVarString(e.V))
}

func tokenVarString(v token.Var) string {
	return token.Token{Kind: token.VariableAction, Var: v}.String()
}

// varAccessOperation is the compiler-synthesized operation behind every
// $N / #N / @N reference. The compiler builds one instance per
// variable-access token (see compiler.buildReference); it needs no Filter since the
// compiler already selected it unconditionally from the token's shape.
type varAccessOperation struct{ v token.Var }

// VarAccessOp returns the operation for a decoded variable-access token.
func VarAccessOp(v token.Var) Operation { return varAccessOperation{v: v} }

func (o varAccessOperation) Name() string           { return tokenVarString(o.v) }
func (o varAccessOperation) Filter() *filter.Filter { return nil }
func (o varAccessOperation) SetUp(SetUpContext, any) (any, error) {
	return nil, nil
}

func (o varAccessOperation) Exec(ctx ExecContext, ref *Reference) error {
	v := o.v
	switch v.Action {
	// A Dup prefix is only meaningful paired with ActStore (compiler.
	// validateVar rejects every other combination at compile time), so
	// this case never needs to consult v.Dup.
	case token.ActNone, token.ActValue:
		val, ok := o.fetch(ctx)
		if !ok {
			if v.Kind == token.Input {
				val, ok = value.Null{}, true
			} else {
				return &VarAccessError{Pos: ref.Pos, V: v}
			}
		}
		ctx.Stack().Push(val)
		return nil

	case token.ActRequired:
		val, ok := o.fetch(ctx)
		if !ok {
			return &VarAccessError{Pos: ref.Pos, V: v}
		}
		ctx.Stack().Push(val)
		return nil

	case token.ActPresent:
		_, ok := o.fetch(ctx)
		ctx.Stack().Push(value.Bool(ok))
		return nil

	case token.ActStamp:
		iv, ok := o.fetchInput(ctx)
		if !ok || !iv.HasStamp {
			ctx.Stack().Push(value.Null{})
			return nil
		}
		ctx.Stack().Push(value.Stamp{T: iv.Stamp})
		return nil

	case token.ActState:
		iv, ok := o.fetchInput(ctx)
		if !ok || !iv.HasState {
			ctx.Stack().Push(value.Null{})
			return nil
		}
		ctx.Stack().Push(iv.State)
		return nil

	case token.ActPoint:
		ctx.Stack().Push(value.Text(tokenVarString(v)))
		return nil

	case token.ActStore:
		var val value.Value
		if v.Dup {
			peeked, err := ctx.Stack().Peek(0)
			if err != nil {
				return err
			}
			val = peeked
		} else {
			popped, err := ctx.Stack().Pop()
			if err != nil {
				return err
			}
			val = popped
		}
		switch v.Kind {
		case token.Memory:
			ctx.SetMemory(v.Index, val)
			return nil
		case token.Input:
			ctx.SetInput(v.Index, val)
			return nil
		default:
			// compiler.validateVar rejects ActStore into a Param bank at
			// compile time; a reference reaching Exec with this shape
			// means that check was bypassed.
			panic(fmt.Sprintf("%s: cannot store into a param point", ref.Pos))
		}

	default:
		return fmt.Errorf("%s: unhandled variable action", ref.Pos)
	}
}

func (o varAccessOperation) fetch(ctx ExecContext) (value.Value, bool) {
	switch o.v.Kind {
	case token.Memory:
		return ctx.Memory(o.v.Index)
	case token.Param:
		s, ok := ctx.Param(o.v.Index)
		if !ok {
			return nil, false
		}
		return value.Text(s), true
	default:
		iv, ok := o.fetchInput(ctx)
		if !ok {
			return nil, false
		}
		return iv.Value, true
	}
}

func (o varAccessOperation) fetchInput(ctx ExecContext) (InputValue, bool) {
	if o.v.Action == token.ActNone || o.v.Action == token.ActValue {
		return ctx.InputNormalized(o.v.Index)
	}
	return ctx.Input(o.v.Index)
}
