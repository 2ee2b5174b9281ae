// Package container implements the tuple/dict constructor, predicate, and
// keyed-access word family, plus APPLY. APPLY's container scope gets a
// guaranteed-restore discipline, via a deferred ExitApply in applyOp below, because an
// operation faulting mid-scope must not leave the task's apply scope (or
// its stack mark) stuck open.
package container

import (
	"github.com/xapiens/rpn/filter"
	"github.com/xapiens/rpn/operation"
	"github.com/xapiens/rpn/value"
)

// Register adds the container constructors, predicates, keyed accessors,
// and APPLY to reg.
func Register(reg *operation.Registry) error {
	if err := reg.Register(tupleCtorOp{}, nil); err != nil {
		return err
	}
	if err := reg.Register(dictCtorOp{}, nil); err != nil {
		return err
	}
	if err := reg.Register(predicateOp{"TUPLE?", isTuple}, filter.TopPresent); err != nil {
		return err
	}
	if err := reg.Register(predicateOp{"DICT?", isDict}, filter.TopPresent); err != nil {
		return err
	}
	if err := reg.Register(predicateOp{"CONTAINER?", isContainer}, filter.TopPresent); err != nil {
		return err
	}
	if err := reg.Register(getOp{}, nil); err != nil {
		return err
	}
	if err := reg.Register(setOp{}, nil); err != nil {
		return err
	}
	if err := reg.Register(lenOp{}, filter.TopContainer); err != nil {
		return err
	}
	if err := reg.Register(keysOp{}, nil); err != nil {
		return err
	}
	if err := reg.Register(applyOp{}, nil); err != nil {
		return err
	}
	return nil
}

type tupleCtorOp struct{}

func (tupleCtorOp) Name() string           { return "TUPLE" }
func (tupleCtorOp) Filter() *filter.Filter { return nil }
func (tupleCtorOp) SetUp(operation.SetUpContext, any) (any, error) {
	return nil, nil
}
func (tupleCtorOp) Exec(ctx operation.ExecContext, _ *operation.Reference) error {
	ctx.Stack().Push(value.NewTuple(nil))
	return nil
}

type dictCtorOp struct{}

func (dictCtorOp) Name() string           { return "DICT" }
func (dictCtorOp) Filter() *filter.Filter { return nil }
func (dictCtorOp) SetUp(operation.SetUpContext, any) (any, error) {
	return nil, nil
}
func (dictCtorOp) Exec(ctx operation.ExecContext, _ *operation.Reference) error {
	ctx.Stack().Push(value.NewDict(0))
	return nil
}

func isTuple(v value.Value) bool     { _, ok := v.(*value.Tuple); return ok }
func isDict(v value.Value) bool      { _, ok := v.(*value.Dict); return ok }
func isContainer(v value.Value) bool { return isTuple(v) || isDict(v) }

// predicateOp backs TUPLE?/DICT?/CONTAINER?: pop the (guaranteed-present,
// per filter.TopPresent) top value and push whether test accepts it.
// Resolves the open question of whether a missing top should cast-fail or
// report false: filter.TopPresent already excludes an absent/Null top from
// ever dispatching here, so Exec only has to classify a value that is
// present but may be any non-container type.
type predicateOp struct {
	name string
	test func(value.Value) bool
}

func (o predicateOp) Name() string           { return o.name }
func (predicateOp) Filter() *filter.Filter   { return nil }
func (predicateOp) SetUp(operation.SetUpContext, any) (any, error) {
	return nil, nil
}
func (o predicateOp) Exec(ctx operation.ExecContext, _ *operation.Reference) error {
	v, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	ctx.Stack().Push(value.Bool(o.test(v)))
	return nil
}

type getOp struct{}

func (getOp) Name() string           { return "GET" }
func (getOp) Filter() *filter.Filter { return nil }
func (getOp) SetUp(operation.SetUpContext, any) (any, error) {
	return nil, nil
}

// Exec pops ( container key -- value ): a Tuple is indexed by a Long,
// a Dict by a Text key. An out-of-range index or absent key yields Null
// rather than a fault, matching a Value observation's ordinary "absent"
// outcome.
func (getOp) Exec(ctx operation.ExecContext, ref *operation.Reference) error {
	key, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	c, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	switch cc := c.(type) {
	case *value.Tuple:
		idx, ok := key.(value.Long)
		if !ok {
			return &value.ConvertFailedError{From: key.Type(), To: "long", Detail: "GET tuple index"}
		}
		if idx < 0 || int(idx) >= cc.Len() {
			ctx.Stack().Push(value.Null{})
			return nil
		}
		ctx.Stack().Push(cc.At(int(idx)))
		return nil
	case *value.Dict:
		k, ok := key.(value.Text)
		if !ok {
			return &value.ConvertFailedError{From: key.Type(), To: "text", Detail: "GET dict key"}
		}
		v, present, _ := cc.Get(string(k))
		if !present {
			ctx.Stack().Push(value.Null{})
			return nil
		}
		ctx.Stack().Push(v)
		return nil
	default:
		return &value.ConvertFailedError{From: c.Type(), To: "container", Detail: "GET"}
	}
}

type setOp struct{}

func (setOp) Name() string           { return "SET" }
func (setOp) Filter() *filter.Filter { return nil }
func (setOp) SetUp(operation.SetUpContext, any) (any, error) {
	return nil, nil
}

// Exec pops ( container key value -- container' ). A Dict is mutated in
// place and pushed back; a Tuple is immutable, so SET instead pushes a
// copy with the element at key replaced (or appended, if key equals the
// tuple's current length).
func (setOp) Exec(ctx operation.ExecContext, ref *operation.Reference) error {
	val, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	key, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	c, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	switch cc := c.(type) {
	case *value.Tuple:
		idx, ok := key.(value.Long)
		if !ok {
			return &value.ConvertFailedError{From: key.Type(), To: "long", Detail: "SET tuple index"}
		}
		switch {
		case int(idx) == cc.Len():
			elems := append(append([]value.Value{}, cc.Elems...), val)
			ctx.Stack().Push(value.NewTuple(elems))
		case idx >= 0 && int(idx) < cc.Len():
			elems := append([]value.Value{}, cc.Elems...)
			elems[idx] = val
			ctx.Stack().Push(value.NewTuple(elems))
		default:
			return &value.ConvertFailedError{From: "long", To: "tuple index", Detail: "SET index out of range"}
		}
		return nil
	case *value.Dict:
		k, ok := key.(value.Text)
		if !ok {
			return &value.ConvertFailedError{From: key.Type(), To: "text", Detail: "SET dict key"}
		}
		cc.Set(string(k), val)
		ctx.Stack().Push(cc)
		return nil
	default:
		return &value.ConvertFailedError{From: c.Type(), To: "container", Detail: "SET"}
	}
}

type lenOp struct{}

func (lenOp) Name() string           { return "LEN" }
func (lenOp) Filter() *filter.Filter { return nil }
func (lenOp) SetUp(operation.SetUpContext, any) (any, error) {
	return nil, nil
}
func (lenOp) Exec(ctx operation.ExecContext, _ *operation.Reference) error {
	c, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	switch cc := c.(type) {
	case *value.Tuple:
		ctx.Stack().Push(value.Long(cc.Len()))
		return nil
	case *value.Dict:
		ctx.Stack().Push(value.Long(cc.Len()))
		return nil
	default:
		return &value.ConvertFailedError{From: c.Type(), To: "container", Detail: "LEN"}
	}
}

type keysOp struct{}

func (keysOp) Name() string           { return "KEYS" }
func (keysOp) Filter() *filter.Filter { return nil }
func (keysOp) SetUp(operation.SetUpContext, any) (any, error) {
	return nil, nil
}
func (keysOp) Exec(ctx operation.ExecContext, _ *operation.Reference) error {
	c, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	d, ok := c.(*value.Dict)
	if !ok {
		return &value.ConvertFailedError{From: c.Type(), To: "dict", Detail: "KEYS"}
	}
	keys := d.Keys()
	elems := make([]value.Value, len(keys))
	for i, k := range keys {
		elems[i] = value.Text(k)
	}
	ctx.Stack().Push(value.NewTuple(elems))
	return nil
}

// applyOp implements APPLY: its SetUp reaches back for the reference just
// built — the instruction immediately preceding it in source order — rather
// than consuming one forward like ops/logic's IF and BEGIN do. "1 apply"
// binds APPLY to the already-compiled CONST(1) reference, so a chain like
// "tuple 1 apply 2 apply 3 apply" builds three APPLY references each bound
// to the literal that precedes it, in the order they appear. At execution
// it pops a container, opens a scope around it, runs the inner reference,
// and restores the scope on every exit path (a deferred ExitApply) — the
// discipline this package's doc comment describes.
//
// A popped Tuple is rebuilt via a stack mark: its elements are pushed onto
// a fresh marked frame, the inner reference runs against that frame (so an
// ordinary value-producing instruction like a constant becomes an
// inserted element), and the frame collapses back into the (possibly
// longer) tuple pushed in its place. A popped Dict is simply reinstated on
// the stack for GET/SET's explicit key argument, since a Dict's mutation
// is keyed rather than positional and does not fit the same mark-rebuild
// trick.
type applyOp struct{}

func (applyOp) Name() string           { return "APPLY" }
func (applyOp) Filter() *filter.Filter { return nil }

func (applyOp) SetUp(ctx operation.SetUpContext, _ any) (any, error) {
	inner, err := ctx.PreviousReference()
	if err != nil {
		return nil, err
	}
	return inner, nil
}

func (applyOp) Exec(ctx operation.ExecContext, ref *operation.Reference) error {
	inner := ref.Operand.(*operation.Reference)

	c, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}

	switch cc := c.(type) {
	case *value.Tuple:
		if err := ctx.EnterApply(cc); err != nil {
			return err
		}
		defer ctx.ExitApply()

		ctx.Stack().Mark()
		for _, e := range cc.Elems {
			ctx.Stack().Push(e)
		}
		if err := inner.Execute(ctx); err != nil {
			ctx.Stack().Clear()
			_ = ctx.Stack().Unmark()
			return err
		}
		return ctx.Stack().MarkToTuple()

	case *value.Dict:
		if err := ctx.EnterApply(cc); err != nil {
			return err
		}
		defer ctx.ExitApply()

		ctx.Stack().Push(cc)
		return inner.Execute(ctx)

	default:
		return &value.ConvertFailedError{From: c.Type(), To: "container", Detail: "APPLY"}
	}
}
