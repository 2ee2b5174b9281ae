// Package logic implements the boolean word family (AND OR NOT XOR) and the
// two structural control words, IF...ELSE...THEN and BEGIN...WHILE...REPEAT.
// There is no bytecode array to patch here — per compiler.Program's design
// (see compiler/program.go), a structural word's SetUp consumes the
// References making up its branches directly from the compiler
// (operation.SetUpContext.NextReference), and stores them as its
// Reference.Operand; Exec then walks whichever branch the stack selects.
// ELSE/THEN/WHILE/REPEAT are themselves registered, ordinary-looking words
// so the compiler's normal dispatch resolves them to something — but they
// are sentinels: IF/BEGIN's SetUp consumes them before they ever reach the
// emitted Refs list, so their own Exec only runs for a misplaced occurrence.
package logic

import (
	"fmt"

	"github.com/xapiens/rpn/filter"
	"github.com/xapiens/rpn/operation"
	"github.com/xapiens/rpn/token"
	"github.com/xapiens/rpn/value"
)

// Register adds the boolean words and the two structural control words to
// reg.
func Register(reg *operation.Registry) error {
	if err := reg.Register(andOp{}, boolBoth); err != nil {
		return err
	}
	if err := reg.Register(orOp{}, boolBoth); err != nil {
		return err
	}
	if err := reg.Register(xorOp{}, boolBoth); err != nil {
		return err
	}
	if err := reg.Register(notOp{}, boolTop); err != nil {
		return err
	}
	if err := reg.Register(ifOp{}, nil); err != nil {
		return err
	}
	if err := reg.Register(elseOp{}, nil); err != nil {
		return err
	}
	if err := reg.Register(thenOp{}, nil); err != nil {
		return err
	}
	if err := reg.Register(beginOp{}, nil); err != nil {
		return err
	}
	if err := reg.Register(whileOp{}, nil); err != nil {
		return err
	}
	if err := reg.Register(repeatOp{}, nil); err != nil {
		return err
	}
	return nil
}

var (
	boolBoth = filter.New().Is(0, filter.TagBool).Is(1, filter.TagBool).And().Build()
	boolTop  = filter.New().Is(0, filter.TagBool).Build()
)

// MisplacedSentinelError reports an ELSE, THEN, WHILE, or REPEAT reached by
// Exec directly: its SetUp-time consumer (IF or BEGIN) never captured it,
// meaning the source had no matching opener.
type MisplacedSentinelError struct {
	Pos  token.Pos
	Word string
}

func (e *MisplacedSentinelError) Error() string {
	return fmt.Sprintf("%s: misplaced %s with no matching opener", e.Pos, e.Word)
}

// execRefs runs refs to completion on ctx, stopping at the first error.
func execRefs(ctx operation.ExecContext, refs []*operation.Reference) error {
	for _, ref := range refs {
		if err := ref.Execute(ctx); err != nil {
			return err
		}
	}
	return nil
}

// sentinelName reports the registered name of ref's operation if it is one
// of the four structural sentinels below, so collectUntil can recognize a
// stop word without importing this package's unexported types anywhere
// else.
func sentinelName(ref *operation.Reference) (string, bool) {
	if len(ref.Chain) != 1 {
		return "", false
	}
	switch ref.Chain[0].Op.(type) {
	case elseOp, thenOp, whileOp, repeatOp:
		return ref.Chain[0].Op.Name(), true
	default:
		return "", false
	}
}

// collectUntil reads references from ctx until one of stops is found (that
// reference is consumed but not appended), returning the references
// collected and which stop word ended the run. It brackets its own
// accumulation with BeginSequence/EndSequence so that an APPLY inside this
// branch reaches back into the branch itself, not whatever the enclosing
// sequence was building before IF or BEGIN opened.
func collectUntil(ctx operation.SetUpContext, stops ...string) ([]*operation.Reference, string, error) {
	ctx.BeginSequence()
	defer ctx.EndSequence()
	var refs []*operation.Reference
	for {
		ref, err := ctx.NextReference()
		if err != nil {
			return nil, "", err
		}
		if name, ok := sentinelName(ref); ok {
			for _, s := range stops {
				if s == name {
					return refs, name, nil
				}
			}
		}
		refs = append(refs, ref)
	}
}

type andOp struct{}

func (andOp) Name() string           { return "AND" }
func (andOp) Filter() *filter.Filter { return nil }
func (andOp) SetUp(operation.SetUpContext, any) (any, error) {
	return nil, nil
}
func (andOp) Exec(ctx operation.ExecContext, ref *operation.Reference) error {
	y, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	x, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	ctx.Stack().Push(x.(value.Bool) && y.(value.Bool))
	return nil
}

type orOp struct{}

func (orOp) Name() string           { return "OR" }
func (orOp) Filter() *filter.Filter { return nil }
func (orOp) SetUp(operation.SetUpContext, any) (any, error) {
	return nil, nil
}
func (orOp) Exec(ctx operation.ExecContext, ref *operation.Reference) error {
	y, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	x, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	ctx.Stack().Push(x.(value.Bool) || y.(value.Bool))
	return nil
}

type xorOp struct{}

func (xorOp) Name() string           { return "XOR" }
func (xorOp) Filter() *filter.Filter { return nil }
func (xorOp) SetUp(operation.SetUpContext, any) (any, error) {
	return nil, nil
}
func (xorOp) Exec(ctx operation.ExecContext, ref *operation.Reference) error {
	y, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	x, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	ctx.Stack().Push(x.(value.Bool) != y.(value.Bool))
	return nil
}

type notOp struct{}

func (notOp) Name() string           { return "NOT" }
func (notOp) Filter() *filter.Filter { return nil }
func (notOp) SetUp(operation.SetUpContext, any) (any, error) {
	return nil, nil
}
func (notOp) Exec(ctx operation.ExecContext, ref *operation.Reference) error {
	x, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	ctx.Stack().Push(!x.(value.Bool))
	return nil
}

// ifBranches is the compile-time structure an IF reference carries as its
// Operand: the reference lists for the true and false branches, already
// split at ELSE (Else is nil when the source had no ELSE).
type ifBranches struct {
	Then, Else []*operation.Reference
}

type ifOp struct{}

func (ifOp) Name() string           { return "IF" }
func (ifOp) Filter() *filter.Filter { return nil }

func (ifOp) SetUp(ctx operation.SetUpContext, _ any) (any, error) {
	thenRefs, stop, err := collectUntil(ctx, "ELSE", "THEN")
	if err != nil {
		return nil, err
	}
	var elseRefs []*operation.Reference
	if stop == "ELSE" {
		elseRefs, _, err = collectUntil(ctx, "THEN")
		if err != nil {
			return nil, err
		}
	}
	return &ifBranches{Then: thenRefs, Else: elseRefs}, nil
}

func (ifOp) Exec(ctx operation.ExecContext, ref *operation.Reference) error {
	branches := ref.Operand.(*ifBranches)
	cond, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	b, ok := cond.(value.Bool)
	if !ok {
		return &value.ConvertFailedError{From: cond.Type(), To: "bool", Detail: "IF"}
	}
	if bool(b) {
		return execRefs(ctx, branches.Then)
	}
	return execRefs(ctx, branches.Else)
}

type elseOp struct{}

func (elseOp) Name() string           { return "ELSE" }
func (elseOp) Filter() *filter.Filter { return nil }
func (elseOp) SetUp(operation.SetUpContext, any) (any, error) {
	return nil, nil
}
func (elseOp) Exec(_ operation.ExecContext, ref *operation.Reference) error {
	return &MisplacedSentinelError{Pos: ref.Pos, Word: "ELSE"}
}

type thenOp struct{}

func (thenOp) Name() string           { return "THEN" }
func (thenOp) Filter() *filter.Filter { return nil }
func (thenOp) SetUp(operation.SetUpContext, any) (any, error) {
	return nil, nil
}
func (thenOp) Exec(_ operation.ExecContext, ref *operation.Reference) error {
	return &MisplacedSentinelError{Pos: ref.Pos, Word: "THEN"}
}

// loopBranches is the compile-time structure a BEGIN reference carries: Pre
// always runs first, then (if HasWhile) the popped top of stack decides
// whether to run Post and loop back to Pre, or stop. A BEGIN...REPEAT with
// no WHILE has HasWhile false and loops Pre forever — same as Forth.
type loopBranches struct {
	Pre, Post []*operation.Reference
	HasWhile  bool
}

type beginOp struct{}

func (beginOp) Name() string           { return "BEGIN" }
func (beginOp) Filter() *filter.Filter { return nil }

func (beginOp) SetUp(ctx operation.SetUpContext, _ any) (any, error) {
	pre, stop, err := collectUntil(ctx, "WHILE", "REPEAT")
	if err != nil {
		return nil, err
	}
	if stop == "REPEAT" {
		return &loopBranches{Pre: pre}, nil
	}
	post, _, err := collectUntil(ctx, "REPEAT")
	if err != nil {
		return nil, err
	}
	return &loopBranches{Pre: pre, Post: post, HasWhile: true}, nil
}

func (beginOp) Exec(ctx operation.ExecContext, ref *operation.Reference) error {
	lb := ref.Operand.(*loopBranches)
	for {
		if err := execRefs(ctx, lb.Pre); err != nil {
			return err
		}
		if lb.HasWhile {
			cond, err := ctx.Stack().Pop()
			if err != nil {
				return err
			}
			b, ok := cond.(value.Bool)
			if !ok {
				return &value.ConvertFailedError{From: cond.Type(), To: "bool", Detail: "WHILE"}
			}
			if !bool(b) {
				return nil
			}
			if err := execRefs(ctx, lb.Post); err != nil {
				return err
			}
		}
	}
}

type whileOp struct{}

func (whileOp) Name() string           { return "WHILE" }
func (whileOp) Filter() *filter.Filter { return nil }
func (whileOp) SetUp(operation.SetUpContext, any) (any, error) {
	return nil, nil
}
func (whileOp) Exec(_ operation.ExecContext, ref *operation.Reference) error {
	return &MisplacedSentinelError{Pos: ref.Pos, Word: "WHILE"}
}

type repeatOp struct{}

func (repeatOp) Name() string           { return "REPEAT" }
func (repeatOp) Filter() *filter.Filter { return nil }
func (repeatOp) SetUp(operation.SetUpContext, any) (any, error) {
	return nil, nil
}
func (repeatOp) Exec(_ operation.ExecContext, ref *operation.Reference) error {
	return &MisplacedSentinelError{Pos: ref.Pos, Word: "REPEAT"}
}
