// Package operation defines the Operation contract, the OperationReference
// produced by the compiler, and the name-to-overload-chain registry shared
// by every built-in operation module.
//
// This package depends only on filter, stack, value, and token so that both
// package compiler (which builds References) and package task (which runs
// them) can depend on it without a cycle: the two narrow interfaces
// SetUpContext and ExecContext describe exactly the slice of the compiler
// and the task that an Operation's SetUp/Exec methods are allowed to touch.
package operation

import (
	"fmt"
	"strings"
	"time"

	"github.com/dolthub/swiss"
	"github.com/xapiens/rpn/filter"
	"github.com/xapiens/rpn/stack"
	"github.com/xapiens/rpn/token"
	"github.com/xapiens/rpn/value"
)

// SetUpContext is the slice of the compiler visible to Operation.SetUp: the
// ability to look ahead at, and consume, the next reference, or to reach
// back for the one just built. Block and apply operations use this to
// pre-resolve structural pairings at compile time; SetUp is the only place
// allowed to call these.
type SetUpContext interface {
	PeekReference() (*Reference, error)
	NextReference() (*Reference, error)

	// PreviousReference removes and returns the most recently completed
	// reference in the sequence currently being built, for an operation
	// like apply that binds to the instruction immediately preceding it
	// rather than the one following. It fails if nothing precedes it in
	// the current sequence.
	PreviousReference() (*Reference, error)

	// BeginSequence and EndSequence bracket a nested reference sequence
	// (a block operation's own branch, itself collected via
	// NextReference) so that a PreviousReference call made while
	// building it sees only references appended since BeginSequence,
	// not the enclosing sequence's.
	BeginSequence()
	EndSequence()
}

// InputValue is the host's view of one input point's point-store contents:
// the current value, and its timestamp/state when the host tracks them.
type InputValue struct {
	Value    value.Value
	Stamp    time.Time
	HasStamp bool
	State    value.State
	HasState bool
}

// Logger is the narrow structured-logging surface an Operation's Exec may
// write through (warnings from fail-returns-null, recoverable runtime
// faults), independent of whatever logging library the host wires in.
type Logger interface {
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// ExecContext is the slice of the task visible to Operation.Exec: the
// operand stack, the container-apply scope (filter.ApplyScope, so that
// filter predicates like IS_APPLYING and the Exec methods of apply/end-apply
// share one notion of "what container is currently open"), point storage,
// and host facilities (time zone, logging, policy flags, and calling a
// compiled user word).
type ExecContext interface {
	Stack() *stack.Stack
	filter.ApplyScope

	// EnterApply pushes container onto the apply scope; ExitApply restores
	// the previous one. Operations must pair these so that a fault inside
	// the scope still restores it.
	EnterApply(container value.Value) error
	ExitApply()

	// ApplyContainer returns the container most recently passed to
	// EnterApply (ok is false outside any apply scope), for keyed
	// container operations (GET/SET on a Dict) that need the live
	// container rather than just its kind.
	ApplyContainer() (value.Value, bool)

	// Input/InputNormalized/SetInput read and write the task's numbered
	// input points; InputNormalized applies the host's engineering-unit
	// normalization where Input returns the raw stored value.
	Input(i int) (InputValue, bool)
	InputNormalized(i int) (InputValue, bool)
	SetInput(i int, v value.Value)

	// Memory reads and writes the task's numbered scratch memory slots.
	Memory(i int) (value.Value, bool)
	SetMemory(i int, v value.Value)

	// Param returns the task's i'th string parameter.
	Param(i int) (string, bool)

	TimeZone() *time.Location
	Logger() Logger

	// FailReturnsNull reports the task's policy for a failed arithmetic or
	// conversion operation: push Null instead of propagating the fault.
	FailReturnsNull() bool

	// CallProgram runs a compiled user word (program is always a
	// *compiler.Program, carried as any so this package need not import
	// compiler) to completion on this same task, then returns.
	CallProgram(program any) error
}

// Operation is a single named, dispatchable unit of execution. A name may
// be registered more than once with distinct Filters; the Registry groups
// same-named registrations into a Chain tried in registration order.
type Operation interface {
	// Name is the upper-cased name this operation is registered under.
	Name() string

	// Filter is the pre-dispatch guard consulted against the live stack at
	// execution time, or nil to always match.
	Filter() *filter.Filter

	// SetUp is called once, during compilation, immediately after a
	// Reference for this operation is allocated. Most operations have
	// nothing to do here and return (operand, nil) unchanged; operations
	// that need to pre-resolve structure (apply, if/else/then,
	// begin/while/repeat) consume further references via ctx and return
	// whatever compile-time structure they built as the new operand — e.g.
	// an *ops/logic.ifBranches holding the then/else Reference slices — so
	// Exec can find it again via Reference.Operand.
	SetUp(ctx SetUpContext, operand any) (newOperand any, err error)

	// Exec performs the operation's stack effect.
	Exec(ctx ExecContext, ref *Reference) error
}

// Registration pairs an Operation with the Filter that, at this position in
// the chain, guards it (nil if the Operation itself declares no filter).
type Registration struct {
	Op     Operation
	Filter *filter.Filter
}

// Reference is what the compiler emits per recognized word: the resolved
// overload chain, a compile-time operand (a constant, a variable index, a
// callee program, or a structural operation's own SetUp-built state), and
// the source position of the triggering token.
type Reference struct {
	Chain   []*Registration
	Operand any
	Pos     token.Pos
}

// Execute tries each registration in the chain in order, running the first
// whose Filter matches the live stack (a nil Filter always matches). It
// fails with a Limits-flavored error if no registration matches — the same
// shape as an empty chain, which should never occur for a well-formed
// Reference.
func (r *Reference) Execute(ctx ExecContext) error {
	for _, reg := range r.Chain {
		if reg.Filter == nil || reg.Filter.Eval(ctx.Stack(), ctx) {
			return reg.Op.Exec(ctx, r)
		}
	}
	return &NoOverloadError{Pos: r.Pos}
}

// NoOverloadError reports that no registration in a reference's chain
// matched the stack shape at execution time.
type NoOverloadError struct{ Pos token.Pos }

func (e *NoOverloadError) Error() string {
	return fmt.Sprintf("%s: no matching overload for operand stack shape", e.Pos)
}

// OverloadError reports an attempt to register the same name with the same
// filter (or no filter for both) twice.
type OverloadError struct{ Name string }

func (e *OverloadError) Error() string {
	return fmt.Sprintf("operation %q already registered with an identical filter", e.Name)
}

// Registry is a name -> overload chain table, built once at engine setup
// and immutable thereafter. It is backed by a swiss-table hash map for
// O(1) average lookup, the same way value.Dict wraps a
// *swiss.Map[string,Value]; since swiss.Map has no defined iteration
// order, Registry pairs it with an explicit names slice for Names(),
// appended to on each newly-seen name — Dict's order slice does the
// same for its keys.
type Registry struct {
	byName *swiss.Map[string, []*Registration]
	names  []string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: swiss.NewMap[string, []*Registration](8)}
}

// Register adds op under its own Name(), guarded by f (nil for
// unconditional). It returns an OverloadError if an identical
// (name, filter) pair was already registered — filters are compared by
// identity, since the standard filters of package filter are shared
// singletons and two operations meaning "the same predicate" always use the
// same *filter.Filter value.
func (r *Registry) Register(op Operation, f *filter.Filter) error {
	name := strings.ToUpper(op.Name())
	chain, existed := r.byName.Get(name)
	for _, reg := range chain {
		if reg.Filter == f {
			return &OverloadError{Name: name}
		}
	}
	if !existed {
		r.names = append(r.names, name)
	}
	r.byName.Put(name, append(chain, &Registration{Op: op, Filter: f}))
	return nil
}

// Lookup returns the overload chain registered for the upper-cased name, or
// nil if no operation is registered under it.
func (r *Registry) Lookup(name string) []*Registration {
	chain, _ := r.byName.Get(strings.ToUpper(name))
	return chain
}

// Names returns every registered name in this Registry, unordered.
func (r *Registry) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

// Reference builds a *Reference for a single Operation outside of the
// overload-chain path: used by the compiler for compiler-synthesized
// references (CONSTANT_VALUE, variable access, CALL) that are recognized
// structurally from the token kind rather than looked up by name.
func Single(op Operation, operand any, pos token.Pos) *Reference {
	return &Reference{
		Chain:   []*Registration{{Op: op, Filter: op.Filter()}},
		Operand: operand,
		Pos:     pos,
	}
}
