// Package filter implements the small stack-inspection predicate bytecode
// used to choose between overloaded operation registrations: each
// registered Operation may attach a Filter that is consulted against the
// current stack before the operation is dispatched.
package filter

import (
	"github.com/xapiens/rpn/stack"
	"github.com/xapiens/rpn/value"
)

// op names one instruction of the flat predicate bytecode.
type op int8

const (
	opIs op = iota
	opIsLong
	opIsPresent
	opIsApplying
	opAnd
	opOr
)

// TypeTag names the Value variant an IS predicate checks for.
type TypeTag int8

const (
	TagNull TypeTag = iota
	TagBool
	TagNumber // Long, Double, or BigDecimal
	TagLong
	TagBigDecimal
	TagText
	TagState
	TagStamp
	TagElapsed
	TagTuple
	TagDict
	TagContainer // Tuple or Dict
	TagObject    // anything but Null
)

// ContainerKind names the container type an IS_APPLYING predicate checks
// the task's current apply-scope against.
type ContainerKind int8

const (
	ContainerTuple ContainerKind = iota
	ContainerDict
	ContainerAny
)

// ApplyScope is implemented by the execution task to expose whether it is
// currently inside a container-apply scope, and of what kind. It is a
// narrow interface so package filter does not depend on package task.
type ApplyScope interface {
	Applying() (kind ContainerKind, ok bool)
}

// instr is one decoded predicate bytecode instruction, carrying its
// operand inline (offset + type tag, or container kind) to avoid a second
// allocation per predicate the way a tree of combinator objects would
// require.
type instr struct {
	op     op
	offset int
	tag    TypeTag
	kind   ContainerKind
}

// Filter is an immutable, flat sequence of predicate and combinator
// instructions built by Builder. Evaluation runs a tiny local boolean stack
// against the task's value stack; it is not short-circuiting — every
// predicate instruction always evaluates, only AND/OR pop and combine.
type Filter struct {
	code []instr
}

// Eval runs the filter against st (and scope, for IS_APPLYING predicates),
// returning whether the filter matches.
func (f *Filter) Eval(st *stack.Stack, scope ApplyScope) bool {
	var bools []bool
	for _, in := range f.code {
		switch in.op {
		case opIs:
			bools = append(bools, evalIs(st, in.offset, in.tag))
		case opIsLong:
			bools = append(bools, evalIs(st, in.offset, TagLong))
		case opIsPresent:
			v, err := st.Peek(in.offset)
			bools = append(bools, err == nil && !isNull(v))
		case opIsApplying:
			ok := false
			if scope != nil {
				k, applying := scope.Applying()
				ok = applying && (in.kind == ContainerAny || k == in.kind)
			}
			bools = append(bools, ok)
		case opAnd:
			n := len(bools)
			a, b := bools[n-2], bools[n-1]
			bools = append(bools[:n-2], a && b)
		case opOr:
			n := len(bools)
			a, b := bools[n-2], bools[n-1]
			bools = append(bools[:n-2], a || b)
		}
	}
	if len(bools) == 0 {
		return true // an empty filter always matches
	}
	return bools[len(bools)-1]
}

func isNull(v value.Value) bool {
	_, ok := v.(value.Null)
	return ok
}

func evalIs(st *stack.Stack, offset int, tag TypeTag) bool {
	v, err := st.Peek(offset)
	if err != nil {
		return false
	}
	return matchesTag(v, tag)
}

func matchesTag(v value.Value, tag TypeTag) bool {
	switch tag {
	case TagNull:
		return isNull(v)
	case TagObject:
		return !isNull(v)
	case TagBool:
		_, ok := v.(value.Bool)
		return ok
	case TagLong:
		_, ok := v.(value.Long)
		return ok
	case TagBigDecimal:
		_, ok := v.(value.BigDecimal)
		return ok
	case TagNumber:
		switch v.(type) {
		case value.Long, value.Double, value.BigDecimal:
			return true
		}
		return false
	case TagText:
		_, ok := v.(value.Text)
		return ok
	case TagState:
		_, ok := v.(value.State)
		return ok
	case TagStamp:
		_, ok := v.(value.Stamp)
		return ok
	case TagElapsed:
		_, ok := v.(value.Elapsed)
		return ok
	case TagTuple:
		_, ok := v.(*value.Tuple)
		return ok
	case TagDict:
		_, ok := v.(*value.Dict)
		return ok
	case TagContainer:
		switch v.(type) {
		case *value.Tuple, *value.Dict:
			return true
		}
		return false
	}
	return false
}
