// Package strings implements the Text word family: CONCAT, LEN, UPPER,
// LOWER, SUBSTR, INDEX, SPLIT, TRIM, FORMAT, following the same one-small-
// struct-per-operator, registered-under-its-own-name style as ops/arith.
// FORMAT restricts fmt.Sprintf to a conservative verb set so a format
// string can't be used to coax out implementation details via an
// unexpected verb.
package strings

import (
	"fmt"
	"strings"

	"github.com/xapiens/rpn/filter"
	"github.com/xapiens/rpn/operation"
	"github.com/xapiens/rpn/value"
)

// Register adds the string word family to reg.
func Register(reg *operation.Registry) error {
	if err := reg.Register(concatOp{}, bothText); err != nil {
		return err
	}
	if err := reg.Register(lenOp{}, filter.TopString); err != nil {
		return err
	}
	if err := reg.Register(caseOp{"UPPER", strings.ToUpper}, filter.TopString); err != nil {
		return err
	}
	if err := reg.Register(caseOp{"LOWER", strings.ToLower}, filter.TopString); err != nil {
		return err
	}
	if err := reg.Register(substrOp{}, nil); err != nil {
		return err
	}
	if err := reg.Register(indexOp{}, nil); err != nil {
		return err
	}
	if err := reg.Register(splitOp{}, nil); err != nil {
		return err
	}
	if err := reg.Register(trimOp{}, filter.TopString); err != nil {
		return err
	}
	if err := reg.Register(formatOp{}, nil); err != nil {
		return err
	}
	return nil
}

var bothText = filter.New().Is(0, filter.TagText).Is(1, filter.TagText).And().Build()

type concatOp struct{}

func (concatOp) Name() string           { return "CONCAT" }
func (concatOp) Filter() *filter.Filter { return nil }
func (concatOp) SetUp(operation.SetUpContext, any) (any, error) {
	return nil, nil
}
func (concatOp) Exec(ctx operation.ExecContext, _ *operation.Reference) error {
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

type lenOp struct{}

func (lenOp) Name() string           { return "LEN" }
func (lenOp) Filter() *filter.Filter { return nil }
func (lenOp) SetUp(operation.SetUpContext, any) (any, error) {
	return nil, nil
}
func (lenOp) Exec(ctx operation.ExecContext, _ *operation.Reference) error {
	x, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	ctx.Stack().Push(value.Long(len(string(x.(value.Text)))))
	return nil
}

// caseOp backs UPPER/LOWER: ( text -- text' ).
type caseOp struct {
	name string
	fn   func(string) string
}

func (o caseOp) Name() string           { return o.name }
func (caseOp) Filter() *filter.Filter   { return nil }
func (caseOp) SetUp(operation.SetUpContext, any) (any, error) {
	return nil, nil
}
func (o caseOp) Exec(ctx operation.ExecContext, _ *operation.Reference) error {
	x, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	ctx.Stack().Push(value.Text(o.fn(string(x.(value.Text)))))
	return nil
}

// substrOp implements SUBSTR: ( text start len -- text' ), clamping start
// and len to the source's bounds rather than faulting, so a caller does not
// need to pre-check a variable-length Text's extent.
type substrOp struct{}

func (substrOp) Name() string           { return "SUBSTR" }
func (substrOp) Filter() *filter.Filter { return nil }
func (substrOp) SetUp(operation.SetUpContext, any) (any, error) {
	return nil, nil
}
func (substrOp) Exec(ctx operation.ExecContext, _ *operation.Reference) error {
	n, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	start, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	s, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	text, ok := s.(value.Text)
	if !ok {
		return &value.ConvertFailedError{From: s.Type(), To: "text", Detail: "SUBSTR"}
	}
	startI, ok := start.(value.Long)
	if !ok {
		return &value.ConvertFailedError{From: start.Type(), To: "long", Detail: "SUBSTR start"}
	}
	lenI, ok := n.(value.Long)
	if !ok {
		return &value.ConvertFailedError{From: n.Type(), To: "long", Detail: "SUBSTR len"}
	}
	runes := []rune(string(text))
	from := clamp(int(startI), 0, len(runes))
	to := clamp(from+int(lenI), from, len(runes))
	ctx.Stack().Push(value.Text(string(runes[from:to])))
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// indexOp implements INDEX: ( text sub -- long ), the 0-based index of
// sub's first occurrence in text, or -1 if absent.
type indexOp struct{}

func (indexOp) Name() string           { return "INDEX" }
func (indexOp) Filter() *filter.Filter { return nil }
func (indexOp) SetUp(operation.SetUpContext, any) (any, error) {
	return nil, nil
}
func (indexOp) Exec(ctx operation.ExecContext, _ *operation.Reference) error {
	sub, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	s, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	ctx.Stack().Push(value.Long(strings.Index(string(s.(value.Text)), string(sub.(value.Text)))))
	return nil
}

// splitOp implements SPLIT: ( text sep -- tuple ).
type splitOp struct{}

func (splitOp) Name() string           { return "SPLIT" }
func (splitOp) Filter() *filter.Filter { return nil }
func (splitOp) SetUp(operation.SetUpContext, any) (any, error) {
	return nil, nil
}
func (splitOp) Exec(ctx operation.ExecContext, _ *operation.Reference) error {
	sep, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	s, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	parts := strings.Split(string(s.(value.Text)), string(sep.(value.Text)))
	elems := make([]value.Value, len(parts))
	for i, p := range parts {
		elems[i] = value.Text(p)
	}
	ctx.Stack().Push(value.NewTuple(elems))
	return nil
}

type trimOp struct{}

func (trimOp) Name() string           { return "TRIM" }
func (trimOp) Filter() *filter.Filter { return nil }
func (trimOp) SetUp(operation.SetUpContext, any) (any, error) {
	return nil, nil
}
func (trimOp) Exec(ctx operation.ExecContext, _ *operation.Reference) error {
	x, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	ctx.Stack().Push(value.Text(strings.TrimSpace(string(x.(value.Text)))))
	return nil
}

// allowedVerbs is the restricted fmt.Sprintf verb set FORMAT accepts in its
// template: general, string, integer, float, and boolean — no pointer (%p)
// or Go-syntax (%#v) verbs, since a format template comes from program
// text and should not expose host memory layout.
var allowedVerbs = map[rune]bool{
	'v': true, 's': true, 'd': true, 'f': true, 'g': true, 't': true, '%': true,
}

// formatOp implements FORMAT: ( template tuple -- text ): template is a
// Text with %-verbs, tuple holds the positional arguments.
type formatOp struct{}

func (formatOp) Name() string           { return "FORMAT" }
func (formatOp) Filter() *filter.Filter { return nil }
func (formatOp) SetUp(operation.SetUpContext, any) (any, error) {
	return nil, nil
}
func (formatOp) Exec(ctx operation.ExecContext, _ *operation.Reference) error {
	args, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	tmpl, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	t, ok := tmpl.(value.Text)
	if !ok {
		return &value.ConvertFailedError{From: tmpl.Type(), To: "text", Detail: "FORMAT template"}
	}
	tup, ok := args.(*value.Tuple)
	if !ok {
		return &value.ConvertFailedError{From: args.Type(), To: "tuple", Detail: "FORMAT args"}
	}
	if err := checkVerbs(string(t)); err != nil {
		return err
	}
	vals := make([]any, tup.Len())
	for i := 0; i < tup.Len(); i++ {
		vals[i] = tup.At(i)
	}
	ctx.Stack().Push(value.Text(fmt.Sprintf(string(t), vals...)))
	return nil
}

// FormatVerbError reports a FORMAT template using a %-verb outside the
// restricted set allowedVerbs names.
type FormatVerbError struct{ Verb rune }

func (e *FormatVerbError) Error() string {
	return fmt.Sprintf("FORMAT: disallowed verb %%%c", e.Verb)
}

func checkVerbs(tmpl string) error {
	runes := []rune(tmpl)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '%' || i+1 >= len(runes) {
			continue
		}
		j := i + 1
		for j < len(runes) && strings.ContainsRune("+-# 0123456789.", runes[j]) {
			j++
		}
		if j >= len(runes) {
			break
		}
		verb := runes[j]
		if !allowedVerbs[verb] {
			return &FormatVerbError{Verb: verb}
		}
		if verb == 'v' && strings.ContainsRune(string(runes[i+1:j]), '#') {
			return &FormatVerbError{Verb: verb}
		}
		i = j
	}
	return nil
}
