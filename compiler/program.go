// Package compiler turns a token stream into an immutable Program:
//
//	program        = { inline-word-def } , [ ";" ] , words ;
//	inline-word-def = ":" , word-name , words , ";" ;
//	words          = { operation-reference } ;
//
// A Program is a flat, already-linked slice of *operation.Reference: there
// is no jump target to patch and no stack-depth analysis to run, because
// every structural construct resolves its shape at SetUp time (see
// Operation.SetUp), not via an encoded jump: if/else/then and
// begin/while/repeat consume further References directly, and apply takes
// back the Reference compiled just before it. See DESIGN.md
// for the rationale behind this flat-list design over a bytecode/CFG one.
package compiler

import (
	"fmt"

	"github.com/xapiens/rpn/operation"
	"github.com/xapiens/rpn/token"
)

// Program is a compiled, frozen sequence of operation references — either
// the top-level program or a user word's body. Once Freeze is called no
// further mutation is possible.
type Program struct {
	Filename string
	Name     string // "" for the top-level program, else the word's name
	Refs     []*operation.Reference

	frozen bool
}

// Freeze makes p immutable. Compile always freezes every Program it
// returns; exported so tests can build one by hand and freeze it too.
func (p *Program) Freeze() { p.frozen = true }

// Frozen reports whether Freeze has been called.
func (p *Program) Frozen() bool { return p.frozen }

func (p *Program) String() string {
	name := p.Name
	if name == "" {
		name = "<top-level>"
	}
	return fmt.Sprintf("program %s (%s, %d refs)", name, p.Filename, len(p.Refs))
}

// UnknownWordError reports an OtherName token that names neither a
// registered operation nor a previously defined user word.
type UnknownWordError struct {
	Pos  token.Pos
	Name string
}

func (e *UnknownWordError) Error() string {
	return fmt.Sprintf("%s: unknown word %q", e.Pos, e.Name)
}

// VariableFormError reports a word that matched the sigil grammar but not
// a decodable variable-access form (e.g. an index beyond the loop limit).
type VariableFormError struct {
	Pos token.Pos
	Lit string
}

func (e *VariableFormError) Error() string {
	return fmt.Sprintf("%s: %q is not a valid variable-access form", e.Pos, e.Lit)
}

// MissingWordNameError reports a ":" not immediately followed by a word
// name.
type MissingWordNameError struct{ Pos token.Pos }

func (e *MissingWordNameError) Error() string {
	return fmt.Sprintf("%s: word definition is missing a name", e.Pos)
}

// RegisteredWordNameError reports a user word definition whose name
// collides with a built-in operation name.
type RegisteredWordNameError struct {
	Pos  token.Pos
	Name string
}

func (e *RegisteredWordNameError) Error() string {
	return fmt.Sprintf("%s: %q is already a built-in operation", e.Pos, e.Name)
}

// UnterminatedWordDefError reports EOF reached while a ":" word definition
// was still open, with no closing ";".
type UnterminatedWordDefError struct{ Pos token.Pos }

func (e *UnterminatedWordDefError) Error() string {
	return fmt.Sprintf("%s: word definition is missing its closing ';'", e.Pos)
}

// MisplacedEndWordError reports a ";" encountered outside of an open word
// definition, other than the single isolated leading ";" the grammar
// tolerates as a no-op separator.
type MisplacedEndWordError struct{ Pos token.Pos }

func (e *MisplacedEndWordError) Error() string {
	return fmt.Sprintf("%s: misplaced ';' (no word definition is open)", e.Pos)
}

// MisplacedBeginDefError reports a ":" encountered after the leading block
// of word definitions has ended — the grammar requires every inline word
// definition to precede the main body.
type MisplacedBeginDefError struct{ Pos token.Pos }

func (e *MisplacedBeginDefError) Error() string {
	return fmt.Sprintf("%s: word definitions must precede the program body", e.Pos)
}

// UnexpectedTokenError reports a token kind the grammar does not expect at
// the point it was encountered (e.g. a stray ")" or ",").
type UnexpectedTokenError struct {
	Pos  token.Pos
	Kind token.Kind
}

func (e *UnexpectedTokenError) Error() string {
	return fmt.Sprintf("%s: unexpected %s", e.Pos, e.Kind)
}

// MissingInstructionError reports an operation that binds to the reference
// immediately preceding it (apply and similar) with nothing there to bind
// to — the start of a sequence, or another such operation with nothing of
// its own.
type MissingInstructionError struct {
	Pos  token.Pos
	Name string
}

func (e *MissingInstructionError) Error() string {
	return fmt.Sprintf("%s: %s has no preceding instruction to apply to", e.Pos, e.Name)
}
