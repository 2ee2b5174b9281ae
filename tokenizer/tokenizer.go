// Package tokenizer combines the lexer with the macro preprocessor: it
// drives a stack of lexers (the source, plus one per active macro
// expansion), recognizes the token grammar, and expands macro invocations
// transparently before the compiler ever sees them.
package tokenizer

import (
	"fmt"
	"strings"

	"github.com/xapiens/rpn/lexer"
	"github.com/xapiens/rpn/macro"
	"github.com/xapiens/rpn/token"
	"github.com/xapiens/rpn/value"
)

// LoopLimitError reports that the macro expansion recursion/loop limit was
// exceeded.
type LoopLimitError struct{ Limit int }

func (e *LoopLimitError) Error() string {
	return fmt.Sprintf("macro expansion exceeded loop limit (%d)", e.Limit)
}

// RightParenError reports an unbalanced macro invocation argument list.
type RightParenError struct{ Pos token.Pos }

func (e *RightParenError) Error() string {
	return fmt.Sprintf("%s: missing ')' closing macro arguments", e.Pos)
}

// Tokenizer produces a token.Token stream from a source string, expanding
// macro invocations as it encounters them. LoopLimit bounds the nesting
// depth of simultaneous macro expansions (see DESIGN.md); the compiler
// separately enforces it as the maximum variable-access index when
// validating a VariableAction token.
type Tokenizer struct {
	lexers    []*lexer.Lexer
	macros    map[string]*macro.Def
	loopLimit int
	depth     int
}

// New creates a Tokenizer over the given source, with macros available for
// expansion (by Key, as produced by macro.Def) and a loop limit bounding
// macro expansion depth (the compiler applies the same limit to variable
// indices).
func New(name, src string, macros map[string]*macro.Def, loopLimit int) *Tokenizer {
	if macros == nil {
		macros = map[string]*macro.Def{}
	}
	return &Tokenizer{
		lexers:    []*lexer.Lexer{lexer.New(name, src)},
		macros:    macros,
		loopLimit: loopLimit,
	}
}

// DefineMacro adds or replaces a macro available for expansion in this
// compilation, scoped to this Tokenizer only.
func (tz *Tokenizer) DefineMacro(d *macro.Def) {
	tz.macros[d.Key] = d
}

func (tz *Tokenizer) top() *lexer.Lexer { return tz.lexers[len(tz.lexers)-1] }

// Next returns the next token, transparently expanding any macro
// invocations encountered along the way.
func (tz *Tokenizer) Next() (token.Token, error) {
	for {
		tok, err := tz.nextRaw()
		if err != nil {
			return token.Token{}, err
		}

		if tok.Kind == token.EOF {
			if len(tz.lexers) > 1 {
				tz.lexers = tz.lexers[:len(tz.lexers)-1]
				tz.depth--
				continue
			}
			return tok, nil
		}

		if tok.Kind != token.OtherName {
			return tok, nil
		}

		def, paren, ok := tz.lookupMacro(tok.Name)
		if !ok {
			return tok, nil
		}

		if err := tz.expand(def, paren, tok.Pos); err != nil {
			return token.Token{}, err
		}
		// loop around: the expanded body's first token comes from the
		// freshly pushed lexer.
	}
}

// lookupMacro matches name against the macro table, trying first the
// parameterized form (name + "(") and then the parameterless form.
func (tz *Tokenizer) lookupMacro(name string) (def *macro.Def, paren bool, ok bool) {
	if d, found := tz.macros[name+"("]; found {
		return d, true, true
	}
	if d, found := tz.macros[name]; found {
		return d, false, true
	}
	return nil, false, false
}

// expand reads a macro invocation's argument list (if parameterized),
// maps it onto the macro's formals, substitutes the body, and pushes the
// expansion as a new lexer frame.
func (tz *Tokenizer) expand(def *macro.Def, paren bool, pos token.Pos) error {
	var args []string
	if paren {
		a, err := tz.readArgs(pos)
		if err != nil {
			return err
		}
		args = a
	}

	bindings, err := def.Map(args)
	if err != nil {
		return err
	}
	body := macro.Expand(def.Body, bindings)

	if tz.depth+1 > tz.loopLimit && tz.loopLimit > 0 {
		return &LoopLimitError{Limit: tz.loopLimit}
	}
	tz.depth++
	tz.lexers = append(tz.lexers, lexer.New(def.Name()+" expansion", body))
	return nil
}

// readArgs consumes a macro invocation's "(arg, arg, ..., )" from the
// current (top) lexer. The opening '(' must already be the next
// non-whitespace character. Splitting on top-level commas (not nested in
// parens) is the resolved Open Question — see DESIGN.md.
func (tz *Tokenizer) readArgs(pos token.Pos) ([]string, error) {
	l := tz.top()
	if err := l.SkipWhitespace(); err != nil {
		return nil, err
	}
	if l.CurrentChar() != '(' {
		return nil, &RightParenError{Pos: pos}
	}
	l.Advance()

	var raw strings.Builder
	depth := 1
	for {
		if l.AtEOF() {
			return nil, &RightParenError{Pos: pos}
		}
		c := l.CurrentChar()
		if c == '(' {
			depth++
		} else if c == ')' {
			depth--
			if depth == 0 {
				l.Advance()
				break
			}
		}
		raw.WriteRune(c)
		l.Advance()
	}

	text := raw.String()
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	return splitArgs(text), nil
}

// splitArgs splits a macro invocation's raw argument text on top-level
// commas only, so an argument that itself contains a parenthesized,
// comma-containing sub-expression is not split apart.
func splitArgs(text string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, text[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, text[start:])
	return parts
}

// nextRaw recognizes exactly one token from the top lexer, per the
// grammar's token priority list, without any macro awareness.
func (tz *Tokenizer) nextRaw() (token.Token, error) {
	l := tz.top()
	if err := l.SkipWhitespace(); err != nil {
		return token.Token{}, err
	}

	pos := l.Position()
	c := l.CurrentChar()

	switch {
	case c == -1:
		return token.Token{Kind: token.EOF, Pos: pos}, nil

	case c == '"' || c == '\'':
		l.Advance()
		text, err := l.ReadQuoted(c)
		if err != nil {
			return token.Token{}, err
		}
		return token.Token{Kind: token.TextConstant, Pos: pos, Text: text, Lexeme: text}, nil

	case c == ',':
		l.Advance()
		return token.Token{Kind: token.Comma, Pos: pos}, nil

	case c == ')':
		l.Advance()
		return token.Token{Kind: token.RightParen, Pos: pos}, nil

	case c == '(':
		l.Advance()
		if err := l.SkipForthComment(); err != nil {
			return token.Token{}, err
		}
		return tz.nextRaw()

	default:
		return tz.readWordToken(l, pos)
	}
}

// readWordToken handles every word-shaped token: a ':'-prefixed variable
// access (":$1"), the bare begin-def sentinel ':', the end-def sentinel
// ';', a variable access, a numeric constant, or an OtherName — tried in
// that priority order. A word whose text up to its first '(' is the name
// of a parameterized macro ends before that '(', leaving the argument list
// for readArgs.
func (tz *Tokenizer) readWordToken(l *lexer.Lexer, pos token.Pos) (token.Token, error) {
	c := l.CurrentChar()
	if c == ':' {
		// Try reading the word starting at ':'; if it is not a variable-access
		// token, a bare ':' is the begin-def sentinel and "word" is whatever
		// follows, read separately.
		save := *l
		word := l.ReadWord()
		if v, ok := token.ParseVar(word); ok {
			return token.Token{Kind: token.VariableAction, Pos: pos, Var: v, Lexeme: word}, nil
		}
		*l = save
		l.Advance() // consume ':'
		return token.Token{Kind: token.BeginDef, Pos: pos}, nil
	}

	if c == ';' {
		l.Advance()
		return token.Token{Kind: token.EndDef, Pos: pos}, nil
	}

	save := *l
	word := l.ReadWord()
	if i := strings.IndexByte(word, '('); i > 0 {
		if _, ok := tz.macros[word[:i+1]]; ok {
			*l = save
			for range word[:i] {
				l.Advance()
			}
			return token.Token{Kind: token.OtherName, Pos: pos, Name: word[:i], Lexeme: word[:i]}, nil
		}
	}
	if v, ok := token.ParseVar(word); ok {
		return token.Token{Kind: token.VariableAction, Pos: pos, Var: v, Lexeme: word}, nil
	}
	if lv, err := value.ParseLong(word); err == nil {
		return token.Token{Kind: token.NumericConstant, Pos: pos, Long: lv, Lexeme: word}, nil
	}
	if dv, err := value.ParseDouble(word); err == nil {
		return token.Token{Kind: token.NumericConstant, Pos: pos, Double: dv, IsFloat: true, Lexeme: word}, nil
	}
	return token.Token{Kind: token.OtherName, Pos: pos, Name: word, Lexeme: word}, nil
}
