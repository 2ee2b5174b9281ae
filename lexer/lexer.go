// Package lexer implements the character-cursor layer of the compiler
// front-end: whitespace and comment skipping, maximal-munch word reading,
// and quoted-string decoding. It has no notion of macros or tokens — that
// is the tokenizer's job.
package lexer

import (
	"fmt"
	"go/scanner"
	gotoken "go/token"
	"strings"
	"unicode/utf8"

	"github.com/xapiens/rpn/token"
)

// Error aliases the standard library's scanner diagnostic type directly,
// the same way an upstream scanner package does: a position-carrying,
// formatted message, rather than a bespoke per-failure struct.
type Error = scanner.Error

// Lexer is a character cursor over an immutable source string. It is the
// leaf of the compiler front-end: the tokenizer drives it directly, and a
// macro expansion pushes a fresh Lexer over the expanded body text (see
// package tokenizer).
type Lexer struct {
	src  string
	name string // for diagnostics: the source file or macro-expansion name

	off  int // byte offset of cur
	roff int // byte offset just past cur

	cur  rune
	line int
	col  int
}

// New creates a Lexer over src. name is used only in diagnostics (e.g. the
// macro name during a pushed-back expansion).
func New(name, src string) *Lexer {
	l := &Lexer{src: src, name: name, line: 1, col: 0}
	l.advance()
	return l
}

// Name returns the diagnostic name this lexer was constructed with.
func (l *Lexer) Name() string { return l.name }

// CurrentChar returns the current character, or -1 at end of source.
func (l *Lexer) CurrentChar() rune { return l.cur }

// AtEOF reports whether the cursor has consumed the entire source.
func (l *Lexer) AtEOF() bool { return l.cur == -1 }

// Position returns the line/column of the current character.
func (l *Lexer) Position() token.Pos { return token.MakePos(l.line, l.col) }

// errorf builds a scanner.Error at pos, carrying l's diagnostic name as
// the position's filename.
func (l *Lexer) errorf(pos token.Pos, format string, args ...any) error {
	return &Error{
		Pos: gotoken.Position{Filename: l.name, Line: pos.Line(), Column: pos.Col()},
		Msg: fmt.Sprintf(format, args...),
	}
}

// Advance consumes the current character and decodes the next one.
func (l *Lexer) Advance() { l.advance() }

func (l *Lexer) advance() {
	if l.roff >= len(l.src) {
		l.off = len(l.src)
		l.cur = -1
		return
	}
	if l.cur == '\n' {
		l.line++
		l.col = 0
	}
	l.off = l.roff
	r, w := rune(l.src[l.roff]), 1
	if r >= utf8.RuneSelf {
		r, w = utf8.DecodeRuneInString(l.src[l.roff:])
	}
	l.roff += w
	l.cur = r
	l.col++
}

// peek returns the byte following the current character without advancing,
// or 0 at end of source.
func (l *Lexer) peek() byte {
	if l.roff < len(l.src) {
		return l.src[l.roff]
	}
	return 0
}

// SkipWhitespace consumes whitespace and nested C-style /* ... */ comments.
// An unterminated comment is a fatal compile error.
func (l *Lexer) SkipWhitespace() error {
	for {
		for isSpace(l.cur) {
			l.advance()
		}
		if l.cur == '/' && l.peek() == '*' {
			if err := l.skipBlockComment(); err != nil {
				return err
			}
			continue
		}
		return nil
	}
}

func (l *Lexer) skipBlockComment() error {
	startLine, startCol := l.line, l.col
	l.advance() // '/'
	l.advance() // '*'
	depth := 1
	for depth > 0 {
		if l.cur == -1 {
			return l.errorf(token.MakePos(startLine, startCol), "unterminated comment")
		}
		if l.cur == '/' && l.peek() == '*' {
			l.advance()
			l.advance()
			depth++
			continue
		}
		if l.cur == '*' && l.peek() == '/' {
			l.advance()
			l.advance()
			depth--
			continue
		}
		l.advance()
	}
	return nil
}

// SkipForthComment skips a Forth-style ( ... ) stack comment: everything up
// to and including the matching ')' on this lexer. Forth comments do not
// nest. The caller must have already consumed the opening '('.
func (l *Lexer) SkipForthComment() error {
	startLine, startCol := l.line, l.col
	for l.cur != ')' {
		if l.cur == -1 {
			return l.errorf(token.MakePos(startLine, startCol), "unterminated comment")
		}
		l.advance()
	}
	l.advance() // consume ')'
	return nil
}

// ReadWord reads a maximal run of non-whitespace characters, stopping
// before ',' and ')' even when not preceded by whitespace.
func (l *Lexer) ReadWord() string {
	var sb strings.Builder
	for !isSpace(l.cur) && l.cur != -1 && l.cur != ',' && l.cur != ')' {
		sb.WriteRune(l.cur)
		l.advance()
	}
	return sb.String()
}

// ReadQuoted reads a quoted string. The caller must have already consumed
// the opening delimiter (' or "), passed in as delim; the lexer stops at
// the matching closing delimiter and consumes it.
func (l *Lexer) ReadQuoted(delim rune) (string, error) {
	startLine, startCol := l.line, l.col
	var sb strings.Builder
	for {
		if l.cur == -1 || l.cur == '\n' {
			return "", l.errorf(token.MakePos(startLine, startCol), "unterminated quoted string")
		}
		if l.cur == delim {
			l.advance()
			return sb.String(), nil
		}
		if l.cur == '\\' {
			r, err := l.readEscape()
			if err != nil {
				return "", err
			}
			sb.WriteRune(r)
			continue
		}
		sb.WriteRune(l.cur)
		l.advance()
	}
}

// readEscape decodes a backslash escape. The current character is '\\' on
// entry; it is consumed along with the escape body.
func (l *Lexer) readEscape() (rune, error) {
	pos := l.Position()
	l.advance() // '\\'
	switch l.cur {
	case 'a':
		l.advance()
		return '\a', nil
	case 'b':
		l.advance()
		return '\b', nil
	case 'f':
		l.advance()
		return '\f', nil
	case 'n':
		l.advance()
		return '\n', nil
	case 'r':
		l.advance()
		return '\r', nil
	case 't':
		l.advance()
		return '\t', nil
	case 'v':
		l.advance()
		return '\v', nil
	case '"':
		l.advance()
		return '"', nil
	case '\'':
		l.advance()
		return '\'', nil
	case '\\':
		l.advance()
		return '\\', nil
	default:
		if isOctalDigit(l.cur) {
			return l.readOctalEscape()
		}
		return 0, l.errorf(pos, "invalid escape sequence '\\%c'", l.cur)
	}
}

// readOctalEscape reads 1-3 octal digits, per the rule that a value <= 037
// may take three digits (i.e. the encoded byte never exceeds 0xFF).
func (l *Lexer) readOctalEscape() (rune, error) {
	v := 0
	n := 0
	for n < 3 && isOctalDigit(l.cur) {
		next := v*8 + int(l.cur-'0')
		if n == 2 && v > 0o37 {
			break
		}
		v = next
		l.advance()
		n++
	}
	return rune(v), nil
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func isOctalDigit(r rune) bool { return r >= '0' && r <= '7' }
