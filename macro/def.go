// Package macro implements compile-time macro definitions: parsing a
// formal parameter list with required, defaulted, and variadic forms, and
// mapping a call's actual arguments onto those formals.
package macro

import (
	"fmt"
	"strings"
)

// FormalKind tags how a formal parameter behaves when its argument is
// omitted from a call.
type FormalKind int8

const (
	// Optional formals expand to the empty string when omitted.
	Optional FormalKind = iota
	// Defaulted formals expand to their literal Default when omitted.
	Defaulted
	// Required formals make a call that omits them a compile error.
	Required
	// Variadic formals (the literal "...") must be last; all trailing
	// actual arguments beyond the preceding formals are concatenated into
	// it, comma-separated.
	Variadic
)

// Formal is one parameter of a macro's formal parameter list.
type Formal struct {
	Name    string
	Kind    FormalKind
	Default string // meaningful only when Kind == Defaulted
}

// Def is a parsed macro definition, scoped to the compilation unit it was
// defined in: macro definitions used during a single compilation never
// leak into another one.
type Def struct {
	// Key is the macro's invocation name: bare for a parameterless macro,
	// or with a trailing "(" for one with a formal parameter list, so the
	// tokenizer's word-plus-open-paren recognition can match it directly
	// against the macro table.
	Key     string
	Formals []Formal
	Body    string
}

// Parameterless reports whether this macro takes no arguments at all (no
// parentheses in its definition).
func (d *Def) Parameterless() bool { return !strings.HasSuffix(d.Key, "(") }

// Name is the bare invocation name, with any trailing "(" stripped.
func (d *Def) Name() string { return strings.TrimSuffix(d.Key, "(") }

// EmptyMacroError reports a macro definition with no name.
type EmptyMacroError struct{}

func (EmptyMacroError) Error() string { return "macro definition is missing a name" }

// EmptyParamNameError reports a formal parameter list entry with no name.
type EmptyParamNameError struct{}

func (EmptyParamNameError) Error() string { return "macro formal parameter is missing a name" }

// EllipsisNotLastError reports a variadic "..." formal that is not the
// last one in the list.
type EllipsisNotLastError struct{ Name string }

func (e *EllipsisNotLastError) Error() string {
	return fmt.Sprintf("variadic parameter %q must be the last formal", e.Name)
}

// ParseFormals parses a formal parameter list's inner text (the part
// between the parentheses, not including them): a comma-separated list of
// `name`, `name=literal`, `name!`, or the literal `...`.
func ParseFormals(text string) ([]Formal, error) {
	parts := splitTopLevel(text, ',')
	formals := make([]Formal, 0, len(parts))
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if part == "..." {
			if i != len(parts)-1 {
				return nil, &EllipsisNotLastError{Name: "..."}
			}
			formals = append(formals, Formal{Name: "...", Kind: Variadic})
			continue
		}

		switch {
		case strings.HasSuffix(part, "!"):
			name := strings.TrimSuffix(part, "!")
			if name == "" {
				return nil, EmptyParamNameError{}
			}
			formals = append(formals, Formal{Name: name, Kind: Required})
		case strings.Contains(part, "="):
			idx := strings.Index(part, "=")
			name, lit := part[:idx], part[idx+1:]
			if name == "" {
				return nil, EmptyParamNameError{}
			}
			formals = append(formals, Formal{Name: name, Kind: Defaulted, Default: lit})
		default:
			if part == "" {
				return nil, EmptyParamNameError{}
			}
			formals = append(formals, Formal{Name: part, Kind: Optional})
		}
	}
	return formals, nil
}

// splitTopLevel splits s on sep, but only at paren-depth 0 (see the
// resolved Open Question in DESIGN.md: nested parentheses in macro
// argument/formal text are respected, a strict superset of "split on
// every comma").
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}
