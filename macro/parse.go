package macro

import "strings"

// ParseDef parses one macro definition text: `name(p1, p2=lit, p3!, ...)
// body` for a parameterized macro (the '(' directly follows the name), or
// `name body` for a parameterless
// one — the body is everything after the name (and, if present, the
// formal parameter list) to the end of text. This is what an engine's
// ambient macro-text configuration entries are parsed with, one
// definition per text.
func ParseDef(text string) (*Def, error) {
	i := 0
	for i < len(text) && isIdentStart(text[i]) {
		i++
	}
	for i < len(text) && isIdentCont(text[i]) {
		i++
	}
	name := text[:i]
	if name == "" {
		return nil, EmptyMacroError{}
	}

	if i < len(text) && text[i] == '(' {
		depth := 1
		j := i + 1
		for j < len(text) && depth > 0 {
			switch text[j] {
			case '(':
				depth++
			case ')':
				depth--
			}
			j++
		}
		if depth > 0 {
			return nil, &UnterminatedParamListError{Name: name}
		}
		inner := text[i+1 : j-1]
		formals, err := ParseFormals(inner)
		if err != nil {
			return nil, err
		}
		body := strings.TrimPrefix(text[j:], " ")
		return &Def{Key: name + "(", Formals: formals, Body: body}, nil
	}

	body := strings.TrimPrefix(text[i:], " ")
	return &Def{Key: name, Body: body}, nil
}

// UnterminatedParamListError reports a macro definition text whose formal
// parameter list is missing its closing ')'.
type UnterminatedParamListError struct{ Name string }

func (e *UnterminatedParamListError) Error() string {
	return "macro " + e.Name + ": unterminated formal parameter list"
}
