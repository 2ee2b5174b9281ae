package macro

import (
	"fmt"
	"strings"
)

// MacroArgError reports a call that omits an argument for a Required
// formal.
type MacroArgError struct{ Macro, Formal string }

func (e *MacroArgError) Error() string {
	return fmt.Sprintf("macro %q: missing required argument %q", e.Macro, e.Formal)
}

// MacroArgsError reports an arity mismatch: too many arguments and no
// trailing variadic formal to absorb them.
type MacroArgsError struct {
	Macro          string
	Got, Max       int
}

func (e *MacroArgsError) Error() string {
	return fmt.Sprintf("macro %q: got %d arguments, expected at most %d", e.Macro, e.Got, e.Max)
}

// Map maps a call's actual argument texts onto this macro's formal
// parameters:
//   - too few args: any defaulted formal not covered uses its Default, an
//     Optional formal not covered expands to "", a Required formal not
//     covered is a MacroArgError;
//   - too many args with a trailing Variadic formal: excess args are
//     concatenated (comma-separated) into the variadic's value;
//   - too many args otherwise: MacroArgsError.
//
// The returned map is keyed by formal name (without the "!" or "="
// suffix) to its substitution text; a variadic formal is keyed by "...".
func (d *Def) Map(args []string) (map[string]string, error) {
	bindings := make(map[string]string, len(d.Formals))

	nonVariadic := d.Formals
	variadic := false
	if n := len(d.Formals); n > 0 && d.Formals[n-1].Kind == Variadic {
		nonVariadic = d.Formals[:n-1]
		variadic = true
	}

	if len(args) > len(nonVariadic) && !variadic {
		return nil, &MacroArgsError{Macro: d.Name(), Got: len(args), Max: len(nonVariadic)}
	}

	for i, f := range nonVariadic {
		if i < len(args) {
			bindings[f.Name] = strings.TrimSpace(args[i])
			continue
		}
		switch f.Kind {
		case Required:
			return nil, &MacroArgError{Macro: d.Name(), Formal: f.Name}
		case Defaulted:
			bindings[f.Name] = f.Default
		default:
			bindings[f.Name] = ""
		}
	}

	if variadic {
		tail := ""
		if len(args) > len(nonVariadic) {
			tail = strings.Join(args[len(nonVariadic):], ",")
		}
		bindings["..."] = tail
	}

	return bindings, nil
}

// Expand substitutes every formal's binding into the macro body, textually.
// Substitution is whole-word: a formal name is replaced only where it
// appears as a maximal identifier run, so a formal named "x" does not
// corrupt an unrelated identifier "max".
func Expand(body string, bindings map[string]string) string {
	var sb strings.Builder
	i := 0
	for i < len(body) {
		if tail, ok := bindings["..."]; ok && strings.HasPrefix(body[i:], "...") {
			sb.WriteString(tail)
			i += 3
			continue
		}
		if isIdentStart(body[i]) {
			j := i + 1
			for j < len(body) && isIdentCont(body[j]) {
				j++
			}
			word := body[i:j]
			if sub, ok := bindings[word]; ok {
				sb.WriteString(sub)
			} else {
				sb.WriteString(word)
			}
			i = j
			continue
		}
		sb.WriteByte(body[i])
		i++
	}
	return sb.String()
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
