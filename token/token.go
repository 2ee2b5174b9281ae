// Package token defines the lexical tokens produced by the lexer and
// consumed by the macro preprocessor and the compiler.
package token

import "fmt"

// Kind tags the variant held by a Token.
type Kind int8

const (
	Illegal Kind = iota
	EOF

	// NumericConstant is a Long or Double literal; see Token.Long/Double/IsFloat.
	NumericConstant
	// TextConstant is a quoted, escape-decoded string literal.
	TextConstant
	// OtherName is any other bare word: an operation name, a user word name,
	// or a macro invocation name.
	OtherName
	// VariableAction is a $N / #N / @N access token; see Token.Var.
	VariableAction

	Comma      // ,
	RightParen // )
	BeginDef   // :
	EndDef     // ;
)

func (k Kind) String() string {
	switch k {
	case Illegal:
		return "illegal"
	case EOF:
		return "eof"
	case NumericConstant:
		return "numeric-constant"
	case TextConstant:
		return "text-constant"
	case OtherName:
		return "other-name"
	case VariableAction:
		return "variable-action"
	case Comma:
		return ","
	case RightParen:
		return ")"
	case BeginDef:
		return ":"
	case EndDef:
		return ";"
	default:
		return "unknown"
	}
}

// VarKind is the memory bank a VariableAction token addresses.
type VarKind int8

const (
	Input VarKind = iota
	Memory
	Param
)

func (k VarKind) String() string {
	switch k {
	case Input:
		return "input"
	case Memory:
		return "memory"
	case Param:
		return "param"
	default:
		return "?"
	}
}

// VarAction is the trailing action character of a variable-access token
// (or None when the token carries no trailing character, meaning "value").
type VarAction int8

const (
	ActNone VarAction = iota
	ActValue
	ActRequired
	ActStamp
	ActState
	ActPresent
	ActStore
	ActPoint
)

// Var holds the decoded fields of a VariableAction token, as produced by
// the regex `(:)?(\$|#|@)([1-9][0-9]*)(=|!|\?|@|\$|\.)?`.
type Var struct {
	Dup    bool
	Kind   VarKind
	Index  int
	Action VarAction
}

// Token is a single lexical unit. Exactly one of the payload fields below
// is meaningful, selected by Kind.
type Token struct {
	Kind Kind
	Pos  Pos

	Lexeme string // raw source text, for diagnostics

	Long    int64
	Double  float64
	IsFloat bool // NumericConstant: Double valid, else Long valid

	Text string // TextConstant: unquoted, escape-decoded

	Name string // OtherName: the bare word, already as read (not upper-cased)

	Var Var // VariableAction
}

func (t Token) String() string {
	switch t.Kind {
	case NumericConstant:
		if t.IsFloat {
			return fmt.Sprintf("%g", t.Double)
		}
		return fmt.Sprintf("%d", t.Long)
	case TextConstant:
		return fmt.Sprintf("%q", t.Text)
	case OtherName:
		return t.Name
	case VariableAction:
		dup := ""
		if t.Var.Dup {
			dup = ":"
		}
		return fmt.Sprintf("%s%c%d", dup, varSigil(t.Var.Kind), t.Var.Index)
	default:
		return t.Kind.String()
	}
}

func varSigil(k VarKind) byte {
	switch k {
	case Input:
		return '$'
	case Memory:
		return '#'
	case Param:
		return '@'
	default:
		return '?'
	}
}
