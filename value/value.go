// Package value implements Value, the single polymorphic element that
// flows through the stack, memory cells, inputs, and parameters of the
// execution engine.
package value

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Value is the tagged sum type manipulated by the stack and by every
// operation. It has no methods of its own beyond identification: all
// arithmetic, comparison, and conversion live as free functions (Binary,
// Compare, widening helpers) so that a single operation module can dispatch
// over the small closed set of variants without a method per variant per
// operation.
type Value interface {
	// Type returns a short, stable, lower-case name of the variant, used by
	// diagnostics and by filter predicates.
	Type() string
	String() string
}

// Null is the absent value. An operation observing Null at a position that
// requires a value fails with a Limits or Cast diagnostic, per the
// attached Filter.
type Null struct{}

func (Null) Type() string   { return "null" }
func (Null) String() string { return "null" }

// None is the single Null instance; Value variants that carry no data are
// modeled as zero-size values so comparisons by type assertion are cheap.
var None = Null{}

// Bool is a boolean value.
type Bool bool

func (Bool) Type() string     { return "bool" }
func (b Bool) String() string { return fmt.Sprintf("%t", bool(b)) }

// Long is a 64-bit signed integer value.
type Long int64

func (Long) Type() string     { return "long" }
func (l Long) String() string { return fmt.Sprintf("%d", int64(l)) }

// Double is a 64-bit floating point value.
type Double float64

func (Double) Type() string     { return "double" }
func (d Double) String() string { return fmt.Sprintf("%g", float64(d)) }

// BigDecimal is an arbitrary-precision decimal value with explicit scale,
// backed by shopspring/decimal so that scale-preserving arithmetic, banker's
// rounding, and precision/exponent queries come from a vetted library
// instead of hand-rolled big.Int bookkeeping.
type BigDecimal struct {
	D decimal.Decimal
}

func NewBigDecimal(d decimal.Decimal) BigDecimal { return BigDecimal{D: d} }

func (BigDecimal) Type() string       { return "bigdecimal" }
func (b BigDecimal) String() string   { return b.D.String() }
func (b BigDecimal) Scale() int32     { return -b.D.Exponent() }
func (b BigDecimal) WithScale(s int32) BigDecimal {
	return BigDecimal{D: b.D.RoundBank(s)}
}

// Text is a UTF-8 string value.
type Text string

func (Text) Type() string     { return "text" }
func (t Text) String() string { return string(t) }

// State is a named, optionally coded value — a discrete status such as a
// sensor quality flag.
type State struct {
	Name string
	Code *int64 // nil when the state carries no numeric code
}

func (State) Type() string { return "state" }
func (s State) String() string {
	if s.Code != nil {
		return fmt.Sprintf("%s(%d)", s.Name, *s.Code)
	}
	return s.Name
}

// Stamp is a point-in-time timestamp value.
type Stamp struct{ T time.Time }

func (Stamp) Type() string     { return "stamp" }
func (s Stamp) String() string { return s.T.Format(time.RFC3339Nano) }

// Elapsed is a duration value, the result of subtracting two Stamps or the
// operand added to a Stamp.
type Elapsed struct{ D time.Duration }

func (Elapsed) Type() string     { return "elapsed" }
func (e Elapsed) String() string { return e.D.String() }

// Tuple is an ordered, fixed sequence of values, typically built on the
// stack via mark/unmark and consumed by container operations.
type Tuple struct{ Elems []Value }

func NewTuple(elems []Value) *Tuple { return &Tuple{Elems: elems} }

func (*Tuple) Type() string   { return "tuple" }
func (t *Tuple) String() string {
	return fmt.Sprintf("tuple(%d)", len(t.Elems))
}
func (t *Tuple) Len() int          { return len(t.Elems) }
func (t *Tuple) At(i int) Value    { return t.Elems[i] }

// Dict is an insertion-ordered mapping from string keys to Value. See
// value/dict.go for the swiss-table-backed implementation.
