package value

import (
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// ConvertFailedError reports a widening or text-to-number conversion that
// could not be performed, e.g. parsing a non-numeric Text as BigDecimal.
type ConvertFailedError struct {
	From, To string
	Detail   string
}

func (e *ConvertFailedError) Error() string {
	return fmt.Sprintf("cannot convert %s to %s: %s", e.From, e.To, e.Detail)
}

// DivisionError reports division (or modulo) by zero.
type DivisionError struct{ Op string }

func (e *DivisionError) Error() string { return fmt.Sprintf("%s by zero", e.Op) }

// ScaleOverflowError reports a BigDecimal scale operation that would exceed
// the representable range.
type ScaleOverflowError struct{ Scale int32 }

func (e *ScaleOverflowError) Error() string {
	return fmt.Sprintf("scale overflow: %d", e.Scale)
}

// AsLong widens v to Long where possible (Long only; Double and BigDecimal
// are not narrowed implicitly, matching the widening-only ladder:
// Long -> Double -> BigDecimal).
func AsLong(v Value) (int64, bool) {
	l, ok := v.(Long)
	return int64(l), ok
}

// AsDouble widens v to Double: Long widens implicitly, Double passes
// through, BigDecimal converts via its float64 approximation.
func AsDouble(v Value) (float64, bool) {
	switch x := v.(type) {
	case Long:
		return float64(x), true
	case Double:
		return float64(x), true
	case BigDecimal:
		f, _ := x.D.Float64()
		return f, true
	}
	return 0, false
}

// AsBigDecimal widens v to BigDecimal: Long and Double convert exactly
// (Double via its decimal string form), BigDecimal passes through, and Text
// is parsed on demand (the "bigdec" conversion operation).
func AsBigDecimal(v Value) (decimal.Decimal, error) {
	switch x := v.(type) {
	case Long:
		return decimal.NewFromInt(int64(x)), nil
	case Double:
		return decimal.NewFromFloat(float64(x)), nil
	case BigDecimal:
		return x.D, nil
	case Text:
		d, err := decimal.NewFromString(string(x))
		if err != nil {
			return decimal.Decimal{}, &ConvertFailedError{From: "text", To: "bigdecimal", Detail: err.Error()}
		}
		return d, nil
	}
	return decimal.Decimal{}, &ConvertFailedError{From: v.Type(), To: "bigdecimal", Detail: "no widening path"}
}

// numericRank orders the widening ladder so Binary can pick the narrowest
// representation that covers both operands.
func numericRank(v Value) int {
	switch v.(type) {
	case Long:
		return 0
	case Double:
		return 1
	case BigDecimal:
		return 2
	default:
		return -1
	}
}

// Binary applies a +, -, *, /, %, rem, or mod operator (named by op, one of
// "+" "-" "*" "/" "%" "rem" "mod") to x and y, widening to the narrower
// representation that covers both.
func Binary(op string, x, y Value) (Value, error) {
	rx, ry := numericRank(x), numericRank(y)
	if rx < 0 || ry < 0 {
		return nil, &ConvertFailedError{From: x.Type() + "/" + y.Type(), To: "number", Detail: "not numeric"}
	}
	rank := rx
	if ry > rank {
		rank = ry
	}

	switch rank {
	case 0:
		return binaryLong(op, int64(x.(Long)), int64(y.(Long)))
	case 1:
		lx, _ := AsDouble(x)
		ly, _ := AsDouble(y)
		return binaryDouble(op, lx, ly)
	default:
		dx, err := AsBigDecimal(x)
		if err != nil {
			return nil, err
		}
		dy, err := AsBigDecimal(y)
		if err != nil {
			return nil, err
		}
		return binaryDecimal(op, dx, dy)
	}
}

func binaryLong(op string, x, y int64) (Value, error) {
	switch op {
	case "+":
		return Long(x + y), nil
	case "-":
		return Long(x - y), nil
	case "*":
		return Long(x * y), nil
	case "/":
		if y == 0 {
			return nil, &DivisionError{Op: "division"}
		}
		return Long(x / y), nil
	case "%", "rem":
		if y == 0 {
			return nil, &DivisionError{Op: "remainder"}
		}
		return Long(x % y), nil
	case "mod":
		if y == 0 {
			return nil, &DivisionError{Op: "modulo"}
		}
		m := x % y
		if (m < 0 && y > 0) || (m > 0 && y < 0) {
			m += y
		}
		return Long(m), nil
	}
	return nil, fmt.Errorf("unsupported long operator %q", op)
}

func binaryDouble(op string, x, y float64) (Value, error) {
	switch op {
	case "+":
		return Double(x + y), nil
	case "-":
		return Double(x - y), nil
	case "*":
		return Double(x * y), nil
	case "/":
		if y == 0 {
			return nil, &DivisionError{Op: "division"}
		}
		return Double(x / y), nil
	case "%", "rem":
		if y == 0 {
			return nil, &DivisionError{Op: "remainder"}
		}
		return Double(math.Mod(x, y)), nil
	case "mod":
		if y == 0 {
			return nil, &DivisionError{Op: "modulo"}
		}
		m := math.Mod(x, y)
		if (m < 0 && y > 0) || (m > 0 && y < 0) {
			m += y
		}
		return Double(m), nil
	}
	return nil, fmt.Errorf("unsupported double operator %q", op)
}

// binaryDecimal implements the BigDecimal arithmetic family, including the
// mod/rem sign law: mod's sign follows the divisor, rem's sign follows the
// dividend, both after normalizing the same way integer division is
// normalized, with (x div y)*y + (x rem y) == x.
func binaryDecimal(op string, x, y decimal.Decimal) (Value, error) {
	switch op {
	case "+":
		return BigDecimal{D: x.Add(y)}, nil
	case "-":
		return BigDecimal{D: x.Sub(y)}, nil
	case "*":
		return BigDecimal{D: x.Mul(y)}, nil
	case "/":
		if y.IsZero() {
			return nil, &DivisionError{Op: "division"}
		}
		scale := maxScale(x, y) + decimalDivisionPrecision
		// QuoRem truncates toward zero; the remainder decides the
		// half-even rounding of the last kept digit.
		q, r := x.QuoRem(y, scale)
		if !r.IsZero() {
			ulp := decimal.New(1, -scale)
			c := r.Abs().Mul(decimal.NewFromInt(2)).Cmp(y.Abs().Mul(ulp))
			if c > 0 || (c == 0 && q.Shift(scale).BigInt().Bit(0) == 1) {
				if x.Sign() != y.Sign() {
					ulp = ulp.Neg()
				}
				q = q.Add(ulp)
			}
		}
		return BigDecimal{D: q}, nil
	case "mod":
		if y.IsZero() {
			return nil, &DivisionError{Op: "modulo"}
		}
		m := x.Mod(y)
		if m.Sign() != 0 && m.Sign() != y.Sign() {
			m = m.Add(y)
		}
		return BigDecimal{D: m}, nil
	case "rem":
		if y.IsZero() {
			return nil, &DivisionError{Op: "remainder"}
		}
		return BigDecimal{D: x.Mod(y)}, nil
	}
	return nil, fmt.Errorf("unsupported bigdecimal operator %q", op)
}

// decimalDivisionPrecision is the number of extra fractional digits kept
// beyond the wider operand's scale when dividing (the library's default
// DivisionPrecision); the last kept digit is banker's-rounded.
const decimalDivisionPrecision = 16

func maxScale(x, y decimal.Decimal) int32 {
	sx, sy := -x.Exponent(), -y.Exponent()
	if sx > sy {
		return sx
	}
	return sy
}

// Compare reports whether x and y are equal, and orders them when =/<>
// is not the requested comparison. op is one of "=" (or "==") "<>" "<" "<="
// ">" ">=".
func Compare(op string, x, y Value) (bool, error) {
	if op == "=" || op == "==" || op == "<>" {
		eq, err := equalValues(x, y)
		if err != nil {
			return false, err
		}
		if op == "<>" {
			return !eq, nil
		}
		return eq, nil
	}

	rx, ry := numericRank(x), numericRank(y)
	if rx < 0 || ry < 0 {
		return false, &ConvertFailedError{From: x.Type() + "/" + y.Type(), To: "number", Detail: "not comparable"}
	}
	var c int
	if rx == 2 || ry == 2 {
		dx, err := AsBigDecimal(x)
		if err != nil {
			return false, err
		}
		dy, err := AsBigDecimal(y)
		if err != nil {
			return false, err
		}
		c = dx.Cmp(dy)
	} else {
		lx, _ := AsDouble(x)
		ly, _ := AsDouble(y)
		switch {
		case lx < ly:
			c = -1
		case lx > ly:
			c = 1
		}
	}

	switch op {
	case "<":
		return c < 0, nil
	case "<=":
		return c <= 0, nil
	case ">":
		return c > 0, nil
	case ">=":
		return c >= 0, nil
	}
	return false, fmt.Errorf("unsupported comparison operator %q", op)
}

func equalValues(x, y Value) (bool, error) {
	if rx, ry := numericRank(x), numericRank(y); rx >= 0 && ry >= 0 {
		c, err := Compare("<", x, y)
		if err != nil {
			return false, err
		}
		if c {
			return false, nil
		}
		c2, err := Compare(">", x, y)
		return !c2, err
	}
	switch xt := x.(type) {
	case Text:
		yt, ok := y.(Text)
		return ok && xt == yt, nil
	case Bool:
		yt, ok := y.(Bool)
		return ok && xt == yt, nil
	case State:
		yt, ok := y.(State)
		return ok && xt.Name == yt.Name, nil
	default:
		return false, &ConvertFailedError{From: x.Type(), To: y.Type(), Detail: "not comparable"}
	}
}

// ParseLong decodes a C-style integer literal: optional '+', "0x"/"0X" hex,
// leading-zero octal, or decimal.
func ParseLong(lit string) (int64, error) {
	s := lit
	if len(s) > 0 && s[0] == '+' {
		s = s[1:]
	}
	base := 10
	switch {
	case len(s) > 1 && (s[:2] == "0x" || s[:2] == "0X"):
		base = 16
		s = s[2:]
	case len(s) > 1 && s[0] == '0':
		base = 8
		s = s[1:]
	}
	return strconv.ParseInt(s, base, 64)
}

// ParseDouble decodes a floating point literal.
func ParseDouble(lit string) (float64, error) {
	return strconv.ParseFloat(lit, 64)
}
