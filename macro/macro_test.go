package macro

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFormals(t *testing.T) {
	formals, err := ParseFormals("x=0, y!, z, ...")
	require.NoError(t, err)
	require.Len(t, formals, 4)
	require.Equal(t, Formal{Name: "x", Kind: Defaulted, Default: "0"}, formals[0])
	require.Equal(t, Formal{Name: "y", Kind: Required}, formals[1])
	require.Equal(t, Formal{Name: "z", Kind: Optional}, formals[2])
	require.Equal(t, Formal{Name: "...", Kind: Variadic}, formals[3])
}

func TestEllipsisMustBeLast(t *testing.T) {
	_, err := ParseFormals("..., x")
	require.Error(t, err)
	var e *EllipsisNotLastError
	require.ErrorAs(t, err, &e)
}

func TestMapDoubleExample(t *testing.T) {
	formals, err := ParseFormals("x=0")
	require.NoError(t, err)
	d := &Def{Key: "dbl(", Formals: formals, Body: "$x $x +"}

	bindings, err := d.Map([]string{"5"})
	require.NoError(t, err)
	require.Equal(t, "5", bindings["x"])
	require.Equal(t, "$5 $5 +", Expand(d.Body, bindings))
}

func TestMapMissingRequiredIsError(t *testing.T) {
	formals, err := ParseFormals("y!")
	require.NoError(t, err)
	d := &Def{Key: "m(", Formals: formals, Body: ""}
	_, err = d.Map(nil)
	require.Error(t, err)
	var e *MacroArgError
	require.ErrorAs(t, err, &e)
}

func TestMapVariadicConcatenatesTail(t *testing.T) {
	formals, err := ParseFormals("head, ...")
	require.NoError(t, err)
	d := &Def{Key: "m(", Formals: formals, Body: "X=head REST=..."}

	bindings, err := d.Map([]string{"a", "b", "c"})
	require.NoError(t, err)
	require.Equal(t, "a", bindings["head"])
	require.Equal(t, "b,c", bindings["..."])
}

func TestMapTooManyArgsWithoutVariadicIsError(t *testing.T) {
	formals, err := ParseFormals("x")
	require.NoError(t, err)
	d := &Def{Key: "m(", Formals: formals}
	_, err = d.Map([]string{"1", "2"})
	require.Error(t, err)
	var e *MacroArgsError
	require.ErrorAs(t, err, &e)
}
