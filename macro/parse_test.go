package macro

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDefParameterized(t *testing.T) {
	d, err := ParseDef("dbl(x=0) $x $x +")
	require.NoError(t, err)
	require.Equal(t, "dbl(", d.Key)
	require.Equal(t, "$x $x +", d.Body)
	require.Len(t, d.Formals, 1)
	require.Equal(t, "x", d.Formals[0].Name)
	require.Equal(t, Defaulted, d.Formals[0].Kind)
	require.Equal(t, "0", d.Formals[0].Default)
}

func TestParseDefParameterless(t *testing.T) {
	d, err := ParseDef("greet hello world")
	require.NoError(t, err)
	require.Equal(t, "greet", d.Key)
	require.Equal(t, "hello world", d.Body)
	require.True(t, d.Parameterless())
}

func TestParseDefEmptyName(t *testing.T) {
	_, err := ParseDef("(x) body")
	require.Error(t, err)
}

func TestParseDefUnterminatedParamList(t *testing.T) {
	_, err := ParseDef("dbl(x=0 $x $x +")
	require.Error(t, err)
}
