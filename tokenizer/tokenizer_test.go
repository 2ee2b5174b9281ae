package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xapiens/rpn/macro"
	"github.com/xapiens/rpn/token"
)

func allTokens(t *testing.T, tz *Tokenizer) []token.Token {
	t.Helper()
	var toks []token.Token
	for {
		tok, err := tz.Next()
		require.NoError(t, err)
		if tok.Kind == token.EOF {
			break
		}
		toks = append(toks, tok)
	}
	return toks
}

func namesOf(toks []token.Token) []string {
	names := make([]string, len(toks))
	for i, t := range toks {
		names[i] = t.String()
	}
	return names
}

func TestWhitespaceRoundTrip(t *testing.T) {
	tight := New("t", "2 3 +", nil, 32)
	spaced := New("t", "  2\t3 /* hi */ +  \n", nil, 32)

	require.Equal(t, namesOf(allTokens(t, tight)), namesOf(allTokens(t, spaced)))
}

func TestForthCommentSkipped(t *testing.T) {
	tz := New("t", "2 ( stack comment ) 3 +", nil, 32)
	toks := allTokens(t, tz)
	require.Len(t, toks, 3)
}

func TestVariableAccessToken(t *testing.T) {
	tz := New("t", "$1 $2 +", nil, 32)
	toks := allTokens(t, tz)
	require.Len(t, toks, 3)
	require.Equal(t, token.VariableAction, toks[0].Kind)
	require.Equal(t, 1, toks[0].Var.Index)
	require.Equal(t, token.Input, toks[0].Var.Kind)
}

func TestMacroExpansionDbl(t *testing.T) {
	formals, err := macro.ParseFormals("x=0")
	require.NoError(t, err)
	def := &macro.Def{Key: "dbl(", Formals: formals, Body: "$x $x +"}

	tz := New("t", "dbl(5)", map[string]*macro.Def{"dbl(": def}, 32)
	toks := allTokens(t, tz)
	require.Equal(t, []string{"$5", "$5", "+"}, namesOf(toks))
}

func TestMacroLoopLimitExceeded(t *testing.T) {
	def := &macro.Def{Key: "loop", Body: "loop"}
	tz := New("t", "loop", map[string]*macro.Def{"loop": def}, 4)

	_, err := allTokensErr(tz)
	require.Error(t, err)
	var limit *LoopLimitError
	require.ErrorAs(t, err, &limit)
}

func allTokensErr(tz *Tokenizer) ([]token.Token, error) {
	var toks []token.Token
	for {
		tok, err := tz.Next()
		if err != nil {
			return toks, err
		}
		if tok.Kind == token.EOF {
			return toks, nil
		}
		toks = append(toks, tok)
	}
}

func TestBeginEndDefTokens(t *testing.T) {
	tz := New("t", ": sq dup * ; 4 sq", nil, 32)
	toks := allTokens(t, tz)
	require.Equal(t, token.BeginDef, toks[0].Kind)
	require.Equal(t, token.OtherName, toks[1].Kind)
	require.Equal(t, "sq", toks[1].Name)
	require.Equal(t, token.EndDef, toks[4].Kind)
}
