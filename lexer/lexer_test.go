package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokens(t *testing.T, src string) []Token {
	l := New(src)
	var out []Token
	for {
		tok, err := l.Next()
		require.NoError(t, err)
		out = append(out, tok)
		if tok.Kind == EOF {
			return out
		}
	}
}

func TestLexerIdentAndKeyword(t *testing.T) {
	toks := tokens(t, "local x = foo")
	assert.Equal(t, Keyword, toks[0].Kind)
	assert.Equal(t, "local", toks[0].Text)
	assert.Equal(t, Ident, toks[1].Kind)
	assert.Equal(t, "x", toks[1].Text)
	assert.Equal(t, Op, toks[2].Kind)
	assert.Equal(t, "=", toks[2].Text)
	assert.Equal(t, Ident, toks[3].Kind)
	assert.Equal(t, "foo", toks[3].Text)
}

func TestLexerNumbers(t *testing.T) {
	toks := tokens(t, "1 2.5 0xFF 1e10 1.5e-3")
	for _, tok := range toks[:5] {
		assert.Equal(t, Number, tok.Kind)
	}
	assert.Equal(t, "1", toks[0].Text)
	assert.Equal(t, "2.5", toks[1].Text)
	assert.Equal(t, "0xFF", toks[2].Text)
	assert.Equal(t, "1e10", toks[3].Text)
	assert.Equal(t, "1.5e-3", toks[4].Text)
}

func TestLexerStrings(t *testing.T) {
	toks := tokens(t, `"hi\n" 'raw'`)
	raw, val := DecodeString(toks[0])
	assert.Equal(t, `"hi\n"`, raw)
	assert.Equal(t, "hi\n", val)
	_, val2 := DecodeString(toks[1])
	assert.Equal(t, "raw", val2)
}

func TestLexerDirectiveAndVararg(t *testing.T) {
	toks := tokens(t, "#eval ... #load")
	assert.Equal(t, Directive, toks[0].Kind)
	assert.Equal(t, "#eval", toks[0].Text)
	assert.Equal(t, Vararg, toks[1].Kind)
	assert.Equal(t, Directive, toks[2].Kind)
	assert.Equal(t, "#load", toks[2].Text)
}

func TestLexerUnknownDirective(t *testing.T) {
	l := New("#bogus")
	_, err := l.Next()
	require.Error(t, err)
}

func TestLexerCompoundOps(t *testing.T) {
	toks := tokens(t, "a += b ..= c")
	assert.Equal(t, "+=", toks[1].Text)
	assert.Equal(t, "..=", toks[3].Text)
}

func TestLexerComments(t *testing.T) {
	toks := tokens(t, "-- line comment\nx --[[ block\ncomment ]] = 1")
	assert.Equal(t, Ident, toks[0].Kind)
	assert.Equal(t, "x", toks[0].Text)
	assert.Equal(t, "=", toks[1].Text)
	assert.Equal(t, Number, toks[2].Kind)
}
