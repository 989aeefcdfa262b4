package alba

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"go.alba.dev/internal/test"
)

func TestLexer(t *testing.T) {
	cases := []struct {
		data   string
		fail   bool
		expect []Token
	}{
		{
			"decl x <- 5 in x",
			false,
			[]Token{
				{TokenDecl, "decl", 0},
				{TokenIdentifier, "x", 0},
				{TokenAssign, "<-", 0},
				{TokenInt, "5", 5},
				{TokenIn, "in", 0},
				{TokenIdentifier, "x", 0},
			},
		},
		{
			"print (+ 2 3)",
			false,
			[]Token{
				{TokenPrint, "print", 0},
				{TokenParenL, "(", 0},
				{TokenPlus, "+", 0},
				{TokenInt, "2", 2},
				{TokenInt, "3", 3},
				{TokenParenR, ")", 0},
			},
		},
		{
			// A minus glued to digits is a negative literal; separated it
			// is the subtraction operator.
			"-5",
			false,
			[]Token{
				{TokenInt, "-5", -5},
			},
		},
		{
			"- 5",
			false,
			[]Token{
				{TokenMinus, "-", 0},
				{TokenInt, "5", 5},
			},
		},
		{
			// Maximal munch: the assign operator absorbs trailing
			// identifier characters into a single identifier.
			"<-x",
			false,
			[]Token{
				{TokenIdentifier, "<-x", 0},
			},
		},
		{
			"<- x",
			false,
			[]Token{
				{TokenAssign, "<-", 0},
				{TokenIdentifier, "x", 0},
			},
		},
		{
			"match n with | 0 -> 1 | _ -> 2",
			false,
			[]Token{
				{TokenMatch, "match", 0},
				{TokenIdentifier, "n", 0},
				{TokenWith, "with", 0},
				{TokenPipe, "|", 0},
				{TokenInt, "0", 0},
				{TokenArrow, "->", 0},
				{TokenInt, "1", 1},
				{TokenPipe, "|", 0},
				{TokenUnderscore, "_", 0},
				{TokenArrow, "->", 0},
				{TokenInt, "2", 2},
			},
		},
		{
			"while x do x <- (- x 1) done",
			false,
			[]Token{
				{TokenWhile, "while", 0},
				{TokenIdentifier, "x", 0},
				{TokenDo, "do", 0},
				{TokenIdentifier, "x", 0},
				{TokenAssign, "<-", 0},
				{TokenParenL, "(", 0},
				{TokenMinus, "-", 0},
				{TokenIdentifier, "x", 0},
				{TokenInt, "1", 1},
				{TokenParenR, ")", 0},
				{TokenDone, "done", 0},
			},
		},
		{
			// Any Unicode whitespace separates tokens.
			"x y z",
			false,
			[]Token{
				{TokenIdentifier, "x", 0},
				{TokenIdentifier, "y", 0},
				{TokenIdentifier, "z", 0},
			},
		},
		{
			"únicóIdentifiersÀreVàlid",
			false,
			[]Token{
				{TokenIdentifier, "únicóIdentifiersÀreVàlid", 0},
			},
		},
		{
			"a; b",
			false,
			[]Token{
				{TokenIdentifier, "a", 0},
				{TokenSemicolon, ";", 0},
				{TokenIdentifier, "b", 0},
			},
		},
		{
			"x (* this is a comment *) y",
			false,
			[]Token{
				{TokenIdentifier, "x", 0},
				{TokenIdentifier, "y", 0},
			},
		},
		{
			"x (* outer (* inner *) still outer *) y",
			false,
			[]Token{
				{TokenIdentifier, "x", 0},
				{TokenIdentifier, "y", 0},
			},
		},
		{
			"(* unterminated",
			true,
			nil,
		},
		{
			"(* closed once (* but not twice *)",
			true,
			nil,
		},
		{
			"@",
			true,
			nil,
		},
		{
			"123abc",
			true,
			nil,
		},
		{
			"{",
			true,
			nil,
		},
	}

	for _, c := range cases {
		r := strings.NewReader(c.data)
		l, err := NewLexerFromReader(r)
		assert.NoError(t, err)

		toks, err := l.RunBlocking()
		if c.fail {
			assert.Error(t, err, c.data)
		}

		assert.Equal(t, c.expect, toks, c.data)
	}
}

func TestLexerCommentContentsAreFreeForm(t *testing.T) {
	// Anything may appear between (* and *), including runes the token
	// alphabet rejects outside a comment.
	toks, err := NewLexerFromString("x (* ? @ { :: \"quoted\" 😀 *) y").RunBlocking()
	assert.NoError(t, err)
	assert.Equal(t, []Token{
		{TokenIdentifier, "x", 0},
		{TokenIdentifier, "y", 0},
	}, toks)
}

func TestLexerCommentsAreInvisible(t *testing.T) {
	// A commented source produces exactly the tokens of the same source
	// with the comments removed. Nesting included.
	withComments := "decl x <- (* bound (* twice? no *) once *) 5 in print x (* trailing *)"
	without := "decl x <- 5 in print x"

	a, err := NewLexerFromString(withComments).RunBlocking()
	assert.NoError(t, err)

	b, err := NewLexerFromString(without).RunBlocking()
	assert.NoError(t, err)

	assert.Equal(t, b, a)
}

func TestLexerErrors(t *testing.T) {
	cases := []struct {
		data   string
		expect error
	}{
		{
			"@",
			&UnexpectedCharError{Char: '@', Loc: Location{Line: 1, Column: 1}},
		},
		{
			"x {",
			&InvalidTokenStartError{Char: '{', Loc: Location{Line: 1, Column: 3}},
		},
		{
			"123abc",
			&InvalidTokenError{Lexeme: "123a", Loc: Location{Line: 1, Column: 4}},
		},
		{
			"(* left open",
			&UnterminatedCommentError{Loc: Location{Line: 1, Column: 1}},
		},
	}

	for _, c := range cases {
		l := NewLexerFromString(c.data)
		_, err := l.RunBlocking()

		assert.Equal(t, c.expect, err, c.data)
	}
}

func TestLexerStreaming(t *testing.T) {
	l := NewLexerFromString("print 1")
	go l.Do()

	assert.Equal(t, Token{TokenPrint, "print", 0}, l.Get())
	assert.Equal(t, Token{TokenInt, "1", 1}, l.Get())
	assert.Equal(t, Token{Typ: TokenEOF}, l.Get())
}

func TestLexerStreamingError(t *testing.T) {
	l := NewLexerFromString("@")
	go l.Do()

	tok := l.Get()
	assert.Equal(t, TokenError, tok.Typ)
	assert.Error(t, l.Err())
}

// Use a package-level variable to avoid compiler optimisation
var benchResult []Token

func benchmarkLexer(size int, b *testing.B) {
	for n := 0; n < b.N; n++ {
		// Setup
		b.StopTimer()
		data := test.GetRandomTokens(size)
		l := NewLexerFromString(data)

		var err error
		b.StartTimer()

		benchResult, err = l.RunBlocking()
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLexer100(b *testing.B) {
	benchmarkLexer(100, b)
}

func BenchmarkLexer1000(b *testing.B) {
	benchmarkLexer(1000, b)
}

func BenchmarkLexer10000(b *testing.B) {
	benchmarkLexer(10000, b)
}

func BenchmarkLexer100000(b *testing.B) {
	benchmarkLexer(100000, b)
}

func BenchmarkLexer1000000(b *testing.B) {
	benchmarkLexer(1000000, b)
}
