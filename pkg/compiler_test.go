package alba

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompilerRun(t *testing.T) {
	var out bytes.Buffer
	c := NewCompiler()
	c.Stdout = &out

	result, err := c.Run("print (+ 40 2)")
	assert.NoError(t, err)
	assert.Equal(t, int64(42), result)
	assert.Equal(t, "42\n", out.String())
}

func TestCompilerErrors(t *testing.T) {
	cases := []struct {
		source string
		expect error
	}{
		{
			"@",
			&UnexpectedCharError{Char: '@', Loc: Location{Line: 1, Column: 1}},
		},
		{
			"decl x <-",
			&UnexpectedEOFError{Index: 3},
		},
		{
			"print missing",
			&UnboundVariableError{Name: "missing"},
		},
		{
			"match 1 with | 0 -> 1",
			&NonExhaustiveMatchError{Arms: 1},
		},
	}

	c := NewCompiler()
	for _, tc := range cases {
		_, err := c.CompileString(tc.source)
		assert.Equal(t, tc.expect, err, tc.source)
	}
}

func TestCompileStringProducesModule(t *testing.T) {
	c := NewCompiler()

	mod, err := c.CompileString("decl double n <- ( * n 2) in double 21")
	require.NoError(t, err)

	ir := mod.String()
	assert.Contains(t, ir, "define i64 @main()")
	assert.Contains(t, ir, "define i64 @double.1(i64 %n)")
	assert.Contains(t, ir, "declare i32 @printf(i8* %format, ...)")
}

func TestCompileIsDeterministic(t *testing.T) {
	source := "decl f n <- match n with | 0 -> 1 | _ -> ( * n (f (- n 1))) in f 5"

	c := NewCompiler()

	first, err := c.CompileString(source)
	require.NoError(t, err)

	second, err := c.CompileString(source)
	require.NoError(t, err)

	assert.Equal(t, first.String(), second.String())
}

func TestFormatRoundTrip(t *testing.T) {
	sources := []string{
		"42",
		"-5",
		"decl x <- 5 in x",
		"decl add a b <- (+ a b) in add 3 4",
		"x <- ( * 2 3)",
		"1; 2; 3",
		"print (& (< 1 2) (> 5 3))",
		"match n with | 0 -> 1 | _ -> (+ n 1)",
		"while (< i 10) do i <- (+ i 1) done",
		"decl x <- 1 in ((print x; decl x <- 2 in print x); print x)",
	}

	for _, source := range sources {
		first, err := NewParser(NewLexerFromString(source)).Run()
		require.NoError(t, err, source)

		second, err := NewParser(NewLexerFromString(Format(first))).Run()
		require.NoError(t, err, Format(first))

		assert.Equal(t, first, second, source)
	}
}
