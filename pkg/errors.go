package alba

import "fmt"

// Lexical errors carry the 1-based source position they were detected at.

type UnexpectedCharError struct {
	Char rune
	Loc  Location
}

func (e *UnexpectedCharError) Error() string {
	return fmt.Sprintf("%d:%d: unexpected character %q", e.Loc.Line, e.Loc.Column, e.Char)
}

type InvalidTokenStartError struct {
	Char rune
	Loc  Location
}

func (e *InvalidTokenStartError) Error() string {
	return fmt.Sprintf("%d:%d: no token may start with %q", e.Loc.Line, e.Loc.Column, e.Char)
}

type InvalidTokenError struct {
	Lexeme string
	Loc    Location
}

func (e *InvalidTokenError) Error() string {
	return fmt.Sprintf("%d:%d: invalid token %q", e.Loc.Line, e.Loc.Column, e.Lexeme)
}

type UnterminatedCommentError struct {
	Loc Location
}

func (e *UnterminatedCommentError) Error() string {
	return fmt.Sprintf("%d:%d: unterminated comment", e.Loc.Line, e.Loc.Column)
}

// Syntax errors are tagged with the index of the offending token.

type UnexpectedTokenError struct {
	Index int
	Token Token
}

func (e *UnexpectedTokenError) Error() string {
	return fmt.Sprintf("unexpected token %q at index %d", e.Token.Value, e.Index)
}

type UnexpectedEOFError struct {
	Index int
}

func (e *UnexpectedEOFError) Error() string {
	return fmt.Sprintf("unexpected end of input after %d tokens", e.Index)
}

// Code generation errors.

type UnboundVariableError struct {
	Name string
}

func (e *UnboundVariableError) Error() string {
	return fmt.Sprintf("unbound variable %q", e.Name)
}

type UnknownFunctionError struct {
	Name string
}

func (e *UnknownFunctionError) Error() string {
	return fmt.Sprintf("unknown function %q", e.Name)
}

type ArityMismatchError struct {
	Name     string
	Expected int
	Got      int
}

func (e *ArityMismatchError) Error() string {
	return fmt.Sprintf("%q expects %d arguments, got %d", e.Name, e.Expected, e.Got)
}

type NonExhaustiveMatchError struct {
	Arms int
}

func (e *NonExhaustiveMatchError) Error() string {
	return fmt.Sprintf("match with %d arms has no wildcard arm", e.Arms)
}

// Driver errors wrap the external toolchain's output.

type BackendError struct {
	Output string
	Err    error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend failed: %v: %s", e.Err, e.Output)
}

func (e *BackendError) Unwrap() error { return e.Err }

type LinkError struct {
	Output string
	Err    error
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("link failed: %v: %s", e.Err, e.Output)
}

func (e *LinkError) Unwrap() error { return e.Err }
