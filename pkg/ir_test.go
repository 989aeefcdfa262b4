package alba

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopeBindRestore(t *testing.T) {
	s := NewScope()

	outer := &Slot{Name: "x"}
	inner := &Slot{Name: "x"}

	prev1, shadowed1 := s.Bind("x", outer)
	assert.False(t, shadowed1)
	assert.Equal(t, 1, s.Len())

	prev2, shadowed2 := s.Bind("x", inner)
	assert.True(t, shadowed2)
	assert.Equal(t, 1, s.Len())

	got, ok := s.Lookup("x")
	assert.True(t, ok)
	assert.Same(t, inner, got)

	s.Restore("x", prev2, shadowed2)

	got, ok = s.Lookup("x")
	assert.True(t, ok)
	assert.Same(t, outer, got)

	s.Restore("x", prev1, shadowed1)

	_, ok = s.Lookup("x")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestScopeHoldsFunctions(t *testing.T) {
	s := NewScope()

	fn := &Function{Name: "f", Params: []string{"n"}}
	s.Bind("f", fn)

	got, ok := s.Lookup("f")
	assert.True(t, ok)
	assert.Same(t, fn, got)
}

func TestLower(t *testing.T) {
	mod, err := NewBuilder().Lower(&Number{Value: 42})
	assert.NoError(t, err)
	assert.NotNil(t, mod)

	ir := mod.String()
	assert.Contains(t, ir, "define i64 @main()")
	assert.Contains(t, ir, "ret i64 42")
}

func TestLowerDeclTableReverts(t *testing.T) {
	b := NewBuilder()

	_, err := b.Lower(&Decl{
		Name:  "x",
		Value: &Number{Value: 1},
		Body: &Decl{
			Name:  "x",
			Value: &Number{Value: 2},
			Body:  &Ident{Name: "x"},
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, 0, b.scope.Len())
}

func TestLowerErrors(t *testing.T) {
	cases := []struct {
		name   string
		expr   Expr
		expect error
	}{
		{
			"unbound variable",
			&Ident{Name: "nope"},
			&UnboundVariableError{Name: "nope"},
		},
		{
			"assignment to an unbound variable",
			&Assign{Name: "nope", Value: &Number{Value: 1}},
			&UnboundVariableError{Name: "nope"},
		},
		{
			"unknown function",
			&Call{Name: "nope", Args: []Expr{&Number{Value: 1}}},
			&UnknownFunctionError{Name: "nope"},
		},
		{
			"calling a variable",
			&Decl{
				Name:  "v",
				Value: &Number{Value: 1},
				Body:  &Call{Name: "v", Args: []Expr{&Number{Value: 2}}},
			},
			&UnknownFunctionError{Name: "v"},
		},
		{
			"referencing a function as a value",
			&Decl{
				Name:   "f",
				Params: []string{"n"},
				Value:  &Ident{Name: "n"},
				Body:   &Ident{Name: "f"},
			},
			&UnboundVariableError{Name: "f"},
		},
		{
			"operator arity",
			&Call{Name: "+", Args: []Expr{&Number{Value: 1}}},
			&ArityMismatchError{Name: "+", Expected: 2, Got: 1},
		},
		{
			"print arity",
			&Call{Name: "print", Args: []Expr{&Number{Value: 1}, &Number{Value: 2}}},
			&ArityMismatchError{Name: "print", Expected: 1, Got: 2},
		},
		{
			"function arity",
			&Decl{
				Name:   "f",
				Params: []string{"a", "b"},
				Value:  &Ident{Name: "a"},
				Body:   &Call{Name: "f", Args: []Expr{&Number{Value: 1}}},
			},
			&ArityMismatchError{Name: "f", Expected: 2, Got: 1},
		},
		{
			"unreachable arm after the wildcard is still checked",
			&Match{
				Scrutinee: &Number{Value: 1},
				Arms: []MatchArm{
					{Wildcard: true, Body: &Number{Value: 1}},
					{Pattern: 0, Body: &Ident{Name: "nope"}},
				},
			},
			&UnboundVariableError{Name: "nope"},
		},
		{
			"match without a wildcard arm",
			&Match{
				Scrutinee: &Number{Value: 1},
				Arms: []MatchArm{
					{Pattern: 0, Body: &Number{Value: 1}},
					{Pattern: 1, Body: &Number{Value: 2}},
				},
			},
			&NonExhaustiveMatchError{Arms: 2},
		},
	}

	for _, c := range cases {
		_, err := NewBuilder().Lower(c.expr)
		assert.Equal(t, c.expect, err, c.name)
	}
}

func TestLowerClosureSignature(t *testing.T) {
	// A function declared under two live bindings captures both as trailing
	// pointer parameters.
	mod, err := NewBuilder().Lower(&Decl{
		Name:  "a",
		Value: &Number{Value: 1},
		Body: &Decl{
			Name:  "b",
			Value: &Number{Value: 2},
			Body: &Decl{
				Name:   "f",
				Params: []string{"n"},
				Value:  &Call{Name: "+", Args: []Expr{&Ident{Name: "n"}, &Ident{Name: "a"}}},
				Body:   &Call{Name: "f", Args: []Expr{&Number{Value: 3}}},
			},
		},
	})

	assert.NoError(t, err)

	var found bool
	for _, fn := range mod.Funcs {
		if fn.Name() != "f.1" {
			continue
		}

		found = true
		assert.Len(t, fn.Params, 3)
		assert.Equal(t, "i64", fn.Params[0].Typ.String())
		assert.Equal(t, "i64*", fn.Params[1].Typ.String())
		assert.Equal(t, "i64*", fn.Params[2].Typ.String())
	}

	assert.True(t, found)
}
