package alba

import (
	"strconv"
	"strings"
)

// Expr is the expression tree built by the parser. Every node evaluates to a
// 64-bit integer.
type Expr interface{}

type Number struct {
	Value int64
}

type Ident struct {
	Name string
}

// Call covers builtin operators, print and user function application; which
// one it is gets decided by name resolution during code generation.
type Call struct {
	Name string
	Args []Expr
}

// Seq evaluates First, discards it, and yields Second.
type Seq struct {
	First  Expr
	Second Expr
}

// Assign stores into an existing binding and yields the stored value.
type Assign struct {
	Name  string
	Value Expr
}

// Decl introduces a binding visible only inside Body. With a non-empty
// parameter list the value is a function body, deferred until application.
type Decl struct {
	Name   string
	Params []string
	Value  Expr
	Body   Expr
}

type MatchArm struct {
	Wildcard bool
	Pattern  int64 // meaningful when Wildcard is false
	Body     Expr
}

// Match dispatches on an integer scrutinee; arms are ordered and the first
// matching one wins.
type Match struct {
	Scrutinee Expr
	Arms      []MatchArm
}

// While re-evaluates Body as long as Cond is non-zero. Its value is 0.
type While struct {
	Cond Expr
	Body Expr
}

// Format renders an expression as parseable source. Composite expressions are
// fully parenthesized, so re-parsing the output yields a structurally equal
// tree.
func Format(expr Expr) string {
	var sb strings.Builder
	format(&sb, expr)
	return sb.String()
}

func format(sb *strings.Builder, expr Expr) {
	switch e := expr.(type) {
	case *Number:
		sb.WriteString(strconv.FormatInt(e.Value, 10))
	case *Ident:
		sb.WriteString(e.Name)
	case *Call:
		sb.WriteString("(")
		if e.Name == "*" {
			// "(*" would open a comment.
			sb.WriteString(" ")
		}
		sb.WriteString(e.Name)
		for _, arg := range e.Args {
			sb.WriteString(" ")
			format(sb, arg)
		}
		sb.WriteString(")")
	case *Seq:
		sb.WriteString("(")
		format(sb, e.First)
		sb.WriteString("; ")
		format(sb, e.Second)
		sb.WriteString(")")
	case *Assign:
		sb.WriteString("(")
		sb.WriteString(e.Name)
		sb.WriteString(" <- ")
		format(sb, e.Value)
		sb.WriteString(")")
	case *Decl:
		sb.WriteString("(decl ")
		sb.WriteString(e.Name)
		for _, p := range e.Params {
			sb.WriteString(" ")
			sb.WriteString(p)
		}
		sb.WriteString(" <- ")
		format(sb, e.Value)
		sb.WriteString(" in ")
		format(sb, e.Body)
		sb.WriteString(")")
	case *Match:
		sb.WriteString("(match ")
		format(sb, e.Scrutinee)
		sb.WriteString(" with")
		for _, arm := range e.Arms {
			sb.WriteString(" | ")
			if arm.Wildcard {
				sb.WriteString("_")
			} else {
				sb.WriteString(strconv.FormatInt(arm.Pattern, 10))
			}
			sb.WriteString(" -> ")
			format(sb, arm.Body)
		}
		sb.WriteString(")")
	case *While:
		sb.WriteString("(while ")
		format(sb, e.Cond)
		sb.WriteString(" do ")
		format(sb, e.Body)
		sb.WriteString(" done)")
	}
}
