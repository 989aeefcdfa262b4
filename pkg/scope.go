package alba

import (
	"github.com/llir/llvm/ir"
)

// Slot identifies one integer storage cell. The scope deals only in slot
// identities; each lowering unit materializes a slot as its own IR value (an
// alloca in the unit that created it, a pointer parameter in units that
// captured it).
type Slot struct {
	Name string
}

// Function is the binding produced by a declaration with parameters. It
// remembers the slots live in the enclosing unit at declaration time: the
// closure snapshot. Invocations read those slots by reference through
// trailing pointer parameters, never by re-walking a live scope.
type Function struct {
	Name     string
	Fn       *ir.Func
	Params   []string
	Captured []*Slot
}

// Binding is either a *Slot or a *Function.
type Binding interface{}

// Scope maps names to bindings. It has no intrinsic nesting: a declaration
// binds a name and keeps whatever was shadowed, and restores it exactly once
// when its body is left. Repeated same-named declarations therefore unwind
// correctly as long as restores happen in reverse binding order.
type Scope struct {
	vals map[string]Binding
}

func NewScope() *Scope {
	return &Scope{
		vals: make(map[string]Binding),
	}
}

func (s *Scope) Lookup(name string) (Binding, bool) {
	b, ok := s.vals[name]
	return b, ok
}

// Bind maps name to b and returns what it shadowed, for Restore.
func (s *Scope) Bind(name string, b Binding) (prev Binding, shadowed bool) {
	prev, shadowed = s.vals[name]
	s.vals[name] = b
	return prev, shadowed
}

// Restore reinstates the binding returned by Bind, removing the name
// entirely if it was unbound before.
func (s *Scope) Restore(name string, prev Binding, shadowed bool) {
	if shadowed {
		s.vals[name] = prev
	} else {
		delete(s.vals, name)
	}
}

// Len reports the number of live bindings, which tests use to prove that
// declaration bodies leave the table exactly as they found it.
func (s *Scope) Len() int {
	return len(s.vals)
}
