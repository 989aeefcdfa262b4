package alba

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// Builder lowers an expression tree into an LLVM IR module with a synthetic
// i64 main function. A Builder lowers a single program; it is not reusable.
//
// The unit-local state (current function, insertion block, slot
// materializations) is swapped and restored around each function body; only
// the scope is shared across units, because slot identities are
// unit-independent.
type Builder struct {
	mod   *ir.Module
	fn    *ir.Func
	entry *ir.Block
	block *ir.Block

	scope *Scope
	slots map[*Slot]value.Value // where each live slot lives in the current unit
	live  []*Slot               // creation-ordered live slots, the capture set

	printf *ir.Func
	fmtPtr constant.Constant

	fnID int
}

func NewBuilder() *Builder {
	b := &Builder{
		mod:   ir.NewModule(),
		scope: NewScope(),
		slots: make(map[*Slot]value.Value),
	}

	defineBuiltins(b)
	return b
}

// Module exposes the module under construction, useful for inspecting the
// generated IR.
func (b *Builder) Module() *ir.Module {
	return b.mod
}

// Lower compiles the program into the module and returns it.
func (b *Builder) Lower(expr Expr) (*ir.Module, error) {
	main := b.mod.NewFunc("main", types.I64)
	b.fn = main
	b.entry = main.NewBlock("entry")
	b.block = b.entry

	result, err := b.lower(expr)
	if err != nil {
		return nil, err
	}

	b.block.NewRet(result)
	return b.mod, nil
}

func (b *Builder) lower(expr Expr) (value.Value, error) {
	switch e := expr.(type) {
	case *Number:
		return constant.NewInt(types.I64, e.Value), nil

	case *Ident:
		slot, err := b.lookupSlot(e.Name)
		if err != nil {
			return nil, err
		}

		return b.block.NewLoad(types.I64, b.slots[slot]), nil

	case *Assign:
		val, err := b.lower(e.Value)
		if err != nil {
			return nil, err
		}

		slot, err := b.lookupSlot(e.Name)
		if err != nil {
			return nil, err
		}

		b.block.NewStore(val, b.slots[slot])
		return val, nil

	case *Seq:
		if _, err := b.lower(e.First); err != nil {
			return nil, err
		}

		return b.lower(e.Second)

	case *Decl:
		if len(e.Params) == 0 {
			return b.lowerVarDecl(e)
		}

		return b.lowerFuncDecl(e)

	case *Call:
		return b.lowerCall(e)

	case *Match:
		return b.lowerMatch(e)

	case *While:
		return b.lowerWhile(e)

	default:
		return nil, fmt.Errorf("cannot lower expression %T", expr)
	}
}

func (b *Builder) lookupSlot(name string) (*Slot, error) {
	bind, ok := b.scope.Lookup(name)
	if !ok {
		return nil, &UnboundVariableError{Name: name}
	}

	slot, ok := bind.(*Slot)
	if !ok {
		// The name denotes a function, which has no storage cell.
		return nil, &UnboundVariableError{Name: name}
	}

	return slot, nil
}

// lowerVarDecl evaluates the value eagerly, stores it in a fresh stack slot,
// and lowers the body with the name rebound. The prior binding is restored
// exactly once, whether or not the body lowers cleanly.
func (b *Builder) lowerVarDecl(e *Decl) (value.Value, error) {
	val, err := b.lower(e.Value)
	if err != nil {
		return nil, err
	}

	slot := &Slot{Name: e.Name}
	ptr := b.entry.NewAlloca(types.I64)
	b.block.NewStore(val, ptr)

	b.slots[slot] = ptr
	b.live = append(b.live, slot)
	prev, shadowed := b.scope.Bind(e.Name, slot)
	defer func() {
		b.scope.Restore(e.Name, prev, shadowed)
		b.live = b.live[:len(b.live)-1]
		delete(b.slots, slot)
	}()

	return b.lower(e.Body)
}

// lowerFuncDecl lowers the deferred value as a standalone function unit and
// binds the resulting function for the extent of the body. The function's IR
// signature is its declared parameters followed by one i64 pointer per
// captured slot.
func (b *Builder) lowerFuncDecl(e *Decl) (value.Value, error) {
	captured := make([]*Slot, len(b.live))
	copy(captured, b.live)

	params := make([]*ir.Param, 0, len(e.Params)+len(captured))
	for _, name := range e.Params {
		params = append(params, ir.NewParam(name, types.I64))
	}
	for range captured {
		params = append(params, ir.NewParam("", types.NewPointer(types.I64)))
	}

	b.fnID++
	fn := b.mod.NewFunc(fmt.Sprintf("%s.%d", e.Name, b.fnID), types.I64, params...)
	binding := &Function{
		Name:     e.Name,
		Fn:       fn,
		Params:   e.Params,
		Captured: captured,
	}

	if err := b.lowerFuncUnit(e, fn, binding, captured); err != nil {
		return nil, err
	}

	prev, shadowed := b.scope.Bind(e.Name, binding)
	defer b.scope.Restore(e.Name, prev, shadowed)

	return b.lower(e.Body)
}

// lowerFuncUnit compiles the function's body expression inside its own unit.
// Captured slots materialize as the trailing pointer parameters and stay
// live, so functions declared deeper down can capture them in turn. The
// function's own name is visible inside the body to allow recursion.
func (b *Builder) lowerFuncUnit(e *Decl, fn *ir.Func, binding *Function, captured []*Slot) error {
	prevFn, prevEntry, prevBlock := b.fn, b.entry, b.block
	prevSlots, prevLive := b.slots, b.live
	defer func() {
		b.fn, b.entry, b.block = prevFn, prevEntry, prevBlock
		b.slots, b.live = prevSlots, prevLive
	}()

	b.fn = fn
	b.entry = fn.NewBlock("entry")
	b.block = b.entry
	b.slots = make(map[*Slot]value.Value, len(captured)+len(e.Params))
	b.live = nil

	for i, slot := range captured {
		b.slots[slot] = fn.Params[len(e.Params)+i]
		b.live = append(b.live, slot)
	}

	prevSelf, selfShadowed := b.scope.Bind(e.Name, binding)
	defer b.scope.Restore(e.Name, prevSelf, selfShadowed)

	type saved struct {
		name     string
		prev     Binding
		shadowed bool
	}
	var restores []saved
	defer func() {
		for i := len(restores) - 1; i >= 0; i-- {
			b.scope.Restore(restores[i].name, restores[i].prev, restores[i].shadowed)
		}
	}()

	for i, name := range e.Params {
		slot := &Slot{Name: name}
		ptr := b.entry.NewAlloca(types.I64)
		b.block.NewStore(fn.Params[i], ptr)

		b.slots[slot] = ptr
		b.live = append(b.live, slot)
		prev, shadowed := b.scope.Bind(name, slot)
		restores = append(restores, saved{name, prev, shadowed})
	}

	result, err := b.lower(e.Value)
	if err != nil {
		return err
	}

	b.block.NewRet(result)
	return nil
}

func (b *Builder) lowerCall(e *Call) (value.Value, error) {
	if e.Name == "print" {
		if len(e.Args) != 1 {
			return nil, &ArityMismatchError{Name: "print", Expected: 1, Got: len(e.Args)}
		}

		arg, err := b.lower(e.Args[0])
		if err != nil {
			return nil, err
		}

		return b.lowerPrint(arg), nil
	}

	if op, ok := builtinOps[e.Name]; ok {
		if len(e.Args) != 2 {
			return nil, &ArityMismatchError{Name: e.Name, Expected: 2, Got: len(e.Args)}
		}

		x, err := b.lower(e.Args[0])
		if err != nil {
			return nil, err
		}
		y, err := b.lower(e.Args[1])
		if err != nil {
			return nil, err
		}

		return op(b, x, y), nil
	}

	bind, ok := b.scope.Lookup(e.Name)
	if !ok {
		return nil, &UnknownFunctionError{Name: e.Name}
	}

	fn, ok := bind.(*Function)
	if !ok {
		return nil, &UnknownFunctionError{Name: e.Name}
	}

	if len(e.Args) != len(fn.Params) {
		return nil, &ArityMismatchError{Name: e.Name, Expected: len(fn.Params), Got: len(e.Args)}
	}

	args := make([]value.Value, 0, len(e.Args)+len(fn.Captured))
	for _, arg := range e.Args {
		val, err := b.lower(arg)
		if err != nil {
			return nil, err
		}

		args = append(args, val)
	}

	for _, slot := range fn.Captured {
		ptr, ok := b.slots[slot]
		if !ok {
			return nil, &UnboundVariableError{Name: slot.Name}
		}

		args = append(args, ptr)
	}

	return b.block.NewCall(fn.Fn, args...), nil
}

// lowerMatch emits a first-match-wins chain of compare-and-branch blocks
// writing a shared result slot. Exhaustiveness is enforced here: without a
// wildcard arm no finite set of integer patterns covers the scrutinee.
func (b *Builder) lowerMatch(e *Match) (value.Value, error) {
	wildcard := false
	for _, arm := range e.Arms {
		if arm.Wildcard {
			wildcard = true
			break
		}
	}
	if !wildcard {
		return nil, &NonExhaustiveMatchError{Arms: len(e.Arms)}
	}

	scrutinee, err := b.lower(e.Scrutinee)
	if err != nil {
		return nil, err
	}

	result := b.entry.NewAlloca(types.I64)
	end := b.fn.NewBlock("")

	seenWildcard := false
	for _, arm := range e.Arms {
		body := b.fn.NewBlock("")

		var next *ir.Block
		if seenWildcard {
			// The wildcard took every remaining value, so this arm's block
			// gets no predecessor. It is still lowered: a bad arm fails
			// code generation even when it cannot be reached.
		} else if arm.Wildcard {
			b.block.NewBr(body)
			seenWildcard = true
		} else {
			next = b.fn.NewBlock("")
			cond := b.block.NewICmp(enum.IPredEQ, scrutinee, constant.NewInt(types.I64, arm.Pattern))
			b.block.NewCondBr(cond, body, next)
		}

		b.block = body
		val, err := b.lower(arm.Body)
		if err != nil {
			return nil, err
		}

		b.block.NewStore(val, result)
		b.block.NewBr(end)

		if next != nil {
			b.block = next
		}
	}

	b.block = end
	return b.block.NewLoad(types.I64, result), nil
}

func (b *Builder) lowerWhile(e *While) (value.Value, error) {
	guard := b.fn.NewBlock("")
	body := b.fn.NewBlock("")
	end := b.fn.NewBlock("")

	b.block.NewBr(guard)

	b.block = guard
	cond, err := b.lower(e.Cond)
	if err != nil {
		return nil, err
	}
	nonzero := b.block.NewICmp(enum.IPredNE, cond, constant.NewInt(types.I64, 0))
	b.block.NewCondBr(nonzero, body, end)

	b.block = body
	if _, err := b.lower(e.Body); err != nil {
		return nil, err
	}
	b.block.NewBr(guard)

	b.block = end
	return constant.NewInt(types.I64, 0), nil
}
