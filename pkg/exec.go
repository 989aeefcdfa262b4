package alba

import (
	"fmt"
	"io"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/value"
)

// word is one runtime value: an integer, or the address of a storage cell
// when the operand has pointer type.
type word struct {
	n   int64
	ptr *int64
}

// Engine executes a lowered module in process: the immediate counterpart to
// handing the module to the native backend. It walks blocks and dispatches
// over exactly the instruction set the Builder emits; printf calls are routed
// to the configured writer in emission order.
type Engine struct {
	mod *ir.Module
	out io.Writer
}

func NewEngine(mod *ir.Module, out io.Writer) *Engine {
	return &Engine{
		mod: mod,
		out: out,
	}
}

// Run executes the module's main function and returns its result.
func (e *Engine) Run() (int64, error) {
	for _, f := range e.mod.Funcs {
		if f.Name() == "main" {
			return e.call(f, nil)
		}
	}

	return 0, fmt.Errorf("module has no main function")
}

func (e *Engine) call(f *ir.Func, args []word) (int64, error) {
	if len(f.Blocks) == 0 {
		return 0, fmt.Errorf("call to external function %q", f.Name())
	}
	if len(args) != len(f.Params) {
		return 0, fmt.Errorf("%q called with %d arguments, want %d", f.Name(), len(args), len(f.Params))
	}

	frame := make(map[value.Value]word, 2*len(f.Params)+8)
	for i, p := range f.Params {
		frame[p] = args[i]
	}

	blk := f.Blocks[0]
	for {
		for _, inst := range blk.Insts {
			if err := e.step(frame, inst); err != nil {
				return 0, err
			}
		}

		switch t := blk.Term.(type) {
		case *ir.TermRet:
			if t.X == nil {
				return 0, nil
			}
			w, err := e.resolve(frame, t.X)
			return w.n, err

		case *ir.TermBr:
			blk = t.Target.(*ir.Block)

		case *ir.TermCondBr:
			c, err := e.resolve(frame, t.Cond)
			if err != nil {
				return 0, err
			}
			if c.n != 0 {
				blk = t.TargetTrue.(*ir.Block)
			} else {
				blk = t.TargetFalse.(*ir.Block)
			}

		default:
			return 0, fmt.Errorf("unsupported terminator %T", blk.Term)
		}
	}
}

func (e *Engine) step(frame map[value.Value]word, inst ir.Instruction) error {
	switch in := inst.(type) {
	case *ir.InstAlloca:
		frame[in] = word{ptr: new(int64)}

	case *ir.InstLoad:
		src, err := e.resolve(frame, in.Src)
		if err != nil {
			return err
		}
		if src.ptr == nil {
			return fmt.Errorf("load through a non-pointer value")
		}
		frame[in] = word{n: *src.ptr}

	case *ir.InstStore:
		val, err := e.resolve(frame, in.Src)
		if err != nil {
			return err
		}
		dst, err := e.resolve(frame, in.Dst)
		if err != nil {
			return err
		}
		if dst.ptr == nil {
			return fmt.Errorf("store through a non-pointer value")
		}
		*dst.ptr = val.n

	case *ir.InstAdd:
		return e.binary(frame, in, in.X, in.Y, func(x, y int64) (int64, error) { return x + y, nil })
	case *ir.InstSub:
		return e.binary(frame, in, in.X, in.Y, func(x, y int64) (int64, error) { return x - y, nil })
	case *ir.InstMul:
		return e.binary(frame, in, in.X, in.Y, func(x, y int64) (int64, error) { return x * y, nil })
	case *ir.InstSDiv:
		return e.binary(frame, in, in.X, in.Y, func(x, y int64) (int64, error) {
			if y == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			return x / y, nil
		})
	case *ir.InstSRem:
		return e.binary(frame, in, in.X, in.Y, func(x, y int64) (int64, error) {
			if y == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			return x % y, nil
		})
	case *ir.InstAnd:
		return e.binary(frame, in, in.X, in.Y, func(x, y int64) (int64, error) { return x & y, nil })
	case *ir.InstOr:
		return e.binary(frame, in, in.X, in.Y, func(x, y int64) (int64, error) { return x | y, nil })

	case *ir.InstICmp:
		x, err := e.resolve(frame, in.X)
		if err != nil {
			return err
		}
		y, err := e.resolve(frame, in.Y)
		if err != nil {
			return err
		}
		hit, err := comparePred(in.Pred, x.n, y.n)
		if err != nil {
			return err
		}
		if hit {
			frame[in] = word{n: 1}
		} else {
			frame[in] = word{n: 0}
		}

	case *ir.InstZExt:
		from, err := e.resolve(frame, in.From)
		if err != nil {
			return err
		}
		frame[in] = from

	case *ir.InstCall:
		callee, ok := in.Callee.(*ir.Func)
		if !ok {
			return fmt.Errorf("indirect calls are not supported")
		}

		if callee.Name() == "printf" {
			// The lowered print call: format global, then the value.
			arg, err := e.resolve(frame, in.Args[len(in.Args)-1])
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "%d\n", arg.n)
			frame[in] = word{}
			return nil
		}

		args := make([]word, len(in.Args))
		for i, a := range in.Args {
			w, err := e.resolve(frame, a)
			if err != nil {
				return err
			}
			args[i] = w
		}

		ret, err := e.call(callee, args)
		if err != nil {
			return err
		}
		frame[in] = word{n: ret}

	default:
		return fmt.Errorf("unsupported instruction %T", inst)
	}

	return nil
}

func (e *Engine) binary(frame map[value.Value]word, inst value.Value, xv, yv value.Value, op func(x, y int64) (int64, error)) error {
	x, err := e.resolve(frame, xv)
	if err != nil {
		return err
	}
	y, err := e.resolve(frame, yv)
	if err != nil {
		return err
	}

	n, err := op(x.n, y.n)
	if err != nil {
		return err
	}

	frame[inst] = word{n: n}
	return nil
}

func (e *Engine) resolve(frame map[value.Value]word, v value.Value) (word, error) {
	switch x := v.(type) {
	case *constant.Int:
		return word{n: x.X.Int64()}, nil
	case constant.Constant:
		// Global addresses (the print format string) carry no integer value.
		return word{}, nil
	default:
		w, ok := frame[v]
		if !ok {
			return word{}, fmt.Errorf("use of undefined value %v", v)
		}
		return w, nil
	}
}

func comparePred(pred enum.IPred, x, y int64) (bool, error) {
	switch pred {
	case enum.IPredEQ:
		return x == y, nil
	case enum.IPredNE:
		return x != y, nil
	case enum.IPredSLT:
		return x < y, nil
	case enum.IPredSGT:
		return x > y, nil
	case enum.IPredSLE:
		return x <= y, nil
	case enum.IPredSGE:
		return x >= y, nil
	default:
		return false, fmt.Errorf("unsupported comparison predicate %v", pred)
	}
}
