package alba

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

const printFormat = "%lld\n\x00"

// defineBuiltins declares the external routines the lowered code relies on.
// Output goes through the C library's printf.
func defineBuiltins(b *Builder) {
	printf := b.mod.NewFunc("printf", types.I32, ir.NewParam("format", types.I8Ptr))
	printf.Sig.Variadic = true
	b.printf = printf

	format := constant.NewCharArrayFromString(printFormat)
	global := b.mod.NewGlobalDef(".fmt.print", format)

	zero := constant.NewInt(types.I32, 0)
	b.fmtPtr = constant.NewGetElementPtr(types.NewArray(uint64(len(printFormat)), types.I8), global, zero, zero)
}

// lowerPrint emits the output call; print is an identity expression with a
// side effect, so the argument value is handed back unchanged.
func (b *Builder) lowerPrint(arg value.Value) value.Value {
	b.block.NewCall(b.printf, b.fmtPtr, arg)
	return arg
}

type builtinOp = func(b *Builder, x, y value.Value) value.Value

// builtinOps lowers the binary operator primitives. Comparisons and logical
// combinators yield 1/0 integers; there is no separate boolean type.
var builtinOps = map[string]builtinOp{
	"+": func(b *Builder, x, y value.Value) value.Value {
		return b.block.NewAdd(x, y)
	},
	"-": func(b *Builder, x, y value.Value) value.Value {
		return b.block.NewSub(x, y)
	},
	"*": func(b *Builder, x, y value.Value) value.Value {
		return b.block.NewMul(x, y)
	},
	"/": func(b *Builder, x, y value.Value) value.Value {
		return b.block.NewSDiv(x, y)
	},
	"%": func(b *Builder, x, y value.Value) value.Value {
		return b.block.NewSRem(x, y)
	},
	"<": func(b *Builder, x, y value.Value) value.Value {
		return b.compare(enum.IPredSLT, x, y)
	},
	">": func(b *Builder, x, y value.Value) value.Value {
		return b.compare(enum.IPredSGT, x, y)
	},
	"=": func(b *Builder, x, y value.Value) value.Value {
		return b.compare(enum.IPredEQ, x, y)
	},
	"!=": func(b *Builder, x, y value.Value) value.Value {
		return b.compare(enum.IPredNE, x, y)
	},
	"&": func(b *Builder, x, y value.Value) value.Value {
		return b.block.NewZExt(b.block.NewAnd(b.truthy(x), b.truthy(y)), types.I64)
	},
	"|": func(b *Builder, x, y value.Value) value.Value {
		return b.block.NewZExt(b.block.NewOr(b.truthy(x), b.truthy(y)), types.I64)
	},
}

func (b *Builder) compare(pred enum.IPred, x, y value.Value) value.Value {
	return b.block.NewZExt(b.block.NewICmp(pred, x, y), types.I64)
}

// truthy normalizes an arbitrary integer to an i1 for the logical operators.
func (b *Builder) truthy(v value.Value) value.Value {
	return b.block.NewICmp(enum.IPredNE, v, constant.NewInt(types.I64, 0))
}
