package alba

import (
	"io"
	"os"

	"github.com/llir/llvm/ir"
)

// Compiler ties the pipeline together: source text in, a lowered module out,
// plus the two ways of running one. Stdout receives anything the program
// prints when it is executed in process.
type Compiler struct {
	Stdout io.Writer
}

func NewCompiler() *Compiler {
	return &Compiler{
		Stdout: os.Stdout,
	}
}

// CompileString lexes, parses and lowers source into an LLVM module.
func (c *Compiler) CompileString(source string) (*ir.Module, error) {
	return c.compile(NewLexerFromString(source))
}

// CompileFile is CompileString over the contents of filename.
func (c *Compiler) CompileFile(filename string) (*ir.Module, error) {
	lexer, err := NewLexer(filename)
	if err != nil {
		return nil, err
	}

	return c.compile(lexer)
}

func (c *Compiler) compile(tokenizer Tokenizer) (*ir.Module, error) {
	parser := NewParser(tokenizer)

	ast, err := parser.Run()
	if err != nil {
		return nil, err
	}

	return NewBuilder().Lower(ast)
}

// Run compiles source and executes it immediately, returning the value of
// the program's top-level expression.
func (c *Compiler) Run(source string) (int64, error) {
	mod, err := c.CompileString(source)
	if err != nil {
		return 0, err
	}

	return NewEngine(mod, c.Stdout).Run()
}

// RunFile is Run over the contents of filename.
func (c *Compiler) RunFile(filename string) (int64, error) {
	mod, err := c.CompileFile(filename)
	if err != nil {
		return 0, err
	}

	return NewEngine(mod, c.Stdout).Run()
}

// Build compiles source ahead of time into a native executable at outPath.
func (c *Compiler) Build(source string, outPath string) error {
	mod, err := c.CompileString(source)
	if err != nil {
		return err
	}

	return BuildExecutable(mod, outPath)
}

// BuildFile is Build over the contents of filename.
func (c *Compiler) BuildFile(filename string, outPath string) error {
	mod, err := c.CompileFile(filename)
	if err != nil {
		return err
	}

	return BuildExecutable(mod, outPath)
}
