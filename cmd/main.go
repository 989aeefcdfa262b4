package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"go.alba.dev/pkg"
)

const helpMessage = `alba compiles and runs alba programs.

Usage:
  alba [flags] <file>

Without a file, alba starts an interactive session.
`

// compileFailure is returned by the process when the program could not be
// compiled or run, as opposed to the program's own result.
const compileFailure = 101

var build = flag.Bool("build", false, "build a native executable instead of running")
var output = flag.String("o", "", "executable path for -build (defaults to the source file's basename)")
var emitIR = flag.Bool("emit-ir", false, "print the generated LLVM IR instead of running")

func main() {
	flag.Usage = func() {
		fmt.Print(helpMessage)
		flag.PrintDefaults()
	}

	flag.Parse()

	args := flag.Args()

	if len(args) == 0 {
		repl()
		return
	}

	runFile(args[0])
}

func runFile(path string) {
	compiler := alba.NewCompiler()

	if *emitIR {
		mod, err := compiler.CompileFile(path)
		if err != nil {
			fail(err)
		}

		fmt.Print(mod.String())
		return
	}

	if *build || *output != "" {
		mod, err := compiler.CompileFile(path)
		if err != nil {
			fail(err)
		}

		out := *output
		if out == "" {
			out = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}

		if err := alba.BuildExecutable(mod, out); err != nil {
			fail(err)
		}
		return
	}

	result, err := compiler.RunFile(path)
	if err != nil {
		fail(err)
	}

	os.Exit(int(uint8(result)))
}

func repl() {
	rl, err := readline.New(">> ")
	if err != nil {
		panic(err)
	}
	defer rl.Close()

	compiler := alba.NewCompiler()

	for {
		text, err := rl.Readline()

		if err == io.EOF {
			break
		} else if err != nil {
			fmt.Println(err)
			break
		}

		if text == "" {
			continue
		}

		result, err := compiler.Run(text)
		if err != nil {
			color.New(color.FgRed).Fprintln(os.Stderr, err.Error())
			continue
		}

		fmt.Println(result)
	}
}

func fail(err error) {
	color.New(color.FgRed).Fprintln(os.Stderr, err.Error())
	os.Exit(compileFailure)
}
