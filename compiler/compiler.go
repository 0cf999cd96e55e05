// Package compiler implements the emitter, dependency tracker,
// compile-time evaluator, and serializer that together translate the
// extended dialect into plain-dialect Lua source.
package compiler

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/piravelha/complua/parser"
)

// Compiler orchestrates the full single-input-file, single-output-file
// compilation pipeline: parse, emit, write output.
type Compiler struct {
	// Debug enables expansion of #debug directives.
	Debug bool
}

// Result holds what a successful compilation produced.
type Result struct {
	Output     string // emitted plain-dialect source, including the prelude
	SourceFile string
}

// Compile reads filename, emits the translated program, and returns the
// output text. It does not write the output file (it only writes scratch
// files for compile-time evaluation); callers that want a file use
// CompileToFile.
func (c *Compiler) Compile(filename string) (*Result, error) {
	absPath, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("complua: resolving path %s: %w", filename, err)
	}

	prog, err := parser.ParseFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("complua: %w", err)
	}

	scratch, err := NewScratch(filepath.Dir(absPath))
	if err != nil {
		return nil, fmt.Errorf("complua: creating scratch directory: %w", err)
	}

	ctx := NewContext(scratch, filename, c.Debug)
	w := &luaWriter{}

	// The top-level program is itself treated as a scope-stack state with
	// implicit fall-through at end of file, so any #defer left pending at
	// the end of the program still flushes.
	if err := emitFunctionBody(ctx, w, prog.Statements); err != nil {
		scratch.Close()
		return nil, err
	}

	if err := scratch.Close(); err != nil {
		return nil, fmt.Errorf("complua: removing scratch directory: %w", err)
	}

	output := Prelude() + "\n" + w.String()
	return &Result{Output: output, SourceFile: filename}, nil
}

// CompileToFile compiles filename and writes the result to outputPath:
// the serializer prelude followed by the emitted plain-dialect program.
func (c *Compiler) CompileToFile(filename, outputPath string) error {
	res, err := c.Compile(filename)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, []byte(res.Output), 0644); err != nil {
		return fmt.Errorf("complua: writing %s: %w", outputPath, err)
	}
	return nil
}
