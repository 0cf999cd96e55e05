package compiler

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"

	"github.com/piravelha/complua/ast"
)

// EvalResult is what a compile-time evaluation produces: the expression
// fragment to splice into the emitted output in place of the directive.
type EvalResult struct {
	Spliced    string // output fragment spliced in place of the directive
	Serialized string // raw serialized text, used by #load's string check
}

// Evaluate runs the compile-time evaluator over expr: render its
// dependency chain, shell out to the external interpreter, and splice
// the result back in. inputFile is the original source path, used only
// for diagnostics. exprSource is the already-emitted plain-dialect text
// of expr. The generated program is written to the scratch directory's
// shared `.eval` artifact.
func (ctx *Context) Evaluate(inputFile string, expr ast.Expr, exprSource string) (*EvalResult, error) {
	return ctx.evaluateTo(inputFile, expr, exprSource, ctx.Scratch.EvalFile())
}

// EvaluateLoad is Evaluate for a "#load" expression specifically: it
// writes the generated program to the scratch directory's dedicated
// `.load` artifact instead of the shared `.eval` one, since #load's
// result is consumed structurally as a string rather than spliced back
// as a value expression.
func (ctx *Context) EvaluateLoad(inputFile string, expr ast.Expr, exprSource string) (*EvalResult, error) {
	return ctx.evaluateTo(inputFile, expr, exprSource, ctx.Scratch.LoadFile())
}

func (ctx *Context) evaluateTo(inputFile string, expr ast.Expr, exprSource, evalFile string) (*EvalResult, error) {
	deps := ctx.Dependencies(expr)
	depsSource, err := ctx.emitDependencies(deps)
	if err != nil {
		return nil, err
	}

	bytePath := ctx.Scratch.EvalByteDump()
	serPath := ctx.Scratch.EvalSerialized()
	os.Remove(bytePath)
	os.Remove(serPath)

	program := wrapEvalProgram(depsSource, exprSource, bytePath, serPath)
	if err := os.WriteFile(evalFile, []byte(program), 0644); err != nil {
		return nil, fmt.Errorf("complua: writing scratch program: %w", err)
	}

	stderr, runErr := runInterpreter(evalFile)
	if runErr != nil {
		return nil, runErr
	}
	if len(stderr) > 0 {
		return nil, diagnoseInterpreterFailure(inputFile, program, string(stderr))
	}

	dumped, err := os.ReadFile(bytePath)
	if err != nil {
		return nil, Fatal(inputFile, 0, "compile-time evaluation produced no function byte-dump: "+err.Error())
	}
	serialized, err := os.ReadFile(serPath)
	if err != nil {
		return nil, Fatal(inputFile, 0, "compile-time evaluation produced no serialized value: "+err.Error())
	}

	spliced := spliceEvalResult(string(serialized), dumped)
	return &EvalResult{Spliced: spliced, Serialized: string(serialized)}, nil
}

// runInterpreter invokes `luajit <scratch-file>`: stderr is captured,
// stdout is propagated.
func runInterpreter(scratchFile string) ([]byte, error) {
	cmd := exec.Command("luajit", scratchFile)
	cmd.Stdout = os.Stdout
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if _, isExit := err.(*exec.ExitError); isExit {
			return stderr.Bytes(), nil
		}
		return nil, fmt.Errorf("complua: invoking luajit: %w", err)
	}
	return stderr.Bytes(), nil
}

// spliceEvalResult builds the double-form expression: an
// immediately-invoked function that restores the serialized textual
// representation and loads the byte-dumped function, returning the
// latter's result. Materializing the textual form alongside the function
// call, rather than relying on the call alone, is what restores both
// representations at the splice site.
func spliceEvalResult(serialized string, dumped []byte) string {
	return "(function()\n" +
		"  local __complua_text = " + serialized + "\n" +
		"  local __complua_fn = load(\"" + escapeLuaBytes(dumped) + "\")\n" +
		"  return __complua_fn()\n" +
		"end)()"
}

func escapeLuaBytes(b []byte) string {
	buf := make([]byte, 0, len(b)*4)
	for _, c := range b {
		buf = append(buf, []byte(fmt.Sprintf("\\%03d", c))...)
	}
	return string(buf)
}

// emitDependencies renders a dependency chain as plain-dialect source, in
// declaration order.
func (ctx *Context) emitDependencies(deps []ast.Stmt) (string, error) {
	w := &luaWriter{}
	for _, d := range deps {
		if err := emitStmt(ctx, w, d); err != nil {
			return "", err
		}
	}
	return w.String(), nil
}
