package compiler

import (
	"testing"

	"github.com/piravelha/complua/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDependenciesSimpleChain(t *testing.T) {
	ctx := newTestContext()
	defA := &ast.LocalDecl{Names: []string{"a"}, Values: []ast.Expr{&ast.NumberLit{Text: "1"}}}
	defB := &ast.LocalDecl{Names: []string{"b"}, Values: []ast.Expr{&ast.Ident{Name: "a"}}}
	ctx.Bind("a", defA)
	ctx.Bind("b", defB)

	deps := ctx.Dependencies(&ast.Ident{Name: "b"})
	require.Len(t, deps, 2)
	assert.Same(t, defA, deps[0], "a's own definition is recursed into first")
	assert.Same(t, defB, deps[1], "b's definition is appended after its dependencies")
}

func TestDependenciesReplaysReassignmentInOrder(t *testing.T) {
	ctx := newTestContext()
	defA := &ast.LocalDecl{Names: []string{"a"}, Values: []ast.Expr{&ast.NumberLit{Text: "1"}}}
	ctx.Bind("a", defA)

	reassign := &ast.AssignStmt{Target: &ast.Ident{Name: "a"}, Value: &ast.NumberLit{Text: "2"}}
	ctx.Assign("a", reassign, nil)

	defB := &ast.LocalDecl{Names: []string{"b"}, Values: []ast.Expr{&ast.Ident{Name: "a"}}}
	ctx.Bind("b", defB)

	deps := ctx.Dependencies(&ast.Ident{Name: "b"})
	require.Len(t, deps, 3)
	assert.Same(t, defA, deps[0])
	assert.Same(t, reassign, deps[1], "the reassignment replays between a's original def and b's own def")
	assert.Same(t, defB, deps[2])
}

func TestDependenciesCarriesReassignmentDeps(t *testing.T) {
	ctx := newTestContext()
	defA := &ast.LocalDecl{Names: []string{"a"}, Values: []ast.Expr{&ast.NumberLit{Text: "1"}}}
	defC := &ast.LocalDecl{Names: []string{"c"}, Values: []ast.Expr{&ast.NumberLit{Text: "5"}}}
	ctx.Bind("a", defA)
	ctx.Bind("c", defC)

	// a = a + c
	reassign := &ast.AssignStmt{Target: &ast.Ident{Name: "a"}, Value: &ast.BinaryExpr{Op: "+", Left: &ast.Ident{Name: "a"}, Right: &ast.Ident{Name: "c"}}}
	ctx.Assign("a", reassign, []ast.Stmt{defC})

	deps := ctx.Dependencies(&ast.Ident{Name: "a"})
	require.Len(t, deps, 3)
	assert.Same(t, defA, deps[0])
	assert.Same(t, defC, deps[1], "the reassignment's captured deps are spliced in before the reassignment itself")
	assert.Same(t, reassign, deps[2])
}

func TestDependenciesIgnoresUnboundIdentifiers(t *testing.T) {
	ctx := newTestContext()
	deps := ctx.Dependencies(&ast.Ident{Name: "undefined"})
	assert.Empty(t, deps)
}

func TestDependenciesIgnoresFunctionParams(t *testing.T) {
	ctx := newTestContext()
	// Function parameters are bound with a nil Def (no single defining
	// statement), so they must not appear in the dependency chain.
	ctx.Bind("x", nil)
	deps := ctx.Dependencies(&ast.Ident{Name: "x"})
	assert.Empty(t, deps)
}
