package compiler

import (
	"testing"

	"github.com/piravelha/complua/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandInlineSubstitutesParams(t *testing.T) {
	def := &ast.InlineStmt{
		Name:   "add",
		Params: []string{"x", "y"},
		Body: []ast.Stmt{
			&ast.ReturnStmt{Values: []ast.Expr{
				&ast.BinaryExpr{Op: "+", Left: &ast.Ident{Name: "x"}, Right: &ast.Ident{Name: "y"}},
			}},
		},
	}
	one := &ast.NumberLit{Text: "1"}
	two := &ast.NumberLit{Text: "2"}
	fn := ExpandInline(def, []ast.Expr{one, two})

	require.Empty(t, fn.Params)
	ret := fn.Body[0].(*ast.ReturnStmt)
	bin := ret.Values[0].(*ast.BinaryExpr)
	assert.Same(t, one, bin.Left)
	assert.Same(t, two, bin.Right)
}

func TestExpandInlineLeavesUnmatchedParamsUnsubstituted(t *testing.T) {
	def := &ast.InlineStmt{
		Name:   "f",
		Params: []string{"x", "y"},
		Body: []ast.Stmt{
			&ast.ReturnStmt{Values: []ast.Expr{&ast.Ident{Name: "y"}}},
		},
	}
	fn := ExpandInline(def, []ast.Expr{&ast.NumberLit{Text: "1"}})
	ret := fn.Body[0].(*ast.ReturnStmt)
	_, stillIdent := ret.Values[0].(*ast.Ident)
	assert.True(t, stillIdent, "an argument missing for a param leaves references to it unsubstituted")
}

func TestExpandInlineStopsSubstitutingAfterShadowingLocal(t *testing.T) {
	def := &ast.InlineStmt{
		Name:   "f",
		Params: []string{"x"},
		Body: []ast.Stmt{
			&ast.LocalDecl{Names: []string{"x"}, Values: []ast.Expr{&ast.NumberLit{Text: "5"}}},
			&ast.ReturnStmt{Values: []ast.Expr{&ast.Ident{Name: "x"}}},
		},
	}
	arg := &ast.NumberLit{Text: "99"}
	fn := ExpandInline(def, []ast.Expr{arg})

	ret := fn.Body[1].(*ast.ReturnStmt)
	id, ok := ret.Values[0].(*ast.Ident)
	require.True(t, ok, "the local re-declares x, so the return after it must read the local, not the argument")
	assert.Equal(t, "x", id.Name)
}

func TestExpandInlineNeverSubstitutesAssignmentTarget(t *testing.T) {
	def := &ast.InlineStmt{
		Name:   "f",
		Params: []string{"x"},
		Body: []ast.Stmt{
			&ast.AssignStmt{Target: &ast.Ident{Name: "x"}, Value: &ast.Ident{Name: "x"}},
		},
	}
	arg := &ast.NumberLit{Text: "7"}
	fn := ExpandInline(def, []ast.Expr{arg})

	assign := fn.Body[0].(*ast.AssignStmt)
	target, ok := assign.Target.(*ast.Ident)
	require.True(t, ok, "the assignment target is the shadowing declaration, never substituted")
	assert.Equal(t, "x", target.Name)
	assert.Same(t, arg, assign.Value, "the right-hand side still reads the substituted argument")
}

func TestExpandInlineDoesNotMutateCallerBody(t *testing.T) {
	inner := &ast.Ident{Name: "x"}
	def := &ast.InlineStmt{
		Name:   "f",
		Params: []string{"x"},
		Body:   []ast.Stmt{&ast.ReturnStmt{Values: []ast.Expr{inner}}},
	}
	arg := &ast.NumberLit{Text: "3"}
	ExpandInline(def, []ast.Expr{arg})
	// The original definition's AST must be untouched by the structural
	// copy-with-substitution: re-expanding with different arguments must
	// not see a stale substitution baked into def itself.
	assert.Equal(t, "x", inner.Name)
}
