package compiler

import (
	"testing"

	"github.com/piravelha/complua/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext() *Context {
	return NewContext(&Scratch{Dir: "/tmp/unused"}, "<test>", false)
}

func TestNewContextDefaults(t *testing.T) {
	ctx := newTestContext()
	assert.True(t, ctx.LineInfo)
	assert.False(t, ctx.Debug)
	assert.NotNil(t, ctx.Inline)
	assert.NotNil(t, ctx.CheckCall)
}

func TestContextBindAndLookupShadowing(t *testing.T) {
	ctx := newTestContext()
	def1 := &ast.LocalDecl{Names: []string{"x"}}
	def2 := &ast.LocalDecl{Names: []string{"x"}}
	ctx.Bind("x", def1)
	ctx.Bind("x", def2)
	b, ok := ctx.Lookup("x")
	require.True(t, ok)
	assert.Same(t, def2, b.Def)
}

func TestContextLookupMissing(t *testing.T) {
	ctx := newTestContext()
	_, ok := ctx.Lookup("nope")
	assert.False(t, ok)
}

func TestContextBindDeregistersInlineAndCheckCall(t *testing.T) {
	ctx := newTestContext()
	ctx.Inline["f"] = &ast.InlineStmt{Name: "f"}
	ctx.CheckCall["f"] = &ast.CheckCallStmt{Name: "f"}
	ctx.Bind("f", &ast.LocalDecl{Names: []string{"f"}})
	_, inlineStillThere := ctx.Inline["f"]
	_, checkStillThere := ctx.CheckCall["f"]
	assert.False(t, inlineStillThere)
	assert.False(t, checkStillThere)
}

func TestContextAssignAndAssignsFor(t *testing.T) {
	ctx := newTestContext()
	stmt1 := &ast.AssignStmt{}
	stmt2 := &ast.AssignStmt{}
	ctx.Assign("x", stmt1, nil)
	ctx.Assign("y", stmt2, nil)
	ctx.Assign("x", stmt2, []ast.Stmt{stmt1})
	recs := ctx.AssignsFor("x")
	require.Len(t, recs, 2)
	assert.Same(t, stmt1, recs[0].Stmt)
	assert.Same(t, stmt2, recs[1].Stmt)
	assert.Equal(t, []ast.Stmt{stmt1}, recs[1].Deps)
}

func TestContextCloneSnapshotsBindingsAndRestoresOnDiscard(t *testing.T) {
	ctx := newTestContext()
	ctx.Bind("x", &ast.LocalDecl{Names: []string{"x"}})
	ctx.PushUsing(&ast.Ident{Name: "cfg"})
	ctx.EnqueueDefer(&ast.ExprStmt{})

	clone := ctx.Clone()
	assert.Empty(t, clone.DeferQueue, "clone starts with its own empty defer queue")

	clone.Bind("y", &ast.LocalDecl{Names: []string{"y"}})
	clone.EnqueueDefer(&ast.ExprStmt{})

	_, outerHasY := ctx.Lookup("y")
	assert.False(t, outerHasY, "binding in clone must not leak to the parent scope")
	assert.Len(t, ctx.DeferQueue, 1, "parent's defer queue is untouched by the clone's own defers")
	assert.Len(t, clone.DeferQueue, 1)
	assert.Len(t, clone.UsingStack, 1, "using stack is copied, not shared, into the clone")
}

func TestContextCloneSharesInlineAndCheckCallRegistries(t *testing.T) {
	ctx := newTestContext()
	clone := ctx.Clone()
	clone.Inline["g"] = &ast.InlineStmt{Name: "g"}
	_, onParent := ctx.Inline["g"]
	assert.True(t, onParent, "inline registry is scope-global and shared, not copied, by Clone")
}

func TestContextPushUsingOrdersInnermostLast(t *testing.T) {
	ctx := newTestContext()
	outer := &ast.Ident{Name: "outer"}
	inner := &ast.Ident{Name: "inner"}
	ctx.PushUsing(outer)
	ctx.PushUsing(inner)
	require.Len(t, ctx.UsingStack, 2)
	assert.Same(t, inner, ctx.UsingStack[len(ctx.UsingStack)-1])
}
