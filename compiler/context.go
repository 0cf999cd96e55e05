package compiler

import "github.com/piravelha/complua/ast"

// Binding records one (name, defining AST subtree) pair in declaration
// order. Def is nil for synthetic bindings introduced by function/loop
// parameters, which have no single defining statement of their own.
type Binding struct {
	Name string
	Def  ast.Stmt
}

// AssignRecord is one entry of the assigns log: a reassignment together
// with the dependency chain computed for its right-hand side at the time
// it was processed.
type AssignRecord struct {
	Name string
	Stmt ast.Stmt
	Deps []ast.Stmt
}

// Context is the mutable compilation environment threaded through the
// emitter: bindings, the assigns log, the defer queue, the using stack,
// and the inline/checked-call registries.
type Context struct {
	Bindings   []Binding
	AssignsLog []AssignRecord

	DeferQueue []ast.Stmt
	UsingStack []ast.Expr

	Inline    map[string]*ast.InlineStmt
	CheckCall map[string]*ast.CheckCallStmt

	LineInfo bool
	Debug    bool

	Scratch   *Scratch
	InputFile string
}

// NewContext returns a fresh top-level Context. debug controls whether
// #debug directives expand.
func NewContext(scratch *Scratch, inputFile string, debug bool) *Context {
	return &Context{
		Inline:    map[string]*ast.InlineStmt{},
		CheckCall: map[string]*ast.CheckCallStmt{},
		LineInfo:  true,
		Debug:     debug,
		Scratch:   scratch,
		InputFile: inputFile,
	}
}

// Clone returns a copy of ctx for a new scope (function body, do-block,
// do-as-expression): bindings, the assigns log, and the using stack are
// snapshotted, and the clone starts with an empty defer queue of its own,
// so the caller's view is untouched when the clone is discarded at scope
// exit. Inline and checked-call registries are
// scope-global and flat, so they are shared, not copied, by the returned
// Context — mutations to them by the cloned scope are visible to the
// caller; a registration stays live until a binding with the same name
// deregisters it.
func (ctx *Context) Clone() *Context {
	clone := &Context{
		Bindings:     append([]Binding(nil), ctx.Bindings...),
		AssignsLog:   append([]AssignRecord(nil), ctx.AssignsLog...),
		DeferQueue:   nil,
		UsingStack:   append([]ast.Expr(nil), ctx.UsingStack...),
		Inline:       ctx.Inline,
		CheckCall:    ctx.CheckCall,
		LineInfo:     ctx.LineInfo,
		Debug:        ctx.Debug,
		Scratch:      ctx.Scratch,
		InputFile:    ctx.InputFile,
	}
	return clone
}

// Bind appends a new binding. Later declarations shadow earlier ones with
// the same name, since Lookup keeps the last match.
func (ctx *Context) Bind(name string, def ast.Stmt) {
	ctx.Bindings = append(ctx.Bindings, Binding{Name: name, Def: def})
	ctx.deregister(name)
}

// Assign records a reassignment in the assigns log and deregisters any
// inline/checkcall bound to name.
func (ctx *Context) Assign(name string, stmt ast.Stmt, deps []ast.Stmt) {
	ctx.AssignsLog = append(ctx.AssignsLog, AssignRecord{Name: name, Stmt: stmt, Deps: deps})
	ctx.deregister(name)
}

func (ctx *Context) deregister(name string) {
	delete(ctx.Inline, name)
	delete(ctx.CheckCall, name)
}

// Lookup returns the most recent binding for name, scanning left to
// right and keeping the last match.
func (ctx *Context) Lookup(name string) (Binding, bool) {
	var found Binding
	ok := false
	for _, b := range ctx.Bindings {
		if b.Name == name {
			found = b
			ok = true
		}
	}
	return found, ok
}

// AssignsFor returns every assigns-log entry for name, in order.
func (ctx *Context) AssignsFor(name string) []AssignRecord {
	var out []AssignRecord
	for _, a := range ctx.AssignsLog {
		if a.Name == name {
			out = append(out, a)
		}
	}
	return out
}

// PushUsing pushes prefix onto the using stack (innermost last).
func (ctx *Context) PushUsing(prefix ast.Expr) {
	ctx.UsingStack = append(ctx.UsingStack, prefix)
}

// EnqueueDefer appends stmt to the current scope's defer queue.
func (ctx *Context) EnqueueDefer(stmt ast.Stmt) {
	ctx.DeferQueue = append(ctx.DeferQueue, stmt)
}
