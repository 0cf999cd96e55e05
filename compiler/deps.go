package compiler

import "github.com/piravelha/complua/ast"

// Dependencies walks n and returns, in declaration order, every AST
// statement that transitively defines an identifier referenced inside n.
// For each free identifier it consults ctx's bindings (scanned left to
// right, per Context.Lookup) for a definition, recurses into that
// definition's own free identifiers first, then appends the definition,
// then replays any later reassignment of the same name (together with the
// dependency chain captured for that reassignment at the time it was
// processed). Reassignments are not deduplicated: they replay every time
// a name is collected, not just once.
//
// The tracker does not attempt cycle detection. A visited set keeps each
// definition from being appended more than once, even when its name is
// referenced repeatedly, and so also stops infinite recursion through
// definitions that reference each other; a definition's references to
// its own name are skipped.
func (ctx *Context) Dependencies(n ast.Node) []ast.Stmt {
	visited := map[ast.Stmt]bool{}
	var out []ast.Stmt
	var collect func(name string)
	collect = func(name string) {
		b, ok := ctx.Lookup(name)
		if !ok || b.Def == nil {
			return
		}
		if !visited[b.Def] {
			visited[b.Def] = true
			for _, id := range ast.FreeIdents(b.Def) {
				if id != name {
					collect(id)
				}
			}
			out = append(out, b.Def)
		}
		for _, rec := range ctx.AssignsFor(name) {
			out = append(out, rec.Deps...)
			out = append(out, rec.Stmt)
		}
	}
	for _, name := range ast.FreeIdents(n) {
		collect(name)
	}
	return out
}
