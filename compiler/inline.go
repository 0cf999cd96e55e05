package compiler

import "github.com/piravelha/complua/ast"

// ExpandInline builds the immediately-invoked function literal emitted
// at an #inline call site: body with each parameter name rewritten to
// the corresponding argument AST subtree.
func ExpandInline(def *ast.InlineStmt, args []ast.Expr) *ast.FuncExpr {
	subst := map[string]ast.Expr{}
	for i, p := range def.Params {
		if i < len(args) {
			subst[p] = args[i]
		}
	}
	return &ast.FuncExpr{
		BaseExpr: ast.BaseExpr{Base: ast.Base{Pos: def.Base.Pos}},
		Body:     substBlock(def.Body, subst),
	}
}

// substBlock rewrites occurrences of the still-active substituted names
// in stmts, returning new statement nodes. It stops substituting a name
// for the remainder of the block (and inside nested blocks reached from
// here) as soon as that block declares or assigns a binding with the
// same name — it never descends into the left-hand side of a declaration
// that shadows the parameter. The caller's map is never mutated; each
// recursive call works off its own copy so shadowing in one branch does
// not leak to sibling blocks.
func substBlock(stmts []ast.Stmt, active map[string]ast.Expr) []ast.Stmt {
	if len(active) == 0 {
		return stmts
	}
	live := cloneSubst(active)
	out := make([]ast.Stmt, len(stmts))
	for i, s := range stmts {
		out[i] = substStmt(s, live)
		for _, name := range shadowedNames(s) {
			delete(live, name)
		}
	}
	return out
}

func cloneSubst(m map[string]ast.Expr) map[string]ast.Expr {
	c := make(map[string]ast.Expr, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// shadowedNames returns the names a statement binds on its left-hand
// side: local declaration names, numeric/iterator for-loop variables,
// and plain assignment/compound-assignment targets that are bare
// identifiers.
func shadowedNames(s ast.Stmt) []string {
	switch st := s.(type) {
	case *ast.LocalDecl:
		return st.Names
	case *ast.NumericForStmt:
		return []string{st.Var}
	case *ast.IteratorForStmt:
		return st.Names
	case *ast.AssignStmt:
		if id, ok := st.Target.(*ast.Ident); ok {
			return []string{id.Name}
		}
	case *ast.CompoundAssignStmt:
		if id, ok := st.Target.(*ast.Ident); ok {
			return []string{id.Name}
		}
	}
	return nil
}

func substStmt(s ast.Stmt, active map[string]ast.Expr) ast.Stmt {
	if len(active) == 0 || s == nil {
		return s
	}
	switch st := s.(type) {
	case *ast.LocalDecl:
		c := *st
		c.Values = substExprList(st.Values, active)
		return &c
	case *ast.AssignStmt:
		c := *st
		// The assignment target is never substituted: it is the LHS
		// that (dis)qualifies as a shadowing declaration, not a read.
		c.Value = substExpr(st.Value, active)
		return &c
	case *ast.CompoundAssignStmt:
		c := *st
		c.Value = substExpr(st.Value, active)
		return &c
	case *ast.FuncDeclStmt:
		c := *st
		c.Body = substBlock(st.Body, withoutParams(active, st.Params))
		return &c
	case *ast.ExprStmt:
		c := *st
		c.Call = substExpr(st.Call, active)
		return &c
	case *ast.IfStmt:
		c := *st
		c.Cond = substExpr(st.Cond, active)
		c.Body = substBlock(st.Body, active)
		if st.Elseifs != nil {
			c.Elseifs = make([]ast.ElseifClause, len(st.Elseifs))
			for i, ec := range st.Elseifs {
				c.Elseifs[i] = ast.ElseifClause{
					Cond: substExpr(ec.Cond, active),
					Body: substBlock(ec.Body, active),
				}
			}
		}
		c.ElseBody = substBlock(st.ElseBody, active)
		return &c
	case *ast.NumericForStmt:
		c := *st
		c.Start = substExpr(st.Start, active)
		c.Stop = substExpr(st.Stop, active)
		c.Step = substExpr(st.Step, active)
		c.Body = substBlock(st.Body, withoutParams(active, []string{st.Var}))
		return &c
	case *ast.IteratorForStmt:
		c := *st
		c.Iter = substExpr(st.Iter, active)
		c.Body = substBlock(st.Body, withoutParams(active, st.Names))
		return &c
	case *ast.ReturnStmt:
		c := *st
		c.Values = substExprList(st.Values, active)
		return &c
	case *ast.DoStmt:
		c := *st
		c.Body = substBlock(st.Body, active)
		return &c
	case *ast.EvalStmt:
		c := *st
		c.Arg = substExpr(st.Arg, active)
		return &c
	case *ast.AssertStmt:
		c := *st
		c.Arg = substExpr(st.Arg, active)
		return &c
	case *ast.DebugStmt:
		c := *st
		c.Msg = substExpr(st.Msg, active)
		c.Args = substExprList(st.Args, active)
		return &c
	case *ast.TodoStmt:
		c := *st
		c.Msg = substExpr(st.Msg, active)
		return &c
	case *ast.DeferStmt:
		c := *st
		c.Call = substStmt(st.Call, active)
		return &c
	case *ast.UsingStmt:
		c := *st
		c.Prefix = substExpr(st.Prefix, active)
		return &c
	case *ast.LoadStmt:
		c := *st
		c.Arg = substExpr(st.Arg, active)
		return &c
	default:
		return s
	}
}

func withoutParams(active map[string]ast.Expr, names []string) map[string]ast.Expr {
	for _, n := range names {
		if _, ok := active[n]; ok {
			c := cloneSubst(active)
			delete(c, n)
			active = c
		}
	}
	return active
}

func substExprList(exprs []ast.Expr, active map[string]ast.Expr) []ast.Expr {
	if exprs == nil {
		return nil
	}
	out := make([]ast.Expr, len(exprs))
	for i, e := range exprs {
		out[i] = substExpr(e, active)
	}
	return out
}

func substExpr(e ast.Expr, active map[string]ast.Expr) ast.Expr {
	if e == nil || len(active) == 0 {
		return e
	}
	switch ex := e.(type) {
	case *ast.Ident:
		if repl, ok := active[ex.Name]; ok {
			return repl
		}
		return ex
	case *ast.UnaryExpr:
		c := *ex
		c.Operand = substExpr(ex.Operand, active)
		return &c
	case *ast.BinaryExpr:
		c := *ex
		c.Left = substExpr(ex.Left, active)
		c.Right = substExpr(ex.Right, active)
		return &c
	case *ast.PropertyExpr:
		c := *ex
		c.Object = substExpr(ex.Object, active)
		return &c
	case *ast.IndexExpr:
		c := *ex
		c.Object = substExpr(ex.Object, active)
		c.Index = substExpr(ex.Index, active)
		return &c
	case *ast.CallExpr:
		c := *ex
		c.Func = substExpr(ex.Func, active)
		c.Args = substExprList(ex.Args, active)
		return &c
	case *ast.MethodCallExpr:
		c := *ex
		c.Object = substExpr(ex.Object, active)
		c.Args = substExprList(ex.Args, active)
		return &c
	case *ast.ParenExpr:
		c := *ex
		c.Inner = substExpr(ex.Inner, active)
		return &c
	case *ast.TableExpr:
		c := *ex
		c.Fields = make([]ast.Field, len(ex.Fields))
		for i, f := range ex.Fields {
			c.Fields[i] = ast.Field{
				Kind:  f.Kind,
				Name:  f.Name,
				Key:   substExpr(f.Key, active),
				Value: substExpr(f.Value, active),
			}
		}
		return &c
	case *ast.FuncExpr:
		c := *ex
		c.Body = substBlock(ex.Body, withoutParams(active, ex.Params))
		return &c
	case *ast.DoExpr:
		c := *ex
		c.Body = substBlock(ex.Body, active)
		return &c
	case *ast.EvalExpr:
		c := *ex
		c.Arg = substExpr(ex.Arg, active)
		return &c
	case *ast.LoadExpr:
		c := *ex
		c.Arg = substExpr(ex.Arg, active)
		return &c
	case *ast.ReprExpr:
		c := *ex
		c.Arg = substExpr(ex.Arg, active)
		return &c
	default:
		return e
	}
}
