package ast

// Walk visits n and every node reachable from it, calling fn on each one
// in a pre-order traversal. fn returns false to skip that node's children.
// It covers statements as well as expressions since the dependency
// tracker (deps.go) needs to find free identifiers inside directive
// bodies, not just expression trees.
func Walk(n Node, fn func(Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	switch x := n.(type) {
	case *Program:
		walkStmts(x.Statements, fn)

	case *UnaryExpr:
		Walk(x.Operand, fn)
	case *BinaryExpr:
		Walk(x.Left, fn)
		Walk(x.Right, fn)
	case *PropertyExpr:
		Walk(x.Object, fn)
	case *IndexExpr:
		Walk(x.Object, fn)
		Walk(x.Index, fn)
	case *CallExpr:
		Walk(x.Func, fn)
		walkExprs(x.Args, fn)
	case *MethodCallExpr:
		Walk(x.Object, fn)
		walkExprs(x.Args, fn)
	case *ParenExpr:
		Walk(x.Inner, fn)
	case *TableExpr:
		for _, f := range x.Fields {
			Walk(f.Key, fn)
			Walk(f.Value, fn)
		}
	case *FuncExpr:
		walkStmts(x.Body, fn)
	case *DoExpr:
		walkStmts(x.Body, fn)
	case *EvalExpr:
		Walk(x.Arg, fn)
	case *LoadExpr:
		Walk(x.Arg, fn)
	case *ReprExpr:
		Walk(x.Arg, fn)

	case *LocalDecl:
		walkExprs(x.Values, fn)
	case *AssignStmt:
		Walk(x.Target, fn)
		Walk(x.Value, fn)
	case *CompoundAssignStmt:
		Walk(x.Target, fn)
		Walk(x.Value, fn)
	case *FuncDeclStmt:
		walkStmts(x.Body, fn)
	case *ExprStmt:
		Walk(x.Call, fn)
	case *IfStmt:
		Walk(x.Cond, fn)
		walkStmts(x.Body, fn)
		for _, ec := range x.Elseifs {
			Walk(ec.Cond, fn)
			walkStmts(ec.Body, fn)
		}
		walkStmts(x.ElseBody, fn)
	case *NumericForStmt:
		Walk(x.Start, fn)
		Walk(x.Stop, fn)
		Walk(x.Step, fn)
		walkStmts(x.Body, fn)
	case *IteratorForStmt:
		Walk(x.Iter, fn)
		walkStmts(x.Body, fn)
	case *ReturnStmt:
		walkExprs(x.Values, fn)
	case *DoStmt:
		walkStmts(x.Body, fn)
	case *EvalStmt:
		Walk(x.Arg, fn)
	case *AssertStmt:
		Walk(x.Arg, fn)
	case *DebugStmt:
		Walk(x.Msg, fn)
		walkExprs(x.Args, fn)
	case *CheckCallStmt:
		walkStmts(x.Body, fn)
	case *TodoStmt:
		Walk(x.Msg, fn)
	case *InlineStmt:
		walkStmts(x.Body, fn)
	case *DeferStmt:
		Walk(x.Call, fn)
	case *UsingStmt:
		Walk(x.Prefix, fn)
	case *LoadStmt:
		Walk(x.Arg, fn)

	// NumberLit, StringLit, BoolLit, NilLit, VarargExpr, Ident, BreakStmt
	// are leaves with no children.
	}
}

func walkStmts(stmts []Stmt, fn func(Node) bool) {
	for _, s := range stmts {
		Walk(s, fn)
	}
}

func walkExprs(exprs []Expr, fn func(Node) bool) {
	for _, e := range exprs {
		Walk(e, fn)
	}
}

// FreeIdents returns the names of every Ident node reachable from n, in
// the order encountered, including duplicates. Callers that need a
// definition for each name are expected to consult a Context's bindings;
// this function only reports which names are referenced.
func FreeIdents(n Node) []string {
	var names []string
	Walk(n, func(x Node) bool {
		if id, ok := x.(*Ident); ok {
			names = append(names, id.Name)
		}
		return true
	})
	return names
}
