package compiler

import (
	"strconv"
	"strings"

	"github.com/piravelha/complua/ast"
	"github.com/piravelha/complua/parser"
)

// emitBlock emits a plain sequence of statements with no defer-queue
// flush of its own. Used for if/elseif/else and for-loop bodies, which
// are not scope-stack states distinct from their enclosing function body:
// a #defer inside an if-branch still belongs to the enclosing function's
// defer queue and only flushes at that function's own return or
// fall-through.
func emitBlock(ctx *Context, w *luaWriter, stmts []ast.Stmt) error {
	for _, s := range stmts {
		if err := emitStmt(ctx, w, s); err != nil {
			return err
		}
	}
	return nil
}

// emitFunctionBody emits the statements of a function body, do-block, or
// do-as-expression — the three scope-stack states that clone and restore
// bindings — flushing the defer queue on return or fall-through. A return
// statement flushes and empties the queue; any statements still in the
// queue at the end of the block (none, unless they were deferred after the
// last return) are flushed with no return values.
func emitFunctionBody(ctx *Context, w *luaWriter, stmts []ast.Stmt) error {
	if err := emitBlock(ctx, w, stmts); err != nil {
		return err
	}
	if len(ctx.DeferQueue) > 0 {
		return flushDefers(ctx, w, nil, false)
	}
	return nil
}

// flushDefers emits the current defer queue in insertion order, then the
// return statement if hasReturn is set: deferred statements run after
// return-expression evaluation but before control leaves. Return values
// are captured into temporaries first so deferred statements observe
// whatever the live bindings look like at the moment of return, not the
// values as of the return site.
func flushDefers(ctx *Context, w *luaWriter, returnExprs []string, hasReturn bool) error {
	queue := ctx.DeferQueue
	ctx.DeferQueue = nil

	if !hasReturn {
		for _, d := range queue {
			if err := emitStmt(ctx, w, d); err != nil {
				return err
			}
		}
		return nil
	}

	if len(queue) == 0 {
		if returnExprs == nil {
			w.Linef("return")
		} else {
			w.Linef("return %s", strings.Join(returnExprs, ", "))
		}
		return nil
	}

	temps := make([]string, len(returnExprs))
	for i, v := range returnExprs {
		temps[i] = "__complua_ret" + strconv.Itoa(i)
		w.Linef("local %s = %s", temps[i], v)
	}
	for _, d := range queue {
		if err := emitStmt(ctx, w, d); err != nil {
			return err
		}
	}
	if len(temps) == 0 {
		w.Linef("return")
	} else {
		w.Linef("return %s", strings.Join(temps, ", "))
	}
	return nil
}

// emitStmt dispatches on statement kind, writing output through w and
// mutating ctx (bindings, defer queue, using stack, registries) in
// place. Only function bodies, do-blocks, and do-as-expressions are
// scope-stack states that clone/restore the cloneable buckets; if/for
// bodies are emitted against the same ctx as their enclosing block, so a
// local declared inside an if-branch remains bound for the rest of the
// enclosing function.
func emitStmt(ctx *Context, w *luaWriter, s ast.Stmt) error {
	w.LineMarker(s.StmtPos().Line, ctx.LineInfo)

	switch st := s.(type) {
	case *ast.LocalDecl:
		values, err := emitJoinedExprList(ctx, st.Values)
		if err != nil {
			return err
		}
		if len(st.Values) == 0 {
			w.Linef("local %s", strings.Join(st.Names, ", "))
		} else {
			w.Linef("local %s = %s", strings.Join(st.Names, ", "), values)
		}
		for _, name := range st.Names {
			ctx.Bind(name, st)
		}
		return nil

	case *ast.AssignStmt:
		return emitAssign(ctx, w, st.Target, st.Value)

	case *ast.CompoundAssignStmt:
		bin := &ast.BinaryExpr{
			BaseExpr: ast.BaseExpr{Base: ast.Base{Pos: st.Base.Pos}},
			Op:       st.Op,
			Left:     st.Target,
			Right:    st.Value,
		}
		return emitAssign(ctx, w, st.Target, bin)

	case *ast.FuncDeclStmt:
		return emitFuncDecl(ctx, w, st)

	case *ast.ExprStmt:
		call, err := emitExpr(ctx, st.Call)
		if err != nil {
			return err
		}
		w.Linef("%s", call)
		return nil

	case *ast.IfStmt:
		return emitIfStmt(ctx, w, st)

	case *ast.NumericForStmt:
		return emitNumericFor(ctx, w, st)

	case *ast.IteratorForStmt:
		return emitIteratorFor(ctx, w, st)

	case *ast.ReturnStmt:
		exprs, err := emitExprList(ctx, st.Values)
		if err != nil {
			return err
		}
		return flushDefers(ctx, w, exprs, true)

	case *ast.BreakStmt:
		w.Linef("break")
		return nil

	case *ast.DoStmt:
		w.Linef("do")
		w.Indent()
		inner := ctx.Clone()
		if err := emitFunctionBody(inner, w, st.Body); err != nil {
			return err
		}
		w.Dedent()
		w.Linef("end")
		return nil

	case *ast.EvalStmt:
		src, err := emitExpr(ctx, st.Arg)
		if err != nil {
			return err
		}
		res, err := ctx.Evaluate(ctx.InputFile, st.Arg, src)
		if err != nil {
			return err
		}
		w.Linef("%s", res.Spliced)
		return nil

	case *ast.AssertStmt:
		return emitAssertExpr(ctx, st.Arg)

	case *ast.DebugStmt:
		return emitDebugStmt(ctx, w, st)

	case *ast.CheckCallStmt:
		ctx.CheckCall[st.Name] = st
		return nil

	case *ast.TodoStmt:
		return emitTodoStmt(ctx, w, st)

	case *ast.InlineStmt:
		ctx.Inline[st.Name] = st
		return nil

	case *ast.DeferStmt:
		ctx.EnqueueDefer(st.Call)
		return nil

	case *ast.UsingStmt:
		ctx.PushUsing(st.Prefix)
		return nil

	case *ast.LoadStmt:
		return emitLoadStmt(ctx, w, st)
	}

	return Fatal(ctx.InputFile, s.StmtPos().Line, "unhandled statement")
}

// emitAssign handles plain assignment, including the #using rewrite for
// bare-identifier targets.
func emitAssign(ctx *Context, w *luaWriter, target, value ast.Expr) error {
	valSrc, err := emitExpr(ctx, value)
	if err != nil {
		return err
	}
	id, isIdent := target.(*ast.Ident)
	if isIdent && len(ctx.UsingStack) > 0 {
		if err := emitUsingAssign(ctx, w, id.Name, valSrc); err != nil {
			return err
		}
	} else {
		targetSrc, err := emitExpr(ctx, target)
		if err != nil {
			return err
		}
		w.Linef("%s = %s", targetSrc, valSrc)
	}
	if isIdent {
		stmt := &ast.AssignStmt{BaseStmt: ast.BaseStmt{Base: ast.Base{Pos: target.ExprPos()}}, Target: target, Value: value}
		ctx.Assign(id.Name, stmt, ctx.Dependencies(value))
	}
	return nil
}

// emitUsingAssign writes the chained conditional: assignment writes
// through to the first prefix (innermost first) that holds a non-nil
// binding for name, falling back to the bare identifier.
func emitUsingAssign(ctx *Context, w *luaWriter, name, valSrc string) error {
	saved := ctx.UsingStack
	ctx.UsingStack = nil
	defer func() { ctx.UsingStack = saved }()

	for i := len(saved) - 1; i >= 0; i-- {
		prefixSrc, err := emitExpr(ctx, saved[i])
		if err != nil {
			return err
		}
		kw := "if"
		if i != len(saved)-1 {
			kw = "elseif"
		}
		w.Linef("%s %s.%s ~= nil then", kw, prefixSrc, name)
		w.Indent()
		w.Linef("%s.%s = %s", prefixSrc, name, valSrc)
		w.Dedent()
	}
	w.Linef("else")
	w.Indent()
	w.Linef("%s = %s", name, valSrc)
	w.Dedent()
	w.Linef("end")
	return nil
}

func emitFuncDecl(ctx *Context, w *luaWriter, st *ast.FuncDeclStmt) error {
	params := strings.Join(st.Params, ", ")
	if st.Variadic {
		if params != "" {
			params += ", "
		}
		params += "..."
	}
	w.Linef("function %s(%s)", st.Name, params)
	w.Indent()
	inner := ctx.Clone()
	bindFuncParams(inner, st.Params)
	if err := emitFunctionBody(inner, w, st.Body); err != nil {
		return err
	}
	w.Dedent()
	w.Linef("end")
	ctx.Bind(st.Name, st)
	return nil
}

func emitIfStmt(ctx *Context, w *luaWriter, st *ast.IfStmt) error {
	cond, err := emitExpr(ctx, st.Cond)
	if err != nil {
		return err
	}
	w.Linef("if %s then", cond)
	w.Indent()
	if err := emitBlock(ctx, w, st.Body); err != nil {
		return err
	}
	w.Dedent()
	for _, ec := range st.Elseifs {
		econd, err := emitExpr(ctx, ec.Cond)
		if err != nil {
			return err
		}
		w.Linef("elseif %s then", econd)
		w.Indent()
		if err := emitBlock(ctx, w, ec.Body); err != nil {
			return err
		}
		w.Dedent()
	}
	if st.ElseBody != nil {
		w.Linef("else")
		w.Indent()
		if err := emitBlock(ctx, w, st.ElseBody); err != nil {
			return err
		}
		w.Dedent()
	}
	w.Linef("end")
	return nil
}

func emitNumericFor(ctx *Context, w *luaWriter, st *ast.NumericForStmt) error {
	start, err := emitExpr(ctx, st.Start)
	if err != nil {
		return err
	}
	stop, err := emitExpr(ctx, st.Stop)
	if err != nil {
		return err
	}
	header := start + ", " + stop
	if st.Step != nil {
		step, err := emitExpr(ctx, st.Step)
		if err != nil {
			return err
		}
		header += ", " + step
	}
	w.Linef("for %s = %s do", st.Var, header)
	w.Indent()
	ctx.Bind(st.Var, st)
	if err := emitBlock(ctx, w, st.Body); err != nil {
		return err
	}
	w.Dedent()
	w.Linef("end")
	return nil
}

func emitIteratorFor(ctx *Context, w *luaWriter, st *ast.IteratorForStmt) error {
	iter, err := emitExpr(ctx, st.Iter)
	if err != nil {
		return err
	}
	w.Linef("for %s in %s do", strings.Join(st.Names, ", "), iter)
	w.Indent()
	for _, n := range st.Names {
		ctx.Bind(n, st)
	}
	if err := emitBlock(ctx, w, st.Body); err != nil {
		return err
	}
	w.Dedent()
	w.Linef("end")
	return nil
}

// emitDebugStmt implements "#debug msg, args...": if the debug flag is
// on, this expands to "#eval print(string.format(msg, args...))" — a
// compile-time trace whose print output reaches the compiler's own
// stdout. Otherwise it evaporates entirely.
func emitDebugStmt(ctx *Context, w *luaWriter, st *ast.DebugStmt) error {
	if !ctx.Debug {
		return nil
	}
	pos := st.Base.Pos
	formatCall := &ast.CallExpr{
		BaseExpr: ast.BaseExpr{Base: ast.Base{Pos: pos}},
		Func: &ast.PropertyExpr{
			BaseExpr: ast.BaseExpr{Base: ast.Base{Pos: pos}},
			Object:   &ast.Ident{BaseExpr: ast.BaseExpr{Base: ast.Base{Pos: pos}}, Name: "string"},
			Field:    "format",
		},
		Args: append([]ast.Expr{st.Msg}, st.Args...),
	}
	printCall := &ast.CallExpr{
		BaseExpr: ast.BaseExpr{Base: ast.Base{Pos: pos}},
		Func:     &ast.Ident{BaseExpr: ast.BaseExpr{Base: ast.Base{Pos: pos}}, Name: "print"},
		Args:     []ast.Expr{formatCall},
	}
	src, err := emitExpr(ctx, printCall)
	if err != nil {
		return err
	}
	res, err := ctx.Evaluate(ctx.InputFile, printCall, src)
	if err != nil {
		return err
	}
	w.Linef("%s", res.Spliced)
	return nil
}

// emitTodoStmt implements "#todo [msg]": a runtime error-raising
// expression, default message "Not implemented".
func emitTodoStmt(ctx *Context, w *luaWriter, st *ast.TodoStmt) error {
	pos := st.Base.Pos
	msg := st.Msg
	if msg == nil {
		msg = &ast.StringLit{BaseExpr: ast.BaseExpr{Base: ast.Base{Pos: pos}}, Value: "Not implemented", Raw: `"Not implemented"`}
	}
	call := &ast.CallExpr{
		BaseExpr: ast.BaseExpr{Base: ast.Base{Pos: pos}},
		Func:     &ast.Ident{BaseExpr: ast.BaseExpr{Base: ast.Base{Pos: pos}}, Name: "error"},
		Args:     []ast.Expr{msg},
	}
	src, err := emitExpr(ctx, call)
	if err != nil {
		return err
	}
	w.Linef("%s", src)
	return nil
}

// emitLoadStmt implements "#load expr" in statement position: the
// compile-time string result is parsed as a block of statements and
// spliced in place.
func emitLoadStmt(ctx *Context, w *luaWriter, st *ast.LoadStmt) error {
	src, err := emitExpr(ctx, st.Arg)
	if err != nil {
		return err
	}
	res, err := ctx.EvaluateLoad(ctx.InputFile, st.Arg, src)
	if err != nil {
		return err
	}
	text, ok := decodeStringLiteral(res.Serialized)
	if !ok {
		return Fatal(ctx.InputFile, st.Arg.ExprPos().Line, "#load expression did not evaluate to a string")
	}
	frag, err := parser.ParseBlockFragment(text)
	if err != nil {
		return Fatal(ctx.InputFile, st.Arg.ExprPos().Line, "#load fragment failed to parse: "+err.Error())
	}
	for _, fs := range frag {
		if err := emitStmt(ctx, w, fs); err != nil {
			return err
		}
	}
	return nil
}
