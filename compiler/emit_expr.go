package compiler

import (
	"fmt"
	"strings"

	"github.com/piravelha/complua/ast"
)

// emitExpr renders e as plain-dialect source text. Unlike statements,
// expressions never go through the writer: they are composed inline
// wherever they are used, including as dependency source fed to the
// compile-time evaluator.
func emitExpr(ctx *Context, e ast.Expr) (string, error) {
	switch ex := e.(type) {
	case *ast.NumberLit:
		return ex.Text, nil
	case *ast.StringLit:
		return ex.Raw, nil
	case *ast.BoolLit:
		if ex.Value {
			return "true", nil
		}
		return "false", nil
	case *ast.NilLit:
		return "nil", nil
	case *ast.VarargExpr:
		return "...", nil
	case *ast.Ident:
		return emitIdentRead(ctx, ex.Name), nil

	case *ast.UnaryExpr:
		operand, err := emitExpr(ctx, ex.Operand)
		if err != nil {
			return "", err
		}
		if ex.Op == "not" {
			return "(not " + operand + ")", nil
		}
		return "(" + ex.Op + operand + ")", nil

	case *ast.BinaryExpr:
		left, err := emitExpr(ctx, ex.Left)
		if err != nil {
			return "", err
		}
		right, err := emitExpr(ctx, ex.Right)
		if err != nil {
			return "", err
		}
		return "(" + left + " " + ex.Op + " " + right + ")", nil

	case *ast.PropertyExpr:
		obj, err := emitExpr(ctx, ex.Object)
		if err != nil {
			return "", err
		}
		return obj + "." + ex.Field, nil

	case *ast.IndexExpr:
		obj, err := emitExpr(ctx, ex.Object)
		if err != nil {
			return "", err
		}
		idx, err := emitExpr(ctx, ex.Index)
		if err != nil {
			return "", err
		}
		return obj + "[" + idx + "]", nil

	case *ast.CallExpr:
		return emitCallExpr(ctx, ex)

	case *ast.MethodCallExpr:
		obj, err := emitExpr(ctx, ex.Object)
		if err != nil {
			return "", err
		}
		args, err := emitCallArgs(ctx, ex.Args)
		if err != nil {
			return "", err
		}
		return obj + ":" + ex.Method + "(" + args + ")", nil

	case *ast.ParenExpr:
		inner, err := emitExpr(ctx, ex.Inner)
		if err != nil {
			return "", err
		}
		return "(" + inner + ")", nil

	case *ast.TableExpr:
		return emitTableExpr(ctx, ex)

	case *ast.FuncExpr:
		return emitFuncExpr(ctx, ex)

	case *ast.DoExpr:
		return emitDoExpr(ctx, ex)

	case *ast.EvalExpr:
		return emitEvalDirective(ctx, ex.Arg)

	case *ast.LoadExpr:
		return emitLoadDirective(ctx, ex.Arg)

	case *ast.ReprExpr:
		return emitReprDirective(ctx, ex.Arg)
	}
	return "", fmt.Errorf("complua: unhandled expression %T", e)
}

func emitExprList(ctx *Context, exprs []ast.Expr) ([]string, error) {
	out := make([]string, len(exprs))
	for i, e := range exprs {
		s, err := emitExpr(ctx, e)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func emitJoinedExprList(ctx *Context, exprs []ast.Expr) (string, error) {
	parts, err := emitExprList(ctx, exprs)
	if err != nil {
		return "", err
	}
	return strings.Join(parts, ", "), nil
}

// emitCallArgs emits a call's argument list with line markers suppressed
// for the duration: the line-info flag is cleared for the duration of
// argument emission and restored after. This matters when an argument is
// a do-as-expression containing statements that would otherwise gain
// --LINE:n markers of their own.
func emitCallArgs(ctx *Context, args []ast.Expr) (string, error) {
	saved := ctx.LineInfo
	ctx.LineInfo = false
	defer func() { ctx.LineInfo = saved }()
	return emitJoinedExprList(ctx, args)
}

// emitCallExpr handles the three ways a call can resolve: an #inline
// expansion, an #checkcall-validated call, or a plain call.
func emitCallExpr(ctx *Context, ex *ast.CallExpr) (string, error) {
	if id, ok := ex.Func.(*ast.Ident); ok {
		if def, ok := ctx.Inline[id.Name]; ok {
			return emitInlineCall(ctx, def, ex.Args)
		}
		if def, ok := ctx.CheckCall[id.Name]; ok {
			if err := runCheckCall(ctx, def, ex.Args); err != nil {
				return "", err
			}
		}
	}
	fn, err := emitExpr(ctx, ex.Func)
	if err != nil {
		return "", err
	}
	args, err := emitCallArgs(ctx, ex.Args)
	if err != nil {
		return "", err
	}
	return fn + "(" + args + ")", nil
}

// emitInlineCall expands def at a call site.
func emitInlineCall(ctx *Context, def *ast.InlineStmt, args []ast.Expr) (string, error) {
	fn := ExpandInline(def, args)
	body, err := emitFuncExpr(ctx, fn)
	if err != nil {
		return "", err
	}
	return "(" + body + ")()", nil
}

// runCheckCall synthesizes `(function(params) body end)(args)` and
// evaluates it at compile time. Its result is discarded; only a
// validator error affects compilation.
func runCheckCall(ctx *Context, def *ast.CheckCallStmt, args []ast.Expr) error {
	validator := &ast.CallExpr{
		BaseExpr: ast.BaseExpr{Base: ast.Base{Pos: def.Base.Pos}},
		Func: &ast.FuncExpr{
			BaseExpr: ast.BaseExpr{Base: ast.Base{Pos: def.Base.Pos}},
			Params:   def.Params,
			Body:     def.Body,
		},
		Args: args,
	}
	src, err := emitExpr(ctx, validator)
	if err != nil {
		return err
	}
	_, err = ctx.Evaluate(ctx.InputFile, validator, src)
	return err
}

// emitIdentRead rewrites a bare identifier reference through the using
// stack. Prefix expressions are emitted with the using stack cleared so
// a prefix that is itself a bare identifier is looked up literally, not
// rewritten through itself.
func emitIdentRead(ctx *Context, name string) string {
	if len(ctx.UsingStack) == 0 {
		return name
	}
	fallback := name
	saved := ctx.UsingStack
	ctx.UsingStack = nil
	for i := 0; i < len(saved); i++ {
		prefixText, err := emitExpr(ctx, saved[i])
		if err != nil {
			prefixText = "nil"
		}
		access := prefixText + "." + name
		fallback = "(" + access + " ~= nil and " + access + " or " + fallback + ")"
	}
	ctx.UsingStack = saved
	return fallback
}

func emitTableExpr(ctx *Context, ex *ast.TableExpr) (string, error) {
	parts := make([]string, len(ex.Fields))
	for i, f := range ex.Fields {
		val, err := emitExpr(ctx, f.Value)
		if err != nil {
			return "", err
		}
		switch f.Kind {
		case ast.FieldPositional:
			parts[i] = val
		case ast.FieldNamed:
			parts[i] = f.Name + " = " + val
		case ast.FieldComputed:
			key, err := emitExpr(ctx, f.Key)
			if err != nil {
				return "", err
			}
			parts[i] = "[" + key + "] = " + val
		}
	}
	return "{" + strings.Join(parts, ", ") + "}", nil
}

func emitFuncExpr(ctx *Context, ex *ast.FuncExpr) (string, error) {
	w := &luaWriter{}
	params := strings.Join(ex.Params, ", ")
	if ex.Variadic {
		if params != "" {
			params += ", "
		}
		params += "..."
	}
	inner := ctx.Clone()
	bindFuncParams(inner, ex.Params)
	w.Indent()
	body, err := w.Capture(func() error {
		return emitFunctionBody(inner, w, ex.Body)
	})
	w.Dedent()
	if err != nil {
		return "", err
	}
	return "function(" + params + ")\n" + body + "end", nil
}

func bindFuncParams(ctx *Context, params []string) {
	for _, p := range params {
		ctx.Bind(p, nil)
	}
}

// emitDoExpr emits a do-as-expression: the value of the last statement,
// which must be an ExprStmt, becomes the expression's value.
func emitDoExpr(ctx *Context, ex *ast.DoExpr) (string, error) {
	w := &luaWriter{}
	inner := ctx.Clone()
	body := ex.Body
	w.Indent()
	captured, err := w.Capture(func() error {
		if n := len(body); n == 0 {
			return nil
		}
		if last, ok := body[len(body)-1].(*ast.ExprStmt); ok {
			if err := emitFunctionBody(inner, w, body[:len(body)-1]); err != nil {
				return err
			}
			val, err := emitExpr(inner, last.Call)
			if err != nil {
				return err
			}
			return flushDefers(inner, w, []string{val}, true)
		}
		return emitFunctionBody(inner, w, body)
	})
	w.Dedent()
	if err != nil {
		return "", err
	}
	return "(function()\n" + captured + "end)()", nil
}
