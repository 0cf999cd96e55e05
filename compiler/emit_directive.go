package compiler

import (
	"strings"

	"github.com/piravelha/complua/ast"
	"github.com/piravelha/complua/parser"
)

// emitEvalDirective implements "#eval expr" in expression position: the
// output fragment is the double-form splice produced by the compile-time
// evaluator.
func emitEvalDirective(ctx *Context, arg ast.Expr) (string, error) {
	src, err := emitExpr(ctx, arg)
	if err != nil {
		return "", err
	}
	res, err := ctx.Evaluate(ctx.InputFile, arg, src)
	if err != nil {
		return "", err
	}
	return res.Spliced, nil
}

// emitAssertExpr implements "#assert expr" as "#eval assert(expr)": the
// compiler aborts if expr is falsy at compile time and no runtime code
// is emitted.
func emitAssertExpr(ctx *Context, arg ast.Expr) error {
	wrapped := &ast.CallExpr{
		BaseExpr: ast.BaseExpr{Base: ast.Base{Pos: arg.ExprPos()}},
		Func:     &ast.Ident{BaseExpr: ast.BaseExpr{Base: ast.Base{Pos: arg.ExprPos()}}, Name: "assert"},
		Args:     []ast.Expr{arg},
	}
	src, err := emitExpr(ctx, wrapped)
	if err != nil {
		return err
	}
	_, err = ctx.Evaluate(ctx.InputFile, wrapped, src)
	return err
}

// emitLoadDirective implements "#load expr" in expression position: the
// serializer's output is decoded structurally (it must parse as a quoted
// string literal expression) rather than matched against a single regex
// shape.
func emitLoadDirective(ctx *Context, arg ast.Expr) (string, error) {
	src, err := emitExpr(ctx, arg)
	if err != nil {
		return "", err
	}
	res, err := ctx.EvaluateLoad(ctx.InputFile, arg, src)
	if err != nil {
		return "", err
	}
	text, ok := decodeStringLiteral(res.Serialized)
	if !ok {
		return "", Fatal(ctx.InputFile, arg.ExprPos().Line, "#load expression did not evaluate to a string")
	}
	fragExpr, err := parser.ParseExprFragment(text)
	if err != nil {
		return "", Fatal(ctx.InputFile, arg.ExprPos().Line, "#load fragment failed to parse: "+err.Error())
	}
	return emitExpr(ctx, fragExpr)
}

// decodeStringLiteral structurally decodes the serializer's quoted-string
// output (produced by runtime.lua's escape_string) back into a Go string,
// rather than regex-matching a single literal shape.
func decodeStringLiteral(serialized string) (string, bool) {
	s := strings.TrimSpace(serialized)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", false
	}
	body := s[1 : len(s)-1]
	var out strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			out.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			return "", false
		}
		switch body[i] {
		case 'n':
			out.WriteByte('\n')
		case '"':
			out.WriteByte('"')
		case '\\':
			out.WriteByte('\\')
		default:
			if body[i] >= '0' && body[i] <= '9' && i+2 < len(body) {
				var n int
				for j := 0; j < 3 && i < len(body) && body[i] >= '0' && body[i] <= '9'; j++ {
					n = n*10 + int(body[i]-'0')
					i++
				}
				i--
				out.WriteByte(byte(n))
			} else {
				out.WriteByte(body[i])
			}
		}
	}
	return out.String(), true
}

// emitReprDirective implements "#repr expr": a runtime call to the
// embedded serializer.
func emitReprDirective(ctx *Context, arg ast.Expr) (string, error) {
	src, err := emitExpr(ctx, arg)
	if err != nil {
		return "", err
	}
	return "__complua_serialize(" + src + ")", nil
}

