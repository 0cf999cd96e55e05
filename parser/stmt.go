package parser

import (
	"fmt"

	"github.com/piravelha/complua/ast"
	"github.com/piravelha/complua/lexer"
)

var compoundOps = map[string]string{
	"+=": "+", "-=": "-", "*=": "*", "/=": "/", "%=": "%", "^=": "^", "..=": "..",
}

// parseStmt parses a single statement, dispatching on the current token.
// Directives that register at emission time (#inline, #checkcall) still
// produce a statement node here; the emitter performs the registration
// when it walks the resulting tree.
func (p *Parser) parseStmt() (ast.Stmt, error) {
	pos := p.pos()

	switch {
	case p.atKeyword("local"):
		return p.parseLocalDecl(pos)
	case p.atKeyword("function"):
		return p.parseFuncDecl(pos)
	case p.atKeyword("if"):
		return p.parseIf(pos)
	case p.atKeyword("for"):
		return p.parseFor(pos)
	case p.atKeyword("return"):
		return p.parseReturn(pos)
	case p.atKeyword("break"):
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.BreakStmt{BaseStmt: base(pos)}, nil
	case p.atKeyword("do"):
		if err := p.advance(); err != nil {
			return nil, err
		}
		body, err := p.parseBlock(atBlockTerminator)
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("end"); err != nil {
			return nil, err
		}
		return &ast.DoStmt{BaseStmt: base(pos), Body: body}, nil
	case p.cur.Kind == lexer.Directive:
		return p.parseDirectiveStmt(pos)
	default:
		return p.parseSimpleStmt(pos)
	}
}

func base(pos ast.Pos) ast.BaseStmt { return ast.BaseStmt{Base: ast.Base{Pos: pos}} }
func baseE(pos ast.Pos) ast.BaseExpr { return ast.BaseExpr{Base: ast.Base{Pos: pos}} }

func (p *Parser) parseLocalDecl(pos ast.Pos) (ast.Stmt, error) {
	if err := p.advance(); err != nil { // consume "local"
		return nil, err
	}
	var names []string
	for {
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		if p.atOp(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if !p.atOp("=") {
		return &ast.LocalDecl{BaseStmt: base(pos), Names: names}, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	values, err := p.parseExprList()
	if err != nil {
		return nil, err
	}
	return &ast.LocalDecl{BaseStmt: base(pos), Names: names, Values: values}, nil
}

func (p *Parser) parseExprList() ([]ast.Expr, error) {
	var exprs []ast.Expr
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	exprs = append(exprs, e)
	for p.atOp(",") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}

func (p *Parser) parseParamList() ([]string, bool, error) {
	if err := p.expectOp("("); err != nil {
		return nil, false, err
	}
	var params []string
	variadic := false
	for !p.atOp(")") {
		if p.cur.Kind == lexer.Vararg {
			variadic = true
			if err := p.advance(); err != nil {
				return nil, false, err
			}
			break
		}
		name, err := p.expectIdent()
		if err != nil {
			return nil, false, err
		}
		params = append(params, name)
		if p.atOp(",") {
			if err := p.advance(); err != nil {
				return nil, false, err
			}
			continue
		}
		break
	}
	if err := p.expectOp(")"); err != nil {
		return nil, false, err
	}
	return params, variadic, nil
}

func (p *Parser) parseFuncDecl(pos ast.Pos) (ast.Stmt, error) {
	if err := p.advance(); err != nil { // "function"
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	params, variadic, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock(atBlockTerminator)
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("end"); err != nil {
		return nil, err
	}
	return &ast.FuncDeclStmt{BaseStmt: base(pos), Name: name, Params: params, Variadic: variadic, Body: body}, nil
}

func (p *Parser) parseIf(pos ast.Pos) (ast.Stmt, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("then"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock(atBlockTerminator)
	if err != nil {
		return nil, err
	}
	stmt := &ast.IfStmt{BaseStmt: base(pos), Cond: cond, Body: body}
	for p.atKeyword("elseif") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		c, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("then"); err != nil {
			return nil, err
		}
		b, err := p.parseBlock(atBlockTerminator)
		if err != nil {
			return nil, err
		}
		stmt.Elseifs = append(stmt.Elseifs, ast.ElseifClause{Cond: c, Body: b})
	}
	if p.atKeyword("else") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		b, err := p.parseBlock(atBlockTerminator)
		if err != nil {
			return nil, err
		}
		stmt.ElseBody = b
	}
	if err := p.expectKeyword("end"); err != nil {
		return nil, err
	}
	return stmt, nil
}

// parseFor disambiguates numeric-for from iterator-for by checking whether
// the single name is followed by "=" (numeric) or "," / "in" (iterator).
func (p *Parser) parseFor(pos ast.Pos) (ast.Stmt, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	first, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if p.atOp("=") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		start, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectOp(","); err != nil {
			return nil, err
		}
		stop, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		var step ast.Expr
		if p.atOp(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			step, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
		}
		if err := p.expectKeyword("do"); err != nil {
			return nil, err
		}
		body, err := p.parseBlock(atBlockTerminator)
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("end"); err != nil {
			return nil, err
		}
		return &ast.NumericForStmt{BaseStmt: base(pos), Var: first, Start: start, Stop: stop, Step: step, Body: body}, nil
	}

	names := []string{first}
	for p.atOp(",") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		n, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	if err := p.expectKeyword("in"); err != nil {
		return nil, err
	}
	iter, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("do"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock(atBlockTerminator)
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("end"); err != nil {
		return nil, err
	}
	return &ast.IteratorForStmt{BaseStmt: base(pos), Names: names, Iter: iter, Body: body}, nil
}

func (p *Parser) parseReturn(pos ast.Pos) (ast.Stmt, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if atBlockTerminator(p) || p.atOp(";") {
		return &ast.ReturnStmt{BaseStmt: base(pos)}, nil
	}
	values, err := p.parseExprList()
	if err != nil {
		return nil, err
	}
	return &ast.ReturnStmt{BaseStmt: base(pos), Values: values}, nil
}

// parseSimpleStmt handles assignment, compound assignment, and bare
// expression statements (calls / method calls), disambiguated by parsing a
// suffixed expression first and then looking at what follows it.
func (p *Parser) parseSimpleStmt(pos ast.Pos) (ast.Stmt, error) {
	target, err := p.parseSuffixedExpr()
	if err != nil {
		return nil, err
	}
	if p.atOp("=") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.AssignStmt{BaseStmt: base(pos), Target: target, Value: value}, nil
	}
	if p.cur.Kind == lexer.Op {
		if op, ok := compoundOps[p.cur.Text]; ok {
			if err := p.advance(); err != nil {
				return nil, err
			}
			value, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			return &ast.CompoundAssignStmt{BaseStmt: base(pos), Target: target, Op: op, Value: value}, nil
		}
	}
	switch target.(type) {
	case *ast.CallExpr, *ast.MethodCallExpr:
		return &ast.ExprStmt{BaseStmt: base(pos), Call: target}, nil
	default:
		return nil, fmt.Errorf("%d:%d: unexpected expression statement", pos.Line, pos.Col)
	}
}

func (p *Parser) parseDirectiveStmt(pos ast.Pos) (ast.Stmt, error) {
	name := p.cur.Text
	if err := p.advance(); err != nil {
		return nil, err
	}
	switch name {
	case "#eval":
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.EvalStmt{BaseStmt: base(pos), Arg: e}, nil
	case "#load":
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.LoadStmt{BaseStmt: base(pos), Arg: e}, nil
	case "#assert":
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.AssertStmt{BaseStmt: base(pos), Arg: e}, nil
	case "#debug":
		msg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		var args []ast.Expr
		for p.atOp(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			a, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
		}
		return &ast.DebugStmt{BaseStmt: base(pos), Msg: msg, Args: args}, nil
	case "#checkcall":
		fname, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		params, _, err := p.parseParamList()
		if err != nil {
			return nil, err
		}
		body, err := p.parseBlock(atBlockTerminator)
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("end"); err != nil {
			return nil, err
		}
		return &ast.CheckCallStmt{BaseStmt: base(pos), Name: fname, Params: params, Body: body}, nil
	case "#todo":
		if atBlockTerminator(p) {
			return &ast.TodoStmt{BaseStmt: base(pos)}, nil
		}
		msg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.TodoStmt{BaseStmt: base(pos), Msg: msg}, nil
	case "#inline":
		if err := p.expectKeyword("function"); err != nil {
			return nil, err
		}
		fname, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		params, _, err := p.parseParamList()
		if err != nil {
			return nil, err
		}
		body, err := p.parseBlock(atBlockTerminator)
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("end"); err != nil {
			return nil, err
		}
		return &ast.InlineStmt{BaseStmt: base(pos), Name: fname, Params: params, Body: body}, nil
	case "#defer":
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		return &ast.DeferStmt{BaseStmt: base(pos), Call: s}, nil
	case "#using":
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.UsingStmt{BaseStmt: base(pos), Prefix: e}, nil
	default:
		return nil, fmt.Errorf("%d:%d: %q is not valid in statement position", pos.Line, pos.Col, name)
	}
}
