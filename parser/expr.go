package parser

import (
	"fmt"

	"github.com/piravelha/complua/ast"
	"github.com/piravelha/complua/lexer"
)

// precedence ladder, loosest first (index 0); power binds tightest and is
// handled separately since it is right-associative. Entries at the same
// level associate left.
var precLevels = [][]string{
	{"or"},
	{"and"},
	{"==", "~="},
	{"<", ">", "<=", ">="},
	{"+", "-", ".."},
	{"*", "/", "%"},
}

const powerOp = "^"

func (p *Parser) parseExpr() (ast.Expr, error) {
	return p.parseBinary(0)
}

func (p *Parser) parseBinary(level int) (ast.Expr, error) {
	if level >= len(precLevels) {
		return p.parsePower()
	}
	left, err := p.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}
	for p.matchesLevel(level) {
		pos := p.pos()
		op := p.opText()
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseBinary(level + 1)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{BaseExpr: baseE(pos), Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) opText() string { return p.cur.Text }

func (p *Parser) matchesLevel(level int) bool {
	text := p.opText()
	if p.cur.Kind != lexer.Op && p.cur.Kind != lexer.Keyword {
		return false
	}
	for _, op := range precLevels[level] {
		if text == op {
			return true
		}
	}
	return false
}

// parsePower handles right-associative `^`, the tightest binary level.
func (p *Parser) parsePower() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return p.parsePowerFrom(left)
}

// parsePowerFrom continues power-level parsing given an already-parsed
// left operand (used when the caller had to commit to parsing an
// identifier before discovering it is not a `name = value` table field).
func (p *Parser) parsePowerFrom(left ast.Expr) (ast.Expr, error) {
	if p.atOp(powerOp) {
		pos := p.pos()
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parsePower() // right-assoc: recurse at same level
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{BaseExpr: baseE(pos), Op: powerOp, Left: left, Right: right}, nil
	}
	return left, nil
}

// climbFrom continues binary-operator parsing given an already-parsed
// tightest-level (post-power) operand, applying levels from tightest to
// loosest. This mirrors parseBinary's recursion but seeded mid-chain.
func (p *Parser) climbFrom(seed ast.Expr) (ast.Expr, error) {
	left := seed
	for level := len(precLevels) - 1; level >= 0; level-- {
		for p.matchesLevel(level) {
			pos := p.pos()
			op := p.opText()
			if err := p.advance(); err != nil {
				return nil, err
			}
			right, err := p.parseBinary(level + 1)
			if err != nil {
				return nil, err
			}
			left = &ast.BinaryExpr{BaseExpr: baseE(pos), Op: op, Left: left, Right: right}
		}
	}
	return left, nil
}

// continueExprFrom resumes full expression parsing (suffixes, power,
// binary operators) given an identifier already consumed while probing
// for `name = value` table-field syntax.
func (p *Parser) continueExprFrom(e ast.Expr) (ast.Expr, error) {
	e, err := p.applySuffixes(e)
	if err != nil {
		return nil, err
	}
	e, err = p.parsePowerFrom(e)
	if err != nil {
		return nil, err
	}
	return p.climbFrom(e)
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	pos := p.pos()
	if p.atKeyword("not") || p.atOp("-") {
		op := p.cur.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{BaseExpr: baseE(pos), Op: op, Operand: operand}, nil
	}
	return p.parseSuffixedExpr()
}

// parseSuffixedExpr parses a primary expression followed by any chain of
// `.field`, `[index]`, `(args)`, and `:method(args)` suffixes.
func (p *Parser) parseSuffixedExpr() (ast.Expr, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return p.applySuffixes(e)
}

// applySuffixes consumes any chain of `.field`, `[index]`, `(args)`, and
// `:method(args)` suffixes following an already-parsed expression.
func (p *Parser) applySuffixes(e ast.Expr) (ast.Expr, error) {
	for {
		pos := p.pos()
		switch {
		case p.atOp("."):
			if err := p.advance(); err != nil {
				return nil, err
			}
			field, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			e = &ast.PropertyExpr{BaseExpr: baseE(pos), Object: e, Field: field}
		case p.atOp("["):
			if err := p.advance(); err != nil {
				return nil, err
			}
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expectOp("]"); err != nil {
				return nil, err
			}
			e = &ast.IndexExpr{BaseExpr: baseE(pos), Object: e, Index: idx}
		case p.atOp("("):
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			e = &ast.CallExpr{BaseExpr: baseE(pos), Func: e, Args: args}
		case p.atOp(":"):
			if err := p.advance(); err != nil {
				return nil, err
			}
			method, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			e = &ast.MethodCallExpr{BaseExpr: baseE(pos), Object: e, Method: method, Args: args}
		default:
			return e, nil
		}
	}
}

func (p *Parser) parseArgs() ([]ast.Expr, error) {
	if err := p.expectOp("("); err != nil {
		return nil, err
	}
	var args []ast.Expr
	for !p.atOp(")") {
		a, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.atOp(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if err := p.expectOp(")"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	pos := p.pos()
	switch {
	case p.cur.Kind == lexer.Number:
		text := p.cur.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.NumberLit{BaseExpr: baseE(pos), Text: text}, nil
	case p.cur.Kind == lexer.String:
		raw, val := lexer.DecodeString(p.cur)
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.StringLit{BaseExpr: baseE(pos), Value: val, Raw: raw}, nil
	case p.cur.Kind == lexer.Vararg:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.VarargExpr{BaseExpr: baseE(pos)}, nil
	case p.atKeyword("true"), p.atKeyword("false"):
		v := p.cur.Text == "true"
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.BoolLit{BaseExpr: baseE(pos), Value: v}, nil
	case p.atKeyword("nil"):
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.NilLit{BaseExpr: baseE(pos)}, nil
	case p.cur.Kind == lexer.Ident:
		name := p.cur.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Ident{BaseExpr: baseE(pos), Name: name}, nil
	case p.atOp("("):
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
		return &ast.ParenExpr{BaseExpr: baseE(pos), Inner: inner}, nil
	case p.atOp("{"):
		return p.parseTable(pos)
	case p.atKeyword("function"):
		return p.parseFuncExpr(pos)
	case p.atKeyword("do"):
		return p.parseDoExpr(pos)
	case p.cur.Kind == lexer.Directive:
		return p.parseDirectiveExpr(pos)
	default:
		return nil, fmt.Errorf("%d:%d: unexpected token %q", p.cur.Line, p.cur.Col, p.cur.Text)
	}
}

func (p *Parser) parseDirectiveExpr(pos ast.Pos) (ast.Expr, error) {
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
		return &ast.EvalExpr{BaseExpr: baseE(pos), Arg: e}, nil
	case "#load":
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.LoadExpr{BaseExpr: baseE(pos), Arg: e}, nil
	case "#repr":
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.ReprExpr{BaseExpr: baseE(pos), Arg: e}, nil
	default:
		return nil, fmt.Errorf("%d:%d: %q is not valid in expression position", pos.Line, pos.Col, name)
	}
}

func (p *Parser) parseDoExpr(pos ast.Pos) (ast.Expr, error) {
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
	return &ast.DoExpr{BaseExpr: baseE(pos), Body: body}, nil
}

func (p *Parser) parseFuncExpr(pos ast.Pos) (ast.Expr, error) {
	if err := p.advance(); err != nil {
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
	return &ast.FuncExpr{BaseExpr: baseE(pos), Params: params, Variadic: variadic, Body: body}, nil
}

func (p *Parser) parseTable(pos ast.Pos) (ast.Expr, error) {
	if err := p.advance(); err != nil { // "{"
		return nil, err
	}
	var fields []ast.Field
	for !p.atOp("}") {
		field, err := p.parseField()
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
		if p.atOp(",") || p.atOp(";") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if err := p.expectOp("}"); err != nil {
		return nil, err
	}
	return &ast.TableExpr{BaseExpr: baseE(pos), Fields: fields}, nil
}

func (p *Parser) parseField() (ast.Field, error) {
	if p.atOp("[") {
		if err := p.advance(); err != nil {
			return ast.Field{}, err
		}
		key, err := p.parseExpr()
		if err != nil {
			return ast.Field{}, err
		}
		if err := p.expectOp("]"); err != nil {
			return ast.Field{}, err
		}
		if err := p.expectOp("="); err != nil {
			return ast.Field{}, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return ast.Field{}, err
		}
		return ast.Field{Kind: ast.FieldComputed, Key: key, Value: value}, nil
	}
	if p.cur.Kind == lexer.Ident {
		pos := p.pos()
		name := p.cur.Text
		if err := p.advance(); err != nil {
			return ast.Field{}, err
		}
		if p.atOp("=") {
			if err := p.advance(); err != nil {
				return ast.Field{}, err
			}
			value, err := p.parseExpr()
			if err != nil {
				return ast.Field{}, err
			}
			return ast.Field{Kind: ast.FieldNamed, Name: name, Value: value}, nil
		}
		// Not a named field after all; continue as a positional expression
		// starting from the identifier we already consumed.
		ident := &ast.Ident{BaseExpr: baseE(pos), Name: name}
		value, err := p.continueExprFrom(ident)
		if err != nil {
			return ast.Field{}, err
		}
		return ast.Field{Kind: ast.FieldPositional, Value: value}, nil
	}
	value, err := p.parseExpr()
	if err != nil {
		return ast.Field{}, err
	}
	return ast.Field{Kind: ast.FieldPositional, Value: value}, nil
}
