// Package parser implements a recursive-descent, precedence-climbing
// parser for the extended Lua dialect complua compiles. It is a
// hand-written descent parser over the lexer package, entered through
// ParseFile/ParseSource for a whole program and ParseExprFragment/
// ParseBlockFragment for the source fragments "#load" splices back in.
package parser

import (
	"fmt"
	"os"

	"github.com/piravelha/complua/ast"
	"github.com/piravelha/complua/lexer"
)

// Parser holds the token stream and lookahead state for one parse.
type Parser struct {
	lex      *lexer.Lexer
	cur      lexer.Token
	filename string
}

// ParseFile reads filename and parses it into a Program.
func ParseFile(filename string) (*ast.Program, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseSource(string(src), filename)
}

// ParseSource parses src and returns the Program AST; it is an error for
// src to be empty. name is used only for diagnostics.
func ParseSource(src, name string) (*ast.Program, error) {
	if src == "" {
		return nil, fmt.Errorf("%s: empty source", name)
	}
	p := &Parser{lex: lexer.New(src), filename: name}
	if err := p.advance(); err != nil {
		return nil, p.wrap(err)
	}
	stmts, err := p.parseBlock(isEOF)
	if err != nil {
		return nil, p.wrap(err)
	}
	return &ast.Program{Statements: stmts, SourceFile: name}, nil
}

// ParseExprFragment parses src as a single standalone expression, used by
// "#load" in expression position to splice a compile-time string result
// back in as source.
func ParseExprFragment(src string) (ast.Expr, error) {
	p := &Parser{lex: lexer.New(src), filename: "<load>"}
	if err := p.advance(); err != nil {
		return nil, p.wrap(err)
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, p.wrap(err)
	}
	if !isEOF(p) {
		return nil, p.wrap(fmt.Errorf("%d:%d: unexpected trailing input %q", p.cur.Line, p.cur.Col, p.cur.Text))
	}
	return e, nil
}

// ParseBlockFragment parses src as a sequence of statements, used by
// "#load" in statement position to splice a compile-time string result
// back in as a block of source.
func ParseBlockFragment(src string) ([]ast.Stmt, error) {
	p := &Parser{lex: lexer.New(src), filename: "<load>"}
	if err := p.advance(); err != nil {
		return nil, p.wrap(err)
	}
	stmts, err := p.parseBlock(isEOF)
	if err != nil {
		return nil, p.wrap(err)
	}
	return stmts, nil
}

func (p *Parser) wrap(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s:%v", p.filename, err)
}

func (p *Parser) advance() error {
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *Parser) pos() ast.Pos { return ast.Pos{Line: p.cur.Line, Col: p.cur.Col} }

func (p *Parser) atKeyword(kw string) bool { return p.cur.Kind == lexer.Keyword && p.cur.Text == kw }
func (p *Parser) atOp(op string) bool      { return p.cur.Kind == lexer.Op && p.cur.Text == op }
func (p *Parser) atDirective(d string) bool {
	return p.cur.Kind == lexer.Directive && p.cur.Text == d
}

func (p *Parser) expectOp(op string) error {
	if !p.atOp(op) {
		return fmt.Errorf("%d:%d: expected %q, got %q", p.cur.Line, p.cur.Col, op, p.cur.Text)
	}
	return p.advance()
}

func (p *Parser) expectKeyword(kw string) error {
	if !p.atKeyword(kw) {
		return fmt.Errorf("%d:%d: expected %q, got %q", p.cur.Line, p.cur.Col, kw, p.cur.Text)
	}
	return p.advance()
}

func (p *Parser) expectIdent() (string, error) {
	if p.cur.Kind != lexer.Ident {
		return "", fmt.Errorf("%d:%d: expected identifier, got %q", p.cur.Line, p.cur.Col, p.cur.Text)
	}
	name := p.cur.Text
	return name, p.advance()
}

func isEOF(p *Parser) bool { return p.cur.Kind == lexer.EOF }

// blockEnd stoppers used by parseBlock to know when a body is finished.
func atBlockTerminator(p *Parser) bool {
	if p.cur.Kind == lexer.EOF {
		return true
	}
	if p.cur.Kind != lexer.Keyword {
		return false
	}
	switch p.cur.Text {
	case "end", "else", "elseif":
		return true
	}
	return false
}

// parseBlock parses statements until stop reports true.
func (p *Parser) parseBlock(stop func(*Parser) bool) ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for !stop(p) {
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		if s != nil {
			stmts = append(stmts, s)
		}
	}
	return stmts, nil
}
