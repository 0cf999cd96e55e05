package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piravelha/complua/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *ast.Program {
	prog, err := ParseSource(src, "<test>")
	require.NoError(t, err)
	return prog
}

func TestParserPrecedenceMultiplicativeOverAdditive(t *testing.T) {
	prog := mustParse(t, "return 1 + 2 * 3")
	ret := prog.Statements[0].(*ast.ReturnStmt)
	bin := ret.Values[0].(*ast.BinaryExpr)
	assert.Equal(t, "+", bin.Op)
	assert.Equal(t, "1", bin.Left.(*ast.NumberLit).Text)
	rhs := bin.Right.(*ast.BinaryExpr)
	assert.Equal(t, "*", rhs.Op)
}

func TestParserPowerIsRightAssociative(t *testing.T) {
	prog := mustParse(t, "return 2 ^ 3 ^ 2")
	ret := prog.Statements[0].(*ast.ReturnStmt)
	bin := ret.Values[0].(*ast.BinaryExpr)
	assert.Equal(t, "^", bin.Op)
	assert.Equal(t, "2", bin.Left.(*ast.NumberLit).Text)
	rhs := bin.Right.(*ast.BinaryExpr)
	assert.Equal(t, "^", rhs.Op)
	assert.Equal(t, "3", rhs.Left.(*ast.NumberLit).Text)
	assert.Equal(t, "2", rhs.Right.(*ast.NumberLit).Text)
}

func TestParserOrIsLoosestThanAnd(t *testing.T) {
	prog := mustParse(t, "return a or b and c")
	ret := prog.Statements[0].(*ast.ReturnStmt)
	top := ret.Values[0].(*ast.BinaryExpr)
	assert.Equal(t, "or", top.Op)
	assert.Equal(t, "a", top.Left.(*ast.Ident).Name)
	rhs := top.Right.(*ast.BinaryExpr)
	assert.Equal(t, "and", rhs.Op)
}

func TestParserRelationalBindsTighterThanEquality(t *testing.T) {
	prog := mustParse(t, "return a < b == c")
	ret := prog.Statements[0].(*ast.ReturnStmt)
	top := ret.Values[0].(*ast.BinaryExpr)
	assert.Equal(t, "==", top.Op)
	lhs := top.Left.(*ast.BinaryExpr)
	assert.Equal(t, "<", lhs.Op)
}

func TestParserTableFieldKinds(t *testing.T) {
	prog := mustParse(t, "local t = {x = 1, 2, [3] = 4, bar}")
	decl := prog.Statements[0].(*ast.LocalDecl)
	tbl := decl.Values[0].(*ast.TableExpr)
	require.Len(t, tbl.Fields, 4)
	assert.Equal(t, ast.FieldNamed, tbl.Fields[0].Kind)
	assert.Equal(t, "x", tbl.Fields[0].Name)
	assert.Equal(t, ast.FieldPositional, tbl.Fields[1].Kind)
	assert.Equal(t, ast.FieldComputed, tbl.Fields[2].Kind)
	assert.Equal(t, ast.FieldPositional, tbl.Fields[3].Kind)
	assert.Equal(t, "bar", tbl.Fields[3].Value.(*ast.Ident).Name)
}

func TestParserTableFieldCallDisambiguation(t *testing.T) {
	// "foo()" must not be mistaken for a named field since there is no "=".
	prog := mustParse(t, "local t = {foo()}")
	decl := prog.Statements[0].(*ast.LocalDecl)
	tbl := decl.Values[0].(*ast.TableExpr)
	require.Len(t, tbl.Fields, 1)
	assert.Equal(t, ast.FieldPositional, tbl.Fields[0].Kind)
	_, ok := tbl.Fields[0].Value.(*ast.CallExpr)
	assert.True(t, ok)
}

func TestParserNumericFor(t *testing.T) {
	prog := mustParse(t, "for i = 1, 10, 2 do end")
	st := prog.Statements[0].(*ast.NumericForStmt)
	assert.Equal(t, "i", st.Var)
	assert.NotNil(t, st.Step)
}

func TestParserIteratorFor(t *testing.T) {
	prog := mustParse(t, "for k, v in pairs(t) do end")
	st := prog.Statements[0].(*ast.IteratorForStmt)
	assert.Equal(t, []string{"k", "v"}, st.Names)
}

func TestParserEvalExpr(t *testing.T) {
	prog := mustParse(t, "local x = #eval 1 + 1")
	decl := prog.Statements[0].(*ast.LocalDecl)
	_, ok := decl.Values[0].(*ast.EvalExpr)
	assert.True(t, ok)
}

func TestParserCheckCallStmt(t *testing.T) {
	prog := mustParse(t, "#checkcall f(x) #assert x > 0 end")
	st := prog.Statements[0].(*ast.CheckCallStmt)
	assert.Equal(t, "f", st.Name)
	assert.Equal(t, []string{"x"}, st.Params)
	require.Len(t, st.Body, 1)
}

func TestParserInlineStmt(t *testing.T) {
	prog := mustParse(t, "#inline function add(x, y) return x + y end")
	st := prog.Statements[0].(*ast.InlineStmt)
	assert.Equal(t, "add", st.Name)
	assert.Equal(t, []string{"x", "y"}, st.Params)
}

func TestParserDeferStmt(t *testing.T) {
	prog := mustParse(t, "#defer cleanup()")
	st := prog.Statements[0].(*ast.DeferStmt)
	_, ok := st.Call.(*ast.ExprStmt)
	assert.True(t, ok)
}

func TestParserUsingStmt(t *testing.T) {
	prog := mustParse(t, "#using cfg")
	st := prog.Statements[0].(*ast.UsingStmt)
	assert.Equal(t, "cfg", st.Prefix.(*ast.Ident).Name)
}

func TestParserTodoStmtWithoutMessage(t *testing.T) {
	// A bare "#todo" is only unambiguous as the last statement in its
	// block (otherwise the parser cannot tell it apart from "#todo <expr
	// that happens to start the next statement>"), so it is exercised here
	// as the sole statement inside a do-block.
	prog := mustParse(t, "do #todo end")
	do := prog.Statements[0].(*ast.DoStmt)
	st := do.Body[0].(*ast.TodoStmt)
	assert.Nil(t, st.Msg)
}

func TestParserTodoStmtWithMessage(t *testing.T) {
	prog := mustParse(t, `#todo "later"`)
	st := prog.Statements[0].(*ast.TodoStmt)
	require.NotNil(t, st.Msg)
	assert.Equal(t, "later", st.Msg.(*ast.StringLit).Value)
}

func TestParserDebugStmtWithArgs(t *testing.T) {
	prog := mustParse(t, `#debug "x = %d", x`)
	st := prog.Statements[0].(*ast.DebugStmt)
	assert.Equal(t, "x = %d", st.Msg.(*ast.StringLit).Value)
	require.Len(t, st.Args, 1)
}

func TestParserAssertStmt(t *testing.T) {
	prog := mustParse(t, "#assert x > 0")
	st := prog.Statements[0].(*ast.AssertStmt)
	_, ok := st.Arg.(*ast.BinaryExpr)
	assert.True(t, ok)
}

func TestParserLoadStmtAndExpr(t *testing.T) {
	prog := mustParse(t, "#load \"return 1\"\nlocal x = #load \"return 2\"")
	_, ok := prog.Statements[0].(*ast.LoadStmt)
	assert.True(t, ok)
	decl := prog.Statements[1].(*ast.LocalDecl)
	_, ok = decl.Values[0].(*ast.LoadExpr)
	assert.True(t, ok)
}

func TestParserCompoundAssign(t *testing.T) {
	prog := mustParse(t, "x += 1")
	st := prog.Statements[0].(*ast.CompoundAssignStmt)
	assert.Equal(t, "+", st.Op)
}

func TestParserDoExpr(t *testing.T) {
	prog := mustParse(t, "local x = do local y = 1\nf(y) end")
	decl := prog.Statements[0].(*ast.LocalDecl)
	doExpr := decl.Values[0].(*ast.DoExpr)
	require.Len(t, doExpr.Body, 2)
	_, ok := doExpr.Body[1].(*ast.ExprStmt)
	assert.True(t, ok)
}

func TestParseFileReadsFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.lx")
	require.NoError(t, os.WriteFile(path, []byte("return 1"), 0644))
	prog, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, prog.Statements, 1)
}

func TestParseExprFragment(t *testing.T) {
	e, err := ParseExprFragment("1 + 2")
	require.NoError(t, err)
	_, ok := e.(*ast.BinaryExpr)
	assert.True(t, ok)
}

func TestParseExprFragmentRejectsTrailingInput(t *testing.T) {
	_, err := ParseExprFragment("1 + 2 garbage")
	require.Error(t, err)
}

func TestParseBlockFragment(t *testing.T) {
	stmts, err := ParseBlockFragment("local x = 1\nreturn x")
	require.NoError(t, err)
	require.Len(t, stmts, 2)
}
