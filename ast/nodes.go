// Package ast defines the tagged node representation produced by the
// parser and consumed by the compiler's emitter.
package ast

// Pos is a source position. Line and Col are 1-based; Col is 0 when
// unknown (e.g. nodes synthesized during inline expansion).
type Pos struct {
	Line int
	Col  int
}

// Node is the interface implemented by every AST node.
type Node interface {
	node()
}

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmt()
	StmtPos() Pos
}

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	expr()
	ExprPos() Pos
}

// Base embeds a Pos and supplies the node() boilerplate shared by every
// concrete node, including expressions, since directives may appear in
// expression position.
type Base struct {
	Pos Pos
}

func (b Base) node() {}

// BaseStmt is embedded by every statement node.
type BaseStmt struct{ Base }

func (b BaseStmt) stmt()        {}
func (b BaseStmt) StmtPos() Pos { return b.Base.Pos }

// BaseExpr is embedded by every expression node.
type BaseExpr struct{ Base }

func (b BaseExpr) expr()        {}
func (b BaseExpr) ExprPos() Pos { return b.Base.Pos }

// Program is the root node produced by the parser.
type Program struct {
	Base
	Statements []Stmt
	SourceFile string
}

// ---- atoms --------------------------------------------------------------

type NumberLit struct {
	BaseExpr
	Text string // raw literal text, preserved verbatim for re-emission
}

type StringLit struct {
	BaseExpr
	Value string // already escape-processed
	Raw   string // original token text including quotes, for re-emission
}

type BoolLit struct {
	BaseExpr
	Value bool
}

type NilLit struct{ BaseExpr }

// VarargExpr represents the `...` atom.
type VarargExpr struct{ BaseExpr }

type Ident struct {
	BaseExpr
	Name string
}

// ---- expressions ---------------------------------------------------------

type UnaryExpr struct {
	BaseExpr
	Op      string // "-", "not"
	Operand Expr
}

// BinaryExpr represents every binary operator; Op carries the precedence
// level implicitly via its text ("+", "==", "and", "or", ...).
type BinaryExpr struct {
	BaseExpr
	Op    string
	Left  Expr
	Right Expr
}

// PropertyExpr represents obj.field.
type PropertyExpr struct {
	BaseExpr
	Object Expr
	Field  string
}

// IndexExpr represents obj[index].
type IndexExpr struct {
	BaseExpr
	Object Expr
	Index  Expr
}

// CallExpr represents f(args...).
type CallExpr struct {
	BaseExpr
	Func Expr
	Args []Expr
}

// MethodCallExpr represents obj:method(args...).
type MethodCallExpr struct {
	BaseExpr
	Object Expr
	Method string
	Args   []Expr
}

// ParenExpr represents a parenthesised expression, kept distinct from its
// inner expression so the emitter can reproduce parens where they change
// call-adjustment semantics in the target dialect.
type ParenExpr struct {
	BaseExpr
	Inner Expr
}

// FieldKind distinguishes the three shapes a table constructor entry can take.
type FieldKind int

const (
	FieldPositional FieldKind = iota
	FieldNamed
	FieldComputed
)

// Field is one entry of a table constructor.
type Field struct {
	Kind  FieldKind
	Name  string // set for FieldNamed
	Key   Expr   // set for FieldComputed
	Value Expr
}

type TableExpr struct {
	BaseExpr
	Fields []Field
}

type FuncExpr struct {
	BaseExpr
	Params   []string
	Variadic bool
	Body     []Stmt
}

// DoExpr represents `do ... end` used in expression position: the value of
// the last statement (which must be an ExprStmt) is the expression's value.
type DoExpr struct {
	BaseExpr
	Body []Stmt
}

// ---- compile-time directive expressions ----------------------------------

type EvalExpr struct {
	BaseExpr
	Arg Expr
}

type LoadExpr struct {
	BaseExpr
	Arg Expr
}

type ReprExpr struct {
	BaseExpr
	Arg Expr
}

// ---- statements -----------------------------------------------------------

type LocalDecl struct {
	BaseStmt
	Names  []string
	Values []Expr
}

type AssignStmt struct {
	BaseStmt
	Target Expr // Ident, PropertyExpr, or IndexExpr
	Value  Expr
}

// CompoundAssignStmt represents `a OP= b` before desugaring. The emitter
// desugars it into AssignStmt{Target, BinaryExpr{Op, Target, Value}}, but
// the AST keeps the original shape so dependency tracking and diagnostics
// see the original source line.
type CompoundAssignStmt struct {
	BaseStmt
	Target Expr
	Op     string // "+", "-", "*", "/", "%", "^", ".."
	Value  Expr
}

type FuncDeclStmt struct {
	BaseStmt
	Name     string
	Params   []string
	Variadic bool
	Body     []Stmt
}

type ExprStmt struct {
	BaseStmt
	Call Expr // CallExpr or MethodCallExpr
}

type ElseifClause struct {
	Cond Expr
	Body []Stmt
}

type IfStmt struct {
	BaseStmt
	Cond     Expr
	Body     []Stmt
	Elseifs  []ElseifClause
	ElseBody []Stmt // nil if no else
}

// NumericForStmt represents `for i = start, stop[, step] ... end`.
type NumericForStmt struct {
	BaseStmt
	Var   string
	Start Expr
	Stop  Expr
	Step  Expr // nil if omitted
	Body  []Stmt
}

// IteratorForStmt represents `for k, v in expr ... end`.
type IteratorForStmt struct {
	BaseStmt
	Names []string
	Iter  Expr
	Body  []Stmt
}

type ReturnStmt struct {
	BaseStmt
	Values []Expr
}

type BreakStmt struct{ BaseStmt }

type DoStmt struct {
	BaseStmt
	Body []Stmt
}

// ---- directive statements --------------------------------------------------

type EvalStmt struct {
	BaseStmt
	Arg Expr
}

type AssertStmt struct {
	BaseStmt
	Arg Expr
}

type DebugStmt struct {
	BaseStmt
	Msg  Expr
	Args []Expr
}

type CheckCallStmt struct {
	BaseStmt
	Name   string
	Params []string
	Body   []Stmt
}

type TodoStmt struct {
	BaseStmt
	Msg Expr // nil if omitted (defaults to "Not implemented")
}

type InlineStmt struct {
	BaseStmt
	Name   string
	Params []string
	Body   []Stmt
}

type DeferStmt struct {
	BaseStmt
	Call Stmt // the deferred statement, usually an ExprStmt
}

type UsingStmt struct {
	BaseStmt
	Prefix Expr
}

type LoadStmt struct {
	BaseStmt
	Arg Expr
}
