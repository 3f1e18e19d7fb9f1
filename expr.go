// Copyright 2026 The gohdl Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package gohdl

// An Op identifies a unary, binary or shift operation in a behavior
// expression. The set is closed: elaboration and lowering dispatch
// exhaustively over it.
type Op int

// Expression operations.
const (
	OpNot Op = iota // bitwise complement
	OpNeg           // two's complement negate
	OpAdd
	OpSub
	OpAnd
	OpOr
	OpXor
	OpEq // result width 1
	OpNe
	OpLt  // unsigned
	OpShl // shift by constant
	OpShr
)

var opNames = map[Op]string{
	OpNot: "not", OpNeg: "neg",
	OpAdd: "add", OpSub: "sub",
	OpAnd: "and", OpOr: "or", OpXor: "xor",
	OpEq: "eq", OpNe: "ne", OpLt: "lt",
	OpShl: "shl", OpShr: "shr",
}

func (o Op) String() string { return opNames[o] }

// An Expr is a node in an authoring-time behavior expression tree. Trees are
// pure data: they are reified into the elaborated Graph, never executed
// imperatively.
type Expr interface{ isExpr() }

// ConstExpr is a literal value. A Width of 0 means "adopt the width of the
// sibling operand" and is resolved during elaboration.
type ConstExpr struct {
	Value uint64
	Width int
}

// SigExpr reads a named signal (port, wire or register output).
type SigExpr struct{ Name string }

// UnaryExpr applies OpNot or OpNeg.
type UnaryExpr struct {
	Op Op
	X  Expr
}

// BinaryExpr applies a two-operand Op. Operand widths must match exactly;
// use Ext to adapt them first.
type BinaryExpr struct {
	Op   Op
	X, Y Expr
}

// ShiftExpr shifts X by a constant bit count, preserving width. Vacated
// bits are zero-filled.
type ShiftExpr struct {
	Op Op // OpShl or OpShr
	X  Expr
	By int
}

// SliceExpr selects bits High..Low of X, inclusive, LSB first.
type SliceExpr struct {
	X         Expr
	High, Low int
}

// ConcatExpr concatenates parts, first part most significant.
type ConcatExpr struct{ Parts []Expr }

// ExtExpr zero-extends or truncates X to Width bits.
type ExtExpr struct {
	X     Expr
	Width int
}

// SelExpr selects Then when Cond (width 1) is non-zero, Else otherwise.
// Every conditional in the authoring surface desugars to this node.
type SelExpr struct{ Cond, Then, Else Expr }

func (*ConstExpr) isExpr()  {}
func (*SigExpr) isExpr()    {}
func (*UnaryExpr) isExpr()  {}
func (*BinaryExpr) isExpr() {}
func (*ShiftExpr) isExpr()  {}
func (*SliceExpr) isExpr()  {}
func (*ConcatExpr) isExpr() {}
func (*ExtExpr) isExpr()    {}
func (*SelExpr) isExpr()    {}

// C returns a constant of the given width. C(v) with no width adopts the
// sibling operand's width at elaboration.
func C(v uint64, width ...int) Expr {
	w := 0
	if len(width) > 0 {
		w = width[0]
	}
	return &ConstExpr{Value: v, Width: w}
}

// Sig reads the named signal.
func Sig(name string) Expr { return &SigExpr{Name: name} }

// Not returns the bitwise complement of x.
func Not(x Expr) Expr { return &UnaryExpr{Op: OpNot, X: x} }

// Neg returns the two's complement of x.
func Neg(x Expr) Expr { return &UnaryExpr{Op: OpNeg, X: x} }

// Add returns x+y, wrapping mod 2^width.
func Add(x, y Expr) Expr { return &BinaryExpr{Op: OpAdd, X: x, Y: y} }

// Sub returns x-y, wrapping mod 2^width.
func Sub(x, y Expr) Expr { return &BinaryExpr{Op: OpSub, X: x, Y: y} }

// And returns the bitwise AND of x and y.
func And(x, y Expr) Expr { return &BinaryExpr{Op: OpAnd, X: x, Y: y} }

// Or returns the bitwise OR of x and y.
func Or(x, y Expr) Expr { return &BinaryExpr{Op: OpOr, X: x, Y: y} }

// Xor returns the bitwise XOR of x and y.
func Xor(x, y Expr) Expr { return &BinaryExpr{Op: OpXor, X: x, Y: y} }

// Eq returns the 1-bit equality of x and y.
func Eq(x, y Expr) Expr { return &BinaryExpr{Op: OpEq, X: x, Y: y} }

// Ne returns the 1-bit inequality of x and y.
func Ne(x, y Expr) Expr { return &BinaryExpr{Op: OpNe, X: x, Y: y} }

// Lt returns the 1-bit unsigned x<y.
func Lt(x, y Expr) Expr { return &BinaryExpr{Op: OpLt, X: x, Y: y} }

// Shl shifts x left by a constant count.
func Shl(x Expr, by int) Expr { return &ShiftExpr{Op: OpShl, X: x, By: by} }

// Shr shifts x right by a constant count.
func Shr(x Expr, by int) Expr { return &ShiftExpr{Op: OpShr, X: x, By: by} }

// Slice selects bits high..low of x, inclusive.
func Slice(x Expr, high, low int) Expr { return &SliceExpr{X: x, High: high, Low: low} }

// Cat concatenates expressions, first argument most significant.
func Cat(parts ...Expr) Expr { return &ConcatExpr{Parts: parts} }

// Ext zero-extends or truncates x to width bits.
func Ext(x Expr, width int) Expr { return &ExtExpr{X: x, Width: width} }

// Sel returns then when cond is non-zero, els otherwise.
func Sel(cond, then, els Expr) Expr { return &SelExpr{Cond: cond, Then: then, Else: els} }

// A Stmt is one behavior statement of a component declaration. Statement
// order is significant: a later assignment to the same destination replaces
// the earlier one, so the elaborated graph always ends up with exactly one
// driver per signal.
type Stmt interface{ isStmt() }

// AssignStmt drives the full width of the destination signal.
type AssignStmt struct {
	Dst string
	Src Expr
}

// IfStmt evaluates its branches conditionally. During elaboration it
// desugars into Sel nodes on every assigned destination; no imperative
// branching survives graph construction.
type IfStmt struct {
	Cond       Expr
	Then, Else []Stmt
}

// OnRiseStmt is a clock-edge guard: every assignment in Body becomes a
// register write in the named clock domain, with an optional synchronous
// reset condition forcing the register back to its initial value.
type OnRiseStmt struct {
	Clock string
	Reset Expr // 1-bit, may be nil
	Body  []Stmt
}

func (*AssignStmt) isStmt() {}
func (*IfStmt) isStmt()     {}
func (*OnRiseStmt) isStmt() {}

// Assign drives dst with src.
func Assign(dst string, src Expr) Stmt { return &AssignStmt{Dst: dst, Src: src} }

// If guards then-statements by cond. Use IfElse to attach an alternative.
func If(cond Expr, then ...Stmt) Stmt { return &IfStmt{Cond: cond, Then: then} }

// IfElse guards two branches by cond.
func IfElse(cond Expr, then, els []Stmt) Stmt {
	return &IfStmt{Cond: cond, Then: then, Else: els}
}

// OnRise makes the enclosed assignments synchronous to the named clock
// domain. A non-nil reset expression adds a synchronous reset.
func OnRise(clock string, reset Expr, body ...Stmt) Stmt {
	return &OnRiseStmt{Clock: clock, Reset: reset, Body: body}
}
