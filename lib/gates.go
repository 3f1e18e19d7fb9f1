// Copyright 2026 The gohdl Authors
// Licensed under the MIT license. See license text in the LICENSE file.

// Package lib provides reusable component declarations: basic gates,
// arithmetic blocks and registers. They serve as building blocks for
// larger designs and as the seed corpus for the behavioral/gate-level
// equivalence suite.
package lib

import "github.com/skryl/gohdl"

// AndN is an N-bit wide AND.
func AndN() *gohdl.Decl {
	return &gohdl.Decl{
		Name:    "and_n",
		Params:  []gohdl.Param{{Name: "N", Default: 1}},
		Inputs:  gohdl.In("a[N], b[N]"),
		Outputs: gohdl.Out("out[N]"),
		Body: []gohdl.Stmt{
			gohdl.Assign("out", gohdl.And(gohdl.Sig("a"), gohdl.Sig("b"))),
		},
	}
}

// OrN is an N-bit wide OR.
func OrN() *gohdl.Decl {
	return &gohdl.Decl{
		Name:    "or_n",
		Params:  []gohdl.Param{{Name: "N", Default: 1}},
		Inputs:  gohdl.In("a[N], b[N]"),
		Outputs: gohdl.Out("out[N]"),
		Body: []gohdl.Stmt{
			gohdl.Assign("out", gohdl.Or(gohdl.Sig("a"), gohdl.Sig("b"))),
		},
	}
}

// XorN is an N-bit wide XOR.
func XorN() *gohdl.Decl {
	return &gohdl.Decl{
		Name:    "xor_n",
		Params:  []gohdl.Param{{Name: "N", Default: 1}},
		Inputs:  gohdl.In("a[N], b[N]"),
		Outputs: gohdl.Out("out[N]"),
		Body: []gohdl.Stmt{
			gohdl.Assign("out", gohdl.Xor(gohdl.Sig("a"), gohdl.Sig("b"))),
		},
	}
}

// NotN is an N-bit wide inverter.
func NotN() *gohdl.Decl {
	return &gohdl.Decl{
		Name:    "not_n",
		Params:  []gohdl.Param{{Name: "N", Default: 1}},
		Inputs:  gohdl.In("in[N]"),
		Outputs: gohdl.Out("out[N]"),
		Body: []gohdl.Stmt{
			gohdl.Assign("out", gohdl.Not(gohdl.Sig("in"))),
		},
	}
}

// Mux2 selects b when sel is high, a otherwise.
func Mux2() *gohdl.Decl {
	return &gohdl.Decl{
		Name:    "mux2",
		Params:  []gohdl.Param{{Name: "N", Default: 1}},
		Inputs:  gohdl.In("a[N], b[N], sel"),
		Outputs: gohdl.Out("out[N]"),
		Body: []gohdl.Stmt{
			gohdl.Assign("out", gohdl.Sel(gohdl.Sig("sel"), gohdl.Sig("b"), gohdl.Sig("a"))),
		},
	}
}

// FullAdder is the canonical 1-bit adder cell.
func FullAdder() *gohdl.Decl {
	ab := gohdl.Xor(gohdl.Sig("a"), gohdl.Sig("b"))
	return &gohdl.Decl{
		Name:    "full_adder",
		Inputs:  gohdl.In("a, b, cin"),
		Outputs: gohdl.Out("s, cout"),
		Body: []gohdl.Stmt{
			gohdl.Assign("s", gohdl.Xor(ab, gohdl.Sig("cin"))),
			gohdl.Assign("cout", gohdl.Or(
				gohdl.And(gohdl.Sig("a"), gohdl.Sig("b")),
				gohdl.And(gohdl.Xor(gohdl.Sig("a"), gohdl.Sig("b")), gohdl.Sig("cin")))),
		},
	}
}

// RippleAdder4 chains four full_adder instances; it exists mostly to
// exercise hierarchical elaboration.
func RippleAdder4() *gohdl.Decl {
	return &gohdl.Decl{
		Name:    "ripple_adder4",
		Inputs:  gohdl.In("a[4], b[4], cin"),
		Outputs: gohdl.Out("s[4], cout"),
		Wires:   gohdl.Wires("a0, a1, a2, a3, b0, b1, b2, b3, s0, s1, s2, s3"),
		Insts: []gohdl.InstDecl{
			gohdl.Inst("fa0", "full_adder", "a=a0, b=b0, cin=cin, s=s0, cout=c0"),
			gohdl.Inst("fa1", "full_adder", "a=a1, b=b1, cin=c0, s=s1, cout=c1"),
			gohdl.Inst("fa2", "full_adder", "a=a2, b=b2, cin=c1, s=s2, cout=c2"),
			gohdl.Inst("fa3", "full_adder", "a=a3, b=b3, cin=c2, s=s3, cout=cout"),
		},
		Body: []gohdl.Stmt{
			gohdl.Assign("a0", gohdl.Slice(gohdl.Sig("a"), 0, 0)),
			gohdl.Assign("a1", gohdl.Slice(gohdl.Sig("a"), 1, 1)),
			gohdl.Assign("a2", gohdl.Slice(gohdl.Sig("a"), 2, 2)),
			gohdl.Assign("a3", gohdl.Slice(gohdl.Sig("a"), 3, 3)),
			gohdl.Assign("b0", gohdl.Slice(gohdl.Sig("b"), 0, 0)),
			gohdl.Assign("b1", gohdl.Slice(gohdl.Sig("b"), 1, 1)),
			gohdl.Assign("b2", gohdl.Slice(gohdl.Sig("b"), 2, 2)),
			gohdl.Assign("b3", gohdl.Slice(gohdl.Sig("b"), 3, 3)),
			gohdl.Assign("s", gohdl.Cat(gohdl.Sig("s3"), gohdl.Sig("s2"), gohdl.Sig("s1"), gohdl.Sig("s0"))),
		},
	}
}
