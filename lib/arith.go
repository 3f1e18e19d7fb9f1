// Copyright 2026 The gohdl Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package lib

import "github.com/skryl/gohdl"

// Adder is a combinational N-bit adder, wrapping mod 2^N.
func Adder() *gohdl.Decl {
	return &gohdl.Decl{
		Name:    "adder",
		Params:  []gohdl.Param{{Name: "N", Default: 8}},
		Inputs:  gohdl.In("a[N], b[N]"),
		Outputs: gohdl.Out("sum[N]"),
		Body: []gohdl.Stmt{
			gohdl.Assign("sum", gohdl.Add(gohdl.Sig("a"), gohdl.Sig("b"))),
		},
	}
}

// Subtractor is a combinational N-bit subtractor, wrapping mod 2^N.
func Subtractor() *gohdl.Decl {
	return &gohdl.Decl{
		Name:    "subtractor",
		Params:  []gohdl.Param{{Name: "N", Default: 8}},
		Inputs:  gohdl.In("a[N], b[N]"),
		Outputs: gohdl.Out("diff[N]"),
		Body: []gohdl.Stmt{
			gohdl.Assign("diff", gohdl.Sub(gohdl.Sig("a"), gohdl.Sig("b"))),
		},
	}
}

// Comparator produces unsigned eq/lt flags.
func Comparator() *gohdl.Decl {
	return &gohdl.Decl{
		Name:    "comparator",
		Params:  []gohdl.Param{{Name: "N", Default: 8}},
		Inputs:  gohdl.In("a[N], b[N]"),
		Outputs: gohdl.Out("eq, lt"),
		Body: []gohdl.Stmt{
			gohdl.Assign("eq", gohdl.Eq(gohdl.Sig("a"), gohdl.Sig("b"))),
			gohdl.Assign("lt", gohdl.Lt(gohdl.Sig("a"), gohdl.Sig("b"))),
		},
	}
}

// Alu is a small 4-operation unit: op selects add, sub, and, or.
func Alu() *gohdl.Decl {
	a, b := gohdl.Sig("a"), gohdl.Sig("b")
	lo := gohdl.Slice(gohdl.Sig("op"), 0, 0)
	arith := gohdl.Sel(lo, gohdl.Sub(a, b), gohdl.Add(a, b))
	logic := gohdl.Sel(lo, gohdl.Or(a, b), gohdl.And(a, b))
	return &gohdl.Decl{
		Name:    "alu",
		Params:  []gohdl.Param{{Name: "N", Default: 8}},
		Inputs:  gohdl.In("a[N], b[N], op[2]"),
		Outputs: gohdl.Out("out[N]"),
		Body: []gohdl.Stmt{
			gohdl.Assign("out", gohdl.Sel(gohdl.Slice(gohdl.Sig("op"), 1, 1), logic, arith)),
		},
	}
}

// Counter increments every clock and wraps at 2^N; rst forces it back to
// zero synchronously.
func Counter() *gohdl.Decl {
	return &gohdl.Decl{
		Name:    "counter",
		Params:  []gohdl.Param{{Name: "N", Default: 4}},
		Inputs:  gohdl.In("rst"),
		Outputs: gohdl.Out("count[N]=0"),
		Body: []gohdl.Stmt{
			gohdl.OnRise("clk", gohdl.Sig("rst"),
				gohdl.Assign("count", gohdl.Add(gohdl.Sig("count"), gohdl.C(1)))),
		},
	}
}

// Accumulator sums its input every clock.
func Accumulator() *gohdl.Decl {
	return &gohdl.Decl{
		Name:    "accumulator",
		Params:  []gohdl.Param{{Name: "N", Default: 8}},
		Inputs:  gohdl.In("d[N], rst"),
		Outputs: gohdl.Out("acc[N]=0"),
		Body: []gohdl.Stmt{
			gohdl.OnRise("clk", gohdl.Sig("rst"),
				gohdl.Assign("acc", gohdl.Add(gohdl.Sig("acc"), gohdl.Sig("d")))),
		},
	}
}
