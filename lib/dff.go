// Copyright 2026 The gohdl Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package lib

import "github.com/skryl/gohdl"

// Register is an N-bit register with synchronous reset: q takes d on every
// clock, or the initial value 0 while rst is high.
func Register() *gohdl.Decl {
	return &gohdl.Decl{
		Name:    "register",
		Params:  []gohdl.Param{{Name: "N", Default: 1}},
		Inputs:  gohdl.In("d[N], rst"),
		Outputs: gohdl.Out("q[N]=0"),
		Body: []gohdl.Stmt{
			gohdl.OnRise("clk", gohdl.Sig("rst"),
				gohdl.Assign("q", gohdl.Sig("d"))),
		},
	}
}

// RegisterE is Register with a load enable; q holds its value while en is
// low.
func RegisterE() *gohdl.Decl {
	return &gohdl.Decl{
		Name:    "register_e",
		Params:  []gohdl.Param{{Name: "N", Default: 1}},
		Inputs:  gohdl.In("d[N], en, rst"),
		Outputs: gohdl.Out("q[N]=0"),
		Body: []gohdl.Stmt{
			gohdl.OnRise("clk", gohdl.Sig("rst"),
				gohdl.If(gohdl.Sig("en"),
					gohdl.Assign("q", gohdl.Sig("d")))),
		},
	}
}

// RegisterAll registers every library component into r, dependencies
// first.
func RegisterAll(r *gohdl.Registry) error {
	for _, d := range []*gohdl.Decl{
		AndN(), OrN(), XorN(), NotN(), Mux2(),
		FullAdder(), RippleAdder4(),
		Adder(), Subtractor(), Comparator(), Alu(),
		Counter(), Accumulator(),
		Register(), RegisterE(),
	} {
		if err := r.Register(d); err != nil {
			return err
		}
	}
	return nil
}
