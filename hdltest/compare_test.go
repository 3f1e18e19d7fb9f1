package hdltest

import (
	"testing"

	"github.com/skryl/gohdl"
	"github.com/skryl/gohdl/lib"
)

func libRegistry(t *testing.T) *gohdl.Registry {
	t.Helper()
	r := gohdl.NewRegistry()
	if err := lib.RegisterAll(r); err != nil {
		t.Fatal(err)
	}
	return r
}

func TestCompareLibrary(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]int
	}{
		{"and_n", map[string]int{"N": 8}},
		{"or_n", map[string]int{"N": 8}},
		{"xor_n", map[string]int{"N": 8}},
		{"not_n", map[string]int{"N": 8}},
		{"mux2", map[string]int{"N": 8}},
		{"full_adder", nil},
		{"ripple_adder4", nil},
		{"adder", map[string]int{"N": 16}},
		{"subtractor", map[string]int{"N": 16}},
		{"comparator", map[string]int{"N": 8}},
		{"alu", map[string]int{"N": 8}},
		{"counter", map[string]int{"N": 6}},
		{"accumulator", map[string]int{"N": 8}},
		{"register", map[string]int{"N": 8}},
		{"register_e", map[string]int{"N": 8}},
	}
	r := libRegistry(t)
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			CompareSim(t, r, tt.name, tt.params, 100)
		})
	}
}

func TestCompareWideOperators(t *testing.T) {
	r := libRegistry(t)
	a, b := gohdl.Sig("a"), gohdl.Sig("b")
	r.MustRegister(&gohdl.Decl{
		Name:    "mixer",
		Inputs:  gohdl.In("a[16], b[16]"),
		Outputs: gohdl.Out("diff[16], neg[16], shl[16], shr[16], hi[8], wide[24], ext[20], eq, ne, lt"),
		Body: []gohdl.Stmt{
			gohdl.Assign("diff", gohdl.Sub(a, b)),
			gohdl.Assign("neg", gohdl.Neg(a)),
			gohdl.Assign("shl", gohdl.Shl(a, 5)),
			gohdl.Assign("shr", gohdl.Shr(a, 11)),
			gohdl.Assign("hi", gohdl.Slice(a, 15, 8)),
			gohdl.Assign("wide", gohdl.Cat(gohdl.Slice(b, 7, 0), a)),
			gohdl.Assign("ext", gohdl.Ext(a, 20)),
			gohdl.Assign("eq", gohdl.Eq(a, b)),
			gohdl.Assign("ne", gohdl.Ne(a, b)),
			gohdl.Assign("lt", gohdl.Lt(a, b)),
		},
	})
	CompareSim(t, r, "mixer", nil, 200)
}

func TestCompareClockedConditional(t *testing.T) {
	r := libRegistry(t)
	r.MustRegister(&gohdl.Decl{
		Name:    "updown",
		Inputs:  gohdl.In("up, rst"),
		Outputs: gohdl.Out("count[5]=0"),
		Body: []gohdl.Stmt{
			gohdl.OnRise("clk", gohdl.Sig("rst"),
				gohdl.IfElse(gohdl.Sig("up"),
					[]gohdl.Stmt{gohdl.Assign("count", gohdl.Add(gohdl.Sig("count"), gohdl.C(1)))},
					[]gohdl.Stmt{gohdl.Assign("count", gohdl.Sub(gohdl.Sig("count"), gohdl.C(1)))})),
		},
	})
	CompareSim(t, r, "updown", nil, 150)
}

func TestCompare64Bit(t *testing.T) {
	r := libRegistry(t)
	CompareSim(t, r, "adder", map[string]int{"N": 64}, 50)
	CompareSim(t, r, "subtractor", map[string]int{"N": 64}, 50)
}
