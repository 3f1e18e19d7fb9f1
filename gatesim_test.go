package gohdl

import "testing"

func gateSimFor(t *testing.T, r *Registry, name string, params map[string]int) *GateSim {
	t.Helper()
	s, err := NewGateSim(lowerFor(t, r, name, params))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestGateSimAdder(t *testing.T) {
	r := testRegistry(t)
	s := gateSimFor(t, r, "adder", map[string]int{"N": 8})

	tests := []struct{ a, b, sum uint64 }{
		{0, 0, 0},
		{1, 2, 3},
		{200, 90, 34},
		{255, 1, 0},
		{170, 85, 255},
	}
	for _, tt := range tests {
		set(t, s, "a", tt.a)
		set(t, s, "b", tt.b)
		if got := out(t, s, "sum"); got != tt.sum {
			t.Errorf("%d+%d = %d, want %d", tt.a, tt.b, got, tt.sum)
		}
	}
}

func TestGateSimCounter(t *testing.T) {
	r := testRegistry(t)
	s := gateSimFor(t, r, "counter", nil)

	for i := 0; i < 20; i++ {
		want := uint64(i % 16)
		if got := out(t, s, "count"); got != want {
			t.Fatalf("step %d: count = %d, want %d", i, got, want)
		}
		s.Step()
	}
	set(t, s, "rst", 1)
	s.Step()
	if got := out(t, s, "count"); got != 0 {
		t.Fatalf("count = %d under reset, want 0", got)
	}

	s.Reset()
	if s.Time() != 0 {
		t.Fatalf("time = %d after Reset, want 0", s.Time())
	}
}

func TestGateSimMatchesBehavioral(t *testing.T) {
	r := testRegistry(t)
	r.MustRegister(&Decl{
		Name:    "blend",
		Inputs:  In("a[6], b[6], sel"),
		Outputs: Out("out[6]"),
		Body: []Stmt{Assign("out",
			Sel(Sig("sel"), Sub(Sig("a"), Sig("b")), Xor(Sig("a"), Sig("b")))),
		},
	})
	g, err := Elaborate(r, "blend", nil)
	if err != nil {
		t.Fatal(err)
	}
	bs, err := NewSim(g)
	if err != nil {
		t.Fatal(err)
	}
	n, err := Lower(g)
	if err != nil {
		t.Fatal(err)
	}
	gs, err := NewGateSim(n)
	if err != nil {
		t.Fatal(err)
	}

	for a := uint64(0); a < 64; a += 7 {
		for b := uint64(0); b < 64; b += 5 {
			for sel := uint64(0); sel < 2; sel++ {
				for _, s := range []Stepper{bs, gs} {
					set(t, s, "a", a)
					set(t, s, "b", b)
					set(t, s, "sel", sel)
				}
				bv, gv := out(t, bs, "out"), out(t, gs, "out")
				if bv != gv {
					t.Fatalf("a=%d b=%d sel=%d: behavioral %d, gate-level %d", a, b, sel, bv, gv)
				}
			}
		}
	}
}

func TestGateSimPeekPortBits(t *testing.T) {
	r := testRegistry(t)
	s := gateSimFor(t, r, "adder", map[string]int{"N": 4})
	set(t, s, "a", 5)
	set(t, s, "b", 1)
	v, w, ok := s.Peek("sum")
	if !ok || w != 4 || v != 6 {
		t.Fatalf("peek sum = %d (width %d, ok %v), want 6 (width 4)", v, w, ok)
	}
	if _, _, ok := s.Peek("ghost"); ok {
		t.Fatal("peek of unknown name succeeded")
	}
}

func TestGateSimRejectsCycle(t *testing.T) {
	// A hand-built netlist with a gate feeding itself must be refused.
	n := &Netlist{
		Name:   "cyclic",
		Nets:   2,
		Const0: NoNet,
		Const1: NoNet,
		Ports: []NetPort{
			{Name: "a", Dir: DirIn, Width: 1, Nets: []NetID{0}},
			{Name: "out", Dir: DirOut, Width: 1, Nets: []NetID{1}},
		},
		Gates: []Gate{{ID: 0, Kind: GateAnd, In: []NetID{0, 1}, Out: 1}},
	}
	_, err := NewGateSim(n)
	if err == nil {
		t.Fatal("expected combinational cycle error")
	}
	if _, ok := err.(*SimulationError); !ok {
		t.Fatalf("expected SimulationError, got %T", err)
	}
}
