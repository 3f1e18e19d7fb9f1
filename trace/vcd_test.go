package trace

import (
	"bytes"
	"strings"
	"testing"

	"github.com/skryl/gohdl"
)

func counterSim(t *testing.T) *gohdl.Sim {
	t.Helper()
	r := gohdl.NewRegistry()
	r.MustRegister(&gohdl.Decl{
		Name:    "counter",
		Params:  []gohdl.Param{{Name: "N", Default: 4}},
		Inputs:  gohdl.In("rst"),
		Outputs: gohdl.Out("count[N]=0"),
		Body: []gohdl.Stmt{gohdl.OnRise("clk", gohdl.Sig("rst"),
			gohdl.Assign("count", gohdl.Add(gohdl.Sig("count"), gohdl.C(1))))},
	})
	g, err := gohdl.Elaborate(r, "counter", nil)
	if err != nil {
		t.Fatal(err)
	}
	s, err := gohdl.NewSim(g)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestTracerRejectsUnknownSignal(t *testing.T) {
	s := counterSim(t)
	if _, err := New(s, "count", "ghost"); err == nil {
		t.Fatal("subscribed to an unobservable signal")
	}
}

func TestTracerCounterWaveform(t *testing.T) {
	s := counterSim(t)
	tr, err := New(s, "count")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		s.Step()
		tr.Sample()
	}
	if tr.Dropped() != 0 {
		t.Fatalf("dropped %d trace points", tr.Dropped())
	}
	if got := tr.Values(); len(got) != 1 || got[0] != 4 {
		// 20 mod 16
		t.Fatalf("final values = %v, want [4]", got)
	}

	var buf bytes.Buffer
	if err := tr.WriteVCD(&buf); err != nil {
		t.Fatal(err)
	}
	vcd := buf.String()

	checks := []string{
		"$timescale 1ns $end\n",
		"$var wire 4 ! count $end\n",
		"$enddefinitions $end\n",
		"#0\nb0 !\n", // initial sample
		"#3\nb11 !\n",
		"#16\nb0 !\n", // wraparound
		"#19\nb11 !\n",
		"#20\nb100 !\n",
	}
	for _, c := range checks {
		if !strings.Contains(vcd, c) {
			t.Errorf("vcd lacks %q:\n%s", c, vcd)
		}
	}
	if strings.Contains(vcd, "#21") {
		t.Errorf("vcd has a timestamp past the last sample:\n%s", vcd)
	}
}

func TestTracerChangeOnlySingleBit(t *testing.T) {
	s := counterSim(t)
	tr, err := New(s, "rst", "count")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		s.Step()
		tr.Sample()
	}
	var buf bytes.Buffer
	if err := tr.WriteVCD(&buf); err != nil {
		t.Fatal(err)
	}
	vcd := buf.String()

	// rst never changes after the initial sample, so exactly one record.
	if got := strings.Count(vcd, "0!\n"); got != 1 {
		t.Errorf("rst records = %d, want 1:\n%s", got, vcd)
	}
	if !strings.Contains(vcd, "$var wire 1 ! rst $end\n") {
		t.Errorf("rst var declaration missing:\n%s", vcd)
	}
	if !strings.Contains(vcd, `$var wire 4 " count $end`+"\n") {
		t.Errorf("count var declaration missing:\n%s", vcd)
	}
}

func TestTracerHierarchicalNames(t *testing.T) {
	r := gohdl.NewRegistry()
	r.MustRegister(
		&gohdl.Decl{
			Name:    "inv",
			Inputs:  gohdl.In("a"),
			Outputs: gohdl.Out("out"),
			Wires:   gohdl.Wires("t"),
			Body: []gohdl.Stmt{
				gohdl.Assign("t", gohdl.Not(gohdl.Sig("a"))),
				gohdl.Assign("out", gohdl.Sig("t")),
			},
		},
		&gohdl.Decl{
			Name:    "top",
			Inputs:  gohdl.In("a"),
			Outputs: gohdl.Out("out"),
			Insts:   []gohdl.InstDecl{gohdl.Inst("u0", "inv", "a=a, out=out")},
		},
	)
	g, err := gohdl.Elaborate(r, "top", nil)
	if err != nil {
		t.Fatal(err)
	}
	s, err := gohdl.NewSim(g)
	if err != nil {
		t.Fatal(err)
	}
	tr, err := New(s, "u0/t")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := tr.WriteVCD(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "$var wire 1 ! u0.t $end\n") {
		t.Errorf("hierarchical name not rewritten:\n%s", buf.String())
	}
}

func TestVCDCodes(t *testing.T) {
	tests := []struct {
		i    int
		want string
	}{
		{0, "!"},
		{1, "\""},
		{93, "~"},
		{94, "!!"},
		{95, "!\""},
	}
	for _, tt := range tests {
		if got := vcdCode(tt.i); got != tt.want {
			t.Errorf("vcdCode(%d) = %q, want %q", tt.i, got, tt.want)
		}
	}
}
