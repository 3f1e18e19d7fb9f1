package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/skryl/gohdl"
)

func TestVerilogSingleGate(t *testing.T) {
	n := netlistFor(t, "and_gate", nil)
	var buf bytes.Buffer
	if err := WriteVerilog(&buf, n); err != nil {
		t.Fatal(err)
	}
	src := buf.String()

	if !strings.HasPrefix(src, "module and_gate(") {
		t.Fatalf("module header missing:\n%s", src)
	}
	if got := strings.Count(src, "assign "); got != 1 {
		t.Fatalf("assign count = %d, want 1:\n%s", got, src)
	}
	if !strings.Contains(src, "assign out = a & b;\n") {
		t.Fatalf("gate assign missing:\n%s", src)
	}
	if strings.Contains(src, "always") {
		t.Fatalf("combinational module has an always block:\n%s", src)
	}
	if !strings.HasSuffix(src, "endmodule\n") {
		t.Fatalf("endmodule missing:\n%s", src)
	}
}

func TestVerilogExportDeterministic(t *testing.T) {
	n := netlistFor(t, "counter", nil)
	var a, b bytes.Buffer
	if err := WriteVerilog(&a, n); err != nil {
		t.Fatal(err)
	}
	if err := WriteVerilog(&b, n); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Fatal("repeated Verilog export differs")
	}
}

func TestVerilogClockedModule(t *testing.T) {
	n := netlistFor(t, "counter", nil)
	var buf bytes.Buffer
	if err := WriteVerilog(&buf, n); err != nil {
		t.Fatal(err)
	}
	src := buf.String()

	if !strings.Contains(src, "input clk") {
		t.Fatalf("clock input missing:\n%s", src)
	}
	if !strings.Contains(src, "output reg [3:0] count") {
		t.Fatalf("registered output missing:\n%s", src)
	}
	if got := strings.Count(src, "always @(posedge clk) begin"); got != 1 {
		t.Fatalf("always blocks = %d, want 1:\n%s", got, src)
	}
	if got := strings.Count(src, "<="); got != 4 {
		t.Fatalf("register updates = %d, want 4:\n%s", got, src)
	}
}

func TestVerilogRoundTrip(t *testing.T) {
	for _, tt := range []struct {
		name   string
		params map[string]int
	}{
		{"and_gate", nil},
		{"adder", map[string]int{"N": 8}},
		{"counter", nil},
	} {
		n := netlistFor(t, tt.name, tt.params)
		var buf bytes.Buffer
		if err := WriteVerilog(&buf, n); err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		got, err := ReadVerilog(&buf)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if !n.Equal(got) {
			t.Fatalf("%s: round trip not structurally equal:\nout: %s\nin:  %s",
				tt.name, n.Stats(), got.Stats())
		}
	}
}

func TestVerilogClockPortCollision(t *testing.T) {
	n := &gohdl.Netlist{
		Name:   "bad",
		Nets:   1,
		Const0: gohdl.NoNet,
		Const1: gohdl.NoNet,
		Clocks: []string{"clk"},
		Ports:  []gohdl.NetPort{{Name: "clk", Dir: gohdl.DirIn, Width: 1, Nets: []gohdl.NetID{0}}},
	}
	if err := WriteVerilog(&bytes.Buffer{}, n); err == nil {
		t.Fatal("expected clock/port name collision error")
	}
}

func TestVerilogImportErrors(t *testing.T) {
	cases := []string{
		"",
		"module",
		"module m(input a);\nassign b = a;\nendmodule\n",
		"module m(input a, output z);\nassign z = a + a;\nendmodule\n",
		"module m(input a, output z);\nwire w\nendmodule\n",
	}
	for _, c := range cases {
		if _, err := ReadVerilog(strings.NewReader(c)); err == nil {
			t.Errorf("accepted %q", c)
		}
	}
}
