package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/skryl/gohdl"
)

// netlistFor elaborates and lowers one of the fixture components.
func netlistFor(t *testing.T, name string, params map[string]int) *gohdl.Netlist {
	t.Helper()
	r := gohdl.NewRegistry()
	r.MustRegister(
		&gohdl.Decl{
			Name:    "and_gate",
			Inputs:  gohdl.In("a, b"),
			Outputs: gohdl.Out("out"),
			Body:    []gohdl.Stmt{gohdl.Assign("out", gohdl.And(gohdl.Sig("a"), gohdl.Sig("b")))},
		},
		&gohdl.Decl{
			Name:    "adder",
			Params:  []gohdl.Param{{Name: "N", Default: 8}},
			Inputs:  gohdl.In("a[N], b[N]"),
			Outputs: gohdl.Out("sum[N]"),
			Body:    []gohdl.Stmt{gohdl.Assign("sum", gohdl.Add(gohdl.Sig("a"), gohdl.Sig("b")))},
		},
		&gohdl.Decl{
			Name:    "counter",
			Params:  []gohdl.Param{{Name: "N", Default: 4}},
			Inputs:  gohdl.In("rst"),
			Outputs: gohdl.Out("count[N]=0"),
			Body: []gohdl.Stmt{gohdl.OnRise("clk", gohdl.Sig("rst"),
				gohdl.Assign("count", gohdl.Add(gohdl.Sig("count"), gohdl.C(1))))},
		},
	)
	g, err := gohdl.Elaborate(r, name, params)
	if err != nil {
		t.Fatal(err)
	}
	n, err := gohdl.Lower(g)
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func TestJSONExportDeterministic(t *testing.T) {
	n := netlistFor(t, "counter", nil)
	var a, b bytes.Buffer
	if err := WriteJSON(&a, n); err != nil {
		t.Fatal(err)
	}
	if err := WriteJSON(&b, n); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Fatal("repeated JSON export differs")
	}
	if !strings.Contains(a.String(), `"format": "`+FormatVersion+`"`) {
		t.Fatal("document carries no format version")
	}
}

func TestJSONRoundTrip(t *testing.T) {
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
		if err := WriteJSON(&buf, n); err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		got, err := ReadJSON(&buf)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if !n.Equal(got) {
			t.Fatalf("%s: round trip not structurally equal:\nout: %s\nin:  %s",
				tt.name, n.Stats(), got.Stats())
		}
		if got.Name != n.Name {
			t.Errorf("%s: name %q, want %q", tt.name, got.Name, n.Name)
		}
	}
}

func TestJSONRejectsNewerFormat(t *testing.T) {
	n := netlistFor(t, "and_gate", nil)
	var buf bytes.Buffer
	if err := WriteJSON(&buf, n); err != nil {
		t.Fatal(err)
	}
	doc := strings.Replace(buf.String(), `"format": "1.0.0"`, `"format": "2.0.0"`, 1)
	if _, err := ReadJSON(strings.NewReader(doc)); err == nil {
		t.Fatal("accepted a 2.x document")
	}
}

func TestJSONRejectsOutOfRangeNets(t *testing.T) {
	// Net ids past the declared net count (or negative, outside the
	// reset=-1 convention) must fail the import, not crash a simulator
	// built on the result.
	cases := []string{
		`{"format": "1.0.0", "name": "x", "nets": 1,
		  "ports": [{"name": "a", "direction": "in", "width": 1, "nets": [1]}]}`,
		`{"format": "1.0.0", "name": "x", "nets": 1,
		  "ports": [{"name": "a", "direction": "in", "width": 1, "nets": [-1]}]}`,
		`{"format": "1.0.0", "name": "x", "nets": 2,
		  "gates": [{"id": 0, "kind": "not", "inputs": [5], "output": 1}]}`,
		`{"format": "1.0.0", "name": "x", "nets": 2,
		  "gates": [{"id": 0, "kind": "not", "inputs": [0], "output": 2}]}`,
		`{"format": "1.0.0", "name": "x", "nets": 1, "clocks": ["clk"],
		  "registers": [{"id": 0, "data": 0, "clock": "clk", "reset": -1, "output": 99}]}`,
		`{"format": "1.0.0", "name": "x", "nets": 1, "clocks": ["clk"],
		  "registers": [{"id": 0, "data": 0, "clock": "clk", "reset": -2, "output": 0}]}`,
	}
	for _, c := range cases {
		if _, err := ReadJSON(strings.NewReader(c)); err == nil {
			t.Errorf("accepted %s", c)
		}
	}

	// reset -1 stays legal: it means the register has no reset
	ok := `{"format": "1.0.0", "name": "x", "nets": 2, "clocks": ["clk"],
	  "registers": [{"id": 0, "data": 0, "clock": "clk", "reset": -1, "output": 1}]}`
	n, err := ReadJSON(strings.NewReader(ok))
	if err != nil {
		t.Fatal(err)
	}
	if n.Regs[0].Reset != gohdl.NoNet {
		t.Fatalf("reset = %d, want NoNet", n.Regs[0].Reset)
	}
}

func TestJSONRejectsGarbage(t *testing.T) {
	cases := []string{
		`{`,
		`{"format": "one"}`,
		`{"format": "1.0.0", "name": "x", "gates": [{"id": 0, "kind": "nand"}]}`,
		`{"format": "1.0.0", "name": "x", "ports": [{"name": "a", "direction": "inout"}]}`,
	}
	for _, c := range cases {
		if _, err := ReadJSON(strings.NewReader(c)); err == nil {
			t.Errorf("accepted %q", c)
		}
	}
}
