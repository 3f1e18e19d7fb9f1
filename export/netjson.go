// Copyright 2026 The gohdl Authors
// Licensed under the MIT license. See license text in the LICENSE file.

// Package export serializes lowered netlists to structural Verilog and to
// a JSON document, and reads both formats back. Both serializers are
// stateless and deterministic: exporting the same netlist twice yields
// byte-identical output, and import(export(n)) is structurally equal to n.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"

	"github.com/skryl/gohdl"
)

// FormatVersion is the version stamped into exported JSON documents.
const FormatVersion = "1.0.0"

// formatConstraint is the range of document versions this importer
// understands. Newer majors are rejected rather than misread.
const formatConstraint = "^1"

// PortDoc is one external port record.
type PortDoc struct {
	Name      string `json:"name"`
	Direction string `json:"direction"`
	Width     int    `json:"width"`
	Nets      []int  `json:"nets"`
}

// GateDoc is one gate record. Value is meaningful for const gates only.
type GateDoc struct {
	ID     int    `json:"id"`
	Kind   string `json:"kind"`
	Inputs []int  `json:"inputs"`
	Output int    `json:"output"`
	Value  bool   `json:"value,omitempty"`
}

// RegDoc is one register record. A reset of -1 means the register has no
// reset.
type RegDoc struct {
	ID     int    `json:"id"`
	Data   int    `json:"data"`
	Clock  string `json:"clock"`
	Reset  int    `json:"reset"`
	Output int    `json:"output"`
	Init   bool   `json:"init,omitempty"`
}

// Document is the structured netlist interchange format.
type Document struct {
	Format    string    `json:"format"`
	Name      string    `json:"name"`
	Nets      int       `json:"nets"`
	Clocks    []string  `json:"clocks"`
	Ports     []PortDoc `json:"ports"`
	Gates     []GateDoc `json:"gates"`
	Registers []RegDoc  `json:"registers"`
}

// WriteJSON serializes n to w as an indented JSON document.
func WriteJSON(w io.Writer, n *gohdl.Netlist) error {
	doc := Document{
		Format:    FormatVersion,
		Name:      n.Name,
		Nets:      n.Nets,
		Clocks:    append([]string{}, n.Clocks...),
		Ports:     []PortDoc{},
		Gates:     []GateDoc{},
		Registers: []RegDoc{},
	}
	for _, p := range n.Ports {
		pd := PortDoc{Name: p.Name, Direction: p.Dir.String(), Width: p.Width, Nets: []int{}}
		for _, id := range p.Nets {
			pd.Nets = append(pd.Nets, int(id))
		}
		doc.Ports = append(doc.Ports, pd)
	}
	for _, g := range n.Gates {
		gd := GateDoc{ID: g.ID, Kind: g.Kind.String(), Inputs: []int{}, Output: int(g.Out), Value: g.Value}
		for _, id := range g.In {
			gd.Inputs = append(gd.Inputs, int(id))
		}
		doc.Gates = append(doc.Gates, gd)
	}
	for _, r := range n.Regs {
		doc.Registers = append(doc.Registers, RegDoc{
			ID: r.ID, Data: int(r.Data), Clock: r.Clock, Reset: int(r.Reset),
			Output: int(r.Out), Init: r.Init,
		})
	}
	b, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode netlist document")
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return errors.Wrap(err, "write netlist document")
}

// checkNet rejects net ids outside the document's declared net range.
// Register resets may be -1 (no reset); everything else must resolve to a
// real net, or the simulators would index out of bounds.
func checkNet(nets int, what string, id int, allowNone bool) error {
	if allowNone && id == -1 {
		return nil
	}
	if id < 0 || id >= nets {
		return errors.Errorf("%s: net %d outside 0..%d", what, id, nets-1)
	}
	return nil
}

// ReadJSON decodes a netlist document, rejecting format versions outside
// the supported range.
func ReadJSON(r io.Reader) (*gohdl.Netlist, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decode netlist document")
	}
	v, err := semver.NewVersion(doc.Format)
	if err != nil {
		return nil, errors.Wrapf(err, "bad format version %q", doc.Format)
	}
	c, err := semver.NewConstraint(formatConstraint)
	if err != nil {
		return nil, errors.Wrap(err, "format constraint")
	}
	if !c.Check(v) {
		return nil, errors.Errorf("unsupported netlist format %s (want %s)", doc.Format, formatConstraint)
	}

	n := &gohdl.Netlist{
		Name:   doc.Name,
		Nets:   doc.Nets,
		Clocks: append([]string(nil), doc.Clocks...),
		Const0: gohdl.NoNet,
		Const1: gohdl.NoNet,
	}
	for _, pd := range doc.Ports {
		dir := gohdl.DirIn
		switch pd.Direction {
		case "in":
		case "out":
			dir = gohdl.DirOut
		default:
			return nil, errors.Errorf("port %s: bad direction %q", pd.Name, pd.Direction)
		}
		p := gohdl.NetPort{Name: pd.Name, Dir: dir, Width: pd.Width}
		for _, id := range pd.Nets {
			if err := checkNet(doc.Nets, "port "+pd.Name, id, false); err != nil {
				return nil, err
			}
			p.Nets = append(p.Nets, gohdl.NetID(id))
		}
		n.Ports = append(n.Ports, p)
	}
	for _, gd := range doc.Gates {
		kind, ok := gohdl.GateKindFromString(gd.Kind)
		if !ok {
			return nil, errors.Errorf("gate %d: unknown kind %q", gd.ID, gd.Kind)
		}
		if err := checkNet(doc.Nets, fmt.Sprintf("gate %d output", gd.ID), gd.Output, false); err != nil {
			return nil, err
		}
		g := gohdl.Gate{ID: gd.ID, Kind: kind, Out: gohdl.NetID(gd.Output), Value: gd.Value}
		for _, id := range gd.Inputs {
			if err := checkNet(doc.Nets, fmt.Sprintf("gate %d input", gd.ID), id, false); err != nil {
				return nil, err
			}
			g.In = append(g.In, gohdl.NetID(id))
		}
		if kind == gohdl.GateConst {
			if g.Value {
				n.Const1 = g.Out
			} else {
				n.Const0 = g.Out
			}
		}
		n.Gates = append(n.Gates, g)
	}
	for _, rd := range doc.Registers {
		what := fmt.Sprintf("register %d", rd.ID)
		if err := checkNet(doc.Nets, what+" data", rd.Data, false); err != nil {
			return nil, err
		}
		if err := checkNet(doc.Nets, what+" reset", rd.Reset, true); err != nil {
			return nil, err
		}
		if err := checkNet(doc.Nets, what+" output", rd.Output, false); err != nil {
			return nil, err
		}
		n.Regs = append(n.Regs, gohdl.NetReg{
			ID: rd.ID, Data: gohdl.NetID(rd.Data), Clock: rd.Clock,
			Reset: gohdl.NetID(rd.Reset), Out: gohdl.NetID(rd.Output), Init: rd.Init,
		})
	}
	return n, nil
}
