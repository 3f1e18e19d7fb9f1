// Copyright 2026 The gohdl Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/skryl/gohdl"
	"github.com/skryl/gohdl/internal/scan"
)

// WriteVerilog serializes n as one structural Verilog module: port
// declarations matching the netlist port list, one assign per combinational
// gate, and one synchronous update block per clock domain. The output is
// plain structural Verilog, accepted by standard simulators unmodified.
func WriteVerilog(w io.Writer, n *gohdl.Netlist) error {
	for _, c := range n.Clocks {
		for _, p := range n.Ports {
			if p.Name == c {
				return errors.Errorf("clock domain %s collides with port %s", c, p.Name)
			}
		}
	}

	names := make(map[gohdl.NetID]string, n.Nets)
	type alias struct{ name, of string }
	var aliases []alias
	for _, p := range n.Ports {
		for i, net := range p.Nets {
			bn := p.Name
			if p.Width > 1 {
				bn = fmt.Sprintf("%s[%d]", p.Name, i)
			}
			if prev, ok := names[net]; ok {
				// two port bits share one net; the later one becomes a
				// plain alias assignment
				aliases = append(aliases, alias{name: bn, of: prev})
				continue
			}
			names[net] = bn
		}
	}
	nameOf := func(net gohdl.NetID) string {
		if s, ok := names[net]; ok {
			return s
		}
		return "n" + strconv.Itoa(int(net))
	}

	regOut := make(map[gohdl.NetID]bool, len(n.Regs))
	for _, r := range n.Regs {
		regOut[r.Out] = true
	}

	var b strings.Builder
	b.WriteString("module " + n.Name + "(\n")
	var lines []string
	for _, c := range n.Clocks {
		lines = append(lines, "  input "+c)
	}
	for _, p := range n.Ports {
		var l strings.Builder
		l.WriteString("  ")
		if p.Dir == gohdl.DirIn {
			l.WriteString("input ")
		} else {
			l.WriteString("output ")
			isReg := false
			for _, net := range p.Nets {
				if regOut[net] {
					isReg = true
					break
				}
			}
			if isReg {
				l.WriteString("reg ")
			}
		}
		if p.Width > 1 {
			fmt.Fprintf(&l, "[%d:0] ", p.Width-1)
		}
		l.WriteString(p.Name)
		lines = append(lines, l.String())
	}
	b.WriteString(strings.Join(lines, ",\n"))
	b.WriteString("\n);\n\n")

	// internal net declarations, skipping nets named after port bits
	for id := gohdl.NetID(0); int(id) < n.Nets; id++ {
		if _, ok := names[id]; ok {
			continue
		}
		if regOut[id] {
			b.WriteString("reg " + nameOf(id) + ";\n")
		} else {
			b.WriteString("wire " + nameOf(id) + ";\n")
		}
	}
	b.WriteString("\n")

	for _, g := range n.Gates {
		switch g.Kind {
		case gohdl.GateConst:
			v := "1'b0"
			if g.Value {
				v = "1'b1"
			}
			fmt.Fprintf(&b, "assign %s = %s;\n", nameOf(g.Out), v)
		case gohdl.GateNot:
			fmt.Fprintf(&b, "assign %s = ~%s;\n", nameOf(g.Out), nameOf(g.In[0]))
		case gohdl.GateMux:
			fmt.Fprintf(&b, "assign %s = %s ? %s : %s;\n",
				nameOf(g.Out), nameOf(g.In[0]), nameOf(g.In[2]), nameOf(g.In[1]))
		default:
			op := map[gohdl.GateKind]string{
				gohdl.GateAnd: "&", gohdl.GateOr: "|", gohdl.GateXor: "^",
			}[g.Kind]
			fmt.Fprintf(&b, "assign %s = %s %s %s;\n",
				nameOf(g.Out), nameOf(g.In[0]), op, nameOf(g.In[1]))
		}
	}
	for _, a := range aliases {
		fmt.Fprintf(&b, "assign %s = %s;\n", a.name, a.of)
	}

	for _, c := range n.Clocks {
		b.WriteString("\nalways @(posedge " + c + ") begin\n")
		for _, r := range n.Regs {
			if r.Clock != c {
				continue
			}
			init := "1'b0"
			if r.Init {
				init = "1'b1"
			}
			if r.Reset != gohdl.NoNet {
				fmt.Fprintf(&b, "  %s <= %s ? %s : %s;\n",
					nameOf(r.Out), nameOf(r.Reset), init, nameOf(r.Data))
			} else {
				fmt.Fprintf(&b, "  %s <= %s;\n", nameOf(r.Out), nameOf(r.Data))
			}
		}
		b.WriteString("end\n")
	}

	b.WriteString("\nendmodule\n")
	_, err := io.WriteString(w, b.String())
	return errors.Wrap(err, "write verilog module")
}

// vparser reads back the structural subset emitted by WriteVerilog.
type vparser struct {
	s     *scan.Scanner
	n     *gohdl.Netlist
	nets  map[string]gohdl.NetID // net name (or port bit) -> id
	union map[gohdl.NetID]gohdl.NetID
}

// ReadVerilog parses one structural module produced by WriteVerilog and
// rebuilds its netlist. Re-importing an exported netlist yields a
// structurally equal netlist.
func ReadVerilog(r io.Reader) (*gohdl.Netlist, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read verilog module")
	}
	p := &vparser{
		s:     scan.New(string(src)),
		n:     &gohdl.Netlist{Const0: gohdl.NoNet, Const1: gohdl.NoNet},
		nets:  make(map[string]gohdl.NetID),
		union: make(map[gohdl.NetID]gohdl.NetID),
	}
	if err := p.module(); err != nil {
		return nil, err
	}
	p.resolve()
	return p.n, nil
}

func (p *vparser) errAt(t scan.Token, msg string) error {
	return errors.Errorf("verilog import at pos %d: %s (got %q)", t.Pos, msg, t.Text)
}

func (p *vparser) expectIdent(word string) error {
	t := p.s.Next()
	if t.Type != scan.Ident || (word != "" && t.Text != word) {
		return p.errAt(t, "expected "+word)
	}
	return nil
}

func (p *vparser) expectPunct(text string) error {
	t := p.s.Next()
	if t.Type != scan.Punct || t.Text != text {
		return p.errAt(t, "expected "+text)
	}
	return nil
}

func (p *vparser) allocNet() gohdl.NetID {
	id := gohdl.NetID(p.n.Nets)
	p.n.Nets++
	return id
}

func (p *vparser) module() error {
	if err := p.expectIdent("module"); err != nil {
		return err
	}
	t := p.s.Next()
	if t.Type != scan.Ident {
		return p.errAt(t, "expected module name")
	}
	p.n.Name = t.Text
	if err := p.expectPunct("("); err != nil {
		return err
	}
	if err := p.ports(); err != nil {
		return err
	}
	if err := p.expectPunct(";"); err != nil {
		return err
	}
	for {
		t := p.s.Next()
		if t.Type == scan.Ident && t.Text == "endmodule" {
			p.stripClockPorts()
			return nil
		}
		if t.Type != scan.Ident {
			return p.errAt(t, "expected statement")
		}
		var err error
		switch t.Text {
		case "wire", "reg":
			err = p.netDecl()
		case "assign":
			err = p.assign()
		case "always":
			err = p.always()
		default:
			return p.errAt(t, "unexpected keyword")
		}
		if err != nil {
			return err
		}
	}
}

func (p *vparser) ports() error {
	for {
		t := p.s.Next()
		if t.Type != scan.Ident || (t.Text != "input" && t.Text != "output") {
			return p.errAt(t, "expected port direction")
		}
		dir := gohdl.DirIn
		if t.Text == "output" {
			dir = gohdl.DirOut
		}
		t = p.s.Next()
		if t.Type == scan.Ident && t.Text == "reg" {
			t = p.s.Next()
		}
		width := 1
		if t.Type == scan.Punct && t.Text == "[" {
			hi := p.s.Next()
			if hi.Type != scan.Int {
				return p.errAt(hi, "expected bus high bit")
			}
			if err := p.expectPunct(":"); err != nil {
				return err
			}
			lo := p.s.Next()
			if lo.Type != scan.Int || lo.Int != 0 {
				return p.errAt(lo, "expected bus low bit 0")
			}
			if err := p.expectPunct("]"); err != nil {
				return err
			}
			width = hi.Int + 1
			t = p.s.Next()
		}
		if t.Type != scan.Ident {
			return p.errAt(t, "expected port name")
		}
		port := gohdl.NetPort{Name: t.Text, Dir: dir, Width: width}
		for i := 0; i < width; i++ {
			id := p.allocNet()
			port.Nets = append(port.Nets, id)
			p.nets[bitName(t.Text, i, width)] = id
		}
		p.n.Ports = append(p.n.Ports, port)
		t = p.s.Next()
		if t.Type == scan.Punct && t.Text == ")" {
			return nil
		}
		if t.Type != scan.Punct || t.Text != "," {
			return p.errAt(t, "expected comma or close paren")
		}
	}
}

func bitName(name string, i, width int) string {
	if width == 1 {
		return name
	}
	return fmt.Sprintf("%s[%d]", name, i)
}

func (p *vparser) netDecl() error {
	t := p.s.Next()
	if t.Type != scan.Ident {
		return p.errAt(t, "expected net name")
	}
	p.nets[t.Text] = p.allocNet()
	return p.expectPunct(";")
}

// ref parses a net reference (name or name[index]) or a 1-bit constant
// literal, returning the net id; constants report isConst with their value.
func (p *vparser) ref() (id gohdl.NetID, isConst, cval bool, err error) {
	t := p.s.Next()
	switch {
	case t.Type == scan.Int:
		if t.Int != 1 {
			return 0, false, false, p.errAt(t, "expected 1-bit literal")
		}
		if err := p.expectPunct("'"); err != nil {
			return 0, false, false, err
		}
		t = p.s.Next()
		switch t.Text {
		case "b0":
			return 0, true, false, nil
		case "b1":
			return 0, true, true, nil
		}
		return 0, false, false, p.errAt(t, "expected b0 or b1")
	case t.Type == scan.Ident:
		name := t.Text
		if n := p.s.Peek(); n.Type == scan.Punct && n.Text == "[" {
			p.s.Next()
			idx := p.s.Next()
			if idx.Type != scan.Int {
				return 0, false, false, p.errAt(idx, "expected bit index")
			}
			if err := p.expectPunct("]"); err != nil {
				return 0, false, false, err
			}
			name = fmt.Sprintf("%s[%d]", name, idx.Int)
		}
		id, ok := p.nets[name]
		if !ok {
			return 0, false, false, errors.Errorf("verilog import: undeclared net %s", name)
		}
		return id, false, false, nil
	}
	return 0, false, false, p.errAt(t, "expected net reference")
}

func (p *vparser) addGate(kind gohdl.GateKind, out gohdl.NetID, value bool, in ...gohdl.NetID) {
	g := gohdl.Gate{ID: len(p.n.Gates), Kind: kind, In: in, Out: out, Value: value}
	p.n.Gates = append(p.n.Gates, g)
	if kind == gohdl.GateConst {
		if value {
			if p.n.Const1 == gohdl.NoNet {
				p.n.Const1 = out
			}
		} else if p.n.Const0 == gohdl.NoNet {
			p.n.Const0 = out
		}
	}
}

func (p *vparser) assign() error {
	lhs, isConst, _, err := p.ref()
	if err != nil {
		return err
	}
	if isConst {
		return errors.New("verilog import: constant on left-hand side")
	}
	if err := p.expectPunct("="); err != nil {
		return err
	}

	t := p.s.Peek()
	if t.Type == scan.Punct && t.Text == "~" {
		p.s.Next()
		in, isConst, _, err := p.ref()
		if err != nil {
			return err
		}
		if isConst {
			return errors.New("verilog import: inverted constant")
		}
		p.addGate(gohdl.GateNot, lhs, false, in)
		return p.expectPunct(";")
	}

	a, aConst, aVal, err := p.ref()
	if err != nil {
		return err
	}
	t = p.s.Next()
	if t.Type == scan.Punct && t.Text == ";" {
		if aConst {
			p.addGate(gohdl.GateConst, lhs, aVal)
			return nil
		}
		// plain alias: both names refer to one net
		p.union[lhs] = a
		return nil
	}
	if t.Type != scan.Punct {
		return p.errAt(t, "expected operator")
	}
	switch t.Text {
	case "&", "|", "^":
		b, bConst, _, err := p.ref()
		if err != nil {
			return err
		}
		if aConst || bConst {
			return errors.New("verilog import: constant gate operand")
		}
		kinds := map[string]gohdl.GateKind{"&": gohdl.GateAnd, "|": gohdl.GateOr, "^": gohdl.GateXor}
		p.addGate(kinds[t.Text], lhs, false, a, b)
		return p.expectPunct(";")
	case "?":
		hi, hiConst, _, err := p.ref()
		if err != nil {
			return err
		}
		if err := p.expectPunct(":"); err != nil {
			return err
		}
		lo, loConst, _, err := p.ref()
		if err != nil {
			return err
		}
		if aConst || hiConst || loConst {
			return errors.New("verilog import: constant mux operand")
		}
		p.addGate(gohdl.GateMux, lhs, false, a, lo, hi)
		return p.expectPunct(";")
	}
	return p.errAt(t, "unexpected operator")
}

func (p *vparser) always() error {
	if err := p.expectPunct("@"); err != nil {
		return err
	}
	if err := p.expectPunct("("); err != nil {
		return err
	}
	if err := p.expectIdent("posedge"); err != nil {
		return err
	}
	t := p.s.Next()
	if t.Type != scan.Ident {
		return p.errAt(t, "expected clock name")
	}
	clock := t.Text
	p.n.Clocks = append(p.n.Clocks, clock)
	if err := p.expectPunct(")"); err != nil {
		return err
	}
	if err := p.expectIdent("begin"); err != nil {
		return err
	}
	for {
		t := p.s.Peek()
		if t.Type == scan.Ident && t.Text == "end" {
			p.s.Next()
			return nil
		}
		out, isConst, _, err := p.ref()
		if err != nil {
			return err
		}
		if isConst {
			return errors.New("verilog import: constant register target")
		}
		if err := p.expectPunct("<="); err != nil {
			return err
		}
		a, aConst, _, err := p.ref()
		if err != nil {
			return err
		}
		if aConst {
			return errors.New("verilog import: constant register data")
		}
		reg := gohdl.NetReg{ID: len(p.n.Regs), Clock: clock, Reset: gohdl.NoNet, Out: out}
		t = p.s.Next()
		switch {
		case t.Type == scan.Punct && t.Text == ";":
			reg.Data = a
		case t.Type == scan.Punct && t.Text == "?":
			_, initConst, initVal, err := p.ref()
			if err != nil {
				return err
			}
			if !initConst {
				return errors.New("verilog import: reset value must be a constant")
			}
			if err := p.expectPunct(":"); err != nil {
				return err
			}
			d, dConst, _, err := p.ref()
			if err != nil {
				return err
			}
			if dConst {
				return errors.New("verilog import: constant register data")
			}
			reg.Reset, reg.Init, reg.Data = a, initVal, d
			if err := p.expectPunct(";"); err != nil {
				return err
			}
		default:
			return p.errAt(t, "expected ';' or '?'")
		}
		p.n.Regs = append(p.n.Regs, reg)
	}
}

// stripClockPorts removes the synthetic 1-bit inputs WriteVerilog adds for
// clock domains; clocks are domains, not data ports, in the netlist model.
func (p *vparser) stripClockPorts() {
	isClock := func(name string) bool {
		for _, c := range p.n.Clocks {
			if c == name {
				return true
			}
		}
		return false
	}
	var ports []gohdl.NetPort
	for _, port := range p.n.Ports {
		if port.Dir == gohdl.DirIn && port.Width == 1 && isClock(port.Name) {
			continue
		}
		ports = append(ports, port)
	}
	p.n.Ports = ports
}

// find follows alias links to the canonical net.
func (p *vparser) find(id gohdl.NetID) gohdl.NetID {
	for {
		next, ok := p.union[id]
		if !ok {
			return id
		}
		id = next
	}
}

// resolve replaces every net reference by its canonical alias
// representative.
func (p *vparser) resolve() {
	for i := range p.n.Ports {
		for j, id := range p.n.Ports[i].Nets {
			p.n.Ports[i].Nets[j] = p.find(id)
		}
	}
	for i := range p.n.Gates {
		g := &p.n.Gates[i]
		for j, id := range g.In {
			g.In[j] = p.find(id)
		}
		g.Out = p.find(g.Out)
	}
	for i := range p.n.Regs {
		r := &p.n.Regs[i]
		r.Data = p.find(r.Data)
		if r.Reset != gohdl.NoNet {
			r.Reset = p.find(r.Reset)
		}
		r.Out = p.find(r.Out)
	}
	p.n.Const0 = p.find0(p.n.Const0)
	p.n.Const1 = p.find0(p.n.Const1)
}

func (p *vparser) find0(id gohdl.NetID) gohdl.NetID {
	if id == gohdl.NoNet {
		return id
	}
	return p.find(id)
}
