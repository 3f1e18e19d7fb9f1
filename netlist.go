// Copyright 2026 The gohdl Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package gohdl

import "fmt"

// NetID indexes a single-bit net in a Netlist.
type NetID int32

// NoNet marks an unconnected net reference (a register without reset).
const NoNet NetID = -1

// GateKind is one of the six combinational primitives. Together with the
// register primitive they form the closed instruction set of the netlist.
type GateKind int8

// Gate primitives.
const (
	GateAnd GateKind = iota
	GateOr
	GateXor
	GateNot
	GateMux
	GateConst
)

var gateNames = [...]string{"and", "or", "xor", "not", "mux", "const"}

func (k GateKind) String() string { return gateNames[k] }

// GateKindFromString maps a primitive name back to its kind.
func GateKindFromString(s string) (GateKind, bool) {
	for i, n := range gateNames {
		if n == s {
			return GateKind(i), true
		}
	}
	return 0, false
}

// A Gate is one combinational primitive. Input counts are fixed per kind:
// AND/OR/XOR take 2, NOT takes 1, MUX takes 3 (select, else-input,
// then-input) and CONST takes none.
type Gate struct {
	ID    int
	Kind  GateKind
	In    []NetID
	Out   NetID
	Value bool // CONST only
}

// A NetReg is the state primitive: on each edge of its clock domain the
// output net takes the data net's value, or Init when the reset net is
// high. Reset is synchronous.
type NetReg struct {
	ID    int
	Data  NetID
	Clock string
	Reset NetID
	Out   NetID
	Init  bool
}

// A NetPort is one external port of a netlist with its bit nets, LSB
// first.
type NetPort struct {
	Name  string
	Dir   Dir
	Width int
	Nets  []NetID
}

// A Netlist is the output of lowering: flat gate and register collections
// over single-bit nets, plus the component's external port list. The
// combinational subgraph is acyclic; registers are the only feedback
// points. Netlists are immutable once built and may be shared across any
// number of gate-level simulator instances.
type Netlist struct {
	Name   string
	Ports  []NetPort
	Gates  []Gate
	Regs   []NetReg
	Nets   int
	Clocks []string

	// Const0 and Const1 are the shared constant nets, driven by a single
	// CONST gate each.
	Const0, Const1 NetID
}

// NumGates returns the number of gates of kind k.
func (n *Netlist) NumGates(k GateKind) int {
	c := 0
	for _, g := range n.Gates {
		if g.Kind == k {
			c++
		}
	}
	return c
}

// Stats summarizes the netlist for debugging.
func (n *Netlist) Stats() string {
	return fmt.Sprintf("%s: %d nets, %d gates, %d registers, %d ports",
		n.Name, n.Nets, len(n.Gates), len(n.Regs), len(n.Ports))
}

// regsByClock returns the registers stably ordered by the clock domain's
// position in Clocks.
func (n *Netlist) regsByClock() []NetReg {
	out := make([]NetReg, 0, len(n.Regs))
	for _, c := range n.Clocks {
		for _, r := range n.Regs {
			if r.Clock == c {
				out = append(out, r)
			}
		}
	}
	// registers in a domain missing from Clocks keep their order at the end
	for _, r := range n.Regs {
		found := false
		for _, c := range n.Clocks {
			if r.Clock == c {
				found = true
				break
			}
		}
		if !found {
			out = append(out, r)
		}
	}
	return out
}

// Canonical returns a copy of n with nets renumbered by first appearance
// (port bits in declaration order, then gate inputs/outputs in gate order,
// then registers) and gate/register ids made sequential. Two netlists that
// differ only in id assignment canonicalize to the same value.
func (n *Netlist) Canonical() *Netlist {
	ren := make(map[NetID]NetID, n.Nets)
	next := NetID(0)
	num := func(id NetID) NetID {
		if id == NoNet {
			return NoNet
		}
		if r, ok := ren[id]; ok {
			return r
		}
		ren[id] = next
		next++
		return ren[id]
	}

	c := &Netlist{Name: n.Name, Clocks: append([]string(nil), n.Clocks...)}
	for _, p := range n.Ports {
		cp := NetPort{Name: p.Name, Dir: p.Dir, Width: p.Width, Nets: make([]NetID, len(p.Nets))}
		for i, id := range p.Nets {
			cp.Nets[i] = num(id)
		}
		c.Ports = append(c.Ports, cp)
	}
	for i, g := range n.Gates {
		cg := Gate{ID: i, Kind: g.Kind, Out: NoNet, Value: g.Value}
		for _, id := range g.In {
			cg.In = append(cg.In, num(id))
		}
		cg.Out = num(g.Out)
		c.Gates = append(c.Gates, cg)
	}
	// registers sort stably by clock domain so that serializers which
	// group update blocks per domain still round-trip to an equal value
	for i, r := range n.regsByClock() {
		c.Regs = append(c.Regs, NetReg{
			ID: i, Data: num(r.Data), Clock: r.Clock, Reset: num(r.Reset),
			Out: num(r.Out), Init: r.Init,
		})
	}
	c.Nets = int(next)
	c.Const0 = num(n.Const0)
	c.Const1 = num(n.Const1)
	return c
}

// Equal reports structural equality up to stable renumbering of nets and
// ids.
func (n *Netlist) Equal(o *Netlist) bool {
	a, b := n.Canonical(), o.Canonical()
	if a.Name != b.Name || a.Nets != b.Nets ||
		len(a.Ports) != len(b.Ports) || len(a.Gates) != len(b.Gates) ||
		len(a.Regs) != len(b.Regs) || len(a.Clocks) != len(b.Clocks) {
		return false
	}
	for i := range a.Clocks {
		if a.Clocks[i] != b.Clocks[i] {
			return false
		}
	}
	for i := range a.Ports {
		p, q := a.Ports[i], b.Ports[i]
		if p.Name != q.Name || p.Dir != q.Dir || p.Width != q.Width || len(p.Nets) != len(q.Nets) {
			return false
		}
		for j := range p.Nets {
			if p.Nets[j] != q.Nets[j] {
				return false
			}
		}
	}
	for i := range a.Gates {
		g, h := a.Gates[i], b.Gates[i]
		if g.Kind != h.Kind || g.Out != h.Out || g.Value != h.Value || len(g.In) != len(h.In) {
			return false
		}
		for j := range g.In {
			if g.In[j] != h.In[j] {
				return false
			}
		}
	}
	for i := range a.Regs {
		r, s := a.Regs[i], b.Regs[i]
		if r != s {
			return false
		}
	}
	return true
}
