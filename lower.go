// Copyright 2026 The gohdl Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package gohdl

// Lower rewrites an elaborated graph into a netlist over the seven gate
// primitives. Every node kind has a fixed expansion rule; lowering the same
// graph twice produces structurally identical netlists (net and id
// assignment is a pure function of the graph). A kind without an expansion
// rule fails with a LoweringError and leaves the graph fully usable by the
// behavioral simulator.
func Lower(g *Graph) (*Netlist, error) {
	l := &lowerer{
		g:       g,
		n:       &Netlist{Name: g.Name, Clocks: append([]string(nil), g.Clocks()...)},
		sigNets: make([][]NetID, g.NumSignals()),
		memo:    make(map[NodeID][]NetID),
	}

	// constant nets are shared and materialize on first use, so purely
	// combinational netlists carry no constant gates at all
	l.n.Const0, l.n.Const1 = NoNet, NoNet

	// input ports and register outputs own their nets; everything else
	// aliases the nets of its driver expression
	for _, p := range g.Ports() {
		if p.Dir == DirIn {
			l.sigNets[p.Sig] = l.newNets(p.Width)
		}
	}
	for _, r := range g.Regs() {
		l.sigNets[r.Target] = l.newNets(g.Signal(r.Target).Width)
	}

	for _, sid := range g.order {
		bits, err := l.lowerNode(g.drivers[sid])
		if err != nil {
			return nil, err
		}
		l.sigNets[sid] = bits
	}

	for _, p := range g.Ports() {
		l.n.Ports = append(l.n.Ports, NetPort{
			Name: p.Name, Dir: p.Dir, Width: p.Width,
			Nets: append([]NetID(nil), l.sigNets[p.Sig]...),
		})
	}

	for _, r := range g.Regs() {
		data, err := l.lowerNode(r.Data)
		if err != nil {
			return nil, err
		}
		reset := NoNet
		if r.Reset != NoNode {
			rb, err := l.lowerNode(r.Reset)
			if err != nil {
				return nil, err
			}
			reset = rb[0]
		}
		out := l.sigNets[r.Target]
		for i := range out {
			l.n.Regs = append(l.n.Regs, NetReg{
				ID: len(l.n.Regs), Data: data[i], Clock: r.Clock,
				Reset: reset, Out: out[i], Init: r.Init>>uint(i)&1 == 1,
			})
		}
	}

	return l.n, nil
}

type lowerer struct {
	g       *Graph
	n       *Netlist
	sigNets [][]NetID
	memo    map[NodeID][]NetID
}

func (l *lowerer) newNet() NetID {
	id := NetID(l.n.Nets)
	l.n.Nets++
	return id
}

func (l *lowerer) newNets(w int) []NetID {
	out := make([]NetID, w)
	for i := range out {
		out[i] = l.newNet()
	}
	return out
}

func (l *lowerer) gate(k GateKind, in ...NetID) NetID {
	out := l.newNet()
	l.n.Gates = append(l.n.Gates, Gate{ID: len(l.n.Gates), Kind: k, In: in, Out: out})
	return out
}

func (l *lowerer) constGate(v bool) NetID {
	out := l.newNet()
	l.n.Gates = append(l.n.Gates, Gate{ID: len(l.n.Gates), Kind: GateConst, Out: out, Value: v})
	return out
}

func (l *lowerer) constBit(b bool) NetID {
	if b {
		if l.n.Const1 == NoNet {
			l.n.Const1 = l.constGate(true)
		}
		return l.n.Const1
	}
	if l.n.Const0 == NoNet {
		l.n.Const0 = l.constGate(false)
	}
	return l.n.Const0
}

// ripple builds a ripple-carry adder: one full-adder cluster per bit
// (2 XOR + 2 AND + 1 OR), carry chained through cin. It returns the sum
// bits and the final carry-out.
func (l *lowerer) ripple(a, b []NetID, cin NetID) (sum []NetID, cout NetID) {
	sum = make([]NetID, len(a))
	c := cin
	for i := range a {
		x1 := l.gate(GateXor, a[i], b[i])
		sum[i] = l.gate(GateXor, x1, c)
		a1 := l.gate(GateAnd, a[i], b[i])
		a2 := l.gate(GateAnd, x1, c)
		c = l.gate(GateOr, a1, a2)
	}
	return sum, c
}

func (l *lowerer) invert(a []NetID) []NetID {
	out := make([]NetID, len(a))
	for i := range a {
		out[i] = l.gate(GateNot, a[i])
	}
	return out
}

// orReduce folds bits into one net with a chain of OR gates.
func (l *lowerer) orReduce(bits []NetID) NetID {
	acc := bits[0]
	for _, b := range bits[1:] {
		acc = l.gate(GateOr, acc, b)
	}
	return acc
}

func (l *lowerer) lowerNode(id NodeID) ([]NetID, error) {
	if bits, ok := l.memo[id]; ok {
		return bits, nil
	}
	n := l.g.Node(id)

	// lower operands first, in argument order, so net allocation is
	// stable
	args := make([][]NetID, len(n.Args))
	for i, a := range n.Args {
		bits, err := l.lowerNode(a)
		if err != nil {
			return nil, err
		}
		args[i] = bits
	}

	var bits []NetID
	switch n.Kind {
	case KindConst:
		bits = make([]NetID, n.Width)
		for i := range bits {
			bits[i] = l.constBit(n.Value>>uint(i)&1 == 1)
		}

	case KindSig:
		bits = l.sigNets[n.Sig]

	case KindNot:
		bits = l.invert(args[0])

	case KindNeg:
		zero := make([]NetID, n.Width)
		for i := range zero {
			zero[i] = l.constBit(false)
		}
		bits, _ = l.ripple(l.invert(args[0]), zero, l.constBit(true))

	case KindAdd:
		bits, _ = l.ripple(args[0], args[1], l.constBit(false))

	case KindSub:
		bits, _ = l.ripple(args[0], l.invert(args[1]), l.constBit(true))

	case KindAnd, KindOr, KindXor:
		k := map[NodeKind]GateKind{KindAnd: GateAnd, KindOr: GateOr, KindXor: GateXor}[n.Kind]
		bits = make([]NetID, n.Width)
		for i := range bits {
			bits[i] = l.gate(k, args[0][i], args[1][i])
		}

	case KindEq, KindNe:
		diff := make([]NetID, len(args[0]))
		for i := range diff {
			diff[i] = l.gate(GateXor, args[0][i], args[1][i])
		}
		ne := l.orReduce(diff)
		if n.Kind == KindNe {
			bits = []NetID{ne}
		} else {
			bits = []NetID{l.gate(GateNot, ne)}
		}

	case KindLt:
		// unsigned a<b: no carry out of a + ^b + 1
		_, cout := l.ripple(args[0], l.invert(args[1]), l.constBit(true))
		bits = []NetID{l.gate(GateNot, cout)}

	case KindShl:
		bits = make([]NetID, n.Width)
		for i := range bits {
			if i < n.Hi {
				bits[i] = l.constBit(false)
			} else {
				bits[i] = args[0][i-n.Hi]
			}
		}

	case KindShr:
		bits = make([]NetID, n.Width)
		for i := range bits {
			if i+n.Hi < len(args[0]) {
				bits[i] = args[0][i+n.Hi]
			} else {
				bits[i] = l.constBit(false)
			}
		}

	case KindSlice:
		bits = args[0][n.Lo : n.Hi+1]

	case KindConcat:
		// last argument is least significant
		for i := len(args) - 1; i >= 0; i-- {
			bits = append(bits, args[i]...)
		}

	case KindExtend:
		src := args[0]
		if n.Width <= len(src) {
			bits = src[:n.Width]
		} else {
			bits = append([]NetID(nil), src...)
			for len(bits) < n.Width {
				bits = append(bits, l.constBit(false))
			}
		}

	case KindSel:
		sel := args[0][0]
		bits = make([]NetID, n.Width)
		for i := range bits {
			bits[i] = l.gate(GateMux, sel, args[2][i], args[1][i])
		}

	default:
		return nil, &LoweringError{Op: n.Kind.String(), Detail: "no expansion rule"}
	}

	l.memo[id] = bits
	return bits, nil
}
