// Copyright 2026 The gohdl Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package gohdl

import "fmt"

// NodeID indexes a node in a Graph's arena. NoNode marks the absence of a
// node (an undriven signal, a register with no reset).
type NodeID int32

// SigID indexes a signal in a Graph.
type SigID int32

// NoNode is the nil NodeID.
const NoNode NodeID = -1

// NodeKind discriminates elaborated expression nodes. The set is closed:
// every consumer (both simulators and the lowering pass) dispatches over it
// exhaustively, so an unhandled kind fails loudly rather than silently.
type NodeKind int

// Elaborated node kinds.
const (
	KindConst NodeKind = iota
	KindSig
	KindNot
	KindNeg
	KindAdd
	KindSub
	KindAnd
	KindOr
	KindXor
	KindEq
	KindNe
	KindLt
	KindShl
	KindShr
	KindSlice
	KindConcat
	KindExtend
	KindSel
)

var kindNames = map[NodeKind]string{
	KindConst: "const", KindSig: "sig",
	KindNot: "not", KindNeg: "neg",
	KindAdd: "add", KindSub: "sub",
	KindAnd: "and", KindOr: "or", KindXor: "xor",
	KindEq: "eq", KindNe: "ne", KindLt: "lt",
	KindShl: "shl", KindShr: "shr",
	KindSlice: "slice", KindConcat: "concat", KindExtend: "extend",
	KindSel: "sel",
}

func (k NodeKind) String() string { return kindNames[k] }

// A Node is one operation in an elaborated graph. Operands are arena
// indices; there is no nested ownership.
type Node struct {
	Kind  NodeKind
	Width int
	Args  []NodeID
	Sig   SigID  // KindSig
	Value uint64 // KindConst
	Hi    int    // KindSlice high bit, or shift count for KindShl/KindShr
	Lo    int    // KindSlice low bit
}

// A Signal is a named value carrier in an elaborated graph: a port, an
// internal wire, or a register output. Each signal has exactly one static
// driver (its driver node, an external input, or a register).
type Signal struct {
	Name  string // hierarchical: "inst/sub/name"
	Width int
	Init  uint64
	IsReg bool
	IsIn  bool
}

// A RegNode is one state-holding element: at every step its target signal
// atomically takes the value of Data (or Init, when Reset is non-zero)
// computed from the previous step's state.
type RegNode struct {
	Target SigID
	Data   NodeID
	Clock  string
	Reset  NodeID // NoNode when the register has no reset
	Init   uint64
}

// A PortInfo describes one external port of an elaborated graph, with its
// resolved width.
type PortInfo struct {
	Name  string
	Dir   Dir
	Width int
	Sig   SigID
}

// A Graph is the fully flattened, parameter-resolved expression graph of
// one top-level component. It is immutable after elaboration and may be
// shared by any number of simulator instances.
type Graph struct {
	Name string

	nodes   []Node
	signals []Signal
	drivers []NodeID // per signal; NoNode for inputs and register outputs
	regs    []RegNode
	ports   []PortInfo
	clocks  []string // distinct clock domains, in first-use order
	order   []SigID  // topological order of combinationally driven signals
	index   map[string]SigID
}

// Node returns the node at id.
func (g *Graph) Node(id NodeID) *Node { return &g.nodes[id] }

// NumNodes returns the size of the node arena.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// Signal returns the signal at id.
func (g *Graph) Signal(id SigID) *Signal { return &g.signals[id] }

// NumSignals returns the signal count.
func (g *Graph) NumSignals() int { return len(g.signals) }

// Driver returns the driving node of signal id, or NoNode for external
// inputs and register outputs.
func (g *Graph) Driver(id SigID) NodeID { return g.drivers[id] }

// Regs returns the graph's registers.
func (g *Graph) Regs() []RegNode { return g.regs }

// Ports returns the external port list, in declaration order.
func (g *Graph) Ports() []PortInfo { return g.ports }

// Clocks returns the distinct clock domain names.
func (g *Graph) Clocks() []string { return g.clocks }

// SignalID returns the id of the named signal.
func (g *Graph) SignalID(name string) (SigID, bool) {
	id, ok := g.index[name]
	return id, ok
}

// Stats summarizes a graph for debugging.
func (g *Graph) Stats() string {
	return fmt.Sprintf("%s: %d nodes, %d signals, %d registers, %d ports",
		g.Name, len(g.nodes), len(g.signals), len(g.regs), len(g.ports))
}

func (g *Graph) addNode(n Node) NodeID {
	g.nodes = append(g.nodes, n)
	return NodeID(len(g.nodes) - 1)
}

func (g *Graph) addSignal(s Signal) SigID {
	id := SigID(len(g.signals))
	g.signals = append(g.signals, s)
	g.drivers = append(g.drivers, NoNode)
	g.index[s.Name] = id
	return id
}

func (g *Graph) addClock(name string) {
	for _, c := range g.clocks {
		if c == name {
			return
		}
	}
	g.clocks = append(g.clocks, name)
}
