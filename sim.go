// Copyright 2026 The gohdl Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package gohdl

import "github.com/pkg/errors"

// A Stepper is the stepping contract shared by the behavioral and
// gate-level simulators and consumed by every client of the core.
type Stepper interface {
	// SetInput sets the named external input for the next Step.
	SetInput(name string, v uint64) error
	// Step advances the simulation by one clock cycle.
	Step()
	// GetOutput returns the current value of the named external output.
	GetOutput(name string) (uint64, error)
	// Reset reinitializes simulation state without re-elaborating.
	Reset()
	// Time returns the number of completed steps since the last Reset.
	Time() uint64
	// Peek returns the current value and width of any named signal it can
	// observe. It reports ok=false for unknown names, never an error, so
	// observers can degrade gracefully.
	Peek(name string) (v uint64, width int, ok bool)
}

// Sim evaluates an elaborated Graph directly: one combinational pass in
// topological order, then one atomic register update per Step. It is the
// semantic reference the gate-level engine is validated against. Each Sim
// exclusively owns its state; the Graph is shared read-only.
type Sim struct {
	g    *Graph
	vals []uint64 // per signal
	next []uint64 // per register, staged until commit
	time uint64
}

// NewSim returns a fresh simulator for g with all state at its initial
// values.
func NewSim(g *Graph) (*Sim, error) {
	if g.order == nil && hasCombSignals(g) {
		// graphs produced by Elaborate always carry an order; anything
		// else is not simulatable
		return nil, &SimulationError{Detail: "graph has no combinational evaluation order"}
	}
	s := &Sim{g: g, vals: make([]uint64, g.NumSignals()), next: make([]uint64, len(g.regs))}
	s.Reset()
	return s, nil
}

func hasCombSignals(g *Graph) bool {
	for i := range g.signals {
		if !g.signals[i].IsIn && !g.signals[i].IsReg {
			return true
		}
	}
	return false
}

// Reset reinitializes all signal and register state. Inputs drop to zero
// and registers return to their declared initial values. The graph is
// untouched, so Reset never re-elaborates.
func (s *Sim) Reset() {
	for i := range s.vals {
		s.vals[i] = 0
	}
	for _, r := range s.g.regs {
		s.vals[r.Target] = mask(r.Init, s.g.Signal(r.Target).Width)
	}
	s.time = 0
	s.settle()
}

// SetInput sets the named input port for the next Step.
func (s *Sim) SetInput(name string, v uint64) error {
	for _, p := range s.g.ports {
		if p.Name == name {
			if p.Dir != DirIn {
				return errors.Errorf("%s: %s is an output", s.g.Name, name)
			}
			s.vals[p.Sig] = mask(v, p.Width)
			s.settle()
			return nil
		}
	}
	return errors.Errorf("%s: no input named %s", s.g.Name, name)
}

// GetOutput returns the current value of the named output port.
func (s *Sim) GetOutput(name string) (uint64, error) {
	for _, p := range s.g.ports {
		if p.Name == name {
			if p.Dir != DirOut {
				return 0, errors.Errorf("%s: %s is an input", s.g.Name, name)
			}
			return s.vals[p.Sig], nil
		}
	}
	return 0, errors.Errorf("%s: no output named %s", s.g.Name, name)
}

// Peek returns the current value of any signal by hierarchical name.
func (s *Sim) Peek(name string) (uint64, int, bool) {
	sid, ok := s.g.SignalID(name)
	if !ok {
		return 0, 0, false
	}
	return s.vals[sid], s.g.Signal(sid).Width, true
}

// Time returns the completed step count.
func (s *Sim) Time() uint64 { return s.time }

// Step runs one clock cycle: combinational outputs settle from the current
// inputs and the previous cycle's register state, then every register
// update commits at once. The two-phase commit keeps the result
// independent of register visit order.
func (s *Sim) Step() {
	s.settle()
	for i, r := range s.g.regs {
		if r.Reset != NoNode && s.eval(r.Reset) != 0 {
			s.next[i] = mask(r.Init, s.g.Signal(r.Target).Width)
		} else {
			s.next[i] = s.eval(r.Data)
		}
	}
	for i, r := range s.g.regs {
		s.vals[r.Target] = s.next[i]
	}
	s.time++
	s.settle()
}

// settle recomputes every combinationally driven signal in topological
// order.
func (s *Sim) settle() {
	for _, sid := range s.g.order {
		s.vals[sid] = s.eval(s.g.drivers[sid])
	}
}

func (s *Sim) eval(id NodeID) uint64 {
	n := s.g.Node(id)
	switch n.Kind {
	case KindConst:
		return n.Value
	case KindSig:
		return s.vals[n.Sig]
	case KindNot:
		return mask(^s.eval(n.Args[0]), n.Width)
	case KindNeg:
		return mask(-s.eval(n.Args[0]), n.Width)
	case KindAdd:
		return mask(s.eval(n.Args[0])+s.eval(n.Args[1]), n.Width)
	case KindSub:
		return mask(s.eval(n.Args[0])-s.eval(n.Args[1]), n.Width)
	case KindAnd:
		return s.eval(n.Args[0]) & s.eval(n.Args[1])
	case KindOr:
		return s.eval(n.Args[0]) | s.eval(n.Args[1])
	case KindXor:
		return s.eval(n.Args[0]) ^ s.eval(n.Args[1])
	case KindEq:
		return b2u(s.eval(n.Args[0]) == s.eval(n.Args[1]))
	case KindNe:
		return b2u(s.eval(n.Args[0]) != s.eval(n.Args[1]))
	case KindLt:
		return b2u(s.eval(n.Args[0]) < s.eval(n.Args[1]))
	case KindShl:
		return mask(s.eval(n.Args[0])<<uint(n.Hi), n.Width)
	case KindShr:
		return s.eval(n.Args[0]) >> uint(n.Hi)
	case KindSlice:
		return mask(s.eval(n.Args[0])>>uint(n.Lo), n.Width)
	case KindConcat:
		var v uint64
		for _, a := range n.Args {
			an := s.g.Node(a)
			v = v<<uint(an.Width) | s.eval(a)
		}
		return v
	case KindExtend:
		return mask(s.eval(n.Args[0]), n.Width)
	case KindSel:
		// the condition is evaluated once; only the chosen branch
		// propagates
		if s.eval(n.Args[0]) != 0 {
			return s.eval(n.Args[1])
		}
		return s.eval(n.Args[2])
	}
	panic("unhandled node kind " + n.Kind.String())
}

func b2u(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
