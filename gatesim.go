// Copyright 2026 The gohdl Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package gohdl

import "github.com/pkg/errors"

// GateSim executes a lowered netlist primitive by primitive, one clock
// cycle per Step. It implements the same Stepper contract as Sim and is
// used as the oracle for validating the lowering rules: for any input
// sequence its output trace must match the behavioral simulator
// bit-for-bit.
type GateSim struct {
	n     *Netlist
	vals  []bool // per net
	next  []bool // per register, staged until commit
	order []int  // combinational gate evaluation order
	time  uint64
}

// NewGateSim returns a fresh gate-level simulator for n. It fails with a
// SimulationError if the combinational gates cannot be ordered, which
// indicates a cycle not broken by a register.
func NewGateSim(n *Netlist) (*GateSim, error) {
	s := &GateSim{n: n, vals: make([]bool, n.Nets), next: make([]bool, len(n.Regs))}
	if err := s.levelize(); err != nil {
		return nil, err
	}
	s.Reset()
	return s, nil
}

// levelize computes a topological evaluation order over the combinational
// gates. Register outputs and port inputs are sources.
func (s *GateSim) levelize() error {
	producer := make(map[NetID]int, len(s.n.Gates)) // net -> gate index
	for i, g := range s.n.Gates {
		producer[g.Out] = i
	}
	for _, r := range s.n.Regs {
		delete(producer, r.Out) // register outputs are sources
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make([]byte, len(s.n.Gates))
	var visit func(i int) error
	visit = func(i int) error {
		switch color[i] {
		case black:
			return nil
		case gray:
			return &SimulationError{Detail: "unresolved combinational cycle through gate " + s.n.Gates[i].Kind.String()}
		}
		color[i] = gray
		for _, in := range s.n.Gates[i].In {
			if p, ok := producer[in]; ok {
				if err := visit(p); err != nil {
					return err
				}
			}
		}
		color[i] = black
		s.order = append(s.order, i)
		return nil
	}
	for i := range s.n.Gates {
		if err := visit(i); err != nil {
			return err
		}
	}
	return nil
}

// Reset reinitializes all nets and registers without touching the netlist.
func (s *GateSim) Reset() {
	for i := range s.vals {
		s.vals[i] = false
	}
	for _, r := range s.n.Regs {
		s.vals[r.Out] = r.Init
	}
	s.time = 0
	s.settle()
}

// SetInput sets the named input port for the next Step.
func (s *GateSim) SetInput(name string, v uint64) error {
	for _, p := range s.n.Ports {
		if p.Name == name {
			if p.Dir != DirIn {
				return errors.Errorf("%s: %s is an output", s.n.Name, name)
			}
			for i, net := range p.Nets {
				s.vals[net] = v>>uint(i)&1 == 1
			}
			s.settle()
			return nil
		}
	}
	return errors.Errorf("%s: no input named %s", s.n.Name, name)
}

// GetOutput returns the current value of the named output port.
func (s *GateSim) GetOutput(name string) (uint64, error) {
	for _, p := range s.n.Ports {
		if p.Name == name {
			if p.Dir != DirOut {
				return 0, errors.Errorf("%s: %s is an input", s.n.Name, name)
			}
			return s.pack(p.Nets), nil
		}
	}
	return 0, errors.Errorf("%s: no output named %s", s.n.Name, name)
}

// Peek observes external ports by name. Internal nets have no names at
// gate level, so anything else reports ok=false.
func (s *GateSim) Peek(name string) (uint64, int, bool) {
	for _, p := range s.n.Ports {
		if p.Name == name {
			return s.pack(p.Nets), p.Width, true
		}
	}
	return 0, 0, false
}

// Time returns the completed step count.
func (s *GateSim) Time() uint64 { return s.time }

func (s *GateSim) pack(nets []NetID) uint64 {
	var v uint64
	for i, net := range nets {
		if s.vals[net] {
			v |= 1 << uint(i)
		}
	}
	return v
}

// Step advances one clock cycle with the same two-phase discipline as the
// behavioral simulator: combinational settle, register capture from
// pre-edge values, atomic commit, settle.
func (s *GateSim) Step() {
	s.settle()
	for i, r := range s.n.Regs {
		if r.Reset != NoNet && s.vals[r.Reset] {
			s.next[i] = r.Init
		} else {
			s.next[i] = s.vals[r.Data]
		}
	}
	for i, r := range s.n.Regs {
		s.vals[r.Out] = s.next[i]
	}
	s.time++
	s.settle()
}

func (s *GateSim) settle() {
	for _, i := range s.order {
		g := &s.n.Gates[i]
		switch g.Kind {
		case GateAnd:
			s.vals[g.Out] = s.vals[g.In[0]] && s.vals[g.In[1]]
		case GateOr:
			s.vals[g.Out] = s.vals[g.In[0]] || s.vals[g.In[1]]
		case GateXor:
			s.vals[g.Out] = s.vals[g.In[0]] != s.vals[g.In[1]]
		case GateNot:
			s.vals[g.Out] = !s.vals[g.In[0]]
		case GateMux:
			if s.vals[g.In[0]] {
				s.vals[g.Out] = s.vals[g.In[2]]
			} else {
				s.vals[g.Out] = s.vals[g.In[1]]
			}
		case GateConst:
			s.vals[g.Out] = g.Value
		}
	}
}
