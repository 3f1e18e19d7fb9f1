// Copyright 2026 The gohdl Authors
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hdltest provides utility functions for testing components.
package hdltest

import (
	"math/rand"
	"testing"

	"github.com/skryl/gohdl"
)

// CompareSim elaborates the named component, lowers it, and drives the
// behavioral and gate-level simulators with the same random input sequence
// for the given number of steps, comparing every output after every step.
// Any divergence is a defect in the lowering rules and fails the test.
func CompareSim(t *testing.T, reg *gohdl.Registry, name string, params map[string]int, steps int) {
	t.Helper()

	g, err := gohdl.Elaborate(reg, name, params)
	if err != nil {
		t.Fatalf("elaborate %s: %v", name, err)
	}
	n, err := gohdl.Lower(g)
	if err != nil {
		t.Fatalf("lower %s: %v", name, err)
	}
	bs, err := gohdl.NewSim(g)
	if err != nil {
		t.Fatalf("behavioral sim %s: %v", name, err)
	}
	gs, err := gohdl.NewGateSim(n)
	if err != nil {
		t.Fatalf("gate sim %s: %v", name, err)
	}

	// fixed seed: failures must reproduce
	rnd := rand.New(rand.NewSource(int64(len(name)) + int64(steps)))

	for step := 0; step < steps; step++ {
		for _, p := range g.Ports() {
			if p.Dir != gohdl.DirIn {
				continue
			}
			v := rnd.Uint64()
			if err := bs.SetInput(p.Name, v); err != nil {
				t.Fatalf("step %d: behavioral SetInput(%s): %v", step, p.Name, err)
			}
			if err := gs.SetInput(p.Name, v); err != nil {
				t.Fatalf("step %d: gate SetInput(%s): %v", step, p.Name, err)
			}
		}
		bs.Step()
		gs.Step()
		for _, p := range g.Ports() {
			if p.Dir != gohdl.DirOut {
				continue
			}
			bv, err := bs.GetOutput(p.Name)
			if err != nil {
				t.Fatalf("step %d: behavioral GetOutput(%s): %v", step, p.Name, err)
			}
			gv, err := gs.GetOutput(p.Name)
			if err != nil {
				t.Fatalf("step %d: gate GetOutput(%s): %v", step, p.Name, err)
			}
			if bv != gv {
				t.Fatalf("%s: output %s diverged at step %d: behavioral %#x, gate-level %#x",
					name, p.Name, step, bv, gv)
			}
		}
	}
}
