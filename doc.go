// Copyright 2026 The gohdl Authors
// Licensed under the MIT license. See license text in the LICENSE file.

// Package gohdl is a declarative hardware description and simulation core.
//
// Components are described as data: a Decl lists a component's parameters,
// typed ports, sub-instances and behavior statements. Elaborate resolves
// parameters and flattens the hierarchy into a single expression Graph, which
// can be simulated directly (Sim) or lowered to a netlist of seven gate
// primitives (Lower, GateSim). Both simulators share one stepping contract
// and must stay observably equivalent; the gate-level engine doubles as an
// oracle for validating the lowering rules.
//
// Netlists serialize to structural Verilog and to a JSON document (package
// export), and either simulator can be traced to a VCD waveform (package
// trace).
package gohdl
