// Copyright 2026 The gohdl Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package gohdl

import "fmt"

// A DeclarationError reports an invalid component declaration: a duplicate
// component, port or parameter name, or an instance of an unregistered
// component type. Declaration errors are fatal at registration time.
type DeclarationError struct {
	Component string
	Detail    string
}

func (e *DeclarationError) Error() string {
	return "declaration of " + e.Component + ": " + e.Detail
}

// ElabErrKind discriminates elaboration failures.
type ElabErrKind int

// Elaboration failure kinds.
const (
	ErrUnresolvedParam ElabErrKind = iota // width or binding refers to an unbound parameter
	ErrWidthMismatch                      // connection or operation binds signals of differing widths
	ErrUnknownPort                        // instance connects to a port absent on the target Decl
	ErrUnknownSignal                      // expression reads a name that is never declared or driven
	ErrMultipleDrivers                    // signal assigned by more than one static driver
	ErrNoDriver                           // signal read but never driven
	ErrCombLoop                           // combinational cycle not broken by a register
	ErrBadWidth                           // width outside 1..64 or not inferable
	ErrLatch                              // combinational conditional assignment with a missing branch
)

var elabErrNames = map[ElabErrKind]string{
	ErrUnresolvedParam: "unresolved parameter",
	ErrWidthMismatch:   "width mismatch",
	ErrUnknownPort:     "unknown port",
	ErrUnknownSignal:   "unknown signal",
	ErrMultipleDrivers: "multiple drivers",
	ErrNoDriver:        "no driver",
	ErrCombLoop:        "combinational loop",
	ErrBadWidth:        "bad width",
	ErrLatch:           "latch inferred",
}

// An ElaborationError is fatal for the component instance being elaborated.
// Path holds the full instance path from the top component.
type ElaborationError struct {
	Path   string
	Kind   ElabErrKind
	Detail string
}

func (e *ElaborationError) Error() string {
	return fmt.Sprintf("elaborate %s: %s: %s", e.Path, elabErrNames[e.Kind], e.Detail)
}

func elabErr(path string, kind ElabErrKind, format string, args ...interface{}) error {
	return &ElaborationError{Path: path, Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// A LoweringError is fatal for synthesis only; the behavioral simulator
// remains usable for the graph that failed to lower.
type LoweringError struct {
	Op     string
	Detail string
}

func (e *LoweringError) Error() string {
	return "lower " + e.Op + ": " + e.Detail
}

// A SimulationError aborts a simulation run. It always indicates a design
// defect (a true combinational cycle, or a read of a never-driven signal)
// and is never transient.
type SimulationError struct {
	Signal string
	Detail string
}

func (e *SimulationError) Error() string {
	if e.Signal == "" {
		return "simulation: " + e.Detail
	}
	return "simulation of " + e.Signal + ": " + e.Detail
}
