// Copyright 2026 The gohdl Authors
// Licensed under the MIT license. See license text in the LICENSE file.

// Package trace records named-signal value changes of a running simulator
// as a VCD (value change dump) waveform. Tracing is purely observational:
// it never affects simulation semantics, and a tracer that cannot observe
// a signal drops the sample instead of failing the run.
package trace

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// A Source is anything the tracer can observe. Both simulators satisfy it.
type Source interface {
	// Peek returns the current value and width of a named signal;
	// ok=false means the signal cannot be observed.
	Peek(name string) (v uint64, width int, ok bool)
	// Time returns the completed step count.
	Time() uint64
}

type probe struct {
	name  string
	code  string
	width int
	last  uint64
	valid bool
}

// A Tracer subscribes to a set of signal names on one simulator and
// appends their value changes, in strictly increasing time order, to an
// append-only log flushable as VCD.
type Tracer struct {
	src     Source
	probes  []probe
	changes []change
	dropped int
}

type change struct {
	time  uint64
	probe int
	value uint64
}

// New subscribes a tracer to the named signals of src. Names that the
// source cannot observe at all are rejected up front; transient Peek
// failures during a run only drop trace points.
func New(src Source, names ...string) (*Tracer, error) {
	t := &Tracer{src: src}
	for i, n := range names {
		_, w, ok := src.Peek(n)
		if !ok {
			return nil, errors.Errorf("trace: cannot observe signal %s", n)
		}
		t.probes = append(t.probes, probe{name: n, code: vcdCode(i), width: w})
	}
	t.Sample()
	return t, nil
}

// vcdCode returns the i-th VCD identifier code (printable ASCII 33..126).
func vcdCode(i int) string {
	var b []byte
	for {
		b = append([]byte{byte(33 + i%94)}, b...)
		i = i/94 - 1
		if i < 0 {
			return string(b)
		}
	}
}

// Sample records the current value of every subscribed signal, logging a
// change record for each one that differs from its previous sample. Call
// it after every Step.
func (t *Tracer) Sample() {
	now := t.src.Time()
	for i := range t.probes {
		p := &t.probes[i]
		v, _, ok := t.src.Peek(p.name)
		if !ok {
			t.dropped++
			continue
		}
		if p.valid && v == p.last {
			continue
		}
		p.last, p.valid = v, true
		t.changes = append(t.changes, change{time: now, probe: i, value: v})
	}
}

// Dropped reports how many trace points were lost to failed observations.
func (t *Tracer) Dropped() int { return t.dropped }

// Values returns the latest sampled value of each subscribed signal, in
// subscription order.
func (t *Tracer) Values() []uint64 {
	out := make([]uint64, len(t.probes))
	for i := range t.probes {
		out[i] = t.probes[i].last
	}
	return out
}

// WriteVCD flushes the header and the recorded, time-ordered change log to
// w in VCD format.
func (t *Tracer) WriteVCD(w io.Writer) error {
	var b strings.Builder
	b.WriteString("$timescale 1ns $end\n")
	b.WriteString("$scope module top $end\n")
	for _, p := range t.probes {
		fmt.Fprintf(&b, "$var wire %d %s %s $end\n", p.width, p.code, vcdName(p.name))
	}
	b.WriteString("$upscope $end\n$enddefinitions $end\n")

	lastTime := uint64(0)
	open := false
	for _, c := range t.changes {
		if !open || c.time != lastTime {
			fmt.Fprintf(&b, "#%d\n", c.time)
			lastTime, open = c.time, true
		}
		p := &t.probes[c.probe]
		if p.width == 1 {
			fmt.Fprintf(&b, "%d%s\n", c.value&1, p.code)
		} else {
			fmt.Fprintf(&b, "b%s %s\n", strconv.FormatUint(c.value, 2), p.code)
		}
	}
	_, err := io.WriteString(w, b.String())
	return errors.Wrap(err, "write vcd")
}

// vcdName rewrites hierarchical separators into identifiers VCD viewers
// accept.
func vcdName(name string) string {
	return strings.ReplaceAll(name, "/", ".")
}
