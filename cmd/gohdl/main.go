// Copyright 2026 The gohdl Authors
// Licensed under the MIT license. See license text in the LICENSE file.

// Command gohdl loads a netlist document (or elaborates a library
// component), simulates it at gate level with random inputs, and writes
// waveform and netlist exports. With -watch it re-runs whenever the input
// netlist file changes.
package main

import (
	"flag"
	"io"
	"log"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/skryl/gohdl"
	"github.com/skryl/gohdl/export"
	"github.com/skryl/gohdl/lib"
	"github.com/skryl/gohdl/trace"
)

var (
	netfile   = flag.String("netlist", "", "netlist JSON document to simulate")
	component = flag.String("component", "", "library component to elaborate instead of -netlist")
	params    = flag.String("params", "", "parameter bindings for -component, e.g. N=8,M=2")
	steps     = flag.Int("steps", 16, "simulation steps to run")
	seed      = flag.Int64("seed", 1, "random input seed")
	vcdfile   = flag.String("vcd", "", "write a VCD waveform of the external ports")
	vfile     = flag.String("verilog", "", "write the structural Verilog export")
	jsonfile  = flag.String("json", "", "write the JSON netlist export")
	watch     = flag.Bool("watch", false, "re-run whenever -netlist changes")
)

func main() {
	flag.Parse()
	log.SetFlags(0)
	log.SetPrefix("gohdl: ")

	if (*netfile == "") == (*component == "") {
		log.Fatal("exactly one of -netlist or -component is required")
	}
	if *watch && *netfile == "" {
		log.Fatal("-watch requires -netlist")
	}

	if err := run(); err != nil {
		log.Fatal(err)
	}
	if !*watch {
		return
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		log.Fatal(err)
	}
	defer w.Close()
	if err := w.Add(*netfile); err != nil {
		log.Fatal(err)
	}
	log.Printf("watching %s", *netfile)
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := run(); err != nil {
				log.Print(err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Print(err)
		}
	}
}

func load() (*gohdl.Netlist, error) {
	if *netfile != "" {
		f, err := os.Open(*netfile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return export.ReadJSON(f)
	}

	reg := gohdl.NewRegistry()
	if err := lib.RegisterAll(reg); err != nil {
		return nil, err
	}
	pm := make(map[string]int)
	if *params != "" {
		for _, kv := range strings.Split(*params, ",") {
			k, v, ok := strings.Cut(strings.TrimSpace(kv), "=")
			if !ok {
				log.Fatalf("bad parameter binding %q", kv)
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				log.Fatalf("bad parameter value %q", kv)
			}
			pm[k] = n
		}
	}
	g, err := gohdl.Elaborate(reg, *component, pm)
	if err != nil {
		return nil, err
	}
	return gohdl.Lower(g)
}

func run() error {
	n, err := load()
	if err != nil {
		return err
	}
	log.Print(n.Stats())

	sim, err := gohdl.NewGateSim(n)
	if err != nil {
		return err
	}

	var names []string
	for _, p := range n.Ports {
		names = append(names, p.Name)
	}
	tr, err := trace.New(sim, names...)
	if err != nil {
		return err
	}

	rnd := rand.New(rand.NewSource(*seed))
	for i := 0; i < *steps; i++ {
		for _, p := range n.Ports {
			if p.Dir != gohdl.DirIn {
				continue
			}
			if err := sim.SetInput(p.Name, rnd.Uint64()); err != nil {
				return err
			}
		}
		sim.Step()
		tr.Sample()
	}
	for _, p := range n.Ports {
		if p.Dir != gohdl.DirOut {
			continue
		}
		v, err := sim.GetOutput(p.Name)
		if err != nil {
			return err
		}
		log.Printf("%s = %#x", p.Name, v)
	}

	if *vcdfile != "" {
		if err := writeTo(*vcdfile, tr.WriteVCD); err != nil {
			return err
		}
	}
	if *vfile != "" {
		if err := writeTo(*vfile, func(w io.Writer) error { return export.WriteVerilog(w, n) }); err != nil {
			return err
		}
	}
	if *jsonfile != "" {
		if err := writeTo(*jsonfile, func(w io.Writer) error { return export.WriteJSON(w, n) }); err != nil {
			return err
		}
	}
	return nil
}

func writeTo(name string, fn func(io.Writer) error) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
