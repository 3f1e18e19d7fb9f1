// Copyright 2026 The gohdl Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package gohdl

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/skryl/gohdl/internal/scan"
)

// Dir is a port direction.
type Dir int

// Port directions.
const (
	DirIn Dir = iota
	DirOut
)

func (d Dir) String() string {
	if d == DirIn {
		return "in"
	}
	return "out"
}

// A Param is a compile-time parameter of a component, with its default
// value. Parameters resolve to concrete integers at elaboration.
type Param struct {
	Name    string
	Default int
}

// An IntExpr is an integer expression over parameters: either a literal or
// a single parameter reference. Bit widths and instance parameter bindings
// are IntExprs.
type IntExpr struct {
	Lit   int
	Param string
}

// Lit returns a literal IntExpr.
func Lit(n int) IntExpr { return IntExpr{Lit: n} }

// Ref returns an IntExpr referencing a parameter.
func Ref(name string) IntExpr { return IntExpr{Param: name} }

func (e IntExpr) resolve(params map[string]int) (int, bool) {
	if e.Param == "" {
		return e.Lit, true
	}
	v, ok := params[e.Param]
	return v, ok
}

func (e IntExpr) String() string {
	if e.Param != "" {
		return e.Param
	}
	return strconv.Itoa(e.Lit)
}

// A PortDecl declares one external signal of a component: its name,
// direction, bit width (an expression over parameters) and, for stateful
// outputs, the value the underlying register resets to.
type PortDecl struct {
	Name  string
	Dir   Dir
	Width IntExpr
	Init  uint64
}

// A WireDecl declares an internal signal whose width cannot be inferred
// from its driver, typically a register that feeds its own next-value
// expression.
type WireDecl struct {
	Name  string
	Width IntExpr
	Init  uint64
}

// A ParamBind binds one parameter of an instantiated component.
type ParamBind struct {
	Name string
	Val  IntExpr
}

// P binds parameter name to a literal value.
func P(name string, v int) ParamBind { return ParamBind{Name: name, Val: Lit(v)} }

// PRef binds parameter name to the value of a parent parameter.
func PRef(name, parent string) ParamBind { return ParamBind{Name: name, Val: Ref(parent)} }

// A Conn connects one port of an instance to a signal in the parent.
type Conn struct {
	Port   string
	Signal string
}

// An InstDecl declares a sub-component instance: the component type, its
// parameter bindings and its port connections.
type InstDecl struct {
	Name   string
	Of     string
	Params []ParamBind
	Conns  []Conn
}

// Inst declares an instance of component type Of with connections given as
// "port=signal, ..." pairs. It panics on a malformed connection string.
func Inst(name, of, conns string, params ...ParamBind) InstDecl {
	cs, err := ParseConns(conns)
	if err != nil {
		panic(err)
	}
	return InstDecl{Name: name, Of: of, Params: params, Conns: cs}
}

// A Decl is the immutable template for one component type: parameters,
// ports, internal wires, sub-instances and behavior statements. Decls are
// registered once and never mutated afterwards.
type Decl struct {
	Name    string
	Params  []Param
	Inputs  []PortDecl
	Outputs []PortDecl
	Wires   []WireDecl
	Insts   []InstDecl
	Body    []Stmt
}

// In expands an input spec like "a[N], b[8], cin" into port declarations.
// A missing width means 1 bit. It panics on a malformed spec.
func In(spec string) []PortDecl {
	ps, err := ParseIO(spec, DirIn)
	if err != nil {
		panic(err)
	}
	return ps
}

// Out expands an output spec into port declarations. An "=value" suffix
// sets the initial value of a stateful output, e.g. "count[N]=0".
// It panics on a malformed spec.
func Out(spec string) []PortDecl {
	ps, err := ParseIO(spec, DirOut)
	if err != nil {
		panic(err)
	}
	return ps
}

// Wires expands an internal wire spec, using the same syntax as Out.
// It panics on a malformed spec.
func Wires(spec string) []WireDecl {
	ps, err := ParseIO(spec, DirOut)
	if err != nil {
		panic(err)
	}
	ws := make([]WireDecl, len(ps))
	for i, p := range ps {
		ws[i] = WireDecl{Name: p.Name, Width: p.Width, Init: p.Init}
	}
	return ws
}

// ParseIO parses a comma-separated IO spec. Each entry is
//
//	name [ "[" width "]" ] [ "=" init ]
//
// where width is an integer literal or a parameter name.
func ParseIO(spec string, dir Dir) ([]PortDecl, error) {
	var out []PortDecl
	s := scan.New(spec)
	t := s.Next()
	if t.Type == scan.EOF {
		return nil, nil
	}
	for {
		if t.Type != scan.Ident {
			return nil, specErr(spec, t, "expected signal name")
		}
		p := PortDecl{Name: t.Text, Dir: dir, Width: Lit(1)}
		t = s.Next()
		if t.Type == scan.Punct && t.Text == "[" {
			t = s.Next()
			switch t.Type {
			case scan.Int:
				p.Width = Lit(t.Int)
			case scan.Ident:
				p.Width = Ref(t.Text)
			default:
				return nil, specErr(spec, t, "expected bus width")
			}
			t = s.Next()
			if t.Type != scan.Punct || t.Text != "]" {
				return nil, specErr(spec, t, "missing close bracket")
			}
			t = s.Next()
		}
		if t.Type == scan.Punct && t.Text == "=" {
			t = s.Next()
			if t.Type != scan.Int {
				return nil, specErr(spec, t, "expected initial value")
			}
			p.Init = uint64(t.Int)
			t = s.Next()
		}
		out = append(out, p)
		switch {
		case t.Type == scan.EOF:
			return out, nil
		case t.Type == scan.Punct && t.Text == ",":
			t = s.Next()
		default:
			return nil, specErr(spec, t, "expected comma or end of spec")
		}
	}
}

// ParseConns parses a connection string of "port=signal" pairs separated by
// commas, e.g. "a=x, b=y, out=sum".
func ParseConns(conns string) ([]Conn, error) {
	var out []Conn
	s := scan.New(conns)
	t := s.Next()
	if t.Type == scan.EOF {
		return nil, nil
	}
	for {
		if t.Type != scan.Ident {
			return nil, specErr(conns, t, "expected port name")
		}
		c := Conn{Port: t.Text}
		t = s.Next()
		if t.Type != scan.Punct || t.Text != "=" {
			return nil, specErr(conns, t, "expected '='")
		}
		t = s.Next()
		if t.Type != scan.Ident {
			return nil, specErr(conns, t, "expected signal name")
		}
		c.Signal = t.Text
		out = append(out, c)
		t = s.Next()
		switch {
		case t.Type == scan.EOF:
			return out, nil
		case t.Type == scan.Punct && t.Text == ",":
			t = s.Next()
		default:
			return nil, specErr(conns, t, "expected comma or end of spec")
		}
	}
}

func specErr(in string, t scan.Token, msg string) error {
	return errors.Errorf("in %q at pos %d: %s", in, t.Pos+1, msg)
}

// A Registry holds the set of known component Decls. It is populated at
// startup and read-only afterwards; passing it explicitly to Elaborate
// keeps elaboration runs independent and testable in isolation.
type Registry struct {
	defs map[string]*Decl
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Decl)}
}

// Register validates d and adds it to the registry. Component types used by
// d's instances must already be registered.
func (r *Registry) Register(d *Decl) error {
	if d.Name == "" {
		return &DeclarationError{Component: "?", Detail: "empty component name"}
	}
	if _, ok := r.defs[d.Name]; ok {
		return &DeclarationError{Component: d.Name, Detail: "duplicate component name"}
	}
	names := make(map[string]bool)
	for _, p := range d.Params {
		if names[p.Name] {
			return &DeclarationError{Component: d.Name, Detail: "duplicate parameter " + p.Name}
		}
		names[p.Name] = true
	}
	names = make(map[string]bool)
	for _, ports := range [][]PortDecl{d.Inputs, d.Outputs} {
		for _, p := range ports {
			if names[p.Name] {
				return &DeclarationError{Component: d.Name, Detail: "duplicate port " + p.Name}
			}
			names[p.Name] = true
		}
	}
	for _, w := range d.Wires {
		if names[w.Name] {
			return &DeclarationError{Component: d.Name, Detail: "duplicate signal " + w.Name}
		}
		names[w.Name] = true
	}
	insts := make(map[string]bool)
	for _, inst := range d.Insts {
		if insts[inst.Name] {
			return &DeclarationError{Component: d.Name, Detail: "duplicate instance " + inst.Name}
		}
		insts[inst.Name] = true
		if _, ok := r.defs[inst.Of]; !ok {
			return &DeclarationError{Component: d.Name,
				Detail: "instance " + inst.Name + " of unregistered component type " + inst.Of}
		}
	}
	r.defs[d.Name] = d
	return nil
}

// MustRegister registers decls and panics on the first error.
func (r *Registry) MustRegister(decls ...*Decl) {
	for _, d := range decls {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the Decl registered under name.
func (r *Registry) Lookup(name string) (*Decl, bool) {
	d, ok := r.defs[name]
	return d, ok
}
