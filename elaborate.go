// Copyright 2026 The gohdl Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package gohdl

// mask truncates v to w bits.
func mask(v uint64, w int) uint64 {
	if w >= 64 {
		return v
	}
	return v & (1<<uint(w) - 1)
}

// Elaborate resolves parameters, instantiates sub-components, binds port
// connections, checks widths and flattens the whole hierarchy of the named
// component into one Graph. The registry and the Decls it holds are never
// mutated; the same (name, params) pair always elaborates to the same
// graph.
func Elaborate(r *Registry, name string, params map[string]int) (*Graph, error) {
	d, ok := r.Lookup(name)
	if !ok {
		return nil, &DeclarationError{Component: name, Detail: "unregistered component type"}
	}
	g := &Graph{Name: name, index: make(map[string]SigID)}
	e := &elaborator{reg: r, g: g}

	bound, err := resolveParams(d, params, name)
	if err != nil {
		return nil, err
	}
	if err := e.component(d, bound, "", name, nil); err != nil {
		return nil, err
	}
	if err := e.checkDrivers(); err != nil {
		return nil, err
	}
	if err := e.sortSignals(); err != nil {
		return nil, err
	}
	return g, nil
}

type elaborator struct {
	reg *Registry
	g   *Graph
}

func resolveParams(d *Decl, params map[string]int, path string) (map[string]int, error) {
	bound := make(map[string]int, len(d.Params))
	for _, p := range d.Params {
		bound[p.Name] = p.Default
	}
	for n, v := range params {
		if _, ok := bound[n]; !ok {
			return nil, elabErr(path, ErrUnresolvedParam, "component %s has no parameter %s", d.Name, n)
		}
		bound[n] = v
	}
	return bound, nil
}

// scope tracks the local-name to signal binding of one component instance
// during elaboration.
type scope struct {
	sigs map[string]SigID
	d    *Decl
	par  map[string]int
	pfx  string
	path string
}

func (e *elaborator) width(w IntExpr, sc *scope) (int, error) {
	n, ok := w.resolve(sc.par)
	if !ok {
		return 0, elabErr(sc.path, ErrUnresolvedParam, "width %s is unbound", w)
	}
	if n < 1 || n > 64 {
		return 0, elabErr(sc.path, ErrBadWidth, "width %d outside 1..64", n)
	}
	return n, nil
}

// component elaborates one instance of d into the shared arena. bound maps
// d's port names to pre-existing parent signals; it is nil for the top
// component, whose ports become the graph's external ports.
func (e *elaborator) component(d *Decl, params map[string]int, prefix, path string, bound map[string]SigID) error {
	sc := &scope{sigs: make(map[string]SigID), d: d, par: params, pfx: prefix, path: path}

	// ports
	for _, ports := range [][]PortDecl{d.Inputs, d.Outputs} {
		for _, p := range ports {
			w, err := e.width(p.Width, sc)
			if err != nil {
				return err
			}
			if sid, ok := bound[p.Name]; ok {
				if sw := e.g.Signal(sid).Width; sw != w {
					return elabErr(path, ErrWidthMismatch,
						"port %s[%d] connected to %s[%d]", p.Name, w, e.g.Signal(sid).Name, sw)
				}
				sc.sigs[p.Name] = sid
				continue
			}
			sid := e.g.addSignal(Signal{Name: prefix + p.Name, Width: w, Init: p.Init, IsIn: bound == nil && p.Dir == DirIn})
			sc.sigs[p.Name] = sid
			if bound == nil {
				e.g.ports = append(e.g.ports, PortInfo{Name: p.Name, Dir: p.Dir, Width: w, Sig: sid})
			} else if p.Dir == DirIn {
				// unconnected sub-component input, grounded
				e.g.drivers[sid] = e.g.addNode(Node{Kind: KindConst, Width: w})
			}
		}
	}

	// wires
	for _, wd := range d.Wires {
		w, err := e.width(wd.Width, sc)
		if err != nil {
			return err
		}
		sc.sigs[wd.Name] = e.g.addSignal(Signal{Name: prefix + wd.Name, Width: w, Init: wd.Init})
	}

	// sub-instances
	for _, inst := range d.Insts {
		if err := e.instance(inst, sc); err != nil {
			return err
		}
	}

	return e.body(sc)
}

func (e *elaborator) instance(inst InstDecl, sc *scope) error {
	ipath := sc.path + "/" + inst.Name
	child, ok := e.reg.Lookup(inst.Of)
	if !ok {
		return &DeclarationError{Component: sc.d.Name,
			Detail: "instance " + inst.Name + " of unregistered component type " + inst.Of}
	}

	cpar := make(map[string]int, len(child.Params))
	for _, p := range child.Params {
		cpar[p.Name] = p.Default
	}
	for _, b := range inst.Params {
		if _, ok := cpar[b.Name]; !ok {
			return elabErr(ipath, ErrUnresolvedParam, "component %s has no parameter %s", child.Name, b.Name)
		}
		v, ok := b.Val.resolve(sc.par)
		if !ok {
			return elabErr(ipath, ErrUnresolvedParam, "parameter binding %s=%s is unbound", b.Name, b.Val)
		}
		cpar[b.Name] = v
	}

	csc := &scope{par: cpar, path: ipath}
	bound := make(map[string]SigID, len(inst.Conns))
	for _, c := range inst.Conns {
		p, ok := findPort(child, c.Port)
		if !ok {
			return elabErr(ipath, ErrUnknownPort, "component %s has no port %s", child.Name, c.Port)
		}
		w, err := e.width(p.Width, csc)
		if err != nil {
			return err
		}
		sid, ok := sc.sigs[c.Signal]
		if !ok {
			// first reference creates the parent-side signal at the
			// connected port's width
			sid = e.g.addSignal(Signal{Name: sc.pfx + c.Signal, Width: w, Init: p.Init})
			sc.sigs[c.Signal] = sid
		} else if sw := e.g.Signal(sid).Width; sw != w {
			return elabErr(ipath, ErrWidthMismatch,
				"port %s[%d] connected to %s[%d]", c.Port, w, c.Signal, sw)
		}
		bound[c.Port] = sid
	}

	return e.component(child, cpar, sc.pfx+inst.Name+"/", ipath, bound)
}

func findPort(d *Decl, name string) (PortDecl, bool) {
	for _, ports := range [][]PortDecl{d.Inputs, d.Outputs} {
		for _, p := range ports {
			if p.Name == name {
				return p, true
			}
		}
	}
	return PortDecl{}, false
}

// amap is an insertion-ordered assignment map used while desugaring
// conditionals into Sel nodes.
type amap struct {
	m     map[string]Expr
	order []string
}

func newAmap() *amap { return &amap{m: make(map[string]Expr)} }

func (a *amap) put(name string, e Expr) {
	if _, ok := a.m[name]; !ok {
		a.order = append(a.order, name)
	}
	a.m[name] = e
}

func (a *amap) clone() *amap {
	c := &amap{m: make(map[string]Expr, len(a.m)), order: append([]string(nil), a.order...)}
	for k, v := range a.m {
		c.m[k] = v
	}
	return c
}

type clockGroup struct {
	clock    string
	reset    Expr
	assigns  *amap
	resetID  NodeID
	resetSet bool
}

// body desugars the component's behavior statements and installs signal
// drivers and registers. Host-level conditionals are reified into Sel
// nodes here; nothing imperative survives past this point.
func (e *elaborator) body(sc *scope) error {
	comb := newAmap()
	var groups []*clockGroup

	for _, s := range sc.d.Body {
		switch s := s.(type) {
		case *OnRiseStmt:
			grp := &clockGroup{clock: s.Clock, reset: s.Reset, assigns: newAmap()}
			if err := desugar(s.Body, grp.assigns, true, sc.path); err != nil {
				return err
			}
			groups = append(groups, grp)
		default:
			if err := desugar([]Stmt{s}, comb, false, sc.path); err != nil {
				return err
			}
		}
	}

	// Internal wires that are not declared get their width from their
	// driver expression. Deferred work loop: an assignment whose
	// expression reads a yet-unsized destination is retried once the
	// destination has been sized.
	type work struct {
		dst     string
		src     Expr
		grp     *clockGroup // nil for combinational assignments
	}
	var pending []work
	dstSet := make(map[string]bool)
	for _, dst := range comb.order {
		pending = append(pending, work{dst: dst, src: comb.m[dst]})
		dstSet[dst] = true
	}
	for _, grp := range groups {
		for _, dst := range grp.assigns.order {
			pending = append(pending, work{dst: dst, src: grp.assigns.m[dst], grp: grp})
			dstSet[dst] = true
		}
	}

	for len(pending) > 0 {
		var next []work
		progress := false
		for _, wk := range pending {
			if wk.grp != nil && !wk.grp.resetSet && wk.grp.reset != nil {
				rid, rw, err := e.buildExpr(wk.grp.reset, sc, 1, dstSet)
				if err == errDeferred {
					next = append(next, wk)
					continue
				}
				if err != nil {
					return err
				}
				if rw != 1 {
					return elabErr(sc.path, ErrWidthMismatch, "reset condition must be 1 bit, got %d", rw)
				}
				wk.grp.resetID, wk.grp.resetSet = rid, true
			}
			hint := 0
			if sid, ok := sc.sigs[wk.dst]; ok {
				hint = e.g.Signal(sid).Width
			}
			id, w, err := e.buildExpr(wk.src, sc, hint, dstSet)
			if err == errDeferred {
				next = append(next, wk)
				continue
			}
			if err != nil {
				return err
			}
			if err := e.install(wk.dst, id, w, wk.grp, sc); err != nil {
				return err
			}
			progress = true
		}
		if !progress {
			return elabErr(sc.path, ErrBadWidth,
				"cannot infer width of %s; declare it with Wires", next[0].dst)
		}
		pending = next
	}
	return nil
}

// install connects a built driver expression to its destination signal,
// creating the signal when it is an inferred internal wire, and enforcing
// the single static driver invariant.
func (e *elaborator) install(dst string, id NodeID, w int, grp *clockGroup, sc *scope) error {
	sid, ok := sc.sigs[dst]
	if !ok {
		sid = e.g.addSignal(Signal{Name: sc.pfx + dst, Width: w})
		sc.sigs[dst] = sid
	}
	sig := e.g.Signal(sid)
	if sig.IsIn {
		return elabErr(sc.path, ErrMultipleDrivers, "assignment to input port %s", dst)
	}
	if sig.Width != w {
		return elabErr(sc.path, ErrWidthMismatch, "%s[%d] driven by %d-bit expression", dst, sig.Width, w)
	}
	if e.g.drivers[sid] != NoNode || sig.IsReg {
		return elabErr(sc.path, ErrMultipleDrivers, "signal %s", dst)
	}
	if grp == nil {
		e.g.drivers[sid] = id
		return nil
	}
	reset := NoNode
	if grp.resetSet {
		reset = grp.resetID
	}
	sig.IsReg = true
	e.g.regs = append(e.g.regs, RegNode{Target: sid, Data: id, Clock: grp.clock, Reset: reset, Init: sig.Init})
	e.g.addClock(grp.clock)
	return nil
}

// desugar folds ordered assignments, including nested conditionals, into
// one expression per destination. In a clocked context a destination left
// unassigned on one path keeps its previous value (register enable); in a
// combinational context that would require a latch and is rejected.
func desugar(stmts []Stmt, dst *amap, clocked bool, path string) error {
	for _, s := range stmts {
		switch s := s.(type) {
		case *AssignStmt:
			dst.put(s.Dst, s.Src)
		case *IfStmt:
			t, f := dst.clone(), dst.clone()
			if err := desugar(s.Then, t, clocked, path); err != nil {
				return err
			}
			if err := desugar(s.Else, f, clocked, path); err != nil {
				return err
			}
			for _, name := range orderedUnion(t.order, f.order) {
				tv, fv := t.m[name], f.m[name]
				if tv == dst.m[name] && fv == dst.m[name] {
					continue // untouched by either branch
				}
				if tv == nil {
					if !clocked {
						return elabErr(path, ErrLatch, "%s not assigned on all combinational paths", name)
					}
					tv = Sig(name)
				}
				if fv == nil {
					if !clocked {
						return elabErr(path, ErrLatch, "%s not assigned on all combinational paths", name)
					}
					fv = Sig(name)
				}
				dst.put(name, Sel(s.Cond, tv, fv))
			}
		case *OnRiseStmt:
			return elabErr(path, ErrLatch, "clock-edge guard nested inside a conditional")
		}
	}
	return nil
}

func orderedUnion(a, b []string) []string {
	out := append([]string(nil), a...)
	seen := make(map[string]bool, len(a))
	for _, n := range a {
		seen[n] = true
	}
	for _, n := range b {
		if !seen[n] {
			out = append(out, n)
		}
	}
	return out
}

// errDeferred signals that an expression reads a destination whose width
// is not known yet and should be retried later in the inference loop.
var errDeferred = elabErr("", ErrBadWidth, "deferred")

// buildExpr reifies an authoring expression tree into arena nodes,
// resolving widths. hint is the width a zero-width constant adopts when no
// sibling operand fixes it. pendingDst names destinations that have not
// been sized yet.
func (e *elaborator) buildExpr(x Expr, sc *scope, hint int, pendingDst map[string]bool) (NodeID, int, error) {
	switch x := x.(type) {
	case *ConstExpr:
		w := x.Width
		if w == 0 {
			w = hint
		}
		if w < 1 || w > 64 {
			return NoNode, 0, elabErr(sc.path, ErrBadWidth, "constant %d has no inferable width", x.Value)
		}
		return e.g.addNode(Node{Kind: KindConst, Width: w, Value: mask(x.Value, w)}), w, nil

	case *SigExpr:
		sid, ok := sc.sigs[x.Name]
		if !ok {
			if pendingDst[x.Name] {
				return NoNode, 0, errDeferred
			}
			return NoNode, 0, elabErr(sc.path, ErrUnknownSignal, "%s", x.Name)
		}
		w := e.g.Signal(sid).Width
		return e.g.addNode(Node{Kind: KindSig, Width: w, Sig: sid}), w, nil

	case *UnaryExpr:
		id, w, err := e.buildExpr(x.X, sc, hint, pendingDst)
		if err != nil {
			return NoNode, 0, err
		}
		k := KindNot
		if x.Op == OpNeg {
			k = KindNeg
		}
		return e.g.addNode(Node{Kind: k, Width: w, Args: []NodeID{id}}), w, nil

	case *BinaryExpr:
		// a zero-width constant adopts the width of its sibling
		first, second := x.X, x.Y
		swapped := false
		if c, ok := x.X.(*ConstExpr); ok && c.Width == 0 {
			first, second = x.Y, x.X
			swapped = true
		}
		a, wa, err := e.buildExpr(first, sc, hint, pendingDst)
		if err != nil {
			return NoNode, 0, err
		}
		b, wb, err := e.buildExpr(second, sc, wa, pendingDst)
		if err != nil {
			return NoNode, 0, err
		}
		if swapped {
			a, b = b, a
		}
		if wa != wb {
			return NoNode, 0, elabErr(sc.path, ErrWidthMismatch,
				"%s operands are %d and %d bits wide", x.Op, wa, wb)
		}
		w := wa
		var k NodeKind
		switch x.Op {
		case OpAdd:
			k = KindAdd
		case OpSub:
			k = KindSub
		case OpAnd:
			k = KindAnd
		case OpOr:
			k = KindOr
		case OpXor:
			k = KindXor
		case OpEq:
			k, w = KindEq, 1
		case OpNe:
			k, w = KindNe, 1
		case OpLt:
			k, w = KindLt, 1
		default:
			return NoNode, 0, elabErr(sc.path, ErrBadWidth, "op %s is not binary", x.Op)
		}
		return e.g.addNode(Node{Kind: k, Width: w, Args: []NodeID{a, b}}), w, nil

	case *ShiftExpr:
		id, w, err := e.buildExpr(x.X, sc, hint, pendingDst)
		if err != nil {
			return NoNode, 0, err
		}
		if x.By < 0 || x.By > w {
			return NoNode, 0, elabErr(sc.path, ErrBadWidth, "shift by %d on %d-bit operand", x.By, w)
		}
		k := KindShl
		if x.Op == OpShr {
			k = KindShr
		}
		return e.g.addNode(Node{Kind: k, Width: w, Args: []NodeID{id}, Hi: x.By}), w, nil

	case *SliceExpr:
		id, w, err := e.buildExpr(x.X, sc, 0, pendingDst)
		if err != nil {
			return NoNode, 0, err
		}
		if x.Low < 0 || x.High < x.Low || x.High >= w {
			return NoNode, 0, elabErr(sc.path, ErrBadWidth, "slice [%d:%d] of %d-bit value", x.High, x.Low, w)
		}
		sw := x.High - x.Low + 1
		return e.g.addNode(Node{Kind: KindSlice, Width: sw, Args: []NodeID{id}, Hi: x.High, Lo: x.Low}), sw, nil

	case *ConcatExpr:
		if len(x.Parts) == 0 {
			return NoNode, 0, elabErr(sc.path, ErrBadWidth, "empty concatenation")
		}
		args := make([]NodeID, len(x.Parts))
		w := 0
		for i, p := range x.Parts {
			id, pw, err := e.buildExpr(p, sc, 0, pendingDst)
			if err != nil {
				return NoNode, 0, err
			}
			args[i] = id
			w += pw
		}
		if w > 64 {
			return NoNode, 0, elabErr(sc.path, ErrBadWidth, "concatenation is %d bits wide", w)
		}
		return e.g.addNode(Node{Kind: KindConcat, Width: w, Args: args}), w, nil

	case *ExtExpr:
		id, _, err := e.buildExpr(x.X, sc, 0, pendingDst)
		if err != nil {
			return NoNode, 0, err
		}
		if x.Width < 1 || x.Width > 64 {
			return NoNode, 0, elabErr(sc.path, ErrBadWidth, "extend to %d bits", x.Width)
		}
		return e.g.addNode(Node{Kind: KindExtend, Width: x.Width, Args: []NodeID{id}}), x.Width, nil

	case *SelExpr:
		c, cw, err := e.buildExpr(x.Cond, sc, 1, pendingDst)
		if err != nil {
			return NoNode, 0, err
		}
		if cw != 1 {
			return NoNode, 0, elabErr(sc.path, ErrWidthMismatch, "condition must be 1 bit, got %d", cw)
		}
		first, second := x.Then, x.Else
		swapped := false
		if t, ok := x.Then.(*ConstExpr); ok && t.Width == 0 {
			first, second = x.Else, x.Then
			swapped = true
		}
		a, wa, err := e.buildExpr(first, sc, hint, pendingDst)
		if err != nil {
			return NoNode, 0, err
		}
		b, wb, err := e.buildExpr(second, sc, wa, pendingDst)
		if err != nil {
			return NoNode, 0, err
		}
		if swapped {
			a, b = b, a
		}
		if wa != wb {
			return NoNode, 0, elabErr(sc.path, ErrWidthMismatch,
				"sel branches are %d and %d bits wide", wa, wb)
		}
		return e.g.addNode(Node{Kind: KindSel, Width: wa, Args: []NodeID{c, a, b}}), wa, nil
	}
	return NoNode, 0, elabErr(sc.path, ErrBadWidth, "unknown expression type %T", x)
}

// checkDrivers rejects graphs with undriven signals. Inputs and register
// outputs are externally driven; everything else must have exactly one
// combinational driver by now.
func (e *elaborator) checkDrivers() error {
	for i := range e.g.signals {
		s := &e.g.signals[i]
		if !s.IsIn && !s.IsReg && e.g.drivers[i] == NoNode {
			return elabErr(e.g.Name, ErrNoDriver, "signal %s is never driven", s.Name)
		}
	}
	return nil
}

// sortSignals computes the topological evaluation order of combinationally
// driven signals. A cycle not broken by a register is a design error and
// is rejected here, before any simulator touches the graph.
func (e *elaborator) sortSignals() error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make([]byte, len(e.g.signals))
	var order []SigID

	var deps func(id NodeID) []SigID
	deps = func(id NodeID) []SigID {
		var out []SigID
		n := e.g.Node(id)
		if n.Kind == KindSig {
			s := e.g.Signal(n.Sig)
			if !s.IsIn && !s.IsReg {
				out = append(out, n.Sig)
			}
			return out
		}
		for _, a := range n.Args {
			out = append(out, deps(a)...)
		}
		return out
	}

	var visit func(sid SigID) error
	visit = func(sid SigID) error {
		switch color[sid] {
		case black:
			return nil
		case gray:
			return elabErr(e.g.Name, ErrCombLoop,
				"signal %s is part of a combinational cycle", e.g.Signal(sid).Name)
		}
		color[sid] = gray
		for _, dep := range deps(e.g.drivers[sid]) {
			if err := visit(dep); err != nil {
				return err
			}
		}
		color[sid] = black
		order = append(order, sid)
		return nil
	}

	for i := range e.g.signals {
		s := &e.g.signals[i]
		if s.IsIn || s.IsReg {
			continue
		}
		if err := visit(SigID(i)); err != nil {
			return err
		}
	}
	e.g.order = order
	return nil
}
