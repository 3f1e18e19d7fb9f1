package gohdl

import "testing"

func TestParseIO(t *testing.T) {
	tests := []struct {
		spec string
		want []PortDecl
		err  bool
	}{
		{spec: "", want: nil},
		{spec: "a", want: []PortDecl{{Name: "a", Dir: DirIn, Width: Lit(1)}}},
		{spec: "a, b", want: []PortDecl{
			{Name: "a", Dir: DirIn, Width: Lit(1)},
			{Name: "b", Dir: DirIn, Width: Lit(1)},
		}},
		{spec: "a[8]", want: []PortDecl{{Name: "a", Dir: DirIn, Width: Lit(8)}}},
		{spec: "a[N], cin", want: []PortDecl{
			{Name: "a", Dir: DirIn, Width: Ref("N")},
			{Name: "cin", Dir: DirIn, Width: Lit(1)},
		}},
		{spec: "count[4]=9", want: []PortDecl{{Name: "count", Dir: DirIn, Width: Lit(4), Init: 9}}},
		{spec: "a[", err: true},
		{spec: "a[]", err: true},
		{spec: "a b", err: true},
		{spec: "a,", err: true},
		{spec: "[4]", err: true},
	}
	for _, tt := range tests {
		got, err := ParseIO(tt.spec, DirIn)
		if tt.err {
			if err == nil {
				t.Errorf("ParseIO(%q): expected error, got %v", tt.spec, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseIO(%q): %v", tt.spec, err)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("ParseIO(%q) = %v, want %v", tt.spec, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("ParseIO(%q)[%d] = %v, want %v", tt.spec, i, got[i], tt.want[i])
			}
		}
	}
}

func TestParseConns(t *testing.T) {
	got, err := ParseConns("a=x, b=y, out=sum")
	if err != nil {
		t.Fatal(err)
	}
	want := []Conn{{"a", "x"}, {"b", "y"}, {"out", "sum"}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("conn %d: got %v, want %v", i, got[i], want[i])
		}
	}

	for _, bad := range []string{"a", "a=", "=x", "a=x b=y", "a=x,"} {
		if _, err := ParseConns(bad); err == nil {
			t.Errorf("ParseConns(%q): expected error", bad)
		}
	}
}

func TestRegistryDuplicates(t *testing.T) {
	r := NewRegistry()
	d := &Decl{Name: "buf", Inputs: In("a"), Outputs: Out("out"),
		Body: []Stmt{Assign("out", Sig("a"))}}
	if err := r.Register(d); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(d); err == nil {
		t.Fatal("expected duplicate component error")
	} else if _, ok := err.(*DeclarationError); !ok {
		t.Fatalf("expected DeclarationError, got %T", err)
	}

	dup := &Decl{Name: "dup", Inputs: In("a, a"), Outputs: Out("out")}
	if err := r.Register(dup); err == nil {
		t.Fatal("expected duplicate port error")
	}

	dupP := &Decl{Name: "dup_p", Params: []Param{{Name: "N"}, {Name: "N"}},
		Inputs: In("a"), Outputs: Out("out")}
	if err := r.Register(dupP); err == nil {
		t.Fatal("expected duplicate parameter error")
	}
}

func TestRegistryUnregisteredInstance(t *testing.T) {
	r := NewRegistry()
	d := &Decl{Name: "top", Inputs: In("a"), Outputs: Out("out"),
		Insts: []InstDecl{Inst("u0", "ghost", "a=a, out=out")}}
	err := r.Register(d)
	if err == nil {
		t.Fatal("expected unregistered component type error")
	}
	if _, ok := err.(*DeclarationError); !ok {
		t.Fatalf("expected DeclarationError, got %T", err)
	}
}
