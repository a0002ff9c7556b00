package vm

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/chazu/sol/pkg/ast"
)

func constBody(n int64) *ast.Block {
	return ast.NewBlock(nil, ast.Assign("r", ast.Int(n)))
}

func TestFindMethodNearestAncestorWins(t *testing.T) {
	vm := NewVM()
	a, _ := vm.Define("A", "Object", []*ast.Method{
		{Selector: "who", Body: constBody(1)},
		{Selector: "base", Body: constBody(10)},
	})
	b, _ := vm.Define("B", "A", []*ast.Method{
		{Selector: "who", Body: constBody(2)},
	})
	c, _ := vm.Define("C", "B", nil)

	if m := c.FindMethod("who"); m == nil || m.Class != b {
		t.Errorf("C>>who resolved on %v, want B", m)
	}
	if m := c.FindMethod("base"); m == nil || m.Class != a {
		t.Errorf("C>>base resolved on %v, want A", m)
	}
	if m := c.FindMethod("asString"); m == nil || m.Class != vm.ObjectClass {
		t.Errorf("C>>asString resolved on %v, want Object", m)
	}
	if m := c.FindOwnMethod("who"); m != nil {
		t.Error("FindOwnMethod should not consult superclasses")
	}
	if m := c.FindMethod("missing"); m != nil {
		t.Errorf("FindMethod(missing) = %v, want nil", m)
	}
}

func TestClassSelectorsDeclarationOrder(t *testing.T) {
	vm := NewVM()
	c, err := vm.Define("Shape", "Object", []*ast.Method{
		{Selector: "width", Body: constBody(1)},
		{Selector: "area", Body: constBody(2)},
		{Selector: "scaleBy:", Body: ast.NewBlock([]string{"k"})},
	})
	if err != nil {
		t.Fatalf("Define: %v", err)
	}
	want := []string{"width", "area", "scaleBy:"}
	if diff := cmp.Diff(want, c.Selectors()); diff != "" {
		t.Errorf("Selectors() mismatch (-want +got):\n%s", diff)
	}
}

func TestDefineUnknownParent(t *testing.T) {
	vm := NewVM()
	_, err := vm.Define("Orphan", "Missing", nil)
	wantStatus(t, err, StatusClassNotFound)
}

func TestDefineRejectsCycle(t *testing.T) {
	vm := NewVM()
	if _, err := vm.Define("A", "Object", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := vm.Define("B", "A", nil); err != nil {
		t.Fatal(err)
	}
	_, err := vm.Define("A", "B", nil)
	wantStatus(t, err, StatusClassNotFound)
}

func TestIsSubclassOf(t *testing.T) {
	vm := NewVM()
	counter, _ := vm.Define("Counter", "Integer", nil)
	if !counter.IsSubclassOf(vm.IntegerClass) || !counter.IsSubclassOf(vm.ObjectClass) {
		t.Error("Counter should inherit from Integer and Object")
	}
	if counter.IsSubclassOf(vm.StringClass) {
		t.Error("Counter is not a String")
	}
}

func TestInstantiateUsesBuiltinRoot(t *testing.T) {
	vm := NewVM()
	counter, _ := vm.Define("Counter", "Integer", nil)
	text, _ := vm.Define("Text", "String", nil)
	yes, _ := vm.Define("Yes", "True", nil)
	thunk, _ := vm.Define("Thunk", "Block", nil)
	plain, _ := vm.Define("Point", "Object", nil)

	tests := []struct {
		class *Class
		kind  Kind
	}{
		{counter, KindInteger},
		{text, KindString},
		{thunk, KindBlock},
		{plain, KindObject},
	}
	for _, tt := range tests {
		o, err := vm.Instantiate(tt.class, nil)
		if err != nil {
			t.Fatalf("Instantiate(%s): %v", tt.class.Name, err)
		}
		if o.Kind() != tt.kind {
			t.Errorf("%s instance kind = %v, want %v", tt.class.Name, o.Kind(), tt.kind)
		}
		if o.Class() != tt.class {
			t.Errorf("%s instance class = %s", tt.class.Name, o.Class().Name)
		}
	}

	o, err := vm.Instantiate(yes, nil)
	if err != nil {
		t.Fatal(err)
	}
	if o != vm.True {
		t.Error("instantiating a True subclass should answer the True singleton")
	}
}

func TestInstantiateSeeds(t *testing.T) {
	vm := NewVM()

	tests := []struct {
		name string
		seed Value
		want int64
	}{
		{"integer seed", vm.NewInteger(9), 9},
		{"numeric string", vm.NewString("42"), 42},
		{"leading digits", vm.NewString("17abc"), 17},
		{"negative", vm.NewString("-5"), -5},
		{"not a number", vm.NewString("abc"), 0},
		{"no seed", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := vm.Instantiate(vm.IntegerClass, tt.seed)
			if err != nil {
				t.Fatal(err)
			}
			wantInt(t, o, tt.want)
		})
	}

	s, _ := vm.Instantiate(vm.StringClass, vm.NewInteger(-12))
	wantStr(t, s, "-12")
}

func TestLoadResolvesForwardParents(t *testing.T) {
	vm := NewVM()
	p := program(
		&ast.Class{Name: "Leaf", Parent: "Middle"},
		&ast.Class{Name: "Middle", Parent: "Root"},
		&ast.Class{Name: "Root", Parent: "Object"},
	)
	if err := vm.Load(p); err != nil {
		t.Fatalf("Load: %v", err)
	}
	leaf := vm.Classes.Lookup("Leaf")
	if leaf == nil || leaf.Superclass() != vm.Classes.Lookup("Middle") {
		t.Error("Leaf should inherit from Middle")
	}
}

func TestLoadUnresolvedParent(t *testing.T) {
	vm := NewVM()
	p := program(
		&ast.Class{Name: "A", Parent: "B"},
		&ast.Class{Name: "B", Parent: "Ghost"},
	)
	wantStatus(t, vm.Load(p), StatusClassNotFound)
}

func TestClassTableNamesOrder(t *testing.T) {
	vm := NewVM()
	vm.Define("Zed", "Object", nil)
	vm.Define("Alpha", "Object", nil)
	vm.Define("Zed", "Object", nil)

	want := []string{"Object", "Integer", "String", "Nil", "True", "False", "Block", "Zed", "Alpha"}
	if diff := cmp.Diff(want, vm.Classes.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}

func TestDefineWithoutParent(t *testing.T) {
	vm := NewVM()
	_, err := vm.Define("Orphan", "", nil)
	wantStatus(t, err, StatusClassNotFound)
	if vm.Classes.Has("Orphan") {
		t.Error("class without parent was registered")
	}
}

func TestRunProgramWithoutParent(t *testing.T) {
	vm := NewVM()
	entry := &ast.Class{
		Name: "Main",
		Methods: []*ast.Method{{
			Selector: "run",
			Body:     ast.NewBlock(nil, ast.Assign("x", ast.SendTo(ast.Var("self"), "isNil"))),
		}},
	}
	_, err := vm.RunProgram(program(entry), "Main", "run")
	wantStatus(t, err, StatusClassNotFound)
}
