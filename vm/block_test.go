package vm

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/chazu/sol/pkg/ast"
)

func TestExecuteArityCheckedBeforeBody(t *testing.T) {
	var out bytes.Buffer
	vm := NewVM(WithOutput(&out))
	b := ast.NewBlock([]string{"a"},
		ast.Assign("x", ast.SendTo(ast.Str("ran"), "print")))

	_, err := vm.Execute(nil, b, nil, nil)
	wantStatus(t, err, StatusArityMismatch)
	_, err = vm.Execute(nil, b, []Value{vm.Nil, vm.Nil}, nil)
	wantStatus(t, err, StatusArityMismatch)

	if out.Len() != 0 {
		t.Errorf("body ran despite arity mismatch, output %q", out.String())
	}
}

func TestExecuteEmptyBlockAnswersNil(t *testing.T) {
	vm := NewVM()
	v, err := vm.Execute(nil, ast.NewBlock(nil), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if v != Value(vm.Nil) {
		t.Errorf("empty block = %s, want nil", describe(v))
	}
}

func TestExecuteParametersAreReadOnly(t *testing.T) {
	vm := NewVM()
	b := ast.NewBlock([]string{"n"}, ast.Assign("n", ast.Int(0)))
	_, err := vm.Execute(nil, b, []Value{vm.NewInteger(1)}, nil)
	wantStatus(t, err, StatusRuntime)

	self := ast.NewBlock(nil, ast.Assign("self", ast.Int(0)))
	_, err = vm.Execute(vm.True, self, nil, nil)
	wantStatus(t, err, StatusRuntime)
}

func TestBlockValueFamily(t *testing.T) {
	vm := NewVM()
	scope := NewScope(nil)

	sum := vm.NewClosure(ast.NewBlock([]string{"a", "b", "c"},
		ast.Assign("r", ast.SendTo(ast.SendTo(ast.Var("a"), "plus:", ast.Var("b")), "plus:", ast.Var("c")))), scope)
	wantInt(t, mustSend(t, vm, sum, "value:value:value:", vm.NewInteger(1), vm.NewInteger(2), vm.NewInteger(3)), 6)

	_, err := vm.Send(sum, "value:", []Value{vm.NewInteger(1)})
	wantStatus(t, err, StatusArityMismatch)

	_, err = vm.Send(sum, "value:with:", []Value{vm.Nil, vm.Nil})
	wantStatus(t, err, StatusUnknownSelector)
}

func TestBlockNewHasNoBody(t *testing.T) {
	vm := NewVM()
	b := mustSend(t, vm, vm.BlockClass, "new")
	_, err := vm.Send(b, "value", nil)
	wantStatus(t, err, StatusRuntime)
}

// A block created inside a method keeps that method's self and locals,
// even when evaluated on behalf of another object.
func TestClosureCapturesDefinitionScope(t *testing.T) {
	vm := NewVM()

	// Maker>>make: answers [:suffix | (self name) concatenateWith: (greeting concatenateWith: suffix)]
	// after binding greeting := 'hi '.
	maker, _ := vm.Define("Maker", "Object", []*ast.Method{{
		Selector: "make",
		Body: ast.NewBlock(nil,
			ast.Assign("greeting", ast.Str("hi ")),
			ast.Assign("blk", ast.Lambda([]string{"suffix"},
				ast.Assign("r", ast.SendTo(
					ast.SendTo(ast.Var("self"), "name"),
					"concatenateWith:",
					ast.SendTo(ast.Var("greeting"), "concatenateWith:", ast.Var("suffix")))))),
		),
	}})
	// Runner>>run: answers blk value: 'there' with its own self and greeting
	runner, _ := vm.Define("Runner", "Object", []*ast.Method{{
		Selector: "run:",
		Body: ast.NewBlock([]string{"blk"},
			ast.Assign("greeting", ast.Str("bye ")),
			ast.Assign("r", ast.SendTo(ast.Var("blk"), "value:", ast.Str("there")))),
	}})

	m, _ := vm.Instantiate(maker, nil)
	mustSend(t, vm, m, "name:", vm.NewString("maker:"))
	r, _ := vm.Instantiate(runner, nil)
	mustSend(t, vm, r, "name:", vm.NewString("runner:"))

	blk := mustSend(t, vm, m, "make")
	wantStr(t, mustSend(t, vm, r, "run:", blk), "maker:hi there")
}

func TestBlockAssignmentsStayLocal(t *testing.T) {
	vm := NewVM()
	outer := NewScope(nil)
	outer.Define("x", vm.NewInteger(1), false)

	blk := vm.NewClosure(ast.NewBlock(nil, ast.Assign("x", ast.Int(2))), outer)
	wantInt(t, mustSend(t, vm, blk, "value"), 2)

	v, _ := outer.Lookup("x")
	wantInt(t, v, 1)
}

func TestWhileTrue(t *testing.T) {
	vm := NewVM()
	c, _ := vm.Define("Counter", "Object", nil)
	counter, _ := vm.Instantiate(c, nil)
	mustSend(t, vm, counter, "n:", vm.NewInteger(0))

	scope := NewScope(nil)
	scope.Define("c", counter, false)

	// [c n greaterThan: 4] not   /   [c n: (c n plus: 1)]
	cond := vm.NewClosure(ast.NewBlock(nil,
		ast.Assign("r", ast.SendTo(ast.SendTo(ast.SendTo(ast.Var("c"), "n"), "greaterThan:", ast.Int(4)), "not"))), scope)
	body := vm.NewClosure(ast.NewBlock(nil,
		ast.Assign("r", ast.SendTo(ast.Var("c"), "n:", ast.SendTo(ast.SendTo(ast.Var("c"), "n"), "plus:", ast.Int(1))))), scope)

	v := mustSend(t, vm, cond, "whileTrue:", body)
	if v != Value(vm.Nil) {
		t.Errorf("whileTrue: = %s, want nil", describe(v))
	}
	wantInt(t, mustSend(t, vm, counter, "n"), 5)
}

func TestWhileTrueRejectsNonBlock(t *testing.T) {
	vm := NewVM()
	cond := vm.NewClosure(ast.NewBlock(nil, ast.Assign("r", ast.Bool(false))), NewScope(nil))
	_, err := vm.Send(cond, "whileTrue:", []Value{vm.NewInteger(1)})
	wantStatus(t, err, StatusUnknownSelector)

	notBool := vm.NewClosure(ast.NewBlock(nil, ast.Assign("r", ast.Int(1))), NewScope(nil))
	_, err = vm.Send(notBool, "whileTrue:", []Value{cond})
	wantStatus(t, err, StatusRuntime)
}

func TestTimesRepeatPassesIterationNumbers(t *testing.T) {
	vm := NewVM()
	c, _ := vm.Define("Log", "Object", nil)
	rec, _ := vm.Instantiate(c, nil)
	mustSend(t, vm, rec, "text:", vm.NewString(""))

	scope := NewScope(nil)
	scope.Define("log", rec, false)
	// [:i | log text: (log text concatenateWith: i asString)]
	blk := vm.NewClosure(ast.NewBlock([]string{"i"},
		ast.Assign("r", ast.SendTo(ast.Var("log"), "text:",
			ast.SendTo(ast.SendTo(ast.Var("log"), "text"), "concatenateWith:", ast.SendTo(ast.Var("i"), "asString"))))), scope)

	tests := []struct {
		n    int64
		want string
	}{
		{3, "123"},
		{0, ""},
		{-2, ""},
	}
	for _, tt := range tests {
		mustSend(t, vm, rec, "text:", vm.NewString(""))
		v := mustSend(t, vm, vm.NewInteger(tt.n), "timesRepeat:", blk)
		if v != Value(vm.Nil) {
			t.Errorf("%d timesRepeat: = %s, want nil", tt.n, describe(v))
		}
		wantStr(t, mustSend(t, vm, rec, "text"), tt.want)
	}

	_, err := vm.Send(vm.NewInteger(2), "timesRepeat:", []Value{vm.NewString("x")})
	wantStatus(t, err, StatusUnknownSelector)
}

func TestCallDepthLimit(t *testing.T) {
	vm := NewVM(WithMaxCallDepth(50))
	// Loop>>down: n  answers self down: n
	loop, _ := vm.Define("Loop", "Object", []*ast.Method{{
		Selector: "down:",
		Body: ast.NewBlock([]string{"n"},
			ast.Assign("r", ast.SendTo(ast.Var("self"), "down:", ast.Var("n")))),
	}})
	o, _ := vm.Instantiate(loop, nil)

	_, err := vm.Send(o, "down:", []Value{vm.NewInteger(1)})
	wantStatus(t, err, StatusRuntime)
	if vm.depth != 0 {
		t.Errorf("depth = %d after unwinding, want 0", vm.depth)
	}
}

func TestBlockSortAppliesDeclaredOrder(t *testing.T) {
	vm := NewVM()
	b := &ast.Block{
		Arity: 2,
		Parameters: []*ast.Parameter{
			{Order: 2, Name: "b"},
			{Order: 1, Name: "a"},
		},
		Assignments: []*ast.Assignment{
			{Order: 2, Target: "r", Expr: ast.SendTo(ast.Var("a"), "minus:", ast.Var("b"))},
			{Order: 1, Target: "unused", Expr: ast.Int(0)},
		},
	}
	b.Sort()
	v, err := vm.Execute(nil, b, []Value{vm.NewInteger(10), vm.NewInteger(3)}, nil)
	if err != nil {
		t.Fatal(err)
	}
	wantInt(t, v, 7)

	names := []string{b.Parameters[0].Name, b.Parameters[1].Name}
	if diff := cmp.Diff([]string{"a", "b"}, names); diff != "" {
		t.Errorf("parameter order mismatch (-want +got):\n%s", diff)
	}
}
