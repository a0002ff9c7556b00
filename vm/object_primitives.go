package vm

import "github.com/chazu/sol/pkg/ast"

// ---------------------------------------------------------------------------
// Object methods
// ---------------------------------------------------------------------------

// The built-in protocol that needs no native code is installed as ordinary
// methods with tiny SOL bodies, so user classes can override it and
// inherit it like anything else.

func (vm *VM) registerObjectMethods() {
	c := vm.ObjectClass

	// equalTo: defaults to identity
	c.AddMethod(&Method{
		Selector: "equalTo:",
		Body: ast.NewBlock([]string{"arg"},
			ast.Assign("result", ast.SendTo(ast.Var("self"), "identicalTo:", ast.Var("arg")))),
	})
	c.AddMethod(constantMethod("asString", ast.Str("")))

	// Type tests
	for _, sel := range []string{"isNumber", "isString", "isBlock", "isNil"} {
		c.AddMethod(constantMethod(sel, ast.Bool(false)))
	}
	vm.IntegerClass.AddMethod(constantMethod("isNumber", ast.Bool(true)))
	vm.StringClass.AddMethod(constantMethod("isString", ast.Bool(true)))
	vm.BlockClass.AddMethod(constantMethod("isBlock", ast.Bool(true)))
	vm.NilClass.AddMethod(constantMethod("isNil", ast.Bool(true)))
}

// constantMethod builds a unary method whose body answers lit.
func constantMethod(selector string, lit *ast.Literal) *Method {
	return &Method{
		Selector: selector,
		Body:     ast.NewBlock(nil, ast.Assign("result", lit)),
	}
}
