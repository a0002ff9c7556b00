package vm

import "github.com/chazu/sol/pkg/ast"

// Method is a method declared on a class: a selector bound to a block
// body. User methods and the synthesized built-in bodies share this type.
type Method struct {
	Selector string
	Body     *ast.Block
	Class    *Class // owner, set by Class.AddMethod
}

// Arity returns the number of arguments the method body expects.
func (m *Method) Arity() int {
	if m.Body == nil {
		return 0
	}
	return m.Body.Arity
}

// ---------------------------------------------------------------------------
// Native primitives
// ---------------------------------------------------------------------------

// PrimitiveFunc is a Go function implementing a native selector for one
// value kind. args has already been checked against the primitive's arity.
type PrimitiveFunc func(vm *VM, recv *Object, args []Value) (Value, error)

// Primitive0Func is a primitive taking no arguments.
type Primitive0Func func(vm *VM, recv *Object) (Value, error)

// Primitive1Func is a primitive taking one argument.
type Primitive1Func func(vm *VM, recv *Object, arg Value) (Value, error)

// Primitive2Func is a primitive taking two arguments.
type Primitive2Func func(vm *VM, recv *Object, arg1, arg2 Value) (Value, error)

// Primitive is a native selector implementation.
type Primitive struct {
	Selector string
	Arity    int
	Fn       PrimitiveFunc
}

// primitiveTable holds the native selectors of one kind.
type primitiveTable map[string]*Primitive

func (t primitiveTable) add(selector string, fn PrimitiveFunc) {
	t[selector] = &Primitive{Selector: selector, Arity: SelectorArity(selector), Fn: fn}
}

func (t primitiveTable) add0(selector string, fn Primitive0Func) {
	t.add(selector, func(vm *VM, recv *Object, _ []Value) (Value, error) {
		return fn(vm, recv)
	})
}

func (t primitiveTable) add1(selector string, fn Primitive1Func) {
	t.add(selector, func(vm *VM, recv *Object, args []Value) (Value, error) {
		return fn(vm, recv, args[0])
	})
}

func (t primitiveTable) add2(selector string, fn Primitive2Func) {
	t.add(selector, func(vm *VM, recv *Object, args []Value) (Value, error) {
		return fn(vm, recv, args[0], args[1])
	})
}

// lookupPrimitive returns the native implementation of selector for kind,
// or nil. The Block value family is matched structurally because its arity
// is open-ended.
func (vm *VM) lookupPrimitive(k Kind, selector string) *Primitive {
	if p, ok := vm.primitives[k][selector]; ok {
		return p
	}
	if k == KindBlock && IsValueSelector(selector) {
		return &Primitive{Selector: selector, Arity: SelectorArity(selector), Fn: primBlockValue}
	}
	return nil
}
