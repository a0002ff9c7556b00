package vm

import (
	"strconv"

	"github.com/chazu/sol/pkg/ast"
)

// ---------------------------------------------------------------------------
// Block execution
// ---------------------------------------------------------------------------

// Execute runs a block body. It creates a scope whose parent is parent,
// binds the parameters (read-only, in declaration order) and self when
// receiver is non-nil, then evaluates the assignments in order. The result
// is the value of the last assignment, or Nil for an empty body.
//
// Method bodies run with a nil parent; closures run with the scope they
// captured and a nil receiver, so self resolves through that scope.
func (vm *VM) Execute(receiver Value, b *ast.Block, args []Value, parent *Scope) (Value, error) {
	if b == nil {
		return nil, runtimeFault("cannot execute an empty block")
	}
	if len(args) != b.Arity {
		return nil, arityMismatch("block", b.Arity, len(args))
	}

	if vm.MaxCallDepth > 0 && vm.depth >= vm.MaxCallDepth {
		return nil, runtimeFault("call depth exceeded %d", vm.MaxCallDepth)
	}
	vm.depth++
	defer func() { vm.depth-- }()

	scope := NewScope(parent)
	for i, p := range b.Parameters {
		if i >= len(args) {
			break
		}
		if err := scope.Define(p.Name, args[i], true); err != nil {
			return nil, err
		}
	}
	if receiver != nil {
		if err := scope.Define("self", receiver, true); err != nil {
			return nil, err
		}
	}

	var result Value = vm.Nil
	for _, a := range b.Assignments {
		v, err := vm.Eval(a.Expr, scope)
		if err != nil {
			return nil, err
		}
		if err := scope.Define(a.Target, v, false); err != nil {
			return nil, err
		}
		result = v
	}
	return result, nil
}

// ---------------------------------------------------------------------------
// Expression evaluation
// ---------------------------------------------------------------------------

// Eval evaluates one expression in scope. Sends evaluate the receiver first
// and then the arguments left to right.
func (vm *VM) Eval(e ast.Expr, scope *Scope) (Value, error) {
	switch x := e.(type) {
	case *ast.Literal:
		return vm.evalLiteral(x)

	case *ast.Variable:
		v, ok := scope.Lookup(x.Name)
		if !ok {
			return nil, runtimeFault("undefined variable %q", x.Name)
		}
		return v, nil

	case *ast.Send:
		recv, err := vm.Eval(x.Receiver, scope)
		if err != nil {
			return nil, err
		}
		args := make([]Value, len(x.Args))
		for i, a := range x.Args {
			if args[i], err = vm.Eval(a, scope); err != nil {
				return nil, err
			}
		}
		return vm.Send(recv, x.Selector, args)

	case *ast.BlockLiteral:
		return vm.NewClosure(x.Block, scope), nil

	case nil:
		return nil, semanticError(StatusMalformed, "missing expression")
	}
	return nil, semanticError(StatusMalformed, "unsupported expression %T", e)
}

func (vm *VM) evalLiteral(l *ast.Literal) (Value, error) {
	switch l.Type {
	case ast.TypeInteger:
		n, err := strconv.ParseInt(l.Value, 10, 64)
		if err != nil {
			return nil, runtimeFault("invalid integer literal %q", l.Value)
		}
		return vm.NewInteger(n), nil
	case ast.TypeString:
		return vm.NewString(l.Value), nil
	case ast.TypeNil:
		return vm.Nil, nil
	case ast.TypeTrue:
		return vm.True, nil
	case ast.TypeFalse:
		return vm.False, nil
	case ast.TypeBoolean:
		return vm.Bool(l.Value == "true"), nil
	case ast.TypeClass:
		c := vm.Classes.Lookup(l.Value)
		if c == nil {
			return nil, classNotFound(l.Value)
		}
		if c == vm.StringClass {
			// `String read` is sent before any string instance exists.
			return vm.NewString(""), nil
		}
		return c, nil
	}
	return nil, semanticError(StatusMalformed, "unknown literal type %q", l.Type)
}
