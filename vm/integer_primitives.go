package vm

import "strconv"

// ---------------------------------------------------------------------------
// Integer Primitives
// ---------------------------------------------------------------------------

// Arithmetic answers an instance of the receiver's class, so subclasses of
// Integer stay closed under their own arithmetic.

func (vm *VM) registerIntegerPrimitives() {
	t := vm.primitives[KindInteger]

	t.add1("equalTo:", func(vm *VM, recv *Object, arg Value) (Value, error) {
		n, ok := intArg(arg)
		return vm.Bool(ok && recv.integer == n), nil
	})

	t.add1("greaterThan:", func(vm *VM, recv *Object, arg Value) (Value, error) {
		n, ok := intArg(arg)
		if !ok {
			return nil, wrongArgument("greaterThan:", "an Integer", arg)
		}
		return vm.Bool(recv.integer > n), nil
	})

	t.add1("plus:", integerOp("plus:", func(a, b int64) int64 { return a + b }))
	t.add1("minus:", integerOp("minus:", func(a, b int64) int64 { return a - b }))
	t.add1("multiplyBy:", integerOp("multiplyBy:", func(a, b int64) int64 { return a * b }))

	t.add1("divBy:", func(vm *VM, recv *Object, arg Value) (Value, error) {
		n, ok := intArg(arg)
		if !ok {
			return nil, wrongArgument("divBy:", "an Integer", arg)
		}
		if n == 0 {
			return nil, runtimeFault("division by zero")
		}
		return newIntegerOf(recv.class, recv.integer/n), nil
	})

	// Conversions
	t.add0("asString", func(vm *VM, recv *Object) (Value, error) {
		return vm.NewString(strconv.FormatInt(recv.integer, 10)), nil
	})

	t.add0("asInteger", func(vm *VM, recv *Object) (Value, error) {
		return recv, nil
	})

	// timesRepeat: sends value: with 1..n to the block
	t.add1("timesRepeat:", func(vm *VM, recv *Object, arg Value) (Value, error) {
		if !isClosure(arg) {
			return nil, wrongArgument("timesRepeat:", "a Block", arg)
		}
		for i := int64(1); i <= recv.integer; i++ {
			if _, err := vm.Send(arg, "value:", []Value{newIntegerOf(recv.class, i)}); err != nil {
				return nil, err
			}
		}
		return vm.Nil, nil
	})
}

func integerOp(selector string, op func(a, b int64) int64) Primitive1Func {
	return func(vm *VM, recv *Object, arg Value) (Value, error) {
		n, ok := intArg(arg)
		if !ok {
			return nil, wrongArgument(selector, "an Integer", arg)
		}
		return newIntegerOf(recv.class, op(recv.integer, n)), nil
	}
}

// intArg returns the payload of an Integer-kind argument.
func intArg(v Value) (int64, bool) {
	o, ok := v.(*Object)
	if !ok || o.kind != KindInteger {
		return 0, false
	}
	return o.integer, true
}
