package vm

// ---------------------------------------------------------------------------
// Boolean Primitives (True, False, Nil)
// ---------------------------------------------------------------------------

func (vm *VM) registerBooleanPrimitives() {
	// True
	tt := vm.primitives[KindTrue]

	tt.add0("not", func(vm *VM, recv *Object) (Value, error) {
		return vm.False, nil
	})

	tt.add1("and:", func(vm *VM, recv *Object, block Value) (Value, error) {
		if !isClosure(block) {
			return nil, wrongArgument("and:", "a Block", block)
		}
		return vm.Send(block, "value", nil)
	})

	tt.add1("or:", func(vm *VM, recv *Object, block Value) (Value, error) {
		if !isClosure(block) {
			return nil, wrongArgument("or:", "a Block", block)
		}
		return vm.True, nil
	})

	tt.add2("ifTrue:ifFalse:", func(vm *VM, recv *Object, trueBlock, falseBlock Value) (Value, error) {
		if err := checkBranches(trueBlock, falseBlock); err != nil {
			return nil, err
		}
		return vm.Send(trueBlock, "value", nil)
	})

	tt.add0("asString", func(vm *VM, recv *Object) (Value, error) {
		return vm.NewString("true"), nil
	})

	// False
	ft := vm.primitives[KindFalse]

	ft.add0("not", func(vm *VM, recv *Object) (Value, error) {
		return vm.True, nil
	})

	ft.add1("and:", func(vm *VM, recv *Object, block Value) (Value, error) {
		if !isClosure(block) {
			return nil, wrongArgument("and:", "a Block", block)
		}
		return vm.False, nil
	})

	ft.add1("or:", func(vm *VM, recv *Object, block Value) (Value, error) {
		if !isClosure(block) {
			return nil, wrongArgument("or:", "a Block", block)
		}
		return vm.Send(block, "value", nil)
	})

	ft.add2("ifTrue:ifFalse:", func(vm *VM, recv *Object, trueBlock, falseBlock Value) (Value, error) {
		if err := checkBranches(trueBlock, falseBlock); err != nil {
			return nil, err
		}
		return vm.Send(falseBlock, "value", nil)
	})

	ft.add0("asString", func(vm *VM, recv *Object) (Value, error) {
		return vm.NewString("false"), nil
	})
}

func (vm *VM) registerNilPrimitives() {
	vm.primitives[KindNil].add0("asString", func(vm *VM, recv *Object) (Value, error) {
		return vm.NewString("nil"), nil
	})
}

func checkBranches(trueBlock, falseBlock Value) error {
	if !isClosure(trueBlock) {
		return wrongArgument("ifTrue:ifFalse:", "a Block", trueBlock)
	}
	if !isClosure(falseBlock) {
		return wrongArgument("ifTrue:ifFalse:", "a Block", falseBlock)
	}
	return nil
}
