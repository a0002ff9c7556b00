package vm

// ---------------------------------------------------------------------------
// Block Primitives
// ---------------------------------------------------------------------------

// The value family (value, value:, value:value:, ...) is resolved by
// lookupPrimitive rather than registered here, since it has no fixed arity.

func (vm *VM) registerBlockPrimitives() {
	t := vm.primitives[KindBlock]

	// whileTrue: evaluates the receiver and runs body while it answers true
	t.add1("whileTrue:", func(vm *VM, recv *Object, body Value) (Value, error) {
		if !isClosure(body) {
			return nil, wrongArgument("whileTrue:", "a Block", body)
		}
		for {
			cond, err := vm.Send(recv, "value", nil)
			if err != nil {
				return nil, err
			}
			switch cond {
			case Value(vm.True):
			case Value(vm.False):
				return vm.Nil, nil
			default:
				return nil, runtimeFault("whileTrue: condition answered %s, not a Boolean", describe(cond))
			}
			if _, err := vm.Send(body, "value", nil); err != nil {
				return nil, err
			}
		}
	})
}

// primBlockValue runs a closure with its captured scope. The receiver is
// not bound as self; self inside the block is the one it closed over.
func primBlockValue(vm *VM, recv *Object, args []Value) (Value, error) {
	if recv.block == nil {
		return nil, runtimeFault("%s has no body to evaluate", describe(recv))
	}
	return vm.Execute(nil, recv.block, args, recv.scope)
}

// isClosure reports whether v is a Block-kind instance.
func isClosure(v Value) bool {
	o, ok := v.(*Object)
	return ok && o.kind == KindBlock
}
