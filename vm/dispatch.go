package vm

// ---------------------------------------------------------------------------
// Message dispatch
// ---------------------------------------------------------------------------

// Send delivers selector with args to receiver and returns the result.
//
// Resolution order for instances:
//  1. identicalTo: compares identities and cannot be overridden.
//  2. For a class derived from a built-in class, methods declared below the
//     built-in root (user overrides).
//  3. The native primitives of the receiver's kind.
//  4. Declared methods along the full chain, including synthesized bodies.
//  5. An attribute named selector.
//  6. The setter fallback for one-argument keywords: `count: 3` creates or
//     overwrites the attribute count and answers 3.
//
// Anything else is an unknown selector (status 51).
func (vm *VM) Send(receiver Value, selector string, args []Value) (Value, error) {
	if receiver == nil {
		return nil, nullClass("receiver of " + selector)
	}

	if selector == "identicalTo:" {
		if len(args) != 1 {
			return nil, arityMismatch(selector, 1, len(args))
		}
		return vm.Bool(identical(receiver, args[0])), nil
	}

	switch r := receiver.(type) {
	case *Class:
		return vm.sendClass(r, selector, args)
	case *Object:
		return vm.sendObject(r, selector, args)
	}
	return nil, nullClass("receiver of " + selector)
}

func identical(a, b Value) bool {
	switch x := a.(type) {
	case *Object:
		y, ok := b.(*Object)
		return ok && x == y
	case *Class:
		y, ok := b.(*Class)
		return ok && x == y
	}
	return false
}

func (vm *VM) sendObject(o *Object, selector string, args []Value) (Value, error) {
	if o.class == nil {
		return nil, nullClass(o.kind.String() + " instance")
	}

	root := o.kind.RootName()
	if o.class.Name != root {
		if m := o.class.findMethodBelow(selector, root); m != nil {
			return vm.invoke(o, m, args)
		}
	}

	if p := vm.lookupPrimitive(o.kind, selector); p != nil {
		if len(args) != p.Arity {
			return nil, arityMismatch(selector, p.Arity, len(args))
		}
		return p.Fn(vm, o, args)
	}

	if m := o.class.FindMethod(selector); m != nil {
		return vm.invoke(o, m, args)
	}

	return vm.fallback(o, selector, args)
}

// fallback implements attribute reads and the setter convention.
func (vm *VM) fallback(o *Object, selector string, args []Value) (Value, error) {
	if len(args) == 0 {
		if v, ok := o.Attr(selector); ok {
			return v, nil
		}
	}
	if name, ok := setterName(selector); ok && len(args) == 1 {
		o.SetAttr(name, args[0])
		return args[0], nil
	}
	return nil, unknownSelector(describe(o), selector)
}

// sendClass handles messages sent to a class used as a value.
func (vm *VM) sendClass(c *Class, selector string, args []Value) (Value, error) {
	switch selector {
	case "new":
		if len(args) != 0 {
			return nil, arityMismatch(selector, 0, len(args))
		}
		return vm.Instantiate(c, nil)
	case "from:":
		if len(args) != 1 {
			return nil, arityMismatch(selector, 1, len(args))
		}
		return vm.instantiateFrom(c, args[0])
	}

	if m := c.FindMethod(selector); m != nil {
		return vm.invoke(c, m, args)
	}
	return nil, unknownSelector(describe(c), selector)
}

// instantiateFrom creates an instance of c seeded from arg. Integer and
// String arguments seed the payload; the attributes of any object argument
// are copied onto the new instance.
func (vm *VM) instantiateFrom(c *Class, arg Value) (Value, error) {
	src, ok := arg.(*Object)
	if !ok {
		return nil, runtimeFault("%s from: expects an instance, got %s", c.Name, describe(arg))
	}
	o, err := vm.Instantiate(c, src)
	if err != nil {
		return nil, err
	}
	if !vm.isSingleton(o) {
		o.copyAttrs(src)
	}
	return o, nil
}

func (vm *VM) isSingleton(o *Object) bool {
	return o == vm.Nil || o == vm.True || o == vm.False
}

// invoke runs a declared method with receiver bound as self.
func (vm *VM) invoke(receiver Value, m *Method, args []Value) (Value, error) {
	if m.Body == nil {
		return nil, runtimeFault("method %s has no body", m.Selector)
	}
	if len(args) != m.Body.Arity {
		return nil, arityMismatch(m.Selector, m.Body.Arity, len(args))
	}
	return vm.Execute(receiver, m.Body, args, nil)
}
