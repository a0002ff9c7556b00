package vm

import (
	"io"
	"regexp"
	"strconv"
)

// ---------------------------------------------------------------------------
// String Primitives
// ---------------------------------------------------------------------------

var integerText = regexp.MustCompile(`^-?[0-9]+$`)

func (vm *VM) registerStringPrimitives() {
	t := vm.primitives[KindString]

	t.add1("equalTo:", func(vm *VM, recv *Object, arg Value) (Value, error) {
		s, ok := stringArg(arg)
		return vm.Bool(ok && recv.str == s), nil
	})

	t.add0("asString", func(vm *VM, recv *Object) (Value, error) {
		return recv, nil
	})

	// asInteger answers nil for anything but an optionally signed decimal
	t.add0("asInteger", func(vm *VM, recv *Object) (Value, error) {
		if !integerText.MatchString(recv.str) {
			return vm.Nil, nil
		}
		n, err := strconv.ParseInt(recv.str, 10, 64)
		if err != nil {
			return vm.Nil, nil
		}
		return vm.NewInteger(n), nil
	})

	t.add1("concatenateWith:", func(vm *VM, recv *Object, arg Value) (Value, error) {
		s, ok := stringArg(arg)
		if !ok {
			return vm.Nil, nil
		}
		return newStringOf(recv.class, recv.str+s), nil
	})

	t.add2("startsWith:endsBefore:", func(vm *VM, recv *Object, start, end Value) (Value, error) {
		from, ok1 := intArg(start)
		to, ok2 := intArg(end)
		if !ok1 || !ok2 || from < 1 || to < 1 {
			return vm.Nil, nil
		}
		if to <= from {
			return newStringOf(recv.class, ""), nil
		}
		return newStringOf(recv.class, substring(recv.str, from, to)), nil
	})

	// I/O
	t.add0("read", func(vm *VM, recv *Object) (Value, error) {
		line, _ := vm.input.ReadLine()
		return newStringOf(recv.class, line), nil
	})

	t.add0("print", func(vm *VM, recv *Object) (Value, error) {
		if _, err := io.WriteString(vm.output, recv.str); err != nil {
			return nil, runtimeFault("print: %v", err)
		}
		return recv, nil
	})

	// Instance-side constructors; `String` evaluates to an instance.
	t.add0("new", func(vm *VM, recv *Object) (Value, error) {
		return newStringOf(recv.class, ""), nil
	})

	t.add1("from:", func(vm *VM, recv *Object, arg Value) (Value, error) {
		return vm.instantiateFrom(recv.class, arg)
	})
}

// substring returns the characters at 1-based positions [from, to),
// clamped to the string.
func substring(s string, from, to int64) string {
	runes := []rune(s)
	n := int64(len(runes))
	if from > n {
		return ""
	}
	if to > n+1 {
		to = n + 1
	}
	return string(runes[from-1 : to-1])
}

// stringArg returns the payload of a String-kind argument.
func stringArg(v Value) (string, bool) {
	o, ok := v.(*Object)
	if !ok || o.kind != KindString {
		return "", false
	}
	return o.str, true
}
