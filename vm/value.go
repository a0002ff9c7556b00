package vm

// Value is a SOL runtime value. It is either an *Object (every instance,
// including integers, strings, booleans, nil and closures) or a *Class used
// as a value, e.g. the receiver of `Integer from: 'x'`.
type Value interface {
	value() // marker method
}

func (*Object) value() {}
func (*Class) value()  {}

// ---------------------------------------------------------------------------
// Kinds
// ---------------------------------------------------------------------------

// Kind is the closed set of object representations. Each built-in kind has a
// primitive root class whose name selects the representation at
// instantiation time; every other class inherits the kind of its nearest
// built-in ancestor.
type Kind uint8

const (
	KindObject Kind = iota
	KindInteger
	KindString
	KindTrue
	KindFalse
	KindNil
	KindBlock

	numKinds
)

var kindRoots = [numKinds]string{
	KindObject:  "Object",
	KindInteger: "Integer",
	KindString:  "String",
	KindTrue:    "True",
	KindFalse:   "False",
	KindNil:     "Nil",
	KindBlock:   "Block",
}

// RootName returns the name of the kind's primitive root class.
func (k Kind) RootName() string {
	if k >= numKinds {
		return ""
	}
	return kindRoots[k]
}

func (k Kind) String() string {
	if k >= numKinds {
		return "Kind(?)"
	}
	return kindRoots[k]
}

// kindForRoot maps a primitive root class name to its kind.
func kindForRoot(name string) (Kind, bool) {
	for k, n := range kindRoots {
		if n == name {
			return Kind(k), true
		}
	}
	return KindObject, false
}

// describe renders a value for error messages.
func describe(v Value) string {
	switch x := v.(type) {
	case nil:
		return "<no value>"
	case *Class:
		return x.Name + " class"
	case *Object:
		return x.String()
	}
	return "?"
}
