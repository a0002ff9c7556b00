package vm

import (
	"io"
	"strconv"

	"github.com/tliron/commonlog"

	"github.com/chazu/sol/pkg/ast"
)

// DefaultMaxCallDepth bounds nested block executions. Deep recursion in a
// SOL program fails with status 53 instead of exhausting the Go stack.
const DefaultMaxCallDepth = 10000

var log = commonlog.GetLogger("sol.vm")

// ---------------------------------------------------------------------------
// VM: the SOL execution context
// ---------------------------------------------------------------------------

// VM owns everything a run needs: the class table, the singleton values,
// the native primitive tables and the I/O collaborators.
type VM struct {
	Classes *ClassTable

	// Built-in classes
	ObjectClass  *Class
	IntegerClass *Class
	StringClass  *Class
	NilClass     *Class
	TrueClass    *Class
	FalseClass   *Class
	BlockClass   *Class

	// Singletons, compared by identity
	Nil   *Object
	True  *Object
	False *Object

	// MaxCallDepth limits block execution nesting.
	MaxCallDepth int

	primitives [numKinds]primitiveTable

	input  LineReader
	output io.Writer

	depth int
}

// Option configures a VM.
type Option func(*VM)

// WithInput sets the reader used by String>>read.
func WithInput(r LineReader) Option {
	return func(vm *VM) { vm.input = r }
}

// WithOutput sets the writer used by String>>print.
func WithOutput(w io.Writer) Option {
	return func(vm *VM) { vm.output = w }
}

// WithMaxCallDepth overrides DefaultMaxCallDepth.
func WithMaxCallDepth(n int) Option {
	return func(vm *VM) { vm.MaxCallDepth = n }
}

// NewVM creates and bootstraps a new VM. Without options, read sees an
// empty input and print output is discarded.
func NewVM(opts ...Option) *VM {
	vm := &VM{
		Classes:      NewClassTable(),
		MaxCallDepth: DefaultMaxCallDepth,
		input:        emptyInput{},
		output:       io.Discard,
	}
	for _, opt := range opts {
		opt(vm)
	}

	vm.bootstrap()
	return vm
}

// ---------------------------------------------------------------------------
// Bootstrap: built-in classes, singletons, primitives
// ---------------------------------------------------------------------------

func (vm *VM) bootstrap() {
	vm.ObjectClass = vm.createBootstrapClass("Object", "")
	vm.IntegerClass = vm.createBootstrapClass("Integer", "Object")
	vm.StringClass = vm.createBootstrapClass("String", "Object")
	vm.NilClass = vm.createBootstrapClass("Nil", "Object")
	vm.TrueClass = vm.createBootstrapClass("True", "Object")
	vm.FalseClass = vm.createBootstrapClass("False", "Object")
	vm.BlockClass = vm.createBootstrapClass("Block", "Object")

	vm.Nil = newObject(vm.NilClass, KindNil)
	vm.True = newObject(vm.TrueClass, KindTrue)
	vm.False = newObject(vm.FalseClass, KindFalse)

	for k := range vm.primitives {
		vm.primitives[k] = make(primitiveTable)
	}

	vm.registerObjectMethods()
	vm.registerIntegerPrimitives()
	vm.registerStringPrimitives()
	vm.registerBooleanPrimitives()
	vm.registerNilPrimitives()
	vm.registerBlockPrimitives()
}

func (vm *VM) createBootstrapClass(name, superName string) *Class {
	c := NewClass(name, superName)
	vm.Classes.Register(c)
	return c
}

// ---------------------------------------------------------------------------
// Value construction
// ---------------------------------------------------------------------------

// Bool returns the True or False singleton.
func (vm *VM) Bool(b bool) *Object {
	if b {
		return vm.True
	}
	return vm.False
}

// NewInteger creates an Integer.
func (vm *VM) NewInteger(n int64) *Object {
	return newIntegerOf(vm.IntegerClass, n)
}

// NewString creates a String.
func (vm *VM) NewString(s string) *Object {
	return newStringOf(vm.StringClass, s)
}

// NewClosure wraps a block template and the scope it closes over.
func (vm *VM) NewClosure(b *ast.Block, scope *Scope) *Object {
	o := newObject(vm.BlockClass, KindBlock)
	o.block = b
	o.scope = scope
	return o
}

func newIntegerOf(c *Class, n int64) *Object {
	o := newObject(c, KindInteger)
	o.integer = n
	return o
}

func newStringOf(c *Class, s string) *Object {
	o := newObject(c, KindString)
	o.str = s
	return o
}

// Instantiate creates an instance of c. The representation comes from the
// nearest built-in ancestor of c, so subclasses of Integer get an integer
// payload and so on. seed, when non-nil, initializes the payload from a
// String or Integer value. Nil, True and False always yield their
// singletons.
func (vm *VM) Instantiate(c *Class, seed Value) (*Object, error) {
	if c == nil {
		return nil, nullClass("instantiated class")
	}
	switch k := c.kind(); k {
	case KindNil:
		return vm.Nil, nil
	case KindTrue:
		return vm.True, nil
	case KindFalse:
		return vm.False, nil
	case KindInteger:
		return newIntegerOf(c, seedInt(seed)), nil
	case KindString:
		return newStringOf(c, seedString(seed)), nil
	default:
		return newObject(c, k), nil
	}
}

// seedInt converts a seed to an integer payload. Strings use their leading
// decimal integer, like a C-style atoi: "42abc" is 42, "abc" is 0.
func seedInt(seed Value) int64 {
	o, ok := seed.(*Object)
	if !ok {
		return 0
	}
	switch o.kind {
	case KindInteger:
		return o.integer
	case KindString:
		return leadingInt(o.str)
	}
	return 0
}

func seedString(seed Value) string {
	o, ok := seed.(*Object)
	if !ok {
		return ""
	}
	switch o.kind {
	case KindString:
		return o.str
	case KindInteger:
		return strconv.FormatInt(o.integer, 10)
	}
	return ""
}

func leadingInt(s string) int64 {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	start := i
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		i++
	}
	digits := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == digits {
		return 0
	}
	n, err := strconv.ParseInt(s[start:i], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// ---------------------------------------------------------------------------
// Loading and running programs
// ---------------------------------------------------------------------------

// Define registers a class from its loaded definition.
func (vm *VM) Define(name, parentName string, methods []*ast.Method) (*Class, error) {
	return vm.Classes.Define(name, parentName, methods)
}

// Load defines every class of p. Classes may reference parents declared
// later in the program; a parent that never becomes available fails with
// status 32.
func (vm *VM) Load(p *ast.Program) error {
	pending := p.Classes
	for len(pending) > 0 {
		var deferred []*ast.Class
		for _, c := range pending {
			if c.Parent == "" {
				return semanticError(StatusClassNotFound, "class %q has no parent", c.Name)
			}
			if !vm.Classes.Has(c.Parent) {
				deferred = append(deferred, c)
				continue
			}
			if _, err := vm.Define(c.Name, c.Parent, c.Methods); err != nil {
				return err
			}
			log.Debugf("defined class %s (parent %s, %d methods)", c.Name, c.Parent, len(c.Methods))
		}
		if len(deferred) == len(pending) {
			return classNotFound(deferred[0].Parent)
		}
		pending = deferred
	}
	return nil
}

// Run executes the entry method: it instantiates className with no seed
// and runs selector's body with no arguments. A missing class or method
// fails with status 31.
func (vm *VM) Run(className, selector string) (Value, error) {
	c := vm.Classes.Lookup(className)
	if c == nil {
		return nil, missingEntry("entry class %q not found", className)
	}
	m := c.FindMethod(selector)
	if m == nil {
		return nil, missingEntry("entry method %q not found in class %q", selector, className)
	}
	self, err := vm.Instantiate(c, nil)
	if err != nil {
		return nil, err
	}
	log.Infof("running %s>>%s", className, selector)
	return vm.Execute(self, m.Body, nil, nil)
}

// RunProgram loads p and runs its entry method.
func (vm *VM) RunProgram(p *ast.Program, className, selector string) (Value, error) {
	if err := vm.Load(p); err != nil {
		return nil, err
	}
	return vm.Run(className, selector)
}
