package vm

import (
	"sync"

	"github.com/emirpasic/gods/maps/linkedhashmap"

	"github.com/chazu/sol/pkg/ast"
)

// ---------------------------------------------------------------------------
// Class
// ---------------------------------------------------------------------------

// Class is a SOL class. The superclass is held by name and resolved through
// the owning ClassTable, so classes may be replaced while loading without
// leaving stale parent links behind.
type Class struct {
	Name           string
	SuperclassName string

	methods *linkedhashmap.Map // selector -> *Method, declaration order
	table   *ClassTable
}

// NewClass creates a detached class. Register it in a ClassTable to make
// its superclass resolvable.
func NewClass(name, superclassName string) *Class {
	return &Class{
		Name:           name,
		SuperclassName: superclassName,
		methods:        linkedhashmap.New(),
	}
}

// Superclass returns the parent class, or nil for a root class or a class
// that is not registered.
func (c *Class) Superclass() *Class {
	if c.SuperclassName == "" || c.table == nil {
		return nil
	}
	return c.table.Lookup(c.SuperclassName)
}

// AddMethod registers m on this class, replacing a method with the same
// selector.
func (c *Class) AddMethod(m *Method) {
	m.Class = c
	c.methods.Put(m.Selector, m)
}

// FindOwnMethod looks up selector on this class only.
func (c *Class) FindOwnMethod(selector string) *Method {
	if m, ok := c.methods.Get(selector); ok {
		return m.(*Method)
	}
	return nil
}

// FindMethod looks up selector along the superclass chain, most derived
// class first.
func (c *Class) FindMethod(selector string) *Method {
	for cur := c; cur != nil; cur = cur.Superclass() {
		if m := cur.FindOwnMethod(selector); m != nil {
			return m
		}
	}
	return nil
}

// findMethodBelow looks up selector along the chain but stops before the
// class named root. Used to give user overrides on subclasses of a
// primitive class precedence over the primitive's native behavior.
func (c *Class) findMethodBelow(selector, root string) *Method {
	for cur := c; cur != nil && cur.Name != root; cur = cur.Superclass() {
		if m := cur.FindOwnMethod(selector); m != nil {
			return m
		}
	}
	return nil
}

// Selectors returns the selectors declared on this class in order.
func (c *Class) Selectors() []string {
	keys := c.methods.Keys()
	sels := make([]string, len(keys))
	for i, k := range keys {
		sels[i] = k.(string)
	}
	return sels
}

// IsSubclassOf returns true if c is other or inherits from it.
func (c *Class) IsSubclassOf(other *Class) bool {
	for cur := c; cur != nil; cur = cur.Superclass() {
		if cur == other {
			return true
		}
	}
	return false
}

// kind walks the chain for the nearest primitive root name. Classes outside
// any built-in hierarchy produce plain objects.
func (c *Class) kind() Kind {
	for cur := c; cur != nil; cur = cur.Superclass() {
		if k, ok := kindForRoot(cur.Name); ok {
			return k
		}
	}
	return KindObject
}

// ---------------------------------------------------------------------------
// ClassTable
// ---------------------------------------------------------------------------

// ClassTable maps class names to classes. It is appended to while a
// program loads and only read during execution.
type ClassTable struct {
	mu      sync.RWMutex
	classes map[string]*Class
	order   []string
}

// NewClassTable creates a new empty class table.
func NewClassTable() *ClassTable {
	return &ClassTable{
		classes: make(map[string]*Class),
	}
}

// Register adds a class to the table.
// Returns the previous class with this name, or nil.
func (ct *ClassTable) Register(c *Class) *Class {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	old := ct.classes[c.Name]
	if old == nil {
		ct.order = append(ct.order, c.Name)
	}
	ct.classes[c.Name] = c
	c.table = ct
	return old
}

// Lookup finds a class by name.
func (ct *ClassTable) Lookup(name string) *Class {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	return ct.classes[name]
}

// Has returns true if a class with this name is registered.
func (ct *ClassTable) Has(name string) bool {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	_, ok := ct.classes[name]
	return ok
}

// Names returns registered class names in first-registration order.
func (ct *ClassTable) Names() []string {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	names := make([]string, len(ct.order))
	copy(names, ct.order)
	return names
}

// Define creates and registers a class from its loaded definition. It fails
// with status 32 if parentName is empty or unresolved, or if the new parent
// would make the hierarchy cyclic. A same-named class is replaced.
func (ct *ClassTable) Define(name, parentName string, methods []*ast.Method) (*Class, error) {
	if parentName == "" {
		return nil, semanticError(StatusClassNotFound, "class %q has no parent", name)
	}
	parent := ct.Lookup(parentName)
	if parent == nil {
		return nil, classNotFound(parentName)
	}
	for cur := parent; cur != nil; cur = cur.Superclass() {
		if cur.Name == name {
			return nil, semanticError(StatusClassNotFound, "class %q cannot inherit from its own subclass %q", name, parentName)
		}
	}

	c := NewClass(name, parentName)
	for _, m := range methods {
		c.AddMethod(&Method{Selector: m.Selector, Body: m.Body})
	}
	ct.Register(c)
	return c, nil
}
