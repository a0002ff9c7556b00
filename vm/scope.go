package vm

import "github.com/emirpasic/gods/maps/linkedhashmap"

// Scope is a lexical variable environment. Parameters and self are bound
// read-only; a read-only name can never be rebound in the same scope, but a
// child scope may shadow it.
type Scope struct {
	parent   *Scope
	vars     *linkedhashmap.Map // name -> Value
	readOnly map[string]bool
}

// NewScope creates an empty scope. parent may be nil.
func NewScope(parent *Scope) *Scope {
	return &Scope{
		parent:   parent,
		vars:     linkedhashmap.New(),
		readOnly: make(map[string]bool),
	}
}

// Define binds name in this scope, overwriting a previous writable binding.
func (s *Scope) Define(name string, v Value, readOnly bool) error {
	if s.readOnly[name] {
		return runtimeFault("cannot assign to read-only variable %q", name)
	}
	s.vars.Put(name, v)
	if readOnly {
		s.readOnly[name] = true
	}
	return nil
}

// Lookup resolves name through the scope chain.
func (s *Scope) Lookup(name string) (Value, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars.Get(name); ok {
			return v.(Value), true
		}
	}
	return nil, false
}

// IsReadOnly reports whether name is bound read-only in this scope.
func (s *Scope) IsReadOnly(name string) bool {
	return s.readOnly[name]
}

// Names returns the names bound in this scope in binding order.
func (s *Scope) Names() []string {
	keys := s.vars.Keys()
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.(string)
	}
	return names
}
