package vm

import (
	"fmt"
	"strconv"

	"github.com/emirpasic/gods/maps/linkedhashmap"

	"github.com/chazu/sol/pkg/ast"
)

// Object is a SOL instance. The kind tag decides which payload field is
// meaningful; attributes are created on demand by the setter fallback of
// message dispatch and keep insertion order.
type Object struct {
	class *Class
	kind  Kind
	attrs *linkedhashmap.Map // name -> Value

	integer int64  // KindInteger
	str     string // KindString

	// KindBlock: the block template and the scope active when the block
	// literal was evaluated. block is nil for a Block created with `new`.
	block *ast.Block
	scope *Scope
}

func newObject(c *Class, k Kind) *Object {
	return &Object{class: c, kind: k}
}

// Class returns the class of the object.
func (o *Object) Class() *Class { return o.class }

// Kind returns the representation kind of the object.
func (o *Object) Kind() Kind { return o.kind }

// Int returns the integer payload (zero unless KindInteger).
func (o *Object) Int() int64 { return o.integer }

// Str returns the string payload (empty unless KindString).
func (o *Object) Str() string { return o.str }

// Block returns the template wrapped by a closure.
func (o *Object) Block() *ast.Block { return o.block }

// ---------------------------------------------------------------------------
// Attributes
// ---------------------------------------------------------------------------

// Attr returns the attribute named name.
func (o *Object) Attr(name string) (Value, bool) {
	if o.attrs == nil {
		return nil, false
	}
	v, ok := o.attrs.Get(name)
	if !ok {
		return nil, false
	}
	return v.(Value), true
}

// SetAttr creates or overwrites the attribute named name.
func (o *Object) SetAttr(name string, v Value) {
	if o.attrs == nil {
		o.attrs = linkedhashmap.New()
	}
	o.attrs.Put(name, v)
}

// AttrNames returns attribute names in creation order.
func (o *Object) AttrNames() []string {
	if o.attrs == nil {
		return nil
	}
	keys := o.attrs.Keys()
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.(string)
	}
	return names
}

// copyAttrs copies every attribute of src onto o, preserving order.
func (o *Object) copyAttrs(src *Object) {
	if src.attrs == nil {
		return
	}
	it := src.attrs.Iterator()
	for it.Next() {
		o.SetAttr(it.Key().(string), it.Value().(Value))
	}
}

func (o *Object) String() string {
	name := "?"
	if o.class != nil {
		name = o.class.Name
	}
	switch o.kind {
	case KindInteger:
		return name + "(" + strconv.FormatInt(o.integer, 10) + ")"
	case KindString:
		return name + "(" + strconv.Quote(o.str) + ")"
	case KindTrue:
		return "true"
	case KindFalse:
		return "false"
	case KindNil:
		return "nil"
	case KindBlock:
		if o.block != nil {
			return fmt.Sprintf("%s[arity %d]", name, o.block.Arity)
		}
		return name + "[empty]"
	}
	return "a " + name
}
