// Package ast defines the program representation consumed by the SOL
// execution engine: classes, methods, blocks and the four expression kinds.
//
// Nodes are plain data. The loader builds them, the vm package evaluates
// them, and the wire codec in this package persists them.
package ast

import "sort"

// Literal type tags.
const (
	TypeInteger = "Integer"
	TypeString  = "String"
	TypeNil     = "Nil"
	TypeTrue    = "True"
	TypeFalse   = "False"
	TypeBoolean = "Boolean"
	TypeClass   = "class"
)

// Language is the value of the program element's language attribute.
const Language = "SOL25"

// ---------------------------------------------------------------------------
// Program structure
// ---------------------------------------------------------------------------

// Program is a loaded compilation unit. Classes keep source order.
type Program struct {
	Language    string
	Description string
	Classes     []*Class
}

// Class is a user class definition. Parent is resolved by name at load time.
type Class struct {
	Name    string
	Parent  string
	Methods []*Method
}

// Method binds a selector to a block body.
type Method struct {
	Selector string
	Body     *Block
}

// Block is a template: parameters and assignments with no scope of its own.
type Block struct {
	Arity       int
	Parameters  []*Parameter
	Assignments []*Assignment
}

// Parameter is a block parameter. Order is 1-based.
type Parameter struct {
	Order int
	Name  string
}

// Assignment stores the value of Expr in the variable Target.
type Assignment struct {
	Order  int
	Target string
	Expr   Expr
}

// Class returns the class named name, or nil.
func (p *Program) Class(name string) *Class {
	for _, c := range p.Classes {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Method returns the method declared for selector, or nil.
func (c *Class) Method(selector string) *Method {
	for _, m := range c.Methods {
		if m.Selector == selector {
			return m
		}
	}
	return nil
}

// Sort orders parameters and assignments by their declared order.
// Blocks nested in assignment expressions are sorted too.
func (b *Block) Sort() {
	sort.SliceStable(b.Parameters, func(i, j int) bool {
		return b.Parameters[i].Order < b.Parameters[j].Order
	})
	sort.SliceStable(b.Assignments, func(i, j int) bool {
		return b.Assignments[i].Order < b.Assignments[j].Order
	})
	for _, a := range b.Assignments {
		Walk(a.Expr, func(e Expr) {
			if bl, ok := e.(*BlockLiteral); ok {
				bl.Block.Sort()
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Expression nodes
// ---------------------------------------------------------------------------

// Expr is the interface for expression nodes.
type Expr interface {
	expr() // marker method
}

// Literal is a primitive constant or a class reference (Type == TypeClass).
type Literal struct {
	Type  string
	Value string
}

// Variable reads a name from the scope chain.
type Variable struct {
	Name string
}

// Send is a message send. Args are in keyword order.
type Send struct {
	Selector string
	Receiver Expr
	Args     []Expr
}

// BlockLiteral evaluates to a closure over the current scope.
type BlockLiteral struct {
	Block *Block
}

func (*Literal) expr()      {}
func (*Variable) expr()     {}
func (*Send) expr()         {}
func (*BlockLiteral) expr() {}

// Walk calls fn for e and every expression nested in it, depth first.
// Nested block bodies are visited as well.
func Walk(e Expr, fn func(Expr)) {
	if e == nil {
		return
	}
	fn(e)
	switch n := e.(type) {
	case *Send:
		Walk(n.Receiver, fn)
		for _, a := range n.Args {
			Walk(a, fn)
		}
	case *BlockLiteral:
		if n.Block == nil {
			return
		}
		for _, a := range n.Block.Assignments {
			Walk(a.Expr, fn)
		}
	}
}
