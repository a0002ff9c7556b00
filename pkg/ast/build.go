package ast

import "strconv"

// Constructors for hand-built trees. The vm bootstrap uses them to
// synthesize small method bodies; tests use them to assemble programs
// without going through XML.

// Int returns an Integer literal.
func Int(n int64) *Literal {
	return &Literal{Type: TypeInteger, Value: strconv.FormatInt(n, 10)}
}

// Str returns a String literal.
func Str(s string) *Literal {
	return &Literal{Type: TypeString, Value: s}
}

// Bool returns a Boolean literal.
func Bool(b bool) *Literal {
	if b {
		return &Literal{Type: TypeBoolean, Value: "true"}
	}
	return &Literal{Type: TypeBoolean, Value: "false"}
}

// NilLit returns the nil literal.
func NilLit() *Literal {
	return &Literal{Type: TypeNil, Value: "nil"}
}

// ClassRef returns a class literal.
func ClassRef(name string) *Literal {
	return &Literal{Type: TypeClass, Value: name}
}

// Var returns a variable reference.
func Var(name string) *Variable {
	return &Variable{Name: name}
}

// SendTo returns a message send.
func SendTo(receiver Expr, selector string, args ...Expr) *Send {
	return &Send{Selector: selector, Receiver: receiver, Args: args}
}

// Assign returns an assignment. Order is filled in by NewBlock.
func Assign(target string, e Expr) *Assignment {
	return &Assignment{Target: target, Expr: e}
}

// NewBlock builds a block whose parameters are params in order and whose
// assignments are body in order. Arity is len(params).
func NewBlock(params []string, body ...*Assignment) *Block {
	b := &Block{Arity: len(params)}
	for i, p := range params {
		b.Parameters = append(b.Parameters, &Parameter{Order: i + 1, Name: p})
	}
	for i, a := range body {
		a.Order = i + 1
		b.Assignments = append(b.Assignments, a)
	}
	return b
}

// Lambda wraps a block in a block literal expression.
func Lambda(params []string, body ...*Assignment) *BlockLiteral {
	return &BlockLiteral{Block: NewBlock(params, body...)}
}
