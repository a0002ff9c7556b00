package ast

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Programs are persisted as CBOR images. Expressions are flattened into a
// tagged wire node because Expr is an interface.

// imageVersion is bumped whenever the wire layout changes.
const imageVersion = 1

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("ast: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Expression kinds on the wire.
const (
	wireLiteral  uint8 = 1
	wireVariable uint8 = 2
	wireSend     uint8 = 3
	wireBlockLit uint8 = 4
)

type wireProgram struct {
	Version     int          `cbor:"1,keyasint"`
	Language    string       `cbor:"2,keyasint,omitempty"`
	Description string       `cbor:"3,keyasint,omitempty"`
	Classes     []*wireClass `cbor:"4,keyasint,omitempty"`
}

type wireClass struct {
	Name    string        `cbor:"1,keyasint"`
	Parent  string        `cbor:"2,keyasint,omitempty"`
	Methods []*wireMethod `cbor:"3,keyasint,omitempty"`
}

type wireMethod struct {
	Selector string     `cbor:"1,keyasint"`
	Body     *wireBlock `cbor:"2,keyasint"`
}

type wireBlock struct {
	Arity       int           `cbor:"1,keyasint"`
	Parameters  []*Parameter  `cbor:"2,keyasint,omitempty"`
	Assignments []*wireAssign `cbor:"3,keyasint,omitempty"`
}

type wireAssign struct {
	Order  int       `cbor:"1,keyasint"`
	Target string    `cbor:"2,keyasint"`
	Expr   *wireExpr `cbor:"3,keyasint"`
}

type wireExpr struct {
	Kind     uint8       `cbor:"1,keyasint"`
	Type     string      `cbor:"2,keyasint,omitempty"`
	Value    string      `cbor:"3,keyasint,omitempty"`
	Name     string      `cbor:"4,keyasint,omitempty"`
	Selector string      `cbor:"5,keyasint,omitempty"`
	Receiver *wireExpr   `cbor:"6,keyasint,omitempty"`
	Args     []*wireExpr `cbor:"7,keyasint,omitempty"`
	Block    *wireBlock  `cbor:"8,keyasint,omitempty"`
}

// MarshalProgram serializes a Program to canonical CBOR bytes.
// Identical programs always produce identical bytes.
func MarshalProgram(p *Program) ([]byte, error) {
	w := &wireProgram{
		Version:     imageVersion,
		Language:    p.Language,
		Description: p.Description,
	}
	for _, c := range p.Classes {
		wc := &wireClass{Name: c.Name, Parent: c.Parent}
		for _, m := range c.Methods {
			wb, err := toWireBlock(m.Body)
			if err != nil {
				return nil, fmt.Errorf("ast: method %s>>%s: %w", c.Name, m.Selector, err)
			}
			wc.Methods = append(wc.Methods, &wireMethod{Selector: m.Selector, Body: wb})
		}
		w.Classes = append(w.Classes, wc)
	}
	return cborEncMode.Marshal(w)
}

// UnmarshalProgram deserializes a Program from CBOR bytes.
func UnmarshalProgram(data []byte) (*Program, error) {
	var w wireProgram
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("ast: unmarshal program: %w", err)
	}
	if w.Version != imageVersion {
		return nil, fmt.Errorf("ast: unsupported image version %d", w.Version)
	}
	p := &Program{Language: w.Language, Description: w.Description}
	for _, wc := range w.Classes {
		c := &Class{Name: wc.Name, Parent: wc.Parent}
		for _, wm := range wc.Methods {
			b, err := fromWireBlock(wm.Body)
			if err != nil {
				return nil, fmt.Errorf("ast: method %s>>%s: %w", wc.Name, wm.Selector, err)
			}
			c.Methods = append(c.Methods, &Method{Selector: wm.Selector, Body: b})
		}
		p.Classes = append(p.Classes, c)
	}
	return p, nil
}

func toWireBlock(b *Block) (*wireBlock, error) {
	if b == nil {
		return nil, fmt.Errorf("missing block")
	}
	wb := &wireBlock{Arity: b.Arity, Parameters: b.Parameters}
	for _, a := range b.Assignments {
		we, err := toWireExpr(a.Expr)
		if err != nil {
			return nil, err
		}
		wb.Assignments = append(wb.Assignments, &wireAssign{Order: a.Order, Target: a.Target, Expr: we})
	}
	return wb, nil
}

func toWireExpr(e Expr) (*wireExpr, error) {
	switch n := e.(type) {
	case *Literal:
		return &wireExpr{Kind: wireLiteral, Type: n.Type, Value: n.Value}, nil
	case *Variable:
		return &wireExpr{Kind: wireVariable, Name: n.Name}, nil
	case *Send:
		recv, err := toWireExpr(n.Receiver)
		if err != nil {
			return nil, err
		}
		we := &wireExpr{Kind: wireSend, Selector: n.Selector, Receiver: recv}
		for _, a := range n.Args {
			wa, err := toWireExpr(a)
			if err != nil {
				return nil, err
			}
			we.Args = append(we.Args, wa)
		}
		return we, nil
	case *BlockLiteral:
		wb, err := toWireBlock(n.Block)
		if err != nil {
			return nil, err
		}
		return &wireExpr{Kind: wireBlockLit, Block: wb}, nil
	}
	return nil, fmt.Errorf("unknown expression %T", e)
}

func fromWireBlock(wb *wireBlock) (*Block, error) {
	if wb == nil {
		return nil, fmt.Errorf("missing block")
	}
	b := &Block{Arity: wb.Arity, Parameters: wb.Parameters}
	for _, wa := range wb.Assignments {
		e, err := fromWireExpr(wa.Expr)
		if err != nil {
			return nil, err
		}
		b.Assignments = append(b.Assignments, &Assignment{Order: wa.Order, Target: wa.Target, Expr: e})
	}
	return b, nil
}

func fromWireExpr(we *wireExpr) (Expr, error) {
	if we == nil {
		return nil, fmt.Errorf("missing expression")
	}
	switch we.Kind {
	case wireLiteral:
		return &Literal{Type: we.Type, Value: we.Value}, nil
	case wireVariable:
		return &Variable{Name: we.Name}, nil
	case wireSend:
		recv, err := fromWireExpr(we.Receiver)
		if err != nil {
			return nil, err
		}
		s := &Send{Selector: we.Selector, Receiver: recv}
		for _, wa := range we.Args {
			a, err := fromWireExpr(wa)
			if err != nil {
				return nil, err
			}
			s.Args = append(s.Args, a)
		}
		return s, nil
	case wireBlockLit:
		b, err := fromWireBlock(we.Block)
		if err != nil {
			return nil, err
		}
		return &BlockLiteral{Block: b}, nil
	}
	return nil, fmt.Errorf("unknown expression kind %d", we.Kind)
}
