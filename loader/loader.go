// Package loader reads SOL-XML, the XML form of a SOL25 program, into an
// ast.Program.
//
// The document is checked structurally only: every element the engine
// needs must be present with its required attributes. Class names,
// selectors and arity are left to the vm package.
package loader

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/tliron/commonlog"

	"github.com/chazu/sol/pkg/ast"
	"github.com/chazu/sol/vm"
)

var log = commonlog.GetLogger("sol.loader")

// Error reports a structurally invalid document. Its status is 42.
type Error struct {
	Element string
	Msg     string
}

func (e *Error) Error() string {
	if e.Element == "" {
		return fmt.Sprintf("malformed program: %s", e.Msg)
	}
	return fmt.Sprintf("malformed program: <%s>: %s", e.Element, e.Msg)
}

// Status returns vm.StatusMalformed.
func (e *Error) Status() int { return vm.StatusMalformed }

func malformed(element, format string, args ...any) *Error {
	return &Error{Element: element, Msg: fmt.Sprintf(format, args...)}
}

// node is a generic element; SOL-XML carries all data in attributes.
type node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []*node    `xml:",any"`
}

func (n *node) name() string { return n.XMLName.Local }

func (n *node) attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func (n *node) required(name string) (string, error) {
	v, ok := n.attr(name)
	if !ok || v == "" {
		return "", malformed(n.name(), "missing %s attribute", name)
	}
	return v, nil
}

func (n *node) intAttr(name string) (int, error) {
	v, err := n.required(name)
	if err != nil {
		return 0, err
	}
	i, err := strconv.Atoi(v)
	if err != nil || i < 0 {
		return 0, malformed(n.name(), "%s attribute %q is not a non-negative integer", name, v)
	}
	return i, nil
}

// ---------------------------------------------------------------------------
// Entry points
// ---------------------------------------------------------------------------

// Load reads a SOL-XML document from r.
func Load(r io.Reader) (*ast.Program, error) {
	var root node
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		return nil, malformed("", "not well-formed XML: %v", err)
	}
	p, err := buildProgram(&root)
	if err != nil {
		return nil, err
	}
	log.Debugf("loaded program with %d classes", len(p.Classes))
	return p, nil
}

// LoadFile reads a SOL-XML document from path.
func LoadFile(path string) (*ast.Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// ---------------------------------------------------------------------------
// Tree construction
// ---------------------------------------------------------------------------

func buildProgram(n *node) (*ast.Program, error) {
	if n.name() != "program" {
		return nil, malformed(n.name(), "root element must be <program>")
	}
	lang, _ := n.attr("language")
	if lang != ast.Language {
		return nil, malformed("program", "unsupported language %q", lang)
	}
	desc, _ := n.attr("description")

	p := &ast.Program{Language: lang, Description: desc}
	for _, c := range n.Children {
		if c.name() != "class" {
			return nil, malformed(c.name(), "unexpected element in <program>")
		}
		cls, err := buildClass(c)
		if err != nil {
			return nil, err
		}
		p.Classes = append(p.Classes, cls)
	}
	return p, nil
}

func buildClass(n *node) (*ast.Class, error) {
	name, err := n.required("name")
	if err != nil {
		return nil, err
	}
	parent, _ := n.attr("parent")

	c := &ast.Class{Name: name, Parent: parent}
	for _, m := range n.Children {
		if m.name() != "method" {
			continue
		}
		method, err := buildMethod(m)
		if err != nil {
			return nil, err
		}
		c.Methods = append(c.Methods, method)
	}
	return c, nil
}

func buildMethod(n *node) (*ast.Method, error) {
	sel, err := n.required("selector")
	if err != nil {
		return nil, err
	}
	var body *ast.Block
	for _, c := range n.Children {
		if c.name() != "block" {
			continue
		}
		if body != nil {
			return nil, malformed("method", "%s has more than one <block>", sel)
		}
		if body, err = buildBlock(c); err != nil {
			return nil, err
		}
	}
	if body == nil {
		return nil, malformed("method", "%s has no <block>", sel)
	}
	return &ast.Method{Selector: sel, Body: body}, nil
}

func buildBlock(n *node) (*ast.Block, error) {
	arity, err := n.intAttr("arity")
	if err != nil {
		return nil, err
	}
	b := &ast.Block{Arity: arity}
	for _, c := range n.Children {
		switch c.name() {
		case "parameter":
			name, err := c.required("name")
			if err != nil {
				return nil, err
			}
			order, err := c.intAttr("order")
			if err != nil {
				return nil, err
			}
			b.Parameters = append(b.Parameters, &ast.Parameter{Order: order, Name: name})
		case "assign":
			a, err := buildAssign(c)
			if err != nil {
				return nil, err
			}
			b.Assignments = append(b.Assignments, a)
		}
	}
	b.Sort()
	return b, nil
}

func buildAssign(n *node) (*ast.Assignment, error) {
	order, err := n.intAttr("order")
	if err != nil {
		return nil, err
	}
	a := &ast.Assignment{Order: order}
	for _, c := range n.Children {
		switch c.name() {
		case "var":
			if a.Target, err = c.required("name"); err != nil {
				return nil, err
			}
		case "expr":
			if a.Expr, err = buildExpr(c); err != nil {
				return nil, err
			}
		}
	}
	if a.Target == "" {
		return nil, malformed("assign", "missing <var>")
	}
	if a.Expr == nil {
		return nil, malformed("assign", "missing <expr>")
	}
	return a, nil
}

// buildExpr converts an <expr> wrapper holding exactly one expression.
func buildExpr(n *node) (ast.Expr, error) {
	if len(n.Children) != 1 {
		return nil, malformed("expr", "expected exactly one child, got %d", len(n.Children))
	}
	c := n.Children[0]
	switch c.name() {
	case "literal":
		return buildLiteral(c)
	case "var":
		name, err := c.required("name")
		if err != nil {
			return nil, err
		}
		return &ast.Variable{Name: name}, nil
	case "send":
		return buildSend(c)
	case "block":
		b, err := buildBlock(c)
		if err != nil {
			return nil, err
		}
		return &ast.BlockLiteral{Block: b}, nil
	}
	return nil, malformed("expr", "unknown element <%s>", c.name())
}

func buildLiteral(n *node) (*ast.Literal, error) {
	class, err := n.required("class")
	if err != nil {
		return nil, err
	}
	value, ok := n.attr("value")
	if !ok {
		return nil, malformed("literal", "missing value attribute")
	}
	if class == ast.TypeString {
		value = Unescape(value)
	}
	return &ast.Literal{Type: class, Value: value}, nil
}

func buildSend(n *node) (*ast.Send, error) {
	sel, err := n.required("selector")
	if err != nil {
		return nil, err
	}
	s := &ast.Send{Selector: sel}

	type orderedArg struct {
		order int
		expr  ast.Expr
	}
	var args []orderedArg
	for _, c := range n.Children {
		switch c.name() {
		case "expr":
			if s.Receiver != nil {
				return nil, malformed("send", "%s has more than one receiver", sel)
			}
			if s.Receiver, err = buildExpr(c); err != nil {
				return nil, err
			}
		case "arg":
			order, err := c.intAttr("order")
			if err != nil {
				return nil, err
			}
			if len(c.Children) != 1 || c.Children[0].name() != "expr" {
				return nil, malformed("arg", "expected a single <expr>")
			}
			e, err := buildExpr(c.Children[0])
			if err != nil {
				return nil, err
			}
			args = append(args, orderedArg{order, e})
		}
	}
	if s.Receiver == nil {
		return nil, malformed("send", "%s has no receiver", sel)
	}
	if len(args) != vm.SelectorArity(sel) {
		return nil, malformed("send", "%s takes %d argument(s), got %d", sel, vm.SelectorArity(sel), len(args))
	}

	sort.SliceStable(args, func(i, j int) bool { return args[i].order < args[j].order })
	for _, a := range args {
		s.Args = append(s.Args, a.expr)
	}
	return s, nil
}
