// Package vm implements the SOL execution engine.
//
// This package contains:
//   - Lexical scopes with read-only bindings
//   - The object model (plain instances plus the built-in value kinds)
//   - Classes, method tables and the class registry
//   - The tree-walking evaluator and block (closure) execution
//   - Message dispatch and the built-in primitive classes
//
// A VM is a self-contained context: it owns its class table, the Nil, True
// and False singletons and the I/O collaborators used by String>>read and
// String>>print. Evaluation is single-threaded and synchronous.
package vm
