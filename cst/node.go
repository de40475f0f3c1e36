// Package cst adapts the upstream tree-sitter parser. The translator only sees
// the Node interface, so any concrete syntax tree with kinds, fields and
// ranges can be translated.
package cst

import (
	sitter "github.com/smacker/go-tree-sitter"
	"go.lsp.dev/protocol"

	"github.com/arjunmahishi/tsls/span"
)

// Node is one concrete syntax tree node.
type Node interface {
	// Kind is the grammar's node type, e.g. "const_declaration".
	Kind() string
	Range() protocol.Range
	// Content returns the node's slice of source.
	Content(source []byte) string
	ChildCount() int
	Child(i int) Node
	// FieldNameForChild returns the grammar field of the i-th child, or "".
	FieldNameForChild(i int) string
	IsNamed() bool
	// IsError reports ERROR and MISSING nodes.
	IsError() bool
	// HasError reports whether the subtree contains an error.
	HasError() bool
}

type sitterNode struct {
	n *sitter.Node
}

// Wrap adapts a tree-sitter node. A nil node yields nil.
func Wrap(n *sitter.Node) Node {
	if n == nil {
		return nil
	}
	return sitterNode{n: n}
}

func (s sitterNode) Kind() string { return s.n.Type() }

func (s sitterNode) Range() protocol.Range {
	return span.FromPoints(s.n.StartPoint(), s.n.EndPoint())
}

func (s sitterNode) Content(source []byte) string { return s.n.Content(source) }

func (s sitterNode) ChildCount() int { return int(s.n.ChildCount()) }

func (s sitterNode) Child(i int) Node { return Wrap(s.n.Child(i)) }

func (s sitterNode) FieldNameForChild(i int) string { return s.n.FieldNameForChild(i) }

func (s sitterNode) IsNamed() bool { return s.n.IsNamed() }

func (s sitterNode) IsError() bool { return s.n.Type() == "ERROR" || s.n.IsMissing() }

func (s sitterNode) HasError() bool { return s.n.HasError() }
