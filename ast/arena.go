// Package ast holds the typed syntax tree produced by the translator.
//
// All nodes of one snapshot live in a single arena and are addressed by
// NodeID. Links only go from parent to children, so cycles cannot be built.
// An Ast is immutable once Finish returns; edits to the source produce a new
// Ast.
package ast

import (
	"fmt"

	"fortio.org/safecast"
	"go.lsp.dev/protocol"
)

// NodeID identifies a node inside one Ast.
type NodeID uint32

// NoNodeID marks the absence of a node.
const NoNodeID NodeID = 0

// IsValid reports whether the ID refers to an allocated node.
func (id NodeID) IsValid() bool { return id != NoNodeID }

// Node is one AST node.
type Node struct {
	Kind     NodeKind
	Range    protocol.Range
	Content  string
	Children []NodeID
}

// Usage is a reference to a name, resolved later against the symbol table.
type Usage struct {
	Name  string
	Range protocol.Range
}

// Ast is an arena-owned tree.
type Ast struct {
	nodes  []Node
	root   NodeID
	usages []Usage
}

// Builder constructs an Ast. It is not safe for concurrent use.
type Builder struct {
	ast      *Ast
	attached []bool
}

// NewBuilder creates a builder with an optional capacity hint.
func NewBuilder(capacity int) *Builder {
	if capacity <= 0 {
		capacity = 64
	}
	return &Builder{
		ast:      &Ast{nodes: make([]Node, 1, capacity+1)}, // index 0 reserved for NoNodeID
		attached: make([]bool, 1, capacity+1),
	}
}

// NewNode allocates a detached node and returns its ID.
func (b *Builder) NewNode(kind NodeKind, rng protocol.Range, content string) NodeID {
	value, err := safecast.Conv[uint32](len(b.ast.nodes))
	if err != nil {
		panic(fmt.Errorf("ast arena overflow: %w", err))
	}
	b.ast.nodes = append(b.ast.nodes, Node{Kind: kind, Range: rng, Content: content})
	b.attached = append(b.attached, false)
	return NodeID(value)
}

// Append attaches child as the last child of parent. A node can be attached
// once; attaching it again, or attaching the root, panics.
func (b *Builder) Append(parent, child NodeID) {
	if !b.valid(parent) || !b.valid(child) {
		panic(fmt.Sprintf("ast: append %d to %d: invalid node", child, parent))
	}
	if parent == child || b.attached[child] || child == b.ast.root {
		panic(fmt.Sprintf("ast: append %d to %d: node already in tree", child, parent))
	}
	b.attached[child] = true
	p := &b.ast.nodes[parent]
	p.Children = append(p.Children, child)
}

// SetRoot marks id as the tree root.
func (b *Builder) SetRoot(id NodeID) {
	if !b.valid(id) || b.attached[id] {
		panic(fmt.Sprintf("ast: invalid root %d", id))
	}
	b.ast.root = id
}

// AddUsage records a name reference.
func (b *Builder) AddUsage(u Usage) {
	b.ast.usages = append(b.ast.usages, u)
}

// Finish returns the built tree. The builder must not be used afterwards.
func (b *Builder) Finish() *Ast {
	a := b.ast
	b.ast = nil
	b.attached = nil
	return a
}

func (b *Builder) valid(id NodeID) bool {
	return id.IsValid() && int(id) < len(b.ast.nodes)
}
