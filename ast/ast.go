package ast

import (
	"strconv"
	"strings"

	"go.lsp.dev/protocol"

	"github.com/arjunmahishi/tsls/span"
)

// Root returns the root node ID, or NoNodeID for an empty tree.
func (a *Ast) Root() NodeID {
	if a == nil {
		return NoNodeID
	}
	return a.root
}

// Len reports the number of nodes.
func (a *Ast) Len() int {
	if a == nil {
		return 0
	}
	return len(a.nodes) - 1
}

// Get returns the node for id, or nil. The node must not be modified.
func (a *Ast) Get(id NodeID) *Node {
	if a == nil || !id.IsValid() || int(id) >= len(a.nodes) {
		return nil
	}
	return &a.nodes[id]
}

// Children returns the child IDs of id in source order.
func (a *Ast) Children(id NodeID) []NodeID {
	if n := a.Get(id); n != nil {
		return n.Children
	}
	return nil
}

// ChildOfKind returns the first direct child of the given kind.
func (a *Ast) ChildOfKind(id NodeID, kind NodeKind) (NodeID, bool) {
	for _, child := range a.Children(id) {
		if a.nodes[child].Kind == kind {
			return child, true
		}
	}
	return NoNodeID, false
}

// Usages returns the name references recorded during translation.
func (a *Ast) Usages() []Usage {
	if a == nil {
		return nil
	}
	return a.usages
}

// SubscopeIDs returns the nearest descendants of id whose kind opens a scope.
// Descent stops at each scope so nested scopes are never skipped over.
func (a *Ast) SubscopeIDs(id NodeID, isScope func(NodeKind) bool) []NodeID {
	var out []NodeID
	var visit func(NodeID)
	visit = func(n NodeID) {
		for _, child := range a.Children(n) {
			if isScope(a.nodes[child].Kind) {
				out = append(out, child)
				continue
			}
			visit(child)
		}
	}
	visit(id)
	return out
}

// Walk visits id and its descendants depth first. Returning false from fn
// skips the node's children.
func (a *Ast) Walk(id NodeID, fn func(id NodeID, depth int) bool) {
	var visit func(NodeID, int)
	visit = func(n NodeID, depth int) {
		if a.Get(n) == nil || !fn(n, depth) {
			return
		}
		for _, child := range a.nodes[n].Children {
			visit(child, depth+1)
		}
	}
	visit(id, 0)
}

// NodeAt returns the innermost node whose range contains pos.
func (a *Ast) NodeAt(pos protocol.Position) (NodeID, bool) {
	found := NoNodeID
	a.Walk(a.Root(), func(id NodeID, _ int) bool {
		if !span.ContainsInclusive(a.nodes[id].Range, pos) {
			return false
		}
		found = id
		return true
	})
	return found, found.IsValid()
}

// String renders the tree one node per line, indented by depth. Leaf nodes
// show their text.
func (a *Ast) String() string {
	if a.Root() == NoNodeID {
		return "(empty)"
	}
	var sb strings.Builder
	a.Walk(a.Root(), func(id NodeID, depth int) bool {
		n := &a.nodes[id]
		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString(n.Kind.String())
		sb.WriteString(" ")
		sb.WriteString(span.FormatRange(n.Range))
		if len(n.Children) == 0 {
			sb.WriteString(" ")
			sb.WriteString(strconv.Quote(n.Content))
		}
		sb.WriteString("\n")
		return true
	})
	return strings.TrimSuffix(sb.String(), "\n")
}
