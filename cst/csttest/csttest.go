// Package csttest builds concrete syntax trees by hand for tests that should
// not depend on a particular tree-sitter grammar.
package csttest

import (
	"strings"

	"go.lsp.dev/protocol"

	"github.com/arjunmahishi/tsls/cst"
)

// Node is a hand-built cst.Node.
type Node struct {
	Type    string
	Rng     protocol.Range
	Text    string // overrides slicing the source when set
	Anon    bool
	Error   bool
	kids    []*Node
	fields  []string
	missing bool
}

var _ cst.Node = (*Node)(nil)

// N creates a named node with children.
func N(kind string, rng protocol.Range, children ...*Node) *Node {
	n := &Node{Type: kind, Rng: rng}
	for _, c := range children {
		n.Add("", c)
	}
	return n
}

// Add appends child under field ("" for none) and returns n.
func (n *Node) Add(field string, child *Node) *Node {
	n.kids = append(n.kids, child)
	n.fields = append(n.fields, field)
	return n
}

// F appends child under a grammar field and returns n.
func (n *Node) F(field string, child *Node) *Node {
	return n.Add(field, child)
}

// Missing marks the node as inserted by error recovery.
func (n *Node) Missing() *Node {
	n.missing = true
	return n
}

func (n *Node) Kind() string { return n.Type }

func (n *Node) Range() protocol.Range { return n.Rng }

func (n *Node) Content(source []byte) string {
	if n.Text != "" {
		return n.Text
	}
	start, ok1 := Offset(source, n.Rng.Start)
	end, ok2 := Offset(source, n.Rng.End)
	if !ok1 || !ok2 || end < start {
		return ""
	}
	return string(source[start:end])
}

func (n *Node) ChildCount() int { return len(n.kids) }

func (n *Node) Child(i int) cst.Node {
	if i < 0 || i >= len(n.kids) {
		return nil
	}
	return n.kids[i]
}

func (n *Node) FieldNameForChild(i int) string {
	if i < 0 || i >= len(n.fields) {
		return ""
	}
	return n.fields[i]
}

func (n *Node) IsNamed() bool { return !n.Anon }

func (n *Node) IsError() bool { return n.Error || n.missing || n.Type == "ERROR" }

func (n *Node) HasError() bool {
	if n.IsError() {
		return true
	}
	for _, k := range n.kids {
		if k.HasError() {
			return true
		}
	}
	return false
}

// Offset converts a line/column position to a byte offset in source.
func Offset(source []byte, pos protocol.Position) (int, bool) {
	offset := 0
	for line := uint32(0); line < pos.Line; line++ {
		i := strings.IndexByte(string(source[offset:]), '\n')
		if i < 0 {
			return 0, false
		}
		offset += i + 1
	}
	offset += int(pos.Character)
	if offset > len(source) {
		return 0, false
	}
	return offset, true
}

// Find returns the range of the n-th (zero-based) occurrence of substr.
// It panics when there is no such occurrence, which is a broken test.
func Find(source, substr string, nth int) protocol.Range {
	from := 0
	for {
		i := strings.Index(source[from:], substr)
		if i < 0 {
			panic("csttest: " + substr + " not found")
		}
		if nth == 0 {
			return protocol.Range{Start: position(source, from+i), End: position(source, from+i+len(substr))}
		}
		nth--
		from += i + len(substr)
	}
}

func position(source string, offset int) protocol.Position {
	line := strings.Count(source[:offset], "\n")
	col := offset - (strings.LastIndexByte(source[:offset], '\n') + 1)
	return protocol.Position{Line: uint32(line), Character: uint32(col)}
}
