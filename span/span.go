// Package span orders LSP positions and ranges.
//
// Ranges are half-open: a range contains its start position and excludes its
// end position, matching tree-sitter's end points.
package span

import (
	sitter "github.com/smacker/go-tree-sitter"
	"go.lsp.dev/protocol"
)

// Compare returns -1, 0 or 1 when a is before, equal to or after b.
func Compare(a, b protocol.Position) int {
	switch {
	case a.Line < b.Line:
		return -1
	case a.Line > b.Line:
		return 1
	case a.Character < b.Character:
		return -1
	case a.Character > b.Character:
		return 1
	}
	return 0
}

// Before reports whether a is strictly before b.
func Before(a, b protocol.Position) bool {
	return Compare(a, b) < 0
}

// Contains reports whether pos lies in [r.Start, r.End).
func Contains(r protocol.Range, pos protocol.Position) bool {
	return Compare(r.Start, pos) <= 0 && Compare(pos, r.End) < 0
}

// ContainsInclusive reports whether pos lies in [r.Start, r.End]. Cursor
// positions right after an identifier still refer to it.
func ContainsInclusive(r protocol.Range, pos protocol.Position) bool {
	return Compare(r.Start, pos) <= 0 && Compare(pos, r.End) <= 0
}

// Encloses reports whether outer fully covers inner.
func Encloses(outer, inner protocol.Range) bool {
	return Compare(outer.Start, inner.Start) <= 0 && Compare(inner.End, outer.End) <= 0
}

// Pos builds a position from zero-based line and column.
func Pos(line, character int) protocol.Position {
	return protocol.Position{Line: uint32(line), Character: uint32(character)}
}

// Range builds a range from zero-based line/column pairs.
func Range(startLine, startChar, endLine, endChar int) protocol.Range {
	return protocol.Range{Start: Pos(startLine, startChar), End: Pos(endLine, endChar)}
}

// FromPoints converts tree-sitter points. Columns stay in bytes.
func FromPoints(start, end sitter.Point) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: start.Row, Character: start.Column},
		End:   protocol.Position{Line: end.Row, Character: end.Column},
	}
}
