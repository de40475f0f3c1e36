package document

import (
	"errors"
	"fmt"
	"strings"

	"go.lsp.dev/protocol"

	"github.com/arjunmahishi/tsls/span"
	"github.com/arjunmahishi/tsls/symtab"
)

// ErrNoSymbol is returned when a position does not name a known symbol.
var ErrNoSymbol = errors.New("no symbol at position")

// SymbolAt returns the symbol named at pos and the range of the name under
// the cursor. Declared names and resolved usages are tried first, then the
// AST leaf at pos is resolved by scope.
func (s *Snapshot) SymbolAt(pos protocol.Position) (*symtab.Symbol, protocol.Range, bool) {
	if sym, ok := s.Table.SymbolAtRange(pos); ok {
		if span.ContainsInclusive(sym.NameRange, pos) {
			return sym, sym.NameRange, true
		}
		for _, u := range sym.Usages {
			if span.ContainsInclusive(u, pos) {
				return sym, u, true
			}
		}
	}

	id, ok := s.Ast.NodeAt(pos)
	if !ok || id == s.Ast.Root() {
		return nil, protocol.Range{}, false
	}
	n := s.Ast.Get(id)
	name := strings.TrimSpace(n.Content)
	if len(n.Children) != 0 || name == "" || strings.ContainsAny(name, " \t\n") {
		return nil, protocol.Range{}, false
	}
	sym, ok := s.Table.GetSymbolAtPos(name, pos)
	return sym, n.Range, ok
}

// Describe renders a one-line summary of sym, e.g. "constant limit int".
func Describe(sym *symtab.Symbol) string {
	if sym.Type == "" {
		return fmt.Sprintf("%s %s", sym.Category, sym.Name)
	}
	return fmt.Sprintf("%s %s %s", sym.Category, sym.Name, sym.Type)
}

// Hover describes the symbol at pos.
func (s *Snapshot) Hover(pos protocol.Position) (*protocol.Hover, bool) {
	sym, rng, ok := s.SymbolAt(pos)
	if !ok {
		return nil, false
	}
	value := fmt.Sprintf("```\n%s\n```\ndeclared at %s", Describe(sym), span.FormatPos(sym.NameRange.Start))
	return &protocol.Hover{
		Contents: protocol.MarkupContent{Kind: protocol.Markdown, Value: value},
		Range:    &rng,
	}, true
}

// Completion lists the symbols visible at pos. Outside the file's range only
// top-level symbols are offered. A name shadowed in an inner scope is listed
// once, for the declaration that wins at pos.
func (s *Snapshot) Completion(pos protocol.Position) []protocol.CompletionItem {
	var visible *symtab.Symbols
	if root := s.Ast.Get(s.Ast.Root()); root != nil && span.ContainsInclusive(root.Range, pos) {
		visible = s.Table.GetSymbolsInScope(pos)
	} else {
		visible = s.Table.GetTopLevelSymbols()
	}

	var items []protocol.CompletionItem
	seen := make(map[string]bool)
	for _, sym := range visible.All() {
		if seen[sym.Name] {
			continue
		}
		seen[sym.Name] = true
		if resolved, ok := s.Table.GetSymbolAtPos(sym.Name, pos); ok {
			sym = resolved
		}
		items = append(items, protocol.CompletionItem{
			Label:  sym.Name,
			Kind:   s.completionKind(sym),
			Detail: sym.Type,
		})
	}
	return items
}

func (s *Snapshot) completionKind(sym *symtab.Symbol) protocol.CompletionItemKind {
	if category, ok := s.def.InitCategory(sym.Kind); ok {
		return s.def.CompletionKind(category)
	}
	return protocol.CompletionItemKindText
}

// Definition returns the declaration range of the symbol at pos.
func (s *Snapshot) Definition(pos protocol.Position) (protocol.Location, bool) {
	sym, _, ok := s.SymbolAt(pos)
	if !ok {
		return protocol.Location{}, false
	}
	return protocol.Location{URI: s.URI, Range: sym.Range}, true
}

// Rename returns the edits renaming the symbol at pos: its declared name and
// every resolved usage. The rename is applied to a copy of the table; the
// snapshot itself is unchanged and the caller rebuilds once the client has
// applied the edit.
func (s *Snapshot) Rename(pos protocol.Position, newName string) (*protocol.WorkspaceEdit, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, errors.New("rename: empty name")
	}
	sym, _, ok := s.SymbolAt(pos)
	if !ok {
		return nil, fmt.Errorf("rename at %s: %w", span.FormatPos(pos), ErrNoSymbol)
	}

	m := symtab.ManagerFor(s.Table.Clone(), s.def, nil)
	ranges, err := m.NewEdit(symtab.Rename{SymbolID: sym.ID, NewName: newName})
	if err != nil {
		return nil, fmt.Errorf("rename %s: %w", sym.Name, err)
	}

	edits := make([]protocol.TextEdit, 0, len(ranges))
	for _, r := range ranges {
		edits = append(edits, protocol.TextEdit{Range: r, NewText: newName})
	}
	return &protocol.WorkspaceEdit{
		Changes: map[protocol.DocumentURI][]protocol.TextEdit{s.URI: edits},
	}, nil
}
