package document

import (
	"sort"

	"go.lsp.dev/protocol"

	"github.com/arjunmahishi/tsls/ast"
	"github.com/arjunmahishi/tsls/span"
	"github.com/arjunmahishi/tsls/symtab"
)

// DocumentSymbols returns the file outline. A symbol whose declaration opens
// a scope (a function, say) holds the symbols of that scope and of every
// unnamed scope nested in it.
func (s *Snapshot) DocumentSymbols() []protocol.DocumentSymbol {
	return s.outline(s.Table.Root())
}

func (s *Snapshot) outline(id symtab.ScopeID) []protocol.DocumentSymbol {
	scope := s.Table.Scope(id)
	if scope == nil {
		return nil
	}

	owned := make(map[ast.NodeID]symtab.ScopeID, len(scope.Children))
	for _, child := range scope.Children {
		owned[s.Table.Scope(child).Node] = child
	}

	var out []protocol.DocumentSymbol
	claimed := make(map[symtab.ScopeID]bool)
	for _, sym := range scope.Symbols.All() {
		ds := protocol.DocumentSymbol{
			Name:           sym.Name,
			Detail:         sym.Type,
			Kind:           SymbolKind(sym.Category),
			Range:          sym.Range,
			SelectionRange: sym.NameRange,
		}
		if child, ok := owned[sym.Node]; ok {
			ds.Children = s.outline(child)
			claimed[child] = true
		}
		out = append(out, ds)
	}
	for _, child := range scope.Children {
		if !claimed[child] {
			out = append(out, s.outline(child)...)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return span.Before(out[i].Range.Start, out[j].Range.Start)
	})
	return out
}

// SymbolKind maps a category to the LSP outline kind.
func SymbolKind(c symtab.Category) protocol.SymbolKind {
	switch c {
	case symtab.Types:
		return protocol.SymbolKindStruct
	case symtab.Constants:
		return protocol.SymbolKindConstant
	case symtab.Variables:
		return protocol.SymbolKindVariable
	case symtab.Functions:
		return protocol.SymbolKindFunction
	}
	return protocol.SymbolKindNull
}
