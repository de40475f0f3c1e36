package symtab

import (
	"go.lsp.dev/protocol"

	"github.com/arjunmahishi/tsls/ast"
)

// Symbol is one declaration.
type Symbol struct {
	ID       SymbolID
	Name     string
	Category Category
	// Scope is the scope the symbol is declared in.
	Scope ScopeID
	// Node is the declaring AST node.
	Node ast.NodeID
	// Kind is the kind of the declaring node.
	Kind ast.NodeKind
	// Range covers the whole declaration.
	Range protocol.Range
	// NameRange covers the declared identifier.
	NameRange protocol.Range
	// Type is the text of the declaration's Type child, if any.
	Type   string
	Usages []protocol.Range
}

// Locations returns the name range followed by every usage range.
func (s *Symbol) Locations() []protocol.Range {
	out := make([]protocol.Range, 0, len(s.Usages)+1)
	out = append(out, s.NameRange)
	return append(out, s.Usages...)
}

// Symbols groups symbols by category. Order inside a category is
// declaration order.
type Symbols struct {
	table *SymbolTable
	ids   [numCategories][]SymbolID
}

func (s *Symbols) add(c Category, id SymbolID) {
	s.ids[c] = append(s.ids[c], id)
}

// IDs returns the symbol IDs of one category.
func (s *Symbols) IDs(c Category) []SymbolID {
	if s == nil || c >= numCategories {
		return nil
	}
	return s.ids[c]
}

// Get returns the symbols of one category.
func (s *Symbols) Get(c Category) []*Symbol {
	ids := s.IDs(c)
	if len(ids) == 0 {
		return nil
	}
	out := make([]*Symbol, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.table.Symbol(id))
	}
	return out
}

// All returns every symbol, category by category.
func (s *Symbols) All() []*Symbol {
	var out []*Symbol
	for _, c := range Categories {
		out = append(out, s.Get(c)...)
	}
	return out
}

// Names returns the name of every symbol in the order of All.
func (s *Symbols) Names() []string {
	var out []string
	for _, sym := range s.All() {
		out = append(out, sym.Name)
	}
	return out
}

// Len reports the number of symbols.
func (s *Symbols) Len() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, ids := range s.ids {
		n += len(ids)
	}
	return n
}

// Find returns the symbol named name, trying categories in lookup order and
// preferring the latest declaration within a category.
func (s *Symbols) Find(name string) (*Symbol, bool) {
	if s == nil {
		return nil, false
	}
	for _, c := range lookupOrder {
		ids := s.ids[c]
		for i := len(ids) - 1; i >= 0; i-- {
			if sym := s.table.Symbol(ids[i]); sym != nil && sym.Name == name {
				return sym, true
			}
		}
	}
	return nil, false
}

func (s *Symbols) merge(other *Symbols, keep func(*Symbol) bool) {
	for c := range other.ids {
		for _, id := range other.ids[c] {
			if keep == nil || keep(other.table.Symbol(id)) {
				s.ids[c] = append(s.ids[c], id)
			}
		}
	}
}
