package symtab

import (
	"slices"

	"go.lsp.dev/protocol"

	"github.com/arjunmahishi/tsls/span"
)

// GetTopLevelSymbols returns the root scope's symbols, unfiltered.
func (t *SymbolTable) GetTopLevelSymbols() *Symbols {
	root := t.Scope(t.Root())
	if root == nil {
		return nil
	}
	out := &Symbols{table: t}
	out.merge(&root.Symbols, nil)
	return out
}

// ScopeAt returns the chain of scopes entered to reach pos, root first.
// A child scope is entered when its range contains pos.
func (t *SymbolTable) ScopeAt(pos protocol.Position) []ScopeID {
	scope := t.Scope(t.Root())
	if scope == nil {
		return nil
	}
	chain := []ScopeID{scope.ID}
	for {
		next := NoScopeID
		for _, child := range scope.Children {
			if span.Contains(t.scopes[child].Range, pos) {
				next = child
				break
			}
		}
		if !next.IsValid() {
			return chain
		}
		chain = append(chain, next)
		scope = &t.scopes[next]
	}
}

// visible returns the symbols each scope of the chain contributes at pos.
// The root contributes all of its symbols; every entered scope contributes
// only those whose declaration ends before pos.
func (t *SymbolTable) visible(pos protocol.Position) []*Symbols {
	chain := t.ScopeAt(pos)
	out := make([]*Symbols, 0, len(chain))
	for i, id := range chain {
		s := &Symbols{table: t}
		if i == 0 {
			s.merge(&t.scopes[id].Symbols, nil)
		} else {
			s.merge(&t.scopes[id].Symbols, func(sym *Symbol) bool {
				return span.Before(sym.Range.End, pos)
			})
		}
		out = append(out, s)
	}
	return out
}

// GetSymbolsInScope returns every symbol visible at pos, outermost scope
// first. It returns nil for an empty table.
func (t *SymbolTable) GetSymbolsInScope(pos protocol.Position) *Symbols {
	levels := t.visible(pos)
	if len(levels) == 0 {
		return nil
	}
	out := &Symbols{table: t}
	for _, level := range levels {
		out.merge(level, nil)
	}
	return out
}

// GetSymbolAtPos resolves name as seen from pos. The innermost scope wins;
// inside one scope variables shadow constants, then functions, then types.
func (t *SymbolTable) GetSymbolAtPos(name string, pos protocol.Position) (*Symbol, bool) {
	levels := t.visible(pos)
	for i := len(levels) - 1; i >= 0; i-- {
		if sym, ok := levels[i].Find(name); ok {
			return sym, true
		}
	}
	return nil, false
}

// SymbolAtRange returns the symbol whose name or one of whose usages covers
// pos. A position just past the end of an identifier still counts.
func (t *SymbolTable) SymbolAtRange(pos protocol.Position) (*Symbol, bool) {
	if t == nil {
		return nil, false
	}
	for i := 1; i < len(t.symbols); i++ {
		sym := &t.symbols[i]
		if span.ContainsInclusive(sym.NameRange, pos) {
			return sym, true
		}
		for _, u := range sym.Usages {
			if span.ContainsInclusive(u, pos) {
				return sym, true
			}
		}
	}
	return nil, false
}

// SymbolWithRange returns the symbol whose name or one of whose usages
// covers exactly r.
func (t *SymbolTable) SymbolWithRange(r protocol.Range) (*Symbol, bool) {
	if t == nil {
		return nil, false
	}
	for i := 1; i < len(t.symbols); i++ {
		sym := &t.symbols[i]
		if sym.NameRange == r || slices.Contains(sym.Usages, r) {
			return sym, true
		}
	}
	return nil, false
}
