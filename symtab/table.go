// Package symtab builds the scope-structured symbol table of one file from
// its AST and answers position-aware lookups against it.
//
// Scopes mirror the nesting of scope-opening AST nodes. Declarations in the
// root scope are visible everywhere in the file. Declarations in a nested
// scope are visible only after their declaration ends.
package symtab

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
	"go.lsp.dev/protocol"

	"github.com/arjunmahishi/tsls/ast"
	"github.com/arjunmahishi/tsls/diag"
	"github.com/arjunmahishi/tsls/span"
)

// ScopeSymbolTable holds the declarations of one scope-opening AST node.
type ScopeSymbolTable struct {
	ID       ScopeID
	Node     ast.NodeID
	Kind     ast.NodeKind
	Range    protocol.Range
	Symbols  Symbols
	Children []ScopeID
}

// Error is a declaration that could not be put into a category.
type Error struct {
	Range  protocol.Range
	Kind   ast.NodeKind
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %s: %s", e.Kind, span.FormatRange(e.Range), e.Reason)
}

// SymbolTable is an arena of scopes and symbols. Index 0 of both arenas is
// reserved for the invalid ID.
type SymbolTable struct {
	scopes  []ScopeSymbolTable
	symbols []Symbol
	root    ScopeID
	errors  []Error
}

func newTable() *SymbolTable {
	return &SymbolTable{
		scopes:  make([]ScopeSymbolTable, 1, 8),
		symbols: make([]Symbol, 1, 32),
	}
}

func (t *SymbolTable) newScope(node ast.NodeID, n *ast.Node) ScopeID {
	value, err := safecast.Conv[uint32](len(t.scopes))
	if err != nil {
		panic(fmt.Errorf("scope arena overflow: %w", err))
	}
	id := ScopeID(value)
	t.scopes = append(t.scopes, ScopeSymbolTable{
		ID:      id,
		Node:    node,
		Kind:    n.Kind,
		Range:   n.Range,
		Symbols: Symbols{table: t},
	})
	return id
}

func (t *SymbolTable) newSymbol(sym Symbol) SymbolID {
	value, err := safecast.Conv[uint32](len(t.symbols))
	if err != nil {
		panic(fmt.Errorf("symbol arena overflow: %w", err))
	}
	sym.ID = SymbolID(value)
	t.symbols = append(t.symbols, sym)
	return sym.ID
}

// Root returns the whole-file scope, or NoScopeID for an empty table.
func (t *SymbolTable) Root() ScopeID {
	if t == nil {
		return NoScopeID
	}
	return t.root
}

// Scope returns the scope for id, or nil.
func (t *SymbolTable) Scope(id ScopeID) *ScopeSymbolTable {
	if t == nil || !id.IsValid() || int(id) >= len(t.scopes) {
		return nil
	}
	return &t.scopes[id]
}

// Symbol returns the symbol for id, or nil.
func (t *SymbolTable) Symbol(id SymbolID) *Symbol {
	if t == nil || !id.IsValid() || int(id) >= len(t.symbols) {
		return nil
	}
	return &t.symbols[id]
}

// SymbolByID is Symbol with an ok result.
func (t *SymbolTable) SymbolByID(id SymbolID) (*Symbol, bool) {
	sym := t.Symbol(id)
	return sym, sym != nil
}

// Len reports the number of symbols.
func (t *SymbolTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.symbols) - 1
}

// Errors returns the declarations that could not be classified.
func (t *SymbolTable) Errors() []Error {
	if t == nil {
		return nil
	}
	return t.errors
}

// Diagnostics converts Errors to diagnostics.
func (t *SymbolTable) Diagnostics() []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, e := range t.Errors() {
		out = append(out, diag.Warningf(diag.SymbolClassification, e.Range, "%s: %s", e.Kind, e.Reason))
	}
	return out
}

// Clone returns a deep copy that can be edited without affecting t.
func (t *SymbolTable) Clone() *SymbolTable {
	if t == nil {
		return nil
	}
	c := &SymbolTable{
		scopes:  make([]ScopeSymbolTable, len(t.scopes)),
		symbols: make([]Symbol, len(t.symbols)),
		root:    t.root,
		errors:  append([]Error(nil), t.errors...),
	}
	for i, s := range t.scopes {
		s.Children = append([]ScopeID(nil), s.Children...)
		ids := s.Symbols.ids
		s.Symbols = Symbols{table: c}
		for cat := range ids {
			s.Symbols.ids[cat] = append([]SymbolID(nil), ids[cat]...)
		}
		c.scopes[i] = s
	}
	for i, sym := range t.symbols {
		sym.Usages = append([]protocol.Range(nil), sym.Usages...)
		c.symbols[i] = sym
	}
	return c
}

// String renders the scope tree with its symbols, one per line.
func (t *SymbolTable) String() string {
	if t.Root() == NoScopeID {
		return "(empty)"
	}
	var sb strings.Builder
	var visit func(ScopeID, int)
	visit = func(id ScopeID, depth int) {
		scope := t.Scope(id)
		indent := strings.Repeat("  ", depth)
		fmt.Fprintf(&sb, "%s%s %s\n", indent, scope.Kind, span.FormatRange(scope.Range))
		for _, sym := range scope.Symbols.All() {
			fmt.Fprintf(&sb, "%s  %s %s", indent, sym.Category, sym.Name)
			if sym.Type != "" {
				fmt.Fprintf(&sb, " (%s)", sym.Type)
			}
			fmt.Fprintf(&sb, " %s", span.FormatRange(sym.Range))
			for _, u := range sym.Usages {
				fmt.Fprintf(&sb, " %s", span.FormatRange(u))
			}
			sb.WriteString("\n")
		}
		for _, child := range scope.Children {
			visit(child, depth+1)
		}
	}
	visit(t.root, 0)
	return strings.TrimSuffix(sb.String(), "\n")
}
