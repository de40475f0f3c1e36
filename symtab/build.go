package symtab

import (
	"fmt"
	"slices"
	"strings"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/arjunmahishi/tsls/ast"
	"github.com/arjunmahishi/tsls/span"
)

// Classifier tells the builder which AST kinds open scopes and which declare
// symbols. *langdef.Definition implements it.
type Classifier interface {
	IsScope(kind ast.NodeKind) bool
	InitCategory(kind ast.NodeKind) (string, bool)
}

type builder struct {
	ast    *ast.Ast
	class  Classifier
	table  *SymbolTable
	logger *zap.Logger
}

// New builds the symbol table for a. A nil or empty AST yields an empty
// table. If logger is nil, logging is disabled.
func New(a *ast.Ast, class Classifier, logger *zap.Logger) *SymbolTable {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &builder{ast: a, class: class, table: newTable(), logger: logger}
	if !a.Root().IsValid() {
		return b.table
	}

	b.table.root = b.scope(a.Root())
	b.resolveUsages()

	logger.Debug("built symbol table",
		zap.Int("scopes", len(b.table.scopes)-1),
		zap.Int("symbols", b.table.Len()),
		zap.Int("errors", len(b.table.errors)))
	return b.table
}

func (b *builder) scope(node ast.NodeID) ScopeID {
	id := b.table.newScope(node, b.ast.Get(node))

	for _, child := range b.ast.Children(node) {
		n := b.ast.Get(child)
		category, ok := b.class.InitCategory(n.Kind)
		if !ok {
			continue
		}
		b.declare(id, child, n, category)
	}
	b.sortByPosition(id)

	for _, sub := range b.ast.SubscopeIDs(node, b.class.IsScope) {
		childID := b.scope(sub)
		// Re-fetch: the arena may have grown while building the subscope.
		scope := b.table.Scope(id)
		scope.Children = append(scope.Children, childID)
	}
	return id
}

// declare adds one symbol per Name child of node. Names declared together
// share the declaration's range and type.
func (b *builder) declare(scope ScopeID, node ast.NodeID, n *ast.Node, category string) {
	cat, ok := ParseCategory(category)
	if !ok {
		b.fail(n, fmt.Sprintf("unknown symbol category %q", category))
		return
	}

	var typ string
	if typeID, ok := b.ast.ChildOfKind(node, ast.KindType); ok {
		typ = strings.TrimSpace(b.ast.Get(typeID).Content)
	}

	named := false
	for _, child := range b.ast.Children(node) {
		nameNode := b.ast.Get(child)
		if nameNode.Kind != ast.KindName {
			continue
		}
		named = true
		name := strings.TrimSpace(nameNode.Content)
		if name == "" {
			b.fail(n, "declaration has an empty name")
			continue
		}
		id := b.table.newSymbol(Symbol{
			Name:      name,
			Category:  cat,
			Scope:     scope,
			Node:      node,
			Kind:      n.Kind,
			Range:     n.Range,
			NameRange: nameNode.Range,
			Type:      typ,
		})
		b.table.Scope(scope).Symbols.add(cat, id)
	}
	if !named {
		b.fail(n, "declaration has no name")
	}
}

// sortByPosition restores source order inside each bucket. Rules translate
// children rule by rule, so declarations of one category can arrive out of
// order.
func (b *builder) sortByPosition(id ScopeID) {
	symbols := &b.table.Scope(id).Symbols
	for c := range symbols.ids {
		slices.SortStableFunc(symbols.ids[c], func(x, y SymbolID) int {
			return span.Compare(b.table.symbols[x].Range.Start, b.table.symbols[y].Range.Start)
		})
	}
}

func (b *builder) fail(n *ast.Node, reason string) {
	b.logger.Debug("unclassified declaration",
		zap.Stringer("node", n.Kind),
		zap.String("range", span.FormatRange(n.Range)),
		zap.String("reason", reason))
	b.table.errors = append(b.table.errors, Error{Range: n.Range, Kind: n.Kind, Reason: reason})
}

// resolveUsages attaches every recorded usage to the symbol visible under
// its name at the usage's start. Unresolved usages are dropped. Each
// symbol's usages end up in source order.
func (b *builder) resolveUsages() {
	for _, u := range b.ast.Usages() {
		sym, ok := b.table.GetSymbolAtPos(u.Name, u.Range.Start)
		if !ok || sym.NameRange == u.Range {
			continue
		}
		sym.Usages = append(sym.Usages, u.Range)
	}
	for i := 1; i < len(b.table.symbols); i++ {
		slices.SortFunc(b.table.symbols[i].Usages, func(x, y protocol.Range) int {
			return span.Compare(x.Start, y.Start)
		})
	}
}
