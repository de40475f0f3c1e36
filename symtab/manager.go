package symtab

import (
	"errors"
	"fmt"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/arjunmahishi/tsls/ast"
)

// ErrNoSymbol is returned by edits that name a symbol the table lacks.
var ErrNoSymbol = errors.New("no such symbol")

// SymbolTableQuery is the read side of a Manager.
type SymbolTableQuery interface {
	GetSymbolsInScope(pos protocol.Position) *Symbols
	GetSymbolAtPos(name string, pos protocol.Position) (*Symbol, bool)
}

// SymbolTableEditor is the write side of a Manager.
type SymbolTableEditor interface {
	NewEdit(edit Edit) ([]protocol.Range, error)
	Update(a *ast.Ast)
}

// Edit is a structural change applied directly to a table.
type Edit interface {
	apply(t *SymbolTable) ([]protocol.Range, error)
}

// Rename changes the name of one symbol. Applying it returns the declared
// name range followed by every usage range.
type Rename struct {
	SymbolID SymbolID
	NewName  string
}

func (r Rename) apply(t *SymbolTable) ([]protocol.Range, error) {
	if r.NewName == "" {
		return nil, errors.New("rename: empty name")
	}
	sym := t.Symbol(r.SymbolID)
	if sym == nil {
		return nil, fmt.Errorf("rename %d: %w", r.SymbolID, ErrNoSymbol)
	}
	sym.Name = r.NewName
	return sym.Locations(), nil
}

// Manager owns the symbol table of one file. After NewEdit the table no
// longer matches the source until Update is called with a fresh AST.
type Manager struct {
	table  *SymbolTable
	class  Classifier
	logger *zap.Logger
}

var (
	_ SymbolTableQuery  = (*Manager)(nil)
	_ SymbolTableEditor = (*Manager)(nil)
)

// NewManager builds the table for a.
func NewManager(a *ast.Ast, class Classifier, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{table: New(a, class, logger), class: class, logger: logger}
}

// ManagerFor wraps an already built table.
func ManagerFor(t *SymbolTable, class Classifier, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{table: t, class: class, logger: logger}
}

// Table returns the current table.
func (m *Manager) Table() *SymbolTable { return m.table }

func (m *Manager) GetSymbolsInScope(pos protocol.Position) *Symbols {
	return m.table.GetSymbolsInScope(pos)
}

func (m *Manager) GetSymbolAtPos(name string, pos protocol.Position) (*Symbol, bool) {
	return m.table.GetSymbolAtPos(name, pos)
}

// NewEdit applies edit to the table in place.
func (m *Manager) NewEdit(edit Edit) ([]protocol.Range, error) {
	ranges, err := edit.apply(m.table)
	if err != nil {
		return nil, err
	}
	m.logger.Debug("applied symbol table edit", zap.Int("ranges", len(ranges)))
	return ranges, nil
}

// Update discards the table and rebuilds it from a.
func (m *Manager) Update(a *ast.Ast) {
	m.table = New(a, m.class, m.logger)
}
