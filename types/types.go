// Package types defines the JSON records emitted by tsls batch commands.
package types

import (
	"go.lsp.dev/protocol"
)

// Position represents a location in a source file. Line and Column are
// one-based; Column counts bytes.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Range represents a span in a source file. End is exclusive.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// FromPosition converts a zero-based LSP position.
func FromPosition(p protocol.Position) Position {
	return Position{Line: int(p.Line) + 1, Column: int(p.Character) + 1}
}

// FromRange converts a zero-based LSP range.
func FromRange(r protocol.Range) Range {
	return Range{Start: FromPosition(r.Start), End: FromPosition(r.End)}
}

// Symbol represents one declaration from a symbol table.
type Symbol struct {
	Name      string  `json:"name"`
	Category  string  `json:"category"`         // type, constant, variable, function
	Kind      string  `json:"kind"`             // declaring AST node kind, e.g. FunctionDec
	Type      string  `json:"type,omitempty"`   // text of the declared type
	Scope     string  `json:"scope"`            // kind of the enclosing scope node
	Range     Range   `json:"range"`            // whole declaration
	NameRange Range   `json:"name_range"`       // declared identifier
	Usages    []Range `json:"usages,omitempty"` // resolved references
}

// Diagnostic represents one problem found in a file.
type Diagnostic struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Range    Range  `json:"range"`
}

// FileReport holds the diagnostics of one file.
type FileReport struct {
	File        string       `json:"file"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// SymbolsResult holds the symbols of one file.
type SymbolsResult struct {
	File    string   `json:"file"`
	Symbols []Symbol `json:"symbols"`
}

// Scope is one entry of a scope chain.
type Scope struct {
	Kind  string `json:"kind"`
	Range Range  `json:"range"`
}

// ScopeResult describes what is visible at a position.
type ScopeResult struct {
	File     string   `json:"file"`
	Position Position `json:"position"`
	Chain    []Scope  `json:"chain"`   // root first
	Visible  []Symbol `json:"visible"` // outermost scope first
	Resolved *Symbol  `json:"resolved,omitempty"`
}

// ASTResult is the translated tree of one file.
type ASTResult struct {
	File        string       `json:"file"`
	Tree        string       `json:"tree"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// FileJob represents a file to be processed.
type FileJob struct {
	AbsPath     string
	DisplayPath string
}
