// Package langdef loads the declarative rule set that maps tree-sitter syntax
// trees onto AST shapes and symbol roles.
//
// A rule set is loaded once per process with Load and read with Get. Parse
// builds a Definition without touching the process-wide instance.
package langdef

import (
	"strings"

	"github.com/arjunmahishi/tsls/ast"
)

// Multiplicity says how many CST matches a child expects.
type Multiplicity uint8

const (
	One   Multiplicity = iota + 1 // exactly one, zero is a structural error
	Maybe                         // zero or one
	Many                          // zero or more, in source order
)

func (m Multiplicity) String() string {
	switch m {
	case One:
		return "One"
	case Maybe:
		return "Maybe"
	case Many:
		return "Many"
	default:
		return "Invalid"
	}
}

// QueryOp discriminates the Query variants.
type QueryOp uint8

const (
	QueryKind  QueryOp = iota + 1 // immediate children with a syntactic kind
	QueryField                    // immediate children under a grammar field
	QueryPath                     // composition of queries
)

// Query selects CST nodes relative to the node being translated.
type Query struct {
	Op   QueryOp
	Name string  // Kind and Field
	Path []Query // Path
}

// KindQuery matches immediate children by syntactic kind.
func KindQuery(kind string) Query { return Query{Op: QueryKind, Name: kind} }

// FieldQuery matches immediate children by grammar field name.
func FieldQuery(field string) Query { return Query{Op: QueryField, Name: field} }

// PathQuery applies each step to the matches of the previous one.
func PathQuery(steps ...Query) Query { return Query{Op: QueryPath, Path: steps} }

func (q Query) String() string {
	switch q.Op {
	case QueryKind:
		return "Kind(" + q.Name + ")"
	case QueryField:
		return "Field(" + q.Name + ")"
	case QueryPath:
		steps := make([]string, len(q.Path))
		for i, step := range q.Path {
			steps[i] = step.String()
		}
		return "Path(" + strings.Join(steps, ", ") + ")"
	default:
		return "Invalid"
	}
}

// Target says how a match is translated: as a terminal AST node of a fixed
// kind, or by recursing into a named rule.
type Target struct {
	Direct string
	Rule   string
}

// IsRule reports whether the target recurses into a rule.
func (t Target) IsRule() bool { return t.Rule != "" }

// DirectKind is the AST kind produced by a Direct target.
func (t Target) DirectKind() ast.NodeKind { return ast.KindFor(t.Direct) }

func (t Target) String() string {
	if t.IsRule() {
		return "Rule(" + t.Rule + ")"
	}
	return "Direct(" + t.Direct + ")"
}

// Child is one expected child of a rule.
type Child struct {
	Query  Query
	Target Target
	// SymbolUsage records the match as a reference to a declared name in
	// addition to the structural child.
	SymbolUsage bool
}

// Expect wraps a Child with its multiplicity.
type Expect struct {
	Multiplicity Multiplicity
	Child        Child
}

// RoleKind discriminates the SymbolRole variants.
type RoleKind uint8

const (
	RoleNone RoleKind = iota
	RoleInit
	RoleUsage
)

// SymbolRole is the symbol behaviour of nodes produced by a rule.
type SymbolRole struct {
	Kind     RoleKind
	Category string // RoleInit only
}

// Init returns a role declaring a symbol of category.
func Init(category string) SymbolRole { return SymbolRole{Kind: RoleInit, Category: category} }

// Usage returns a role marking a reference.
func Usage() SymbolRole { return SymbolRole{Kind: RoleUsage} }

func (r SymbolRole) String() string {
	switch r.Kind {
	case RoleInit:
		return "Init(" + r.Category + ")"
	case RoleUsage:
		return "Usage"
	default:
		return "None"
	}
}

// Rule maps one CST shape onto one AST node kind.
type Rule struct {
	Name     string     `yaml:"name"`
	IsScope  bool       `yaml:"is_scope"`
	Symbol   SymbolRole `yaml:"symbol"`
	Children []Expect   `yaml:"children"`
}

// Kind is the AST kind of nodes produced by the rule.
func (r *Rule) Kind() ast.NodeKind { return ast.KindFor(r.Name) }
