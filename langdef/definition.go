package langdef

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"go.lsp.dev/protocol"
	"gopkg.in/yaml.v3"

	"github.com/arjunmahishi/tsls/ast"
)

// RootRule is the rule applied to the CST root. It always opens the
// whole-file scope.
const RootRule = "Root"

// ConfigError reports a rule-set document that cannot be used.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return "language definition: " + e.Err.Error() }

func (e *ConfigError) Unwrap() error { return e.Err }

// InitNode pairs a declaration kind with the category it declares.
type InitNode struct {
	Kind     ast.NodeKind
	Category string
}

// Definition is a parsed, validated rule set. It is immutable.
type Definition struct {
	// SymbolTypes maps a symbol category to the completion kind shown for it.
	SymbolTypes map[string]CompletionKind `yaml:"symbol_types"`
	Rules       []Rule                    `yaml:"ast_rules"`

	byName map[string]int
	scopes map[ast.NodeKind]bool
	inits  map[ast.NodeKind]string
}

// Parse decodes and validates a rule-set document.
func Parse(data []byte) (*Definition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var def Definition
	if err := dec.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty document")
		}
		return nil, &ConfigError{Err: err}
	}
	if err := def.index(); err != nil {
		return nil, &ConfigError{Err: err}
	}
	return &def, nil
}

// New builds a definition from rules constructed in code.
func New(symbolTypes map[string]CompletionKind, rules ...Rule) (*Definition, error) {
	def := &Definition{SymbolTypes: symbolTypes, Rules: rules}
	for category, kind := range symbolTypes {
		if !kind.IsValid() {
			return nil, &ConfigError{Err: fmt.Errorf("category %q: unknown completion kind %q", category, kind)}
		}
	}
	if err := def.index(); err != nil {
		return nil, &ConfigError{Err: err}
	}
	return def, nil
}

func (d *Definition) index() error {
	d.byName = make(map[string]int, len(d.Rules))
	d.scopes = map[ast.NodeKind]bool{ast.KindRoot: true}
	d.inits = make(map[ast.NodeKind]string)

	var problems []error
	for i := range d.Rules {
		rule := &d.Rules[i]
		if rule.Name == "" {
			problems = append(problems, fmt.Errorf("rule %d has no name", i))
			continue
		}
		if _, dup := d.byName[rule.Name]; dup {
			problems = append(problems, fmt.Errorf("duplicate rule %q", rule.Name))
			continue
		}
		d.byName[rule.Name] = i

		if rule.IsScope {
			d.scopes[rule.Kind()] = true
		}
		if rule.Symbol.Kind == RoleInit {
			d.inits[rule.Kind()] = rule.Symbol.Category
		}
		for _, expect := range rule.Children {
			if expect.Multiplicity == 0 {
				problems = append(problems, fmt.Errorf("rule %q: child without multiplicity", rule.Name))
			}
		}
	}
	if _, ok := d.byName[RootRule]; !ok {
		problems = append(problems, fmt.Errorf("missing %q rule", RootRule))
	}
	return errors.Join(problems...)
}

// RuleWithName looks up a rule. A miss means a dangling rule reference.
func (d *Definition) RuleWithName(name string) (*Rule, bool) {
	i, ok := d.byName[name]
	if !ok {
		return nil, false
	}
	return &d.Rules[i], true
}

// ScopeNodes returns the AST kinds that open a lexical scope, Root first.
func (d *Definition) ScopeNodes() []ast.NodeKind {
	kinds := []ast.NodeKind{ast.KindRoot}
	for i := range d.Rules {
		if kind := d.Rules[i].Kind(); d.Rules[i].IsScope && kind != ast.KindRoot {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

// SymbolInitNodes returns declaration kinds with their categories, in rule
// order.
func (d *Definition) SymbolInitNodes() []InitNode {
	var nodes []InitNode
	for i := range d.Rules {
		if d.Rules[i].Symbol.Kind == RoleInit {
			nodes = append(nodes, InitNode{Kind: d.Rules[i].Kind(), Category: d.Rules[i].Symbol.Category})
		}
	}
	return nodes
}

// IsScope reports whether kind opens a lexical scope.
func (d *Definition) IsScope(kind ast.NodeKind) bool {
	return d.scopes[kind]
}

// InitCategory returns the category declared by nodes of kind.
func (d *Definition) InitCategory(kind ast.NodeKind) (string, bool) {
	category, ok := d.inits[kind]
	return category, ok
}

// CompletionKind returns the completion item kind for a symbol category.
func (d *Definition) CompletionKind(category string) protocol.CompletionItemKind {
	if kind, ok := d.SymbolTypes[category]; ok {
		return kind.ItemKind()
	}
	return protocol.CompletionItemKindText
}
