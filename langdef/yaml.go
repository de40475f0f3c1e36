package langdef

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// singleKey returns the only key/value pair of a mapping node.
func singleKey(value *yaml.Node, what string) (string, *yaml.Node, error) {
	if value.Kind != yaml.MappingNode {
		return "", nil, fmt.Errorf("line %d: %s must be a mapping", value.Line, what)
	}
	if len(value.Content) != 2 {
		return "", nil, fmt.Errorf("line %d: %s must have exactly one key", value.Line, what)
	}
	return value.Content[0].Value, value.Content[1], nil
}

// checkKeys rejects mapping keys outside allowed.
func checkKeys(value *yaml.Node, allowed ...string) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", value.Line)
	}
	for i := 0; i < len(value.Content); i += 2 {
		key := value.Content[i]
		if !slices.Contains(allowed, key.Value) {
			return fmt.Errorf("line %d: unknown key %q", key.Line, key.Value)
		}
	}
	return nil
}

// UnmarshalYAML decodes {kind: x}, {field: x} or {path: [...]}.
func (q *Query) UnmarshalYAML(value *yaml.Node) error {
	key, body, err := singleKey(value, "query")
	if err != nil {
		return err
	}
	switch key {
	case "kind", "field":
		var name string
		if err := body.Decode(&name); err != nil {
			return err
		}
		if name == "" {
			return fmt.Errorf("line %d: empty %s query", body.Line, key)
		}
		if key == "kind" {
			*q = KindQuery(name)
		} else {
			*q = FieldQuery(name)
		}
	case "path":
		var steps []Query
		if err := body.Decode(&steps); err != nil {
			return err
		}
		if len(steps) == 0 {
			return fmt.Errorf("line %d: empty path query", body.Line)
		}
		*q = PathQuery(steps...)
	default:
		return fmt.Errorf("line %d: unknown query %q", value.Line, key)
	}
	return nil
}

type rawChild struct {
	Query  *Query `yaml:"query"`
	Rule   string `yaml:"rule"`
	Direct string `yaml:"direct"`
	Usage  bool   `yaml:"usage"`
}

// UnmarshalYAML decodes {one|maybe|many: {query, rule|direct, usage}}.
func (e *Expect) UnmarshalYAML(value *yaml.Node) error {
	key, body, err := singleKey(value, "child")
	if err != nil {
		return err
	}
	var m Multiplicity
	switch key {
	case "one":
		m = One
	case "maybe":
		m = Maybe
	case "many":
		m = Many
	default:
		return fmt.Errorf("line %d: unknown multiplicity %q", value.Line, key)
	}

	if err := checkKeys(body, "query", "rule", "direct", "usage"); err != nil {
		return err
	}
	var raw rawChild
	if err := body.Decode(&raw); err != nil {
		return err
	}
	if raw.Query == nil {
		return fmt.Errorf("line %d: child without query", body.Line)
	}
	if (raw.Rule == "") == (raw.Direct == "") {
		return fmt.Errorf("line %d: child needs exactly one of rule or direct", body.Line)
	}
	if raw.Direct == "Root" {
		return fmt.Errorf("line %d: Root cannot be a direct target", body.Line)
	}

	*e = Expect{
		Multiplicity: m,
		Child: Child{
			Query:       *raw.Query,
			Target:      Target{Rule: raw.Rule, Direct: raw.Direct},
			SymbolUsage: raw.Usage,
		},
	}
	return nil
}

// UnmarshalYAML decodes `none`, `usage` or {init: category}.
func (r *SymbolRole) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		switch value.Value {
		case "", "none":
			*r = SymbolRole{}
		case "usage":
			*r = Usage()
		default:
			return fmt.Errorf("line %d: unknown symbol role %q", value.Line, value.Value)
		}
		return nil
	}
	key, body, err := singleKey(value, "symbol role")
	if err != nil {
		return err
	}
	if key != "init" {
		return fmt.Errorf("line %d: unknown symbol role %q", value.Line, key)
	}
	var category string
	if err := body.Decode(&category); err != nil {
		return err
	}
	if category == "" {
		return fmt.Errorf("line %d: init role needs a category", body.Line)
	}
	*r = Init(category)
	return nil
}
