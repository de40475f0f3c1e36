// Package translate turns a concrete syntax tree into an AST by interpreting
// a langdef rule set. Nothing in here knows about a particular language.
//
// Translation never fails as a whole: a child that does not match its rule is
// dropped, a diagnostic is recorded and the rest of the file is translated.
package translate

import (
	"strings"

	"go.uber.org/zap"

	"github.com/arjunmahishi/tsls/ast"
	"github.com/arjunmahishi/tsls/cst"
	"github.com/arjunmahishi/tsls/diag"
	"github.com/arjunmahishi/tsls/langdef"
)

// Options configures Translate.
type Options struct {
	// Logger receives debug output. If nil, logging is disabled.
	Logger *zap.Logger

	// MaxDiagnostics bounds the diagnostics kept per file.
	// If 0, diag.DefaultMax is used.
	MaxDiagnostics int
}

// Result is the outcome of translating one file.
type Result struct {
	Ast         *ast.Ast
	Diagnostics *diag.Bag
}

type translator struct {
	def    *langdef.Definition
	source []byte
	b      *ast.Builder
	diags  *diag.Bag
	logger *zap.Logger
}

// Translate builds the AST for root, which must be the CST root of source.
func Translate(def *langdef.Definition, root cst.Node, source []byte, opts Options) *Result {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	t := &translator{
		def:    def,
		source: source,
		b:      ast.NewBuilder(0),
		diags:  diag.NewBag(opts.MaxDiagnostics),
		logger: opts.Logger,
	}

	if root != nil {
		t.syntaxErrors(root)
		t.translateRoot(root)
	}

	a := t.b.Finish()
	t.logger.Debug("translated",
		zap.Int("nodes", a.Len()),
		zap.Int("usages", len(a.Usages())),
		zap.Int("diagnostics", t.diags.Len()))
	return &Result{Ast: a, Diagnostics: t.diags}
}

func (t *translator) translateRoot(root cst.Node) {
	id := t.b.NewNode(ast.KindRoot, root.Range(), string(t.source))
	t.b.SetRoot(id)

	rule, ok := t.def.RuleWithName(langdef.RootRule)
	if !ok {
		t.diags.Add(diag.Errorf(diag.UndefinedRule, root.Range(), "undefined rule %q", langdef.RootRule))
		return
	}
	t.expand(id, rule, root)
}

// apply creates the node for rule at n and translates its children.
func (t *translator) apply(rule *langdef.Rule, n cst.Node) ast.NodeID {
	content := n.Content(t.source)
	id := t.b.NewNode(rule.Kind(), n.Range(), content)
	if rule.Symbol.Kind == langdef.RoleUsage {
		t.b.AddUsage(ast.Usage{Name: strings.TrimSpace(content), Range: n.Range()})
	}
	t.expand(id, rule, n)
	return id
}

func (t *translator) expand(id ast.NodeID, rule *langdef.Rule, n cst.Node) {
	for _, expect := range rule.Children {
		matches := run(expect.Child.Query, n)

		switch expect.Multiplicity {
		case langdef.One:
			if len(matches) == 0 {
				t.diags.Add(diag.Errorf(diag.MissingChild, n.Range(),
					"%s: expected one %s, found none", rule.Name, expect.Child.Query))
				continue
			}
			matches = t.first(rule, expect, matches)
		case langdef.Maybe:
			matches = t.first(rule, expect, matches)
		}

		for _, m := range matches {
			if child := t.translateChild(expect.Child, m); child.IsValid() {
				t.b.Append(id, child)
			}
		}
	}
}

// first keeps the first match of a One or Maybe child.
func (t *translator) first(rule *langdef.Rule, expect langdef.Expect, matches []cst.Node) []cst.Node {
	if len(matches) <= 1 {
		return matches
	}
	t.logger.Debug("extra matches ignored",
		zap.String("rule", rule.Name),
		zap.Stringer("multiplicity", expect.Multiplicity),
		zap.Stringer("query", expect.Child.Query),
		zap.Int("matches", len(matches)))
	return matches[:1]
}

func (t *translator) translateChild(c langdef.Child, m cst.Node) ast.NodeID {
	var id ast.NodeID
	if c.Target.IsRule() {
		rule, ok := t.def.RuleWithName(c.Target.Rule)
		if !ok {
			t.diags.Add(diag.Errorf(diag.UndefinedRule, m.Range(), "undefined rule %q", c.Target.Rule))
			return ast.NoNodeID
		}
		id = t.apply(rule, m)
	} else {
		id = t.b.NewNode(c.Target.DirectKind(), m.Range(), m.Content(t.source))
	}

	if c.SymbolUsage {
		t.b.AddUsage(ast.Usage{Name: strings.TrimSpace(m.Content(t.source)), Range: m.Range()})
	}
	return id
}

// syntaxErrors reports the parser's ERROR and MISSING nodes.
func (t *translator) syntaxErrors(n cst.Node) {
	if !n.HasError() {
		return
	}
	if n.IsError() {
		if n.Kind() == "ERROR" {
			t.diags.Add(diag.Errorf(diag.SyntaxError, n.Range(), "syntax error"))
		} else {
			t.diags.Add(diag.Errorf(diag.SyntaxError, n.Range(), "missing %s", n.Kind()))
		}
		return
	}
	for i := 0; i < n.ChildCount(); i++ {
		if c := n.Child(i); c != nil {
			t.syntaxErrors(c)
		}
	}
}
