// Package document keeps the analysed state of one open file and answers
// editor requests against it.
//
// A File publishes immutable Snapshots. Update builds the next snapshot off
// to the side and swaps it in once complete, so readers see either the
// previous or the next state of a file and never a partial one.
package document

import (
	"context"
	"fmt"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/arjunmahishi/tsls/ast"
	"github.com/arjunmahishi/tsls/cst"
	"github.com/arjunmahishi/tsls/diag"
	"github.com/arjunmahishi/tsls/langdef"
	"github.com/arjunmahishi/tsls/symtab"
	"github.com/arjunmahishi/tsls/translate"
)

// Options configures snapshot builds.
type Options struct {
	// Logger receives debug output. If nil, logging is disabled.
	Logger *zap.Logger

	// MaxDiagnostics bounds the translation diagnostics and, separately,
	// the symbol classification diagnostics kept per file. If 0,
	// diag.DefaultMax is used.
	MaxDiagnostics int
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.MaxDiagnostics <= 0 {
		o.MaxDiagnostics = diag.DefaultMax
	}
	return o
}

// Snapshot is the analysed state of one version of a file. The AST and the
// symbol table always come from the same source text.
type Snapshot struct {
	URI     protocol.DocumentURI
	Version int32
	Source  []byte
	Tree    *cst.Tree
	Ast     *ast.Ast
	Table   *symtab.SymbolTable

	def   *langdef.Definition
	quick []diag.Diagnostic
	full  []diag.Diagnostic
}

// Build parses source and derives the AST, symbol table and diagnostics.
func Build(ctx context.Context, p *cst.Parser, def *langdef.Definition, uri protocol.DocumentURI, version int32, source []byte, opts Options) (*Snapshot, error) {
	opts = opts.withDefaults()

	tree, err := p.Parse(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", uri, err)
	}

	res := translate.Translate(def, tree.Root(), source, translate.Options{
		Logger:         opts.Logger,
		MaxDiagnostics: opts.MaxDiagnostics,
	})
	table := symtab.New(res.Ast, def, opts.Logger)

	quick := res.Diagnostics
	quick.Sort()
	quick.Dedup()

	classified := diag.NewBag(opts.MaxDiagnostics)
	for _, d := range table.Diagnostics() {
		if !classified.Add(d) {
			break
		}
	}
	full := diag.NewBag(opts.MaxDiagnostics)
	full.Merge(quick)
	full.Merge(classified)
	full.Sort()

	opts.Logger.Debug("built snapshot",
		zap.String("uri", string(uri)),
		zap.Int32("version", version),
		zap.Int("nodes", res.Ast.Len()),
		zap.Int("symbols", table.Len()),
		zap.Int("diagnostics", full.Len()))

	return &Snapshot{
		URI:     uri,
		Version: version,
		Source:  source,
		Tree:    tree,
		Ast:     res.Ast,
		Table:   table,
		def:     def,
		quick:   quick.Items(),
		full:    full.Items(),
	}, nil
}

// QuickDiagnostics returns the diagnostics found while translating: syntax
// errors and rule shape mismatches.
func (s *Snapshot) QuickDiagnostics() []diag.Diagnostic {
	return s.quick
}

// FullDiagnostics returns the quick diagnostics plus symbol classification
// problems, sorted by position.
func (s *Snapshot) FullDiagnostics() []diag.Diagnostic {
	return s.full
}

// ProtocolDiagnostics converts FullDiagnostics for publishing.
func (s *Snapshot) ProtocolDiagnostics() []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(s.full))
	for _, d := range s.full {
		out = append(out, d.ToProtocol())
	}
	return out
}
