// Package analyze runs the translator and symbol table over files on disk.
// It backs the batch subcommands of the tsls binary.
package analyze

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sort"

	"go.lsp.dev/uri"
	"go.uber.org/zap"

	"github.com/arjunmahishi/tsls/cst"
	"github.com/arjunmahishi/tsls/diag"
	"github.com/arjunmahishi/tsls/document"
	"github.com/arjunmahishi/tsls/langdef"
	"github.com/arjunmahishi/tsls/symtab"
	"github.com/arjunmahishi/tsls/types"
)

const defaultMaxBytes = 2 * 1024 * 1024

// Check reports the diagnostics of every matching file, one report per
// file, ordered by path.
func Check(ctx context.Context, opts CheckOptions) ([]types.FileReport, error) {
	in, err := prepare(opts.Language, opts.Definition, opts.File, opts.Path, opts.Jobs, opts.MaxBytes, opts.Logger)
	if err != nil {
		return nil, err
	}

	docOpts := document.Options{Logger: in.logger, MaxDiagnostics: opts.MaxDiagnostics}
	reports, err := runWorkers(ctx, in.language, in.files, in.jobs, func(ctx context.Context, p *cst.Parser, job types.FileJob) (types.FileReport, bool) {
		snap, ok := build(ctx, p, in.def, job, docOpts)
		if !ok {
			return types.FileReport{}, false
		}
		found := snap.FullDiagnostics()
		if opts.Quick {
			found = snap.QuickDiagnostics()
		}
		return types.FileReport{File: job.DisplayPath, Diagnostics: convertDiagnostics(found)}, true
	})
	if err != nil {
		return nil, err
	}
	if reports == nil {
		reports = []types.FileReport{}
	}

	sort.Slice(reports, func(i, j int) bool { return reports[i].File < reports[j].File })
	return reports, nil
}

// HasErrors reports whether any report carries an error-severity
// diagnostic.
func HasErrors(reports []types.FileReport) bool {
	for _, r := range reports {
		for _, d := range r.Diagnostics {
			if d.Severity == diag.SevError.String() {
				return true
			}
		}
	}
	return false
}

// Symbols lists the declarations of every matching file. Files without
// symbols are left out.
func Symbols(ctx context.Context, opts SymbolsOptions) ([]types.SymbolsResult, error) {
	keep := func(*symtab.Symbol) bool { return true }
	if opts.Category != "" {
		category, ok := symtab.ParseCategory(opts.Category)
		if !ok {
			return nil, fmt.Errorf("unknown symbol category %q", opts.Category)
		}
		keep = func(sym *symtab.Symbol) bool { return sym.Category == category }
	}

	in, err := prepare(opts.Language, opts.Definition, opts.File, opts.Path, opts.Jobs, opts.MaxBytes, opts.Logger)
	if err != nil {
		return nil, err
	}

	docOpts := document.Options{Logger: in.logger}
	results, err := runWorkers(ctx, in.language, in.files, in.jobs, func(ctx context.Context, p *cst.Parser, job types.FileJob) (types.SymbolsResult, bool) {
		snap, ok := build(ctx, p, in.def, job, docOpts)
		if !ok {
			return types.SymbolsResult{}, false
		}

		res := types.SymbolsResult{File: job.DisplayPath}
		for _, sym := range tableSymbols(snap.Table, opts.TopLevel) {
			if keep(sym) {
				res.Symbols = append(res.Symbols, convertSymbol(snap, sym))
			}
		}
		return res, len(res.Symbols) > 0
	})
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []types.SymbolsResult{}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].File < results[j].File })
	return results, nil
}

// Scope describes the scope chain and visible symbols at a position.
func Scope(ctx context.Context, opts ScopeOptions) (*types.ScopeResult, error) {
	if opts.File == "" {
		return nil, errors.New("file is required")
	}
	language, def, err := resolve(cmp.Or(opts.Language, "go"), opts.Definition)
	if err != nil {
		return nil, err
	}
	snap, err := buildFile(ctx, language, def, opts.File, document.Options{Logger: opts.Logger})
	if err != nil {
		return nil, err
	}

	res := &types.ScopeResult{
		File:     opts.File,
		Position: types.FromPosition(opts.Position),
		Chain:    []types.Scope{},
		Visible:  []types.Symbol{},
	}
	for _, id := range snap.Table.ScopeAt(opts.Position) {
		sc := snap.Table.Scope(id)
		res.Chain = append(res.Chain, types.Scope{Kind: sc.Kind.String(), Range: types.FromRange(sc.Range)})
	}
	if visible := snap.Table.GetSymbolsInScope(opts.Position); visible != nil {
		for _, sym := range visible.All() {
			res.Visible = append(res.Visible, convertSymbol(snap, sym))
		}
	}
	if opts.Name != "" {
		if sym, ok := snap.Table.GetSymbolAtPos(opts.Name, opts.Position); ok {
			s := convertSymbol(snap, sym)
			res.Resolved = &s
		}
	}
	return res, nil
}

// AST translates one file and returns the tree dump with the quick
// diagnostics.
func AST(ctx context.Context, opts ASTOptions) (*types.ASTResult, error) {
	if opts.File == "" {
		return nil, errors.New("file is required")
	}
	language, def, err := resolve(cmp.Or(opts.Language, "go"), opts.Definition)
	if err != nil {
		return nil, err
	}
	snap, err := buildFile(ctx, language, def, opts.File, document.Options{Logger: opts.Logger})
	if err != nil {
		return nil, err
	}

	return &types.ASTResult{
		File:        opts.File,
		Tree:        snap.Ast.String(),
		Diagnostics: convertDiagnostics(snap.QuickDiagnostics()),
	}, nil
}

// resolve finds the language and the rule set to translate it with.
func resolve(name string, def *langdef.Definition) (cst.Language, *langdef.Definition, error) {
	language := cst.Get(name)
	if language == nil {
		return nil, nil, errors.New(name + " language not registered")
	}
	if def != nil {
		return language, def, nil
	}
	if langdef.Loaded() {
		return language, langdef.Get(), nil
	}
	def, err := langdef.Parse([]byte(language.Rules()))
	if err != nil {
		return nil, nil, err
	}
	return language, def, nil
}

// batch is the resolved input of a multi-file run.
type batch struct {
	language cst.Language
	def      *langdef.Definition
	files    []types.FileJob
	jobs     int
	logger   *zap.Logger
}

// prepare applies the option defaults, resolves the language and lists the
// files to visit.
func prepare(name string, def *langdef.Definition, file, root string, jobs int, maxBytes int64, logger *zap.Logger) (*batch, error) {
	language, def, err := resolve(cmp.Or(name, "go"), def)
	if err != nil {
		return nil, err
	}

	f := finder{language: language, maxBytes: cmp.Or(maxBytes, defaultMaxBytes)}
	in := &batch{language: language, def: def, jobs: jobs, logger: logger}
	if file != "" {
		job, err := f.single(file)
		if err != nil {
			return nil, err
		}
		in.files = []types.FileJob{job}
	} else if in.files, err = f.find(cmp.Or(root, ".")); err != nil {
		return nil, err
	}

	if in.jobs <= 0 {
		in.jobs = runtime.NumCPU()
	}
	if in.logger == nil {
		in.logger = zap.NewNop()
	}
	return in, nil
}

// build reads and analyses one job. Files that cannot be read or parsed are
// logged and skipped.
func build(ctx context.Context, p *cst.Parser, def *langdef.Definition, job types.FileJob, opts document.Options) (*document.Snapshot, bool) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	source, err := os.ReadFile(job.AbsPath)
	if err != nil {
		logger.Warn("skipping file", zap.String("file", job.DisplayPath), zap.Error(err))
		return nil, false
	}
	snap, err := document.Build(ctx, p, def, uri.File(job.AbsPath), 0, source, opts)
	if err != nil {
		logger.Warn("skipping file", zap.String("file", job.DisplayPath), zap.Error(err))
		return nil, false
	}
	return snap, true
}

func buildFile(ctx context.Context, language cst.Language, def *langdef.Definition, path string, opts document.Options) (*document.Snapshot, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return document.Build(ctx, cst.NewParser(language), def, uri.File(path), 0, source, opts)
}

// tableSymbols returns the symbols of every scope, outer scopes first.
func tableSymbols(t *symtab.SymbolTable, topLevel bool) []*symtab.Symbol {
	if topLevel {
		if top := t.GetTopLevelSymbols(); top != nil {
			return top.All()
		}
		return nil
	}

	var out []*symtab.Symbol
	queue := []symtab.ScopeID{t.Root()}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		sc := t.Scope(id)
		if sc == nil {
			continue
		}
		out = append(out, sc.Symbols.All()...)
		queue = append(queue, sc.Children...)
	}
	return out
}

func convertSymbol(snap *document.Snapshot, sym *symtab.Symbol) types.Symbol {
	out := types.Symbol{
		Name:      sym.Name,
		Category:  sym.Category.String(),
		Kind:      sym.Kind.String(),
		Type:      sym.Type,
		Range:     types.FromRange(sym.Range),
		NameRange: types.FromRange(sym.NameRange),
	}
	if sc := snap.Table.Scope(sym.Scope); sc != nil {
		out.Scope = sc.Kind.String()
	}
	for _, u := range sym.Usages {
		out.Usages = append(out.Usages, types.FromRange(u))
	}
	return out
}

func convertDiagnostics(ds []diag.Diagnostic) []types.Diagnostic {
	out := make([]types.Diagnostic, 0, len(ds))
	for _, d := range ds {
		out = append(out, types.Diagnostic{
			Severity: d.Severity.String(),
			Code:     d.Code.String(),
			Message:  d.Message,
			Range:    types.FromRange(d.Range),
		})
	}
	return out
}
