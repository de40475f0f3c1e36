package analyze

import (
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/arjunmahishi/tsls/langdef"
)

// CheckOptions configures the Check function.
type CheckOptions struct {
	// Language names a registered language. Empty means "go".
	Language string

	// Definition is the rule set to translate with. If nil, the loaded
	// process-wide definition is used, or else the language's built-in rules.
	Definition *langdef.Definition

	// Path is the directory walked for source files, "." when empty.
	Path string

	// File, when set, is checked alone and Path is not walked.
	File string

	// Quick restricts the report to syntax and rule shape problems.
	Quick bool

	// MaxDiagnostics bounds the diagnostics kept per file.
	// If 0, diag.DefaultMax is used.
	MaxDiagnostics int

	// Jobs bounds the parallel workers. Values below 1 mean one per CPU.
	Jobs int

	// MaxBytes is the size above which walked files are skipped. Zero
	// means 2 MiB and a negative value disables the cap.
	MaxBytes int64

	// Logger receives debug output. If nil, logging is disabled.
	Logger *zap.Logger
}

// SymbolsOptions configures the Symbols function.
type SymbolsOptions struct {
	// Language names a registered language. Empty means "go".
	Language string

	// Definition is the rule set to translate with. See CheckOptions.
	Definition *langdef.Definition

	// Path is the directory walked for source files, "." when empty.
	Path string

	// File, when set, is analysed alone and Path is not walked.
	File string

	// TopLevel limits results to the root scope.
	TopLevel bool

	// Category keeps only symbols of this category ("type", "constants", ...).
	// Empty keeps all.
	Category string

	// Jobs bounds the parallel workers. Values below 1 mean one per CPU.
	Jobs int

	// MaxBytes is the size above which walked files are skipped. Zero
	// means 2 MiB and a negative value disables the cap.
	MaxBytes int64

	// Logger receives debug output. If nil, logging is disabled.
	Logger *zap.Logger
}

// ScopeOptions configures the Scope function.
type ScopeOptions struct {
	// Language names a registered language. Empty means "go".
	Language string

	// Definition is the rule set to translate with. See CheckOptions.
	Definition *langdef.Definition

	// File is the file to inspect. Required.
	File string

	// Position is the zero-based position to inspect.
	Position protocol.Position

	// Name, if set, is resolved at Position.
	Name string

	// Logger receives debug output. If nil, logging is disabled.
	Logger *zap.Logger
}

// ASTOptions configures the AST function.
type ASTOptions struct {
	// Language names a registered language. Empty means "go".
	Language string

	// Definition is the rule set to translate with. See CheckOptions.
	Definition *langdef.Definition

	// File is the file to translate (required).
	File string

	// Logger receives debug output. If nil, logging is disabled.
	Logger *zap.Logger
}
