// Package diag collects recoverable problems found while processing one
// source file. Unusable rule sets are not diagnostics; see langdef.ConfigError.
package diag

import (
	"fmt"

	"go.lsp.dev/protocol"

	"github.com/arjunmahishi/tsls/span"
)

// Source is the diagnostic source shown by editors.
const Source = "tsls"

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "info"
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	}
	return "unknown"
}

// Code identifies the kind of problem.
type Code uint8

const (
	CodeUnknown Code = iota
	// SyntaxError is an ERROR or MISSING node reported by the parser.
	SyntaxError
	// MissingChild is a One child with no CST match.
	MissingChild
	// UndefinedRule is a child targeting a rule that does not exist.
	UndefinedRule
	// SymbolClassification is a declaration that could not be bucketed.
	SymbolClassification
)

func (c Code) String() string {
	switch c {
	case SyntaxError:
		return "syntax-error"
	case MissingChild:
		return "missing-child"
	case UndefinedRule:
		return "undefined-rule"
	case SymbolClassification:
		return "symbol-classification"
	}
	return "unknown"
}

// Quick reports whether the code is produced before the symbol table is
// built. Quick diagnostics are cheap enough to publish on every keystroke.
func (c Code) Quick() bool {
	return c == SyntaxError || c == MissingChild || c == UndefinedRule
}

// Diagnostic is one reported problem.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Range    protocol.Range
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %s %s: %s", span.FormatRange(d.Range), d.Severity, d.Code, d.Message)
}

// ToProtocol converts to the LSP representation.
func (d Diagnostic) ToProtocol() protocol.Diagnostic {
	sev := protocol.DiagnosticSeverityError
	switch d.Severity {
	case SevWarning:
		sev = protocol.DiagnosticSeverityWarning
	case SevInfo:
		sev = protocol.DiagnosticSeverityInformation
	}
	return protocol.Diagnostic{
		Range:    d.Range,
		Severity: sev,
		Code:     d.Code.String(),
		Source:   Source,
		Message:  d.Message,
	}
}

// Errorf builds an error-severity diagnostic.
func Errorf(code Code, rng protocol.Range, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SevError, Code: code, Message: fmt.Sprintf(format, args...), Range: rng}
}

// Warningf builds a warning-severity diagnostic.
func Warningf(code Code, rng protocol.Range, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SevWarning, Code: code, Message: fmt.Sprintf(format, args...), Range: rng}
}
