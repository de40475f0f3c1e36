// Package output writes tsls results as JSON or as coloured text.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/arjunmahishi/tsls/types"
)

// JSON encodes v to w, indented unless compact is set. A nil w means
// stdout.
func JSON(w io.Writer, v any, compact bool) error {
	if w == nil {
		w = os.Stdout
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if !compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// WriteError writes an error as a JSON object to stderr.
func WriteError(err error) {
	enc := json.NewEncoder(os.Stderr)
	_ = enc.Encode(map[string]any{
		"error": err.Error(),
	})
}

var (
	fileColor    = color.New(color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgBlue)
	codeColor    = color.New(color.Faint)
)

// Reports prints diagnostics one per line as
// "file:line:col: severity: message [code]" followed by a summary line.
// Colour follows the fatih/color defaults for out.
func Reports(out io.Writer, reports []types.FileReport) error {
	var errs, warnings int
	for _, r := range reports {
		for _, d := range r.Diagnostics {
			sev := severityColor(d.Severity).Sprint(d.Severity)
			if _, err := fmt.Fprintf(out, "%s:%d:%d: %s: %s %s\n",
				fileColor.Sprint(r.File), d.Range.Start.Line, d.Range.Start.Column,
				sev, d.Message, codeColor.Sprintf("[%s]", d.Code)); err != nil {
				return err
			}
			switch d.Severity {
			case "error":
				errs++
			case "warning":
				warnings++
			}
		}
	}
	_, err := fmt.Fprintf(out, "%d file(s) checked, %s, %s\n", len(reports),
		plural(errs, "error"), plural(warnings, "warning"))
	return err
}

func severityColor(sev string) *color.Color {
	switch sev {
	case "error":
		return errorColor
	case "warning":
		return warningColor
	}
	return infoColor
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
