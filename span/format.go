package span

import (
	"fmt"
	"strconv"
	"strings"

	"go.lsp.dev/protocol"
)

// FormatPos renders a position as one-based "line:col".
func FormatPos(p protocol.Position) string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Character+1)
}

// FormatRange renders a range as one-based "line:col-line:col".
func FormatRange(r protocol.Range) string {
	return FormatPos(r.Start) + "-" + FormatPos(r.End)
}

// ParsePos parses a one-based "line:col" into a zero-based position.
func ParsePos(s string) (protocol.Position, error) {
	lineStr, colStr, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return protocol.Position{}, fmt.Errorf("position %q: want line:col", s)
	}
	line, err := strconv.Atoi(lineStr)
	if err != nil || line < 1 {
		return protocol.Position{}, fmt.Errorf("position %q: bad line", s)
	}
	col, err := strconv.Atoi(colStr)
	if err != nil || col < 1 {
		return protocol.Position{}, fmt.Errorf("position %q: bad column", s)
	}
	return Pos(line-1, col-1), nil
}
