package output

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"github.com/arjunmahishi/tsls/types"
)

func TestReports(t *testing.T) {
	color.NoColor = true

	reports := []types.FileReport{
		{File: "a.go", Diagnostics: []types.Diagnostic{{
			Severity: "error",
			Code:     "syntax-error",
			Message:  "syntax error",
			Range:    types.Range{Start: types.Position{Line: 4, Column: 2}, End: types.Position{Line: 4, Column: 6}},
		}}},
		{File: "b.go", Diagnostics: []types.Diagnostic{}},
	}

	var buf bytes.Buffer
	require.NoError(t, Reports(&buf, reports))
	require.Equal(t, "a.go:4:2: error: syntax error [syntax-error]\n"+
		"2 file(s) checked, 1 error, 0 warnings\n", buf.String())
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, types.Position{Line: 1, Column: 2}, true))
	require.Equal(t, "{\"line\":1,\"column\":2}\n", buf.String())

	buf.Reset()
	require.NoError(t, JSON(&buf, map[string]string{"k": "<v>"}, false))
	require.Equal(t, "{\n  \"k\": \"<v>\"\n}\n", buf.String())
}
