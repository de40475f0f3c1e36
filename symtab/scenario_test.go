package symtab_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/arjunmahishi/tsls/cst/csttest"
	"github.com/arjunmahishi/tsls/langdef"
	"github.com/arjunmahishi/tsls/span"
	"github.com/arjunmahishi/tsls/symtab"
	"github.com/arjunmahishi/tsls/translate"
)

func TestConstantDeclarationScenario(t *testing.T) {
	def, err := langdef.Parse([]byte(`
symbol_types:
  constant: Constant
ast_rules:
  - name: Root
    is_scope: true
    children:
      - many: {query: {kind: constant_declaration}, rule: ConstantDec}
  - name: ConstantDec
    is_scope: false
    symbol: {init: constant}
    children:
      - one: {query: {kind: type}, rule: Type}
      - one: {query: {field: name}, direct: Name}
  - name: Type
`))
	require.NoError(t, err)

	src := "const int x = 5;"
	stmt := csttest.Find(src, src, 0)
	root := csttest.N("source_file", stmt,
		csttest.N("constant_declaration", stmt,
			csttest.N("type", csttest.Find(src, "int", 0))).
			F("name", csttest.N("identifier", csttest.Find(src, "x", 0))).
			F("value", csttest.N("number", csttest.Find(src, "5", 0))))

	res := translate.Translate(def, root, []byte(src), translate.Options{})
	require.Equal(t, 0, res.Diagnostics.Len())

	table := symtab.New(res.Ast, def, nil)
	top := table.GetTopLevelSymbols()
	require.Equal(t, []string{"x"}, top.Names())

	x := top.Get(symtab.Constants)[0]
	require.Equal(t, stmt, x.Range)
	require.Equal(t, span.Range(0, 10, 0, 11), x.NameRange)
	require.Equal(t, "int", x.Type)
	category, ok := def.InitCategory(x.Kind)
	require.True(t, ok)
	require.Equal(t, protocol.CompletionItemKindConstant, def.CompletionKind(category))
}
