package symtab

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/arjunmahishi/tsls/ast"
	"github.com/arjunmahishi/tsls/langdef"
	"github.com/arjunmahishi/tsls/span"
)

type tn struct {
	kind    ast.NodeKind
	rng     protocol.Range
	content string
	kids    []tn
}

func node(kind string, rng protocol.Range, kids ...tn) tn {
	return tn{kind: ast.KindFor(kind), rng: rng, kids: kids}
}

func leaf(kind string, rng protocol.Range, content string) tn {
	return tn{kind: ast.KindFor(kind), rng: rng, content: content}
}

func build(root tn, usages ...ast.Usage) *ast.Ast {
	b := ast.NewBuilder(0)
	var add func(tn) ast.NodeID
	add = func(n tn) ast.NodeID {
		id := b.NewNode(n.kind, n.rng, n.content)
		for _, k := range n.kids {
			b.Append(id, add(k))
		}
		return id
	}
	b.SetRoot(add(root))
	for _, u := range usages {
		b.AddUsage(u)
	}
	return b.Finish()
}

func classifier(t *testing.T) *langdef.Definition {
	t.Helper()
	def, err := langdef.New(nil,
		langdef.Rule{Name: "Root", IsScope: true},
		langdef.Rule{Name: "Block", IsScope: true},
		langdef.Rule{Name: "Function", IsScope: true, Symbol: langdef.Init("function")},
		langdef.Rule{Name: "VarDec", Symbol: langdef.Init("variable")},
		langdef.Rule{Name: "ConstDec", Symbol: langdef.Init("constants")},
		langdef.Rule{Name: "TypeDec", Symbol: langdef.Init("type")},
		langdef.Rule{Name: "BadDec", Symbol: langdef.Init("widget")},
	)
	require.NoError(t, err)
	return def
}

func varDec(name string, line, start, nameStart int) tn {
	return node("VarDec", span.Range(line, start, line, start+10),
		leaf("Name", span.Range(line, nameStart, line, nameStart+len(name)), name))
}

// fixture models:
//
//	const int N = 1;
//	func f() {
//	  var a = N;
//	  use(a, b);
//	  var b = 2;
//	  { var c = 3; }
//	}
//	type T int;
//	{ var d = 4; }
func fixture() *ast.Ast {
	return build(
		node("Root", span.Range(0, 0, 9, 0),
			node("ConstDec", span.Range(0, 0, 0, 16),
				leaf("Type", span.Range(0, 6, 0, 9), "int"),
				leaf("Name", span.Range(0, 10, 0, 11), "N")),
			node("Function", span.Range(1, 0, 6, 1),
				leaf("Name", span.Range(1, 5, 1, 6), "f"),
				node("Block", span.Range(1, 9, 6, 1),
					varDec("a", 2, 2, 6),
					varDec("b", 4, 2, 6),
					node("Block", span.Range(5, 2, 5, 16), varDec("c", 5, 4, 8)))),
			node("TypeDec", span.Range(7, 0, 7, 11),
				leaf("Name", span.Range(7, 5, 7, 6), "T")),
			node("Block", span.Range(8, 0, 8, 14), varDec("d", 8, 2, 6)),
		),
		ast.Usage{Name: "N", Range: span.Range(2, 10, 2, 11)},
		ast.Usage{Name: "a", Range: span.Range(3, 6, 3, 7)},
		ast.Usage{Name: "b", Range: span.Range(3, 9, 3, 10)},
	)
}

func TestString(t *testing.T) {
	table := New(fixture(), classifier(t), nil)
	require.Equal(t, `Root 1:1-10:1
  type T 8:1-8:12
  constant N (int) 1:1-1:17 3:11-3:12
  function f 2:1-7:2
  Function 2:1-7:2
    Block 2:10-7:2
      variable a 3:3-3:13 4:7-4:8
      variable b 5:3-5:13
      Block 6:3-6:17
        variable c 6:5-6:15
  Block 9:1-9:15
    variable d 9:3-9:13`, table.String())
	require.Empty(t, table.Errors())
}

func TestTopLevelSymbolsInDeclarationOrder(t *testing.T) {
	a := build(node("Root", span.Range(0, 0, 3, 0),
		node("ConstDec", span.Range(0, 0, 0, 10), leaf("Name", span.Range(0, 6, 0, 8), "c1")),
		node("ConstDec", span.Range(1, 0, 1, 10), leaf("Name", span.Range(1, 6, 1, 8), "c2")),
		node("ConstDec", span.Range(2, 0, 2, 10), leaf("Name", span.Range(2, 6, 2, 8), "c3")),
	))
	table := New(a, classifier(t), nil)

	top := table.GetTopLevelSymbols()
	require.Equal(t, []string{"c1", "c2", "c3"}, top.Names())
	require.Len(t, top.Get(Constants), 3)
	require.Empty(t, top.Get(Variables))
}

func TestDeclareBeforeUse(t *testing.T) {
	table := New(fixture(), classifier(t), nil)

	names := table.GetSymbolsInScope(span.Pos(3, 6)).Names()
	require.Contains(t, names, "a")
	require.NotContains(t, names, "b")

	_, ok := table.GetSymbolAtPos("b", span.Pos(3, 9))
	require.False(t, ok)
	sym, ok := table.GetSymbolAtPos("b", span.Pos(4, 20))
	require.True(t, ok)
	require.Equal(t, "b", sym.Name)
}

func TestRootSymbolsVisibleEverywhere(t *testing.T) {
	table := New(fixture(), classifier(t), nil)
	for _, pos := range []protocol.Position{
		span.Pos(0, 0), span.Pos(2, 3), span.Pos(3, 6), span.Pos(5, 15), span.Pos(8, 13), span.Pos(9, 0),
	} {
		names := table.GetSymbolsInScope(pos).Names()
		for _, want := range []string{"N", "f", "T"} {
			require.Contains(t, names, want, "at %s", span.FormatPos(pos))
		}
	}
}

func TestDisjointScopesAreInvisible(t *testing.T) {
	table := New(fixture(), classifier(t), nil)

	inner := table.GetSymbolsInScope(span.Pos(5, 15)).Names()
	require.Subset(t, inner, []string{"a", "b", "c"})
	require.NotContains(t, inner, "d")

	other := table.GetSymbolsInScope(span.Pos(8, 13)).Names()
	require.Contains(t, other, "d")
	for _, hidden := range []string{"a", "b", "c"} {
		require.NotContains(t, other, hidden)
	}

	// Scope ranges are half-open.
	require.Equal(t, []string{"T", "N", "f"}, table.GetSymbolsInScope(span.Pos(6, 1)).Names())
}

func TestScopeAt(t *testing.T) {
	table := New(fixture(), classifier(t), nil)

	chain := table.ScopeAt(span.Pos(5, 15))
	require.Len(t, chain, 4)
	var kinds []string
	for _, id := range chain {
		kinds = append(kinds, table.Scope(id).Kind.String())
	}
	require.Equal(t, []string{"Root", "Function", "Block", "Block"}, kinds)

	require.Equal(t, []ScopeID{table.Root()}, table.ScopeAt(span.Pos(0, 3)))
}

func TestUsageResolution(t *testing.T) {
	table := New(fixture(), classifier(t), nil)

	n, ok := table.GetSymbolAtPos("N", span.Pos(0, 0))
	require.True(t, ok)
	require.Equal(t, []protocol.Range{span.Range(2, 10, 2, 11)}, n.Usages)

	b, ok := table.GetSymbolAtPos("b", span.Pos(5, 0))
	require.True(t, ok)
	require.Empty(t, b.Usages, "b is used before it is declared")

	sym, ok := table.SymbolAtRange(span.Pos(3, 7))
	require.True(t, ok)
	require.Equal(t, "a", sym.Name)
	sym, ok = table.SymbolAtRange(span.Pos(0, 10))
	require.True(t, ok)
	require.Equal(t, "N", sym.Name)
	_, ok = table.SymbolAtRange(span.Pos(3, 2))
	require.False(t, ok)
}

func TestPrecedence(t *testing.T) {
	a := build(node("Root", span.Range(0, 0, 5, 0),
		node("TypeDec", span.Range(0, 0, 0, 10), leaf("Name", span.Range(0, 5, 0, 6), "x")),
		node("ConstDec", span.Range(1, 0, 1, 10), leaf("Name", span.Range(1, 6, 1, 7), "x")),
		node("ConstDec", span.Range(2, 0, 2, 10), leaf("Name", span.Range(2, 6, 2, 7), "y")),
		node("ConstDec", span.Range(3, 0, 3, 10), leaf("Name", span.Range(3, 6, 3, 7), "y")),
		node("Block", span.Range(4, 0, 4, 30), varDec("x", 4, 2, 6)),
	))
	table := New(a, classifier(t), nil)

	sym, ok := table.GetSymbolAtPos("x", span.Pos(0, 0))
	require.True(t, ok)
	require.Equal(t, Constants, sym.Category)

	sym, ok = table.GetSymbolAtPos("x", span.Pos(4, 20))
	require.True(t, ok)
	require.Equal(t, Variables, sym.Category)

	sym, ok = table.GetSymbolAtPos("x", span.Pos(4, 3))
	require.True(t, ok)
	require.Equal(t, Constants, sym.Category)

	sym, ok = table.GetSymbolAtPos("y", span.Pos(0, 0))
	require.True(t, ok)
	require.Equal(t, span.Range(3, 6, 3, 7), sym.NameRange)

	_, ok = table.GetSymbolAtPos("nope", span.Pos(4, 20))
	require.False(t, ok)
}

func TestClassificationErrors(t *testing.T) {
	a := build(node("Root", span.Range(0, 0, 3, 0),
		node("VarDec", span.Range(0, 0, 0, 8), leaf("Name", span.Range(0, 4, 0, 6), "ok")),
		node("BadDec", span.Range(1, 0, 1, 8), leaf("Name", span.Range(1, 4, 1, 5), "w")),
		node("VarDec", span.Range(2, 0, 2, 8)),
	))
	table := New(a, classifier(t), nil)

	require.Equal(t, []string{"ok"}, table.GetTopLevelSymbols().Names())
	require.Equal(t, []Error{
		{Range: span.Range(1, 0, 1, 8), Kind: ast.Generic("BadDec"), Reason: `unknown symbol category "widget"`},
		{Range: span.Range(2, 0, 2, 8), Kind: ast.Generic("VarDec"), Reason: "declaration has no name"},
	}, table.Errors())

	var got []string
	for _, d := range table.Diagnostics() {
		got = append(got, d.String())
	}
	require.Equal(t, []string{
		`2:1-2:9 warning symbol-classification: BadDec: unknown symbol category "widget"`,
		"3:1-3:9 warning symbol-classification: VarDec: declaration has no name",
	}, got)
}

func TestEmptyTable(t *testing.T) {
	table := New(nil, classifier(t), nil)
	require.False(t, table.Root().IsValid())
	require.Nil(t, table.GetTopLevelSymbols())
	require.Nil(t, table.GetSymbolsInScope(span.Pos(0, 0)))
	_, ok := table.GetSymbolAtPos("x", span.Pos(0, 0))
	require.False(t, ok)
	require.Equal(t, "(empty)", table.String())
}

func TestUpdateIsIdempotent(t *testing.T) {
	a := fixture()
	m := NewManager(a, classifier(t), nil)
	m.Update(a)
	first := m.Table()
	m.Update(a)
	second := m.Table()

	require.Equal(t, first.String(), second.String())
	for line := 0; line < 10; line++ {
		for col := 0; col < 20; col++ {
			pos := span.Pos(line, col)
			require.Equal(t, first.GetSymbolsInScope(pos).Names(), second.GetSymbolsInScope(pos).Names())
			for _, name := range []string{"N", "f", "T", "a", "b", "c", "d"} {
				s1, ok1 := first.GetSymbolAtPos(name, pos)
				s2, ok2 := second.GetSymbolAtPos(name, pos)
				require.Equal(t, ok1, ok2)
				if ok1 {
					require.Equal(t, s1.ID, s2.ID)
				}
			}
		}
	}
}

func TestRename(t *testing.T) {
	a := fixture()
	m := NewManager(a, classifier(t), nil)

	sym, ok := m.GetSymbolAtPos("a", span.Pos(3, 6))
	require.True(t, ok)

	ranges, err := m.NewEdit(Rename{SymbolID: sym.ID, NewName: "z"})
	require.NoError(t, err)
	require.Equal(t, []protocol.Range{span.Range(2, 6, 2, 7), span.Range(3, 6, 3, 7)}, ranges)

	_, ok = m.GetSymbolAtPos("z", span.Pos(3, 6))
	require.True(t, ok)
	_, ok = m.GetSymbolAtPos("a", span.Pos(3, 6))
	require.False(t, ok)

	_, err = m.NewEdit(Rename{SymbolID: 999, NewName: "q"})
	require.ErrorIs(t, err, ErrNoSymbol)
	_, err = m.NewEdit(Rename{SymbolID: sym.ID})
	require.Error(t, err)

	m.Update(a)
	_, ok = m.GetSymbolAtPos("a", span.Pos(3, 6))
	require.True(t, ok)
}

func TestCloneIsIndependent(t *testing.T) {
	table := New(fixture(), classifier(t), nil)
	sym, ok := table.GetSymbolAtPos("N", span.Pos(0, 0))
	require.True(t, ok)

	clone := table.Clone()
	_, err := ManagerFor(clone, classifier(t), nil).NewEdit(Rename{SymbolID: sym.ID, NewName: "M"})
	require.NoError(t, err)

	require.Equal(t, "N", table.Symbol(sym.ID).Name)
	require.Equal(t, "M", clone.Symbol(sym.ID).Name)
	require.Contains(t, clone.GetTopLevelSymbols().Names(), "M")
}

func TestParseCategory(t *testing.T) {
	for in, want := range map[string]Category{
		"type": Types, "types": Types,
		"constant": Constants, "Constants": Constants,
		"variable": Variables, "variables": Variables,
		"function": Functions, "functions": Functions,
	} {
		got, ok := ParseCategory(in)
		require.True(t, ok, in)
		require.Equal(t, want, got, in)
	}
	_, ok := ParseCategory("module")
	require.False(t, ok)
}

func TestEveryNameIsDeclared(t *testing.T) {
	// var a, b int = 1, 2
	// use(b, a, b)
	a := build(node("Root", span.Range(0, 0, 2, 0),
		node("VarDec", span.Range(0, 0, 0, 19),
			leaf("Name", span.Range(0, 4, 0, 5), "a"),
			leaf("Name", span.Range(0, 7, 0, 8), "b"),
			leaf("Type", span.Range(0, 9, 0, 12), "int")),
	),
		ast.Usage{Name: "b", Range: span.Range(1, 10, 1, 11)},
		ast.Usage{Name: "a", Range: span.Range(1, 7, 1, 8)},
		ast.Usage{Name: "b", Range: span.Range(1, 4, 1, 5)},
	)
	table := New(a, classifier(t), nil)
	require.Empty(t, table.Errors())
	require.Equal(t, []string{"a", "b"}, table.GetTopLevelSymbols().Names())

	b, ok := table.GetSymbolAtPos("b", span.Pos(1, 0))
	require.True(t, ok)
	require.Equal(t, "int", b.Type)
	require.Equal(t, span.Range(0, 0, 0, 19), b.Range)
	require.Equal(t, []protocol.Range{
		span.Range(0, 7, 0, 8),
		span.Range(1, 4, 1, 5),
		span.Range(1, 10, 1, 11),
	}, b.Locations())

	sym, ok := table.SymbolWithRange(span.Range(1, 7, 1, 8))
	require.True(t, ok)
	require.Equal(t, "a", sym.Name)
	_, ok = table.SymbolWithRange(span.Range(1, 7, 1, 9))
	require.False(t, ok)
}
