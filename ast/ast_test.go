package ast

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arjunmahishi/tsls/span"
)

// buildSample builds:
//
//	Root
//	  Func
//	    Name "f"
//	    Block
//	      Name "x"
//	  Name "y"
func buildSample(t *testing.T) (*Ast, map[string]NodeID) {
	t.Helper()
	b := NewBuilder(0)
	ids := map[string]NodeID{}
	ids["root"] = b.NewNode(KindRoot, span.Range(0, 0, 10, 0), "")
	b.SetRoot(ids["root"])
	ids["func"] = b.NewNode(Generic("Func"), span.Range(0, 0, 5, 1), "")
	ids["f"] = b.NewNode(KindName, span.Range(0, 5, 0, 6), "f")
	ids["block"] = b.NewNode(Generic("Block"), span.Range(0, 9, 5, 1), "")
	ids["x"] = b.NewNode(KindName, span.Range(1, 5, 1, 6), "x")
	ids["y"] = b.NewNode(KindName, span.Range(7, 0, 7, 1), "y")
	b.Append(ids["root"], ids["func"])
	b.Append(ids["func"], ids["f"])
	b.Append(ids["func"], ids["block"])
	b.Append(ids["block"], ids["x"])
	b.Append(ids["root"], ids["y"])
	b.AddUsage(Usage{Name: "x", Range: span.Range(2, 1, 2, 2)})
	return b.Finish(), ids
}

func TestKindFor(t *testing.T) {
	require.Equal(t, KindRoot, KindFor("Root"))
	require.Equal(t, KindName, KindFor("Name"))
	require.Equal(t, KindType, KindFor("Type"))
	require.Equal(t, Generic("ConstantDec"), KindFor("ConstantDec"))
	require.Equal(t, "ConstantDec", KindFor("ConstantDec").String())
	require.False(t, NodeKind{}.IsValid())
	require.False(t, Generic("").IsValid())
}

func TestArenaNavigation(t *testing.T) {
	a, ids := buildSample(t)

	require.Equal(t, ids["root"], a.Root())
	require.Equal(t, 6, a.Len())
	require.Equal(t, []NodeID{ids["func"], ids["y"]}, a.Children(a.Root()))

	name, ok := a.ChildOfKind(ids["func"], KindName)
	require.True(t, ok)
	require.Equal(t, "f", a.Get(name).Content)

	_, ok = a.ChildOfKind(ids["x"], KindName)
	require.False(t, ok)
	require.Nil(t, a.Get(NoNodeID))
	require.Nil(t, a.Get(NodeID(99)))
	require.Len(t, a.Usages(), 1)
}

func TestSubscopeIDsStopsAtNearestScope(t *testing.T) {
	a, ids := buildSample(t)
	isScope := func(k NodeKind) bool { return k == Generic("Block") }

	require.Equal(t, []NodeID{ids["block"]}, a.SubscopeIDs(a.Root(), isScope))
	require.Empty(t, a.SubscopeIDs(ids["block"], isScope))
}

func TestNodeAt(t *testing.T) {
	a, ids := buildSample(t)

	id, ok := a.NodeAt(span.Pos(1, 5))
	require.True(t, ok)
	require.Equal(t, ids["x"], id)

	id, ok = a.NodeAt(span.Pos(3, 0))
	require.True(t, ok)
	require.Equal(t, ids["block"], id)

	_, ok = a.NodeAt(span.Pos(20, 0))
	require.False(t, ok)
}

func TestBuilderRejectsSecondParent(t *testing.T) {
	b := NewBuilder(4)
	root := b.NewNode(KindRoot, span.Range(0, 0, 1, 0), "")
	b.SetRoot(root)
	a := b.NewNode(Generic("A"), span.Range(0, 0, 0, 1), "")
	c := b.NewNode(Generic("C"), span.Range(0, 0, 0, 1), "")
	b.Append(root, a)
	b.Append(a, c)

	require.Panics(t, func() { b.Append(root, c) })
	require.Panics(t, func() { b.Append(a, a) })
	require.Panics(t, func() { b.Append(a, root) })
	require.Panics(t, func() { b.Append(a, NoNodeID) })
}

func TestString(t *testing.T) {
	a, _ := buildSample(t)
	want := `Root 1:1-11:1
  Func 1:1-6:2
    Name 1:6-1:7 "f"
    Block 1:10-6:2
      Name 2:6-2:7 "x"
  Name 8:1-8:2 "y"`
	require.Equal(t, want, a.String())

	var empty *Ast
	require.Equal(t, "(empty)", empty.String())
}
