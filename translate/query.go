package translate

import (
	"github.com/arjunmahishi/tsls/cst"
	"github.com/arjunmahishi/tsls/langdef"
)

// run evaluates q against the children of n. Error and missing nodes never
// match, so a One child whose only candidate is broken reports as missing.
func run(q langdef.Query, n cst.Node) []cst.Node {
	switch q.Op {
	case langdef.QueryKind:
		return children(n, func(i int, c cst.Node) bool { return c.Kind() == q.Name })
	case langdef.QueryField:
		return children(n, func(i int, c cst.Node) bool { return n.FieldNameForChild(i) == q.Name })
	case langdef.QueryPath:
		current := []cst.Node{n}
		for _, step := range q.Path {
			var next []cst.Node
			for _, c := range current {
				next = append(next, run(step, c)...)
			}
			if len(next) == 0 {
				return nil
			}
			current = next
		}
		return current
	}
	return nil
}

func children(n cst.Node, keep func(i int, c cst.Node) bool) []cst.Node {
	var out []cst.Node
	for i := 0; i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil || c.IsError() {
			continue
		}
		if keep(i, c) {
			out = append(out, c)
		}
	}
	return out
}
