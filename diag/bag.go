package diag

import (
	"sort"

	"github.com/arjunmahishi/tsls/span"
)

// DefaultMax bounds a bag created with a non-positive limit.
const DefaultMax = 1000

// Bag accumulates diagnostics up to a limit.
type Bag struct {
	items []Diagnostic
	max   int
}

// NewBag creates a bag holding at most max diagnostics.
func NewBag(max int) *Bag {
	if max <= 0 {
		max = DefaultMax
	}
	return &Bag{max: max}
}

// Add appends d. It returns false once the limit is reached.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Len reports the number of diagnostics.
func (b *Bag) Len() int { return len(b.items) }

// Items returns the diagnostics. The slice must not be modified.
func (b *Bag) Items() []Diagnostic { return b.items }

// HasErrors reports whether any diagnostic has error severity.
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// Merge appends the diagnostics of other, growing the limit if needed.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	if total := len(b.items) + len(other.items); total > b.max {
		b.max = total
	}
	b.items = append(b.items, other.items...)
}

// Sort orders diagnostics by start, end, severity (desc) and code.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if c := span.Compare(di.Range.Start, dj.Range.Start); c != 0 {
			return c < 0
		}
		if c := span.Compare(di.Range.End, dj.Range.End); c != 0 {
			return c < 0
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}

// Dedup drops diagnostics repeating an earlier code, range and message.
func (b *Bag) Dedup() {
	type key struct {
		code Code
		rng  string
		msg  string
	}
	seen := make(map[key]bool, len(b.items))
	out := b.items[:0]
	for _, d := range b.items {
		k := key{d.Code, span.FormatRange(d.Range), d.Message}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, d)
	}
	b.items = out
}
