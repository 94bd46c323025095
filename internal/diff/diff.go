// Package diff computes structural comparisons between two snapshots of the
// same document: an LCS-aligned line diff over flattened content, per-field
// metadata diffs, and aggregate change statistics.
package diff

import (
	"slices"
	"strings"

	"github.com/pkeller/policyvault/internal/model"
)

// DefaultModifiedWindow bounds how many removed/added lines inside one
// alignment gap are paired into modified entries.
const DefaultModifiedWindow = 5

// Engine computes diff reports.
type Engine struct {
	modifiedWindow int
}

// Option configures an Engine.
type Option func(*Engine)

// WithModifiedWindow sets the proximity window for pairing a removed line
// with an adjacent added line into a single modified entry.
func WithModifiedWindow(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.modifiedWindow = n
		}
	}
}

// NewEngine creates a diff engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{modifiedWindow: DefaultModifiedWindow}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compare produces a report describing how to get from the old snapshot to
// the new one. Both snapshots must belong to the same document. Comparing a
// snapshot against itself short-circuits to an all-unchanged report.
func (e *Engine) Compare(from, to *model.PolicyVersion) (*Report, error) {
	if from.DocumentID != to.DocumentID {
		return nil, model.InvalidComparison("versions belong to different documents")
	}

	report := &Report{
		FromVersion: from.ID,
		ToVersion:   to.ID,
		FieldDiffs:  fieldDiffs(from, to),
	}

	if from.ID == to.ID {
		lines := from.Content.FlattenToLines()
		for i, line := range lines {
			report.LineDiffs = append(report.LineDiffs, LineDiff{
				Kind:          LineUnchanged,
				LineNumberOld: i + 1,
				LineNumberNew: i + 1,
				TextOld:       line,
				TextNew:       line,
			})
		}
		report.Stats = aggregate(report.LineDiffs, len(lines), len(lines))
		return report, nil
	}

	a := from.Content.FlattenToLines()
	b := to.Content.FlattenToLines()

	report.LineDiffs = e.lineDiffs(a, b)
	report.Stats = aggregate(report.LineDiffs, len(a), len(b))
	return report, nil
}

// lineDiffs aligns the two line sequences in a canonical orientation, so
// that comparing the same pair in either direction selects the same common
// subsequence. When several subsequences tie, the LCS walk's tie-break is
// not stable under swapping the inputs; aligning once and mirroring keeps
// the reversed report an exact mirror of the forward one.
func (e *Engine) lineDiffs(a, b []string) []LineDiff {
	if slices.Compare(a, b) <= 0 {
		return e.pairModified(align(a, b))
	}
	return mirror(e.pairModified(align(b, a)))
}

// mirror swaps the old and new sides of every entry.
func mirror(diffs []LineDiff) []LineDiff {
	out := make([]LineDiff, len(diffs))
	for i, d := range diffs {
		m := LineDiff{
			Kind:          d.Kind,
			LineNumberOld: d.LineNumberNew,
			LineNumberNew: d.LineNumberOld,
			TextOld:       d.TextNew,
			TextNew:       d.TextOld,
		}
		switch d.Kind {
		case LineAdded:
			m.Kind = LineRemoved
		case LineRemoved:
			m.Kind = LineAdded
		}
		out[i] = m
	}
	return out
}

// align walks an LCS table over a (old) and b (new), producing raw
// unchanged/removed/added entries with 1-based line numbers.
func align(a, b []string) []LineDiff {
	n, m := len(a), len(b)

	// lcs[i][j] = length of the longest common subsequence of a[i:], b[j:].
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	var out []LineDiff
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case a[i] == b[j]:
			out = append(out, LineDiff{
				Kind:          LineUnchanged,
				LineNumberOld: i + 1,
				LineNumberNew: j + 1,
				TextOld:       a[i],
				TextNew:       b[j],
			})
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			out = append(out, LineDiff{Kind: LineRemoved, LineNumberOld: i + 1, TextOld: a[i]})
			i++
		default:
			out = append(out, LineDiff{Kind: LineAdded, LineNumberNew: j + 1, TextNew: b[j]})
			j++
		}
	}
	for ; i < n; i++ {
		out = append(out, LineDiff{Kind: LineRemoved, LineNumberOld: i + 1, TextOld: a[i]})
	}
	for ; j < m; j++ {
		out = append(out, LineDiff{Kind: LineAdded, LineNumberNew: j + 1, TextNew: b[j]})
	}
	return out
}

// pairModified reclassifies adjacent removed/added lines within an alignment
// gap as single modified entries, so a one-word edit is not reported as a
// full delete plus insert. Pairing is index-wise within each gap, capped by
// the proximity window; leftovers keep their raw kind.
func (e *Engine) pairModified(raw []LineDiff) []LineDiff {
	var out []LineDiff
	var removed, added []LineDiff

	flush := func() {
		pairs := min3(len(removed), len(added), e.modifiedWindow)
		for k := 0; k < pairs; k++ {
			out = append(out, LineDiff{
				Kind:          LineModified,
				LineNumberOld: removed[k].LineNumberOld,
				LineNumberNew: added[k].LineNumberNew,
				TextOld:       removed[k].TextOld,
				TextNew:       added[k].TextNew,
			})
		}
		out = append(out, removed[pairs:]...)
		out = append(out, added[pairs:]...)
		removed = removed[:0]
		added = added[:0]
	}

	for _, d := range raw {
		switch d.Kind {
		case LineRemoved:
			removed = append(removed, d)
		case LineAdded:
			added = append(added, d)
		default:
			flush()
			out = append(out, d)
		}
	}
	flush()
	return out
}

// fieldDiffs compares the denormalized metadata captured on each snapshot.
func fieldDiffs(from, to *model.PolicyVersion) []FieldDiff {
	compare := func(field, oldVal, newVal string) FieldDiff {
		return FieldDiff{Field: field, OldValue: oldVal, NewValue: newVal, Changed: oldVal != newVal}
	}
	return []FieldDiff{
		compare("title", from.Title, to.Title),
		compare("category", from.Category, to.Category),
		compare("jurisdiction_tags",
			strings.Join(from.JurisdictionTags, ", "),
			strings.Join(to.JurisdictionTags, ", ")),
		compare("status", string(from.Status), string(to.Status)),
	}
}

// aggregate counts line-diff kinds and derives the change percentage over
// the longer of the two line sequences.
func aggregate(diffs []LineDiff, lenA, lenB int) Stats {
	var s Stats
	for _, d := range diffs {
		switch d.Kind {
		case LineAdded:
			s.Additions++
		case LineRemoved:
			s.Deletions++
		case LineModified:
			s.Modifications++
		case LineUnchanged:
			s.Unchanged++
		}
	}
	s.TotalChanged = s.Additions + s.Deletions + s.Modifications

	denom := lenA
	if lenB > denom {
		denom = lenB
	}
	if denom < 1 {
		denom = 1
	}
	s.PercentChanged = float64(s.TotalChanged) / float64(denom)
	return s
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
