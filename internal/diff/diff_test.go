package diff_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pkeller/policyvault/internal/diff"
	"github.com/pkeller/policyvault/internal/model"
)

func version(id, docID string, lines ...string) *model.PolicyVersion {
	blocks := make([]model.Block, 0, len(lines))
	for _, line := range lines {
		blocks = append(blocks, model.Block{Kind: model.BlockParagraph, Text: line})
	}
	return &model.PolicyVersion{
		ID:         id,
		DocumentID: docID,
		Title:      "Policy A",
		Content:    model.Content{Blocks: blocks},
	}
}

// The canonical scenario: "line2" edited in place and "line3" appended must
// surface as one modified line and one added line, never a delete+insert pair.
func TestCompare_ModifiedAndAdded(t *testing.T) {
	t.Parallel()

	old := version("v1", "doc1", "line1", "line2")
	updated := version("v2", "doc1", "line1", "line2 modified", "line3")

	report, err := diff.NewEngine().Compare(old, updated)
	require.NoError(t, err)

	require.Equal(t, 1, report.Stats.Additions)
	require.Equal(t, 1, report.Stats.Modifications)
	require.Equal(t, 0, report.Stats.Deletions)
	require.Equal(t, 1, report.Stats.Unchanged)
	require.Equal(t, 2, report.Stats.TotalChanged)

	var modified, added *diff.LineDiff
	for i := range report.LineDiffs {
		d := &report.LineDiffs[i]
		switch d.Kind {
		case diff.LineModified:
			modified = d
		case diff.LineAdded:
			added = d
		}
	}
	require.NotNil(t, modified)
	require.Equal(t, "line2", modified.TextOld)
	require.Equal(t, "line2 modified", modified.TextNew)
	require.NotNil(t, added)
	require.Equal(t, "line3", added.TextNew)
}

func TestCompare_Identity(t *testing.T) {
	t.Parallel()

	v := version("v1", "doc1", "line1", "line2")

	report, err := diff.NewEngine().Compare(v, v)
	require.NoError(t, err)

	require.Equal(t, 0, report.Stats.TotalChanged)
	require.Equal(t, 2, report.Stats.Unchanged)
	require.Equal(t, 0.0, report.Stats.PercentChanged)
	for _, d := range report.LineDiffs {
		require.Equal(t, diff.LineUnchanged, d.Kind)
	}
}

func TestCompare_IdenticalContentDistinctVersions(t *testing.T) {
	t.Parallel()

	a := version("v1", "doc1", "line1", "line2")
	b := version("v2", "doc1", "line1", "line2")

	report, err := diff.NewEngine().Compare(a, b)
	require.NoError(t, err)
	require.Equal(t, 0, report.Stats.TotalChanged)
	require.Equal(t, 2, report.Stats.Unchanged)
}

// compare(a, b).additions must equal compare(b, a).deletions, and vice
// versa. The second case has several longest common subsequences of equal
// length, so the alignment must not depend on comparison direction.
func TestCompare_SymmetryOfCounts(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		oldLines []string
		newLines []string
	}{
		{
			name:     "unique alignment",
			oldLines: []string{"alpha", "beta", "gamma", "delta"},
			newLines: []string{"alpha", "gamma", "epsilon", "zeta", "eta"},
		},
		{
			name:     "ambiguous alignment",
			oldLines: []string{"alpha", "beta"},
			newLines: []string{"beta", "alpha", "alpha"},
		},
	}

	engine := diff.NewEngine()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			a := version("v1", "doc1", tc.oldLines...)
			b := version("v2", "doc1", tc.newLines...)

			forward, err := engine.Compare(a, b)
			require.NoError(t, err)
			backward, err := engine.Compare(b, a)
			require.NoError(t, err)

			require.Equal(t, forward.Stats.Additions, backward.Stats.Deletions)
			require.Equal(t, forward.Stats.Deletions, backward.Stats.Additions)
			require.Equal(t, forward.Stats.Modifications, backward.Stats.Modifications)
			require.Equal(t, forward.Stats.Unchanged, backward.Stats.Unchanged)
		})
	}
}

func TestCompare_DifferentDocuments(t *testing.T) {
	t.Parallel()

	a := version("v1", "doc1", "line1")
	b := version("v2", "doc2", "line1")

	_, err := diff.NewEngine().Compare(a, b)
	require.Error(t, err)
	require.True(t, model.IsCode(err, model.CodeInvalidComparison))
}

func TestCompare_EmptyAgainstContent(t *testing.T) {
	t.Parallel()

	empty := version("v1", "doc1")
	full := version("v2", "doc1", "line1", "line2")

	report, err := diff.NewEngine().Compare(empty, full)
	require.NoError(t, err)
	require.Equal(t, 2, report.Stats.Additions)
	require.Equal(t, 0, report.Stats.Deletions)
	require.Equal(t, 1.0, report.Stats.PercentChanged)
}

func TestCompare_BothEmpty(t *testing.T) {
	t.Parallel()

	report, err := diff.NewEngine().Compare(version("v1", "doc1"), version("v2", "doc1"))
	require.NoError(t, err)
	require.Equal(t, 0, report.Stats.TotalChanged)
	require.Equal(t, 0.0, report.Stats.PercentChanged)
}

func TestCompare_FieldDiffs(t *testing.T) {
	t.Parallel()

	a := version("v1", "doc1", "line1")
	a.Category = "hr"
	a.JurisdictionTags = []string{"us", "eu"}
	b := version("v2", "doc1", "line1")
	b.Title = "Policy B"
	b.Category = "hr"
	b.JurisdictionTags = []string{"us"}

	report, err := diff.NewEngine().Compare(a, b)
	require.NoError(t, err)

	byField := map[string]diff.FieldDiff{}
	for _, fd := range report.FieldDiffs {
		byField[fd.Field] = fd
	}

	require.True(t, byField["title"].Changed)
	require.Equal(t, "Policy A", byField["title"].OldValue)
	require.Equal(t, "Policy B", byField["title"].NewValue)
	require.False(t, byField["category"].Changed)
	require.True(t, byField["jurisdiction_tags"].Changed)
}

// The proximity window caps how many removed/added lines in one gap are
// paired; leftovers keep their raw classification.
func TestCompare_ModifiedWindow(t *testing.T) {
	t.Parallel()

	a := version("v1", "doc1", "a1", "a2", "a3")
	b := version("v2", "doc1", "b1", "b2", "b3")

	report, err := diff.NewEngine(diff.WithModifiedWindow(1)).Compare(a, b)
	require.NoError(t, err)

	require.Equal(t, 1, report.Stats.Modifications)
	require.Equal(t, 2, report.Stats.Deletions)
	require.Equal(t, 2, report.Stats.Additions)
}

func TestCompare_PercentChanged(t *testing.T) {
	t.Parallel()

	a := version("v1", "doc1", "keep", "drop")
	b := version("v2", "doc1", "keep")

	report, err := diff.NewEngine().Compare(a, b)
	require.NoError(t, err)
	require.Equal(t, 1, report.Stats.Deletions)
	require.InDelta(t, 0.5, report.Stats.PercentChanged, 1e-9)
}
