package diff

// LineKind classifies one line of a diff.
type LineKind string

const (
	LineAdded     LineKind = "added"
	LineRemoved   LineKind = "removed"
	LineModified  LineKind = "modified"
	LineUnchanged LineKind = "unchanged"
)

// LineDiff is one classified line in a comparison. Line numbers are 1-based;
// zero means the line has no position on that side.
type LineDiff struct {
	Kind          LineKind `json:"kind"`
	LineNumberOld int      `json:"line_number_old,omitempty"`
	LineNumberNew int      `json:"line_number_new,omitempty"`
	TextOld       string   `json:"text_old,omitempty"`
	TextNew       string   `json:"text_new,omitempty"`
}

// FieldDiff is the comparison of one metadata field between two snapshots.
type FieldDiff struct {
	Field    string `json:"field"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
	Changed  bool   `json:"changed"`
}

// Stats aggregates a report's line-diff kinds.
type Stats struct {
	Additions      int     `json:"additions"`
	Deletions      int     `json:"deletions"`
	Modifications  int     `json:"modifications"`
	Unchanged      int     `json:"unchanged"`
	TotalChanged   int     `json:"total_changed"`
	PercentChanged float64 `json:"percent_changed"`
}

// Report is the full structural comparison of two snapshots. It is ephemeral:
// computed on demand, never persisted.
type Report struct {
	FromVersion string      `json:"from_version"`
	ToVersion   string      `json:"to_version"`
	LineDiffs   []LineDiff  `json:"line_diffs"`
	FieldDiffs  []FieldDiff `json:"field_diffs"`
	Stats       Stats       `json:"stats"`
}
