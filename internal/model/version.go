package model

import (
	"database/sql"
	"fmt"
	"time"
)

// VersionStatus is the lifecycle state of a snapshot.
type VersionStatus string

const (
	StatusDraft       VersionStatus = "draft"
	StatusUnderReview VersionStatus = "under_review"
	StatusApproved    VersionStatus = "approved"
	StatusPublished   VersionStatus = "published"
	StatusArchived    VersionStatus = "archived"
)

// allowedTransitions is the full status state machine. draft is initial,
// archived is terminal; anything not listed here is rejected.
var allowedTransitions = map[VersionStatus][]VersionStatus{
	StatusDraft:       {StatusUnderReview, StatusArchived},
	StatusUnderReview: {StatusApproved, StatusArchived},
	StatusApproved:    {StatusPublished, StatusArchived},
	StatusPublished:   {StatusArchived},
	StatusArchived:    {},
}

// ValidStatus reports whether s is a known lifecycle status.
func ValidStatus(s VersionStatus) bool {
	_, ok := allowedTransitions[s]
	return ok
}

// CanTransition reports whether the status state machine permits from -> to.
func CanTransition(from, to VersionStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// VersionMetadata is the document metadata captured alongside a snapshot.
// It is denormalized on purpose: historical snapshots must reflect the
// metadata as it was at snapshot time.
type VersionMetadata struct {
	Title            string        `json:"title"`
	Category         string        `json:"category"`
	JurisdictionTags []string      `json:"jurisdiction_tags"`
	InitialStatus    VersionStatus `json:"initial_status,omitempty"`
}

// PolicyVersion is one immutable snapshot of a document. Content,
// VersionNumber and DocumentID never change once persisted.
type PolicyVersion struct {
	ID               string
	DocumentID       string
	VersionNumber    int
	Title            string
	Category         string
	JurisdictionTags []string
	Content          Content
	Status           VersionStatus
	ChangeSummary    string
	CreatedBy        string
	CreatedAt        time.Time
	ApprovedBy       sql.NullString
	ApprovedAt       sql.NullTime
	PublishedBy      sql.NullString
	PublishedAt      sql.NullTime
	DeletedAt        sql.NullTime
}

// WordCount returns the snapshot's word count.
func (v *PolicyVersion) WordCount() int {
	return v.Content.WordCount()
}

// DisplayVersion renders the version number for UIs, e.g. "3.0".
func (v *PolicyVersion) DisplayVersion() string {
	return fmt.Sprintf("%d.0", v.VersionNumber)
}

// Age returns how long ago the snapshot was created.
func (v *PolicyVersion) Age(now time.Time) time.Duration {
	return now.Sub(v.CreatedAt)
}

// Deleted reports whether the snapshot has been soft-deleted.
func (v *PolicyVersion) Deleted() bool {
	return v.DeletedAt.Valid
}
