package store

import (
	"context"

	"github.com/pkeller/policyvault/internal/model"
)

// Stats holds engine-wide aggregate numbers for the stats endpoint.
type Stats struct {
	TotalDocuments       int
	TotalVersions        int
	TotalWords           int
	AverageWordsPerDoc   float64
	LargestDocumentTitle string
	LargestDocumentWords int
}

// Store persists documents and their append-only snapshot history.
// Implementations must guarantee that CreateSnapshot allocates version
// numbers atomically per document: two concurrent calls never produce the
// same (documentID, versionNumber) pair.
type Store interface {
	// CreateDocument persists a new host document.
	CreateDocument(ctx context.Context, doc *model.Document) error

	// GetDocument retrieves a document by id, or NotFound.
	GetDocument(ctx context.Context, documentID string) (*model.Document, error)

	// CreateSnapshot allocates the next version number for v.DocumentID and
	// persists v with it. Fills in v.ID, v.VersionNumber and v.CreatedAt.
	// Returns NotFound if the document does not exist, Conflict if the
	// allocation race could not be resolved within the retry budget.
	CreateSnapshot(ctx context.Context, v *model.PolicyVersion) error

	// GetSnapshot retrieves a snapshot by id. Soft-deleted snapshots are
	// NotFound unless includeDeleted is set.
	GetSnapshot(ctx context.Context, versionID string, includeDeleted bool) (*model.PolicyVersion, error)

	// LatestSnapshot returns the non-deleted snapshot with the highest
	// version number for a document, or NotFound if there is none.
	LatestSnapshot(ctx context.Context, documentID string) (*model.PolicyVersion, error)

	// ListSnapshots returns a document's snapshots newest first.
	ListSnapshots(ctx context.Context, documentID string, includeDeleted bool) ([]model.PolicyVersion, error)

	// UpdateStatus applies a lifecycle transition, validating it against the
	// status state machine. Never alters content.
	UpdateStatus(ctx context.Context, versionID string, newStatus model.VersionStatus, actor string) (*model.PolicyVersion, error)

	// SoftDelete marks a snapshot deleted and returns it as deleted, so
	// callers audit the exact state the store acted on. Published snapshots
	// are Forbidden.
	SoftDelete(ctx context.Context, versionID, actor string) (*model.PolicyVersion, error)

	// Restore clears a snapshot's soft-delete marker.
	Restore(ctx context.Context, versionID string) error

	// Stats computes engine-wide aggregates.
	Stats(ctx context.Context) (*Stats, error)
}
