package store

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkeller/policyvault/internal/model"
)

// MemoryStore is an in-memory Store used by tests and embedded runs. A single
// mutex serializes version allocation, which satisfies the same per-document
// guarantee the Postgres backend gets from its transaction and unique index.
type MemoryStore struct {
	mu         sync.RWMutex
	documents  map[string]*model.Document
	versions   map[string]*model.PolicyVersion
	byDocument map[string][]string // version ids in insertion order
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		documents:  make(map[string]*model.Document),
		versions:   make(map[string]*model.PolicyVersion),
		byDocument: make(map[string][]string),
	}
}

// cloneVersion keeps stored snapshots immutable: callers only ever see copies.
func cloneVersion(v *model.PolicyVersion) *model.PolicyVersion {
	out := *v
	out.JurisdictionTags = append([]string(nil), v.JurisdictionTags...)
	out.Content.Blocks = append([]model.Block(nil), v.Content.Blocks...)
	return &out
}

// CreateDocument persists a new host document.
func (s *MemoryStore) CreateDocument(ctx context.Context, doc *model.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	copied := *doc
	copied.JurisdictionTags = append([]string(nil), doc.JurisdictionTags...)
	s.documents[doc.ID] = &copied
	return nil
}

// GetDocument retrieves a document by id.
func (s *MemoryStore) GetDocument(ctx context.Context, documentID string) (*model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[documentID]
	if !ok {
		return nil, model.NotFoundDocument(documentID)
	}
	copied := *doc
	copied.JurisdictionTags = append([]string(nil), doc.JurisdictionTags...)
	return &copied, nil
}

// CreateSnapshot allocates the next version number and persists the snapshot.
func (s *MemoryStore) CreateSnapshot(ctx context.Context, v *model.PolicyVersion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[v.DocumentID]; !ok {
		return model.NotFoundDocument(v.DocumentID)
	}

	max := 0
	for _, id := range s.byDocument[v.DocumentID] {
		if n := s.versions[id].VersionNumber; n > max {
			max = n
		}
	}

	v.ID = uuid.NewString()
	v.VersionNumber = max + 1
	v.CreatedAt = time.Now().UTC()
	if v.Status == "" {
		v.Status = model.StatusDraft
	}

	s.versions[v.ID] = cloneVersion(v)
	s.byDocument[v.DocumentID] = append(s.byDocument[v.DocumentID], v.ID)
	return nil
}

// GetSnapshot retrieves a snapshot by id.
func (s *MemoryStore) GetSnapshot(ctx context.Context, versionID string, includeDeleted bool) (*model.PolicyVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.versions[versionID]
	if !ok || (v.Deleted() && !includeDeleted) {
		return nil, model.NotFoundVersion(versionID)
	}
	return cloneVersion(v), nil
}

// LatestSnapshot returns the current snapshot: highest version number among
// non-deleted rows. Derived on every call, never cached.
func (s *MemoryStore) LatestSnapshot(ctx context.Context, documentID string) (*model.PolicyVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *model.PolicyVersion
	for _, id := range s.byDocument[documentID] {
		v := s.versions[id]
		if v.Deleted() {
			continue
		}
		if latest == nil || v.VersionNumber > latest.VersionNumber {
			latest = v
		}
	}
	if latest == nil {
		return nil, model.NotFoundDocument(documentID)
	}
	return cloneVersion(latest), nil
}

// ListSnapshots returns a document's snapshots newest first.
func (s *MemoryStore) ListSnapshots(ctx context.Context, documentID string, includeDeleted bool) ([]model.PolicyVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.documents[documentID]; !ok {
		return nil, model.NotFoundDocument(documentID)
	}

	var out []model.PolicyVersion
	for _, id := range s.byDocument[documentID] {
		v := s.versions[id]
		if v.Deleted() && !includeDeleted {
			continue
		}
		out = append(out, *cloneVersion(v))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].VersionNumber > out[j].VersionNumber
	})
	return out, nil
}

// UpdateStatus applies a lifecycle transition.
func (s *MemoryStore) UpdateStatus(ctx context.Context, versionID string, newStatus model.VersionStatus, actor string) (*model.PolicyVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.versions[versionID]
	if !ok || v.Deleted() {
		return nil, model.NotFoundVersion(versionID)
	}
	if !model.CanTransition(v.Status, newStatus) {
		return nil, model.InvalidTransition(versionID, v.Status, newStatus)
	}

	now := time.Now().UTC()
	v.Status = newStatus
	switch newStatus {
	case model.StatusApproved:
		v.ApprovedBy = sql.NullString{String: actor, Valid: true}
		v.ApprovedAt = sql.NullTime{Time: now, Valid: true}
	case model.StatusPublished:
		v.PublishedBy = sql.NullString{String: actor, Valid: true}
		v.PublishedAt = sql.NullTime{Time: now, Valid: true}
	}
	return cloneVersion(v), nil
}

// SoftDelete marks a snapshot deleted and returns the deleted copy.
func (s *MemoryStore) SoftDelete(ctx context.Context, versionID, actor string) (*model.PolicyVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.versions[versionID]
	if !ok || v.Deleted() {
		return nil, model.NotFoundVersion(versionID)
	}
	if v.Status == model.StatusPublished {
		return nil, model.ForbiddenDelete(versionID)
	}
	v.DeletedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}
	return cloneVersion(v), nil
}

// Restore clears a snapshot's soft-delete marker.
func (s *MemoryStore) Restore(ctx context.Context, versionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.versions[versionID]
	if !ok {
		return model.NotFoundVersion(versionID)
	}
	v.DeletedAt = sql.NullTime{}
	return nil
}

// Stats computes engine-wide aggregates over non-deleted snapshots.
func (s *MemoryStore) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{TotalDocuments: len(s.documents)}
	perDoc := make(map[string]int)
	for _, v := range s.versions {
		if v.Deleted() {
			continue
		}
		stats.TotalVersions++
		words := v.WordCount()
		stats.TotalWords += words
		perDoc[v.DocumentID] += words
	}
	for docID, words := range perDoc {
		if words > stats.LargestDocumentWords {
			stats.LargestDocumentWords = words
			if doc, ok := s.documents[docID]; ok {
				stats.LargestDocumentTitle = doc.Title
			}
		}
	}
	if stats.TotalDocuments > 0 {
		stats.AverageWordsPerDoc = float64(stats.TotalWords) / float64(stats.TotalDocuments)
	}
	return stats, nil
}
