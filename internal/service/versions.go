package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pkeller/policyvault/internal/model"
	"github.com/pkeller/policyvault/internal/store"
)

// VersionService wraps the version store with validation and audit emission.
type VersionService struct {
	store store.Store
	sink  Sink
	log   zerolog.Logger
}

// NewVersionService creates a new VersionService.
func NewVersionService(st store.Store, sink Sink, log zerolog.Logger) *VersionService {
	return &VersionService{store: st, sink: sink, log: log}
}

// CreateSnapshot validates content, persists a new snapshot with the next
// version number, and emits a version_created fact after the write commits.
func (s *VersionService) CreateSnapshot(ctx context.Context, documentID string, content model.Content, meta model.VersionMetadata, actor, changeSummary string) (*model.PolicyVersion, error) {
	if err := content.Validate(); err != nil {
		return nil, fmt.Errorf("invalid content: %w", err)
	}
	if meta.InitialStatus != "" && !model.ValidStatus(meta.InitialStatus) {
		return nil, fmt.Errorf("invalid initial status %q", meta.InitialStatus)
	}

	v := &model.PolicyVersion{
		DocumentID:       documentID,
		Title:            meta.Title,
		Category:         meta.Category,
		JurisdictionTags: meta.JurisdictionTags,
		Content:          content,
		Status:           meta.InitialStatus,
		ChangeSummary:    changeSummary,
		CreatedBy:        actor,
	}
	if err := s.store.CreateSnapshot(ctx, v); err != nil {
		return nil, err
	}

	s.log.Debug().
		Str("document_id", documentID).
		Int("version_number", v.VersionNumber).
		Msg("snapshot created")
	s.sink.Emit(ctx, Fact{
		Type:          FactVersionCreated,
		DocumentID:    documentID,
		VersionID:     v.ID,
		VersionNumber: v.VersionNumber,
		Actor:         actor,
		OccurredAt:    time.Now().UTC(),
	})
	return v, nil
}

// GetSnapshot retrieves a snapshot by id.
func (s *VersionService) GetSnapshot(ctx context.Context, versionID string, includeDeleted bool) (*model.PolicyVersion, error) {
	return s.store.GetSnapshot(ctx, versionID, includeDeleted)
}

// ListSnapshots lists a document's snapshots newest first.
func (s *VersionService) ListSnapshots(ctx context.Context, documentID string, includeDeleted bool) ([]model.PolicyVersion, error) {
	return s.store.ListSnapshots(ctx, documentID, includeDeleted)
}

// UpdateStatus applies a lifecycle transition and emits a status_changed fact.
func (s *VersionService) UpdateStatus(ctx context.Context, versionID string, newStatus model.VersionStatus, actor string) (*model.PolicyVersion, error) {
	v, err := s.store.UpdateStatus(ctx, versionID, newStatus, actor)
	if err != nil {
		return nil, err
	}
	s.sink.Emit(ctx, Fact{
		Type:          FactStatusChanged,
		DocumentID:    v.DocumentID,
		VersionID:     v.ID,
		VersionNumber: v.VersionNumber,
		Actor:         actor,
		Reason:        string(newStatus),
		OccurredAt:    time.Now().UTC(),
	})
	return v, nil
}

// SoftDelete marks a snapshot deleted and emits a version_deleted fact
// built from the row the store deleted.
func (s *VersionService) SoftDelete(ctx context.Context, versionID, actor string) error {
	v, err := s.store.SoftDelete(ctx, versionID, actor)
	if err != nil {
		return err
	}
	s.sink.Emit(ctx, Fact{
		Type:          FactVersionDeleted,
		DocumentID:    v.DocumentID,
		VersionID:     versionID,
		VersionNumber: v.VersionNumber,
		Actor:         actor,
		OccurredAt:    time.Now().UTC(),
	})
	return nil
}

// Restore clears a snapshot's soft-delete marker and emits a fact.
func (s *VersionService) Restore(ctx context.Context, versionID, actor string) error {
	if err := s.store.Restore(ctx, versionID); err != nil {
		return err
	}
	v, err := s.store.GetSnapshot(ctx, versionID, false)
	if err != nil {
		return err
	}
	s.sink.Emit(ctx, Fact{
		Type:          FactVersionRestored,
		DocumentID:    v.DocumentID,
		VersionID:     versionID,
		VersionNumber: v.VersionNumber,
		Actor:         actor,
		OccurredAt:    time.Now().UTC(),
	})
	return nil
}
