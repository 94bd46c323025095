package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pkeller/policyvault/internal/diff"
	"github.com/pkeller/policyvault/internal/model"
	"github.com/pkeller/policyvault/internal/store"
)

// Rollback justification bounds.
const (
	minReasonLen = 10
	maxReasonLen = 500
)

// RollbackManager restores an old snapshot's content as a brand-new snapshot.
// History is never rewritten: the target stays untouched and a fresh version
// number is always allocated.
type RollbackManager struct {
	store  store.Store
	differ *diff.Engine
	sink   Sink
	log    zerolog.Logger
}

// NewRollbackManager creates a new RollbackManager.
func NewRollbackManager(st store.Store, differ *diff.Engine, sink Sink, log zerolog.Logger) *RollbackManager {
	return &RollbackManager{store: st, differ: differ, sink: sink, log: log}
}

// validateReason enforces the mandatory justification bounds.
func validateReason(reason string) error {
	trimmed := strings.TrimSpace(reason)
	if trimmed == "" {
		return model.InvalidReason("rollback reason is required")
	}
	if len(trimmed) < minReasonLen {
		return model.InvalidReason("rollback reason must be at least 10 characters")
	}
	if len(trimmed) > maxReasonLen {
		return model.InvalidReason("rollback reason must be at most 500 characters")
	}
	return nil
}

// Rollback restores targetVersionID's content into a new draft snapshot of
// documentID. All validation happens before any write; the new snapshot and
// its audit fact either both happen or neither does.
func (m *RollbackManager) Rollback(ctx context.Context, documentID, targetVersionID, reason, actor string) (*model.PolicyVersion, error) {
	if err := validateReason(reason); err != nil {
		return nil, err
	}

	target, err := m.store.GetSnapshot(ctx, targetVersionID, false)
	if err != nil {
		return nil, err
	}
	if target.DocumentID != documentID {
		return nil, model.NotFoundVersion(targetVersionID)
	}

	latest, err := m.store.LatestSnapshot(ctx, documentID)
	if err != nil {
		return nil, err
	}

	// Change summary for the audit record: what reverting undoes.
	report, err := m.differ.Compare(latest, target)
	if err != nil {
		return nil, err
	}

	restored := &model.PolicyVersion{
		DocumentID:       documentID,
		Title:            target.Title,
		Category:         target.Category,
		JurisdictionTags: append([]string(nil), target.JurisdictionTags...),
		Content:          target.Content,
		Status:           model.StatusDraft, // restored content re-enters approval from the start
		ChangeSummary:    strings.TrimSpace(reason),
		CreatedBy:        actor,
	}
	if err := m.store.CreateSnapshot(ctx, restored); err != nil {
		return nil, err
	}

	m.log.Info().
		Str("document_id", documentID).
		Str("restored_from", targetVersionID).
		Int("version_number", restored.VersionNumber).
		Msg("rollback applied")
	m.sink.Emit(ctx, Fact{
		Type:          FactVersionRollback,
		DocumentID:    documentID,
		VersionID:     restored.ID,
		VersionNumber: restored.VersionNumber,
		Actor:         actor,
		Reason:        strings.TrimSpace(reason),
		FromVersion:   latest.ID,
		RestoredFrom:  targetVersionID,
		LinesChanged:  report.Stats.TotalChanged,
		OccurredAt:    time.Now().UTC(),
	})
	return restored, nil
}
