package service

import (
	"context"
	"time"

	"github.com/pkeller/policyvault/internal/diff"
	"github.com/pkeller/policyvault/internal/model"
	"github.com/pkeller/policyvault/internal/store"
)

// TimelineEntry is one row of a document's history. It deliberately carries
// no content so listings stay cheap.
type TimelineEntry struct {
	ID            string              `json:"id"`
	VersionNumber int                 `json:"version_number"`
	Version       string              `json:"version"`
	Status        model.VersionStatus `json:"status"`
	CreatedBy     string              `json:"created_by"`
	CreatedAt     time.Time           `json:"created_at"`
	WordCount     int                 `json:"word_count"`
	ChangeSummary string              `json:"change_summary,omitempty"`
}

// VersionSummary is the compact view of a single snapshot.
type VersionSummary struct {
	ID            string              `json:"id"`
	VersionNumber int                 `json:"version_number"`
	Version       string              `json:"version"`
	Status        model.VersionStatus `json:"status"`
	WordCount     int                 `json:"word_count"`
	AgeSeconds    int64               `json:"age_seconds"`
}

// TimelineService is the read-only façade over the store and diff engine.
type TimelineService struct {
	store  store.Store
	differ *diff.Engine
	now    func() time.Time
}

// NewTimelineService creates a new TimelineService.
func NewTimelineService(st store.Store, differ *diff.Engine) *TimelineService {
	return &TimelineService{store: st, differ: differ, now: time.Now}
}

// GetTimeline returns a document's ordered history, newest first.
func (s *TimelineService) GetTimeline(ctx context.Context, documentID string) ([]TimelineEntry, error) {
	versions, err := s.store.ListSnapshots(ctx, documentID, false)
	if err != nil {
		return nil, err
	}

	entries := make([]TimelineEntry, 0, len(versions))
	for i := range versions {
		v := &versions[i]
		entries = append(entries, TimelineEntry{
			ID:            v.ID,
			VersionNumber: v.VersionNumber,
			Version:       v.DisplayVersion(),
			Status:        v.Status,
			CreatedBy:     v.CreatedBy,
			CreatedAt:     v.CreatedAt,
			WordCount:     v.WordCount(),
			ChangeSummary: v.ChangeSummary,
		})
	}
	return entries, nil
}

// Compare loads two snapshots and delegates to the diff engine. The diff is
// directed: from is treated as the old side.
func (s *TimelineService) Compare(ctx context.Context, fromVersionID, toVersionID string) (*diff.Report, error) {
	from, err := s.store.GetSnapshot(ctx, fromVersionID, false)
	if err != nil {
		return nil, err
	}
	to, err := s.store.GetSnapshot(ctx, toVersionID, false)
	if err != nil {
		return nil, err
	}
	return s.differ.Compare(from, to)
}

// GetSummary returns the compact view of one snapshot.
func (s *TimelineService) GetSummary(ctx context.Context, versionID string) (*VersionSummary, error) {
	v, err := s.store.GetSnapshot(ctx, versionID, false)
	if err != nil {
		return nil, err
	}
	return &VersionSummary{
		ID:            v.ID,
		VersionNumber: v.VersionNumber,
		Version:       v.DisplayVersion(),
		Status:        v.Status,
		WordCount:     v.WordCount(),
		AgeSeconds:    int64(v.Age(s.now()).Seconds()),
	}, nil
}
