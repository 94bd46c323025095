package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pkeller/policyvault/internal/model"
	"github.com/pkeller/policyvault/internal/store"
)

func newDocument(t *testing.T, s store.Store) *model.Document {
	t.Helper()
	doc := &model.Document{Title: "Data Retention Policy", CreatedBy: "editor"}
	require.NoError(t, s.CreateDocument(context.Background(), doc))
	return doc
}

func newSnapshot(t *testing.T, s store.Store, docID, text string) *model.PolicyVersion {
	t.Helper()
	v := &model.PolicyVersion{
		DocumentID: docID,
		Title:      "Data Retention Policy",
		Content: model.Content{Blocks: []model.Block{
			{Kind: model.BlockParagraph, Text: text},
		}},
		CreatedBy: "editor",
	}
	require.NoError(t, s.CreateSnapshot(context.Background(), v))
	return v
}

func TestMemoryStore_CreateSnapshot_MonotonicNumbers(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	doc := newDocument(t, s)

	for want := 1; want <= 5; want++ {
		v := newSnapshot(t, s, doc.ID, "text")
		if v.VersionNumber != want {
			t.Errorf("expected version number %d, got %d", want, v.VersionNumber)
		}
		require.Equal(t, model.StatusDraft, v.Status)
	}
}

func TestMemoryStore_CreateSnapshot_ConcurrentNoCollisions(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	doc := newDocument(t, s)

	const writers = 20
	var wg sync.WaitGroup
	numbers := make(chan int, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v := &model.PolicyVersion{DocumentID: doc.ID, Title: "t", CreatedBy: "editor"}
			if err := s.CreateSnapshot(context.Background(), v); err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			numbers <- v.VersionNumber
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[int]bool)
	for n := range numbers {
		if seen[n] {
			t.Errorf("version number %d allocated twice", n)
		}
		seen[n] = true
	}
	require.Len(t, seen, writers)
}

func TestMemoryStore_CreateSnapshot_MissingDocument(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	v := &model.PolicyVersion{DocumentID: "nope", CreatedBy: "editor"}

	err := s.CreateSnapshot(context.Background(), v)
	require.True(t, model.IsCode(err, model.CodeNotFound))
}

// Snapshots fetched again by id must be byte-identical to what was stored,
// even if the caller mutates the copy it got back.
func TestMemoryStore_AppendOnlyHistory(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	doc := newDocument(t, s)
	v := newSnapshot(t, s, doc.ID, "original text")

	fetched, err := s.GetSnapshot(context.Background(), v.ID, false)
	require.NoError(t, err)
	fetched.Content.Blocks[0].Text = "tampered"
	fetched.JurisdictionTags = append(fetched.JurisdictionTags, "mars")

	again, err := s.GetSnapshot(context.Background(), v.ID, false)
	require.NoError(t, err)
	require.Equal(t, "original text", again.Content.Blocks[0].Text)
	require.Empty(t, again.JurisdictionTags)
}

func TestMemoryStore_GetSnapshot_NotFound(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	_, err := s.GetSnapshot(context.Background(), "missing", false)
	require.True(t, model.IsCode(err, model.CodeNotFound))
}

func TestMemoryStore_ListSnapshots_NewestFirst(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	doc := newDocument(t, s)
	newSnapshot(t, s, doc.ID, "v1")
	newSnapshot(t, s, doc.ID, "v2")
	newSnapshot(t, s, doc.ID, "v3")

	list, err := s.ListSnapshots(context.Background(), doc.ID, false)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, 3, list[0].VersionNumber)
	require.Equal(t, 1, list[2].VersionNumber)
}

func TestMemoryStore_LatestSnapshot_SkipsDeleted(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	doc := newDocument(t, s)
	newSnapshot(t, s, doc.ID, "v1")
	v2 := newSnapshot(t, s, doc.ID, "v2")

	_, err := s.SoftDelete(context.Background(), v2.ID, "admin")
	require.NoError(t, err)

	latest, err := s.LatestSnapshot(context.Background(), doc.ID)
	require.NoError(t, err)
	require.Equal(t, 1, latest.VersionNumber)
}

func TestMemoryStore_UpdateStatus(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	doc := newDocument(t, s)
	v := newSnapshot(t, s, doc.ID, "text")

	ctx := context.Background()
	v2, err := s.UpdateStatus(ctx, v.ID, model.StatusUnderReview, "reviewer")
	require.NoError(t, err)
	require.Equal(t, model.StatusUnderReview, v2.Status)

	v3, err := s.UpdateStatus(ctx, v.ID, model.StatusApproved, "approver")
	require.NoError(t, err)
	require.Equal(t, "approver", v3.ApprovedBy.String)
	require.True(t, v3.ApprovedAt.Valid)

	v4, err := s.UpdateStatus(ctx, v.ID, model.StatusPublished, "publisher")
	require.NoError(t, err)
	require.Equal(t, "publisher", v4.PublishedBy.String)
	require.True(t, v4.PublishedAt.Valid)
}

func TestMemoryStore_UpdateStatus_InvalidTransition(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	doc := newDocument(t, s)
	v := newSnapshot(t, s, doc.ID, "text")

	_, err := s.UpdateStatus(context.Background(), v.ID, model.StatusPublished, "editor")
	require.True(t, model.IsCode(err, model.CodeInvalidTransition))
}

func TestMemoryStore_SoftDelete_PublishedForbidden(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	doc := newDocument(t, s)
	v := newSnapshot(t, s, doc.ID, "text")

	ctx := context.Background()
	for _, status := range []model.VersionStatus{model.StatusUnderReview, model.StatusApproved, model.StatusPublished} {
		_, err := s.UpdateStatus(ctx, v.ID, status, "workflow")
		require.NoError(t, err)
	}

	_, err := s.SoftDelete(ctx, v.ID, "admin")
	require.True(t, model.IsCode(err, model.CodeForbidden))
}

func TestMemoryStore_SoftDelete_ExcludesFromListing(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	doc := newDocument(t, s)
	v1 := newSnapshot(t, s, doc.ID, "v1")
	newSnapshot(t, s, doc.ID, "v2")

	ctx := context.Background()
	gone, err := s.SoftDelete(ctx, v1.ID, "admin")
	require.NoError(t, err)
	require.True(t, gone.Deleted())
	require.Equal(t, v1.ID, gone.ID)

	_, err = s.GetSnapshot(ctx, v1.ID, false)
	require.True(t, model.IsCode(err, model.CodeNotFound))

	deleted, err := s.GetSnapshot(ctx, v1.ID, true)
	require.NoError(t, err)
	require.True(t, deleted.Deleted())

	list, err := s.ListSnapshots(ctx, doc.ID, false)
	require.NoError(t, err)
	require.Len(t, list, 1)

	all, err := s.ListSnapshots(ctx, doc.ID, true)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestMemoryStore_Restore(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	doc := newDocument(t, s)
	v := newSnapshot(t, s, doc.ID, "text")

	ctx := context.Background()
	_, err := s.SoftDelete(ctx, v.ID, "admin")
	require.NoError(t, err)
	require.NoError(t, s.Restore(ctx, v.ID))

	restored, err := s.GetSnapshot(ctx, v.ID, false)
	require.NoError(t, err)
	require.False(t, restored.Deleted())
}

func TestMemoryStore_Stats(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	doc := newDocument(t, s)
	newSnapshot(t, s, doc.ID, "one two three")
	newSnapshot(t, s, doc.ID, "one two")

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, stats.TotalDocuments)
	require.Equal(t, 2, stats.TotalVersions)
	require.Equal(t, 5, stats.TotalWords)
	require.Equal(t, "Data Retention Policy", stats.LargestDocumentTitle)
}
