package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/pkeller/policyvault/internal/model"
)

// uniqueViolation is the Postgres error code raised when two writers race on
// the (document_id, version_number) unique index.
const uniqueViolation = "23505"

// allocRetries bounds the internal retry loop before surfacing Conflict.
const allocRetries = 3

// NewDB opens a Postgres connection pool and verifies connectivity.
func NewDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// PostgresStore handles database operations for documents and versions.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const versionColumns = `
	id, document_id, version_number, title, category, jurisdiction_tags,
	content, status, change_summary, created_by, created_at,
	approved_by, approved_at, published_by, published_at, deleted_at
`

// scanVersion reads one policy_versions row into a model.PolicyVersion.
func scanVersion(row interface{ Scan(...any) error }) (*model.PolicyVersion, error) {
	var v model.PolicyVersion
	var content []byte
	err := row.Scan(
		&v.ID,
		&v.DocumentID,
		&v.VersionNumber,
		&v.Title,
		&v.Category,
		pq.Array(&v.JurisdictionTags),
		&content,
		&v.Status,
		&v.ChangeSummary,
		&v.CreatedBy,
		&v.CreatedAt,
		&v.ApprovedBy,
		&v.ApprovedAt,
		&v.PublishedBy,
		&v.PublishedAt,
		&v.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(content, &v.Content); err != nil {
		return nil, fmt.Errorf("failed to decode content for version %s: %w", v.ID, err)
	}
	return &v, nil
}

// CreateDocument persists a new host document.
func (s *PostgresStore) CreateDocument(ctx context.Context, doc *model.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}

	query := `
		INSERT INTO documents (id, org_id, title, category, jurisdiction_tags, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		doc.ID,
		doc.OrgID,
		doc.Title,
		doc.Category,
		pq.Array(doc.JurisdictionTags),
		doc.CreatedBy,
	).Scan(&doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	return nil
}

// GetDocument retrieves a document by id.
func (s *PostgresStore) GetDocument(ctx context.Context, documentID string) (*model.Document, error) {
	query := `
		SELECT id, org_id, title, category, jurisdiction_tags, created_by, created_at
		FROM documents
		WHERE id = $1
	`

	var doc model.Document
	err := s.db.QueryRowContext(ctx, query, documentID).Scan(
		&doc.ID,
		&doc.OrgID,
		&doc.Title,
		&doc.Category,
		pq.Array(&doc.JurisdictionTags),
		&doc.CreatedBy,
		&doc.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, model.NotFoundDocument(documentID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s: %w", documentID, err)
	}

	return &doc, nil
}

// CreateSnapshot allocates the next version number inside a transaction that
// locks the owning document row, then inserts the snapshot. A concurrent
// writer that slips past the lock is caught by the unique index and retried.
func (s *PostgresStore) CreateSnapshot(ctx context.Context, v *model.PolicyVersion) error {
	if v.Status == "" {
		v.Status = model.StatusDraft
	}

	var lastErr error
	for attempt := 0; attempt < allocRetries; attempt++ {
		err := s.tryCreateSnapshot(ctx, v)
		if err == nil {
			return nil
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			lastErr = err
			continue
		}
		return err
	}

	return fmt.Errorf("%w: %v", model.VersionConflict(v.DocumentID), lastErr)
}

func (s *PostgresStore) tryCreateSnapshot(ctx context.Context, v *model.PolicyVersion) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Serializes allocation per document.
	var docID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM documents WHERE id = $1 FOR UPDATE`, v.DocumentID,
	).Scan(&docID)
	if err == sql.ErrNoRows {
		return model.NotFoundDocument(v.DocumentID)
	}
	if err != nil {
		return fmt.Errorf("failed to lock document %s: %w", v.DocumentID, err)
	}

	var max int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version_number), 0) FROM policy_versions WHERE document_id = $1`,
		v.DocumentID,
	).Scan(&max)
	if err != nil {
		return fmt.Errorf("failed to read max version for document %s: %w", v.DocumentID, err)
	}

	content, err := json.Marshal(v.Content)
	if err != nil {
		return fmt.Errorf("failed to encode content: %w", err)
	}

	v.ID = uuid.NewString()
	v.VersionNumber = max + 1

	query := `
		INSERT INTO policy_versions (id, document_id, version_number, title, category,
		                             jurisdiction_tags, content, status, change_summary,
		                             word_count, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`

	err = tx.QueryRowContext(ctx, query,
		v.ID,
		v.DocumentID,
		v.VersionNumber,
		v.Title,
		v.Category,
		pq.Array(v.JurisdictionTags),
		content,
		v.Status,
		v.ChangeSummary,
		v.WordCount(),
		v.CreatedBy,
	).Scan(&v.CreatedAt)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot for document %s: %w", v.DocumentID, err)
	}

	return nil
}

// GetSnapshot retrieves a snapshot by id.
func (s *PostgresStore) GetSnapshot(ctx context.Context, versionID string, includeDeleted bool) (*model.PolicyVersion, error) {
	query := `SELECT ` + versionColumns + ` FROM policy_versions WHERE id = $1`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}

	v, err := scanVersion(s.db.QueryRowContext(ctx, query, versionID))
	if err == sql.ErrNoRows {
		return nil, model.NotFoundVersion(versionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get version %s: %w", versionID, err)
	}

	return v, nil
}

// LatestSnapshot returns the current snapshot for a document, derived as the
// max version number among non-deleted rows.
func (s *PostgresStore) LatestSnapshot(ctx context.Context, documentID string) (*model.PolicyVersion, error) {
	query := `
		SELECT ` + versionColumns + `
		FROM policy_versions
		WHERE document_id = $1 AND deleted_at IS NULL
		ORDER BY version_number DESC
		LIMIT 1
	`

	v, err := scanVersion(s.db.QueryRowContext(ctx, query, documentID))
	if err == sql.ErrNoRows {
		return nil, model.NotFoundDocument(documentID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest version for document %s: %w", documentID, err)
	}

	return v, nil
}

// ListSnapshots returns a document's snapshots newest first.
func (s *PostgresStore) ListSnapshots(ctx context.Context, documentID string, includeDeleted bool) ([]model.PolicyVersion, error) {
	if _, err := s.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}

	query := `
		SELECT ` + versionColumns + `
		FROM policy_versions
		WHERE document_id = $1
	`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	query += ` ORDER BY version_number DESC`

	rows, err := s.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions for document %s: %w", documentID, err)
	}
	defer rows.Close()

	var versions []model.PolicyVersion
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		versions = append(versions, *v)
	}

	return versions, rows.Err()
}

// UpdateStatus applies a lifecycle transition inside a transaction so the
// state-machine check and the write see the same row.
func (s *PostgresStore) UpdateStatus(ctx context.Context, versionID string, newStatus model.VersionStatus, actor string) (*model.PolicyVersion, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current model.VersionStatus
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM policy_versions WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`,
		versionID,
	).Scan(&current)
	if err == sql.ErrNoRows {
		return nil, model.NotFoundVersion(versionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read status for version %s: %w", versionID, err)
	}

	if !model.CanTransition(current, newStatus) {
		return nil, model.InvalidTransition(versionID, current, newStatus)
	}

	var row *sql.Row
	switch newStatus {
	case model.StatusApproved:
		row = tx.QueryRowContext(ctx,
			`UPDATE policy_versions SET status = $2, approved_by = $3, approved_at = now()
			 WHERE id = $1 RETURNING `+versionColumns,
			versionID, newStatus, actor)
	case model.StatusPublished:
		row = tx.QueryRowContext(ctx,
			`UPDATE policy_versions SET status = $2, published_by = $3, published_at = now()
			 WHERE id = $1 RETURNING `+versionColumns,
			versionID, newStatus, actor)
	default:
		row = tx.QueryRowContext(ctx,
			`UPDATE policy_versions SET status = $2
			 WHERE id = $1 RETURNING `+versionColumns,
			versionID, newStatus)
	}

	v, err := scanVersion(row)
	if err != nil {
		return nil, fmt.Errorf("failed to update status for version %s: %w", versionID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit status update for version %s: %w", versionID, err)
	}

	return v, nil
}

// SoftDelete marks a snapshot deleted and returns it as deleted. Published
// snapshots are protected.
func (s *PostgresStore) SoftDelete(ctx context.Context, versionID, actor string) (*model.PolicyVersion, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var status model.VersionStatus
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM policy_versions WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`,
		versionID,
	).Scan(&status)
	if err == sql.ErrNoRows {
		return nil, model.NotFoundVersion(versionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read status for version %s: %w", versionID, err)
	}

	if status == model.StatusPublished {
		return nil, model.ForbiddenDelete(versionID)
	}

	v, err := scanVersion(tx.QueryRowContext(ctx,
		`UPDATE policy_versions SET deleted_at = now()
		 WHERE id = $1 RETURNING `+versionColumns, versionID,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to delete version %s: %w", versionID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit delete for version %s: %w", versionID, err)
	}

	return v, nil
}

// Restore clears a snapshot's soft-delete marker.
func (s *PostgresStore) Restore(ctx context.Context, versionID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE policy_versions SET deleted_at = NULL WHERE id = $1`, versionID,
	)
	if err != nil {
		return fmt.Errorf("failed to restore version %s: %w", versionID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to restore version %s: %w", versionID, err)
	}
	if affected == 0 {
		return model.NotFoundVersion(versionID)
	}
	return nil
}

// Stats computes engine-wide aggregates over non-deleted snapshots.
func (s *PostgresStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	query := `
		SELECT
			(SELECT COUNT(*) FROM documents) AS total_documents,
			COUNT(*) AS total_versions,
			COALESCE(SUM(word_count), 0) AS total_words
		FROM policy_versions
		WHERE deleted_at IS NULL
	`
	err := s.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalDocuments,
		&stats.TotalVersions,
		&stats.TotalWords,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate version stats: %w", err)
	}

	if stats.TotalDocuments > 0 {
		stats.AverageWordsPerDoc = float64(stats.TotalWords) / float64(stats.TotalDocuments)
	}

	largestQuery := `
		SELECT d.title, SUM(v.word_count) AS words
		FROM policy_versions v
		INNER JOIN documents d ON d.id = v.document_id
		WHERE v.deleted_at IS NULL
		GROUP BY d.title
		ORDER BY words DESC
		LIMIT 1
	`
	err = s.db.QueryRowContext(ctx, largestQuery).Scan(
		&stats.LargestDocumentTitle,
		&stats.LargestDocumentWords,
	)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to find largest document: %w", err)
	}

	return stats, nil
}
