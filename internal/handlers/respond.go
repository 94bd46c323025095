package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pkeller/policyvault/internal/model"
)

// statusFor maps engine error codes to HTTP statuses.
func statusFor(code model.ErrorCode) int {
	switch code {
	case model.CodeNotFound:
		return fiber.StatusNotFound
	case model.CodeForbidden:
		return fiber.StatusForbidden
	case model.CodeConflict:
		return fiber.StatusConflict
	case model.CodeInvalidTransition:
		return fiber.StatusUnprocessableEntity
	case model.CodeInvalidReason, model.CodeInvalidComparison:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError renders an engine error with enough context for the calling
// surface to build an actionable message.
func respondError(c *fiber.Ctx, err error) error {
	var engineErr *model.Error
	if errors.As(err, &engineErr) {
		body := fiber.Map{
			"error":   engineErr.Code,
			"message": engineErr.Message,
		}
		if engineErr.DocumentID != "" {
			body["document_id"] = engineErr.DocumentID
		}
		if engineErr.VersionID != "" {
			body["version_id"] = engineErr.VersionID
		}
		if engineErr.Field != "" {
			body["field"] = engineErr.Field
		}
		return c.Status(statusFor(engineErr.Code)).JSON(body)
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   "internal",
		"message": "internal error",
	})
}

// versionResponse is the wire shape of a snapshot.
type versionResponse struct {
	ID               string              `json:"id"`
	DocumentID       string              `json:"document_id"`
	VersionNumber    int                 `json:"version_number"`
	Version          string              `json:"version"`
	Title            string              `json:"title"`
	Category         string              `json:"category,omitempty"`
	JurisdictionTags []string            `json:"jurisdiction_tags,omitempty"`
	Content          model.Content       `json:"content"`
	Status           model.VersionStatus `json:"status"`
	ChangeSummary    string              `json:"change_summary,omitempty"`
	WordCount        int                 `json:"word_count"`
	CreatedBy        string              `json:"created_by"`
	CreatedAt        time.Time           `json:"created_at"`
	ApprovedBy       string              `json:"approved_by,omitempty"`
	ApprovedAt       *time.Time          `json:"approved_at,omitempty"`
	PublishedBy      string              `json:"published_by,omitempty"`
	PublishedAt      *time.Time          `json:"published_at,omitempty"`
	DeletedAt        *time.Time          `json:"deleted_at,omitempty"`
}

func toVersionResponse(v *model.PolicyVersion) versionResponse {
	resp := versionResponse{
		ID:               v.ID,
		DocumentID:       v.DocumentID,
		VersionNumber:    v.VersionNumber,
		Version:          v.DisplayVersion(),
		Title:            v.Title,
		Category:         v.Category,
		JurisdictionTags: v.JurisdictionTags,
		Content:          v.Content,
		Status:           v.Status,
		ChangeSummary:    v.ChangeSummary,
		WordCount:        v.WordCount(),
		CreatedBy:        v.CreatedBy,
		CreatedAt:        v.CreatedAt,
	}
	if v.ApprovedBy.Valid {
		resp.ApprovedBy = v.ApprovedBy.String
	}
	if v.ApprovedAt.Valid {
		t := v.ApprovedAt.Time
		resp.ApprovedAt = &t
	}
	if v.PublishedBy.Valid {
		resp.PublishedBy = v.PublishedBy.String
	}
	if v.PublishedAt.Valid {
		t := v.PublishedAt.Time
		resp.PublishedAt = &t
	}
	if v.DeletedAt.Valid {
		t := v.DeletedAt.Time
		resp.DeletedAt = &t
	}
	return resp
}

// actor extracts the authenticated actor identity forwarded by the caller.
// Identity resolution itself happens upstream.
func actor(c *fiber.Ctx) (string, bool) {
	a := c.Get("X-Actor")
	return a, a != ""
}

// missingActor rejects a mutating request that lacks an actor identity.
func missingActor(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   "missing_actor",
		"message": "X-Actor header is required",
	})
}
