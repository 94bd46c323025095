package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pkeller/policyvault/internal/service"
)

// TimelineHandler serves a document's ordered history summaries.
func TimelineHandler(timeline *service.TimelineService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entries, err := timeline.GetTimeline(c.Context(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"timeline": entries})
	}
}

// CompareHandler diffs two snapshots of a document.
func CompareHandler(timeline *service.TimelineService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from := c.Query("from")
		to := c.Query("to")
		if from == "" || to == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "bad_request",
				"message": "from and to query parameters are required",
			})
		}

		report, err := timeline.Compare(c.Context(), from, to)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(report)
	}
}

// VersionSummaryHandler serves the compact view of one snapshot.
func VersionSummaryHandler(timeline *service.TimelineService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		summary, err := timeline.GetSummary(c.Context(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(summary)
	}
}

type rollbackRequest struct {
	TargetVersionID string `json:"target_version_id"`
	Reason          string `json:"reason"`
}

// RollbackHandler restores a prior snapshot as a new draft version.
func RollbackHandler(rollback *service.RollbackManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		by, ok := actor(c)
		if !ok {
			return missingActor(c)
		}

		var req rollbackRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "bad_request",
				"message": "invalid request body",
			})
		}
		if req.TargetVersionID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "bad_request",
				"message": "target_version_id is required",
				"field":   "target_version_id",
			})
		}

		v, err := rollback.Rollback(c.Context(), c.Params("id"), req.TargetVersionID, req.Reason, by)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(toVersionResponse(v))
	}
}
