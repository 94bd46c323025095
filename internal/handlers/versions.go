package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pkeller/policyvault/internal/model"
	"github.com/pkeller/policyvault/internal/service"
)

type createVersionRequest struct {
	Content       model.Content         `json:"content"`
	Metadata      model.VersionMetadata `json:"metadata"`
	ChangeSummary string                `json:"change_summary"`
}

// CreateVersionHandler snapshots a document after a committed edit.
func CreateVersionHandler(versions *service.VersionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		by, ok := actor(c)
		if !ok {
			return missingActor(c)
		}

		var req createVersionRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "bad_request",
				"message": "invalid request body",
			})
		}

		v, err := versions.CreateSnapshot(c.Context(), c.Params("id"), req.Content, req.Metadata, by, req.ChangeSummary)
		if err != nil {
			if model.IsCode(err, model.CodeNotFound) || model.IsCode(err, model.CodeConflict) {
				return respondError(c, err)
			}
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "bad_request",
				"message": err.Error(),
			})
		}

		return c.Status(fiber.StatusCreated).JSON(toVersionResponse(v))
	}
}

// GetVersionHandler fetches a single snapshot, full content included.
func GetVersionHandler(versions *service.VersionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		includeDeleted := c.QueryBool("include_deleted")

		v, err := versions.GetSnapshot(c.Context(), c.Params("id"), includeDeleted)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(toVersionResponse(v))
	}
}

// ListVersionsHandler lists a document's snapshots newest first.
func ListVersionsHandler(versions *service.VersionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		includeDeleted := c.QueryBool("include_deleted")

		list, err := versions.ListSnapshots(c.Context(), c.Params("id"), includeDeleted)
		if err != nil {
			return respondError(c, err)
		}

		out := make([]versionResponse, 0, len(list))
		for i := range list {
			out = append(out, toVersionResponse(&list[i]))
		}
		return c.JSON(fiber.Map{"versions": out})
	}
}

type updateStatusRequest struct {
	Status model.VersionStatus `json:"status"`
}

// UpdateStatusHandler drives a snapshot through the approval workflow.
func UpdateStatusHandler(versions *service.VersionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		by, ok := actor(c)
		if !ok {
			return missingActor(c)
		}

		var req updateStatusRequest
		if err := c.BodyParser(&req); err != nil || req.Status == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "bad_request",
				"message": "status is required",
				"field":   "status",
			})
		}

		v, err := versions.UpdateStatus(c.Context(), c.Params("id"), req.Status, by)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(toVersionResponse(v))
	}
}

// DeleteVersionHandler soft-deletes a snapshot.
func DeleteVersionHandler(versions *service.VersionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		by, ok := actor(c)
		if !ok {
			return missingActor(c)
		}

		if err := versions.SoftDelete(c.Context(), c.Params("id"), by); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// RestoreVersionHandler clears a snapshot's soft-delete marker.
func RestoreVersionHandler(versions *service.VersionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		by, ok := actor(c)
		if !ok {
			return missingActor(c)
		}

		if err := versions.Restore(c.Context(), c.Params("id"), by); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
