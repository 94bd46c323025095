package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pkeller/policyvault/internal/model"
	"github.com/pkeller/policyvault/internal/store"
)

type createDocumentRequest struct {
	OrgID            string   `json:"org_id"`
	Title            string   `json:"title"`
	Category         string   `json:"category"`
	JurisdictionTags []string `json:"jurisdiction_tags"`
}

// CreateDocumentHandler registers a new host document.
func CreateDocumentHandler(st store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		by, ok := actor(c)
		if !ok {
			return missingActor(c)
		}

		var req createDocumentRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "bad_request",
				"message": "invalid request body",
			})
		}
		if req.Title == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "bad_request",
				"message": "title is required",
				"field":   "title",
			})
		}

		doc := &model.Document{
			OrgID:            req.OrgID,
			Title:            req.Title,
			Category:         req.Category,
			JurisdictionTags: req.JurisdictionTags,
			CreatedBy:        by,
		}
		if err := st.CreateDocument(c.Context(), doc); err != nil {
			return respondError(c, err)
		}

		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// GetDocumentHandler fetches a host document by id.
func GetDocumentHandler(st store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := st.GetDocument(c.Context(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(doc)
	}
}
