package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pkeller/policyvault/internal/store"
)

// StatsHandler serves engine-wide aggregate numbers.
func StatsHandler(st store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := st.Stats(c.Context())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			"total_documents":        stats.TotalDocuments,
			"total_versions":         stats.TotalVersions,
			"total_words":            stats.TotalWords,
			"average_words_per_doc":  stats.AverageWordsPerDoc,
			"largest_document":       stats.LargestDocumentTitle,
			"largest_document_words": stats.LargestDocumentWords,
		})
	}
}
