package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pkeller/policyvault/internal/service"
	"github.com/pkeller/policyvault/internal/store"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Store    store.Store
	Versions *service.VersionService
	Timeline *service.TimelineService
	Rollback *service.RollbackManager
}

// Register wires every engine operation onto the app.
func Register(app *fiber.App, d Deps) {
	app.Post("/documents", CreateDocumentHandler(d.Store))
	app.Get("/documents/:id", GetDocumentHandler(d.Store))

	app.Post("/documents/:id/versions", CreateVersionHandler(d.Versions))
	app.Get("/documents/:id/versions", ListVersionsHandler(d.Versions))
	app.Get("/documents/:id/timeline", TimelineHandler(d.Timeline))
	app.Get("/documents/:id/compare", CompareHandler(d.Timeline))
	app.Post("/documents/:id/rollback", RollbackHandler(d.Rollback))

	app.Get("/versions/:id", GetVersionHandler(d.Versions))
	app.Get("/versions/:id/summary", VersionSummaryHandler(d.Timeline))
	app.Patch("/versions/:id/status", UpdateStatusHandler(d.Versions))
	app.Delete("/versions/:id", DeleteVersionHandler(d.Versions))
	app.Post("/versions/:id/restore", RestoreVersionHandler(d.Versions))

	app.Get("/stats", StatsHandler(d.Store))
}
