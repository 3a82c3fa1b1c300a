package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "soundblast/docs"
	"soundblast/internal/service"
)

// Dependencies are the collaborators the HTTP layer needs.
type Dependencies struct {
	DB            *sql.DB
	Files         service.FileService
	Transcription service.TranscriptionService
	// ToolCheck reports whether the external tools resolve. Optional.
	ToolCheck func() error
	Gatherer  prometheus.Gatherer
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, deps Dependencies) {
	var checks []func() error
	if deps.ToolCheck != nil {
		checks = append(checks, deps.ToolCheck)
	}
	app.Get("/health", HealthCheck(deps.DB, checks...))
	app.Get("/healthz", LivenessProbe())

	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	// docs.SwaggerInfo is shared by all requests and never written here. With
	// host and schemes left empty the UI targets the origin it was loaded from,
	// which also holds behind a TLS-terminating proxy.
	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api")
	api.Get("/status", Status())

	files := api.Group("/files")
	files.Post("/", UploadFile(deps.Files))
	files.Get("/list", ListFiles(deps.Files))
	files.Get("/download/:id", DownloadFile(deps.Files))

	api.Post("/transcribe", Transcribe(deps.Transcription))
}
