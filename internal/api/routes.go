// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/auth"
	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/report"
	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/storage"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Store          storage.Store
	Files          *storage.FileStore
	Auth           *auth.Service
	Renderer       *report.Renderer
	Reports        *report.Cache
	DB             Pinger
	MaxUploadBytes int64
	Version        string
}

// Handlers holds all handler instances
type Handlers struct {
	Auth     AuthHandler
	Datasets DatasetsHandler
	Report   ReportHandler
	Samples  SamplesHandler
	Health   HealthHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Auth:     NewAuthHandler(deps.Auth),
		Datasets: NewDatasetsHandler(deps.Store, deps.Files, deps.MaxUploadBytes),
		Report:   NewReportHandler(deps.Store, deps.Files, deps.Renderer, deps.Reports),
		Samples:  NewSamplesHandler(),
		Health:   NewHealthHandler(deps.Version, deps.DB),
	}
}

// RegisterRoutes registers all API routes with the Echo instance.
// Trailing slashes follow the wire format the clients expect.
func RegisterRoutes(e *echo.Echo, handlers *Handlers, authSvc *auth.Service) {
	// Health and metrics
	e.GET("/health", handlers.Health.HandleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Credential exchange, the only unauthenticated API route
	e.POST("/api-token-auth/", handlers.Auth.HandleObtainToken)

	// Bundled demo data, public so clients can demo without an account
	samplesGroup := e.Group("/samples")
	samplesGroup.GET("/", handlers.Samples.HandleListSamples)
	samplesGroup.GET("/:filename", handlers.Samples.HandleGetSample)

	// Dataset routes, all token-gated
	datasets := e.Group("/api/datasets", TokenAuth(authSvc))
	datasets.POST("/upload/", handlers.Datasets.HandleUpload)
	datasets.GET("/history/", handlers.Datasets.HandleHistory)
	datasets.GET("/:id/summary/", handlers.Datasets.HandleSummary)
	datasets.GET("/:id/rows/", handlers.Datasets.HandleRows)
	datasets.GET("/:id/rows/msgpack", handlers.Datasets.HandleRowsMsgpack)
	datasets.GET("/:id/report/", handlers.Report.HandleReport)
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo) {
	// Use custom error handler
	e.HTTPErrorHandler = ErrorHandler

	// Record request metrics
	e.Use(Metrics())
}
