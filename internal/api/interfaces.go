// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"github.com/labstack/echo/v4"
)

// AuthHandler handles the credential-for-token exchange
type AuthHandler interface {
	HandleObtainToken(c echo.Context) error
}

// DatasetsHandler handles dataset upload and retrieval operations
type DatasetsHandler interface {
	HandleUpload(c echo.Context) error
	HandleSummary(c echo.Context) error
	HandleHistory(c echo.Context) error
	HandleRows(c echo.Context) error
	HandleRowsMsgpack(c echo.Context) error
}

// ReportHandler handles PDF report generation
type ReportHandler interface {
	HandleReport(c echo.Context) error
}

// SamplesHandler serves the bundled demo data
type SamplesHandler interface {
	HandleListSamples(c echo.Context) error
	HandleGetSample(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}
