// handlers_samples.go - Bundled demo data handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/samples"
)

// SamplesHandlerImpl implements the SamplesHandler interface
type SamplesHandlerImpl struct{}

// NewSamplesHandler creates a new samples handler instance
func NewSamplesHandler() SamplesHandler {
	return &SamplesHandlerImpl{}
}

// HandleListSamples returns the names of the bundled demo files
func (h *SamplesHandlerImpl) HandleListSamples(c echo.Context) error {
	return c.JSON(http.StatusOK, samples.List())
}

// HandleGetSample streams one bundled demo file
func (h *SamplesHandlerImpl) HandleGetSample(c echo.Context) error {
	name := c.Param("filename")

	data, err := samples.Read(name)
	if err != nil {
		return NewNotFoundError("sample", name)
	}

	return c.Blob(http.StatusOK, samples.ContentType(name), data)
}
