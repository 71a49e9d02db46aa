// handlers_report.go - PDF report handlers
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/parser"
	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/report"
	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/storage"
)

// rendererHeader tells clients which renderer path produced the PDF.
const rendererHeader = "X-Report-Renderer"

// ReportHandlerImpl implements the ReportHandler interface
type ReportHandlerImpl struct {
	store    storage.DatasetStore
	files    *storage.FileStore
	renderer *report.Renderer
	cache    *report.Cache
}

// NewReportHandler creates a new report handler instance
func NewReportHandler(store storage.DatasetStore, files *storage.FileStore, renderer *report.Renderer, cache *report.Cache) ReportHandler {
	return &ReportHandlerImpl{
		store:    store,
		files:    files,
		renderer: renderer,
		cache:    cache,
	}
}

// HandleReport streams the dataset's PDF report. Rendered reports are
// cached per dataset since datasets never change after upload.
func (h *ReportHandlerImpl) HandleReport(c echo.Context) error {
	ds, err := fetchOwnedDataset(c, h.store)
	if err != nil {
		return err
	}

	if cached, ok := h.cache.Get(ds.ID); ok {
		return respondPDF(c, ds.ID, cached.PDF, cached.Fallback)
	}

	// Chart from the full row set when the preview is bounded.
	rows := ds.Summary.RawPreview
	if !ds.Summary.PreviewComplete() {
		if rc, err := h.files.Open(ds.StoredName); err == nil {
			if table, perr := parser.ParseCSV(rc); perr == nil {
				rows = table.Rows
			}
			rc.Close()
		}
	}

	pdf, fallback, err := h.renderer.Render(ds.Summary, rows, time.Now())
	if err != nil {
		return NewRenderError(err)
	}

	h.cache.Set(ds.ID, report.CachedReport{PDF: pdf, Fallback: fallback})
	return respondPDF(c, ds.ID, pdf, fallback)
}

func respondPDF(c echo.Context, datasetID int64, pdf []byte, fallback bool) error {
	renderer := "full"
	if fallback {
		renderer = "fallback"
	}
	c.Response().Header().Set(rendererHeader, renderer)
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="dataset_report_%d.pdf"`, datasetID))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}
