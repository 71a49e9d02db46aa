// handlers_datasets.go - Dataset upload and retrieval handlers
package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/models"
	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/parser"
	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/storage"
	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/summary"
)

// DatasetsHandlerImpl implements the DatasetsHandler interface
type DatasetsHandlerImpl struct {
	store          storage.DatasetStore
	files          *storage.FileStore
	maxUploadBytes int64
}

// NewDatasetsHandler creates a new datasets handler instance
func NewDatasetsHandler(store storage.DatasetStore, files *storage.FileStore, maxUploadBytes int64) DatasetsHandler {
	return &DatasetsHandlerImpl{
		store:          store,
		files:          files,
		maxUploadBytes: maxUploadBytes,
	}
}

// HandleUpload accepts a CSV as multipart/form-data under the "file" key,
// computes its summary, and persists both. The dataset only becomes
// visible after the summary is stored, so a failed upload leaves nothing
// behind.
func (h *DatasetsHandlerImpl) HandleUpload(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return NewUnauthorizedError("authentication credentials were not provided")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return NewValidationError("file")
	}
	if h.maxUploadBytes > 0 && fileHeader.Size > h.maxUploadBytes {
		return NewBadRequestError(fmt.Sprintf("file exceeds the %d byte upload limit", h.maxUploadBytes), nil)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return NewInternalError("failed to open uploaded file", err)
	}
	defer src.Close()

	// Buffer the file: it is parsed for the summary and stored as-is.
	data, err := io.ReadAll(src)
	if err != nil {
		return NewInternalError("failed to read uploaded file", err)
	}

	table, err := parser.ParseCSV(bytes.NewReader(data))
	if err != nil {
		return NewMalformedInputError("could not parse CSV file", err)
	}

	sum := summary.Summarize(table)

	storedName, _, err := h.files.Save(bytes.NewReader(data))
	if err != nil {
		return NewInternalError("failed to store uploaded file", err)
	}

	ds, err := h.store.CreateDataset(c.Request().Context(), user.ID, fileHeader.Filename, storedName, sum)
	if err != nil {
		h.files.Remove(storedName)
		return NewInternalError("failed to create dataset", err)
	}

	return c.JSON(http.StatusCreated, uploadResponse{
		DatasetID:  ds.ID,
		SummaryURL: fmt.Sprintf("/api/datasets/%d/summary/", ds.ID),
		HistoryURL: "/api/datasets/history/",
	})
}

// HandleSummary returns the cached summary for one of the caller's datasets
func (h *DatasetsHandlerImpl) HandleSummary(c echo.Context) error {
	ds, err := fetchOwnedDataset(c, h.store)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ds.Summary)
}

// HandleHistory returns the caller's most recent uploads, newest first
func (h *DatasetsHandlerImpl) HandleHistory(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return NewUnauthorizedError("authentication credentials were not provided")
	}

	entries, err := h.store.History(c.Request().Context(), user.ID, models.HistoryLimit)
	if err != nil {
		return NewInternalError("failed to load history", err)
	}

	return c.JSON(http.StatusOK, entries)
}

// HandleRows returns the full row set re-parsed from the stored CSV, for
// clients reconciling a bounded preview
func (h *DatasetsHandlerImpl) HandleRows(c echo.Context) error {
	resp, err := h.loadRows(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// HandleRowsMsgpack returns the same row set as msgpack for clients
// that want a smaller payload
func (h *DatasetsHandlerImpl) HandleRowsMsgpack(c echo.Context) error {
	resp, err := h.loadRows(c)
	if err != nil {
		return err
	}

	data, err := msgpack.Marshal(resp)
	if err != nil {
		return NewInternalError("failed to encode rows", err)
	}
	return c.Blob(http.StatusOK, "application/msgpack", data)
}

func (h *DatasetsHandlerImpl) loadRows(c echo.Context) (*rowsResponse, error) {
	ds, err := fetchOwnedDataset(c, h.store)
	if err != nil {
		return nil, err
	}

	rc, err := h.files.Open(ds.StoredName)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NewNotFoundError("dataset file", ds.StoredName)
		}
		return nil, NewInternalError("failed to open stored file", err)
	}
	defer rc.Close()

	// Stored files parsed cleanly at upload time
	table, err := parser.ParseCSV(rc)
	if err != nil {
		return nil, NewInternalError("failed to re-parse stored file", err)
	}

	return &rowsResponse{
		DatasetID: ds.ID,
		Columns:   table.Columns,
		Rows:      table.Rows,
	}, nil
}

// fetchOwnedDataset loads the dataset in the :id param and enforces
// ownership. Unknown ids are NotFound; another user's ids are Forbidden.
func fetchOwnedDataset(c echo.Context, store storage.DatasetStore) (*models.Dataset, error) {
	user, ok := currentUser(c)
	if !ok {
		return nil, NewUnauthorizedError("authentication credentials were not provided")
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return nil, NewValidationError("id")
	}

	ds, err := store.GetDataset(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NewNotFoundError("dataset", c.Param("id"))
		}
		return nil, NewInternalError("failed to load dataset", err)
	}

	if ds.OwnerID != user.ID {
		return nil, NewForbiddenError()
	}
	return ds, nil
}

// Request/Response types

type uploadResponse struct {
	DatasetID  int64  `json:"dataset_id"`
	SummaryURL string `json:"summary_url"`
	HistoryURL string `json:"history_url"`
}

type rowsResponse struct {
	DatasetID int64               `json:"dataset_id" msgpack:"dataset_id"`
	Columns   []string            `json:"columns" msgpack:"columns"`
	Rows      []map[string]string `json:"rows" msgpack:"rows"`
}
