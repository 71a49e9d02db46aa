// helpers_test.go - Shared fixtures for handler tests
package api

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/auth"
	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/models"
	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/storage"
)

const sampleCSV = "Equipment,Flowrate,Pressure\nPump,10,1.5\nValve,20,2.5\nMixer,30,3.5\n"

// newTestContext builds an echo context around a recorded request.
func newTestContext(method, target, contentType string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// seedUser creates a user with the given credentials and returns it.
func seedUser(t *testing.T, store storage.UserStore, username, password string) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user, err := store.CreateUser(context.Background(), username, hash)
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

// seedDataset uploads content through the storage layer for a user.
func seedDataset(t *testing.T, store storage.DatasetStore, files *storage.FileStore, ownerID int64, filename string, sum *models.Summary) *models.Dataset {
	t.Helper()
	storedName, _, err := files.Save(bytes.NewReader([]byte(sampleCSV)))
	if err != nil {
		t.Fatalf("Failed to save file: %v", err)
	}
	ds, err := store.CreateDataset(context.Background(), ownerID, filename, storedName, sum)
	if err != nil {
		t.Fatalf("Failed to create dataset: %v", err)
	}
	return ds
}

// newTestFiles creates a FileStore rooted in a temp dir.
func newTestFiles(t *testing.T) *storage.FileStore {
	t.Helper()
	files, err := storage.NewFileStore(filepath.Join(t.TempDir(), "uploads"))
	if err != nil {
		t.Fatalf("Failed to create file store: %v", err)
	}
	return files
}

// multipartBody builds a multipart body with one file field.
func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	fw, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("Failed to write form file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close writer: %v", err)
	}
	return body, w.FormDataContentType()
}

// testSummary builds a summary the way the summarizer would for sampleCSV.
func testSummaryFor(rows int, cols ...string) *models.Summary {
	return &models.Summary{
		Rows:        rows,
		Columns:     len(cols),
		ColumnNames: cols,
		Stats:       map[string]models.ColumnStats{},
		RawPreview:  []map[string]string{},
	}
}
