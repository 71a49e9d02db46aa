// handlers_datasets_test.go - Tests for upload, summary, history and rows
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/models"
	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/storage"
	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/testutil"
)

func TestDatasetsHandler_HandleUpload(t *testing.T) {
	store := storage.NewMemoryStore()
	files := newTestFiles(t)
	user := seedUser(t, store, "demo", "demo-pass")
	handler := NewDatasetsHandler(store, files, 1<<20)

	body, contentType := multipartBody(t, "file", "equipment.csv", sampleCSV)
	c, rec := newTestContext(http.MethodPost, "/api/datasets/upload/", contentType, body)
	c.Set(userContextKey, user)

	if err := handler.HandleUpload(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected status 201, got %d", rec.Code)
	}

	var resp uploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.DatasetID != 1 {
		t.Errorf("expected dataset_id 1, got %d", resp.DatasetID)
	}
	if resp.SummaryURL != "/api/datasets/1/summary/" {
		t.Errorf("unexpected summary_url %q", resp.SummaryURL)
	}
	if resp.HistoryURL != "/api/datasets/history/" {
		t.Errorf("unexpected history_url %q", resp.HistoryURL)
	}

	ds, err := store.GetDataset(context.Background(), resp.DatasetID)
	if err != nil {
		t.Fatalf("dataset not persisted: %v", err)
	}
	if ds.OriginalFilename != "equipment.csv" {
		t.Errorf("expected original filename equipment.csv, got %q", ds.OriginalFilename)
	}
	if ds.RowCount != 3 {
		t.Errorf("expected 3 rows, got %d", ds.RowCount)
	}
	if ds.Summary == nil || ds.Summary.DatasetID != resp.DatasetID {
		t.Error("expected summary stamped with the dataset id")
	}

	rc, err := files.Open(ds.StoredName)
	if err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
	rc.Close()
}

func TestDatasetsHandler_HandleUpload_Errors(t *testing.T) {
	tests := []struct {
		name       string
		filename   string
		content    string
		omitFile   bool
		noUser     bool
		maxBytes   int64
		wantStatus int
		wantCode   string
	}{
		{
			name:       "unauthenticated",
			filename:   "equipment.csv",
			content:    sampleCSV,
			noUser:     true,
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHORIZED",
		},
		{
			name:       "missing file field",
			omitFile:   true,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "ragged csv",
			filename:   "bad.csv",
			content:    "Equipment,Flowrate\nPump\n",
			wantStatus: http.StatusBadRequest,
			wantCode:   "MALFORMED_INPUT",
		},
		{
			name:       "empty csv",
			filename:   "empty.csv",
			content:    "",
			wantStatus: http.StatusBadRequest,
			wantCode:   "MALFORMED_INPUT",
		},
		{
			name:       "duplicate header",
			filename:   "dup.csv",
			content:    "A,A\n1,2\n",
			wantStatus: http.StatusBadRequest,
			wantCode:   "MALFORMED_INPUT",
		},
		{
			name:       "file too large",
			filename:   "big.csv",
			content:    sampleCSV,
			maxBytes:   8,
			wantStatus: http.StatusBadRequest,
			wantCode:   "BAD_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMemoryStore()
			files := newTestFiles(t)
			user := seedUser(t, store, "demo", "demo-pass")

			maxBytes := tt.maxBytes
			if maxBytes == 0 {
				maxBytes = 1 << 20
			}
			handler := NewDatasetsHandler(store, files, maxBytes)

			field := "file"
			if tt.omitFile {
				field = "other"
			}
			body, contentType := multipartBody(t, field, tt.filename, tt.content)
			ctx, _ := newTestContext(http.MethodPost, "/api/datasets/upload/", contentType, body)
			if !tt.noUser {
				ctx.Set(userContextKey, user)
			}

			err := handler.HandleUpload(ctx)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			apiErr, ok := err.(*APIError)
			if !ok {
				t.Fatalf("expected APIError, got %T", err)
			}
			if apiErr.Status != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, apiErr.Status)
			}
			if apiErr.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, apiErr.Code)
			}
		})
	}
}

func TestDatasetsHandler_HandleUpload_CleansUpOnStoreFailure(t *testing.T) {
	store := testutil.NewFailingStore()
	store.CreateDatasetErr = storage.ErrNotFound

	dir := filepath.Join(t.TempDir(), "uploads")
	files, err := storage.NewFileStore(dir)
	if err != nil {
		t.Fatalf("failed to create file store: %v", err)
	}
	user := seedUser(t, store, "demo", "demo-pass")
	handler := NewDatasetsHandler(store, files, 1<<20)

	body, contentType := multipartBody(t, "file", "equipment.csv", sampleCSV)
	c, _ := newTestContext(http.MethodPost, "/api/datasets/upload/", contentType, body)
	c.Set(userContextKey, user)

	if err := handler.HandleUpload(c); err == nil {
		t.Fatal("expected error, got nil")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read upload dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected stored file to be removed, found %d entries", len(entries))
	}
}

func TestDatasetsHandler_HandleSummary(t *testing.T) {
	store := storage.NewMemoryStore()
	files := newTestFiles(t)
	owner := seedUser(t, store, "owner", "owner-pass")
	other := seedUser(t, store, "other", "other-pass")
	handler := NewDatasetsHandler(store, files, 1<<20)

	ds := seedDataset(t, store, files, owner.ID, "equipment.csv", testSummaryFor(3, "Equipment", "Flowrate", "Pressure"))

	t.Run("owner sees the stored summary", func(t *testing.T) {
		c, rec := newTestContext(http.MethodGet, "/", "", nil)
		c.SetPath("/api/datasets/:id/summary/")
		c.SetParamNames("id")
		c.SetParamValues("1")
		c.Set(userContextKey, owner)

		if err := handler.HandleSummary(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}

		var sum models.Summary
		if err := json.Unmarshal(rec.Body.Bytes(), &sum); err != nil {
			t.Fatalf("failed to unmarshal summary: %v", err)
		}
		if sum.DatasetID != ds.ID {
			t.Errorf("expected dataset_id %d, got %d", ds.ID, sum.DatasetID)
		}
		if sum.Rows != 3 {
			t.Errorf("expected 3 rows, got %d", sum.Rows)
		}
	})

	errorCases := []struct {
		name       string
		user       *models.User
		id         string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "foreign dataset is forbidden",
			user:       other,
			id:         "1",
			wantStatus: http.StatusForbidden,
			wantCode:   "FORBIDDEN",
		},
		{
			name:       "unknown dataset",
			user:       owner,
			id:         "99",
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "non numeric id",
			user:       owner,
			id:         "abc",
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
	}

	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext(http.MethodGet, "/", "", nil)
			c.SetPath("/api/datasets/:id/summary/")
			c.SetParamNames("id")
			c.SetParamValues(tt.id)
			c.Set(userContextKey, tt.user)

			err := handler.HandleSummary(c)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			apiErr, ok := err.(*APIError)
			if !ok {
				t.Fatalf("expected APIError, got %T", err)
			}
			if apiErr.Status != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, apiErr.Status)
			}
			if apiErr.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, apiErr.Code)
			}
		})
	}
}

func TestDatasetsHandler_HandleHistory(t *testing.T) {
	store := storage.NewMemoryStore()
	files := newTestFiles(t)
	owner := seedUser(t, store, "owner", "owner-pass")
	other := seedUser(t, store, "other", "other-pass")
	handler := NewDatasetsHandler(store, files, 1<<20)

	for i := 0; i < 7; i++ {
		seedDataset(t, store, files, owner.ID, "mine.csv", testSummaryFor(3, "Equipment", "Flowrate", "Pressure"))
	}
	seedDataset(t, store, files, other.ID, "theirs.csv", testSummaryFor(3, "Equipment", "Flowrate", "Pressure"))

	c, rec := newTestContext(http.MethodGet, "/api/datasets/history/", "", nil)
	c.Set(userContextKey, owner)

	if err := handler.HandleHistory(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	var entries []models.HistoryEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("failed to unmarshal history: %v", err)
	}
	if len(entries) != models.HistoryLimit {
		t.Fatalf("expected %d entries, got %d", models.HistoryLimit, len(entries))
	}
	wantIDs := []int64{7, 6, 5, 4, 3}
	for i, want := range wantIDs {
		if entries[i].ID != want {
			t.Errorf("entry %d: expected id %d, got %d", i, want, entries[i].ID)
		}
		if entries[i].OriginalFilename != "mine.csv" {
			t.Errorf("entry %d: expected only the caller's uploads, got %q", i, entries[i].OriginalFilename)
		}
	}
}

func TestDatasetsHandler_HandleRows(t *testing.T) {
	store := storage.NewMemoryStore()
	files := newTestFiles(t)
	owner := seedUser(t, store, "owner", "owner-pass")
	handler := NewDatasetsHandler(store, files, 1<<20)
	ds := seedDataset(t, store, files, owner.ID, "equipment.csv", testSummaryFor(3, "Equipment", "Flowrate", "Pressure"))

	c, rec := newTestContext(http.MethodGet, "/", "", nil)
	c.SetPath("/api/datasets/:id/rows/")
	c.SetParamNames("id")
	c.SetParamValues("1")
	c.Set(userContextKey, owner)

	if err := handler.HandleRows(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp rowsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal rows: %v", err)
	}
	if resp.DatasetID != ds.ID {
		t.Errorf("expected dataset_id %d, got %d", ds.ID, resp.DatasetID)
	}
	wantColumns := []string{"Equipment", "Flowrate", "Pressure"}
	if len(resp.Columns) != len(wantColumns) {
		t.Fatalf("expected %d columns, got %d", len(wantColumns), len(resp.Columns))
	}
	for i, want := range wantColumns {
		if resp.Columns[i] != want {
			t.Errorf("column %d: expected %q, got %q", i, want, resp.Columns[i])
		}
	}
	if len(resp.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(resp.Rows))
	}
	if resp.Rows[0]["Equipment"] != "Pump" || resp.Rows[2]["Pressure"] != "3.5" {
		t.Errorf("unexpected row content: %v", resp.Rows)
	}
}

func TestDatasetsHandler_HandleRowsMsgpack(t *testing.T) {
	store := storage.NewMemoryStore()
	files := newTestFiles(t)
	owner := seedUser(t, store, "owner", "owner-pass")
	handler := NewDatasetsHandler(store, files, 1<<20)
	seedDataset(t, store, files, owner.ID, "equipment.csv", testSummaryFor(3, "Equipment", "Flowrate", "Pressure"))

	c, rec := newTestContext(http.MethodGet, "/", "", nil)
	c.SetPath("/api/datasets/:id/rows/msgpack")
	c.SetParamNames("id")
	c.SetParamValues("1")
	c.Set(userContextKey, owner)

	if err := handler.HandleRowsMsgpack(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/msgpack" {
		t.Errorf("expected application/msgpack, got %q", got)
	}

	var resp rowsResponse
	if err := msgpack.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode msgpack: %v", err)
	}
	if resp.DatasetID != 1 {
		t.Errorf("expected dataset_id 1, got %d", resp.DatasetID)
	}
	if len(resp.Rows) != 3 {
		t.Errorf("expected 3 rows, got %d", len(resp.Rows))
	}
}

func TestDatasetsHandler_HandleRows_MissingStoredFile(t *testing.T) {
	store := storage.NewMemoryStore()
	files := newTestFiles(t)
	owner := seedUser(t, store, "owner", "owner-pass")
	handler := NewDatasetsHandler(store, files, 1<<20)
	ds := seedDataset(t, store, files, owner.ID, "equipment.csv", testSummaryFor(3, "Equipment", "Flowrate", "Pressure"))

	if err := files.Remove(ds.StoredName); err != nil {
		t.Fatalf("failed to remove stored file: %v", err)
	}

	c, _ := newTestContext(http.MethodGet, "/", "", nil)
	c.SetPath("/api/datasets/:id/rows/")
	c.SetParamNames("id")
	c.SetParamValues("1")
	c.Set(userContextKey, owner)

	err := handler.HandleRows(c)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Status != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", apiErr.Status)
	}
}
