package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 2*time.Second), srv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"code": code, "message": message})
}

func TestClientLogin(t *testing.T) {
	api, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api-token-auth/" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
			return
		}
		var creds struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			writeAPIError(w, http.StatusBadRequest, "MALFORMED_INPUT", "bad body")
			return
		}
		if creds.Username != "demo" || creds.Password != "demo-pass" {
			writeAPIError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid username or password")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": "0123456789abcdef0123456789abcdef01234567"})
	}))

	token, err := api.Login(context.Background(), "demo", "demo-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if len(token) != 40 {
		t.Errorf("token length = %d, want 40", len(token))
	}

	_, err = api.Login(context.Background(), "demo", "wrong")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != "INVALID_CREDENTIALS" {
		t.Errorf("code = %s, want INVALID_CREDENTIALS", apiErr.Code)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", apiErr.StatusCode)
	}
}

func TestClientLogin_TransportFailure(t *testing.T) {
	api, srv := newTestClient(t, http.NotFoundHandler())
	srv.Close()

	_, err := api.Login(context.Background(), "demo", "demo-pass")
	if !errors.Is(err, ErrTransportFailure) {
		t.Errorf("expected ErrTransportFailure, got %v", err)
	}
}

func TestClientUpload(t *testing.T) {
	const key = "0123456789abcdef0123456789abcdef01234567"
	api, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/datasets/upload/" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Token "+key {
			writeAPIError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeAPIError(w, http.StatusBadRequest, "VALIDATION_ERROR", "missing file field")
			return
		}
		defer file.Close()
		if header.Filename != "plant_a.csv" {
			t.Errorf("filename = %q, want plant_a.csv", header.Filename)
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"dataset_id":  int64(7),
			"summary_url": "/api/datasets/7/summary/",
			"history_url": "/api/datasets/history/",
		})
	}))

	res, err := api.UploadReader(context.Background(), key, "plant_a.csv",
		strings.NewReader("Equipment,Flowrate\nPump-1,10\n"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if res.DatasetID != 7 {
		t.Errorf("dataset id = %d, want 7", res.DatasetID)
	}
	if res.SummaryURL != "/api/datasets/7/summary/" {
		t.Errorf("summary url = %q", res.SummaryURL)
	}

	if _, err := api.UploadReader(context.Background(), "", "plant_a.csv", strings.NewReader("x")); !errors.Is(err, ErrNoToken) {
		t.Errorf("expected ErrNoToken without a session, got %v", err)
	}
}

func TestClientRows_PrefersMsgpack(t *testing.T) {
	payload := RowsPayload{
		DatasetID: 7,
		Columns:   []string{"Equipment", "Flowrate"},
		Rows: []map[string]string{
			{"Equipment": "Pump-1", "Flowrate": "10"},
			{"Equipment": "Pump-2", "Flowrate": "20"},
		},
	}
	var jsonCalls int
	api, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/datasets/7/rows/msgpack":
			body, err := msgpack.Marshal(payload)
			if err != nil {
				t.Fatalf("marshal msgpack: %v", err)
			}
			w.Header().Set("Content-Type", "application/msgpack")
			_, _ = w.Write(body)
		case "/api/datasets/7/rows/":
			jsonCalls++
			writeJSON(w, http.StatusOK, payload)
		default:
			http.NotFound(w, r)
		}
	}))

	got, err := api.Rows(context.Background(), "tok", 7)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(got.Rows) != 2 || got.Rows[1]["Flowrate"] != "20" {
		t.Errorf("unexpected rows: %+v", got.Rows)
	}
	if jsonCalls != 0 {
		t.Errorf("JSON endpoint called %d times, msgpack should have served", jsonCalls)
	}
}

func TestClientRows_FallsBackToJSON(t *testing.T) {
	payload := RowsPayload{
		DatasetID: 7,
		Columns:   []string{"Equipment"},
		Rows:      []map[string]string{{"Equipment": "Pump-1"}},
	}
	api, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/datasets/7/rows/msgpack":
			writeAPIError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "encoder broken")
		case "/api/datasets/7/rows/":
			writeJSON(w, http.StatusOK, payload)
		default:
			http.NotFound(w, r)
		}
	}))

	got, err := api.Rows(context.Background(), "tok", 7)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(got.Rows) != 1 {
		t.Errorf("rows = %d, want 1", len(got.Rows))
	}
}

func TestClientReport(t *testing.T) {
	pdf := []byte("%PDF-1.4 fake")
	api, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/datasets/7/report/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("X-Report-Renderer", "full")
		_, _ = w.Write(pdf)
	}))

	body, renderer, err := api.Report(context.Background(), "tok", 7)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if string(body) != string(pdf) {
		t.Errorf("unexpected body: %q", body)
	}
	if renderer != "full" {
		t.Errorf("renderer = %q, want full", renderer)
	}

	if _, _, err := api.Report(context.Background(), "", 7); !errors.Is(err, ErrNoToken) {
		t.Errorf("expected ErrNoToken without a session, got %v", err)
	}
}

func TestClientHistory_ErrorMapping(t *testing.T) {
	api, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
	}))

	_, err := api.History(context.Background(), "stale-token")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Code != "UNAUTHORIZED" {
		t.Errorf("got %d %s, want 401 UNAUTHORIZED", apiErr.StatusCode, apiErr.Code)
	}
}
