// Package client implements the REST client and the dataset-loading
// protocol shared by the CLI and web front-ends.
//
// Both front-ends display the same data, so identifier resolution, the
// offline fallback and preview reconciliation live here once and the
// presentation layers stay thin. Tokens are passed per request; the
// client holds no session state.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/models"
)

// DefaultTimeout matches the desktop client's request timeout.
const DefaultTimeout = 15 * time.Second

var (
	// ErrTransportFailure wraps network-level failures reaching the
	// backend. Loads recover from it via the bundled sample wherever a
	// demo path exists.
	ErrTransportFailure = errors.New("backend unreachable")

	// ErrUnresolvedIdentifier means no history entry answered to the
	// requested label.
	ErrUnresolvedIdentifier = errors.New("identifier did not match any dataset")

	// ErrNoToken is returned by operations that cannot run without a
	// login, such as upload and report download.
	ErrNoToken = errors.New("not logged in")
)

// APIError is the backend's structured error body.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Client calls the equipment-visualizer REST API.
type Client struct {
	http *resty.Client
}

// New creates a client for the backend at baseURL. A non-positive
// timeout selects DefaultTimeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{http: hc}
}

// request starts a request carrying the token, when one is given.
func (c *Client) request(ctx context.Context, token string) *resty.Request {
	req := c.http.R().SetContext(ctx).SetError(&APIError{})
	if token != "" {
		req.SetAuthScheme("Token")
		req.SetAuthToken(token)
	}
	return req
}

// fail converts a response/error pair into a client error: transport
// problems wrap ErrTransportFailure, structured backend errors surface
// as *APIError.
func fail(resp *resty.Response, err error, op string) error {
	if err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrTransportFailure, err)
	}
	if apiErr, ok := resp.Error().(*APIError); ok && apiErr.Code != "" {
		apiErr.StatusCode = resp.StatusCode()
		return fmt.Errorf("%s: %w", op, apiErr)
	}
	return fmt.Errorf("%s: backend returned status %d", op, resp.StatusCode())
}

// Login exchanges credentials for the user's API token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	resp, err := c.request(ctx, "").
		SetBody(map[string]string{"username": username, "password": password}).
		SetResult(&out).
		Post("/api-token-auth/")
	if err != nil || !resp.IsSuccess() {
		return "", fail(resp, err, "login")
	}
	if out.Token == "" {
		return "", errors.New("login: backend returned no token")
	}
	return out.Token, nil
}

// UploadResult is the backend's response to a dataset upload.
type UploadResult struct {
	DatasetID  int64  `json:"dataset_id"`
	SummaryURL string `json:"summary_url"`
	HistoryURL string `json:"history_url"`
}

// Upload posts a CSV file from disk.
func (c *Client) Upload(ctx context.Context, token, path string) (*UploadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	defer f.Close()
	return c.UploadReader(ctx, token, filepath.Base(path), f)
}

// UploadReader posts CSV content under the multipart "file" field.
func (c *Client) UploadReader(ctx context.Context, token, filename string, r io.Reader) (*UploadResult, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	out := &UploadResult{}
	resp, err := c.request(ctx, token).
		SetFileReader("file", filename, r).
		SetResult(out).
		Post("/api/datasets/upload/")
	if err != nil || !resp.IsSuccess() {
		return nil, fail(resp, err, "upload")
	}
	return out, nil
}

// Summary fetches the stored summary payload for a dataset.
func (c *Client) Summary(ctx context.Context, token string, datasetID int64) (*models.Summary, error) {
	sum := &models.Summary{}
	resp, err := c.request(ctx, token).
		SetResult(sum).
		Get(fmt.Sprintf("/api/datasets/%d/summary/", datasetID))
	if err != nil || !resp.IsSuccess() {
		return nil, fail(resp, err, "summary")
	}
	return sum, nil
}

// History returns the caller's most recent uploads, newest first.
func (c *Client) History(ctx context.Context, token string) ([]models.HistoryEntry, error) {
	var entries []models.HistoryEntry
	resp, err := c.request(ctx, token).
		SetResult(&entries).
		Get("/api/datasets/history/")
	if err != nil || !resp.IsSuccess() {
		return nil, fail(resp, err, "history")
	}
	return entries, nil
}

// RowsPayload is the full row set of a dataset.
type RowsPayload struct {
	DatasetID int64               `json:"dataset_id" msgpack:"dataset_id"`
	Columns   []string            `json:"columns" msgpack:"columns"`
	Rows      []map[string]string `json:"rows" msgpack:"rows"`
}

// Rows fetches the complete row set. The msgpack variant is tried first
// for the smaller payload; JSON covers intermediaries that cannot pass
// it through.
func (c *Client) Rows(ctx context.Context, token string, datasetID int64) (*RowsPayload, error) {
	if payload, err := c.rowsMsgpack(ctx, token, datasetID); err == nil {
		return payload, nil
	}
	return c.rowsJSON(ctx, token, datasetID)
}

func (c *Client) rowsMsgpack(ctx context.Context, token string, datasetID int64) (*RowsPayload, error) {
	resp, err := c.request(ctx, token).
		SetHeader("Accept", "application/msgpack").
		Get(fmt.Sprintf("/api/datasets/%d/rows/msgpack", datasetID))
	if err != nil || !resp.IsSuccess() {
		return nil, fail(resp, err, "rows")
	}
	payload := &RowsPayload{}
	if err := msgpack.Unmarshal(resp.Body(), payload); err != nil {
		return nil, fmt.Errorf("rows: decoding msgpack: %w", err)
	}
	return payload, nil
}

func (c *Client) rowsJSON(ctx context.Context, token string, datasetID int64) (*RowsPayload, error) {
	payload := &RowsPayload{}
	resp, err := c.request(ctx, token).
		SetResult(payload).
		Get(fmt.Sprintf("/api/datasets/%d/rows/", datasetID))
	if err != nil || !resp.IsSuccess() {
		return nil, fail(resp, err, "rows")
	}
	return payload, nil
}

// Report downloads the rendered PDF. The second return value is the
// renderer path the backend reported, "full" or "fallback".
func (c *Client) Report(ctx context.Context, token string, datasetID int64) ([]byte, string, error) {
	if token == "" {
		return nil, "", ErrNoToken
	}
	resp, err := c.request(ctx, token).
		SetHeader("Accept", "application/pdf").
		Get(fmt.Sprintf("/api/datasets/%d/report/", datasetID))
	if err != nil || !resp.IsSuccess() {
		return nil, "", fail(resp, err, "report")
	}
	return resp.Body(), resp.Header().Get("X-Report-Renderer"), nil
}

// Samples lists the demo files bundled with the backend.
func (c *Client) Samples(ctx context.Context) ([]string, error) {
	var names []string
	resp, err := c.request(ctx, "").
		SetResult(&names).
		Get("/samples/")
	if err != nil || !resp.IsSuccess() {
		return nil, fail(resp, err, "samples")
	}
	return names, nil
}
