// Package webapp serves the browser front-end.
//
// It is a thin presentation layer over the shared client package: every
// dataset view goes through the same load protocol as the CLI, so live
// and fallback data render identically in both front-ends.
package webapp

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/client"
	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/models"
)

const (
	sessionCookie = "equipviz_token"
	userCookie    = "equipviz_user"

	// previewDisplayLimit caps the rows rendered in the preview table;
	// charts still use every reconciled row.
	previewDisplayLimit = 100
)

// Server holds the web client's handlers.
type Server struct {
	api    *client.Client
	loader *client.Loader
	logger *slog.Logger
}

// New creates the web front-end over an API client.
func New(api *client.Client, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{api: api, loader: client.NewLoader(api), logger: logger}
}

// Register installs the renderer and routes on an echo instance.
func (s *Server) Register(e *echo.Echo) error {
	r, err := newRenderer()
	if err != nil {
		return err
	}
	e.Renderer = r

	e.GET("/", s.handleHome)
	e.GET("/login", s.handleLoginForm)
	e.POST("/login", s.handleLogin)
	e.POST("/logout", s.handleLogout)
	e.POST("/upload", s.handleUpload)
	e.GET("/datasets/:identifier", s.handleDataset)
	e.GET("/datasets/:identifier/chart.png", s.handleChart)
	e.GET("/datasets/:identifier/report.pdf", s.handleReport)
	return nil
}

// pageData is the payload shape every template receives.
type pageData struct {
	Title    string
	Username string
	Error    string

	History      []models.HistoryEntry
	HistoryError string

	Identifier  string
	Summary     *models.Summary
	Source      client.DataSource
	ChartColumn string
	Preview     []map[string]string
	MoreRows    int
}

func (s *Server) session(c echo.Context) (token, username string) {
	if ck, err := c.Cookie(sessionCookie); err == nil {
		token = ck.Value
	}
	if ck, err := c.Cookie(userCookie); err == nil {
		username = ck.Value
	}
	return token, username
}

func setSession(c echo.Context, token, username string) {
	c.SetCookie(&http.Cookie{Name: sessionCookie, Value: token, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	c.SetCookie(&http.Cookie{Name: userCookie, Value: username, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

func clearSession(c echo.Context) {
	for _, name := range []string{sessionCookie, userCookie} {
		c.SetCookie(&http.Cookie{Name: name, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	}
}

func (s *Server) handleHome(c echo.Context) error {
	token, username := s.session(c)
	data := &pageData{Title: "Home", Username: username}

	if token != "" {
		entries, err := s.api.History(c.Request().Context(), token)
		if err != nil {
			s.logger.Warn("history fetch failed", slog.String("error", err.Error()))
			data.HistoryError = "Upload history is unavailable right now."
			var apiErr *client.APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
				// Stale cookie: drop it so the nav offers login again.
				clearSession(c)
				data.Username = ""
				data.HistoryError = ""
			}
		} else {
			data.History = entries
		}
	}
	return c.Render(http.StatusOK, "home", data)
}

func (s *Server) handleLoginForm(c echo.Context) error {
	if _, username := s.session(c); username != "" {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return c.Render(http.StatusOK, "login", &pageData{Title: "Log in"})
}

func (s *Server) handleLogin(c echo.Context) error {
	username := strings.TrimSpace(c.FormValue("username"))
	password := c.FormValue("password")
	if username == "" || password == "" {
		return c.Render(http.StatusBadRequest, "login",
			&pageData{Title: "Log in", Error: "Username and password are required."})
	}

	token, err := s.api.Login(c.Request().Context(), username, password)
	if err != nil {
		status := http.StatusBadGateway
		msg := "The backend is unreachable. You can still browse the sample dataset."
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			// Only a 401 means rejected credentials; a backend 5xx must
			// not read as a typo in the password.
			if apiErr.StatusCode == http.StatusUnauthorized {
				status = http.StatusUnauthorized
				msg = "Invalid username or password."
			} else {
				s.logger.Error("login failed", slog.String("error", err.Error()))
				msg = "The backend could not process the login. Try again shortly."
			}
		}
		return c.Render(status, "login", &pageData{Title: "Log in", Error: msg})
	}

	setSession(c, token, username)
	return c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleLogout(c echo.Context) error {
	clearSession(c)
	return c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleUpload(c echo.Context) error {
	token, _ := s.session(c)
	if token == "" {
		return c.Redirect(http.StatusSeeOther, "/login")
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return s.errorPage(c, http.StatusBadRequest, "Choose a CSV file to upload.")
	}
	f, err := fileHeader.Open()
	if err != nil {
		return s.errorPage(c, http.StatusBadRequest, "The uploaded file could not be read.")
	}
	defer f.Close()

	res, err := s.api.UploadReader(c.Request().Context(), token, fileHeader.Filename, f)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			return s.errorPage(c, apiErr.StatusCode, apiErr.Message)
		}
		return s.errorPage(c, http.StatusBadGateway, "Upload failed: the backend is unreachable.")
	}
	return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/datasets/%d", res.DatasetID))
}

func (s *Server) handleDataset(c echo.Context) error {
	token, username := s.session(c)
	identifier := paramIdentifier(c)

	res, err := s.loader.LoadDataset(c.Request().Context(), client.LoadRequest{
		Identifier: identifier,
		Token:      token,
	})
	if err != nil {
		return s.loadErrorPage(c, err)
	}

	data := &pageData{
		Title:       "Dataset",
		Username:    username,
		Identifier:  identifier,
		Summary:     res.Summary,
		Source:      res.Source,
		ChartColumn: chartColumn(res.Summary, c.QueryParam("column")),
		Preview:     res.Summary.RawPreview,
	}
	if len(data.Preview) > previewDisplayLimit {
		data.MoreRows = len(data.Preview) - previewDisplayLimit
		data.Preview = data.Preview[:previewDisplayLimit]
	}
	return c.Render(http.StatusOK, "dataset", data)
}

func (s *Server) handleChart(c echo.Context) error {
	token, _ := s.session(c)

	res, err := s.loader.LoadDataset(c.Request().Context(), client.LoadRequest{
		Identifier: paramIdentifier(c),
		Token:      token,
	})
	if err != nil {
		return c.String(loadErrorStatus(err), "chart unavailable")
	}

	column := chartColumn(res.Summary, c.QueryParam("column"))
	if column == "" {
		return c.String(http.StatusNotFound, "no numeric columns to chart")
	}
	values := numericValues(res.Summary.RawPreview, column)
	if len(values) < 2 {
		return c.String(http.StatusNotFound, "not enough data points")
	}

	png, err := linePNG(column, values)
	if err != nil {
		s.logger.Error("chart render failed", slog.String("error", err.Error()))
		return c.String(http.StatusInternalServerError, "chart rendering failed")
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

func (s *Server) handleReport(c echo.Context) error {
	token, _ := s.session(c)
	if token == "" {
		return c.Redirect(http.StatusSeeOther, "/login")
	}

	id, err := s.loader.ResolveID(c.Request().Context(), token, paramIdentifier(c))
	if err != nil {
		return s.loadErrorPage(c, err)
	}
	body, renderer, err := s.api.Report(c.Request().Context(), token, id)
	if err != nil {
		return s.loadErrorPage(c, err)
	}

	if renderer != "" {
		c.Response().Header().Set("X-Report-Renderer", renderer)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="dataset_report_%d.pdf"`, id))
	return c.Blob(http.StatusOK, "application/pdf", body)
}

func (s *Server) errorPage(c echo.Context, status int, message string) error {
	_, username := s.session(c)
	return c.Render(status, "error", &pageData{Title: "Error", Username: username, Error: message})
}

// loadErrorPage translates protocol errors into user-facing pages.
func (s *Server) loadErrorPage(c echo.Context, err error) error {
	if errors.Is(err, client.ErrNoToken) {
		return c.Redirect(http.StatusSeeOther, "/login")
	}
	status := loadErrorStatus(err)
	switch status {
	case http.StatusNotFound:
		if errors.Is(err, client.ErrUnresolvedIdentifier) {
			return s.errorPage(c, status, "No dataset matches that identifier.")
		}
	case http.StatusBadGateway:
		return s.errorPage(c, status, "The backend is unreachable.")
	case http.StatusInternalServerError:
		s.logger.Error("dataset load failed", slog.String("error", err.Error()))
		return s.errorPage(c, status, "Something went wrong loading the dataset.")
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return s.errorPage(c, status, apiErr.Message)
	}
	return s.errorPage(c, status, "Something went wrong loading the dataset.")
}

func loadErrorStatus(err error) int {
	switch {
	case errors.Is(err, client.ErrUnresolvedIdentifier):
		return http.StatusNotFound
	case errors.Is(err, client.ErrTransportFailure):
		return http.StatusBadGateway
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode > 0 {
		return apiErr.StatusCode
	}
	return http.StatusInternalServerError
}

func paramIdentifier(c echo.Context) string {
	raw := c.Param("identifier")
	if un, err := url.PathUnescape(raw); err == nil {
		return un
	}
	return raw
}

// chartColumn picks the chart column: the requested one when it is
// numeric, otherwise the first numeric column.
func chartColumn(sum *models.Summary, requested string) string {
	if len(sum.NumericColumns) == 0 {
		return ""
	}
	for _, col := range sum.NumericColumns {
		if col == requested {
			return col
		}
	}
	return sum.NumericColumns[0]
}
