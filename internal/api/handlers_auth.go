// handlers_auth.go - Credential exchange handlers
package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/auth"
)

// AuthHandlerImpl implements the AuthHandler interface
type AuthHandlerImpl struct {
	auth *auth.Service
}

// NewAuthHandler creates a new auth handler instance
func NewAuthHandler(svc *auth.Service) AuthHandler {
	return &AuthHandlerImpl{auth: svc}
}

// HandleObtainToken exchanges a username/password pair for the user's
// API token. Accepts JSON or form bodies.
func (h *AuthHandlerImpl) HandleObtainToken(c echo.Context) error {
	var req obtainTokenRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	if err := req.validate(); err != nil {
		return err
	}

	ctx := c.Request().Context()

	user, err := h.auth.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return NewInvalidCredentialsError()
		}
		return NewInternalError("failed to authenticate", err)
	}

	token, err := h.auth.IssueToken(ctx, user.ID)
	if err != nil {
		return NewInternalError("failed to issue token", err)
	}

	return c.JSON(http.StatusOK, token)
}

// Request/Response types

type obtainTokenRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

func (r *obtainTokenRequest) validate() error {
	if r.Username == "" {
		return NewValidationError("username")
	}
	if r.Password == "" {
		return NewValidationError("password")
	}
	return nil
}
