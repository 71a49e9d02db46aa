// middleware.go - Token authentication middleware
package api

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/auth"
	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/models"
)

// userContextKey is where the middleware stores the authenticated user.
const userContextKey = "auth_user"

// TokenAuth returns middleware that requires a valid
// "Authorization: Token <key>" header and attaches the user to the context.
func TokenAuth(svc *auth.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key, apiErr := tokenFromHeader(c.Request().Header.Get(echo.HeaderAuthorization))
			if apiErr != nil {
				return apiErr
			}

			user, err := svc.ResolveToken(c.Request().Context(), key)
			if err != nil {
				if errors.Is(err, auth.ErrInvalidToken) {
					return NewUnauthorizedError("invalid token")
				}
				return NewInternalError("failed to resolve token", err)
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// tokenFromHeader extracts the key from a "Token <key>" header value.
func tokenFromHeader(header string) (string, *APIError) {
	if header == "" {
		return "", NewUnauthorizedError("authentication credentials were not provided")
	}

	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Token") {
		return "", NewUnauthorizedError("invalid authorization header, expected: Token <key>")
	}
	return parts[1], nil
}

// currentUser returns the authenticated user set by TokenAuth.
func currentUser(c echo.Context) (*models.User, bool) {
	user, ok := c.Get(userContextKey).(*models.User)
	return user, ok
}
