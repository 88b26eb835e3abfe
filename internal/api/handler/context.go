package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/edulearn/lms/internal/api/middleware"
	"github.com/edulearn/lms/internal/core/ports"
)

// ctxClaims extracts the claims injected by the Auth middleware. Missing
// claims mean the route was mounted without Auth.
func ctxClaims(c echo.Context) (ports.TokenClaims, error) {
	claims, ok := c.Get(middleware.ClaimsKey).(ports.TokenClaims)
	if !ok || claims.UserID == "" {
		return ports.TokenClaims{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return claims, nil
}
