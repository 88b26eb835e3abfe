package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/edulearn/lms/internal/core/domain"
	"github.com/edulearn/lms/internal/core/ports"
)

// ClaimsKey is the echo context key holding the verified ports.TokenClaims.
const ClaimsKey = "claims"

// Auth validates the bearer JWT, rejects revoked tokens and injects the
// claims into the context. revoker may be nil.
func Auth(jwtSecret string, revoker ports.TokenRevoker) echo.MiddlewareFunc {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized to access this route")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			mc := jwt.MapClaims{}
			tkn, err := parser.ParseWithClaims(parts[1], mc, func(*jwt.Token) (interface{}, error) {
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			claims, ok := toClaims(mc)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			if revoker != nil && claims.TokenID != "" {
				revoked, err := revoker.IsRevoked(c.Request().Context(), claims.TokenID)
				if err != nil {
					return err
				}
				if revoked {
					return echo.NewHTTPError(http.StatusUnauthorized, domain.ErrTokenRevoked.Error())
				}
			}

			c.Set(ClaimsKey, claims)
			return next(c)
		}
	}
}

func toClaims(mc jwt.MapClaims) (ports.TokenClaims, bool) {
	sub, err := mc.GetSubject()
	if err != nil || sub == "" {
		return ports.TokenClaims{}, false
	}
	rawRole, _ := mc["role"].(string)
	role, err := domain.ParseRole(rawRole)
	if err != nil {
		return ports.TokenClaims{}, false
	}
	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return ports.TokenClaims{}, false
	}
	jti, _ := mc["jti"].(string)

	return ports.TokenClaims{
		UserID:    sub,
		Role:      role,
		TokenID:   jti,
		ExpiresAt: exp.Time.In(time.UTC),
	}, true
}
