package middleware

import (
	"FitTrack/internal/auth"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SessionGuard authenticates every request from the session cookie and
// stores the verified claims in the context under auth.ContextKey.
func SessionGuard(sessions *auth.SessionIssuer, logger *zap.Logger) echo.MiddlewareFunc {
	logger = logger.Named("guard")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(auth.CookieName)
			if err != nil || cookie.Value == "" {
				return reject(c, auth.ErrUnauthenticated)
			}

			claims, err := sessions.Parse(c.Request().Context(), cookie.Value)
			if err != nil {
				if !errors.Is(err, auth.ErrInvalidToken) && !errors.Is(err, auth.ErrUnauthenticated) {
					logger.Error("session check failed", zap.String("path", c.Path()), zap.Error(err))
				}
				return reject(c, err)
			}
			c.Set(auth.ContextKey, claims)
			return next(c)
		}
	}
}

func reject(c echo.Context, err error) error {
	status, code, message := auth.MapError(err)
	return c.JSON(status, map[string]string{"error": message, "code": code})
}

// Forbidden is the body used when a session is valid but not allowed.
func forbidden(c echo.Context, message string) error {
	return c.JSON(http.StatusForbidden, map[string]string{"error": message, "code": "FORBIDDEN"})
}
