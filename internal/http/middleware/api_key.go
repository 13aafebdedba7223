package middleware

import (
	"net/http"
	"strings"

	echo "github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rohnsht/PhoneNumber/internal/repository"
)

const (
	ctxClientID  = "client_id"
	ctxClientRPS = "client_rps"
)

// ClientIDFromCtx extracts the authenticated client_id set by APIKeyMiddleware.
func ClientIDFromCtx(c echo.Context) (int64, bool) {
	id, ok := c.Get(ctxClientID).(int64)
	return id, ok && id > 0
}

// APIKeyMiddleware authenticates requests using the X-API-Key header.
// On success it stores client_id (and client_rps when the client has its own
// limit) in the context. Suspended clients are rejected like unknown keys.
func APIKeyMiddleware(clients repository.ClientsRepository, log *zap.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := strings.TrimSpace(c.Request().Header.Get("X-API-Key"))
			if key == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing api key"})
			}
			cl, err := clients.GetByAPIKey(c.Request().Context(), key)
			if err != nil {
				log.Error("client lookup failed", zap.Error(err))
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "auth error"})
			}
			if !cl.Active() {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid api key"})
			}
			c.Set(ctxClientID, cl.ID)
			if cl.RateLimitRPS != nil {
				c.Set(ctxClientRPS, *cl.RateLimitRPS)
			}
			return next(c)
		}
	}
}
