package httpapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dmitrijs2005/assetvault/internal/common"
)

const ownerKey = "owner"

// authMiddleware resolves the bearer token to the owner email.
func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(common.AuthorizationHeaderName)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			return c.JSON(http.StatusUnauthorized, errorBody{Error: "missing bearer token"})
		}

		email, err := s.users.Authenticate(strings.TrimSpace(token))
		if err != nil {
			return c.JSON(http.StatusUnauthorized, errorBody{Error: "invalid token"})
		}
		c.Set(ownerKey, email)
		return next(c)
	}
}

func ownerFrom(c echo.Context) string {
	owner, _ := c.Get(ownerKey).(string)
	return owner
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			args := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				s.logger.Warn(c.Request().Context(), "request failed", append(args, "error", v.Error)...)
				return nil
			}
			s.logger.Debug(c.Request().Context(), "request", args...)
			return nil
		},
	})
}
