package middleware

import (
	"net/http"

	"github.com/HSouheill/couplecanvas_backend/models"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequireUserType checks if the authenticated user has one of the allowed user types
func RequireUserType(logger *zap.Logger, allowedTypes ...string) echo.MiddlewareFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userType := ExtractUserType(c)
			if userType == "" {
				logger.Warn("authentication failed: user type not found",
					zap.String("path", c.Request().URL.Path))
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Authentication failed: user type not found",
				})
			}

			for _, allowedType := range allowedTypes {
				if userType == allowedType {
					return next(c)
				}
			}

			logger.Warn("access denied",
				zap.String("path", c.Request().URL.Path),
				zap.String("userType", userType),
				zap.Strings("allowed", allowedTypes))
			return c.JSON(http.StatusForbidden, models.Response{
				Status:  http.StatusForbidden,
				Message: "Access denied for your user type",
			})
		}
	}
}
