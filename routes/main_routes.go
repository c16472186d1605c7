package routes

import (
	"net/http"

	"github.com/HSouheill/couplecanvas_backend/controllers"
	"github.com/HSouheill/couplecanvas_backend/middleware"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Controllers bundles every HTTP handler group
type Controllers struct {
	Auth         *controllers.AuthController
	Subscription *controllers.SubscriptionController
	Vendor       *controllers.VendorController
	Approval     *controllers.ApprovalController
	Admin        *controllers.AdminController
}

// SetupRoutes configures all API routes by calling individual route registration functions
func SetupRoutes(e *echo.Echo, h Controllers, jwt *middleware.JWT, logger *zap.Logger) {
	e.Match([]string{http.MethodGet, http.MethodHead}, "/", health)
	e.Match([]string{http.MethodGet, http.MethodHead}, "/health", health)

	RegisterAuthRoutes(e, h.Auth, jwt)
	RegisterSubscriptionRoutes(e, h.Subscription, h.Vendor, jwt, logger)
	RegisterAdminRoutes(e, h, jwt, logger)
}

func health(c echo.Context) error {
	if c.Request().Method == http.MethodHead {
		return c.NoContent(http.StatusOK)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "OK",
		"message": "CoupleCanvas backend is running",
	})
}
