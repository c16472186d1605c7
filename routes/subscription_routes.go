package routes

import (
	"github.com/HSouheill/couplecanvas_backend/controllers"
	"github.com/HSouheill/couplecanvas_backend/middleware"
	"github.com/HSouheill/couplecanvas_backend/services"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RegisterSubscriptionRoutes sets up public plan listings and the vendor area
func RegisterSubscriptionRoutes(e *echo.Echo, subs *controllers.SubscriptionController, vendors *controllers.VendorController, jwt *middleware.JWT, logger *zap.Logger) {
	e.GET("/api/sub-plans", subs.GetPlans)
	e.GET("/api/sub-plans/:vendorType", subs.GetPlans)

	vendor := e.Group("/api/vendor")
	vendor.Use(jwt.Middleware())
	vendor.Use(middleware.RequireUserType(logger, services.UserTypeVendor))

	vendor.POST("/subscribe", subs.Subscribe)
	vendor.GET("/subscription/:vendorId", subs.GetVendorSubscriptions)
	vendor.GET("/profile/:category", vendors.GetOwnProfile)
}
