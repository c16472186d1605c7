package routes

import (
	"github.com/HSouheill/couplecanvas_backend/middleware"
	"github.com/HSouheill/couplecanvas_backend/services"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RegisterAdminRoutes sets up all admin-related routes
func RegisterAdminRoutes(e *echo.Echo, h Controllers, jwt *middleware.JWT, logger *zap.Logger) {
	admin := e.Group("/api/admin")

	// Public routes (no auth required)
	admin.POST("/login", h.Admin.Login)

	// Protected routes (require admin authentication)
	protected := admin.Group("")
	protected.Use(jwt.Middleware())
	protected.Use(middleware.RequireUserType(logger, services.UserTypeAdmin))

	protected.POST("/register", h.Admin.RegisterAdmin)
	protected.POST("/subscription-plans", h.Admin.CreatePlan)
	protected.POST("/reconcile", h.Admin.Reconcile)
	protected.GET("/ws", h.Admin.Events)

	// Subscription decisions
	protected.GET("/subscriptions/pending", h.Approval.GetPendingSubscriptions)
	protected.PATCH("/subscription/:id/status", h.Approval.UpdateSubscriptionStatus)
	protected.GET("/approval-logs", h.Approval.GetApprovalLogs)

	// Type profiles
	protected.GET("/vendors/:category", h.Vendor.ListVendors)
	protected.GET("/vendors/:category/:id", h.Vendor.GetVendor)
	protected.PATCH("/vendors/:category/:id/status", h.Approval.UpdateProfileStatus)
	protected.DELETE("/vendors/:category/:id", h.Vendor.DeleteVendor)
}
