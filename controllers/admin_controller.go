package controllers

import (
	"net/http"

	"github.com/HSouheill/couplecanvas_backend/middleware"
	"github.com/HSouheill/couplecanvas_backend/models"
	"github.com/HSouheill/couplecanvas_backend/services"
	"github.com/HSouheill/couplecanvas_backend/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AdminController handles admin accounts, plans, reconciliation and the live feed
type AdminController struct {
	auth      *services.AuthService
	plans     *services.PlanService
	reconcile *services.ReconcileService
	hub       *websocket.Hub
	logger    *zap.Logger
}

// NewAdminController creates a new admin controller
func NewAdminController(auth *services.AuthService, plans *services.PlanService, reconcile *services.ReconcileService, hub *websocket.Hub, logger *zap.Logger) *AdminController {
	return &AdminController{auth: auth, plans: plans, reconcile: reconcile, hub: hub, logger: logger}
}

// Login authenticates an admin
func (ac *AdminController) Login(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, ac.logger, err)
	}

	resp, err := ac.auth.LoginAdmin(ctx, &req)
	if err != nil {
		return respondError(c, ac.logger, err)
	}

	return respond(c, http.StatusOK, "Login successful", resp)
}

// RegisterAdmin creates another admin account
func (ac *AdminController) RegisterAdmin(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	var req models.AdminRegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, ac.logger, err)
	}

	admin, err := ac.auth.RegisterAdmin(ctx, &req)
	if err != nil {
		return respondError(c, ac.logger, err)
	}

	ac.logger.Info("admin created",
		zap.String("by", middleware.GetUserIDFromToken(c)),
		zap.String("adminId", admin.ID.Hex()))
	return respond(c, http.StatusCreated, "Admin created successfully", admin)
}

// CreatePlan adds a subscription plan
func (ac *AdminController) CreatePlan(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	var req models.PlanRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, ac.logger, err)
	}

	plan, err := ac.plans.Create(ctx, &req)
	if err != nil {
		return respondError(c, ac.logger, err)
	}

	return respond(c, http.StatusCreated, "Subscription plan created successfully", plan)
}

// Reconcile replays interrupted workflows and repairs vendor approval
func (ac *AdminController) Reconcile(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	report, err := ac.reconcile.Run(ctx)
	if err != nil {
		return respondError(c, ac.logger, err)
	}

	return respond(c, http.StatusOK, "Reconciliation completed", report)
}

// Events upgrades to the admin websocket feed
func (ac *AdminController) Events(c echo.Context) error {
	if ac.hub == nil {
		return respond(c, http.StatusServiceUnavailable, "Live feed is not available", nil)
	}
	if err := websocket.HandleWebSocket(c, ac.hub, middleware.GetUserIDFromToken(c)); err != nil {
		ac.logger.Warn("websocket upgrade failed", zap.Error(err))
		return nil
	}
	return nil
}
