package controllers

import (
	"net/http"

	"github.com/HSouheill/couplecanvas_backend/middleware"
	"github.com/HSouheill/couplecanvas_backend/models"
	"github.com/HSouheill/couplecanvas_backend/services"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthController handles vendor signup, login and logout
type AuthController struct {
	auth         *services.AuthService
	registration *services.RegistrationService
	jwt          *middleware.JWT
	logger       *zap.Logger
}

// NewAuthController creates a new auth controller
func NewAuthController(auth *services.AuthService, registration *services.RegistrationService, jwt *middleware.JWT, logger *zap.Logger) *AuthController {
	return &AuthController{auth: auth, registration: registration, jwt: jwt, logger: logger}
}

// Register creates a vendor account with one type profile per selected tag
func (ac *AuthController) Register(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	var req models.RegisterVendorRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, ac.logger, err)
	}

	result, err := ac.registration.Register(ctx, &req)
	if err != nil {
		return respondError(c, ac.logger, err)
	}

	return respond(c, http.StatusCreated, "Vendor registered successfully", result)
}

// Login authenticates a vendor
func (ac *AuthController) Login(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, ac.logger, err)
	}

	resp, err := ac.auth.LoginVendor(ctx, &req)
	if err != nil {
		return respondError(c, ac.logger, err)
	}

	return respond(c, http.StatusOK, "Login successful", resp)
}

// Logout revokes the caller's token
func (ac *AuthController) Logout(c echo.Context) error {
	if err := ac.jwt.Revoke(c); err != nil {
		// the token is still revoked for this process
		ac.logger.Warn("failed to persist token revocation",
			zap.String("userId", middleware.GetUserIDFromToken(c)),
			zap.Error(err))
	}
	return respond(c, http.StatusOK, "Logged out successfully", nil)
}
