package routes

import (
	"github.com/HSouheill/couplecanvas_backend/controllers"
	"github.com/HSouheill/couplecanvas_backend/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterAuthRoutes sets up vendor signup, login and logout
func RegisterAuthRoutes(e *echo.Echo, auth *controllers.AuthController, jwt *middleware.JWT) {
	g := e.Group("/api/auth")
	g.POST("/register", auth.Register)
	g.POST("/login", auth.Login)
	g.POST("/logout", auth.Logout, jwt.Middleware())
}
