package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/HSouheill/couplecanvas_backend/middleware"
	"github.com/HSouheill/couplecanvas_backend/models"
	"github.com/HSouheill/couplecanvas_backend/services"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const requestTimeout = 15 * time.Second

var errUnauthenticated = errors.New("invalid user id in token")

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

func respond(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, models.Response{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

// respondError maps service errors onto HTTP responses. Server side failures
// only expose a generic message.
func respondError(c echo.Context, logger *zap.Logger, err error) error {
	var validation *services.ValidationError
	var partial *services.PartialFailureError

	switch {
	case errors.As(err, &validation):
		logger.Warn("request rejected",
			zap.String("path", c.Path()),
			zap.String("field", validation.Field),
			zap.String("reason", validation.Message))
		return respond(c, http.StatusBadRequest, validation.Error(), nil)
	case errors.Is(err, errUnauthenticated):
		return unauthorized(c)
	case errors.Is(err, services.ErrNotFound):
		return respond(c, http.StatusNotFound, "Resource not found", nil)
	case errors.Is(err, services.ErrEmailTaken):
		return respond(c, http.StatusConflict, "Email already registered", nil)
	case errors.Is(err, services.ErrInvalidCredentials):
		return respond(c, http.StatusUnauthorized, "Invalid email or password", nil)
	case errors.As(err, &partial):
		// already logged and reported by the workflow
		return respond(c, http.StatusInternalServerError, "Operation was only partially applied and will be retried", map[string]interface{}{
			"operationId": partial.OperationID,
			"failedStep":  partial.Step,
		})
	default:
		logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		return respond(c, http.StatusInternalServerError, "Internal server error", nil)
	}
}

// bindAndValidate decodes the body and runs the registered validator
func bindAndValidate(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		return &services.ValidationError{Message: "Invalid request body"}
	}
	if c.Echo().Validator == nil {
		return nil
	}
	if err := c.Validate(v); err != nil {
		return services.FromValidator(err)
	}
	return nil
}

// callerID returns the authenticated user's id
func callerID(c echo.Context) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(middleware.GetUserIDFromToken(c))
	if err != nil {
		return primitive.NilObjectID, errUnauthenticated
	}
	return id, nil
}

func unauthorized(c echo.Context) error {
	return respond(c, http.StatusUnauthorized, "Please provide valid credentials", nil)
}

func forbidden(c echo.Context, message string) error {
	return respond(c, http.StatusForbidden, message, nil)
}
