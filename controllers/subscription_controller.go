package controllers

import (
	"net/http"

	"github.com/HSouheill/couplecanvas_backend/middleware"
	"github.com/HSouheill/couplecanvas_backend/models"
	"github.com/HSouheill/couplecanvas_backend/services"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// SubscriptionController serves plans and vendor subscription submissions
type SubscriptionController struct {
	subscriptions *services.SubscriptionService
	plans         *services.PlanService
	logger        *zap.Logger
}

// NewSubscriptionController creates a new subscription controller
func NewSubscriptionController(subscriptions *services.SubscriptionService, plans *services.PlanService, logger *zap.Logger) *SubscriptionController {
	return &SubscriptionController{subscriptions: subscriptions, plans: plans, logger: logger}
}

// GetPlans lists subscription plans, optionally for one vendor type
func (sc *SubscriptionController) GetPlans(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	plans, err := sc.plans.List(ctx, c.Param("vendorType"))
	if err != nil {
		return respondError(c, sc.logger, err)
	}

	return respond(c, http.StatusOK, "Subscription plans retrieved successfully", plans)
}

// Subscribe records the caller's subscription for a vendor type. Vendors may
// only submit for themselves; vendorId defaults to the caller.
func (sc *SubscriptionController) Subscribe(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	var req models.SubscribeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, sc.logger, err)
	}

	caller := middleware.GetUserIDFromToken(c)
	if caller == "" {
		return unauthorized(c)
	}
	if req.VendorID == "" {
		req.VendorID = caller
	}
	if req.VendorID != caller {
		return forbidden(c, "You can only subscribe for your own account")
	}

	result, err := sc.subscriptions.Submit(ctx, &req)
	if err != nil {
		return respondError(c, sc.logger, err)
	}

	status := http.StatusOK
	message := "Subscription updated successfully"
	if result.Created {
		status = http.StatusCreated
		message = "Subscription submitted successfully"
	}
	return respond(c, status, message, result)
}

// GetVendorSubscriptions lists the caller's subscriptions, one per vendor type
func (sc *SubscriptionController) GetVendorSubscriptions(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	vendorID, err := primitive.ObjectIDFromHex(c.Param("vendorId"))
	if err != nil {
		return respondError(c, sc.logger, &services.ValidationError{Field: "vendorId", Message: "must be a valid id"})
	}
	if middleware.ExtractUserType(c) != services.UserTypeAdmin && middleware.GetUserIDFromToken(c) != vendorID.Hex() {
		return forbidden(c, "You can only view your own subscriptions")
	}

	subs, err := sc.subscriptions.ListForVendor(ctx, vendorID, c.QueryParam("vendorType"))
	if err != nil {
		return respondError(c, sc.logger, err)
	}

	return respond(c, http.StatusOK, "Subscriptions retrieved successfully", subs)
}
