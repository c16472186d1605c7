package controllers

import (
	"net/http"
	"strconv"

	"github.com/HSouheill/couplecanvas_backend/models"
	"github.com/HSouheill/couplecanvas_backend/services"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ApprovalController handles admin decisions on subscriptions and type profiles
type ApprovalController struct {
	approval *services.ApprovalService
	logger   *zap.Logger
}

// NewApprovalController creates a new approval controller
func NewApprovalController(approval *services.ApprovalService, logger *zap.Logger) *ApprovalController {
	return &ApprovalController{approval: approval, logger: logger}
}

// GetPendingSubscriptions lists subscriptions waiting for a decision
func (ac *ApprovalController) GetPendingSubscriptions(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	pending, err := ac.approval.ListPending(ctx)
	if err != nil {
		return respondError(c, ac.logger, err)
	}

	return respond(c, http.StatusOK, "Pending subscriptions retrieved successfully", pending)
}

// UpdateSubscriptionStatus activates or rejects a subscription
func (ac *ApprovalController) UpdateSubscriptionStatus(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	dec, err := ac.decision(c)
	if err != nil {
		return respondError(c, ac.logger, err)
	}

	result, err := ac.approval.Decide(ctx, dec)
	if err != nil {
		return respondError(c, ac.logger, err)
	}

	return respond(c, http.StatusOK, "Subscription status updated successfully", result)
}

// UpdateProfileStatus sets a type profile's status directly
func (ac *ApprovalController) UpdateProfileStatus(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	dec, err := ac.decision(c)
	if err != nil {
		return respondError(c, ac.logger, err)
	}
	dec.Category = c.Param("category")

	profile, err := ac.approval.DecideProfile(ctx, dec)
	if err != nil {
		return respondError(c, ac.logger, err)
	}

	return respond(c, http.StatusOK, "Vendor status updated successfully", profile)
}

// GetApprovalLogs returns recent decisions. Supports ?vendorId= and ?limit=.
func (ac *ApprovalController) GetApprovalLogs(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	var limit int64
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return respondError(c, ac.logger, &services.ValidationError{Field: "limit", Message: "must be a number"})
		}
		limit = n
	}

	logs, err := ac.approval.ListLogs(ctx, c.QueryParam("vendorId"), limit)
	if err != nil {
		return respondError(c, ac.logger, err)
	}

	return respond(c, http.StatusOK, "Approval logs retrieved successfully", logs)
}

func (ac *ApprovalController) decision(c echo.Context) (services.Decision, error) {
	var req models.StatusUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return services.Decision{}, err
	}

	adminID, err := callerID(c)
	if err != nil {
		return services.Decision{}, err
	}

	return services.Decision{
		TargetID: c.Param("id"),
		Status:   req.Status,
		Remarks:  req.Remarks,
		AdminID:  adminID,
	}, nil
}
