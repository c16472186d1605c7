package controllers

import (
	"net/http"

	"github.com/HSouheill/couplecanvas_backend/models"
	"github.com/HSouheill/couplecanvas_backend/services"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// VendorController serves type profile listings, vendor detail and deletion
type VendorController struct {
	vendors *services.VendorService
	logger  *zap.Logger
}

// NewVendorController creates a new vendor controller
func NewVendorController(vendors *services.VendorService, logger *zap.Logger) *VendorController {
	return &VendorController{vendors: vendors, logger: logger}
}

// GetOwnProfile returns the caller's detail for one category
func (vc *VendorController) GetOwnProfile(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	vendorID, err := callerID(c)
	if err != nil {
		return unauthorized(c)
	}

	detail, err := vc.vendors.DetailForVendor(ctx, c.Param("category"), vendorID)
	if err != nil {
		return respondError(c, vc.logger, err)
	}

	return respond(c, http.StatusOK, "Vendor profile retrieved successfully", detail)
}

// ListVendors lists a category's type profiles. Supports ?status= and ?search=.
func (vc *VendorController) ListVendors(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	profiles, err := vc.vendors.ListProfiles(ctx, c.Param("category"), models.ProfileFilter{
		Status: c.QueryParam("status"),
		Search: c.QueryParam("search"),
	})
	if err != nil {
		return respondError(c, vc.logger, err)
	}

	return respond(c, http.StatusOK, "Vendors retrieved successfully", profiles)
}

// GetVendor returns vendor detail by type profile id or legacy vendor id
func (vc *VendorController) GetVendor(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	detail, err := vc.vendors.Detail(ctx, c.Param("category"), c.Param("id"))
	if err != nil {
		return respondError(c, vc.logger, err)
	}

	return respond(c, http.StatusOK, "Vendor retrieved successfully", detail)
}

// DeleteVendor removes a vendor and everything it owns
func (vc *VendorController) DeleteVendor(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := vc.vendors.Delete(ctx, c.Param("category"), c.Param("id"))
	if err != nil {
		return respondError(c, vc.logger, err)
	}

	return respond(c, http.StatusOK, "Vendor deleted successfully", result)
}
