package handlers

import (
	"net/http"

	"github.com/event-oh/server/internal/models"
	"github.com/event-oh/server/internal/services"
	"github.com/gin-gonic/gin"
)

// AdminListVendors returns every vendor, unfiltered. Admin only; the role
// check lives in the route middleware.
func AdminListVendors(v *services.VendorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		vendors, _, err := v.ListVendors(c.Request.Context(), models.VendorFilter{})
		if err != nil {
			respondError(c, err)
			return
		}
		if vendors == nil {
			vendors = []*models.Vendor{}
		}

		c.JSON(http.StatusOK, models.SuccessResponse(vendors, "All vendors fetched successfully"))
	}
}

// VerifyVenueUnit flips one venue unit's verified flag to true.
func VerifyVenueUnit(v *services.VendorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		vendor, err := v.VerifyVenueUnit(c.Request.Context(), c.Param("vendorId"), c.Param("venueId"))
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(vendor, "Venue verified successfully"))
	}
}
