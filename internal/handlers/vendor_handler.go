package handlers

import (
	"net/http"
	"strconv"

	"github.com/event-oh/server/internal/models"
	"github.com/event-oh/server/internal/services"
	"github.com/gin-gonic/gin"
)

// ListVendors is the public directory listing with optional type/city/category
// filters, paginated.
func ListVendors(v *services.VendorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		offset, err := strconv.ParseInt(c.DefaultQuery("offset", "0"), 10, 64)
		if err != nil || offset < 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid offset parameter"))
			return
		}
		limit, err := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)
		if err != nil || limit <= 0 || limit > 100 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid limit parameter"))
			return
		}

		filter := models.VendorFilter{
			Type:     c.Query("type"),
			City:     c.Query("city"),
			Category: c.Query("category"),
			Offset:   offset,
			Limit:    limit,
		}

		vendors, total, err := v.ListVendors(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err)
			return
		}
		if vendors == nil {
			vendors = []*models.Vendor{}
		}

		page := int(offset/limit) + 1
		c.JSON(http.StatusOK, models.PaginatedResponse(vendors, page, int(limit), int(total)))
	}
}

func GetVendorByID(v *services.VendorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		vendor, err := v.GetVendorByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(vendor, ""))
	}
}

func UpdateVendor(v *services.VendorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := sessionFrom(c)
		if !ok {
			return
		}

		var fields map[string]interface{}
		if err := c.ShouldBindJSON(&fields); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid update payload"))
			return
		}

		vendor, err := v.UpdateVendor(c.Request.Context(), session, c.Param("id"), fields)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(vendor, "Vendor profile updated successfully"))
	}
}

func UpdateAvailability(v *services.VendorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := sessionFrom(c)
		if !ok {
			return
		}

		var req struct {
			BookedDates []string `json:"bookedDates"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.BookedDates == nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("bookedDates list is required"))
			return
		}

		vendor, err := v.UpdateAvailability(c.Request.Context(), session, c.Param("id"), req.BookedDates)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(vendor, "Vendor availability updated successfully"))
	}
}

func GetBookedDates(v *services.VendorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		dates, err := v.GetBookedDates(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{"bookedDates": dates}, ""))
	}
}

// UploadPortfolio appends Cloudinary URLs of the uploaded images to the
// vendor's portfolio. Vendors can only upload to their own profile.
func UploadPortfolio(v *services.VendorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := sessionFrom(c)
		if !ok {
			return
		}

		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("expected multipart form data"))
			return
		}

		vendor, err := v.UploadPortfolio(c.Request.Context(), session, c.Param("id"), form.File["images"])
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{"portfolio": vendor.Portfolio}, "Images uploaded successfully"))
	}
}
