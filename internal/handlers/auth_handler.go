package handlers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/event-oh/server/internal/connect"
	"github.com/event-oh/server/internal/helpers"
	"github.com/event-oh/server/internal/models"
	"github.com/event-oh/server/internal/services"
	"github.com/gin-gonic/gin"
)

// Register handles customer/vendor account creation. The endpoint accepts
// multipart form data so an avatar can ride along with the fields.
func Register(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		in := services.RegisterInput{
			Name:     c.PostForm("name"),
			Email:    c.PostForm("email"),
			Password: c.PostForm("password"),
			Role:     c.PostForm("role"),
		}

		if avatar, err := c.FormFile("avatar"); err == nil && avatar != nil {
			urls, err := helpers.UploadFiles(c.Request.Context(), connect.Cld,
				[]*multipart.FileHeader{avatar}, helpers.AvatarFolder)
			if err != nil {
				c.JSON(http.StatusBadGateway, models.ErrorResponse("failed to upload avatar"))
				return
			}
			in.Avatar = urls[0]
		}

		user, token, err := u.Register(c.Request.Context(), in)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(gin.H{
			"user":  user.Public(),
			"token": token,
		}, "User registered successfully"))
	}
}

// VendorRegister creates the owning user account and the vendor profile from
// one multipart submission, including profile/portfolio/venue images.
func VendorRegister(v *services.VendorService, u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("expected multipart form data"))
			return
		}

		userIn := services.RegisterInput{
			Name:     c.PostForm("name"),
			Email:    c.PostForm("email"),
			Password: c.PostForm("password"),
		}

		vendorType, err := models.ParseVendorType(c.PostForm("type"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("type must be venue, freelancer or event_team"))
			return
		}

		vendor := &models.Vendor{
			Type:               vendorType,
			Name:               c.PostForm("name"),
			City:               c.PostForm("city"),
			Description:        c.PostForm("description"),
			ContactNumber:      c.PostForm("contactNumber"),
			FreelancerCategory: c.PostForm("freelancerCategory"),
			BasePrice:          postFormFloat(c, "basePrice"),
			PackageName:        c.PostForm("packageName"),
			PackageDescription: c.PostForm("packageDescription"),
			PackagePrice:       postFormFloat(c, "packagePrice"),
			EventTypes:         splitList(c.PostForm("eventTypes")),
			VenueUnits:         parseVenueUnits(c),
		}

		files := services.VendorFiles{
			Portfolio:   form.File["portfolio"],
			VenueImages: form.File["venueImages"],
		}
		if photos := form.File["profilePhoto"]; len(photos) > 0 {
			files.ProfilePhoto = photos[0]
		}

		createdVendor, createdUser, token, err := v.RegisterVendor(c.Request.Context(), userIn, vendor, files, u)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(gin.H{
			"user":   createdUser.Public(),
			"vendor": createdVendor,
			"token":  token,
		}, "Vendor registered successfully"))
	}
}

func Login(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("email and password are required"))
			return
		}

		user, token, err := u.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{
			"user":  user.Public(),
			"token": token,
		}, "Login successful"))
	}
}

// parseVenueUnits reads the indexed venueUnits[i].* fields the registration
// form submits for venue vendors.
func parseVenueUnits(c *gin.Context) []models.VenueUnit {
	var units []models.VenueUnit
	for i := 0; ; i++ {
		title := c.PostForm(fmt.Sprintf("venueUnits[%d].title", i))
		if title == "" {
			break
		}
		capacity, _ := strconv.Atoi(c.PostForm(fmt.Sprintf("venueUnits[%d].capacity", i)))
		price := postFormFloat(c, fmt.Sprintf("venueUnits[%d].pricePerDay", i))
		units = append(units, models.VenueUnit{
			Title:       title,
			Capacity:    capacity,
			PricePerDay: price,
		})
	}
	return units
}

func postFormFloat(c *gin.Context, key string) float64 {
	f, _ := strconv.ParseFloat(c.PostForm(key), 64)
	return f
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
