package routes

import (
	"net/http"

	"github.com/event-oh/server/internal/container"
	"github.com/event-oh/server/internal/handlers"
	"github.com/event-oh/server/internal/middleware"
	"github.com/event-oh/server/internal/models"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(c *container.Container) *gin.Engine {
	if c.Config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{c.Config.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Add middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(c.Logger))
	r.Use(middleware.ErrorHandler(c.Logger))
	r.Use(gin.Recovery())

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"service": "event-oh-api",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", handlers.Register(c.UserService))
		auth.POST("/vendorRegister", handlers.VendorRegister(c.VendorService, c.UserService))
		auth.POST("/login", handlers.Login(c.UserService))
	}

	// Stripe calls this directly, signature verification replaces auth.
	api.POST("/payments/webhook", handlers.StripeWebhook(c.PaymentService))

	vendors := api.Group("/vendors")
	{
		vendors.GET("", handlers.ListVendors(c.VendorService))
		vendors.GET("/:id", handlers.GetVendorByID(c.VendorService))
		vendors.GET("/:id/booked-dates", handlers.GetBookedDates(c.VendorService))
	}

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(c.Config.JWTSecret, c.Logger))

	vendorOwned := protected.Group("/vendors")
	{
		vendorOwned.PUT("/:id", handlers.UpdateVendor(c.VendorService))
		vendorOwned.PATCH("/:id/availability", handlers.UpdateAvailability(c.VendorService))
		vendorOwned.POST("/:id/images", handlers.UploadPortfolio(c.VendorService))
	}

	bookings := protected.Group("/bookings")
	{
		bookings.POST("", handlers.CreateBooking(c.BookingService))
		bookings.GET("", handlers.ListBookings(c.BookingService))
		bookings.GET("/:id", handlers.GetBooking(c.BookingService))
		bookings.PUT("/:id/status", handlers.UpdateBookingStatus(c.BookingService))
		bookings.POST("/:id/pay-advance", handlers.PayAdvance(c.PaymentService))
		bookings.POST("/:id/pay-remaining", handlers.PayRemaining(c.PaymentService))
		bookings.PUT("/:id/mark-paid", handlers.MarkPaid(c.PaymentService))
	}

	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/vendors", handlers.AdminListVendors(c.VendorService))
		admin.PUT("/vendors/:vendorId/venue/:venueId/verify", handlers.VerifyVenueUnit(c.VendorService))
	}

	return r
}
